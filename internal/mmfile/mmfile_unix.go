//go:build linux || darwin || freebsd

package mmfile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Map maps the file at path read-only and returns its contents together with
// a release function. Traces are scanned front to back once, so the kernel is
// told to read ahead aggressively.
func Map(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close() // the mapping outlives the descriptor

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size := info.Size()
	if size == 0 {
		return []byte{}, noop, nil
	}
	if size > int64(^uint(0)>>1) {
		return nil, nil, fmt.Errorf("mmfile: %s too large to map (%d bytes)", path, size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("mmfile: mmap %s: %w", path, err)
	}
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL) // advisory only

	released := false
	release := func() error {
		if released {
			return nil
		}
		released = true
		err := unix.Munmap(data)
		if errors.Is(err, unix.EINVAL) {
			return nil
		}
		return err
	}
	return data, release, nil
}
