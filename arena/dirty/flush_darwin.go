//go:build darwin

package dirty

import (
	"golang.org/x/sys/unix"
)

// flushRanges flushes the whole mapping.
//
// On macOS msync() requires the address to match the original mmap() address,
// so sub-slices cannot be passed. The kernel only writes dirty pages anyway.
func flushRanges(data []byte, _ []Range) error {
	return unix.Msync(data, unix.MS_SYNC)
}

// fdatasync performs file descriptor sync.
//
// macOS has no fdatasync; fsync is used, or F_FULLFSYNC when fullfsync is set
// so that data reaches the physical disk and not just the drive cache.
func fdatasync(fd int, fullfsync bool) error {
	if fullfsync {
		_, err := unix.FcntlInt(uintptr(fd), unix.F_FULLFSYNC, 0)
		return err
	}
	return unix.Fsync(fd)
}
