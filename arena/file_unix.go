//go:build linux || darwin || freebsd

package arena

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

type mapping struct{}

// Open creates (or truncates) the file at path and returns an arena backed by
// a shared read-write mapping of it. The file starts empty; every Grow
// extends the file and remaps it.
func Open(path string, limit int) (*Arena, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Arena{f: f, path: path, limit: limit}, nil
}

// Load maps an existing arena file read-write. The break is set to the file
// size and the limit is raised to at least that size.
func Load(path string, limit int) (*Arena, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	sz := int(st.Size())
	if sz == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	data, err := mmapFile(f, sz)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("arena: mmap failed: %w", err)
	}
	if err := PreFaultPages(data); err != nil {
		_ = unix.Munmap(data)
		_ = f.Close()
		return nil, fmt.Errorf("arena: mapped region contains inaccessible pages: %w", err)
	}

	return &Arena{f: f, path: path, data: data, brk: sz, limit: max(limit, sz)}, nil
}

// mmapFile maps size bytes of f read-write and shared. Tests swap it out to
// inject mapping failures.
var mmapFile = func(f *os.File, size int) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

// remap grows the backing file to newSize and maps it again. On failure the
// old mapping is restored so the arena stays usable at its previous size.
func (a *Arena) remap(newSize int) error {
	if err := a.unmap(); err != nil {
		return fmt.Errorf("arena: failed to unmap before grow: %w", err)
	}

	if err := a.f.Truncate(int64(newSize)); err != nil {
		a.restore()
		return fmt.Errorf("arena: failed to truncate file: %w", err)
	}

	data, err := mmapFile(a.f, newSize)
	if err != nil {
		a.restore()
		return fmt.Errorf("arena: failed to remap after grow: %w", err)
	}
	a.data = data
	return nil
}

// restore maps the file again at the current break after a failed remap.
// If that fails too the arena is left empty and closed, so Bytes stays safe
// and further growth reports ErrClosed.
func (a *Arena) restore() {
	if a.brk == 0 {
		return
	}
	if err := a.f.Truncate(int64(a.brk)); err == nil {
		if data, err := mmapFile(a.f, a.brk); err == nil {
			a.data = data
			return
		}
	}
	a.data, a.brk, a.closed = nil, 0, true
}

func (a *Arena) unmap() error {
	if a.data == nil {
		return nil
	}
	err := unix.Munmap(a.data)
	a.data = nil
	return err
}
