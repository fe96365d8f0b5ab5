//go:build windows

package arena

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

type mapping struct {
	h windows.Handle
}

// Open creates (or truncates) the file at path and returns an arena backed by
// a read-write view of it. The file starts empty; every Grow extends the file
// and maps a new view.
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
	a := &Arena{f: f, path: path, brk: sz, limit: max(limit, sz)}
	if err := a.mapView(sz); err != nil {
		_ = f.Close()
		return nil, err
	}
	return a, nil
}

func (a *Arena) mapView(size int) error {
	fh := windows.Handle(a.f.Fd())
	hi := uint32(uint64(size) >> 32)
	lo := uint32(uint64(size))
	h, err := windows.CreateFileMapping(fh, nil, windows.PAGE_READWRITE, hi, lo, nil)
	if err != nil {
		return fmt.Errorf("arena: CreateFileMapping: %w", err)
	}
	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		_ = windows.CloseHandle(h)
		return fmt.Errorf("arena: MapViewOfFile: %w", err)
	}
	a.m.h = h
	a.data = unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return nil
}

func (a *Arena) remap(newSize int) error {
	if err := a.unmap(); err != nil {
		return fmt.Errorf("arena: failed to unmap before grow: %w", err)
	}
	if err := a.f.Truncate(int64(newSize)); err != nil {
		a.restore()
		return fmt.Errorf("arena: failed to truncate file: %w", err)
	}
	if err := a.mapView(newSize); err != nil {
		a.restore()
		return err
	}
	return nil
}

func (a *Arena) restore() {
	if a.brk == 0 {
		return
	}
	if err := a.f.Truncate(int64(a.brk)); err == nil {
		if err := a.mapView(a.brk); err == nil {
			return
		}
	}
	a.data, a.brk, a.closed = nil, 0, true
}

func (a *Arena) unmap() error {
	var err error
	if a.data != nil {
		err = windows.UnmapViewOfFile(uintptr(unsafe.Pointer(&a.data[0])))
		a.data = nil
	}
	if a.m.h != 0 {
		if cerr := windows.CloseHandle(a.m.h); err == nil {
			err = cerr
		}
		a.m.h = 0
	}
	return err
}
