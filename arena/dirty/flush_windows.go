//go:build windows

package dirty

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// flushRanges flushes each coalesced range of the view with FlushViewOfFile.
func flushRanges(data []byte, ranges []Range) error {
	for _, r := range ranges {
		start, end, ok := clampRange(r, len(data))
		if !ok {
			continue
		}
		addr := uintptr(unsafe.Pointer(&data[start]))
		if err := windows.FlushViewOfFile(addr, uintptr(end-start)); err != nil {
			return err
		}
	}
	return nil
}

// fdatasync flushes file buffers with FlushFileBuffers. fullfsync is ignored.
func fdatasync(fd int, _ bool) error {
	return windows.FlushFileBuffers(windows.Handle(fd))
}
