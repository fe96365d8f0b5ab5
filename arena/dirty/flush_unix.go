//go:build linux || freebsd

package dirty

import (
	"golang.org/x/sys/unix"
)

// flushRanges msyncs each coalesced range.
//
// On Linux and FreeBSD msync() accepts page-aligned sub-slices of the mapping.
func flushRanges(data []byte, ranges []Range) error {
	for _, r := range ranges {
		start, end, ok := clampRange(r, len(data))
		if !ok {
			continue
		}
		if err := unix.Msync(data[start:end], unix.MS_SYNC); err != nil {
			return err
		}
	}
	return nil
}

// fdatasync syncs file data. fullfsync is ignored on Linux/FreeBSD.
func fdatasync(fd int, _ bool) error {
	return unix.Fdatasync(fd)
}
