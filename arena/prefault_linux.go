//go:build linux

package arena

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// PreFaultPages faults in every page of a mapped region so that an
// inaccessible page is reported as an error here rather than as SIGBUS on
// first access.
//
// MADV_POPULATE_READ (Linux 5.14+) is tried first since it returns EFAULT
// instead of raising a signal; older kernels fall back to a guarded
// read-through.
func PreFaultPages(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	err := unix.Madvise(data, unix.MADV_POPULATE_READ)
	if err == nil {
		return nil
	}
	if !errors.Is(err, unix.EINVAL) && !errors.Is(err, unix.ENOSYS) {
		return fmt.Errorf("madvise populate failed: %w", err)
	}
	return manualPreFault(data)
}
