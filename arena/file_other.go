//go:build !linux && !darwin && !freebsd && !windows

package arena

import (
	"errors"
	"fmt"
)

type mapping struct{}

// Open is not supported on this platform; use New.
func Open(path string, _ int) (*Arena, error) {
	return nil, fmt.Errorf("arena: file-backed arena %s: %w", path, errors.ErrUnsupported)
}

// Load is not supported on this platform.
func Load(path string, _ int) (*Arena, error) {
	return nil, fmt.Errorf("arena: file-backed arena %s: %w", path, errors.ErrUnsupported)
}

func (a *Arena) remap(int) error { return errors.ErrUnsupported }

func (a *Arena) unmap() error { return nil }
