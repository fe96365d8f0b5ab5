//go:build !linux && !darwin && !freebsd

package mmfile

import "os"

// Map reads the entire file when mmap is not available.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, noop, nil
}
