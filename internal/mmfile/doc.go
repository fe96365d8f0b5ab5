// Package mmfile exposes input files (allocation traces) as byte slices,
// memory-mapped where the platform allows it and read into memory otherwise.
// The slice is valid until the returned release function is called.
package mmfile

func noop() error { return nil }
