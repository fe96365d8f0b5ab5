// Package buf provides overflow-safe offset arithmetic for code that indexes
// directly into the arena byte slice.
package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// CheckRange validates that n bytes starting at off fit in a buffer of
// length bufLen. Returns the end offset if valid, or an error describing
// the specific failure (overflow or out of bounds).
//
//	end, err := buf.CheckRange(len(data), payload, size)
//	if err != nil {
//	    return fmt.Errorf("payload: %w", err)
//	}
func CheckRange(bufLen, off, n int) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset: %d", off)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative length: %d", n)
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok {
		return 0, fmt.Errorf("overflow: offset=%d + size=%d", off, n)
	}
	if end > bufLen {
		return 0, fmt.Errorf("bounds: end=%d > len=%d", end, bufLen)
	}
	return end, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}

// Overlaps reports whether the half-open ranges [aOff, aOff+aLen) and
// [bOff, bOff+bLen) share at least one byte.
func Overlaps(aOff, aLen, bOff, bLen int) bool {
	if aLen <= 0 || bLen <= 0 {
		return false
	}
	return aOff < bOff+bLen && bOff < aOff+aLen
}
