// Package verify is a heap checker: it walks raw arena bytes and validates
// the layout the allocator maintains. It is used by tests, by the trace
// driver's --check mode and when attaching to a heap loaded from disk.
package verify

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// ValidationError describes the first violated invariant.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates all heap invariants in one call.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(data []byte) error {
	if err := Prologue(data); err != nil {
		return err
	}
	if err := Epilogue(data); err != nil {
		return err
	}
	return Blocks(data)
}

// Prologue validates the padding word and the prologue block.
func Prologue(data []byte) error {
	if len(data) < format.InitialSize {
		return &ValidationError{
			Type:    "Prologue",
			Message: fmt.Sprintf("heap too small: %d bytes (need %d)", len(data), format.InitialSize),
			Offset:  -1,
		}
	}
	if w := format.ReadU32(data, format.PaddingOffset); w != 0 {
		return &ValidationError{
			Type:    "Prologue",
			Message: fmt.Sprintf("padding word is 0x%X, expected 0", w),
			Offset:  format.PaddingOffset,
		}
	}
	want := format.Pack(format.PrologueSize, true)
	for _, off := range []int{format.PrologueHeaderOffset, format.PrologueFooterOffset} {
		if w := format.ReadU32(data, off); w != want {
			return &ValidationError{
				Type:    "Prologue",
				Message: fmt.Sprintf("prologue word is 0x%X, expected 0x%X", w, want),
				Offset:  off,
			}
		}
	}
	return nil
}

// Epilogue validates that the heap size is aligned and ends with a zero-size
// allocated header.
func Epilogue(data []byte) error {
	if len(data) < format.InitialSize || !format.IsAligned(len(data)) {
		return &ValidationError{
			Type:    "Epilogue",
			Message: fmt.Sprintf("heap size %d is not a multiple of %d", len(data), format.Alignment),
			Offset:  -1,
		}
	}
	off := len(data) - format.WordSize
	if w := format.ReadU32(data, off); w != format.Pack(0, true) {
		return &ValidationError{
			Type:    "Epilogue",
			Message: fmt.Sprintf("epilogue word is 0x%X, expected 0x1", w),
			Offset:  off,
		}
	}
	return nil
}

// Blocks walks every block between the prologue and the epilogue and checks:
//   - header and footer agree
//   - sizes are multiples of 8 and at least the minimum block size
//   - payloads are 8-byte aligned
//   - no two adjacent blocks are both free
//   - the blocks tile the heap exactly up to the epilogue header
//
// Offsets in errors are payload offsets.
func Blocks(data []byte) error {
	epilogue := len(data) - format.WordSize
	prevFree := false
	count := 0

	p := format.FirstPayloadOffset
	for format.HeaderOffset(p) < epilogue {
		w := format.ReadU32(data, format.HeaderOffset(p))
		size, allocated := format.BlockSize(w), format.BlockAllocated(w)

		if !format.IsAligned(p) {
			return blockError(p, count, "payload not %d-byte aligned", format.Alignment)
		}
		if w&format.AlignmentMask&^1 != 0 {
			return blockError(p, count, "reserved header bits set: 0x%X", w)
		}
		if size < format.MinBlockSize {
			return blockError(p, count, "block size %d below minimum %d", size, format.MinBlockSize)
		}
		if format.HeaderOffset(p)+size > epilogue {
			return blockError(p, count, "block of %d bytes runs past the epilogue at 0x%X", size, epilogue)
		}
		if f := format.ReadU32(data, format.FooterOffset(p, size)); f != w {
			return blockError(p, count, "footer 0x%X does not match header 0x%X", f, w)
		}
		if !allocated && prevFree {
			return blockError(p, count, "free block follows a free block (missed coalesce)")
		}

		prevFree = !allocated
		count++
		p += size
	}

	if format.HeaderOffset(p) != epilogue {
		return &ValidationError{
			Type:    "Blocks",
			Message: fmt.Sprintf("blocks end at 0x%X, epilogue header is at 0x%X", format.HeaderOffset(p), epilogue),
			Offset:  p,
		}
	}
	return nil
}

func blockError(p, index int, msg string, args ...any) error {
	return &ValidationError{
		Type:    "Blocks",
		Message: fmt.Sprintf(msg, args...),
		Offset:  p,
		Details: map[string]any{"block": index},
	}
}
