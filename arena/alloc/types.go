package alloc

import (
	"fmt"
	"strings"

	"github.com/joshuapare/heapkit/internal/format"
)

// Ptr is an arena-relative payload offset.
type Ptr int

// Nil is the null pointer. Offset 0 holds the alignment padding word and is
// never a payload.
const Nil Ptr = 0

// Allocator is the malloc-style interface shared by ImplicitAllocator and
// BumpAllocator.
//
// Implementations:
//   - ImplicitAllocator: implicit free list with boundary-tag coalescing
//   - BumpAllocator: break-pointer baseline that never reuses memory
type Allocator interface {
	// Init prepares the heap. It must be called exactly once before any other call.
	Init() error

	// Malloc returns a payload of at least size bytes aligned to 8.
	// A zero size returns (Nil, nil).
	Malloc(size int) (Ptr, error)

	// Free releases a payload returned by Malloc or Realloc. Free(Nil) is a no-op.
	Free(p Ptr) error

	// Realloc resizes a payload, preserving min(old, new) bytes.
	// Realloc(Nil, n) is Malloc(n); Realloc(p, 0) frees p and returns Nil.
	Realloc(p Ptr, size int) (Ptr, error)

	// Payload returns the committed payload bytes of a live pointer.
	// The slice is invalidated by the next call that grows the heap.
	Payload(p Ptr) []byte

	// HeapSize returns the number of bytes the heap currently spans.
	HeapSize() int
}

// Block describes one block of the implicit list.
type Block struct {
	Ptr       Ptr  // payload offset
	Size      int  // total size including header and footer
	Allocated bool // allocation bit
}

// PayloadSize returns the usable bytes of the block.
func (b Block) PayloadSize() int { return format.PayloadSize(b.Size) }

// Strategy selects how the free list is searched.
type Strategy uint8

const (
	// FirstFit returns the lowest-addressed free block that is large enough.
	FirstFit Strategy = iota
	// NextFit resumes scanning after the previously returned block and wraps around.
	NextFit
	// BestFit returns the free block with the smallest positive leftover.
	BestFit
)

// String returns the flag spelling of the strategy.
func (s Strategy) String() string {
	switch s {
	case FirstFit:
		return "first"
	case NextFit:
		return "next"
	case BestFit:
		return "best"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// ParseStrategy parses "first", "next" or "best" (case-insensitive, an
// optional "-fit" suffix is accepted).
func ParseStrategy(s string) (Strategy, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "-fit") {
	case "first", "":
		return FirstFit, nil
	case "next":
		return NextFit, nil
	case "best":
		return BestFit, nil
	default:
		return 0, fmt.Errorf("alloc: unknown strategy %q (want first, next or best)", s)
	}
}

// ReallocPolicy selects how Realloc resizes a block.
type ReallocPolicy uint8

const (
	// ReallocCopy always allocates a new block, copies and frees the old one.
	ReallocCopy ReallocPolicy = iota
	// ReallocInPlace shrinks in place and grows into a free successor or the
	// end of the heap when possible, falling back to ReallocCopy otherwise.
	ReallocInPlace
)

// String returns the flag spelling of the policy.
func (p ReallocPolicy) String() string {
	switch p {
	case ReallocCopy:
		return "copy"
	case ReallocInPlace:
		return "inplace"
	default:
		return fmt.Sprintf("ReallocPolicy(%d)", uint8(p))
	}
}

// ParseReallocPolicy parses "copy" or "inplace" (also "in-place").
func ParseReallocPolicy(s string) (ReallocPolicy, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "") {
	case "copy", "":
		return ReallocCopy, nil
	case "inplace":
		return ReallocInPlace, nil
	default:
		return 0, fmt.Errorf("alloc: unknown realloc policy %q (want copy or inplace)", s)
	}
}
