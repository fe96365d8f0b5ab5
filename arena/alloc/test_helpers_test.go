package alloc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/arena"
)

// newTestAllocator returns an initialized allocator over a fresh memory arena
// with the default 20 MiB limit.
func newTestAllocator(t testing.TB, opts *Options) (*ImplicitAllocator, *arena.Arena) {
	t.Helper()
	return newTestAllocatorWithLimit(t, arena.DefaultLimit, opts)
}

func newTestAllocatorWithLimit(t testing.TB, limit int, opts *Options) (*ImplicitAllocator, *arena.Arena) {
	t.Helper()
	r := arena.New(limit)
	a := New(r, opts)
	require.NoError(t, a.Init())
	return a, r
}

// assertHeapInvariants runs the heap checker and fails the test on the first violation.
func assertHeapInvariants(t testing.TB, a *ImplicitAllocator) {
	t.Helper()
	require.NoError(t, a.Check(), "heap invariants violated")
}

// setupGrowCounter records the byte count of every region growth.
func setupGrowCounter(a *ImplicitAllocator) *[]int {
	var grows []int
	a.onGrow = func(n int) { grows = append(grows, n) }
	return &grows
}

// mustMalloc allocates or fails the test.
func mustMalloc(t testing.TB, a Allocator, size int) Ptr {
	t.Helper()
	p, err := a.Malloc(size)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p)
	return p
}

// fill writes a position- and seed-dependent pattern into b.
func fill(b []byte, seed byte) {
	for i := range b {
		b[i] = seed + byte(i*7)
	}
}

// checkPattern reports the first index where b deviates from fill(b, seed).
func checkPattern(b []byte, seed byte) int {
	for i := range b {
		if b[i] != seed+byte(i*7) {
			return i
		}
	}
	return -1
}

// freeBlocks returns the free blocks of the heap in address order.
func freeBlocks(a *ImplicitAllocator) []Block {
	var out []Block
	for b := range a.Blocks() {
		if !b.Allocated {
			out = append(out, b)
		}
	}
	return out
}

// failingRegion wraps a Region and fails every growth once armed.
type failingRegion struct {
	Region
	fail bool
}

var errInjected = errors.New("injected growth failure")

func (f *failingRegion) Grow(delta int) (int, error) {
	if f.fail {
		return 0, errInjected
	}
	return f.Region.Grow(delta)
}
