package alloc

import "github.com/joshuapare/heapkit/arena/dirty"

// DirtyTracker is a type alias for the canonical interface defined in arena/dirty.
type DirtyTracker = dirty.DirtyTracker

// Region is the growth primitive the allocator is built on.
//
// Grow extends the region by delta bytes and returns the previous break, or
// fails without changing the region. Bytes returns the region [0, break); the
// slice may move on growth, so the allocator re-reads it after every Grow.
// *arena.Arena satisfies Region.
type Region interface {
	Bytes() []byte
	Grow(delta int) (int, error)
}
