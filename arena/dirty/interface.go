package dirty

import "context"

// DirtyTracker is the minimal interface for tracking dirty (modified) byte ranges.
//
// It is intended for components that only need to report modifications but
// don't decide when they are persisted, such as allocators.
type DirtyTracker interface {
	// Add marks a byte range as dirty.
	// off is the offset from the start of the arena, length is the number of bytes.
	Add(off, length int)
}

// FlushableTracker extends DirtyTracker with the ability to persist the
// recorded ranges.
type FlushableTracker interface {
	DirtyTracker

	// Flush persists all dirty ranges according to mode.
	Flush(ctx context.Context, mode FlushMode) error
}

// Target is the storage a Tracker flushes. *arena.Arena satisfies it.
type Target interface {
	Bytes() []byte
	FD() int
}
