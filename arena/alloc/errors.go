package alloc

import "errors"

var (
	// ErrArenaExhausted indicates the region could not grow to satisfy a request.
	// The allocator state is unchanged and the caller may retry after freeing memory.
	ErrArenaExhausted = errors.New("alloc: arena exhausted")

	// ErrNotInitialized indicates a call before a successful Init.
	ErrNotInitialized = errors.New("alloc: not initialized")

	// ErrAlreadyInitialized indicates a second Init on the same allocator.
	ErrAlreadyInitialized = errors.New("alloc: already initialized")

	// ErrRegionInUse indicates Init was given a region whose break is not zero.
	ErrRegionInUse = errors.New("alloc: region already has a break")

	// ErrBadPointer indicates a pointer whose block would lie outside the heap
	// or whose header is malformed.
	ErrBadPointer = errors.New("alloc: bad pointer")

	// ErrUnknownPointer indicates a pointer that is not currently live.
	// Only reported when Options.TrackLive is set.
	ErrUnknownPointer = errors.New("alloc: pointer is not live")

	// ErrNegativeSize indicates a negative request size.
	ErrNegativeSize = errors.New("alloc: negative size")
)
