// Package alloc implements malloc, free and realloc on top of a growable
// byte region.
//
// # Overview
//
// ImplicitAllocator keeps every block of the heap in a single implicit list:
// each block starts with a 4-byte header and ends with an identical 4-byte
// footer, both encoding the block size and an allocated bit. The successor
// of a block is found by adding its size, the predecessor by reading the
// footer just below its header. No pointers are stored in free blocks.
//
//	 0        4        8        12       16
//	+--------+--------+--------+--------+----------------- ... -+--------+
//	|  pad   | 8 / 1  | 8 / 1  | hdr    | payload ...     | ftr  | 0 / 1  |
//	+--------+--------+--------+--------+----------------- ... -+--------+
//	          prologue          first block                      epilogue
//
// The prologue (an allocated block with no payload) and the epilogue (an
// allocated header of size zero) bound the list, so coalescing never needs to
// special-case the ends of the heap.
//
// # Operations
//
//   - Malloc rounds the request up to a multiple of 8 plus header and footer,
//     searches the list with the configured Strategy, and splits the chosen
//     block when the remainder is at least 16 bytes. When nothing fits, the
//     region grows by max(request, ChunkSize) and the new space is merged
//     with a free block at the end of the heap.
//   - Free clears the allocated bit and merges with a free successor, then a
//     free predecessor. No two free blocks are ever adjacent.
//   - Realloc copies into a fresh block by default. ReallocInPlace shrinks in
//     place and grows into a free successor or the end of the heap first.
//
// Pointers are arena-relative payload offsets (Ptr). Payload returns the
// bytes behind a pointer; that slice is invalidated whenever the heap grows.
//
// # Misuse
//
// Freeing a pointer twice, freeing a pointer this allocator did not return,
// or using a pointer after Free is undefined. Pointers whose block would lie
// outside the heap are rejected with ErrBadPointer, but nothing else is
// checked unless Options.TrackLive is set.
//
// # Concurrency
//
// Allocators are not safe for concurrent use.
//
// # Usage Example
//
//	a := arena.New(arena.DefaultLimit)
//	h := alloc.New(a, nil)
//	if err := h.Init(); err != nil {
//	    return err
//	}
//
//	p, err := h.Malloc(100)
//	if err != nil {
//	    return err
//	}
//	copy(h.Payload(p), data)
//
//	err = h.Free(p)
package alloc
