package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// Realloc resizes the payload at p to size bytes and returns its new address.
//
// The first min(old payload, size) bytes are preserved; bytes past the old
// payload are left uninitialized. Realloc(Nil, n) behaves as Malloc(n) and
// Realloc(p, 0) frees p and returns Nil. On failure the error wraps
// ErrArenaExhausted and p is still valid.
func (a *ImplicitAllocator) Realloc(p Ptr, size int) (Ptr, error) {
	if !a.initialized {
		return Nil, ErrNotInitialized
	}
	if size < 0 {
		return Nil, fmt.Errorf("%w: %d", ErrNegativeSize, size)
	}
	if p == Nil {
		return a.Malloc(size)
	}
	if size == 0 {
		return Nil, a.Free(p)
	}

	csize, err := a.checkPtr(p)
	if err != nil {
		return Nil, err
	}
	if a.live != nil {
		if _, ok := a.live[p]; !ok {
			return Nil, fmt.Errorf("%w: %d", ErrUnknownPointer, p)
		}
	}
	a.stats.ReallocCalls++

	if a.opts.Realloc == ReallocInPlace && a.resizeInPlace(p, csize, size) {
		a.stats.ReallocInPlace++
		return p, nil
	}
	return a.reallocCopy(p, csize, size)
}

// reallocCopy allocates a new block, copies the overlapping prefix and frees
// the old block.
func (a *ImplicitAllocator) reallocCopy(p Ptr, csize, size int) (Ptr, error) {
	np, err := a.malloc(size)
	if err != nil {
		return Nil, err
	}

	data := a.r.Bytes()
	n := min(format.PayloadSize(csize), size)
	copy(data[int(np):int(np)+n], data[int(p):int(p)+n])

	a.free(p, csize)
	if a.live != nil {
		delete(a.live, p)
		a.live[np] = struct{}{}
	}
	return np, nil
}

// resizeInPlace tries to fit size bytes into the block at p without moving
// it. It reports false when the block cannot be resized in place; the heap
// is then unchanged apart from a possible growth of the region.
func (a *ImplicitAllocator) resizeInPlace(p Ptr, csize, size int) bool {
	if int64(size) > maxRequest {
		return false
	}
	asize := format.AdjustedSize(size)

	if asize <= csize {
		if rem := csize - asize; rem >= format.MinBlockSize {
			a.setBlock(p, asize, true)
			tail := p + Ptr(asize)
			a.setBlock(tail, rem, false)
			a.coalesce(tail)
			a.stats.SplitCount++
			a.stats.BytesFreed += int64(rem)
		}
		return true
	}

	next := p + Ptr(csize)
	nsize, nallocated := format.ReadHeader(a.r.Bytes(), int(next))
	if nsize == 0 {
		// p ends the heap: grow the region under it.
		q, err := a.extend(max(asize-csize, format.MinBlockSize))
		if err != nil {
			return false
		}
		nsize, nallocated = a.blockSize(q), false
	}
	if nallocated || csize+nsize < asize {
		return false
	}

	total := csize + nsize
	if rem := total - asize; rem >= format.MinBlockSize {
		a.setBlock(p, asize, true)
		a.setBlock(p+Ptr(asize), rem, false)
		a.stats.SplitCount++
		total = asize
	} else {
		a.setBlock(p, total, true)
	}
	a.stats.CoalesceForward++
	a.stats.BytesAllocated += int64(total - csize)
	return true
}
