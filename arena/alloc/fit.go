package alloc

import (
	"math"

	"github.com/joshuapare/heapkit/internal/format"
)

// findFit returns a free block of at least asize bytes, or Nil.
func (a *ImplicitAllocator) findFit(asize int) Ptr {
	switch a.opts.Strategy {
	case NextFit:
		return a.nextFit(asize)
	case BestFit:
		return a.bestFit(asize)
	default:
		return a.firstFit(asize)
	}
}

// firstFit scans from the start of the heap.
func (a *ImplicitAllocator) firstFit(asize int) Ptr {
	data := a.r.Bytes()
	for p := a.heapList; ; {
		size, allocated := format.ReadHeader(data, int(p))
		if size == 0 {
			return Nil
		}
		a.stats.BlocksScanned++
		if !allocated && size >= asize {
			return p
		}
		p += Ptr(size)
	}
}

// nextFit scans from the block after the rover to the epilogue, then wraps
// to the start of the heap and stops after the rover itself.
func (a *ImplicitAllocator) nextFit(asize int) Ptr {
	data := a.r.Bytes()
	rover := a.rover

	for p := a.nextBlock(rover); ; {
		size, allocated := format.ReadHeader(data, int(p))
		if size == 0 {
			break
		}
		a.stats.BlocksScanned++
		if !allocated && size >= asize {
			return p
		}
		p += Ptr(size)
	}

	for p := a.heapList; p <= rover; {
		size, allocated := format.ReadHeader(data, int(p))
		a.stats.BlocksScanned++
		if !allocated && size >= asize {
			return p
		}
		p += Ptr(size)
	}
	return Nil
}

// bestFit scans the whole heap for the free block with the smallest strictly
// positive leftover. Ties go to the lowest address. A block of exactly asize
// bytes leaves nothing over and is not a candidate.
func (a *ImplicitAllocator) bestFit(asize int) Ptr {
	data := a.r.Bytes()
	best, bestDiff := Nil, math.MaxInt
	for p := a.heapList; ; {
		size, allocated := format.ReadHeader(data, int(p))
		if size == 0 {
			return best
		}
		a.stats.BlocksScanned++
		if !allocated && size > asize && size-asize < bestDiff {
			best, bestDiff = p, size-asize
		}
		p += Ptr(size)
	}
}
