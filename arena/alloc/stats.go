package alloc

import (
	"iter"

	"github.com/joshuapare/heapkit/internal/format"
)

// Stats holds allocator counters for testing and instrumentation.
type Stats struct {
	AllocCalls       int   // Total Malloc() calls, including zero-size ones
	AllocFastPath    int   // Allocations served without growing the region
	AllocSlowPath    int   // Allocations that required growth
	FreeCalls        int   // Total successful Free() calls
	ReallocCalls     int   // Realloc() calls that resized a live block
	ReallocInPlace   int   // Reallocs served without moving the block
	GrowCalls        int   // Number of region growths
	GrowBytes        int64 // Total bytes added to the region
	BytesAllocated   int64 // Total block bytes handed out (including header and footer)
	BytesFreed       int64 // Total block bytes returned
	SplitCount       int   // Number of block splits
	CoalesceForward  int   // Merges with a successor
	CoalesceBackward int   // Merges with a predecessor
	BlocksScanned    int   // Blocks visited by fit searches
}

// Stats returns a snapshot of the counters.
func (a *ImplicitAllocator) Stats() Stats { return a.stats }

// HeapStats summarizes a walk of the implicit list.
type HeapStats struct {
	HeapSize        int // Bytes spanned by the region, sentinels included
	Blocks          int // Blocks between prologue and epilogue
	FreeBlocks      int
	AllocatedBlocks int
	FreeBytes       int // Total size of free blocks
	AllocatedBytes  int // Total size of allocated blocks
	PayloadBytes    int // Usable payload of allocated blocks
	LargestFree     int // Size of the largest free block
}

// Utilization returns the share of the heap occupied by allocated payloads.
func (s HeapStats) Utilization() float64 {
	if s.HeapSize == 0 {
		return 0
	}
	return float64(s.PayloadBytes) / float64(s.HeapSize)
}

// Fragmentation returns 1 - largest free block / free bytes: zero when all
// free space is one block, approaching one as it splinters.
func (s HeapStats) Fragmentation() float64 {
	if s.FreeBytes == 0 {
		return 0
	}
	return 1 - float64(s.LargestFree)/float64(s.FreeBytes)
}

// HeapStats walks the heap. It is O(number of blocks).
func (a *ImplicitAllocator) HeapStats() HeapStats {
	s := HeapStats{HeapSize: a.HeapSize()}
	for b := range a.Blocks() {
		s.Blocks++
		if b.Allocated {
			s.AllocatedBlocks++
			s.AllocatedBytes += b.Size
			s.PayloadBytes += b.PayloadSize()
		} else {
			s.FreeBlocks++
			s.FreeBytes += b.Size
			s.LargestFree = max(s.LargestFree, b.Size)
		}
	}
	return s
}

// Blocks iterates over the blocks between the prologue and the epilogue in
// address order. The heap must not be modified during iteration.
func (a *ImplicitAllocator) Blocks() iter.Seq[Block] {
	return func(yield func(Block) bool) {
		if !a.initialized {
			return
		}
		data := a.r.Bytes()
		for p := a.heapList + format.PrologueSize; ; {
			size, allocated := format.ReadHeader(data, int(p))
			if size == 0 {
				return
			}
			if !yield(Block{Ptr: p, Size: size, Allocated: allocated}) {
				return
			}
			p += Ptr(size)
		}
	}
}
