package alloc

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/joshuapare/heapkit/arena/verify"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// maxBlockSize is the largest size a header word can encode. It also bounds
// the heap size.
const maxBlockSize int64 = math.MaxUint32 &^ format.AlignmentMask

// maxRequest is the largest payload Malloc will try to serve.
const maxRequest = maxBlockSize - format.BlockOverhead

// ImplicitAllocator is an implicit free-list allocator with boundary-tag
// coalescing.
type ImplicitAllocator struct {
	r    Region
	dt   DirtyTracker
	opts Options
	log  *slog.Logger

	initialized bool

	// heapList is the payload offset of the prologue block.
	heapList Ptr

	// rover is the block most recently returned by place. Next-fit resumes
	// scanning after it. It always points at a block start.
	rover Ptr

	// live is the debug side table of live pointers (nil unless TrackLive).
	live map[Ptr]struct{}

	stats Stats

	// Test hook: called with the byte count before every region growth (nil in production).
	onGrow func(int)
}

// New returns an allocator over r. Init must be called before use.
// A nil opts selects DefaultOptions.
func New(r Region, opts *Options) *ImplicitAllocator {
	o := resolve(opts)
	a := &ImplicitAllocator{
		r:    r,
		dt:   o.Dirty,
		opts: o,
		log:  o.Logger,
	}
	if o.TrackLive {
		a.live = make(map[Ptr]struct{})
	}
	return a
}

// Attach returns an initialized allocator over a region that already holds a
// heap, for example an arena file loaded with arena.Load. The heap is
// validated first; every allocated block is considered live.
func Attach(r Region, opts *Options) (*ImplicitAllocator, error) {
	if err := verify.AllInvariants(r.Bytes()); err != nil {
		return nil, fmt.Errorf("alloc: attach: %w", err)
	}
	a := New(r, opts)
	a.heapList = format.HeapListOffset
	a.rover = a.heapList
	a.initialized = true
	if a.live != nil {
		for b := range a.Blocks() {
			if b.Allocated {
				a.live[b.Ptr] = struct{}{}
			}
		}
	}
	a.log.Debug("heap attached", "heap", a.HeapSize(), "strategy", a.opts.Strategy)
	return a, nil
}

// Init lays out the padding word, prologue and epilogue, then grows the heap
// by ChunkSize to seed the first free block. The region must be empty.
func (a *ImplicitAllocator) Init() error {
	if a.initialized {
		return ErrAlreadyInitialized
	}
	if n := len(a.r.Bytes()); n != 0 {
		return fmt.Errorf("%w: break at %d", ErrRegionInUse, n)
	}
	if _, err := a.r.Grow(format.InitialSize); err != nil {
		return fmt.Errorf("%w: %w", ErrArenaExhausted, err)
	}

	format.PutU32(a.r.Bytes(), format.PaddingOffset, 0)
	a.heapList = format.HeapListOffset
	a.setBlock(a.heapList, format.PrologueSize, true)
	a.setEpilogue(format.InitialEpilogueOffset)
	a.rover = a.heapList

	if _, err := a.extend(a.opts.ChunkSize); err != nil {
		return err
	}
	a.initialized = true
	a.log.Debug("heap initialized",
		"strategy", a.opts.Strategy,
		"realloc", a.opts.Realloc,
		"chunk", a.opts.ChunkSize,
		"heap", a.HeapSize())
	return nil
}

// Malloc returns an 8-byte aligned payload of at least size bytes.
// A zero size returns (Nil, nil). When the region cannot grow, the error
// wraps ErrArenaExhausted and the heap is unchanged.
func (a *ImplicitAllocator) Malloc(size int) (Ptr, error) {
	if !a.initialized {
		return Nil, ErrNotInitialized
	}
	if size < 0 {
		return Nil, fmt.Errorf("%w: %d", ErrNegativeSize, size)
	}
	a.stats.AllocCalls++
	if size == 0 {
		return Nil, nil
	}
	p, err := a.malloc(size)
	if err != nil {
		return Nil, err
	}
	a.markLive(p)
	return p, nil
}

func (a *ImplicitAllocator) malloc(size int) (Ptr, error) {
	if int64(size) > maxRequest {
		return Nil, fmt.Errorf("%w: request of %d bytes", ErrArenaExhausted, size)
	}
	asize := format.AdjustedSize(size)

	if p := a.findFit(asize); p != Nil {
		a.stats.AllocFastPath++
		a.place(p, asize)
		return p, nil
	}

	p, err := a.extend(max(asize, a.opts.ChunkSize))
	if err != nil {
		return Nil, err
	}
	a.stats.AllocSlowPath++
	a.place(p, asize)
	return p, nil
}

// Free releases p and merges it with free neighbours. Free(Nil) is a no-op.
func (a *ImplicitAllocator) Free(p Ptr) error {
	if !a.initialized {
		return ErrNotInitialized
	}
	if p == Nil {
		return nil
	}
	size, err := a.checkPtr(p)
	if err != nil {
		return err
	}
	if err := a.unmarkLive(p); err != nil {
		return err
	}
	a.stats.FreeCalls++
	a.free(p, size)
	return nil
}

func (a *ImplicitAllocator) free(p Ptr, size int) {
	a.stats.BytesFreed += int64(size)
	a.setBlock(p, size, false)
	a.coalesce(p)
}

// Payload returns the committed payload of p: every byte between its header
// and footer. It returns nil for Nil or a pointer outside the heap.
func (a *ImplicitAllocator) Payload(p Ptr) []byte {
	if !a.initialized || p == Nil {
		return nil
	}
	size, err := a.checkPtr(p)
	if err != nil {
		return nil
	}
	b, _ := buf.Slice(a.r.Bytes(), int(p), format.PayloadSize(size))
	return b
}

// HeapSize returns the current size of the region.
func (a *ImplicitAllocator) HeapSize() int { return len(a.r.Bytes()) }

// Options returns the resolved options.
func (a *ImplicitAllocator) Options() Options { return a.opts }

// Check validates the whole heap. It is O(heap size) and meant for tests and
// debugging tools.
func (a *ImplicitAllocator) Check() error {
	if !a.initialized {
		return ErrNotInitialized
	}
	return verify.AllInvariants(a.r.Bytes())
}

// checkPtr validates that p is an aligned payload offset whose block lies
// between the prologue and the epilogue, and returns the block size.
func (a *ImplicitAllocator) checkPtr(p Ptr) (int, error) {
	data := a.r.Bytes()
	off := int(p)
	if off < format.FirstPayloadOffset || !format.IsAligned(off) || off > len(data)-format.WordSize {
		return 0, fmt.Errorf("%w: %d outside heap of %d bytes", ErrBadPointer, p, len(data))
	}
	size := format.BlockSize(format.ReadU32(data, format.HeaderOffset(off)))
	if size < format.MinBlockSize {
		return 0, fmt.Errorf("%w: %d has block size %d", ErrBadPointer, p, size)
	}
	// The block must end at or before the epilogue header.
	if _, err := buf.CheckRange(len(data)-format.WordSize, format.HeaderOffset(off), size); err != nil {
		return 0, fmt.Errorf("%w: %d: %w", ErrBadPointer, p, err)
	}
	return size, nil
}

// extend grows the region by at least bytes, turns the new space into a free
// block over the old epilogue, writes a new epilogue and merges with a free
// block that ended the heap. It returns the resulting free block.
func (a *ImplicitAllocator) extend(bytes int) (Ptr, error) {
	size := format.Align8(bytes)
	// No block may outgrow a header word, including one merged with the
	// free tail, so the heap as a whole is capped at maxBlockSize.
	if int64(a.HeapSize())+int64(size) > maxBlockSize {
		a.log.Debug("heap growth refused", "bytes", size, "heap", a.HeapSize(), "max", maxBlockSize)
		return Nil, fmt.Errorf("%w: heap of %d bytes cannot grow by %d past %d",
			ErrArenaExhausted, a.HeapSize(), size, maxBlockSize)
	}
	if a.onGrow != nil {
		a.onGrow(size)
	}

	prev, err := a.r.Grow(size)
	if err != nil {
		a.log.Debug("heap growth failed", "bytes", size, "heap", a.HeapSize(), "err", err)
		return Nil, fmt.Errorf("%w: %w", ErrArenaExhausted, err)
	}
	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(size)

	// The old epilogue header becomes the new block's header.
	p := Ptr(prev)
	a.setBlock(p, size, false)
	a.setEpilogue(format.HeaderOffset(prev + size))

	a.log.Debug("heap grown",
		"bytes", size,
		"break", prev+size,
		"grow_calls", a.stats.GrowCalls)
	return a.coalesce(p), nil
}

// coalesce merges the free block at p with a free successor, then with a free
// predecessor, and returns the start of the merged block. Neighbour addresses
// are recomputed from the current header after each step.
func (a *ImplicitAllocator) coalesce(p Ptr) Ptr {
	size := a.blockSize(p)

	if next := p + Ptr(size); !a.blockAllocated(next) {
		size += a.blockSize(next)
		a.setBlock(p, size, false)
		a.stats.CoalesceForward++
	}

	if !a.prevAllocated(p) {
		prev := a.prevBlock(p)
		size += int(p - prev)
		p = prev
		a.setBlock(p, size, false)
		a.stats.CoalesceBackward++
	}
	return p
}

// place marks asize bytes of the free block at p allocated, splitting off the
// remainder as a free block when it can stand on its own.
func (a *ImplicitAllocator) place(p Ptr, asize int) {
	csize := a.blockSize(p)
	if rem := csize - asize; rem >= format.MinBlockSize {
		a.setBlock(p, asize, true)
		a.setBlock(p+Ptr(asize), rem, false)
		a.stats.SplitCount++
		csize = asize
	} else {
		a.setBlock(p, csize, true)
	}
	a.stats.BytesAllocated += int64(csize)
	a.rover = p
}

func (a *ImplicitAllocator) markLive(p Ptr) {
	if a.live != nil {
		a.live[p] = struct{}{}
	}
}

func (a *ImplicitAllocator) unmarkLive(p Ptr) error {
	if a.live == nil {
		return nil
	}
	if _, ok := a.live[p]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPointer, p)
	}
	delete(a.live, p)
	return nil
}

// compile-time interface check
var _ Allocator = (*ImplicitAllocator)(nil)
