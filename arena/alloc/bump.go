package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// bumpHeaderSize is the size word stored in front of every bump payload.
const bumpHeaderSize = format.DoubleWordSize

// BumpAllocator is the naive baseline: every Malloc moves the region break
// forward and Free does nothing. Each payload is preceded by an 8-byte word
// holding the requested size, which Realloc uses to know how much to copy.
//
// It never reuses memory, so its utilization is the lower bound the implicit
// allocator is measured against.
type BumpAllocator struct {
	r   Region
	dt  DirtyTracker
	log *slog.Logger

	initialized bool
	stats       Stats
}

// NewBump returns a bump allocator over r. Only opts.Dirty and opts.Logger
// are used.
func NewBump(r Region, opts *Options) *BumpAllocator {
	o := resolve(opts)
	return &BumpAllocator{r: r, dt: o.Dirty, log: o.Logger}
}

// Init marks the allocator ready. The region is not touched.
func (ba *BumpAllocator) Init() error {
	if ba.initialized {
		return ErrAlreadyInitialized
	}
	if n := len(ba.r.Bytes()); !format.IsAligned(n) {
		return fmt.Errorf("%w: break %d is not 8-byte aligned", ErrRegionInUse, n)
	}
	ba.initialized = true
	return nil
}

// Malloc carves Align8(size)+8 bytes off the break.
func (ba *BumpAllocator) Malloc(size int) (Ptr, error) {
	if !ba.initialized {
		return Nil, ErrNotInitialized
	}
	if size < 0 {
		return Nil, fmt.Errorf("%w: %d", ErrNegativeSize, size)
	}
	ba.stats.AllocCalls++
	if size == 0 {
		return Nil, nil
	}
	if int64(size) > maxRequest {
		return Nil, fmt.Errorf("%w: request of %d bytes", ErrArenaExhausted, size)
	}

	need := format.Align8(size + bumpHeaderSize)
	prev, err := ba.r.Grow(need)
	if err != nil {
		ba.log.Debug("bump growth failed", "bytes", need, "err", err)
		return Nil, fmt.Errorf("%w: %w", ErrArenaExhausted, err)
	}
	ba.stats.AllocSlowPath++
	ba.stats.GrowCalls++
	ba.stats.GrowBytes += int64(need)
	ba.stats.BytesAllocated += int64(need)

	format.PutU64(ba.r.Bytes(), prev, uint64(size))
	if ba.dt != nil {
		ba.dt.Add(prev, bumpHeaderSize)
	}
	return Ptr(prev + bumpHeaderSize), nil
}

// Free is a no-op.
func (ba *BumpAllocator) Free(p Ptr) error {
	if !ba.initialized {
		return ErrNotInitialized
	}
	if p != Nil {
		ba.stats.FreeCalls++
	}
	return nil
}

// Realloc allocates a new payload and copies min(old size, size) bytes.
func (ba *BumpAllocator) Realloc(p Ptr, size int) (Ptr, error) {
	if !ba.initialized {
		return Nil, ErrNotInitialized
	}
	if p == Nil {
		return ba.Malloc(size)
	}
	if size == 0 {
		return Nil, ba.Free(p)
	}
	old, err := ba.storedSize(p)
	if err != nil {
		return Nil, err
	}
	ba.stats.ReallocCalls++

	np, err := ba.Malloc(size)
	if err != nil {
		return Nil, err
	}
	data := ba.r.Bytes()
	n := min(old, size)
	copy(data[int(np):int(np)+n], data[int(p):int(p)+n])
	return np, ba.Free(p)
}

// Payload returns the committed payload of p (its size rounded up to 8).
func (ba *BumpAllocator) Payload(p Ptr) []byte {
	if p == Nil {
		return nil
	}
	size, err := ba.storedSize(p)
	if err != nil {
		return nil
	}
	b, _ := buf.Slice(ba.r.Bytes(), int(p), format.Align8(size))
	return b
}

// HeapSize returns the current size of the region.
func (ba *BumpAllocator) HeapSize() int { return len(ba.r.Bytes()) }

// Stats returns a snapshot of the counters.
func (ba *BumpAllocator) Stats() Stats { return ba.stats }

func (ba *BumpAllocator) storedSize(p Ptr) (int, error) {
	data := ba.r.Bytes()
	hdr := int(p) - bumpHeaderSize
	if hdr < 0 || !format.IsAligned(int(p)) || !buf.Has(data, hdr, bumpHeaderSize) {
		return 0, fmt.Errorf("%w: %d outside heap of %d bytes", ErrBadPointer, p, len(data))
	}
	size := format.ReadU64(data, hdr)
	if size > uint64(maxRequest) {
		return 0, fmt.Errorf("%w: %d has stored size %d", ErrBadPointer, p, size)
	}
	if _, err := buf.CheckRange(len(data), int(p), format.Align8(int(size))); err != nil {
		return 0, fmt.Errorf("%w: %d: %w", ErrBadPointer, p, err)
	}
	return int(size), nil
}

// compile-time interface check
var _ Allocator = (*BumpAllocator)(nil)
