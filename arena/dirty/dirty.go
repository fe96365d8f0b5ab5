package dirty

import (
	"cmp"
	"context"
	"slices"
)

const (
	// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
	defaultRangeCapacity = 64

	// standardPageSize is the typical OS page size (4KB).
	standardPageSize = 4096
)

// FlushMode controls durability guarantees of Flush.
type FlushMode int

const (
	// FlushAuto msyncs dirty pages and then fdatasyncs the file.
	FlushAuto FlushMode = iota

	// FlushDataOnly only msyncs dirty pages.
	// The caller is responsible for syncing the file descriptor later.
	FlushDataOnly

	// FlushFull msyncs dirty pages and fdatasyncs with F_FULLFSYNC on macOS.
	FlushFull
)

// String returns the flag spelling of the mode.
func (m FlushMode) String() string {
	switch m {
	case FlushAuto:
		return "auto"
	case FlushDataOnly:
		return "data"
	case FlushFull:
		return "full"
	default:
		return "unknown"
	}
}

// Range represents a dirty byte range (arena offsets).
type Range struct {
	Off int64 // Offset in the arena
	Len int64 // Length in bytes
}

// Tracker accumulates dirty ranges and flushes them efficiently.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	target   Target
	ranges   []Range // Dirty ranges (coalesced at flush time)
	pageSize int64

	flushes int
	pages   int64
}

// NewTracker creates a dirty tracker for the given arena.
func NewTracker(target Target) *Tracker {
	return &Tracker{
		target:   target,
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: standardPageSize,
	}
}

// Add records a dirty range.
//
// The range will be page-aligned and coalesced with other ranges at flush time.
// It only appends to a slice, so it is cheap enough for the allocator hot path.
func (t *Tracker) Add(off, length int) {
	if length <= 0 {
		return
	}
	// Consecutive header/footer writes usually land on the same page; fold
	// them into the previous range instead of growing the slice.
	if n := len(t.ranges); n > 0 {
		last := &t.ranges[n-1]
		if int64(off) >= last.Off && int64(off+length) <= last.Off+last.Len {
			return
		}
		if last.Off/t.pageSize == int64(off)/t.pageSize &&
			(last.Off+last.Len-1)/t.pageSize == int64(off+length-1)/t.pageSize {
			end := max(last.Off+last.Len, int64(off+length))
			last.Off = min(last.Off, int64(off))
			last.Len = end - last.Off
			return
		}
	}
	t.ranges = append(t.ranges, Range{
		Off: int64(off),
		Len: int64(length),
	})
}

// Pending reports the number of recorded, not yet flushed ranges.
func (t *Tracker) Pending() int { return len(t.ranges) }

// Flush persists all dirty ranges and clears them.
//
// For a memory-backed target the ranges are dropped without any I/O.
// The context is checked before msync and again before the file sync; if
// cancelled in between, some pages may already be on disk.
func (t *Tracker) Flush(ctx context.Context, mode FlushMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(t.ranges) == 0 {
		return nil
	}

	fd := t.target.FD()
	data := t.target.Bytes()
	if fd < 0 || len(data) == 0 {
		t.Reset()
		return nil
	}

	coalesced := t.coalesce()
	if err := flushRanges(data, coalesced); err != nil {
		return err
	}
	t.flushes++
	for _, r := range coalesced {
		t.pages += r.Len / t.pageSize
	}
	t.Reset()

	if err := ctx.Err(); err != nil {
		return err
	}
	if mode == FlushDataOnly {
		return nil
	}
	return fdatasync(fd, mode == FlushFull)
}

// Stats returns the number of completed flushes and pages written by them.
func (t *Tracker) Stats() (flushes int, pages int64) {
	return t.flushes, t.pages
}

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// DebugRanges returns a copy of the raw, uncoalesced ranges.
func (t *Tracker) DebugRanges() []Range {
	return slices.Clone(t.ranges)
}

// DebugCoalescedRanges returns the page-aligned, sorted, merged ranges that
// the next Flush would write.
func (t *Tracker) DebugCoalescedRanges() []Range {
	return t.coalesce()
}

// coalesce page-aligns all ranges, sorts them, and merges overlapping/adjacent ranges.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize

		end := r.Off + r.Len
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}

		aligned[i] = Range{Off: start, Len: end - start}
	}

	slices.SortFunc(aligned, func(a, b Range) int {
		return cmp.Compare(a.Off, b.Off)
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.Off+current.Len {
			end := max(current.Off+current.Len, next.Off+next.Len)
			current.Len = end - current.Off
		} else {
			merged = append(merged, current)
			current = next
		}
	}
	return append(merged, current)
}

// clampRange limits r to a buffer of length n, reporting false when nothing remains.
func clampRange(r Range, n int) (start, end int, ok bool) {
	start = int(r.Off)
	end = min(int(r.Off+r.Len), n)
	return start, end, start < end
}
