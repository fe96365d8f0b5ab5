// Package dirty tracks which bytes of an arena the allocator has modified and
// flushes them to stable storage when the arena is backed by a mapped file.
//
// # Usage
//
//	a, _ := arena.Open("heap.bin", 0)
//	dt := dirty.NewTracker(a)
//	h := alloc.New(a, &alloc.Options{Dirty: dt})
//	...
//	err := dt.Flush(ctx, dirty.FlushAuto)
//
// # Page-Level Granularity
//
// Ranges are rounded out to 4KB page boundaries, sorted and merged at flush
// time. A 4-byte header write marks its whole page dirty.
//
// For memory-backed arenas (FD() < 0) Flush only discards the recorded ranges.
package dirty
