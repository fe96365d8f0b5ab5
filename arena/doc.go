// Package arena provides the growable, contiguous byte region that the heap
// allocator is built on.
//
// An Arena behaves like the classic sbrk interface: it has a break (the
// number of bytes handed out so far) that only moves forward through Grow,
// and a hard limit past which growth fails. Two backends are available:
//
//   - New returns a memory-backed arena. Growth may reallocate the backing
//     slice, so callers must re-read Bytes after every successful Grow.
//   - Open returns a file-backed arena. The file is mmapped read-write and
//     remapped on growth, which likewise invalidates earlier Bytes slices.
//
// Load maps an existing arena file without truncating it, which lets tools
// inspect a heap persisted by an earlier run.
//
// Arenas are not safe for concurrent use.
package arena
