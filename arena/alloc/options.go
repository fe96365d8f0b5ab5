package alloc

import (
	"log/slog"
	"os"

	"github.com/joshuapare/heapkit/internal/format"
)

// Runtime allocation logging, controlled by the HEAP_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAP_LOG_ALLOC") != ""

// Options configures an allocator. A nil *Options selects DefaultOptions.
type Options struct {
	// Strategy is the free-list search policy.
	Strategy Strategy

	// ChunkSize is the minimum number of bytes requested from the region when
	// the heap must grow. Zero selects format.DefaultChunkSize. It is rounded
	// up to a multiple of 8.
	ChunkSize int

	// Realloc is the resize policy.
	Realloc ReallocPolicy

	// TrackLive keeps a side table of live pointers so that Free and Realloc
	// of an unknown or already freed pointer return ErrUnknownPointer instead
	// of corrupting the heap. Meant for tests and debugging.
	TrackLive bool

	// Dirty, if set, is told about every header and footer write.
	Dirty DirtyTracker

	// Logger receives growth and lifecycle events at debug level. Nil
	// discards them unless HEAP_LOG_ALLOC is set, in which case they go to stderr.
	Logger *slog.Logger
}

// DefaultOptions returns first-fit search, 4 KiB growth and copying realloc.
func DefaultOptions() Options {
	return Options{
		Strategy:  FirstFit,
		ChunkSize: format.DefaultChunkSize,
		Realloc:   ReallocCopy,
	}
}

// resolve fills defaults into a copy of opts.
func resolve(opts *Options) Options {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = format.DefaultChunkSize
	}
	o.ChunkSize = format.Align8(o.ChunkSize)
	if o.Logger == nil {
		o.Logger = defaultLogger()
	}
	return o
}

func defaultLogger() *slog.Logger {
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.DiscardHandler)
}
