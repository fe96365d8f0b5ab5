package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/arena/alloc"
	"github.com/joshuapare/heapkit/arena/dirty"
	"github.com/joshuapare/heapkit/cmd/heapctl/logger"
)

var (
	allocatorFlag string
	strategyFlag  string
	reallocFlag   string
	chunkFlag     int
	limitFlag     int
	fileFlag      string
	trackLiveFlag bool
)

func addHeapFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&allocatorFlag, "allocator", "implicit", "Allocator: implicit or bump")
	f.StringVar(&strategyFlag, "strategy", "first", "Free-list search: first, next or best")
	f.StringVar(&reallocFlag, "realloc", "copy", "Realloc policy: copy or inplace")
	f.IntVar(&chunkFlag, "chunk", 0, "Heap growth increment in bytes (default 4096)")
	f.IntVar(&limitFlag, "limit", arena.DefaultLimit, "Maximum heap size in bytes")
	f.StringVar(&fileFlag, "file", "", "Back the heap with a memory-mapped file at this path")
	f.BoolVar(&trackLiveFlag, "track-live", false, "Reject frees of unknown pointers")
}

type heapConfig struct {
	Bump      bool
	Strategy  alloc.Strategy
	Realloc   alloc.ReallocPolicy
	Chunk     int
	Limit     int
	File      string
	TrackLive bool
}

func configFromFlags() (heapConfig, error) {
	cfg := heapConfig{Chunk: chunkFlag, Limit: limitFlag, File: fileFlag, TrackLive: trackLiveFlag}

	switch strings.ToLower(allocatorFlag) {
	case "implicit", "":
	case "bump":
		cfg.Bump = true
	default:
		return cfg, fmt.Errorf("unknown allocator %q (want implicit or bump)", allocatorFlag)
	}

	var err error
	if cfg.Strategy, err = alloc.ParseStrategy(strategyFlag); err != nil {
		return cfg, err
	}
	if cfg.Realloc, err = alloc.ParseReallocPolicy(reallocFlag); err != nil {
		return cfg, err
	}
	if cfg.Chunk < 0 {
		return cfg, fmt.Errorf("--chunk must not be negative, got %d", cfg.Chunk)
	}
	if cfg.Limit <= 0 {
		return cfg, fmt.Errorf("--limit must be positive, got %d", cfg.Limit)
	}
	return cfg, nil
}

// label names the allocator configuration in reports.
func (c heapConfig) label() string {
	if c.Bump {
		return "bump"
	}
	return fmt.Sprintf("implicit/%s/%s", c.Strategy, c.Realloc)
}

// heap owns one arena and the allocator currently running on it.
type heap struct {
	cfg    heapConfig
	region *arena.Arena
	dt     *dirty.Tracker

	impl *alloc.ImplicitAllocator // nil for the bump allocator
	a    alloc.Allocator
}

func openHeap(cfg heapConfig) (*heap, error) {
	h := &heap{cfg: cfg}
	if cfg.File == "" {
		h.region = arena.New(cfg.Limit)
		return h, nil
	}

	r, err := arena.Open(cfg.File, cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to open heap file: %w", err)
	}
	h.region = r
	h.dt = dirty.NewTracker(r)
	logger.L.Debug("heap file opened", "path", cfg.File, "limit", cfg.Limit)
	return h, nil
}

// start resets the arena and initializes a fresh allocator on it.
func (h *heap) start() error {
	if err := h.region.Reset(); err != nil {
		return err
	}
	if h.dt != nil {
		h.dt.Reset()
	}

	opts := &alloc.Options{
		Strategy:  h.cfg.Strategy,
		ChunkSize: h.cfg.Chunk,
		Realloc:   h.cfg.Realloc,
		TrackLive: h.cfg.TrackLive,
		Logger:    logger.L,
	}
	if h.dt != nil {
		opts.Dirty = h.dt
	}

	if h.cfg.Bump {
		h.impl = nil
		h.a = alloc.NewBump(h.region, opts)
	} else {
		h.impl = alloc.New(h.region, opts)
		h.a = h.impl
	}
	return h.a.Init()
}

// flush persists header writes of a file-backed heap.
func (h *heap) flush(ctx context.Context) error {
	if h.dt == nil {
		return nil
	}
	if err := h.dt.Flush(ctx, dirty.FlushAuto); err != nil {
		return fmt.Errorf("failed to flush heap file: %w", err)
	}
	flushes, pages := h.dt.Stats()
	logger.L.Debug("heap file flushed", "flushes", flushes, "pages", pages)
	return nil
}

func (h *heap) close() error {
	return h.region.Close()
}
