package main

import (
	"fmt"
	"slices"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/arena/alloc"
	"github.com/joshuapare/heapkit/cmd/heapview/logger"
	"github.com/joshuapare/heapkit/internal/trace"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
)

// Options selects the allocator configuration the trace is replayed with.
type Options struct {
	Strategy  alloc.Strategy
	Realloc   alloc.ReallocPolicy
	ChunkSize int
	Limit     int
}

// Model is the main application model
type Model struct {
	source string // trace or heap file path
	opts   Options
	keys   KeyMap
	help   help.Model

	// Trace mode. tr is nil when a saved heap file is being inspected.
	tr     *trace.Trace
	region *arena.Arena
	a      *alloc.ImplicitAllocator
	player *trace.Player

	blocks  []alloc.Block // snapshot of the heap after the current op
	touched alloc.Ptr     // block handed out or resized by the last op
	lastOp  string
	stepErr error // correctness failure reported by the replay

	width    int
	height   int
	scroll   int
	showHelp bool

	// Status message for temporary feedback
	statusMessage string

	// copyFn writes to the system clipboard; tests replace it.
	copyFn func(string) error

	err error
}

// NewModel creates a model that replays the trace at tracePath.
func NewModel(tracePath string, opts Options) Model {
	m := newBaseModel(tracePath, opts)
	tr, err := trace.ParseFile(tracePath)
	if err != nil {
		m.err = err
		return m
	}
	m.tr = tr
	if err := m.restart(); err != nil {
		m.err = err
	}
	logger.L.Info("trace loaded", "path", tracePath, "ops", len(tr.Ops),
		"strategy", opts.Strategy, "realloc", opts.Realloc)
	return m
}

// NewHeapModel creates a read-only model over a saved heap file.
func NewHeapModel(heapPath string) Model {
	m := newBaseModel(heapPath, Options{})
	r, err := arena.Load(heapPath, 0)
	if err != nil {
		m.err = err
		return m
	}
	a, err := alloc.Attach(r, nil)
	if err != nil {
		_ = r.Close()
		m.err = err
		return m
	}
	m.region, m.a = r, a
	m.snapshot()
	logger.L.Info("heap loaded", "path", heapPath, "size", r.Size(), "blocks", len(m.blocks))
	return m
}

func newBaseModel(source string, opts Options) Model {
	return Model{
		source: source,
		opts:   opts,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		width:  defaultWidth,
		height: defaultHeight,
		copyFn: clipboard.WriteAll,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Close releases the arena.
func (m *Model) Close() error {
	if m.region == nil {
		return nil
	}
	return m.region.Close()
}

// restart builds a fresh heap positioned before the first op.
func (m *Model) restart() error {
	if m.region != nil {
		_ = m.region.Close()
	}
	m.region = arena.New(m.opts.Limit)
	m.a = alloc.New(m.region, &alloc.Options{
		Strategy:  m.opts.Strategy,
		Realloc:   m.opts.Realloc,
		ChunkSize: m.opts.ChunkSize,
		TrackLive: true,
		Logger:    logger.L,
	})
	if err := m.a.Init(); err != nil {
		return err
	}
	m.player = trace.NewPlayer(m.tr, m.a, &trace.Options{Check: trace.VerifyRegion(m.region)})
	m.stepErr = nil
	m.lastOp = ""
	m.touched = alloc.Nil
	m.snapshot()
	return nil
}

// seek moves to position n (number of executed ops). Moving backwards
// replays from the start.
func (m *Model) seek(n int) {
	if m.tr == nil {
		return
	}
	n = max(0, min(n, len(m.tr.Ops)))
	if n < m.player.Pos() || m.stepErr != nil && n != m.player.Pos() {
		if err := m.restart(); err != nil {
			m.err = err
			return
		}
	}
	for m.player.Pos() < n {
		op := m.tr.Ops[m.player.Pos()]
		if err := m.player.Step(); err != nil {
			m.stepErr = err
			logger.L.Warn("replay check failed", "op", m.player.Pos(), "err", err)
			break
		}
		m.lastOp = op.String()
		m.touched = m.player.Live(op.ID)
	}
	m.snapshot()
}

// pos returns the number of executed ops.
func (m Model) pos() int {
	if m.player == nil {
		return 0
	}
	return m.player.Pos()
}

// total returns the number of ops in the trace.
func (m Model) total() int {
	if m.tr == nil {
		return 0
	}
	return len(m.tr.Ops)
}

func (m *Model) snapshot() {
	m.blocks = slices.Collect(m.a.Blocks())
	m.scroll = min(m.scroll, max(0, len(m.blocks)-1))
}

// copyBlockMap puts a text dump of the current heap on the clipboard.
func (m *Model) copyBlockMap() {
	if err := m.copyFn(dumpBlocks(m.blocks, m.a.HeapSize())); err != nil {
		m.statusMessage = fmt.Sprintf("copy failed: %v", err)
		return
	}
	m.statusMessage = fmt.Sprintf("copied %d blocks", len(m.blocks))
}
