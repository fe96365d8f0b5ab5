package trace

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshuapare/heapkit/arena/alloc"
	"github.com/joshuapare/heapkit/arena/verify"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// CheckError reports an allocator result that broke a correctness rule, or
// an allocator error, at op Index.
type CheckError struct {
	Op    Op
	Index int
	Msg   string
	Err   error
}

func (e *CheckError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("op %d (%s, line %d): %s: %v", e.Index, e.Op, e.Op.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("op %d (%s, line %d): %s", e.Index, e.Op, e.Op.Line, e.Msg)
}

func (e *CheckError) Unwrap() error { return e.Err }

// Options configures a replay. A nil *Options checks results only.
type Options struct {
	// Check, if set, runs after every op. A non-nil error stops the replay.
	Check func() error

	// Logger receives start and finish events at debug level.
	Logger *slog.Logger
}

// VerifyRegion returns a Check that runs the heap checker over r.
func VerifyRegion(r alloc.Region) func() error {
	return func() error { return verify.AllInvariants(r.Bytes()) }
}

// Result summarizes a completed replay.
type Result struct {
	Name        string        `json:"name"`
	Ops         int           `json:"ops"`
	PeakPayload int           `json:"peak_payload"`
	HeapSize    int           `json:"heap_size"`
	Utilization float64       `json:"utilization"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

// Replay runs every op of tr against a, which must already be initialized.
// It stops at the first failed check and honors ctx between ops.
func Replay(ctx context.Context, tr *Trace, a alloc.Allocator, opts *Options) (*Result, error) {
	var log *slog.Logger
	if opts != nil && opts.Logger != nil {
		log = opts.Logger
	} else {
		log = slog.New(slog.DiscardHandler)
	}
	log.Debug("replay start", "trace", tr.Name, "ops", len(tr.Ops), "ids", tr.NumIDs)

	pl := NewPlayer(tr, a, opts)
	start := time.Now()
	for !pl.Done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := pl.Step(); err != nil {
			log.Debug("replay failed", "trace", tr.Name, "err", err)
			return nil, err
		}
	}

	res := pl.Result()
	res.Elapsed = time.Since(start)
	log.Debug("replay done", "trace", tr.Name, "peak", res.PeakPayload,
		"heap", res.HeapSize, "util", res.Utilization, "elapsed", res.Elapsed)
	return res, nil
}

// Player replays a trace one op at a time.
type Player struct {
	tr    *Trace
	a     alloc.Allocator
	check func() error

	pos   int
	ptrs  []alloc.Ptr // by id
	sizes []int       // requested size by id
	live  int         // sum of live requested sizes
	peak  int
}

// NewPlayer returns a Player positioned before the first op.
func NewPlayer(tr *Trace, a alloc.Allocator, opts *Options) *Player {
	pl := &Player{
		tr:    tr,
		a:     a,
		ptrs:  make([]alloc.Ptr, tr.NumIDs),
		sizes: make([]int, tr.NumIDs),
	}
	if opts != nil {
		pl.check = opts.Check
	}
	return pl
}

// Pos returns the number of ops executed.
func (pl *Player) Pos() int { return pl.pos }

// Done reports whether every op has been executed.
func (pl *Player) Done() bool { return pl.pos >= len(pl.tr.Ops) }

// Live returns the pointer currently held under id, or alloc.Nil.
func (pl *Player) Live(id int) alloc.Ptr { return pl.ptrs[id] }

// LivePayload returns the sum of the requested sizes of all live blocks.
func (pl *Player) LivePayload() int { return pl.live }

// Result returns the statistics gathered so far. Elapsed is left zero.
func (pl *Player) Result() *Result {
	res := &Result{
		Name:        pl.tr.Name,
		Ops:         pl.pos,
		PeakPayload: pl.peak,
		HeapSize:    pl.a.HeapSize(),
	}
	if res.HeapSize > 0 {
		res.Utilization = float64(res.PeakPayload) / float64(res.HeapSize)
	}
	return res
}

// Step executes the next op and validates the allocator's answer.
func (pl *Player) Step() error {
	if pl.Done() {
		return nil
	}
	idx := pl.pos
	op := pl.tr.Ops[idx]
	fail := func(err error, format string, args ...any) error {
		return &CheckError{Op: op, Index: idx, Msg: fmt.Sprintf(format, args...), Err: err}
	}

	switch op.Kind {
	case Alloc:
		p, err := pl.a.Malloc(op.Size)
		if err != nil {
			return fail(err, "malloc failed")
		}
		if err := pl.admit(p, op); err != nil {
			return fail(nil, "%s", err)
		}
		if old := pl.ptrs[op.ID]; old != alloc.Nil {
			// id reused without a free; the old block leaks
			pl.live -= pl.sizes[op.ID]
		}
		pl.track(op, p)

	case Realloc:
		old, oldSize := pl.ptrs[op.ID], pl.sizes[op.ID]
		if old != alloc.Nil {
			pl.ptrs[op.ID] = alloc.Nil
		}
		p, err := pl.a.Realloc(old, op.Size)
		if err != nil {
			pl.ptrs[op.ID] = old
			return fail(err, "realloc failed")
		}
		pl.live -= oldSize
		pl.sizes[op.ID] = 0
		if op.Size == 0 {
			break
		}
		if err := pl.admit(p, op); err != nil {
			return fail(nil, "%s", err)
		}
		if keep := min(oldSize, op.Size); keep > 0 {
			if i := firstMismatch(pl.a.Payload(p)[:keep], op.ID); i >= 0 {
				return fail(nil, "realloc did not preserve byte %d of the old payload", i)
			}
		}
		pl.track(op, p)

	case Free:
		p := pl.ptrs[op.ID]
		if p != alloc.Nil {
			b := pl.a.Payload(p)
			if len(b) < pl.sizes[op.ID] {
				return fail(nil, "payload at %d shrank to %d bytes", p, len(b))
			}
			if i := firstMismatch(b[:pl.sizes[op.ID]], op.ID); i >= 0 {
				return fail(nil, "payload at %d corrupted at byte %d before free", p, i)
			}
		}
		if err := pl.a.Free(p); err != nil {
			return fail(err, "free failed")
		}
		pl.live -= pl.sizes[op.ID]
		pl.ptrs[op.ID], pl.sizes[op.ID] = alloc.Nil, 0
	}

	pl.pos++
	if pl.check != nil {
		if err := pl.check(); err != nil {
			return &CheckError{Op: op, Index: idx, Msg: "heap check failed", Err: err}
		}
	}
	return nil
}

// admit validates a fresh payload: non-nil, aligned, inside the heap, large
// enough, and disjoint from every other live payload.
func (pl *Player) admit(p alloc.Ptr, op Op) error {
	if op.Size == 0 {
		if p != alloc.Nil {
			return fmt.Errorf("zero-byte request returned %d, want nil", p)
		}
		return nil
	}
	if p == alloc.Nil {
		return fmt.Errorf("allocator returned nil for %d bytes", op.Size)
	}
	if !format.IsAligned(int(p)) {
		return fmt.Errorf("payload %d is not %d-byte aligned", p, format.Alignment)
	}
	if _, err := buf.CheckRange(pl.a.HeapSize(), int(p), op.Size); err != nil {
		return fmt.Errorf("payload %d+%d lies outside the heap of %d bytes: %w", p, op.Size, pl.a.HeapSize(), err)
	}
	if n := len(pl.a.Payload(p)); n < op.Size {
		return fmt.Errorf("payload %d holds %d bytes, want %d", p, n, op.Size)
	}
	for id, q := range pl.ptrs {
		if q == alloc.Nil || id == op.ID && op.Kind == Alloc {
			continue
		}
		if buf.Overlaps(int(p), op.Size, int(q), pl.sizes[id]) {
			return fmt.Errorf("payload %d+%d overlaps id %d at %d+%d", p, op.Size, id, q, pl.sizes[id])
		}
	}
	return nil
}

// track records p under op.ID and stamps its payload with the id pattern.
func (pl *Player) track(op Op, p alloc.Ptr) {
	pl.ptrs[op.ID], pl.sizes[op.ID] = p, op.Size
	if p == alloc.Nil {
		return
	}
	stamp(pl.a.Payload(p)[:op.Size], op.ID)
	pl.live += op.Size
	pl.peak = max(pl.peak, pl.live)
}

func patternByte(id, i int) byte { return byte(id*31 + i) }

func stamp(b []byte, id int) {
	for i := range b {
		b[i] = patternByte(id, i)
	}
}

func firstMismatch(b []byte, id int) int {
	for i := range b {
		if b[i] != patternByte(id, i) {
			return i
		}
	}
	return -1
}
