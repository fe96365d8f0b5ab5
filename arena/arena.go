package arena

import (
	"fmt"
	"os"

	"github.com/joshuapare/heapkit/internal/buf"
)

// DefaultLimit is the default maximum arena size (20 MiB).
const DefaultLimit = 20 * 1 << 20

// Arena is a contiguous region with a monotonically growing break.
type Arena struct {
	f     *os.File
	path  string
	data  []byte // backing storage; len(data) >= brk
	brk   int
	limit int

	closed bool

	m mapping // platform mapping state, zero for memory-backed arenas
}

// New returns a memory-backed arena that can grow up to limit bytes.
// A non-positive limit selects DefaultLimit.
func New(limit int) *Arena {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Arena{limit: limit}
}

// Bytes returns the region [0, break). The returned slice is invalidated by
// the next Grow or Reset; re-read it afterwards.
func (a *Arena) Bytes() []byte {
	if a == nil {
		return nil
	}
	return a.data[:a.brk:a.brk]
}

// Size returns the current break.
func (a *Arena) Size() int { return a.brk }

// Limit returns the maximum size the arena may grow to.
func (a *Arena) Limit() int { return a.limit }

// Path returns the backing file path, or "" for memory-backed arenas.
func (a *Arena) Path() string { return a.path }

// Mapped reports whether the arena is backed by a memory-mapped file.
func (a *Arena) Mapped() bool { return a.f != nil }

// FD returns the backing file descriptor, or -1 for memory-backed arenas.
func (a *Arena) FD() int {
	if a == nil || a.f == nil {
		return -1
	}
	return int(a.f.Fd())
}

// Grow extends the break by delta bytes and returns the previous break.
// New bytes of a memory-backed arena and of a freshly extended file are zero.
// A delta of zero returns the current break without side effects.
func (a *Arena) Grow(delta int) (int, error) {
	if a == nil || a.closed {
		return 0, ErrClosed
	}
	if delta < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeGrow, delta)
	}
	prev := a.brk
	if delta == 0 {
		return prev, nil
	}
	end, ok := buf.AddOverflowSafe(prev, delta)
	if !ok || end > a.limit {
		return 0, fmt.Errorf("%w: break %d + %d exceeds limit %d", ErrExhausted, prev, delta, a.limit)
	}

	if a.f != nil {
		if err := a.remap(end); err != nil {
			return 0, err
		}
	} else if end > len(a.data) {
		a.growMemory(end)
	}

	a.brk = end
	return prev, nil
}

// growMemory reallocates the backing slice with amortized doubling, never
// past the limit.
func (a *Arena) growMemory(need int) {
	newCap := max(2*len(a.data), need)
	newCap = min(newCap, a.limit)
	data := make([]byte, newCap)
	copy(data, a.data[:a.brk])
	a.data = data
}

// Reset moves the break back to zero. File-backed arenas are truncated.
func (a *Arena) Reset() error {
	if a == nil || a.closed {
		return ErrClosed
	}
	if a.f != nil {
		if err := a.unmap(); err != nil {
			return err
		}
		if err := a.f.Truncate(0); err != nil {
			return fmt.Errorf("arena: truncate on reset: %w", err)
		}
	} else {
		clear(a.data[:a.brk])
	}
	a.brk = 0
	return nil
}

// Close releases the mapping and the backing file. Closing twice is a no-op.
// An arena closed by a failed remap still releases its file here.
func (a *Arena) Close() error {
	if a == nil || (a.closed && a.f == nil) {
		return nil
	}
	a.closed = true
	var err error
	if a.f != nil {
		err = a.unmap()
		if cerr := a.f.Close(); err == nil {
			err = cerr
		}
		a.f = nil
	}
	a.data = nil
	return err
}
