// Package trace reads allocation traces and replays them against an
// allocator while checking every result.
//
// A trace file starts with four header numbers:
//
//	<suggested heap size>
//	<number of ids>
//	<number of ops>
//	<weight>
//
// followed by one op per line:
//
//	a <id> <bytes>   allocate bytes and remember the pointer under id
//	r <id> <bytes>   reallocate the block remembered under id
//	f <id>           free the block remembered under id
//
// Blank lines and lines starting with '#' are ignored anywhere in the file.
package trace

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joshuapare/heapkit/internal/mmfile"
)

// Kind is the type of a trace op.
type Kind byte

const (
	Alloc   Kind = 'a'
	Free    Kind = 'f'
	Realloc Kind = 'r'
)

// String returns the op letter used in trace files.
func (k Kind) String() string {
	switch k {
	case Alloc, Free, Realloc:
		return string(rune(k))
	default:
		return fmt.Sprintf("Kind(%d)", byte(k))
	}
}

// Op is one request of a trace.
type Op struct {
	Kind Kind
	ID   int
	Size int // unused for Free
	Line int // 1-based source line
}

// String renders the op the way it appears in a trace file.
func (o Op) String() string {
	if o.Kind == Free {
		return fmt.Sprintf("%s %d", o.Kind, o.ID)
	}
	return fmt.Sprintf("%s %d %d", o.Kind, o.ID, o.Size)
}

// Trace is a parsed trace file.
type Trace struct {
	Name          string // file base name, or "" when parsed from a reader
	SuggestedHeap int
	NumIDs        int
	Weight        int
	Ops           []Op
}

// ParseError reports a malformed trace line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace: line %d: %s", e.Line, e.Msg)
}

const (
	headerFields = 4
	maxLineSize  = 1 << 16

	// MaxIDs bounds the id count a trace header may declare. Replay keeps
	// one slot per id.
	MaxIDs = 1 << 20
)

// ParseFile parses the trace at path.
func ParseFile(path string) (*Trace, error) {
	data, release, err := mmfile.Map(path)
	if err != nil {
		return nil, err
	}
	defer release()

	tr, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tr.Name = filepath.Base(path)
	return tr, nil
}

// Parse reads a trace. Every id must be below the declared id count and the
// number of ops must match the declared op count.
func Parse(r io.Reader) (*Trace, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	var (
		tr      Trace
		header  [headerFields]int
		nHeader int
		numOps  int
		lineNo  int
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if nHeader < headerFields {
			v, err := strconv.Atoi(line)
			if err != nil || v < 0 {
				return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("bad header value %q", line)}
			}
			header[nHeader] = v
			nHeader++
			if nHeader == headerFields {
				tr.SuggestedHeap, tr.NumIDs, numOps, tr.Weight = header[0], header[1], header[2], header[3]
				if tr.NumIDs > MaxIDs {
					return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("id count %d exceeds %d", tr.NumIDs, MaxIDs)}
				}
				tr.Ops = make([]Op, 0, min(numOps, 1<<20))
			}
			continue
		}

		op, err := parseOp(line, lineNo, tr.NumIDs)
		if err != nil {
			return nil, err
		}
		tr.Ops = append(tr.Ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning trace: %w", err)
	}

	if nHeader < headerFields {
		return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("truncated header: %d of %d values", nHeader, headerFields)}
	}
	if len(tr.Ops) != numOps {
		return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("header declares %d ops, found %d", numOps, len(tr.Ops))}
	}
	return &tr, nil
}

func parseOp(line string, lineNo, numIDs int) (Op, error) {
	fields := strings.Fields(line)
	bad := func(format string, args ...any) (Op, error) {
		return Op{}, &ParseError{Line: lineNo, Msg: fmt.Sprintf(format, args...)}
	}
	if len(fields[0]) != 1 {
		return bad("unknown op %q", fields[0])
	}

	op := Op{Kind: Kind(fields[0][0]), Line: lineNo}
	want := 3
	switch op.Kind {
	case Alloc, Realloc:
	case Free:
		want = 2
	default:
		return bad("unknown op %q", fields[0])
	}
	if len(fields) != want {
		return bad("op %q takes %d arguments, got %d", fields[0], want-1, len(fields)-1)
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 || id >= numIDs {
		return bad("id %q outside [0, %d)", fields[1], numIDs)
	}
	op.ID = id

	if want == 3 {
		size, err := strconv.Atoi(fields[2])
		if err != nil || size < 0 {
			return bad("bad size %q", fields[2])
		}
		op.Size = size
	}
	return op, nil
}
