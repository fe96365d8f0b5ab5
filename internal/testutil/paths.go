package testutil

// Trace paths relative to the repository root.
// These constants should be used instead of hardcoding paths in test files.
const (
	// TraceShort1 is the classic short allocation trace: six blocks, no reallocs.
	TraceShort1 = "testdata/traces/short1-bal.rep"

	// TraceCoalescing frees neighbours in every order.
	TraceCoalescing = "testdata/traces/coalescing.rep"

	// TraceRealloc grows and shrinks one buffer next to a small block.
	TraceRealloc = "testdata/traces/realloc.rep"
)

// AllTraces lists every trace under testdata/traces.
var AllTraces = []string{TraceShort1, TraceCoalescing, TraceRealloc}
