// Package testutil holds fixtures shared by the trace driver and command tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/arena/alloc"
)

// ShortTrace is a five-op trace small enough to reason about by hand:
// two 2040-byte blocks, one grown to 4000 bytes, both freed.
const ShortTrace = `20000
2
5
1
a 0 2040
a 1 2040
r 0 4000
f 1
f 0
`

// SetupHeap returns an initialized allocator over a fresh memory arena.
// The arena is closed when the test ends.
//
// Example:
//
//	a, r := testutil.SetupHeap(t, &alloc.Options{Strategy: alloc.BestFit})
func SetupHeap(t testing.TB, opts *alloc.Options) (*alloc.ImplicitAllocator, *arena.Arena) {
	t.Helper()
	r := arena.New(0)
	a := alloc.New(r, opts)
	if err := a.Init(); err != nil {
		t.Fatalf("Failed to init heap: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return a, r
}

// WriteTrace writes body to a file called name in a temp dir and returns its path.
func WriteTrace(t testing.TB, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write trace: %v", err)
	}
	return path
}

// TracePath resolves a trace path relative to the repository root.
// Calls t.Skip if the trace is not found.
func TracePath(t testing.TB, relativePath string) string {
	t.Helper()
	return resolveTestPath(t, relativePath)
}

// resolveTestPath attempts to find a testdata file by trying multiple path resolutions.
// This handles the fact that tests may be run from different working directories.
func resolveTestPath(t testing.TB, relativePath string) string {
	t.Helper()

	// Try paths in order of likelihood
	candidates := []string{
		relativePath,                  // Direct path (from repo root)
		"../../" + relativePath,       // From package two levels deep (e.g., internal/trace/)
		"../../../" + relativePath,    // From package three levels deep
		"../../../../" + relativePath, // From package four levels deep
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	t.Skipf("testdata file not found: %s", relativePath)
	return ""
}
