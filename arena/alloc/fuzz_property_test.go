package alloc

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

type liveBlock struct {
	size int
	seed byte
}

// Test_Fuzz_RandomOps_GuardInvariants drives every strategy and realloc
// policy with the same seeded sequence of malloc, free and realloc calls and
// validates the heap and every live payload after each step.
func Test_Fuzz_RandomOps_GuardInvariants(t *testing.T) {
	for _, s := range []Strategy{FirstFit, NextFit, BestFit} {
		for _, rp := range []ReallocPolicy{ReallocCopy, ReallocInPlace} {
			t.Run(fmt.Sprintf("%s/%s", s, rp), func(t *testing.T) {
				runRandomOps(t, &Options{Strategy: s, Realloc: rp, TrackLive: true}, 600)
			})
		}
	}
}

func runRandomOps(t *testing.T, opts *Options, steps int) {
	a, _ := newTestAllocator(t, opts)
	rng := rand.New(rand.NewSource(42)) // fixed seed for reproducibility
	live := make(map[Ptr]liveBlock)
	var order []Ptr

	pick := func() (int, Ptr) {
		i := rng.Intn(len(order))
		return i, order[i]
	}
	drop := func(i int) {
		order[i] = order[len(order)-1]
		order = order[:len(order)-1]
	}

	for step := range steps {
		switch op := rng.Intn(10); {
		case op < 5 || len(order) == 0:
			size := randomSize(rng)
			p, err := a.Malloc(size)
			require.NoError(t, err, "step %d: malloc(%d)", step, size)
			seed := byte(step)
			fill(a.Payload(p)[:size], seed)
			live[p] = liveBlock{size: size, seed: seed}
			order = append(order, p)

		case op < 8:
			i, p := pick()
			require.NoError(t, a.Free(p), "step %d: free(%d)", step, p)
			delete(live, p)
			drop(i)

		default:
			i, p := pick()
			old := live[p]
			size := randomSize(rng)
			np, err := a.Realloc(p, size)
			require.NoError(t, err, "step %d: realloc(%d, %d)", step, p, size)
			keep := min(old.size, size)
			require.Equal(t, -1, checkPattern(a.Payload(np)[:keep], old.seed),
				"step %d: realloc lost data", step)
			delete(live, p)
			seed := byte(step)
			fill(a.Payload(np)[:size], seed)
			live[np] = liveBlock{size: size, seed: seed}
			order[i] = np
		}

		assertHeapInvariants(t, a)
		assertLivePayloads(t, a, live, step)
	}
}

// randomSize mixes small and large requests so splitting and growth both occur.
func randomSize(rng *rand.Rand) int {
	if rng.Intn(8) == 0 {
		return 1 + rng.Intn(6000)
	}
	return 1 + rng.Intn(200)
}

func assertLivePayloads(t *testing.T, a *ImplicitAllocator, live map[Ptr]liveBlock, step int) {
	t.Helper()
	heap := a.HeapSize()
	ptrs := make([]Ptr, 0, len(live))
	for p, lb := range live {
		require.True(t, format.IsAligned(int(p)), "step %d: %d misaligned", step, p)
		_, err := buf.CheckRange(heap, int(p), lb.size)
		require.NoError(t, err, "step %d: %d+%d outside heap", step, p, lb.size)
		require.Equal(t, -1, checkPattern(a.Payload(p)[:lb.size], lb.seed),
			"step %d: payload at %d clobbered", step, p)
		ptrs = append(ptrs, p)
	}
	for i, p := range ptrs {
		for _, q := range ptrs[i+1:] {
			require.False(t, buf.Overlaps(int(p), live[p].size, int(q), live[q].size),
				"step %d: payloads %d and %d overlap", step, p, q)
		}
	}
}

// Test_Fuzz_Bump_NoOverlap checks the baseline allocator with the same pattern
// discipline.
func Test_Fuzz_Bump_NoOverlap(t *testing.T) {
	ba, _ := newTestBump(t, 0)
	rng := rand.New(rand.NewSource(7))
	live := make(map[Ptr]liveBlock)

	for step := range 300 {
		size := randomSize(rng)
		p, err := ba.Malloc(size)
		require.NoError(t, err)
		fill(ba.Payload(p)[:size], byte(step))
		live[p] = liveBlock{size: size, seed: byte(step)}
		if rng.Intn(3) == 0 {
			require.NoError(t, ba.Free(p))
		}
	}
	for p, lb := range live {
		require.Equal(t, -1, checkPattern(ba.Payload(p)[:lb.size], lb.seed))
	}
}
