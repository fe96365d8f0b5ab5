package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

// threeBlocks allocates three adjacent 112-byte blocks at 16, 128 and 240,
// followed by a 3760-byte free tail at 352.
func threeBlocks(t *testing.T) (*ImplicitAllocator, Ptr, Ptr, Ptr) {
	t.Helper()
	a, _ := newTestAllocator(t, nil)
	x := mustMalloc(t, a, 100)
	y := mustMalloc(t, a, 100)
	z := mustMalloc(t, a, 100)
	require.Equal(t, []Ptr{16, 128, 240}, []Ptr{x, y, z})
	return a, x, y, z
}

func TestCoalesce_NoFreeNeighbours(t *testing.T) {
	a, _, y, _ := threeBlocks(t)
	require.NoError(t, a.Free(y))

	blocks := freeBlocks(a)
	require.Len(t, blocks, 2)
	assert.Equal(t, Block{Ptr: y, Size: 112}, blocks[0])
	st := a.Stats()
	assert.Zero(t, st.CoalesceForward)
	assert.Zero(t, st.CoalesceBackward)
	assertHeapInvariants(t, a)
}

func TestCoalesce_Successor(t *testing.T) {
	a, _, _, z := threeBlocks(t)
	require.NoError(t, a.Free(z))

	blocks := freeBlocks(a)
	require.Len(t, blocks, 1)
	assert.Equal(t, Block{Ptr: z, Size: 112 + 3760}, blocks[0])
	assert.Equal(t, 1, a.Stats().CoalesceForward)
	assertHeapInvariants(t, a)
}

func TestCoalesce_Predecessor(t *testing.T) {
	a, x, y, _ := threeBlocks(t)
	require.NoError(t, a.Free(x))
	require.NoError(t, a.Free(y))

	blocks := freeBlocks(a)
	require.Len(t, blocks, 2)
	assert.Equal(t, Block{Ptr: x, Size: 224}, blocks[0])
	assert.Equal(t, 1, a.Stats().CoalesceBackward)
	assertHeapInvariants(t, a)
}

func TestCoalesce_BothNeighbours(t *testing.T) {
	a, x, y, z := threeBlocks(t)
	require.NoError(t, a.Free(x))
	require.NoError(t, a.Free(z)) // merges with the tail
	require.NoError(t, a.Free(y)) // merges with both

	blocks := freeBlocks(a)
	require.Len(t, blocks, 1)
	assert.Equal(t, Block{Ptr: x, Size: format.DefaultChunkSize}, blocks[0])

	st := a.Stats()
	assert.Equal(t, 2, st.CoalesceForward)
	assert.Equal(t, 1, st.CoalesceBackward)
	assertHeapInvariants(t, a)
}

func TestCoalesce_ExtendMergesWithTrailingFreeBlock(t *testing.T) {
	a, _, _, z := threeBlocks(t)
	require.NoError(t, a.Free(z))
	grows := setupGrowCounter(a)

	// 5000 does not fit the 3872-byte tail; the new chunk is merged with it.
	p := mustMalloc(t, a, 5000)
	assert.Equal(t, []int{5008}, *grows)
	assert.Equal(t, z, p)
	assertHeapInvariants(t, a)
}

func TestCoalesce_HeapStats(t *testing.T) {
	a, x, _, z := threeBlocks(t)
	require.NoError(t, a.Free(x))

	s := a.HeapStats()
	assert.Equal(t, format.InitialSize+format.DefaultChunkSize, s.HeapSize)
	assert.Equal(t, 4, s.Blocks)
	assert.Equal(t, 2, s.AllocatedBlocks)
	assert.Equal(t, 2, s.FreeBlocks)
	assert.Equal(t, 112+3760, s.FreeBytes)
	assert.Equal(t, 224, s.AllocatedBytes)
	assert.Equal(t, 208, s.PayloadBytes)
	assert.Equal(t, 3760, s.LargestFree)
	assert.InDelta(t, 208.0/4112.0, s.Utilization(), 1e-9)
	assert.InDelta(t, 1-3760.0/3872.0, s.Fragmentation(), 1e-9)

	require.NoError(t, a.Free(z))
	s = a.HeapStats()
	assert.InDelta(t, 1-3872.0/3984.0, s.Fragmentation(), 1e-9)
}

func TestHeapStats_Empty(t *testing.T) {
	var s HeapStats
	assert.Zero(t, s.Utilization())
	assert.Zero(t, s.Fragmentation())
}
