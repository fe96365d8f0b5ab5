package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/arena"
)

func newTestBump(t *testing.T, limit int) (*BumpAllocator, *arena.Arena) {
	t.Helper()
	r := arena.New(limit)
	ba := NewBump(r, nil)
	require.NoError(t, ba.Init())
	return ba, r
}

func TestBump_MallocCarvesFromBreak(t *testing.T) {
	ba, r := newTestBump(t, 0)

	p := mustMalloc(t, ba, 10)
	q := mustMalloc(t, ba, 1)
	assert.Equal(t, Ptr(8), p)
	assert.Equal(t, Ptr(24+8), q)
	assert.Equal(t, 24+16, r.Size())
	assert.Len(t, ba.Payload(p), 16)
	assert.Len(t, ba.Payload(q), 8)
	assert.Equal(t, 2, ba.Stats().GrowCalls)
}

func TestBump_FreeNeverReuses(t *testing.T) {
	ba, _ := newTestBump(t, 0)
	p := mustMalloc(t, ba, 100)
	require.NoError(t, ba.Free(p))
	q := mustMalloc(t, ba, 100)
	assert.NotEqual(t, p, q)
	assert.Equal(t, 1, ba.Stats().FreeCalls)
}

func TestBump_Realloc(t *testing.T) {
	ba, _ := newTestBump(t, 0)
	p := mustMalloc(t, ba, 30)
	fill(ba.Payload(p)[:30], 7)

	np, err := ba.Realloc(p, 100)
	require.NoError(t, err)
	assert.Greater(t, np, p)
	assert.Equal(t, -1, checkPattern(ba.Payload(np)[:30], 7))

	sp, err := ba.Realloc(np, 5)
	require.NoError(t, err)
	assert.Equal(t, -1, checkPattern(ba.Payload(sp)[:5], 7))

	zp, err := ba.Realloc(sp, 0)
	require.NoError(t, err)
	assert.Equal(t, Nil, zp)

	mp, err := ba.Realloc(Nil, 8)
	require.NoError(t, err)
	assert.NotEqual(t, Nil, mp)
}

func TestBump_Exhausted(t *testing.T) {
	ba, r := newTestBump(t, 64)
	mustMalloc(t, ba, 40)
	_, err := ba.Malloc(40)
	require.ErrorIs(t, err, ErrArenaExhausted)
	require.ErrorIs(t, err, arena.ErrExhausted)
	assert.Equal(t, 48, r.Size())
}

func TestBump_Errors(t *testing.T) {
	ba := NewBump(arena.New(0), nil)
	_, err := ba.Malloc(8)
	require.ErrorIs(t, err, ErrNotInitialized)
	require.ErrorIs(t, ba.Free(8), ErrNotInitialized)

	require.NoError(t, ba.Init())
	require.ErrorIs(t, ba.Init(), ErrAlreadyInitialized)

	p, err := ba.Malloc(0)
	require.NoError(t, err)
	assert.Equal(t, Nil, p)

	_, err = ba.Malloc(-3)
	require.ErrorIs(t, err, ErrNegativeSize)

	_, err = ba.Realloc(4, 8)
	require.ErrorIs(t, err, ErrBadPointer)
	assert.Nil(t, ba.Payload(1024))
}

func TestBump_InitRejectsUnalignedBreak(t *testing.T) {
	r := arena.New(0)
	_, err := r.Grow(3)
	require.NoError(t, err)
	require.ErrorIs(t, NewBump(r, nil).Init(), ErrRegionInUse)
}
