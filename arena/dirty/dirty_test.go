package dirty

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memTarget is a Target without a file descriptor.
type memTarget struct{ data []byte }

func (m *memTarget) Bytes() []byte { return m.data }
func (m *memTarget) FD() int       { return -1 }

func TestTracker_PageAlignment(t *testing.T) {
	tracker := NewTracker(&memTarget{})
	tracker.Add(100, 200)

	coalesced := tracker.coalesce()
	require.Len(t, coalesced, 1)
	assert.Equal(t, Range{Off: 0, Len: 4096}, coalesced[0])
}

func TestTracker_MergesAdjacentAndOverlapping(t *testing.T) {
	tracker := NewTracker(&memTarget{})
	tracker.Add(9000, 4)  // page 2
	tracker.Add(4100, 4)  // page 1
	tracker.Add(20000, 8) // page 4
	tracker.Add(8188, 8)  // straddles pages 1 and 2

	coalesced := tracker.DebugCoalescedRanges()
	require.Len(t, coalesced, 2)
	assert.Equal(t, Range{Off: 4096, Len: 8192}, coalesced[0])
	assert.Equal(t, Range{Off: 16384, Len: 4096}, coalesced[1])
}

func TestTracker_AddFoldsSamePageWrites(t *testing.T) {
	tracker := NewTracker(&memTarget{})

	// Header and footer of a small block land on the same page.
	tracker.Add(20, 4)
	tracker.Add(36, 4)
	tracker.Add(24, 4) // inside the folded range

	ranges := tracker.DebugRanges()
	require.Len(t, ranges, 1)
	assert.Equal(t, Range{Off: 20, Len: 20}, ranges[0])

	// A write on a different page starts a new range.
	tracker.Add(4096, 4)
	assert.Equal(t, 2, tracker.Pending())
}

func TestTracker_AddIgnoresEmpty(t *testing.T) {
	tracker := NewTracker(&memTarget{})
	tracker.Add(100, 0)
	tracker.Add(100, -4)
	assert.Equal(t, 0, tracker.Pending())
}

func TestTracker_FlushMemoryTargetDropsRanges(t *testing.T) {
	tracker := NewTracker(&memTarget{data: make([]byte, 8192)})
	tracker.Add(0, 16)
	tracker.Add(5000, 4)

	require.NoError(t, tracker.Flush(context.Background(), FlushAuto))
	assert.Equal(t, 0, tracker.Pending())

	flushes, pages := tracker.Stats()
	assert.Equal(t, 0, flushes, "memory targets never reach the OS")
	assert.Equal(t, int64(0), pages)
}

func TestTracker_FlushEmptyIsNoop(t *testing.T) {
	tracker := NewTracker(&memTarget{})
	require.NoError(t, tracker.Flush(context.Background(), FlushFull))
}

func TestTracker_Reset(t *testing.T) {
	tracker := NewTracker(&memTarget{})
	tracker.Add(0, 4)
	tracker.Reset()
	assert.Equal(t, 0, tracker.Pending())
	assert.Nil(t, tracker.DebugCoalescedRanges())
}

func TestClampRange(t *testing.T) {
	start, end, ok := clampRange(Range{Off: 4096, Len: 4096}, 6000)
	require.True(t, ok)
	assert.Equal(t, 4096, start)
	assert.Equal(t, 6000, end)

	_, _, ok = clampRange(Range{Off: 8192, Len: 4096}, 6000)
	assert.False(t, ok)
}

func TestFlushMode_String(t *testing.T) {
	assert.Equal(t, "auto", FlushAuto.String())
	assert.Equal(t, "data", FlushDataOnly.String())
	assert.Equal(t, "full", FlushFull.String())
	assert.Equal(t, "unknown", FlushMode(42).String())
}
