//go:build linux || darwin || freebsd || windows

package dirty_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/arena/dirty"
)

func setupTestArena(t testing.TB) *arena.Arena {
	t.Helper()
	a, err := arena.Open(filepath.Join(t.TempDir(), "heap.bin"), 1<<20)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	_, err = a.Grow(3 * 4096)
	require.NoError(t, err)
	return a
}

func TestTracker_Flush_PreCancelled(t *testing.T) {
	a := setupTestArena(t)
	tracker := dirty.NewTracker(a)
	tracker.Add(4096, 100)
	tracker.Add(8192, 200)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tracker.Flush(ctx, dirty.FlushAuto)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled), "expected context.Canceled, got: %v", err)
	assert.Equal(t, 2, tracker.Pending(), "cancelled flush must keep the ranges")
}

func TestTracker_Flush_WritesThroughMapping(t *testing.T) {
	a := setupTestArena(t)
	tracker := dirty.NewTracker(a)

	copy(a.Bytes()[4100:], "flushed")
	tracker.Add(4100, 7)

	for _, mode := range []dirty.FlushMode{dirty.FlushDataOnly, dirty.FlushAuto, dirty.FlushFull} {
		tracker.Add(4100, 7)
		require.NoError(t, tracker.Flush(context.Background(), mode), "mode %s", mode)
	}
	assert.Equal(t, 0, tracker.Pending())

	flushes, pages := tracker.Stats()
	assert.Equal(t, 3, flushes)
	assert.Equal(t, int64(3), pages)

	onDisk, err := os.ReadFile(a.Path())
	require.NoError(t, err)
	assert.Equal(t, "flushed", string(onDisk[4100:4107]))
}

func TestTracker_Flush_RangeBeyondBreakIsClamped(t *testing.T) {
	a := setupTestArena(t)
	tracker := dirty.NewTracker(a)
	tracker.Add(a.Size()+4096, 16)
	require.NoError(t, tracker.Flush(context.Background(), dirty.FlushDataOnly))
}
