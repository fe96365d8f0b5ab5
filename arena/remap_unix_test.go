//go:build linux || darwin || freebsd

package arena

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMapInjected = errors.New("injected mmap failure")

// failMmap makes the next n mappings fail. A negative n fails all of them.
func failMmap(t *testing.T, n int) {
	t.Helper()
	orig := mmapFile
	t.Cleanup(func() { mmapFile = orig })
	mmapFile = func(f *os.File, size int) ([]byte, error) {
		if n == 0 {
			return orig(f, size)
		}
		n--
		return nil, errMapInjected
	}
}

func TestGrow_RemapFailureRestoresMapping(t *testing.T) {
	a, err := Open(filepath.Join(t.TempDir(), "heap.bin"), 1<<20)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Grow(4096)
	require.NoError(t, err)
	copy(a.Bytes()[8:], "kept")

	failMmap(t, 1)
	_, err = a.Grow(4096)
	require.ErrorIs(t, err, errMapInjected)

	assert.Equal(t, 4096, a.Size())
	require.Len(t, a.Bytes(), 4096)
	assert.Equal(t, "kept", string(a.Bytes()[8:12]))

	prev, err := a.Grow(4096)
	require.NoError(t, err)
	assert.Equal(t, 4096, prev)
}

func TestGrow_FailedRestoreClosesArena(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heap.bin")
	a, err := Open(path, 1<<20)
	require.NoError(t, err)

	_, err = a.Grow(4096)
	require.NoError(t, err)

	failMmap(t, -1)
	_, err = a.Grow(4096)
	require.ErrorIs(t, err, errMapInjected)

	assert.NotPanics(t, func() { assert.Empty(t, a.Bytes()) })
	assert.Equal(t, 0, a.Size())

	_, err = a.Grow(16)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, a.Reset(), ErrClosed)

	// The file handle is still released.
	require.NoError(t, a.Close())
	assert.False(t, a.Mapped())
	require.NoError(t, a.Close())
}
