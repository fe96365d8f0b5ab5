package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/arena/alloc"
)

func TestParseArgs(t *testing.T) {
	c, err := parseArgs([]string{"-d", "--strategy", "best", "--realloc=inplace", "--chunk", "256", "t.rep"})
	require.NoError(t, err)
	assert.True(t, c.debug)
	assert.Equal(t, "t.rep", c.trace)
	assert.Equal(t, Options{
		Strategy:  alloc.BestFit,
		Realloc:   alloc.ReallocInPlace,
		ChunkSize: 256,
		Limit:     arena.DefaultLimit,
	}, c.opts)

	c, err = parseArgs([]string{"--heap", "saved.bin"})
	require.NoError(t, err)
	assert.Equal(t, "saved.bin", c.heap)

	c, err = parseArgs([]string{"--version"})
	require.NoError(t, err)
	assert.True(t, c.version)
}

func TestParseArgs_Errors(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"--strategy"},
		{"--strategy", "worst", "t.rep"},
		{"--limit", "lots", "t.rep"},
		{"--bogus", "t.rep"},
		{"a.rep", "b.rep"},
	} {
		_, err := parseArgs(args)
		assert.Error(t, err, "args %q", args)
	}
}
