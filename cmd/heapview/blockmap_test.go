package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshuapare/heapkit/arena/alloc"
)

func TestMapCells(t *testing.T) {
	// two 64-byte blocks between the sentinels; one column per 8 bytes.
	blocks := []alloc.Block{
		{Ptr: 16, Size: 64, Allocated: true},
		{Ptr: 80, Size: 64},
	}
	cells := mapCells(blocks, 144, 18, alloc.Nil)

	assert.Equal(t, cellEmpty, cells[0])
	assert.Equal(t, cellAlloc, cells[2])
	assert.Equal(t, cellAlloc, cells[9])
	assert.Equal(t, cellFree, cells[10])
	assert.Equal(t, cellFree, cells[17])

	touched := mapCells(blocks, 144, 18, 80)
	assert.Equal(t, cellTouched, touched[12])
}

func TestMapCells_AllocatedWinsSharedColumn(t *testing.T) {
	blocks := []alloc.Block{
		{Ptr: 16, Size: 16},
		{Ptr: 32, Size: 16, Allocated: true},
		{Ptr: 48, Size: 40},
	}
	cells := mapCells(blocks, 88, 2, alloc.Nil)
	assert.Equal(t, []cellState{cellAlloc, cellFree}, cells)
}

func TestMapCells_Degenerate(t *testing.T) {
	assert.Empty(t, mapCells(nil, 100, 0, alloc.Nil))
	assert.Equal(t, []cellState{cellEmpty, cellEmpty}, mapCells(nil, 0, 2, alloc.Nil))
}

func TestDumpBlocks(t *testing.T) {
	out := dumpBlocks([]alloc.Block{{Ptr: 16, Size: 112, Allocated: true}}, 4112)
	assert.Contains(t, out, "heap 4112 bytes, 1 blocks")
	assert.Contains(t, out, "16         112        104        alloc")
}
