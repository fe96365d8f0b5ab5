package main

import (
	"fmt"
	"strings"

	"github.com/joshuapare/heapkit/arena/alloc"
)

const (
	allocCell = '█'
	freeCell  = '░'
)

// cellState is the content of one column of the block map bar.
type cellState uint8

const (
	cellEmpty cellState = iota // sentinel bytes only
	cellFree
	cellAlloc
	cellTouched
)

// mapCells scales the heap onto width columns. A column showing any part of
// an allocated block is drawn allocated; the last touched block wins over both.
func mapCells(blocks []alloc.Block, heapSize, width int, touched alloc.Ptr) []cellState {
	cells := make([]cellState, max(width, 0))
	if width <= 0 || heapSize <= 0 {
		return cells
	}
	for _, b := range blocks {
		start := int(b.Ptr) - 4 // header
		end := start + b.Size
		first := start * width / heapSize
		last := min((end-1)*width/heapSize, width-1)

		state := cellFree
		switch {
		case touched != alloc.Nil && b.Ptr == touched:
			state = cellTouched
		case b.Allocated:
			state = cellAlloc
		}
		for c := first; c <= last; c++ {
			cells[c] = max(cells[c], state)
		}
	}
	return cells
}

func renderBar(cells []cellState) string {
	var sb strings.Builder
	for _, c := range cells {
		switch c {
		case cellTouched:
			sb.WriteString(touchedCellStyle.Render(string(allocCell)))
		case cellAlloc:
			sb.WriteString(allocCellStyle.Render(string(allocCell)))
		case cellFree:
			sb.WriteString(freeCellStyle.Render(string(freeCell)))
		default:
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// dumpBlocks renders the block list as plain text for the clipboard.
func dumpBlocks(blocks []alloc.Block, heapSize int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "heap %d bytes, %d blocks\n", heapSize, len(blocks))
	fmt.Fprintf(&sb, "%-10s %-10s %-10s %s\n", "PAYLOAD", "SIZE", "PAYLOAD B", "STATE")
	for _, b := range blocks {
		state := "free"
		if b.Allocated {
			state = "alloc"
		}
		fmt.Fprintf(&sb, "%-10d %-10d %-10d %s\n", b.Ptr, b.Size, b.PayloadSize(), state)
	}
	return sb.String()
}
