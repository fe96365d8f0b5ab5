// Package format houses the low-level encoding of the heap arena: header and
// footer words, alignment arithmetic, and the fixed offsets of the sentinel
// blocks. It performs no allocation and knows nothing about free-list policy,
// so both the allocator and the heap checker can share it.
package format

const (
	// WordSize is the size of a header or footer word in bytes.
	WordSize = 4

	// DoubleWordSize is the size of two words. Payloads are aligned to it.
	DoubleWordSize = 8

	// Alignment is the alignment guaranteed for every payload address and
	// the granularity of every block size.
	Alignment = DoubleWordSize

	// AlignmentMask is the bitmask used for aligning to Alignment (Alignment - 1).
	AlignmentMask = Alignment - 1

	// BlockOverhead is the header plus footer carried by every block.
	BlockOverhead = 2 * WordSize

	// MinBlockSize is the smallest block the allocator ever creates: header,
	// footer and one double word of payload. Split remainders below this are
	// absorbed into the allocated block instead.
	MinBlockSize = 2 * DoubleWordSize

	// PrologueSize is the size of the prologue block (header and footer, no payload).
	PrologueSize = DoubleWordSize

	// DefaultChunkSize is the default arena growth increment.
	DefaultChunkSize = 1 << 12
)

// Arena layout after initialization (offsets are arena-relative):
//
//	Offset  Size  Description
//	0x00    4     Alignment padding (zero)
//	0x04    4     Prologue header  Pack(8, true)
//	0x08    4     Prologue footer  Pack(8, true)
//	0x0C    4     Epilogue header  Pack(0, true)
//
// The first real block's payload therefore starts at 0x10, which keeps every
// payload on an 8-byte boundary.
const (
	// PaddingOffset is the offset of the alignment padding word.
	PaddingOffset = 0x00

	// PrologueHeaderOffset is the offset of the prologue header word.
	PrologueHeaderOffset = 0x04

	// PrologueFooterOffset is the offset of the prologue footer word.
	PrologueFooterOffset = 0x08

	// InitialEpilogueOffset is the offset of the epilogue header right after
	// initialization, before the first growth.
	InitialEpilogueOffset = 0x0C

	// HeapListOffset is the payload offset of the prologue block. Walks of the
	// implicit list start here.
	HeapListOffset = 0x08

	// InitialSize is the number of bytes requested from the arena to hold the
	// padding word and the sentinels.
	InitialSize = 4 * WordSize

	// FirstPayloadOffset is the payload offset of the first non-sentinel block.
	FirstPayloadOffset = HeapListOffset + PrologueSize
)
