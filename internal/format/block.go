package format

// Header and footer word layout:
//
//	Bits 31..3  block size (always a multiple of 8)
//	Bits  2..1  reserved (zero)
//	Bit      0  allocated flag
//
// A block's footer is an identical copy of its header and lives in the last
// word of the block. The epilogue is a header-only block of size zero.
const (
	allocBit = 0x1
	sizeMask = ^uint32(AlignmentMask)
)

// Pack combines a block size and allocated flag into a header/footer word.
func Pack(size int, allocated bool) uint32 {
	w := uint32(size)
	if allocated {
		w |= allocBit
	}
	return w
}

// BlockSize extracts the block size from a header/footer word.
func BlockSize(w uint32) int {
	return int(w & sizeMask)
}

// BlockAllocated reports whether the allocated flag is set in a header/footer word.
func BlockAllocated(w uint32) bool {
	return w&allocBit != 0
}

// HeaderOffset returns the offset of the header word for the block whose
// payload starts at payload.
func HeaderOffset(payload int) int {
	return payload - WordSize
}

// FooterOffset returns the offset of the footer word for a block whose
// payload starts at payload and whose total size is size.
func FooterOffset(payload, size int) int {
	return payload + size - DoubleWordSize
}

// PayloadSize returns the usable payload bytes of a block of the given total size.
func PayloadSize(size int) int {
	return size - BlockOverhead
}

// ReadHeader decodes the header word of the block at payload.
func ReadHeader(b []byte, payload int) (size int, allocated bool) {
	w := ReadU32(b, HeaderOffset(payload))
	return BlockSize(w), BlockAllocated(w)
}

// ReadPrevFooter decodes the footer word of the block that ends just before payload,
// i.e. the footer of the physically preceding block.
func ReadPrevFooter(b []byte, payload int) (size int, allocated bool) {
	w := ReadU32(b, payload-DoubleWordSize)
	return BlockSize(w), BlockAllocated(w)
}
