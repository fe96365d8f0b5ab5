package alloc

import "github.com/joshuapare/heapkit/internal/format"

// Block layout helpers over the current region bytes. Every pointer passed in
// is the payload offset of a block whose header is within the heap.

func (a *ImplicitAllocator) blockSize(p Ptr) int {
	return format.BlockSize(format.ReadU32(a.r.Bytes(), format.HeaderOffset(int(p))))
}

func (a *ImplicitAllocator) blockAllocated(p Ptr) bool {
	return format.BlockAllocated(format.ReadU32(a.r.Bytes(), format.HeaderOffset(int(p))))
}

// nextBlock returns the payload offset of the physically following block.
func (a *ImplicitAllocator) nextBlock(p Ptr) Ptr {
	return p + Ptr(a.blockSize(p))
}

// prevBlock returns the payload offset of the physically preceding block,
// found through that block's footer.
func (a *ImplicitAllocator) prevBlock(p Ptr) Ptr {
	size, _ := format.ReadPrevFooter(a.r.Bytes(), int(p))
	return p - Ptr(size)
}

func (a *ImplicitAllocator) prevAllocated(p Ptr) bool {
	_, allocated := format.ReadPrevFooter(a.r.Bytes(), int(p))
	return allocated
}

// setBlock writes matching header and footer words for the block at p.
func (a *ImplicitAllocator) setBlock(p Ptr, size int, allocated bool) {
	data := a.r.Bytes()
	w := format.Pack(size, allocated)
	hdr := format.HeaderOffset(int(p))
	ftr := format.FooterOffset(int(p), size)
	format.PutU32(data, hdr, w)
	format.PutU32(data, ftr, w)
	if a.dt != nil {
		a.dt.Add(hdr, format.WordSize)
		a.dt.Add(ftr, format.WordSize)
	}

	// A block that swallowed the rover's block takes its place.
	if a.rover > p && a.rover < p+Ptr(size) {
		a.rover = p
	}
}

// setEpilogue writes the zero-size allocated header at offset hdr.
func (a *ImplicitAllocator) setEpilogue(hdr int) {
	format.PutU32(a.r.Bytes(), hdr, format.Pack(0, true))
	if a.dt != nil {
		a.dt.Add(hdr, format.WordSize)
	}
}
