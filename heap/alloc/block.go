package alloc

import "github.com/joshuapare/heapkit/internal/format"

// Block navigation over the region bytes. A block is named by its payload
// address bp: the header word sits at bp-4, the footer word at bp+size-8,
// and the next block's payload starts at bp+size.

func hdrOff(bp Ptr) int { return int(bp) - format.WordSize }

func (a *Allocator) header(bp Ptr) format.Tag {
	return format.ReadTag(a.data, hdrOff(bp))
}

func (a *Allocator) blockSize(bp Ptr) int {
	return int(a.header(bp).Size())
}

func (a *Allocator) ftrOff(bp Ptr) int {
	return int(bp) + a.blockSize(bp) - format.DoubleWordSize
}

func (a *Allocator) footer(bp Ptr) format.Tag {
	return format.ReadTag(a.data, a.ftrOff(bp))
}

// next returns the payload address of the block after bp.
func (a *Allocator) next(bp Ptr) Ptr {
	return bp + Ptr(a.blockSize(bp))
}

// prevFooter returns the footer tag of the block before bp.
func (a *Allocator) prevFooter(bp Ptr) format.Tag {
	return format.ReadTag(a.data, int(bp)-format.DoubleWordSize)
}

// prev returns the payload address of the block before bp.
func (a *Allocator) prev(bp Ptr) Ptr {
	return bp - Ptr(a.prevFooter(bp).Size())
}

// writeBlock stamps matching header and footer tags on bp. Any protect tag
// on the header is cleared.
func (a *Allocator) writeBlock(bp Ptr, size int, allocated bool) {
	t := format.Pack(uint32(size), allocated)
	format.PutTag(a.data, hdrOff(bp), t)
	format.PutTag(a.data, int(bp)+size-format.DoubleWordSize, t)
}

// writeEpilogue stamps the zero-size terminal header at bp.
func (a *Allocator) writeEpilogue(bp Ptr) {
	format.PutTag(a.data, hdrOff(bp), format.Pack(0, true))
}

func (a *Allocator) isEpilogue(bp Ptr) bool {
	return a.blockSize(bp) == 0
}

func (a *Allocator) setProtect(bp Ptr) {
	format.PutTag(a.data, hdrOff(bp), a.header(bp).WithProtect())
}

func (a *Allocator) clearProtect(bp Ptr) {
	format.PutTag(a.data, hdrOff(bp), a.header(bp).WithoutProtect())
}
