// Package format houses the low-level block codec for the heap allocator:
// the layout of header and footer words, alignment rules, and the sizing
// constants shared by the allocation engines. Bit manipulation of tag words
// lives here and nowhere else.
package format

const (
	// WordSize is the size of a header or footer word in bytes.
	WordSize = 4

	// DoubleWordSize is the size of a header plus footer, and the unit every
	// block size is rounded to.
	DoubleWordSize = 8

	// Alignment is the required alignment of every payload address and block size.
	Alignment = 8

	// AlignmentMask masks the low bits that must be zero in an aligned size.
	AlignmentMask = Alignment - 1

	// Overhead is the per-block metadata cost: one header word and one footer word.
	Overhead = 2 * WordSize

	// MinBlockSize is the smallest block the allocator will create.
	// A free block needs a header, a footer, and two link words.
	MinBlockSize = 2 * DoubleWordSize

	// PrologueSize is the size of the permanently allocated prologue block.
	PrologueSize = DoubleWordSize

	// ChunkSize is the default number of bytes the region grows by on a miss.
	ChunkSize = 1 << 12

	// GrowthBuffer is the slack reserved by Realloc so small future growth
	// can happen in place.
	GrowthBuffer = 1 << 7

	// NumBuckets is the number of segregated free lists. Bucket i holds free
	// blocks with size in [2^i, 2^(i+1)); the last bucket catches all larger sizes.
	NumBuckets = 20

	// LinkSize is the size of one free-list link stored in a free block's payload.
	LinkSize = 4

	// PrevLinkOffset and NextLinkOffset locate the free-list links relative
	// to the payload address of a free block.
	PrevLinkOffset = 0
	NextLinkOffset = LinkSize
)

// Initial region layout, as offsets from the start of the managed region.
//
//	0x00  pad             (zero)
//	0x04  prologue header (8, allocated)
//	0x08  prologue footer (8, allocated)
//	0x0C  epilogue header (0, allocated)
//
// The prologue payload address is 0x08 and the first real block's payload
// lands at 0x10.
const (
	PadOffset             = 0
	PrologueHeaderOffset  = WordSize
	PrologueFooterOffset  = 2 * WordSize
	EpilogueHeaderOffset  = 3 * WordSize
	ProloguePayloadOffset = 2 * WordSize
	InitialRegionSize     = 4 * WordSize
)

// Tag bit layout. Sizes are multiples of 8 so the low three bits are free.
const (
	allocatedBit uint32 = 0x1
	protectBit   uint32 = 0x2
	flagMask     uint32 = AlignmentMask
)
