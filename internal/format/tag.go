package format

import "fmt"

// Tag is a decoded header or footer word.
//
// Word layout (little-endian uint32):
//
//	bits 3..31  block size (multiple of 8, including header and footer)
//	bit  2      reserved
//	bit  1      protect (headers only; reserved for in-place Realloc growth)
//	bit  0      allocated
type Tag uint32

// Pack encodes a size and allocated flag into a tag with the protect bit clear.
// The size must already be 8-byte aligned.
func Pack(size uint32, allocated bool) Tag {
	if size&flagMask != 0 {
		panic(fmt.Sprintf("format: unaligned block size %d", size))
	}
	t := Tag(size)
	if allocated {
		t |= Tag(allocatedBit)
	}
	return t
}

// Size returns the block size stored in the tag.
func (t Tag) Size() uint32 { return uint32(t) &^ flagMask }

// Allocated reports whether the allocated bit is set.
func (t Tag) Allocated() bool { return uint32(t)&allocatedBit != 0 }

// Protected reports whether the protect bit is set.
func (t Tag) Protected() bool { return uint32(t)&protectBit != 0 }

// WithProtect returns t with the protect bit set.
func (t Tag) WithProtect() Tag { return t | Tag(protectBit) }

// WithoutProtect returns t with the protect bit clear.
func (t Tag) WithoutProtect() Tag { return t &^ Tag(protectBit) }

// Boundary returns the size and allocated bits only. Header and footer
// boundaries must always be equal.
func (t Tag) Boundary() Tag { return t &^ Tag(protectBit) }

// String renders the tag as [size:a] or [size:f], with a trailing p when protected.
func (t Tag) String() string {
	state := 'f'
	if t.Allocated() {
		state = 'a'
	}
	if t.Protected() {
		return fmt.Sprintf("[%d:%cp]", t.Size(), state)
	}
	return fmt.Sprintf("[%d:%c]", t.Size(), state)
}

// ReadTag decodes the tag word at off.
func ReadTag(b []byte, off int) Tag {
	return Tag(ReadU32(b, off))
}

// PutTag writes t at off.
func PutTag(b []byte, off int, t Tag) {
	PutU32(b, off, uint32(t))
}
