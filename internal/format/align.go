package format

// Alignment utilities for block sizes.

// Align8 returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
//	Align8(16) = 16
func Align8(n int) int {
	return (n + AlignmentMask) & ^AlignmentMask
}

// Align8U32 is the uint32 version of Align8 used on tag sizes.
func Align8U32(n uint32) uint32 {
	return (n + AlignmentMask) & ^uint32(AlignmentMask)
}

// IsAligned reports whether n is a multiple of Alignment.
func IsAligned(n int) bool {
	return n&AlignmentMask == 0
}

// AdjustedSize returns the block size needed to serve a request of n payload
// bytes: the payload plus header and footer, rounded to 8, and never below
// MinBlockSize.
//
// Example:
//
//	AdjustedSize(1)   = 16
//	AdjustedSize(8)   = 16
//	AdjustedSize(9)   = 24
//	AdjustedSize(100) = 112
func AdjustedSize(n int) int {
	if n <= DoubleWordSize {
		return MinBlockSize
	}
	return Align8(n + Overhead)
}
