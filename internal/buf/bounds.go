// Package buf contains bounds and overflow helpers for raw region access.
package buf

import "math"

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// Has reports whether b contains n bytes starting at off.
func Has(b []byte, off, n int) bool {
	if off < 0 || n < 0 {
		return false
	}
	end, ok := AddOverflowSafe(off, n)
	return ok && end <= len(b)
}

// Slice returns b[off:off+n] when the range is in bounds.
func Slice(b []byte, off, n int) ([]byte, bool) {
	if !Has(b, off, n) {
		return nil, false
	}
	return b[off : off+n], true
}

// Overlaps reports whether [a, a+alen) and [b, b+blen) intersect.
func Overlaps(a, alen, b, blen int) bool {
	if alen <= 0 || blen <= 0 {
		return false
	}
	return a < b+blen && b < a+alen
}
