package heap

import "github.com/bytedance/gopkg/lang/dirtmake"

// minSliceCapacity is the first capacity reserved by a Slice provider.
const minSliceCapacity = 1 << 12

// Slice is a Provider backed by an ordinary byte slice.
//
// Capacity doubles when the break passes it, so growth is amortized O(1).
// New capacity comes from dirtmake and is not zeroed: the allocator writes
// every tag it reads.
type Slice struct {
	data   []byte
	limit  int
	closed bool
}

// NewSlice returns a slice-backed provider limited to limit bytes.
// A non-positive limit selects DefaultMaxSize.
func NewSlice(limit int) *Slice {
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	return &Slice{limit: limit}
}

// Grow implements Provider.
func (s *Slice) Grow(n int) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	old := len(s.data)
	end, err := checkGrow(old, n, s.limit)
	if err != nil {
		return 0, err
	}

	if end > cap(s.data) {
		newCap := max(2*cap(s.data), end, minSliceCapacity)
		newCap = min(newCap, s.limit)
		grown := dirtmake.Bytes(end, newCap)
		copy(grown, s.data)
		s.data = grown
	} else {
		s.data = s.data[:end]
	}
	return old, nil
}

// Bytes implements Provider.
func (s *Slice) Bytes() []byte { return s.data }

// Size implements Provider.
func (s *Slice) Size() int { return len(s.data) }

// Limit returns the maximum region size.
func (s *Slice) Limit() int { return s.limit }

// Close implements Provider. Closing twice is a no-op.
func (s *Slice) Close() error {
	s.data = nil
	s.closed = true
	return nil
}
