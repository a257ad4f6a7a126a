package heap

import (
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

// DefaultMaxSize is the default region limit (20 MiB).
const DefaultMaxSize = 20 * (1 << 20)

var (
	// ErrExhausted indicates the region cannot grow past its maximum size.
	ErrExhausted = errors.New("heap: region exhausted")

	// ErrBadIncrement indicates a negative growth request.
	ErrBadIncrement = errors.New("heap: negative increment")

	// ErrClosed indicates an operation on a closed provider.
	ErrClosed = errors.New("heap: provider closed")
)

// Provider is a growable, contiguous memory region.
type Provider interface {
	// Grow extends the region by n bytes and returns the previous end offset.
	// The new bytes start exactly at the previous end. On failure the region
	// is unchanged.
	Grow(n int) (int, error)

	// Bytes returns the current region. The slice is invalidated by Grow.
	Bytes() []byte

	// Size returns the current end offset of the region.
	Size() int

	// Close releases the backing memory.
	Close() error
}

// checkGrow validates a growth request of n bytes at break brk against limit.
func checkGrow(brk, n, limit int) (int, error) {
	if n < 0 {
		return 0, ErrBadIncrement
	}
	end, ok := buf.AddOverflowSafe(brk, n)
	if !ok || end > limit {
		return 0, fmt.Errorf("heap: grow %d bytes at break %d (limit %d): %w", n, brk, limit, ErrExhausted)
	}
	return end, nil
}
