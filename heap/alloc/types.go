package alloc

import (
	"log/slog"

	"github.com/joshuapare/heapkit/internal/format"
)

// Ptr is a payload address: a byte offset from the start of the managed region.
// Every non-null Ptr is a multiple of 8.
type Ptr = uint32

// Null is the "no allocation" address. Offset 0 is the alignment pad and is
// never a payload.
const Null Ptr = 0

// maxRegion is the largest region a Ptr can address.
const maxRegion int64 = 1<<32 - format.Alignment

// Option configures an Allocator.
type Option func(*Allocator)

// WithChunkSize sets the minimum number of bytes requested from the provider
// when no free block fits. The value is rounded up to 8 and never below the
// minimum block size.
func WithChunkSize(n int) Option {
	return func(a *Allocator) {
		a.chunk = max(format.Align8(n), format.MinBlockSize)
	}
}

// WithGrowthBuffer sets the slack Realloc reserves beyond each request so that
// small future growth happens in place. The value is rounded up to 8; zero
// disables the reservation.
func WithGrowthBuffer(n int) Option {
	return func(a *Allocator) {
		a.buffer = format.Align8(max(n, 0))
	}
}

// WithLogger sets the logger used for growth and relocation events.
func WithLogger(l *slog.Logger) Option {
	return func(a *Allocator) {
		if l != nil {
			a.log = l
		}
	}
}
