package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

// Allocator is a segregated free-list allocator over a heap.Provider.
//
//   - 20 power-of-two buckets, each size-ordered (approximate best-fit)
//   - Boundary tags on every block for O(1) coalescing in both directions
//   - Region growth on a miss, in chunks of at least ChunkSize
//   - Realloc reserves slack and protect-tags the successor so repeated
//     growth of one block happens in place
//
// NOT thread-safe. All calls must come from one goroutine, or be serialized
// by the caller.
type Allocator struct {
	p    heap.Provider
	data []byte // p.Bytes(), refreshed after every growth

	base    Ptr // prologue payload address
	buckets [format.NumBuckets]Ptr

	chunk  int
	buffer int
	log    *slog.Logger

	inited bool
	stats  allocatorStats
}

// New creates an allocator on p and initializes its heap.
//
// Parameters:
//   - p: the region to manage; its break must be 8-byte aligned (a fresh
//     provider has break 0)
//   - opts: chunk size, growth buffer and logger overrides
func New(p heap.Provider, opts ...Option) (*Allocator, error) {
	a := &Allocator{
		p:      p,
		chunk:  format.ChunkSize,
		buffer: format.GrowthBuffer,
		log:    logger.L,
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.Init(); err != nil {
		return nil, err
	}
	return a, nil
}

// Init lays down the prologue and epilogue sentinels and grows the region by
// one chunk. It may only succeed once per allocator.
func (a *Allocator) Init() error {
	if a.inited {
		return ErrInitialized
	}
	if !format.IsAligned(a.p.Size()) {
		return ErrMisaligned
	}

	start, err := a.p.Grow(format.InitialRegionSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoMemory, err)
	}
	a.data = a.p.Bytes()

	format.PutU32(a.data, start+format.PadOffset, 0)
	prologue := format.Pack(format.PrologueSize, true)
	format.PutTag(a.data, start+format.PrologueHeaderOffset, prologue)
	format.PutTag(a.data, start+format.PrologueFooterOffset, prologue)
	format.PutTag(a.data, start+format.EpilogueHeaderOffset, format.Pack(0, true))
	a.base = Ptr(start + format.ProloguePayloadOffset)
	a.inited = true

	if _, err := a.extend(a.chunk); err != nil {
		return err
	}
	return nil
}

// Malloc returns the address of a block with at least size usable bytes.
// A zero size returns Null and no error without touching the heap.
func (a *Allocator) Malloc(size uint32) (Ptr, error) {
	if !a.inited {
		return Null, ErrNotInitialized
	}
	if size == 0 {
		return Null, nil
	}
	a.stats.MallocCalls++

	asize := format.AdjustedSize(int(size))

	bp := a.findFit(asize)
	if bp == Null {
		var err error
		bp, err = a.extend(max(asize, a.chunk))
		if err != nil {
			a.log.Debug("malloc failed", "request", size, "adjusted", asize, "heap", len(a.data), "err", err)
			return Null, err
		}
		a.stats.AllocSlowPath++
	} else {
		a.stats.AllocFastPath++
	}

	a.place(bp, asize)
	return bp, nil
}

// Free releases the block at p. Null is a no-op. Freeing an address that was
// not returned by Malloc or Realloc, or freeing twice, is undefined.
func (a *Allocator) Free(p Ptr) {
	if p == Null || !a.inited {
		return
	}
	a.stats.FreeCalls++

	size := a.blockSize(p)
	a.stats.LiveBlocks--
	a.stats.LiveBytes -= int64(size)

	a.unprotect(a.next(p))
	a.writeBlock(p, size, false)
	a.coalesce(p)
}

// extend grows the region by n bytes (rounded to 8), turns the new space into
// a free block over the old epilogue, and coalesces it with a trailing free
// block. Returns the indexed, coalesced block.
func (a *Allocator) extend(n int) (Ptr, error) {
	size := format.Align8(n)
	if int64(len(a.data))+int64(size) > maxRegion {
		return Null, fmt.Errorf("%w: grow %d bytes would exceed the addressable region", ErrNoMemory, size)
	}

	old, err := a.p.Grow(size)
	if err != nil {
		a.log.Debug("grow refused", "bytes", size, "heap", len(a.data), "err", err)
		return Null, fmt.Errorf("%w: %w", ErrNoMemory, err)
	}
	a.data = a.p.Bytes()
	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(size)
	a.log.Debug("grow", "bytes", size, "break", old, "heap", len(a.data))

	// The old break is one word past the old epilogue header, which is exactly
	// where the new block's payload starts.
	bp := Ptr(old)
	a.writeBlock(bp, size, false)
	a.writeEpilogue(a.next(bp))

	return a.coalesce(bp), nil
}

// place allocates asize bytes at the start of the free block bp, splitting
// off the remainder when it is at least a minimum block.
func (a *Allocator) place(bp Ptr, asize int) {
	csize := a.blockSize(bp)
	a.remove(bp)

	if rem := csize - asize; rem >= format.MinBlockSize {
		a.writeBlock(bp, asize, true)
		tail := a.next(bp)
		a.writeBlock(tail, rem, false)
		a.insert(tail)
		a.stats.SplitCount++
		csize = asize
	} else {
		a.writeBlock(bp, csize, true)
	}

	a.stats.LiveBlocks++
	a.stats.LiveBytes += int64(csize)
}

// Payload returns the usable bytes of the live block at p. The slice aliases
// the region and is invalidated by any call that may grow it.
func (a *Allocator) Payload(p Ptr) []byte {
	if p == Null {
		return nil
	}
	return a.data[p : int(p)+a.UsableSize(p)]
}

// UsableSize returns the number of payload bytes in the block at p.
func (a *Allocator) UsableSize(p Ptr) int {
	if p == Null {
		return 0
	}
	return a.blockSize(p) - format.Overhead
}

// BlockSize returns the total size of the block at p, including its tags.
func (a *Allocator) BlockSize(p Ptr) int {
	if p == Null {
		return 0
	}
	return a.blockSize(p)
}

// HeapSize returns the current size of the managed region in bytes.
func (a *Allocator) HeapSize() int {
	return len(a.data)
}

// Bytes returns the managed region.
func (a *Allocator) Bytes() []byte {
	return a.data
}
