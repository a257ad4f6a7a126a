package alloc

import (
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// ViolationKind classifies a consistency failure.
type ViolationKind string

const (
	BadPrologue      ViolationKind = "BadPrologue"
	BadEpilogue      ViolationKind = "BadEpilogue"
	Misaligned       ViolationKind = "Misaligned"
	BadSize          ViolationKind = "BadSize"
	OutOfBounds      ViolationKind = "OutOfBounds"
	TagMismatch      ViolationKind = "TagMismatch"
	AdjacentFree     ViolationKind = "AdjacentFree"
	NotIndexed       ViolationKind = "NotIndexed"
	WrongBucket      ViolationKind = "WrongBucket"
	IndexedTwice     ViolationKind = "IndexedTwice"
	IndexedAllocated ViolationKind = "IndexedAllocated"
	OrphanLink       ViolationKind = "OrphanLink"
	BrokenLink       ViolationKind = "BrokenLink"
	Unordered        ViolationKind = "Unordered"
)

// Violation describes one invariant failure found by Check.
type Violation struct {
	Kind    ViolationKind
	Addr    Ptr // Payload address of the offending block (Null when not block-specific)
	Size    int // Block size as read from its header
	Bucket  int // Bucket involved, or -1
	Message string
}

func (v Violation) Error() string {
	if v.Addr != Null {
		return fmt.Sprintf("%s at 0x%X (size %d): %s", v.Kind, v.Addr, v.Size, v.Message)
	}
	return fmt.Sprintf("%s: %s", v.Kind, v.Message)
}

// checker accumulates violations during one Check pass.
type checker struct {
	a     *Allocator
	w     io.Writer
	found []Violation
}

func (c *checker) report(v Violation) {
	c.found = append(c.found, v)
	fmt.Fprintf(c.w, "Error: %v\n", v)
}

// Check walks every block from the prologue to the epilogue and every bucket
// of the free-list index, and reports each invariant violation to w (nil
// discards). With verbose set, each block is also printed.
//
// Checked invariants:
//   - prologue and epilogue sentinels are intact
//   - payload addresses are 8-byte aligned and blocks stay inside the region
//   - header and footer agree on size and allocated bit
//   - no two adjacent free blocks, unless the first is protect-tagged
//   - every free block is linked from exactly the bucket its size maps to
//   - every indexed block is a free block; lists are size-ordered with
//     consistent back-links
//
// Check is diagnostic only and never modifies the heap.
func (a *Allocator) Check(w io.Writer, verbose bool) []Violation {
	if w == nil {
		w = io.Discard
	}
	c := &checker{a: a, w: w}
	if !a.inited {
		c.report(Violation{Kind: BadPrologue, Bucket: -1, Message: "heap not initialized"})
		return c.found
	}

	if verbose {
		fmt.Fprintf(w, "Heap (0x%X, %d bytes):\n", a.base, len(a.data))
	}

	blocks := c.walkBlocks(verbose)
	c.walkBuckets(blocks)
	return c.found
}

// walkBlocks checks the address-ordered chain and returns the free/allocated
// state of every block start it reached.
func (c *checker) walkBlocks(verbose bool) map[Ptr]bool {
	a := c.a
	free := make(map[Ptr]bool)

	pro := a.header(a.base)
	if pro.Size() != format.PrologueSize || !pro.Allocated() || a.footer(a.base).Boundary() != pro.Boundary() {
		c.report(Violation{Kind: BadPrologue, Addr: a.base, Size: int(pro.Size()), Bucket: -1,
			Message: fmt.Sprintf("prologue header %v footer %v", pro, a.footer(a.base))})
		return free
	}

	prevFree, prevProtected := false, false
	bp := a.next(a.base)
	for {
		if !buf.Has(a.data, hdrOff(bp), format.WordSize) {
			c.report(Violation{Kind: OutOfBounds, Addr: bp, Bucket: -1,
				Message: fmt.Sprintf("block header beyond region end %d", len(a.data))})
			return free
		}
		h := a.header(bp)
		size := int(h.Size())
		if size == 0 {
			break
		}
		if verbose {
			c.printBlock(bp)
		}

		if int(bp)%format.Alignment != 0 {
			c.report(Violation{Kind: Misaligned, Addr: bp, Size: size, Bucket: -1,
				Message: "payload is not doubleword aligned"})
		}
		if size < format.MinBlockSize {
			c.report(Violation{Kind: BadSize, Addr: bp, Size: size, Bucket: -1,
				Message: fmt.Sprintf("block smaller than minimum %d", format.MinBlockSize)})
			return free
		}
		if !buf.Has(a.data, hdrOff(bp), size) {
			c.report(Violation{Kind: OutOfBounds, Addr: bp, Size: size, Bucket: -1,
				Message: fmt.Sprintf("block runs past region end %d", len(a.data))})
			return free
		}
		if f := a.footer(bp); f.Boundary() != h.Boundary() || f.Protected() {
			c.report(Violation{Kind: TagMismatch, Addr: bp, Size: size, Bucket: -1,
				Message: fmt.Sprintf("header %v does not match footer %v", h, f)})
		}

		isFree := !h.Allocated()
		if isFree && prevFree && !prevProtected {
			c.report(Violation{Kind: AdjacentFree, Addr: bp, Size: size, Bucket: bucketFor(size),
				Message: "free block follows an unprotected free block"})
		}
		free[bp] = isFree
		prevFree, prevProtected = isFree, h.Protected()
		bp = a.next(bp)
	}

	if verbose {
		fmt.Fprintf(c.w, "0x%X: EOL\n", bp)
	}
	epi := a.header(bp)
	if !epi.Allocated() || hdrOff(bp)+format.WordSize != len(a.data) {
		c.report(Violation{Kind: BadEpilogue, Addr: bp, Bucket: -1,
			Message: fmt.Sprintf("epilogue %v at header offset %d, region end %d", epi, hdrOff(bp), len(a.data))})
	}
	return free
}

// walkBuckets checks every free list against the block map from walkBlocks.
func (c *checker) walkBuckets(blocks map[Ptr]bool) {
	a := c.a
	seen := make(map[Ptr]int)
	limit := len(blocks) + 1

	for i := range a.buckets {
		prev := Null
		prevSize := 0
		steps := 0
		for bp := a.buckets[i]; bp != Null; bp = a.nextLink(bp) {
			if steps++; steps > limit {
				c.report(Violation{Kind: BrokenLink, Bucket: i,
					Message: fmt.Sprintf("bucket %d is longer than the heap; cycle suspected", i)})
				break
			}
			isFree, known := blocks[bp]
			if !known {
				c.report(Violation{Kind: OrphanLink, Addr: bp, Bucket: i,
					Message: fmt.Sprintf("bucket %d links to an address that is not a block", i)})
				break
			}
			size := a.blockSize(bp)
			if !isFree {
				c.report(Violation{Kind: IndexedAllocated, Addr: bp, Size: size, Bucket: i,
					Message: fmt.Sprintf("allocated block linked from bucket %d", i)})
			}
			if want := bucketFor(size); want != i {
				c.report(Violation{Kind: WrongBucket, Addr: bp, Size: size, Bucket: i,
					Message: fmt.Sprintf("indexed in bucket %d, size maps to bucket %d", i, want)})
			}
			if got := a.prevLink(bp); got != prev {
				c.report(Violation{Kind: BrokenLink, Addr: bp, Size: size, Bucket: i,
					Message: fmt.Sprintf("back-link 0x%X, expected 0x%X", got, prev)})
			}
			if size < prevSize {
				c.report(Violation{Kind: Unordered, Addr: bp, Size: size, Bucket: i,
					Message: fmt.Sprintf("follows a larger block of size %d", prevSize)})
			}
			if seen[bp]++; seen[bp] == 2 {
				c.report(Violation{Kind: IndexedTwice, Addr: bp, Size: size, Bucket: i,
					Message: "free block linked more than once"})
			}
			prev, prevSize = bp, size
		}
	}

	for bp, isFree := range blocks {
		if isFree && seen[bp] == 0 {
			size := a.blockSize(bp)
			c.report(Violation{Kind: NotIndexed, Addr: bp, Size: size, Bucket: bucketFor(size),
				Message: fmt.Sprintf("free block missing from bucket %d", bucketFor(size))})
		}
	}
}

func (c *checker) printBlock(bp Ptr) {
	h, f := c.a.header(bp), c.a.footer(bp)
	fmt.Fprintf(c.w, "0x%X: header: %v footer: %v\n", bp, h, f)
}
