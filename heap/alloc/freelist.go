package alloc

import (
	"math/bits"

	"github.com/joshuapare/heapkit/internal/format"
)

// The segregated free-list index. Each bucket is a doubly-linked list threaded
// through the payloads of its free blocks:
//
//	bp+0  previous free block in the bucket (Null at the head)
//	bp+4  next free block in the bucket (Null at the tail)
//
// Lists are kept in ascending size order, so first-fit within a bucket is an
// approximate best-fit.

// bucketFor returns the bucket index for a block of the given size: the
// position of its highest set bit, capped at the last bucket.
func bucketFor(size int) int {
	if size <= 1 {
		return 0
	}
	return min(bits.Len(uint(size))-1, format.NumBuckets-1)
}

func (a *Allocator) prevLink(bp Ptr) Ptr {
	return format.ReadU32(a.data, int(bp)+format.PrevLinkOffset)
}

func (a *Allocator) nextLink(bp Ptr) Ptr {
	return format.ReadU32(a.data, int(bp)+format.NextLinkOffset)
}

func (a *Allocator) setPrevLink(bp, v Ptr) {
	format.PutU32(a.data, int(bp)+format.PrevLinkOffset, v)
}

func (a *Allocator) setNextLink(bp, v Ptr) {
	format.PutU32(a.data, int(bp)+format.NextLinkOffset, v)
}

// insert links the free block bp into its bucket, before the first block whose
// size is >= its own, or at the tail.
func (a *Allocator) insert(bp Ptr) {
	size := a.blockSize(bp)
	i := bucketFor(size)

	prev := Null
	cur := a.buckets[i]
	for cur != Null && a.blockSize(cur) < size {
		prev = cur
		cur = a.nextLink(cur)
	}

	a.setPrevLink(bp, prev)
	a.setNextLink(bp, cur)
	if cur != Null {
		a.setPrevLink(cur, bp)
	}
	if prev == Null {
		a.buckets[i] = bp
	} else {
		a.setNextLink(prev, bp)
	}
	a.stats.ListInserts++
}

// remove unlinks bp from its bucket. bp must currently be indexed, and its
// size must not have changed since it was inserted.
func (a *Allocator) remove(bp Ptr) {
	i := bucketFor(a.blockSize(bp))
	prev, next := a.prevLink(bp), a.nextLink(bp)

	if prev == Null {
		a.buckets[i] = next
	} else {
		a.setNextLink(prev, next)
	}
	if next != Null {
		a.setPrevLink(next, prev)
	}
	a.stats.ListRemoves++
}

// findFit scans buckets from the request's class upward and returns the first
// unprotected block of at least asize bytes, or Null.
func (a *Allocator) findFit(asize int) Ptr {
	for i := bucketFor(asize); i < format.NumBuckets; i++ {
		for bp := a.buckets[i]; bp != Null; bp = a.nextLink(bp) {
			h := a.header(bp)
			if int(h.Size()) >= asize && !h.Protected() {
				return bp
			}
		}
	}
	return Null
}
