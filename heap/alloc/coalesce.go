package alloc

// coalesce merges the free block bp with its free neighbours using boundary
// tags, indexes the result, and returns its address.
//
// A protect-tagged predecessor counts as allocated: it is being held for the
// Realloc of the block before it. Merged neighbours are removed from the
// index before their tags change.
func (a *Allocator) coalesce(bp Ptr) Ptr {
	prevTag := a.prevFooter(bp)
	prevAlloc := prevTag.Allocated()
	if !prevAlloc && a.header(a.prev(bp)).Protected() {
		prevAlloc = true
	}
	next := a.next(bp)
	nextAlloc := a.header(next).Allocated()
	size := a.blockSize(bp)

	switch {
	case prevAlloc && nextAlloc:
		// Nothing to merge.

	case prevAlloc && !nextAlloc:
		size += a.blockSize(next)
		a.remove(next)
		a.writeBlock(bp, size, false)
		a.stats.CoalesceForward++

	case !prevAlloc && nextAlloc:
		prev := a.prev(bp)
		size += a.blockSize(prev)
		a.remove(prev)
		a.writeBlock(prev, size, false)
		bp = prev
		a.stats.CoalesceBackward++

	default:
		prev := a.prev(bp)
		size += a.blockSize(prev) + a.blockSize(next)
		a.remove(prev)
		a.remove(next)
		a.writeBlock(prev, size, false)
		bp = prev
		a.stats.CoalesceForward++
		a.stats.CoalesceBackward++
	}

	a.insert(bp)
	return bp
}

// unprotect clears the protect tag on bp. A free block that was protected may
// have a free successor it was kept apart from; the two are merged.
func (a *Allocator) unprotect(bp Ptr) {
	h := a.header(bp)
	if !h.Protected() {
		return
	}
	a.clearProtect(bp)
	if h.Allocated() {
		return
	}

	next := a.next(bp)
	if a.header(next).Allocated() {
		return
	}
	size := int(h.Size()) + a.blockSize(next)
	a.remove(bp)
	a.remove(next)
	a.writeBlock(bp, size, false)
	a.insert(bp)
	a.stats.CoalesceForward++
}
