package alloc

import "github.com/joshuapare/heapkit/internal/format"

// Realloc resizes the block at p to hold at least size bytes and returns its
// (possibly new) address. Payload bytes up to the smaller of the old usable
// size and size are preserved.
//
//   - size == 0 frees p and returns Null.
//   - p == Null grows the region by one chunk, then behaves like Malloc.
//
// Every resized block carries GrowthBuffer bytes of slack. When the settled
// block has less than twice that left over, its successor is protect-tagged
// so ordinary allocation will not take the room this block is likely to grow
// into next.
func (a *Allocator) Realloc(p Ptr, size uint32) (Ptr, error) {
	if !a.inited {
		return Null, ErrNotInitialized
	}
	if size == 0 {
		a.Free(p)
		return Null, nil
	}
	a.stats.ReallocCalls++

	if p == Null {
		// One unconditional growth before the plain allocation.
		if _, err := a.extend(a.chunk); err != nil {
			return Null, err
		}
		return a.Malloc(size)
	}

	target := format.AdjustedSize(int(size)) + a.buffer
	if int64(target) > maxRegion {
		return Null, ErrNoMemory
	}

	bp := p
	if a.blockSize(p) < target {
		var err error
		bp, err = a.growBlock(p, target, int(size))
		if err != nil {
			return Null, err
		}
	} else {
		a.stats.ReallocFits++
	}

	if a.blockSize(bp)-target < 2*a.buffer {
		a.setProtect(a.next(bp))
	}
	return bp, nil
}

// growBlock makes the block at p at least target bytes, in place when the
// successor can be absorbed, otherwise by moving the payload.
func (a *Allocator) growBlock(p Ptr, target, size int) (Ptr, error) {
	cur := a.blockSize(p)
	next := a.next(p)
	// The successor's protect tag, if any, was set on our behalf.
	a.unprotect(next)
	nh := a.header(next)

	switch {
	case nh.Size() == 0:
		// Successor is the epilogue: grow the region under us.
		if _, err := a.extend(max(target-cur, a.chunk)); err != nil {
			return Null, err
		}
		a.absorbNext(p, target)
		return p, nil

	case !nh.Allocated():
		avail := cur + int(nh.Size())
		if avail >= target {
			a.absorbNext(p, target)
			return p, nil
		}
		if a.isEpilogue(a.next(next)) {
			// The free successor is the tail of the region; growth merges into it.
			if _, err := a.extend(max(target-avail, a.chunk)); err != nil {
				return Null, err
			}
			a.absorbNext(p, target)
			return p, nil
		}
	}

	return a.relocate(p, target, size)
}

// absorbNext merges the free successor of p into p and re-tags it as one
// allocated block. When that leaves at least a minimum block beyond target,
// the excess is split off and returned to the free lists.
func (a *Allocator) absorbNext(p Ptr, target int) {
	cur := a.blockSize(p)
	next := a.next(p)
	total := cur + a.blockSize(next)
	a.remove(next)

	if rem := total - target; rem >= format.MinBlockSize {
		a.writeBlock(p, target, true)
		tail := a.next(p)
		a.writeBlock(tail, rem, false)
		a.coalesce(tail)
		a.stats.SplitCount++
		total = target
	} else {
		a.writeBlock(p, total, true)
	}

	a.stats.LiveBytes += int64(total - cur)
	a.stats.ReallocInPlace++
}

// relocate moves the payload of p into a fresh block of target bytes and
// frees p. On failure p is left untouched.
func (a *Allocator) relocate(p Ptr, target, size int) (Ptr, error) {
	np, err := a.Malloc(uint32(target - format.Overhead))
	if err != nil {
		return Null, err
	}

	n := min(a.UsableSize(p), size)
	copy(a.data[np:int(np)+n], a.data[p:int(p)+n])
	a.Free(p)

	a.stats.ReallocMoved++
	a.log.Debug("realloc moved", "from", p, "to", np, "bytes", n, "block", a.blockSize(np))
	return np, nil
}
