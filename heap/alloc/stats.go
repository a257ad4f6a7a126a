package alloc

import (
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/internal/format"
)

// allocatorStats holds internal allocator statistics.
type allocatorStats struct {
	MallocCalls      int   // Non-zero Malloc() calls, including those made by Realloc
	FreeCalls        int   // Non-null Free() calls
	ReallocCalls     int   // Non-zero Realloc() calls
	AllocFastPath    int   // Allocations served from the free lists
	AllocSlowPath    int   // Allocations that required growth
	GrowCalls        int   // Successful region growths
	GrowBytes        int64 // Total bytes added to the region
	SplitCount       int   // Blocks split by place or in-place Realloc
	CoalesceForward  int   // Merges with the following block
	CoalesceBackward int   // Merges with the preceding block
	ReallocFits      int   // Realloc calls where the block was already big enough
	ReallocInPlace   int   // Realloc calls satisfied by absorbing the successor
	ReallocMoved     int   // Realloc calls that moved the payload
	ListInserts      int   // Free-list insertions
	ListRemoves      int   // Free-list removals
	LiveBlocks       int   // Currently allocated blocks
	LiveBytes        int64 // Bytes in currently allocated blocks, including tags
}

// Stats is a snapshot of allocator counters plus free-list occupancy.
type Stats struct {
	allocatorStats

	HeapSize    int   // Region size in bytes
	FreeBlocks  int   // Indexed free blocks
	FreeBytes   int64 // Bytes in indexed free blocks
	LargestFree int   // Largest indexed free block
	BucketCount []int // Free blocks per bucket
	Protected   int   // Free blocks currently protect-tagged
}

// Stats returns current allocator statistics.
func (a *Allocator) Stats() Stats {
	s := Stats{
		allocatorStats: a.stats,
		HeapSize:       len(a.data),
		BucketCount:    make([]int, format.NumBuckets),
	}
	for i := range a.buckets {
		for bp := a.buckets[i]; bp != Null; bp = a.nextLink(bp) {
			h := a.header(bp)
			s.FreeBlocks++
			s.FreeBytes += int64(h.Size())
			s.LargestFree = max(s.LargestFree, int(h.Size()))
			s.BucketCount[i]++
			if h.Protected() {
				s.Protected++
			}
		}
	}
	return s
}

// PrintStats writes allocator statistics to w.
func (a *Allocator) PrintStats(w io.Writer) {
	s := a.Stats()
	fmt.Fprintf(w, "\n=== ALLOCATOR STATISTICS ===\n")
	fmt.Fprintf(w, "Heap size:          %d bytes (%d grow calls)\n", s.HeapSize, s.GrowCalls)
	fmt.Fprintf(
		w,
		"Malloc calls:       %d (fast: %d, slow: %d)\n",
		s.MallocCalls,
		s.AllocFastPath,
		s.AllocSlowPath,
	)
	fmt.Fprintf(w, "Free calls:         %d\n", s.FreeCalls)
	fmt.Fprintf(
		w,
		"Realloc calls:      %d (fits: %d, in place: %d, moved: %d)\n",
		s.ReallocCalls,
		s.ReallocFits,
		s.ReallocInPlace,
		s.ReallocMoved,
	)
	fmt.Fprintf(w, "Block splits:       %d\n", s.SplitCount)
	fmt.Fprintf(w, "Coalesce fwd:       %d\n", s.CoalesceForward)
	fmt.Fprintf(w, "Coalesce back:      %d\n", s.CoalesceBackward)
	fmt.Fprintf(w, "Live:               %d blocks, %d bytes\n", s.LiveBlocks, s.LiveBytes)

	fmt.Fprintf(w, "\nFree lists:\n")
	fmt.Fprintf(w, "  Free blocks:      %d (%d protected)\n", s.FreeBlocks, s.Protected)
	fmt.Fprintf(w, "  Free bytes:       %d\n", s.FreeBytes)
	fmt.Fprintf(w, "  Largest free:     %d\n", s.LargestFree)
	for i, n := range s.BucketCount {
		if n == 0 {
			continue
		}
		fmt.Fprintf(w, "  bucket[%2d] >=%-8d %d\n", i, 1<<i, n)
	}
	fmt.Fprintf(w, "============================\n\n")
}
