// Package alloc provides malloc, free and realloc over a growable heap region.
//
// # Overview
//
// The allocator manages one contiguous region supplied by a heap.Provider and
// hands out blocks addressed by their byte offset from the region start (Ptr).
// It uses boundary tags for constant-time coalescing, a segregated free-list
// index for allocation, and a growth heuristic that lets a block that is
// resized repeatedly grow in place.
//
// # Block Layout
//
// Every block carries a 4-byte header and a 4-byte footer:
//
//	        +--------+---------------------------+--------+
//	        | header |         payload           | footer |
//	        +--------+---------------------------+--------+
//	        ^        ^ bp (8-aligned)            ^
//	        bp-4                                 bp+size-8
//
// Both words hold the block size (including the tags) and an allocated bit.
// The header may also hold the protect bit, see Realloc.
//
// The region starts with a pad word, an 8-byte allocated prologue block and
// a zero-size allocated epilogue header. The epilogue always sits in the
// last word of the region; growth turns it into the header of a new free
// block and writes a fresh epilogue after it.
//
// # Free Lists
//
// Free blocks are indexed in 20 buckets by the position of the highest set
// bit of their size:
//
//	Bucket  4:     16 -     31 bytes
//	Bucket  5:     32 -     63 bytes
//	Bucket  6:     64 -    127 bytes
//	...
//	Bucket 19: 524288+ bytes
//
// Each bucket is a doubly-linked list threaded through the free payloads and
// kept in ascending size order. Malloc scans from the request's bucket
// upward and takes the first block that fits, so within a bucket the choice
// is the smallest fitting block.
//
// # Coalescing
//
// Free merges a block with free neighbours on both sides, so no two free
// blocks are ever adjacent. The one exception is a protect-tagged free block,
// which is held for the block before it and is never merged backward.
//
// # Realloc Growth
//
// Realloc sizes every block it touches to the request plus a growth buffer
// (128 bytes by default). When the block has to grow it first tries to absorb
// its successor, extending the region when the successor is at the end.
// After each Realloc, if the block has less than twice the buffer left over,
// the successor is protect-tagged. Malloc skips protected blocks, keeping
// them available for the next in-place growth.
//
// # Usage Example
//
//	p := heap.NewSlice(0)
//	defer p.Close()
//
//	a, err := alloc.New(p)
//	if err != nil {
//	    return err
//	}
//
//	ptr, err := a.Malloc(100)
//	if err != nil {
//	    return err
//	}
//	copy(a.Payload(ptr), data)
//
//	ptr, err = a.Realloc(ptr, 400)
//	if err != nil {
//	    return err
//	}
//
//	a.Free(ptr)
//
// # Consistency Checking
//
// Check walks the whole heap and the free-list index and reports every
// invariant it finds broken. It is meant for tests and tooling.
//
// # Thread Safety
//
// Allocator is NOT thread-safe.
package alloc
