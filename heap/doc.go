// Package heap provides the managed memory region that the allocator carves
// into blocks.
//
// # Overview
//
// A region is one contiguous byte range that only ever grows, in the manner of
// sbrk(2). The allocator in heap/alloc addresses blocks by byte offset from the
// start of the region, so offsets stay valid across growth even when the
// backing storage moves.
//
// # Providers
//
// The Provider interface is the whole contract:
//
//   - Grow(n): extend the region by n bytes and return the old end offset
//   - Bytes(): the current region, len(Bytes()) == Size()
//   - Size(): the current end offset (the break)
//   - Close(): release backing memory
//
// Two implementations are provided:
//
//   - Slice: an in-process byte slice whose capacity doubles on demand
//   - Mapped: an anonymous memory mapping reserved up front (linux, darwin);
//     growth only moves the break, so Bytes() never changes address
//
// On other platforms NewMapped falls back to a Slice.
//
// # Limits
//
// Every provider has a fixed maximum size. Grow returns an error wrapping
// ErrExhausted once that limit would be exceeded, and leaves the region
// unchanged.
//
// # Thread Safety
//
// Providers are not thread-safe. The allocator that owns a provider is the
// only caller.
package heap
