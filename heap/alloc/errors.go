package alloc

import "errors"

var (
	// ErrNoMemory indicates that no free block fit and the region could not grow.
	ErrNoMemory = errors.New("alloc: out of memory")

	// ErrInitialized indicates Init was called on an allocator that already owns a heap.
	ErrInitialized = errors.New("alloc: already initialized")

	// ErrNotInitialized indicates an operation before Init succeeded.
	ErrNotInitialized = errors.New("alloc: not initialized")

	// ErrMisaligned indicates the provider's break is not 8-byte aligned at Init.
	ErrMisaligned = errors.New("alloc: region break not 8-byte aligned")
)
