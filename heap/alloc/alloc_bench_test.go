package alloc

import (
	"math/rand"
	"testing"

	"github.com/joshuapare/heapkit/heap"
)

// Benchmark_MallocFree_Small benchmarks a malloc/free pair on small blocks.
func Benchmark_MallocFree_Small(b *testing.B) {
	a := newTestAllocator(b)

	b.ResetTimer()
	b.ReportAllocs()

	for i := range b.N {
		p, err := a.Malloc(uint32(16 + i%112))
		if err != nil {
			b.Fatal(err)
		}
		a.Free(p)
	}
}

// Benchmark_MallocFree_Mixed keeps a rolling window of live blocks so the
// free lists stay populated.
func Benchmark_MallocFree_Mixed(b *testing.B) {
	a := newTestAllocator(b)
	rng := rand.New(rand.NewSource(1))
	window := make([]Ptr, 256)

	b.ResetTimer()
	b.ReportAllocs()

	for i := range b.N {
		slot := i % len(window)
		a.Free(window[slot])
		p, err := a.Malloc(uint32(1 + rng.Intn(2048)))
		if err != nil {
			b.Fatal(err)
		}
		window[slot] = p
	}
}

// Benchmark_Realloc_Growing grows one block repeatedly, restarting at a
// fixed size so the region stays bounded.
func Benchmark_Realloc_Growing(b *testing.B) {
	mapped, err := heap.NewMapped(heap.DefaultMaxSize)
	if err != nil {
		b.Fatal(err)
	}
	defer mapped.Close()
	a, err := New(mapped)
	if err != nil {
		b.Fatal(err)
	}

	var p Ptr
	b.ResetTimer()
	b.ReportAllocs()

	for i := range b.N {
		if i%1024 == 0 {
			a.Free(p)
			p, err = a.Malloc(64)
		} else {
			p, err = a.Realloc(p, uint32(64+(i%1024)*64))
		}
		if err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark_Check benchmarks a full consistency walk over a populated heap.
func Benchmark_Check(b *testing.B) {
	a := newTestAllocator(b)
	for i := range 1000 {
		p, err := a.Malloc(uint32(8 + i%500))
		if err != nil {
			b.Fatal(err)
		}
		if i%3 == 0 {
			a.Free(p)
		}
	}

	b.ResetTimer()
	for range b.N {
		if v := a.Check(nil, false); len(v) != 0 {
			b.Fatal(v[0])
		}
	}
}
