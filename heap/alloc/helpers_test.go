package alloc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
)

// newTestAllocator returns an allocator over a fresh slice provider.
func newTestAllocator(t testing.TB, opts ...Option) *Allocator {
	t.Helper()
	p := heap.NewSlice(0)
	t.Cleanup(func() { _ = p.Close() })
	a, err := New(p, opts...)
	require.NoError(t, err)
	return a
}

// requireConsistent fails the test with a block dump if Check finds anything.
func requireConsistent(t testing.TB, a *Allocator) {
	t.Helper()
	var sb strings.Builder
	if v := a.Check(&sb, false); len(v) != 0 {
		sb.WriteString("\n")
		a.Check(&sb, true)
		t.Fatalf("heap inconsistent (%d violations):\n%s", len(v), sb.String())
	}
}

// requireMalloc allocates size bytes and fails the test on error.
func requireMalloc(t testing.TB, a *Allocator, size uint32) Ptr {
	t.Helper()
	p, err := a.Malloc(size)
	require.NoError(t, err)
	require.NotEqual(t, Null, p)
	return p
}

// fill writes a pattern derived from seed into the payload of p.
func fill(a *Allocator, p Ptr, seed byte) {
	b := a.Payload(p)
	for i := range b {
		b[i] = seed + byte(i)
	}
}

// requirePattern verifies the first n payload bytes of p carry the fill pattern.
func requirePattern(t testing.TB, a *Allocator, p Ptr, seed byte, n int) {
	t.Helper()
	b := a.Payload(p)
	require.GreaterOrEqual(t, len(b), n)
	for i := range n {
		if b[i] != seed+byte(i) {
			t.Fatalf("payload of 0x%X differs at byte %d: got %#x, want %#x", p, i, b[i], seed+byte(i))
		}
	}
}

// freeBlocks lists the indexed free blocks of every bucket.
func freeBlocks(a *Allocator) map[Ptr]int {
	out := make(map[Ptr]int)
	for i := range a.buckets {
		for bp := a.buckets[i]; bp != Null; bp = a.nextLink(bp) {
			out[bp] = i
		}
	}
	return out
}
