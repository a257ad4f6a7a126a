package trace

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func newAllocator(t *testing.T, opts ...alloc.Option) *alloc.Allocator {
	t.Helper()
	p := heap.NewSlice(0)
	t.Cleanup(func() { _ = p.Close() })
	a, err := alloc.New(p, opts...)
	require.NoError(t, err)
	return a
}
