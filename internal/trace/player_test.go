package trace

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/format"
)

func loadTrace(t *testing.T, name string) *Trace {
	t.Helper()
	tr, err := ParseFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return tr
}

func Test_Play_Short(t *testing.T) {
	a := newAllocator(t)
	pl := &Player{CheckEvery: 1}

	res, err := pl.Play(a, loadTrace(t, "short1.rep"))
	require.NoError(t, err)
	assert.True(t, res.Valid())
	assert.Equal(t, "short1.rep", res.Name)
	assert.Equal(t, 12, res.Ops)
	assert.Equal(t, int64(8144), res.PeakLive)
	assert.Equal(t, a.HeapSize(), res.HeapSize)
	assert.InDelta(t, 8144/float64(a.HeapSize()), res.Utilization, 1e-9)
	assert.Equal(t, 13, res.Checks, "one per op plus the final check")
	assert.Empty(t, res.Violations)
	assert.Zero(t, res.Stats.LiveBlocks)
}

func Test_Play_Realloc(t *testing.T) {
	a := newAllocator(t)
	res, err := (&Player{CheckEvery: 1}).Play(a, loadTrace(t, "realloc.rep"))
	require.NoError(t, err)
	assert.Equal(t, int64(4112), res.PeakLive)
	assert.Equal(t, 4, res.Stats.ReallocCalls)
	assert.Zero(t, res.Stats.LiveBlocks)
}

func Test_Play_Random(t *testing.T) {
	for _, opts := range [][]alloc.Option{
		nil,
		{alloc.WithChunkSize(256)},
		{alloc.WithGrowthBuffer(0)},
	} {
		a := newAllocator(t, opts...)
		res, err := (&Player{CheckEvery: 7}).Play(a, loadTrace(t, "random.rep"))
		require.NoError(t, err)
		assert.Equal(t, 937, res.Ops)
		assert.Greater(t, res.Utilization, 0.0)
		assert.LessOrEqual(t, res.Utilization, 1.0)
	}
}

func Test_Play_Mapped(t *testing.T) {
	p, err := heap.NewMapped(1 << 22)
	require.NoError(t, err)
	defer p.Close()
	a, err := alloc.New(p)
	require.NoError(t, err)

	_, err = (&Player{}).Play(a, loadTrace(t, "random.rep"))
	require.NoError(t, err)
}

func Test_Play_DuplicateAlloc(t *testing.T) {
	tr, err := Parse(strings.NewReader("100 1 2 1\na 0 8\na 0 8\n"))
	require.NoError(t, err)

	res, err := (&Player{}).Play(newAllocator(t), tr)
	require.ErrorIs(t, err, ErrLiveID)
	var oe *OpError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, 1, oe.Index)
	assert.Equal(t, 3, oe.Op.Line)
	assert.False(t, res.Valid())
	assert.Equal(t, 1, res.Ops)
}

func Test_Play_FreeAndReallocOfDeadID(t *testing.T) {
	tr, err := Parse(strings.NewReader("100 2 3 1\nf 0\nr 1 64\nf 1\n"))
	require.NoError(t, err)

	res, err := (&Player{CheckEvery: 1}).Play(newAllocator(t), tr)
	require.NoError(t, err)
	assert.Equal(t, int64(64), res.PeakLive)
}

func Test_Play_OutOfMemory(t *testing.T) {
	a, err := alloc.New(heap.NewSlice(8192))
	require.NoError(t, err)
	tr, err := Parse(strings.NewReader("100 1 1 1\na 0 100000\n"))
	require.NoError(t, err)

	res, err := (&Player{}).Play(a, tr)
	require.ErrorIs(t, err, alloc.ErrNoMemory)
	assert.Contains(t, res.Err, "line 2")
}

func Test_Replay_DetectsCorruption(t *testing.T) {
	a := newAllocator(t)
	r := &replay{pl: &Player{}, a: a, live: make([]liveBlock, 2), res: &Result{}}

	p, err := a.Malloc(64)
	require.NoError(t, err)
	require.NoError(t, r.settle(0, p, 64))
	require.NoError(t, r.verify(r.live[0], 64))

	a.Payload(p)[10] ^= 0xFF
	err = r.verify(r.live[0], 64)
	require.ErrorIs(t, err, ErrCorrupt)
	assert.Contains(t, err.Error(), "byte 10")
}

func Test_Replay_DetectsOverlap(t *testing.T) {
	a := newAllocator(t)
	r := &replay{pl: &Player{}, a: a, live: make([]liveBlock, 2), res: &Result{}}

	p, err := a.Malloc(64)
	require.NoError(t, err)
	require.NoError(t, r.settle(0, p, 64))

	// Claim an address inside block 0 for id 1.
	err = r.settle(1, p+8, 16)
	require.ErrorIs(t, err, ErrOverlap)
}

func Test_Replay_CheckerFailureDumpsHeap(t *testing.T) {
	a := newAllocator(t)
	var dump strings.Builder
	r := &replay{pl: &Player{Dump: &dump}, a: a, res: &Result{}}

	p, err := a.Malloc(64)
	require.NoError(t, err)
	require.NoError(t, r.check())

	// Stamp a footer that disagrees with the header.
	size := a.BlockSize(p)
	format.PutTag(a.Bytes(), int(p)+size-format.DoubleWordSize, format.Pack(uint32(size), false))

	err = r.check()
	require.ErrorIs(t, err, ErrInconsistent)
	assert.NotEmpty(t, r.res.Violations)
	assert.Equal(t, alloc.TagMismatch, r.res.Violations[0].Kind)
	assert.Contains(t, dump.String(), "Heap (")
	assert.Contains(t, dump.String(), "TagMismatch")
	assert.Equal(t, 2, r.res.Checks)
}

func Test_FillPattern_DiffersPerID(t *testing.T) {
	x := make([]byte, 32)
	y := make([]byte, 32)
	fillPattern(x, patternSeed(1))
	fillPattern(y, patternSeed(2))
	assert.NotEqual(t, x, y)

	z := make([]byte, 32)
	fillPattern(z, patternSeed(1))
	assert.Equal(t, x, z)
}
