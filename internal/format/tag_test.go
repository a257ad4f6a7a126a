package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackDecode(t *testing.T) {
	tests := []struct {
		name      string
		size      uint32
		allocated bool
	}{
		{"free_min", 16, false},
		{"alloc_min", 16, true},
		{"epilogue", 0, true},
		{"large_free", 1 << 20, false},
		{"large_alloc", 4096 + 8, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := Pack(tt.size, tt.allocated)
			assert.Equal(t, tt.size, tag.Size())
			assert.Equal(t, tt.allocated, tag.Allocated())
			assert.False(t, tag.Protected())
		})
	}
}

func TestPackRejectsUnalignedSize(t *testing.T) {
	assert.Panics(t, func() { Pack(17, false) })
	assert.Panics(t, func() { Pack(4, true) })
}

func TestProtectBit(t *testing.T) {
	tag := Pack(64, true).WithProtect()
	assert.True(t, tag.Protected())
	assert.True(t, tag.Allocated(), "protect must not disturb the allocated bit")
	assert.Equal(t, uint32(64), tag.Size(), "protect must not disturb the size")

	cleared := tag.WithoutProtect()
	assert.False(t, cleared.Protected())
	assert.Equal(t, Pack(64, true), cleared)

	assert.Equal(t, Pack(64, true), tag.Boundary())
}

func TestTagRoundTripThroughBuffer(t *testing.T) {
	b := make([]byte, 16)
	PutTag(b, 4, Pack(24, false).WithProtect())
	got := ReadTag(b, 4)
	assert.Equal(t, uint32(24), got.Size())
	assert.False(t, got.Allocated())
	assert.True(t, got.Protected())
	// Little-endian: low byte holds the flags.
	assert.Equal(t, byte(24|0x2), b[4])
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "[16:a]", Pack(16, true).String())
	assert.Equal(t, "[32:f]", Pack(32, false).String())
	assert.Equal(t, "[32:fp]", Pack(32, false).WithProtect().String())
}

func TestAlign8(t *testing.T) {
	require.Equal(t, 0, Align8(0))
	require.Equal(t, 8, Align8(1))
	require.Equal(t, 8, Align8(8))
	require.Equal(t, 16, Align8(9))
	require.Equal(t, uint32(4104), Align8U32(4097))
	require.True(t, IsAligned(4096))
	require.False(t, IsAligned(4))
}

func TestAdjustedSize(t *testing.T) {
	tests := []struct {
		req  int
		want int
	}{
		{1, 16},
		{7, 16},
		{8, 16},
		{9, 24},
		{16, 24},
		{32, 40},
		{64, 72},
		{100, 112},
		{4096, 4104},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AdjustedSize(tt.req), "AdjustedSize(%d)", tt.req)
	}
}
