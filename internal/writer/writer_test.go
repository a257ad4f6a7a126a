package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriter_WritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "heap.img")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	w := &FileWriter{Path: path}
	require.NoError(t, w.WriteImage([]byte{0, 0, 0, 0, 9, 0, 0, 0}))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 9, 0, 0, 0}, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestFileWriter_MissingDir(t *testing.T) {
	w := &FileWriter{Path: filepath.Join(t.TempDir(), "no", "such", "heap.img")}
	require.Error(t, w.WriteImage([]byte{1}))
}

func TestMemWriter_Copies(t *testing.T) {
	src := []byte{1, 2, 3}
	var w Writer = &MemWriter{}
	require.NoError(t, w.WriteImage(src))
	src[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, w.(*MemWriter).Buf)
}
