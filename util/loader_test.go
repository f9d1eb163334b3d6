package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFrame(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("jpegdata"), 0o644))
}

func TestLoadFrameSequenceOrdersByIndex(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "frame-10.jpg")
	writeFrame(t, dir, "frame-2.jpg")
	writeFrame(t, dir, "frame-1.jpg")

	frames, err := LoadFrameSequence(dir)
	require.NoError(t, err)
	require.Len(t, frames, 3)

	assert.Equal(t, 1, frames[0].Index)
	assert.Equal(t, 2, frames[1].Index)
	assert.Equal(t, 10, frames[2].Index)
	assert.Equal(t, []byte("jpegdata"), frames[0].Data)
}

func TestLoadFrameSequenceSkipsUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "frame-1.jpg")
	writeFrame(t, dir, "preview.jpg")
	writeFrame(t, dir, "notes.txt")
	writeFrame(t, dir, "frame-abc.jpg")

	frames, err := LoadFrameSequence(dir)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, 1, frames[0].Index)
}

func TestLoadFrameSequenceEmptyDirectory(t *testing.T) {
	_, err := LoadFrameSequence(t.TempDir())
	assert.Error(t, err)
}

func TestLoadFrameSequenceMissingDirectory(t *testing.T) {
	_, err := LoadFrameSequence(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
