package local

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/aliados/internal/imageenc"
)

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
}

func TestDirOpen(t *testing.T) {
	tmpdir := t.TempDir()
	writeFile(t, tmpdir, "products/pan.jpg", []byte("fake jpeg data"))

	dir, err := NewDir(tmpdir)
	require.NoError(t, err)

	reader, err := dir.Open("products/pan.jpg")
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake jpeg data"), data)
}

func TestDirNotFound(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	require.NoError(t, err)

	_, err = dir.Open("nonexistent.jpg")
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestDirPathTraversal(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	require.NoError(t, err)

	_, err = dir.Open("../../etc/passwd")
	assert.ErrorContains(t, err, "path traversal")
}

func TestNewDirRejectsMissingAndFiles(t *testing.T) {
	tmpdir := t.TempDir()
	_, err := NewDir(filepath.Join(tmpdir, "missing"))
	assert.Error(t, err)

	writeFile(t, tmpdir, "file.txt", []byte("x"))
	_, err = NewDir(filepath.Join(tmpdir, "file.txt"))
	assert.Error(t, err)
}

func TestSourcesFeedEncoder(t *testing.T) {
	tmpdir := t.TempDir()
	writeFile(t, tmpdir, "a.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	writeFile(t, tmpdir, "b.jpg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10})

	dir, err := NewDir(tmpdir)
	require.NoError(t, err)

	enc := imageenc.NewEncoder(1<<20, slog.New(slog.NewTextHandler(io.Discard, nil)))
	got, err := enc.EncodeAll(context.Background(), dir.Sources([]string{"a.png", "b.jpg"}))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "data:image/png;base64,")
	assert.Contains(t, got[1], "data:image/jpeg;base64,")

	_, err = enc.EncodeAll(context.Background(), dir.Sources([]string{"a.png", "missing.jpg"}))
	assert.ErrorIs(t, err, ErrImageNotFound)
}
