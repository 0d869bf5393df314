package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T, dir string, maxSize int64) *RotatingWriter {
	path := filepath.Join(dir, "test.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	return &RotatingWriter{file: f, path: path, maxSize: maxSize}
}

func TestRotateKeepsWriting(t *testing.T) {
	dir := t.TempDir()
	w := newTestWriter(t, dir, 10)

	// Crosses maxSize and triggers rotation.
	_, err := w.Write([]byte("0123456789abc"))
	require.NoError(t, err)

	n, err := w.Write([]byte("after"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	backup, err := os.ReadFile(filepath.Join(dir, "test.log.1"))
	require.NoError(t, err)
	assert.Equal(t, "0123456789abc", string(backup))

	current, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Equal(t, "after", string(current))

	require.NoError(t, w.Close())
}

func TestRotateReopenFailureSurfacesError(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "logs")
	require.NoError(t, os.Mkdir(sub, 0755))
	w := newTestWriter(t, sub, 10)

	// With the directory gone every reopen path inside rotate fails; later
	// writes must error instead of hitting a closed handle.
	require.NoError(t, os.RemoveAll(sub))

	_, err := w.Write([]byte("0123456789abc"))
	require.NoError(t, err)

	_, err = w.Write([]byte("after"))
	assert.Error(t, err)
	assert.NoError(t, w.Close())
}
