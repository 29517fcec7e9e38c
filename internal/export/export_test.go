package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cilicili/internal/model"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestFileAddsSuffixOnCollision(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.mp4")
	writeFile(t, src, "video")
	dst := filepath.Join(t.TempDir(), "out")

	first, err := File(src, dst, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dst, "clip.mp4"), first)

	second, err := File(src, dst, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dst, "clip_1.mp4"), second)

	third, err := File(src, dst, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dst, "clip_2.mp4"), third)

	data, err := os.ReadFile(third)
	require.NoError(t, err)
	assert.Equal(t, "video", string(data))
	assert.FileExists(t, src, "source is kept")
}

func TestFileRename(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.mp4")
	writeFile(t, src, "x")
	dst := t.TempDir()

	got, err := File(src, dst, "renamed.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dst, "renamed.mp4"), got)
}

func TestFileMissingSource(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "nope.mp4"), t.TempDir(), "")
	assert.True(t, errors.Is(err, model.ErrFilesystem))
}

func TestBatchContinuesPastFailures(t *testing.T) {
	srcDir := t.TempDir()
	a := filepath.Join(srcDir, "a.mp4")
	b := filepath.Join(srcDir, "b.mp3")
	writeFile(t, a, "a")
	writeFile(t, b, "b")
	missing := filepath.Join(srcDir, "missing.mp4")
	dst := t.TempDir()

	done, err := Batch([]string{a, missing, b}, dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.mp4")
	assert.Equal(t, []string{filepath.Join(dst, "a.mp4"), filepath.Join(dst, "b.mp3")}, done)
}

func TestBatchAllOK(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.mp4")
	writeFile(t, src, "a")
	done, err := Batch([]string{src}, t.TempDir())
	require.NoError(t, err)
	assert.Len(t, done, 1)
}

func TestInfo(t *testing.T) {
	p := filepath.Join(t.TempDir(), "clip.mp4")
	writeFile(t, p, "12345")

	fi, err := Info(p)
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", fi.Name)
	assert.EqualValues(t, 5, fi.Size)
	assert.False(t, fi.IsDir)
	assert.False(t, fi.Modified.IsZero())
	assert.Contains(t, fi.String(), "5 B")

	_, err = Info(filepath.Join(t.TempDir(), "nope"))
	assert.True(t, errors.Is(err, model.ErrFilesystem))
}
