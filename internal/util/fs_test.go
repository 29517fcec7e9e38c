package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "punctuation replaced", title: "My Video! #1", want: "My Video_ _1"},
		{name: "allowed characters kept", title: "a-b_c 123", want: "a-b_c 123"},
		{name: "path separators", title: `a/b\c:d`, want: "a_b_c_d"},
		{name: "cjk letters kept", title: "【官方】测试视频", want: "_官方_测试视频"},
		{name: "empty", title: "", want: ""},
		{name: "dots replaced", title: "..", want: "__"},
		{name: "decomposed accent is composed", title: "Cafe\u0301", want: "Caf\u00e9"},
		{name: "superscript digit kept", title: "第²集", want: "第²集"},
		{name: "roman numeral kept", title: "Ⅻ", want: "Ⅻ"},
		{name: "devanagari vowel signs kept", title: "हिंदी", want: "हिंदी"},
		{name: "vulgar fraction kept", title: "½", want: "½"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeTitle(tt.title))
		})
	}
}

func TestSanitizeTitle_OnlyAllowedRunes(t *testing.T) {
	inputs := []string{
		"My Video! #1",
		"<>:\"/\\|?*\x00\x1f",
		"emoji 🎬 title",
		"tab\tnew\nline",
		"mixed 中文 & English (2024)",
	}
	for _, in := range inputs {
		out := SanitizeTitle(in)
		assert.Equal(t, len([]rune(in)), len([]rune(out)), "rune count changed for %q", in)
		for _, r := range out {
			assert.Truef(t, titleRune(r), "rune %q not allowed in %q", r, out)
		}
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "clip.mp4")

	assert.Equal(t, p, UniquePath(p))

	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	assert.Equal(t, filepath.Join(dir, "clip_1.mp4"), UniquePath(p))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip_1.mp4"), []byte("x"), 0o644))
	assert.Equal(t, filepath.Join(dir, "clip_2.mp4"), UniquePath(p))

	noExt := filepath.Join(dir, "README")
	require.NoError(t, os.WriteFile(noExt, []byte("x"), 0o644))
	assert.Equal(t, filepath.Join(dir, "README_1"), UniquePath(noExt))
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")

	require.NoError(t, RemoveIfExists(p))
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	require.NoError(t, RemoveIfExists(p))
	assert.False(t, Exists(p))
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(dst, []byte("old contents"), 0o644))

	n, err := CopyFile(src, dst)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	_, err = CopyFile(filepath.Join(dir, "missing"), dst)
	assert.Error(t, err)
}
