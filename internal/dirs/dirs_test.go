package dirs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadDir(t *testing.T) {
	if runtime.GOOS == "linux" {
		t.Setenv("XDG_DOWNLOAD_DIR", "/tmp/dl")
		d, err := DownloadDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/tmp/dl", "CiliCili"), d)
		t.Setenv("XDG_DOWNLOAD_DIR", "")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	d, err := DownloadDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Downloads", "CiliCili"), d)
}

func TestStateDirAndSessionFile(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout is linux only")
	}
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	d, err := StateDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/state", "cilicili"), d)

	f, err := SessionFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/state", "cilicili", "login.json"), f)
}

func TestConfigDirLinux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout is linux only")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	d, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/cfg", "cilicili"), d)
}

func TestEnsure(t *testing.T) {
	assert.Error(t, Ensure(""))
	p := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, Ensure(p))
	assert.DirExists(t, p)
}
