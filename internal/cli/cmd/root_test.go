package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cilicili/internal/model"
)

func TestExitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "tool not found", err: model.NewError(model.ErrToolNotFound, "locate", "ffmpeg", nil), want: ExitMissingDep},
		{name: "transport", err: model.NewError(model.ErrTransport, "fetch video", "", nil), want: ExitDownloadError},
		{name: "missing input", err: model.NewError(model.ErrMissingInput, "parse id", "x", nil), want: ExitDownloadError},
		{name: "logic", err: model.NewError(model.ErrLogic, "inspect", "", nil), want: ExitDownloadError},
		{name: "tool execution", err: model.NewError(model.ErrToolExecution, "mux", "", nil), want: ExitToolError},
		{name: "filesystem", err: fmt.Errorf("wrapped: %w", model.NewError(model.ErrFilesystem, "rename", "a", nil)), want: ExitFSError},
		{name: "plain", err: errors.New("bad flag"), want: ExitCLIError},
		{name: "already coded", err: &ExitError{Code: 42}, want: 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ee *ExitError
			require.True(t, errors.As(exitError(tt.err), &ee))
			assert.Equal(t, tt.want, ee.Code)
		})
	}
	assert.NoError(t, exitError(nil))
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"get", "streams", "download", "login", "logout", "whoami", "export", "probe", "convert", "extract-audio", "doctor", "tui", "completion"} {
		c, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}
}

// sandbox points every platform directory into a temp dir.
func sandbox(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, "state"))
	t.Setenv("XDG_DOWNLOAD_DIR", filepath.Join(home, "dl"))
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestWhoamiAndLogoutWithoutLogin(t *testing.T) {
	sandbox(t)

	out, err := execute(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")

	out, err = execute(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
}

func TestExportCommand(t *testing.T) {
	home := sandbox(t)
	src := filepath.Join(home, "clip.mp4")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))
	dst := filepath.Join(home, "exported")

	out, err := execute(t, "export", src, "--to", dst)
	require.NoError(t, err)
	assert.Contains(t, out, "clip.mp4")
	assert.FileExists(t, filepath.Join(dst, "clip.mp4"))

	_, err = execute(t, "export", src, "--to", dst, "--name", "renamed.mp4")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dst, "renamed.mp4"))

	_, err = execute(t, "export", filepath.Join(home, "missing.mp4"), "--to", dst)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrFilesystem))
}

func TestInvalidConfigIsCLIError(t *testing.T) {
	sandbox(t)
	t.Setenv("CILICILI_QUALITY", "ultra")

	_, err := execute(t, "whoami")
	var ee *ExitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, ExitCLIError, ee.Code)
}

func TestGetFlags(t *testing.T) {
	cmd := newGetCmd(nil)
	require.NoError(t, cmd.ParseFlags([]string{"--qn", "64", "-p", "2", "--no-audio"}))

	f := getFlagsFrom(cmd)
	assert.Equal(t, 64, f.QN)
	assert.Equal(t, 2, f.Page)
	assert.True(t, f.NoAudio)

	cmd = newGetCmd(nil)
	require.NoError(t, cmd.ParseFlags(nil))
	assert.Zero(t, getFlagsFrom(cmd).QN)
}
