package config

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cilicili/internal/model"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	s, err := Load()
	require.NoError(t, err)
	assert.NotEmpty(t, s.OutDir)
	assert.Equal(t, 2, s.Jobs)
	assert.Equal(t, 5*time.Minute, s.Timeout)
	assert.Equal(t, "best", s.Quality)
	assert.False(t, s.Parallel)
}

func TestLoad_Env(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("CILICILI_OUT_DIR", "/tmp/videos")
	t.Setenv("CILICILI_JOBS", "4")
	t.Setenv("CILICILI_TIMEOUT", "90s")
	t.Setenv("CILICILI_QUALITY", "LOW")
	t.Setenv("CILICILI_PARALLEL", "true")
	t.Setenv("CILICILI_KEEP_TEMP", "true")
	t.Setenv("CILICILI_FFMPEG", "/opt/ffmpeg")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/videos", s.OutDir)
	assert.Equal(t, 4, s.Jobs)
	assert.Equal(t, 90*time.Second, s.Timeout)
	assert.Equal(t, "low", s.Quality)
	assert.True(t, s.Parallel)
	assert.True(t, s.KeepTemp)
	assert.Equal(t, "/opt/ffmpeg", s.FFmpeg)

	o := s.Options()
	assert.Equal(t, model.PresetLow, o.Quality)
	assert.Equal(t, "/tmp/videos", o.OutDir)
	assert.Equal(t, 90*time.Second, o.Timeout)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad quality", env: map[string]string{"CILICILI_QUALITY": "ultra"}},
		{name: "zero jobs", env: map[string]string{"CILICILI_JOBS": "0"}},
		{name: "too many jobs", env: map[string]string{"CILICILI_JOBS": "64"}},
		{name: "zero timeout", env: map[string]string{"CILICILI_TIMEOUT": "0s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validate config")
		})
	}
}

func TestInit_BindsFlags(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	root := &cobra.Command{Use: "cilicili"}
	root.PersistentFlags().String("out-dir", "", "")
	root.PersistentFlags().Int("jobs", 2, "")
	root.PersistentFlags().String("quality", "best", "")
	require.NoError(t, root.PersistentFlags().Parse([]string{"--out-dir", "/tmp/flag", "--jobs", "3", "--quality", "medium"}))

	require.NoError(t, Init(root))
	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/flag", s.OutDir)
	assert.Equal(t, 3, s.Jobs)
	assert.Equal(t, "medium", s.Quality)
}
