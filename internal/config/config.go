// Package config loads settings from flags, CILICILI_* environment
// variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cilicili/internal/dirs"
	"cilicili/internal/model"
)

// Settings is the effective configuration after flags, env and file are merged.
type Settings struct {
	OutDir   string        `mapstructure:"out_dir" validate:"required"`
	Verbose  bool          `mapstructure:"verbose"`
	FFmpeg   string        `mapstructure:"ffmpeg"`
	Jobs     int           `mapstructure:"jobs" validate:"min=1,max=16"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Parallel bool          `mapstructure:"parallel"`
	KeepTemp bool          `mapstructure:"keep_temp"`
	Quality  string        `mapstructure:"quality" validate:"oneof=best medium low"`
}

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"out-dir":   "out_dir",
	"verbose":   "verbose",
	"ffmpeg":    "ffmpeg",
	"jobs":      "jobs",
	"timeout":   "timeout",
	"parallel":  "parallel",
	"keep-temp": "keep_temp",
	"quality":   "quality",
}

// Init wires Viper with config paths, env, defaults, and flag bindings.
// It is non-fatal: a missing config file is not an error.
func Init(root *cobra.Command) error {
	_ = dirs.EnsureAll()

	if cfgDir, err := dirs.ConfigDir(); err == nil {
		viper.AddConfigPath(cfgDir)
	}
	viper.SetConfigName("config") // supports config.{yaml|yml|json|toml}

	setupEnv()

	for flag, key := range flagKeys {
		if f := root.PersistentFlags().Lookup(flag); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// setupEnv registers CILICILI_* variables and defaults for every key.
func setupEnv() {
	viper.SetEnvPrefix("CILICILI")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	outDir, err := dirs.DownloadDir()
	if err != nil {
		outDir = "."
	}
	viper.SetDefault("out_dir", outDir)
	viper.SetDefault("verbose", false)
	viper.SetDefault("ffmpeg", "")
	viper.SetDefault("jobs", 2)
	viper.SetDefault("timeout", 5*time.Minute)
	viper.SetDefault("parallel", false)
	viper.SetDefault("keep_temp", false)
	viper.SetDefault("quality", string(model.PresetBest))
}

// Load unmarshals and validates the current settings.
func Load() (Settings, error) {
	setupEnv()

	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}
	s.Quality = strings.ToLower(s.Quality)

	if err := validator.New().Struct(s); err != nil {
		return Settings{}, fmt.Errorf("validate config: %w", err)
	}
	slog.Debug("loaded configuration", "settings", s, "file", viper.ConfigFileUsed())
	return s, nil
}

// Options converts settings into the runtime options used by commands.
func (s Settings) Options() model.CLIOptions {
	return model.CLIOptions{
		OutDir:   s.OutDir,
		Quality:  model.QualityPreset(s.Quality),
		FFmpeg:   s.FFmpeg,
		Timeout:  s.Timeout,
		Parallel: s.Parallel,
		KeepTemp: s.KeepTemp,
		Verbose:  s.Verbose,
		Jobs:     s.Jobs,
	}
}
