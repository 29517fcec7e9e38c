// Package muxer drives ffmpeg to merge, convert and extract media files.
package muxer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cilicili/internal/model"
	"cilicili/internal/progress"
	"cilicili/internal/util"
)

// maxStderr bounds the tool output kept on an error.
const maxStderr = 4 << 10

// Option tunes a single tool invocation.
type Option func(*runConfig)

type runConfig struct {
	jobID      string
	duration   float64
	onProgress func(progress.Update)
}

// WithProgress asks ffmpeg for machine-readable progress and forwards it to fn.
// durationSec is the media length, or 0 when unknown.
func WithProgress(jobID string, durationSec float64, fn func(progress.Update)) Option {
	return func(c *runConfig) {
		c.jobID = jobID
		c.duration = durationSec
		c.onProgress = fn
	}
}

// Mux merges the video track of videoPath and the audio track of audioPath
// into outputPath. Both inputs are deleted after a successful merge; on
// failure they are left untouched and any existing file at outputPath is kept.
func Mux(ctx context.Context, tool Tool, videoPath, audioPath, outputPath string, opts ...Option) (string, error) {
	if err := prepare("mux", outputPath, videoPath, audioPath); err != nil {
		return "", err
	}

	cfg := newRunConfig(opts)
	part := partPath(outputPath)
	args := BuildMuxArgs(videoPath, audioPath, part, cfg.onProgress != nil)
	if err := run(ctx, tool, "mux", part, outputPath, args, progress.StageMerging, cfg); err != nil {
		return "", err
	}

	for _, in := range []string{videoPath, audioPath} {
		if err := util.RemoveIfExists(in); err != nil {
			slog.Warn("could not remove merged input", "path", in, "err", err)
		}
	}
	return outputPath, nil
}

// Convert transcodes inputPath into outputPath using format (mp4, avi, mkv).
// The input is kept.
func Convert(ctx context.Context, tool Tool, inputPath, outputPath, format string, opts ...Option) (string, error) {
	cfg := newRunConfig(opts)
	part := partPath(outputPath)
	args, err := BuildConvertArgs(inputPath, part, format, cfg.onProgress != nil)
	if err != nil {
		return "", model.NewError(model.ErrMissingInput, "convert", inputPath, err)
	}
	return transcode(ctx, tool, "convert", inputPath, part, outputPath, args, cfg)
}

// ExtractAudio writes the audio track of inputPath to outputPath using
// format (mp3, aac, wav). The input is kept.
func ExtractAudio(ctx context.Context, tool Tool, inputPath, outputPath, format string, opts ...Option) (string, error) {
	cfg := newRunConfig(opts)
	part := partPath(outputPath)
	args, err := BuildExtractAudioArgs(inputPath, part, format, cfg.onProgress != nil)
	if err != nil {
		return "", model.NewError(model.ErrMissingInput, "extract audio", inputPath, err)
	}
	return transcode(ctx, tool, "extract audio", inputPath, part, outputPath, args, cfg)
}

func transcode(ctx context.Context, tool Tool, op, inputPath, part, outputPath string, args []string, cfg runConfig) (string, error) {
	if err := prepare(op, outputPath, inputPath); err != nil {
		return "", err
	}
	if err := run(ctx, tool, op, part, outputPath, args, progress.StageConverting, cfg); err != nil {
		return "", err
	}
	return outputPath, nil
}

// prepare checks every input, refuses an output that is one of them and
// creates the output directory.
func prepare(op, outputPath string, inputs ...string) error {
	for _, in := range inputs {
		if err := checkInput(in); err != nil {
			return err
		}
		if samePath(in, outputPath) {
			return model.NewError(model.ErrMissingInput, op, outputPath, errors.New("output would overwrite an input"))
		}
	}
	if err := util.EnsureDir(filepath.Dir(outputPath)); err != nil {
		return model.NewError(model.ErrFilesystem, "create dir", filepath.Dir(outputPath), err)
	}
	return nil
}

// samePath reports whether a and b name the same file. a must exist.
func samePath(a, b string) bool {
	if fb, err := os.Stat(b); err == nil {
		fa, err := os.Stat(a)
		return err == nil && os.SameFile(fa, fb)
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// partPath is the sibling ffmpeg writes to before the result is renamed into
// place. The extension is kept so ffmpeg still picks the container from it.
func partPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + ".part" + ext
}

// run executes tool writing to part and renames part over outputPath on
// success. On failure only part is removed.
func run(ctx context.Context, tool Tool, op, part, outputPath string, args []string, stage progress.Stage, cfg runConfig) error {
	var onLine func(string)
	if cfg.onProgress != nil {
		var ps ProgressState
		onLine = func(line string) {
			if u, ok := ps.UpdateFromLine(line, cfg.jobID, stage, cfg.duration); ok {
				cfg.onProgress(u)
			}
		}
	}

	res, err := tool.Run(ctx, args, onLine)
	if err == nil {
		if err := os.Rename(part, outputPath); err != nil {
			_ = util.RemoveIfExists(part)
			return model.NewError(model.ErrFilesystem, "rename", outputPath, err)
		}
		return nil
	}

	if errors.Is(err, model.ErrToolNotFound) {
		return err
	}
	_ = util.RemoveIfExists(part)
	e := model.NewError(model.ErrToolExecution, op, outputPath, err)
	e.Detail = tail(strings.TrimSpace(string(res.Stderr)), maxStderr)
	return e
}

func checkInput(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return model.NewError(model.ErrFilesystem, "open input", path, err)
	}
	if fi.IsDir() {
		return model.NewError(model.ErrFilesystem, "open input", path, fmt.Errorf("is a directory"))
	}
	return nil
}

func newRunConfig(opts []Option) runConfig {
	var c runConfig
	for _, o := range opts {
		o(&c)
	}
	return c
}

// tail keeps the last n bytes of s, where ffmpeg prints the actual error.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
