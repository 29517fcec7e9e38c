package muxer

import (
	"context"
	"sync"

	"cilicili/internal/util"
	"cilicili/internal/util/deps"
)

// Tool runs the media tool. onLine, when non-nil, receives each stdout line.
type Tool interface {
	Locate() (string, error)
	Run(ctx context.Context, args []string, onLine func(string)) (util.CmdResult, error)
}

// FFmpeg is the Tool backed by a real ffmpeg binary. The binary is located
// once and the result, success or failure, is reused for the process lifetime.
type FFmpeg struct {
	CustomPath string         // Explicit path or name; searched for when empty.
	Runner     util.CmdRunner // Defaults to util.NewDefaultRunner.
	Verbose    bool

	once sync.Once
	path string
	err  error
}

// NewFFmpeg returns an FFmpeg tool. customPath may be empty.
func NewFFmpeg(customPath string, verbose bool) *FFmpeg {
	return &FFmpeg{CustomPath: customPath, Verbose: verbose}
}

func (f *FFmpeg) Locate() (string, error) {
	f.once.Do(func() {
		f.path, f.err = deps.FindFFmpeg(f.CustomPath)
	})
	return f.path, f.err
}

func (f *FFmpeg) Run(ctx context.Context, args []string, onLine func(string)) (util.CmdResult, error) {
	path, err := f.Locate()
	if err != nil {
		return util.CmdResult{Code: -1, Err: err}, err
	}
	return f.runner().Run(ctx, util.CmdSpec{
		Path:       path,
		Args:       args,
		Verbose:    f.Verbose,
		StdoutLine: onLine,
	})
}

func (f *FFmpeg) runner() util.CmdRunner {
	if f.Runner != nil {
		return f.Runner
	}
	return util.NewDefaultRunner()
}
