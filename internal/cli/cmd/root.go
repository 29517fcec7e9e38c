package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cilicili/internal/bilibili"
	"cilicili/internal/config"
	"cilicili/internal/model"
	"cilicili/internal/session"
)

const (
	ExitOK            = 0
	ExitCLIError      = 1
	ExitMissingDep    = 2
	ExitDownloadError = 3
	ExitToolError     = 4
	ExitFSError       = 5
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// exitError maps err to the exit code of its kind.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee
	}
	code := ExitCLIError
	switch model.KindOf(err) {
	case model.ErrToolNotFound:
		code = ExitMissingDep
	case model.ErrMissingInput, model.ErrTransport, model.ErrLogic:
		code = ExitDownloadError
	case model.ErrToolExecution:
		code = ExitToolError
	case model.ErrFilesystem:
		code = ExitFSError
	}
	return &ExitError{Code: code, Err: err}
}

// app is the state shared by every command once flags and config are loaded.
type app struct {
	settings config.Settings
	opts     model.CLIOptions
	tuiLog   bool // the TUI owns the terminal; only warnings are logged
}

func (a *app) client() *bilibili.Client {
	return bilibili.New(bilibili.Options{})
}

func (a *app) store() (*session.Store, error) {
	return session.Default()
}

// cookies returns the stored login cookies, or "" when logged out.
func (a *app) cookies() string {
	st, err := a.store()
	if err != nil {
		return ""
	}
	return st.Cookies()
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "cilicili [BV id | av id | URL]...",
		Short: "Download bilibili videos",
		Long: "cilicili resolves a bilibili video, downloads its DASH video and audio streams " +
			"and merges them into one file with ffmpeg. Without ffmpeg the video is kept on its own.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runGet(cmd, a, args, getFlagsFrom(cmd))
		},
	}

	pf := root.PersistentFlags()
	pf.StringP("out-dir", "o", "", "Output directory (default: the platform download folder)")
	pf.BoolP("verbose", "v", false, "Debug logging and subprocess output")
	pf.String("ffmpeg", "", "Path to ffmpeg")
	pf.Int("jobs", 2, "Max concurrent downloads")
	pf.Duration("timeout", 0, "Per-stream download timeout (default 5m)")
	pf.Bool("parallel", false, "Fetch video and audio at the same time")
	pf.Bool("keep-temp", false, "Keep partial streams after a failed download")
	pf.StringP("quality", "q", "", "Stream quality: best, medium, low (default best)")

	bindGetFlags(root.Flags())

	root.AddCommand(
		newGetCmd(a),
		newStreamsCmd(a),
		newDownloadCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newExportCmd(a),
		newProbeCmd(a),
		newConvertCmd(a),
		newExtractAudioCmd(a),
		newDoctorCmd(a),
		newTuiCmd(a),
		newCompletionCmd(),
	)
	return root
}

// load merges flags, env and config file, then installs the logger.
func (a *app) load(cmd *cobra.Command) error {
	if err := config.Init(cmd.Root()); err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	s, err := config.Load()
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	a.settings = s
	a.opts = s.Options()
	a.setupLogging()
	return nil
}

func (a *app) setupLogging() {
	level := slog.LevelInfo
	switch {
	case a.opts.Verbose:
		level = slog.LevelDebug
	case a.tuiLog:
		level = slog.LevelWarn
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	return exitError(newRootCmd().ExecuteContext(ctx))
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func isStderrTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
