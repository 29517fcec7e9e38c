package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"cilicili/internal/downloader"
	"cilicili/internal/model"
	"cilicili/internal/muxer"
	"cilicili/internal/pipeline"
	"cilicili/internal/progress"
	"cilicili/internal/ui"
	"cilicili/internal/util/format"
)

type getFlags struct {
	Page    int
	QN      int
	NoAudio bool
	DryRun  bool
	NoUI    bool
	TUI     bool
}

func bindGetFlags(fs *pflag.FlagSet) {
	fs.IntP("page", "p", 1, "Page (part) of a multi-part video")
	fs.Int("qn", 0, "Video quality id as listed by streams (overrides --quality)")
	fs.Bool("no-audio", false, "Download the video stream only")
	fs.Bool("dry-run", false, "Resolve streams and print the plan without downloading")
	fs.Bool("no-ui", false, "Plain output instead of the terminal UI")
}

func getFlagsFrom(cmd *cobra.Command) getFlags {
	var f getFlags
	f.Page, _ = cmd.Flags().GetInt("page")
	f.QN, _ = cmd.Flags().GetInt("qn")
	f.NoAudio, _ = cmd.Flags().GetBool("no-audio")
	f.DryRun, _ = cmd.Flags().GetBool("dry-run")
	f.NoUI, _ = cmd.Flags().GetBool("no-ui")
	return f
}

func newGetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <BV id | av id | URL>...",
		Short: "Resolve, download and merge one or more videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, a, args, getFlagsFrom(cmd))
		},
	}
	bindGetFlags(cmd.Flags())
	return cmd
}

func runGet(cmd *cobra.Command, a *app, inputs []string, f getFlags) error {
	ctx := cmd.Context()
	opts := a.opts
	opts.NoAudio = f.NoAudio
	opts.NoUI = f.NoUI

	res := pipeline.Resolver{
		Client:  a.client(),
		Quality: opts.Quality,
		QN:      f.QN,
		Cookies: a.cookies(),
		NoAudio: opts.NoAudio,
	}

	if f.DryRun {
		for _, in := range inputs {
			r, err := res.Resolve(ctx, in, f.Page)
			if err != nil {
				return err
			}
			p, err := pipeline.PlanRequest(r.Request, opts.OutDir)
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), in, r, p)
		}
		return nil
	}

	if f.TUI || (!opts.NoUI && isTerminal()) {
		a.tuiLog = true
		a.setupLogging()
		job := func(ctx context.Context, jobID, input string, rep progress.Reporter) error {
			r, err := res.Resolve(ctx, input, f.Page)
			if err != nil {
				return err
			}
			_, err = newService(opts, jobID, rep).Run(ctx, r.Request)
			return err
		}
		return ui.Run(ctx, inputs, opts, job)
	}

	var rep progress.Reporter = progress.NewSlogReporter(nil)
	if isStderrTerminal() {
		rep = progress.NewBarReporter(os.Stderr)
	}
	var errs []error
	for _, in := range inputs {
		r, err := res.Resolve(ctx, in, f.Page)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out, err := newService(opts, uuid.NewString(), rep).Run(ctx, r.Request)
		if !out.Succeeded() {
			if err == nil {
				err = errors.New(out.Message())
			}
			errs = append(errs, err)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.Message())
	}
	return errors.Join(errs...)
}

// newService builds the download pipeline for one job.
func newService(opts model.CLIOptions, jobID string, rep progress.Reporter) *pipeline.Service {
	return pipeline.NewService(
		pipeline.WithFetcher(downloader.New(downloader.Options{Timeout: opts.Timeout})),
		pipeline.WithTool(muxer.NewFFmpeg(opts.FFmpeg, opts.Verbose)),
		pipeline.WithReporter(rep),
		pipeline.WithJobID(jobID),
		pipeline.WithOutDir(opts.OutDir),
		pipeline.WithParallel(opts.Parallel),
		pipeline.WithKeepTemp(opts.KeepTemp),
	)
}

func printPlan(w io.Writer, input string, r pipeline.Resolved, p pipeline.Plan) {
	fmt.Fprintln(w, "Dry-run plan:")
	fmt.Fprintf(w, "- Input:          %s\n", input)
	fmt.Fprintf(w, "- Title:          %s\n", r.Request.Title)
	fmt.Fprintf(w, "- Video:          %s\n", r.Request.Video.Description)
	if p.AudioOffered {
		fmt.Fprintf(w, "- Audio:          %s\n", r.Request.Audio.Description)
	} else {
		fmt.Fprintln(w, "- Audio:          (none)")
	}
	fmt.Fprintf(w, "- Output path:    %s\n", p.OutputPath)
	fmt.Fprintf(w, "- Expected:       %s\n", p.Expected)
	fmt.Fprintf(w, "- Estimated size: %s\n", format.HumanizeBytes(p.EstBytes))
}
