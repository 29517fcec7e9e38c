// Package pipeline runs a single download request: fetch the video and audio
// streams, inspect what arrived, then rename or merge into one final file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"cilicili/internal/bilibili"
	"cilicili/internal/downloader"
	"cilicili/internal/model"
	"cilicili/internal/muxer"
	"cilicili/internal/progress"
	"cilicili/internal/util"
	"cilicili/internal/util/media"
)

var errVideoMissing = errors.New("video stream URL missing")

// HeaderFunc builds the request headers for a stream fetch.
type HeaderFunc func(req model.DownloadRequest) http.Header

// Service orchestrates fetch → inspect → rename/mux for one request.
type Service struct {
	fetcher  downloader.Fetcher
	tool     muxer.Tool
	reporter progress.Reporter
	headers  HeaderFunc
	jobID    string
	outDir   string
	parallel bool
	keepTemp bool

	// observed, when set, receives every state transition (tests).
	observed func(State)
}

// Option configures a Service.
type Option func(*Service)

// WithFetcher replaces the HTTP stream fetcher.
func WithFetcher(f downloader.Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// WithTool replaces the ffmpeg tool used for merging.
func WithTool(t muxer.Tool) Option {
	return func(s *Service) {
		s.tool = t
	}
}

// WithReporter attaches a progress reporter.
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) {
		s.reporter = rp
	}
}

// WithHeaders overrides how fetch headers are built.
func WithHeaders(fn HeaderFunc) Option {
	return func(s *Service) {
		s.headers = fn
	}
}

// WithJobID sets the job ID associated with reporter events.
func WithJobID(id string) Option {
	return func(s *Service) {
		s.jobID = id
	}
}

// WithOutDir sets the directory that receives intermediate and final files.
func WithOutDir(dir string) Option {
	return func(s *Service) {
		s.outDir = dir
	}
}

// WithParallel fetches the video and audio streams concurrently.
func WithParallel(on bool) Option {
	return func(s *Service) {
		s.parallel = on
	}
}

// WithKeepTemp leaves intermediate files in place after a failed fetch.
func WithKeepTemp(on bool) Option {
	return func(s *Service) {
		s.keepTemp = on
	}
}

// NewService constructs a Service, filling in defaults for anything not set.
func NewService(opts ...Option) *Service {
	s := &Service{}
	for _, o := range opts {
		o(s)
	}
	if s.fetcher == nil {
		s.fetcher = downloader.New(downloader.Options{})
	}
	if s.tool == nil {
		s.tool = muxer.NewFFmpeg("", false)
	}
	if s.reporter == nil {
		s.reporter = progress.Nop{}
	}
	if s.headers == nil {
		s.headers = func(req model.DownloadRequest) http.Header {
			return bilibili.StreamHeaders(req.VideoID, req.Cookies)
		}
	}
	return s
}

// Run executes req and returns its single Outcome. The error is non-nil
// exactly when the outcome is Failed.
func (s *Service) Run(ctx context.Context, req model.DownloadRequest) (model.Outcome, error) {
	s.enter(StateStart)
	log := slog.With("job", s.jobID, "title", req.Title)

	if !req.Video.Offered() {
		return s.fail(model.NewError(model.ErrMissingInput, "fetch video", "", errVideoMissing))
	}

	target, err := media.ResolveTarget(req.Title, s.outDir)
	if err != nil {
		return s.fail(err)
	}
	header := s.headers(req)

	if err := s.fetchStreams(ctx, log, req, target, header); err != nil {
		if !s.keepTemp {
			_ = util.RemoveIfExists(target.VideoPath)
			_ = util.RemoveIfExists(target.AudioPath)
		}
		return s.fail(err)
	}

	s.enter(StateInspecting)
	s.reporter.Update(progress.Update{JobID: s.jobID, Stage: progress.StageInspecting, Percent: -1, Message: "Inspecting downloads"})
	hasVideo := util.Exists(target.VideoPath)
	hasAudio := util.Exists(target.AudioPath)
	log.Debug("inspected intermediates", "video", hasVideo, "audio", hasAudio)

	switch {
	case hasVideo && !hasAudio:
		s.enter(StateRenamingVideo)
		if err := rename(target.VideoPath, target.FinalPath); err != nil {
			return s.fail(err)
		}
		return s.done(model.Outcome{Kind: model.OutcomeVideoOnly, Path: target.FinalPath})

	case !hasVideo && hasAudio:
		s.enter(StateRenamingAudio)
		if err := rename(target.AudioPath, target.AudioFinalPath); err != nil {
			return s.fail(err)
		}
		return s.done(model.Outcome{Kind: model.OutcomeAudioOnly, Path: target.AudioFinalPath})

	case hasVideo && hasAudio:
		s.enter(StateMuxing)
		s.reporter.Update(progress.Update{JobID: s.jobID, Stage: progress.StageMerging, Percent: -1, Message: "Merging"})
		out, muxErr := muxer.Mux(ctx, s.tool, target.VideoPath, target.AudioPath, target.FinalPath,
			muxer.WithProgress(s.jobID, req.Duration, s.reporter.Update))
		if muxErr == nil {
			return s.done(model.Outcome{Kind: model.OutcomeMuxed, Path: out})
		}
		if ctx.Err() != nil {
			log.Info("merge cancelled, keeping intermediates", "video", target.VideoPath, "audio", target.AudioPath)
			return s.fail(annotate(ctx.Err(), "mux"))
		}

		log.Warn("merge failed, keeping video only", "err", muxErr)
		s.reporter.Log(progress.Log{JobID: s.jobID, Stream: progress.StreamStderr, Line: "merge failed: " + muxErr.Error()})
		if err := util.RemoveIfExists(target.AudioPath); err != nil {
			log.Warn("could not remove audio intermediate", "path", target.AudioPath, "err", err)
		}
		s.enter(StateRenamingVideo)
		if err := rename(target.VideoPath, target.FinalPath); err != nil {
			return s.fail(err)
		}
		return s.done(model.Outcome{
			Kind:     model.OutcomeVideoOnly,
			Path:     target.FinalPath,
			Reason:   muxErr.Error(),
			Degraded: true,
		})

	default:
		return s.fail(model.NewError(model.ErrLogic, "inspect", target.Dir, nil))
	}
}

// fetchStreams downloads the video and, when offered, the audio stream.
// Both are finished or known absent on return.
func (s *Service) fetchStreams(ctx context.Context, log *slog.Logger, req model.DownloadRequest, target model.DownloadTarget, header http.Header) error {
	fetchVideo := func(ctx context.Context) error {
		s.enter(StateFetchingVideo)
		_, err := s.fetch(ctx, progress.StageVideo, req.Video.URL, header, target.VideoPath)
		if err != nil {
			return annotate(err, "fetch video")
		}
		return nil
	}
	fetchAudio := func(ctx context.Context) error {
		s.enter(StateFetchingAudio)
		if !req.Audio.Offered() {
			log.Info("audio stream not offered, skipping")
			return nil
		}
		_, err := s.fetch(ctx, progress.StageAudio, req.Audio.URL, header, target.AudioPath)
		if err != nil {
			return annotate(err, "fetch audio")
		}
		return nil
	}

	if !s.parallel {
		if err := fetchVideo(ctx); err != nil {
			return err
		}
		return fetchAudio(ctx)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return fetchVideo(gctx) })
	g.Go(func() error { return fetchAudio(gctx) })
	return g.Wait()
}

func (s *Service) fetch(ctx context.Context, stage progress.Stage, rawURL string, header http.Header, dest string) (int64, error) {
	start := time.Now()
	s.reporter.Update(progress.Update{JobID: s.jobID, Stage: stage, Percent: 0, Message: "Downloading " + string(stage)})
	return s.fetcher.Fetch(ctx, rawURL, header, dest, func(written, total int64) {
		s.reporter.Update(downloader.ProgressUpdate(s.jobID, stage, written, total, time.Since(start)))
	})
}

func (s *Service) done(out model.Outcome) (model.Outcome, error) {
	if fi, err := os.Stat(out.Path); err == nil {
		out.Bytes = fi.Size()
	}
	s.enter(StateDone)
	msg := out.Message()
	slog.Info(msg, "job", s.jobID, "outcome", out.Kind.String(), "bytes", out.Bytes)
	s.reporter.Update(progress.Update{JobID: s.jobID, Stage: progress.StageCompleted, Percent: 100, Message: msg})
	s.reporter.Result(progress.Result{JobID: s.jobID, OutputPath: out.Path, Bytes: out.Bytes, Message: msg})
	return out, nil
}

func (s *Service) fail(err error) (model.Outcome, error) {
	s.enter(StateFailed)
	out := model.Outcome{Kind: model.OutcomeFailed, Reason: err.Error()}
	s.reporter.Update(progress.Update{JobID: s.jobID, Stage: progress.StageError, Percent: -1, Message: out.Message()})
	s.reporter.Result(progress.Result{JobID: s.jobID, Message: out.Message(), Err: err})
	return out, err
}

func (s *Service) enter(st State) {
	slog.Debug("state", "job", s.jobID, "state", st.String())
	if s.observed != nil {
		s.observed(st)
	}
}

func rename(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return model.NewError(model.ErrFilesystem, "rename", src, err)
	}
	return nil
}

// annotate prefixes op onto errors that are not already typed.
func annotate(err error, op string) error {
	var me *model.Error
	if errors.As(err, &me) {
		if me.Op != "" {
			me.Op = op + ": " + me.Op
		} else {
			me.Op = op
		}
		return me
	}
	return fmt.Errorf("%s: %w", op, err)
}
