// Package media derives the on-disk names used by a download.
package media

import (
	"fmt"
	"path/filepath"

	"cilicili/internal/model"
	"cilicili/internal/util"
)

const (
	// SegmentExt is the extension of the raw DASH segments as served.
	SegmentExt = ".m4s"
	// VideoExt is used for video-only and muxed results.
	VideoExt = ".mp4"
	// AudioExt is used when only the audio stream materialized.
	AudioExt = ".mp3"
)

// ResolveTarget builds every path for title under outDir and creates
// outDir. Two requests with the same sanitized title get the same paths.
func ResolveTarget(title, outDir string) (model.DownloadTarget, error) {
	t, err := TargetFor(title, outDir)
	if err != nil {
		return model.DownloadTarget{}, err
	}
	if err := util.EnsureDir(t.Dir); err != nil {
		return model.DownloadTarget{}, model.NewError(model.ErrFilesystem, "create output dir", t.Dir, err)
	}
	return t, nil
}

// TargetFor computes the paths without touching the filesystem.
func TargetFor(title, outDir string) (model.DownloadTarget, error) {
	if outDir == "" {
		outDir = "."
	}
	outDir = filepath.Clean(outDir)
	safe := util.SanitizeTitle(title)
	if safe == "" {
		return model.DownloadTarget{}, model.NewError(model.ErrMissingInput, "resolve paths", "", fmt.Errorf("empty title"))
	}
	return model.DownloadTarget{
		Dir:            outDir,
		VideoPath:      filepath.Join(outDir, safe+"_video"+SegmentExt),
		AudioPath:      filepath.Join(outDir, safe+"_audio"+SegmentExt),
		FinalPath:      filepath.Join(outDir, safe+VideoExt),
		AudioFinalPath: filepath.Join(outDir, safe+AudioExt),
	}, nil
}
