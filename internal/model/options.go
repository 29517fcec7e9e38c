package model

import "time"

// QualityPreset selects which DASH variant is picked when several are offered.
type QualityPreset string

const (
	PresetBest   QualityPreset = "best"
	PresetMedium QualityPreset = "medium"
	PresetLow    QualityPreset = "low"
)

// CLIOptions holds user-configurable runtime options as parsed from flags.
type CLIOptions struct {
	OutDir   string
	Quality  QualityPreset
	FFmpeg   string        // Optional explicit path to ffmpeg.
	Timeout  time.Duration // Per-stream fetch timeout.
	Parallel bool          // Fetch video and audio concurrently.
	KeepTemp bool          // Keep intermediate files after a failed fetch.
	NoAudio  bool          // Skip the audio stream even when offered.
	Verbose  bool

	NoUI bool // Disable TUI when true
	Jobs int  // Max concurrent jobs for TUI
}
