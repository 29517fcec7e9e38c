package model

import (
	"fmt"
	"strings"
)

// StreamDescriptor identifies one offered quality/format variant of an audio
// or video stream. An empty URL means the stream is not offered.
type StreamDescriptor struct {
	URL         string
	Quality     int    // Platform quality id (e.g. 80 for 1080P, 30280 for 192K audio).
	Format      string // Container/codec tag, e.g. "avc1.640032" or "mp4a.40.2".
	Description string // Human readable label, e.g. "1080P 高清".
	Size        int64  // Estimated size in bytes; 0 if unknown.
}

// Offered reports whether the stream has a fetchable URL.
func (s StreamDescriptor) Offered() bool {
	return strings.TrimSpace(s.URL) != ""
}

// DownloadRequest is one download invocation. It is not mutated once built.
type DownloadRequest struct {
	Title   string
	VideoID string // BV id, used for the Referer header.
	Video   StreamDescriptor
	Audio   StreamDescriptor
	Cookies string // Opaque credential blob sent as the Cookie header.

	// Duration in seconds, 0 when unknown. Only used for merge progress.
	Duration float64
}

// DownloadTarget holds every path a request may touch.
type DownloadTarget struct {
	Dir            string
	VideoPath      string // <safe>_video.m4s
	AudioPath      string // <safe>_audio.m4s
	FinalPath      string // <safe>.mp4
	AudioFinalPath string // <safe>.mp3
}

// OutcomeKind is the terminal state of a request.
type OutcomeKind int

const (
	OutcomeFailed OutcomeKind = iota
	OutcomeVideoOnly
	OutcomeAudioOnly
	OutcomeMuxed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeVideoOnly:
		return "video-only"
	case OutcomeAudioOnly:
		return "audio-only"
	case OutcomeMuxed:
		return "muxed"
	default:
		return "failed"
	}
}

// Outcome is produced exactly once per request.
type Outcome struct {
	Kind   OutcomeKind
	Path   string // Final file; empty when Failed.
	Bytes  int64  // Size of the final file when known.
	Reason string // Failure reason, or the absorbed mux error when Degraded.

	// Degraded is set when muxing failed and the video-only file was kept.
	Degraded bool
}

// Succeeded reports whether a final file was produced.
func (o Outcome) Succeeded() bool {
	return o.Kind != OutcomeFailed
}

// Message renders the single human-readable result string shown to the user.
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeVideoOnly:
		if o.Degraded {
			return fmt.Sprintf("video downloaded (merge failed, video only): %s", o.Path)
		}
		return fmt.Sprintf("video downloaded: %s", o.Path)
	case OutcomeAudioOnly:
		return fmt.Sprintf("audio downloaded: %s", o.Path)
	case OutcomeMuxed:
		return fmt.Sprintf("video downloaded and merged: %s", o.Path)
	default:
		if o.Reason == "" {
			return "download failed"
		}
		return "download failed: " + o.Reason
	}
}
