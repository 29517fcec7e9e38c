package muxer

import (
	"strconv"
	"strings"

	"cilicili/internal/progress"
)

// ProgressState accumulates key=value lines from ffmpeg's -progress output.
type ProgressState struct {
	OutTimeUs int64
	SpeedStr  string
	TotalSize int64
}

// UpdateFromLine folds line into the state. A "progress=" line closes a
// block and yields an update. Percent is -1 when durationSec is unknown.
func (ps *ProgressState) UpdateFromLine(line, jobID string, stage progress.Stage, durationSec float64) (progress.Update, bool) {
	key, val, found := strings.Cut(line, "=")
	if !found {
		return progress.Update{}, false
	}
	key = strings.TrimSpace(key)
	val = strings.TrimSpace(val)

	switch key {
	// out_time_ms is in microseconds despite its name.
	case "out_time_us", "out_time_ms":
		if v, err := strconv.ParseInt(val, 10, 64); err == nil {
			ps.OutTimeUs = v
		}
	case "speed":
		ps.SpeedStr = val
	case "total_size":
		if v, err := strconv.ParseInt(val, 10, 64); err == nil {
			ps.TotalSize = v
		}
	case "progress":
		percent := -1.0
		if durationSec > 0 {
			percent = float64(ps.OutTimeUs) / (durationSec * 1_000_000) * 100
			if percent > 100 {
				percent = 100
			}
			if percent < 0 {
				percent = 0
			}
		}
		if val == "end" {
			percent = 100
		}

		var speed *string
		if ps.SpeedStr != "" && ps.SpeedStr != "N/A" {
			s := ps.SpeedStr
			speed = &s
		}
		var size *int64
		if ps.TotalSize > 0 {
			b := ps.TotalSize
			size = &b
		}

		msg := "Merging"
		if stage == progress.StageConverting {
			msg = "Converting"
		}
		return progress.Update{
			JobID:   jobID,
			Stage:   stage,
			Percent: percent,
			Speed:   speed,
			Bytes:   size,
			Message: msg,
		}, true
	}
	return progress.Update{}, false
}
