package downloader

import (
	"time"

	"cilicili/internal/progress"
	"cilicili/internal/util/format"
)

const progressInterval = 250 * time.Millisecond

// progressWriter counts bytes and calls onProgress at most every progressInterval.
type progressWriter struct {
	total      int64
	written    int64
	onProgress ProgressFunc
	last       time.Time
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.written += int64(len(p))
	if w.onProgress != nil && time.Since(w.last) >= progressInterval {
		w.last = time.Now()
		w.onProgress(w.written, w.total)
	}
	return len(p), nil
}

func (w *progressWriter) flush() {
	if w.onProgress != nil {
		w.onProgress(w.written, w.total)
	}
}

// ProgressUpdate converts a byte count into a progress.Update for stage.
// Percent is -1 when total is unknown.
func ProgressUpdate(jobID string, stage progress.Stage, written, total int64, elapsed time.Duration) progress.Update {
	percent := -1.0
	if total > 0 {
		percent = float64(written) / float64(total) * 100
		if percent > 100 {
			percent = 100
		}
	}

	var speed *string
	var eta *time.Duration
	if elapsed > 0 && written > 0 {
		s := format.Rate(written, elapsed)
		speed = &s
		if total > written {
			remaining := time.Duration(float64(total-written) / float64(written) * float64(elapsed))
			eta = &remaining
		}
	}

	b := written
	msg := "Downloading " + string(stage)
	if total > 0 {
		msg += " (" + format.HumanizeBytes(written) + " / " + format.HumanizeBytes(total) + ")"
	} else {
		msg += " (" + format.HumanizeBytes(written) + ")"
	}
	return progress.Update{
		JobID:   jobID,
		Stage:   stage,
		Percent: percent,
		ETA:     eta,
		Bytes:   &b,
		Speed:   speed,
		Message: msg,
	}
}
