package progress

import (
	"log/slog"
	"sync"
	"time"
)

// SlogReporter forwards events to a slog.Logger. Byte-level updates are
// throttled to one per Interval per job and stage.
type SlogReporter struct {
	Logger   *slog.Logger
	Interval time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

// NewSlogReporter returns a reporter logging through l (slog.Default when nil).
func NewSlogReporter(l *slog.Logger) *SlogReporter {
	if l == nil {
		l = slog.Default()
	}
	return &SlogReporter{Logger: l, Interval: 2 * time.Second, last: map[string]time.Time{}}
}

func (r *SlogReporter) Update(u Update) {
	if u.Bytes != nil && u.Stage != StageCompleted && !r.due(u.JobID+"/"+string(u.Stage)) {
		return
	}
	attrs := []any{"job", u.JobID, "stage", string(u.Stage)}
	if u.Percent >= 0 {
		attrs = append(attrs, "percent", int(u.Percent))
	}
	if u.Speed != nil {
		attrs = append(attrs, "speed", *u.Speed)
	}
	r.Logger.Info(u.Message, attrs...)
}

func (r *SlogReporter) Log(l Log) {
	r.Logger.Debug(l.Line, "job", l.JobID)
}

func (r *SlogReporter) Result(res Result) {
	if res.Err != nil {
		r.Logger.Error("job failed", "job", res.JobID, "err", res.Err)
		return
	}
	r.Logger.Info(res.Message, "job", res.JobID, "path", res.OutputPath)
}

func (r *SlogReporter) due(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if t, ok := r.last[key]; ok && now.Sub(t) < r.Interval {
		return false
	}
	r.last[key] = now
	return true
}
