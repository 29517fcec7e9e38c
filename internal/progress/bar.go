package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// BarReporter draws one terminal progress bar per job and stage. It is the
// plain-terminal alternative to the interactive UI.
type BarReporter struct {
	w io.Writer

	mu   sync.Mutex
	bars map[string]*progressbar.ProgressBar
}

// NewBarReporter draws to w (stderr when nil).
func NewBarReporter(w io.Writer) *BarReporter {
	if w == nil {
		w = os.Stderr
	}
	return &BarReporter{w: w, bars: map[string]*progressbar.ProgressBar{}}
}

func (r *BarReporter) Update(u Update) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch u.Stage {
	case StageCompleted, StageError:
		r.finishJob(u.JobID)
		return
	case StageVideo, StageAudio:
		if u.Bytes == nil {
			return
		}
		bar := r.bar(u.JobID, u.Stage, -1, true)
		if bar.GetMax64() <= 0 && u.Percent > 0 && *u.Bytes > 0 {
			bar.ChangeMax64(int64(float64(*u.Bytes) * 100 / u.Percent))
		}
		_ = bar.Set64(*u.Bytes)
	case StageMerging, StageConverting:
		if u.Percent < 0 {
			return
		}
		_ = r.bar(u.JobID, u.Stage, 100, false).Set64(int64(u.Percent))
	}
}

func (r *BarReporter) Log(Log) {}

func (r *BarReporter) Result(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishJob(res.JobID)
	if res.Err != nil {
		fmt.Fprintf(r.w, "\nerror: %v\n", res.Err)
		return
	}
	fmt.Fprintf(r.w, "\n%s: %s\n", res.Message, res.OutputPath)
}

func (r *BarReporter) bar(jobID string, stage Stage, max int64, bytes bool) *progressbar.ProgressBar {
	key := jobID + "/" + string(stage)
	if b, ok := r.bars[key]; ok {
		return b
	}
	b := progressbar.NewOptions64(max,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription(string(stage)),
		progressbar.OptionShowBytes(bytes),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(r.w) }),
	)
	r.bars[key] = b
	return b
}

func (r *BarReporter) finishJob(jobID string) {
	for _, s := range []Stage{StageVideo, StageAudio, StageMerging, StageConverting} {
		key := jobID + "/" + string(s)
		if b, ok := r.bars[key]; ok {
			_ = b.Finish()
			delete(r.bars, key)
		}
	}
}
