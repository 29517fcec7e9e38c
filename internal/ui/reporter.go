package ui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"cilicili/internal/progress"
)

// teaReporter turns progress events into tea messages.
type teaReporter struct {
	ch chan<- tea.Msg

	// reported is set once a Result was delivered for the job.
	reported *atomic.Bool
}

func newTeaReporter(ch chan<- tea.Msg) teaReporter {
	return teaReporter{ch: ch, reported: new(atomic.Bool)}
}

func (r teaReporter) Update(u progress.Update) {
	// Terminal updates must arrive; byte updates may be dropped under load.
	if u.Stage == progress.StageCompleted || u.Stage == progress.StageError {
		r.ch <- jobUpdateMsg{U: u}
		return
	}
	select {
	case r.ch <- jobUpdateMsg{U: u}:
	default:
	}
}

func (r teaReporter) Log(l progress.Log) {
	select {
	case r.ch <- jobLogMsg{L: l}:
	default:
	}
}

func (r teaReporter) Result(res progress.Result) {
	r.reported.Store(true)
	r.ch <- jobResultMsg{R: res}
}
