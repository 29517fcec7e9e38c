package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"cilicili/internal/model"
	"cilicili/internal/progress"
	"cilicili/internal/util/deps"
	"cilicili/internal/util/format"
)

// JobFunc downloads one input, reporting progress through rep. A job that
// fails before producing a Result has its error reported for it.
type JobFunc func(ctx context.Context, jobID, input string, rep progress.Reporter) error

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	depsChecked bool
	ffmpegPath  string
	depsWarning string

	inputs   []string
	opts     model.CLIOptions
	run      JobFunc
	jobOrder []string
	jobs     map[string]*jobState
	workers  int

	width, height int
	styles        Styles

	eventCh chan tea.Msg

	// locate finds ffmpeg; replaced in tests.
	locate func(custom string) (string, error)
}

func NewModel(ctx context.Context, inputs []string, opts model.CLIOptions, run JobFunc) Model {
	c, cancel := context.WithCancel(ctx)
	sty := defaultStyles()

	jobs := make(map[string]*jobState, len(inputs))
	order := make([]string, 0, len(inputs))
	for _, in := range inputs {
		id := uuid.NewString()
		js := newJobState(id, in, sty)
		jobs[id] = &js
		order = append(order, id)
	}

	workers := opts.Jobs
	if workers <= 0 {
		workers = 2
	}

	return Model{
		ctx:      c,
		cancel:   cancel,
		inputs:   inputs,
		opts:     opts,
		run:      run,
		jobs:     jobs,
		jobOrder: order,
		workers:  workers,
		styles:   sty,
		eventCh:  make(chan tea.Msg, 256),
		locate:   deps.FindFFmpeg,
	}
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range m.jobOrder {
		cmds = append(cmds, m.jobs[id].spinner.Tick)
	}
	cmds = append(cmds, m.listenEventsCmd(), m.checkDepsCmd())
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Exactly one listener is outstanding; re-arm it after each event.
	listen := false
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case depsCheckedMsg:
		m.depsChecked = true
		m.ffmpegPath = msg.FFmpegPath
		if msg.Err != nil {
			// Downloads still work; merging degrades to video only.
			m.depsWarning = "ffmpeg not found, videos will be saved without audio merge"
		}
		return m, m.startJobsCmd()

	case jobUpdateMsg:
		listen = true
		u := msg.U
		if js, ok := m.jobs[u.JobID]; ok {
			js.stage = u.Stage
			js.percent = u.Percent
			js.status = u.Message
			js.speed = ""
			if u.Speed != nil {
				js.speed = *u.Speed
			}
			if u.Bytes != nil {
				js.bytes = *u.Bytes
			}
		}
	case jobLogMsg:
		listen = true
		if js, ok := m.jobs[msg.L.JobID]; ok {
			js.log(strings.TrimRight(msg.L.Line, "\r\n"))
		}
	case jobResultMsg:
		listen = true
		r := msg.R
		if js, ok := m.jobs[r.JobID]; ok {
			js.done = true
			js.err = r.Err
			js.speed = ""
			if r.Err == nil {
				js.stage = progress.StageCompleted
				js.percent = 100
				js.outputPath = r.OutputPath
				js.bytes = r.Bytes
				if r.OutputPath != "" {
					js.status = fmt.Sprintf("Saved: %s (%s)", filepath.Base(r.OutputPath), format.HumanizeBytes(r.Bytes))
				} else {
					js.status = "Completed"
				}
			} else {
				js.stage = progress.StageError
				js.status = r.Err.Error()
				js.percent = -1
			}
		}
	case allDoneMsg:
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	for _, id := range m.jobOrder {
		js := m.jobs[id]
		var c tea.Cmd
		js.spinner, c = js.spinner.Update(msg)
		if c != nil {
			cmds = append(cmds, c)
		}
	}
	if listen {
		cmds = append(cmds, m.listenEventsCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	out := m.viewHeader() + "\n\n" + m.viewJobs()
	if summary := m.viewSummary(); summary != "" {
		out += "\n" + summary
	}
	return out
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return allDoneMsg{}
		case msg := <-m.eventCh:
			return msg
		}
	}
}

func (m Model) checkDepsCmd() tea.Cmd {
	return func() tea.Msg {
		p, err := m.locate(m.opts.FFmpeg)
		return depsCheckedMsg{FFmpegPath: p, Err: err}
	}
}

// startJobsCmd runs every job on at most m.workers goroutines and posts
// allDoneMsg when the last one finishes.
func (m Model) startJobsCmd() tea.Cmd {
	return func() tea.Msg {
		go func() {
			var g errgroup.Group
			g.SetLimit(m.workers)
			for _, id := range m.jobOrder {
				id, input := id, m.jobs[id].input
				g.Go(func() error {
					m.runJob(id, input)
					return nil
				})
			}
			_ = g.Wait()
			select {
			case m.eventCh <- allDoneMsg{}:
			case <-m.ctx.Done():
			}
		}()
		return nil
	}
}

func (m Model) runJob(jobID, input string) {
	rep := newTeaReporter(m.eventCh)
	if m.ctx.Err() != nil {
		return
	}
	err := m.run(m.ctx, jobID, input, rep)
	if err != nil && !rep.reported.Load() {
		rep.Result(progress.Result{JobID: jobID, Err: err})
	}
}
