package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"cilicili/internal/model"
)

// Run shows the job list while run downloads every input. It returns an
// error listing the inputs that failed.
func Run(ctx context.Context, inputs []string, opts model.CLIOptions, run JobFunc) error {
	m := NewModel(ctx, inputs, opts, run)
	prog := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := prog.Run()
	if err != nil {
		return err
	}
	fm, ok := final.(Model)
	if !ok {
		return nil
	}
	return fm.failures()
}

// JobsError lists the jobs that failed. errors.Is matches any of them.
type JobsError struct {
	Lines []string
	Errs  []error
}

func (e *JobsError) Error() string {
	return fmt.Sprintf("%d job(s) failed:\n%s", len(e.Errs), strings.Join(e.Lines, "\n"))
}

func (e *JobsError) Unwrap() []error { return e.Errs }

func (m Model) failures() error {
	var je JobsError
	for _, id := range m.jobOrder {
		js := m.jobs[id]
		if js != nil && js.err != nil {
			je.Lines = append(je.Lines, fmt.Sprintf("- %s: %s", js.input, js.err))
			je.Errs = append(je.Errs, js.err)
		}
	}
	if len(je.Errs) > 0 {
		return &je
	}
	return nil
}
