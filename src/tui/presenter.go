package tui

import (
	"context"
	"errors"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"instant-desktop/src/overlay"
)

// Presenter runs the picker in the terminal. It satisfies overlay.Presenter.
type Presenter struct {
	opts []tea.ProgramOption
}

// NewPresenter creates a terminal presenter. Extra program options are
// appended after the defaults, which lets tests swap input and output.
func NewPresenter(opts ...tea.ProgramOption) *Presenter {
	return &Presenter{opts: opts}
}

// Run blocks until the user commits or cancels. A cancelled ctx is reported
// as a cancel.
func (p *Presenter) Run(ctx context.Context, controllers []*overlay.Controller) (overlay.Outcome, error) {
	if len(controllers) == 0 {
		return overlay.Outcome{}, fmt.Errorf("no monitors to show")
	}

	options := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, p.opts...)
	prog := tea.NewProgram(New(controllers), options...)

	final, err := prog.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			log.Printf("TUI: picker cancelled: %v", ctx.Err())
			return overlay.Outcome{}, nil
		}
		return overlay.Outcome{}, fmt.Errorf("terminal picker: %w", err)
	}

	m, ok := final.(*Model)
	if !ok {
		return overlay.Outcome{}, fmt.Errorf("terminal picker: unexpected model %T", final)
	}
	log.Printf("TUI: picker finished, committed=%v", m.Outcome().Committed)
	return m.Outcome(), nil
}
