// Package tui is a terminal presenter for the monitor picker. It drives the
// same overlay controllers as the native windows, one tile per monitor.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"instant-desktop/src/overlay"
)

// Model represents the state of the terminal picker.
type Model struct {
	controllers []*overlay.Controller
	keys        KeyMap
	help        help.Model
	cursor      int // index of the tile with pointer focus
	width       int
	height      int
	outcome     overlay.Outcome
	done        bool
}

// New creates a model over controllers. The cursor starts on the hovered
// monitor, or on the first tile when nothing is hovered yet.
func New(controllers []*overlay.Controller) *Model {
	m := &Model{
		controllers: controllers,
		keys:        DefaultKeyMap,
		help:        help.New(),
	}
	start := 0
	if len(controllers) > 0 {
		if id, ok := controllers[0].Store().Hovered(); ok {
			for i, c := range controllers {
				if c.ID() == id {
					start = i
				}
			}
		}
	}
	m.focus(start)
	return m
}

// Init is the first command that will be executed.
func (m Model) Init() tea.Cmd {
	return nil
}

// Outcome reports how the run ended. Only meaningful once Done is true.
func (m Model) Outcome() overlay.Outcome { return m.outcome }

// Done reports whether a commit or cancel was received.
func (m Model) Done() bool { return m.done }

func (m *Model) focus(i int) {
	if len(m.controllers) == 0 {
		return
	}
	n := len(m.controllers)
	m.cursor = ((i % n) + n) % n
	m.controllers[m.cursor].Handle(overlay.Event{Kind: overlay.EventPointerMove})
}

func (m *Model) current() *overlay.Controller {
	if len(m.controllers) == 0 {
		return nil
	}
	return m.controllers[m.cursor]
}

func (m *Model) finish(committed bool) tea.Cmd {
	m.outcome = overlay.Outcome{Committed: committed}
	m.done = true
	return tea.Quit
}
