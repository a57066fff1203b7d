package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"instant-desktop/src/overlay"
)

// Update handles messages and updates the model accordingly.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, m.finish(false)
		}

		c := m.current()
		if c == nil {
			return m, m.finish(false)
		}

		// Commit and cancel go through the controller like a key press on
		// the native window would.
		if vk, ok := virtualKey(msg); ok {
			switch c.Handle(overlay.Event{Kind: overlay.EventKeyDown, Key: vk}) {
			case overlay.ActionCommit:
				return m, m.finish(true)
			case overlay.ActionCancel:
				return m, m.finish(false)
			}
		}

		switch {
		case key.Matches(msg, m.keys.Left):
			m.focus(m.cursor - 1)
		case key.Matches(msg, m.keys.Right):
			m.focus(m.cursor + 1)
		case key.Matches(msg, m.keys.Toggle):
			c.Handle(overlay.Event{Kind: overlay.EventClick})
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil
	}

	return m, nil
}

// virtualKey translates a terminal key press to the Windows virtual-key code
// the overlay key map is expressed in.
func virtualKey(msg tea.KeyMsg) (uint16, bool) {
	name := msg.String()
	switch name {
	case " ":
		name = "space"
	case "":
		return 0, false
	}
	if strings.Contains(name, "+") || msg.Alt {
		return 0, false
	}
	return overlay.VK(name)
}
