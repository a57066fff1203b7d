package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the navigation keybindings of the terminal picker. Commit
// and cancel keys are not listed here: they come from the overlay key map so
// both presenters honour the same configuration.
type KeyMap struct {
	Left   key.Binding
	Right  key.Binding
	Toggle key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap is the default set of keybindings.
var DefaultKeyMap = KeyMap{
	Left: key.NewBinding(
		key.WithKeys("left", "h", "up", "k", "shift+tab"),
		key.WithHelp("←/h", "previous monitor"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l", "down", "j", "tab"),
		key.WithHelp("→/l", "next monitor"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "x"),
		key.WithHelp("space/x", "toggle"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "abort"),
	),
}

// ShortHelp returns keybindings to be shown in the compact help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Toggle, k.Help}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right},
		{k.Toggle, k.Help, k.Quit},
	}
}
