package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"instant-desktop/src/overlay"
)

const (
	tileWidth  = 26
	tileHeight = 9
	labelWidth = 7
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	infoStyle  = lipgloss.NewStyle().Faint(true)
)

// View renders one tile per monitor in the colors of its overlay window.
func (m Model) View() string {
	if m.done {
		return ""
	}
	if len(m.controllers) == 0 {
		return "No monitors.\n"
	}

	tiles := make([]string, 0, len(m.controllers))
	for _, c := range m.controllers {
		tiles = append(tiles, renderTile(c))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Select monitors for the remote session"))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	b.WriteString("\n\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("selected: %s", selectedSummary(m.controllers))))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func renderTile(c *overlay.Controller) string {
	a := c.Appearance()

	label := lipgloss.NewStyle().
		Width(labelWidth).
		Align(lipgloss.Center).
		Bold(true).
		Background(lipgloss.Color(overlay.Hex(a.Scheme.LabelBackground))).
		Foreground(lipgloss.Color(overlay.Hex(a.Scheme.LabelText))).
		Render(a.Label)

	m := c.Monitor()
	geometry := fmt.Sprintf("%dx%d @ %d,%d", m.Bounds.Width(), m.Bounds.Height(), m.Bounds.Left, m.Bounds.Top)

	body := lipgloss.JoinVertical(lipgloss.Center, label, "", geometry)

	return lipgloss.NewStyle().
		Width(tileWidth).
		Height(tileHeight).
		Margin(0, 1).
		Align(lipgloss.Center, lipgloss.Center).
		Background(lipgloss.Color(overlay.Hex(a.Scheme.Background))).
		Foreground(lipgloss.Color(overlay.Hex(a.Scheme.LabelText))).
		Render(body)
}

func selectedSummary(controllers []*overlay.Controller) string {
	if len(controllers) == 0 {
		return "none"
	}
	ids := controllers[0].Store().SelectedIDs()
	if len(ids) == 0 {
		return "none"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ",")
}
