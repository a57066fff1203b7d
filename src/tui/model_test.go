package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"instant-desktop/src/monitor"
	"instant-desktop/src/overlay"
	"instant-desktop/src/selection"
)

func newTestModel(t *testing.T, n int) (*Model, *selection.Store) {
	t.Helper()
	mons := make([]monitor.Monitor, n)
	for i := range mons {
		r := monitor.Rect{Left: int32(i) * 1920, Right: int32(i+1) * 1920, Bottom: 1080}
		mons[i] = monitor.Monitor{ID: uint32(i), Bounds: r, Work: r}
	}
	set, err := monitor.NewMonitorSet(mons)
	if err != nil {
		t.Fatalf("NewMonitorSet failed: %v", err)
	}
	store := selection.NewStore(set)
	cs := overlay.NewControllers(store, overlay.Options{Keys: overlay.DefaultKeyMap()})
	return New(cs), store
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewHoversFirstTile(t *testing.T) {
	_, store := newTestModel(t, 3)
	if id, ok := store.Hovered(); !ok || id != 0 {
		t.Errorf("Expected monitor 0 hovered, got %d (%v)", id, ok)
	}
}

func TestNavigationMovesHover(t *testing.T) {
	m, store := newTestModel(t, 3)

	m.Update(runes("l"))
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if id, _ := store.Hovered(); id != 2 {
		t.Errorf("Expected monitor 2 hovered, got %d", id)
	}

	// Wraps around.
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if id, _ := store.Hovered(); id != 0 {
		t.Errorf("Expected wrap to monitor 0, got %d", id)
	}
	m.Update(runes("h"))
	if id, _ := store.Hovered(); id != 2 {
		t.Errorf("Expected wrap back to monitor 2, got %d", id)
	}
}

func TestToggleAndCommit(t *testing.T) {
	m, store := newTestModel(t, 3)

	m.Update(runes("x"))
	m.Update(runes("l"))
	m.Update(runes("l"))
	m.Update(runes("x"))

	if got := store.SelectedIDs(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("Expected selection [0 2], got %v", got)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Expected quit command on commit")
	}
	if !m.Done() || !m.Outcome().Committed {
		t.Errorf("Expected committed outcome, got %+v", m.Outcome())
	}
}

func TestCancelKeys(t *testing.T) {
	for _, msg := range []tea.KeyMsg{
		{Type: tea.KeyEsc},
		{Type: tea.KeyBackspace},
		{Type: tea.KeyDelete},
		{Type: tea.KeyCtrlC},
	} {
		m, _ := newTestModel(t, 2)
		m.Update(runes("x"))
		if _, cmd := m.Update(msg); cmd == nil {
			t.Errorf("Expected quit command for %q", msg.String())
		}
		if !m.Done() || m.Outcome().Committed {
			t.Errorf("Expected cancel for %q, got %+v", msg.String(), m.Outcome())
		}
	}
}

func TestVirtualKey(t *testing.T) {
	tests := []struct {
		msg tea.KeyMsg
		vk  uint16
		ok  bool
	}{
		{tea.KeyMsg{Type: tea.KeyEnter}, 13, true},
		{tea.KeyMsg{Type: tea.KeyEsc}, 27, true},
		{runes("a"), 65, true},
		{tea.KeyMsg{Type: tea.KeyF5}, 116, true},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, 0, false},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a"), Alt: true}, 0, false},
	}
	for _, tt := range tests {
		vk, ok := virtualKey(tt.msg)
		if vk != tt.vk || ok != tt.ok {
			t.Errorf("virtualKey(%q) = %d, %v; expected %d, %v", tt.msg.String(), vk, ok, tt.vk, tt.ok)
		}
	}
}

func TestViewShowsEveryMonitor(t *testing.T) {
	m, _ := newTestModel(t, 2)
	m.Update(runes("x"))
	out := m.View()
	for _, want := range []string{"1920x1080 @ 0,0", "1920x1080 @ 1920,0", "selected: 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}
}

func TestPresenterRejectsEmptyRun(t *testing.T) {
	if _, err := NewPresenter().Run(context.Background(), nil); err == nil {
		t.Error("Expected error for empty controller list")
	}
}

func TestNewStartsOnHoveredMonitor(t *testing.T) {
	set, _ := monitor.NewMonitorSet([]monitor.Monitor{{ID: 0}, {ID: 1}, {ID: 2}})
	store := selection.NewStore(set)
	if err := store.SetHovered(2); err != nil {
		t.Fatalf("SetHovered failed: %v", err)
	}
	m := New(overlay.NewControllers(store, overlay.Options{Keys: overlay.DefaultKeyMap()}))
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if id, _ := store.Hovered(); id != 1 {
		t.Errorf("Expected cursor to move from 2 to 1, got %d", id)
	}
}
