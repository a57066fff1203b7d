// Package selection holds the one mutable piece of picker state: which
// monitors are selected and which one has pointer focus.
package selection

import (
	"errors"
	"fmt"
	"sort"

	"instant-desktop/src/monitor"
)

// ErrUnknownMonitorID is returned when an event names a monitor that is not
// part of the resolved set. State is left untouched.
var ErrUnknownMonitorID = errors.New("unknown monitor id")

// Store is shared by pointer across every overlay controller.
//
// It has no internal locking: all calls must come from the single event
// goroutine that delivers UI input, each running to completion before the
// next event is processed.
type Store struct {
	monitors  *monitor.MonitorSet
	selected  map[uint32]struct{}
	hovered   uint32
	hasHover  bool
	observers []func()
}

// NewStore seeds an empty selection for the given monitors.
func NewStore(monitors *monitor.MonitorSet) *Store {
	return &Store{
		monitors: monitors,
		selected: make(map[uint32]struct{}, monitors.Len()),
	}
}

// Monitors returns the set the store was seeded from.
func (s *Store) Monitors() *monitor.MonitorSet { return s.monitors }

// ToggleSelected flips whether id is selected.
func (s *Store) ToggleSelected(id uint32) error {
	if !s.monitors.Contains(id) {
		return fmt.Errorf("toggle %d: %w", id, ErrUnknownMonitorID)
	}
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
	} else {
		s.selected[id] = struct{}{}
	}
	s.notify()
	return nil
}

// SetHovered overwrites the hovered monitor; the last write wins.
func (s *Store) SetHovered(id uint32) error {
	if !s.monitors.Contains(id) {
		return fmt.Errorf("hover %d: %w", id, ErrUnknownMonitorID)
	}
	if s.hasHover && s.hovered == id {
		return nil
	}
	s.hovered = id
	s.hasHover = true
	s.notify()
	return nil
}

// SelectedIDs returns the selected ids in ascending order.
func (s *Store) SelectedIDs() []uint32 {
	ids := make([]uint32, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Store) IsSelected(id uint32) bool {
	_, ok := s.selected[id]
	return ok
}

func (s *Store) IsHovered(id uint32) bool {
	return s.hasHover && s.hovered == id
}

// Hovered returns the hovered monitor, if any.
func (s *Store) Hovered() (uint32, bool) {
	return s.hovered, s.hasHover
}

// OnChange registers fn to run after every mutation that changed state.
// Presenters use it to repaint all windows, since hover in one window
// changes the look of another.
func (s *Store) OnChange(fn func()) {
	s.observers = append(s.observers, fn)
}

func (s *Store) notify() {
	for _, fn := range s.observers {
		fn()
	}
}
