// Package monitor resolves the set of active physical displays and their
// geometry in virtual-screen coordinates.
package monitor

import (
	"fmt"
	"strings"
)

// Rect is a rectangle in virtual-screen pixels. Right and Bottom are exclusive.
type Rect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

func (r Rect) Width() int32  { return r.Right - r.Left }
func (r Rect) Height() int32 { return r.Bottom - r.Top }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.Left >= r.Left && o.Top >= r.Top && o.Right <= r.Right && o.Bottom <= r.Bottom
}

// Monitor is one active physical display. It is never re-queried after
// resolution.
type Monitor struct {
	ID     uint32
	Bounds Rect
	// Work excludes OS-reserved areas such as the taskbar.
	Work Rect
	// Device is the platform device name the geometry was matched by.
	Device string
}

// Info formats the monitor the way the listing output shows it, with the
// right and bottom edges inclusive.
func (m Monitor) Info() string {
	return fmt.Sprintf("%d: %d x %d; (%d, %d, %d, %d)",
		m.ID, m.Bounds.Width(), m.Bounds.Height(),
		m.Bounds.Left, m.Bounds.Top, m.Bounds.Right-1, m.Bounds.Bottom-1)
}

// MonitorSet is the immutable, ordered snapshot of monitors taken at startup.
// Order is id-assignment order.
type MonitorSet struct {
	list  []Monitor
	index map[uint32]int
}

// NewMonitorSet builds a set from monitors in the given order. Duplicate ids
// are rejected.
func NewMonitorSet(monitors []Monitor) (*MonitorSet, error) {
	s := &MonitorSet{
		list:  make([]Monitor, 0, len(monitors)),
		index: make(map[uint32]int, len(monitors)),
	}
	for _, m := range monitors {
		if _, dup := s.index[m.ID]; dup {
			return nil, fmt.Errorf("duplicate monitor id %d", m.ID)
		}
		s.index[m.ID] = len(s.list)
		s.list = append(s.list, m)
	}
	return s, nil
}

func (s *MonitorSet) Len() int { return len(s.list) }

// Monitors returns a copy of the monitors in order.
func (s *MonitorSet) Monitors() []Monitor {
	out := make([]Monitor, len(s.list))
	copy(out, s.list)
	return out
}

func (s *MonitorSet) Lookup(id uint32) (Monitor, bool) {
	i, ok := s.index[id]
	if !ok {
		return Monitor{}, false
	}
	return s.list[i], true
}

func (s *MonitorSet) Contains(id uint32) bool {
	_, ok := s.index[id]
	return ok
}

// IDs returns monitor ids in set order.
func (s *MonitorSet) IDs() []uint32 {
	ids := make([]uint32, len(s.list))
	for i, m := range s.list {
		ids[i] = m.ID
	}
	return ids
}

// Primary picks the monitor that hosts the main application surface: the
// first one, or the last one when fromEnd is set.
func (s *MonitorSet) Primary(fromEnd bool) (Monitor, bool) {
	if len(s.list) == 0 {
		return Monitor{}, false
	}
	if fromEnd {
		return s.list[len(s.list)-1], true
	}
	return s.list[0], true
}

// String renders one Info line per monitor.
func (s *MonitorSet) String() string {
	lines := make([]string, len(s.list))
	for i, m := range s.list {
		lines[i] = m.Info()
	}
	return strings.Join(lines, "\n")
}
