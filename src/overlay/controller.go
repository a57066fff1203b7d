// Package overlay contains the per-monitor presentation logic of the picker
// and the presenters that put it on screen.
package overlay

import (
	"fmt"
	"log"
	"strconv"

	"instant-desktop/src/monitor"
	"instant-desktop/src/selection"
)

// EventKind identifies an input event delivered to one overlay window.
type EventKind int

const (
	EventPointerMove EventKind = iota
	EventClick
	EventKeyDown
)

// Event is one input event. Key holds the virtual-key code for EventKeyDown.
type Event struct {
	Kind EventKind
	Key  uint16
}

// Action tells the presenter what to do after an event.
type Action int

const (
	ActionNone Action = iota
	// ActionCommit launches the session with the current selection and
	// closes every window.
	ActionCommit
	// ActionCancel closes every window without launching.
	ActionCancel
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionCommit:
		return "commit"
	case ActionCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// State is the visual state of one window.
type State int

const (
	StateUnselectedIdle State = iota
	StateUnselectedHovered
	StateSelectedIdle
	StateSelectedHovered
)

func (s State) String() string {
	switch s {
	case StateUnselectedIdle:
		return "unselected-idle"
	case StateUnselectedHovered:
		return "unselected-hovered"
	case StateSelectedIdle:
		return "selected-idle"
	case StateSelectedHovered:
		return "selected-hovered"
	default:
		return "unknown"
	}
}

// Options configure every controller of a picker run.
type Options struct {
	// Fullscreen places windows over the full monitor bounds instead of the
	// work area.
	Fullscreen bool
	Keys       KeyMap
}

// Placement describes where and how the window for one monitor is created.
type Placement struct {
	X, Y          int32
	Width, Height int32
	Borderless    bool
	Resizable     bool
	TopMost       bool
}

// Appearance is what one window should show right now.
type Appearance struct {
	Label  string
	State  State
	Scheme Scheme
}

// Controller is the presentation logic for one monitor. Every controller of
// a run shares the same store.
type Controller struct {
	store   *selection.Store
	monitor monitor.Monitor
	opts    Options
}

// NewController binds a controller to monitor id of the store's set.
func NewController(store *selection.Store, id uint32, opts Options) (*Controller, error) {
	m, ok := store.Monitors().Lookup(id)
	if !ok {
		return nil, fmt.Errorf("controller for %d: %w", id, selection.ErrUnknownMonitorID)
	}
	return &Controller{store: store, monitor: m, opts: opts}, nil
}

// NewControllers creates one controller per monitor, in set order.
func NewControllers(store *selection.Store, opts Options) []*Controller {
	mons := store.Monitors().Monitors()
	out := make([]*Controller, 0, len(mons))
	for _, m := range mons {
		out = append(out, &Controller{store: store, monitor: m, opts: opts})
	}
	return out
}

func (c *Controller) ID() uint32               { return c.monitor.ID }
func (c *Controller) Monitor() monitor.Monitor { return c.monitor }
func (c *Controller) Store() *selection.Store  { return c.store }

// Placement returns the borderless, fixed-size, top-most rectangle of the
// window.
func (c *Controller) Placement() Placement {
	r := c.monitor.Work
	if c.opts.Fullscreen {
		r = c.monitor.Bounds
	}
	return Placement{
		X:          r.Left,
		Y:          r.Top,
		Width:      r.Width(),
		Height:     r.Height(),
		Borderless: true,
		Resizable:  false,
		TopMost:    true,
	}
}

// Appearance derives the label and colors from the shared store.
func (c *Controller) Appearance() Appearance {
	selected := c.store.IsSelected(c.monitor.ID)
	hovered := c.store.IsHovered(c.monitor.ID)

	state := StateUnselectedIdle
	switch {
	case selected && hovered:
		state = StateSelectedHovered
	case selected:
		state = StateSelectedIdle
	case hovered:
		state = StateUnselectedHovered
	}

	return Appearance{
		Label:  strconv.FormatUint(uint64(c.monitor.ID), 10),
		State:  state,
		Scheme: SchemeFor(selected, hovered),
	}
}

// Handle applies one input event to the shared store.
func (c *Controller) Handle(ev Event) Action {
	var err error
	switch ev.Kind {
	case EventPointerMove:
		err = c.store.SetHovered(c.monitor.ID)
	case EventClick:
		err = c.store.ToggleSelected(c.monitor.ID)
	case EventKeyDown:
		switch {
		case c.opts.Keys.IsCommit(ev.Key):
			return ActionCommit
		case c.opts.Keys.IsCancel(ev.Key):
			return ActionCancel
		}
	}
	if err != nil {
		// Only reachable if the store was seeded from a different set.
		log.Printf("OVERLAY: ignoring event for monitor %d: %v", c.monitor.ID, err)
	}
	return ActionNone
}
