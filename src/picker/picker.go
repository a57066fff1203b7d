// Package picker runs one monitor selection: resolve the topology, show a
// window per monitor, and launch the remote session on commit.
package picker

import (
	"context"
	"errors"
	"fmt"
	"log"

	"instant-desktop/src/connection"
	"instant-desktop/src/monitor"
	"instant-desktop/src/overlay"
	"instant-desktop/src/selection"
)

var (
	ErrNoMonitors = errors.New("no monitors available")
	ErrCancelled  = errors.New("monitor selection cancelled")
)

type Options struct {
	Platform  monitor.Platform
	Presenter overlay.Presenter
	Launcher  connection.Launcher
	Overlay   overlay.Options

	BasePath    string
	DerivedPath string
	Edit        bool

	// FocusLast starts with the last monitor hovered instead of the first.
	FocusLast bool
}

type Result struct {
	Monitors *monitor.MonitorSet
	Selected []uint32
}

// Run blocks until the user commits or cancels. A cancel, including one
// caused by ctx, returns ErrCancelled. On commit the derived profile is
// written and the client started before Run returns.
func Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Platform == nil {
		return Result{}, errors.New("Platform is required")
	}
	if opts.Presenter == nil {
		return Result{}, errors.New("Presenter is required")
	}
	launcher := opts.Launcher
	if launcher == nil {
		launcher = connection.ClientLauncher{}
	}

	set, err := monitor.Resolve(opts.Platform)
	if err != nil {
		return Result{}, err
	}
	if set.Len() == 0 {
		return Result{}, ErrNoMonitors
	}
	log.Printf("PICKER: resolved monitors: %s", set)

	store := selection.NewStore(set)
	if primary, ok := set.Primary(opts.FocusLast); ok {
		_ = store.SetHovered(primary.ID)
	}
	controllers := overlay.NewControllers(store, opts.Overlay)

	outcome, err := opts.Presenter.Run(ctx, controllers)
	if err != nil {
		return Result{Monitors: set}, fmt.Errorf("overlay: %w", err)
	}

	// The presenter has returned, so every event up to the commit key has
	// been applied to the store.
	res := Result{Monitors: set, Selected: store.SelectedIDs()}
	if !outcome.Committed {
		log.Printf("PICKER: cancelled")
		return res, ErrCancelled
	}

	log.Printf("PICKER: committed monitors [%s]", connection.FormatMonitorList(res.Selected))
	err = connection.Launch(connection.Request{
		BasePath:    opts.BasePath,
		DerivedPath: opts.DerivedPath,
		Selected:    res.Selected,
		Edit:        opts.Edit,
	}, launcher)
	return res, err
}
