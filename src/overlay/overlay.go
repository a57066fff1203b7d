package overlay

import (
	"context"
	"errors"
)

// ErrUnsupportedPlatform is returned by presenters that cannot run on the
// current OS.
var ErrUnsupportedPlatform = errors.New("overlay windows not supported on this platform")

// Outcome is how a picker run ended.
type Outcome struct {
	Committed bool
}

// Presenter puts one surface per controller on screen and delivers input to
// them. Run blocks on a single goroutine until a controller returns
// ActionCommit or ActionCancel, or ctx is cancelled (treated as cancel).
type Presenter interface {
	Run(ctx context.Context, controllers []*Controller) (Outcome, error)
}

// NewPresenter returns the native overlay presenter for this platform.
func NewPresenter() Presenter {
	return newNativePresenter()
}
