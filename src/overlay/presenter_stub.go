//go:build !windows

package overlay

import "context"

type stubPresenter struct{}

func newNativePresenter() Presenter { return stubPresenter{} }

// Run is a stub for non-Windows platforms.
func (stubPresenter) Run(ctx context.Context, controllers []*Controller) (Outcome, error) {
	return Outcome{}, ErrUnsupportedPlatform
}
