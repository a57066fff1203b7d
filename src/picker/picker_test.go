package picker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"instant-desktop/src/connection"
	"instant-desktop/src/monitor"
	"instant-desktop/src/overlay"
)

type fakePlatform struct {
	devices []monitor.Device
	geoms   []monitor.Geometry
}

func (p *fakePlatform) DisplayDevice(index uint32) (monitor.Device, bool) {
	if int(index) >= len(p.devices) {
		return monitor.Device{}, false
	}
	return p.devices[index], true
}

func (p *fakePlatform) Probe(string) bool { return true }

func (p *fakePlatform) EnumGeometry(fn func(monitor.Geometry) bool) error {
	for _, g := range p.geoms {
		if !fn(g) {
			break
		}
	}
	return nil
}

func twoMonitors() *fakePlatform {
	a := monitor.Rect{Right: 1920, Bottom: 1080}
	b := monitor.Rect{Left: 1920, Right: 3840, Bottom: 1080}
	return &fakePlatform{
		devices: []monitor.Device{
			{Index: 0, Name: `\\.\DISPLAY1`, Active: true},
			{Index: 1, Name: `\\.\DISPLAY2`, Active: true},
		},
		geoms: []monitor.Geometry{
			{Device: `\\.\DISPLAY1`, Bounds: a, Work: a},
			{Device: `\\.\DISPLAY2`, Bounds: b, Work: b},
		},
	}
}

// scriptedPresenter feeds events to controllers by monitor id, the way a
// native presenter would deliver them on its event goroutine.
type scriptedPresenter struct {
	script []step
	seen   int
	err    error
}

type step struct {
	id uint32
	ev overlay.Event
}

func (p *scriptedPresenter) Run(ctx context.Context, controllers []*overlay.Controller) (overlay.Outcome, error) {
	p.seen = len(controllers)
	if p.err != nil {
		return overlay.Outcome{}, p.err
	}
	byID := map[uint32]*overlay.Controller{}
	for _, c := range controllers {
		byID[c.ID()] = c
	}
	for _, s := range p.script {
		switch byID[s.id].Handle(s.ev) {
		case overlay.ActionCommit:
			return overlay.Outcome{Committed: true}, nil
		case overlay.ActionCancel:
			return overlay.Outcome{}, nil
		}
	}
	return overlay.Outcome{}, nil
}

type recordingLauncher struct{ paths []string }

func (l *recordingLauncher) Start(path string, edit bool) error {
	l.paths = append(l.paths, path)
	return nil
}

func click(id uint32) step { return step{id, overlay.Event{Kind: overlay.EventClick}} }
func key(id uint32, vk uint16) step {
	return step{id, overlay.Event{Kind: overlay.EventKeyDown, Key: vk}}
}

func testOptions(t *testing.T, p overlay.Presenter, l connection.Launcher) Options {
	t.Helper()
	dir := t.TempDir()
	base := filepath.Join(dir, "Default.rdp")
	if err := os.WriteFile(base, []byte("username:s:alice"), 0o644); err != nil {
		t.Fatal(err)
	}
	return Options{
		Platform:    twoMonitors(),
		Presenter:   p,
		Launcher:    l,
		Overlay:     overlay.Options{Keys: overlay.DefaultKeyMap()},
		BasePath:    base,
		DerivedPath: filepath.Join(dir, "custom.rdp"),
	}
}

func TestRunCommitLaunchesSelection(t *testing.T) {
	p := &scriptedPresenter{script: []step{click(1), key(0, 13)}}
	l := &recordingLauncher{}
	opts := testOptions(t, p, l)

	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if p.seen != 2 {
		t.Errorf("Expected 2 controllers, got %d", p.seen)
	}
	if len(res.Selected) != 1 || res.Selected[0] != 1 {
		t.Errorf("Expected selection [1], got %v", res.Selected)
	}
	if len(l.paths) != 1 || l.paths[0] != opts.DerivedPath {
		t.Fatalf("Expected launch of %s, got %v", opts.DerivedPath, l.paths)
	}
	data, _ := os.ReadFile(opts.DerivedPath)
	if !strings.Contains(string(data), "selectedmonitors:s:1") || !strings.Contains(string(data), "username:s:alice") {
		t.Errorf("Unexpected derived profile %q", data)
	}
}

func TestRunEventsAfterCommitAreIgnored(t *testing.T) {
	p := &scriptedPresenter{script: []step{click(0), key(1, 13), click(1)}}
	res, err := Run(context.Background(), testOptions(t, p, &recordingLauncher{}))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Selected) != 1 || res.Selected[0] != 0 {
		t.Errorf("Expected selection [0], got %v", res.Selected)
	}
}

func TestRunCancel(t *testing.T) {
	p := &scriptedPresenter{script: []step{click(0), key(0, 27)}}
	l := &recordingLauncher{}
	opts := testOptions(t, p, l)

	_, err := Run(context.Background(), opts)
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("Expected ErrCancelled, got %v", err)
	}
	if len(l.paths) != 0 {
		t.Errorf("Expected no launch, got %v", l.paths)
	}
	if _, err := os.Stat(opts.DerivedPath); !os.IsNotExist(err) {
		t.Error("Expected no derived profile on cancel")
	}
}

func TestRunNoMonitors(t *testing.T) {
	opts := testOptions(t, &scriptedPresenter{}, &recordingLauncher{})
	opts.Platform = &fakePlatform{devices: []monitor.Device{{Name: "x", Active: false}}}
	if _, err := Run(context.Background(), opts); !errors.Is(err, ErrNoMonitors) {
		t.Errorf("Expected ErrNoMonitors, got %v", err)
	}
}

func TestRunPlatformError(t *testing.T) {
	opts := testOptions(t, &scriptedPresenter{}, &recordingLauncher{})
	opts.Platform = &fakePlatform{}
	if _, err := Run(context.Background(), opts); !errors.Is(err, monitor.ErrPlatformEnumeration) {
		t.Errorf("Expected ErrPlatformEnumeration, got %v", err)
	}
}

func TestRunPresenterError(t *testing.T) {
	opts := testOptions(t, &scriptedPresenter{err: overlay.ErrUnsupportedPlatform}, &recordingLauncher{})
	if _, err := Run(context.Background(), opts); !errors.Is(err, overlay.ErrUnsupportedPlatform) {
		t.Errorf("Expected ErrUnsupportedPlatform, got %v", err)
	}
}

func TestRunLaunchError(t *testing.T) {
	p := &scriptedPresenter{script: []step{key(0, 13)}}
	l := &recordingLauncher{}
	opts := testOptions(t, p, l)
	opts.BasePath = filepath.Join(t.TempDir(), "missing.rdp")

	if _, err := Run(context.Background(), opts); !errors.Is(err, connection.ErrConfigRead) {
		t.Errorf("Expected ErrConfigRead, got %v", err)
	}
	if len(l.paths) != 0 {
		t.Errorf("Expected no launch, got %v", l.paths)
	}
}
