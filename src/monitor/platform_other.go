//go:build !windows

package monitor

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// portablePlatform exposes the displays screenshot can see. It has no
// separate device table, so every display is reported active under a
// synthetic "display-<n>" name and the work area equals the bounds.
type portablePlatform struct {
	bounds []image.Rectangle
}

// NewPlatform snapshots the active displays through kbinani/screenshot.
func NewPlatform() Platform {
	n := screenshot.NumActiveDisplays()
	p := portablePlatform{bounds: make([]image.Rectangle, 0, n)}
	for i := 0; i < n; i++ {
		p.bounds = append(p.bounds, screenshot.GetDisplayBounds(i))
	}
	return p
}

func deviceName(i int) string { return fmt.Sprintf("display-%d", i) }

func (p portablePlatform) DisplayDevice(index uint32) (Device, bool) {
	if int(index) >= len(p.bounds) {
		return Device{}, false
	}
	return Device{Index: index, Name: deviceName(int(index)), Active: true}, true
}

func (p portablePlatform) Probe(device string) bool {
	for i, b := range p.bounds {
		if deviceName(i) == device {
			return !b.Empty()
		}
	}
	return false
}

func (p portablePlatform) EnumGeometry(fn func(Geometry) bool) error {
	for i, b := range p.bounds {
		r := Rect{Left: int32(b.Min.X), Top: int32(b.Min.Y), Right: int32(b.Max.X), Bottom: int32(b.Max.Y)}
		if !fn(Geometry{Device: deviceName(i), Bounds: r, Work: r}) {
			return nil
		}
	}
	return nil
}

// EnableDPIAwareness is a no-op outside Windows.
func EnableDPIAwareness() {}
