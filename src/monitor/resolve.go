package monitor

import (
	"errors"
	"fmt"
	"log"
)

// ErrPlatformEnumeration means the OS could not enumerate displays at all.
// There is no usable picker without topology, so callers treat it as fatal.
var ErrPlatformEnumeration = errors.New("display enumeration failed")

// Device is one slot of the platform display device table.
type Device struct {
	Index  uint32
	Name   string
	Active bool
}

// Geometry is one result of the platform geometry enumeration. It carries
// the device name but no device-table identity.
type Geometry struct {
	Device string
	Bounds Rect
	Work   Rect
}

// Platform is the OS capability the resolver consumes.
type Platform interface {
	// DisplayDevice returns the device at slot index, or false once the
	// platform reports no more devices.
	DisplayDevice(index uint32) (Device, bool)
	// Probe opens and releases a device context for the device. A false
	// result means the device is not really usable (e.g. being disabled).
	Probe(device string) bool
	// EnumGeometry calls fn for every display geometry until fn returns
	// false or the candidates are exhausted.
	EnumGeometry(fn func(Geometry) bool) error
}

// Resolve correlates the device table with the geometry enumeration.
//
// Each active device that passes the probe receives the next id in
// encounter order. The first geometry whose device name equals the device's
// name is bound to that id; a device without a match is dropped and its id
// is not reused. A work area that is empty or not inside the bounds is
// replaced by the bounds.
func Resolve(p Platform) (*MonitorSet, error) {
	var monitors []Monitor
	var nextID uint32
	var index uint32

	for ; ; index++ {
		dev, ok := p.DisplayDevice(index)
		if !ok {
			break
		}
		if !dev.Active {
			continue
		}
		if !p.Probe(dev.Name) {
			log.Printf("MONITOR: skipping %s (slot %d): device context probe failed", dev.Name, dev.Index)
			continue
		}

		mon := Monitor{ID: nextID, Device: dev.Name}
		nextID++

		matched := false
		err := p.EnumGeometry(func(g Geometry) bool {
			if g.Device != dev.Name {
				return true
			}
			mon.Bounds = g.Bounds
			mon.Work = g.Work
			matched = true
			return false
		})
		if err != nil {
			return nil, fmt.Errorf("%w: geometry of %s: %v", ErrPlatformEnumeration, dev.Name, err)
		}
		if !matched {
			log.Printf("MONITOR: dropping %s (id %d): no matching geometry", dev.Name, mon.ID)
			continue
		}
		if mon.Work.Empty() || !mon.Bounds.Contains(mon.Work) {
			log.Printf("MONITOR: %s reported work area %+v outside bounds %+v, using bounds", dev.Name, mon.Work, mon.Bounds)
			mon.Work = mon.Bounds
		}

		log.Printf("MONITOR: %s -> %s", dev.Name, mon.Info())
		monitors = append(monitors, mon)
	}

	if index == 0 {
		return nil, fmt.Errorf("%w: no display devices reported", ErrPlatformEnumeration)
	}

	return NewMonitorSet(monitors)
}
