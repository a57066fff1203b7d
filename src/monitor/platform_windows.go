//go:build windows

package monitor

import (
	"fmt"
	"log"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const displayDeviceActive = 0x00000001

var (
	user32                     = windows.NewLazySystemDLL("user32.dll")
	procEnumDisplayDevicesW    = user32.NewProc("EnumDisplayDevicesW")
	procEnumDisplayMonitors    = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW        = user32.NewProc("GetMonitorInfoW")
	procSetProcessDPIAware     = user32.NewProc("SetProcessDPIAware")
	shcore                     = windows.NewLazySystemDLL("Shcore.dll")
	procSetProcessDpiAwareness = shcore.NewProc("SetProcessDpiAwareness")
)

// displayDeviceW mirrors DISPLAY_DEVICEW (840 bytes).
type displayDeviceW struct {
	Cb           uint32
	DeviceName   [32]uint16
	DeviceString [128]uint16
	StateFlags   uint32
	DeviceID     [128]uint16
	DeviceKey    [128]uint16
}

// monitorInfoExW mirrors MONITORINFOEXW (104 bytes).
type monitorInfoExW struct {
	CbSize    uint32
	RcMonitor win.RECT
	RcWork    win.RECT
	DwFlags   uint32
	SzDevice  [32]uint16
}

// The geometry callback is created once; NewCallback slots are a finite
// process-wide resource. Enumeration is single-threaded, so the active
// handler and its stop flag live in package variables for one call.
var (
	enumMonitorCallback = windows.NewCallback(enumMonitorProc)
	activeGeometryFn    func(Geometry) bool
	geometryStopped     bool
)

type windowsPlatform struct{}

// NewPlatform returns the Win32 display enumeration capability.
func NewPlatform() Platform { return windowsPlatform{} }

func (windowsPlatform) DisplayDevice(index uint32) (Device, bool) {
	var dd displayDeviceW
	dd.Cb = uint32(unsafe.Sizeof(dd))
	ret, _, _ := procEnumDisplayDevicesW.Call(0, uintptr(index), uintptr(unsafe.Pointer(&dd)), 0)
	if ret == 0 {
		return Device{}, false
	}
	return Device{
		Index:  index,
		Name:   windows.UTF16ToString(dd.DeviceName[:]),
		Active: dd.StateFlags&displayDeviceActive != 0,
	}, true
}

func (windowsPlatform) Probe(device string) bool {
	name, err := windows.UTF16PtrFromString(device)
	if err != nil {
		return false
	}
	hdc := win.CreateDC(name, name, nil, nil)
	if hdc == 0 {
		return false
	}
	win.DeleteDC(hdc)
	return true
}

func (windowsPlatform) EnumGeometry(fn func(Geometry) bool) error {
	activeGeometryFn = fn
	geometryStopped = false
	defer func() { activeGeometryFn = nil }()

	ret, _, err := procEnumDisplayMonitors.Call(0, 0, enumMonitorCallback, 0)
	return enumMonitorsResult(ret, geometryStopped, err)
}

// enumMonitorsResult interprets the EnumDisplayMonitors return value. FALSE
// is also what the call returns when the callback stopped it, and the last
// error is unspecified in that case.
func enumMonitorsResult(ret uintptr, stopped bool, callErr error) error {
	if ret != 0 || stopped {
		return nil
	}
	if callErr == nil || callErr == windows.ERROR_SUCCESS {
		return fmt.Errorf("EnumDisplayMonitors failed")
	}
	return fmt.Errorf("EnumDisplayMonitors: %w", callErr)
}

func enumMonitorProc(hMonitor win.HMONITOR, hdc win.HDC, rect *win.RECT, lparam uintptr) uintptr {
	var info monitorInfoExW
	info.CbSize = uint32(unsafe.Sizeof(info))
	ret, _, _ := procGetMonitorInfoW.Call(uintptr(hMonitor), uintptr(unsafe.Pointer(&info)))
	if ret == 0 || activeGeometryFn == nil {
		return 1
	}

	g := Geometry{
		Device: windows.UTF16ToString(info.SzDevice[:]),
		Bounds: rectFromWin(info.RcMonitor),
		Work:   rectFromWin(info.RcWork),
	}
	if activeGeometryFn(g) {
		return 1
	}
	geometryStopped = true
	return 0
}

func rectFromWin(r win.RECT) Rect {
	return Rect{Left: r.Left, Top: r.Top, Right: r.Right, Bottom: r.Bottom}
}

// EnableDPIAwareness makes the process per-monitor DPI aware so that
// enumerated geometry is in physical pixels. It must run before any window
// is created or any metric is queried.
func EnableDPIAwareness() {
	const processPerMonitorDPIAware = 2
	if err := procSetProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := procSetProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			log.Printf("DPI: per-monitor DPI awareness enabled")
		} else {
			log.Printf("DPI: SetProcessDpiAwareness failed, hresult 0x%x", ret)
		}
		return
	}

	log.Printf("DPI: Shcore.SetProcessDpiAwareness not available, trying fallback")
	if err := procSetProcessDPIAware.Find(); err == nil {
		if ret, _, _ := procSetProcessDPIAware.Call(); ret != 0 {
			log.Printf("DPI: system DPI awareness enabled (fallback)")
		}
	}
}
