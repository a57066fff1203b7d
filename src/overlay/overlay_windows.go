//go:build windows

package overlay

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"os"
	"runtime"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const (
	labelBoxSize  = 300
	labelFontSize = 200

	wsExToolWindow = 0x00000080
	dtCenter       = 0x00000001
	dtVCenter      = 0x00000004
	dtSingleLine   = 0x00000020
	fwBold         = 700
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	gdi32                        = windows.NewLazySystemDLL("gdi32.dll")
	procFillRect                 = user32.NewProc("FillRect")
	procDrawTextW                = user32.NewProc("DrawTextW")
	procAllowSetForegroundWindow = user32.NewProc("AllowSetForegroundWindow")
	procCreateSolidBrush         = gdi32.NewProc("CreateSolidBrush")
	procCreateFontW              = gdi32.NewProc("CreateFontW")
)

// One window procedure serves every overlay window; it finds the controller
// through the active presenter. Only one picker runs per process.
var (
	overlayWndProcCallback = windows.NewCallback(overlayWndProc)
	activePresenter        *windowsPresenter
)

// windowsPresenter shows one WS_POPUP, top-most window per controller and
// runs their shared message loop on a locked OS thread.
type windowsPresenter struct {
	windows  map[win.HWND]*Controller
	order    []win.HWND
	font     win.HFONT
	outcome  Outcome
	finished bool
}

func newNativePresenter() Presenter { return &windowsPresenter{} }

func (p *windowsPresenter) Run(ctx context.Context, controllers []*Controller) (Outcome, error) {
	if len(controllers) == 0 {
		return Outcome{}, fmt.Errorf("no overlay windows to show")
	}

	// Windows, their message queue and the store all belong to this thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	p.windows = make(map[win.HWND]*Controller, len(controllers))
	p.order = nil
	p.outcome = Outcome{}
	p.finished = false
	activePresenter = p
	defer func() { activePresenter = nil }()

	hInstance := win.GetModuleHandle(nil)
	className, err := syscall.UTF16PtrFromString(fmt.Sprintf("InstantDesktopOverlay_%d", time.Now().UnixNano()))
	if err != nil {
		return Outcome{}, err
	}
	wndClass := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		Style:         win.CS_HREDRAW | win.CS_VREDRAW,
		LpfnWndProc:   overlayWndProcCallback,
		HInstance:     hInstance,
		HCursor:       win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_HAND)),
		HbrBackground: 0, // painted in WM_PAINT
		LpszClassName: className,
	}
	if atom := win.RegisterClassEx(&wndClass); atom == 0 {
		return Outcome{}, fmt.Errorf("failed to register overlay window class")
	}
	defer win.UnregisterClass(className)

	p.font = createLabelFont()
	if p.font != 0 {
		defer win.DeleteObject(win.HGDIOBJ(p.font))
	}

	defer p.destroyAll()
	for _, c := range controllers {
		pl := c.Placement()
		exStyle := uint32(wsExToolWindow)
		if pl.TopMost {
			exStyle |= win.WS_EX_TOPMOST
		}
		title, _ := syscall.UTF16PtrFromString(fmt.Sprintf("Instant Desktop - %d", c.ID()))
		hwnd := win.CreateWindowEx(
			exStyle,
			className,
			title,
			win.WS_POPUP|win.WS_VISIBLE,
			pl.X, pl.Y, pl.Width, pl.Height,
			0, 0, hInstance, nil,
		)
		if hwnd == 0 {
			return Outcome{}, fmt.Errorf("failed to create overlay window for monitor %d", c.ID())
		}
		log.Printf("OVERLAY: window for monitor %d at (%d,%d) size %dx%d", c.ID(), pl.X, pl.Y, pl.Width, pl.Height)
		p.windows[hwnd] = c
		p.order = append(p.order, hwnd)
	}

	controllers[0].Store().OnChange(p.invalidateAll)

	first := p.order[0]
	focus := first
	if id, ok := controllers[0].Store().Hovered(); ok {
		for hwnd, c := range p.windows {
			if c.ID() == id {
				focus = hwnd
			}
		}
	}
	procAllowSetForegroundWindow.Call(uintptr(os.Getpid()))
	win.SetForegroundWindow(focus)
	win.SetFocus(focus)
	for _, hwnd := range p.order {
		win.UpdateWindow(hwnd)
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			// PostMessage is safe from other threads; WM_CLOSE ends the run
			// as a cancel on the UI thread.
			win.PostMessage(first, win.WM_CLOSE, 0, 0)
		case <-stop:
		}
	}()

	var msg win.MSG
	for !p.finished {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 {
			break
		}
		if ret == -1 {
			return Outcome{}, fmt.Errorf("GetMessage failed")
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}

	log.Printf("OVERLAY: message loop finished, committed=%v", p.outcome.Committed)
	return p.outcome, nil
}

func (p *windowsPresenter) finish(o Outcome) {
	if p.finished {
		return
	}
	p.outcome = o
	p.finished = true
}

func (p *windowsPresenter) dispatch(c *Controller, ev Event) Action {
	action := c.Handle(ev)
	switch action {
	case ActionCommit, ActionCancel:
		log.Printf("OVERLAY: %s from monitor %d", action, c.ID())
		p.finish(Outcome{Committed: action == ActionCommit})
	}
	return action
}

// invalidateAll repaints every window. Hover is global, so a change caused
// in one window can alter the look of any other.
func (p *windowsPresenter) invalidateAll() {
	for _, hwnd := range p.order {
		win.InvalidateRect(hwnd, nil, false)
	}
}

func (p *windowsPresenter) destroyAll() {
	for _, hwnd := range p.order {
		win.DestroyWindow(hwnd)
	}
	p.order = nil
	p.windows = nil
}

func overlayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	p := activePresenter
	var c *Controller
	if p != nil {
		c = p.windows[hwnd]
	}
	if c == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	switch msg {
	case win.WM_MOUSEMOVE:
		p.dispatch(c, Event{Kind: EventPointerMove})
		return 0

	case win.WM_LBUTTONDOWN:
		p.dispatch(c, Event{Kind: EventClick})
		return 0

	case win.WM_KEYDOWN:
		p.dispatch(c, Event{Kind: EventKeyDown, Key: uint16(wParam)})
		return 0

	case win.WM_SYSKEYDOWN:
		// Alt and F10 arrive here. Unbound keys keep their system meaning.
		if p.dispatch(c, Event{Kind: EventKeyDown, Key: uint16(wParam)}) != ActionNone {
			return 0
		}

	case win.WM_CLOSE:
		p.finish(Outcome{})
		return 0

	case win.WM_ERASEBKGND:
		return 1

	case win.WM_PAINT:
		p.paint(hwnd, c)
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

func (p *windowsPresenter) paint(hwnd win.HWND, c *Controller) {
	var ps win.PAINTSTRUCT
	hdc := win.BeginPaint(hwnd, &ps)
	defer win.EndPaint(hwnd, &ps)

	a := c.Appearance()

	var client win.RECT
	win.GetClientRect(hwnd, &client)
	fillRect(hdc, &client, a.Scheme.Background)

	cx := (client.Left + client.Right) / 2
	cy := (client.Top + client.Bottom) / 2
	box := win.RECT{
		Left:   cx - labelBoxSize/2,
		Top:    cy - labelBoxSize/2,
		Right:  cx + labelBoxSize/2,
		Bottom: cy + labelBoxSize/2,
	}
	fillRect(hdc, &box, a.Scheme.LabelBackground)

	label, err := windows.UTF16FromString(a.Label)
	if err != nil {
		return
	}
	if p.font != 0 {
		old := win.SelectObject(hdc, win.HGDIOBJ(p.font))
		defer win.SelectObject(hdc, old)
	}
	win.SetBkMode(hdc, win.TRANSPARENT)
	win.SetTextColor(hdc, colorRef(a.Scheme.LabelText))
	procDrawTextW.Call(
		uintptr(hdc),
		uintptr(unsafe.Pointer(&label[0])),
		uintptr(len(label)-1),
		uintptr(unsafe.Pointer(&box)),
		dtCenter|dtVCenter|dtSingleLine,
	)
}

func colorRef(c color.RGBA) win.COLORREF {
	return win.COLORREF(uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16)
}

func fillRect(hdc win.HDC, r *win.RECT, c color.RGBA) {
	brush, _, _ := procCreateSolidBrush.Call(uintptr(colorRef(c)))
	if brush == 0 {
		return
	}
	procFillRect.Call(uintptr(hdc), uintptr(unsafe.Pointer(r)), brush)
	win.DeleteObject(win.HGDIOBJ(brush))
}

func createLabelFont() win.HFONT {
	face, _ := syscall.UTF16PtrFromString("Segoe UI")
	height := int32(-labelFontSize)
	font, _, _ := procCreateFontW.Call(
		uintptr(height), 0, 0, 0,
		fwBold,
		0, 0, 0, // italic, underline, strikeout
		1,       // DEFAULT_CHARSET
		0, 0,    // out and clip precision
		5,       // CLEARTYPE_QUALITY
		0,       // pitch and family
		uintptr(unsafe.Pointer(face)),
	)
	if font == 0 {
		log.Printf("OVERLAY: CreateFontW failed, using the default font")
	}
	return win.HFONT(font)
}
