//go:build windows

package platform

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

var (
	procSetWindowPos    = user32.NewProc("SetWindowPos")
	procShowWindow      = user32.NewProc("ShowWindow")
	procGetWindowRect   = user32.NewProc("GetWindowRect")
	procIsWindowVisible = user32.NewProc("IsWindowVisible")
)

const (
	wsPopup = 0x80000000

	wsExTopmost    = 0x00000008
	wsExToolWindow = 0x00000080
	wsExNoActivate = 0x08000000

	swpNoSize     = 0x0001
	swpNoMove     = 0x0002
	swpNoActivate = 0x0010
	swpShowWindow = 0x0040

	swHide = 0
)

// hwndTopmost is HWND_TOPMOST, the insert-after handle that pins a
// window above all non-topmost windows.
const hwndTopmost = ^uintptr(0)

var overlayWndProc = sync.OnceValue(func() uintptr {
	return windows.NewCallback(func(hwnd uintptr, msg uint32, wParam, lParam uintptr) uintptr {
		if msg == wmDestroy {
			procPostQuitMessage.Call(0)
			return 0
		}
		r, _, _ := procDefWindowProcW.Call(hwnd, uintptr(msg), wParam, lParam)
		return r
	})
})

var overlayClassOnce = sync.OnceValue(func() error {
	return registerWindowClass("ElegantClipOverlay", overlayWndProc())
})

// OverlayWindow is the native host surface for the history overlay. It
// is created non-focusable: showing it must never steal keyboard focus
// from the application the user is about to paste into. The UI layer
// renders into it by handle; this side owns geometry and visibility.
type OverlayWindow struct {
	logger *zap.Logger
	width  int32
	height int32
	hwnd   uintptr
	done   chan struct{}
}

// NewOverlayWindow creates the hidden overlay window and starts its
// message pump.
func NewOverlayWindow(width, height int32, logger *zap.Logger) (*OverlayWindow, error) {
	if err := overlayClassOnce(); err != nil {
		return nil, err
	}

	w := &OverlayWindow{
		logger: logger,
		width:  width,
		height: height,
		done:   make(chan struct{}),
	}
	ready := make(chan error, 1)
	go w.run(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return w, nil
}

func (w *OverlayWindow) run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	classPtr, err := windows.UTF16PtrFromString("ElegantClipOverlay")
	if err != nil {
		ready <- err
		return
	}
	module, err := windows.GetModuleHandle(nil)
	if err != nil {
		ready <- fmt.Errorf("failed to get module handle: %w", err)
		return
	}

	hwnd, _, callErr := procCreateWindowExW.Call(
		wsExNoActivate|wsExTopmost|wsExToolWindow,
		uintptr(unsafe.Pointer(classPtr)),
		0,
		wsPopup,
		0, 0,
		uintptr(w.width), uintptr(w.height),
		0,
		0,
		uintptr(module),
		0,
	)
	if hwnd == 0 {
		ready <- fmt.Errorf("failed to create overlay window: %w", callErr)
		return
	}
	w.hwnd = hwnd
	ready <- nil

	pumpMessages(nil)
	close(w.done)
}

// ShowAt moves the window's top-left corner to the given screen point
// and shows it topmost without activating it.
func (w *OverlayWindow) ShowAt(p Point) error {
	r, _, err := procSetWindowPos.Call(
		w.hwnd,
		hwndTopmost,
		uintptr(uint32(p.X)), uintptr(uint32(p.Y)),
		0, 0,
		swpNoSize|swpNoActivate|swpShowWindow,
	)
	if r == 0 {
		return fmt.Errorf("failed to place overlay window: %w", err)
	}
	return nil
}

// Hide removes the window from screen.
func (w *OverlayWindow) Hide() {
	procShowWindow.Call(w.hwnd, swHide)
}

// ForceTopmost re-asserts the topmost Z-order without moving, resizing
// or activating.
func (w *OverlayWindow) ForceTopmost() {
	procSetWindowPos.Call(
		w.hwnd,
		hwndTopmost,
		0, 0, 0, 0,
		swpNoMove|swpNoSize|swpNoActivate,
	)
}

// Visible reports whether the window is currently shown.
func (w *OverlayWindow) Visible() bool {
	r, _, _ := procIsWindowVisible.Call(w.hwnd)
	return r != 0
}

// Bounds returns the window rectangle in screen coordinates.
func (w *OverlayWindow) Bounds() (Rect, error) {
	var rc Rect
	r, _, err := procGetWindowRect.Call(w.hwnd, uintptr(unsafe.Pointer(&rc)))
	if r == 0 {
		return Rect{}, fmt.Errorf("failed to read overlay bounds: %w", err)
	}
	return rc, nil
}

// Size returns the fixed window dimensions.
func (w *OverlayWindow) Size() (width, height int32) {
	return w.width, w.height
}

// Handle exposes the native window handle for the UI layer to attach to.
func (w *OverlayWindow) Handle() uintptr {
	return w.hwnd
}

// Close destroys the window and joins its pump thread.
func (w *OverlayWindow) Close() {
	if w.hwnd == 0 {
		return
	}
	procPostMessageW.Call(w.hwnd, wmClose, 0, 0)
	<-w.done
	w.hwnd = 0
}
