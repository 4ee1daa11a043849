//go:build windows

package platform

import (
	"fmt"
	"unsafe"
)

var (
	procGetCursorPos     = user32.NewProc("GetCursorPos")
	procMonitorFromPoint = user32.NewProc("MonitorFromPoint")
	procGetMonitorInfoW  = user32.NewProc("GetMonitorInfoW")
)

const monitorDefaultToNearest = 2

type monitorInfo struct {
	CbSize    uint32
	RcMonitor Rect
	RcWork    Rect
	DwFlags   uint32
}

// CursorPos returns the current pointer position in screen coordinates.
func CursorPos() (Point, error) {
	var p Point
	r, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&p)))
	if r == 0 {
		return Point{}, fmt.Errorf("failed to read cursor position: %w", err)
	}
	return p, nil
}

// WorkAreaAt returns the work area (monitor bounds minus taskbar) of the
// monitor nearest to the given point.
func WorkAreaAt(p Point) (Rect, error) {
	// MonitorFromPoint takes POINT by value; on amd64 the 8-byte struct
	// rides in a single register.
	packed := uintptr(uint32(p.X)) | uintptr(uint32(p.Y))<<32
	hmon, _, err := procMonitorFromPoint.Call(packed, monitorDefaultToNearest)
	if hmon == 0 {
		return Rect{}, fmt.Errorf("failed to find monitor: %w", err)
	}

	mi := monitorInfo{CbSize: uint32(unsafe.Sizeof(monitorInfo{}))}
	r, _, err := procGetMonitorInfoW.Call(hmon, uintptr(unsafe.Pointer(&mi)))
	if r == 0 {
		return Rect{}, fmt.Errorf("failed to read monitor info: %w", err)
	}
	return mi.RcWork, nil
}
