// Package platform wraps the OS surfaces the daemon depends on: the
// system clipboard, clipboard-change notifications, global input hooks,
// synthetic input, display geometry, the overlay host window and the
// single-instance guard. Windows gets the full implementation; other
// systems get a degraded text-only clipboard so the storage and command
// surfaces stay usable.
package platform

import "errors"

// ErrUnsupported is returned by operations the current platform cannot
// perform.
var ErrUnsupported = errors.New("not supported on this platform")

// ErrAlreadyRunning is returned by AcquireInstanceLock when another
// process holds the lock.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Point is a screen coordinate in pixels.
type Point struct {
	X int32
	Y int32
}

// Rect is a screen rectangle. Right and Bottom are exclusive, matching
// the Win32 RECT convention.
type Rect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

// Width returns the rectangle width in pixels.
func (r Rect) Width() int32 { return r.Right - r.Left }

// Height returns the rectangle height in pixels.
func (r Rect) Height() int32 { return r.Bottom - r.Top }

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Right && p.Y >= r.Top && p.Y < r.Bottom
}
