package overlay

import (
	"sync/atomic"
	"time"

	"github.com/elegantclip/elegantclip/internal/platform"
)

// stateEpoch anchors the monotonic hide timestamps.
var stateEpoch = time.Now()

// State gathers the process-wide overlay flags in one place: visibility,
// pin, hook enablement, the live cursor position fed by the mouse hook
// and the monotonic last-hidden timestamp the tray debounce consults.
// Everything is atomic; readers tolerate cursor tearing.
type State struct {
	visible  atomic.Bool
	pinned   atomic.Bool
	enabled  atomic.Bool
	cursorX  atomic.Int32
	cursorY  atomic.Int32
	lastHide atomic.Int64
}

func NewState() *State {
	return &State{}
}

// SetCursor records the latest pointer position.
func (s *State) SetCursor(x, y int32) {
	s.cursorX.Store(x)
	s.cursorY.Store(y)
}

// Cursor returns the last pointer position the mouse hook reported.
func (s *State) Cursor() platform.Point {
	return platform.Point{X: s.cursorX.Load(), Y: s.cursorY.Load()}
}

func (s *State) Visible() bool { return s.visible.Load() }

func (s *State) Pinned() bool { return s.pinned.Load() }

func (s *State) SetPinned(pinned bool) { s.pinned.Store(pinned) }

func (s *State) Enabled() bool { return s.enabled.Load() }

func (s *State) SetEnabled(enabled bool) { s.enabled.Store(enabled) }

// MarkHidden stamps the monotonic hide time.
func (s *State) MarkHidden() {
	s.lastHide.Store(time.Since(stateEpoch).Nanoseconds())
}

// HiddenWithin reports whether the overlay was hidden no longer than d
// ago. A never-hidden overlay reports false.
func (s *State) HiddenWithin(d time.Duration) bool {
	stamp := s.lastHide.Load()
	if stamp == 0 {
		return false
	}
	return time.Since(stateEpoch).Nanoseconds()-stamp <= d.Nanoseconds()
}
