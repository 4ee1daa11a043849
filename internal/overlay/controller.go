package overlay

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/events"
	"github.com/elegantclip/elegantclip/internal/platform"
	"github.com/elegantclip/elegantclip/internal/types"
)

const (
	// placementGap offsets the window from the cursor so the pointer
	// never lands inside it on show.
	placementGap = 10

	// pasteSettle is the wait between hiding the overlay and injecting
	// Ctrl+V, giving the OS time to restore focus to the paste target.
	pasteSettle = 50 * time.Millisecond

	// trayDebounce suppresses a tray toggle that races a click-outside
	// hide: the click that hit the tray icon already hid the overlay.
	trayDebounce = 300 * time.Millisecond
)

// Window is the native overlay surface.
type Window interface {
	ShowAt(platform.Point) error
	Hide()
	ForceTopmost()
	Bounds() (platform.Rect, error)
	Size() (width, height int32)
	Handle() uintptr
	Close()
}

// KeyboardHooks installs and removes the transient Escape hook.
type KeyboardHooks interface {
	InstallKeyboardHook()
	RemoveKeyboardHook()
}

// Pauser suspends clipboard capture around programmatic writes.
type Pauser interface {
	PauseScope() func()
}

// Writer is the system clipboard write surface.
type Writer interface {
	WriteItem(*types.ClipboardItem) error
	WriteText(string) error
}

// Config wires a Controller's dependencies.
type Config struct {
	Window  Window
	Hooks   KeyboardHooks
	Pauser  Pauser
	Writer  Writer
	Emitter events.Emitter
	State   *State
	Logger  *zap.Logger
}

// Controller drives the overlay: placement near the cursor, show and
// hide with the keyboard-hook lifecycle, click-outside dismissal, and
// the copy and paste sequences. Slow paths (show, toggle, paste) are
// serialised by a mutex; hide is lock-free so the mouse-hook callback
// never blocks behind a paste in flight.
type Controller struct {
	window  Window
	hooks   KeyboardHooks
	pauser  Pauser
	writer  Writer
	emitter events.Emitter
	state   *State
	logger  *zap.Logger

	mu sync.Mutex

	// Overridable seams so the controller tests run without Win32.
	cursorPos func() (platform.Point, error)
	workArea  func(platform.Point) (platform.Rect, error)
	scrub     func()
	sendPaste func() error
}

func NewController(cfg Config) *Controller {
	c := &Controller{
		window:    cfg.Window,
		hooks:     cfg.Hooks,
		pauser:    cfg.Pauser,
		writer:    cfg.Writer,
		emitter:   cfg.Emitter,
		state:     cfg.State,
		logger:    cfg.Logger,
		cursorPos: platform.CursorPos,
		workArea:  platform.WorkAreaAt,
		scrub:     platform.ScrubModifiers,
		sendPaste: platform.SendCtrlV,
	}
	c.state.SetEnabled(true)
	return c
}

// Show places the overlay near the cursor and shows it without
// activation.
func (c *Controller) Show() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.show()
}

func (c *Controller) show() error {
	cursor, err := c.cursorPos()
	if err != nil {
		cursor = c.state.Cursor()
	}

	width, height := c.window.Size()
	pos := cursor
	pos.X += placementGap
	pos.Y += placementGap
	if area, err := c.workArea(cursor); err == nil {
		pos = placeWindow(cursor, area, width, height, placementGap)
	}

	if err := c.window.ShowAt(pos); err != nil {
		return fmt.Errorf("failed to show overlay: %w", err)
	}
	c.state.visible.Store(true)
	c.hooks.InstallKeyboardHook()
	c.emitter.Emit(types.EventWindowShown, nil)
	return nil
}

// Hide dismisses the overlay. Safe to call from any thread, including
// the mouse-hook callback.
func (c *Controller) Hide() {
	c.hide()
}

func (c *Controller) hide() {
	if !c.state.visible.CompareAndSwap(true, false) {
		return
	}
	c.window.Hide()
	c.state.MarkHidden()
	c.hooks.RemoveKeyboardHook()
	c.emitter.Emit(types.EventWindowHidden, nil)
}

// Toggle flips overlay visibility.
func (c *Controller) Toggle() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Visible() {
		c.hide()
		return nil
	}
	return c.show()
}

// TrayToggle is Toggle with the click-outside debounce: a tray click
// arriving within trayDebounce of a hide is the same physical click
// that caused the hide, and must not re-show the overlay.
func (c *Controller) TrayToggle() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Visible() {
		c.hide()
		return nil
	}
	if c.state.HiddenWithin(trayDebounce) {
		return nil
	}
	return c.show()
}

// SetVisible drives visibility from the UI layer.
func (c *Controller) SetVisible(visible bool) error {
	if visible {
		return c.Show()
	}
	c.Hide()
	return nil
}

// HandleButtonDown is the mouse-hook entry: a press outside the overlay
// rect dismisses it, unless pinned. Runs on the hook thread and must
// stay fast.
func (c *Controller) HandleButtonDown(x, y int32) {
	if !c.state.Enabled() || c.state.Pinned() || !c.state.Visible() {
		return
	}
	bounds, err := c.window.Bounds()
	if err != nil {
		return
	}
	if bounds.Contains(platform.Point{X: x, Y: y}) {
		return
	}
	c.hide()
}

// HandleEscape forwards Escape to the UI; whether to close a popup or
// the whole overlay is the UI's call.
func (c *Controller) HandleEscape() {
	c.emitter.Emit(types.EventEscapePressed, nil)
}

// ForceTopmost re-raises the overlay without activating it.
func (c *Controller) ForceTopmost() {
	c.window.ForceTopmost()
}

// SetPinned pins the overlay open: click-outside stops dismissing and
// paste stops hiding.
func (c *Controller) SetPinned(pinned bool) {
	c.state.SetPinned(pinned)
}

func (c *Controller) Pinned() bool { return c.state.Pinned() }

// Handle exposes the native window handle for the UI layer.
func (c *Controller) Handle() uintptr { return c.window.Handle() }

// Copy puts an item on the system clipboard inside a paused-monitor
// scope, with no input injection.
func (c *Controller) Copy(item *types.ClipboardItem) error {
	release := c.pauser.PauseScope()
	defer release()
	return c.writer.WriteItem(item)
}

// CopyText puts plain text on the clipboard inside a paused scope.
func (c *Controller) CopyText(text string) error {
	release := c.pauser.PauseScope()
	defer release()
	return c.writer.WriteText(text)
}

// Paste writes the item in its captured shape and injects Ctrl+V into
// the previously focused application.
func (c *Controller) Paste(item *types.ClipboardItem) error {
	return c.paste(func() error { return c.writer.WriteItem(item) })
}

// PastePlain pastes the item's plain-text reading.
func (c *Controller) PastePlain(item *types.ClipboardItem) error {
	text := item.PlainText()
	if text == "" {
		return fmt.Errorf("item %d has no plain-text form", item.ID)
	}
	return c.paste(func() error { return c.writer.WriteText(text) })
}

// PasteText pastes caller-supplied text that need not be in history.
func (c *Controller) PasteText(text string) error {
	return c.paste(func() error { return c.writer.WriteText(text) })
}

// PasteAsPath pastes the item's on-disk path instead of its content.
func (c *Controller) PasteAsPath(item *types.ClipboardItem) error {
	text := item.PathText()
	if text == "" {
		return fmt.Errorf("item %d has no path form", item.ID)
	}
	return c.paste(func() error { return c.writer.WriteText(text) })
}

// paste runs the full sequence: paused scope, clipboard write, hide
// unless pinned, focus-settle wait, modifier scrub, Ctrl+V.
func (c *Controller) paste(write func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	release := c.pauser.PauseScope()
	defer release()

	if err := write(); err != nil {
		return err
	}

	if !c.state.Pinned() {
		c.hide()
	}

	time.Sleep(pasteSettle)
	c.scrub()
	if err := c.sendPaste(); err != nil {
		return fmt.Errorf("failed to inject paste chord: %w", err)
	}
	return nil
}

// Close tears the overlay window down.
func (c *Controller) Close() {
	c.window.Close()
}

// placeWindow picks the overlay's top-left corner: cursor plus gap,
// flipped to the other side of the cursor when it would overflow the
// work area's right or bottom edge, then clamped into the area.
func placeWindow(cursor platform.Point, area platform.Rect, width, height, gap int32) platform.Point {
	x := cursor.X + gap
	if x+width > area.Right {
		x = cursor.X - gap - width
	}
	y := cursor.Y + gap
	if y+height > area.Bottom {
		y = cursor.Y - gap - height
	}

	if x+width > area.Right {
		x = area.Right - width
	}
	if x < area.Left {
		x = area.Left
	}
	if y+height > area.Bottom {
		y = area.Bottom - height
	}
	if y < area.Top {
		y = area.Top
	}
	return platform.Point{X: x, Y: y}
}
