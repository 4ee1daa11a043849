//go:build !windows

package tray

import (
	"fmt"

	"fyne.io/systray"
	"go.uber.org/zap"
)

// Config wires the tray callbacks.
type Config struct {
	Tooltip string
	// Icon holds PNG bytes; the built-in glyph is used when empty.
	Icon       []byte
	OnToggle   func()
	OnSettings func()
	OnRestart  func()
	OnQuit     func()
	Logger     *zap.Logger
}

// Tray is the systray-backed fallback. Icon clicks are not exposed
// portably, so the toggle rides on a menu item instead.
type Tray struct {
	cfg     Config
	started bool
	exited  chan struct{}
}

func New(cfg Config) *Tray {
	return &Tray{cfg: cfg}
}

// Start brings the icon up on a background goroutine.
func (t *Tray) Start() error {
	if t.started {
		return fmt.Errorf("tray already started")
	}
	t.exited = make(chan struct{})
	go systray.Run(t.onReady, t.onExit)
	t.started = true
	return nil
}

func (t *Tray) onReady() {
	icon := t.cfg.Icon
	if len(icon) == 0 {
		icon = defaultIcon()
	}
	systray.SetIcon(icon)
	systray.SetTooltip(t.cfg.Tooltip)

	show := systray.AddMenuItem("Show history", "Show or hide the clipboard history")
	settings := systray.AddMenuItem(menuSettings, "Open the settings window")
	restart := systray.AddMenuItem(menuRestart, "Restart the application")
	systray.AddSeparator()
	quit := systray.AddMenuItem(menuQuit, "Exit the application")

	call := func(fn func()) {
		if fn != nil {
			fn()
		}
	}

	go func() {
		for {
			select {
			case <-show.ClickedCh:
				call(t.cfg.OnToggle)
			case <-settings.ClickedCh:
				call(t.cfg.OnSettings)
			case <-restart.ClickedCh:
				call(t.cfg.OnRestart)
			case <-quit.ClickedCh:
				call(t.cfg.OnQuit)
			case <-t.exited:
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	close(t.exited)
}

// Stop removes the icon.
func (t *Tray) Stop() {
	if !t.started {
		return
	}
	systray.Quit()
	<-t.exited
	t.started = false
}
