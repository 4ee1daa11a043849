//go:build windows

package hotkey

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

var (
	user32                 = windows.NewLazySystemDLL("user32.dll")
	procRegisterHotKey     = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey   = user32.NewProc("UnregisterHotKey")
	procGetMessageW        = user32.NewProc("GetMessageW")
	procPeekMessageW       = user32.NewProc("PeekMessageW")
	procPostThreadMessageW = user32.NewProc("PostThreadMessageW")
)

const (
	hotkeyID = 1

	wmHotkey = 0x0312
	wmQuit   = 0x0012
	wmApp    = 0x8000

	msgRebind = wmApp + 1

	pmNoRemove = 0

	// modNoRepeat keeps a held chord from retriggering the toggle.
	modNoRepeat = 0x4000
)

type message struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

// Manager binds one global hotkey on a dedicated message-pump thread.
// Registering with a nil window ties the hotkey to that thread, so
// rebinds are forwarded to it as thread messages.
type Manager struct {
	logger   *zap.Logger
	onToggle func()

	threadID atomic.Uint32
	done     chan struct{}
	started  bool

	mu       sync.Mutex
	rebindCh chan error
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		logger:   logger,
		rebindCh: make(chan error, 1),
	}
}

// Start registers the shortcut and begins dispatching presses to
// onToggle. Fails when another application already owns the chord.
func (m *Manager) Start(s Shortcut, onToggle func()) error {
	if m.started {
		return fmt.Errorf("hotkey manager already started")
	}
	m.onToggle = onToggle
	m.done = make(chan struct{})

	ready := make(chan error, 1)
	go m.run(s, ready)
	if err := <-ready; err != nil {
		return err
	}
	m.started = true
	m.logger.Info("global hotkey registered", zap.String("shortcut", s.String()))
	return nil
}

func (m *Manager) run(s Shortcut, ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// Force the message queue into existence before anyone can post to
	// this thread.
	var msg message
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, wmApp, wmApp, pmNoRemove)

	if err := registerChord(s); err != nil {
		ready <- err
		return
	}
	m.threadID.Store(windows.GetCurrentThreadId())
	ready <- nil

	for {
		r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		ret := int32(r)
		if ret == 0 || ret == -1 {
			break
		}
		switch msg.Message {
		case wmHotkey:
			if m.onToggle != nil {
				m.onToggle()
			}
		case msgRebind:
			next := Shortcut{Mods: uint16(msg.WParam), Key: uint16(msg.LParam)}
			m.rebindCh <- m.rebind(next)
		}
	}

	procUnregisterHotKey.Call(0, hotkeyID)
	close(m.done)
}

func registerChord(s Shortcut) error {
	ok, _, callErr := procRegisterHotKey.Call(
		0, hotkeyID, uintptr(s.Mods)|modNoRepeat, uintptr(s.Key))
	if ok == 0 {
		return fmt.Errorf("failed to register hotkey %s: %w", s, callErr)
	}
	return nil
}

// rebind runs on the pump thread. On failure it tries to keep the old
// binding alive by leaving the registration slot empty only when both
// registrations fail.
func (m *Manager) rebind(next Shortcut) error {
	procUnregisterHotKey.Call(0, hotkeyID)
	if err := registerChord(next); err != nil {
		m.logger.Warn("hotkey rebind failed", zap.String("shortcut", next.String()), zap.Error(err))
		return err
	}
	m.logger.Info("global hotkey rebound", zap.String("shortcut", next.String()))
	return nil
}

// Update swaps the registered chord for a new one. The swap happens on
// the pump thread; the result is reported back synchronously.
func (m *Manager) Update(s Shortcut) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return fmt.Errorf("hotkey manager not started")
	}

	tid := m.threadID.Load()
	r, _, callErr := procPostThreadMessageW.Call(
		uintptr(tid), msgRebind, uintptr(s.Mods), uintptr(s.Key))
	if r == 0 {
		return fmt.Errorf("failed to reach hotkey thread: %w", callErr)
	}

	select {
	case err := <-m.rebindCh:
		return err
	case <-m.done:
		return fmt.Errorf("hotkey thread exited during rebind")
	}
}

// Stop unregisters the hotkey and joins the pump thread.
func (m *Manager) Stop() {
	if !m.started {
		return
	}
	if tid := m.threadID.Load(); tid != 0 {
		procPostThreadMessageW.Call(uintptr(tid), wmQuit, 0, 0)
	}
	<-m.done
	m.started = false
}
