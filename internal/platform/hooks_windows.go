//go:build windows

package platform

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
	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
	procPeekMessageW        = user32.NewProc("PeekMessageW")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmKeyDown     = 0x0100
	wmSysKeyDown  = 0x0104
	wmLButtonDown = 0x0201
	wmRButtonDown = 0x0204

	wmQuit = 0x0012
	wmApp  = 0x8000

	msgInstallKeyboard = wmApp + 1
	msgRemoveKeyboard  = wmApp + 2

	vkEscape = 0x1B

	pmNoRemove = 0
)

type msLLHookStruct struct {
	Pt          point
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type kbdLLHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

// HooksConfig carries the callbacks the hook thread fires. All of them
// run on the hook thread and must return quickly: a slow low-level hook
// callback stalls input system-wide.
type HooksConfig struct {
	// OnCursorMove receives every pointer position the mouse hook sees.
	OnCursorMove func(x, y int32)
	// OnButtonDown fires for left and right button presses anywhere on
	// screen.
	OnButtonDown func(x, y int32)
	// OnEscape fires on Escape keydown while the keyboard hook is
	// installed.
	OnEscape func()
	Logger   *zap.Logger
}

// HookThread owns a message-pump thread hosting the low-level input
// hooks. The mouse hook lives for the thread's lifetime; the keyboard
// hook is installed and removed on request, on this same thread, because
// a low-level hook must be unhooked by the thread that installed it.
type HookThread struct {
	cfg      HooksConfig
	threadID atomic.Uint32
	done     chan struct{}
	started  bool

	// Touched only on the hook thread.
	mouseHook    uintptr
	keyboardHook uintptr
}

// activeHooks is read by the hook callbacks; exactly one hook thread
// runs per process.
var activeHooks atomic.Pointer[HookThread]

var mouseHookProc = sync.OnceValue(func() uintptr {
	return windows.NewCallback(func(nCode, wParam, lParam uintptr) uintptr {
		if int32(nCode) == 0 {
			if h := activeHooks.Load(); h != nil {
				info := (*msLLHookStruct)(unsafe.Pointer(lParam))
				if h.cfg.OnCursorMove != nil {
					h.cfg.OnCursorMove(info.Pt.X, info.Pt.Y)
				}
				if (wParam == wmLButtonDown || wParam == wmRButtonDown) && h.cfg.OnButtonDown != nil {
					h.cfg.OnButtonDown(info.Pt.X, info.Pt.Y)
				}
			}
		}
		r, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
		return r
	})
})

var keyboardHookProc = sync.OnceValue(func() uintptr {
	return windows.NewCallback(func(nCode, wParam, lParam uintptr) uintptr {
		if int32(nCode) == 0 && (wParam == wmKeyDown || wParam == wmSysKeyDown) {
			if h := activeHooks.Load(); h != nil && h.cfg.OnEscape != nil {
				kb := (*kbdLLHookStruct)(unsafe.Pointer(lParam))
				if kb.VkCode == vkEscape {
					h.cfg.OnEscape()
				}
			}
		}
		r, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
		return r
	})
})

func NewHookThread(cfg HooksConfig) *HookThread {
	return &HookThread{cfg: cfg}
}

// Start spins up the pump thread and installs the mouse hook.
func (h *HookThread) Start() error {
	if h.started {
		return fmt.Errorf("hook thread already started")
	}
	if !activeHooks.CompareAndSwap(nil, h) {
		return fmt.Errorf("another hook thread is already running")
	}

	h.done = make(chan struct{})
	ready := make(chan error, 1)
	go h.run(ready)
	if err := <-ready; err != nil {
		activeHooks.CompareAndSwap(h, nil)
		return err
	}
	h.started = true
	return nil
}

func (h *HookThread) run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	module, err := windows.GetModuleHandle(nil)
	if err != nil {
		ready <- fmt.Errorf("failed to get module handle: %w", err)
		return
	}

	hook, _, callErr := procSetWindowsHookExW.Call(
		whMouseLL, mouseHookProc(), uintptr(module), 0)
	if hook == 0 {
		ready <- fmt.Errorf("failed to install mouse hook: %w", callErr)
		return
	}
	h.mouseHook = hook

	// Force the thread's message queue into existence so posted
	// messages are never dropped.
	var m message
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, wmApp, wmApp, pmNoRemove)

	h.threadID.Store(windows.GetCurrentThreadId())
	ready <- nil

	pumpMessages(func(m *message) {
		switch m.Message {
		case msgInstallKeyboard:
			h.installKeyboard(uintptr(module))
		case msgRemoveKeyboard:
			h.removeKeyboard()
		}
	})

	h.removeKeyboard()
	procUnhookWindowsHookEx.Call(h.mouseHook)
	h.mouseHook = 0
	close(h.done)
}

func (h *HookThread) installKeyboard(module uintptr) {
	if h.keyboardHook != 0 {
		return
	}
	hook, _, err := procSetWindowsHookExW.Call(
		whKeyboardLL, keyboardHookProc(), module, 0)
	if hook == 0 {
		h.cfg.Logger.Warn("failed to install keyboard hook", zap.Error(err))
		return
	}
	h.keyboardHook = hook
}

func (h *HookThread) removeKeyboard() {
	if h.keyboardHook == 0 {
		return
	}
	procUnhookWindowsHookEx.Call(h.keyboardHook)
	h.keyboardHook = 0
}

func (h *HookThread) post(msg uint32) {
	if tid := h.threadID.Load(); tid != 0 {
		procPostThreadMessageW.Call(uintptr(tid), uintptr(msg), 0, 0)
	}
}

// InstallKeyboardHook asks the pump thread to install the transient
// keyboard hook. Idempotent.
func (h *HookThread) InstallKeyboardHook() { h.post(msgInstallKeyboard) }

// RemoveKeyboardHook asks the pump thread to drop the keyboard hook.
func (h *HookThread) RemoveKeyboardHook() { h.post(msgRemoveKeyboard) }

// Stop tears down both hooks and joins the pump thread.
func (h *HookThread) Stop() {
	if !h.started {
		return
	}
	h.post(wmQuit)
	<-h.done
	activeHooks.CompareAndSwap(h, nil)
	h.started = false
}
