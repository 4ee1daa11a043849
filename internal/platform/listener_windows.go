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
	procRegisterClassExW              = user32.NewProc("RegisterClassExW")
	procCreateWindowExW               = user32.NewProc("CreateWindowExW")
	procDestroyWindow                 = user32.NewProc("DestroyWindow")
	procDefWindowProcW                = user32.NewProc("DefWindowProcW")
	procGetMessageW                   = user32.NewProc("GetMessageW")
	procTranslateMessage              = user32.NewProc("TranslateMessage")
	procDispatchMessageW              = user32.NewProc("DispatchMessageW")
	procPostMessageW                  = user32.NewProc("PostMessageW")
	procPostQuitMessage               = user32.NewProc("PostQuitMessage")
	procAddClipboardFormatListener    = user32.NewProc("AddClipboardFormatListener")
	procRemoveClipboardFormatListener = user32.NewProc("RemoveClipboardFormatListener")
)

const (
	wmDestroy         = 0x0002
	wmClose           = 0x0010
	wmClipboardUpdate = 0x031D
)

// hwndMessage is HWND_MESSAGE: parents a window into the message-only
// hierarchy, invisible and cheap.
const hwndMessage = ^uintptr(2)

type point struct {
	X int32
	Y int32
}

type message struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

type wndClassEx struct {
	CbSize        uint32
	Style         uint32
	LpfnWndProc   uintptr
	CbClsExtra    int32
	CbWndExtra    int32
	HInstance     windows.Handle
	HIcon         windows.Handle
	HCursor       windows.Handle
	HbrBackground windows.Handle
	LpszMenuName  *uint16
	LpszClassName *uint16
	HIconSm       windows.Handle
}

func registerWindowClass(name string, wndProc uintptr) error {
	classPtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return err
	}
	module, err := windows.GetModuleHandle(nil)
	if err != nil {
		return fmt.Errorf("failed to get module handle: %w", err)
	}
	wc := wndClassEx{
		CbSize:        uint32(unsafe.Sizeof(wndClassEx{})),
		LpfnWndProc:   wndProc,
		HInstance:     module,
		LpszClassName: classPtr,
	}
	if r, _, callErr := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); r == 0 {
		return fmt.Errorf("failed to register window class: %w", callErr)
	}
	return nil
}

func createMessageWindow(class string) (uintptr, error) {
	classPtr, err := windows.UTF16PtrFromString(class)
	if err != nil {
		return 0, err
	}
	module, err := windows.GetModuleHandle(nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get module handle: %w", err)
	}
	hwnd, _, callErr := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(classPtr)),
		0,
		0,
		0, 0, 0, 0,
		hwndMessage,
		0,
		uintptr(module),
		0,
	)
	if hwnd == 0 {
		return 0, fmt.Errorf("failed to create message window: %w", callErr)
	}
	return hwnd, nil
}

// Active listeners keyed by window handle, for the shared wndProc.
var (
	listenersMu sync.RWMutex
	listeners   = map[uintptr]*ChangeListener{}
)

// listenerWndProc is created once; the callback table is a hard
// process-wide resource.
var listenerWndProc = sync.OnceValue(func() uintptr {
	return windows.NewCallback(func(hwnd uintptr, msg uint32, wParam, lParam uintptr) uintptr {
		switch msg {
		case wmClipboardUpdate:
			listenersMu.RLock()
			l := listeners[hwnd]
			listenersMu.RUnlock()
			if l != nil {
				l.onChange()
			}
			return 0
		case wmDestroy:
			procRemoveClipboardFormatListener.Call(hwnd)
			procPostQuitMessage.Call(0)
			return 0
		}
		r, _, _ := procDefWindowProcW.Call(hwnd, uintptr(msg), wParam, lParam)
		return r
	})
})

var listenerClassOnce = sync.OnceValue(func() error {
	return registerWindowClass("ElegantClipListener", listenerWndProc())
})

// ChangeListener surfaces WM_CLIPBOARDUPDATE notifications through a
// message-only window pumped on its own locked OS thread.
type ChangeListener struct {
	logger   *zap.Logger
	onChange func()
	hwnd     uintptr
	done     chan struct{}
	started  bool
}

func NewChangeListener(logger *zap.Logger) *ChangeListener {
	return &ChangeListener{logger: logger}
}

// Start creates the listener window and begins delivering change
// callbacks. The callback runs on the listener's pump thread.
func (l *ChangeListener) Start(onChange func()) error {
	if l.started {
		return fmt.Errorf("listener already started")
	}
	if err := listenerClassOnce(); err != nil {
		return err
	}

	l.onChange = onChange
	l.done = make(chan struct{})
	ready := make(chan error, 1)
	go l.run(ready)
	if err := <-ready; err != nil {
		return err
	}
	l.started = true
	return nil
}

func (l *ChangeListener) run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	hwnd, err := createMessageWindow("ElegantClipListener")
	if err != nil {
		ready <- err
		return
	}

	if r, _, callErr := procAddClipboardFormatListener.Call(hwnd); r == 0 {
		procDestroyWindow.Call(hwnd)
		ready <- fmt.Errorf("failed to register clipboard listener: %w", callErr)
		return
	}

	l.hwnd = hwnd
	listenersMu.Lock()
	listeners[hwnd] = l
	listenersMu.Unlock()
	ready <- nil

	pumpMessages(nil)

	listenersMu.Lock()
	delete(listeners, hwnd)
	listenersMu.Unlock()
	close(l.done)
}

// Stop closes the listener window and waits for the pump to exit.
func (l *ChangeListener) Stop() error {
	if !l.started {
		return nil
	}
	procPostMessageW.Call(l.hwnd, wmClose, 0, 0)
	<-l.done
	l.started = false
	return nil
}

// pumpMessages runs a message loop until WM_QUIT. Thread messages (no
// target window) are handed to onThreadMsg when provided.
func pumpMessages(onThreadMsg func(m *message)) {
	var m message
	for {
		r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		ret := int32(r)
		if ret == 0 || ret == -1 {
			return
		}
		if m.Hwnd == 0 && onThreadMsg != nil {
			onThreadMsg(&m)
			continue
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}
