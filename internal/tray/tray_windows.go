//go:build windows

package tray

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unicode/utf16"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

var (
	user32  = windows.NewLazySystemDLL("user32.dll")
	shell32 = windows.NewLazySystemDLL("shell32.dll")

	procRegisterClassExW         = user32.NewProc("RegisterClassExW")
	procCreateWindowExW          = user32.NewProc("CreateWindowExW")
	procDefWindowProcW           = user32.NewProc("DefWindowProcW")
	procGetMessageW              = user32.NewProc("GetMessageW")
	procTranslateMessage         = user32.NewProc("TranslateMessage")
	procDispatchMessageW         = user32.NewProc("DispatchMessageW")
	procPostMessageW             = user32.NewProc("PostMessageW")
	procPostQuitMessage          = user32.NewProc("PostQuitMessage")
	procRegisterWindowMessageW   = user32.NewProc("RegisterWindowMessageW")
	procCreatePopupMenu          = user32.NewProc("CreatePopupMenu")
	procDestroyMenu              = user32.NewProc("DestroyMenu")
	procAppendMenuW              = user32.NewProc("AppendMenuW")
	procTrackPopupMenu           = user32.NewProc("TrackPopupMenu")
	procSetForegroundWindow      = user32.NewProc("SetForegroundWindow")
	procGetCursorPos             = user32.NewProc("GetCursorPos")
	procCreateIconFromResourceEx = user32.NewProc("CreateIconFromResourceEx")
	procLoadIconW                = user32.NewProc("LoadIconW")
	procDestroyIcon              = user32.NewProc("DestroyIcon")
	procShellNotifyIconW         = shell32.NewProc("Shell_NotifyIconW")
)

const (
	wmDestroy   = 0x0002
	wmClose     = 0x0010
	wmNull      = 0x0000
	wmLButtonUp = 0x0202
	wmRButtonUp = 0x0205
	wmApp       = 0x8000

	wmTrayCallback = wmApp + 1

	nimAdd    = 0
	nimDelete = 2

	nifMessage = 0x01
	nifIcon    = 0x02
	nifTip     = 0x04

	mfString    = 0x0000
	mfSeparator = 0x0800

	tpmRightButton = 0x0002
	tpmNonotify    = 0x0080
	tpmReturnCmd   = 0x0100

	idiApplication = 32512

	cmdSettings = 1
	cmdRestart  = 2
	cmdQuit     = 3

	trayIconID = 1

	trayClassName = "ElegantClipTray"
)

type point struct{ X, Y int32 }

type message struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

type wndClassEx struct {
	CbSize     uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   uintptr
	Icon       uintptr
	Cursor     uintptr
	Background uintptr
	MenuName   *uint16
	ClassName  *uint16
	IconSm     uintptr
}

type notifyIconData struct {
	CbSize           uint32
	HWnd             uintptr
	UID              uint32
	UFlags           uint32
	UCallbackMessage uint32
	HIcon            uintptr
	SzTip            [128]uint16
	DwState          uint32
	DwStateMask      uint32
	SzInfo           [256]uint16
	UVersion         uint32
	SzInfoTitle      [64]uint16
	DwInfoFlags      uint32
	GuidItem         windows.GUID
	HBalloonIcon     uintptr
}

// Config wires the tray callbacks. They run on the tray's message
// thread and should hand off to other goroutines promptly.
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

// Tray owns the notification-area icon. A hidden top-level window on a
// dedicated thread receives the icon's callback messages; it has to be
// a real window, not message-only, so the TaskbarCreated broadcast
// reaches it and the icon survives an explorer restart.
type Tray struct {
	cfg            Config
	taskbarCreated uint32
	done           chan struct{}
	started        bool

	// Touched only on the tray thread after Start.
	hwnd uintptr
	icon uintptr
	menu uintptr
}

var activeTray atomic.Pointer[Tray]

var trayWndProc = sync.OnceValue(func() uintptr {
	return windows.NewCallback(func(hwnd, msg, wParam, lParam uintptr) uintptr {
		t := activeTray.Load()
		if t == nil {
			r, _, _ := procDefWindowProcW.Call(hwnd, msg, wParam, lParam)
			return r
		}
		switch uint32(msg) {
		case wmTrayCallback:
			switch uint32(lParam) {
			case wmLButtonUp:
				if t.cfg.OnToggle != nil {
					t.cfg.OnToggle()
				}
			case wmRButtonUp:
				t.showMenu(hwnd)
			}
			return 0
		case wmDestroy:
			t.removeIcon()
			procPostQuitMessage.Call(0)
			return 0
		}
		if t.taskbarCreated != 0 && uint32(msg) == t.taskbarCreated {
			// Explorer came back; the shell forgot our icon.
			t.addIcon()
			return 0
		}
		r, _, _ := procDefWindowProcW.Call(hwnd, msg, wParam, lParam)
		return r
	})
})

var trayClassOnce sync.Once

func registerTrayClass() error {
	var err error
	trayClassOnce.Do(func() {
		name, perr := windows.UTF16PtrFromString(trayClassName)
		if perr != nil {
			err = perr
			return
		}
		module, merr := windows.GetModuleHandle(nil)
		if merr != nil {
			err = merr
			return
		}
		wc := wndClassEx{
			WndProc:   trayWndProc(),
			Instance:  uintptr(module),
			ClassName: name,
		}
		wc.CbSize = uint32(unsafe.Sizeof(wc))
		if atom, _, callErr := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); atom == 0 {
			err = fmt.Errorf("failed to register tray window class: %w", callErr)
		}
	})
	return err
}

func New(cfg Config) *Tray {
	return &Tray{cfg: cfg}
}

// Start adds the icon and begins pumping its messages.
func (t *Tray) Start() error {
	if t.started {
		return fmt.Errorf("tray already started")
	}
	if !activeTray.CompareAndSwap(nil, t) {
		return fmt.Errorf("another tray is already running")
	}

	if name, err := windows.UTF16PtrFromString("TaskbarCreated"); err == nil {
		r, _, _ := procRegisterWindowMessageW.Call(uintptr(unsafe.Pointer(name)))
		t.taskbarCreated = uint32(r)
	}

	t.done = make(chan struct{})
	ready := make(chan error, 1)
	go t.run(ready)
	if err := <-ready; err != nil {
		activeTray.CompareAndSwap(t, nil)
		return err
	}
	t.started = true
	return nil
}

func (t *Tray) run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := registerTrayClass(); err != nil {
		ready <- err
		return
	}

	className, _ := windows.UTF16PtrFromString(trayClassName)
	title, _ := windows.UTF16PtrFromString("ElegantClipboard")
	module, _ := windows.GetModuleHandle(nil)
	hwnd, _, callErr := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(title)),
		0,
		0, 0, 0, 0,
		0, 0, uintptr(module), 0)
	if hwnd == 0 {
		ready <- fmt.Errorf("failed to create tray window: %w", callErr)
		return
	}
	t.hwnd = hwnd

	t.icon = t.loadIcon()
	t.menu = t.buildMenu()
	t.addIcon()
	ready <- nil

	var m message
	for {
		r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		ret := int32(r)
		if ret == 0 || ret == -1 {
			break
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}

	if t.menu != 0 {
		procDestroyMenu.Call(t.menu)
		t.menu = 0
	}
	if t.icon != 0 {
		procDestroyIcon.Call(t.icon)
		t.icon = 0
	}
	close(t.done)
}

// loadIcon turns the PNG bytes into an HICON, falling back to the stock
// application icon.
func (t *Tray) loadIcon() uintptr {
	data := t.cfg.Icon
	if len(data) == 0 {
		data = defaultIcon()
	}
	h, _, err := procCreateIconFromResourceEx.Call(
		uintptr(unsafe.Pointer(&data[0])), uintptr(len(data)),
		1, 0x00030000, 0, 0, 0)
	if h != 0 {
		return h
	}
	t.cfg.Logger.Warn("failed to build tray icon, using stock icon", zap.Error(err))
	h, _, _ = procLoadIconW.Call(0, idiApplication)
	return h
}

func (t *Tray) buildMenu() uintptr {
	menu, _, err := procCreatePopupMenu.Call()
	if menu == 0 {
		t.cfg.Logger.Warn("failed to create tray menu", zap.Error(err))
		return 0
	}
	appendItem := func(id uintptr, label string) {
		text, _ := windows.UTF16PtrFromString(label)
		procAppendMenuW.Call(menu, mfString, id, uintptr(unsafe.Pointer(text)))
	}
	appendItem(cmdSettings, menuSettings)
	appendItem(cmdRestart, menuRestart)
	procAppendMenuW.Call(menu, mfSeparator, 0, 0)
	appendItem(cmdQuit, menuQuit)
	return menu
}

func (t *Tray) notifyData() notifyIconData {
	nid := notifyIconData{
		HWnd:             t.hwnd,
		UID:              trayIconID,
		UFlags:           nifMessage | nifIcon | nifTip,
		UCallbackMessage: wmTrayCallback,
		HIcon:            t.icon,
	}
	nid.CbSize = uint32(unsafe.Sizeof(nid))
	tip := utf16.Encode([]rune(t.cfg.Tooltip))
	if len(tip) > len(nid.SzTip)-1 {
		tip = tip[:len(nid.SzTip)-1]
	}
	copy(nid.SzTip[:], tip)
	return nid
}

func (t *Tray) addIcon() {
	nid := t.notifyData()
	if r, _, err := procShellNotifyIconW.Call(nimAdd, uintptr(unsafe.Pointer(&nid))); r == 0 {
		t.cfg.Logger.Warn("failed to add tray icon", zap.Error(err))
	}
}

func (t *Tray) removeIcon() {
	nid := t.notifyData()
	procShellNotifyIconW.Call(nimDelete, uintptr(unsafe.Pointer(&nid)))
}

func (t *Tray) showMenu(hwnd uintptr) {
	if t.menu == 0 {
		return
	}
	// Without this the menu refuses to dismiss when the user clicks
	// elsewhere.
	procSetForegroundWindow.Call(hwnd)

	var p point
	procGetCursorPos.Call(uintptr(unsafe.Pointer(&p)))
	cmd, _, _ := procTrackPopupMenu.Call(
		t.menu,
		tpmRightButton|tpmNonotify|tpmReturnCmd,
		uintptr(uint32(p.X)), uintptr(uint32(p.Y)),
		0, hwnd, 0)
	procPostMessageW.Call(hwnd, wmNull, 0, 0)

	switch cmd {
	case cmdSettings:
		if t.cfg.OnSettings != nil {
			t.cfg.OnSettings()
		}
	case cmdRestart:
		if t.cfg.OnRestart != nil {
			t.cfg.OnRestart()
		}
	case cmdQuit:
		if t.cfg.OnQuit != nil {
			t.cfg.OnQuit()
		}
	}
}

// Stop removes the icon and joins the tray thread.
func (t *Tray) Stop() {
	if !t.started {
		return
	}
	procPostMessageW.Call(t.hwnd, wmClose, 0, 0)
	<-t.done
	activeTray.CompareAndSwap(t, nil)
	t.started = false
}
