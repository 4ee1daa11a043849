//go:build windows

package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

var (
	moduser32   = windows.NewLazySystemDLL("user32.dll")
	modversion  = windows.NewLazySystemDLL("version.dll")
	modkernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetClipboardOwner        = moduser32.NewProc("GetClipboardOwner")
	procGetForegroundWindow      = moduser32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessId = moduser32.NewProc("GetWindowThreadProcessId")
	procEnumChildWindows         = moduser32.NewProc("EnumChildWindows")

	procQueryFullProcessImageNameW = modkernel32.NewProc("QueryFullProcessImageNameW")

	procGetFileVersionInfoSizeW = modversion.NewProc("GetFileVersionInfoSizeW")
	procGetFileVersionInfoW     = modversion.NewProc("GetFileVersionInfoW")
	procVerQueryValueW          = modversion.NewProc("VerQueryValueW")
)

const (
	processQueryLimitedInformation = 0x1000
	uwpFrameHost                   = "ApplicationFrameHost.exe"
)

// Resolver attributes clipboard changes to their source application. It
// runs on the monitor's thread only.
type Resolver struct {
	iconsDir string
	ownPID   uint32
	logger   *zap.Logger
}

// NewResolver creates a resolver that caches icons under iconsDir.
func NewResolver(iconsDir string, logger *zap.Logger) *Resolver {
	return &Resolver{
		iconsDir: iconsDir,
		ownPID:   uint32(os.Getpid()),
		logger:   logger,
	}
}

// Resolve identifies the application behind the current clipboard change.
// It must run before any clipboard open: OpenClipboard invalidates the
// owner window. Failure returns a zero Info; attribution is best-effort.
func (r *Resolver) Resolve() Info {
	hwnd, pid := r.ownerWindow()
	if hwnd == 0 {
		return Info{}
	}

	exePath := processImagePath(pid)
	if exePath == "" {
		return Info{}
	}

	if strings.EqualFold(filepath.Base(exePath), uwpFrameHost) {
		if child := childProcessPath(hwnd, pid); child != "" {
			exePath = child
		}
	}

	info := Info{
		AppName: displayName(exePath),
		ExePath: exePath,
	}
	info.IconPath = r.cachedIcon(exePath)
	return info
}

// ownerWindow returns the clipboard owner, falling back to the foreground
// window. Windows owned by this process or by no process are skipped.
func (r *Resolver) ownerWindow() (uintptr, uint32) {
	owner, _, _ := procGetClipboardOwner.Call()
	if pid := windowPID(owner); owner != 0 && pid != 0 && pid != r.ownPID {
		return owner, pid
	}

	fg, _, _ := procGetForegroundWindow.Call()
	if pid := windowPID(fg); fg != 0 && pid != 0 && pid != r.ownPID {
		return fg, pid
	}

	return 0, 0
}

func windowPID(hwnd uintptr) uint32 {
	if hwnd == 0 {
		return 0
	}
	var pid uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	return pid
}

// processImagePath resolves a PID to its executable path using the
// cheapest process handle that still allows the query.
func processImagePath(pid uint32) string {
	if pid == 0 {
		return ""
	}
	h, err := windows.OpenProcess(processQueryLimitedInformation, false, pid)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_LONG_PATH)
	size := uint32(len(buf))
	r1, _, _ := procQueryFullProcessImageNameW.Call(
		uintptr(h),
		0,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&size)),
	)
	if r1 == 0 || size == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:size])
}

// childEnum carries state for the UWP child-window walk. Resolve only
// runs on the monitor thread, so plain package state is safe; the
// callback itself is created once because NewCallback allocations are
// never released.
var childEnum struct {
	hostPID uint32
	found   string
}

var childEnumCallback = sync.OnceValue(func() uintptr {
	return windows.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		pid := windowPID(hwnd)
		if pid == 0 || pid == childEnum.hostPID {
			return 1
		}
		path := processImagePath(pid)
		if path == "" || strings.EqualFold(filepath.Base(path), uwpFrameHost) {
			return 1
		}
		childEnum.found = path
		return 0
	})
})

// childProcessPath unwraps a UWP frame-host window: the first child
// window belonging to a different, non-host process is the real
// application.
func childProcessPath(hwnd uintptr, hostPID uint32) string {
	childEnum.hostPID = hostPID
	childEnum.found = ""
	procEnumChildWindows.Call(hwnd, childEnumCallback(), 0)
	return childEnum.found
}

// displayName reads the executable's localised FileDescription from its
// version resource, falling back to the English string table and finally
// the file stem.
func displayName(exePath string) string {
	pathPtr, err := windows.UTF16PtrFromString(exePath)
	if err != nil {
		return fileStem(exePath)
	}

	var handle uint32
	size, _, _ := procGetFileVersionInfoSizeW.Call(
		uintptr(unsafe.Pointer(pathPtr)),
		uintptr(unsafe.Pointer(&handle)),
	)
	if size == 0 {
		return fileStem(exePath)
	}

	data := make([]byte, size)
	r1, _, _ := procGetFileVersionInfoW.Call(
		uintptr(unsafe.Pointer(pathPtr)),
		0,
		size,
		uintptr(unsafe.Pointer(&data[0])),
	)
	if r1 == 0 {
		return fileStem(exePath)
	}

	if lang, cp, ok := translationEntry(data); ok {
		key := fmt.Sprintf(`\StringFileInfo\%04x%04x\FileDescription`, lang, cp)
		if desc := queryVersionString(data, key); desc != "" {
			return desc
		}
	}
	if desc := queryVersionString(data, `\StringFileInfo\040904B0\FileDescription`); desc != "" {
		return desc
	}
	return fileStem(exePath)
}

// translationEntry returns the first language/codepage pair of the
// version resource's translation table.
func translationEntry(data []byte) (uint16, uint16, bool) {
	subBlock, err := windows.UTF16PtrFromString(`\VarFileInfo\Translation`)
	if err != nil {
		return 0, 0, false
	}

	var valuePtr uintptr
	var valueLen uint32
	r1, _, _ := procVerQueryValueW.Call(
		uintptr(unsafe.Pointer(&data[0])),
		uintptr(unsafe.Pointer(subBlock)),
		uintptr(unsafe.Pointer(&valuePtr)),
		uintptr(unsafe.Pointer(&valueLen)),
	)
	if r1 == 0 || valuePtr == 0 || valueLen < 4 {
		return 0, 0, false
	}

	lang := *(*uint16)(unsafe.Pointer(valuePtr))
	cp := *(*uint16)(unsafe.Pointer(valuePtr + 2))
	return lang, cp, true
}

func queryVersionString(data []byte, key string) string {
	subBlock, err := windows.UTF16PtrFromString(key)
	if err != nil {
		return ""
	}

	var valuePtr uintptr
	var valueLen uint32
	r1, _, _ := procVerQueryValueW.Call(
		uintptr(unsafe.Pointer(&data[0])),
		uintptr(unsafe.Pointer(subBlock)),
		uintptr(unsafe.Pointer(&valuePtr)),
		uintptr(unsafe.Pointer(&valueLen)),
	)
	if r1 == 0 || valuePtr == 0 || valueLen == 0 {
		return ""
	}
	return strings.TrimSpace(windows.UTF16PtrToString((*uint16)(unsafe.Pointer(valuePtr))))
}
