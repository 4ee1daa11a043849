//go:build !windows

package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"
)

// HooksConfig mirrors the Windows hook callbacks; none of them fire on
// this platform.
type HooksConfig struct {
	OnCursorMove func(x, y int32)
	OnButtonDown func(x, y int32)
	OnEscape     func()
	Logger       *zap.Logger
}

// HookThread is unavailable off Windows; the overlay runs without
// click-outside and Escape detection.
type HookThread struct{}

func NewHookThread(HooksConfig) *HookThread { return &HookThread{} }

func (h *HookThread) Start() error { return ErrUnsupported }

func (h *HookThread) InstallKeyboardHook() {}

func (h *HookThread) RemoveKeyboardHook() {}

func (h *HookThread) Stop() {}

func CursorPos() (Point, error) { return Point{}, ErrUnsupported }

func WorkAreaAt(Point) (Rect, error) { return Rect{}, ErrUnsupported }

// OverlayWindow has no native backing here; every operation degrades to
// a no-op so the command surface keeps working.
type OverlayWindow struct{}

func NewOverlayWindow(width, height int32, logger *zap.Logger) (*OverlayWindow, error) {
	return nil, ErrUnsupported
}

func (w *OverlayWindow) ShowAt(Point) error { return ErrUnsupported }

func (w *OverlayWindow) Hide() {}

func (w *OverlayWindow) ForceTopmost() {}

func (w *OverlayWindow) Visible() bool { return false }

func (w *OverlayWindow) Bounds() (Rect, error) { return Rect{}, ErrUnsupported }

func (w *OverlayWindow) Size() (width, height int32) { return 0, 0 }

func (w *OverlayWindow) Handle() uintptr { return 0 }

func (w *OverlayWindow) Close() {}

func ScrubModifiers() {}

func SendCtrlV() error { return ErrUnsupported }

// AcquireInstanceLock uses an exclusive pid file. A stale file left by a
// dead process is replaced.
func AcquireInstanceLock(name string) (release func(), err error) {
	path := filepath.Join(os.TempDir(), strings.ToLower(name)+".pid")

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() { os.Remove(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create pid file: %w", err)
		}

		data, readErr := os.ReadFile(path)
		if readErr == nil {
			pid, convErr := strconv.Atoi(strings.TrimSpace(string(data)))
			if convErr == nil && processAlive(pid) {
				return nil, ErrAlreadyRunning
			}
		}
		os.Remove(path)
	}
	return nil, ErrAlreadyRunning
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

func EnableAutostart(string) error { return ErrUnsupported }

func DisableAutostart() error { return ErrUnsupported }

func AutostartEnabled() (bool, error) { return false, ErrUnsupported }

func IsElevated() bool { return os.Geteuid() == 0 }

func Relaunch(exePath string, args []string) error {
	cmd := exec.Command(exePath, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to relaunch: %w", err)
	}
	return cmd.Process.Release()
}

func RelaunchElevated(string, []string) error { return ErrUnsupported }
