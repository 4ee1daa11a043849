//go:build windows

package hotkey

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/windows/registry"
)

const (
	advancedKeyPath      = `Software\Microsoft\Windows\CurrentVersion\Explorer\Advanced`
	disabledHotkeysValue = "DisabledHotkeys"

	// explorerSettle is the pause around the explorer restart; the shell
	// drops hotkey changes made while it is still tearing down.
	explorerSettle = 1200 * time.Millisecond
)

// EnableWinVTakeover disables the built-in Win+V popup by adding V to
// Explorer's DisabledHotkeys value, then restarts explorer so the
// change takes effect. The caller is responsible for rebinding the app
// to Super+V afterwards.
func EnableWinVTakeover(logger *zap.Logger) error {
	changed, err := editDisabledHotkeys(func(current string) (string, bool) {
		if strings.ContainsRune(current, 'V') {
			return current, false
		}
		return current + "V", true
	})
	if err != nil {
		return fmt.Errorf("failed to disable built-in Win+V: %w", err)
	}
	if !changed {
		logger.Debug("built-in Win+V already disabled")
		return nil
	}
	logger.Info("built-in Win+V disabled, restarting explorer")
	return restartExplorer(logger)
}

// DisableWinVTakeover re-enables the built-in Win+V popup and restarts
// explorer. The caller restores the user's own shortcut afterwards.
func DisableWinVTakeover(logger *zap.Logger) error {
	changed, err := editDisabledHotkeys(func(current string) (string, bool) {
		if !strings.ContainsRune(current, 'V') {
			return current, false
		}
		return strings.ReplaceAll(current, "V", ""), true
	})
	if err != nil {
		return fmt.Errorf("failed to restore built-in Win+V: %w", err)
	}
	if !changed {
		logger.Debug("built-in Win+V already active")
		return nil
	}
	logger.Info("built-in Win+V restored, restarting explorer")
	return restartExplorer(logger)
}

// WinVTakeoverApplied reports whether Explorer's Win+V hotkey is
// currently disabled in the registry.
func WinVTakeoverApplied() (bool, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, advancedKeyPath, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer key.Close()

	current, _, err := key.GetStringValue(disabledHotkeysValue)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return strings.ContainsRune(current, 'V'), nil
}

// editDisabledHotkeys applies edit to the DisabledHotkeys value. An
// empty result deletes the value. Returns whether anything changed.
func editDisabledHotkeys(edit func(string) (string, bool)) (bool, error) {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, advancedKeyPath,
		registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return false, err
	}
	defer key.Close()

	current, _, err := key.GetStringValue(disabledHotkeysValue)
	if err != nil && !errors.Is(err, registry.ErrNotExist) {
		return false, err
	}

	next, changed := edit(current)
	if !changed {
		return false, nil
	}
	if next == "" {
		if err := key.DeleteValue(disabledHotkeysValue); err != nil && !errors.Is(err, registry.ErrNotExist) {
			return false, err
		}
		return true, nil
	}
	if err := key.SetStringValue(disabledHotkeysValue, next); err != nil {
		return false, err
	}
	return true, nil
}

// restartExplorer kills and relaunches the shell. Explorer only reads
// DisabledHotkeys at startup.
func restartExplorer(logger *zap.Logger) error {
	kill := exec.Command("taskkill", "/f", "/im", "explorer.exe")
	kill.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
	if err := kill.Run(); err != nil {
		logger.Debug("taskkill explorer.exe reported error", zap.Error(err))
	}
	time.Sleep(explorerSettle)

	if err := launchExplorer(); err != nil {
		return fmt.Errorf("failed to restart explorer: %w", err)
	}
	time.Sleep(explorerSettle)
	return nil
}

func launchExplorer() error {
	windir := os.Getenv("SystemRoot")
	if windir == "" {
		windir = `C:\Windows`
	}

	direct := exec.Command(filepath.Join(windir, "explorer.exe"))
	if err := direct.Start(); err == nil {
		return direct.Process.Release()
	}

	// Some shells refuse the direct spawn; go through cmd's start, which
	// detaches on its own.
	viaCmd := exec.Command("cmd", "/c", "start", "", "explorer.exe")
	viaCmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
	if err := viaCmd.Start(); err != nil {
		return err
	}
	return viaCmd.Process.Release()
}
