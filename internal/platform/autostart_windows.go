//go:build windows

package platform

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/windows/registry"
)

const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

// autostartValue is the Run-key value name the daemon registers under.
const autostartValue = "ElegantClipboard"

// EnableAutostart registers the executable in the per-user Run key so
// the daemon starts at logon.
func EnableAutostart(exePath string) error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open run key: %w", err)
	}
	defer key.Close()

	command := exePath
	if strings.ContainsRune(command, ' ') && !strings.HasPrefix(command, `"`) {
		command = `"` + command + `"`
	}
	if err := key.SetStringValue(autostartValue, command); err != nil {
		return fmt.Errorf("failed to write run entry: %w", err)
	}
	return nil
}

// DisableAutostart removes the Run-key entry. Missing entries are fine.
func DisableAutostart() error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open run key: %w", err)
	}
	defer key.Close()

	if err := key.DeleteValue(autostartValue); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("failed to delete run entry: %w", err)
	}
	return nil
}

// AutostartEnabled reports whether the Run-key entry exists.
func AutostartEnabled() (bool, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return false, fmt.Errorf("failed to open run key: %w", err)
	}
	defer key.Close()

	if _, _, err := key.GetStringValue(autostartValue); err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read run entry: %w", err)
	}
	return true, nil
}
