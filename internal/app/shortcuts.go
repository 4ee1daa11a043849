package app

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/hotkey"
	"github.com/elegantclip/elegantclip/internal/platform"
	"github.com/elegantclip/elegantclip/internal/types"
)

// UpdateShortcut validates and stores a new overlay shortcut. While the
// Win+V takeover is active the effective binding stays Super+V; the
// stored value takes over again when the takeover is disabled.
func (a *App) UpdateShortcut(ctx context.Context, shortcut string) error {
	parsed, err := hotkey.Parse(shortcut)
	if err != nil {
		return err
	}
	if err := a.settings.Set(ctx, types.SettingGlobalShortcut, shortcut); err != nil {
		return err
	}

	if a.settings.WinVReplacement(ctx) {
		a.logger.Info("shortcut stored; Win+V takeover keeps the active binding",
			zap.String("shortcut", shortcut))
		return nil
	}
	if err := a.hotkeys.Update(parsed); err != nil {
		return fmt.Errorf("failed to rebind shortcut: %w", err)
	}
	a.logger.Info("shortcut updated", zap.String("shortcut", shortcut))
	return nil
}

// EnableWinVReplacement disables the built-in Win+V popup through the
// Explorer registry and rebinds the overlay to Super+V. Explorer is
// restarted by the takeover; the change is sticky across reboots.
func (a *App) EnableWinVReplacement(ctx context.Context) error {
	if err := hotkey.EnableWinVTakeover(a.logger); err != nil {
		return err
	}
	if err := a.settings.Set(ctx, types.SettingWinVReplacement, "true"); err != nil {
		return err
	}

	parsed, err := hotkey.Parse(hotkey.WinVShortcut)
	if err != nil {
		return err
	}
	if err := a.hotkeys.Update(parsed); err != nil {
		return fmt.Errorf("failed to bind Super+V: %w", err)
	}
	a.logger.Info("Win+V takeover enabled")
	return nil
}

// DisableWinVReplacement restores the built-in Win+V popup and the
// user's stored shortcut.
func (a *App) DisableWinVReplacement(ctx context.Context) error {
	if err := hotkey.DisableWinVTakeover(a.logger); err != nil {
		return err
	}
	if err := a.settings.Set(ctx, types.SettingWinVReplacement, "false"); err != nil {
		return err
	}

	parsed, err := hotkey.Parse(a.settings.Shortcut(ctx))
	if err != nil {
		parsed, _ = hotkey.Parse(hotkey.Default)
	}
	if err := a.hotkeys.Update(parsed); err != nil {
		return fmt.Errorf("failed to restore shortcut: %w", err)
	}
	a.logger.Info("Win+V takeover disabled")
	return nil
}

// IsWinVReplacement reports whether the takeover preference is on and
// whether the registry actually carries it.
func (a *App) IsWinVReplacement(ctx context.Context) (enabled, applied bool) {
	enabled = a.settings.WinVReplacement(ctx)
	applied, err := hotkey.WinVTakeoverApplied()
	if err != nil {
		a.logger.Debug("failed to read Win+V registry state", zap.Error(err))
	}
	return enabled, applied
}

// EnableAutostart registers the daemon to launch at login.
func (a *App) EnableAutostart() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable: %w", err)
	}
	return platform.EnableAutostart(exe)
}

// DisableAutostart removes the login registration.
func (a *App) DisableAutostart() error {
	return platform.DisableAutostart()
}

// IsAutostart reports whether the login registration exists.
func (a *App) IsAutostart() (bool, error) {
	return platform.AutostartEnabled()
}
