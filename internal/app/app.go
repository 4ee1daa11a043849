// Package app is the daemon's command surface: every operation the UI
// shell or the CLI can invoke lives here, on top of the storage, monitor
// and overlay layers. The IPC server dispatches into it; the tray and
// hotkey callbacks call it directly.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/elegantclip/elegantclip/internal/clipboard"
	"github.com/elegantclip/elegantclip/internal/config"
	"github.com/elegantclip/elegantclip/internal/events"
	"github.com/elegantclip/elegantclip/internal/hotkey"
	"github.com/elegantclip/elegantclip/internal/overlay"
	"github.com/elegantclip/elegantclip/internal/platform"
	"github.com/elegantclip/elegantclip/internal/storage"
	"github.com/elegantclip/elegantclip/internal/types"
	"github.com/elegantclip/elegantclip/internal/updater"
)

// hotkeyManager is the platform hotkey seam; the windows and stub
// builds of internal/hotkey both satisfy it.
type hotkeyManager interface {
	Start(hotkey.Shortcut, func()) error
	Update(hotkey.Shortcut) error
	Stop()
}

// App exposes the daemon's operations. All methods are safe to call
// from any goroutine.
type App struct {
	cfg      *config.Config
	paths    config.Paths
	store    *storage.Store
	items    *storage.Items
	settings *storage.Settings
	monitor  *clipboard.Monitor
	overlay  *overlay.Controller
	hotkeys  hotkeyManager
	bus      *events.Bus
	updates  *updater.Updater
	logger   *zap.Logger

	// onOpenSettings forwards the open-settings request to whatever
	// shell is attached; nil when the daemon runs headless.
	onOpenSettings func()

	quit chan struct{}
}

// List returns history items matching opts in display order.
func (a *App) List(ctx context.Context, opts types.ListOptions) ([]*types.ClipboardItem, error) {
	return a.items.List(ctx, opts)
}

// Count returns the number of items matching opts.
func (a *App) Count(ctx context.Context, opts types.ListOptions) (int64, error) {
	return a.items.Count(ctx, opts)
}

// GetByID returns one item.
func (a *App) GetByID(ctx context.Context, id int64) (*types.ClipboardItem, error) {
	return a.items.GetByID(ctx, id)
}

// TogglePin flips an item's pinned flag and returns the new state.
func (a *App) TogglePin(ctx context.Context, id int64) (bool, error) {
	return a.items.TogglePin(ctx, id)
}

// ToggleFavorite flips an item's favorite flag and returns the new state.
func (a *App) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	return a.items.ToggleFavorite(ctx, id)
}

// Move swaps the sort order of two items.
func (a *App) Move(ctx context.Context, fromID, toID int64) error {
	return a.items.Move(ctx, fromID, toID)
}

// Delete removes one item together with its image file, if any.
func (a *App) Delete(ctx context.Context, id int64) error {
	imagePath, err := a.items.Delete(ctx, id)
	if err != nil {
		return err
	}
	a.removeImageFiles([]string{imagePath})
	return nil
}

// ClearHistory removes every unpinned, unfavorited item and its image
// files, returning how many rows went.
func (a *App) ClearHistory(ctx context.Context) (int64, error) {
	deleted, paths, err := a.items.ClearHistory(ctx)
	if err != nil {
		return 0, err
	}
	a.removeImageFiles(paths)
	return deleted, nil
}

// ClearAll removes everything, unlinks every image file, and vacuums
// the database.
func (a *App) ClearAll(ctx context.Context) (int64, error) {
	deleted, paths, err := a.items.ClearAll(ctx)
	if err != nil {
		return 0, err
	}
	a.removeImageFiles(paths)
	if err := a.store.Vacuum(ctx); err != nil {
		a.logger.Warn("vacuum after clear-all failed", zap.Error(err))
	}
	return deleted, nil
}

// UpdateTextContent rewrites a text item's payload, recomputing the
// derived fields. An empty replacement deletes the item instead.
func (a *App) UpdateTextContent(ctx context.Context, id int64, text string) error {
	if text == "" {
		return a.Delete(ctx, id)
	}
	item, err := a.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item.ContentType != types.TypeText {
		return fmt.Errorf("item %d is %s, not text", id, item.ContentType)
	}

	content := clipboard.NewText(text)
	return a.items.UpdateTextContent(ctx, id,
		text, content.Preview(), content.Fingerprint(),
		content.ByteSize(), content.CharCount())
}

// CopyToClipboard puts an item back on the system clipboard without
// injecting a paste.
func (a *App) CopyToClipboard(ctx context.Context, id int64) error {
	item, err := a.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return a.overlay.Copy(item)
}

// PasteContent writes an item to the clipboard in its captured shape
// and injects Ctrl+V into the previously focused application.
func (a *App) PasteContent(ctx context.Context, id int64) error {
	item, err := a.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return a.overlay.Paste(item)
}

// PasteContentAsPlain pastes the item's plain-text reading.
func (a *App) PasteContentAsPlain(ctx context.Context, id int64) error {
	item, err := a.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return a.overlay.PastePlain(item)
}

// PasteTextDirect pastes caller-supplied text that need not be in
// history.
func (a *App) PasteTextDirect(text string) error {
	return a.overlay.PasteText(text)
}

// PasteAsPath pastes the item's on-disk path instead of its content.
func (a *App) PasteAsPath(ctx context.Context, id int64) error {
	item, err := a.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return a.overlay.PasteAsPath(item)
}

// QuickPasteBySlot pastes the item at display position slot, 1 through 9.
func (a *App) QuickPasteBySlot(ctx context.Context, slot int) error {
	if slot < 1 || slot > 9 {
		return fmt.Errorf("quick-paste slot %d out of range 1-9", slot)
	}
	item, err := a.items.GetByPosition(ctx, slot-1)
	if err != nil {
		return err
	}
	return a.overlay.Paste(item)
}

// PauseMonitor suspends clipboard capture until ResumeMonitor.
func (a *App) PauseMonitor() { a.monitor.Pause() }

// ResumeMonitor re-enables clipboard capture.
func (a *App) ResumeMonitor() { a.monitor.Resume() }

// MonitorStatus reports the monitor's running and paused flags.
func (a *App) MonitorStatus() types.MonitorStatus { return a.monitor.Status() }

// OptimizeDB runs PRAGMA optimize.
func (a *App) OptimizeDB(ctx context.Context) error { return a.store.Optimize(ctx) }

// VacuumDB rebuilds the database file.
func (a *App) VacuumDB(ctx context.Context) error { return a.store.Vacuum(ctx) }

// CheckFilesExist reports, per path, whether it still exists on disk.
// Paths are probed in parallel; a files item can point at a slow
// network share.
func (a *App) CheckFilesExist(ctx context.Context, paths []string) (map[string]bool, error) {
	results := make([]bool, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, p := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			_, err := os.Stat(p)
			results[i] = err == nil
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]bool, len(paths))
	for i, p := range paths {
		out[p] = results[i]
	}
	return out, nil
}

// FileDetails describes each path of a files item.
func (a *App) FileDetails(ctx context.Context, id int64) ([]types.FileDetail, error) {
	item, err := a.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.ContentType != types.TypeFiles {
		return nil, fmt.Errorf("item %d is %s, not files", id, item.ContentType)
	}

	details := make([]types.FileDetail, 0, len(item.FilePaths))
	for _, p := range item.FilePaths {
		d := types.FileDetail{Path: p}
		if info, err := os.Stat(p); err == nil {
			d.Exists = true
			d.IsDir = info.IsDir()
			if !info.IsDir() {
				d.Size = info.Size()
			}
		}
		details = append(details, d)
	}
	return details, nil
}

// DataSize reports the on-disk usage breakdown.
func (a *App) DataSize(ctx context.Context) (*types.DataSize, error) {
	return a.store.DataSize(ctx, a.paths.ImagesDir, a.paths.IconsDir)
}

// GetSettings returns every stored setting.
func (a *App) GetSettings(ctx context.Context) (map[string]string, error) {
	return a.settings.All(ctx)
}

// GetSetting returns one setting value.
func (a *App) GetSetting(ctx context.Context, key string) (string, error) {
	return a.settings.Get(ctx, key)
}

// SetSetting stores one setting value.
func (a *App) SetSetting(ctx context.Context, key, value string) error {
	return a.settings.Set(ctx, key, value)
}

// OpenSettingsWindow asks the attached shell to open or focus its
// settings window.
func (a *App) OpenSettingsWindow() {
	if a.onOpenSettings != nil {
		a.onOpenSettings()
		return
	}
	a.logger.Debug("open-settings requested with no shell attached")
}

// SetWindowVisibility drives overlay visibility from the UI layer.
func (a *App) SetWindowVisibility(visible bool) error {
	return a.overlay.SetVisible(visible)
}

// Restart relaunches the process and shuts this instance down. When the
// config asks for admin and the process is not elevated, the elevated
// path is tried first and plain relaunch is the fallback.
func (a *App) Restart() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable: %w", err)
	}
	args := os.Args[1:]

	if a.cfg.RunAsAdmin && !platform.IsElevated() {
		if err := platform.RelaunchElevated(exe, args); err != nil {
			a.logger.Warn("elevated relaunch failed, retrying plain", zap.Error(err))
			if err := platform.Relaunch(exe, args); err != nil {
				return fmt.Errorf("failed to relaunch: %w", err)
			}
		}
	} else {
		if err := platform.Relaunch(exe, args); err != nil {
			return fmt.Errorf("failed to relaunch: %w", err)
		}
	}

	a.RequestQuit()
	return nil
}

// DownloadUpdate fetches an installer in the background, streaming
// progress events to subscribers. The caller gets an immediate answer;
// completion or failure shows up in the log and the event stream.
func (a *App) DownloadUpdate(url, destPath string) {
	go func() {
		if err := a.updates.Download(context.Background(), url, destPath); err != nil {
			a.logger.Error("update download failed",
				zap.String("url", url),
				zap.Error(err))
		}
	}()
}

// RequestQuit asks the daemon's run loop to shut down.
func (a *App) RequestQuit() {
	select {
	case <-a.quit:
	default:
		close(a.quit)
	}
}

// removeImageFiles unlinks image files whose rows are gone. Failure is
// non-fatal but logged; the row deletion already committed.
func (a *App) removeImageFiles(paths []string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			a.logger.Warn("failed to remove image file",
				zap.String("path", p),
				zap.Error(err))
		}
	}
}

// commandTimeout bounds storage work done on behalf of one IPC command.
const commandTimeout = 30 * time.Second

func (a *App) commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}
