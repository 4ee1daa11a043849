package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/clipboard"
	"github.com/elegantclip/elegantclip/internal/config"
	"github.com/elegantclip/elegantclip/internal/events"
	"github.com/elegantclip/elegantclip/internal/hotkey"
	"github.com/elegantclip/elegantclip/internal/ipc"
	"github.com/elegantclip/elegantclip/internal/overlay"
	"github.com/elegantclip/elegantclip/internal/platform"
	"github.com/elegantclip/elegantclip/internal/source"
	"github.com/elegantclip/elegantclip/internal/storage"
	"github.com/elegantclip/elegantclip/internal/tray"
	"github.com/elegantclip/elegantclip/internal/updater"
)

const (
	instanceName = "ElegantClipboard"

	overlayWidth  = 360
	overlayHeight = 520
)

// Options configure a daemon run.
type Options struct {
	Config *config.Config
	Paths  config.Paths
	Logger *zap.Logger

	// OnOpenSettings is invoked when a client asks for the settings
	// window; the headless daemon leaves it nil.
	OnOpenSettings func()
}

// Run brings the whole daemon up — storage, monitor, overlay, hooks,
// hotkey, tray, control socket — and blocks until a quit request or
// termination signal arrives. Teardown is in reverse start order.
func Run(opts Options) error {
	logger := opts.Logger

	releaseLock, err := platform.AcquireInstanceLock(instanceName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			return fmt.Errorf("another instance is already running")
		}
		return fmt.Errorf("failed to acquire instance lock: %w", err)
	}
	defer releaseLock()

	if err := opts.Paths.EnsureDirs(); err != nil {
		return err
	}

	store, err := storage.Open(opts.Paths.DBFile, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	items := storage.NewItems(store, logger)
	settings := storage.NewSettings(store, logger)
	bus := events.NewBus(logger)
	defer bus.Close()

	clip := platform.NewClipboard(logger)
	listener := platform.NewChangeListener(logger)
	resolver := source.NewResolver(opts.Paths.IconsDir, logger)

	monitor := clipboard.NewMonitor(clipboard.MonitorConfig{
		Listener:  listener,
		Reader:    clip,
		Resolver:  resolver,
		Items:     items,
		Settings:  settings,
		Emitter:   bus,
		ImagesDir: opts.Paths.ImagesDir,
		Logger:    logger,
	})

	state := overlay.NewState()

	var window overlay.Window
	if native, err := platform.NewOverlayWindow(overlayWidth, overlayHeight, logger); err != nil {
		logger.Warn("overlay window unavailable, running degraded", zap.Error(err))
		window = noopWindow{}
	} else {
		window = native
	}

	// The hook callbacks fire only after ctrl exists: hooks.Start runs
	// below the controller construction.
	var ctrl *overlay.Controller
	hooks := platform.NewHookThread(platform.HooksConfig{
		OnCursorMove: state.SetCursor,
		OnButtonDown: func(x, y int32) { ctrl.HandleButtonDown(x, y) },
		OnEscape:     func() { ctrl.HandleEscape() },
		Logger:       logger,
	})

	ctrl = overlay.NewController(overlay.Config{
		Window:  window,
		Hooks:   hooks,
		Pauser:  monitor,
		Writer:  clip,
		Emitter: bus,
		State:   state,
		Logger:  logger,
	})
	defer ctrl.Close()

	if err := hooks.Start(); err != nil {
		if !errors.Is(err, platform.ErrUnsupported) {
			return fmt.Errorf("failed to start input hooks: %w", err)
		}
		logger.Debug("input hooks unavailable on this platform")
	} else {
		defer hooks.Stop()
	}

	if err := monitor.Start(); err != nil {
		return err
	}
	defer monitor.Stop()

	mgr := hotkey.NewManager(logger)
	a := &App{
		cfg:            opts.Config,
		paths:          opts.Paths,
		store:          store,
		items:          items,
		settings:       settings,
		monitor:        monitor,
		overlay:        ctrl,
		hotkeys:        mgr,
		bus:            bus,
		updates:        updater.New(bus, logger),
		logger:         logger,
		onOpenSettings: opts.OnOpenSettings,
		quit:           make(chan struct{}),
	}

	if err := a.bindStartupShortcut(); err != nil {
		if !errors.Is(err, platform.ErrUnsupported) {
			logger.Warn("failed to bind global shortcut", zap.Error(err))
		}
	} else {
		defer mgr.Stop()
	}

	server := ipc.NewServer(opts.Paths.SocketFile, a.Handle, bus, logger)
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	icon := tray.New(tray.Config{
		Tooltip:    instanceName,
		OnToggle:   func() { _ = ctrl.TrayToggle() },
		OnSettings: a.OpenSettingsWindow,
		OnRestart:  func() { _ = a.Restart() },
		OnQuit:     a.RequestQuit,
		Logger:     logger,
	})
	if err := icon.Start(); err != nil {
		logger.Warn("tray icon unavailable", zap.Error(err))
	} else {
		defer icon.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	logger.Info("daemon running",
		zap.String("data_root", opts.Paths.Root),
		zap.String("socket", opts.Paths.SocketFile))

	select {
	case sig := <-sigCh:
		logger.Info("signal received, shutting down", zap.String("signal", sig.String()))
	case <-a.quit:
		logger.Info("quit requested, shutting down")
	}
	return nil
}

// bindStartupShortcut registers the overlay toggle chord: Super+V while
// the Win+V takeover is on, the stored shortcut otherwise.
func (a *App) bindStartupShortcut() error {
	ctx := context.Background()

	raw := a.settings.Shortcut(ctx)
	if a.settings.WinVReplacement(ctx) {
		raw = hotkey.WinVShortcut
	}

	parsed, err := hotkey.Parse(raw)
	if err != nil {
		a.logger.Warn("stored shortcut invalid, using default",
			zap.String("shortcut", raw),
			zap.Error(err))
		parsed, _ = hotkey.Parse(hotkey.Default)
	}

	return a.hotkeys.Start(parsed, func() {
		if err := a.overlay.Toggle(); err != nil {
			a.logger.Warn("overlay toggle failed", zap.Error(err))
		}
	})
}

// noopWindow stands in for the native overlay on platforms without one;
// the command surface keeps answering, paste degrades to copy-like
// behavior with the injection step failing cleanly.
type noopWindow struct{}

func (noopWindow) ShowAt(platform.Point) error { return nil }

func (noopWindow) Hide() {}

func (noopWindow) ForceTopmost() {}

func (noopWindow) Bounds() (platform.Rect, error) { return platform.Rect{}, platform.ErrUnsupported }

func (noopWindow) Size() (width, height int32) { return overlayWidth, overlayHeight }

func (noopWindow) Handle() uintptr { return 0 }

func (noopWindow) Close() {}
