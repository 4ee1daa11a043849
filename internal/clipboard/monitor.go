package clipboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/events"
	"github.com/elegantclip/elegantclip/internal/source"
	"github.com/elegantclip/elegantclip/internal/storage"
	"github.com/elegantclip/elegantclip/internal/types"
)

// ErrNoContent is returned by Reader methods when the clipboard holds no
// payload of the requested format.
var ErrNoContent = errors.New("no clipboard content")

// pauseClearDelay is how long a pause scope lingers after release. The OS
// delivers clipboard-change notifications asynchronously, so the flag must
// outlive the write that triggered them.
const pauseClearDelay = 500 * time.Millisecond

// Reader is the platform clipboard surface the monitor consumes.
type Reader interface {
	// ReadImage returns PNG bytes, or ErrNoContent when the clipboard
	// holds no image.
	ReadImage() ([]byte, error)
	// ReadText returns the clipboard text, or ErrNoContent when the
	// clipboard holds no text.
	ReadText() (string, error)
}

// Listener delivers clipboard-change callbacks from the OS. The callback
// runs on the listener's own thread.
type Listener interface {
	Start(onChange func()) error
	Stop() error
}

// Attribution resolves the owning application of a clipboard change. It
// must be consulted before any clipboard read: opening the clipboard
// invalidates the owner window.
type Attribution interface {
	Resolve() source.Info
}

// MonitorConfig wires a Monitor's dependencies.
type MonitorConfig struct {
	Listener  Listener
	Reader    Reader
	Resolver  Attribution
	Items     *storage.Items
	Settings  *storage.Settings
	Emitter   events.Emitter
	ImagesDir string
	Logger    *zap.Logger
}

// Monitor captures clipboard changes into storage. All capture work runs
// on the listener's thread; running and paused are the only state shared
// with other goroutines.
type Monitor struct {
	listener  Listener
	reader    Reader
	resolver  Attribution
	items     *storage.Items
	settings  *storage.Settings
	emitter   events.Emitter
	imagesDir string
	logger    *zap.Logger

	running atomic.Bool
	paused  atomic.Bool
}

// NewMonitor creates a stopped monitor.
func NewMonitor(cfg MonitorConfig) *Monitor {
	return &Monitor{
		listener:  cfg.Listener,
		reader:    cfg.Reader,
		resolver:  cfg.Resolver,
		items:     cfg.Items,
		settings:  cfg.Settings,
		emitter:   cfg.Emitter,
		imagesDir: cfg.ImagesDir,
		logger:    cfg.Logger,
	}
}

// Start registers the change listener and begins capturing.
func (m *Monitor) Start() error {
	if !m.running.CompareAndSwap(false, true) {
		return errors.New("monitor already running")
	}
	if err := m.listener.Start(m.handleChange); err != nil {
		m.running.Store(false)
		return fmt.Errorf("failed to start clipboard listener: %w", err)
	}
	m.logger.Info("clipboard monitor started")
	return nil
}

// Stop detaches the listener.
func (m *Monitor) Stop() error {
	if !m.running.CompareAndSwap(true, false) {
		return nil
	}
	if err := m.listener.Stop(); err != nil {
		return fmt.Errorf("failed to stop clipboard listener: %w", err)
	}
	m.logger.Info("clipboard monitor stopped")
	return nil
}

// Pause suspends capture until Resume.
func (m *Monitor) Pause() {
	m.paused.Store(true)
	m.logger.Debug("monitor paused")
}

// Resume re-enables capture after Pause.
func (m *Monitor) Resume() {
	m.paused.Store(false)
	m.logger.Debug("monitor resumed")
}

// Status reports the monitor state.
func (m *Monitor) Status() types.MonitorStatus {
	return types.MonitorStatus{
		IsRunning: m.running.Load(),
		IsPaused:  m.paused.Load(),
	}
}

// PauseScope suspends capture for the duration of a programmatic
// clipboard write. The returned release func must be called on every exit
// path; capture resumes pauseClearDelay after release so trailing OS
// notifications from our own write are still swallowed. A monitor paused
// by the user stays paused.
func (m *Monitor) PauseScope() (release func()) {
	wasPaused := m.paused.Swap(true)
	var once sync.Once
	return func() {
		once.Do(func() {
			if wasPaused {
				return
			}
			time.AfterFunc(pauseClearDelay, func() {
				m.paused.Store(false)
			})
		})
	}
}

// handleChange is the clipboard-change callback. Attribution strictly
// precedes the reads: no clipboard API may be called between resolving
// the owner and finishing the reads, or the owner window is lost.
func (m *Monitor) handleChange() {
	if !m.running.Load() || m.paused.Load() {
		return
	}

	info := m.resolver.Resolve()

	content := m.readContent()
	if content == nil {
		return
	}

	if err := m.process(context.Background(), content, info); err != nil {
		m.logger.Error("failed to capture clipboard change", zap.Error(err))
	}
}

// readContent pulls the highest-priority payload off the clipboard:
// images win over text, empty text is ignored.
// TODO: capture CF_HTML, Rich Text Format and CF_HDROP payloads once the
// listener exposes those formats; the classifier and storage already
// accept them.
func (m *Monitor) readContent() *Content {
	if m.saveImages() {
		img, err := m.reader.ReadImage()
		if err == nil && len(img) > 0 {
			return NewImage(img)
		}
		if err != nil && !errors.Is(err, ErrNoContent) {
			m.logger.Debug("image read failed", zap.Error(err))
		}
	}

	text, err := m.reader.ReadText()
	if err != nil {
		if !errors.Is(err, ErrNoContent) {
			m.logger.Debug("text read failed", zap.Error(err))
		}
		return nil
	}
	if text == "" {
		return nil
	}
	return NewText(text)
}

func (m *Monitor) process(ctx context.Context, content *Content, info source.Info) error {
	size := content.ByteSize()
	if maxBytes := m.settings.MaxContentSizeBytes(ctx); maxBytes > 0 && size > maxBytes {
		m.logger.Debug("payload over size limit, dropped",
			zap.Int64("bytes", size),
			zap.Int64("limit", maxBytes))
		return nil
	}

	hash := content.Fingerprint()

	id, err := m.items.TouchByHash(ctx, hash)
	if err == nil {
		m.emitter.Emit(types.EventClipboardUpdated, id)
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	item := m.buildItem(content, hash, size, info)

	if content.Kind == types.TypeImage {
		// The PNG must be on disk before the row exists so a UI fetch
		// of the fresh id always finds the file.
		path, width, height, err := m.writeImage(content.Image, hash)
		if err != nil {
			return err
		}
		item.ImagePath = path
		item.ImageWidth = width
		item.ImageHeight = height
	}

	id, err = m.items.Insert(ctx, item)
	if err != nil {
		return err
	}

	limit := m.settings.MaxHistoryCount(ctx)
	_, orphans, err := m.items.EnforceMaxCount(ctx, limit)
	if err != nil {
		m.logger.Error("retention sweep failed", zap.Error(err))
	}
	m.removeImageFiles(orphans)

	m.emitter.Emit(types.EventClipboardUpdated, id)
	return nil
}

func (m *Monitor) buildItem(content *Content, hash string, size int64, info source.Info) *types.ClipboardItem {
	item := &types.ClipboardItem{
		ContentType:   content.Kind,
		ContentHash:   hash,
		Preview:       content.Preview(),
		ByteSize:      size,
		CharCount:     content.CharCount(),
		SourceAppName: info.AppName,
		SourceAppIcon: info.IconPath,
	}
	switch content.Kind {
	case types.TypeText:
		item.TextContent = content.Text
	case types.TypeHTML:
		item.HTMLContent = content.HTML
		item.TextContent = content.Text
	case types.TypeRTF:
		item.RTFContent = content.RTF
		item.TextContent = content.Text
	case types.TypeFiles:
		item.FilePaths = content.Files
	}
	return item
}

func (m *Monitor) writeImage(png []byte, hash string) (string, int, int, error) {
	if err := os.MkdirAll(m.imagesDir, 0o755); err != nil {
		return "", 0, 0, fmt.Errorf("failed to create images directory: %w", err)
	}
	path := filepath.Join(m.imagesDir, hash[:16]+".png")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", 0, 0, fmt.Errorf("failed to write image file: %w", err)
	}

	width, height, err := DecodeImageSize(png)
	if err != nil {
		m.logger.Warn("failed to read image dimensions", zap.Error(err))
	}
	return path, width, height, nil
}

// removeImageFiles unlinks PNGs whose rows are gone. Failures are logged
// and skipped; a stray file must never fail a capture.
func (m *Monitor) removeImageFiles(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			m.logger.Warn("failed to remove orphan image",
				zap.String("path", p),
				zap.Error(err))
		}
	}
}

func (m *Monitor) saveImages() bool {
	value, err := m.settings.Get(context.Background(), types.SettingSaveImages)
	if err != nil {
		return true
	}
	return value != "false"
}
