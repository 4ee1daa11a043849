package clipboard

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/source"
	"github.com/elegantclip/elegantclip/internal/storage"
	"github.com/elegantclip/elegantclip/internal/types"
)

type fakeListener struct {
	onChange func()
	started  bool
}

func (l *fakeListener) Start(onChange func()) error {
	l.onChange = onChange
	l.started = true
	return nil
}

func (l *fakeListener) Stop() error {
	l.started = false
	return nil
}

func (l *fakeListener) fire() {
	if l.onChange != nil {
		l.onChange()
	}
}

// fakeClipboard plays both Reader and Attribution and records the order
// of calls, so the attribute-then-read discipline can be asserted.
type fakeClipboard struct {
	calls []string
	image []byte
	text  string
	info  source.Info
}

func (f *fakeClipboard) ReadImage() ([]byte, error) {
	f.calls = append(f.calls, "read-image")
	if len(f.image) == 0 {
		return nil, ErrNoContent
	}
	return f.image, nil
}

func (f *fakeClipboard) ReadText() (string, error) {
	f.calls = append(f.calls, "read-text")
	if f.text == "" {
		return "", ErrNoContent
	}
	return f.text, nil
}

func (f *fakeClipboard) Resolve() source.Info {
	f.calls = append(f.calls, "resolve")
	return f.info
}

type recordedEvent struct {
	Name    string
	Payload interface{}
}

type fakeEmitter struct {
	events []recordedEvent
}

func (e *fakeEmitter) Emit(name string, payload interface{}) {
	e.events = append(e.events, recordedEvent{Name: name, Payload: payload})
}

type monitorFixture struct {
	monitor   *Monitor
	listener  *fakeListener
	clip      *fakeClipboard
	emitter   *fakeEmitter
	items     *storage.Items
	settings  *storage.Settings
	imagesDir string
}

func newMonitorFixture(t *testing.T) *monitorFixture {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.Open(filepath.Join(dir, "clipboard.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := &monitorFixture{
		listener:  &fakeListener{},
		clip:      &fakeClipboard{},
		emitter:   &fakeEmitter{},
		items:     storage.NewItems(store, zap.NewNop()),
		settings:  storage.NewSettings(store, zap.NewNop()),
		imagesDir: filepath.Join(dir, "images"),
	}
	f.monitor = NewMonitor(MonitorConfig{
		Listener:  f.listener,
		Reader:    f.clip,
		Resolver:  f.clip,
		Items:     f.items,
		Settings:  f.settings,
		Emitter:   f.emitter,
		ImagesDir: f.imagesDir,
		Logger:    zap.NewNop(),
	})
	require.NoError(t, f.monitor.Start())
	t.Cleanup(func() { _ = f.monitor.Stop() })
	return f
}

func TestMonitorCapturesText(t *testing.T) {
	ctx := context.Background()
	f := newMonitorFixture(t)
	f.clip.text = "captured text"
	f.clip.info = source.Info{AppName: "Notepad", IconPath: `C:\icons\abc.png`}

	f.listener.fire()

	items, err := f.items.List(ctx, types.ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	got := items[0]
	assert.Equal(t, types.TypeText, got.ContentType)
	assert.Equal(t, "captured text", got.TextContent)
	assert.Equal(t, "captured text", got.Preview)
	assert.Equal(t, NewText("captured text").Fingerprint(), got.ContentHash)
	assert.Equal(t, "Notepad", got.SourceAppName)
	assert.Equal(t, `C:\icons\abc.png`, got.SourceAppIcon)

	require.Len(t, f.emitter.events, 1)
	assert.Equal(t, types.EventClipboardUpdated, f.emitter.events[0].Name)
	assert.Equal(t, got.ID, f.emitter.events[0].Payload)
}

func TestMonitorIgnoresEmptyText(t *testing.T) {
	ctx := context.Background()
	f := newMonitorFixture(t)
	f.clip.text = ""

	f.listener.fire()

	n, err := f.items.Count(ctx, types.ListOptions{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.emitter.events)
}

func TestMonitorAttributesBeforeReading(t *testing.T) {
	f := newMonitorFixture(t)
	f.clip.text = "ordering"

	f.listener.fire()

	want := []string{"resolve", "read-image", "read-text"}
	if diff := cmp.Diff(want, f.clip.calls); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestMonitorPrefersImageOverText(t *testing.T) {
	ctx := context.Background()
	f := newMonitorFixture(t)
	f.clip.image = encodePNG(t, 2, 2)
	f.clip.text = "should lose"

	f.listener.fire()

	items, err := f.items.List(ctx, types.ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	got := items[0]
	assert.Equal(t, types.TypeImage, got.ContentType)
	assert.Equal(t, "[Image]", got.Preview)
	assert.Equal(t, 2, got.ImageWidth)
	assert.Equal(t, 2, got.ImageHeight)

	// The PNG landed on disk, named by the hash prefix.
	require.NotEmpty(t, got.ImagePath)
	assert.Equal(t, got.ContentHash[:16]+".png", filepath.Base(got.ImagePath))
	data, err := os.ReadFile(got.ImagePath)
	require.NoError(t, err)
	assert.Equal(t, f.clip.image, data)
}

func TestMonitorSaveImagesSettingOff(t *testing.T) {
	ctx := context.Background()
	f := newMonitorFixture(t)
	require.NoError(t, f.settings.Set(ctx, types.SettingSaveImages, "false"))
	f.clip.image = encodePNG(t, 2, 2)
	f.clip.text = "text instead"

	f.listener.fire()

	items, err := f.items.List(ctx, types.ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, types.TypeText, items[0].ContentType)
	assert.Equal(t, []string{"resolve", "read-text"}, f.clip.calls)
}

func TestMonitorDuplicateTouches(t *testing.T) {
	ctx := context.Background()
	f := newMonitorFixture(t)
	f.clip.text = "same payload"

	f.listener.fire()
	f.listener.fire()

	items, err := f.items.List(ctx, types.ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].AccessCount)

	// Both captures emitted, carrying the same id.
	require.Len(t, f.emitter.events, 2)
	assert.Equal(t, f.emitter.events[0].Payload, f.emitter.events[1].Payload)
}

func TestMonitorSizeLimit(t *testing.T) {
	ctx := context.Background()
	f := newMonitorFixture(t)
	require.NoError(t, f.settings.Set(ctx, types.SettingMaxContentSizeKB, "1"))

	f.clip.text = strings.Repeat("a", 1024)
	f.listener.fire()

	n, err := f.items.Count(ctx, types.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "payload at the limit must be kept")

	f.clip.text = strings.Repeat("b", 1025)
	f.listener.fire()

	n, err = f.items.Count(ctx, types.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "payload over the limit must be dropped")
	assert.Empty(t, f.emitter.events[1:], "dropped payloads emit nothing")
}

func TestMonitorRetentionUnlinksEvictedImages(t *testing.T) {
	ctx := context.Background()
	f := newMonitorFixture(t)
	require.NoError(t, f.settings.Set(ctx, types.SettingMaxHistoryCount, "2"))

	f.clip.image = encodePNG(t, 2, 2)
	f.listener.fire()

	items, err := f.items.List(ctx, types.ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	evicted := items[0]
	require.FileExists(t, evicted.ImagePath)

	// Two more captures overflow the cap; the image row is oldest.
	f.clip.image = nil
	f.clip.text = "second"
	f.listener.fire()
	f.clip.text = "third"
	f.listener.fire()

	n, err := f.items.Count(ctx, types.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = f.items.GetByID(ctx, evicted.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoFileExists(t, evicted.ImagePath)
}

func TestMonitorPauseAndResume(t *testing.T) {
	ctx := context.Background()
	f := newMonitorFixture(t)
	f.clip.text = "while paused"

	f.monitor.Pause()
	assert.True(t, f.monitor.Status().IsPaused)
	f.listener.fire()

	n, err := f.items.Count(ctx, types.ListOptions{})
	require.NoError(t, err)
	assert.Zero(t, n)

	f.monitor.Resume()
	f.listener.fire()

	n, err = f.items.Count(ctx, types.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMonitorPauseScope(t *testing.T) {
	f := newMonitorFixture(t)

	release := f.monitor.PauseScope()
	assert.True(t, f.monitor.Status().IsPaused)

	release()
	// The flag lingers past release to swallow trailing notifications
	// from our own write.
	assert.True(t, f.monitor.Status().IsPaused)

	assert.Eventually(t, func() bool {
		return !f.monitor.Status().IsPaused
	}, 2*time.Second, 20*time.Millisecond)
}

func TestMonitorPauseScopeKeepsUserPause(t *testing.T) {
	f := newMonitorFixture(t)

	f.monitor.Pause()
	release := f.monitor.PauseScope()
	release()

	time.Sleep(pauseClearDelay + 200*time.Millisecond)
	assert.True(t, f.monitor.Status().IsPaused, "user pause must survive a write scope")
}

func TestMonitorStartStop(t *testing.T) {
	f := newMonitorFixture(t)

	assert.Error(t, f.monitor.Start(), "second start must fail")
	assert.True(t, f.monitor.Status().IsRunning)

	require.NoError(t, f.monitor.Stop())
	assert.False(t, f.monitor.Status().IsRunning)
	assert.False(t, f.listener.started)

	require.NoError(t, f.monitor.Stop(), "stopping twice is a no-op")
}
