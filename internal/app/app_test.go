package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/clipboard"
	"github.com/elegantclip/elegantclip/internal/config"
	"github.com/elegantclip/elegantclip/internal/events"
	"github.com/elegantclip/elegantclip/internal/hotkey"
	"github.com/elegantclip/elegantclip/internal/ipc"
	"github.com/elegantclip/elegantclip/internal/overlay"
	"github.com/elegantclip/elegantclip/internal/storage"
	"github.com/elegantclip/elegantclip/internal/types"
	"github.com/elegantclip/elegantclip/internal/updater"
)

type fakeHotkeys struct {
	started bool
	current hotkey.Shortcut
}

func (f *fakeHotkeys) Start(s hotkey.Shortcut, _ func()) error {
	f.started = true
	f.current = s
	return nil
}

func (f *fakeHotkeys) Update(s hotkey.Shortcut) error {
	f.current = s
	return nil
}

func (f *fakeHotkeys) Stop() { f.started = false }

type fakeWriter struct {
	items []*types.ClipboardItem
	texts []string
}

func (w *fakeWriter) WriteItem(item *types.ClipboardItem) error {
	w.items = append(w.items, item)
	return nil
}

func (w *fakeWriter) WriteText(text string) error {
	w.texts = append(w.texts, text)
	return nil
}

type noHooks struct{}

func (noHooks) InstallKeyboardHook() {}
func (noHooks) RemoveKeyboardHook()  {}

// newTestApp builds an App over a real temp database with fakes at the
// platform seams. The monitor is never started; pause state still works.
func newTestApp(t *testing.T) (*App, *fakeWriter, *fakeHotkeys) {
	t.Helper()
	logger := zap.NewNop()
	root := t.TempDir()

	store, err := storage.Open(filepath.Join(root, "clipboard.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	items := storage.NewItems(store, logger)
	settings := storage.NewSettings(store, logger)
	bus := events.NewBus(logger)
	t.Cleanup(bus.Close)

	monitor := clipboard.NewMonitor(clipboard.MonitorConfig{
		Items:     items,
		Settings:  settings,
		Emitter:   bus,
		ImagesDir: filepath.Join(root, "images"),
		Logger:    logger,
	})

	writer := &fakeWriter{}
	ctrl := overlay.NewController(overlay.Config{
		Window:  noopWindow{},
		Hooks:   noHooks{},
		Pauser:  monitor,
		Writer:  writer,
		Emitter: bus,
		State:   overlay.NewState(),
		Logger:  logger,
	})

	hotkeys := &fakeHotkeys{}
	a := &App{
		cfg:      config.DefaultConfig(),
		paths:    config.Paths{Root: root, ImagesDir: filepath.Join(root, "images"), IconsDir: filepath.Join(root, "icons")},
		store:    store,
		items:    items,
		settings: settings,
		monitor:  monitor,
		overlay:  ctrl,
		hotkeys:  hotkeys,
		bus:      bus,
		updates:  updater.New(bus, logger),
		logger:   logger,
		quit:     make(chan struct{}),
	}
	return a, writer, hotkeys
}

func insertText(t *testing.T, a *App, hash, text string) int64 {
	t.Helper()
	content := clipboard.NewText(text)
	id, err := a.items.Insert(context.Background(), &types.ClipboardItem{
		ContentType: types.TypeText,
		TextContent: text,
		ContentHash: hash,
		Preview:     content.Preview(),
		ByteSize:    content.ByteSize(),
		CharCount:   content.CharCount(),
	})
	require.NoError(t, err)
	return id
}

func TestDeleteRemovesImageFile(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t)

	imgPath := filepath.Join(a.paths.ImagesDir, "deadbeef.png")
	require.NoError(t, os.MkdirAll(a.paths.ImagesDir, 0o755))
	require.NoError(t, os.WriteFile(imgPath, []byte("png"), 0o644))

	id, err := a.items.Insert(ctx, &types.ClipboardItem{
		ContentType: types.TypeImage,
		ImagePath:   imgPath,
		ContentHash: "image-hash",
		Preview:     "[Image]",
		ByteSize:    3,
	})
	require.NoError(t, err)

	require.NoError(t, a.Delete(ctx, id))

	_, err = a.GetByID(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = os.Stat(imgPath)
	assert.True(t, os.IsNotExist(err))
}

func TestUpdateTextContent(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t)

	id := insertText(t, a, "hash-edit", "before")

	require.NoError(t, a.UpdateTextContent(ctx, id, "after edit"))

	item, err := a.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "after edit", item.TextContent)
	assert.Equal(t, "after edit", item.Preview)
	assert.Equal(t, int64(10), item.ByteSize)
	assert.Equal(t, int64(10), item.CharCount)
	assert.Equal(t, clipboard.NewText("after edit").Fingerprint(), item.ContentHash)

	// Empty replacement deletes the row instead.
	require.NoError(t, a.UpdateTextContent(ctx, id, ""))
	_, err = a.GetByID(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateTextContentWrongType(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t)

	id, err := a.items.Insert(ctx, &types.ClipboardItem{
		ContentType: types.TypeFiles,
		FilePaths:   []string{"/tmp/a"},
		ContentHash: "hash-files",
		Preview:     "/tmp/a",
	})
	require.NoError(t, err)

	assert.Error(t, a.UpdateTextContent(ctx, id, "nope"))
}

func TestCopyToClipboard(t *testing.T) {
	ctx := context.Background()
	a, writer, _ := newTestApp(t)

	id := insertText(t, a, "hash-copy", "copy me")
	require.NoError(t, a.CopyToClipboard(ctx, id))

	require.Len(t, writer.items, 1)
	assert.Equal(t, "copy me", writer.items[0].TextContent)
}

func TestQuickPasteSlotRange(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t)

	assert.Error(t, a.QuickPasteBySlot(ctx, 0))
	assert.Error(t, a.QuickPasteBySlot(ctx, 10))
	// In range but empty history.
	assert.ErrorIs(t, a.QuickPasteBySlot(ctx, 1), storage.ErrNotFound)
}

func TestCheckFilesExist(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t)

	real := filepath.Join(t.TempDir(), "real.txt")
	require.NoError(t, os.WriteFile(real, []byte("x"), 0o644))
	missing := filepath.Join(t.TempDir(), "missing.txt")

	got, err := a.CheckFilesExist(ctx, []string{real, missing})
	require.NoError(t, err)
	assert.True(t, got[real])
	assert.False(t, got[missing])
}

func TestFileDetails(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t)

	dir := t.TempDir()
	file := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o644))
	gone := filepath.Join(dir, "gone.txt")

	id, err := a.items.Insert(ctx, &types.ClipboardItem{
		ContentType: types.TypeFiles,
		FilePaths:   []string{file, dir, gone},
		ContentHash: "hash-details",
		Preview:     "3 files",
	})
	require.NoError(t, err)

	details, err := a.FileDetails(ctx, id)
	require.NoError(t, err)
	require.Len(t, details, 3)

	assert.True(t, details[0].Exists)
	assert.False(t, details[0].IsDir)
	assert.Equal(t, int64(5), details[0].Size)
	assert.True(t, details[1].IsDir)
	assert.False(t, details[2].Exists)
}

func TestUpdateShortcut(t *testing.T) {
	ctx := context.Background()
	a, _, hotkeys := newTestApp(t)

	require.NoError(t, a.UpdateShortcut(ctx, "Ctrl+Shift+X"))
	assert.Equal(t, "Ctrl+Shift+X", a.settings.Shortcut(ctx))
	assert.Equal(t, uint16('X'), hotkeys.current.Key)

	assert.Error(t, a.UpdateShortcut(ctx, "NotAKey+Q+R"))
}

func TestHandleDispatch(t *testing.T) {
	a, writer, _ := newTestApp(t)
	idA := insertText(t, a, "hash-a", "alpha")
	insertText(t, a, "hash-b", "beta")

	t.Run("List", func(t *testing.T) {
		resp := a.Handle(&ipc.Request{Command: ipc.CmdList})
		require.True(t, resp.IsOK())
		items := resp.Data.([]*types.ClipboardItem)
		require.Len(t, items, 2)
		assert.Equal(t, "beta", items[0].TextContent)
	})

	t.Run("ListSearch", func(t *testing.T) {
		resp := a.Handle(&ipc.Request{
			Command: ipc.CmdList,
			Args:    map[string]interface{}{"search": "alp"},
		})
		require.True(t, resp.IsOK())
		items := resp.Data.([]*types.ClipboardItem)
		require.Len(t, items, 1)
		assert.Equal(t, "alpha", items[0].TextContent)
	})

	t.Run("Count", func(t *testing.T) {
		resp := a.Handle(&ipc.Request{Command: ipc.CmdCount})
		require.True(t, resp.IsOK())
		assert.Equal(t, int64(2), resp.Data.(int64))
	})

	t.Run("TogglePin", func(t *testing.T) {
		resp := a.Handle(&ipc.Request{
			Command: ipc.CmdTogglePin,
			Args:    map[string]interface{}{"id": float64(idA)},
		})
		require.True(t, resp.IsOK())
		assert.Equal(t, true, resp.Data.(bool))
	})

	t.Run("CopyMissingID", func(t *testing.T) {
		resp := a.Handle(&ipc.Request{Command: ipc.CmdCopyToClipboard})
		assert.False(t, resp.IsOK())
	})

	t.Run("Copy", func(t *testing.T) {
		resp := a.Handle(&ipc.Request{
			Command: ipc.CmdCopyToClipboard,
			Args:    map[string]interface{}{"id": float64(idA)},
		})
		require.True(t, resp.IsOK())
		require.NotEmpty(t, writer.items)
		assert.Equal(t, "alpha", writer.items[len(writer.items)-1].TextContent)
	})

	t.Run("MonitorPauseResume", func(t *testing.T) {
		resp := a.Handle(&ipc.Request{Command: ipc.CmdPauseMonitor})
		require.True(t, resp.IsOK())
		assert.True(t, resp.Data.(types.MonitorStatus).IsPaused)

		resp = a.Handle(&ipc.Request{Command: ipc.CmdResumeMonitor})
		require.True(t, resp.IsOK())
		assert.False(t, resp.Data.(types.MonitorStatus).IsPaused)
	})

	t.Run("Settings", func(t *testing.T) {
		resp := a.Handle(&ipc.Request{
			Command: ipc.CmdSetSetting,
			Args:    map[string]interface{}{"key": types.SettingTheme, "value": "dark"},
		})
		require.True(t, resp.IsOK())

		resp = a.Handle(&ipc.Request{
			Command: ipc.CmdGetSetting,
			Args:    map[string]interface{}{"key": types.SettingTheme},
		})
		require.True(t, resp.IsOK())
		assert.Equal(t, "dark", resp.Data.(string))
	})

	t.Run("DataSize", func(t *testing.T) {
		resp := a.Handle(&ipc.Request{Command: ipc.CmdDataSize})
		require.True(t, resp.IsOK())
		size := resp.Data.(*types.DataSize)
		assert.Positive(t, size.DatabaseBytes)
		assert.Equal(t, int64(2), size.ItemCount)
	})

	t.Run("UnknownCommand", func(t *testing.T) {
		resp := a.Handle(&ipc.Request{Command: "frobnicate"})
		assert.False(t, resp.IsOK())
	})
}

func TestClearAllRemovesImagesAndRows(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t)

	require.NoError(t, os.MkdirAll(a.paths.ImagesDir, 0o755))
	imgPath := filepath.Join(a.paths.ImagesDir, "cafe.png")
	require.NoError(t, os.WriteFile(imgPath, []byte("png"), 0o644))

	_, err := a.items.Insert(ctx, &types.ClipboardItem{
		ContentType: types.TypeImage,
		ImagePath:   imgPath,
		ContentHash: "hash-img",
		Preview:     "[Image]",
		ByteSize:    3,
	})
	require.NoError(t, err)
	insertText(t, a, "hash-keepish", "text row")

	deleted, err := a.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	n, err := a.Count(ctx, types.ListOptions{})
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = os.Stat(imgPath)
	assert.True(t, os.IsNotExist(err))
}
