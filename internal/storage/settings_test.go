package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/types"
)

func TestSettings(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	repo := NewSettings(store, zap.NewNop())

	t.Run("DefaultsAreSeeded", func(t *testing.T) {
		all, err := repo.All(ctx)
		require.NoError(t, err)
		for key, want := range types.DefaultSettings() {
			assert.Equal(t, want, all[key], "setting %s", key)
		}
	})

	t.Run("SetOverwrites", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, types.SettingTheme, "dark"))
		got, err := repo.Get(ctx, types.SettingTheme)
		require.NoError(t, err)
		assert.Equal(t, "dark", got)
	})

	t.Run("LazyCreateOnWrite", func(t *testing.T) {
		_, err := repo.Get(ctx, "overlay_width")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, repo.Set(ctx, "overlay_width", "420"))
		got, err := repo.Get(ctx, "overlay_width")
		require.NoError(t, err)
		assert.Equal(t, "420", got)
	})

	t.Run("MaxHistoryCountFallback", func(t *testing.T) {
		assert.Equal(t, types.DefaultMaxHistoryCount, repo.MaxHistoryCount(ctx))

		require.NoError(t, repo.Set(ctx, types.SettingMaxHistoryCount, "25"))
		assert.Equal(t, 25, repo.MaxHistoryCount(ctx))

		require.NoError(t, repo.Set(ctx, types.SettingMaxHistoryCount, "not a number"))
		assert.Equal(t, types.DefaultMaxHistoryCount, repo.MaxHistoryCount(ctx))

		require.NoError(t, repo.Set(ctx, types.SettingMaxHistoryCount, "0"))
		assert.Equal(t, 0, repo.MaxHistoryCount(ctx))
	})

	t.Run("MaxContentSizeBytes", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, types.SettingMaxContentSizeKB, "1024"))
		assert.Equal(t, int64(1024*1024), repo.MaxContentSizeBytes(ctx))

		require.NoError(t, repo.Set(ctx, types.SettingMaxContentSizeKB, "0"))
		assert.Equal(t, int64(0), repo.MaxContentSizeBytes(ctx))
	})

	t.Run("ShortcutFallback", func(t *testing.T) {
		assert.Equal(t, types.DefaultShortcut, repo.Shortcut(ctx))

		require.NoError(t, repo.Set(ctx, types.SettingGlobalShortcut, "Ctrl+Shift+X"))
		assert.Equal(t, "Ctrl+Shift+X", repo.Shortcut(ctx))
	})
}
