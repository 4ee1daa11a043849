package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "clipboard.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func textItem(hash, text string) *types.ClipboardItem {
	return &types.ClipboardItem{
		ContentType: types.TypeText,
		TextContent: text,
		ContentHash: hash,
		Preview:     text,
		ByteSize:    int64(len(text)),
		CharCount:   int64(len([]rune(text))),
	}
}

// backdate rewrites created_at so eviction ordering can be exercised
// without sleeping across second boundaries.
func backdate(t *testing.T, store *Store, id int64, stamp string) {
	t.Helper()
	_, err := store.rw.Exec(
		`UPDATE clipboard_items SET created_at = ?, updated_at = ? WHERE id = ?`,
		stamp, stamp, id)
	require.NoError(t, err)
}

func TestItems(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	repo := NewItems(store, zap.NewNop())

	t.Run("InsertAndGet", func(t *testing.T) {
		item := &types.ClipboardItem{
			ContentType:   types.TypeFiles,
			FilePaths:     []string{`C:\docs\a.txt`, `C:\docs\b.txt`},
			ContentHash:   "hash-files-1",
			Preview:       "2 files",
			ByteSize:      2048,
			SourceAppName: "Explorer",
		}
		id, err := repo.Insert(ctx, item)
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, types.TypeFiles, got.ContentType)
		assert.Equal(t, item.FilePaths, got.FilePaths)
		assert.Equal(t, "hash-files-1", got.ContentHash)
		assert.Equal(t, "2 files", got.Preview)
		assert.Equal(t, int64(2048), got.ByteSize)
		assert.Equal(t, "Explorer", got.SourceAppName)
		assert.Equal(t, int64(0), got.AccessCount)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("GetByIDNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 999999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ExistsAndTouchByHash", func(t *testing.T) {
		id, err := repo.Insert(ctx, textItem("hash-touch", "touch me"))
		require.NoError(t, err)

		exists, err := repo.ExistsByHash(ctx, "hash-touch")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByHash(ctx, "hash-missing")
		require.NoError(t, err)
		assert.False(t, exists)

		touchedID, err := repo.TouchByHash(ctx, "hash-touch")
		require.NoError(t, err)
		assert.Equal(t, id, touchedID)

		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.AccessCount)

		_, err = repo.TouchByHash(ctx, "hash-missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SortOrderIncreases", func(t *testing.T) {
		idA, err := repo.Insert(ctx, textItem("hash-order-a", "a"))
		require.NoError(t, err)
		idB, err := repo.Insert(ctx, textItem("hash-order-b", "b"))
		require.NoError(t, err)

		a, err := repo.GetByID(ctx, idA)
		require.NoError(t, err)
		b, err := repo.GetByID(ctx, idB)
		require.NoError(t, err)
		assert.Greater(t, b.SortOrder, a.SortOrder)
	})
}

func TestItemsListing(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	repo := NewItems(store, zap.NewNop())

	first, err := repo.Insert(ctx, textItem("hash-1", "oldest entry"))
	require.NoError(t, err)
	second, err := repo.Insert(ctx, textItem("hash-2", "middle entry 剪贴板"))
	require.NoError(t, err)
	third, err := repo.Insert(ctx, textItem("hash-3", "newest entry 100% sure"))
	require.NoError(t, err)

	_, err = repo.TogglePin(ctx, first)
	require.NoError(t, err)
	_, err = repo.ToggleFavorite(ctx, second)
	require.NoError(t, err)

	t.Run("PinnedFirstThenSortOrder", func(t *testing.T) {
		items, err := repo.List(ctx, types.ListOptions{})
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, first, items[0].ID)
		assert.Equal(t, third, items[1].ID)
		assert.Equal(t, second, items[2].ID)
	})

	t.Run("SearchMatchesSubstring", func(t *testing.T) {
		items, err := repo.List(ctx, types.ListOptions{Search: "middle"})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, second, items[0].ID)
	})

	t.Run("SearchMatchesCJK", func(t *testing.T) {
		items, err := repo.List(ctx, types.ListOptions{Search: "贴板"})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, second, items[0].ID)
	})

	t.Run("SearchEscapesLikeMetacharacters", func(t *testing.T) {
		items, err := repo.List(ctx, types.ListOptions{Search: "100%"})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, third, items[0].ID)

		// A literal percent must not act as a wildcard.
		items, err = repo.List(ctx, types.ListOptions{Search: "10%sure"})
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("PinnedOnly", func(t *testing.T) {
		items, err := repo.List(ctx, types.ListOptions{PinnedOnly: true})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, first, items[0].ID)
	})

	t.Run("FavoriteOnly", func(t *testing.T) {
		items, err := repo.List(ctx, types.ListOptions{FavoriteOnly: true})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, second, items[0].ID)
	})

	t.Run("LimitOffset", func(t *testing.T) {
		items, err := repo.List(ctx, types.ListOptions{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, third, items[0].ID)
	})

	t.Run("Count", func(t *testing.T) {
		n, err := repo.Count(ctx, types.ListOptions{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		n, err = repo.Count(ctx, types.ListOptions{ContentType: types.TypeImage})
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("GetByPosition", func(t *testing.T) {
		item, err := repo.GetByPosition(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, first, item.ID)

		item, err = repo.GetByPosition(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, third, item.ID)

		_, err = repo.GetByPosition(ctx, 99)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestItemsMutations(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	repo := NewItems(store, zap.NewNop())

	t.Run("ToggleStates", func(t *testing.T) {
		id, err := repo.Insert(ctx, textItem("hash-toggle", "toggle"))
		require.NoError(t, err)

		pinned, err := repo.TogglePin(ctx, id)
		require.NoError(t, err)
		assert.True(t, pinned)

		pinned, err = repo.TogglePin(ctx, id)
		require.NoError(t, err)
		assert.False(t, pinned)

		_, err = repo.TogglePin(ctx, 999999)
		assert.ErrorIs(t, err, ErrNotFound)

		fav, err := repo.ToggleFavorite(ctx, id)
		require.NoError(t, err)
		assert.True(t, fav)
	})

	t.Run("MoveSwapsSortOrder", func(t *testing.T) {
		a, err := repo.Insert(ctx, textItem("hash-move-a", "a"))
		require.NoError(t, err)
		b, err := repo.Insert(ctx, textItem("hash-move-b", "b"))
		require.NoError(t, err)

		beforeA, err := repo.GetByID(ctx, a)
		require.NoError(t, err)
		beforeB, err := repo.GetByID(ctx, b)
		require.NoError(t, err)

		require.NoError(t, repo.Move(ctx, a, b))

		afterA, err := repo.GetByID(ctx, a)
		require.NoError(t, err)
		afterB, err := repo.GetByID(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, beforeB.SortOrder, afterA.SortOrder)
		assert.Equal(t, beforeA.SortOrder, afterB.SortOrder)

		assert.ErrorIs(t, repo.Move(ctx, a, 999999), ErrNotFound)
	})

	t.Run("DeleteReturnsImagePath", func(t *testing.T) {
		id, err := repo.Insert(ctx, &types.ClipboardItem{
			ContentType: types.TypeImage,
			ImagePath:   `C:\data\images\abc.png`,
			ContentHash: "hash-del-img",
			Preview:     "[Image]",
			ByteSize:    100,
		})
		require.NoError(t, err)

		path, err := repo.Delete(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, `C:\data\images\abc.png`, path)

		_, err = repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = repo.Delete(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UpdateTextContent", func(t *testing.T) {
		id, err := repo.Insert(ctx, textItem("hash-edit", "before"))
		require.NoError(t, err)

		require.NoError(t, repo.UpdateTextContent(ctx, id, "after", "after", "hash-edit-2", 5, 5))

		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "after", got.TextContent)
		assert.Equal(t, "hash-edit-2", got.ContentHash)
		assert.Equal(t, int64(5), got.ByteSize)

		err = repo.UpdateTextContent(ctx, 999999, "x", "x", "hash-nope", 1, 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestItemsClearing(t *testing.T) {
	ctx := context.Background()

	t.Run("ClearHistoryKeepsPinnedAndFavorites", func(t *testing.T) {
		store := openTestStore(t)
		repo := NewItems(store, zap.NewNop())

		plain, err := repo.Insert(ctx, textItem("hash-c1", "plain"))
		require.NoError(t, err)
		pinned, err := repo.Insert(ctx, textItem("hash-c2", "pinned"))
		require.NoError(t, err)
		fav, err := repo.Insert(ctx, textItem("hash-c3", "favorite"))
		require.NoError(t, err)
		_, err = repo.Insert(ctx, &types.ClipboardItem{
			ContentType: types.TypeImage,
			ImagePath:   `C:\img\x.png`,
			ContentHash: "hash-c4",
			Preview:     "[Image]",
		})
		require.NoError(t, err)

		_, err = repo.TogglePin(ctx, pinned)
		require.NoError(t, err)
		_, err = repo.ToggleFavorite(ctx, fav)
		require.NoError(t, err)

		deleted, paths, err := repo.ClearHistory(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)
		assert.Equal(t, []string{`C:\img\x.png`}, paths)

		_, err = repo.GetByID(ctx, plain)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.GetByID(ctx, pinned)
		assert.NoError(t, err)
		_, err = repo.GetByID(ctx, fav)
		assert.NoError(t, err)
	})

	t.Run("ClearAllRemovesEverything", func(t *testing.T) {
		store := openTestStore(t)
		repo := NewItems(store, zap.NewNop())

		id, err := repo.Insert(ctx, textItem("hash-all-1", "one"))
		require.NoError(t, err)
		_, err = repo.TogglePin(ctx, id)
		require.NoError(t, err)
		_, err = repo.Insert(ctx, &types.ClipboardItem{
			ContentType: types.TypeImage,
			ImagePath:   `C:\img\y.png`,
			ContentHash: "hash-all-2",
			Preview:     "[Image]",
		})
		require.NoError(t, err)

		deleted, paths, err := repo.ClearAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)
		assert.Equal(t, []string{`C:\img\y.png`}, paths)

		n, err := repo.Count(ctx, types.ListOptions{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		// Clear-all is followed by a vacuum in the daemon.
		assert.NoError(t, store.Vacuum(ctx))
	})
}

func TestEnforceMaxCount(t *testing.T) {
	ctx := context.Background()

	t.Run("EvictsOldestUnpinned", func(t *testing.T) {
		store := openTestStore(t)
		repo := NewItems(store, zap.NewNop())

		oldest, err := repo.Insert(ctx, &types.ClipboardItem{
			ContentType: types.TypeImage,
			ImagePath:   `C:\img\old.png`,
			ContentHash: "hash-e1",
			Preview:     "[Image]",
		})
		require.NoError(t, err)
		middle, err := repo.Insert(ctx, textItem("hash-e2", "middle"))
		require.NoError(t, err)
		pinned, err := repo.Insert(ctx, textItem("hash-e3", "pinned survivor"))
		require.NoError(t, err)
		newest, err := repo.Insert(ctx, textItem("hash-e4", "newest"))
		require.NoError(t, err)

		backdate(t, store, oldest, "2026-01-01 08:00:00")
		backdate(t, store, middle, "2026-01-01 09:00:00")
		backdate(t, store, pinned, "2026-01-01 07:00:00")
		backdate(t, store, newest, "2026-01-01 10:00:00")

		_, err = repo.TogglePin(ctx, pinned)
		require.NoError(t, err)

		deleted, paths, err := repo.EnforceMaxCount(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
		assert.Equal(t, []string{`C:\img\old.png`}, paths)

		// The pinned item predates everything and must survive.
		_, err = repo.GetByID(ctx, pinned)
		assert.NoError(t, err)
		_, err = repo.GetByID(ctx, oldest)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.GetByID(ctx, middle)
		assert.NoError(t, err)
		_, err = repo.GetByID(ctx, newest)
		assert.NoError(t, err)
	})

	t.Run("ZeroLimitNeverEvicts", func(t *testing.T) {
		store := openTestStore(t)
		repo := NewItems(store, zap.NewNop())

		for _, h := range []string{"hash-z1", "hash-z2", "hash-z3"} {
			_, err := repo.Insert(ctx, textItem(h, h))
			require.NoError(t, err)
		}

		deleted, paths, err := repo.EnforceMaxCount(ctx, 0)
		require.NoError(t, err)
		assert.Zero(t, deleted)
		assert.Empty(t, paths)

		n, err := repo.Count(ctx, types.ListOptions{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("UnderLimitNoOp", func(t *testing.T) {
		store := openTestStore(t)
		repo := NewItems(store, zap.NewNop())

		_, err := repo.Insert(ctx, textItem("hash-u1", "only"))
		require.NoError(t, err)

		deleted, paths, err := repo.EnforceMaxCount(ctx, 5)
		require.NoError(t, err)
		assert.Zero(t, deleted)
		assert.Empty(t, paths)
	})
}

func TestImagePathQueries(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	repo := NewItems(store, zap.NewNop())

	pinnedImg, err := repo.Insert(ctx, &types.ClipboardItem{
		ContentType: types.TypeImage,
		ImagePath:   `C:\img\pinned.png`,
		ContentHash: "hash-p1",
		Preview:     "[Image]",
	})
	require.NoError(t, err)
	_, err = repo.TogglePin(ctx, pinnedImg)
	require.NoError(t, err)

	_, err = repo.Insert(ctx, &types.ClipboardItem{
		ContentType: types.TypeImage,
		ImagePath:   `C:\img\plain.png`,
		ContentHash: "hash-p2",
		Preview:     "[Image]",
	})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, textItem("hash-p3", "no image"))
	require.NoError(t, err)

	clearable, err := repo.ClearableImagePaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{`C:\img\plain.png`}, clearable)

	all, err := repo.AllImagePaths(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{`C:\img\pinned.png`, `C:\img\plain.png`}, all)
}
