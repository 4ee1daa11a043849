package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/types"
)

func TestOpenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "clipboard.db")

	store, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	repo := NewItems(store, zap.NewNop())

	id, err := repo.Insert(ctx, textItem("hash-reopen", "survives reopen"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()
	repo = NewItems(store, zap.NewNop())

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "survives reopen", got.TextContent)
}

func TestMigrateUpgradesOldSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipboard.db")

	// Fabricate a first-generation database: no favorite flag, no sort
	// order, no source app columns, and a leftover FTS table.
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	stmts := []string{
		`CREATE TABLE clipboard_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			content_type TEXT NOT NULL,
			text_content TEXT,
			html_content TEXT,
			rtf_content TEXT,
			image_path TEXT,
			file_paths TEXT,
			content_hash TEXT NOT NULL UNIQUE,
			preview TEXT NOT NULL DEFAULT '',
			byte_size INTEGER NOT NULL DEFAULT 0,
			char_count INTEGER,
			image_width INTEGER,
			image_height INTEGER,
			is_pinned INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
			last_accessed_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
			access_count INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE clipboard_items_fts (rowid INTEGER PRIMARY KEY, text_content TEXT);`,
		`INSERT INTO clipboard_items (content_type, text_content, content_hash, preview)
			VALUES ('text', 'legacy row', 'hash-legacy', 'legacy row');`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	store, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	repo := NewItems(store, zap.NewNop())

	// The legacy row reads back through the new schema.
	items, err := repo.List(ctx, types.ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "legacy row", items[0].TextContent)
	assert.False(t, items[0].IsFavorite)
	// Sort order was backfilled from the row id.
	assert.Equal(t, items[0].ID, items[0].SortOrder)

	// The new columns accept writes.
	fav, err := repo.ToggleFavorite(ctx, items[0].ID)
	require.NoError(t, err)
	assert.True(t, fav)

	// The FTS leftovers are gone.
	var n int
	err = store.ro.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE name = 'clipboard_items_fts'`,
	).Scan(&n)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReadConnectionIsReadOnly(t *testing.T) {
	store := openTestStore(t)
	_, err := store.ro.Exec(`INSERT INTO settings (key, value) VALUES ('x', 'y')`)
	assert.Error(t, err)
}
