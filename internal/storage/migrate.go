package storage

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/types"
)

// All DDL uses IF NOT EXISTS so a fresh database and an already-current
// one both pass through the same script. Timestamps are stored as local
// time text, matching what the UI displays.
var createScript = []string{
	`CREATE TABLE IF NOT EXISTS clipboard_items (
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
		is_favorite INTEGER NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
		last_accessed_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
		access_count INTEGER NOT NULL DEFAULT 0,
		source_app_name TEXT,
		source_app_icon TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_items_created_at ON clipboard_items(created_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_items_content_type ON clipboard_items(content_type);`,
	`CREATE INDEX IF NOT EXISTS idx_items_sort_order ON clipboard_items(sort_order DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_items_pinned ON clipboard_items(is_pinned) WHERE is_pinned = 1;`,
	`CREATE INDEX IF NOT EXISTS idx_items_favorite ON clipboard_items(is_favorite) WHERE is_favorite = 1;`,
	// Keeps updated_at honest for writes that do not set it themselves.
	`CREATE TRIGGER IF NOT EXISTS trg_items_touch_updated_at
	AFTER UPDATE ON clipboard_items
	FOR EACH ROW
	WHEN NEW.updated_at = OLD.updated_at
	BEGIN
		UPDATE clipboard_items SET updated_at = datetime('now','localtime') WHERE id = NEW.id;
	END;`,
}

// migration is one idempotent forward step. check reports whether the step
// still needs to run; apply performs it. No down-migrations.
type migration struct {
	name  string
	check func(*sql.DB) (bool, error)
	apply func(*sql.DB) error
}

var migrations = []migration{
	{
		name:  "add source app columns",
		check: columnMissing("clipboard_items", "source_app_name"),
		apply: execAll(
			`ALTER TABLE clipboard_items ADD COLUMN source_app_name TEXT;`,
			`ALTER TABLE clipboard_items ADD COLUMN source_app_icon TEXT;`,
		),
	},
	{
		name:  "add favorite flag",
		check: columnMissing("clipboard_items", "is_favorite"),
		apply: execAll(
			`ALTER TABLE clipboard_items ADD COLUMN is_favorite INTEGER NOT NULL DEFAULT 0;`,
			`CREATE INDEX IF NOT EXISTS idx_items_favorite ON clipboard_items(is_favorite) WHERE is_favorite = 1;`,
		),
	},
	{
		name:  "add sort order",
		check: columnMissing("clipboard_items", "sort_order"),
		apply: execAll(
			`ALTER TABLE clipboard_items ADD COLUMN sort_order INTEGER NOT NULL DEFAULT 0;`,
			`UPDATE clipboard_items SET sort_order = id;`,
			`CREATE INDEX IF NOT EXISTS idx_items_sort_order ON clipboard_items(sort_order DESC);`,
		),
	},
	{
		name:  "drop fts tables",
		check: tablePresent("clipboard_items_fts"),
		apply: execAll(
			`DROP TABLE IF EXISTS clipboard_items_fts;`,
			`DROP TRIGGER IF EXISTS trg_items_fts_insert;`,
			`DROP TRIGGER IF EXISTS trg_items_fts_delete;`,
			`DROP TRIGGER IF EXISTS trg_items_fts_update;`,
		),
	},
}

// migrate brings the schema to the current version. An existing database
// runs every forward migration whose check still fires before the creation
// script, so the script's indexes never reference columns that are not
// there yet. A fresh database only needs the script.
func migrate(db *sql.DB, logger *zap.Logger) error {
	fresh, err := isFresh(db)
	if err != nil {
		return err
	}

	if !fresh {
		for _, m := range migrations {
			needed, err := m.check(db)
			if err != nil {
				return fmt.Errorf("failed to check migration %q: %w", m.name, err)
			}
			if !needed {
				continue
			}
			if err := m.apply(db); err != nil {
				return fmt.Errorf("failed to apply migration %q: %w", m.name, err)
			}
			logger.Info("applied migration", zap.String("name", m.name))
		}
	}

	for _, stmt := range createScript {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	if err := seedSettings(db); err != nil {
		return err
	}

	if fresh {
		logger.Info("created database schema")
	}
	return nil
}

func isFresh(db *sql.DB) (bool, error) {
	var n int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'clipboard_items'`,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to inspect schema: %w", err)
	}
	return n == 0, nil
}

func seedSettings(db *sql.DB) error {
	for key, value := range types.DefaultSettings() {
		if _, err := db.Exec(
			`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value,
		); err != nil {
			return fmt.Errorf("failed to seed setting %s: %w", key, err)
		}
	}
	return nil
}

func columnMissing(table, column string) func(*sql.DB) (bool, error) {
	return func(db *sql.DB) (bool, error) {
		var n int
		err := db.QueryRow(
			`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column,
		).Scan(&n)
		if err != nil {
			return false, err
		}
		return n == 0, nil
	}
}

func tablePresent(table string) func(*sql.DB) (bool, error) {
	return func(db *sql.DB) (bool, error) {
		var n int
		err := db.QueryRow(
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&n)
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
}

func execAll(stmts ...string) func(*sql.DB) error {
	return func(db *sql.DB) error {
		for _, stmt := range stmts {
			if _, err := db.Exec(stmt); err != nil {
				return err
			}
		}
		return nil
	}
}
