package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/types"
)

// Settings is the key/value settings repository. Unknown keys read as
// ErrNotFound; writes upsert.
type Settings struct {
	store  *Store
	logger *zap.Logger
}

// NewSettings creates the settings repository over an open store.
func NewSettings(store *Store, logger *zap.Logger) *Settings {
	return &Settings{store: store, logger: logger}
}

// Get returns the value for key or ErrNotFound.
func (r *Settings) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.store.ro.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}

// Set writes key to value, creating it when absent.
func (r *Settings) Set(ctx context.Context, key, value string) error {
	_, err := r.store.rw.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	r.logger.Debug("setting written", zap.String("key", key))
	return nil
}

// All returns every stored setting.
func (r *Settings) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.store.ro.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return out, nil
}

// MaxHistoryCount returns the retention limit, falling back to the default
// when the setting is missing or unparseable. Zero disables retention.
func (r *Settings) MaxHistoryCount(ctx context.Context) int {
	value, err := r.Get(ctx, types.SettingMaxHistoryCount)
	if err != nil {
		return types.DefaultMaxHistoryCount
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return types.DefaultMaxHistoryCount
	}
	return n
}

// MaxContentSizeBytes returns the payload size limit in bytes, zero when
// unlimited.
func (r *Settings) MaxContentSizeBytes(ctx context.Context) int64 {
	value, err := r.Get(ctx, types.SettingMaxContentSizeKB)
	if err != nil {
		return 0
	}
	kb, err := strconv.ParseInt(value, 10, 64)
	if err != nil || kb < 0 {
		return 0
	}
	return kb * 1024
}

// Shortcut returns the stored overlay shortcut, falling back to the
// default binding.
func (r *Settings) Shortcut(ctx context.Context) string {
	value, err := r.Get(ctx, types.SettingGlobalShortcut)
	if err != nil || value == "" {
		return types.DefaultShortcut
	}
	return value
}

// WinVReplacement reports whether the Win+V takeover preference is on.
func (r *Settings) WinVReplacement(ctx context.Context) bool {
	value, err := r.Get(ctx, types.SettingWinVReplacement)
	if err != nil {
		return false
	}
	return value == "true"
}
