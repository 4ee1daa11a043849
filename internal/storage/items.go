package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/types"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// timeLayout is how timestamps are written; SQLite's datetime() emits the
// same shape, so lexicographic order matches chronological order.
const timeLayout = "2006-01-02 15:04:05"

const itemColumns = `id, content_type, text_content, html_content, rtf_content,
	image_path, file_paths, content_hash, preview, byte_size, char_count,
	image_width, image_height, is_pinned, is_favorite, sort_order,
	created_at, updated_at, last_accessed_at, access_count,
	source_app_name, source_app_icon`

// defaultOrder is the display ordering: pinned block first, manual order
// next, newest first inside equal sort positions.
const defaultOrder = `ORDER BY is_pinned DESC, sort_order DESC, created_at DESC, id DESC`

// Items is the clipboard item repository.
type Items struct {
	store  *Store
	logger *zap.Logger
}

// NewItems creates the item repository over an open store.
func NewItems(store *Store, logger *zap.Logger) *Items {
	return &Items{store: store, logger: logger}
}

// Insert writes a new item, assigning it the next sort_order, and returns
// the new row id.
func (r *Items) Insert(ctx context.Context, item *types.ClipboardItem) (int64, error) {
	tx, err := r.store.rw.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin insert: %w", err)
	}
	defer tx.Rollback()

	var next int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM clipboard_items`,
	).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute sort order: %w", err)
	}

	filePaths, err := encodeFilePaths(item.FilePaths)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO clipboard_items (
			content_type, text_content, html_content, rtf_content,
			image_path, file_paths, content_hash, preview, byte_size,
			char_count, image_width, image_height, is_pinned, is_favorite,
			sort_order, created_at, updated_at, last_accessed_at,
			access_count, source_app_name, source_app_icon
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			datetime('now','localtime'), datetime('now','localtime'),
			datetime('now','localtime'), 0, ?, ?)`,
		string(item.ContentType),
		nullString(item.TextContent), nullString(item.HTMLContent), nullString(item.RTFContent),
		nullString(item.ImagePath), filePaths,
		item.ContentHash, item.Preview, item.ByteSize,
		nullInt64(item.CharCount), nullInt64(int64(item.ImageWidth)), nullInt64(int64(item.ImageHeight)),
		boolInt(item.IsPinned), boolInt(item.IsFavorite), next,
		nullString(item.SourceAppName), nullString(item.SourceAppIcon),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit insert: %w", err)
	}

	r.logger.Debug("item inserted",
		zap.Int64("id", id),
		zap.String("type", string(item.ContentType)),
		zap.Int64("bytes", item.ByteSize))
	return id, nil
}

// ExistsByHash reports whether a row with the given content hash exists.
func (r *Items) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	var n int
	err := r.store.ro.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clipboard_items WHERE content_hash = ?`, hash,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check hash: %w", err)
	}
	return n > 0, nil
}

// TouchByHash increments the access count and bumps the activity
// timestamps of the row with the given hash, returning its id.
func (r *Items) TouchByHash(ctx context.Context, hash string) (int64, error) {
	tx, err := r.store.rw.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin touch: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM clipboard_items WHERE content_hash = ?`, hash,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find hash: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE clipboard_items SET
			access_count = access_count + 1,
			updated_at = datetime('now','localtime'),
			last_accessed_at = datetime('now','localtime')
		WHERE id = ?`, id,
	); err != nil {
		return 0, fmt.Errorf("failed to touch item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit touch: %w", err)
	}

	r.logger.Debug("item touched", zap.Int64("id", id))
	return id, nil
}

// GetByID returns one item or ErrNotFound.
func (r *Items) GetByID(ctx context.Context, id int64) (*types.ClipboardItem, error) {
	row := r.store.ro.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM clipboard_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// GetByPosition returns the item at zero-based position n of the default
// list ordering, or ErrNotFound past the end.
func (r *Items) GetByPosition(ctx context.Context, n int) (*types.ClipboardItem, error) {
	row := r.store.ro.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM clipboard_items `+defaultOrder+` LIMIT 1 OFFSET ?`, n)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item by position: %w", err)
	}
	return item, nil
}

// List returns items matching opts in display order.
func (r *Items) List(ctx context.Context, opts types.ListOptions) ([]*types.ClipboardItem, error) {
	where, args := buildFilter(opts)

	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, opts.Offset)

	rows, err := r.store.ro.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM clipboard_items `+where+` `+defaultOrder+` LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*types.ClipboardItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	return items, nil
}

// Count returns the number of items matching opts.
func (r *Items) Count(ctx context.Context, opts types.ListOptions) (int64, error) {
	where, args := buildFilter(opts)
	var n int64
	err := r.store.ro.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clipboard_items `+where, args...,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return n, nil
}

// TogglePin flips the pinned flag and returns the new state.
func (r *Items) TogglePin(ctx context.Context, id int64) (bool, error) {
	return r.toggleFlag(ctx, id, "is_pinned")
}

// ToggleFavorite flips the favorite flag and returns the new state.
func (r *Items) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	return r.toggleFlag(ctx, id, "is_favorite")
}

func (r *Items) toggleFlag(ctx context.Context, id int64, column string) (bool, error) {
	tx, err := r.store.rw.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin toggle: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx,
		`SELECT `+column+` FROM clipboard_items WHERE id = ?`, id,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to read flag: %w", err)
	}

	next := 1 - current
	if _, err := tx.ExecContext(ctx,
		`UPDATE clipboard_items SET `+column+` = ?, updated_at = datetime('now','localtime') WHERE id = ?`,
		next, id,
	); err != nil {
		return false, fmt.Errorf("failed to toggle flag: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit toggle: %w", err)
	}

	r.logger.Debug("flag toggled",
		zap.Int64("id", id),
		zap.String("flag", column),
		zap.Bool("state", next == 1))
	return next == 1, nil
}

// Move swaps the sort_order of two items in one transaction.
func (r *Items) Move(ctx context.Context, fromID, toID int64) error {
	tx, err := r.store.rw.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin move: %w", err)
	}
	defer tx.Rollback()

	orders := make(map[int64]int64, 2)
	rows, err := tx.QueryContext(ctx,
		`SELECT id, sort_order FROM clipboard_items WHERE id IN (?, ?)`, fromID, toID)
	if err != nil {
		return fmt.Errorf("failed to read sort orders: %w", err)
	}
	for rows.Next() {
		var id, order int64
		if err := rows.Scan(&id, &order); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan sort order: %w", err)
		}
		orders[id] = order
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read sort orders: %w", err)
	}

	fromOrder, okFrom := orders[fromID]
	toOrder, okTo := orders[toID]
	if !okFrom || !okTo {
		return ErrNotFound
	}

	for _, step := range []struct {
		id    int64
		order int64
	}{{fromID, toOrder}, {toID, fromOrder}} {
		if _, err := tx.ExecContext(ctx,
			`UPDATE clipboard_items SET sort_order = ?, updated_at = datetime('now','localtime') WHERE id = ?`,
			step.order, step.id,
		); err != nil {
			return fmt.Errorf("failed to update sort order: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit move: %w", err)
	}

	r.logger.Debug("items reordered",
		zap.Int64("from", fromID),
		zap.Int64("to", toID))
	return nil
}

// Delete removes one item and returns the image path the caller must
// unlink, empty when the item had none.
func (r *Items) Delete(ctx context.Context, id int64) (string, error) {
	tx, err := r.store.rw.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	var imagePath sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT image_path FROM clipboard_items WHERE id = ?`, id,
	).Scan(&imagePath)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read item: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM clipboard_items WHERE id = ?`, id,
	); err != nil {
		return "", fmt.Errorf("failed to delete item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit delete: %w", err)
	}

	r.logger.Debug("item deleted", zap.Int64("id", id))
	return imagePath.String, nil
}

// ClearHistory removes every unpinned, unfavorited item. It returns the
// number of rows removed and the image paths the caller must unlink.
func (r *Items) ClearHistory(ctx context.Context) (int64, []string, error) {
	return r.clearWhere(ctx, `is_pinned = 0 AND is_favorite = 0`)
}

// ClearAll removes every item. The caller is expected to vacuum afterwards.
func (r *Items) ClearAll(ctx context.Context) (int64, []string, error) {
	return r.clearWhere(ctx, `1 = 1`)
}

func (r *Items) clearWhere(ctx context.Context, cond string) (int64, []string, error) {
	tx, err := r.store.rw.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to begin clear: %w", err)
	}
	defer tx.Rollback()

	paths, err := collectPaths(tx.QueryContext(ctx,
		`SELECT image_path FROM clipboard_items WHERE image_path IS NOT NULL AND `+cond))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to collect image paths: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM clipboard_items WHERE `+cond)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to clear items: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, nil, fmt.Errorf("failed to count cleared items: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("failed to commit clear: %w", err)
	}

	r.logger.Info("history cleared",
		zap.Int64("deleted", deleted),
		zap.Int("images", len(paths)))
	return deleted, paths, nil
}

// EnforceMaxCount evicts the oldest unpinned, unfavorited rows until at
// most limit remain. It returns how many were removed and the image paths
// the caller must unlink; limit <= 0 disables retention.
func (r *Items) EnforceMaxCount(ctx context.Context, limit int) (int64, []string, error) {
	if limit <= 0 {
		return 0, nil, nil
	}

	tx, err := r.store.rw.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to begin retention sweep: %w", err)
	}
	defer tx.Rollback()

	var count int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clipboard_items WHERE is_pinned = 0 AND is_favorite = 0`,
	).Scan(&count); err != nil {
		return 0, nil, fmt.Errorf("failed to count unpinned items: %w", err)
	}

	overflow := count - int64(limit)
	if overflow <= 0 {
		return 0, nil, nil
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, image_path FROM clipboard_items
		WHERE is_pinned = 0 AND is_favorite = 0
		ORDER BY created_at ASC, id ASC
		LIMIT ?`, overflow)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to find overflow items: %w", err)
	}

	var ids []int64
	var paths []string
	for rows.Next() {
		var id int64
		var imagePath sql.NullString
		if err := rows.Scan(&id, &imagePath); err != nil {
			rows.Close()
			return 0, nil, fmt.Errorf("failed to scan overflow item: %w", err)
		}
		ids = append(ids, id)
		if imagePath.Valid && imagePath.String != "" {
			paths = append(paths, imagePath.String)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("failed to read overflow items: %w", err)
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM clipboard_items WHERE id IN (`+placeholders+`)`, args...,
	); err != nil {
		return 0, nil, fmt.Errorf("failed to delete overflow items: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("failed to commit retention sweep: %w", err)
	}

	r.logger.Debug("retention enforced",
		zap.Int("limit", limit),
		zap.Int64("evicted", int64(len(ids))))
	return int64(len(ids)), paths, nil
}

// ClearableImagePaths returns the image paths of unpinned, unfavorited
// image items.
func (r *Items) ClearableImagePaths(ctx context.Context) ([]string, error) {
	paths, err := collectPaths(r.store.ro.QueryContext(ctx, `
		SELECT image_path FROM clipboard_items
		WHERE image_path IS NOT NULL AND is_pinned = 0 AND is_favorite = 0`))
	if err != nil {
		return nil, fmt.Errorf("failed to collect clearable image paths: %w", err)
	}
	return paths, nil
}

// AllImagePaths returns every stored image path.
func (r *Items) AllImagePaths(ctx context.Context) ([]string, error) {
	paths, err := collectPaths(r.store.ro.QueryContext(ctx,
		`SELECT image_path FROM clipboard_items WHERE image_path IS NOT NULL`))
	if err != nil {
		return nil, fmt.Errorf("failed to collect image paths: %w", err)
	}
	return paths, nil
}

// UpdateTextContent rewrites the text payload of an item together with the
// derived fields the caller recomputed from it.
func (r *Items) UpdateTextContent(ctx context.Context, id int64, text, preview, hash string, byteSize, charCount int64) error {
	res, err := r.store.rw.ExecContext(ctx, `
		UPDATE clipboard_items SET
			text_content = ?, preview = ?, content_hash = ?,
			byte_size = ?, char_count = ?,
			updated_at = datetime('now','localtime')
		WHERE id = ?`,
		text, preview, hash, byteSize, charCount, id)
	if err != nil {
		return fmt.Errorf("failed to update text content: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	r.logger.Debug("text content updated", zap.Int64("id", id))
	return nil
}

func buildFilter(opts types.ListOptions) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if opts.Search != "" {
		pattern := "%" + escapeLike(opts.Search) + "%"
		conds = append(conds, `(text_content LIKE ? ESCAPE '\' OR preview LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if opts.ContentType != "" {
		conds = append(conds, `content_type = ?`)
		args = append(args, string(opts.ContentType))
	}
	if opts.PinnedOnly {
		conds = append(conds, `is_pinned = 1`)
	}
	if opts.FavoriteOnly {
		conds = append(conds, `is_favorite = 1`)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*types.ClipboardItem, error) {
	var (
		item                             types.ClipboardItem
		contentType                      string
		text, html, rtf, imagePath       sql.NullString
		filePaths, appName, appIcon      sql.NullString
		charCount, imgWidth, imgHeight   sql.NullInt64
		pinned, favorite                 int
		createdAt, updatedAt, accessedAt string
	)

	err := row.Scan(
		&item.ID, &contentType, &text, &html, &rtf,
		&imagePath, &filePaths, &item.ContentHash, &item.Preview, &item.ByteSize,
		&charCount, &imgWidth, &imgHeight, &pinned, &favorite, &item.SortOrder,
		&createdAt, &updatedAt, &accessedAt, &item.AccessCount,
		&appName, &appIcon,
	)
	if err != nil {
		return nil, err
	}

	item.ContentType = types.ContentType(contentType)
	item.TextContent = text.String
	item.HTMLContent = html.String
	item.RTFContent = rtf.String
	item.ImagePath = imagePath.String
	item.SourceAppName = appName.String
	item.SourceAppIcon = appIcon.String
	item.CharCount = charCount.Int64
	item.ImageWidth = int(imgWidth.Int64)
	item.ImageHeight = int(imgHeight.Int64)
	item.IsPinned = pinned == 1
	item.IsFavorite = favorite == 1

	if filePaths.Valid && filePaths.String != "" {
		if err := json.Unmarshal([]byte(filePaths.String), &item.FilePaths); err != nil {
			return nil, fmt.Errorf("failed to decode file paths: %w", err)
		}
	}

	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if item.LastAccessed, err = parseTime(accessedAt); err != nil {
		return nil, err
	}

	return &item, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func collectPaths(rows *sql.Rows, qerr error) ([]string, error) {
	if qerr != nil {
		return nil, qerr
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p sql.NullString
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		if p.Valid && p.String != "" {
			paths = append(paths, p.String)
		}
	}
	return paths, rows.Err()
}

func encodeFilePaths(paths []string) (interface{}, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to encode file paths: %w", err)
	}
	return string(data), nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullInt64(n int64) interface{} {
	if n == 0 {
		return nil
	}
	return n
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
