package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/types"
)

// Store owns the two database connections. All writes go through rw, all
// reads through ro; each is capped at one open connection so WAL's
// single-writer/many-reader split maps onto two uncontended handles
// instead of one shared mutex.
type Store struct {
	rw     *sql.DB
	ro     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens (creating if necessary) the database at path, applies
// migrations, and establishes the read-only connection.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	rwDSN := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000&_cache_size=-65536", path)
	rw, err := sql.Open("sqlite3", rwDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	rw.SetMaxOpenConns(1)
	rw.SetConnMaxLifetime(0)

	if _, err := rw.Exec("PRAGMA mmap_size = 268435456;"); err != nil {
		_ = rw.Close()
		return nil, fmt.Errorf("failed to set mmap size: %w", err)
	}
	if err := rw.Ping(); err != nil {
		_ = rw.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(rw, logger); err != nil {
		_ = rw.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	roDSN := fmt.Sprintf("file:%s?mode=ro&_query_only=on&_busy_timeout=5000&_cache_size=-32768", path)
	ro, err := sql.Open("sqlite3", roDSN)
	if err != nil {
		_ = rw.Close()
		return nil, fmt.Errorf("failed to open read connection: %w", err)
	}
	ro.SetMaxOpenConns(1)
	ro.SetConnMaxLifetime(0)

	if err := ro.Ping(); err != nil {
		_ = rw.Close()
		_ = ro.Close()
		return nil, fmt.Errorf("failed to ping read connection: %w", err)
	}

	logger.Info("database opened",
		zap.String("path", path))

	return &Store{rw: rw, ro: ro, path: path, logger: logger}, nil
}

// Close closes both connections.
func (s *Store) Close() error {
	var firstErr error
	if err := s.ro.Close(); err != nil {
		firstErr = err
	}
	if err := s.rw.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		return fmt.Errorf("failed to close database: %w", firstErr)
	}
	s.logger.Debug("database closed", zap.String("path", s.path))
	return nil
}

// Optimize runs PRAGMA optimize on the write connection.
func (s *Store) Optimize(ctx context.Context) error {
	start := time.Now()
	if _, err := s.rw.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		return fmt.Errorf("failed to optimize database: %w", err)
	}
	s.logger.Info("database optimized", zap.Duration("took", time.Since(start)))
	return nil
}

// Vacuum rebuilds the database file, reclaiming free pages.
func (s *Store) Vacuum(ctx context.Context) error {
	start := time.Now()
	if _, err := s.rw.ExecContext(ctx, "VACUUM;"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	s.logger.Info("database vacuumed", zap.Duration("took", time.Since(start)))
	return nil
}

// DataSize reports on-disk usage: the database files plus everything under
// the images and icons directories.
func (s *Store) DataSize(ctx context.Context, imagesDir, iconsDir string) (*types.DataSize, error) {
	size := &types.DataSize{}

	for _, p := range []string{s.path, s.path + "-wal", s.path + "-shm"} {
		if info, err := os.Stat(p); err == nil {
			size.DatabaseBytes += info.Size()
		}
	}

	var err error
	size.ImageBytes, size.ImageCount, err = dirSize(imagesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to size images directory: %w", err)
	}
	size.IconBytes, size.IconCount, err = dirSize(iconsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to size icons directory: %w", err)
	}

	if err := s.ro.QueryRowContext(ctx, "SELECT COUNT(*) FROM clipboard_items").Scan(&size.ItemCount); err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	size.TotalBytes = size.DatabaseBytes + size.ImageBytes + size.IconBytes
	return size, nil
}

func dirSize(dir string) (int64, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	var total int64
	var count int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
		count++
	}
	return total, count, nil
}
