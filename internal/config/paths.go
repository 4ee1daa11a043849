package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
)

// Well-known file names under the data root.
const (
	ConfigFileName = "config.json"
	DBFileName     = "clipboard.db"
	LogFileName    = "app.log"
	SocketFileName = "elegantclip.sock"
	ImagesDirName  = "images"
	IconsDirName   = "icons"
)

// Paths holds every filesystem location the daemon touches
type Paths struct {
	Root       string `yaml:"root"`
	ConfigFile string `yaml:"config_file"`
	DBFile     string `yaml:"db_file"`
	ImagesDir  string `yaml:"images_dir"`
	IconsDir   string `yaml:"icons_dir"`
	LogFile    string `yaml:"log_file"`
	SocketFile string `yaml:"socket_file"`
}

// DefaultRoot returns the platform data root. The ELEGANTCLIP_DATA_DIR
// environment variable overrides it.
func DefaultRoot() (string, error) {
	if dir := os.Getenv("ELEGANTCLIP_DATA_DIR"); dir != "" {
		return dir, nil
	}

	switch runtime.GOOS {
	case "windows":
		// UserCacheDir resolves to %LocalAppData% on Windows.
		base, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve local app data: %w", err)
		}
		return filepath.Join(base, "ElegantClipboard"), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", "ElegantClipboard"), nil
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "elegantclipboard"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, ".local", "share", "elegantclipboard"), nil
	}
}

// Resolve computes the effective paths for cfg. The config file always
// lives under the default root so it can be found before data_path is
// known; everything else follows data_path when set.
func Resolve(cfg *Config) (Paths, error) {
	defRoot, err := DefaultRoot()
	if err != nil {
		return Paths{}, err
	}

	root := defRoot
	if cfg != nil && cfg.DataPath != "" {
		root = cfg.DataPath
	}

	return Paths{
		Root:       root,
		ConfigFile: filepath.Join(defRoot, ConfigFileName),
		DBFile:     filepath.Join(root, DBFileName),
		ImagesDir:  filepath.Join(root, ImagesDirName),
		IconsDir:   filepath.Join(root, IconsDirName),
		LogFile:    filepath.Join(root, LogFileName),
		SocketFile: filepath.Join(root, SocketFileName),
	}, nil
}

// EnsureDirs creates the directories the daemon writes into.
func (p Paths) EnsureDirs() error {
	for _, dir := range []string{p.Root, p.ImagesDir, p.IconsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// MigrateRoot copies the database files, images and icons from oldRoot to
// newRoot. The caller is expected to have closed the database first. The
// source is left in place so a failed move can fall back.
func MigrateRoot(oldRoot, newRoot string, logger *zap.Logger) error {
	if oldRoot == newRoot {
		return nil
	}
	if err := os.MkdirAll(newRoot, 0o755); err != nil {
		return fmt.Errorf("failed to create new data root: %w", err)
	}

	for _, name := range []string{DBFileName, DBFileName + "-wal", DBFileName + "-shm"} {
		src := filepath.Join(oldRoot, name)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if err := copyFile(src, filepath.Join(newRoot, name)); err != nil {
			return fmt.Errorf("failed to copy %s: %w", name, err)
		}
		logger.Info("migrated database file", zap.String("file", name))
	}

	for _, dir := range []string{ImagesDirName, IconsDirName} {
		src := filepath.Join(oldRoot, dir)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if err := copyDir(src, filepath.Join(newRoot, dir)); err != nil {
			return fmt.Errorf("failed to copy %s: %w", dir, err)
		}
		logger.Info("migrated data directory", zap.String("dir", dir))
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func copyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := copyFile(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
