// Package source resolves which application put the current payload on
// the clipboard and caches a PNG of its icon.
package source

import (
	"encoding/hex"
	"path/filepath"
	"strings"

	"lukechampine.com/blake3"
)

// Info identifies the application behind a clipboard change.
type Info struct {
	AppName  string
	ExePath  string
	IconPath string
}

// IconCacheKey derives the stable cache key for an executable: the first
// 12 hex characters of BLAKE3 over the lowercased path. Lowercasing keeps
// the key stable across the case-insensitive spellings Windows hands out.
func IconCacheKey(exePath string) string {
	sum := blake3.Sum256([]byte(strings.ToLower(exePath)))
	return hex.EncodeToString(sum[:])[:12]
}

// fileStem returns the executable name without directory or extension,
// the display-name fallback when no version resource is readable.
func fileStem(exePath string) string {
	base := filepath.Base(exePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
