//go:build !windows

package source

import "go.uber.org/zap"

// Resolver is a no-op outside Windows: attribution needs the Win32
// clipboard-owner APIs.
type Resolver struct {
	iconsDir string
	logger   *zap.Logger
}

// NewResolver creates a resolver that caches icons under iconsDir.
func NewResolver(iconsDir string, logger *zap.Logger) *Resolver {
	return &Resolver{iconsDir: iconsDir, logger: logger}
}

// Resolve returns an empty attribution.
func (r *Resolver) Resolve() Info {
	return Info{}
}
