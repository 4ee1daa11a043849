//go:build !windows

package hotkey

import (
	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/platform"
)

// Manager is inert off Windows; global hotkeys are not bound.
type Manager struct {
	logger *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

func (m *Manager) Start(Shortcut, func()) error { return platform.ErrUnsupported }

func (m *Manager) Update(Shortcut) error { return platform.ErrUnsupported }

func (m *Manager) Stop() {}

func EnableWinVTakeover(*zap.Logger) error { return platform.ErrUnsupported }

func DisableWinVTakeover(*zap.Logger) error { return platform.ErrUnsupported }

func WinVTakeoverApplied() (bool, error) { return false, nil }
