//go:build !windows

package hotkey

import "log/slog"

func (m *Manager) startPlatform() error {
	slog.Warn("global hotkeys not supported on this platform; use Ctrl+C to stop")
	return nil
}
