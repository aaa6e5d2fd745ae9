// Package proc provides cross-platform process location for the key sender.
// The coordinator only depends on the Locator interface; one implementation
// exists per target platform.
package proc

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Locate when no process matches the name.
var ErrNotFound = errors.New("process not found")

// Handle identifies a located target process. HWND may be zero when the
// process has no visible top-level window; the emitter then falls back to
// global injection.
type Handle struct {
	PID  uint32
	HWND uintptr
}

// Valid reports whether the handle refers to a located process.
func (h Handle) Valid() bool { return h.PID != 0 }

// Locator resolves a process name to a handle and re-checks liveness.
type Locator interface {
	// Locate finds a running process whose executable name contains name
	// (case-insensitive). Returns ErrNotFound when nothing matches.
	Locate(ctx context.Context, name string) (Handle, error)

	// Alive reports whether the handle still refers to a running process.
	Alive(h Handle) bool
}
