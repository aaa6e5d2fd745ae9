// Package hotkey provides global pause/resume hotkey monitoring.
package hotkey

import (
	"log/slog"
	"strings"
	"sync"

	"pks/internal/keys"
)

// Manager watches the global keyboard state for a single bound combination
// and invokes the callback once per full press. The combination is
// edge-triggered: it must be fully released before it can fire again, so
// holding the keys (or OS key repeat) toggles exactly once.
type Manager struct {
	mu           sync.RWMutex
	parts        []string // upper-case key names, all must be down
	callback     func()
	currentState map[string]bool
	fired        bool
}

// NewManager creates an unbound hotkey manager.
func NewManager() *Manager {
	return &Manager{
		currentState: make(map[string]bool),
	}
}

// Bind sets the combination and callback. Binding replaces any previous one.
func (m *Manager) Bind(c keys.Combo, callback func()) {
	parts := make([]string, 0, 4)
	for _, name := range c.Mods.Names() {
		parts = append(parts, strings.ToUpper(name))
	}
	parts = append(parts, strings.ToUpper(string(c.Key)))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.parts = parts
	m.callback = callback
	m.fired = false
}

// UpdateState records a key transition from the platform hook and fires
// the callback when the bound combination becomes fully pressed.
func (m *Manager) UpdateState(key string, isDown bool) {
	key = strings.ToUpper(key)

	m.mu.Lock()
	if isDown {
		m.currentState[key] = true
	} else {
		delete(m.currentState, key)
	}

	cb := m.matchLocked(key, isDown)
	combo := strings.Join(m.parts, "+")
	m.mu.Unlock()

	if cb != nil {
		slog.Debug("hotkey triggered", "combo", combo)
		go cb()
	}
}

func (m *Manager) matchLocked(key string, isDown bool) func() {
	if len(m.parts) == 0 {
		return nil
	}

	down := true
	involved := false
	for _, part := range m.parts {
		if !m.currentState[part] {
			down = false
		}
		if part == key {
			involved = true
		}
	}

	if !isDown {
		// Releasing any part re-arms the trigger.
		if involved {
			m.fired = false
		}
		return nil
	}
	if !down || m.fired {
		return nil
	}
	m.fired = true
	return m.callback
}

// Start initiates the platform-specific global keyboard hook. Implemented
// in hotkey_windows.go and hotkey_stub.go.
func (m *Manager) Start() error {
	return m.startPlatform()
}
