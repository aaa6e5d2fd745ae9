package hotkey

import (
	"sync/atomic"
	"testing"
	"time"

	"pks/internal/keys"
)

func bind(t *testing.T, m *Manager, combo string, fired *atomic.Int32) {
	t.Helper()
	c, err := keys.ParseCombo(combo)
	if err != nil {
		t.Fatal(err)
	}
	m.Bind(c, func() { fired.Add(1) })
}

func waitCount(t *testing.T, fired *atomic.Int32, want int32) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for fired.Load() != want {
		if time.Now().After(deadline) {
			t.Fatalf("fired = %d, want %d", fired.Load(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestComboFiresWhenFullyPressed(t *testing.T) {
	m := NewManager()
	var fired atomic.Int32
	bind(t, m, "ctrl+alt+r", &fired)

	m.UpdateState("ctrl", true)
	m.UpdateState("alt", true)
	if fired.Load() != 0 {
		t.Fatal("fired before combo complete")
	}
	m.UpdateState("r", true)
	waitCount(t, &fired, 1)
}

func TestComboEdgeTriggered(t *testing.T) {
	m := NewManager()
	var fired atomic.Int32
	bind(t, m, "ctrl+alt+r", &fired)

	m.UpdateState("CTRL", true)
	m.UpdateState("ALT", true)
	m.UpdateState("R", true)
	waitCount(t, &fired, 1)

	// OS key repeat while held must not re-fire.
	m.UpdateState("R", true)
	m.UpdateState("R", true)
	time.Sleep(10 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("fired = %d after key repeat, want 1", got)
	}

	// Release and press again: fires once more.
	m.UpdateState("R", false)
	m.UpdateState("R", true)
	waitCount(t, &fired, 2)
}

func TestUnrelatedKeysDoNotFire(t *testing.T) {
	m := NewManager()
	var fired atomic.Int32
	bind(t, m, "ctrl+alt+r", &fired)

	m.UpdateState("ctrl", true)
	m.UpdateState("x", true)
	m.UpdateState("r", true)
	time.Sleep(10 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatal("fired without full combo down")
	}
}

func TestUnboundManagerIgnoresInput(t *testing.T) {
	m := NewManager()
	m.UpdateState("ctrl", true)
	m.UpdateState("c", true)
	// No binding, nothing to assert beyond not panicking.
}
