package keys

import (
	"errors"
	"testing"
)

func TestParseCombo(t *testing.T) {
	tests := []struct {
		in   string
		key  Key
		mods Modifier
	}{
		{"r", "r", ModNone},
		{"R", "r", ModNone},
		{"5", "5", ModNone},
		{"space", "space", ModNone},
		{"Return", "enter", ModNone},
		{"ESC", "escape", ModNone},
		{"f10", "f10", ModNone},
		{"ctrl+c", "c", ModCtrl},
		{"Control+C", "c", ModCtrl},
		{"alt+tab", "tab", ModAlt},
		{"shift+f1", "f1", ModShift},
		{"ctrl+shift+f10", "f10", ModCtrl | ModShift},
		{"ctrl+alt+r", "r", ModCtrl | ModAlt},
		{" ctrl + alt + delete ", "delete", ModCtrl | ModAlt},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseCombo(tt.in)
			if err != nil {
				t.Fatalf("ParseCombo(%q) error: %v", tt.in, err)
			}
			if c.Key != tt.key {
				t.Errorf("ParseCombo(%q) key = %q, want %q", tt.in, c.Key, tt.key)
			}
			if c.Mods != tt.mods {
				t.Errorf("ParseCombo(%q) mods = %v, want %v", tt.in, c.Mods, tt.mods)
			}
		})
	}
}

func TestParseComboInvalid(t *testing.T) {
	tests := []string{
		"",
		"+",
		"ctrl+",
		"+r",
		"ctrl++r",
		"bogus",
		"ctrl+bogus",
		"r+c",          // base key used as modifier
		"ctrl+ctrl+r",  // duplicate modifier
		"ctrl+shift",   // modifier-only combo
		"f13",          // out of range function key
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseCombo(in); !errors.Is(err, ErrInvalidKeySyntax) {
				t.Errorf("ParseCombo(%q) error = %v, want ErrInvalidKeySyntax", in, err)
			}
		})
	}
}

func TestComboRoundTrip(t *testing.T) {
	tests := []string{
		"r",
		"space",
		"f12",
		"ctrl+c",
		"ctrl+alt+r",
		"ctrl+alt+shift+escape",
		"Shift+Ctrl+A", // non-canonical input, canonical output
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			first, err := ParseCombo(in)
			if err != nil {
				t.Fatalf("ParseCombo(%q) error: %v", in, err)
			}
			second, err := ParseCombo(first.String())
			if err != nil {
				t.Fatalf("ParseCombo(%q) error: %v", first.String(), err)
			}
			if !first.Equal(second) {
				t.Errorf("round trip changed combo: %v -> %q -> %v", first, first.String(), second)
			}
			if first.String() != second.String() {
				t.Errorf("round trip changed formatting: %q vs %q", first.String(), second.String())
			}
		})
	}
}

func TestKeyVK(t *testing.T) {
	tests := []struct {
		key Key
		vk  uint16
	}{
		{"a", 0x41},
		{"z", 0x5A},
		{"0", 0x30},
		{"9", 0x39},
		{"f1", 0x70},
		{"f12", 0x7B},
		{"space", 0x20},
		{"enter", 0x0D},
		{"escape", 0x1B},
		{"pageup", 0x21},
	}

	for _, tt := range tests {
		if got := tt.key.VK(); got != tt.vk {
			t.Errorf("%q VK = 0x%X, want 0x%X", tt.key, got, tt.vk)
		}
	}
}

func TestComboModVKs(t *testing.T) {
	c, err := ParseCombo("shift+ctrl+alt+x")
	if err != nil {
		t.Fatal(err)
	}
	got := c.ModVKs()
	want := []uint16{0x11, 0x12, 0x10} // ctrl, alt, shift press order
	if len(got) != len(want) {
		t.Fatalf("ModVKs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ModVKs = %v, want %v", got, want)
		}
	}
}
