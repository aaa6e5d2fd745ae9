// Package keys provides the value types for logical keys, key combinations
// and the durations between them.
//
// A key specification is written as "key" or "mod+key", for example "r",
// "space", "f10" or "ctrl+shift+f10". Base key names are matched
// case-insensitively; String returns the canonical lower-case form with
// modifiers ordered ctrl, alt, shift, so parse→format→parse is stable.
package keys

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKeySyntax is returned when a key or combination token cannot be
// parsed: unknown base key, unknown or duplicate modifier, empty or
// malformed "+" separated parts.
var ErrInvalidKeySyntax = errors.New("invalid key syntax")

// Modifier is a bitmask of modifier keys held together with a base key.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift

	ModNone Modifier = 0
)

// HasCtrl reports whether Ctrl is set.
func (m Modifier) HasCtrl() bool { return m&ModCtrl != 0 }

// HasAlt reports whether Alt is set.
func (m Modifier) HasAlt() bool { return m&ModAlt != 0 }

// HasShift reports whether Shift is set.
func (m Modifier) HasShift() bool { return m&ModShift != 0 }

// Names returns the canonical modifier names in ctrl, alt, shift order.
func (m Modifier) Names() []string {
	var names []string
	if m.HasCtrl() {
		names = append(names, "ctrl")
	}
	if m.HasAlt() {
		names = append(names, "alt")
	}
	if m.HasShift() {
		names = append(names, "shift")
	}
	return names
}

// Key is a canonical lower-case base key name ("r", "space", "f10").
type Key string

// vkTable maps every canonical base key name to its Windows virtual-key
// code. The platform emitters consume the codes; everything else only cares
// that the name is present.
var vkTable = map[Key]uint16{
	"space":     0x20,
	"enter":     0x0D,
	"tab":       0x09,
	"escape":    0x1B,
	"backspace": 0x08,
	"delete":    0x2E,
	"insert":    0x2D,
	"home":      0x24,
	"end":       0x23,
	"pageup":    0x21,
	"pagedown":  0x22,
	"left":      0x25,
	"up":        0x26,
	"right":     0x27,
	"down":      0x28,
}

// keyAliases maps accepted spellings to canonical names.
var keyAliases = map[string]Key{
	"return": "enter",
	"esc":    "escape",
	"del":    "delete",
	"ins":    "insert",
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		vkTable[Key(c)] = uint16(c - 'a' + 0x41)
	}
	for c := '0'; c <= '9'; c++ {
		vkTable[Key(c)] = uint16(c - '0' + 0x30)
	}
	for i := 1; i <= 12; i++ {
		vkTable[Key(fmt.Sprintf("f%d", i))] = uint16(0x70 + i - 1)
	}
}

// ParseKey resolves a base key name to its canonical form.
func ParseKey(s string) (Key, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return "", fmt.Errorf("%w: empty key name", ErrInvalidKeySyntax)
	}
	if canonical, ok := keyAliases[name]; ok {
		return canonical, nil
	}
	if _, ok := vkTable[Key(name)]; ok {
		return Key(name), nil
	}
	return "", fmt.Errorf("%w: unknown key %q", ErrInvalidKeySyntax, s)
}

// VK returns the Windows virtual-key code for the key.
func (k Key) VK() uint16 { return vkTable[k] }

// Combo is a base key plus held modifiers.
type Combo struct {
	Key  Key
	Mods Modifier
}

var modTable = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"shift":   ModShift,
}

// ModVKs returns the virtual-key codes of the held modifiers in canonical
// press order (ctrl, alt, shift).
func (c Combo) ModVKs() []uint16 {
	var vks []uint16
	if c.Mods.HasCtrl() {
		vks = append(vks, 0x11)
	}
	if c.Mods.HasAlt() {
		vks = append(vks, 0x12)
	}
	if c.Mods.HasShift() {
		vks = append(vks, 0x10)
	}
	return vks
}

// ParseCombo parses a "mod+mod+key" token. All parts but the last must be
// distinct modifiers; the last must be a known base key.
func ParseCombo(s string) (Combo, error) {
	parts := strings.Split(s, "+")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
		if parts[i] == "" {
			return Combo{}, fmt.Errorf("%w: malformed combination %q", ErrInvalidKeySyntax, s)
		}
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		m, ok := modTable[p]
		if !ok {
			return Combo{}, fmt.Errorf("%w: %q is not a modifier in %q", ErrInvalidKeySyntax, p, s)
		}
		if mods&m != 0 {
			return Combo{}, fmt.Errorf("%w: duplicate modifier %q in %q", ErrInvalidKeySyntax, p, s)
		}
		mods |= m
	}

	key, err := ParseKey(parts[len(parts)-1])
	if err != nil {
		return Combo{}, err
	}
	return Combo{Key: key, Mods: mods}, nil
}

// String returns the canonical form, e.g. "ctrl+shift+f10".
func (c Combo) String() string {
	parts := append(c.Mods.Names(), string(c.Key))
	return strings.Join(parts, "+")
}

// Equal reports whether two combos denote the same key press.
func (c Combo) Equal(o Combo) bool {
	return c.Key == o.Key && c.Mods == o.Mods
}
