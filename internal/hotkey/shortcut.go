// Package hotkey parses shortcut strings and binds them as global
// Windows hotkeys. It also owns the Win+V takeover that disables the
// built-in clipboard popup through the Explorer registry.
package hotkey

import (
	"fmt"
	"strings"
)

// Modifier flags, matching the Win32 RegisterHotKey values.
const (
	ModAlt     uint16 = 0x0001
	ModControl uint16 = 0x0002
	ModShift   uint16 = 0x0004
	ModWin     uint16 = 0x0008
)

const (
	// Default is the shortcut used when none is stored.
	Default = "Alt+C"

	// WinVShortcut is the forced binding while the Win+V takeover is
	// active, so the app answers the chord Windows no longer handles.
	WinVShortcut = "Super+V"
)

// Shortcut is a parsed key chord: a modifier set plus one virtual-key
// code.
type Shortcut struct {
	Mods uint16
	Key  uint16
}

var modifierTokens = map[string]uint16{
	"CTRL":    ModControl,
	"CONTROL": ModControl,
	"ALT":     ModAlt,
	"SHIFT":   ModShift,
	"WIN":     ModWin,
	"SUPER":   ModWin,
	"META":    ModWin,
	"CMD":     ModWin,
}

var namedKeys = map[string]uint16{
	"SPACE":      0x20,
	"TAB":        0x09,
	"ENTER":      0x0D,
	"RETURN":     0x0D,
	"BACKSPACE":  0x08,
	"DELETE":     0x2E,
	"DEL":        0x2E,
	"ESCAPE":     0x1B,
	"ESC":        0x1B,
	"HOME":       0x24,
	"END":        0x23,
	"PAGEUP":     0x21,
	"PAGEDOWN":   0x22,
	"UP":         0x26,
	"ARROWUP":    0x26,
	"DOWN":       0x28,
	"ARROWDOWN":  0x28,
	"LEFT":       0x25,
	"ARROWLEFT":  0x25,
	"RIGHT":      0x27,
	"ARROWRIGHT": 0x27,
	"BACKQUOTE":  0xC0,
}

// keyNames maps virtual-key codes back to their canonical display name.
var keyNames = map[uint16]string{
	0x20: "Space",
	0x09: "Tab",
	0x0D: "Enter",
	0x08: "Backspace",
	0x2E: "Delete",
	0x1B: "Escape",
	0x24: "Home",
	0x23: "End",
	0x21: "PageUp",
	0x22: "PageDown",
	0x26: "Up",
	0x28: "Down",
	0x25: "Left",
	0x27: "Right",
	0xC0: "Backquote",
}

// Parse converts a Part+Part string such as "Ctrl+Shift+V" into a
// Shortcut. Tokens are case-insensitive. Exactly one non-modifier key
// is required.
func Parse(s string) (Shortcut, error) {
	var out Shortcut
	haveKey := false

	parts := strings.Split(s, "+")
	for _, part := range parts {
		token := strings.ToUpper(strings.TrimSpace(part))
		if token == "" {
			return Shortcut{}, fmt.Errorf("invalid shortcut %q: empty part", s)
		}

		if mod, ok := modifierTokens[token]; ok {
			out.Mods |= mod
			continue
		}

		key, ok := parseKey(token)
		if !ok {
			return Shortcut{}, fmt.Errorf("invalid shortcut %q: unknown part %q", s, part)
		}
		if haveKey {
			return Shortcut{}, fmt.Errorf("invalid shortcut %q: more than one key", s)
		}
		out.Key = key
		haveKey = true
	}

	if !haveKey {
		return Shortcut{}, fmt.Errorf("invalid shortcut %q: no key part", s)
	}
	return out, nil
}

func parseKey(token string) (uint16, bool) {
	if len(token) == 1 {
		c := token[0]
		if c >= 'A' && c <= 'Z' {
			return uint16(c), true
		}
		if c >= '0' && c <= '9' {
			return uint16(c), true
		}
		return 0, false
	}

	if token[0] == 'F' && len(token) <= 3 {
		n := 0
		digits := true
		for _, c := range token[1:] {
			if c < '0' || c > '9' {
				digits = false
				break
			}
			n = n*10 + int(c-'0')
		}
		if digits && n >= 1 && n <= 12 {
			return uint16(0x70 + n - 1), true
		}
	}

	key, ok := namedKeys[token]
	return key, ok
}

// String renders the chord in canonical form, e.g. "Ctrl+Alt+C".
func (s Shortcut) String() string {
	var parts []string
	if s.Mods&ModControl != 0 {
		parts = append(parts, "Ctrl")
	}
	if s.Mods&ModAlt != 0 {
		parts = append(parts, "Alt")
	}
	if s.Mods&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	if s.Mods&ModWin != 0 {
		parts = append(parts, "Win")
	}
	parts = append(parts, keyName(s.Key))
	return strings.Join(parts, "+")
}

func keyName(key uint16) string {
	switch {
	case key >= 'A' && key <= 'Z', key >= '0' && key <= '9':
		return string(rune(key))
	case key >= 0x70 && key <= 0x7B:
		return fmt.Sprintf("F%d", key-0x70+1)
	}
	if name, ok := keyNames[key]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", key)
}
