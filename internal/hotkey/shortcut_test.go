package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShortcut(t *testing.T) {
	tests := []struct {
		input string
		want  Shortcut
	}{
		{"Alt+C", Shortcut{Mods: ModAlt, Key: 'C'}},
		{"alt+c", Shortcut{Mods: ModAlt, Key: 'C'}},
		{"ALT+C", Shortcut{Mods: ModAlt, Key: 'C'}},
		{" Alt + C ", Shortcut{Mods: ModAlt, Key: 'C'}},
		{"Ctrl+Shift+V", Shortcut{Mods: ModControl | ModShift, Key: 'V'}},
		{"Control+V", Shortcut{Mods: ModControl, Key: 'V'}},
		{"Win+V", Shortcut{Mods: ModWin, Key: 'V'}},
		{"Super+V", Shortcut{Mods: ModWin, Key: 'V'}},
		{"Meta+V", Shortcut{Mods: ModWin, Key: 'V'}},
		{"Cmd+V", Shortcut{Mods: ModWin, Key: 'V'}},
		{"Ctrl+Alt+Shift+Win+F12", Shortcut{Mods: ModControl | ModAlt | ModShift | ModWin, Key: 0x7B}},
		{"Ctrl+0", Shortcut{Mods: ModControl, Key: '0'}},
		{"Alt+9", Shortcut{Mods: ModAlt, Key: '9'}},
		{"F1", Shortcut{Key: 0x70}},
		{"Alt+F5", Shortcut{Mods: ModAlt, Key: 0x74}},
		{"Shift+Space", Shortcut{Mods: ModShift, Key: 0x20}},
		{"Ctrl+Tab", Shortcut{Mods: ModControl, Key: 0x09}},
		{"Alt+Enter", Shortcut{Mods: ModAlt, Key: 0x0D}},
		{"Alt+Return", Shortcut{Mods: ModAlt, Key: 0x0D}},
		{"Ctrl+Backspace", Shortcut{Mods: ModControl, Key: 0x08}},
		{"Ctrl+Delete", Shortcut{Mods: ModControl, Key: 0x2E}},
		{"Ctrl+Del", Shortcut{Mods: ModControl, Key: 0x2E}},
		{"Alt+Escape", Shortcut{Mods: ModAlt, Key: 0x1B}},
		{"Alt+Esc", Shortcut{Mods: ModAlt, Key: 0x1B}},
		{"Win+Home", Shortcut{Mods: ModWin, Key: 0x24}},
		{"Win+End", Shortcut{Mods: ModWin, Key: 0x23}},
		{"Ctrl+PageUp", Shortcut{Mods: ModControl, Key: 0x21}},
		{"Ctrl+PageDown", Shortcut{Mods: ModControl, Key: 0x22}},
		{"Alt+Up", Shortcut{Mods: ModAlt, Key: 0x26}},
		{"Alt+ArrowUp", Shortcut{Mods: ModAlt, Key: 0x26}},
		{"Alt+Down", Shortcut{Mods: ModAlt, Key: 0x28}},
		{"Alt+ArrowDown", Shortcut{Mods: ModAlt, Key: 0x28}},
		{"Alt+Left", Shortcut{Mods: ModAlt, Key: 0x25}},
		{"Alt+ArrowLeft", Shortcut{Mods: ModAlt, Key: 0x25}},
		{"Alt+Right", Shortcut{Mods: ModAlt, Key: 0x27}},
		{"Alt+ArrowRight", Shortcut{Mods: ModAlt, Key: 0x27}},
		{"Ctrl+Backquote", Shortcut{Mods: ModControl, Key: 0xC0}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseShortcutErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"only modifier", "Alt"},
		{"only modifiers", "Ctrl+Shift"},
		{"trailing plus", "Alt+"},
		{"leading plus", "+C"},
		{"double plus", "Alt++C"},
		{"two keys", "Alt+C+V"},
		{"unknown token", "Alt+Foo"},
		{"function key out of range", "Alt+F13"},
		{"function key zero", "Alt+F0"},
		{"doubled letter", "Alt+CC"},
		{"punctuation", "Alt+;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestShortcutString(t *testing.T) {
	tests := []struct {
		shortcut Shortcut
		want     string
	}{
		{Shortcut{Mods: ModAlt, Key: 'C'}, "Alt+C"},
		{Shortcut{Mods: ModControl | ModShift, Key: 'V'}, "Ctrl+Shift+V"},
		{Shortcut{Mods: ModControl | ModAlt | ModShift | ModWin, Key: 'X'}, "Ctrl+Alt+Shift+Win+X"},
		{Shortcut{Mods: ModWin, Key: 'V'}, "Win+V"},
		{Shortcut{Mods: ModAlt, Key: 0x74}, "Alt+F5"},
		{Shortcut{Mods: ModControl, Key: 0x21}, "Ctrl+PageUp"},
		{Shortcut{Key: 0x70}, "F1"},
		{Shortcut{Mods: ModShift, Key: '7'}, "Shift+7"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.shortcut.String())

			// Canonical form parses back to the same chord.
			back, err := Parse(tt.shortcut.String())
			require.NoError(t, err)
			assert.Equal(t, tt.shortcut, back)
		})
	}
}

func TestDefaultShortcuts(t *testing.T) {
	def, err := Parse(Default)
	require.NoError(t, err)
	assert.Equal(t, Shortcut{Mods: ModAlt, Key: 'C'}, def)

	winv, err := Parse(WinVShortcut)
	require.NoError(t, err)
	assert.Equal(t, Shortcut{Mods: ModWin, Key: 'V'}, winv)
}
