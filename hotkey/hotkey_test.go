package hotkey

import (
	"testing"

	"github.com/stretchr/testify/require"

	"murmur/config"
)

func TestParseCombo(t *testing.T) {
	tests := []struct {
		desc string
		want Combo
	}{
		{"ctrl+shift+space", Combo{Ctrl: true, Shift: true, Key: "space"}},
		{"ctrl+alt+c", Combo{Ctrl: true, Alt: true, Key: "c"}},
		{"Super+X", Combo{Super: true, Key: "x"}},
		{"ctrl + shift + 9", Combo{Ctrl: true, Shift: true, Key: "9"}},
		{"cmd+v", Combo{Super: true, Key: "v"}},
		{"ctrl+f9", Combo{Ctrl: true, Key: "f9"}},
		{"alt+f12", Combo{Alt: true, Key: "f12"}},
	}
	for _, tt := range tests {
		got, err := ParseCombo(tt.desc)
		require.NoError(t, err, tt.desc)
		require.Equal(t, tt.want, got, tt.desc)
	}
}

func TestParseComboErrors(t *testing.T) {
	for _, desc := range []string{
		"",
		"space",            // no modifier
		"ctrl+shift",       // no key
		"ctrl+space+enter", // two keys
		"ctrl+bogus",
		"ctrl++space",
		"ctrl+f13", // keyboards stop at f12
	} {
		_, err := ParseCombo(desc)
		require.Error(t, err, desc)
	}
}

func TestComboString(t *testing.T) {
	c, err := ParseCombo("shift+ctrl+space")
	require.NoError(t, err)
	require.Equal(t, "ctrl+shift+space", c.String())
}

func TestParseBindings(t *testing.T) {
	bindings, err := ParseBindings(map[Action]string{
		ActionToggle:   "ctrl+shift+space",
		ActionCopyLast: "ctrl+shift+c",
		ActionExit:     "ctrl+shift+x",
	})
	require.NoError(t, err)
	require.Len(t, bindings, 3)
	require.Equal(t, ActionToggle, bindings[0].Action)
}

func TestParseBindingsRejectsDuplicateCombo(t *testing.T) {
	_, err := ParseBindings(map[Action]string{
		ActionToggle:   "ctrl+shift+space",
		ActionCopyLast: "shift+ctrl+space",
	})
	require.Error(t, err)
	var cerr *config.ConfigError
	require.ErrorAs(t, err, &cerr)
}

func TestParseBindingsNamesBadSetting(t *testing.T) {
	_, err := ParseBindings(map[Action]string{
		ActionToggle:   "ctrl+shift+space",
		ActionCopyLast: "ctrl+bogus",
	})
	var cerr *config.ConfigError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "hotkeys.copy_last", cerr.Field)
}

func TestParseBindingsSkipsEmpty(t *testing.T) {
	bindings, err := ParseBindings(map[Action]string{
		ActionToggle: "ctrl+shift+space",
		ActionExit:   "",
	})
	require.NoError(t, err)
	require.Len(t, bindings, 1)
}

func TestFakeListenerDelivers(t *testing.T) {
	f := NewFake()
	require.NoError(t, f.Register())
	f.Fire(ActionToggle)
	require.Equal(t, ActionToggle, <-f.Events())
}
