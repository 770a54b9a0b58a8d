// Package hotkey registers system-wide key combinations and emits an action
// event whenever one fires, regardless of which window has focus. The
// keystroke is observed, not consumed.
package hotkey

import (
	"fmt"
	"strings"

	"murmur/config"
)

// Action names what a binding triggers.
type Action string

const (
	ActionToggle   Action = "toggle-listening"
	ActionCopyLast Action = "copy-last"
	ActionExit     Action = "exit"
)

// Combo is a parsed key-combination descriptor.
type Combo struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Super bool
	Key   string // normalized key name, e.g. "space", "c", "f9"
}

// Binding pairs a combo with the action it triggers.
type Binding struct {
	Combo  Combo
	Action Action
}

// Listener delivers binding actions while running in the background.
type Listener interface {
	// Register claims all bindings against the OS input layer. A binding
	// that cannot be claimed (owned by another process, no permission)
	// fails registration rather than being dropped silently.
	Register() error
	Unregister()
	Events() <-chan Action
}

// ParseCombo parses descriptors like "ctrl+shift+space" or "ctrl+alt+c".
// Exactly one non-modifier key is required.
func ParseCombo(desc string) (Combo, error) {
	var c Combo
	parts := strings.Split(strings.ToLower(strings.TrimSpace(desc)), "+")
	for _, p := range parts {
		p = strings.TrimSpace(p)
		switch p {
		case "":
			return Combo{}, fmt.Errorf("hotkey: empty component in %q", desc)
		case "ctrl", "control":
			c.Ctrl = true
		case "shift":
			c.Shift = true
		case "alt", "option":
			c.Alt = true
		case "super", "cmd", "meta", "win":
			c.Super = true
		default:
			if c.Key != "" {
				return Combo{}, fmt.Errorf("hotkey: multiple keys in %q", desc)
			}
			if !knownKey(p) {
				return Combo{}, fmt.Errorf("hotkey: unknown key %q in %q", p, desc)
			}
			c.Key = p
		}
	}
	if c.Key == "" {
		return Combo{}, fmt.Errorf("hotkey: no key in %q", desc)
	}
	if !c.Ctrl && !c.Shift && !c.Alt && !c.Super {
		return Combo{}, fmt.Errorf("hotkey: %q needs at least one modifier", desc)
	}
	return c, nil
}

func (c Combo) String() string {
	var parts []string
	if c.Ctrl {
		parts = append(parts, "ctrl")
	}
	if c.Shift {
		parts = append(parts, "shift")
	}
	if c.Alt {
		parts = append(parts, "alt")
	}
	if c.Super {
		parts = append(parts, "super")
	}
	parts = append(parts, c.Key)
	return strings.Join(parts, "+")
}

func knownKey(name string) bool {
	switch name {
	case "space", "enter", "return", "tab", "escape", "esc",
		"f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10", "f11", "f12":
		return true
	}
	if len(name) == 1 {
		ch := name[0]
		return (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
	}
	return false
}

// configField maps an action to the yaml setting it is bound under.
func configField(action Action) string {
	switch action {
	case ActionToggle:
		return "hotkeys.toggle"
	case ActionCopyLast:
		return "hotkeys.copy_last"
	case ActionExit:
		return "hotkeys.exit"
	}
	return "hotkeys"
}

// ParseBindings parses the configured descriptors into a binding set.
// Duplicate combos are rejected: two actions cannot share a chord.
// Failures come back as *config.ConfigError naming the setting.
func ParseBindings(pairs map[Action]string) ([]Binding, error) {
	seen := make(map[string]Action)
	var bindings []Binding
	for _, action := range []Action{ActionToggle, ActionCopyLast, ActionExit} {
		desc, ok := pairs[action]
		if !ok || desc == "" {
			continue
		}
		combo, err := ParseCombo(desc)
		if err != nil {
			return nil, &config.ConfigError{Field: configField(action), Err: err}
		}
		if prev, dup := seen[combo.String()]; dup {
			return nil, &config.ConfigError{
				Field: configField(action),
				Err:   fmt.Errorf("%s and %s share combo %q", prev, action, combo),
			}
		}
		seen[combo.String()] = action
		bindings = append(bindings, Binding{Combo: combo, Action: action})
	}
	if len(bindings) == 0 {
		return nil, &config.ConfigError{Field: "hotkeys", Err: fmt.Errorf("no bindings configured")}
	}
	return bindings, nil
}
