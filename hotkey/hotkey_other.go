//go:build !linux

package hotkey

import (
	"fmt"

	"golang.design/x/hotkey"

	"murmur/config"
)

type registration struct {
	hk     *hotkey.Hotkey
	action Action
}

type xListener struct {
	bindings []Binding
	regs     []registration
	events   chan Action
	stop     chan struct{}
}

func New(bindings []Binding) (Listener, error) {
	l := &xListener{
		bindings: bindings,
		events:   make(chan Action, 4),
	}
	// Fail on unmappable keys before registration.
	for _, b := range bindings {
		if _, err := keyFor(b.Combo.Key); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *xListener) Register() error {
	l.stop = make(chan struct{})
	for _, b := range l.bindings {
		key, _ := keyFor(b.Combo.Key)
		hk := hotkey.New(modsFor(b.Combo), key)
		if err := hk.Register(); err != nil {
			l.Unregister()
			// Typically the chord is owned by another process: a
			// configuration problem, not a transient one.
			return &config.ConfigError{
				Field: configField(b.Action),
				Err:   fmt.Errorf("registering %s: %w", b.Combo, err),
			}
		}
		l.regs = append(l.regs, registration{hk: hk, action: b.Action})

		go func(hk *hotkey.Hotkey, action Action) {
			for {
				select {
				case <-l.stop:
					return
				case <-hk.Keydown():
					select {
					case l.events <- action:
					default:
					}
				}
			}
		}(hk, b.Action)
	}
	return nil
}

func (l *xListener) Unregister() {
	if l.stop != nil {
		select {
		case <-l.stop:
		default:
			close(l.stop)
		}
	}
	for _, r := range l.regs {
		r.hk.Unregister()
	}
	l.regs = nil
}

func (l *xListener) Events() <-chan Action {
	return l.events
}

func modsFor(c Combo) []hotkey.Modifier {
	var mods []hotkey.Modifier
	if c.Ctrl {
		mods = append(mods, hotkey.ModCtrl)
	}
	if c.Shift {
		mods = append(mods, hotkey.ModShift)
	}
	if c.Alt {
		mods = append(mods, hotkey.ModOption)
	}
	if c.Super {
		mods = append(mods, hotkey.ModCmd)
	}
	return mods
}

func keyFor(name string) (hotkey.Key, error) {
	switch name {
	case "space":
		return hotkey.KeySpace, nil
	case "enter", "return":
		return hotkey.KeyReturn, nil
	case "escape", "esc":
		return hotkey.KeyEscape, nil
	case "tab":
		return hotkey.KeyTab, nil
	}
	// Keycodes are platform-specific in golang.design/x/hotkey, so letters
	// and digits go through an explicit table rather than arithmetic.
	if k, ok := xKeys[name]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("hotkey: key %q not supported on this platform", name)
}

var xKeys = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3,
	"f4": hotkey.KeyF4, "f5": hotkey.KeyF5, "f6": hotkey.KeyF6,
	"f7": hotkey.KeyF7, "f8": hotkey.KeyF8, "f9": hotkey.KeyF9,
	"f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
}

// Diagnose reports whether global hotkey support is usable.
func Diagnose() (string, error) {
	return "global hotkey support available", nil
}
