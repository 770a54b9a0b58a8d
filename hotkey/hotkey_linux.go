//go:build linux

package hotkey

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	evKey      = 1
	keyPress   = 1
	keyRelease = 0
	keyLCtrl   = 29
	keyRCtrl   = 97
	keyLShift  = 42
	keyRShift  = 54
	keyLAlt    = 56
	keyRAlt    = 100
	keyLMeta   = 125
	keyRMeta   = 126
)

const inputEventSize = 24

// evdev key codes for the non-modifier keys ParseCombo accepts.
var keyCodes = map[string]uint16{
	"space": 57, "enter": 28, "return": 28, "tab": 15, "escape": 1, "esc": 1,
	"a": 30, "b": 48, "c": 46, "d": 32, "e": 18, "f": 33, "g": 34, "h": 35,
	"i": 23, "j": 36, "k": 37, "l": 38, "m": 50, "n": 49, "o": 24, "p": 25,
	"q": 16, "r": 19, "s": 31, "t": 20, "u": 22, "v": 47, "w": 17, "x": 45,
	"y": 21, "z": 44,
	"1": 2, "2": 3, "3": 4, "4": 5, "5": 6, "6": 7, "7": 8, "8": 9, "9": 10, "0": 11,
	"f1": 59, "f2": 60, "f3": 61, "f4": 62, "f5": 63, "f6": 64, "f7": 65,
	"f8": 66, "f9": 67, "f10": 68, "f11": 87, "f12": 88,
}

type linuxBinding struct {
	Binding
	code uint16
	held bool
}

type linuxListener struct {
	bindings []*linuxBinding
	events   chan Action
	files    []*os.File
	stop     chan struct{}
	once     sync.Once
}

// New builds a listener that reads /dev/input keyboards directly, the only
// portable route on Wayland where X grab APIs do not apply.
func New(bindings []Binding) (Listener, error) {
	l := &linuxListener{
		events: make(chan Action, 4),
	}
	for _, b := range bindings {
		code, ok := keyCodes[b.Combo.Key]
		if !ok {
			return nil, fmt.Errorf("hotkey: key %q not mappable to evdev", b.Combo.Key)
		}
		l.bindings = append(l.bindings, &linuxBinding{Binding: b, code: code})
	}
	return l, nil
}

func (l *linuxListener) Register() error {
	keyboards, err := findKeyboards()
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	l.stop = make(chan struct{})

	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		l.files = append(l.files, f)
		go l.readEvents(f)
	}

	if len(l.files) == 0 {
		return fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}

	return nil
}

func (l *linuxListener) readEvents(f *os.File) {
	buf := make([]byte, inputEventSize*16)
	var ctrlHeld, shiftHeld, altHeld, metaHeld bool

	for {
		select {
		case <-l.stop:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil {
			return
		}

		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			evType := binary.LittleEndian.Uint16(buf[i+16:])
			evCode := binary.LittleEndian.Uint16(buf[i+18:])
			evValue := int32(binary.LittleEndian.Uint32(buf[i+20:]))

			if evType != evKey {
				continue
			}

			pressed := evValue == keyPress
			released := evValue == keyRelease

			switch evCode {
			case keyLCtrl, keyRCtrl:
				ctrlHeld = pressed || (!released && ctrlHeld)
				continue
			case keyLShift, keyRShift:
				shiftHeld = pressed || (!released && shiftHeld)
				continue
			case keyLAlt, keyRAlt:
				altHeld = pressed || (!released && altHeld)
				continue
			case keyLMeta, keyRMeta:
				metaHeld = pressed || (!released && metaHeld)
				continue
			}

			for _, b := range l.bindings {
				if b.code != evCode {
					continue
				}
				if pressed && !b.held &&
					ctrlHeld == b.Combo.Ctrl && shiftHeld == b.Combo.Shift &&
					altHeld == b.Combo.Alt && metaHeld == b.Combo.Super {
					b.held = true
					select {
					case l.events <- b.Action:
					default:
					}
				} else if released {
					b.held = false
				}
			}
		}
	}
}

func (l *linuxListener) Unregister() {
	l.once.Do(func() {
		if l.stop != nil {
			close(l.stop)
		}
		for _, f := range l.files {
			f.Close()
		}
	})
}

func (l *linuxListener) Events() <-chan Action {
	return l.events
}

func findKeyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}

	var keyboards []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		path := filepath.Join("/dev/input", e.Name())
		if isKeyboard(e.Name()) {
			keyboards = append(keyboards, path)
		}
	}
	return keyboards, nil
}

func isKeyboard(eventName string) bool {
	capsPath := filepath.Join("/sys/class/input", eventName, "device", "capabilities", "key")
	data, err := os.ReadFile(capsPath)
	if err != nil {
		return false
	}
	caps := strings.TrimSpace(string(data))
	return len(caps) > 10
}

// Diagnose reports whether keyboard devices are readable.
func Diagnose() (string, error) {
	keyboards, err := findKeyboards()
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	if len(keyboards) == 0 {
		return "", fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	var opened string
	for _, path := range keyboards {
		f, err := os.Open(path)
		if err == nil {
			f.Close()
			opened = path
			break
		}
	}
	if opened == "" {
		return "", fmt.Errorf("found %d keyboard(s) but cannot open any (run: sudo usermod -aG input $USER)", len(keyboards))
	}

	return fmt.Sprintf("%d keyboard(s) found, opened %s", len(keyboards), opened), nil
}
