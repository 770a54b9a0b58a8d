//go:build linux

package inject

import (
	"encoding/binary"
	"errors"
	"os"
	"sync"
	"syscall"
	"time"
)

// ioctl constants from linux/uinput.h
const (
	uiSetEvbit  = 0x40045564 // UI_SET_EVBIT
	uiSetKeybit = 0x40045565 // UI_SET_KEYBIT
	uiDevCreate = 0x5501     // UI_DEV_CREATE
)

// input event types from linux/input-event-codes.h
const (
	evSyn = 0x00
	evKey = 0x01
)

const busUSB = 0x03

const uinputDeviceName = "murmur-kbd"

type inputEvent struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type uinputUserDev struct {
	Name         [80]byte
	ID           inputID
	FfEffectsMax uint32
	Absmax       [64]int32
	Absmin       [64]int32
	Absfuzz      [64]int32
	Absflat      [64]int32
}

var (
	uinputFd   *os.File
	uinputOnce sync.Once
	uinputErr  error
)

func uinputPath() (string, error) {
	for _, path := range []string{"/dev/uinput", "/dev/input/uinput"} {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.New("uinput device not found, try: sudo modprobe uinput")
}

func uinputInit() error {
	uinputOnce.Do(func() {
		path, err := uinputPath()
		if err != nil {
			uinputErr = err
			return
		}
		f, err := os.OpenFile(path, os.O_WRONLY|syscall.O_NONBLOCK, os.ModeDevice)
		if err != nil {
			uinputErr = err
			return
		}
		// Set EV_KEY and EV_SYN capabilities
		if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), uiSetEvbit, evKey); errno != 0 {
			uinputErr = errno
			f.Close()
			return
		}
		if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), uiSetEvbit, evSyn); errno != 0 {
			uinputErr = errno
			f.Close()
			return
		}
		// Register all standard keys so udev classifies this as a keyboard
		for i := uintptr(0); i < 256; i++ {
			if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), uiSetKeybit, i); errno != 0 {
				uinputErr = errno
				f.Close()
				return
			}
		}
		dev := uinputUserDev{}
		copy(dev.Name[:], uinputDeviceName)
		dev.ID.Bustype = busUSB
		dev.ID.Vendor = 0x1234
		dev.ID.Product = 0x5678
		dev.ID.Version = 1
		if err := binary.Write(f, binary.LittleEndian, &dev); err != nil {
			uinputErr = err
			f.Close()
			return
		}
		if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), uiDevCreate, 0); errno != 0 {
			uinputErr = errno
			f.Close()
			return
		}
		uinputFd = f
		// Give compositor time to recognize the new input device
		time.Sleep(200 * time.Millisecond)
	})
	return uinputErr
}

func writeEvent(typ, code uint16, value int32) error {
	ev := inputEvent{Type: typ, Code: code, Value: value}
	return binary.Write(uinputFd, binary.LittleEndian, &ev)
}

func syn() error {
	return writeEvent(evSyn, 0, 0)
}

func keyTap(code uint16, shift bool) error {
	if shift {
		if err := writeEvent(evKey, 42, 1); err != nil { // LEFT_SHIFT down
			return err
		}
		if err := syn(); err != nil {
			return err
		}
	}
	if err := writeEvent(evKey, code, 1); err != nil {
		return err
	}
	if err := syn(); err != nil {
		return err
	}
	if err := writeEvent(evKey, code, 0); err != nil {
		return err
	}
	if err := syn(); err != nil {
		return err
	}
	if shift {
		if err := writeEvent(evKey, 42, 0); err != nil { // LEFT_SHIFT up
			return err
		}
		if err := syn(); err != nil {
			return err
		}
	}
	return nil
}

// uinputType sends each character of text as a keystroke. Keycodes assume a
// US layout.
func uinputType(text string) error {
	if err := uinputInit(); err != nil {
		return err
	}
	for i := 0; i < len(text); i++ {
		code, shift, ok := charToKey(text[i])
		if !ok {
			continue // skip unsupported characters
		}
		if err := keyTap(code, shift); err != nil {
			return err
		}
	}
	return nil
}

// a=30, b=48, c=46, d=32, e=18, f=33, g=34, h=35, i=23, j=36,
// k=37, l=38, m=50, n=49, o=24, p=25, q=16, r=19, s=31, t=20,
// u=22, v=47, w=17, x=45, y=21, z=44
var keymap = [26]uint16{
	30, 48, 46, 32, 18, 33, 34, 35, 23, 36,
	37, 38, 50, 49, 24, 25, 16, 19, 31, 20,
	22, 47, 17, 45, 21, 44,
}

// 0=11, 1=2, 2=3, ..., 9=10
var nummap = [10]uint16{11, 2, 3, 4, 5, 6, 7, 8, 9, 10}

func charToKey(c byte) (code uint16, shift bool, ok bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return keymap[c-'a'], false, true
	case c >= 'A' && c <= 'Z':
		return keymap[c-'A'], true, true
	case c >= '0' && c <= '9':
		return nummap[c-'0'], false, true
	case c == ' ':
		return 57, false, true // KEY_SPACE
	case c == '\n':
		return 28, false, true // KEY_ENTER
	case c == '\t':
		return 15, false, true // KEY_TAB
	default:
		return punctKey(c)
	}
}

func punctKey(c byte) (uint16, bool, bool) {
	type km struct {
		code  uint16
		shift bool
	}
	m := map[byte]km{
		'.': {52, false}, ',': {51, false}, '/': {53, false},
		';': {39, false}, '\'': {40, false}, '[': {26, false},
		']': {27, false}, '-': {12, false}, '=': {13, false},
		'\\': {43, false}, '`': {41, false},
		'!': {2, true}, '@': {3, true}, '#': {4, true},
		'$': {5, true}, '%': {6, true}, '^': {7, true},
		'&': {8, true}, '*': {9, true}, '(': {10, true},
		')': {11, true}, '_': {12, true}, '+': {13, true},
		'{': {26, true}, '}': {27, true}, '|': {43, true},
		':': {39, true}, '"': {40, true}, '<': {51, true},
		'>': {52, true}, '?': {53, true}, '~': {41, true},
	}
	if k, ok := m[c]; ok {
		return k.code, k.shift, true
	}
	return 0, false, false
}
