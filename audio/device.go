package audio

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// SelectDevice prompts for a capture device on the terminal. With a single
// device there is nothing to choose, so it is returned immediately.
func SelectDevice(ctx Context) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating capture devices: %w", err)
	}
	switch len(devices) {
	case 0:
		return nil, fmt.Errorf("no capture devices found")
	case 1:
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	return chooseDevice(devices, os.Stdin, os.Stdout)
}

// chooseDevice runs a numbered picker over an already-raw terminal. A digit
// selects, Enter takes the default (first) device, q or Esc cancels. Lists
// longer than nine entries are truncated; pass -device for anything below
// the fold.
func chooseDevice(devices []DeviceInfo, in io.Reader, out io.Writer) (*DeviceInfo, error) {
	if len(devices) > 9 {
		fmt.Fprintf(out, "(%d devices, showing first 9)\r\n", len(devices))
		devices = devices[:9]
	}
	fmt.Fprintf(out, "Capture devices:\r\n")
	for i, d := range devices {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		fmt.Fprintf(out, " %s %d. %s\r\n", marker, i+1, d.Name)
	}
	fmt.Fprintf(out, "Choose 1-%d, Enter for default, q to cancel: ", len(devices))

	buf := make([]byte, 1)
	for {
		if _, err := in.Read(buf); err != nil {
			return nil, fmt.Errorf("reading selection: %w", err)
		}
		switch b := buf[0]; {
		case b == '\r' || b == '\n':
			fmt.Fprint(out, "\r\n")
			return &devices[0], nil
		case b >= '1' && b <= byte('0'+len(devices)):
			fmt.Fprintf(out, "%c\r\n", b)
			return &devices[b-'1'], nil
		case b == 'q' || b == 0x1b || b == 0x03:
			fmt.Fprint(out, "\r\n")
			return nil, fmt.Errorf("selection cancelled")
		}
	}
}
