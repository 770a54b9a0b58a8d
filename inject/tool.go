package inject

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// toolStrategy shells out to an external typing tool: wtype on Wayland,
// xdotool on X11, osascript on macOS.
type toolStrategy struct {
	bin  string
	args func(text string) []string
}

func (t *toolStrategy) Name() string { return "tool" }

func (t *toolStrategy) Available() error {
	switch {
	case runtime.GOOS == "darwin":
		t.bin = "osascript"
		t.args = func(text string) []string {
			return []string{"-e", fmt.Sprintf("tell application %q to keystroke %q", "System Events", text)}
		}
	case os.Getenv("WAYLAND_DISPLAY") != "":
		t.bin = "wtype"
		t.args = func(text string) []string { return []string{"--", text} }
	case os.Getenv("DISPLAY") != "":
		t.bin = "xdotool"
		t.args = func(text string) []string { return []string{"type", "--clearmodifiers", "--", text} }
	default:
		return fmt.Errorf("no display session for typing tool")
	}
	if _, err := exec.LookPath(t.bin); err != nil {
		return fmt.Errorf("%s not installed: %w", t.bin, err)
	}
	return nil
}

func (t *toolStrategy) Inject(text string) error {
	out, err := exec.Command(t.bin, t.args(text)...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w: %s", t.bin, err, out)
	}
	return nil
}
