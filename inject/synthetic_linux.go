//go:build linux

package inject

// syntheticStrategy types text directly through a virtual uinput keyboard.
// No clipboard involved, so restoreClipboard is irrelevant here.
type syntheticStrategy struct{}

func newSynthetic(_ bool) Strategy {
	return &syntheticStrategy{}
}

func (s *syntheticStrategy) Name() string { return "synthetic" }

func (s *syntheticStrategy) Available() error {
	_, err := uinputPath()
	return err
}

func (s *syntheticStrategy) Inject(text string) error {
	return uinputType(text)
}
