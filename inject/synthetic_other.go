//go:build !linux

package inject

import (
	"runtime"
	"sync"
	"time"

	cb "github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"
)

// syntheticStrategy copies text to the clipboard and sends the platform paste
// chord (Cmd+V on macOS, Ctrl+V elsewhere). With restore enabled the previous
// clipboard contents come back after the paste lands.
type syntheticStrategy struct {
	restore bool

	kbOnce sync.Once
	kb     keybd_event.KeyBonding
	kbErr  error
}

func newSynthetic(restore bool) Strategy {
	return &syntheticStrategy{restore: restore}
}

func (s *syntheticStrategy) Name() string { return "synthetic" }

func (s *syntheticStrategy) Available() error {
	s.kbOnce.Do(func() {
		s.kb, s.kbErr = keybd_event.NewKeyBonding()
	})
	return s.kbErr
}

func (s *syntheticStrategy) Inject(text string) error {
	if err := s.Available(); err != nil {
		return err
	}

	var previous string
	if s.restore {
		previous, _ = cb.ReadAll()
	}
	if err := cb.WriteAll(text); err != nil {
		return err
	}

	s.kb.SetKeys(keybd_event.VK_V)
	if runtime.GOOS == "darwin" {
		s.kb.HasSuper(true)
	} else {
		s.kb.HasCTRL(true)
	}
	if err := s.kb.Launching(); err != nil {
		return err
	}

	if s.restore {
		// Let the focused app read the clipboard before putting the old
		// contents back.
		time.Sleep(150 * time.Millisecond)
		return cb.WriteAll(previous)
	}
	return nil
}
