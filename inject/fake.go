package inject

import "sync"

// FakeStrategy records injected text and fails on demand.
type FakeStrategy struct {
	StrategyName string
	AvailErr     error
	InjectErr    error

	mu       sync.Mutex
	injected []string
}

func (f *FakeStrategy) Name() string { return f.StrategyName }

func (f *FakeStrategy) Available() error { return f.AvailErr }

func (f *FakeStrategy) Inject(text string) error {
	if f.InjectErr != nil {
		return f.InjectErr
	}
	f.mu.Lock()
	f.injected = append(f.injected, text)
	f.mu.Unlock()
	return nil
}

func (f *FakeStrategy) Injected() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.injected))
	copy(out, f.injected)
	return out
}
