package inject

import (
	"fmt"
	"strings"

	cb "github.com/atotto/clipboard"
)

// Strategy delivers transcribed text into the focused application.
type Strategy interface {
	Name() string
	// Available reports whether the strategy can work in this environment.
	// Probed once per Injector; a non-nil error skips the strategy.
	Available() error
	Inject(text string) error
}

type Attempt struct {
	Strategy string
	Err      error
	Skipped  bool // unavailable, never attempted
}

type Result struct {
	Strategy string // strategy that delivered the text
	Attempts []Attempt
}

// ExhaustedError is returned when every strategy failed. The text is carried
// so callers can surface it instead of losing the utterance.
type ExhaustedError struct {
	Text     string
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	names := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		names = append(names, a.Strategy)
	}
	return fmt.Sprintf("all injection strategies failed: %s", strings.Join(names, ", "))
}

// Injector tries strategies in order and stops at the first success. The
// clipboard strategy always runs last so a failed chain still leaves the text
// one paste away.
type Injector struct {
	strategies []Strategy
	avail      map[string]error
}

func New(names []string, restoreClipboard bool) (*Injector, error) {
	var strategies []Strategy
	for _, name := range names {
		switch name {
		case "synthetic":
			strategies = append(strategies, newSynthetic(restoreClipboard))
		case "tool":
			strategies = append(strategies, &toolStrategy{})
		case "clipboard":
			// appended below
		default:
			return nil, fmt.Errorf("unknown injection strategy %q", name)
		}
	}
	strategies = append(strategies, &clipboardStrategy{})
	return NewWith(strategies...), nil
}

// NewWith builds an Injector from explicit strategies, preserving order.
func NewWith(strategies ...Strategy) *Injector {
	return &Injector{strategies: strategies}
}

func (in *Injector) available(s Strategy) error {
	if in.avail == nil {
		in.avail = make(map[string]error)
	}
	err, probed := in.avail[s.Name()]
	if !probed {
		err = s.Available()
		in.avail[s.Name()] = err
	}
	return err
}

// Inject runs the chain for one utterance. On success the result names the
// winning strategy; on total failure the error preserves the text.
func (in *Injector) Inject(text string) (Result, error) {
	var attempts []Attempt
	for _, s := range in.strategies {
		if err := in.available(s); err != nil {
			attempts = append(attempts, Attempt{Strategy: s.Name(), Err: err, Skipped: true})
			continue
		}
		if err := s.Inject(text); err != nil {
			attempts = append(attempts, Attempt{Strategy: s.Name(), Err: err})
			continue
		}
		attempts = append(attempts, Attempt{Strategy: s.Name()})
		return Result{Strategy: s.Name(), Attempts: attempts}, nil
	}
	return Result{Attempts: attempts}, &ExhaustedError{Text: text, Attempts: attempts}
}

// ProbeResult reports one strategy's availability.
type ProbeResult struct {
	Strategy string
	Err      error
}

// Probe checks every strategy in the chain without injecting anything.
func (in *Injector) Probe() []ProbeResult {
	results := make([]ProbeResult, 0, len(in.strategies))
	for _, s := range in.strategies {
		results = append(results, ProbeResult{Strategy: s.Name(), Err: in.available(s)})
	}
	return results
}

// Strategies lists the configured chain in attempt order.
func (in *Injector) Strategies() []string {
	names := make([]string, len(in.strategies))
	for i, s := range in.strategies {
		names[i] = s.Name()
	}
	return names
}

func Copy(text string) error {
	return cb.WriteAll(text)
}

func ReadClipboard() (string, error) {
	return cb.ReadAll()
}

type clipboardStrategy struct{}

func (c *clipboardStrategy) Name() string { return "clipboard" }

func (c *clipboardStrategy) Available() error {
	if cb.Unsupported {
		return fmt.Errorf("no clipboard utility found")
	}
	return nil
}

func (c *clipboardStrategy) Inject(text string) error {
	return cb.WriteAll(text)
}
