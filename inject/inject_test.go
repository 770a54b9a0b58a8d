package inject

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjectFirstSuccessStops(t *testing.T) {
	first := &FakeStrategy{StrategyName: "first"}
	second := &FakeStrategy{StrategyName: "second"}

	in := NewWith(first, second)
	result, err := in.Inject("hello")
	require.NoError(t, err)

	assert.Equal(t, "first", result.Strategy)
	assert.Equal(t, []string{"hello"}, first.Injected())
	assert.Empty(t, second.Injected())
	require.Len(t, result.Attempts, 1)
	assert.NoError(t, result.Attempts[0].Err)
}

func TestInjectFallsThroughOnFailure(t *testing.T) {
	broken := &FakeStrategy{StrategyName: "broken", InjectErr: errors.New("denied")}
	working := &FakeStrategy{StrategyName: "working"}

	in := NewWith(broken, working)
	result, err := in.Inject("hello")
	require.NoError(t, err)

	assert.Equal(t, "working", result.Strategy)
	require.Len(t, result.Attempts, 2)
	assert.Error(t, result.Attempts[0].Err)
	assert.False(t, result.Attempts[0].Skipped)
	assert.NoError(t, result.Attempts[1].Err)
}

func TestInjectSkipsUnavailable(t *testing.T) {
	missing := &FakeStrategy{StrategyName: "missing", AvailErr: errors.New("not installed")}
	working := &FakeStrategy{StrategyName: "working"}

	in := NewWith(missing, working)
	result, err := in.Inject("hello")
	require.NoError(t, err)

	assert.Equal(t, "working", result.Strategy)
	require.Len(t, result.Attempts, 2)
	assert.True(t, result.Attempts[0].Skipped)
	assert.Empty(t, missing.Injected())
}

func TestInjectExhaustedPreservesText(t *testing.T) {
	a := &FakeStrategy{StrategyName: "a", InjectErr: errors.New("fail a")}
	b := &FakeStrategy{StrategyName: "b", AvailErr: errors.New("unavailable")}

	in := NewWith(a, b)
	_, err := in.Inject("precious words")
	require.Error(t, err)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "precious words", exhausted.Text)
	assert.Len(t, exhausted.Attempts, 2)
	assert.Contains(t, exhausted.Error(), "a, b")
}

func TestAvailabilityProbedOnce(t *testing.T) {
	probes := 0
	s := &probeCounter{strategy: &FakeStrategy{StrategyName: "counted"}, probes: &probes}

	in := NewWith(s)
	for i := 0; i < 3; i++ {
		_, err := in.Inject("x")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, probes)
}

type probeCounter struct {
	strategy Strategy
	probes   *int
}

func (p *probeCounter) Name() string { return p.strategy.Name() }

func (p *probeCounter) Available() error {
	*p.probes++
	return p.strategy.Available()
}

func (p *probeCounter) Inject(text string) error { return p.strategy.Inject(text) }

func TestNewAppendsClipboardLast(t *testing.T) {
	in, err := New([]string{"synthetic", "tool"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"synthetic", "tool", "clipboard"}, in.Strategies())

	// Explicit clipboard entries never move it off the end.
	in, err = New([]string{"clipboard", "synthetic"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"synthetic", "clipboard"}, in.Strategies())
}

func TestNewRejectsUnknownStrategy(t *testing.T) {
	_, err := New([]string{"telepathy"}, false)
	assert.Error(t, err)
}
