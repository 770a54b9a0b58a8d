package dictation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murmur/audio"
	"murmur/config"
	"murmur/inject"
	"murmur/transcriber"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Audio.QueueDepth = 256
	cfg.Silence.Duration = 500 * time.Millisecond
	return cfg
}

func loudPCM(seconds float64) []int16 {
	samples := make([]int16, int(seconds*16000))
	for i := range samples {
		samples[i] = 5000
	}
	return samples
}

func startMachine(t *testing.T, cfg config.Config, actx audio.Context, tr transcriber.Transcriber, strategies ...inject.Strategy) *Machine {
	t.Helper()
	m := New(cfg, actx, tr, inject.NewWith(strategies...))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return m
}

func collectUntil(t *testing.T, m *Machine, stop func(Event) bool) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-m.Events():
			events = append(events, ev)
			if stop(ev) {
				return events
			}
		case <-timeout:
			t.Fatalf("timed out waiting for event, got %d so far: %+v", len(events), events)
		}
	}
}

func states(events []Event) []State {
	var out []State
	for _, ev := range events {
		if ev.Kind == EventState {
			out = append(out, ev.State)
		}
	}
	return out
}

func waitForIdle(t *testing.T, m *Machine) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.State() == StateIdle {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("machine stuck in %s", m.State())
}

func TestPipelineEndToEnd(t *testing.T) {
	actx := audio.NewFakePCMContext(loudPCM(1.0), 16000, false)
	strategy := &inject.FakeStrategy{StrategyName: "fake-strategy"}
	m := startMachine(t, testConfig(), actx, transcriber.NewFake("hello world", nil), strategy)

	m.Toggle()
	events := collectUntil(t, m, func(ev Event) bool { return ev.Kind == EventInjected })

	last := events[len(events)-1]
	assert.Equal(t, "hello world", last.Text)
	assert.Equal(t, "fake-strategy", last.Strategy)
	assert.Equal(t, []string{"hello world"}, strategy.Injected())

	waitForIdle(t, m)
	assert.Equal(t, []State{StateListening, StateDraining, StateTranscribing, StateInjecting},
		states(events))
	assert.Equal(t, "hello world", m.LastTranscript())
}

func TestDeviceBusyReturnsToIdle(t *testing.T) {
	strategy := &inject.FakeStrategy{StrategyName: "fake-strategy"}
	m := startMachine(t, testConfig(), busyContext{}, transcriber.NewFake("x", nil), strategy)

	m.Toggle()
	events := collectUntil(t, m, func(ev Event) bool { return ev.Kind == EventFailure })

	var devErr *DeviceError
	require.ErrorAs(t, events[len(events)-1].Err, &devErr)
	assert.Empty(t, strategy.Injected())
	waitForIdle(t, m)
}

func TestNoSpeechSession(t *testing.T) {
	actx := audio.NewFakePCMContext(make([]int16, 1600), 16000, false)
	strategy := &inject.FakeStrategy{StrategyName: "fake-strategy"}
	m := startMachine(t, testConfig(), actx, transcriber.NewFake("should never appear", nil), strategy)

	m.Toggle()
	collectUntil(t, m, func(ev Event) bool { return ev.Kind == EventNoSpeech })

	assert.Empty(t, strategy.Injected())
	waitForIdle(t, m)
	assert.Empty(t, m.LastTranscript())
}

func TestOverrunAbortsSession(t *testing.T) {
	cfg := testConfig()
	cfg.Audio.QueueDepth = 2

	actx := audio.NewFakePCMContext(loudPCM(2.0), 16000, false)
	m := startMachine(t, cfg, actx, transcriber.NewFake("x", nil), &inject.FakeStrategy{StrategyName: "s"})

	m.Toggle()
	events := collectUntil(t, m, func(ev Event) bool { return ev.Kind == EventFailure })

	var overrun *OverrunError
	require.ErrorAs(t, events[len(events)-1].Err, &overrun)
	waitForIdle(t, m)
}

func TestToggleStopsListening(t *testing.T) {
	cfg := testConfig()
	cfg.Silence.Duration = 5 * time.Second // no natural boundary during the test

	actx := audio.NewFakePCMContext(loudPCM(10.0), 16000, true)
	strategy := &inject.FakeStrategy{StrategyName: "fake-strategy"}
	m := startMachine(t, cfg, actx, transcriber.NewFake("stopped by hand", nil), strategy)

	m.Toggle()
	collectUntil(t, m, func(ev Event) bool { return ev.Kind == EventSession })
	time.Sleep(300 * time.Millisecond) // let some speech accumulate
	m.Toggle()

	collectUntil(t, m, func(ev Event) bool { return ev.Kind == EventInjected })
	assert.Equal(t, []string{"stopped by hand"}, strategy.Injected())
	waitForIdle(t, m)
}

func TestBackendFailureIsRecoverable(t *testing.T) {
	actx := audio.NewFakePCMContext(loudPCM(1.0), 16000, false)
	m := startMachine(t, testConfig(), actx, transcriber.NewFake("", errors.New("api down")),
		&inject.FakeStrategy{StrategyName: "s"})

	for i := 0; i < 2; i++ {
		m.Toggle()
		events := collectUntil(t, m, func(ev Event) bool { return ev.Kind == EventFailure })

		var backendErr *BackendError
		require.ErrorAs(t, events[len(events)-1].Err, &backendErr, "session %d", i)
		waitForIdle(t, m)
	}
}

func TestInjectionExhaustionKeepsTranscript(t *testing.T) {
	actx := audio.NewFakePCMContext(loudPCM(1.0), 16000, false)
	broken := &inject.FakeStrategy{StrategyName: "broken", InjectErr: errors.New("denied")}
	m := startMachine(t, testConfig(), actx, transcriber.NewFake("do not lose me", nil), broken)

	m.Toggle()
	events := collectUntil(t, m, func(ev Event) bool { return ev.Kind == EventFailure })

	var exhausted *inject.ExhaustedError
	require.ErrorAs(t, events[len(events)-1].Err, &exhausted)
	assert.Equal(t, "do not lose me", exhausted.Text)
	// The transcript survives for copy-last even though injection failed.
	assert.Equal(t, "do not lose me", m.LastTranscript())
	waitForIdle(t, m)
}

func TestStreamingModeFeedsWindows(t *testing.T) {
	cfg := testConfig()
	cfg.Buffer.Mode = config.ModeStreaming
	cfg.Buffer.Window = 250 * time.Millisecond

	actx := audio.NewFakePCMContext(loudPCM(1.0), 16000, false)
	strategy := &inject.FakeStrategy{StrategyName: "fake-strategy"}
	m := startMachine(t, cfg, actx, transcriber.NewFake("streamed text", nil), strategy)

	m.Toggle()
	events := collectUntil(t, m, func(ev Event) bool { return ev.Kind == EventInjected })

	partials := 0
	for _, ev := range events {
		if ev.Kind == EventPartial {
			partials++
		}
	}
	assert.Greater(t, partials, 0, "streaming sessions publish partial transcripts")
	assert.Equal(t, []string{"streamed text"}, strategy.Injected())
}

func TestCopyLastWithoutTranscript(t *testing.T) {
	m := New(testConfig(), busyContext{}, transcriber.NewFake("x", nil), inject.NewWith())
	assert.Error(t, m.CopyLast())
}

type busyContext struct{}

func (busyContext) Devices() ([]audio.DeviceInfo, error) {
	return []audio.DeviceInfo{{ID: "busy", Name: "busy"}}, nil
}

func (busyContext) NewCapture(*audio.DeviceInfo, audio.CaptureConfig) (audio.CaptureDevice, error) {
	return &busyCapture{}, nil
}

func (busyContext) Close() {}

type busyCapture struct{}

func (*busyCapture) Start() error                   { return audio.ErrCaptureActive }
func (*busyCapture) Stop()                          {}
func (*busyCapture) Close()                         {}
func (*busyCapture) SetCallback(audio.DataCallback) {}
func (*busyCapture) ClearCallback()                 {}
func (*busyCapture) DeviceName() string             { return "busy" }
