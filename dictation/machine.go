package dictation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"murmur/audio"
	"murmur/config"
	"murmur/inject"
	"murmur/log"
	"murmur/transcriber"
)

// minUtterance is the shortest audio worth sending to a backend. Anything
// below this is treated as an accidental toggle.
const minUtterance = 100 * time.Millisecond

// Machine runs the dictation pipeline: one capture session at a time, driven
// by toggle requests and silence boundaries. All session work happens on the
// Run goroutine; Toggle and CopyLast are safe from any goroutine.
type Machine struct {
	cfg      config.Config
	audioCtx audio.Context
	trans    transcriber.Transcriber
	injector *inject.Injector

	// A single-slot queue: a toggle pressed while the machine is busy
	// draining or transcribing is remembered, not lost.
	toggles chan struct{}
	events  chan Event

	mu       sync.Mutex
	state    State
	lastText string
	sessions int
}

func New(cfg config.Config, audioCtx audio.Context, trans transcriber.Transcriber, injector *inject.Injector) *Machine {
	return &Machine{
		cfg:      cfg,
		audioCtx: audioCtx,
		trans:    trans,
		injector: injector,
		toggles:  make(chan struct{}, 1),
		events:   make(chan Event, 64),
		state:    StateIdle,
	}
}

func (m *Machine) Events() <-chan Event { return m.events }

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Toggle requests activation or deactivation. Non-blocking: if a toggle is
// already pending, another press is a no-op.
func (m *Machine) Toggle() {
	select {
	case m.toggles <- struct{}{}:
	default:
	}
}

// LastTranscript returns the most recent successfully transcribed text.
func (m *Machine) LastTranscript() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastText
}

// CopyLast places the last transcript on the clipboard.
func (m *Machine) CopyLast() error {
	text := m.LastTranscript()
	if text == "" {
		return errors.New("no transcript yet")
	}
	return inject.Copy(text)
}

// Run services toggles until ctx is cancelled. A toggle in Idle starts a
// session; the session then owns the toggle channel until it completes.
func (m *Machine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.toggles:
		}
		m.runSession(ctx)

		// A toggle queued while the session was past Listening was meant
		// to stop it; the session already stopped, so consume it.
		select {
		case <-m.toggles:
		default:
		}
	}
}

func (m *Machine) transition(trigger Trigger) {
	m.mu.Lock()
	next, err := Transition(m.state, trigger)
	if err != nil {
		m.mu.Unlock()
		log.Warnf("ignoring %v", err)
		return
	}
	m.state = next
	m.mu.Unlock()
	m.emit(Event{Kind: EventState, State: next})
}

// fail reports the error, parks the machine in Error, and immediately
// recovers to Idle. No session failure is fatal to the process.
func (m *Machine) fail(sessionID string, err error) {
	log.Errorf("session %s: %v", sessionID, err)
	m.transition(TriggerFail)
	m.emit(Event{Kind: EventFailure, SessionID: sessionID, Err: err, State: StateError})
	m.transition(TriggerReset)
}

func (m *Machine) runSession(parent context.Context) {
	sessionID := uuid.NewString()
	streaming := m.cfg.Buffer.Mode == config.ModeStreaming

	device, err := audio.FindDevice(m.audioCtx, m.cfg.Audio.Device)
	if err != nil {
		m.fail(sessionID, &DeviceError{Device: m.cfg.Audio.Device, Err: err})
		return
	}
	capture, err := m.audioCtx.NewCapture(device, audio.CaptureConfig{
		SampleRate: uint32(m.cfg.Audio.SampleRate),
		Channels:   uint32(m.cfg.Audio.Channels),
	})
	if err != nil {
		m.fail(sessionID, &DeviceError{Device: m.cfg.Audio.Device, Err: err})
		return
	}
	defer capture.Close()

	queue := audio.NewFrameQueue(m.cfg.Audio.QueueDepth)
	capture.SetCallback(func(data []byte, _ uint32) { queue.Push(data) })
	defer capture.ClearCallback()

	// The device must be live before the machine claims to be listening.
	// A busy or vanished device leaves the state untouched.
	if err := capture.Start(); err != nil {
		m.fail(sessionID, &DeviceError{Device: capture.DeviceName(), Err: err})
		return
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	session, err := m.trans.NewSession(ctx, transcriber.SessionConfig{
		Stream:     streaming,
		Format:     m.cfg.Model.Format,
		Language:   m.cfg.Model.Language,
		SampleRate: m.cfg.Audio.SampleRate,
	})
	if err != nil {
		capture.Stop()
		m.fail(sessionID, &BackendError{Backend: m.trans.Name(), Err: err})
		return
	}

	m.transition(TriggerActivate)
	m.emit(Event{Kind: EventSession, SessionID: sessionID, State: StateListening})
	log.SessionStart(m.trans.Name(), string(m.cfg.Buffer.Mode))

	// Forward streaming updates while the session runs.
	go func() {
		for text := range session.Updates() {
			m.emit(Event{Kind: EventPartial, SessionID: sessionID, Text: text})
		}
	}()

	detector := NewSilenceDetector(m.cfg.Silence.Threshold, m.cfg.Silence.Duration, m.cfg.Audio.SampleRate)
	buffer := NewStreamBuffer(m.cfg.Audio.SampleRate, m.cfg.Buffer.Window)

	exit, listenErr := m.listen(ctx, queue, detector, buffer, session, streaming)

	capture.Stop()
	if listenErr != nil {
		drainSession(session)
		if errors.Is(listenErr, context.Canceled) {
			// Shutdown, not a session failure.
			return
		}
		m.fail(sessionID, listenErr)
		return
	}

	// Capture is stopped; whatever is still queued belongs to this
	// utterance.
	m.transition(exit)
	if err := drainQueue(queue, buffer, detector); err != nil {
		drainSession(session)
		m.fail(sessionID, err)
		return
	}
	m.transition(TriggerDrained)

	// Too short or never had speech: skip the backend entirely.
	if !detector.HasSpeech() || buffer.Duration() < minUtterance {
		drainSession(session)
		m.noSpeech(sessionID)
		return
	}

	if streaming {
		if buffer.Len() > 0 {
			session.Feed(buffer.Take())
		}
	} else {
		session.Feed(buffer.Take())
	}

	start := time.Now()
	result, err := session.Close()
	if err != nil {
		if errors.Is(err, transcriber.ErrNoAudio) {
			m.noSpeech(sessionID)
			return
		}
		m.fail(sessionID, &BackendError{Backend: m.trans.Name(), Err: err})
		return
	}
	log.Transcription(m.trans.Name(), result.AudioSeconds, float64(time.Since(start).Milliseconds()), result.Confidence)

	if result.NoSpeech {
		m.noSpeech(sessionID)
		return
	}
	log.TranscriptionText(result.Text)
	m.transition(TriggerTranscribed)
	m.emit(Event{Kind: EventFinal, SessionID: sessionID, Text: result.Text, Seconds: result.AudioSeconds})

	m.mu.Lock()
	m.lastText = result.Text
	m.sessions++
	count := m.sessions
	m.mu.Unlock()

	injectResult, err := m.injector.Inject(result.Text)
	if err != nil {
		log.Injection("", len(injectResult.Attempts), false)
		m.fail(sessionID, err)
		return
	}
	log.Injection(injectResult.Strategy, len(injectResult.Attempts), true)
	log.SessionEnd(count)

	m.emit(Event{
		Kind:      EventInjected,
		SessionID: sessionID,
		Text:      result.Text,
		Strategy:  injectResult.Strategy,
		Attempts:  len(injectResult.Attempts),
	})
	m.transition(TriggerInjected)
}

// listen pumps frames until a silence boundary, a deactivation toggle, the
// session cap, or an error. The returned trigger records which exit ended
// the listening phase.
func (m *Machine) listen(ctx context.Context, queue *audio.FrameQueue,
	detector *SilenceDetector, buffer *StreamBuffer, session transcriber.Session, streaming bool) (Trigger, error) {

	levelTick := time.NewTicker(100 * time.Millisecond)
	defer levelTick.Stop()
	var level float64

	for {
		select {
		case <-ctx.Done():
			return TriggerDeactivate, ctx.Err()

		case <-m.toggles:
			log.Debugf("deactivation requested")
			return TriggerDeactivate, nil

		case <-queue.Overrun():
			return TriggerDeactivate, &OverrunError{Dropped: queue.Dropped()}

		case <-levelTick.C:
			m.emit(Event{Kind: EventLevel, Value: level})

		case frame := <-queue.Frames():
			level = RMS(frame.Samples)
			if err := buffer.Append(frame); err != nil {
				return TriggerDeactivate, err
			}
			boundary := detector.Feed(frame.Samples)
			if streaming && buffer.WindowReady() {
				session.Feed(buffer.TakeWindow())
			}
			if boundary {
				log.Debugf("silence boundary after %.1fs", buffer.Duration().Seconds())
				return TriggerBoundary, nil
			}
			if buffer.Duration() >= m.cfg.Silence.MaxSession {
				log.Debugf("session cap reached at %.1fs", buffer.Duration().Seconds())
				return TriggerBoundary, nil
			}
		}
	}
}

func (m *Machine) noSpeech(sessionID string) {
	log.Info("no speech detected")
	m.transition(TriggerNoSpeech)
	m.emit(Event{Kind: EventNoSpeech, SessionID: sessionID})
}

// drainQueue empties whatever the callback pushed before Stop returned.
func drainQueue(queue *audio.FrameQueue, buffer *StreamBuffer, detector *SilenceDetector) error {
	for {
		select {
		case frame := <-queue.Frames():
			if err := buffer.Append(frame); err != nil {
				return err
			}
			detector.Feed(frame.Samples)
		default:
			return nil
		}
	}
}

// drainSession closes an abandoned transcriber session, discarding its
// result. Errors are expected (often ErrNoAudio) and irrelevant.
func drainSession(session transcriber.Session) {
	session.Close() //nolint:errcheck
}
