package dictation

import "time"

type EventKind string

const (
	EventState    EventKind = "state"    // state transition
	EventSession  EventKind = "session"  // capture session started
	EventLevel    EventKind = "level"    // audio level sample, Value is RMS
	EventPartial  EventKind = "partial"  // streaming transcript so far
	EventFinal    EventKind = "final"    // utterance transcribed
	EventInjected EventKind = "injected" // text delivered
	EventNoSpeech EventKind = "no-speech"
	EventFailure  EventKind = "failure"
)

// Event is what the display layer and logs consume. Fields beyond Kind are
// populated per kind; Err only for EventFailure.
type Event struct {
	Kind      EventKind
	State     State
	SessionID string
	Text      string
	Strategy  string
	Attempts  int
	Value     float64
	Seconds   float64
	Err       error
	Time      time.Time
}

// emit never blocks. If the consumer lags behind the buffer, events are
// dropped rather than stalling the pipeline.
func (m *Machine) emit(ev Event) {
	ev.Time = time.Now()
	select {
	case m.events <- ev:
	default:
	}
}
