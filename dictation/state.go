package dictation

import "fmt"

type State string

type Trigger string

const (
	StateIdle         State = "idle"
	StateListening    State = "listening"
	StateDraining     State = "draining"
	StateTranscribing State = "transcribing"
	StateInjecting    State = "injecting"
	StateError        State = "error"
)

const (
	TriggerActivate    Trigger = "activate"
	TriggerDeactivate  Trigger = "deactivate"
	TriggerBoundary    Trigger = "boundary"
	TriggerDrained     Trigger = "drained"
	TriggerTranscribed Trigger = "transcribed"
	TriggerNoSpeech    Trigger = "no-speech"
	TriggerInjected    Trigger = "injected"
	TriggerFail        Trigger = "fail"
	TriggerReset       Trigger = "reset"
)

// Transition is pure: it maps the current state and a trigger to the next
// state without side effects. TriggerFail is accepted from any state.
func Transition(current State, trigger Trigger) (State, error) {
	if trigger == TriggerFail {
		return StateError, nil
	}

	switch current {
	case StateIdle:
		if trigger == TriggerActivate {
			return StateListening, nil
		}
	case StateListening:
		switch trigger {
		case TriggerDeactivate, TriggerBoundary:
			return StateDraining, nil
		}
	case StateDraining:
		if trigger == TriggerDrained {
			return StateTranscribing, nil
		}
	case StateTranscribing:
		switch trigger {
		case TriggerTranscribed:
			return StateInjecting, nil
		case TriggerNoSpeech:
			return StateIdle, nil
		}
	case StateInjecting:
		if trigger == TriggerInjected {
			return StateIdle, nil
		}
	case StateError:
		if trigger == TriggerReset {
			return StateIdle, nil
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
	return current, fmt.Errorf("invalid transition: %s --(%s)--> ?", current, trigger)
}
