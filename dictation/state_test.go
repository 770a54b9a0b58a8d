package dictation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionValid(t *testing.T) {
	for _, tt := range []struct {
		from    State
		trigger Trigger
		want    State
	}{
		{StateIdle, TriggerActivate, StateListening},
		{StateListening, TriggerDeactivate, StateDraining},
		{StateListening, TriggerBoundary, StateDraining},
		{StateDraining, TriggerDrained, StateTranscribing},
		{StateTranscribing, TriggerTranscribed, StateInjecting},
		{StateTranscribing, TriggerNoSpeech, StateIdle},
		{StateInjecting, TriggerInjected, StateIdle},
		{StateError, TriggerReset, StateIdle},
	} {
		t.Run(string(tt.from)+"_"+string(tt.trigger), func(t *testing.T) {
			got, err := Transition(tt.from, tt.trigger)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransitionFailFromAnyState(t *testing.T) {
	for _, from := range []State{StateIdle, StateListening, StateDraining, StateTranscribing, StateInjecting, StateError} {
		got, err := Transition(from, TriggerFail)
		require.NoError(t, err)
		assert.Equal(t, StateError, got)
	}
}

func TestTransitionInvalid(t *testing.T) {
	for _, tt := range []struct {
		from    State
		trigger Trigger
	}{
		{StateIdle, TriggerDeactivate},
		{StateIdle, TriggerDrained},
		{StateListening, TriggerActivate},
		{StateListening, TriggerInjected},
		{StateDraining, TriggerBoundary},
		{StateTranscribing, TriggerActivate},
		{StateInjecting, TriggerTranscribed},
		{StateError, TriggerActivate},
	} {
		got, err := Transition(tt.from, tt.trigger)
		assert.Error(t, err, "%s + %s", tt.from, tt.trigger)
		assert.Equal(t, tt.from, got, "invalid transitions must not move the state")
	}
}

func TestTransitionUnknownState(t *testing.T) {
	_, err := Transition(State("limbo"), TriggerActivate)
	assert.Error(t, err)
}
