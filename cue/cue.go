// Package cue plays short audible ticks so the user knows the microphone
// state without looking at a screen.
package cue

import "math"

type Kind int

const (
	Listen Kind = iota // capture started
	Done               // text delivered
	Error              // session failed
)

var disabled bool

func Disable() { disabled = true }

const (
	sampleRate = 44100

	listenFreq   = 1100.0
	listenVolume = 0.45
	listenDecay  = 55.0

	doneFreq   = 850.0
	doneVolume = 0.45
	doneDecay  = 35.0

	errorFreq   = 330.0
	errorVolume = 0.55
	errorDecay  = 28.0
)

// tone renders a mono sine tick with an exponential decay envelope. The tail
// padding keeps short ticks from being cut off by playback buffering.
func tone(freq, duration, volume, decay float64) []int16 {
	n := int(sampleRate * duration)
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		envelope := math.Exp(-t * decay)
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
	}
	return samples
}

func doubleTone(freq, beepDur, gapDur, volume, decay float64) []int16 {
	beep := tone(freq, beepDur, volume, decay)
	gap := make([]int16, int(sampleRate*gapDur))
	out := make([]int16, 0, len(beep)*2+len(gap))
	out = append(out, beep...)
	out = append(out, gap...)
	out = append(out, beep...)
	return out
}

func samplesFor(kind Kind) []int16 {
	switch kind {
	case Listen:
		return tone(listenFreq, 0.2, listenVolume, listenDecay)
	case Done:
		return tone(doneFreq, 0.2, doneVolume, doneDecay)
	case Error:
		return doubleTone(errorFreq, 0.08, 0.05, errorVolume, errorDecay)
	}
	return nil
}
