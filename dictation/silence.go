package dictation

import (
	"math"
	"time"
)

// SilenceDetector decides when an utterance has ended. Time is measured in
// samples, not wall clock, so replayed audio behaves exactly like live audio.
// A session that never contains speech still fires one boundary once the
// minimum silence has elapsed from its start.
type SilenceDetector struct {
	threshold  float64
	sampleRate int
	minSilence uint64 // in samples

	samplesSeen uint64
	speechEnd   uint64 // sample index just past the last speech frame
	sawSpeech   bool
	fired       bool
}

func NewSilenceDetector(threshold float64, minSilence time.Duration, sampleRate int) *SilenceDetector {
	return &SilenceDetector{
		threshold:  threshold,
		sampleRate: sampleRate,
		minSilence: uint64(minSilence.Seconds() * float64(sampleRate)),
	}
}

// Feed consumes one frame and reports whether the utterance boundary was
// reached. At most one boundary fires per session; Reset rearms it.
func (d *SilenceDetector) Feed(samples []int16) bool {
	if RMS(samples) >= d.threshold {
		d.sawSpeech = true
		d.speechEnd = d.samplesSeen + uint64(len(samples))
	}
	d.samplesSeen += uint64(len(samples))

	if d.fired {
		return false
	}
	if d.samplesSeen-d.speechEnd >= d.minSilence {
		d.fired = true
		return true
	}
	return false
}

func (d *SilenceDetector) HasSpeech() bool { return d.sawSpeech }

// SpeechDuration is the audio time from session start to the end of the last
// speech frame.
func (d *SilenceDetector) SpeechDuration() time.Duration {
	return time.Duration(d.speechEnd) * time.Second / time.Duration(d.sampleRate)
}

func (d *SilenceDetector) Reset() {
	d.samplesSeen = 0
	d.speechEnd = 0
	d.sawSpeech = false
	d.fired = false
}

// RMS computes the root mean square of the frame, normalized to 0..1.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s) / 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}
