package dictation

import (
	"time"

	"murmur/audio"
)

// StreamBuffer accumulates in-order frames for one session. Sequence numbers
// must be contiguous; a gap means frames were lost upstream and the buffered
// audio can no longer be trusted.
type StreamBuffer struct {
	sampleRate int
	window     uint64 // samples per streaming window

	samples []int16
	nextSeq uint64
	started bool
	total   uint64
}

func NewStreamBuffer(sampleRate int, window time.Duration) *StreamBuffer {
	return &StreamBuffer{
		sampleRate: sampleRate,
		window:     uint64(window.Seconds() * float64(sampleRate)),
	}
}

// Append adds a frame. Returns an OverrunError if the frame does not follow
// the previous one.
func (b *StreamBuffer) Append(f audio.Frame) error {
	if b.started && f.Seq != b.nextSeq {
		return &OverrunError{Dropped: f.Seq - b.nextSeq}
	}
	b.started = true
	b.nextSeq = f.Seq + 1
	b.samples = append(b.samples, f.Samples...)
	b.total += uint64(len(f.Samples))
	return nil
}

// WindowReady reports whether a full streaming window is buffered.
func (b *StreamBuffer) WindowReady() bool {
	return b.window > 0 && uint64(len(b.samples)) >= b.window
}

// TakeWindow removes and returns one streaming window of samples.
func (b *StreamBuffer) TakeWindow() []int16 {
	n := int(b.window)
	if n > len(b.samples) {
		n = len(b.samples)
	}
	out := make([]int16, n)
	copy(out, b.samples[:n])
	b.samples = b.samples[n:]
	return out
}

// Take removes and returns everything buffered.
func (b *StreamBuffer) Take() []int16 {
	out := b.samples
	b.samples = nil
	return out
}

// Len is the number of samples currently buffered.
func (b *StreamBuffer) Len() int { return len(b.samples) }

// Duration is the total audio time appended over the session's lifetime,
// including samples already taken.
func (b *StreamBuffer) Duration() time.Duration {
	return time.Duration(b.total) * time.Second / time.Duration(b.sampleRate)
}
