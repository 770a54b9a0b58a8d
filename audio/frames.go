package audio

import (
	"encoding/binary"
	"sync/atomic"
	"time"
)

// Frame is one fixed-size block of mono samples tagged with a monotonic
// sequence number and its capture time. Frames are never mutated after
// construction.
type Frame struct {
	Seq     uint64
	Samples []int16
	Time    time.Time
}

// Duration returns the audio time the frame spans.
func (f Frame) Duration(sampleRate int) time.Duration {
	return time.Duration(len(f.Samples)) * time.Second / time.Duration(sampleRate)
}

// FrameQueue bounds the hand-off between the capture callback and the
// consumer. Push never blocks: when the consumer falls behind, the frame
// is dropped and the overrun flag raised so the session can be aborted
// instead of producing a transcript with a hole in it.
type FrameQueue struct {
	ch      chan Frame
	overrun chan struct{}
	dropped atomic.Uint64
	seq     atomic.Uint64
}

func NewFrameQueue(depth int) *FrameQueue {
	if depth <= 0 {
		depth = 32
	}
	return &FrameQueue{
		ch:      make(chan Frame, depth),
		overrun: make(chan struct{}, 1),
	}
}

// Push converts raw S16LE PCM into a Frame and enqueues it. Called from
// the audio callback; must stay non-blocking.
func (q *FrameQueue) Push(data []byte) {
	if len(data) < 2 {
		return
	}
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	frame := Frame{
		Seq:     q.seq.Add(1) - 1,
		Samples: samples,
		Time:    time.Now(),
	}
	select {
	case q.ch <- frame:
	default:
		q.dropped.Add(1)
		select {
		case q.overrun <- struct{}{}:
		default:
		}
	}
}

// Frames is the consumer side; frames arrive in strict Seq order.
func (q *FrameQueue) Frames() <-chan Frame { return q.ch }

// Overrun fires once per overrun episode.
func (q *FrameQueue) Overrun() <-chan struct{} { return q.overrun }

// Dropped reports how many frames were lost to backpressure.
func (q *FrameQueue) Dropped() uint64 { return q.dropped.Load() }
