package transcriber

import (
	"strings"
	"sync"
	"sync/atomic"

	"murmur/encoder"
)

// streamSession transcribes each fed window independently and publishes the
// running transcript on Updates. Used when the pipeline buffers in streaming
// mode; backends that cannot stream natively still get incremental results
// this way, at the cost of losing cross-window context.
type streamSession struct {
	cfg         SessionConfig
	transcribe  transcribeFunc
	chunks      chan []int16
	updates     chan string
	workerDone  chan struct{}
	parts       []string
	segments    []Segment
	totalFrames uint64
	closed      atomic.Bool
	err         error

	// Windows the worker has not picked up yet. When the backend lags,
	// new audio merges here instead of blocking the caller; the merged
	// window ships as one coarser chunk once a slot frees up.
	pendMu  sync.Mutex
	pending []int16
}

func newStreamSession(cfg SessionConfig, transcribe transcribeFunc) (*streamSession, error) {
	ss := &streamSession{
		cfg:        cfg,
		transcribe: transcribe,
		chunks:     make(chan []int16, 8),
		updates:    make(chan string, 8),
		workerDone: make(chan struct{}),
	}
	go ss.run()
	return ss, nil
}

func (ss *streamSession) run() {
	defer close(ss.workerDone)
	for chunk := range ss.chunks {
		offset := float64(ss.totalFrames) / float64(ss.cfg.SampleRate)
		ss.totalFrames += uint64(len(chunk))

		data, err := encoder.Encode(ss.cfg.Format, ss.cfg.SampleRate, chunk)
		if err != nil {
			ss.err = err
			continue
		}
		result, err := ss.transcribe(data, ss.cfg.Format)
		if err != nil {
			ss.err = err
			continue
		}
		text := strings.TrimSpace(result.Text)
		if text == "" {
			continue
		}
		ss.parts = append(ss.parts, text)
		for _, seg := range result.Segments {
			seg.Start += offset
			seg.End += offset
			ss.segments = append(ss.segments, seg)
		}
		select {
		case ss.updates <- strings.Join(ss.parts, " "):
		default:
		}
	}
}

// Feed never blocks: the capture loop calling it must keep draining the
// device even when the backend is slow.
func (ss *streamSession) Feed(pcm []int16) {
	if ss.closed.Load() {
		return
	}
	ss.pendMu.Lock()
	defer ss.pendMu.Unlock()
	ss.pending = append(ss.pending, pcm...)
	chunk := make([]int16, len(ss.pending))
	copy(chunk, ss.pending)
	select {
	case ss.chunks <- chunk:
		ss.pending = ss.pending[:0]
	default:
	}
}

func (ss *streamSession) Updates() <-chan string {
	return ss.updates
}

func (ss *streamSession) Close() (Result, error) {
	if ss.closed.Swap(true) {
		return Result{}, ErrNoAudio
	}
	// Capture has stopped: blocking here to flush the carried audio is
	// fine, the worker will drain the channel.
	ss.pendMu.Lock()
	if len(ss.pending) > 0 {
		chunk := make([]int16, len(ss.pending))
		copy(chunk, ss.pending)
		ss.pending = nil
		ss.pendMu.Unlock()
		ss.chunks <- chunk
	} else {
		ss.pendMu.Unlock()
	}
	close(ss.chunks)
	<-ss.workerDone
	close(ss.updates)

	if ss.totalFrames == 0 {
		return Result{}, ErrNoAudio
	}
	text := strings.Join(ss.parts, " ")
	if text == "" && ss.err != nil {
		return Result{}, ss.err
	}
	return Result{
		Text:         text,
		NoSpeech:     text == "",
		AudioSeconds: float64(ss.totalFrames) / float64(ss.cfg.SampleRate),
		Segments:     ss.segments,
	}, nil
}
