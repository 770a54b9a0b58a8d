package transcriber

import (
	"context"
	"fmt"
	"sync"
)

type FakeTranscriber struct {
	text string
	err  error
	lang string
}

func NewFake(text string, err error) *FakeTranscriber {
	return &FakeTranscriber{text: text, err: err}
}

func (f *FakeTranscriber) Name() string           { return "fake" }
func (f *FakeTranscriber) SetLanguage(lang string) { f.lang = lang }
func (f *FakeTranscriber) GetLanguage() string     { return f.lang }

func (f *FakeTranscriber) NewSession(_ context.Context, cfg SessionConfig) (Session, error) {
	return &fakeSession{
		text:       f.text,
		err:        f.err,
		stream:     cfg.Stream,
		sampleRate: cfg.SampleRate,
		updates:    make(chan string, 4),
	}, nil
}

type fakeSession struct {
	text       string
	err        error
	stream     bool
	sampleRate int
	updates    chan string

	mu     sync.Mutex
	frames uint64
}

func (s *fakeSession) Feed(pcm []int16) {
	s.mu.Lock()
	s.frames += uint64(len(pcm))
	s.mu.Unlock()
	if s.stream && s.text != "" {
		select {
		case s.updates <- s.text:
		default:
		}
	}
}

func (s *fakeSession) Updates() <-chan string { return s.updates }

func (s *fakeSession) Close() (Result, error) {
	close(s.updates)
	if s.err != nil {
		return Result{}, fmt.Errorf("fake transcriber: %w", s.err)
	}
	s.mu.Lock()
	frames := s.frames
	s.mu.Unlock()
	if frames == 0 {
		return Result{}, ErrNoAudio
	}
	seconds := float64(frames) / float64(s.sampleRate)
	return Result{
		Text:         s.text,
		NoSpeech:     s.text == "",
		Confidence:   0.99,
		AudioSeconds: seconds,
	}, nil
}
