package transcriber

import (
	"context"
	"errors"
)

// ErrNoAudio is returned by Close when a session was never fed any samples.
var ErrNoAudio = errors.New("session received no audio")

type Segment struct {
	Text         string
	NoSpeechProb float64
	AvgLogProb   float64
	Start        float64
	End          float64
}

type Result struct {
	Text         string
	NoSpeech     bool
	Confidence   float64
	NoSpeechProb float64
	AudioSeconds float64
	Segments     []Segment
}

type SessionConfig struct {
	Stream     bool
	Format     string // "flac" or "wav"
	Language   string
	SampleRate int
}

// Session accumulates PCM for one utterance. Feed may be called from the
// pipeline goroutine while encoding happens in the background; Close blocks
// until the backend returns a final result.
type Session interface {
	Feed(pcm []int16)
	Updates() <-chan string
	Close() (Result, error)
}

type Transcriber interface {
	Name() string
	SetLanguage(lang string)
	GetLanguage() string
	NewSession(ctx context.Context, cfg SessionConfig) (Session, error)
}

type baseTranscriber struct {
	lang string
}

func (b *baseTranscriber) SetLanguage(lang string) { b.lang = lang }

func (b *baseTranscriber) GetLanguage() string { return b.lang }
