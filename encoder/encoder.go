// Package encoder turns captured PCM into upload formats for HTTP
// transcription backends.
package encoder

import "time"

const (
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	Bytes() []byte
	TotalFrames() uint64
	AddEncodeTime(d time.Duration)
	EncodeTime() time.Duration
}

// New returns an encoder for the configured upload format.
func New(format string, sampleRate int) (Encoder, error) {
	switch format {
	case "flac":
		return NewFlac(sampleRate)
	default:
		return NewWav(sampleRate), nil
	}
}

// Encode runs a whole sample buffer through a fresh encoder.
func Encode(format string, sampleRate int, samples []int16) ([]byte, error) {
	enc, err := New(format, sampleRate)
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(samples); i += BlockSize {
		end := min(i+BlockSize, len(samples))
		if err := enc.EncodeBlock(samples[i:end]); err != nil {
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}
