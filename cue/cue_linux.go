//go:build linux

package cue

import (
	"sync"

	"github.com/jfreymuth/pulse"
)

var (
	cache   = map[Kind][]int16{}
	cacheMu sync.Mutex
)

func cachedSamples(kind Kind) []int16 {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	s, ok := cache[kind]
	if !ok {
		s = samplesFor(kind)
		cache[kind] = s
	}
	return s
}

// Play is fire and forget: playback failures are silent because a missing
// sound server must never affect dictation.
func Play(kind Kind) {
	if disabled {
		return
	}
	go playSamples(cachedSamples(kind))
}

func playSamples(samples []int16) {
	if len(samples) == 0 {
		return
	}
	c, err := pulse.NewClient()
	if err != nil {
		return
	}
	defer c.Close()

	pos := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if pos >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[pos:])
		pos += n
		return n, nil
	})
	stream, err := c.NewPlayback(reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.1),
	)
	if err != nil {
		return
	}
	stream.Start()
	stream.Drain()
	stream.Stop()
	stream.Close()
}
