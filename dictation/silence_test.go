package dictation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 16000

func loudChunk(n int) []int16 {
	chunk := make([]int16, n)
	for i := range chunk {
		chunk[i] = 5000
	}
	return chunk
}

// Three seconds of speech followed by silence: with a two second minimum the
// boundary must land exactly at the five second mark of audio time.
func TestBoundaryAfterTrailingSilence(t *testing.T) {
	d := NewSilenceDetector(0.01, 2*time.Second, testRate)

	chunk := 1000 // samples per feed
	for i := 0; i < 48; i++ {
		assert.False(t, d.Feed(loudChunk(chunk)), "boundary during speech at chunk %d", i)
	}

	zeros := make([]int16, chunk)
	fired := -1
	for i := 0; i < 60; i++ {
		if d.Feed(zeros) {
			fired = i
			break
		}
	}
	// 2s of silence is 32 chunks; the boundary fires on the 32nd.
	require.Equal(t, 31, fired)
	assert.True(t, d.HasSpeech())
	assert.Equal(t, 3*time.Second, d.SpeechDuration())
}

func TestBoundaryFiresOnce(t *testing.T) {
	d := NewSilenceDetector(0.01, 100*time.Millisecond, testRate)

	zeros := make([]int16, 1600)
	require.True(t, d.Feed(zeros))
	for i := 0; i < 10; i++ {
		assert.False(t, d.Feed(zeros), "boundary must latch")
	}
}

// A session with no speech at all still ends, measured from session start.
func TestSilentOnlySession(t *testing.T) {
	d := NewSilenceDetector(0.01, 2*time.Second, testRate)

	zeros := make([]int16, 1000)
	fired := -1
	for i := 0; i < 40; i++ {
		if d.Feed(zeros) {
			fired = i
			break
		}
	}
	require.Equal(t, 31, fired)
	assert.False(t, d.HasSpeech())
}

func TestNoBoundaryBeforeMinimumSilence(t *testing.T) {
	d := NewSilenceDetector(0.01, 2*time.Second, testRate)

	for i := 0; i < 16; i++ {
		assert.False(t, d.Feed(loudChunk(1000)))
	}
	// Only 1.5s of trailing silence: not enough.
	zeros := make([]int16, 1000)
	for i := 0; i < 24; i++ {
		assert.False(t, d.Feed(zeros))
	}
}

func TestSpeechResetsSilenceRun(t *testing.T) {
	d := NewSilenceDetector(0.01, 1*time.Second, testRate)

	zeros := make([]int16, 1000)
	// 0.9s silence, then speech, then the run must start over.
	for i := 0; i < 14; i++ {
		require.False(t, d.Feed(zeros))
	}
	require.False(t, d.Feed(loudChunk(1000)))
	for i := 0; i < 15; i++ {
		require.False(t, d.Feed(zeros), "silence run must restart after speech, chunk %d", i)
	}
	assert.True(t, d.Feed(zeros))
}

func TestDetectorReset(t *testing.T) {
	d := NewSilenceDetector(0.01, 100*time.Millisecond, testRate)

	require.True(t, d.Feed(make([]int16, 1600)))
	d.Reset()
	assert.False(t, d.HasSpeech())
	assert.True(t, d.Feed(make([]int16, 1600)), "reset must rearm the boundary")
}

func TestRMS(t *testing.T) {
	assert.Zero(t, RMS(nil))
	assert.Zero(t, RMS(make([]int16, 100)))

	full := make([]int16, 100)
	for i := range full {
		full[i] = 32767
	}
	assert.InDelta(t, 1.0, RMS(full), 0.001)

	quiet := make([]int16, 100)
	for i := range quiet {
		quiet[i] = 100
	}
	assert.Less(t, RMS(quiet), 0.01)
}
