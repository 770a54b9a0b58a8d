package dictation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murmur/audio"
)

func frame(seq uint64, samples ...int16) audio.Frame {
	return audio.Frame{Seq: seq, Samples: samples, Time: time.Now()}
}

func TestBufferPreservesOrder(t *testing.T) {
	b := NewStreamBuffer(16000, 0)

	require.NoError(t, b.Append(frame(0, 1, 2)))
	require.NoError(t, b.Append(frame(1, 3)))
	require.NoError(t, b.Append(frame(2, 4, 5)))

	assert.Equal(t, []int16{1, 2, 3, 4, 5}, b.Take())
	assert.Zero(t, b.Len())
}

func TestBufferDetectsGap(t *testing.T) {
	b := NewStreamBuffer(16000, 0)

	require.NoError(t, b.Append(frame(5, 1)))
	require.NoError(t, b.Append(frame(6, 2)))

	err := b.Append(frame(9, 3))
	require.Error(t, err)
	var overrun *OverrunError
	require.ErrorAs(t, err, &overrun)
	assert.Equal(t, uint64(2), overrun.Dropped)
}

func TestBufferFirstFrameAnySeq(t *testing.T) {
	b := NewStreamBuffer(16000, 0)
	// The queue may have dropped nothing yet started mid-stream.
	assert.NoError(t, b.Append(frame(42, 1)))
	assert.Error(t, b.Append(frame(44, 2)))
}

func TestBufferWindows(t *testing.T) {
	b := NewStreamBuffer(1000, 10*time.Millisecond) // window = 10 samples

	require.NoError(t, b.Append(frame(0, make([]int16, 8)...)))
	assert.False(t, b.WindowReady())

	require.NoError(t, b.Append(frame(1, make([]int16, 8)...)))
	require.True(t, b.WindowReady())

	assert.Len(t, b.TakeWindow(), 10)
	assert.Equal(t, 6, b.Len())
	assert.False(t, b.WindowReady())
}

func TestBufferDurationIncludesTaken(t *testing.T) {
	b := NewStreamBuffer(1000, 10*time.Millisecond)

	require.NoError(t, b.Append(frame(0, make([]int16, 500)...)))
	b.TakeWindow()
	require.NoError(t, b.Append(frame(1, make([]int16, 500)...)))

	assert.Equal(t, time.Second, b.Duration())
}

func TestBufferNoWindowInUtteranceMode(t *testing.T) {
	b := NewStreamBuffer(16000, 0)
	require.NoError(t, b.Append(frame(0, make([]int16, 100000)...)))
	assert.False(t, b.WindowReady())
}
