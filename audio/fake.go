package audio

import (
	"encoding/binary"
	"os"
	"sync"
	"time"
)

const (
	fakeFrameSize     = 1024
	fakeBytesPerFrame = 2 // 16-bit mono
)

// FakeContext replays pre-recorded PCM through the CaptureDevice interface
// so the pipeline can be exercised without hardware.
type FakeContext struct {
	pcm        []byte
	sampleRate int
	realtime   bool
}

// NewFakeContext loads a WAV file (header skipped) for replay. In realtime
// mode frames are paced at the sample rate; otherwise they are delivered
// as fast as the consumer accepts, followed by synthetic silence.
func NewFakeContext(wavPath string, sampleRate int, realtime bool) (*FakeContext, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, err
	}
	if len(data) > WAVHeaderSize {
		data = data[WAVHeaderSize:]
	}
	return &FakeContext{pcm: data, sampleRate: sampleRate, realtime: realtime}, nil
}

// NewFakePCMContext replays int16 samples directly; used by tests.
func NewFakePCMContext(samples []int16, sampleRate int, realtime bool) *FakeContext {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return &FakeContext{pcm: data, sampleRate: sampleRate, realtime: realtime}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake"}}, nil
}

func (f *FakeContext) Close() {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	return &FakeCapture{
		pcm:        f.pcm,
		sampleRate: f.sampleRate,
		realtime:   f.realtime,
		audioDone:  make(chan struct{}),
	}, nil
}

type FakeCapture struct {
	pcm        []byte
	sampleRate int
	realtime   bool
	audioDone  chan struct{}

	mu       sync.Mutex
	cb       DataCallback
	started  bool
	stopCh   chan struct{}
	feedDone chan struct{}
}

// AudioDone closes once the recorded PCM has been fully delivered and only
// silence remains.
func (f *FakeCapture) AudioDone() <-chan struct{} { return f.audioDone }

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) DeviceName() string { return "fake" }

func (f *FakeCapture) loadCB() DataCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb
}

func (f *FakeCapture) feedChunk(cb DataCallback, pos, chunkBytes int) int {
	end := min(pos+chunkBytes, len(f.pcm))
	chunk := make([]byte, end-pos)
	copy(chunk, f.pcm[pos:end])
	cb(chunk, uint32(len(chunk)/fakeBytesPerFrame))
	return end
}

func (f *FakeCapture) Start() error {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return ErrCaptureActive
	}
	f.started = true
	f.stopCh = make(chan struct{})
	f.feedDone = make(chan struct{})
	f.mu.Unlock()
	// audioDone is NOT recreated here -- callers may already be waiting on it.
	// It's reset in Stop() for replay.

	chunkBytes := fakeFrameSize * fakeBytesPerFrame

	if !f.realtime {
		if cb := f.loadCB(); cb != nil {
			for pos := 0; pos < len(f.pcm); {
				pos = f.feedChunk(cb, pos, chunkBytes)
			}
		}
		close(f.audioDone)

		go func(stopCh, feedDone chan struct{}) {
			defer close(feedDone)
			silence := make([]byte, chunkBytes)
			for {
				select {
				case <-stopCh:
					return
				case <-time.After(time.Millisecond):
				}
				if cb := f.loadCB(); cb != nil {
					cb(silence, fakeFrameSize)
				}
			}
		}(f.stopCh, f.feedDone)
	} else {
		interval := time.Duration(fakeFrameSize) * time.Second / time.Duration(f.sampleRate)
		go func(stopCh, feedDone chan struct{}) {
			defer close(feedDone)
			pos := 0
			silence := make([]byte, chunkBytes)
			audioFinished := false

			for {
				select {
				case <-stopCh:
					return
				default:
				}

				cb := f.loadCB()
				if cb == nil {
					time.Sleep(time.Millisecond)
					continue
				}

				if pos < len(f.pcm) {
					pos = f.feedChunk(cb, pos, chunkBytes)
				} else {
					if !audioFinished {
						audioFinished = true
						close(f.audioDone)
					}
					cb(silence, fakeFrameSize)
				}

				select {
				case <-stopCh:
					return
				case <-time.After(interval):
				}
			}
		}(f.stopCh, f.feedDone)
	}

	return nil
}

func (f *FakeCapture) Stop() {
	f.mu.Lock()
	if !f.started {
		f.mu.Unlock()
		return
	}
	f.started = false
	stopCh, feedDone := f.stopCh, f.feedDone
	f.mu.Unlock()

	select {
	case <-stopCh:
	default:
		close(stopCh)
	}
	if feedDone != nil {
		<-feedDone
	}
	f.audioDone = make(chan struct{}) // reset for replay
}

func (f *FakeCapture) Close() {}
