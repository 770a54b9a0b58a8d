//go:build !linux && !windows

package cue

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

var (
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	initOnce sync.Once

	// Current playback buffer, consumed by the device callback.
	playBuf atomic.Pointer[[]byte]
	playPos atomic.Uint32
)

func initPlayback() {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return
	}

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.SampleRate = sampleRate

	dev, err := malgo.InitDevice(ctx.Context, config, malgo.DeviceCallbacks{Data: dataCallback})
	if err != nil {
		ctx.Uninit()
		return
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		ctx.Uninit()
		return
	}
	malgoCtx = ctx
	device = dev
}

func dataCallback(out, _ []byte, frameCount uint32) {
	buf := playBuf.Load()
	if buf == nil {
		zero(out)
		return
	}

	pos := playPos.Load()
	total := uint32(len(*buf))
	want := frameCount * 2
	remaining := total - pos
	if remaining == 0 {
		playBuf.Store(nil)
		zero(out)
		return
	}
	if want > remaining {
		want = remaining
	}
	copy(out, (*buf)[pos:pos+want])
	zero(out[want:])
	playPos.Add(want)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Play is fire and forget: playback failures are silent because a missing
// audio output must never affect dictation.
func Play(kind Kind) {
	if disabled {
		return
	}
	initOnce.Do(initPlayback)
	if device == nil {
		return
	}

	samples := samplesFor(kind)
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	playPos.Store(0)
	playBuf.Store(&data)
}
