// Package audio owns microphone capture. A Context enumerates devices and
// opens capture streams; each CaptureDevice pushes raw PCM to a registered
// callback. The callback runs on the audio driver's thread and must never
// block on downstream work — see FrameQueue.
package audio

import "errors"

const WAVHeaderSize = 44

// ErrCaptureActive is returned by Start when the device is already
// capturing. Only one capture stream may be live per device.
var ErrCaptureActive = errors.New("audio: capture already active")

// DataCallback receives interleaved little-endian S16 mono PCM.
type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	DeviceName() string
}

// FindDevice resolves a configured device name against the context's
// device list. An empty name selects the system default (nil).
func FindDevice(ctx Context, name string) (*DeviceInfo, error) {
	if name == "" {
		return nil, nil
	}
	devices, err := ctx.Devices()
	if err != nil {
		return nil, err
	}
	for i := range devices {
		if devices[i].Name == name {
			return &devices[i], nil
		}
	}
	return nil, errors.New("audio: device not found: " + name)
}
