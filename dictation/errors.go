package dictation

import "fmt"

// DeviceError covers capture device acquisition and teardown failures. The
// session never starts; the machine stays in its previous state.
type DeviceError struct {
	Device string
	Err    error
}

func (e *DeviceError) Error() string {
	name := e.Device
	if name == "" {
		name = "default"
	}
	return fmt.Sprintf("audio device %s: %v", name, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// OverrunError reports that the frame queue filled up and audio was dropped.
// The session is aborted rather than transcribing audio with holes in it.
type OverrunError struct {
	Dropped uint64
}

func (e *OverrunError) Error() string {
	return fmt.Sprintf("frame queue overrun: %d frames dropped", e.Dropped)
}

// BackendError wraps transcription backend failures.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("transcription backend %s: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
