package encoder

import (
	"bytes"
	"encoding/binary"
	"sync"
	"time"
)

// WavEncoder buffers PCM and prepends a standard 44-byte RIFF header on
// Close. No compression; it exists for backends that reject FLAC.
type WavEncoder struct {
	pcm         bytes.Buffer
	out         []byte
	sampleRate  int
	totalFrames uint64
	encodeTime  time.Duration
	mu          sync.Mutex
}

func NewWav(sampleRate int) *WavEncoder {
	return &WavEncoder{sampleRate: sampleRate}
}

func (e *WavEncoder) EncodeBlock(block []int16) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range block {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(s))
		e.pcm.Write(b[:])
	}
	e.totalFrames += uint64(len(block))
	return nil
}

func (e *WavEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	dataLen := e.pcm.Len()
	byteRate := e.sampleRate * Channels * BitsPerSample / 8
	blockAlign := Channels * BitsPerSample / 8

	var hdr bytes.Buffer
	hdr.WriteString("RIFF")
	binary.Write(&hdr, binary.LittleEndian, uint32(36+dataLen))
	hdr.WriteString("WAVE")
	hdr.WriteString("fmt ")
	binary.Write(&hdr, binary.LittleEndian, uint32(16))
	binary.Write(&hdr, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&hdr, binary.LittleEndian, uint16(Channels))
	binary.Write(&hdr, binary.LittleEndian, uint32(e.sampleRate))
	binary.Write(&hdr, binary.LittleEndian, uint32(byteRate))
	binary.Write(&hdr, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&hdr, binary.LittleEndian, uint16(BitsPerSample))
	hdr.WriteString("data")
	binary.Write(&hdr, binary.LittleEndian, uint32(dataLen))

	e.out = append(hdr.Bytes(), e.pcm.Bytes()...)
	return nil
}

func (e *WavEncoder) Bytes() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.out
}

func (e *WavEncoder) TotalFrames() uint64 {
	return e.totalFrames
}

func (e *WavEncoder) AddEncodeTime(d time.Duration) {
	e.mu.Lock()
	e.encodeTime += d
	e.mu.Unlock()
}

func (e *WavEncoder) EncodeTime() time.Duration {
	return e.encodeTime
}
