package encoder

import (
	"encoding/binary"
	"testing"
)

func TestFlacEncoder(t *testing.T) {
	samples := make([]int16, BlockSize*2+100)
	for i := range samples {
		samples[i] = int16(i % 3000)
	}

	enc, err := NewFlac(16000)
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}

	var totalFed uint64
	for i := 0; i < len(samples); i += BlockSize {
		end := i + BlockSize
		if end > len(samples) {
			end = len(samples)
		}
		block := samples[i:end]
		if err := enc.EncodeBlock(block); err != nil {
			t.Fatalf("EncodeBlock at offset %d: %v", i, err)
		}
		totalFed += uint64(len(block))
	}

	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if enc.TotalFrames() != totalFed {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), totalFed)
	}

	flacData := enc.Bytes()
	if len(flacData) < 4 || string(flacData[:4]) != "fLaC" {
		t.Fatal("output does not start with FLAC magic")
	}
}

func TestFlacEncoderEmpty(t *testing.T) {
	enc, err := NewFlac(16000)
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close on empty encoder: %v", err)
	}
	if enc.TotalFrames() != 0 {
		t.Errorf("TotalFrames = %d, want 0", enc.TotalFrames())
	}
	if len(enc.Bytes()) == 0 {
		t.Error("expected non-empty FLAC output (at least header)")
	}
}

func TestWavEncoderHeader(t *testing.T) {
	samples := []int16{0, 1000, -1000, 32767, -32768}
	enc := NewWav(16000)
	if err := enc.EncodeBlock(samples); err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := enc.Bytes()
	if len(out) != 44+len(samples)*2 {
		t.Fatalf("output length = %d, want %d", len(out), 44+len(samples)*2)
	}
	if string(out[:4]) != "RIFF" || string(out[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE markers")
	}
	if rate := binary.LittleEndian.Uint32(out[24:]); rate != 16000 {
		t.Errorf("sample rate in header = %d, want 16000", rate)
	}
	if got := int16(binary.LittleEndian.Uint16(out[46:])); got != 1000 {
		t.Errorf("second sample = %d, want 1000", got)
	}
}

func TestEncodeHelper(t *testing.T) {
	samples := make([]int16, BlockSize+17)
	out, err := Encode("wav", 16000, samples)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(out) != 44+len(samples)*2 {
		t.Fatalf("wav length = %d, want %d", len(out), 44+len(samples)*2)
	}

	out, err = Encode("flac", 16000, samples)
	if err != nil {
		t.Fatalf("Encode flac: %v", err)
	}
	if string(out[:4]) != "fLaC" {
		t.Fatal("flac magic missing")
	}
}
