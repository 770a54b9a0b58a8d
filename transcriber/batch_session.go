package transcriber

import (
	"strings"
	"sync"
	"time"

	"murmur/encoder"
)

type transcribeFunc func(audio []byte, format string) (*Result, error)

// batchSession encodes audio as it arrives and submits the whole utterance
// in a single request on Close.
type batchSession struct {
	cfg        SessionConfig
	transcribe transcribeFunc
	encoder    encoder.Encoder
	updates    chan string
	blockChan  chan []int16
	encodeDone chan struct{}
	sampleBuf  []int16
	bufMu      sync.Mutex

	// First encode failure, written by the encode goroutine and read
	// after encodeDone closes.
	encErr error
}

func newBatchSession(cfg SessionConfig, transcribe transcribeFunc) (*batchSession, error) {
	enc, err := encoder.New(cfg.Format, cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	return newBatchSessionWith(cfg, enc, transcribe), nil
}

func newBatchSessionWith(cfg SessionConfig, enc encoder.Encoder, transcribe transcribeFunc) *batchSession {
	bs := &batchSession{
		cfg:        cfg,
		transcribe: transcribe,
		encoder:    enc,
		updates:    make(chan string),
		blockChan:  make(chan []int16, 64),
		encodeDone: make(chan struct{}),
	}

	go func() {
		defer close(bs.encodeDone)
		for block := range bs.blockChan {
			start := time.Now()
			if err := bs.encoder.EncodeBlock(block); err != nil && bs.encErr == nil {
				bs.encErr = err
			}
			bs.encoder.AddEncodeTime(time.Since(start))
		}
	}()

	return bs
}

func (bs *batchSession) Feed(pcm []int16) {
	bs.bufMu.Lock()
	bs.sampleBuf = append(bs.sampleBuf, pcm...)
	var blocks [][]int16
	for len(bs.sampleBuf) >= encoder.BlockSize {
		block := make([]int16, encoder.BlockSize)
		copy(block, bs.sampleBuf[:encoder.BlockSize])
		bs.sampleBuf = bs.sampleBuf[encoder.BlockSize:]
		blocks = append(blocks, block)
	}
	bs.bufMu.Unlock()

	for _, block := range blocks {
		bs.blockChan <- block
	}
}

func (bs *batchSession) Updates() <-chan string {
	return bs.updates
}

func (bs *batchSession) Close() (Result, error) {
	// Flush remaining samples
	bs.bufMu.Lock()
	if len(bs.sampleBuf) > 0 {
		partial := make([]int16, len(bs.sampleBuf))
		copy(partial, bs.sampleBuf)
		bs.blockChan <- partial
	}
	bs.bufMu.Unlock()

	close(bs.blockChan)
	<-bs.encodeDone
	close(bs.updates)

	// A failed block would make the upload silently corrupt; refuse it.
	if bs.encErr != nil {
		return Result{}, bs.encErr
	}
	if bs.encoder.TotalFrames() == 0 {
		return Result{}, ErrNoAudio
	}
	if err := bs.encoder.Close(); err != nil {
		return Result{}, err
	}

	result, err := bs.transcribe(bs.encoder.Bytes(), bs.cfg.Format)
	if err != nil {
		return Result{}, err
	}

	r := *result
	r.Text = strings.TrimSpace(r.Text)
	r.NoSpeech = r.Text == ""
	r.AudioSeconds = float64(bs.encoder.TotalFrames()) / float64(bs.cfg.SampleRate)
	return r, nil
}
