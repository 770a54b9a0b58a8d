package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"time"
)

// OpenAI talks to any OpenAI-compatible /audio/transcriptions endpoint
// (OpenAI itself, Groq, or a local whisper server).
type OpenAI struct {
	baseTranscriber
	client *http.Client
	apiURL string
	apiKey string
	model  string
}

func NewOpenAI(apiURL, apiKey, model string) *OpenAI {
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1/audio/transcriptions"
	}
	if model == "" {
		model = "whisper-1"
	}
	return &OpenAI{
		client: &http.Client{Timeout: 60 * time.Second},
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) NewSession(ctx context.Context, cfg SessionConfig) (Session, error) {
	if cfg.Language != "" {
		o.SetLanguage(cfg.Language)
	}
	fn := func(audio []byte, format string) (*Result, error) {
		return o.transcribe(ctx, audio, format)
	}
	if cfg.Stream {
		return newStreamSession(cfg, fn)
	}
	return newBatchSession(cfg, fn)
}

type openaiResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Text         string  `json:"text"`
		Start        float64 `json:"start"`
		End          float64 `json:"end"`
		NoSpeechProb float64 `json:"no_speech_prob"`
		AvgLogProb   float64 `json:"avg_logprob"`
	} `json:"segments"`
}

func (o *OpenAI) transcribe(ctx context.Context, audio []byte, format string) (*Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio."+format)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}

	writer.WriteField("model", o.model)
	writer.WriteField("response_format", "verbose_json")
	if o.lang != "" {
		writer.WriteField("language", o.lang)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", o.apiURL, &body)
	if err != nil {
		return nil, err
	}
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription API error %d: %s", resp.StatusCode, string(respBody))
	}

	var oResp openaiResponse
	if err := json.Unmarshal(respBody, &oResp); err != nil {
		return nil, fmt.Errorf("transcription response parse error: %w", err)
	}

	var noSpeechProb, logProbSum float64
	var segments []Segment
	for _, seg := range oResp.Segments {
		if seg.NoSpeechProb > noSpeechProb {
			noSpeechProb = seg.NoSpeechProb
		}
		logProbSum += seg.AvgLogProb
		segments = append(segments, Segment{
			Text:         seg.Text,
			NoSpeechProb: seg.NoSpeechProb,
			AvgLogProb:   seg.AvgLogProb,
			Start:        seg.Start,
			End:          seg.End,
		})
	}

	var confidence float64
	if len(oResp.Segments) > 0 {
		confidence = math.Exp(logProbSum / float64(len(oResp.Segments)))
	}

	return &Result{
		Text:         oResp.Text,
		Confidence:   confidence,
		NoSpeechProb: noSpeechProb,
		Segments:     segments,
	}, nil
}
