package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	shellwords "github.com/mattn/go-shellwords"
)

// ExecTranscriber shells out to a local speech-to-text CLI. The audio is
// written to a temp file whose path replaces the "{file}" placeholder in the
// command line, or is appended when no placeholder is present. "{lang}" is
// replaced with the configured language.
type ExecTranscriber struct {
	baseTranscriber
	cmd []string
}

type execOutput struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

func NewExec(command string) (*ExecTranscriber, error) {
	args, err := shellwords.NewParser().Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse transcriber command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("transcriber command is empty")
	}
	return &ExecTranscriber{cmd: args}, nil
}

func (e *ExecTranscriber) Name() string { return "exec" }

func (e *ExecTranscriber) NewSession(ctx context.Context, cfg SessionConfig) (Session, error) {
	if cfg.Language != "" {
		e.SetLanguage(cfg.Language)
	}
	fn := func(audio []byte, format string) (*Result, error) {
		return e.transcribe(ctx, audio, format)
	}
	if cfg.Stream {
		return newStreamSession(cfg, fn)
	}
	return newBatchSession(cfg, fn)
}

func (e *ExecTranscriber) transcribe(ctx context.Context, audio []byte, format string) (*Result, error) {
	file, err := os.CreateTemp("", "murmur_*."+format)
	if err != nil {
		return nil, fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(file.Name())

	if _, err := file.Write(audio); err != nil {
		file.Close()
		return nil, fmt.Errorf("write temp audio: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, err
	}

	args := make([]string, 0, len(e.cmd)+1)
	havePath := false
	for _, a := range e.cmd[1:] {
		switch a {
		case "{file}":
			args = append(args, file.Name())
			havePath = true
		case "{lang}":
			args = append(args, e.lang)
		default:
			args = append(args, a)
		}
	}
	if !havePath {
		args = append(args, file.Name())
	}

	cmd := exec.CommandContext(ctx, e.cmd[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("transcriber command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var out execOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		// Plain-text tools just print the transcript.
		return &Result{Text: strings.TrimSpace(stdout.String())}, nil
	}
	return &Result{Text: out.Text, Confidence: out.Confidence}, nil
}
