// Package config loads and validates the murmur configuration snapshot.
//
// The snapshot is immutable once handed to the pipeline: editing the file
// while a session is live takes effect on the next session, never the
// current one.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// BufferMode selects how captured audio is handed to the backend.
type BufferMode string

const (
	// ModeUtterance hands the full session audio over at the utterance
	// boundary (default).
	ModeUtterance BufferMode = "utterance"
	// ModeStreaming flushes fixed windows to the backend while capture
	// is still running.
	ModeStreaming BufferMode = "streaming"
)

type AudioConfig struct {
	Device     string `yaml:"device"`
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
	FrameSize  int    `yaml:"frame_size"`
	QueueDepth int    `yaml:"queue_depth"`
}

type SilenceConfig struct {
	// Threshold is the RMS amplitude (0..1) below which a frame counts
	// as silence. Orthogonal to Duration.
	Threshold float64 `yaml:"threshold"`
	// Duration is how long silence must persist after the last speech
	// frame before the utterance boundary fires.
	Duration time.Duration `yaml:"duration"`
	// MaxSession forces a boundary even without silence, bounding
	// buffer growth.
	MaxSession time.Duration `yaml:"max_session"`
}

type HotkeyConfig struct {
	Toggle   string `yaml:"toggle"`
	CopyLast string `yaml:"copy_last"`
	Exit     string `yaml:"exit"`
}

type ModelConfig struct {
	// Backend is a model locator understood by transcriber.Resolve,
	// e.g. "exec:whisper-cli", "openai:whisper-large-v3", "fake:".
	Backend  string `yaml:"backend"`
	Language string `yaml:"language"`
	// Format is the upload encoding for HTTP backends: "flac" or "wav".
	Format string `yaml:"format"`
}

type InjectConfig struct {
	// Strategies is the fallback chain, tried in order. The clipboard
	// strategy is always forced to the end of the chain.
	Strategies       []string `yaml:"strategies"`
	RestoreClipboard bool     `yaml:"restore_clipboard"`
}

type BufferConfig struct {
	Mode   BufferMode    `yaml:"mode"`
	Window time.Duration `yaml:"window"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// ConfigError reports a configuration value the pipeline cannot run with.
// Field is the yaml path of the offending setting.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config %s: %v", e.Field, e.Err) }

func (e *ConfigError) Unwrap() error { return e.Err }

func invalid(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Err: fmt.Errorf(format, args...)}
}

type Config struct {
	Audio   AudioConfig   `yaml:"audio"`
	Silence SilenceConfig `yaml:"silence"`
	Hotkeys HotkeyConfig  `yaml:"hotkeys"`
	Model   ModelConfig   `yaml:"model"`
	Inject  InjectConfig  `yaml:"inject"`
	Buffer  BufferConfig  `yaml:"buffer"`
	Log     LogConfig     `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Audio: AudioConfig{
			SampleRate: 16000,
			Channels:   1,
			FrameSize:  1024,
			QueueDepth: 32,
		},
		Silence: SilenceConfig{
			Threshold:  0.01,
			Duration:   2 * time.Second,
			MaxSession: 2 * time.Minute,
		},
		Hotkeys: HotkeyConfig{
			Toggle:   "ctrl+shift+space",
			CopyLast: "ctrl+shift+c",
			Exit:     "ctrl+shift+x",
		},
		Model: ModelConfig{
			Backend:  "fake:",
			Language: "en",
			Format:   "flac",
		},
		Inject: InjectConfig{
			Strategies:       []string{"synthetic", "tool", "clipboard"},
			RestoreClipboard: true,
		},
		Buffer: BufferConfig{
			Mode:   ModeUtterance,
			Window: 3 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "murmur", "config.yaml")
	}
	return "config.yaml"
}

// Load reads the file at path, layered over Default. A missing file is not
// an error: defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Field: path, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the snapshot for values the pipeline cannot run with.
// Failures come back as *ConfigError.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 48000 {
		return invalid("audio.sample_rate", "%d out of range [8000, 48000]", c.Audio.SampleRate)
	}
	if c.Audio.Channels != 1 {
		return invalid("audio.channels", "only mono capture is supported, got %d", c.Audio.Channels)
	}
	if c.Audio.FrameSize <= 0 {
		return invalid("audio.frame_size", "must be positive, got %d", c.Audio.FrameSize)
	}
	if c.Audio.QueueDepth <= 0 {
		return invalid("audio.queue_depth", "must be positive, got %d", c.Audio.QueueDepth)
	}
	if c.Silence.Threshold <= 0 || c.Silence.Threshold >= 1 {
		return invalid("silence.threshold", "%g out of range (0, 1)", c.Silence.Threshold)
	}
	if c.Silence.Duration <= 0 {
		return invalid("silence.duration", "must be positive, got %s", c.Silence.Duration)
	}
	if c.Silence.MaxSession <= c.Silence.Duration {
		return invalid("silence.max_session", "%s must exceed silence duration %s",
			c.Silence.MaxSession, c.Silence.Duration)
	}
	switch c.Buffer.Mode {
	case ModeUtterance, ModeStreaming:
	default:
		return invalid("buffer.mode", "unknown mode %q", c.Buffer.Mode)
	}
	if c.Buffer.Mode == ModeStreaming && c.Buffer.Window <= 0 {
		return invalid("buffer.window", "must be positive in streaming mode, got %s", c.Buffer.Window)
	}
	switch c.Model.Format {
	case "flac", "wav":
	default:
		return invalid("model.format", "unknown upload format %q (use flac or wav)", c.Model.Format)
	}
	if len(c.Inject.Strategies) == 0 {
		return invalid("inject.strategies", "strategy list cannot be empty")
	}
	return nil
}
