package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"sample rate too low", func(c *Config) { c.Audio.SampleRate = 4000 }, "audio.sample_rate"},
		{"sample rate too high", func(c *Config) { c.Audio.SampleRate = 96000 }, "audio.sample_rate"},
		{"stereo capture", func(c *Config) { c.Audio.Channels = 2 }, "audio.channels"},
		{"zero frame size", func(c *Config) { c.Audio.FrameSize = 0 }, "audio.frame_size"},
		{"zero queue depth", func(c *Config) { c.Audio.QueueDepth = 0 }, "audio.queue_depth"},
		{"threshold at zero", func(c *Config) { c.Silence.Threshold = 0 }, "silence.threshold"},
		{"threshold at one", func(c *Config) { c.Silence.Threshold = 1 }, "silence.threshold"},
		{"zero silence duration", func(c *Config) { c.Silence.Duration = 0 }, "silence.duration"},
		{"cap below silence duration", func(c *Config) { c.Silence.MaxSession = time.Second }, "silence.max_session"},
		{"unknown buffer mode", func(c *Config) { c.Buffer.Mode = "chunked" }, "buffer.mode"},
		{"streaming without window", func(c *Config) {
			c.Buffer.Mode = ModeStreaming
			c.Buffer.Window = 0
		}, "buffer.window"},
		{"unknown upload format", func(c *Config) { c.Model.Format = "mp3" }, "model.format"},
		{"empty strategy list", func(c *Config) { c.Inject.Strategies = nil }, "inject.strategies"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var cerr *ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tc.field, cerr.Field)
		})
	}
}

func TestConfigErrorUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := &ConfigError{Field: "audio.device", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "audio.device")
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
audio:
  sample_rate: 44100
silence:
  threshold: 0.02
model:
  backend: "groq:whisper-large-v3-turbo"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 0.02, cfg.Silence.Threshold)
	assert.Equal(t, "groq:whisper-large-v3-turbo", cfg.Model.Backend)
	// Untouched sections keep their defaults.
	assert.Equal(t, Default().Hotkeys, cfg.Hotkeys)
	assert.Equal(t, Default().Inject, cfg.Inject)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("audio: ["), 0644))

	_, err := Load(path)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
}

func TestLoadValidatesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("audio:\n  sample_rate: 4000\n"), 0644))

	_, err := Load(path)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "audio.sample_rate", cerr.Field)
}
