// Package log is a thin file-backed diagnostic logger for murmur.
//
// Two files live under the log directory: diagnostics_log.txt (structured
// events) and transcribe_log.txt (plain transcript lines). Logging is a
// no-op until Init succeeds, so the pipeline never fails because a log
// directory is unwritable.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog        zerolog.Logger
	diagFile       *os.File
	transcribeFile *os.File
	logMu          sync.Mutex
	logReady       bool
	pid            int
	dir            string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absolutize(flagPath)
	}

	// Priority 2: MURMUR_LOG_PATH environment variable
	if envPath := os.Getenv("MURMUR_LOG_PATH"); envPath != "" {
		return absolutize(envPath)
	}

	// Priority 3: default OS-specific location
	return getDefaultDir()
}

func absolutize(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, path), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

// SetLevel applies a config-supplied level string; unknown values keep the
// current level.
func SetLevel(level string) {
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	transcribePath := filepath.Join(dir, "transcribe_log.txt")
	transcribeFile, err = os.OpenFile(transcribePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if transcribeFile != nil {
		transcribeFile.Close()
		transcribeFile = nil
	}
	logReady = false
}

func Debugf(format string, args ...any) {
	if logReady {
		diagLog.Debug().Msg(fmt.Sprintf(format, args...))
	}
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// Transcription records one completed backend call.
func Transcription(backend string, audioSeconds, totalMs, confidence float64) {
	if !logReady {
		return
	}
	ev := diagLog.Info().
		Str("backend", backend).
		Float64("audio_s", audioSeconds).
		Float64("total_ms", totalMs)
	if confidence > 0 {
		ev = ev.Float64("confidence", confidence)
	}
	ev.Msg("transcription")
}

// Injection records the outcome of one injection fallback run.
func Injection(strategy string, attempts int, ok bool) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("strategy", strategy).
		Int("attempts", attempts).
		Bool("ok", ok).
		Msg("injection")
}

func TranscriptionText(text string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, text)
	transcribeFile.WriteString(line)
}

func SessionStart(backend, mode string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("backend", backend).
		Str("mode", mode).
		Msg("session_start")
}

func SessionEnd(count int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("count", count).
		Msg("session_end")
}
