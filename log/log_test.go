package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetDir("") })
	return tmp
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/mylog")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/mylog" {
		t.Errorf("got %q, want /tmp/mylog", got)
	}
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(wd, "logs")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("MURMUR_LOG_PATH", "/tmp/murmur-env-log")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/murmur-env-log" {
		t.Errorf("got %q, want /tmp/murmur-env-log", got)
	}
}

func TestFlagBeatsEnv(t *testing.T) {
	t.Setenv("MURMUR_LOG_PATH", "/tmp/murmur-env-log")
	got, err := ResolveDir("/tmp/flag-wins")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/flag-wins" {
		t.Errorf("got %q, want /tmp/flag-wins", got)
	}
}

func TestInitCreatesFiles(t *testing.T) {
	tmp := setupLogDir(t)
	if err := Init(); err != nil {
		t.Fatal(err)
	}
	Info("hello")
	TranscriptionText("some words")
	Close()

	diag, err := os.ReadFile(filepath.Join(tmp, "diagnostics_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(diag), "hello") {
		t.Errorf("diagnostics log missing message: %q", diag)
	}

	tr, err := os.ReadFile(filepath.Join(tmp, "transcribe_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(tr), "some words") {
		t.Errorf("transcript log missing text: %q", tr)
	}
}

func TestLoggingBeforeInitIsNoop(t *testing.T) {
	setupLogDir(t)
	// Must not panic with no open files.
	Info("dropped")
	Errorf("dropped %d", 1)
	TranscriptionText("dropped")
}
