package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// initInTempDir points the package at a fresh temp directory and opens
// the sink there. Cleanup closes the sink and clears the directory.
func initInTempDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	if err := Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() {
		Close()
		SetDir("")
	})
	return tmp
}

func TestResolveDir(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		flag string
		env  string
		want string
	}{
		{"flag absolute", "/tmp/whisper-logs", "", "/tmp/whisper-logs"},
		{"flag relative", "logs", "", filepath.Join(wd, "logs")},
		{"env absolute", "", "/tmp/whisper-env", "/tmp/whisper-env"},
		{"env relative", "", "rel", filepath.Join(wd, "rel")},
		{"flag wins over env", "/tmp/from-flag", "/tmp/from-env", "/tmp/from-flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("WHISPER_LOG_PATH", tt.env)
			got, err := ResolveDir(tt.flag)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveDirDefault(t *testing.T) {
	t.Setenv("WHISPER_LOG_PATH", "")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "whisper") {
		t.Errorf("default dir = %q, want a path under a whisper directory", got)
	}
}

func TestInitCreatesBothFiles(t *testing.T) {
	tmp := initInTempDir(t)

	for _, name := range []string{"diagnostics_log.txt", "transcribe_log.txt"} {
		if _, err := os.Stat(filepath.Join(tmp, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestDiagnosticsLine(t *testing.T) {
	tmp := initInTempDir(t)

	Event("recording-started")
	Warnf("engine said %s", "no")

	data, err := os.ReadFile(filepath.Join(tmp, "diagnostics_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"engine_event", "recording-started", "engine said no", "pid="} {
		if !strings.Contains(out, want) {
			t.Errorf("diagnostics log missing %q:\n%s", want, out)
		}
	}
}

func TestTranscriptLine(t *testing.T) {
	tmp := initInTempDir(t)

	TranscriptionText("hello world")

	data, err := os.ReadFile(filepath.Join(tmp, "transcribe_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	if !strings.HasSuffix(line, "\thello world\n") {
		t.Errorf("unexpected transcript line %q", line)
	}
	if !strings.Contains(line, fmt.Sprintf("[%d]", os.Getpid())) {
		t.Errorf("transcript line %q missing pid", line)
	}
}

func TestSilentWithoutSink(t *testing.T) {
	Close()
	Close()

	// None of these may panic with no sink installed.
	Info("x")
	Errorf("x %d", 1)
	Event("error")
	Transcription("OpenAI", 1200, "en", 42)
	TranscriptionText("dropped")
	SessionStart("0.1.0", "ws://localhost")
	SessionEnd(0)
}

func TestReinit(t *testing.T) {
	SetDir(t.TempDir())
	if err := Init(); err != nil {
		t.Fatal(err)
	}
	Close()

	second := t.TempDir()
	SetDir(second)
	if err := Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		Close()
		SetDir("")
	})

	Infof("after reinit")

	data, err := os.ReadFile(filepath.Join(second, "diagnostics_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "after reinit") {
		t.Error("second sink did not receive writes")
	}
}
