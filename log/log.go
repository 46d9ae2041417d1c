// Package log writes the control surface's diagnostics to disk. Two
// files live under the log directory: diagnostics_log.txt carries the
// structured session log, transcribe_log.txt carries nothing but the
// raw transcription text, one line per result.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const stampFormat = "2006-01-02 15:04:05"

// sink owns the open log files for one Init/Close cycle.
type sink struct {
	diag     zerolog.Logger
	diagFile *os.File

	textMu   sync.Mutex
	textFile *os.File

	pid int
}

var (
	active atomic.Pointer[sink]
	dir    string
)

// ResolveDir picks the log directory: the -logpath flag wins, then the
// WHISPER_LOG_PATH environment variable, then the per-OS default.
// Relative paths are anchored at the working directory.
func ResolveDir(flagPath string) (string, error) {
	for _, p := range []string{flagPath, os.Getenv("WHISPER_LOG_PATH")} {
		if p == "" {
			continue
		}
		if filepath.IsAbs(p) {
			return p, nil
		}
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return filepath.Join(wd, p), nil
	}
	return defaultDir()
}

func SetDir(d string) { dir = d }

func Dir() string { return dir }

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

// Init opens both log files under the configured directory and swaps in
// a fresh sink. Calling Init again replaces the previous sink.
func Init() error {
	if err := EnsureDir(); err != nil {
		return err
	}

	s := &sink{pid: os.Getpid()}

	var err error
	if s.diagFile, err = openAppend("diagnostics_log.txt"); err != nil {
		return err
	}
	if s.textFile, err = openAppend("transcribe_log.txt"); err != nil {
		s.diagFile.Close()
		return err
	}

	w := zerolog.ConsoleWriter{Out: s.diagFile, TimeFormat: stampFormat, NoColor: true}
	s.diag = zerolog.New(w).With().Timestamp().Int("pid", s.pid).Logger()

	if old := active.Swap(s); old != nil {
		old.shut()
	}
	return nil
}

func openAppend(name string) (*os.File, error) {
	return os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// Close releases the log files. Logging calls after Close are dropped.
func Close() {
	if s := active.Swap(nil); s != nil {
		s.shut()
	}
}

func (s *sink) shut() {
	s.diagFile.Close()
	s.textMu.Lock()
	s.textFile.Close()
	s.textMu.Unlock()
}

func Info(msg string) {
	if s := active.Load(); s != nil {
		s.diag.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if s := active.Load(); s != nil {
		s.diag.Info().Msgf(format, args...)
	}
}

func Error(msg string) {
	if s := active.Load(); s != nil {
		s.diag.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if s := active.Load(); s != nil {
		s.diag.Error().Msgf(format, args...)
	}
}

func Warn(msg string) {
	if s := active.Load(); s != nil {
		s.diag.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if s := active.Load(); s != nil {
		s.diag.Warn().Msgf(format, args...)
	}
}

func Debugf(format string, args ...any) {
	if s := active.Load(); s != nil {
		s.diag.Debug().Msgf(format, args...)
	}
}

// Event records one engine event arrival.
func Event(name string) {
	if s := active.Load(); s != nil {
		s.diag.Info().Str("event", name).Msg("engine_event")
	}
}

// Transcription records the metrics of a completed transcription.
func Transcription(provider string, durationMS uint64, language string, chars int) {
	s := active.Load()
	if s == nil {
		return
	}
	ev := s.diag.Info().
		Str("provider", provider).
		Uint64("duration_ms", durationMS).
		Int("chars", chars)
	if language != "" {
		ev = ev.Str("language", language)
	}
	ev.Msg("transcription")
}

// TranscriptionText appends the raw text to the transcript log, kept
// apart from diagnostics so users can grep their own words.
func TranscriptionText(text string) {
	s := active.Load()
	if s == nil {
		return
	}
	s.textMu.Lock()
	defer s.textMu.Unlock()
	fmt.Fprintf(s.textFile, "%s\t[%d]\t%s\n", time.Now().Format(stampFormat), s.pid, text)
}

func SessionStart(version, engine string) {
	if s := active.Load(); s != nil {
		s.diag.Info().
			Str("version", version).
			Str("engine", engine).
			Msg("session_start")
	}
}

func SessionEnd(count int) {
	if s := active.Load(); s != nil {
		s.diag.Info().
			Int("count", count).
			Msg("session_end")
	}
}
