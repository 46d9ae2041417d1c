package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sjroesink/Whisper/engine"
	"github.com/sjroesink/Whisper/history"
	"github.com/sjroesink/Whisper/log"
)

// Subscription owns the engine event handles registered by Subscribe.
type Subscription struct {
	once    sync.Once
	handles []func()
}

// Close releases every registered handle. Safe to call more than once and
// from any goroutine; a second call does nothing.
func (s *Subscription) Close() {
	s.once.Do(func() {
		for _, unlisten := range s.handles {
			unlisten()
		}
	})
}

// Active reports how many handles the subscription holds.
func (s *Subscription) Active() int { return len(s.handles) }

// Subscribe registers exactly one handler per engine event kind.
// Registration is best-effort: kinds that fail to register are reported in
// the joined error while the rest stay active, and Close releases only the
// handles that succeeded. ctx bounds the engine calls made in reaction to
// events.
func (s *Store) Subscribe(ctx context.Context) (*Subscription, error) {
	sub := &Subscription{}
	var errs []error

	for _, kind := range engine.Kinds() {
		unlisten, err := s.eng.Listen(kind, s.handlerFor(ctx, kind))
		if err != nil {
			errs = append(errs, fmt.Errorf("listen %s: %w", kind, err))
			continue
		}
		sub.handles = append(sub.handles, unlisten)
	}
	return sub, errors.Join(errs...)
}

func (s *Store) handlerFor(ctx context.Context, kind engine.EventKind) engine.Handler {
	switch kind {
	case engine.EventRecordingStarted:
		return func(engine.Event) { s.onRecordingStarted() }
	case engine.EventRecordingStopped:
		return func(engine.Event) { s.onRecordingStopped() }
	case engine.EventTranscribing:
		return func(engine.Event) { s.onTranscribing() }
	case engine.EventTranscriptionComplete:
		return s.onTranscriptionComplete
	case engine.EventError:
		return s.onEngineError
	case engine.EventDownloadProgress:
		return func(ev engine.Event) { s.onDownloadProgress(ctx, ev) }
	}
	return func(engine.Event) {}
}

// The handlers below are the only writers of the lifecycle flags. Legal
// flag states are idle (false,false), recording (true,false) and
// transcribing (false,true).

func (s *Store) onRecordingStarted() {
	s.mu.Lock()
	s.recording = true
	s.transcribing = false
	s.lastError = ""
	s.mu.Unlock()
	log.Event("recording-started")
	s.notify()
}

func (s *Store) onRecordingStopped() {
	s.mu.Lock()
	s.recording = false
	s.mu.Unlock()
	log.Event("recording-stopped")
	s.notify()
}

func (s *Store) onTranscribing() {
	s.mu.Lock()
	s.recording = false
	s.transcribing = true
	s.mu.Unlock()
	log.Event("transcribing")
	s.notify()
}

func (s *Store) onTranscriptionComplete(ev engine.Event) {
	p := ev.Transcription
	if p == nil {
		log.Warnf("transcription-complete without payload")
		return
	}

	entry := history.New(p.Text, string(p.Provider), p.DurationMS, p.Language)
	s.mu.Lock()
	s.recording = false
	s.transcribing = false
	s.current = p.Text
	s.entries.Append(entry)
	hook := s.onTranscription
	s.mu.Unlock()

	log.Transcription(string(p.Provider), p.DurationMS, p.Language, len(p.Text))
	log.TranscriptionText(p.Text)
	if hook != nil {
		hook(entry)
	}
	s.notify()
}

// An engine error is authoritative: it clears both lifecycle flags no
// matter what was in flight and fills the error slot. The slot empties on
// the next successful recording start or an explicit dismiss.
func (s *Store) onEngineError(ev engine.Event) {
	s.mu.Lock()
	s.recording = false
	s.transcribing = false
	s.lastError = ev.Message
	s.mu.Unlock()
	log.Errorf("engine: %s", ev.Message)
	s.notify()
}

func (s *Store) onDownloadProgress(ctx context.Context, ev engine.Event) {
	p := ev.Progress
	if p == nil {
		log.Warnf("download-progress without payload")
		return
	}

	s.mu.Lock()
	finished := s.downloads.Update(p.Item, p.Downloaded, p.Total, p.Done)
	s.mu.Unlock()
	s.notify()

	if finished {
		// Availability changed; refetch off the event path.
		go s.refreshAssets(ctx)
	}
}
