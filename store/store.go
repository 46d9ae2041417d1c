// Package store is the single coordination context between the surface and
// the engine. It owns the lifecycle flags, the settings reconciler, the
// history cache and the download tracker. Lifecycle flags flip only on
// confirmed engine events, never when a command is dispatched.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/sjroesink/Whisper/engine"
	"github.com/sjroesink/Whisper/history"
	"github.com/sjroesink/Whisper/log"
	"github.com/sjroesink/Whisper/progress"
	"github.com/sjroesink/Whisper/settings"
)

// View names one surface screen.
type View int

const (
	ViewMain View = iota
	ViewSettings
	ViewHistory
	ViewModels
)

func (v View) String() string {
	switch v {
	case ViewSettings:
		return "settings"
	case ViewHistory:
		return "history"
	case ViewModels:
		return "models"
	}
	return "main"
}

// Store coordinates every piece of shared state. One mutex guards it all;
// engine commands never run while the lock is held.
type Store struct {
	eng        engine.Engine
	reconciler *settings.Reconciler

	mu           sync.Mutex
	recording    bool
	transcribing bool
	lastError    string
	current      string
	entries      history.Cache
	downloads    progress.Tracker
	providers    []settings.ProviderInfo
	devices      []engine.AudioDevice
	assets       engine.AssetStatus
	view         View

	onChange        func()
	onTranscription func(history.Entry)
}

// New wires a store to its engine. Providers start as the built-in catalog
// until Bootstrap replaces them with the engine's answer.
func New(eng engine.Engine) *Store {
	s := &Store{eng: eng, providers: settings.Providers()}
	s.reconciler = settings.NewReconciler(eng)
	s.reconciler.OnChange(func() { s.notify() })
	return s
}

// Settings exposes the reconciler for draft edits and saves.
func (s *Store) Settings() *settings.Reconciler { return s.reconciler }

// OnChange registers the hook fired after every mutation. The surface
// forwards it into its render loop.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// OnTranscription registers a hook fired with each completed entry after
// state is committed. The surface uses it for clipboard copy.
func (s *Store) OnTranscription(fn func(history.Entry)) {
	s.mu.Lock()
	s.onTranscription = fn
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Snapshot is what the surface renders: one consistent copy taken under
// the lock.
type Snapshot struct {
	Recording    bool
	Transcribing bool
	LastError    string
	Current      string
	History      []history.Entry
	Downloads    []progress.Line
	Providers    []settings.ProviderInfo
	Devices      []engine.AudioDevice
	Assets       engine.AssetStatus
	View         View
	Draft        settings.Settings
	Canonical    settings.Settings
	Dirty        bool
	Saved        bool
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		Recording:    s.recording,
		Transcribing: s.transcribing,
		LastError:    s.lastError,
		Current:      s.current,
		History:      s.entries.All(),
		Downloads:    s.downloads.Lines(),
		Providers:    append([]settings.ProviderInfo(nil), s.providers...),
		Devices:      append([]engine.AudioDevice(nil), s.devices...),
		Assets:       s.assets,
		View:         s.view,
	}
	s.mu.Unlock()

	snap.Draft = s.reconciler.Draft()
	snap.Canonical = s.reconciler.Canonical()
	snap.Dirty = s.reconciler.Dirty()
	snap.Saved = s.reconciler.Saved()
	return snap
}

// Bootstrap primes the store from the engine. Every fetch falls back
// independently, so a dead engine still yields a fully usable surface.
func (s *Store) Bootstrap(ctx context.Context) {
	if cfg, err := s.eng.FetchSettings(ctx); err != nil {
		log.Warnf("bootstrap: settings: %v", err)
	} else {
		s.reconciler.ResetCanonical(cfg)
	}

	if entries, err := s.eng.FetchHistory(ctx); err != nil {
		log.Warnf("bootstrap: history: %v", err)
	} else {
		s.mu.Lock()
		s.entries.Replace(entries)
		s.mu.Unlock()
	}

	if providers, err := s.eng.FetchProviders(ctx); err != nil {
		log.Warnf("bootstrap: providers: %v", err)
	} else if len(providers) > 0 {
		s.mu.Lock()
		s.providers = providers
		s.mu.Unlock()
	}

	if recording, err := s.eng.RecordingState(ctx); err != nil {
		log.Warnf("bootstrap: recording state: %v", err)
	} else {
		s.mu.Lock()
		s.recording = recording
		s.mu.Unlock()
	}

	if devices, err := s.eng.InputDevices(ctx); err != nil {
		log.Warnf("bootstrap: input devices: %v", err)
	} else {
		s.mu.Lock()
		s.devices = devices
		s.mu.Unlock()
	}

	if assets, err := s.eng.FetchAssetStatus(ctx); err != nil {
		log.Warnf("bootstrap: asset status: %v", err)
	} else {
		s.mu.Lock()
		s.assets = assets
		s.mu.Unlock()
	}

	s.notify()
}

// Toggle starts or stops dictation depending on the current lifecycle.
// While a transcription is running it does nothing.
func (s *Store) Toggle(ctx context.Context) {
	s.mu.Lock()
	recording, transcribing := s.recording, s.transcribing
	s.mu.Unlock()

	switch {
	case transcribing:
		log.Debugf("toggle ignored while transcribing")
	case recording:
		s.StopRecording(ctx)
	default:
		s.StartRecording(ctx)
	}
}

// StartRecording begins dictation if idle. The recording flag follows the
// recording-started event, not this call.
func (s *Store) StartRecording(ctx context.Context) {
	s.mu.Lock()
	busy := s.recording || s.transcribing
	s.mu.Unlock()
	if busy {
		return
	}
	if err := s.eng.StartRecording(ctx); err != nil {
		log.Errorf("start recording: %v", err)
	}
}

// StopRecording ends dictation if recording. The transcribed text arrives
// via the transcription-complete event; the command's return value is
// ignored so the event stream stays the single source of truth.
func (s *Store) StopRecording(ctx context.Context) {
	s.mu.Lock()
	recording := s.recording
	s.mu.Unlock()
	if !recording {
		return
	}
	if _, err := s.eng.StopAndTranscribe(ctx); err != nil {
		log.Errorf("stop recording: %v", err)
	}
}

// ClearHistory clears the engine's persisted history first and the local
// cache only on success, so the two cannot diverge.
func (s *Store) ClearHistory(ctx context.Context) error {
	if err := s.eng.ClearHistory(ctx); err != nil {
		log.Errorf("clear history: %v", err)
		return fmt.Errorf("clear history: %w", err)
	}
	s.mu.Lock()
	s.entries.Clear()
	s.mu.Unlock()
	s.notify()
	return nil
}

// SaveSettings pushes the draft to the engine via the reconciler. A failed
// save keeps the draft for retry.
func (s *Store) SaveSettings(ctx context.Context) error {
	if err := s.reconciler.Save(ctx); err != nil {
		log.Errorf("settings not saved: %v", err)
		return err
	}
	return nil
}

// DownloadAsset asks the engine to fetch a model or the GPU dll. Progress
// arrives as download-progress events. On completion the returned path is
// written into the draft and saved, which is what activates the asset.
func (s *Store) DownloadAsset(ctx context.Context, kind engine.AssetKind, name string) {
	path, err := s.eng.DownloadAsset(ctx, kind, name)
	if err != nil {
		log.Errorf("download %s %s: %v", kind, name, err)
		// No terminal frame will ever come for a rejected download.
		s.mu.Lock()
		s.downloads.Drop(name)
		s.mu.Unlock()
		s.notify()
		return
	}

	switch kind {
	case engine.AssetDLL:
		s.reconciler.SetGPUDLLPath(path)
	case engine.AssetModel:
		s.reconciler.SetGPUModelPath(path)
		s.reconciler.SetGPUModelName(name)
	}
	if err := s.SaveSettings(ctx); err != nil {
		log.Warnf("downloaded %s but could not save its path", name)
	}
}

// refreshAssets refetches the asset report, keeping the previous one when
// the engine cannot answer.
func (s *Store) refreshAssets(ctx context.Context) {
	assets, err := s.eng.FetchAssetStatus(ctx)
	if err != nil {
		log.Warnf("asset status: %v", err)
		return
	}
	s.mu.Lock()
	s.assets = assets
	s.mu.Unlock()
	s.notify()
}

// SetView switches the visible screen.
func (s *Store) SetView(v View) {
	s.mu.Lock()
	changed := s.view != v
	s.view = v
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// ClearError dismisses the error banner.
func (s *Store) ClearError() {
	s.mu.Lock()
	had := s.lastError != ""
	s.lastError = ""
	s.mu.Unlock()
	if had {
		s.notify()
	}
}
