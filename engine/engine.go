// Package engine is the command and event boundary to the external
// speech-to-text engine. The engine owns audio capture, transcription,
// persistence and downloads; this side issues commands and reacts to the
// event stream. State is never assumed from a dispatched command, only from
// a confirmed event.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/sjroesink/Whisper/history"
	"github.com/sjroesink/Whisper/settings"
)

// ErrNoEngine reports that no engine is connected and the command has no
// meaningful fallback.
var ErrNoEngine = errors.New("no engine connected")

// CommandError is a command the engine received and rejected. Callers log
// it and leave shared state alone; only events mutate state.
type CommandError struct {
	Command string
	Msg     string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("engine: %s: %s", e.Command, e.Msg)
}

// EventKind names one engine event stream. The values are the wire names.
type EventKind string

const (
	EventRecordingStarted      EventKind = "recording-started"
	EventRecordingStopped      EventKind = "recording-stopped"
	EventTranscribing          EventKind = "transcribing"
	EventTranscriptionComplete EventKind = "transcription-complete"
	EventError                 EventKind = "error"
	EventDownloadProgress      EventKind = "download-progress"
)

// Kinds lists every event stream, in subscription order.
func Kinds() []EventKind {
	return []EventKind{
		EventRecordingStarted,
		EventRecordingStopped,
		EventTranscribing,
		EventTranscriptionComplete,
		EventError,
		EventDownloadProgress,
	}
}

// TranscriptionPayload is the transcription-complete event body.
type TranscriptionPayload struct {
	Text       string              `json:"text"`
	Provider   settings.ProviderID `json:"provider"`
	DurationMS uint64              `json:"duration_ms"`
	Language   string              `json:"language,omitempty"`
}

// ProgressPayload is the download-progress event body. Total is nil when
// the engine cannot size the download.
type ProgressPayload struct {
	Item       string  `json:"item"`
	Downloaded uint64  `json:"downloaded_bytes"`
	Total      *uint64 `json:"total_bytes"`
	Done       bool    `json:"done"`
}

// Event is one engine event. Kind is always set; at most one payload field
// accompanies it.
type Event struct {
	Kind          EventKind
	Transcription *TranscriptionPayload // transcription-complete
	Message       string                // error
	Progress      *ProgressPayload      // download-progress
}

// Handler consumes events of one kind.
type Handler func(Event)

// AudioDevice is one capture device as the engine reports it.
type AudioDevice struct {
	Name    string `json:"name"`
	Default bool   `json:"is_default"`
}

// AssetKind selects what DownloadAsset fetches.
type AssetKind string

const (
	AssetDLL   AssetKind = "dll"
	AssetModel AssetKind = "model"
)

// ModelStatus is one model in the engine's asset report.
type ModelStatus struct {
	Name      string  `json:"name"`
	Filename  string  `json:"filename"`
	Size      string  `json:"size_description"`
	Available bool    `json:"available"`
	Path      *string `json:"path"`
}

// AssetStatus is the engine's report on the GPU provider's local assets.
type AssetStatus struct {
	DLLAvailable bool          `json:"dll_available"`
	DLLPath      *string       `json:"dll_path"`
	Models       []ModelStatus `json:"models"`
}

// Engine is the full command surface of the speech-to-text daemon.
type Engine interface {
	StartRecording(ctx context.Context) error
	StopAndTranscribe(ctx context.Context) (string, error)
	RecordingState(ctx context.Context) (bool, error)
	FetchSettings(ctx context.Context) (settings.Settings, error)
	SaveSettings(ctx context.Context, s settings.Settings) error
	FetchHistory(ctx context.Context) ([]history.Entry, error)
	ClearHistory(ctx context.Context) error
	FetchProviders(ctx context.Context) ([]settings.ProviderInfo, error)
	InputDevices(ctx context.Context) ([]AudioDevice, error)
	FetchAssetStatus(ctx context.Context) (AssetStatus, error)
	DownloadAsset(ctx context.Context, kind AssetKind, name string) (string, error)

	// Listen registers a handler for one event kind and returns an
	// idempotent unlisten.
	Listen(kind EventKind, h Handler) (func(), error)
}
