package engine

import (
	"context"

	"github.com/sjroesink/Whisper/history"
	"github.com/sjroesink/Whisper/settings"
)

// Headless serves the surface when no engine is reachable. Reads fall back
// to built-in defaults, writes are accepted and dropped, and no events ever
// arrive. Running without an engine shows up in logs only; the UI stays
// fully interactive.
type Headless struct{}

func (Headless) StartRecording(context.Context) error { return nil }

func (Headless) StopAndTranscribe(context.Context) (string, error) { return "", nil }

func (Headless) RecordingState(context.Context) (bool, error) { return false, nil }

func (Headless) FetchSettings(context.Context) (settings.Settings, error) {
	return settings.Default(), nil
}

func (Headless) SaveSettings(context.Context, settings.Settings) error { return nil }

func (Headless) FetchHistory(context.Context) ([]history.Entry, error) { return nil, nil }

func (Headless) ClearHistory(context.Context) error { return nil }

func (Headless) FetchProviders(context.Context) ([]settings.ProviderInfo, error) {
	return settings.Providers(), nil
}

func (Headless) InputDevices(context.Context) ([]AudioDevice, error) { return nil, nil }

func (Headless) FetchAssetStatus(context.Context) (AssetStatus, error) {
	return AssetStatus{}, nil
}

// DownloadAsset has no safe fallback: there is nothing to download into.
func (Headless) DownloadAsset(context.Context, AssetKind, string) (string, error) {
	return "", ErrNoEngine
}

func (Headless) Listen(EventKind, Handler) (func(), error) {
	return func() {}, nil
}
