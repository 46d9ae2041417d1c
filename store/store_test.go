package store

import (
	"context"
	"errors"
	"testing"

	"github.com/sjroesink/Whisper/engine"
	"github.com/sjroesink/Whisper/history"
	"github.com/sjroesink/Whisper/settings"
)

func strptr(s string) *string { return &s }

func TestBootstrapPrimesFromEngine(t *testing.T) {
	fake := engine.NewFake()
	fake.Recording = true
	fake.Settings.Language = "de"
	fake.Settings.ActiveProvider = settings.ProviderLocalWhisper
	fake.History = []history.Entry{
		history.New("newest", "LocalWhisper", 300, "de"),
		history.New("oldest", "LocalWhisper", 200, "de"),
	}
	fake.Devices = []engine.AudioDevice{
		{Name: "Built-in Microphone", Default: true},
		{Name: "USB Condenser"},
	}
	fake.Assets = engine.AssetStatus{
		DLLAvailable: true,
		DLLPath:      strptr(`C:\whisper\Whisper.dll`),
		Models: []engine.ModelStatus{
			{Name: "Small", Filename: "ggml-small.bin", Size: "~466 MB", Available: true},
		},
	}

	s := New(fake)
	s.Bootstrap(context.Background())

	snap := s.Snapshot()
	if !snap.Recording {
		t.Error("Recording = false, want the engine's reported state")
	}
	if snap.Canonical.Language != "de" {
		t.Errorf("Canonical.Language = %q, want de", snap.Canonical.Language)
	}
	if len(snap.History) != 2 || snap.History[0].Text != "newest" {
		t.Errorf("history = %+v, want engine order preserved", snap.History)
	}
	if len(snap.Devices) != 2 || !snap.Devices[0].Default {
		t.Errorf("devices = %+v", snap.Devices)
	}
	if !snap.Assets.DLLAvailable || len(snap.Assets.Models) != 1 {
		t.Errorf("assets = %+v", snap.Assets)
	}
}

func TestBootstrapFallsBackPerFetch(t *testing.T) {
	fake := engine.NewFake()
	fake.Devices = []engine.AudioDevice{{Name: "USB Condenser"}}
	fake.FailWith("get_settings", errors.New("engine down"))
	fake.FailWith("get_history", errors.New("engine down"))
	fake.FailWith("get_providers", errors.New("engine down"))
	fake.FailWith("get_asset_status", errors.New("engine down"))

	s := New(fake)
	s.Bootstrap(context.Background())

	snap := s.Snapshot()
	if snap.Canonical.ActiveProvider != settings.Providers()[0].ID {
		t.Errorf("ActiveProvider = %q, want built-in default", snap.Canonical.ActiveProvider)
	}
	if len(snap.History) != 0 {
		t.Errorf("history = %+v, want empty", snap.History)
	}
	if len(snap.Providers) != len(settings.Providers()) {
		t.Errorf("providers = %d, want built-in catalog kept", len(snap.Providers))
	}
	// The fetches that did succeed still land.
	if len(snap.Devices) != 1 {
		t.Errorf("devices = %+v, want the one working fetch applied", snap.Devices)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s, fake := newTestStore(t)
	fake.Emit(engine.Event{Kind: engine.EventTranscriptionComplete, Transcription: &engine.TranscriptionPayload{
		Text: "original", Provider: "OpenAiWhisper", DurationMS: 100,
	}})

	snap := s.Snapshot()
	snap.History[0].Text = "mutated"

	if got := s.Snapshot().History[0].Text; got != "original" {
		t.Errorf("store history = %q, snapshot mutation leaked in", got)
	}
}

func TestSetViewNotifies(t *testing.T) {
	s, _ := newTestStore(t)

	var fired int
	s.OnChange(func() { fired++ })

	s.SetView(ViewSettings)
	if got := s.Snapshot().View; got != ViewSettings {
		t.Fatalf("View = %v, want ViewSettings", got)
	}
	if fired != 1 {
		t.Errorf("change hook fired %d times, want 1", fired)
	}

	s.SetView(ViewSettings) // no-op, no notification
	if fired != 1 {
		t.Errorf("change hook fired %d times after no-op SetView, want 1", fired)
	}
}

func TestSaveSettingsDelegates(t *testing.T) {
	s, fake := newTestStore(t)
	s.Settings().SetLanguage("nl")

	if err := s.SaveSettings(context.Background()); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if len(fake.Saved) != 1 || fake.Saved[0].Language != "nl" {
		t.Fatalf("engine saw %+v", fake.Saved)
	}
	if s.Snapshot().Dirty {
		t.Error("Dirty after successful save")
	}
}

func TestSaveSettingsFailureReported(t *testing.T) {
	s, fake := newTestStore(t)
	fake.FailWith("save_settings", errors.New("disk full"))
	s.Settings().SetLanguage("nl")

	if err := s.SaveSettings(context.Background()); err == nil {
		t.Fatal("SaveSettings returned nil, want error")
	}
	if !s.Snapshot().Dirty {
		t.Error("draft lost after failed save")
	}
}

func TestViewString(t *testing.T) {
	tests := []struct {
		view View
		want string
	}{
		{ViewMain, "main"},
		{ViewHistory, "history"},
		{ViewSettings, "settings"},
		{ViewModels, "models"},
	}
	for _, tt := range tests {
		if got := tt.view.String(); got != tt.want {
			t.Errorf("View(%d).String() = %q, want %q", tt.view, got, tt.want)
		}
	}
}
