package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sjroesink/Whisper/engine"
	"github.com/sjroesink/Whisper/history"
)

func newTestStore(t *testing.T) (*Store, *engine.Fake) {
	t.Helper()
	fake := engine.NewFake()
	s := New(fake)
	sub, err := s.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	t.Cleanup(sub.Close)
	return s, fake
}

func assertLifecycle(t *testing.T, s *Store, recording, transcribing bool) {
	t.Helper()
	snap := s.Snapshot()
	if snap.Recording && snap.Transcribing {
		t.Fatal("recording and transcribing both set")
	}
	if snap.Recording != recording || snap.Transcribing != transcribing {
		t.Fatalf("lifecycle = (%v, %v), want (%v, %v)",
			snap.Recording, snap.Transcribing, recording, transcribing)
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestLifecycleFollowsEvents(t *testing.T) {
	s, fake := newTestStore(t)
	assertLifecycle(t, s, false, false)

	fake.Emit(engine.Event{Kind: engine.EventRecordingStarted})
	assertLifecycle(t, s, true, false)

	fake.Emit(engine.Event{Kind: engine.EventRecordingStopped})
	assertLifecycle(t, s, false, false)

	fake.Emit(engine.Event{Kind: engine.EventTranscribing})
	assertLifecycle(t, s, false, true)

	fake.Emit(engine.Event{Kind: engine.EventTranscriptionComplete, Transcription: &engine.TranscriptionPayload{
		Text: "hello world", Provider: "OpenAiWhisper", DurationMS: 840, Language: "en",
	}})
	assertLifecycle(t, s, false, false)

	snap := s.Snapshot()
	if snap.Current != "hello world" {
		t.Errorf("Current = %q, want hello world", snap.Current)
	}
}

func TestCommandDispatchDoesNotFlipFlags(t *testing.T) {
	s, fake := newTestStore(t)
	ctx := context.Background()

	s.Toggle(ctx)
	if got := fake.CallCount("start_recording"); got != 1 {
		t.Fatalf("start_recording dispatched %d times, want 1", got)
	}
	// No event yet: still idle.
	assertLifecycle(t, s, false, false)

	fake.Emit(engine.Event{Kind: engine.EventRecordingStarted})
	assertLifecycle(t, s, true, false)

	s.Toggle(ctx)
	if got := fake.CallCount("stop_recording_and_transcribe"); got != 1 {
		t.Fatalf("stop dispatched %d times, want 1", got)
	}
	// Still recording until the engine confirms.
	assertLifecycle(t, s, true, false)
}

func TestRapidTogglesStayConsistent(t *testing.T) {
	s, fake := newTestStore(t)
	ctx := context.Background()

	// Both dispatches race ahead of any event; the flags must stay legal
	// and follow only the eventual event.
	s.Toggle(ctx)
	s.Toggle(ctx)
	assertLifecycle(t, s, false, false)
	if got := fake.CallCount("start_recording"); got != 2 {
		t.Errorf("start_recording dispatched %d times, want 2 (engine arbitrates)", got)
	}

	fake.Emit(engine.Event{Kind: engine.EventRecordingStarted})
	assertLifecycle(t, s, true, false)
}

func TestToggleWhileTranscribingIsIgnored(t *testing.T) {
	s, fake := newTestStore(t)
	fake.Emit(engine.Event{Kind: engine.EventTranscribing})

	s.Toggle(context.Background())

	if n := len(fake.Calls()); n != 0 {
		t.Errorf("commands dispatched while transcribing: %v", fake.Calls())
	}
	assertLifecycle(t, s, false, true)
}

func TestCommandFailureLeavesStateUntouched(t *testing.T) {
	s, fake := newTestStore(t)
	fake.FailWith("start_recording", &engine.CommandError{Command: "start_recording", Msg: "mic busy"})

	s.Toggle(context.Background())

	assertLifecycle(t, s, false, false)
	if snap := s.Snapshot(); snap.LastError != "" {
		t.Errorf("LastError = %q, want empty; command failures are logged, not surfaced", snap.LastError)
	}
}

func TestErrorEventIsAuthoritative(t *testing.T) {
	s, fake := newTestStore(t)
	fake.Emit(engine.Event{Kind: engine.EventRecordingStarted})

	fake.Emit(engine.Event{Kind: engine.EventError, Message: "transcription failed: timeout"})

	assertLifecycle(t, s, false, false)
	if got := s.Snapshot().LastError; got != "transcription failed: timeout" {
		t.Fatalf("LastError = %q", got)
	}

	// The banner clears on the next successful recording start.
	fake.Emit(engine.Event{Kind: engine.EventRecordingStarted})
	if got := s.Snapshot().LastError; got != "" {
		t.Errorf("LastError = %q after recording-started, want empty", got)
	}
}

func TestClearErrorDismissesBanner(t *testing.T) {
	s, fake := newTestStore(t)
	fake.Emit(engine.Event{Kind: engine.EventError, Message: "boom"})

	s.ClearError()

	if got := s.Snapshot().LastError; got != "" {
		t.Errorf("LastError = %q after dismiss, want empty", got)
	}
}

func TestDuplicateRecordingStartedIsIdempotent(t *testing.T) {
	s, fake := newTestStore(t)
	fake.Emit(engine.Event{Kind: engine.EventRecordingStarted})
	fake.Emit(engine.Event{Kind: engine.EventRecordingStarted})
	assertLifecycle(t, s, true, false)
}

func TestTranscriptionCompleteAppendsHistory(t *testing.T) {
	s, fake := newTestStore(t)

	var hooked []history.Entry
	s.OnTranscription(func(e history.Entry) { hooked = append(hooked, e) })

	fake.Emit(engine.Event{Kind: engine.EventTranscriptionComplete, Transcription: &engine.TranscriptionPayload{
		Text: "first", Provider: "LocalWhisper", DurationMS: 500,
	}})
	fake.Emit(engine.Event{Kind: engine.EventTranscriptionComplete, Transcription: &engine.TranscriptionPayload{
		Text: "second", Provider: "LocalWhisper", DurationMS: 700,
	}})

	snap := s.Snapshot()
	if len(snap.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(snap.History))
	}
	if snap.History[0].Text != "second" {
		t.Errorf("newest entry = %q, want second", snap.History[0].Text)
	}
	if snap.History[0].ID == "" || snap.History[0].ID == snap.History[1].ID {
		t.Error("entries missing unique ids")
	}
	if len(hooked) != 2 || hooked[1].Text != "second" {
		t.Errorf("transcription hook saw %v", hooked)
	}
}

func TestMalformedTranscriptionPayloadTolerated(t *testing.T) {
	s, fake := newTestStore(t)
	fake.Emit(engine.Event{Kind: engine.EventTranscriptionComplete}) // no payload

	assertLifecycle(t, s, false, false)
	if n := len(s.Snapshot().History); n != 0 {
		t.Errorf("history length = %d, want 0", n)
	}
}

func TestSubscriptionTeardownIdempotent(t *testing.T) {
	fake := engine.NewFake()
	s := New(fake)
	sub, err := s.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if got := fake.TotalListeners(); got != 6 {
		t.Fatalf("TotalListeners = %d, want 6", got)
	}

	sub.Close()
	if got := fake.TotalListeners(); got != 0 {
		t.Fatalf("TotalListeners = %d after Close, want 0", got)
	}
	sub.Close() // second close does nothing

	fake.Emit(engine.Event{Kind: engine.EventRecordingStarted})
	assertLifecycle(t, s, false, false)
}

func TestPartialSubscriptionFailure(t *testing.T) {
	fake := engine.NewFake()
	fake.FailWith("listen:transcribing", errors.New("kind unsupported"))
	s := New(fake)

	sub, err := s.Subscribe(context.Background())
	if err == nil {
		t.Fatal("Subscribe returned nil error, want the failed kind reported")
	}
	if got := sub.Active(); got != 5 {
		t.Fatalf("Active = %d, want the 5 kinds that registered", got)
	}

	// The surviving handlers still work.
	fake.Emit(engine.Event{Kind: engine.EventRecordingStarted})
	assertLifecycle(t, s, true, false)

	sub.Close()
	if got := fake.TotalListeners(); got != 0 {
		t.Errorf("TotalListeners = %d after Close, want 0", got)
	}
}

func TestClearHistoryFailureKeepsLocal(t *testing.T) {
	s, fake := newTestStore(t)
	fake.Emit(engine.Event{Kind: engine.EventTranscriptionComplete, Transcription: &engine.TranscriptionPayload{
		Text: "keep me", Provider: "OpenAiWhisper", DurationMS: 100,
	}})
	fake.FailWith("clear_history", errors.New("store locked"))

	err := s.ClearHistory(context.Background())
	if err == nil {
		t.Fatal("ClearHistory returned nil, want error")
	}
	if n := len(s.Snapshot().History); n != 1 {
		t.Errorf("history length = %d after failed clear, want 1 (no divergence)", n)
	}
}

func TestClearHistorySuccess(t *testing.T) {
	s, fake := newTestStore(t)
	fake.Emit(engine.Event{Kind: engine.EventTranscriptionComplete, Transcription: &engine.TranscriptionPayload{
		Text: "gone", Provider: "OpenAiWhisper", DurationMS: 100,
	}})

	if err := s.ClearHistory(context.Background()); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	if n := len(s.Snapshot().History); n != 0 {
		t.Errorf("history length = %d, want 0", n)
	}
	if fake.CallCount("clear_history") != 1 {
		t.Error("engine clear_history not issued")
	}
}

func TestDownloadProgressFlow(t *testing.T) {
	s, fake := newTestStore(t)
	total := uint64(488 << 20)

	fake.Emit(engine.Event{Kind: engine.EventDownloadProgress, Progress: &engine.ProgressPayload{
		Item: "ggml-small.bin", Downloaded: 0, Total: &total,
	}})
	fake.Emit(engine.Event{Kind: engine.EventDownloadProgress, Progress: &engine.ProgressPayload{
		Item: "ggml-small.bin", Downloaded: 244 << 20, Total: &total,
	}})

	lines := s.Snapshot().Downloads
	if len(lines) != 1 || lines[0].Downloaded != 244<<20 {
		t.Fatalf("downloads = %+v, want one line at 244 MB", lines)
	}

	fake.Emit(engine.Event{Kind: engine.EventDownloadProgress, Progress: &engine.ProgressPayload{
		Item: "ggml-small.bin", Downloaded: total, Total: &total, Done: true,
	}})

	if n := len(s.Snapshot().Downloads); n != 0 {
		t.Fatalf("downloads = %d after done, want 0", n)
	}
	// Completion triggers an asset status refresh off the event path.
	waitFor(t, func() bool { return fake.CallCount("get_asset_status") >= 1 },
		"asset status never refreshed after download completion")
}

func TestDownloadAssetRejectedDropsLine(t *testing.T) {
	s, fake := newTestStore(t)
	fake.Emit(engine.Event{Kind: engine.EventDownloadProgress, Progress: &engine.ProgressPayload{
		Item: "ggml-large-v3.bin", Downloaded: 10,
	}})
	fake.FailWith("download_asset", &engine.CommandError{Command: "download_asset", Msg: "disk full"})

	s.DownloadAsset(context.Background(), engine.AssetModel, "ggml-large-v3.bin")

	snap := s.Snapshot()
	if n := len(snap.Downloads); n != 0 {
		t.Errorf("downloads = %d after rejection, want 0", n)
	}
	if snap.LastError != "" {
		t.Errorf("LastError = %q, want empty; rejections are logged, not surfaced", snap.LastError)
	}
}

func TestDownloadAssetSuccessSavesPath(t *testing.T) {
	s, fake := newTestStore(t)
	fake.DownloadPath = `C:\whisper\models\ggml-medium.bin`

	s.DownloadAsset(context.Background(), engine.AssetModel, "ggml-medium.bin")

	draft := s.Settings().Draft()
	if draft.GPUWhisperModelPath == nil || *draft.GPUWhisperModelPath != fake.DownloadPath {
		t.Errorf("GPUWhisperModelPath = %v, want downloaded path", draft.GPUWhisperModelPath)
	}
	if draft.GPUWhisperModelName == nil || *draft.GPUWhisperModelName != "ggml-medium.bin" {
		t.Errorf("GPUWhisperModelName = %v, want ggml-medium.bin", draft.GPUWhisperModelName)
	}
	if fake.CallCount("save_settings") != 1 {
		t.Error("downloaded path not persisted")
	}
}
