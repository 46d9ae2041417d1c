package engine

import (
	"context"
	"sync"

	"github.com/sjroesink/Whisper/history"
	"github.com/sjroesink/Whisper/settings"
)

// Fake is a scripted engine for tests: canned results, per-command error
// injection, call recording, and synchronous event delivery through Emit.
type Fake struct {
	mu sync.Mutex

	calls []string
	errs  map[string]error

	Recording    bool
	Text         string
	Settings     settings.Settings
	History      []history.Entry
	Providers    []settings.ProviderInfo
	Devices      []AudioDevice
	Assets       AssetStatus
	DownloadPath string
	Saved        []settings.Settings

	listeners map[EventKind]map[int]Handler
	nextID    int
}

// NewFake returns a fake engine primed with the built-in defaults.
func NewFake() *Fake {
	return &Fake{
		errs:      map[string]error{},
		Settings:  settings.Default(),
		Providers: settings.Providers(),
		listeners: map[EventKind]map[int]Handler{},
	}
}

// FailWith makes the named command return err. Listen failures are keyed as
// "listen:<kind>".
func (f *Fake) FailWith(command string, err error) {
	f.mu.Lock()
	f.errs[command] = err
	f.mu.Unlock()
}

func (f *Fake) record(command string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, command)
	return f.errs[command]
}

// Calls returns every command issued so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount reports how often the named command was issued.
func (f *Fake) CallCount(command string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == command {
			n++
		}
	}
	return n
}

func (f *Fake) StartRecording(context.Context) error {
	return f.record("start_recording")
}

func (f *Fake) StopAndTranscribe(context.Context) (string, error) {
	if err := f.record("stop_recording_and_transcribe"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Text, nil
}

func (f *Fake) RecordingState(context.Context) (bool, error) {
	if err := f.record("get_recording_state"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Recording, nil
}

func (f *Fake) FetchSettings(context.Context) (settings.Settings, error) {
	if err := f.record("get_settings"); err != nil {
		return settings.Settings{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Settings.Clone(), nil
}

func (f *Fake) SaveSettings(_ context.Context, s settings.Settings) error {
	if err := f.record("save_settings"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Saved = append(f.Saved, s.Clone())
	f.Settings = s.Clone()
	return nil
}

func (f *Fake) FetchHistory(context.Context) ([]history.Entry, error) {
	if err := f.record("get_history"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]history.Entry(nil), f.History...), nil
}

func (f *Fake) ClearHistory(context.Context) error {
	if err := f.record("clear_history"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.History = nil
	return nil
}

func (f *Fake) FetchProviders(context.Context) ([]settings.ProviderInfo, error) {
	if err := f.record("get_providers"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]settings.ProviderInfo(nil), f.Providers...), nil
}

func (f *Fake) InputDevices(context.Context) ([]AudioDevice, error) {
	if err := f.record("list_input_devices"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]AudioDevice(nil), f.Devices...), nil
}

func (f *Fake) FetchAssetStatus(context.Context) (AssetStatus, error) {
	if err := f.record("get_asset_status"); err != nil {
		return AssetStatus{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Assets, nil
}

func (f *Fake) DownloadAsset(_ context.Context, kind AssetKind, name string) (string, error) {
	if err := f.record("download_asset"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.DownloadPath, nil
}

func (f *Fake) Listen(kind EventKind, h Handler) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["listen:"+string(kind)]; err != nil {
		return nil, err
	}
	if f.listeners[kind] == nil {
		f.listeners[kind] = map[int]Handler{}
	}
	id := f.nextID
	f.nextID++
	f.listeners[kind][id] = h

	return func() {
		f.mu.Lock()
		delete(f.listeners[kind], id)
		f.mu.Unlock()
	}, nil
}

// Emit delivers ev synchronously to every handler registered for its kind.
func (f *Fake) Emit(ev Event) {
	f.mu.Lock()
	handlers := make([]Handler, 0, len(f.listeners[ev.Kind]))
	for _, h := range f.listeners[ev.Kind] {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

// ListenerCount reports active handlers for one kind.
func (f *Fake) ListenerCount(kind EventKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners[kind])
}

// TotalListeners reports active handlers across all kinds.
func (f *Fake) TotalListeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, hs := range f.listeners {
		n += len(hs)
	}
	return n
}
