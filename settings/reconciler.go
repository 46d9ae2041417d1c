package settings

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"
)

// savedFlash is how long the saved confirmation stays visible.
const savedFlash = 2 * time.Second

// Saver persists a settings document. The engine implements it.
type Saver interface {
	SaveSettings(ctx context.Context, s Settings) error
}

// Reconciler keeps the engine's canonical settings beside an edited draft.
// Edits touch only the draft; the canonical copy moves on a confirmed save
// and never on failure, so a failed save leaves the edits intact for retry.
type Reconciler struct {
	mu         sync.Mutex
	canonical  Settings
	draft      Settings
	saver      Saver
	saved      bool
	savedTimer *time.Timer
	flash      time.Duration
	onChange   func()
}

// NewReconciler starts from the built-in defaults.
func NewReconciler(saver Saver) *Reconciler {
	return &Reconciler{
		canonical: Default(),
		draft:     Default(),
		saver:     saver,
		flash:     savedFlash,
	}
}

// OnChange registers a hook fired after any mutation, including the delayed
// saved-flag clear. The hook runs without the reconciler lock held.
func (r *Reconciler) OnChange(fn func()) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

func (r *Reconciler) notify() {
	r.mu.Lock()
	fn := r.onChange
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Canonical returns a copy of the engine's confirmed settings.
func (r *Reconciler) Canonical() Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.canonical.Clone()
}

// Draft returns a copy of the working settings.
func (r *Reconciler) Draft() Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draft.Clone()
}

// ResetCanonical adopts engine truth and discards any draft edits.
func (r *Reconciler) ResetCanonical(s Settings) {
	r.mu.Lock()
	r.canonical = s.Clone()
	r.draft = s.Clone()
	r.mu.Unlock()
	r.notify()
}

// Dirty reports whether the draft has unsaved edits.
func (r *Reconciler) Dirty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !reflect.DeepEqual(r.canonical, r.draft)
}

// Saved reports whether a save confirmation is still flashing.
func (r *Reconciler) Saved() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved
}

// edit runs fn against the draft under the lock, then notifies.
func (r *Reconciler) edit(fn func(*Settings)) {
	r.mu.Lock()
	fn(&r.draft)
	r.mu.Unlock()
	r.notify()
}

func (r *Reconciler) SetActiveProvider(id ProviderID) {
	r.edit(func(s *Settings) { s.ActiveProvider = id })
}

func (r *Reconciler) SetInteractionMode(m InteractionMode) {
	r.edit(func(s *Settings) { s.InteractionMode = m })
}

func (r *Reconciler) SetHotkey(accelerator string) {
	r.edit(func(s *Settings) { s.Hotkey = accelerator })
}

func (r *Reconciler) SetLanguage(lang string) {
	r.edit(func(s *Settings) { s.Language = lang })
}

func (r *Reconciler) SetAutoPaste(on bool) {
	r.edit(func(s *Settings) { s.AutoPaste = on })
}

func (r *Reconciler) SetShowOverlay(on bool) {
	r.edit(func(s *Settings) { s.ShowOverlay = on })
}

// SetInputDevice overrides the capture device; an empty name clears the
// override back to the system default.
func (r *Reconciler) SetInputDevice(name string) {
	r.edit(func(s *Settings) { s.InputDevice = strOrNil(name) })
}

func (r *Reconciler) SetLocalModelPath(path string) {
	r.edit(func(s *Settings) { s.LocalWhisperModelPath = strOrNil(path) })
}

func (r *Reconciler) SetGPUDLLPath(path string) {
	r.edit(func(s *Settings) { s.GPUWhisperDLLPath = strOrNil(path) })
}

func (r *Reconciler) SetGPUModelPath(path string) {
	r.edit(func(s *Settings) { s.GPUWhisperModelPath = strOrNil(path) })
}

func (r *Reconciler) SetGPUModelName(name string) {
	r.edit(func(s *Settings) { s.GPUWhisperModelName = strOrNil(name) })
}

// SetProviderField deep-merges one field into the provider's config block,
// creating the block if absent. Empty values normalize to nil so cleared
// credentials serialize as null.
func (r *Reconciler) SetProviderField(id ProviderID, field ProviderField, value string) {
	r.edit(func(s *Settings) {
		if s.ProviderConfigs == nil {
			s.ProviderConfigs = map[ProviderID]ProviderConfig{}
		}
		cfg := s.ProviderConfigs[id]
		switch field {
		case FieldAPIKey:
			cfg.APIKey = strOrNil(value)
		case FieldModel:
			cfg.Model = strOrNil(value)
		case FieldLanguage:
			cfg.Language = strOrNil(value)
		case FieldEndpoint:
			cfg.Endpoint = strOrNil(value)
		}
		s.ProviderConfigs[id] = cfg
	})
}

// Save pushes the draft to the engine. On success the sent document becomes
// canonical and the saved flag flashes; on failure the draft is preserved
// and the error returned. Edits made while the save is in flight stay in
// the draft.
func (r *Reconciler) Save(ctx context.Context) error {
	r.mu.Lock()
	draft := r.draft.Clone()
	r.mu.Unlock()

	if err := r.saver.SaveSettings(ctx, draft); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	r.mu.Lock()
	r.canonical = draft
	r.saved = true
	if r.savedTimer != nil {
		r.savedTimer.Stop()
	}
	r.savedTimer = time.AfterFunc(r.flash, func() {
		r.mu.Lock()
		r.saved = false
		r.mu.Unlock()
		r.notify()
	})
	r.mu.Unlock()
	r.notify()
	return nil
}
