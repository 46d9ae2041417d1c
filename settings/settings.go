// Package settings holds the engine's configuration document and the
// reconciler that keeps an edited draft beside the engine's canonical copy.
package settings

import (
	"github.com/sjroesink/Whisper/accel"
)

// InteractionMode selects how the hotkey drives recording.
type InteractionMode string

const (
	// ModeToggle starts on one press and stops on the next.
	ModeToggle InteractionMode = "Toggle"
	// ModePushToTalk records only while the hotkey is held.
	ModePushToTalk InteractionMode = "PushToTalk"
)

// Settings is the engine's persisted configuration document. JSON field
// names are the wire contract.
type Settings struct {
	ActiveProvider        ProviderID                    `json:"active_provider"`
	InteractionMode       InteractionMode               `json:"interaction_mode"`
	Hotkey                string                        `json:"hotkey"`
	Language              string                        `json:"language"`
	ProviderConfigs       map[ProviderID]ProviderConfig `json:"provider_configs"`
	LocalWhisperModelPath *string                       `json:"local_whisper_model_path,omitempty"`
	GPUWhisperDLLPath     *string                       `json:"constme_whisper_dll_path,omitempty"`
	GPUWhisperModelPath   *string                       `json:"constme_whisper_model_path,omitempty"`
	GPUWhisperModelName   *string                       `json:"constme_whisper_model_name,omitempty"`
	AutoPaste             bool                          `json:"auto_paste"`
	ShowOverlay           bool                          `json:"show_overlay"`
	InputDevice           *string                       `json:"input_device,omitempty"`
}

// ProviderConfig is the per-provider credential and tuning block. Nil and
// absent are equivalent on the wire; cleared fields serialize as absent,
// never as "".
type ProviderConfig struct {
	APIKey   *string `json:"api_key,omitempty"`
	Model    *string `json:"model,omitempty"`
	Language *string `json:"language,omitempty"`
	Endpoint *string `json:"endpoint,omitempty"`
}

// ProviderField names one mutable ProviderConfig field.
type ProviderField int

const (
	FieldAPIKey ProviderField = iota
	FieldModel
	FieldLanguage
	FieldEndpoint
)

// Default returns the built-in settings used until the engine supplies its
// own.
func Default() Settings {
	return Settings{
		ActiveProvider:  Providers()[0].ID,
		InteractionMode: ModeToggle,
		Hotkey:          accel.Default,
		Language:        "auto",
		ProviderConfigs: map[ProviderID]ProviderConfig{},
		AutoPaste:       true,
		ShowOverlay:     true,
	}
}

// Clone deep-copies s, including the config map and pointer fields.
func (s Settings) Clone() Settings {
	out := s
	out.ProviderConfigs = make(map[ProviderID]ProviderConfig, len(s.ProviderConfigs))
	for id, cfg := range s.ProviderConfigs {
		out.ProviderConfigs[id] = cfg.clone()
	}
	out.LocalWhisperModelPath = cloneStr(s.LocalWhisperModelPath)
	out.GPUWhisperDLLPath = cloneStr(s.GPUWhisperDLLPath)
	out.GPUWhisperModelPath = cloneStr(s.GPUWhisperModelPath)
	out.GPUWhisperModelName = cloneStr(s.GPUWhisperModelName)
	out.InputDevice = cloneStr(s.InputDevice)
	return out
}

func (c ProviderConfig) clone() ProviderConfig {
	return ProviderConfig{
		APIKey:   cloneStr(c.APIKey),
		Model:    cloneStr(c.Model),
		Language: cloneStr(c.Language),
		Endpoint: cloneStr(c.Endpoint),
	}
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// strOrNil normalizes form input: an empty string means "cleared" and is
// stored as nil so it serializes as null on the wire.
func strOrNil(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
