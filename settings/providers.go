package settings

// ProviderID identifies a speech-to-text backend. The string values are the
// engine's wire representation and must not drift.
type ProviderID string

const (
	ProviderOpenAIWhisper ProviderID = "OpenAiWhisper"
	ProviderGoogleCloud   ProviderID = "GoogleCloud"
	ProviderLocalWhisper  ProviderID = "LocalWhisper"
	ProviderNativeSTT     ProviderID = "NativeStt"
	ProviderWhisperGPU    ProviderID = "ConstmeWhisper"
)

// Name returns the human label for the provider.
func (id ProviderID) Name() string {
	switch id {
	case ProviderOpenAIWhisper:
		return "OpenAI Whisper"
	case ProviderGoogleCloud:
		return "Google Cloud"
	case ProviderLocalWhisper:
		return "Local Whisper"
	case ProviderNativeSTT:
		return "Native STT"
	case ProviderWhisperGPU:
		return "Whisper GPU (DirectCompute)"
	}
	return string(id)
}

// ProviderInfo is one catalog entry as the engine reports it.
type ProviderInfo struct {
	ID        ProviderID `json:"id"`
	Name      string     `json:"name"`
	Available bool       `json:"available"`
}

// Providers returns the built-in catalog, used when the engine cannot be
// asked. The first entry is the default active provider.
func Providers() []ProviderInfo {
	ids := []ProviderID{
		ProviderOpenAIWhisper,
		ProviderGoogleCloud,
		ProviderLocalWhisper,
		ProviderNativeSTT,
		ProviderWhisperGPU,
	}
	out := make([]ProviderInfo, len(ids))
	for i, id := range ids {
		out[i] = ProviderInfo{ID: id, Name: id.Name(), Available: true}
	}
	return out
}
