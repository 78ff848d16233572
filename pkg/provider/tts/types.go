package tts

// VoiceProfile describes a TTS voice a persona can speak with.
type VoiceProfile struct {
	// ID is the provider-specific voice identifier (e.g., "onyx").
	ID string

	// Name is the human-readable voice name.
	Name string

	// Provider identifies which TTS provider this voice belongs to.
	Provider string

	// Language is a BCP-47 tag when the provider reports one (e.g., "en-US").
	Language string

	// SpeedFactor adjusts speaking rate (0.25–4.0, 1.0 = default). Zero means
	// provider default.
	SpeedFactor float64

	// Metadata holds provider-specific voice attributes (gender, age, accent, etc.).
	Metadata map[string]string
}
