// Package tts defines the Provider interface for Text-to-Speech backends.
//
// A TTS provider wraps a speech synthesis service (e.g., OpenAI speech or
// ElevenLabs) and turns one complete customer reply into one encoded audio
// clip that the browser plays back. Replies are short, so synthesis is a
// single request rather than a stream.
//
// Implementations must be safe for concurrent use.
package tts

import "context"

// Audio is an encoded clip returned by Synthesize.
type Audio struct {
	// Data holds the encoded bytes (MP3 unless ContentType says otherwise).
	Data []byte

	// ContentType is the MIME type of Data, e.g. "audio/mpeg".
	ContentType string
}

// Provider is the abstraction over any TTS backend.
type Provider interface {
	// Synthesize renders text with the given voice and returns the whole clip.
	// Returns an error if text is empty, the voice is unusable, or the backend
	// fails. There is no retry.
	Synthesize(ctx context.Context, text string, voice VoiceProfile) (*Audio, error)

	// ListVoices returns all voice profiles available from this provider. The list
	// reflects the provider's current catalogue and may change between calls.
	ListVoices(ctx context.Context) ([]VoiceProfile, error)

	// Name returns a short identifier for logs and metrics.
	Name() string
}
