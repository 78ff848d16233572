// Package stt defines the Provider interface for Speech-to-Text backends.
//
// An STT provider wraps a batch transcription service (e.g., OpenAI Whisper,
// Deepgram, or a local whisper.cpp server). The caller hands over one complete
// recording and receives the recognised text. There is no streaming: the sales
// coach records a whole utterance in the browser and uploads it.
//
// Implementations must be safe for concurrent use.
package stt

import (
	"context"
	"io"
	"time"
)

// Request describes one recording to transcribe.
type Request struct {
	// Audio is the encoded recording (WAV, WebM, MP3, ...). It is read to EOF.
	Audio io.Reader

	// Filename is forwarded to backends that infer the container from the
	// extension. Empty means "audio.wav".
	Filename string

	// ContentType is the MIME type of Audio. Empty means "audio/wav".
	ContentType string

	// Language is a BCP-47 hint (e.g., "en"). Empty lets the backend detect.
	Language string

	// Keywords are vocabulary hints such as product names. Backends without a
	// boosting API ignore them.
	Keywords []KeywordBoost
}

// FilenameOrDefault returns Filename, or "audio.wav" when it is empty.
func (r Request) FilenameOrDefault() string {
	if r.Filename == "" {
		return "audio.wav"
	}
	return r.Filename
}

// ContentTypeOrDefault returns ContentType, or "audio/wav" when it is empty.
func (r Request) ContentTypeOrDefault() string {
	if r.ContentType == "" {
		return "audio/wav"
	}
	return r.ContentType
}

// KeywordBoost represents a keyword to boost in STT recognition.
type KeywordBoost struct {
	// Keyword is the text to boost (e.g., "Kubernetes").
	Keyword string

	// Boost is the intensity of the boost (provider-specific scale).
	Boost float64
}

// Transcript is the result of a batch transcription.
type Transcript struct {
	// Text is the transcribed speech content.
	Text string

	// Confidence is the overall confidence score (0.0–1.0). May be zero if the
	// provider does not report confidence.
	Confidence float64

	// Duration is the length of the recording when the backend reports it.
	Duration time.Duration
}

// Provider is the abstraction over any STT backend.
type Provider interface {
	// Transcribe reads req.Audio to EOF and returns its transcript.
	// An empty Text with a nil error means the recording held no speech.
	Transcribe(ctx context.Context, req Request) (*Transcript, error)

	// Name returns a short identifier for logs and metrics.
	Name() string
}
