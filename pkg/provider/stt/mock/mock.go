// Package mock provides a test double for the stt.Provider interface.
//
// Example:
//
//	p := &mock.Provider{Result: &stt.Transcript{Text: "hello"}}
//	tr, _ := p.Transcribe(ctx, stt.Request{Audio: r})
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/MrWong99/salespractice/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Provider.Transcribe.
type TranscribeCall struct {
	// Req is the request with Audio set to nil; the bytes are in Audio.
	Req stt.Request
	// Audio is the full content read from Req.Audio.
	Audio []byte
}

// Provider is a mock implementation of stt.Provider.
type Provider struct {
	mu sync.Mutex

	// Result is returned by Transcribe. A nil Result yields an empty transcript.
	Result *stt.Transcript

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// TranscribeCalls records every call to Transcribe.
	TranscribeCalls []TranscribeCall
}

// Transcribe drains req.Audio, records the call and returns Result, Err.
func (p *Provider) Transcribe(_ context.Context, req stt.Request) (*stt.Transcript, error) {
	var data []byte
	if req.Audio != nil {
		data, _ = io.ReadAll(req.Audio)
	}
	req.Audio = nil

	p.mu.Lock()
	defer p.mu.Unlock()
	p.TranscribeCalls = append(p.TranscribeCalls, TranscribeCall{Req: req, Audio: data})
	if p.Err != nil {
		return nil, p.Err
	}
	if p.Result == nil {
		return &stt.Transcript{}, nil
	}
	out := *p.Result
	return &out, nil
}

// Name implements stt.Provider.
func (p *Provider) Name() string { return "mock" }

// Calls returns a copy of the recorded calls. Thread-safe.
func (p *Provider) Calls() []TranscribeCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]TranscribeCall, len(p.TranscribeCalls))
	copy(out, p.TranscribeCalls)
	return out
}

// Ensure Provider implements stt.Provider at compile time.
var _ stt.Provider = (*Provider)(nil)
