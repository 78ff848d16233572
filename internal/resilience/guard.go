package resilience

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrWong99/salespractice/pkg/provider/llm"
	"github.com/MrWong99/salespractice/pkg/provider/stt"
	"github.com/MrWong99/salespractice/pkg/provider/tts"
)

// open annotates ErrCircuitOpen with the breaker name; other errors pass through.
func open(cb *CircuitBreaker, err error) error {
	if errors.Is(err, ErrCircuitOpen) {
		return fmt.Errorf("resilience: %s: %w", cb.Name(), err)
	}
	return err
}

// ── LLM ──────────────────────────────────────────────────────────────────────

// LLMGuard implements [llm.Provider] by routing every completion through a
// circuit breaker.
type LLMGuard struct {
	inner llm.Provider
	cb    *CircuitBreaker
}

var _ llm.Provider = (*LLMGuard)(nil)

// GuardLLM wraps p with a breaker built from cfg. An empty cfg.Name defaults
// to "llm/<p.Name()>".
func GuardLLM(p llm.Provider, cfg CircuitBreakerConfig) *LLMGuard {
	if cfg.Name == "" {
		cfg.Name = "llm/" + p.Name()
	}
	return &LLMGuard{inner: p, cb: NewCircuitBreaker(cfg)}
}

// Complete implements [llm.Provider].
func (g *LLMGuard) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	resp, err := executeWithResult(ctx, g.cb, func() (*llm.CompletionResponse, error) {
		return g.inner.Complete(ctx, req)
	})
	return resp, open(g.cb, err)
}

// Name implements [llm.Provider] and reports the wrapped provider's name.
func (g *LLMGuard) Name() string { return g.inner.Name() }

// Breaker exposes the guard's breaker for readiness checks.
func (g *LLMGuard) Breaker() *CircuitBreaker { return g.cb }

// ── STT ──────────────────────────────────────────────────────────────────────

// STTGuard implements [stt.Provider] behind a circuit breaker.
type STTGuard struct {
	inner stt.Provider
	cb    *CircuitBreaker
}

var _ stt.Provider = (*STTGuard)(nil)

// GuardSTT wraps p with a breaker built from cfg. An empty cfg.Name defaults
// to "stt/<p.Name()>".
func GuardSTT(p stt.Provider, cfg CircuitBreakerConfig) *STTGuard {
	if cfg.Name == "" {
		cfg.Name = "stt/" + p.Name()
	}
	return &STTGuard{inner: p, cb: NewCircuitBreaker(cfg)}
}

// Transcribe implements [stt.Provider].
func (g *STTGuard) Transcribe(ctx context.Context, req stt.Request) (*stt.Transcript, error) {
	tr, err := executeWithResult(ctx, g.cb, func() (*stt.Transcript, error) {
		return g.inner.Transcribe(ctx, req)
	})
	return tr, open(g.cb, err)
}

// Name implements [stt.Provider].
func (g *STTGuard) Name() string { return g.inner.Name() }

// Breaker exposes the guard's breaker for readiness checks.
func (g *STTGuard) Breaker() *CircuitBreaker { return g.cb }

// ── TTS ──────────────────────────────────────────────────────────────────────

// TTSGuard implements [tts.Provider] behind a circuit breaker. ListVoices
// shares the breaker with Synthesize since both hit the same upstream.
type TTSGuard struct {
	inner tts.Provider
	cb    *CircuitBreaker
}

var _ tts.Provider = (*TTSGuard)(nil)

// GuardTTS wraps p with a breaker built from cfg. An empty cfg.Name defaults
// to "tts/<p.Name()>".
func GuardTTS(p tts.Provider, cfg CircuitBreakerConfig) *TTSGuard {
	if cfg.Name == "" {
		cfg.Name = "tts/" + p.Name()
	}
	return &TTSGuard{inner: p, cb: NewCircuitBreaker(cfg)}
}

// Synthesize implements [tts.Provider].
func (g *TTSGuard) Synthesize(ctx context.Context, text string, voice tts.VoiceProfile) (*tts.Audio, error) {
	a, err := executeWithResult(ctx, g.cb, func() (*tts.Audio, error) {
		return g.inner.Synthesize(ctx, text, voice)
	})
	return a, open(g.cb, err)
}

// ListVoices implements [tts.Provider].
func (g *TTSGuard) ListVoices(ctx context.Context) ([]tts.VoiceProfile, error) {
	v, err := executeWithResult(ctx, g.cb, func() ([]tts.VoiceProfile, error) {
		return g.inner.ListVoices(ctx)
	})
	return v, open(g.cb, err)
}

// Name implements [tts.Provider].
func (g *TTSGuard) Name() string { return g.inner.Name() }

// Breaker exposes the guard's breaker for readiness checks.
func (g *TTSGuard) Breaker() *CircuitBreaker { return g.cb }
