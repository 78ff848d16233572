package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/MrWong99/salespractice/internal/config"
	"github.com/MrWong99/salespractice/internal/health"
	"github.com/MrWong99/salespractice/internal/resilience"
	"github.com/MrWong99/salespractice/pkg/provider/llm"
	"github.com/MrWong99/salespractice/pkg/provider/llm/anyllm"
	oaillm "github.com/MrWong99/salespractice/pkg/provider/llm/openai"
	"github.com/MrWong99/salespractice/pkg/provider/stt"
	"github.com/MrWong99/salespractice/pkg/provider/stt/deepgram"
	oaistt "github.com/MrWong99/salespractice/pkg/provider/stt/openai"
	"github.com/MrWong99/salespractice/pkg/provider/stt/whisper"
	"github.com/MrWong99/salespractice/pkg/provider/tts"
	"github.com/MrWong99/salespractice/pkg/provider/tts/elevenlabs"
	oaitts "github.com/MrWong99/salespractice/pkg/provider/tts/openai"
)

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the appropriate
// provider from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// ── LLM ───────────────────────────────────────────────────────────────────

	reg.RegisterLLM("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []oaillm.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaillm.WithBaseURL(entry.BaseURL))
		}
		if org := config.OptString(entry.Options, "organization"); org != "" {
			opts = append(opts, oaillm.WithOrganization(org))
		}
		if entry.Timeout > 0 {
			opts = append(opts, oaillm.WithTimeout(entry.Timeout))
		}
		return oaillm.New(entry.APIKey, entry.Model, opts...)
	})

	// anthropic, gemini, deepseek, mistral, groq, llamacpp, llamafile and
	// ollama go through any-llm: optional APIKey + optional BaseURL.
	for _, providerName := range []string{
		"anthropic", "gemini", "deepseek", "mistral",
		"groq", "llamacpp", "llamafile", "ollama",
	} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ── STT ───────────────────────────────────────────────────────────────────

	reg.RegisterSTT("openai", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []oaistt.Option
		if entry.Model != "" {
			opts = append(opts, oaistt.WithModel(entry.Model))
		}
		if entry.BaseURL != "" {
			opts = append(opts, oaistt.WithBaseURL(entry.BaseURL))
		}
		if entry.Timeout > 0 {
			opts = append(opts, oaistt.WithTimeout(entry.Timeout))
		}
		return oaistt.New(entry.APIKey, opts...)
	})

	reg.RegisterSTT("deepgram", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []deepgram.Option
		if entry.Model != "" {
			opts = append(opts, deepgram.WithModel(entry.Model))
		}
		if lang := config.OptString(entry.Options, "language"); lang != "" {
			opts = append(opts, deepgram.WithLanguage(lang))
		}
		if entry.BaseURL != "" {
			opts = append(opts, deepgram.WithEndpoint(entry.BaseURL))
		}
		if entry.Timeout > 0 {
			opts = append(opts, deepgram.WithHTTPClient(&http.Client{Timeout: entry.Timeout}))
		}
		return deepgram.New(entry.APIKey, opts...)
	})

	reg.RegisterSTT("whisper", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []whisper.Option
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		if lang := config.OptString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		if entry.Timeout > 0 {
			opts = append(opts, whisper.WithHTTPClient(&http.Client{Timeout: entry.Timeout}))
		}
		return whisper.New(entry.BaseURL, opts...)
	})

	// ── TTS ───────────────────────────────────────────────────────────────────

	reg.RegisterTTS("openai", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []oaitts.Option
		if entry.Model != "" {
			opts = append(opts, oaitts.WithModel(entry.Model))
		}
		if entry.BaseURL != "" {
			opts = append(opts, oaitts.WithBaseURL(entry.BaseURL))
		}
		if entry.Timeout > 0 {
			opts = append(opts, oaitts.WithTimeout(entry.Timeout))
		}
		return oaitts.New(entry.APIKey, opts...)
	})

	reg.RegisterTTS("elevenlabs", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []elevenlabs.Option
		if entry.Model != "" {
			opts = append(opts, elevenlabs.WithModel(entry.Model))
		}
		if outputFmt := config.OptString(entry.Options, "output_format"); outputFmt != "" {
			opts = append(opts, elevenlabs.WithOutputFormat(outputFmt))
		}
		if ws, base := config.OptString(entry.Options, "ws_base_url"), entry.BaseURL; ws != "" && base != "" {
			opts = append(opts, elevenlabs.WithBaseURLs(ws, base))
		}
		return elevenlabs.New(entry.APIKey, opts...)
	})
}

// providers holds the guarded providers and a readiness check per breaker.
type providers struct {
	llm    llm.Provider
	stt    stt.Provider
	tts    tts.Provider
	checks []health.Checker
}

// buildProviders instantiates the providers named in cfg and wraps each in
// a circuit breaker. The language model is required. Speech providers that
// fail to build are logged and left unset so their routes report
// "provider is not configured".
func buildProviders(cfg *config.Config, reg *config.Registry, log *slog.Logger) (*providers, error) {
	ps := &providers{}
	breaker := func(kind, name string) resilience.CircuitBreakerConfig {
		return resilience.CircuitBreakerConfig{
			Name:         kind + "/" + name,
			MaxFailures:  cfg.Resilience.MaxFailures,
			ResetTimeout: cfg.Resilience.ResetTimeout,
			HalfOpenMax:  cfg.Resilience.HalfOpenMax,
			Logger:       log,
		}
	}

	l, err := reg.CreateLLM(cfg.Providers.LLM)
	if err != nil {
		return nil, fmt.Errorf("providers: %w", err)
	}
	lg := resilience.GuardLLM(l, breaker("llm", cfg.Providers.LLM.Name))
	ps.llm = lg
	ps.checks = append(ps.checks, health.BreakerChecker("llm", lg.Breaker()))
	log.Info("provider created", "kind", "llm", "name", cfg.Providers.LLM.Name, "model", cfg.Providers.LLM.Model)

	if name := cfg.Providers.STT.Name; name != "" {
		p, err := reg.CreateSTT(cfg.Providers.STT)
		switch {
		case errors.Is(err, config.ErrProviderNotRegistered):
			return nil, fmt.Errorf("providers: %w", err)
		case err != nil:
			log.Warn("stt provider unavailable, transcription disabled", "name", name, "err", err)
		default:
			g := resilience.GuardSTT(p, breaker("stt", name))
			ps.stt = g
			ps.checks = append(ps.checks, health.Optional(health.BreakerChecker("stt", g.Breaker())))
			log.Info("provider created", "kind", "stt", "name", name, "model", cfg.Providers.STT.Model)
		}
	}

	if name := cfg.Providers.TTS.Name; name != "" {
		p, err := reg.CreateTTS(cfg.Providers.TTS)
		switch {
		case errors.Is(err, config.ErrProviderNotRegistered):
			return nil, fmt.Errorf("providers: %w", err)
		case err != nil:
			log.Warn("tts provider unavailable, speech disabled", "name", name, "err", err)
		default:
			g := resilience.GuardTTS(p, breaker("tts", name))
			ps.tts = g
			ps.checks = append(ps.checks, health.Optional(health.BreakerChecker("tts", g.Breaker())))
			log.Info("provider created", "kind", "tts", "name", name, "model", cfg.Providers.TTS.Model)
		}
	}

	return ps, nil
}
