package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrWong99/salespractice/internal/coach"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm": {"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
	"stt": {"openai", "deepgram", "whisper"},
	"tts": {"openai", "elevenlabs"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over [Default], expands
// environment references in provider credentials and validates the result.
// An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	for _, e := range []*ProviderEntry{&cfg.Providers.LLM, &cfg.Providers.STT, &cfg.Providers.TTS} {
		e.APIKey = expandEnv(e.APIKey)
		e.BaseURL = expandEnv(e.BaseURL)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandEnv replaces ${VAR} references with environment values. Strings
// without a reference are returned as-is so literal keys containing '$'
// survive.
func expandEnv(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.ExpandEnv(s)
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listen_addr is required"))
	}
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.LogFormat != "" && !cfg.Server.LogFormat.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_format %q is invalid; valid values: text, json", cfg.Server.LogFormat))
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_bytes must be positive, got %d", cfg.Server.MaxUploadBytes))
	}
	if tls := cfg.Server.TLS; tls != nil && (tls.CertFile == "" || tls.KeyFile == "") {
		errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
	}

	// Providers
	if cfg.Providers.LLM.Name == "" {
		errs = append(errs, errors.New("providers.llm.name is required"))
	}
	validateProviderName("llm", cfg.Providers.LLM.Name)
	validateProviderName("stt", cfg.Providers.STT.Name)
	validateProviderName("tts", cfg.Providers.TTS.Name)
	if cfg.Providers.STT.Name == "" {
		slog.Warn("providers.stt is not configured; /api/transcribe will fail")
	}
	if cfg.Providers.TTS.Name == "" {
		slog.Warn("providers.tts is not configured; /api/tts will fail")
	}

	// Coach
	errs = append(errs, validateParams("coach.params.chat", cfg.Coach.Params.Chat)...)
	errs = append(errs, validateParams("coach.params.feedback", cfg.Coach.Params.Feedback)...)
	errs = append(errs, validateParams("coach.params.pitch_feedback", cfg.Coach.Params.PitchFeedback)...)
	errs = append(errs, validateParams("coach.params.research", cfg.Coach.Params.Research)...)
	if s := cfg.Coach.DefaultScore; s < 0 || s > 100 {
		errs = append(errs, fmt.Errorf("coach.default_score %d is out of range [0, 100]", s))
	}
	if s := cfg.Coach.DefaultCriterionScore; s < 0 || s > 100 {
		errs = append(errs, fmt.Errorf("coach.default_criterion_score %d is out of range [0, 100]", s))
	}

	// Sessions
	if cfg.Sessions.Enabled && cfg.Sessions.IdleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("sessions.idle_timeout must be positive, got %s", cfg.Sessions.IdleTimeout))
	}

	// Research
	if cfg.Research.FetchURLs && cfg.Research.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("research.fetch_timeout must be positive, got %s", cfg.Research.FetchTimeout))
	}

	// Resilience
	if cfg.Resilience.MaxFailures < 0 {
		errs = append(errs, fmt.Errorf("resilience.max_failures must not be negative, got %d", cfg.Resilience.MaxFailures))
	}
	if cfg.Resilience.HalfOpenMax < 0 {
		errs = append(errs, fmt.Errorf("resilience.half_open_max must not be negative, got %d", cfg.Resilience.HalfOpenMax))
	}

	// Telemetry
	if r := cfg.Telemetry.SampleRatio; r <= 0 || r > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sample_ratio %.2f is out of range (0, 1]", r))
	}

	// MCP
	if cfg.MCP.Enabled && !strings.HasPrefix(cfg.MCP.Path, "/") {
		errs = append(errs, fmt.Errorf("mcp.path %q must start with '/'", cfg.MCP.Path))
	}
	if cfg.MCP.Enabled && strings.HasPrefix(cfg.MCP.Path, "/api/") {
		errs = append(errs, fmt.Errorf("mcp.path %q collides with the /api routes", cfg.MCP.Path))
	}

	return errors.Join(errs...)
}

func validateParams(prefix string, p coach.CallParams) []error {
	var errs []error
	if p.Temperature < 0 || p.Temperature > 2 {
		errs = append(errs, fmt.Errorf("%s.temperature %.2f is out of range [0, 2]", prefix, p.Temperature))
	}
	if p.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("%s.max_tokens must be positive, got %d", prefix, p.MaxTokens))
	}
	if p.PresencePenalty < -2 || p.PresencePenalty > 2 {
		errs = append(errs, fmt.Errorf("%s.presence_penalty %.2f is out of range [-2, 2]", prefix, p.PresencePenalty))
	}
	if p.FrequencyPenalty < -2 || p.FrequencyPenalty > 2 {
		errs = append(errs, fmt.Errorf("%s.frequency_penalty %.2f is out of range [-2, 2]", prefix, p.FrequencyPenalty))
	}
	return errs
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name, may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
