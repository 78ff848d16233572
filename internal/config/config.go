// Package config provides the configuration schema, loader, and provider
// registry for the sales practice server.
package config

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrWong99/salespractice/internal/coach"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l onto a [slog.Level]. Unknown or empty values map to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// IsValid reports whether f is a recognised log format.
func (f LogFormat) IsValid() bool {
	return f == LogFormatText || f == LogFormatJSON
}

// Config is the root configuration structure.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader];
// keys absent from the file keep the values from [Default].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Coach      CoachConfig      `yaml:"coach"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Sessions   SessionsConfig   `yaml:"sessions"`
	Research   ResearchConfig   `yaml:"research"`
	Resilience ResilienceConfig `yaml:"resilience"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	MCP        MCPConfig        `yaml:"mcp"`
}

// ServerConfig holds network, logging and HTTP settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":3000").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat LogFormat `yaml:"log_format"`

	// StaticDir, when set, is served at "/" for the browser client.
	StaticDir string `yaml:"static_dir"`

	// CORSOrigins lists origins allowed to call the API. "*" allows any.
	CORSOrigins []string `yaml:"cors_origins"`

	// MaxUploadBytes caps the size of an uploaded audio file.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// TLS configures TLS for the server. When nil, the server runs plain HTTP.
	TLS *TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate paths for enabling HTTPS.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded TLS certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded TLS private key.
	KeyFile string `yaml:"key_file"`
}

// ProvidersConfig declares which provider implementation to use for each
// model-backed step. Each field selects a named provider registered in the
// [Registry]. Leave STT or TTS without a name to disable that step.
type ProvidersConfig struct {
	LLM ProviderEntry `yaml:"llm"`
	STT ProviderEntry `yaml:"stt"`
	TTS ProviderEntry `yaml:"tts"`
}

// ProviderEntry is the common configuration block shared by all provider types.
// The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "openai", "deepgram").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	// ${VAR} references are expanded from the environment at load time.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "gpt-4o", "whisper-1").
	Model string `yaml:"model"`

	// Timeout bounds a single provider request. Zero uses the provider default.
	Timeout time.Duration `yaml:"timeout"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or nested maps.
	Options map[string]any `yaml:"options"`
}

var providerKeys = []string{"name", "api_key", "base_url", "model", "timeout", "options"}

// UnmarshalYAML replaces the whole entry rather than merging it over the
// default, so switching name never inherits another provider's model. An
// openai entry without api_key reads ${OPENAI_API_KEY}.
func (e *ProviderEntry) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			if k := n.Content[i]; !slices.Contains(providerKeys, k.Value) {
				return fmt.Errorf("line %d: field %s not found in provider entry", k.Line, k.Value)
			}
		}
	}
	type plain ProviderEntry
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*e = ProviderEntry(p)
	if e.Name == "openai" && e.APIKey == "" {
		e.APIKey = "${OPENAI_API_KEY}"
	}
	return nil
}

// CoachConfig tunes model calls and the feedback parser.
type CoachConfig struct {
	// Params holds sampling parameters per call kind.
	Params coach.Params `yaml:"params"`

	// DefaultScore is used when no overall score can be parsed.
	DefaultScore int `yaml:"default_score"`

	// DefaultCriterionScore is used for each pitch criterion without a score.
	DefaultCriterionScore int `yaml:"default_criterion_score"`
}

// CatalogConfig points at an optional YAML file merged over the built-in
// personas, scenarios and pitch lengths.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// SessionsConfig controls server-side practice sessions.
type SessionsConfig struct {
	// Enabled mounts the /api/sessions routes.
	Enabled bool `yaml:"enabled"`

	// IdleTimeout is how long an untouched session survives.
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// ResearchConfig controls URL grounding for research queries.
type ResearchConfig struct {
	// FetchURLs enables downloading a URL found in the query.
	FetchURLs bool `yaml:"fetch_urls"`

	// FetchTimeout bounds one page download.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// MaxBytes caps the downloaded page size.
	MaxBytes int64 `yaml:"max_bytes"`
}

// ResilienceConfig configures the circuit breaker around every provider.
type ResilienceConfig struct {
	MaxFailures  int           `yaml:"max_failures"`
	ResetTimeout time.Duration `yaml:"reset_timeout"`
	HalfOpenMax  int           `yaml:"half_open_max"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name"`

	// OTLPEndpoint, when set, exports spans over OTLP/gRPC to host:port.
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	OTLPInsecure bool `yaml:"otlp_insecure"`

	// SampleRatio is the fraction of new traces recorded, in (0, 1]. Requests
	// arriving with a sampled traceparent are always recorded.
	SampleRatio float64 `yaml:"sample_ratio"`
}

// MCPConfig exposes the scoring tools over the Model Context Protocol.
type MCPConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the streamable MCP endpoint.
	Path string `yaml:"path"`
}

// Default returns the configuration used for keys a file leaves out. It
// matches running the server with no config file at all: OpenAI for every
// step, keyed by OPENAI_API_KEY.
func Default() *Config {
	openai := func(model string) ProviderEntry {
		return ProviderEntry{Name: "openai", APIKey: "${OPENAI_API_KEY}", Model: model}
	}
	return &Config{
		Server: ServerConfig{
			ListenAddr:      ":3000",
			LogLevel:        LogInfo,
			LogFormat:       LogFormatText,
			MaxUploadBytes:  10 << 20,
			ShutdownTimeout: 15 * time.Second,
		},
		Providers: ProvidersConfig{
			LLM: openai("gpt-4.5-preview"),
			STT: openai("whisper-1"),
			TTS: openai("tts-1-hd"),
		},
		Coach: CoachConfig{
			Params:                coach.DefaultParams(),
			DefaultScore:          25,
			DefaultCriterionScore: 25,
		},
		Sessions: SessionsConfig{
			Enabled:     true,
			IdleTimeout: 30 * time.Minute,
		},
		Research: ResearchConfig{
			FetchURLs:    true,
			FetchTimeout: 10 * time.Second,
			MaxBytes:     2 << 20,
		},
		Resilience: ResilienceConfig{
			MaxFailures:  5,
			ResetTimeout: 30 * time.Second,
			HalfOpenMax:  1,
		},
		Telemetry: TelemetryConfig{ServiceName: "salespractice", SampleRatio: 1},
		MCP:       MCPConfig{Path: "/mcp"},
	}
}
