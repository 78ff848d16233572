package config_test

import (
	"strings"
	"testing"

	"github.com/MrWong99/salespractice/internal/config"
)

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"invalid log level", "server:\n  log_level: verbose\n", "log_level"},
		{"invalid log format", "server:\n  log_format: xml\n", "log_format"},
		{"empty listen addr", "server:\n  listen_addr: \"\"\n", "listen_addr"},
		{"non-positive upload limit", "server:\n  max_upload_bytes: 0\n", "max_upload_bytes"},
		{"tls without key", "server:\n  tls:\n    cert_file: cert.pem\n", "tls"},
		{"missing llm", "providers:\n  llm: {}\n", "providers.llm.name"},
		{"temperature out of range", "coach:\n  params:\n    chat:\n      temperature: 3\n", "coach.params.chat.temperature"},
		{"zero max tokens", "coach:\n  params:\n    research:\n      max_tokens: 0\n", "coach.params.research.max_tokens"},
		{"penalty out of range", "coach:\n  params:\n    chat:\n      presence_penalty: -2.5\n", "presence_penalty"},
		{"default score out of range", "coach:\n  default_score: 101\n", "coach.default_score"},
		{"criterion score out of range", "coach:\n  default_criterion_score: -1\n", "default_criterion_score"},
		{"session idle timeout", "sessions:\n  idle_timeout: 0s\n", "sessions.idle_timeout"},
		{"fetch timeout", "research:\n  fetch_timeout: 0s\n", "research.fetch_timeout"},
		{"negative breaker failures", "resilience:\n  max_failures: -1\n", "resilience.max_failures"},
		{"sample ratio out of range", "telemetry:\n  sample_ratio: 1.5\n", "telemetry.sample_ratio"},
		{"mcp path without slash", "mcp:\n  enabled: true\n  path: mcp\n", "mcp.path"},
		{"mcp path under api", "mcp:\n  enabled: true\n  path: /api/mcp\n", "collides"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromReader(strings.NewReader(tc.yaml))
			if err == nil {
				t.Fatalf("expected error mentioning %q, got nil", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error should mention %q, got: %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidate_DisabledSectionsSkipChecks(t *testing.T) {
	t.Parallel()
	yaml := `
sessions:
  enabled: false
  idle_timeout: 0s
research:
  fetch_urls: false
  fetch_timeout: 0s
mcp:
  enabled: false
  path: ""
`
	if _, err := config.LoadFromReader(strings.NewReader(yaml)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  log_level: verbose
  log_format: xml
coach:
  default_score: 200
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	for _, want := range []string{"log_level", "log_format", "default_score"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("joined error should mention %q, got: %v", want, err)
		}
	}
}

func TestValidate_DefaultIsValid(t *testing.T) {
	t.Parallel()
	if err := config.Validate(config.Default()); err != nil {
		t.Fatalf("Default() should validate, got: %v", err)
	}
}

func TestValidProviderNames(t *testing.T) {
	t.Parallel()
	for _, kind := range []string{"llm", "stt", "tts"} {
		names, ok := config.ValidProviderNames[kind]
		if !ok {
			t.Errorf("ValidProviderNames missing kind %q", kind)
			continue
		}
		if len(names) == 0 {
			t.Errorf("ValidProviderNames[%q] is empty", kind)
		}
	}
}

func TestLogLevel_Level(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   config.LogLevel
		want string
	}{
		{config.LogDebug, "DEBUG"},
		{config.LogInfo, "INFO"},
		{config.LogWarn, "WARN"},
		{config.LogError, "ERROR"},
		{"", "INFO"},
	}
	for _, tc := range tests {
		if got := tc.in.Level().String(); got != tc.want {
			t.Errorf("LogLevel(%q).Level() = %s, want %s", tc.in, got, tc.want)
		}
	}
}
