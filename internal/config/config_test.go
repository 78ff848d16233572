package config_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MrWong99/salespractice/internal/config"
	"github.com/MrWong99/salespractice/pkg/provider/llm"
	llmmock "github.com/MrWong99/salespractice/pkg/provider/llm/mock"
	"github.com/MrWong99/salespractice/pkg/provider/stt"
	sttmock "github.com/MrWong99/salespractice/pkg/provider/stt/mock"
	"github.com/MrWong99/salespractice/pkg/provider/tts"
	ttsmock "github.com/MrWong99/salespractice/pkg/provider/tts/mock"
)

// ── helpers ──────────────────────────────────────────────────────────────────

const sampleYAML = `
server:
  listen_addr: ":8080"
  log_level: debug
  log_format: json
  cors_origins: ["https://practice.example.com"]
  max_upload_bytes: 5242880

providers:
  llm:
    name: anthropic
    api_key: sk-test
    model: claude-sonnet
  stt:
    name: deepgram
    api_key: dg-test
    options:
      language: en-US
  tts:
    name: elevenlabs
    api_key: el-test
    timeout: 20s

coach:
  params:
    chat:
      temperature: 0.9
  default_score: 40

catalog:
  path: ./catalog.yaml

sessions:
  idle_timeout: 10m

mcp:
  enabled: true
  path: /mcp
`

// ── YAML loading ──────────────────────────────────────────────────────────────

func TestLoadFromReader_Valid(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("server.listen_addr: got %q, want %q", cfg.Server.ListenAddr, ":8080")
	}
	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("server.log_level: got %q, want %q", cfg.Server.LogLevel, config.LogDebug)
	}
	if cfg.Server.LogFormat != config.LogFormatJSON {
		t.Errorf("server.log_format: got %q, want %q", cfg.Server.LogFormat, config.LogFormatJSON)
	}
	if cfg.Providers.LLM.Name != "anthropic" || cfg.Providers.LLM.Model != "claude-sonnet" {
		t.Errorf("providers.llm: got %+v", cfg.Providers.LLM)
	}
	if got := config.OptString(cfg.Providers.STT.Options, "language"); got != "en-US" {
		t.Errorf("providers.stt.options.language: got %q, want en-US", got)
	}
	if cfg.Providers.TTS.Timeout != 20*time.Second {
		t.Errorf("providers.tts.timeout: got %s, want 20s", cfg.Providers.TTS.Timeout)
	}
	if cfg.Sessions.IdleTimeout != 10*time.Minute {
		t.Errorf("sessions.idle_timeout: got %s, want 10m", cfg.Sessions.IdleTimeout)
	}
	if !cfg.MCP.Enabled {
		t.Error("mcp.enabled: got false, want true")
	}
}

func TestLoadFromReader_PartialOverridesKeepDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := config.Default()

	if got := cfg.Coach.Params.Chat.Temperature; got != 0.9 {
		t.Errorf("chat temperature: got %.2f, want 0.9", got)
	}
	if got, want := cfg.Coach.Params.Chat.MaxTokens, def.Coach.Params.Chat.MaxTokens; got != want {
		t.Errorf("chat max_tokens: got %d, want default %d", got, want)
	}
	if got, want := cfg.Coach.Params.Feedback, def.Coach.Params.Feedback; got != want {
		t.Errorf("feedback params: got %+v, want default %+v", got, want)
	}
	if cfg.Coach.DefaultScore != 40 {
		t.Errorf("default_score: got %d, want 40", cfg.Coach.DefaultScore)
	}
	if got, want := cfg.Resilience, def.Resilience; got != want {
		t.Errorf("resilience: got %+v, want default %+v", got, want)
	}
}

func TestLoadFromReader_EmptyUsesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	for _, doc := range []string{"", "{}"} {
		cfg, err := config.LoadFromReader(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("LoadFromReader(%q): unexpected error: %v", doc, err)
		}
		if cfg.Server.ListenAddr != ":3000" {
			t.Errorf("listen_addr: got %q, want :3000", cfg.Server.ListenAddr)
		}
		for kind, e := range map[string]config.ProviderEntry{
			"llm": cfg.Providers.LLM, "stt": cfg.Providers.STT, "tts": cfg.Providers.TTS,
		} {
			if e.Name != "openai" || e.APIKey != "sk-env" {
				t.Errorf("%s: got name=%q api_key=%q, want openai/sk-env", kind, e.Name, e.APIKey)
			}
		}
	}
}

func TestLoadFromReader_ProviderEntryReplacesDefault(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	cfg, err := config.LoadFromReader(strings.NewReader(`
providers:
  llm:
    name: ollama
    base_url: http://localhost:11434
  tts:
    name: openai
    model: tts-1
  stt: {}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Providers.LLM.Model != "" || cfg.Providers.LLM.APIKey != "" {
		t.Errorf("llm inherited defaults: %+v", cfg.Providers.LLM)
	}
	if cfg.Providers.TTS.APIKey != "sk-env" {
		t.Errorf("tts api_key: got %q, want sk-env", cfg.Providers.TTS.APIKey)
	}
	if cfg.Providers.STT.Name != "" {
		t.Errorf("stt: got name %q, want disabled", cfg.Providers.STT.Name)
	}
}

func TestLoadFromReader_ExpandsEnv(t *testing.T) {
	t.Setenv("DG_KEY", "dg-secret")
	cfg, err := config.LoadFromReader(strings.NewReader(`
providers:
  stt:
    name: deepgram
    api_key: ${DG_KEY}
  tts:
    name: elevenlabs
    api_key: literal$key
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Providers.STT.APIKey != "dg-secret" {
		t.Errorf("stt api_key: got %q, want dg-secret", cfg.Providers.STT.APIKey)
	}
	if cfg.Providers.TTS.APIKey != "literal$key" {
		t.Errorf("tts api_key: got %q, want literal$key", cfg.Providers.TTS.APIKey)
	}
}

func TestLoadFromReader_UnknownFields(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		yaml string
	}{
		{"top level", "npcs: []\n"},
		{"server", "server:\n  port: 80\n"},
		{"provider entry", "providers:\n  llm:\n    name: openai\n    modle: gpt-4o\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := config.LoadFromReader(strings.NewReader(tc.yaml)); err == nil {
				t.Fatal("expected error for unknown field, got nil")
			}
		})
	}
}

// ── Registry ──────────────────────────────────────────────────────────────────

func TestRegistry_Unknown(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	reg.RegisterLLM("openai", func(config.ProviderEntry) (llm.Provider, error) { return &llmmock.Provider{}, nil })
	reg.RegisterLLM("anthropic", func(config.ProviderEntry) (llm.Provider, error) { return &llmmock.Provider{}, nil })
	entry := config.ProviderEntry{Name: "nonexistent"}

	_, err := reg.CreateLLM(entry)
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Fatalf("llm: expected ErrProviderNotRegistered, got %v", err)
	}
	if !strings.Contains(err.Error(), "registered: anthropic, openai") {
		t.Errorf("llm error does not list alternatives: %v", err)
	}
	if _, err := reg.CreateSTT(entry); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("stt: expected ErrProviderNotRegistered, got %v", err)
	}
	if _, err := reg.CreateTTS(entry); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("tts: expected ErrProviderNotRegistered, got %v", err)
	}
}

func TestRegistry_Names(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	reg.RegisterSTT("whisper", func(config.ProviderEntry) (stt.Provider, error) { return &sttmock.Provider{}, nil })
	reg.RegisterSTT("deepgram", func(config.ProviderEntry) (stt.Provider, error) { return &sttmock.Provider{}, nil })
	reg.RegisterSTT("whisper", func(config.ProviderEntry) (stt.Provider, error) { return &sttmock.Provider{}, nil })

	names := reg.Names()
	if got := strings.Join(names["stt"], ","); got != "deepgram,whisper" {
		t.Errorf("stt names = %q, want deepgram,whisper", got)
	}
	if len(names["llm"]) != 0 || len(names["tts"]) != 0 {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestRegistry_Registered(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	wantLLM, wantSTT, wantTTS := &llmmock.Provider{}, &sttmock.Provider{}, &ttsmock.Provider{}
	var gotEntry config.ProviderEntry
	reg.RegisterLLM("stub", func(e config.ProviderEntry) (llm.Provider, error) {
		gotEntry = e
		return wantLLM, nil
	})
	reg.RegisterSTT("stub", func(config.ProviderEntry) (stt.Provider, error) { return wantSTT, nil })
	reg.RegisterTTS("stub", func(config.ProviderEntry) (tts.Provider, error) { return wantTTS, nil })

	entry := config.ProviderEntry{Name: "stub", Model: "m1"}
	if got, err := reg.CreateLLM(entry); err != nil || got != wantLLM {
		t.Errorf("CreateLLM: got (%v, %v)", got, err)
	}
	if gotEntry.Model != "m1" {
		t.Errorf("factory entry model: got %q, want m1", gotEntry.Model)
	}
	if got, err := reg.CreateSTT(entry); err != nil || got != wantSTT {
		t.Errorf("CreateSTT: got (%v, %v)", got, err)
	}
	if got, err := reg.CreateTTS(entry); err != nil || got != wantTTS {
		t.Errorf("CreateTTS: got (%v, %v)", got, err)
	}
}

func TestRegistry_FactoryError(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	wantErr := errors.New("factory boom")
	reg.RegisterLLM("broken", func(config.ProviderEntry) (llm.Provider, error) {
		return nil, wantErr
	})
	_, err := reg.CreateLLM(config.ProviderEntry{Name: "broken"})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected factory error %v, got %v", wantErr, err)
	}
	if err != nil && !strings.Contains(err.Error(), "llm/broken") {
		t.Errorf("factory error lacks provider context: %v", err)
	}
}

func TestOptString(t *testing.T) {
	t.Parallel()
	opts := map[string]any{"language": "de", "rate": 1.2}
	if got := config.OptString(opts, "language"); got != "de" {
		t.Errorf("language: got %q, want de", got)
	}
	if got := config.OptString(opts, "rate"); got != "" {
		t.Errorf("non-string value: got %q, want empty", got)
	}
	if got := config.OptString(nil, "language"); got != "" {
		t.Errorf("nil map: got %q, want empty", got)
	}
}

func TestLoad_ExampleFile(t *testing.T) {
	t.Parallel()
	cfg, err := config.Load("../../configs/example.yaml")
	if err != nil {
		t.Fatalf("example config should load: %v", err)
	}
	if got, want := cfg.Coach.Params, config.Default().Coach.Params; got != want {
		t.Errorf("example coach params drifted from defaults:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	if _, err := config.Load("does-not-exist.yaml"); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
