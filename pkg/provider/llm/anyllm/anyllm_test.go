package anyllm

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	llmerrors "github.com/mozilla-ai/any-llm-go/errors"

	"github.com/MrWong99/salespractice/pkg/provider"
	"github.com/MrWong99/salespractice/pkg/provider/llm"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		backend string
		model   string
		wantErr string
	}{
		{name: "empty backend", backend: "  ", model: "m", wantErr: "backend must not be empty"},
		{name: "empty model", backend: "ollama", model: "", wantErr: "model must not be empty"},
		{name: "unknown backend", backend: "carrier-pigeon", model: "m", wantErr: "unsupported backend"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tc.backend, tc.model)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("New(%q, %q) err = %v, want %q", tc.backend, tc.model, err, tc.wantErr)
			}
		})
	}
}

func TestNew_NormalisesBackendName(t *testing.T) {
	t.Parallel()
	p, err := New(" Ollama ", "llama3.1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := p.Name(); got != "anyllm/ollama" {
		t.Errorf("Name() = %q, want anyllm/ollama", got)
	}
}

func TestBackends_Sorted(t *testing.T) {
	t.Parallel()
	if !slices.IsSorted(Backends) {
		t.Errorf("Backends not sorted: %v", Backends)
	}
	for _, want := range []string{"anthropic", "gemini", "ollama", "openai"} {
		if !slices.Contains(Backends, want) {
			t.Errorf("Backends missing %q", want)
		}
	}
}

func TestParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		req       llm.CompletionRequest
		wantTemp  *float64
		wantMaxTk *int
	}{
		{
			name: "sampling set",
			req: llm.CompletionRequest{
				Messages:    []llm.Message{{Role: llm.RoleSystem, Content: "be brief"}, {Role: llm.RoleUser, Content: "hello"}},
				Temperature: 0.3,
				MaxTokens:   500,
			},
			wantTemp:  ptr(0.3),
			wantMaxTk: ptr(500),
		},
		{
			name: "zero values unset",
			req:  llm.CompletionRequest{Messages: []llm.Message{{Role: llm.RoleUser, Content: "x"}}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := &Provider{model: "llama3.1", name: "ollama"}
			got := p.params(tc.req)

			if got.Model != "llama3.1" {
				t.Errorf("model = %q, want llama3.1", got.Model)
			}
			if len(got.Messages) != len(tc.req.Messages) {
				t.Fatalf("messages = %d, want %d", len(got.Messages), len(tc.req.Messages))
			}
			for i, m := range tc.req.Messages {
				if got.Messages[i].Role != m.Role {
					t.Errorf("messages[%d].role = %q, want %q", i, got.Messages[i].Role, m.Role)
				}
			}
			if (got.Temperature == nil) != (tc.wantTemp == nil) || (got.Temperature != nil && *got.Temperature != *tc.wantTemp) {
				t.Errorf("temperature = %v, want %v", got.Temperature, tc.wantTemp)
			}
			if (got.MaxTokens == nil) != (tc.wantMaxTk == nil) || (got.MaxTokens != nil && *got.MaxTokens != *tc.wantMaxTk) {
				t.Errorf("max tokens = %v, want %v", got.MaxTokens, tc.wantMaxTk)
			}
		})
	}
}

func TestComplete_NoMessages(t *testing.T) {
	t.Parallel()
	p := &Provider{name: "ollama", model: "m"}
	if _, err := p.Complete(context.Background(), llm.CompletionRequest{}); err == nil {
		t.Fatal("expected error for empty request")
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cause := errors.New("upstream")
	withCode := llmerrors.NewProviderError("openai", cause)
	withCode.StatusCode = 503

	tests := []struct {
		name         string
		err          error
		wantRejected bool
		wantCode     int
	}{
		{name: "context length", err: llmerrors.NewContextLengthError("openai", cause), wantRejected: true, wantCode: 400},
		{name: "invalid request", err: llmerrors.NewInvalidRequestError("openai", cause), wantRejected: true, wantCode: 400},
		{name: "rate limit", err: llmerrors.NewRateLimitError("openai", cause), wantCode: 429},
		{name: "provider status", err: withCode, wantCode: 503},
		{name: "plain", err: cause},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := classify(tc.err)
			if !errors.Is(got, cause) {
				t.Errorf("classify dropped the cause: %v", got)
			}
			if r := provider.IsRejection(got); r != tc.wantRejected {
				t.Errorf("IsRejection = %v, want %v", r, tc.wantRejected)
			}
			var se *provider.StatusError
			code := 0
			if errors.As(got, &se) {
				code = se.Code
			}
			if code != tc.wantCode {
				t.Errorf("status = %d, want %d", code, tc.wantCode)
			}
		})
	}
}
