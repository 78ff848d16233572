// Package anyllm adapts github.com/mozilla-ai/any-llm-go to llm.Provider so a
// single config switch moves the persona between Anthropic, Gemini, Ollama
// and the other hosted or local backends.
//
//	p, err := anyllm.New("anthropic", "claude-3-5-sonnet-latest", anyllmlib.WithAPIKey(key))
//	p, err := anyllm.New("ollama", "llama3.1")
package anyllm

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	llmerrors "github.com/mozilla-ai/any-llm-go/errors"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/llamacpp"
	"github.com/mozilla-ai/any-llm-go/providers/llamafile"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/MrWong99/salespractice/pkg/provider"
	"github.com/MrWong99/salespractice/pkg/provider/llm"
)

var _ llm.Provider = (*Provider)(nil)

type factory func(...anyllmlib.Option) (anyllmlib.Provider, error)

func wrap[P anyllmlib.Provider](fn func(...anyllmlib.Option) (P, error)) factory {
	return func(opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
		p, err := fn(opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

var factories = map[string]factory{
	"openai":    wrap(anyllmoai.New),
	"anthropic": wrap(anthropic.New),
	"gemini":    wrap(gemini.New),
	"ollama":    wrap(ollama.New),
	"deepseek":  wrap(deepseek.New),
	"mistral":   wrap(mistral.New),
	"groq":      wrap(groq.New),
	"llamacpp":  wrap(llamacpp.New),
	"llamafile": wrap(llamafile.New),
}

// Backends lists the backend names accepted by [New], sorted.
var Backends = slices.Sorted(maps.Keys(factories))

// Provider implements llm.Provider on top of one any-llm backend.
type Provider struct {
	backend anyllmlib.Provider
	name    string
	model   string
}

// New creates a Provider for backend (one of [Backends], case-insensitive).
// Without an API key option the backend reads its usual environment variable,
// e.g. ANTHROPIC_API_KEY.
func New(backend string, model string, opts ...anyllmlib.Option) (*Provider, error) {
	name := strings.ToLower(strings.TrimSpace(backend))
	if name == "" {
		return nil, errors.New("anyllm: backend must not be empty")
	}
	if model == "" {
		return nil, errors.New("anyllm: model must not be empty")
	}
	mk, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("anyllm: unsupported backend %q; supported: %s", backend, strings.Join(Backends, ", "))
	}
	b, err := mk(opts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm: create %s backend: %w", name, err)
	}
	return &Provider{backend: b, name: name, model: model}, nil
}

// Name implements llm.Provider, e.g. "anyllm/anthropic".
func (p *Provider) Name() string { return "anyllm/" + p.name }

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("anyllm: request has no messages")
	}
	resp, err := p.backend.Completion(ctx, p.params(req))
	if err != nil {
		return nil, classify(fmt.Errorf("anyllm: %s completion: %w", p.name, err))
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("anyllm: %s returned no choices", p.name)
	}

	choice := resp.Choices[0]
	out := &llm.CompletionResponse{
		Content:   choice.Message.ContentString(),
		Truncated: string(choice.FinishReason) == "length",
	}
	if u := resp.Usage; u != nil {
		out.Usage = llm.Usage{
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			TotalTokens:      u.TotalTokens,
		}
	}
	return out, nil
}

// params maps the request onto the unified parameter set. It has no presence
// or frequency penalty, so those are not forwarded.
func (p *Provider) params(req llm.CompletionRequest) anyllmlib.CompletionParams {
	out := anyllmlib.CompletionParams{
		Model:    p.model,
		Messages: make([]anyllmlib.Message, len(req.Messages)),
	}
	for i, m := range req.Messages {
		out.Messages[i] = anyllmlib.Message{Role: m.Role, Content: m.Content}
	}
	if req.Temperature != 0 {
		out.Temperature = ptr(req.Temperature)
	}
	if req.MaxTokens > 0 {
		out.MaxTokens = ptr(req.MaxTokens)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

// rejected lists the backend errors caused by the request itself.
var rejected = []error{
	llmerrors.ErrInvalidRequest,
	llmerrors.ErrContextLength,
	llmerrors.ErrContentFilter,
	llmerrors.ErrUnsupportedParam,
}

// classify attaches an HTTP status to backend errors so callers can tell a
// refused request from a failing backend.
func classify(err error) error {
	var pe *llmerrors.ProviderError
	switch {
	case errors.As(err, &pe) && pe.StatusCode != 0:
		return provider.WithStatus(pe.StatusCode, err)
	case errors.Is(err, llmerrors.ErrRateLimit):
		return provider.WithStatus(http.StatusTooManyRequests, err)
	case errors.Is(err, llmerrors.ErrAuthentication):
		return provider.WithStatus(http.StatusUnauthorized, err)
	}
	for _, target := range rejected {
		if errors.Is(err, target) {
			return provider.WithStatus(http.StatusBadRequest, err)
		}
	}
	return err
}
