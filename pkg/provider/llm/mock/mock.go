// Package mock is a scripted llm.Provider for tests.
//
//	p := &mock.Provider{Responses: []string{"SCORE: 72\nFEEDBACK:\n• Good opener"}}
package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/MrWong99/salespractice/pkg/provider/llm"
)

var _ llm.Provider = (*Provider)(nil)

// CompleteCall is one recorded Complete invocation. Req.Messages is a copy.
type CompleteCall struct {
	Ctx context.Context
	Req llm.CompletionRequest
}

// Provider answers Complete from, in priority order: CompleteErr, the
// Responses queue, then CompleteResponse (which may be nil). Configure it
// before use.
type Provider struct {
	Responses        []string
	CompleteResponse *llm.CompletionResponse
	CompleteErr      error
	ProviderName     string // default "mock"

	mu    sync.Mutex
	calls []CompleteCall
}

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	req.Messages = slices.Clone(req.Messages)
	p.calls = append(p.calls, CompleteCall{Ctx: ctx, Req: req})

	switch {
	case p.CompleteErr != nil:
		return nil, p.CompleteErr
	case len(p.Responses) > 0:
		next := p.Responses[0]
		p.Responses = p.Responses[1:]
		return &llm.CompletionResponse{Content: next}, nil
	default:
		return p.CompleteResponse, nil
	}
}

// Name implements llm.Provider.
func (p *Provider) Name() string {
	if p.ProviderName == "" {
		return "mock"
	}
	return p.ProviderName
}

// Calls returns the recorded calls in order.
func (p *Provider) Calls() []CompleteCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.calls)
}
