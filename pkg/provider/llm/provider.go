// Package llm defines the Provider interface for chat-completion backends.
//
// An LLM provider wraps a remote or local model API (e.g., OpenAI, Anthropic,
// or a local Ollama instance) and exposes a single request/response completion
// call. The sales coach uses it for in-character customer replies, end-of-session
// scoring, pitch scoring, and research summaries; none of these need streaming,
// so the interface stays deliberately small.
//
// Implementors must be safe for concurrent use.
package llm

import "context"

// Roles accepted in a [Message].
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ValidRole reports whether role is one of the roles a chat request may carry.
func ValidRole(role string) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is a single role-tagged entry in a chat-completion request.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the text content of the message.
	Content string `json:"content"`
}

// Usage holds token accounting information returned by the LLM backend.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionRequest carries everything the LLM needs to produce a response.
// At minimum Messages must be non-empty.
type CompletionRequest struct {
	// Messages is the ordered conversation, system message first.
	Messages []Message

	// Temperature controls output randomness in the range [0.0, 2.0]. Zero means
	// the provider default.
	Temperature float64

	// MaxTokens caps the number of completion tokens. Zero means provider default.
	MaxTokens int

	// PresencePenalty and FrequencyPenalty are forwarded to providers that
	// support them and ignored by the rest. Zero means unset.
	PresencePenalty  float64
	FrequencyPenalty float64
}

// CompletionResponse is returned by Complete.
type CompletionResponse struct {
	// Content is the full text of the assistant's reply.
	Content string

	// Truncated is set when generation stopped at MaxTokens rather than at a
	// natural end of the reply.
	Truncated bool

	// Usage contains token accounting for this request/response pair.
	Usage Usage
}

// Provider is the abstraction over any chat-completion backend.
type Provider interface {
	// Complete sends req to the model and waits for the full response.
	// Returns an error if the request fails or ctx is cancelled first.
	// There is no retry inside Complete; failures surface to the caller.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Name returns a short identifier for logs and metrics (e.g., "openai").
	Name() string
}
