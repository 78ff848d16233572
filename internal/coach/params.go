package coach

import "github.com/MrWong99/salespractice/pkg/provider/llm"

// CallParams are the sampling parameters for one kind of model call.
type CallParams struct {
	Temperature      float64 `yaml:"temperature"`
	MaxTokens        int     `yaml:"max_tokens"`
	PresencePenalty  float64 `yaml:"presence_penalty"`
	FrequencyPenalty float64 `yaml:"frequency_penalty"`
}

// Params holds CallParams per call kind.
type Params struct {
	Chat          CallParams `yaml:"chat"`
	Feedback      CallParams `yaml:"feedback"`
	PitchFeedback CallParams `yaml:"pitch_feedback"`
	Research      CallParams `yaml:"research"`
}

// DefaultParams returns lively, short customer replies and cool, longer
// analytical replies.
func DefaultParams() Params {
	return Params{
		Chat:          CallParams{Temperature: 0.8, MaxTokens: 150, PresencePenalty: 0.1, FrequencyPenalty: 0.1},
		Feedback:      CallParams{Temperature: 0.3, MaxTokens: 500},
		PitchFeedback: CallParams{Temperature: 0.3, MaxTokens: 900},
		Research:      CallParams{Temperature: 0.7, MaxTokens: 400},
	}
}

func (p CallParams) request(msgs []llm.Message) llm.CompletionRequest {
	return llm.CompletionRequest{
		Messages:         msgs,
		Temperature:      p.Temperature,
		MaxTokens:        p.MaxTokens,
		PresencePenalty:  p.PresencePenalty,
		FrequencyPenalty: p.FrequencyPenalty,
	}
}
