package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/codes"

	"github.com/MrWong99/salespractice/internal/catalog"
	"github.com/MrWong99/salespractice/internal/feedback"
	"github.com/MrWong99/salespractice/internal/observe"
)

type noInput struct{}

type personaList struct {
	Personas []catalog.Persona `json:"personas"`
}

type scenarioList struct {
	Scenarios []catalog.Scenario `json:"scenarios"`
}

type pitchLengthList struct {
	PitchLengths []catalog.PitchLength `json:"pitchLengths"`
}

// turn is one exchange as supplied by a tool caller.
type turn struct {
	User      string `json:"user,omitempty" jsonschema:"what the salesperson said; empty for the opening line"`
	Assistant string `json:"assistant" jsonschema:"what the customer persona replied"`
}

type scoreConversationInput struct {
	PersonaID  string `json:"persona_id" jsonschema:"catalog id of the customer persona, see list_personas"`
	ScenarioID string `json:"scenario_id" jsonschema:"catalog id of the scenario, see list_scenarios"`
	History    []turn `json:"history" jsonschema:"the conversation in order"`
}

type scorePitchInput struct {
	PersonaID     string  `json:"persona_id" jsonschema:"catalog id of the customer persona, see list_personas"`
	PitchLengthID string  `json:"pitch_length_id" jsonschema:"catalog id of the pitch format, see list_pitch_lengths"`
	Transcript    string  `json:"transcript" jsonschema:"the pitch as spoken"`
	Seconds       float64 `json:"seconds" jsonschema:"how long the pitch actually took"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_personas",
		Description: "List the customer personas a salesperson can practise against.",
	}, instrument(s, "list_personas", func(context.Context, noInput) (personaList, error) {
		return personaList{Personas: s.catalog.Personas()}, nil
	}))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_scenarios",
		Description: "List the sales conversation scenarios with their objectives.",
	}, instrument(s, "list_scenarios", func(context.Context, noInput) (scenarioList, error) {
		return scenarioList{Scenarios: s.catalog.Scenarios()}, nil
	}))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_pitch_lengths",
		Description: "List the pitch formats and their allotted time in seconds.",
	}, instrument(s, "list_pitch_lengths", func(context.Context, noInput) (pitchLengthList, error) {
		return pitchLengthList{PitchLengths: s.catalog.PitchLengths()}, nil
	}))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "score_conversation",
		Description: "Score a finished sales conversation from 0 to 100 and return coaching bullets. Conversations with fewer than two exchanges get canned feedback.",
	}, instrument(s, "score_conversation", s.scoreConversation))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "score_pitch",
		Description: "Score a one-shot sales pitch overall and on clarity, persuasiveness, structure, time management and impact.",
	}, instrument(s, "score_pitch", s.scorePitch))
}

func (s *Server) scoreConversation(ctx context.Context, in scoreConversationInput) (feedback.SessionFeedback, error) {
	p, ok := s.catalog.Persona(in.PersonaID)
	if !ok {
		return feedback.SessionFeedback{}, fmt.Errorf("unknown persona %q", in.PersonaID)
	}
	sc, ok := s.catalog.Scenario(in.ScenarioID)
	if !ok {
		return feedback.SessionFeedback{}, fmt.Errorf("unknown scenario %q", in.ScenarioID)
	}
	history := make([]catalog.Exchange, len(in.History))
	for i, t := range in.History {
		history[i] = catalog.Exchange{User: t.User, Assistant: t.Assistant}
	}
	return s.scorer.ConversationFeedback(ctx, history, p, sc)
}

func (s *Server) scorePitch(ctx context.Context, in scorePitchInput) (feedback.PitchFeedback, error) {
	p, ok := s.catalog.Persona(in.PersonaID)
	if !ok {
		return feedback.PitchFeedback{}, fmt.Errorf("unknown persona %q", in.PersonaID)
	}
	pl, ok := s.catalog.PitchLength(in.PitchLengthID)
	if !ok {
		return feedback.PitchFeedback{}, fmt.Errorf("unknown pitch length %q", in.PitchLengthID)
	}
	transcript := strings.TrimSpace(in.Transcript)
	if transcript == "" {
		return feedback.PitchFeedback{}, errors.New("transcript is empty")
	}
	if in.Seconds < 0 {
		return feedback.PitchFeedback{}, errors.New("seconds must not be negative")
	}
	return s.scorer.PitchFeedback(ctx, catalog.PitchSession{
		Persona:     p,
		PitchLength: pl,
		Transcript:  transcript,
		Duration:    in.Seconds,
		Timestamp:   time.Now().UnixMilli(),
	})
}

// instrument wraps a typed tool function with a span, a call counter and a
// warning log on failure. Errors become tool errors for the client.
func instrument[In, Out any](s *Server, name string, fn func(context.Context, In) (Out, error)) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		ctx, span := observe.StartSpan(ctx, "tool."+name)
		defer span.End()

		out, err := fn(ctx, in)
		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.log.WarnContext(ctx, "tool call failed", "tool", name, "err", err)
		}
		s.metrics.RecordToolCall(ctx, name, status)
		return nil, out, err
	}
}
