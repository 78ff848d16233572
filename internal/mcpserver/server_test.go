package mcpserver_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/MrWong99/salespractice/internal/catalog"
	"github.com/MrWong99/salespractice/internal/coach"
	"github.com/MrWong99/salespractice/internal/feedback"
	"github.com/MrWong99/salespractice/internal/mcpserver"
	"github.com/MrWong99/salespractice/internal/observe"
	llmmock "github.com/MrWong99/salespractice/pkg/provider/llm/mock"
)

// connect starts the server over in-memory transports and returns a client
// session bound to it.
func connect(t *testing.T, m *llmmock.Provider) *mcp.ClientSession {
	t.Helper()
	met, err := observe.NewMetrics(noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := coach.New(m, coach.WithMetrics(met), coach.WithLogger(log))
	if err != nil {
		t.Fatalf("coach.New: %v", err)
	}
	srv := mcpserver.New(c, catalog.Default(), "test", mcpserver.WithMetrics(met), mcpserver.WithLogger(log))

	ctx := context.Background()
	clientT, serverT := mcp.NewInMemoryTransports()
	ss, err := srv.MCP().Connect(ctx, serverT, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Wait()
	})
	return cs
}

// call invokes a tool and decodes its structured result into out.
func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any, out any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if res.IsError || out == nil {
		return res
	}
	raw, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode %s result: %v", name, err)
	}
	return res
}

func TestListTools(t *testing.T) {
	t.Parallel()
	cs := connect(t, &llmmock.Provider{})

	res, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	got := map[string]bool{}
	for _, tool := range res.Tools {
		got[tool.Name] = true
	}
	for _, want := range []string{"list_personas", "list_scenarios", "list_pitch_lengths", "score_conversation", "score_pitch"} {
		if !got[want] {
			t.Errorf("tool %q not registered", want)
		}
	}
}

func TestListPersonas(t *testing.T) {
	t.Parallel()
	cs := connect(t, &llmmock.Provider{})

	var out struct {
		Personas []catalog.Persona `json:"personas"`
	}
	call(t, cs, "list_personas", map[string]any{}, &out)
	if len(out.Personas) != 3 || out.Personas[0].ID != "skeptical_steve" {
		t.Errorf("personas = %+v", out.Personas)
	}
}

func TestScoreConversation(t *testing.T) {
	t.Parallel()

	t.Run("short history uses canned feedback", func(t *testing.T) {
		t.Parallel()
		m := &llmmock.Provider{}
		cs := connect(t, m)
		var fb feedback.SessionFeedback
		call(t, cs, "score_conversation", map[string]any{
			"persona_id":  "busy_betty",
			"scenario_id": "cold_call",
			"history":     []map[string]any{{"assistant": "Make it quick."}},
		}, &fb)
		if fb.Score != 15 {
			t.Errorf("score = %d, want 15", fb.Score)
		}
		if n := len(m.Calls()); n != 0 {
			t.Errorf("model called %d times", n)
		}
	})

	t.Run("model scored", func(t *testing.T) {
		t.Parallel()
		m := &llmmock.Provider{Responses: []string{"SCORE: 72\nFEEDBACK:\n• A\n• B"}}
		cs := connect(t, m)
		var fb feedback.SessionFeedback
		call(t, cs, "score_conversation", map[string]any{
			"persona_id":  "busy_betty",
			"scenario_id": "cold_call",
			"history": []map[string]any{
				{"assistant": "Make it quick."},
				{"user": "We cut costs by 30%.", "assistant": "How?"},
			},
		}, &fb)
		if fb.Score != 72 || len(fb.Feedback) != 2 {
			t.Errorf("feedback = %+v", fb)
		}
	})

	t.Run("unknown persona", func(t *testing.T) {
		t.Parallel()
		cs := connect(t, &llmmock.Provider{})
		res := call(t, cs, "score_conversation", map[string]any{
			"persona_id":  "nobody",
			"scenario_id": "cold_call",
			"history":     []map[string]any{},
		}, nil)
		if !res.IsError {
			t.Error("expected a tool error for an unknown persona")
		}
	})
}

func TestScorePitch(t *testing.T) {
	t.Parallel()

	m := &llmmock.Provider{Responses: []string{"OVERALL SCORE: 55\nCRITERIA SCORES:\nClarity: 10\nPersuasiveness: 20\nStructure: 30\nTime Management: 40\nImpact: 50\nFEEDBACK:\n• Tighten the close"}}
	cs := connect(t, m)

	var fb feedback.PitchFeedback
	call(t, cs, "score_pitch", map[string]any{
		"persona_id":      "technical_tom",
		"pitch_length_id": "elevator",
		"transcript":      "Our API cuts integration time in half.",
		"seconds":         27,
	}, &fb)
	if fb.Score != 55 || fb.Criteria.Structure != 30 {
		t.Errorf("feedback = %+v", fb)
	}
	if calls := m.Calls(); len(calls) != 1 {
		t.Fatalf("model called %d times, want 1", len(calls))
	}

	res := call(t, cs, "score_pitch", map[string]any{
		"persona_id":      "technical_tom",
		"pitch_length_id": "elevator",
		"transcript":      "   ",
		"seconds":         3,
	}, nil)
	if !res.IsError {
		t.Error("expected a tool error for an empty transcript")
	}
}
