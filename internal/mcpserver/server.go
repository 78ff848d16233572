// Package mcpserver exposes the practice catalog and the feedback scorers as
// Model Context Protocol tools, so an MCP client (an IDE assistant or an
// agent) can score a transcript without going through the web front end.
//
// Tools:
//
//   - list_personas: the customer personas
//   - list_scenarios: the conversation scenarios
//   - list_pitch_lengths: the pitch formats
//   - score_conversation: feedback for a finished conversation
//   - score_pitch: feedback for a single pitch transcript
package mcpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MrWong99/salespractice/internal/catalog"
	"github.com/MrWong99/salespractice/internal/coach"
	"github.com/MrWong99/salespractice/internal/feedback"
	"github.com/MrWong99/salespractice/internal/observe"
)

// Scorer produces conversation and pitch feedback. [*coach.Coach]
// satisfies it.
type Scorer interface {
	ConversationFeedback(ctx context.Context, history []catalog.Exchange, p catalog.Persona, s catalog.Scenario) (feedback.SessionFeedback, error)
	PitchFeedback(ctx context.Context, ps catalog.PitchSession) (feedback.PitchFeedback, error)
}

var _ Scorer = (*coach.Coach)(nil)

// Server wraps an MCP server with the practice tools registered.
type Server struct {
	mcp     *mcp.Server
	scorer  Scorer
	catalog *catalog.Catalog
	metrics *observe.Metrics
	log     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records tool calls on m.
func WithMetrics(m *observe.Metrics) Option { return func(s *Server) { s.metrics = m } }

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.log = l } }

// New builds the MCP server and registers every tool.
func New(scorer Scorer, cat *catalog.Catalog, version string, opts ...Option) *Server {
	s := &Server{scorer: scorer, catalog: cat}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	if s.log == nil {
		s.log = slog.Default()
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{Name: "salespractice", Version: version}, nil)
	s.registerTools()
	return s
}

// MCP returns the underlying SDK server, e.g. to connect a custom transport.
func (s *Server) MCP() *mcp.Server { return s.mcp }

// Handler returns a streamable HTTP handler serving the tools.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil)
}
