// Package api exposes the practice tool over HTTP.
//
// Two families of routes are served. The stateless routes (/api/chat,
// /api/feedback, /api/pitch-feedback, /api/research, /api/transcribe and
// /api/tts) take everything they need in the request body, so a browser can
// own the session itself. The /api/sessions routes keep the session on the
// server and drive it through its state machine.
//
// Every JSON response carries a boolean "success" field. Failures add an
// "error" string.
package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/MrWong99/salespractice/internal/catalog"
	"github.com/MrWong99/salespractice/internal/coach"
	"github.com/MrWong99/salespractice/internal/feedback"
	"github.com/MrWong99/salespractice/internal/health"
	"github.com/MrWong99/salespractice/internal/observe"
	"github.com/MrWong99/salespractice/internal/session"
	"github.com/MrWong99/salespractice/pkg/provider/llm"
	"github.com/MrWong99/salespractice/pkg/provider/tts"
)

const (
	// DefaultMaxUploadBytes caps /api/transcribe request bodies.
	DefaultMaxUploadBytes = 10 << 20

	maxJSONBytes    = 1 << 20
	multipartMemory = 1 << 20
)

// Coach is the model-backed behaviour the stateless routes need.
type Coach interface {
	Reply(ctx context.Context, msgs []llm.Message) (string, error)
	ConversationFeedback(ctx context.Context, history []catalog.Exchange, p catalog.Persona, s catalog.Scenario) (feedback.SessionFeedback, error)
	PitchFeedback(ctx context.Context, ps catalog.PitchSession) (feedback.PitchFeedback, error)
	Research(ctx context.Context, query string) (catalog.ResearchData, error)
	Transcribe(ctx context.Context, audio io.Reader, filename, mime string) (string, error)
	Speak(ctx context.Context, text, personaID string) (*tts.Audio, error)
}

var _ Coach = (*coach.Coach)(nil)

// Server holds the route handlers. Build one with [New] and serve
// [Server.Handler].
type Server struct {
	coach     Coach
	catalog   *catalog.Catalog
	sessions  *session.Manager
	health    *health.Handler
	metrics   *observe.Metrics
	prom      http.Handler
	mcp       http.Handler
	mcpPath   string
	staticDir string
	origins   []string
	maxUpload int64
	log       *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithSessions enables the /api/sessions routes backed by m.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) { s.sessions = m }
}

// WithHealth mounts /healthz and /readyz.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) { s.health = h }
}

// WithMetrics sets the instruments used by the request middleware.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithPrometheus mounts h at GET /metrics.
func WithPrometheus(h http.Handler) Option {
	return func(s *Server) { s.prom = h }
}

// WithMCP mounts an MCP streamable HTTP handler at path.
func WithMCP(path string, h http.Handler) Option {
	return func(s *Server) { s.mcpPath, s.mcp = path, h }
}

// WithStaticDir serves the front end from dir at "/".
func WithStaticDir(dir string) Option {
	return func(s *Server) { s.staticDir = dir }
}

// WithCORS allows cross-origin requests from origins. "*" allows any origin.
func WithCORS(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithMaxUploadBytes overrides [DefaultMaxUploadBytes].
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) { s.maxUpload = n }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New returns a Server answering from c and cat.
func New(c Coach, cat *catalog.Catalog, opts ...Option) *Server {
	s := &Server{coach: c, catalog: cat, maxUpload: DefaultMaxUploadBytes}
	for _, o := range opts {
		o(s)
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUploadBytes
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Register adds the /api routes to mux. Routes are registered without
// a method so a wrong method is answered with the JSON envelope.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/transcribe", only(http.MethodPost, s.handleTranscribe))
	mux.HandleFunc("/api/chat", only(http.MethodPost, s.handleChat))
	mux.HandleFunc("/api/feedback", only(http.MethodPost, s.handleFeedback))
	mux.HandleFunc("/api/pitch-feedback", only(http.MethodPost, s.handlePitchFeedback))
	mux.HandleFunc("/api/research", only(http.MethodPost, s.handleResearch))
	mux.HandleFunc("/api/tts", only(http.MethodPost, s.handleTTS))

	mux.HandleFunc("/api/personas", only(http.MethodGet, s.handlePersonas))
	mux.HandleFunc("/api/scenarios", only(http.MethodGet, s.handleScenarios))
	mux.HandleFunc("/api/pitch-lengths", only(http.MethodGet, s.handlePitchLengths))

	if s.sessions != nil {
		s.registerSessions(mux)
	}
}

// Handler returns the complete HTTP handler: API routes, health, metrics,
// MCP and static files, wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	if s.health != nil {
		s.health.Register(mux)
	}
	if s.prom != nil {
		mux.Handle("GET /metrics", s.prom)
	}
	if s.mcp != nil && s.mcpPath != "" {
		mux.Handle(s.mcpPath, s.mcp)
	}
	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}

	var h http.Handler = mux
	if len(s.origins) > 0 {
		h = CORS(s.origins...)(h)
	}
	h = SecureHeaders(h)
	return observe.Middleware(s.metrics,
		observe.WithAccessLogger(s.log),
		observe.WithQuietPaths("/healthz", "/readyz", "/metrics"),
	)(h)
}

// only rejects every method except method with a 405 envelope.
func only(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}
