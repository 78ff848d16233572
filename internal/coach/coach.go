// Package coach runs the model-backed steps of a practice session: customer
// replies, conversation and pitch scoring, pre-call research, transcription
// and speech.
//
// A [Coach] owns no session state. Every method takes what it needs as
// arguments, so one Coach serves the HTTP handlers, the session manager and
// the MCP tools alike.
package coach

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/MrWong99/salespractice/internal/catalog"
	"github.com/MrWong99/salespractice/internal/feedback"
	"github.com/MrWong99/salespractice/internal/observe"
	"github.com/MrWong99/salespractice/internal/prompt"
	"github.com/MrWong99/salespractice/internal/research"
	"github.com/MrWong99/salespractice/internal/voice"
	"github.com/MrWong99/salespractice/pkg/provider/llm"
	"github.com/MrWong99/salespractice/pkg/provider/stt"
	"github.com/MrWong99/salespractice/pkg/provider/tts"
)

var (
	// ErrNotConfigured is returned when an optional provider was not supplied.
	ErrNotConfigured = errors.New("provider is not configured")

	// ErrEmptyReply is returned when the model answers with only whitespace.
	ErrEmptyReply = errors.New("empty reply from language model")

	// ErrEmptyQuery is returned by Research for a blank query.
	ErrEmptyQuery = errors.New("research query is empty")
)

// Fetcher downloads readable page text for research grounding.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*prompt.Article, error)
}

var _ Fetcher = (*research.Fetcher)(nil)

// Coach orchestrates prompt → model → parse. Safe for concurrent use.
type Coach struct {
	llm     llm.Provider
	stt     stt.Provider
	tts     tts.Provider
	fetcher Fetcher
	parser  *feedback.Parser
	voices  *voice.Selector
	params  Params
	metrics *observe.Metrics
	log     *slog.Logger
	now     func() time.Time

	voiceMu  sync.Mutex
	voiceCat []tts.VoiceProfile
	voiceOK  bool
}

// Option configures a Coach.
type Option func(*Coach)

// WithSTT enables Transcribe.
func WithSTT(p stt.Provider) Option { return func(c *Coach) { c.stt = p } }

// WithTTS enables Speak.
func WithTTS(p tts.Provider) Option { return func(c *Coach) { c.tts = p } }

// WithFetcher enables page grounding for research queries that are URLs.
func WithFetcher(f Fetcher) Option { return func(c *Coach) { c.fetcher = f } }

// WithParser replaces the default-policy feedback parser.
func WithParser(p *feedback.Parser) Option { return func(c *Coach) { c.parser = p } }

// WithSelector replaces the default voice selector.
func WithSelector(s *voice.Selector) Option { return func(c *Coach) { c.voices = s } }

// WithParams replaces [DefaultParams].
func WithParams(p Params) Option { return func(c *Coach) { c.params = p } }

// WithMetrics records instruments on m instead of [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option { return func(c *Coach) { c.metrics = m } }

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option { return func(c *Coach) { c.log = l } }

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option { return func(c *Coach) { c.now = now } }

// New returns a Coach backed by the language model l.
func New(l llm.Provider, opts ...Option) (*Coach, error) {
	if l == nil {
		return nil, fmt.Errorf("coach: language model %w", ErrNotConfigured)
	}
	c := &Coach{
		llm:    l,
		params: DefaultParams(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	if c.parser == nil {
		c.parser = feedback.NewParser(feedback.DefaultPolicy())
	}
	if c.voices == nil {
		c.voices = voice.NewSelector()
	}
	if c.metrics == nil {
		c.metrics = observe.DefaultMetrics()
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c, nil
}

// Policy returns the parser defaults in effect.
func (c *Coach) Policy() feedback.Policy { return c.parser.Policy() }

// HasSTT reports whether Transcribe is available.
func (c *Coach) HasSTT() bool { return c.stt != nil }

// HasTTS reports whether Speak is available.
func (c *Coach) HasTTS() bool { return c.tts != nil }

// ── Conversation ─────────────────────────────────────────────────────────────

// Reply sends msgs with the chat parameters and returns the trimmed reply.
func (c *Coach) Reply(ctx context.Context, msgs []llm.Message) (string, error) {
	return c.complete(ctx, "chat", c.params.Chat, msgs)
}

// TurnInput is everything needed to produce one customer reply.
type TurnInput struct {
	Persona   catalog.Persona
	Scenario  catalog.Scenario
	History   []catalog.Exchange
	Utterance string
	Research  *catalog.ResearchData
}

// Turn produces the persona's next reply. An empty Utterance with empty
// History produces the opening line.
func (c *Coach) Turn(ctx context.Context, in TurnInput) (string, error) {
	msgs := prompt.Conversation(in.Persona, in.Scenario, in.History, in.Utterance, in.Research)
	reply, err := c.Reply(ctx, msgs)
	if err != nil {
		return "", err
	}
	c.metrics.RecordPersonaTurn(ctx, in.Persona.ID)
	return reply, nil
}

// ── Feedback ─────────────────────────────────────────────────────────────────

// ConversationFeedback scores a finished conversation. Histories shorter
// than [MinExchanges] are answered with canned feedback and no model call.
func (c *Coach) ConversationFeedback(ctx context.Context, history []catalog.Exchange, p catalog.Persona, s catalog.Scenario) (feedback.SessionFeedback, error) {
	if fb, reason, ok := shortcut(len(history)); ok {
		c.metrics.RecordShortcut(ctx, reason)
		c.log.InfoContext(ctx, "conversation feedback shortcut", "reason", reason, "exchanges", len(history))
		return fb, nil
	}

	text, err := c.complete(ctx, "feedback", c.params.Feedback, []llm.Message{
		{Role: llm.RoleUser, Content: prompt.ConversationFeedback(history, p, s)},
	})
	if err != nil {
		return feedback.SessionFeedback{}, err
	}

	fb, method := c.parser.ParseConversation(text)
	if !fb.InRange() {
		c.log.WarnContext(ctx, "conversation score out of range", "score", fb.Score)
		fb.Score = c.parser.Policy().DefaultScore
		method = feedback.MethodFallback
	}
	c.metrics.RecordFeedbackParse(ctx, "conversation", string(method))
	return fb, nil
}

// PitchFeedback scores a one-shot pitch.
func (c *Coach) PitchFeedback(ctx context.Context, ps catalog.PitchSession) (feedback.PitchFeedback, error) {
	text, err := c.complete(ctx, "pitch_feedback", c.params.PitchFeedback, []llm.Message{
		{Role: llm.RoleUser, Content: prompt.PitchFeedback(ps)},
	})
	if err != nil {
		return feedback.PitchFeedback{}, err
	}

	fb, method := c.parser.ParsePitch(text)
	if !fb.InRange() {
		pol := c.parser.Policy()
		c.log.WarnContext(ctx, "pitch score out of range", "score", fb.Score, "criteria", fb.Criteria)
		clamp(&fb.Score, pol.DefaultScore)
		clamp(&fb.Criteria.Clarity, pol.DefaultCriterionScore)
		clamp(&fb.Criteria.Persuasiveness, pol.DefaultCriterionScore)
		clamp(&fb.Criteria.Structure, pol.DefaultCriterionScore)
		clamp(&fb.Criteria.TimeManagement, pol.DefaultCriterionScore)
		clamp(&fb.Criteria.Impact, pol.DefaultCriterionScore)
		method = feedback.MethodFallback
	}
	c.metrics.RecordFeedbackParse(ctx, "pitch", string(method))
	return fb, nil
}

// clamp replaces an out-of-range score with def.
func clamp(score *int, def int) {
	if *score < 0 || *score > 100 {
		*score = def
	}
}

// ── Research ─────────────────────────────────────────────────────────────────

// Research gathers background on query. A query that is an http(s) URL is
// grounded on the page text when a fetcher is configured; a failed download
// is logged and research continues from the model's own knowledge.
func (c *Coach) Research(ctx context.Context, query string) (catalog.ResearchData, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return catalog.ResearchData{}, fmt.Errorf("coach: %w", ErrEmptyQuery)
	}

	var article *prompt.Article
	if c.fetcher != nil && research.IsURL(q) {
		start := time.Now()
		a, err := c.fetcher.Fetch(ctx, q)
		c.metrics.FetchDuration.Record(ctx, time.Since(start).Seconds())
		if err != nil {
			c.log.WarnContext(ctx, "research page fetch failed, continuing ungrounded", "url", q, "err", err)
		} else {
			article = a
		}
	}

	text, err := c.complete(ctx, "research", c.params.Research, []llm.Message{
		{Role: llm.RoleUser, Content: prompt.Research(q, article)},
	})
	if err != nil {
		return catalog.ResearchData{}, err
	}

	rd := feedback.ParseResearch(q, text)
	if article != nil {
		rd.Sources = []string{article.URL}
	}
	rd.Timestamp = c.now().UnixMilli()
	return rd, nil
}

// ── Speech ───────────────────────────────────────────────────────────────────

// Transcribe converts recorded audio to text.
func (c *Coach) Transcribe(ctx context.Context, audio io.Reader, filename, mime string) (string, error) {
	if c.stt == nil {
		return "", fmt.Errorf("coach: speech-to-text %w", ErrNotConfigured)
	}
	start := time.Now()
	tr, err := c.stt.Transcribe(ctx, stt.Request{Audio: audio, Filename: filename, ContentType: mime})
	c.metrics.STTDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		c.providerFailed(ctx, c.stt.Name(), "stt", err)
		return "", fmt.Errorf("coach: transcribe: %w", err)
	}
	c.metrics.RecordProviderRequest(ctx, c.stt.Name(), "stt", "ok")
	return strings.TrimSpace(tr.Text), nil
}

// Speak synthesises text in the voice chosen for personaID.
func (c *Coach) Speak(ctx context.Context, text, personaID string) (*tts.Audio, error) {
	if c.tts == nil {
		return nil, fmt.Errorf("coach: text-to-speech %w", ErrNotConfigured)
	}
	v := c.voices.ForPersona(personaID, c.voiceCatalogue(ctx))

	start := time.Now()
	audio, err := c.tts.Synthesize(ctx, text, v)
	c.metrics.TTSDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		c.providerFailed(ctx, c.tts.Name(), "tts", err)
		return nil, fmt.Errorf("coach: synthesize: %w", err)
	}
	c.metrics.RecordProviderRequest(ctx, c.tts.Name(), "tts", "ok")
	if audio.ContentType == "" {
		audio.ContentType = "audio/mpeg"
	}
	return audio, nil
}

// voiceCatalogue lists the TTS provider's voices once. A failed listing is
// logged, not cached, and yields an empty catalogue for this call.
func (c *Coach) voiceCatalogue(ctx context.Context) []tts.VoiceProfile {
	c.voiceMu.Lock()
	defer c.voiceMu.Unlock()
	if c.voiceOK {
		return c.voiceCat
	}
	voices, err := c.tts.ListVoices(ctx)
	if err != nil {
		c.log.WarnContext(ctx, "list voices failed, using persona defaults", "provider", c.tts.Name(), "err", err)
		return nil
	}
	c.voiceCat, c.voiceOK = voices, true
	return voices
}

// ── Internals ────────────────────────────────────────────────────────────────

func (c *Coach) complete(ctx context.Context, call string, p CallParams, msgs []llm.Message) (string, error) {
	ctx, span := observe.StartSpan(ctx, "coach."+call)
	defer span.End()

	start := time.Now()
	resp, err := c.llm.Complete(ctx, p.request(msgs))
	c.metrics.LLMDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(observe.Attr("call", call)))
	if err != nil {
		span.RecordError(err)
		c.providerFailed(ctx, c.llm.Name(), "llm", err)
		return "", fmt.Errorf("coach: %s: %w", call, err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		c.providerFailed(ctx, c.llm.Name(), "llm", ErrEmptyReply)
		return "", fmt.Errorf("coach: %s: %w", call, ErrEmptyReply)
	}
	c.metrics.RecordProviderRequest(ctx, c.llm.Name(), "llm", "ok")
	c.metrics.RecordTokens(ctx, call, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	if resp.Truncated {
		c.log.WarnContext(ctx, "reply hit the token limit", "call", call, "max_tokens", p.MaxTokens)
	}
	return strings.TrimSpace(resp.Content), nil
}

func (c *Coach) providerFailed(ctx context.Context, provider, kind string, err error) {
	c.metrics.RecordProviderRequest(ctx, provider, kind, "error")
	c.metrics.RecordProviderError(ctx, provider, kind)
	c.log.ErrorContext(ctx, "provider call failed", "provider", provider, "kind", kind, "err", err)
}
