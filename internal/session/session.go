package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrWong99/salespractice/internal/catalog"
	"github.com/MrWong99/salespractice/internal/coach"
	"github.com/MrWong99/salespractice/internal/feedback"
)

// Engine produces the model-backed results a session needs.
// [*coach.Coach] satisfies it.
type Engine interface {
	Research(ctx context.Context, query string) (catalog.ResearchData, error)
	Turn(ctx context.Context, in coach.TurnInput) (string, error)
	ConversationFeedback(ctx context.Context, history []catalog.Exchange, p catalog.Persona, s catalog.Scenario) (feedback.SessionFeedback, error)
	PitchFeedback(ctx context.Context, ps catalog.PitchSession) (feedback.PitchFeedback, error)
}

var _ Engine = (*coach.Coach)(nil)

// Session is one user's practice session. All methods are safe for
// concurrent use; operations are serialised, including across model calls,
// so a duplicate request waits and then fails its state check.
type Session struct {
	id      string
	engine  Engine
	catalog *catalog.Catalog
	now     func() time.Time

	mu            sync.Mutex
	state         State
	mode          Mode
	research      *catalog.ResearchData
	persona       *catalog.Persona
	scenario      *catalog.Scenario
	pitchLength   *catalog.PitchLength
	history       []catalog.Exchange
	feedback      *feedback.SessionFeedback
	pitch         *catalog.PitchSession
	pitchFeedback *feedback.PitchFeedback
	created       time.Time
	updated       time.Time

	// lastSeen mirrors updated as Unix nanoseconds so the manager can read
	// it without waiting on a model call holding mu.
	lastSeen atomic.Int64
}

func newSession(id string, e Engine, cat *catalog.Catalog, now func() time.Time) *Session {
	t := now()
	s := &Session{id: id, engine: e, catalog: cat, now: now, state: StateResearch, created: t, updated: t}
	s.lastSeen.Store(t.UnixNano())
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// lastActive returns when the session last changed.
func (s *Session) lastActive() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// touch records activity. Must be called with s.mu held.
func (s *Session) touch() {
	s.updated = s.now()
	s.lastSeen.Store(s.updated.UnixNano())
}

// require returns ErrInvalidTransition unless the session is in one of want.
// Must be called with s.mu held.
func (s *Session) require(op string, want ...State) error {
	for _, w := range want {
		if s.state == w {
			return nil
		}
	}
	return fmt.Errorf("session: %s from %s: %w", op, s.state, ErrInvalidTransition)
}

// moveTo changes state and touches the activity clock. Must be called with s.mu held.
func (s *Session) moveTo(st State) {
	s.state = st
	s.touch()
}

// ── Research ─────────────────────────────────────────────────────────────────

// Research gathers background on query and advances to mode-select.
func (s *Session) Research(ctx context.Context, query string) (catalog.ResearchData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require("research", StateResearch); err != nil {
		return catalog.ResearchData{}, err
	}
	rd, err := s.engine.Research(ctx, query)
	if err != nil {
		return catalog.ResearchData{}, fmt.Errorf("session: research: %w", err)
	}
	s.research = &rd
	s.moveTo(StateModeSelect)
	return rd, nil
}

// SkipResearch advances to mode-select without research.
func (s *Session) SkipResearch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require("skip research", StateResearch); err != nil {
		return err
	}
	s.research = nil
	s.moveTo(StateModeSelect)
	return nil
}

// ── Setup ────────────────────────────────────────────────────────────────────

// SelectMode chooses conversation or pitch practice.
func (s *Session) SelectMode(m Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require("select mode", StateModeSelect); err != nil {
		return err
	}
	switch m {
	case ModeConversation:
		s.mode = m
		s.moveTo(StateConversationSetup)
	case ModePitch:
		s.mode = m
		s.moveTo(StatePitchSetup)
	default:
		return fmt.Errorf("session: mode %q: %w", m, ErrUnknownOption)
	}
	return nil
}

// SelectPersona picks the customer in either setup state.
func (s *Session) SelectPersona(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require("select persona", StateConversationSetup, StatePitchSetup); err != nil {
		return err
	}
	p, ok := s.catalog.Persona(id)
	if !ok {
		return fmt.Errorf("session: persona %q: %w", id, ErrUnknownOption)
	}
	s.persona = &p
	s.touch()
	return nil
}

// SelectScenario picks the conversation scenario.
func (s *Session) SelectScenario(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require("select scenario", StateConversationSetup); err != nil {
		return err
	}
	sc, ok := s.catalog.Scenario(id)
	if !ok {
		return fmt.Errorf("session: scenario %q: %w", id, ErrUnknownOption)
	}
	s.scenario = &sc
	s.touch()
	return nil
}

// SelectPitchLength picks the pitch format.
func (s *Session) SelectPitchLength(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require("select pitch length", StatePitchSetup); err != nil {
		return err
	}
	pl, ok := s.catalog.PitchLength(id)
	if !ok {
		return fmt.Errorf("session: pitch length %q: %w", id, ErrUnknownOption)
	}
	s.pitchLength = &pl
	s.touch()
	return nil
}

// Start enters the live state. A conversation begins with the persona's
// opening line, returned as reply; a pitch returns "".
func (s *Session) Start(ctx context.Context) (reply string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require("start", StateConversationSetup, StatePitchSetup); err != nil {
		return "", err
	}

	if s.state == StatePitchSetup {
		if s.persona == nil || s.pitchLength == nil {
			return "", fmt.Errorf("session: start pitch: persona and pitch length required: %w", ErrIncompleteSelection)
		}
		s.moveTo(StatePitch)
		return "", nil
	}

	if s.persona == nil || s.scenario == nil {
		return "", fmt.Errorf("session: start conversation: persona and scenario required: %w", ErrIncompleteSelection)
	}
	reply, err = s.engine.Turn(ctx, coach.TurnInput{Persona: *s.persona, Scenario: *s.scenario, Research: s.research})
	if err != nil {
		return "", fmt.Errorf("session: opening turn: %w", err)
	}
	s.history = append(s.history, catalog.Exchange{Assistant: reply, Timestamp: s.now().UnixMilli()})
	s.moveTo(StateConversation)
	return reply, nil
}

// ── Conversation ─────────────────────────────────────────────────────────────

// Say sends one salesperson utterance and returns the customer's reply.
func (s *Session) Say(ctx context.Context, utterance string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require("say", StateConversation); err != nil {
		return "", err
	}
	u := strings.TrimSpace(utterance)
	if u == "" {
		return "", fmt.Errorf("session: say: utterance is empty: %w", ErrInvalidInput)
	}
	reply, err := s.engine.Turn(ctx, coach.TurnInput{
		Persona:   *s.persona,
		Scenario:  *s.scenario,
		History:   s.history,
		Utterance: u,
		Research:  s.research,
	})
	if err != nil {
		return "", fmt.Errorf("session: say: %w", err)
	}
	s.history = append(s.history, catalog.Exchange{User: u, Assistant: reply, Timestamp: s.now().UnixMilli()})
	s.touch()
	return reply, nil
}

// EndConversation scores the conversation and enters feedback.
func (s *Session) EndConversation(ctx context.Context) (feedback.SessionFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require("end conversation", StateConversation); err != nil {
		return feedback.SessionFeedback{}, err
	}
	fb, err := s.engine.ConversationFeedback(ctx, s.history, *s.persona, *s.scenario)
	if err != nil {
		return feedback.SessionFeedback{}, fmt.Errorf("session: conversation feedback: %w", err)
	}
	s.feedback = &fb
	s.moveTo(StateFeedback)
	return fb, nil
}

// ── Pitch ────────────────────────────────────────────────────────────────────

// SubmitPitch records the single pitch transcript, scores it and enters
// pitch-feedback.
func (s *Session) SubmitPitch(ctx context.Context, transcript string, seconds float64) (feedback.PitchFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require("submit pitch", StatePitch); err != nil {
		return feedback.PitchFeedback{}, err
	}
	t := strings.TrimSpace(transcript)
	if t == "" {
		return feedback.PitchFeedback{}, fmt.Errorf("session: submit pitch: transcript is empty: %w", ErrInvalidInput)
	}
	if seconds < 0 {
		return feedback.PitchFeedback{}, fmt.Errorf("session: submit pitch: negative duration: %w", ErrInvalidInput)
	}
	ps := catalog.PitchSession{
		Persona:     *s.persona,
		PitchLength: *s.pitchLength,
		Transcript:  t,
		Duration:    seconds,
		Timestamp:   s.now().UnixMilli(),
	}
	fb, err := s.engine.PitchFeedback(ctx, ps)
	if err != nil {
		return feedback.PitchFeedback{}, fmt.Errorf("session: pitch feedback: %w", err)
	}
	s.pitch = &ps
	s.pitchFeedback = &fb
	s.moveTo(StatePitchFeedback)
	return fb, nil
}

// ── Reset & snapshot ─────────────────────────────────────────────────────────

// Reset clears every session-scoped value and returns to research.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ""
	s.research = nil
	s.persona = nil
	s.scenario = nil
	s.pitchLength = nil
	s.history = nil
	s.feedback = nil
	s.pitch = nil
	s.pitchFeedback = nil
	s.moveTo(StateResearch)
}

// Snapshot is a point-in-time copy of a session, shaped for JSON.
type Snapshot struct {
	ID            string                    `json:"id"`
	State         State                     `json:"state"`
	Mode          Mode                      `json:"mode,omitempty"`
	Research      *catalog.ResearchData     `json:"research,omitempty"`
	Persona       *catalog.Persona          `json:"persona,omitempty"`
	Scenario      *catalog.Scenario         `json:"scenario,omitempty"`
	PitchLength   *catalog.PitchLength      `json:"pitchLength,omitempty"`
	History       []catalog.Exchange        `json:"history"`
	Feedback      *feedback.SessionFeedback `json:"feedback,omitempty"`
	PitchSession  *catalog.PitchSession     `json:"pitchSession,omitempty"`
	PitchFeedback *feedback.PitchFeedback   `json:"pitchFeedback,omitempty"`
	CreatedAt     time.Time                 `json:"createdAt"`
	UpdatedAt     time.Time                 `json:"updatedAt"`
}

// Snapshot returns a deep-enough copy that callers cannot mutate the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:        s.id,
		State:     s.state,
		Mode:      s.mode,
		History:   append([]catalog.Exchange{}, s.history...),
		CreatedAt: s.created,
		UpdatedAt: s.updated,
	}
	if s.research != nil {
		rd := *s.research
		rd.KeyPoints = append([]string(nil), rd.KeyPoints...)
		rd.Sources = append([]string(nil), rd.Sources...)
		snap.Research = &rd
	}
	if s.persona != nil {
		p := *s.persona
		snap.Persona = &p
	}
	if s.scenario != nil {
		sc := *s.scenario
		sc.Objectives = append([]string(nil), sc.Objectives...)
		snap.Scenario = &sc
	}
	if s.pitchLength != nil {
		pl := *s.pitchLength
		snap.PitchLength = &pl
	}
	if s.feedback != nil {
		fb := *s.feedback
		fb.Feedback = append([]string(nil), fb.Feedback...)
		snap.Feedback = &fb
	}
	if s.pitch != nil {
		ps := *s.pitch
		snap.PitchSession = &ps
	}
	if s.pitchFeedback != nil {
		pf := *s.pitchFeedback
		pf.Feedback = append([]string(nil), pf.Feedback...)
		snap.PitchFeedback = &pf
	}
	return snap
}
