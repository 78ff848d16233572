package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/MrWong99/salespractice/internal/catalog"
	"github.com/MrWong99/salespractice/internal/voice"
	"github.com/MrWong99/salespractice/pkg/provider/llm"
)

// ── Speech ───────────────────────────────────────────────────────────────────

// handleTranscribe accepts a multipart upload with an "audio" file field.
// Temporary files are removed on every path.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "Audio file exceeds the "+strconv.FormatInt(s.maxUpload>>20, 10)+" MiB limit")
			return
		}
		writeError(w, http.StatusBadRequest, "No audio file provided")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No audio file provided")
		return
	}
	defer file.Close()
	if header.Size == 0 {
		writeError(w, http.StatusBadRequest, "Audio file is empty")
		return
	}

	text, err := s.coach.Transcribe(r.Context(), file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, map[string]any{"text": text})
}

type ttsRequest struct {
	Text    string `json:"text"`
	Persona string `json:"persona"`
}

// handleTTS answers with raw audio bytes rather than the JSON envelope.
func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req ttsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errBadJSON)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}
	audio, err := s.coach.Speak(r.Context(), req.Text, req.Persona)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", audio.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio.Data)
}

// ── Chat ─────────────────────────────────────────────────────────────────────

type chatRequest struct {
	Messages json.RawMessage `json:"messages"`
}

type wireMessage struct {
	Role    *string `json:"role"`
	Content *string `json:"content"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errBadJSON)
		return
	}
	var wire []json.RawMessage
	if !isArray(req.Messages) || json.Unmarshal(req.Messages, &wire) != nil || len(wire) == 0 {
		writeError(w, http.StatusBadRequest, "Messages array is required and must not be empty")
		return
	}
	msgs := make([]llm.Message, 0, len(wire))
	for _, raw := range wire {
		var m wireMessage
		if json.Unmarshal(raw, &m) != nil || m.Role == nil || m.Content == nil || !validRole(*m.Role) {
			writeError(w, http.StatusBadRequest, "Invalid message format. Each message must have role and content.")
			return
		}
		msgs = append(msgs, llm.Message{Role: *m.Role, Content: *m.Content})
	}

	reply, err := s.coach.Reply(r.Context(), msgs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, map[string]any{"response": reply})
}

func validRole(role string) bool {
	switch role {
	case llm.RoleSystem, llm.RoleUser, llm.RoleAssistant:
		return true
	}
	return false
}

// ── Feedback ─────────────────────────────────────────────────────────────────

type feedbackRequest struct {
	Transcript json.RawMessage   `json:"transcript"`
	Persona    *catalog.Persona  `json:"persona"`
	Scenario   *catalog.Scenario `json:"scenario"`
}

type wireExchange struct {
	User      *string  `json:"user"`
	Assistant *string  `json:"assistant"`
	Timestamp *float64 `json:"timestamp"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errBadJSON)
		return
	}
	var wire []json.RawMessage
	if !isArray(req.Transcript) || json.Unmarshal(req.Transcript, &wire) != nil {
		writeError(w, http.StatusBadRequest, "Transcript array is required")
		return
	}
	if req.Persona == nil || req.Persona.Name == "" || req.Persona.Description == "" {
		writeError(w, http.StatusBadRequest, "Valid persona object is required")
		return
	}
	if req.Scenario == nil || req.Scenario.Name == "" || req.Scenario.Description == "" {
		writeError(w, http.StatusBadRequest, "Valid scenario object is required")
		return
	}
	history := make([]catalog.Exchange, 0, len(wire))
	for _, raw := range wire {
		var ex wireExchange
		if json.Unmarshal(raw, &ex) != nil || ex.User == nil || ex.Assistant == nil || ex.Timestamp == nil {
			writeError(w, http.StatusBadRequest, "Invalid transcript format. Each exchange must have user, assistant, and timestamp.")
			return
		}
		history = append(history, catalog.Exchange{User: *ex.User, Assistant: *ex.Assistant, Timestamp: int64(*ex.Timestamp)})
	}

	fb, err := s.coach.ConversationFeedback(r.Context(), history, *req.Persona, *req.Scenario)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, map[string]any{"feedback": fb})
}

type pitchFeedbackRequest struct {
	PitchSession *struct {
		Persona     *catalog.Persona     `json:"persona"`
		PitchLength *catalog.PitchLength `json:"pitchLength"`
		Transcript  json.RawMessage      `json:"transcript"`
		Duration    json.RawMessage      `json:"duration"`
		Timestamp   int64                `json:"timestamp"`
	} `json:"pitchSession"`
}

func (s *Server) handlePitchFeedback(w http.ResponseWriter, r *http.Request) {
	var req pitchFeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errBadJSON)
		return
	}
	ps := req.PitchSession
	if ps == nil {
		writeError(w, http.StatusBadRequest, "Pitch session data is required")
		return
	}
	if ps.Persona == nil || ps.Persona.Name == "" || ps.Persona.Description == "" {
		writeError(w, http.StatusBadRequest, "Valid persona object is required")
		return
	}
	if ps.PitchLength == nil || ps.PitchLength.Name == "" || ps.PitchLength.Duration == 0 {
		writeError(w, http.StatusBadRequest, "Valid pitch length object is required")
		return
	}
	var transcript string
	if json.Unmarshal(ps.Transcript, &transcript) != nil || transcript == "" {
		writeError(w, http.StatusBadRequest, "Valid transcript string is required")
		return
	}
	var duration float64
	if !present(ps.Duration) || json.Unmarshal(ps.Duration, &duration) != nil || duration < 0 {
		writeError(w, http.StatusBadRequest, "Valid duration number is required")
		return
	}

	fb, err := s.coach.PitchFeedback(r.Context(), catalog.PitchSession{
		Persona:     *ps.Persona,
		PitchLength: *ps.PitchLength,
		Transcript:  transcript,
		Duration:    duration,
		Timestamp:   ps.Timestamp,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, map[string]any{"feedback": fb})
}

// ── Research ─────────────────────────────────────────────────────────────────

type researchRequest struct {
	Query json.RawMessage `json:"query"`
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errBadJSON)
		return
	}
	var query string
	if json.Unmarshal(req.Query, &query) != nil || strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "Search query is required and must be a non-empty string")
		return
	}
	rd, err := s.coach.Research(r.Context(), query)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, map[string]any{"data": rd})
}

// ── Catalog ──────────────────────────────────────────────────────────────────

// personaView adds on-device voice hints to a persona.
type personaView struct {
	catalog.Persona
	Voice voice.Hints `json:"voice"`
}

func (s *Server) handlePersonas(w http.ResponseWriter, _ *http.Request) {
	personas := s.catalog.Personas()
	out := make([]personaView, 0, len(personas))
	for _, p := range personas {
		out = append(out, personaView{Persona: p, Voice: voice.HintsFor(p.ID)})
	}
	writeOK(w, map[string]any{"personas": out})
}

func (s *Server) handleScenarios(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, map[string]any{"scenarios": s.catalog.Scenarios()})
}

func (s *Server) handlePitchLengths(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, map[string]any{"pitchLengths": s.catalog.PitchLengths()})
}
