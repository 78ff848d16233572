package api

import (
	"net/http"

	"github.com/MrWong99/salespractice/internal/session"
)

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

func (s *Server) registerSessions(mux *http.ServeMux) {
	mux.HandleFunc("/api/sessions", only(http.MethodPost, s.handleCreateSession))
	mux.HandleFunc("/api/sessions/{id}", s.handleSession)

	actions := map[string]sessionHandler{
		"research":      s.sessionResearch,
		"skip-research": s.sessionSkipResearch,
		"mode":          s.sessionMode,
		"persona":       s.sessionPersona,
		"scenario":      s.sessionScenario,
		"pitch-length":  s.sessionPitchLength,
		"start":         s.sessionStart,
		"say":           s.sessionSay,
		"end":           s.sessionEnd,
		"pitch":         s.sessionPitch,
		"reset":         s.sessionReset,
	}
	for name, h := range actions {
		mux.HandleFunc("/api/sessions/{id}/"+name, only(http.MethodPost, s.withSession(h)))
	}
}

// withSession resolves the {id} path value before calling h.
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(r.PathValue("id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		h(w, r, sess)
	}
}

func writeSession(w http.ResponseWriter, status int, sess *session.Session, fields map[string]any) {
	body := map[string]any{"success": true, "session": sess.Snapshot()}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+sess.ID())
	writeSession(w, http.StatusCreated, sess, nil)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.withSession(func(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
			writeSession(w, http.StatusOK, sess, nil)
		})(w, r)
	case http.MethodDelete:
		if err := s.sessions.Delete(r.Context(), r.PathValue("id")); err != nil {
			s.fail(w, r, err)
			return
		}
		writeOK(w, nil)
	default:
		w.Header().Set("Allow", "GET, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// ── Actions ──────────────────────────────────────────────────────────────────

type queryBody struct {
	Query string `json:"query"`
}

type idBody struct {
	ID string `json:"id"`
}

type modeBody struct {
	Mode session.Mode `json:"mode"`
}

type sayBody struct {
	Text string `json:"text"`
}

type pitchBody struct {
	Transcript string  `json:"transcript"`
	Duration   float64 `json:"duration"`
}

func (s *Server) sessionResearch(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var body queryBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, errBadJSON)
		return
	}
	rd, err := sess.Research(r.Context(), body.Query)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeSession(w, http.StatusOK, sess, map[string]any{"data": rd})
}

func (s *Server) sessionSkipResearch(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := sess.SkipResearch(); err != nil {
		s.fail(w, r, err)
		return
	}
	writeSession(w, http.StatusOK, sess, nil)
}

func (s *Server) sessionMode(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var body modeBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, errBadJSON)
		return
	}
	if err := sess.SelectMode(body.Mode); err != nil {
		s.fail(w, r, err)
		return
	}
	writeSession(w, http.StatusOK, sess, nil)
}

// selectByID decodes {"id": ...} and hands it to pick.
func (s *Server) selectByID(pick func(*session.Session, string) error) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		var body idBody
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, errBadJSON)
			return
		}
		if err := pick(sess, body.ID); err != nil {
			s.fail(w, r, err)
			return
		}
		writeSession(w, http.StatusOK, sess, nil)
	}
}

func (s *Server) sessionPersona(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.selectByID((*session.Session).SelectPersona)(w, r, sess)
}

func (s *Server) sessionScenario(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.selectByID((*session.Session).SelectScenario)(w, r, sess)
}

func (s *Server) sessionPitchLength(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.selectByID((*session.Session).SelectPitchLength)(w, r, sess)
}

func (s *Server) sessionStart(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	reply, err := sess.Start(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeSession(w, http.StatusOK, sess, map[string]any{"response": reply})
}

func (s *Server) sessionSay(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var body sayBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, errBadJSON)
		return
	}
	reply, err := sess.Say(r.Context(), body.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeSession(w, http.StatusOK, sess, map[string]any{"response": reply})
}

func (s *Server) sessionEnd(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	fb, err := sess.EndConversation(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeSession(w, http.StatusOK, sess, map[string]any{"feedback": fb})
}

func (s *Server) sessionPitch(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var body pitchBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, errBadJSON)
		return
	}
	fb, err := sess.SubmitPitch(r.Context(), body.Transcript, body.Duration)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeSession(w, http.StatusOK, sess, map[string]any{"feedback": fb})
}

func (s *Server) sessionReset(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	sess.Reset()
	writeSession(w, http.StatusOK, sess, nil)
}
