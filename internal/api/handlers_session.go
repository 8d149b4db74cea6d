package api

import (
	"net/http"
	"strings"

	"github.com/saeedalam/projectassistant/internal/session"
)

// SessionHandler serves the session lifecycle
type SessionHandler struct {
	sessions *session.Manager
}

// NewSessionHandler creates a session handler
func NewSessionHandler(sessions *session.Manager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Status handles GET /api/status
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	report, err := h.sessions.Status()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, report)
}

// Current handles GET /api/session
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Current()
	if s == nil {
		writeErr(w, session.ErrNoSession)
		return
	}
	writeOK(w, s)
}

type startRequest struct {
	ProjectDir string `json:"projectDir"`
}

// Start handles POST /api/session/start
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.ProjectDir) == "" {
		writeError(w, http.StatusBadRequest, "projectDir is required")
		return
	}

	s, err := h.sessions.Start(req.ProjectDir)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, s)
}

type loadRequest struct {
	SessionID string `json:"sessionId"`
}

// Load handles POST /api/session/load
func (h *SessionHandler) Load(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	s, err := h.sessions.Load(req.SessionID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, s)
}

// List handles GET /api/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.sessions.List()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, list)
}
