package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bookchat/internal/contextutil"
	"bookchat/internal/service"
)

// SessionHandler handles chat session requests.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// CreateSessionRequest represents the request payload for creating a session.
type CreateSessionRequest struct {
	BookID string `json:"book_id"`
	Title  string `json:"title,omitempty"`
}

// SelectTextRequest represents the request payload for pinning a passage.
type SelectTextRequest struct {
	SelectedText string `json:"selected_text"`
}

// HistoryResponse represents a session's conversation history.
type HistoryResponse struct {
	SessionID string                 `json:"session_id"`
	History   []service.HistoryEntry `json:"history"`
}

// Create starts a new chat session for an ingested book.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.sessions.CreateSession(ctx, req.BookID, req.Title)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	logger.InfoContext(ctx, "session created", "session_id", session.ID, "book_id", session.BookID)
	writeJSON(w, http.StatusCreated, session)
}

// Get returns a session by id.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.sessions.GetSession(ctx, chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// History returns a session's exchanges, oldest first.
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	history, err := h.sessions.History(ctx, sessionID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{SessionID: sessionID, History: history})
}

// SelectText pins a passage to the session, switching it to selected-text mode.
func (h *SessionHandler) SelectText(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req SelectTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.sessions.SelectText(ctx, chi.URLParam(r, "sessionID"), req.SelectedText)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}
