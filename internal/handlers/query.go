package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"bookchat/internal/contextutil"
	"bookchat/internal/rag"
	"bookchat/internal/retrieval"
	"bookchat/internal/service"
	"bookchat/internal/storage"
)

// Input bounds for query requests.
const (
	maxQueryChars        = 1000
	maxSelectedTextChars = 5000
)

// QueryHandler handles grounded query requests.
type QueryHandler struct {
	router   *retrieval.Router
	engine   *rag.Engine
	sessions *service.SessionService
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(router *retrieval.Router, engine *rag.Engine, sessions *service.SessionService) *QueryHandler {
	return &QueryHandler{
		router:   router,
		engine:   engine,
		sessions: sessions,
	}
}

// QueryRequest represents the request payload for grounded queries.
type QueryRequest struct {
	SessionID    string `json:"session_id,omitempty"`
	QueryText    string `json:"query_text"`
	QueryMode    string `json:"query_mode"`
	SelectedText string `json:"selected_text,omitempty"`
}

// QueryResponse represents the response payload for grounded queries.
type QueryResponse struct {
	ResponseText string         `json:"response_text"`
	Citations    []rag.Citation `json:"citations"`
	QueryMode    string         `json:"query_mode"`
}

// ServeHTTP processes one grounded query: route context, generate, and (when
// the caller attached a session) persist the exchange.
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.QueryText) == "" {
		writeError(w, http.StatusUnprocessableEntity, "query_text is required")
		return
	}
	if utf8.RuneCountInString(req.QueryText) > maxQueryChars {
		writeError(w, http.StatusUnprocessableEntity, "query_text exceeds 1000 characters")
		return
	}
	if utf8.RuneCountInString(req.SelectedText) > maxSelectedTextChars {
		writeError(w, http.StatusUnprocessableEntity, "selected_text exceeds 5000 characters")
		return
	}
	if req.QueryMode == "" {
		req.QueryMode = retrieval.ModeFullBook
	}

	// A session in selected-text mode supplies its stored passage when the
	// request does not carry one.
	if req.SessionID != "" {
		session, err := h.sessions.GetSession(ctx, req.SessionID)
		if err != nil {
			writeServiceError(ctx, w, err)
			return
		}
		if session.QueryMode == service.ModeSelectedText && req.SelectedText == "" {
			req.QueryMode = retrieval.ModeSelectedText
			req.SelectedText = session.SelectedText
		}
	}

	contexts, err := h.router.Retrieve(ctx, req.QueryText, req.QueryMode, req.SelectedText)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	result, err := h.engine.Answer(ctx, req.QueryText, req.QueryMode, contexts)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	if req.SessionID != "" {
		citations, err := json.Marshal(result.Citations)
		if err != nil {
			writeServiceError(ctx, w, err)
			return
		}
		record := &storage.QueryRecord{
			QueryText:    req.QueryText,
			QueryMode:    req.QueryMode,
			SelectedText: req.SelectedText,
		}
		if err := h.sessions.RecordExchange(ctx, req.SessionID, record, result.ResponseText, citations); err != nil {
			logger.ErrorContext(ctx, "failed to persist exchange", "error", err, "session_id", req.SessionID)
			writeError(w, http.StatusInternalServerError, "Failed to persist exchange")
			return
		}
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		ResponseText: result.ResponseText,
		Citations:    result.Citations,
		QueryMode:    result.QueryMode,
	})
}
