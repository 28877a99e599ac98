package handlers

import (
	"encoding/json"
	"net/http"

	"bookchat/internal/contextutil"
	"bookchat/internal/ingest"
)

// IngestHandler handles book ingestion requests.
type IngestHandler struct {
	pipeline *ingest.Pipeline
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(pipeline *ingest.Pipeline) *IngestHandler {
	return &IngestHandler{pipeline: pipeline}
}

// IngestRequest represents the request payload for book ingestion.
type IngestRequest struct {
	RawText string `json:"raw_text"`
	Title   string `json:"title"`
	Author  string `json:"author"`
}

// ServeHTTP chunks, embeds, and indexes a book's raw text.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.pipeline.IngestBook(ctx, req.RawText, req.Title, req.Author)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	logger.InfoContext(ctx, "book ingested",
		"book_id", result.BookID, "chunk_count", result.ChunkCount, "status", result.Status)
	writeJSON(w, http.StatusOK, result)
}
