package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"bookchat/internal/contextutil"
	"bookchat/internal/service"
	"bookchat/internal/storage"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// writeServiceError maps the pipeline's error taxonomy onto transport
// outcomes: caller-input failures become 422, provider failures 502, missing
// records 404, anything else 500.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := contextutil.LoggerFromContext(ctx)

	switch {
	case service.IsQueryProcessingError(err), service.IsBookProcessingError(err):
		logger.WarnContext(ctx, "request rejected", "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case service.IsExternalServiceError(err):
		logger.ErrorContext(ctx, "upstream provider failure", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		logger.WarnContext(ctx, "record not found", "error", err)
		writeError(w, http.StatusNotFound, "Not found")
	default:
		logger.ErrorContext(ctx, "internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
