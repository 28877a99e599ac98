package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bookchat/internal/storage"
)

// BookHandler handles book record lookups.
type BookHandler struct {
	books storage.BookStore
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(books storage.BookStore) *BookHandler {
	return &BookHandler{books: books}
}

// BookResponse represents an ingested book.
type BookResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Get returns a single ingested book by id.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	book, err := h.books.GetByID(ctx, chi.URLParam(r, "bookID"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, BookResponse{
		ID:         book.ID,
		Title:      book.Title,
		Author:     book.Author,
		ChunkCount: book.ChunkCount,
		CreatedAt:  book.CreatedAt,
		UpdatedAt:  book.UpdatedAt,
	})
}
