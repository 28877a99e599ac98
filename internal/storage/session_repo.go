package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_session_store.go -package=mocks bookchat/internal/storage SessionStore

import (
	"context"
	"database/sql"
	"fmt"
)

// SessionStore defines the interface for chat session operations.
type SessionStore interface {
	// Insert inserts a new session. The session.ID must be set before calling.
	Insert(ctx context.Context, session *SessionRecord) error
	// GetByID gets a session by its id. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*SessionRecord, error)
	// UpdateSelectedText switches a session to selected-text mode with the given excerpt.
	UpdateSelectedText(ctx context.Context, id, selectedText string) error
}

// SessionRepo provides methods for chat session operations.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Insert inserts a new session.
func (r *SessionRepo) Insert(ctx context.Context, session *SessionRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (id, book_id, title, query_mode, selected_text) VALUES (?, ?, ?, ?, ?)",
		session.ID, session.BookID, session.Title, session.QueryMode, session.SelectedText,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetByID gets a session by its id. Returns ErrNotFound if not found.
func (r *SessionRepo) GetByID(ctx context.Context, id string) (*SessionRecord, error) {
	var session SessionRecord
	var selectedText sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT id, book_id, title, query_mode, selected_text, created_at, updated_at FROM sessions WHERE id = ?",
		id,
	).Scan(&session.ID, &session.BookID, &session.Title, &session.QueryMode, &selectedText, &session.CreatedAt, &session.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	session.SelectedText = selectedText.String
	return &session, nil
}

// UpdateSelectedText switches a session to selected-text mode with the given excerpt.
func (r *SessionRepo) UpdateSelectedText(ctx context.Context, id, selectedText string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET query_mode = 'selected-text', selected_text = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		selectedText, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update session selected text: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check session update: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
