package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookchat/internal/storage"
)

// Session query modes. Mirrors the modes the retrieval layer understands.
const (
	ModeFullBook     = "full-book"
	ModeSelectedText = "selected-text"
)

// Session is the API-facing view of a chat session.
type Session struct {
	ID           string    `json:"id"`
	BookID       string    `json:"book_id"`
	Title        string    `json:"title"`
	QueryMode    string    `json:"query_mode"`
	SelectedText string    `json:"selected_text,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HistoryEntry is one query/response exchange in a session. Citations are
// stored and returned as JSON so the service stays agnostic of their shape.
type HistoryEntry struct {
	QueryText    string          `json:"query_text"`
	ResponseText string          `json:"response_text"`
	Citations    json.RawMessage `json:"citations"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SessionService manages chat sessions and their conversation history.
type SessionService struct {
	sessions      storage.SessionStore
	conversations storage.ConversationStore
	books         storage.BookStore
}

// NewSessionService creates a new session service.
func NewSessionService(sessions storage.SessionStore, conversations storage.ConversationStore, books storage.BookStore) *SessionService {
	return &SessionService{
		sessions:      sessions,
		conversations: conversations,
		books:         books,
	}
}

// CreateSession starts a new full-book session against an ingested book.
func (s *SessionService) CreateSession(ctx context.Context, bookID, title string) (*Session, error) {
	if strings.TrimSpace(bookID) == "" {
		return nil, NewQueryProcessingError("book_id is required", nil)
	}

	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewQueryProcessingError(fmt.Sprintf("book %q has not been ingested", bookID), nil)
		}
		return nil, fmt.Errorf("failed to look up book: %w", err)
	}

	if strings.TrimSpace(title) == "" {
		title = "Chat about " + bookID
	}

	now := time.Now().UTC()
	record := &storage.SessionRecord{
		ID:        uuid.NewString(),
		BookID:    bookID,
		Title:     title,
		QueryMode: ModeFullBook,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sessionFromRecord(record), nil
}

// GetSession returns a session by id.
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	record, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	return sessionFromRecord(record), nil
}

// SelectText switches a session to selected-text mode. Subsequent queries in
// the session ground on this passage instead of the vector index.
func (s *SessionService) SelectText(ctx context.Context, sessionID, selectedText string) (*Session, error) {
	if strings.TrimSpace(selectedText) == "" {
		return nil, NewQueryProcessingError("selected_text must not be empty", nil)
	}
	if err := s.sessions.UpdateSelectedText(ctx, sessionID, selectedText); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return s.GetSession(ctx, sessionID)
}

// RecordExchange persists one answered query against a session. citations is
// the JSON-encoded citation list that accompanied the response.
func (s *SessionService) RecordExchange(ctx context.Context, sessionID string, query *storage.QueryRecord, responseText string, citations json.RawMessage) error {
	query.ID = uuid.NewString()
	query.SessionID = sessionID
	if query.CreatedAt.IsZero() {
		query.CreatedAt = time.Now().UTC()
	}
	if err := s.conversations.InsertQuery(ctx, query); err != nil {
		return fmt.Errorf("failed to persist query: %w", err)
	}

	if len(citations) == 0 {
		citations = json.RawMessage("[]")
	}
	response := &storage.ResponseRecord{
		ID:           uuid.NewString(),
		QueryID:      query.ID,
		ResponseText: responseText,
		Citations:    string(citations),
		GeneratedAt:  time.Now().UTC(),
	}
	if err := s.conversations.InsertResponse(ctx, response); err != nil {
		return fmt.Errorf("failed to persist response: %w", err)
	}
	return nil
}

// History returns a session's exchanges, oldest first.
func (s *SessionService) History(ctx context.Context, sessionID string) ([]HistoryEntry, error) {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	items, err := s.conversations.History(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(items))
	for _, item := range items {
		citations := item.Citations
		if citations == "" {
			citations = "[]"
		}
		entries = append(entries, HistoryEntry{
			QueryText:    item.QueryText,
			ResponseText: item.ResponseText,
			Citations:    json.RawMessage(citations),
			CreatedAt:    item.CreatedAt,
		})
	}
	return entries, nil
}

func sessionFromRecord(record *storage.SessionRecord) *Session {
	return &Session{
		ID:           record.ID,
		BookID:       record.BookID,
		Title:        record.Title,
		QueryMode:    record.QueryMode,
		SelectedText: record.SelectedText,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}
