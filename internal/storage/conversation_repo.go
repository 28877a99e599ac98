package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_conversation_store.go -package=mocks bookchat/internal/storage ConversationStore

import (
	"context"
	"database/sql"
	"fmt"
)

// ConversationStore defines the interface for persisted queries and responses.
type ConversationStore interface {
	// InsertQuery inserts a user query record.
	InsertQuery(ctx context.Context, query *QueryRecord) error
	// InsertResponse inserts a generated response record.
	InsertResponse(ctx context.Context, response *ResponseRecord) error
	// History returns all query/response pairs for a session, oldest first.
	History(ctx context.Context, sessionID string) ([]HistoryItem, error)
}

// ConversationRepo provides methods for query and response persistence.
type ConversationRepo struct {
	db *sql.DB
}

// NewConversationRepo creates a new ConversationRepo.
func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// InsertQuery inserts a user query record.
func (r *ConversationRepo) InsertQuery(ctx context.Context, query *QueryRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO queries (id, session_id, query_text, query_mode, selected_text) VALUES (?, ?, ?, ?, ?)",
		query.ID, query.SessionID, query.QueryText, query.QueryMode, query.SelectedText,
	)
	if err != nil {
		return fmt.Errorf("failed to insert query: %w", err)
	}
	return nil
}

// InsertResponse inserts a generated response record.
func (r *ConversationRepo) InsertResponse(ctx context.Context, response *ResponseRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO responses (id, query_id, response_text, citations) VALUES (?, ?, ?, ?)",
		response.ID, response.QueryID, response.ResponseText, response.Citations,
	)
	if err != nil {
		return fmt.Errorf("failed to insert response: %w", err)
	}
	return nil
}

// History returns all query/response pairs for a session, oldest first.
// Queries without a recorded response are included with an empty response.
func (r *ConversationRepo) History(ctx context.Context, sessionID string) ([]HistoryItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT q.query_text, COALESCE(resp.response_text, ''), COALESCE(resp.citations, '[]'), q.created_at
		 FROM queries q
		 LEFT JOIN responses resp ON resp.query_id = q.id
		 WHERE q.session_id = ?
		 ORDER BY q.created_at ASC, q.id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var items []HistoryItem
	for rows.Next() {
		var item HistoryItem
		if err := rows.Scan(&item.QueryText, &item.ResponseText, &item.Citations, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}
