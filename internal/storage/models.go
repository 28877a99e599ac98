package storage

import "time"

// BookRecord represents an ingested book in the database.
type BookRecord struct {
	ID         string // Derived from the title (stable across re-ingestion)
	Title      string
	Author     string
	Hash       string // SHA256 hex of the raw text, used to skip unchanged re-ingestion
	ChunkCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SessionRecord represents a chat session about a book.
type SessionRecord struct {
	ID           string // UUID
	BookID       string
	Title        string
	QueryMode    string // "full-book" or "selected-text"
	SelectedText string // Set when QueryMode is "selected-text"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// QueryRecord represents a user's question within a session.
type QueryRecord struct {
	ID           string // UUID
	SessionID    string
	QueryText    string
	QueryMode    string
	SelectedText string
	CreatedAt    time.Time
}

// ResponseRecord represents the generated answer to a query.
type ResponseRecord struct {
	ID           string // UUID
	QueryID      string
	ResponseText string
	Citations    string // JSON-encoded citation list
	GeneratedAt  time.Time
}

// HistoryItem pairs a query with its response for chat history listings.
type HistoryItem struct {
	QueryText    string
	ResponseText string
	Citations    string // JSON-encoded citation list
	CreatedAt    time.Time
}
