package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_book_store.go -package=mocks bookchat/internal/storage BookStore

import (
	"context"
	"database/sql"
	"fmt"
)

// BookStore defines the interface for book record operations.
type BookStore interface {
	// Upsert inserts a book record or updates it in place by id.
	Upsert(ctx context.Context, book *BookRecord) error
	// GetByID gets a book by its id. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*BookRecord, error)
	// GetByTitle gets a book by its exact title. Returns ErrNotFound if not found.
	GetByTitle(ctx context.Context, title string) (*BookRecord, error)
}

// BookRepo provides methods for book record operations.
type BookRepo struct {
	db *sql.DB
}

// NewBookRepo creates a new BookRepo.
func NewBookRepo(db *sql.DB) *BookRepo {
	return &BookRepo{db: db}
}

// Upsert inserts a book record or updates it in place by id.
func (r *BookRepo) Upsert(ctx context.Context, book *BookRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO books (id, title, author, hash, chunk_count) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			hash = excluded.hash,
			chunk_count = excluded.chunk_count,
			updated_at = CURRENT_TIMESTAMP`,
		book.ID, book.Title, book.Author, book.Hash, book.ChunkCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert book: %w", err)
	}
	return nil
}

// GetByID gets a book by its id. Returns ErrNotFound if not found.
func (r *BookRepo) GetByID(ctx context.Context, id string) (*BookRecord, error) {
	return r.get(ctx, "SELECT id, title, author, hash, chunk_count, created_at, updated_at FROM books WHERE id = ?", id)
}

// GetByTitle gets a book by its exact title. Returns ErrNotFound if not found.
func (r *BookRepo) GetByTitle(ctx context.Context, title string) (*BookRecord, error) {
	return r.get(ctx, "SELECT id, title, author, hash, chunk_count, created_at, updated_at FROM books WHERE title = ?", title)
}

func (r *BookRepo) get(ctx context.Context, query string, arg any) (*BookRecord, error) {
	var book BookRecord
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&book.ID, &book.Title, &book.Author, &book.Hash, &book.ChunkCount, &book.CreatedAt, &book.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query book: %w", err)
	}
	return &book, nil
}
