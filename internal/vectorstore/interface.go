package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks bookchat/internal/vectorstore VectorStore

import "context"

// ChunkPayload is the structured payload stored with every chunk vector.
// Fixed fields rather than a free-form metadata map so the type stays
// checkable across the index boundary.
type ChunkPayload struct {
	Content        string
	Title          string
	Author         string
	ChunkIndex     int
	TokenCount     int
	SourceLocation string
	ContentHash    string
}

// Point represents a chunk vector with its payload.
type Point struct {
	ID      string
	Vec     []float32
	Payload ChunkPayload
}

// SearchResult represents a similarity search hit.
type SearchResult struct {
	PointID string
	Score   float32
	Payload ChunkPayload
}

// CollectionInfo describes a collection's configuration and size.
type CollectionInfo struct {
	VectorSize  int
	PointsCount int
	Status      string
}

// VectorStore maintains a single similarity-searchable collection of chunk
// vectors. Upsert is idempotent per point id; Search returns at most k hits
// ordered by descending similarity, with ties broken by point id so a fixed
// index state yields a fixed order.
type VectorStore interface {
	// EnsureCollection creates the collection if absent and validates the
	// vector size if it already exists. Safe to call repeatedly.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// Upsert inserts or overwrites points by id.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a cosine similarity search.
	Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error)

	// Info returns collection configuration and point count.
	Info(ctx context.Context, collection string) (*CollectionInfo, error)
}
