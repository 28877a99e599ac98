package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"bookchat/internal/chunker"
	"bookchat/internal/contextutil"
	"bookchat/internal/llm"
	"bookchat/internal/service"
	"bookchat/internal/storage"
	"bookchat/internal/vectorstore"
)

// Pipeline turns raw extracted book text into embedded chunks in the vector
// index: chunking, batch document embedding, batch upsert, and a book record
// in storage. Ingestion is a batch job; if any embedding or upsert step fails
// the whole call fails and the index may be partially populated for that
// book. Re-ingestion is safe because chunk ids are deterministic and upsert
// overwrites by id.
type Pipeline struct {
	chunker       *chunker.TokenChunker
	embedder      llm.Embedder
	vectorStore   vectorstore.VectorStore
	bookRepo      storage.BookStore
	collection    string
	maxTokens     int
	overlapTokens int
	logger        *slog.Logger
}

// Result summarizes a completed ingestion.
type Result struct {
	BookID     string `json:"book_id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	ChunkCount int    `json:"chunk_count"`
	Status     string `json:"status"`
}

// Ingestion statuses.
const (
	StatusCompleted = "completed"
	StatusUnchanged = "unchanged"
)

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	tokenChunker *chunker.TokenChunker,
	embedder llm.Embedder,
	vectorStore vectorstore.VectorStore,
	bookRepo storage.BookStore,
	collection string,
	maxTokens int,
	overlapTokens int,
) *Pipeline {
	return &Pipeline{
		chunker:       tokenChunker,
		embedder:      embedder,
		vectorStore:   vectorStore,
		bookRepo:      bookRepo,
		collection:    collection,
		maxTokens:     maxTokens,
		overlapTokens: overlapTokens,
		logger:        slog.Default(),
	}
}

// IngestBook chunks rawText, embeds the chunks with document intent, and
// upserts them into the vector index. If the book was already ingested with
// identical content (same hash), the index is left alone and the result
// status is "unchanged".
func (p *Pipeline) IngestBook(ctx context.Context, rawText, title, author string) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(rawText) == "" {
		return nil, service.NewBookProcessingError("book text is empty", nil)
	}
	if strings.TrimSpace(title) == "" {
		return nil, service.NewBookProcessingError("book title is required", nil)
	}

	bookID := BookID(title)
	contentHash := fmt.Sprintf("%x", sha256.Sum256([]byte(rawText)))

	existing, err := p.bookRepo.GetByID(ctx, bookID)
	if err != nil && err != storage.ErrNotFound {
		return nil, service.NewBookProcessingError("failed to check existing book", err)
	}
	if existing != nil && existing.Hash == contentHash {
		logger.InfoContext(ctx, "book content unchanged, skipping ingestion", "book_id", bookID, "hash", contentHash)
		return &Result{
			BookID:     bookID,
			Title:      title,
			Author:     author,
			ChunkCount: existing.ChunkCount,
			Status:     StatusUnchanged,
		}, nil
	}

	chunkTexts, err := p.chunker.Chunk(rawText, p.maxTokens, p.overlapTokens)
	if err != nil {
		return nil, service.NewBookProcessingError("failed to chunk book text", err)
	}
	logger.InfoContext(ctx, "book chunked", "book_id", bookID, "chunks", len(chunkTexts),
		"max_tokens", p.maxTokens, "overlap_tokens", p.overlapTokens)

	embeddings, err := p.embedder.EmbedDocuments(ctx, chunkTexts)
	if err != nil {
		return nil, service.NewBookProcessingError("failed to embed book chunks", err)
	}
	if len(embeddings) != len(chunkTexts) {
		return nil, service.NewBookProcessingError(
			fmt.Sprintf("embedding count mismatch: %d chunks, %d vectors", len(chunkTexts), len(embeddings)), nil)
	}

	points := make([]vectorstore.Point, len(chunkTexts))
	for i, text := range chunkTexts {
		points[i] = vectorstore.Point{
			ID:  ChunkID(bookID, i),
			Vec: embeddings[i],
			Payload: vectorstore.ChunkPayload{
				Content:        text,
				Title:          title,
				Author:         author,
				ChunkIndex:     i,
				TokenCount:     p.chunker.TokenCount(text),
				SourceLocation: fmt.Sprintf("chunk %d", i+1),
				ContentHash:    fmt.Sprintf("%x", sha256.Sum256([]byte(text))),
			},
		}
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return nil, service.NewBookProcessingError("failed to upsert book chunks", err)
	}

	record := &storage.BookRecord{
		ID:         bookID,
		Title:      title,
		Author:     author,
		Hash:       contentHash,
		ChunkCount: len(chunkTexts),
	}
	if err := p.bookRepo.Upsert(ctx, record); err != nil {
		return nil, service.NewBookProcessingError("failed to record book", err)
	}

	logger.InfoContext(ctx, "book ingested", "book_id", bookID, "chunks", len(chunkTexts))

	return &Result{
		BookID:     bookID,
		Title:      title,
		Author:     author,
		ChunkCount: len(chunkTexts),
		Status:     StatusCompleted,
	}, nil
}

// BookID derives a stable book identifier from the title.
func BookID(title string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(title), " ", "_"))
}

// ChunkID derives a deterministic chunk id from the book id and ordinal, so
// re-ingesting the same book overwrites its prior points instead of
// duplicating them.
func ChunkID(bookID string, ordinal int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s:%d", bookID, ordinal))).String()
}
