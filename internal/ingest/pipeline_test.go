package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/mock/gomock"

	"bookchat/internal/chunker"
	llm_mocks "bookchat/internal/llm/mocks"
	"bookchat/internal/service"
	"bookchat/internal/storage"
	"bookchat/internal/vectorstore"
	vectorstore_mocks "bookchat/internal/vectorstore/mocks"
)

// runeTokenizer treats every rune as one token, keeping tests independent of
// the BPE vocabulary.
type runeTokenizer struct{}

func (runeTokenizer) Encode(text string) []int {
	runes := []rune(text)
	tokens := make([]int, len(runes))
	for i, r := range runes {
		tokens[i] = int(r)
	}
	return tokens
}

func (runeTokenizer) Decode(tokens []int) string {
	runes := make([]rune, len(tokens))
	for i, tok := range tokens {
		runes[i] = rune(tok)
	}
	return string(runes)
}

func newTestBookRepo(t *testing.T) *storage.BookRepo {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return storage.NewBookRepo(db)
}

func TestIngestBook_SingleChunk(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEmbedder := llm_mocks.NewMockEmbedder(ctrl)
	mockVectorStore := vectorstore_mocks.NewMockVectorStore(ctrl)
	bookRepo := newTestBookRepo(t)
	ctx := context.Background()

	text := "Alpha beta gamma."
	mockEmbedder.EXPECT().
		EmbedDocuments(gomock.Any(), []string{text}).
		Return([][]float32{{0.1, 0.2, 0.3}}, nil)

	var upserted []vectorstore.Point
	mockVectorStore.EXPECT().
		Upsert(gomock.Any(), "book_content_chunks", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, points []vectorstore.Point) error {
			upserted = points
			return nil
		})

	pipeline := NewPipeline(
		chunker.New(runeTokenizer{}), mockEmbedder, mockVectorStore, bookRepo,
		"book_content_chunks", 1000, 200,
	)

	result, err := pipeline.IngestBook(ctx, text, "The Great Novel", "A. Writer")
	if err != nil {
		t.Fatalf("IngestBook() unexpected error: %v", err)
	}

	if result.ChunkCount != 1 {
		t.Errorf("IngestBook() ChunkCount = %d, want 1", result.ChunkCount)
	}
	if result.Status != StatusCompleted {
		t.Errorf("IngestBook() Status = %q, want %q", result.Status, StatusCompleted)
	}
	if result.BookID != "the_great_novel" {
		t.Errorf("IngestBook() BookID = %q, want the_great_novel", result.BookID)
	}

	if len(upserted) != 1 {
		t.Fatalf("Upsert received %d points, want 1", len(upserted))
	}
	point := upserted[0]
	if point.Payload.Content != text {
		t.Errorf("point content = %q, want original text", point.Payload.Content)
	}
	if point.Payload.SourceLocation != "chunk 1" {
		t.Errorf("point source_location = %q, want %q", point.Payload.SourceLocation, "chunk 1")
	}
	if point.Payload.ChunkIndex != 0 {
		t.Errorf("point chunk_index = %d, want 0", point.Payload.ChunkIndex)
	}
	if point.Payload.Title != "The Great Novel" || point.Payload.Author != "A. Writer" {
		t.Errorf("point provenance = %q/%q, want title/author", point.Payload.Title, point.Payload.Author)
	}
	if point.ID != ChunkID("the_great_novel", 0) {
		t.Errorf("point id = %q, want deterministic chunk id", point.ID)
	}

	// Book record persisted with the chunk count.
	book, err := bookRepo.GetByID(ctx, "the_great_novel")
	if err != nil {
		t.Fatalf("GetByID() unexpected error: %v", err)
	}
	if book.ChunkCount != 1 {
		t.Errorf("stored ChunkCount = %d, want 1", book.ChunkCount)
	}
}

func TestIngestBook_UnchangedContentSkipsIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEmbedder := llm_mocks.NewMockEmbedder(ctrl)
	mockVectorStore := vectorstore_mocks.NewMockVectorStore(ctrl)
	bookRepo := newTestBookRepo(t)
	ctx := context.Background()

	text := "Alpha beta gamma."
	mockEmbedder.EXPECT().EmbedDocuments(gomock.Any(), gomock.Any()).Return([][]float32{{0.1}}, nil)
	mockVectorStore.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	pipeline := NewPipeline(chunker.New(runeTokenizer{}), mockEmbedder, mockVectorStore, bookRepo, "c", 1000, 200)

	if _, err := pipeline.IngestBook(ctx, text, "Book", "X"); err != nil {
		t.Fatalf("IngestBook() first run unexpected error: %v", err)
	}

	// Second run with identical content: no embed, no upsert expectations.
	result, err := pipeline.IngestBook(ctx, text, "Book", "X")
	if err != nil {
		t.Fatalf("IngestBook() second run unexpected error: %v", err)
	}
	if result.Status != StatusUnchanged {
		t.Errorf("IngestBook() Status = %q, want %q", result.Status, StatusUnchanged)
	}
	if result.ChunkCount != 1 {
		t.Errorf("IngestBook() ChunkCount = %d, want 1", result.ChunkCount)
	}
}

func TestIngestBook_EmbeddingFailureFailsWholeBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEmbedder := llm_mocks.NewMockEmbedder(ctrl)
	mockVectorStore := vectorstore_mocks.NewMockVectorStore(ctrl)
	bookRepo := newTestBookRepo(t)

	providerErr := service.NewExternalServiceError("embed provider down", nil)
	mockEmbedder.EXPECT().EmbedDocuments(gomock.Any(), gomock.Any()).Return(nil, providerErr)

	pipeline := NewPipeline(chunker.New(runeTokenizer{}), mockEmbedder, mockVectorStore, bookRepo, "c", 1000, 200)

	_, err := pipeline.IngestBook(context.Background(), "Some book text.", "Book", "X")
	if err == nil {
		t.Fatal("IngestBook() expected error when embedding fails, got nil")
	}
	if !service.IsBookProcessingError(err) {
		t.Errorf("IngestBook() error = %v, want BookProcessingError", err)
	}
	// The upstream cause stays visible in the chain.
	if !service.IsExternalServiceError(err) {
		t.Errorf("IngestBook() error chain should preserve provider error, got %v", err)
	}

	// No book record on failure.
	if _, err := bookRepo.GetByID(context.Background(), "book"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("book record should not exist after failed ingestion, got %v", err)
	}
}

func TestIngestBook_InvalidInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEmbedder := llm_mocks.NewMockEmbedder(ctrl)
	mockVectorStore := vectorstore_mocks.NewMockVectorStore(ctrl)
	bookRepo := newTestBookRepo(t)

	pipeline := NewPipeline(chunker.New(runeTokenizer{}), mockEmbedder, mockVectorStore, bookRepo, "c", 1000, 200)

	tests := []struct {
		name  string
		text  string
		title string
	}{
		{"empty text", "", "Book"},
		{"whitespace text", "   \n", "Book"},
		{"empty title", "Some text.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pipeline.IngestBook(context.Background(), tt.text, tt.title, "X")
			if err == nil {
				t.Fatal("IngestBook() expected error, got nil")
			}
			if !service.IsBookProcessingError(err) {
				t.Errorf("IngestBook() error = %v, want BookProcessingError", err)
			}
		})
	}
}

func TestChunkID_Deterministic(t *testing.T) {
	if ChunkID("book", 0) != ChunkID("book", 0) {
		t.Error("ChunkID() should be stable for the same book and ordinal")
	}
	if ChunkID("book", 0) == ChunkID("book", 1) {
		t.Error("ChunkID() should differ across ordinals")
	}
	if ChunkID("book", 0) == ChunkID("other", 0) {
		t.Error("ChunkID() should differ across books")
	}
}

func TestBookID(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"The Great Novel", "the_great_novel"},
		{"  Spaced  ", "spaced"},
		{"Single", "single"},
	}

	for _, tt := range tests {
		if got := BookID(tt.title); got != tt.want {
			t.Errorf("BookID(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}
