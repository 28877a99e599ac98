package retrieval

import (
	"context"
	"testing"

	"go.uber.org/mock/gomock"

	llm_mocks "bookchat/internal/llm/mocks"
	"bookchat/internal/rag"
	"bookchat/internal/service"
	"bookchat/internal/vectorstore"
	vectorstore_mocks "bookchat/internal/vectorstore/mocks"
)

func TestRetrieve_FullBook(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEmbedder := llm_mocks.NewMockEmbedder(ctrl)
	mockVectorStore := vectorstore_mocks.NewMockVectorStore(ctrl)

	queryVec := []float32{0.1, 0.2}
	mockEmbedder.EXPECT().EmbedQuery(gomock.Any(), "What happens in chapter one?").Return(queryVec, nil)
	mockVectorStore.EXPECT().
		Search(gomock.Any(), "book_content_chunks", queryVec, 4).
		Return([]vectorstore.SearchResult{
			{PointID: "a", Score: 0.9, Payload: vectorstore.ChunkPayload{Content: "First passage.", SourceLocation: "chunk 1"}},
			{PointID: "b", Score: 0.7, Payload: vectorstore.ChunkPayload{Content: "Second passage.", SourceLocation: "chunk 7"}},
		}, nil)

	router := NewRouter(mockEmbedder, mockVectorStore, "book_content_chunks", 4)

	contexts, err := router.Retrieve(context.Background(), "What happens in chapter one?", ModeFullBook, "")
	if err != nil {
		t.Fatalf("Retrieve() unexpected error: %v", err)
	}

	if len(contexts) != 2 {
		t.Fatalf("Retrieve() returned %d contexts, want 2", len(contexts))
	}
	if contexts[0].Content != "First passage." || contexts[0].SourceLocation != "chunk 1" {
		t.Errorf("unexpected first context: %+v", contexts[0])
	}
	if contexts[0].RelevanceScore != 0.9 {
		t.Errorf("first context score = %v, want 0.9", contexts[0].RelevanceScore)
	}
	for i, c := range contexts {
		if c.Origin != rag.OriginIndexed {
			t.Errorf("context %d origin = %q, want %q", i, c.Origin, rag.OriginIndexed)
		}
	}
}

func TestRetrieve_SelectedText(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Neither the embedder nor the vector store may be touched.
	mockEmbedder := llm_mocks.NewMockEmbedder(ctrl)
	mockVectorStore := vectorstore_mocks.NewMockVectorStore(ctrl)

	router := NewRouter(mockEmbedder, mockVectorStore, "c", 4)

	passage := "It was the best of times, it was the worst of times."
	contexts, err := router.Retrieve(context.Background(), "What does this mean?", ModeSelectedText, passage)
	if err != nil {
		t.Fatalf("Retrieve() unexpected error: %v", err)
	}

	if len(contexts) != 1 {
		t.Fatalf("Retrieve() returned %d contexts, want exactly 1", len(contexts))
	}
	got := contexts[0]
	if got.Content != passage {
		t.Errorf("context content = %q, want the selected passage", got.Content)
	}
	if got.SourceLocation != "user-selected" {
		t.Errorf("context source_location = %q, want user-selected", got.SourceLocation)
	}
	if got.RelevanceScore != 1.0 {
		t.Errorf("context score = %v, want 1.0", got.RelevanceScore)
	}
	if got.Origin != rag.OriginUserSelected {
		t.Errorf("context origin = %q, want %q", got.Origin, rag.OriginUserSelected)
	}
}

func TestRetrieve_InvalidInput(t *testing.T) {
	tests := []struct {
		name         string
		mode         string
		selectedText string
	}{
		{"unknown mode", "hybrid", ""},
		{"empty mode", "", ""},
		{"selected-text without passage", ModeSelectedText, ""},
		{"selected-text with whitespace passage", ModeSelectedText, "  \n "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// Invalid input must be rejected before any provider call.
			mockEmbedder := llm_mocks.NewMockEmbedder(ctrl)
			mockVectorStore := vectorstore_mocks.NewMockVectorStore(ctrl)

			router := NewRouter(mockEmbedder, mockVectorStore, "c", 4)

			_, err := router.Retrieve(context.Background(), "a question", tt.mode, tt.selectedText)
			if err == nil {
				t.Fatal("Retrieve() expected error, got nil")
			}
			if !service.IsQueryProcessingError(err) {
				t.Errorf("Retrieve() error = %v, want QueryProcessingError", err)
			}
		})
	}
}

func TestRetrieve_SearchFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEmbedder := llm_mocks.NewMockEmbedder(ctrl)
	mockVectorStore := vectorstore_mocks.NewMockVectorStore(ctrl)

	mockEmbedder.EXPECT().EmbedQuery(gomock.Any(), gomock.Any()).Return([]float32{0.1}, nil)
	mockVectorStore.EXPECT().
		Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, context.DeadlineExceeded)

	router := NewRouter(mockEmbedder, mockVectorStore, "c", 4)

	_, err := router.Retrieve(context.Background(), "q", ModeFullBook, "")
	if err == nil {
		t.Fatal("Retrieve() expected error, got nil")
	}
	if !service.IsExternalServiceError(err) {
		t.Errorf("Retrieve() error = %v, want ExternalServiceError", err)
	}
}

func TestRetrieve_EmptyIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEmbedder := llm_mocks.NewMockEmbedder(ctrl)
	mockVectorStore := vectorstore_mocks.NewMockVectorStore(ctrl)

	mockEmbedder.EXPECT().EmbedQuery(gomock.Any(), gomock.Any()).Return([]float32{0.1}, nil)
	mockVectorStore.EXPECT().
		Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]vectorstore.SearchResult{}, nil)

	router := NewRouter(mockEmbedder, mockVectorStore, "c", 4)

	contexts, err := router.Retrieve(context.Background(), "q", ModeFullBook, "")
	if err != nil {
		t.Fatalf("Retrieve() unexpected error on empty index: %v", err)
	}
	if len(contexts) != 0 {
		t.Errorf("Retrieve() returned %d contexts, want 0", len(contexts))
	}
}
