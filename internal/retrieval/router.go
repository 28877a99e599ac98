package retrieval

import (
	"context"
	"fmt"
	"strings"

	"bookchat/internal/contextutil"
	"bookchat/internal/llm"
	"bookchat/internal/rag"
	"bookchat/internal/service"
	"bookchat/internal/vectorstore"
)

// Query modes accepted by the router.
const (
	ModeFullBook     = "full-book"
	ModeSelectedText = "selected-text"

	// DefaultTopK is how many chunks a full-book query retrieves when the
	// caller does not say otherwise.
	DefaultTopK = 4

	selectedTextLocation = "user-selected"
)

// Router resolves a query to the context passages the generation step will
// ground on. Full-book queries go through the vector index; selected-text
// queries bypass retrieval entirely and use the caller's passage as the sole
// context.
type Router struct {
	embedder    llm.Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	topK        int
}

// NewRouter creates a new context router.
func NewRouter(embedder llm.Embedder, vectorStore vectorstore.VectorStore, collection string, topK int) *Router {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Router{
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		topK:        topK,
	}
}

// Retrieve returns the grounding contexts for a query. selectedText is only
// consulted in selected-text mode, where it must be non-empty.
func (r *Router) Retrieve(ctx context.Context, queryText, queryMode, selectedText string) ([]rag.RetrievedContext, error) {
	logger := contextutil.LoggerFromContext(ctx)

	switch queryMode {
	case ModeSelectedText:
		if strings.TrimSpace(selectedText) == "" {
			return nil, service.NewQueryProcessingError("selected-text mode requires a selected passage", nil)
		}
		logger.InfoContext(ctx, "using selected text as context", "chars", len(selectedText))
		return []rag.RetrievedContext{
			{
				Content:        selectedText,
				SourceLocation: selectedTextLocation,
				RelevanceScore: 1.0,
				Origin:         rag.OriginUserSelected,
			},
		}, nil

	case ModeFullBook:
		return r.retrieveIndexed(ctx, queryText)

	default:
		return nil, service.NewQueryProcessingError(fmt.Sprintf("unknown query mode %q", queryMode), nil)
	}
}

func (r *Router) retrieveIndexed(ctx context.Context, queryText string) ([]rag.RetrievedContext, error) {
	logger := contextutil.LoggerFromContext(ctx)

	vec, err := r.embedder.EmbedQuery(ctx, queryText)
	if err != nil {
		if service.IsExternalServiceError(err) || service.IsQueryProcessingError(err) {
			return nil, err
		}
		return nil, service.NewQueryProcessingError("failed to embed query", err)
	}

	results, err := r.vectorStore.Search(ctx, r.collection, vec, r.topK)
	if err != nil {
		return nil, service.NewExternalServiceError("vector search failed", err)
	}

	logger.InfoContext(ctx, "retrieved indexed contexts", "count", len(results), "top_k", r.topK)

	contexts := make([]rag.RetrievedContext, 0, len(results))
	for _, res := range results {
		contexts = append(contexts, rag.RetrievedContext{
			Content:        res.Payload.Content,
			SourceLocation: res.Payload.SourceLocation,
			RelevanceScore: res.Score,
			Origin:         rag.OriginIndexed,
		})
	}
	return contexts, nil
}
