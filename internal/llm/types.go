package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm.go -package=mocks bookchat/internal/llm Embedder,Generator

import "context"

// Embedder converts text into fixed-dimension vectors. Documents and queries
// are encoded with different intents at the wire level; retrieval quality
// depends on that asymmetry, so the two entry points must not be collapsed.
type Embedder interface {
	// EmbedDocuments embeds texts with document intent, one vector per text.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds a single query with query intent.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator produces a completion for a grounding prompt.
type Generator interface {
	// Generate invokes the generation model with maxTokens as an upper bound
	// on output length. Empty model output is an error, never a valid answer.
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Embedding intents, distinguished on the wire per the provider protocol.
const (
	inputTypeDocument = "search_document"
	inputTypeQuery    = "search_query"
)
