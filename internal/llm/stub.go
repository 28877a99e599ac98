package llm

import (
	"context"
	"fmt"
	"hash/fnv"
)

// Stub providers for development and tests. Whether a deployment runs the real
// or the stub variant is decided once at construction time via configuration,
// never inferred from credential contents at call time.

// StubEmbedder is a deterministic in-process Embedder.
// The same text always embeds to the same vector, so retrieval behavior is
// reproducible without a provider.
type StubEmbedder struct {
	Dim int
}

// NewStubEmbedder creates a stub embedder producing vectors of the given dimension.
func NewStubEmbedder(dim int) *StubEmbedder {
	return &StubEmbedder{Dim: dim}
}

// EmbedDocuments embeds texts deterministically with document intent.
func (s *StubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = s.vectorFor(text, inputTypeDocument)
	}
	return vectors, nil
}

// EmbedQuery embeds a single query deterministically with query intent.
func (s *StubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return s.vectorFor(text, inputTypeQuery), nil
}

// vectorFor hashes text plus intent into a fixed-dimension vector. The intent
// is mixed in so document and query encodings stay asymmetric like the real
// provider's.
func (s *StubEmbedder) vectorFor(text, inputType string) []float32 {
	vec := make([]float32, s.Dim)
	for i := range vec {
		h := fnv.New32a()
		_, _ = fmt.Fprintf(h, "%s\x00%s\x00%d", inputType, text, i)
		// Scale into [0, 1).
		vec[i] = float32(h.Sum32()%10000) / 10000.0
	}
	return vec
}

// StubGenerator is a canned-output Generator for development and tests.
type StubGenerator struct{}

// NewStubGenerator creates a stub generator.
func NewStubGenerator() *StubGenerator {
	return &StubGenerator{}
}

// Generate returns a canned response derived from the prompt.
func (s *StubGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	preview := prompt
	if len(preview) > 50 {
		preview = preview[:50]
	}
	return fmt.Sprintf("Stub response to: %s...", preview), nil
}
