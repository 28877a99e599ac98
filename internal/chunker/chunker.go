package chunker

import "fmt"

// Default window parameters for book ingestion.
const (
	DefaultMaxTokens     = 1000
	DefaultOverlapTokens = 200
)

// TokenChunker splits raw text into overlapping token-bounded segments.
//
// Chunk boundaries denote start positions spaced maxTokens apart; each
// interior window additionally carries overlapTokens of trailing context, so
// interior chunks decode to at most maxTokens+overlapTokens tokens while the
// final chunk is never extended past the end of the text.
type TokenChunker struct {
	tokenizer Tokenizer
}

// New creates a TokenChunker over the given tokenizer.
func New(tokenizer Tokenizer) *TokenChunker {
	return &TokenChunker{tokenizer: tokenizer}
}

// Chunk splits text into chunk texts using token windows of maxTokens with
// overlapTokens of look-ahead overlap.
//
// Requires maxTokens > 0 and 0 <= overlapTokens < maxTokens; combinations
// where overlap reaches the window size would stall the advance arithmetic
// and are rejected rather than clamped. Empty input produces zero chunks.
func (c *TokenChunker) Chunk(text string, maxTokens, overlapTokens int) ([]string, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("max_tokens must be greater than 0, got %d", maxTokens)
	}
	if overlapTokens < 0 {
		return nil, fmt.Errorf("overlap_tokens must not be negative, got %d", overlapTokens)
	}
	if overlapTokens >= maxTokens {
		return nil, fmt.Errorf("overlap_tokens (%d) must be less than max_tokens (%d)", overlapTokens, maxTokens)
	}

	tokens := c.tokenizer.Encode(text)
	n := len(tokens)
	if n == 0 {
		return nil, nil
	}

	var chunks []string
	start := 0
	for start < n {
		// Interior windows extend past the nominal end by the overlap so the
		// following chunk's leading region repeats in this chunk's tail.
		end := start + maxTokens
		if end < n {
			end += overlapTokens
		}

		sliceEnd := end
		if sliceEnd > n {
			sliceEnd = n
		}
		chunks = append(chunks, c.tokenizer.Decode(tokens[start:sliceEnd]))

		if end >= n {
			break
		}
		start = end - overlapTokens
	}

	return chunks, nil
}

// TokenCount returns the number of tokens text encodes to.
func (c *TokenChunker) TokenCount(text string) int {
	return len(c.tokenizer.Encode(text))
}
