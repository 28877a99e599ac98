package chunker

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// encodingName is the fixed subword vocabulary used for chunk boundaries.
// Chunking and token counting must use the same encoding so boundaries are
// reproducible across ingestion runs.
const encodingName = "cl100k_base"

// Tokenizer converts text to a deterministic token sequence and back.
type Tokenizer interface {
	// Encode tokenizes text into an ordered token sequence.
	Encode(text string) []int
	// Decode converts a token sequence back to text.
	Decode(tokens []int) string
}

// TiktokenTokenizer implements Tokenizer using the cl100k_base BPE encoding.
type TiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenTokenizer creates a tokenizer backed by the cl100k_base encoding.
func NewTiktokenTokenizer() (*TiktokenTokenizer, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encodingName, err)
	}
	return &TiktokenTokenizer{enc: enc}, nil
}

// Encode tokenizes text into an ordered token sequence.
func (t *TiktokenTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

// Decode converts a token sequence back to text.
func (t *TiktokenTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
