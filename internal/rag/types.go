package rag

// Context origins. Indexed contexts came out of the vector store; user-selected
// contexts were supplied verbatim by the caller.
const (
	OriginIndexed      = "indexed"
	OriginUserSelected = "user-selected"
)

// RetrievedContext is one grounding passage handed to generation.
type RetrievedContext struct {
	Content        string  `json:"content"`
	SourceLocation string  `json:"source_location"`
	RelevanceScore float32 `json:"relevance_score"`
	Origin         string  `json:"origin"`
}

// Citation points back at a context the response was grounded on.
type Citation struct {
	SourceLocation string `json:"source_location"`
	ContentExcerpt string `json:"content_excerpt"`
}

// QueryResult is the outcome of one grounded generation.
type QueryResult struct {
	ResponseText string     `json:"response_text"`
	Citations    []Citation `json:"citations"`
	QueryMode    string     `json:"query_mode"`
}
