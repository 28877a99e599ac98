package rag

import (
	"context"
	"fmt"
	"strings"

	"bookchat/internal/contextutil"
	"bookchat/internal/llm"
	"bookchat/internal/service"
)

// DefaultExcerptChars bounds how much of a context a citation excerpt carries.
const DefaultExcerptChars = 200

const promptPreamble = "You are a helpful assistant answering questions about a book. " +
	"Answer the question using ONLY the context provided below. " +
	"If the context does not contain the information needed to answer, " +
	"say so explicitly instead of guessing."

// Engine turns retrieved contexts and a query into a grounded response with
// citations back to each context it was given.
type Engine struct {
	generator    llm.Generator
	maxTokens    int
	excerptChars int
}

// NewEngine creates a new generation engine. maxTokens caps the generated
// response; excerptChars caps citation excerpts and falls back to
// DefaultExcerptChars when non-positive.
func NewEngine(generator llm.Generator, maxTokens, excerptChars int) *Engine {
	if excerptChars <= 0 {
		excerptChars = DefaultExcerptChars
	}
	return &Engine{
		generator:    generator,
		maxTokens:    maxTokens,
		excerptChars: excerptChars,
	}
}

// Answer generates a grounded response for queryText from the given contexts.
// Citations are derived one-to-one from the contexts that were fed into the
// prompt, never from the generated text.
func (e *Engine) Answer(ctx context.Context, queryText, queryMode string, contexts []RetrievedContext) (*QueryResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	prompt := BuildPrompt(queryText, contexts)

	responseText, err := e.generator.Generate(ctx, prompt, e.maxTokens)
	if err != nil {
		if service.IsExternalServiceError(err) || service.IsQueryProcessingError(err) {
			return nil, err
		}
		return nil, service.NewQueryProcessingError("generation failed", err)
	}

	citations := make([]Citation, 0, len(contexts))
	for _, c := range contexts {
		citations = append(citations, Citation{
			SourceLocation: c.SourceLocation,
			ContentExcerpt: excerpt(c.Content, e.excerptChars),
		})
	}

	logger.InfoContext(ctx, "generated grounded response",
		"query_mode", queryMode, "contexts", len(contexts), "citations", len(citations))

	return &QueryResult{
		ResponseText: responseText,
		Citations:    citations,
		QueryMode:    queryMode,
	}, nil
}

// BuildPrompt assembles the grounding prompt: a fixed preamble, the contexts
// in retrieval order separated by blank lines, and the caller's question
// verbatim. An empty context list produces a prompt whose context section says
// so, which nudges the model toward the explicit-absence answer.
func BuildPrompt(queryText string, contexts []RetrievedContext) string {
	var sb strings.Builder
	sb.WriteString(promptPreamble)
	sb.WriteString("\n\nContext:\n")

	if len(contexts) == 0 {
		sb.WriteString("(no relevant context was found)")
	} else {
		parts := make([]string, len(contexts))
		for i, c := range contexts {
			parts[i] = c.Content
		}
		sb.WriteString(strings.Join(parts, "\n\n"))
	}

	fmt.Fprintf(&sb, "\n\nQuestion: %s\n\nAnswer:", queryText)
	return sb.String()
}

// excerpt truncates content to at most limit characters, appending "..." when
// anything was cut.
func excerpt(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}
