package service

import (
	"errors"
	"fmt"
)

// The three error classes callers must map to distinct transport outcomes:
// book processing failures are bad ingestion input, query processing failures
// are bad query input or pipeline contract violations, and external service
// failures are upstream provider errors the caller may retry with backoff.

// BookProcessingError indicates an ingestion failure (extraction, chunking,
// or embedding of book content). The caller should fix the input before retrying.
type BookProcessingError struct {
	Message string
	Err     error
}

func (e *BookProcessingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("book processing error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("book processing error: %s", e.Message)
}

func (e *BookProcessingError) Unwrap() error { return e.Err }

// QueryProcessingError indicates invalid query input (bad mode, missing
// selected text) or an internal pipeline contract violation.
type QueryProcessingError struct {
	Message string
	Err     error
}

func (e *QueryProcessingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("query processing error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("query processing error: %s", e.Message)
}

func (e *QueryProcessingError) Unwrap() error { return e.Err }

// ExternalServiceError indicates an embedding, generation, or vector store
// provider failure, including empty or malformed provider responses. The
// pipeline never retries internally; callers may retry with backoff.
type ExternalServiceError struct {
	Message string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("external service error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("external service error: %s", e.Message)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// NewBookProcessingError creates a BookProcessingError wrapping err (err may be nil).
func NewBookProcessingError(message string, err error) error {
	return &BookProcessingError{Message: message, Err: err}
}

// NewQueryProcessingError creates a QueryProcessingError wrapping err (err may be nil).
func NewQueryProcessingError(message string, err error) error {
	return &QueryProcessingError{Message: message, Err: err}
}

// NewExternalServiceError creates an ExternalServiceError wrapping err (err may be nil).
func NewExternalServiceError(message string, err error) error {
	return &ExternalServiceError{Message: message, Err: err}
}

// IsBookProcessingError reports whether any error in err's chain is a BookProcessingError.
func IsBookProcessingError(err error) bool {
	var target *BookProcessingError
	return errors.As(err, &target)
}

// IsQueryProcessingError reports whether any error in err's chain is a QueryProcessingError.
func IsQueryProcessingError(err error) bool {
	var target *QueryProcessingError
	return errors.As(err, &target)
}

// IsExternalServiceError reports whether any error in err's chain is an ExternalServiceError.
func IsExternalServiceError(err error) bool {
	var target *ExternalServiceError
	return errors.As(err, &target)
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
