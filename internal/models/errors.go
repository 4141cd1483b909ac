package models

import "errors"

var (
	// ErrEmptyQuestion is returned when a request carries no question text.
	ErrEmptyQuestion = errors.New("question is required")
	// ErrNotInitialized is returned when the retriever or its store has not been built.
	ErrNotInitialized = errors.New("Retriever not initialized")
	// ErrNoContent is returned when the source document is missing, empty, or whitespace-only.
	ErrNoContent = errors.New("no content found in source document")
	// ErrInvalidEncoding is returned when the source document is not valid UTF-8.
	ErrInvalidEncoding = errors.New("source document is not valid UTF-8")
	// ErrMissingAPIKey is returned before any completion request when no credential is configured.
	ErrMissingAPIKey = errors.New("OPENROUTER_API_KEY environment variable is not set")
)
