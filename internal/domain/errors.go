package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument signals a malformed caller request.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidConfig signals a RAG configuration that fails validation.
	ErrInvalidConfig = errors.New("invalid rag configuration")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrIndexUnavailable signals that no published index can be loaded.
	ErrIndexUnavailable = errors.New("index unavailable")
	// ErrIndexBuildFailed signals an aborted indexing run. The previous build stays live.
	ErrIndexBuildFailed = errors.New("index build failed")
	// ErrIndexBuildInProgress signals that another build already holds the indexer.
	ErrIndexBuildInProgress = errors.New("index build already in progress")
	// ErrModelMismatch signals a published index built with a different embedding model.
	ErrModelMismatch = errors.New("embedding model mismatch")
	// ErrTokenBudgetExceeded marks a passage longer than the model context window.
	ErrTokenBudgetExceeded = errors.New("passage exceeds token budget")

	// ErrEmbeddingQuotaExceeded signals an exhausted embedding budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationFailed signals a chat model failure.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrUnauthorized signals a missing or invalid token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden signals a valid token without the required role.
	ErrForbidden = errors.New("forbidden")
)

// ModelMismatchError carries both sides of a model identity check.
type ModelMismatchError struct {
	Indexed    string
	Configured string
}

func (e *ModelMismatchError) Error() string {
	return fmt.Sprintf("%s: index built with %q, configured %q", ErrModelMismatch.Error(), e.Indexed, e.Configured)
}

func (e *ModelMismatchError) Unwrap() error { return ErrModelMismatch }

// NewModelMismatch creates a model mismatch error.
func NewModelMismatch(indexed, configured string) error {
	return &ModelMismatchError{Indexed: indexed, Configured: configured}
}
