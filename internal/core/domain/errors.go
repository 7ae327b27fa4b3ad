package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateChunk indicates a chunk order collides with an existing
	// row for the same source. Duplicate insertion is a caller bug, never
	// silently merged.
	ErrDuplicateChunk = errors.New("duplicate chunk order")

	// ErrDimensionMismatch indicates a query vector's dimensionality does
	// not match the stored embeddings. A caller contract violation.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Ingestion and semantic retrieval are disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Chat turns cannot be completed without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrOverBudget indicates a conversation has spent its configured
	// budget. Reported by the chat layer before starting a new turn;
	// usage logging itself never fails on budget.
	ErrOverBudget = errors.New("conversation budget exhausted")
)
