package driven

import (
	"context"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
)

// VectorStore persists (source, chunk-order, text, vector) tuples.
// Backed by SQLite.
//
// Stored chunks are immutable once committed, so concurrent reads need no
// mutual exclusion. Writers for the same source must be serialised by the
// store; batch inserts are all-or-nothing.
type VectorStore interface {
	// UpsertSource inserts a source by name or returns the existing id.
	// Idempotent: calling twice with the same name yields the same id.
	UpsertSource(ctx context.Context, name string) (int64, error)

	// AddChunks bulk-inserts chunks for a source in one transaction.
	// Returns domain.ErrDuplicateChunk when an order value collides with
	// an existing row for that source; nothing is written in that case.
	AddChunks(ctx context.Context, sourceID int64, chunks []domain.Chunk) error

	// ListSources returns all sources with their chunk counts.
	ListSources(ctx context.Context) ([]domain.SourceInfo, error)

	// GetSourceByName returns a source by its unique name, or
	// domain.ErrNotFound.
	GetSourceByName(ctx context.Context, name string) (*domain.Source, error)

	// DeleteSource removes the source and all its chunks atomically.
	// Returns false when the source did not exist.
	DeleteSource(ctx context.Context, id int64) (bool, error)

	// AllChunks returns every stored chunk with its source name, in
	// insertion order. The feed for the exact-scan retriever.
	AllChunks(ctx context.Context) ([]StoredChunk, error)

	// Close releases resources.
	Close() error
}

// StoredChunk is a chunk joined with its source name for retrieval.
type StoredChunk struct {
	Chunk      domain.Chunk
	SourceName string
}
