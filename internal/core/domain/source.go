package domain

import (
	"strings"
	"time"
)

// VaultPrefix marks source names that originate from the local vault.
// A vault-relative path "projects/notes.md" is stored as
// "vault:projects/notes.md".
const VaultPrefix = "vault:"

// Source is a named origin document in the knowledge base.
// Sources are created on first ingest (idempotent upsert by name) and
// deleted explicitly, cascading to their chunks.
type Source struct {
	// ID is the store-assigned identifier.
	ID int64

	// Name is the unique source name, e.g. "vault:projects/notes.md".
	Name string

	// AddedAt is when the source was first ingested.
	AddedAt time.Time
}

// SourceInfo is a source listing entry with its chunk count.
type SourceInfo struct {
	ID         int64
	Name       string
	AddedAt    time.Time
	ChunkCount int
}

// Chunk is a contiguous, token-bounded fragment of a source.
// Chunks of one source, concatenated in order with paragraph separators,
// reconstruct the ingested text modulo whitespace normalisation. They are
// immutable once written and deleted only with their source.
type Chunk struct {
	// ID is the store-assigned identifier.
	ID int64

	// SourceID links to the owning Source.
	SourceID int64

	// Ord is the zero-based position within the source.
	// Unique per source, monotonically increasing, gap-free.
	Ord int

	// Text is the chunk content.
	Text string

	// Embedding is the vector representation, provider-defined
	// dimensionality.
	Embedding []float32
}

// VaultFilePath returns the vault-relative file path for a source name,
// stripping the internal "vault:" prefix when present.
func VaultFilePath(sourceName string) string {
	return strings.TrimPrefix(sourceName, VaultPrefix)
}
