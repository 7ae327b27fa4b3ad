package driving

import (
	"context"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
)

// IngestService turns raw documents into indexed, embedded chunks.
type IngestService interface {
	// IngestText chunks, embeds, and stores a single document under the
	// given source name. Re-ingesting an existing name replaces its
	// chunks.
	IngestText(ctx context.Context, sourceName, text string) (*IngestReport, error)

	// IngestVault walks a directory of markdown files and ingests each
	// as "vault:<relative-path>".
	IngestVault(ctx context.Context, dir string) ([]IngestReport, error)

	// ListSources returns all indexed sources with chunk counts.
	ListSources(ctx context.Context) ([]domain.SourceInfo, error)

	// DeleteSource removes a source and its chunks by name. Returns
	// false when the source did not exist.
	DeleteSource(ctx context.Context, sourceName string) (bool, error)
}

// IngestReport summarises one ingested document.
type IngestReport struct {
	SourceID   int64
	SourceName string
	Chunks     int
	Replaced   bool
}
