package driving

import (
	"context"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
)

// RetrievalService ranks stored chunks against a query by cosine
// similarity. Exact linear scan; results are deterministic for an
// unchanged store.
type RetrievalService interface {
	// Search ranks all stored chunks against the query vector and
	// returns the topK highest scores, descending, ties broken by
	// insertion order. vaultName, when non-empty, attaches obsidian://
	// deep links to each result.
	Search(ctx context.Context, queryVec []float32, topK int, vaultName string) ([]domain.QueryResult, error)

	// SearchText embeds the query text and delegates to Search.
	SearchText(ctx context.Context, query string, topK int, vaultName string) ([]domain.QueryResult, error)
}
