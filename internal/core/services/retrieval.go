package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driven"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driving"
	"github.com/vaultchat-labs/vaultchat-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// DefaultTopK is the number of results returned when the caller does
// not specify one.
const DefaultTopK = 5

// RetrievalService ranks stored chunks against a query vector with an
// exact cosine-similarity scan.
//
// The scan is O(N) over all chunks by design: for a personal vault of up
// to tens of thousands of chunks this is fast and exact, and it avoids
// carrying an approximate index. Revisit only if corpora grow well past
// that.
type RetrievalService struct {
	store    driven.VectorStore
	embedder driven.EmbeddingService
}

// NewRetrievalService creates a retrieval service. The embedder is only
// required for SearchText and may be nil.
func NewRetrievalService(store driven.VectorStore, embedder driven.EmbeddingService) *RetrievalService {
	return &RetrievalService{store: store, embedder: embedder}
}

// Search scans every stored chunk, scores it against queryVec, and
// returns the topK best, descending, ties broken by insertion order so
// repeated queries on an unchanged store are deterministic.
//
// An empty query vector returns no results. A dimensionality mismatch
// between the query and a stored embedding returns
// domain.ErrDimensionMismatch: that is a caller bug, not a degenerate
// input.
func (s *RetrievalService) Search(
	ctx context.Context, queryVec []float32, topK int, vaultName string,
) ([]domain.QueryResult, error) {
	logger.Section("Retrieval")

	if len(queryVec) == 0 {
		logger.Debug("Empty query vector, returning no results")
		return []domain.QueryResult{}, nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	stored, err := s.store.AllChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning chunks: %w", err)
	}
	logger.Debug("Scanning %d chunks, top_k=%d", len(stored), topK)

	results := make([]domain.QueryResult, 0, len(stored))
	for _, sc := range stored {
		if len(sc.Chunk.Embedding) != len(queryVec) {
			return nil, fmt.Errorf("chunk %d has %d dimensions, query has %d: %w",
				sc.Chunk.ID, len(sc.Chunk.Embedding), len(queryVec), domain.ErrDimensionMismatch)
		}

		r := domain.QueryResult{
			ChunkID: sc.Chunk.ID,
			Source:  sc.SourceName,
			Ord:     sc.Chunk.Ord,
			Text:    sc.Chunk.Text,
			Score:   CosineSimilarity(queryVec, sc.Chunk.Embedding),
		}
		if vaultName != "" {
			r.Link = domain.FormatVaultLink(vaultName, domain.VaultFilePath(sc.SourceName))
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}

	logger.Info("Retrieval complete: %d results", len(results))
	return results, nil
}

// SearchText embeds the query and delegates to Search.
func (s *RetrievalService) SearchText(
	ctx context.Context, query string, topK int, vaultName string,
) ([]domain.QueryResult, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Debug("Embedding query (%d bytes)", len(query))
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	return s.Search(ctx, vec, topK, vaultName)
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|) in [-1, 1].
// Either vector having zero magnitude scores exactly 0.0; degenerate
// input never fails. Both slices must have equal length.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
