package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vaultchat-labs/vaultchat-cli/internal/chunker"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driven"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driving"
	"github.com/vaultchat-labs/vaultchat-cli/internal/logger"
	"github.com/vaultchat-labs/vaultchat-cli/internal/pricing"
)

var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns raw text into embedded chunks in the vector
// store. Re-ingesting an existing source name replaces it wholesale.
type IngestService struct {
	store     driven.VectorStore
	embedder  driven.EmbeddingService
	chunker   *chunker.Chunker
	maxTokens int
}

// NewIngestService creates an ingestion service. maxTokens <= 0 selects
// the chunker default.
func NewIngestService(store driven.VectorStore, embedder driven.EmbeddingService, tok driven.Tokenizer, maxTokens int) *IngestService {
	if maxTokens <= 0 {
		maxTokens = chunker.DefaultMaxTokens
	}
	return &IngestService{
		store:     store,
		embedder:  embedder,
		chunker:   chunker.New(tok),
		maxTokens: maxTokens,
	}
}

// IngestText chunks, embeds, and stores text under sourceName. If the
// source already exists its chunks are replaced, never merged: stale
// chunks from an earlier version of a note must not survive a
// re-ingest.
func (s *IngestService) IngestText(ctx context.Context, sourceName, text string) (*driving.IngestReport, error) {
	if strings.TrimSpace(sourceName) == "" {
		return nil, fmt.Errorf("source name is empty: %w", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Section("Ingest %s", sourceName)

	pieces := s.chunker.Chunk(text, pricing.DefaultModel, s.maxTokens)
	if len(pieces) == 0 {
		return nil, fmt.Errorf("no content to ingest: %w", domain.ErrInvalidInput)
	}
	logger.Debug("Split into %d chunks", len(pieces))

	vectors, err := s.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		return nil, fmt.Errorf("embedding %d chunks: %w", len(pieces), err)
	}
	if len(vectors) != len(pieces) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(pieces))
	}

	replaced := false
	existing, err := s.store.GetSourceByName(ctx, sourceName)
	switch {
	case err == nil:
		if _, err := s.store.DeleteSource(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("replacing source %q: %w", sourceName, err)
		}
		replaced = true
	case errors.Is(err, domain.ErrNotFound):
		// First ingest of this source.
	default:
		return nil, fmt.Errorf("looking up source %q: %w", sourceName, err)
	}

	sourceID, err := s.store.UpsertSource(ctx, sourceName)
	if err != nil {
		return nil, fmt.Errorf("creating source %q: %w", sourceName, err)
	}

	chunks := make([]domain.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = domain.Chunk{
			SourceID:  sourceID,
			Ord:       i,
			Text:      p,
			Embedding: vectors[i],
		}
	}
	if err := s.store.AddChunks(ctx, sourceID, chunks); err != nil {
		return nil, fmt.Errorf("storing chunks for %q: %w", sourceName, err)
	}

	logger.Info("Ingested %s: %d chunks (replaced=%v)", sourceName, len(chunks), replaced)
	return &driving.IngestReport{
		SourceID:   sourceID,
		SourceName: sourceName,
		Chunks:     len(chunks),
		Replaced:   replaced,
	}, nil
}

// IngestVault walks dir for markdown files and ingests each one under a
// vault-prefixed source name derived from its path relative to dir.
// Files that fail are skipped with a warning so one bad note does not
// abort a vault import.
func (s *IngestService) IngestVault(ctx context.Context, dir string) ([]driving.IngestReport, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening vault %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault path %q is not a directory: %w", dir, domain.ErrInvalidInput)
	}

	logger.Section("Vault ingest: %s", dir)

	var reports []driving.IngestReport
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Obsidian keeps workspace state under .obsidian; skip
			// hidden directories entirely.
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Skipping %s: %v", rel, err)
			return nil
		}

		report, err := s.IngestText(ctx, domain.VaultPrefix+rel, string(data))
		if err != nil {
			logger.Warn("Skipping %s: %v", rel, err)
			return nil
		}
		reports = append(reports, *report)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking vault %q: %w", dir, err)
	}

	logger.Info("Vault ingest complete: %d files", len(reports))
	return reports, nil
}

// ListSources returns all sources with their chunk counts.
func (s *IngestService) ListSources(ctx context.Context) ([]domain.SourceInfo, error) {
	return s.store.ListSources(ctx)
}

// DeleteSource removes a source and its chunks by name. It reports
// whether anything was deleted.
func (s *IngestService) DeleteSource(ctx context.Context, sourceName string) (bool, error) {
	src, err := s.store.GetSourceByName(ctx, sourceName)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.store.DeleteSource(ctx, src.ID)
}
