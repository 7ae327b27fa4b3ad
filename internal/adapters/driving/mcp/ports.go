package mcp

import (
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP
// server. This provides a single injection point for dependency
// injection.
type Ports struct {
	// Retrieval answers semantic queries over the knowledge base.
	Retrieval driving.RetrievalService

	// Ingest adds and manages sources. Optional; without it the
	// ingest_note tool is not registered.
	Ingest driving.IngestService

	// VaultName is used for obsidian:// deep links in results.
	VaultName string

	// TopK is the default result count for searches.
	TopK int
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
