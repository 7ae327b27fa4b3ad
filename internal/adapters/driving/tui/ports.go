// Package tui provides an interactive terminal user interface for
// vaultchat. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat runs conversation turns.
	Chat driving.ChatService

	// Retrieval searches the knowledge base directly (optional;
	// only used by the inline /search command).
	Retrieval driving.RetrievalService

	// Costs reports per-conversation spend and budget state.
	Costs driving.CostService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	if p.Costs == nil {
		return ErrMissingCostService
	}
	return nil
}
