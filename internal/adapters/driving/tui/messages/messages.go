// Package messages defines Bubbletea message types for the TUI.
// Messages represent events that flow through the Elm architecture.
package messages

import (
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driving"
)

// TurnCompleted carries the result of one chat turn back to the model.
// Conversation is set when the turn created the backing conversation.
type TurnCompleted struct {
	Prompt       string
	Conversation *domain.Conversation
	Result       *driving.TurnResult
	Err          error
}

// SearchCompleted carries /search results back to the model.
type SearchCompleted struct {
	Query   string
	Results []domain.QueryResult
	Err     error
}

// ErrorOccurred signals an error to display in the status bar.
type ErrorOccurred struct {
	Err error
}
