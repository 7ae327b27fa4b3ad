package driven

import (
	"context"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
)

// ConversationStore persists conversations and their message history.
// The engine reads budget/spend metadata and appends spend; message
// ordering is append-only.
type ConversationStore interface {
	// Create stores a new conversation.
	Create(ctx context.Context, conv domain.Conversation) error

	// Get retrieves a conversation with its full message history, or
	// domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Conversation, error)

	// List returns all conversations, newest first, without messages.
	List(ctx context.Context) ([]domain.Conversation, error)

	// AppendMessage appends a message to the conversation history.
	AppendMessage(ctx context.Context, conversationID string, msg domain.Message) error

	// AddSpend atomically adds amount to the conversation's accumulated
	// spend. Must be a serialisable increment so concurrent logging for
	// the same conversation never loses updates.
	AddSpend(ctx context.Context, conversationID string, amount float64) error

	// SetBudget sets or clears (nil) the conversation budget.
	SetBudget(ctx context.Context, conversationID string, budgetUSD *float64) error

	// Delete removes a conversation and its messages.
	Delete(ctx context.Context, id string) error
}
