package driving

import (
	"context"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
)

// ContextService merges system prompts, retrieved context, and trimmed
// conversation history into a model's token budget.
type ContextService interface {
	// PrepareContext optionally injects retrieved vault context as an
	// extra system prompt, then trims history to the model's budget.
	// Retrieval failures degrade to no augmentation; the caller always
	// gets a usable context. maxTokens <= 0 selects the model's
	// context-window default.
	PrepareContext(ctx context.Context, req ContextRequest) (ContextResult, error)

	// TrimHistory fits messages into the model's token budget. System
	// messages are never dropped or reordered; the most recent
	// non-system message is always kept when one exists.
	TrimHistory(messages []domain.Message, model string, maxTokens int) []domain.Message
}

// ContextRequest carries the inputs for context assembly.
type ContextRequest struct {
	Messages      []domain.Message
	SystemPrompts []string
	Model         string
	MaxTokens     int
	RAGQuery      string
	RAGEnabled    bool
}

// ContextResult is the assembled context for a model call.
type ContextResult struct {
	Messages      []domain.Message
	SystemPrompts []string
	Citations     []domain.Citation
}
