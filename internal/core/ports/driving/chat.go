package driving

import (
	"context"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
)

// ChatService orchestrates a full conversation turn: context assembly,
// the LLM call, history append, and cost accounting.
type ChatService interface {
	// NewConversation creates and persists an empty conversation.
	NewConversation(ctx context.Context, title, model string) (*domain.Conversation, error)

	// Ask runs one turn: prepares context (with optional vault
	// retrieval), calls the model, appends the user and assistant
	// messages, and logs usage. Returns domain.ErrOverBudget without
	// calling the model when the conversation's budget is exhausted.
	Ask(ctx context.Context, conversationID, prompt string, opts AskOptions) (*TurnResult, error)

	// Get returns a conversation with its history.
	Get(ctx context.Context, conversationID string) (*domain.Conversation, error)

	// List returns all conversations, newest first.
	List(ctx context.Context) ([]domain.Conversation, error)
}

// AskOptions configures a single turn.
type AskOptions struct {
	// RAGEnabled injects retrieved vault context into the system
	// prompts.
	RAGEnabled bool

	// SystemPrompts are prepended before any retrieved context.
	SystemPrompts []string

	// Temperature is passed through to the model.
	Temperature float64
}

// TurnResult is the outcome of one completed turn.
type TurnResult struct {
	// Reply is the assistant message text.
	Reply string

	// Citations point back to the vault chunks used for augmentation.
	Citations []domain.Citation

	// CostUSD is the cost of this turn.
	CostUSD float64

	// Budget is the conversation's budget state after logging.
	Budget BudgetStatus
}
