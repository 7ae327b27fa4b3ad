package driving

import "context"

// CostService converts token usage to money, records it durably, and
// reports per-conversation budget state.
type CostService interface {
	// LogUsage computes the cost of a model call, appends an audit
	// record to the usage log, and atomically adds the total to the
	// conversation's spend. Returns the total cost. Logging succeeds
	// even for an over-budget conversation.
	LogUsage(ctx context.Context, conversationID, model string, inputTokens, outputTokens int, prompt string) (float64, error)

	// CheckBudget reports whether the conversation is within budget.
	// A conversation with no budget is always within budget. A budget
	// is exhausted once spent >= budget.
	CheckBudget(ctx context.Context, conversationID string) (BudgetStatus, error)

	// ConversationCosts returns spend, budget, and remaining for a
	// conversation.
	ConversationCosts(ctx context.Context, conversationID string) (Costs, error)

	// SetBudget sets or clears (nil) a conversation's budget.
	SetBudget(ctx context.Context, conversationID string, budgetUSD *float64) error
}

// BudgetStatus is the result of a budget check.
type BudgetStatus struct {
	// WithinBudget is true when no budget is set or spent < budget.
	WithinBudget bool

	// SpentUSD is the accumulated spend.
	SpentUSD float64

	// BudgetUSD is the configured budget, nil when unset.
	BudgetUSD *float64
}

// Costs summarises a conversation's financial state.
type Costs struct {
	SpentUSD     float64
	BudgetUSD    *float64
	RemainingUSD *float64
}
