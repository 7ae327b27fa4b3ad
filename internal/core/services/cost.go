package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driven"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driving"
	"github.com/vaultchat-labs/vaultchat-cli/internal/logger"
	"github.com/vaultchat-labs/vaultchat-cli/internal/pricing"
)

var _ driving.CostService = (*CostService)(nil)

const tokensPerMillion = 1_000_000

// CostService prices model usage, appends it to the usage log, and
// charges it against per-conversation budgets.
type CostService struct {
	convs driven.ConversationStore
	usage driven.UsageLog

	// now is swapped in tests for deterministic timestamps.
	now func() time.Time
}

// NewCostService creates a cost service. usage may be nil to disable
// the append-only log.
func NewCostService(convs driven.ConversationStore, usage driven.UsageLog) *CostService {
	return &CostService{convs: convs, usage: usage, now: time.Now}
}

// LogUsage prices a completed model call, records it in the usage log,
// and adds the total to the conversation's spend. It returns the total
// cost in USD.
//
// A usage-log write failure is surfaced, not swallowed: the ledger is
// the audit trail for money, and silently dropping entries would make
// the budget numbers unverifiable.
func (s *CostService) LogUsage(ctx context.Context, convID, model string, inputTokens, outputTokens int, prompt string) (float64, error) {
	inPrice, outPrice := pricing.PricesFor(model)
	costIn := float64(inputTokens) / tokensPerMillion * inPrice
	costOut := float64(outputTokens) / tokensPerMillion * outPrice
	total := costIn + costOut

	if s.usage != nil {
		rec := domain.UsageRecord{
			Timestamp:      s.now().UTC(),
			Model:          model,
			InputTokens:    inputTokens,
			OutputTokens:   outputTokens,
			CostInputUSD:   costIn,
			CostOutputUSD:  costOut,
			CostTotalUSD:   total,
			Prompt:         prompt,
			ConversationID: convID,
		}
		if err := s.usage.Append(ctx, rec); err != nil {
			return 0, fmt.Errorf("appending usage record: %w", err)
		}
	}

	if err := s.convs.AddSpend(ctx, convID, total); err != nil {
		return 0, fmt.Errorf("charging conversation %s: %w", convID, err)
	}

	logger.Debug("Logged usage: model=%s in=%d out=%d cost=$%.6f", model, inputTokens, outputTokens, total)
	return total, nil
}

// CheckBudget reports whether the conversation may spend more. A
// conversation with no budget is always within budget; one with a
// budget is within it only while spent is strictly below the limit.
func (s *CostService) CheckBudget(ctx context.Context, convID string) (driving.BudgetStatus, error) {
	conv, err := s.convs.Get(ctx, convID)
	if err != nil {
		return driving.BudgetStatus{}, err
	}

	st := driving.BudgetStatus{
		SpentUSD:  conv.Meta.SpentUSD,
		BudgetUSD: conv.Meta.BudgetUSD,
	}
	st.WithinBudget = st.BudgetUSD == nil || st.SpentUSD < *st.BudgetUSD
	return st, nil
}

// ConversationCosts returns the spend summary for a conversation.
// RemainingUSD is nil when no budget is set and is clamped at zero when
// spend has overshot the budget.
func (s *CostService) ConversationCosts(ctx context.Context, convID string) (driving.Costs, error) {
	conv, err := s.convs.Get(ctx, convID)
	if err != nil {
		return driving.Costs{}, err
	}

	c := driving.Costs{
		SpentUSD:  conv.Meta.SpentUSD,
		BudgetUSD: conv.Meta.BudgetUSD,
	}
	if c.BudgetUSD != nil {
		remaining := *c.BudgetUSD - c.SpentUSD
		if remaining < 0 {
			remaining = 0
		}
		c.RemainingUSD = &remaining
	}
	return c, nil
}

// SetBudget sets or clears (nil) the conversation's budget.
func (s *CostService) SetBudget(ctx context.Context, convID string, budgetUSD *float64) error {
	if budgetUSD != nil && *budgetUSD < 0 {
		return fmt.Errorf("budget must be non-negative: %w", domain.ErrInvalidInput)
	}
	return s.convs.SetBudget(ctx, convID, budgetUSD)
}
