package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driven"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driving"
	"github.com/vaultchat-labs/vaultchat-cli/internal/logger"
	"github.com/vaultchat-labs/vaultchat-cli/internal/pricing"
)

var _ driving.ContextService = (*ContextService)(nil)

// historyFraction is the share of the context window message history may
// occupy after trimming, leaving headroom for retrieved context and the
// model's reply.
const historyFraction = 0.7

// contextPreamble introduces retrieved chunks appended as an extra
// system prompt.
const contextPreamble = "Relevant context from knowledge base:"

// ContextService assembles the prompt for a chat turn: it trims history
// to the token budget and, when retrieval is enabled, folds the
// best-matching chunks into the system prompts.
type ContextService struct {
	retriever driving.RetrievalService
	tokenizer driven.Tokenizer
	vaultName string
	topK      int
}

// NewContextService creates a context assembler. retriever may be nil,
// in which case retrieval requests are skipped. topK <= 0 selects
// DefaultTopK.
func NewContextService(retriever driving.RetrievalService, tokenizer driven.Tokenizer, vaultName string, topK int) *ContextService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &ContextService{
		retriever: retriever,
		tokenizer: tokenizer,
		vaultName: vaultName,
		topK:      topK,
	}
}

// PrepareContext builds the messages and system prompts for one turn.
//
// Retrieval failures degrade to a plain chat turn with a warning rather
// than failing the whole request: a broken embedding backend should not
// make the assistant unreachable.
func (s *ContextService) PrepareContext(ctx context.Context, req driving.ContextRequest) (driving.ContextResult, error) {
	logger.Section("Context assembly")

	res := driving.ContextResult{
		SystemPrompts: append([]string(nil), req.SystemPrompts...),
	}

	if req.RAGEnabled && s.retriever != nil && strings.TrimSpace(req.RAGQuery) != "" {
		results, err := s.retriever.SearchText(ctx, req.RAGQuery, s.topK, s.vaultName)
		if err != nil {
			logger.Warn("Retrieval failed, continuing without context: %v", err)
		} else if len(results) > 0 {
			blocks := make([]string, 0, len(results))
			for _, r := range results {
				blocks = append(blocks, fmt.Sprintf("[%s#%d] %s", r.Source, r.Ord, r.Text))
				res.Citations = append(res.Citations, domain.NewCitation(r))
			}
			res.SystemPrompts = append(res.SystemPrompts,
				contextPreamble+"\n\n"+strings.Join(blocks, "\n\n"))
			logger.Info("Attached %d retrieved chunks", len(results))
		} else {
			logger.Debug("Retrieval returned no results")
		}
	}

	res.Messages = s.TrimHistory(req.Messages, req.Model, req.MaxTokens)
	return res, nil
}

// TrimHistory drops the oldest non-system messages until the history
// fits within 70% of the token budget. maxTokens <= 0 selects the
// model's context window. System messages always survive; the most
// recent non-system message is always kept even if it alone exceeds the
// target, because a turn with no user content is useless.
func (s *ContextService) TrimHistory(messages []domain.Message, model string, maxTokens int) []domain.Message {
	budget := maxTokens
	if budget <= 0 {
		budget = pricing.ContextWindow(model)
	}
	target := int(historyFraction * float64(budget))

	var system, rest []domain.Message
	for _, m := range messages {
		if m.Role == domain.RoleSystem {
			system = append(system, m)
		} else {
			rest = append(rest, m)
		}
	}

	used := 0
	for _, m := range system {
		used += s.tokenizer.CountTokens(m.Content, model)
	}

	// Walk newest to oldest, keeping messages while they fit.
	kept := make([]domain.Message, 0, len(rest))
	for i := len(rest) - 1; i >= 0; i-- {
		cost := s.tokenizer.CountTokens(rest[i].Content, model)
		if used+cost > target && len(kept) > 0 {
			break
		}
		kept = append(kept, rest[i])
		used += cost
	}

	// kept is newest-first; restore chronological order.
	out := make([]domain.Message, 0, len(system)+len(kept))
	out = append(out, system...)
	for i := len(kept) - 1; i >= 0; i-- {
		out = append(out, kept[i])
	}

	if dropped := len(rest) - len(kept); dropped > 0 {
		logger.Debug("Trimmed %d old messages to fit %d-token target", dropped, target)
	}
	return out
}
