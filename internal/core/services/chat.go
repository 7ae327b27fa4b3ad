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

var _ driving.ChatService = (*ChatService)(nil)

// ChatService runs full conversation turns: budget check, context
// assembly, model call, history persistence, cost accounting.
type ChatService struct {
	convs   driven.ConversationStore
	llm     driven.LLMService
	context driving.ContextService
	costs   driving.CostService
}

// NewChatService wires the chat orchestrator. llm may be nil, in which
// case Ask fails with domain.ErrLLMUnavailable.
func NewChatService(convs driven.ConversationStore, llm driven.LLMService, contextSvc driving.ContextService, costs driving.CostService) *ChatService {
	return &ChatService{
		convs:   convs,
		llm:     llm,
		context: contextSvc,
		costs:   costs,
	}
}

// NewConversation creates and persists an empty conversation. An empty
// model selects the default.
func (s *ChatService) NewConversation(ctx context.Context, title, model string) (*domain.Conversation, error) {
	if model == "" {
		model = pricing.DefaultModel
	}
	conv := domain.NewConversation(title, model)
	if err := s.convs.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}
	logger.Info("Created conversation %s (model=%s)", conv.ID, model)
	return &conv, nil
}

// Ask runs one turn. The budget gate runs before the model call: a
// conversation that has exhausted its budget never reaches the
// provider, so an over-budget turn costs nothing.
func (s *ChatService) Ask(ctx context.Context, conversationID, prompt string, opts driving.AskOptions) (*driving.TurnResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt is empty: %w", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	conv, err := s.convs.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	status, err := s.costs.CheckBudget(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("checking budget: %w", err)
	}
	if !status.WithinBudget {
		return nil, fmt.Errorf("conversation %s spent $%.4f of $%.4f: %w",
			conversationID, status.SpentUSD, *status.BudgetUSD, domain.ErrOverBudget)
	}

	logger.Section("Chat turn (%s)", conv.Model)

	userMsg, err := domain.NewMessage(domain.RoleUser, prompt)
	if err != nil {
		return nil, err
	}

	prepared, err := s.context.PrepareContext(ctx, driving.ContextRequest{
		Messages:      append(append([]domain.Message(nil), conv.Messages...), userMsg),
		SystemPrompts: opts.SystemPrompts,
		Model:         conv.Model,
		RAGQuery:      prompt,
		RAGEnabled:    opts.RAGEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("preparing context: %w", err)
	}

	messages := make([]domain.Message, 0, len(prepared.SystemPrompts)+len(prepared.Messages))
	for _, p := range prepared.SystemPrompts {
		sys, err := domain.NewMessage(domain.RoleSystem, p)
		if err != nil {
			return nil, err
		}
		messages = append(messages, sys)
	}
	messages = append(messages, prepared.Messages...)

	result, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		Model:       conv.Model,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	assistantMsg, err := domain.NewMessage(domain.RoleAssistant, result.Content)
	if err != nil {
		return nil, err
	}
	assistantMsg.Model = result.Model
	if err := s.convs.AppendMessage(ctx, conversationID, userMsg); err != nil {
		return nil, fmt.Errorf("saving user message: %w", err)
	}
	if err := s.convs.AppendMessage(ctx, conversationID, assistantMsg); err != nil {
		return nil, fmt.Errorf("saving assistant message: %w", err)
	}

	cost, err := s.costs.LogUsage(ctx, conversationID, result.Model, result.InputTokens, result.OutputTokens, prompt)
	if err != nil {
		// The reply was already produced and persisted; the caller
		// must know the accounting failed.
		return nil, fmt.Errorf("logging usage: %w", err)
	}

	after, err := s.costs.CheckBudget(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("checking budget after turn: %w", err)
	}

	return &driving.TurnResult{
		Reply:     result.Content,
		Citations: prepared.Citations,
		CostUSD:   cost,
		Budget:    after,
	}, nil
}

// Get returns a conversation with its full history.
func (s *ChatService) Get(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	return s.convs.Get(ctx, conversationID)
}

// List returns all conversations, newest first.
func (s *ChatService) List(ctx context.Context) ([]domain.Conversation, error) {
	return s.convs.List(ctx)
}
