package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driving"
)

// MockChatService implements driving.ChatService for testing.
type MockChatService struct {
	NewConversationFunc func(ctx context.Context, title, model string) (*domain.Conversation, error)
	AskFunc             func(ctx context.Context, conversationID, prompt string, opts driving.AskOptions) (*driving.TurnResult, error)
}

func (m *MockChatService) NewConversation(ctx context.Context, title, model string) (*domain.Conversation, error) {
	if m.NewConversationFunc != nil {
		return m.NewConversationFunc(ctx, title, model)
	}
	return &domain.Conversation{ID: "conv-1", Title: title, Model: model}, nil
}

func (m *MockChatService) Ask(ctx context.Context, conversationID, prompt string, opts driving.AskOptions) (*driving.TurnResult, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, conversationID, prompt, opts)
	}
	return &driving.TurnResult{Reply: "ok"}, nil
}

func (m *MockChatService) Get(_ context.Context, _ string) (*domain.Conversation, error) {
	return nil, domain.ErrNotFound
}

func (m *MockChatService) List(_ context.Context) ([]domain.Conversation, error) {
	return nil, nil
}

// MockCostService implements driving.CostService for testing.
type MockCostService struct{}

func (m *MockCostService) LogUsage(_ context.Context, _, _ string, _, _ int, _ string) (float64, error) {
	return 0, nil
}

func (m *MockCostService) CheckBudget(_ context.Context, _ string) (driving.BudgetStatus, error) {
	return driving.BudgetStatus{WithinBudget: true}, nil
}

func (m *MockCostService) ConversationCosts(_ context.Context, _ string) (driving.Costs, error) {
	return driving.Costs{}, nil
}

func (m *MockCostService) SetBudget(_ context.Context, _ string, _ *float64) error {
	return nil
}

// MockRetrievalService implements driving.RetrievalService for testing.
type MockRetrievalService struct {
	SearchTextFunc func(ctx context.Context, query string, topK int, vaultName string) ([]domain.QueryResult, error)
}

func (m *MockRetrievalService) Search(_ context.Context, _ []float32, _ int, _ string) ([]domain.QueryResult, error) {
	return nil, nil
}

func (m *MockRetrievalService) SearchText(ctx context.Context, query string, topK int, vaultName string) ([]domain.QueryResult, error) {
	if m.SearchTextFunc != nil {
		return m.SearchTextFunc(ctx, query, topK, vaultName)
	}
	return nil, nil
}

func TestPortsValidate(t *testing.T) {
	ports := &Ports{Chat: &MockChatService{}, Costs: &MockCostService{}}
	assert.NoError(t, ports.Validate())
}

func TestPortsValidateMissingChat(t *testing.T) {
	ports := &Ports{Costs: &MockCostService{}}
	assert.ErrorIs(t, ports.Validate(), ErrMissingChatService)
}

func TestPortsValidateMissingCosts(t *testing.T) {
	ports := &Ports{Chat: &MockChatService{}}
	assert.ErrorIs(t, ports.Validate(), ErrMissingCostService)
}
