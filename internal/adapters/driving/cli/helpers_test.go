package cli

import (
	"context"
	"errors"
	"time"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driving"
)

// setupTestServices injects mock services into the package-level wiring
// so commands run without touching storage or the network. The returned
// cleanup restores the previous state.
func setupTestServices() func() {
	oldIngest := ingestService
	oldRetrieval := retrievalService
	oldCost := costService
	oldChat := chatService

	ingestService = &mockIngestService{}
	retrievalService = &mockRetrievalService{}
	costService = &mockCostService{}
	chatService = &mockChatService{}

	return func() {
		ingestService = oldIngest
		retrievalService = oldRetrieval
		costService = oldCost
		chatService = oldChat
	}
}

type mockRetrievalService struct{}

func (m *mockRetrievalService) Search(_ context.Context, _ []float32, _ int, _ string) ([]domain.QueryResult, error) {
	return nil, nil
}

func (m *mockRetrievalService) SearchText(_ context.Context, _ string, _ int, _ string) ([]domain.QueryResult, error) {
	return []domain.QueryResult{
		{
			ChunkID: 1,
			Source:  "vault:projects/roadmap.md",
			Ord:     0,
			Text:    "Q3 roadmap draft with milestones",
			Score:   0.93,
			Link:    "obsidian://open?vault=Test&file=projects/roadmap.md",
		},
		{
			ChunkID: 7,
			Source:  "vault:journal.md",
			Ord:     3,
			Text:    "notes from the planning session",
			Score:   0.81,
		},
	}, nil
}

type mockRetrievalServiceError struct{}

func (m *mockRetrievalServiceError) Search(_ context.Context, _ []float32, _ int, _ string) ([]domain.QueryResult, error) {
	return nil, errors.New("store unavailable")
}

func (m *mockRetrievalServiceError) SearchText(_ context.Context, _ string, _ int, _ string) ([]domain.QueryResult, error) {
	return nil, errors.New("store unavailable")
}

type mockIngestService struct{}

func (m *mockIngestService) IngestText(_ context.Context, sourceName, _ string) (*driving.IngestReport, error) {
	return &driving.IngestReport{SourceID: 1, SourceName: sourceName, Chunks: 2}, nil
}

func (m *mockIngestService) IngestVault(_ context.Context, _ string) ([]driving.IngestReport, error) {
	return nil, nil
}

func (m *mockIngestService) ListSources(_ context.Context) ([]domain.SourceInfo, error) {
	return []domain.SourceInfo{
		{
			ID:         1,
			Name:       "vault:projects/roadmap.md",
			AddedAt:    time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
			ChunkCount: 4,
		},
	}, nil
}

func (m *mockIngestService) DeleteSource(_ context.Context, sourceName string) (bool, error) {
	return sourceName == "vault:projects/roadmap.md", nil
}

type mockCostService struct {
	lastBudget *float64
}

func (m *mockCostService) LogUsage(_ context.Context, _, _ string, _, _ int, _ string) (float64, error) {
	return 0, nil
}

func (m *mockCostService) CheckBudget(_ context.Context, _ string) (driving.BudgetStatus, error) {
	return driving.BudgetStatus{WithinBudget: true}, nil
}

func (m *mockCostService) ConversationCosts(_ context.Context, _ string) (driving.Costs, error) {
	return driving.Costs{SpentUSD: 0.0125}, nil
}

func (m *mockCostService) SetBudget(_ context.Context, conversationID string, budgetUSD *float64) error {
	if conversationID == "missing" {
		return domain.ErrNotFound
	}
	if budgetUSD != nil && *budgetUSD < 0 {
		return domain.ErrInvalidInput
	}
	m.lastBudget = budgetUSD
	return nil
}

type mockChatService struct{}

func (m *mockChatService) NewConversation(_ context.Context, title, model string) (*domain.Conversation, error) {
	return &domain.Conversation{ID: "conv-1", Title: title, Model: model}, nil
}

func (m *mockChatService) Ask(_ context.Context, _, prompt string, _ driving.AskOptions) (*driving.TurnResult, error) {
	return &driving.TurnResult{
		Reply:   "answer to " + prompt,
		CostUSD: 0.0003,
		Budget:  driving.BudgetStatus{WithinBudget: true, SpentUSD: 0.0003},
	}, nil
}

func (m *mockChatService) Get(_ context.Context, conversationID string) (*domain.Conversation, error) {
	if conversationID != "conv-1" {
		return nil, domain.ErrNotFound
	}
	return &domain.Conversation{ID: "conv-1", Title: "test chat", Model: "gpt-4o-mini"}, nil
}

func (m *mockChatService) List(_ context.Context) ([]domain.Conversation, error) {
	return []domain.Conversation{
		{ID: "conv-1", Title: "test chat", Model: "gpt-4o-mini"},
	}, nil
}
