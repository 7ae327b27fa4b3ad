package mcp

import (
	"context"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driving"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.QueryResult
	err     error

	lastTopK  int
	lastVault string
}

func (m *mockRetrievalService) Search(
	_ context.Context,
	_ []float32,
	topK int,
	vaultName string,
) ([]domain.QueryResult, error) {
	m.lastTopK = topK
	m.lastVault = vaultName
	return m.results, m.err
}

func (m *mockRetrievalService) SearchText(
	_ context.Context,
	_ string,
	topK int,
	vaultName string,
) ([]domain.QueryResult, error) {
	m.lastTopK = topK
	m.lastVault = vaultName
	return m.results, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report  *driving.IngestReport
	sources []domain.SourceInfo
	err     error
}

func (m *mockIngestService) IngestText(_ context.Context, _, _ string) (*driving.IngestReport, error) {
	return m.report, m.err
}

func (m *mockIngestService) IngestVault(_ context.Context, _ string) ([]driving.IngestReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.report == nil {
		return nil, nil
	}
	return []driving.IngestReport{*m.report}, nil
}

func (m *mockIngestService) ListSources(_ context.Context) ([]domain.SourceInfo, error) {
	return m.sources, m.err
}

func (m *mockIngestService) DeleteSource(_ context.Context, _ string) (bool, error) {
	return m.err == nil, m.err
}
