package sqlite

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/services"
)

// The tests below drive the core services against the real store
// instead of mocks.

type fixedEmbedder struct {
	vec []float32
}

func (e *fixedEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return e.vec, nil
}

func (e *fixedEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = e.vec
	}
	return out, nil
}

func (e *fixedEmbedder) Dimensions() int            { return len(e.vec) }
func (e *fixedEmbedder) ModelName() string          { return "fixed" }
func (e *fixedEmbedder) Ping(context.Context) error { return nil }
func (e *fixedEmbedder) Close() error               { return nil }

type wordTokenizer struct{}

func (wordTokenizer) CountTokens(text, _ string) int {
	return len(strings.Fields(text))
}

func TestIngestThenRetrieveAgainstStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	embedder := &fixedEmbedder{vec: []float32{1, 0, 0}}
	ingest := services.NewIngestService(store.VectorStore(), embedder, wordTokenizer{}, 500)

	report, err := ingest.IngestText(ctx, "notes.md", "Buy milk\n\nCall dentist at 3pm")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Chunks, "both paragraphs fit one 500-token chunk")
	assert.False(t, report.Replaced)

	retrieval := services.NewRetrievalService(store.VectorStore(), nil)
	results, err := retrieval.Search(ctx, []float32{0.9, 0.1, 0}, 1, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "notes.md", results[0].Source)
	assert.Equal(t, 0, results[0].Ord)
	assert.InDelta(t, 0.994, results[0].Score, 1e-3)
}

func TestBudgetExhaustionAgainstStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	convs := store.ConversationStore()

	conv := domain.NewConversation("budget test", "gpt-4o-mini")
	require.NoError(t, convs.Create(ctx, conv))

	budget := 0.01
	require.NoError(t, convs.SetBudget(ctx, conv.ID, &budget))
	require.NoError(t, convs.AddSpend(ctx, conv.ID, 0.005))
	require.NoError(t, convs.AddSpend(ctx, conv.ID, 0.005))

	costs := services.NewCostService(convs, nil)
	status, err := costs.CheckBudget(ctx, conv.ID)
	require.NoError(t, err)
	assert.False(t, status.WithinBudget, "spend equal to budget is exhausted")
	assert.InDelta(t, 0.01, status.SpentUSD, 1e-9)
	require.NotNil(t, status.BudgetUSD)
	assert.InDelta(t, 0.01, *status.BudgetUSD, 1e-9)
}
