package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreMigratesOnOpen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening an already-migrated database is a no-op.
	store, err = NewStore(dir)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestUpsertSourceIdempotent(t *testing.T) {
	vs := newTestStore(t).VectorStore()
	ctx := context.Background()

	id1, err := vs.UpsertSource(ctx, "notes.md")
	require.NoError(t, err)

	id2, err := vs.UpsertSource(ctx, "notes.md")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	id3, err := vs.UpsertSource(ctx, "other.md")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
}

func TestAddChunksRoundTrip(t *testing.T) {
	vs := newTestStore(t).VectorStore()
	ctx := context.Background()

	id, err := vs.UpsertSource(ctx, "notes.md")
	require.NoError(t, err)

	chunks := []domain.Chunk{
		{SourceID: id, Ord: 0, Text: "first chunk", Embedding: []float32{0.1, -0.2, 0.3}},
		{SourceID: id, Ord: 1, Text: "second chunk", Embedding: []float32{0.4, 0.5, -0.6}},
	}
	require.NoError(t, vs.AddChunks(ctx, id, chunks))

	stored, err := vs.AllChunks(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)

	assert.Equal(t, "first chunk", stored[0].Chunk.Text)
	assert.Equal(t, 0, stored[0].Chunk.Ord)
	assert.Equal(t, []float32{0.1, -0.2, 0.3}, stored[0].Chunk.Embedding)
	assert.Equal(t, "notes.md", stored[0].SourceName)
	assert.Equal(t, id, stored[0].Chunk.SourceID)

	assert.Equal(t, "second chunk", stored[1].Chunk.Text)
	assert.Equal(t, []float32{0.4, 0.5, -0.6}, stored[1].Chunk.Embedding)
}

func TestAddChunksDuplicateOrdRollsBack(t *testing.T) {
	vs := newTestStore(t).VectorStore()
	ctx := context.Background()

	id, err := vs.UpsertSource(ctx, "notes.md")
	require.NoError(t, err)

	require.NoError(t, vs.AddChunks(ctx, id, []domain.Chunk{
		{Ord: 0, Text: "existing", Embedding: []float32{1}},
	}))

	err = vs.AddChunks(ctx, id, []domain.Chunk{
		{Ord: 1, Text: "new", Embedding: []float32{1}},
		{Ord: 0, Text: "collides", Embedding: []float32{1}},
	})
	require.ErrorIs(t, err, domain.ErrDuplicateChunk)

	// The batch is all-or-nothing: ord 1 must not have been written.
	stored, err := vs.AllChunks(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "existing", stored[0].Chunk.Text)
}

func TestListSourcesWithChunkCounts(t *testing.T) {
	vs := newTestStore(t).VectorStore()
	ctx := context.Background()

	empty, err := vs.UpsertSource(ctx, "empty.md")
	require.NoError(t, err)

	full, err := vs.UpsertSource(ctx, "full.md")
	require.NoError(t, err)
	require.NoError(t, vs.AddChunks(ctx, full, []domain.Chunk{
		{Ord: 0, Text: "a", Embedding: []float32{1}},
		{Ord: 1, Text: "b", Embedding: []float32{1}},
	}))

	infos, err := vs.ListSources(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	byID := map[int64]domain.SourceInfo{}
	for _, info := range infos {
		byID[info.ID] = info
	}
	assert.Equal(t, 0, byID[empty].ChunkCount)
	assert.Equal(t, 2, byID[full].ChunkCount)
	assert.False(t, byID[full].AddedAt.IsZero())
}

func TestGetSourceByName(t *testing.T) {
	vs := newTestStore(t).VectorStore()
	ctx := context.Background()

	id, err := vs.UpsertSource(ctx, "notes.md")
	require.NoError(t, err)

	src, err := vs.GetSourceByName(ctx, "notes.md")
	require.NoError(t, err)
	assert.Equal(t, id, src.ID)
	assert.Equal(t, "notes.md", src.Name)

	_, err = vs.GetSourceByName(ctx, "missing.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteSourceCascadesToChunks(t *testing.T) {
	vs := newTestStore(t).VectorStore()
	ctx := context.Background()

	id, err := vs.UpsertSource(ctx, "notes.md")
	require.NoError(t, err)
	require.NoError(t, vs.AddChunks(ctx, id, []domain.Chunk{
		{Ord: 0, Text: "a", Embedding: []float32{1}},
	}))

	deleted, err := vs.DeleteSource(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	stored, err := vs.AllChunks(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)

	deleted, err = vs.DeleteSource(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestConversationRoundTrip(t *testing.T) {
	cs := newTestStore(t).ConversationStore()
	ctx := context.Background()

	conv := domain.NewConversation("go questions", "gpt-4o-mini")
	require.NoError(t, cs.Create(ctx, conv))

	got, err := cs.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "go questions", got.Title)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Nil(t, got.Meta.BudgetUSD)
	assert.Zero(t, got.Meta.SpentUSD)
	assert.Empty(t, got.Messages)

	// Duplicate creation is rejected.
	err = cs.Create(ctx, conv)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestConversationNotFound(t *testing.T) {
	cs := newTestStore(t).ConversationStore()
	ctx := context.Background()

	_, err := cs.Get(ctx, "no-such-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = cs.AddSpend(ctx, "no-such-id", 0.01)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = cs.SetBudget(ctx, "no-such-id", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAppendMessagePreservesOrder(t *testing.T) {
	cs := newTestStore(t).ConversationStore()
	ctx := context.Background()

	conv := domain.NewConversation("t", "gpt-4o-mini")
	require.NoError(t, cs.Create(ctx, conv))

	contents := []string{"first", "second", "third"}
	for _, c := range contents {
		msg, err := domain.NewMessage(domain.RoleUser, c)
		require.NoError(t, err)
		require.NoError(t, cs.AppendMessage(ctx, conv.ID, msg))
	}

	got, err := cs.Get(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 3)
	for i, c := range contents {
		assert.Equal(t, c, got.Messages[i].Content)
	}

	msg, err := domain.NewMessage(domain.RoleUser, "orphan")
	require.NoError(t, err)
	err = cs.AppendMessage(ctx, "no-such-id", msg)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddSpendAccumulates(t *testing.T) {
	cs := newTestStore(t).ConversationStore()
	ctx := context.Background()

	conv := domain.NewConversation("t", "gpt-4o-mini")
	require.NoError(t, cs.Create(ctx, conv))

	require.NoError(t, cs.AddSpend(ctx, conv.ID, 0.001))
	require.NoError(t, cs.AddSpend(ctx, conv.ID, 0.002))

	got, err := cs.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.003, got.Meta.SpentUSD, 1e-9)
}

func TestSetAndClearBudget(t *testing.T) {
	cs := newTestStore(t).ConversationStore()
	ctx := context.Background()

	conv := domain.NewConversation("t", "gpt-4o-mini")
	require.NoError(t, cs.Create(ctx, conv))

	budget := 0.05
	require.NoError(t, cs.SetBudget(ctx, conv.ID, &budget))

	got, err := cs.Get(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Meta.BudgetUSD)
	assert.Equal(t, 0.05, *got.Meta.BudgetUSD)

	require.NoError(t, cs.SetBudget(ctx, conv.ID, nil))
	got, err = cs.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Meta.BudgetUSD)
}

func TestDeleteConversationCascadesToMessages(t *testing.T) {
	store := newTestStore(t)
	cs := store.ConversationStore()
	ctx := context.Background()

	conv := domain.NewConversation("t", "gpt-4o-mini")
	require.NoError(t, cs.Create(ctx, conv))

	msg, err := domain.NewMessage(domain.RoleUser, "hi")
	require.NoError(t, err)
	require.NoError(t, cs.AppendMessage(ctx, conv.ID, msg))

	require.NoError(t, cs.Delete(ctx, conv.ID))

	_, err = cs.Get(ctx, conv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var count int
	row := store.db.QueryRow("SELECT COUNT(*) FROM messages WHERE conversation_id = ?", conv.ID)
	require.NoError(t, row.Scan(&count))
	assert.Zero(t, count)
}

func TestFloat32BlobRoundTrip(t *testing.T) {
	vecs := [][]float32{
		nil,
		{},
		{0},
		{1.5, -2.25, 3.125},
		{3.14159, -0.0001, 1e10},
	}
	for _, v := range vecs {
		got := bytesToFloat32Slice(float32SliceToBytes(v))
		if len(v) == 0 {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, v, got)
	}
}
