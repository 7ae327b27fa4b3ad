package csvlog

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func sampleRecord() domain.UsageRecord {
	return domain.UsageRecord{
		Timestamp:      time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC),
		Model:          "gpt-4o-mini",
		InputTokens:    5000,
		OutputTokens:   2500,
		CostInputUSD:   0.00075,
		CostOutputUSD:  0.0015,
		CostTotalUSD:   0.00225,
		Prompt:         "what is go?",
		ConversationID: "conv-123",
	}
}

func TestNewWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.csv")

	log, err := New(path)
	require.NoError(t, err)
	require.NoError(t, log.Append(context.Background(), sampleRecord()))
	require.NoError(t, log.Close())

	// Reopening must append, not rewrite the header.
	log, err = New(path)
	require.NoError(t, err)
	require.NoError(t, log.Append(context.Background(), sampleRecord()))
	require.NoError(t, log.Close())

	rows := readAll(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, header, rows[0])
}

func TestAppendFieldOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.csv")

	log, err := New(path)
	require.NoError(t, err)
	require.NoError(t, log.Append(context.Background(), sampleRecord()))
	require.NoError(t, log.Close())

	rows := readAll(t, path)
	require.Len(t, rows, 2)

	row := rows[1]
	assert.Equal(t, "2026-08-31T14:30:00Z", row[0])
	assert.Equal(t, "gpt-4o-mini", row[1])
	assert.Equal(t, "5000", row[2])
	assert.Equal(t, "2500", row[3])
	assert.Equal(t, "0.00075", row[4])
	assert.Equal(t, "0.0015", row[5])
	assert.Equal(t, "0.00225", row[6])
	assert.Equal(t, "what is go?", row[7])
	assert.Equal(t, "conv-123", row[8])
}

func TestAppendQuotesAwkwardPrompts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.csv")

	rec := sampleRecord()
	rec.Prompt = "multi\nline, with \"quotes\" and commas"

	log, err := New(path)
	require.NoError(t, err)
	require.NoError(t, log.Append(context.Background(), rec))
	require.NoError(t, log.Close())

	rows := readAll(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, rec.Prompt, rows[1][7])
}

func TestNewCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "usage.csv")

	log, err := New(path)
	require.NoError(t, err)
	require.NoError(t, log.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
