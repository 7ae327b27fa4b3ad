// Package csvlog appends model usage records to a CSV file. The file is
// the durable audit trail for spend: append-only, human-readable, and
// trivially imported into a spreadsheet.
package csvlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driven"
)

var _ driven.UsageLog = (*Log)(nil)

// header is the CSV column layout. Existing log files are never
// rewritten, so the order is load-bearing.
var header = []string{
	"timestamp_iso",
	"model",
	"input_tokens",
	"output_tokens",
	"cost_input_usd",
	"cost_output_usd",
	"cost_total_usd",
	"prompt",
	"chat_id",
}

// Log is an append-only CSV usage log. Safe for concurrent use.
type Log struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

// New opens (or creates) the usage log at path. A freshly created file
// gets the header row; an existing file is appended to as-is.
func New(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	info, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr) || (statErr == nil && info.Size() == 0)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening usage log: %w", err)
	}

	l := &Log{file: file, w: csv.NewWriter(file)}

	if fresh {
		if err := l.w.Write(header); err != nil {
			file.Close()
			return nil, fmt.Errorf("writing header: %w", err)
		}
		l.w.Flush()
		if err := l.w.Error(); err != nil {
			file.Close()
			return nil, fmt.Errorf("flushing header: %w", err)
		}
	}

	return l, nil
}

// Append writes one usage record and flushes it to disk. An error means
// the record may not be durable and the caller must not treat the spend
// as logged.
func (l *Log) Append(_ context.Context, rec domain.UsageRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	row := []string{
		rec.Timestamp.UTC().Format(time.RFC3339),
		rec.Model,
		strconv.Itoa(rec.InputTokens),
		strconv.Itoa(rec.OutputTokens),
		formatUSD(rec.CostInputUSD),
		formatUSD(rec.CostOutputUSD),
		formatUSD(rec.CostTotalUSD),
		rec.Prompt,
		rec.ConversationID,
	}

	if err := l.w.Write(row); err != nil {
		return fmt.Errorf("writing usage row: %w", err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("flushing usage row: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.w.Flush()
	if err := l.w.Error(); err != nil {
		l.file.Close()
		return fmt.Errorf("flushing usage log: %w", err)
	}
	return l.file.Close()
}

// formatUSD renders a dollar amount with enough precision for
// per-million-token prices without scientific notation.
func formatUSD(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
