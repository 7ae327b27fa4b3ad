package driven

import (
	"context"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
)

// UsageLog is the durable, append-only audit trail of model usage.
// A failed append must be surfaced to the caller: spend accuracy is a
// correctness property, not best-effort.
type UsageLog interface {
	// Append writes one immutable usage record.
	Append(ctx context.Context, rec domain.UsageRecord) error

	// Close releases resources.
	Close() error
}
