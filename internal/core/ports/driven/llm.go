package driven

import (
	"context"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
)

// LLMService produces chat completions. The token generation itself is an
// external service; the engine consumes the text and token counts.
type LLMService interface {
	// Chat conducts a multi-turn completion over the prepared context.
	Chat(ctx context.Context, messages []domain.Message, opts ChatOptions) (ChatResult, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatOptions configures a completion request.
type ChatOptions struct {
	// Model overrides the service's default model when non-empty.
	Model string

	// MaxTokens caps the reply length. Zero means provider default.
	MaxTokens int

	// Temperature controls randomness (0.0 deterministic, 1.0 creative).
	Temperature float64
}

// ChatResult is a completed model call with its token usage, the input
// to cost accounting.
type ChatResult struct {
	// Content is the assistant reply text.
	Content string

	// Model is the model that served the request.
	Model string

	// InputTokens is the prompt token count reported by the provider.
	InputTokens int

	// OutputTokens is the completion token count.
	OutputTokens int
}
