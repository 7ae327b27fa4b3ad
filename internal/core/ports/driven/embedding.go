package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// This is an external capability consumed, not implemented, by the core;
// the engine only uses the numeric outputs.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-ada-002)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	// The result preserves input order and every vector has the same
	// provider-defined dimensionality.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
