package driven

// Tokenizer counts tokens the way a target model would.
//
// CountTokens must fall back to a generic encoding when the model id is
// unrecognised; it never fails for unknown models. Implementations are
// pure apart from internal encoding caches.
type Tokenizer interface {
	// CountTokens returns the number of tokens in text for the given
	// model id.
	CountTokens(text, modelID string) int
}
