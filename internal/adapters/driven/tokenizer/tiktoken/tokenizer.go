// Package tiktoken adapts the tiktoken BPE tokenizer to the core
// Tokenizer port for model-accurate token counting.
package tiktoken

import (
	"sync"

	tiktokengo "github.com/pkoukk/tiktoken-go"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driven"
	"github.com/vaultchat-labs/vaultchat-cli/internal/logger"
)

// FallbackEncoding is used for model ids tiktoken does not recognise.
const FallbackEncoding = "cl100k_base"

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// Tokenizer counts tokens via tiktoken encodings. Encodings are cached
// per model id; unknown models use the generic cl100k_base encoding.
// CountTokens never fails: if no encoding can be loaded at all it falls
// back to a bytes/4 estimate.
type Tokenizer struct {
	mu    sync.Mutex
	cache map[string]*tiktokengo.Tiktoken
}

// New creates a tokenizer with an empty encoding cache.
func New() *Tokenizer {
	return &Tokenizer{cache: make(map[string]*tiktokengo.Tiktoken)}
}

// CountTokens returns the number of tokens in text for the given model.
func (t *Tokenizer) CountTokens(text, modelID string) int {
	enc := t.encodingFor(modelID)
	if enc == nil {
		// No encoding data available at all. Approximate rather than
		// fail: four bytes per token is the usual rule of thumb.
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// encodingFor resolves and caches the encoding for a model id.
func (t *Tokenizer) encodingFor(modelID string) *tiktokengo.Tiktoken {
	t.mu.Lock()
	defer t.mu.Unlock()

	if enc, ok := t.cache[modelID]; ok {
		return enc
	}

	enc, err := tiktokengo.EncodingForModel(modelID)
	if err != nil {
		logger.Debug("no tiktoken encoding for model %q, using %s", modelID, FallbackEncoding)
		enc, err = tiktokengo.GetEncoding(FallbackEncoding)
		if err != nil {
			logger.Warn("fallback encoding unavailable: %v", err)
			enc = nil
		}
	}

	// Unknown models cache the fallback (or nil) so the miss is paid once.
	t.cache[modelID] = enc
	return enc
}
