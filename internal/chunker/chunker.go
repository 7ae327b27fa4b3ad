// Package chunker splits raw text into ordered, token-bounded segments.
package chunker

import (
	"regexp"
	"strings"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driven"
)

// DefaultMaxTokens is the default token budget per chunk.
const DefaultMaxTokens = 500

// Separator joins paragraphs within a chunk and, on reconstruction,
// chunks back into the original paragraph sequence.
const Separator = "\n\n"

// paragraphSplit matches blank-line boundaries (two or more newlines).
var paragraphSplit = regexp.MustCompile(`\n{2,}`)

// Chunker packs paragraphs into token-bounded chunks using a
// model-specific tokenizer.
type Chunker struct {
	tokenizer driven.Tokenizer
}

// New creates a chunker backed by the given tokenizer.
func New(tokenizer driven.Tokenizer) *Chunker {
	return &Chunker{tokenizer: tokenizer}
}

// Chunk splits text into ordered segments of at most maxTokens tokens,
// counted for the given model. Paragraphs are accumulated greedily; a
// paragraph is never split mid-way, so a single paragraph larger than
// maxTokens is emitted as its own over-budget chunk. Paragraph integrity
// wins over a strict token ceiling.
//
// Returns nil for empty or whitespace-only input. Pure function of its
// input and the tokenizer; maxTokens <= 0 selects DefaultMaxTokens.
func (c *Chunker) Chunk(text, model string, maxTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")

	var paragraphs []string
	for _, p := range paragraphSplit.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []string
	current := ""

	for _, paragraph := range paragraphs {
		candidate := paragraph
		if current != "" {
			candidate = current + Separator + paragraph
		}

		if c.tokenizer.CountTokens(candidate, model) <= maxTokens {
			current = candidate
			continue
		}

		if current != "" {
			chunks = append(chunks, current)
		}
		current = paragraph
	}

	if current != "" {
		chunks = append(chunks, current)
	}

	return chunks
}
