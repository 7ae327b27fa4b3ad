package domain

import (
	"fmt"
	"math"
	"strings"
)

// snippetLen is the maximum citation snippet length in bytes.
const snippetLen = 200

// QueryResult is a single retrieval hit. Ephemeral, never persisted.
type QueryResult struct {
	// ChunkID identifies the matched chunk.
	ChunkID int64

	// Source is the owning source name.
	Source string

	// Ord is the chunk's position within its source.
	Ord int

	// Text is the chunk content.
	Text string

	// Score is cosine similarity in [-1, 1].
	Score float64

	// Link is an optional obsidian:// deep link back to the source file.
	Link string
}

// Citation is a user-facing pointer from an answer back to the vault.
type Citation struct {
	Source  string  `json:"source"`
	ChunkID int64   `json:"chunk_id"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet"`
	Link    string  `json:"obsidian_link,omitempty"`
}

// NewCitation builds a citation from a retrieval hit, truncating the
// snippet and rounding the score to four decimal places.
func NewCitation(r QueryResult) Citation {
	snippet := r.Text
	if len(snippet) > snippetLen {
		snippet = snippet[:snippetLen] + "..."
	}
	return Citation{
		Source:  r.Source,
		ChunkID: r.ChunkID,
		Score:   math.Round(r.Score*10000) / 10000,
		Snippet: snippet,
		Link:    r.Link,
	}
}

// FormatVaultLink builds an Obsidian deep link for a file inside a vault:
//
//	obsidian://open?vault=<vault>&file=<path>
//
// Both components are percent-encoded (space %20, & %26, # %23, non-ASCII
// as UTF-8 byte sequences). Slashes in the file path stay literal so links
// to nested notes remain readable.
func FormatVaultLink(vaultName, filePath string) string {
	return fmt.Sprintf("obsidian://open?vault=%s&file=%s",
		encodeComponent(vaultName, false),
		encodeComponent(filePath, true))
}

// encodeComponent percent-encodes s per RFC 3986 component rules.
// Unreserved characters pass through; keepSlash additionally preserves '/'.
func encodeComponent(s string, keepSlash bool) string {
	const upperhex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z',
			c >= 'A' && c <= 'Z',
			c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~':
			b.WriteByte(c)
		case c == '/' && keepSlash:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0xf])
		}
	}
	return b.String()
}
