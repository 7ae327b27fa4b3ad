package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatVaultLink(t *testing.T) {
	tests := []struct {
		name  string
		vault string
		file  string
		want  string
	}{
		{
			name:  "plain",
			vault: "MyVault",
			file:  "notes.md",
			want:  "obsidian://open?vault=MyVault&file=notes.md",
		},
		{
			name:  "spaces",
			vault: "My Vault",
			file:  "daily notes.md",
			want:  "obsidian://open?vault=My%20Vault&file=daily%20notes.md",
		},
		{
			name:  "ampersand and hash",
			vault: "a&b",
			file:  "q#1.md",
			want:  "obsidian://open?vault=a%26b&file=q%231.md",
		},
		{
			name:  "path slashes preserved",
			vault: "vault",
			file:  "projects/2026/plan.md",
			want:  "obsidian://open?vault=vault&file=projects/2026/plan.md",
		},
		{
			name:  "utf8 bytes",
			vault: "vault",
			file:  "café.md",
			want:  "obsidian://open?vault=vault&file=caf%C3%A9.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatVaultLink(tt.vault, tt.file))
		})
	}
}

func TestVaultFilePath(t *testing.T) {
	assert.Equal(t, "notes.md", VaultFilePath("vault:notes.md"))
	assert.Equal(t, "notes.md", VaultFilePath("notes.md"))
	assert.Equal(t, "a/b.md", VaultFilePath("vault:a/b.md"))
}

func TestNewCitationTruncatesSnippet(t *testing.T) {
	long := strings.Repeat("x", 300)
	c := NewCitation(QueryResult{
		ChunkID: 7,
		Source:  "vault:notes.md",
		Text:    long,
		Score:   0.123456,
	})

	assert.Equal(t, long[:200]+"...", c.Snippet)
	assert.Equal(t, 0.1235, c.Score)
	assert.Equal(t, int64(7), c.ChunkID)
}

func TestNewCitationShortSnippetUntouched(t *testing.T) {
	c := NewCitation(QueryResult{Text: "short", Score: 1})
	assert.Equal(t, "short", c.Snippet)
	assert.Equal(t, 1.0, c.Score)
}
