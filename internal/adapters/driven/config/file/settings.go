// Package file provides TOML-backed configuration for the CLI.
// Settings live in ~/.vaultchat/config.toml by default.
package file

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Settings is the full on-disk configuration.
type Settings struct {
	Chat      ChatSettings      `toml:"chat"`
	LLM       LLMSettings       `toml:"llm"`
	Embedding EmbeddingSettings `toml:"embedding"`
	Vault     VaultSettings     `toml:"vault"`
	Retrieval RetrievalSettings `toml:"retrieval"`
	Usage     UsageSettings     `toml:"usage"`
}

// ChatSettings configures conversation defaults.
type ChatSettings struct {
	// Model is the default chat model for new conversations.
	Model string `toml:"model"`

	// SystemPrompt is prepended to every turn.
	SystemPrompt string `toml:"system_prompt"`

	// Temperature is passed through to the model.
	Temperature float64 `toml:"temperature"`

	// DefaultBudgetUSD is applied to new conversations when > 0.
	DefaultBudgetUSD float64 `toml:"default_budget_usd"`
}

// LLMSettings configures the chat completion backend.
type LLMSettings struct {
	// Provider selects the backend: "openai" or "ollama".
	Provider string `toml:"provider"`

	// BaseURL overrides the provider's API endpoint.
	BaseURL string `toml:"base_url"`

	// APIKey authenticates against hosted providers. The
	// OPENAI_API_KEY environment variable takes precedence.
	APIKey string `toml:"api_key"`
}

// EmbeddingSettings configures the embedding backend.
type EmbeddingSettings struct {
	// Provider selects the backend: "openai" or "ollama".
	Provider string `toml:"provider"`

	// Model is the embedding model.
	Model string `toml:"model"`

	// BaseURL overrides the provider's API endpoint.
	BaseURL string `toml:"base_url"`
}

// VaultSettings points at the Obsidian vault.
type VaultSettings struct {
	// Path is the vault directory on disk.
	Path string `toml:"path"`

	// Name is the vault name used in obsidian:// deep links.
	Name string `toml:"name"`
}

// RetrievalSettings tunes context assembly.
type RetrievalSettings struct {
	// TopK is how many chunks to retrieve per query.
	TopK int `toml:"top_k"`

	// ChunkMaxTokens caps chunk size at ingestion.
	ChunkMaxTokens int `toml:"chunk_max_tokens"`
}

// UsageSettings configures the cost audit trail.
type UsageSettings struct {
	// LogPath is the CSV usage log location. Empty selects
	// ~/.vaultchat/usage.csv.
	LogPath string `toml:"log_path"`
}

// DefaultSettings returns the configuration used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		Chat: ChatSettings{
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
		},
		LLM: LLMSettings{
			Provider: "openai",
		},
		Embedding: EmbeddingSettings{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Retrieval: RetrievalSettings{
			TopK:           5,
			ChunkMaxTokens: 500,
		},
	}
}

// DefaultDir returns the vaultchat config directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".vaultchat"), nil
}

// Path returns the config file path within configDir; empty configDir
// selects the default directory.
func Path(configDir string) (string, error) {
	if configDir == "" {
		var err error
		configDir, err = DefaultDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// Load reads settings from configDir, falling back to defaults when no
// file exists. Unknown keys in the file are an error so typos surface
// instead of silently reverting to defaults.
func Load(configDir string) (Settings, error) {
	path, err := Path(configDir)
	if err != nil {
		return Settings{}, err
	}

	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("reading config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&settings); err != nil {
		return Settings{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to configDir, creating the directory as needed.
func Save(configDir string, settings Settings) error {
	path, err := Path(configDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	// 0600: the file may hold an API key.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ResolveAPIKey returns the LLM API key, preferring the environment
// over the config file.
func (s Settings) ResolveAPIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return s.LLM.APIKey
}
