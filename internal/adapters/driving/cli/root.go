// Package cli implements the vaultchat command-line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vaultchat-labs/vaultchat-cli/internal/adapters/driven/config/file"
	embeddingollama "github.com/vaultchat-labs/vaultchat-cli/internal/adapters/driven/embedding/ollama"
	embeddingopenai "github.com/vaultchat-labs/vaultchat-cli/internal/adapters/driven/embedding/openai"
	llmopenai "github.com/vaultchat-labs/vaultchat-cli/internal/adapters/driven/llm/openai"
	"github.com/vaultchat-labs/vaultchat-cli/internal/adapters/driven/storage/sqlite"
	"github.com/vaultchat-labs/vaultchat-cli/internal/adapters/driven/tokenizer/tiktoken"
	"github.com/vaultchat-labs/vaultchat-cli/internal/adapters/driven/usagelog/csvlog"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driven"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driving"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/services"
	"github.com/vaultchat-labs/vaultchat-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	verboseFlag   bool
	configDirFlag string
)

// Wired services. Populated by initServices before any command that
// needs them runs; nil services degrade to command-level errors.
var (
	settings         file.Settings
	store            *sqlite.Store
	usageLog         driven.UsageLog
	embedder         driven.EmbeddingService
	llmService       driven.LLMService
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	contextService   driving.ContextService
	costService      driving.CostService
	chatService      driving.ChatService
)

var rootCmd = &cobra.Command{
	Use:   "vaultchat",
	Short: "Chat with your notes",
	Long: `vaultchat is a retrieval-augmented chat assistant for your personal
knowledge base. It indexes your Obsidian vault (or any markdown notes),
retrieves the most relevant chunks for each question, and keeps a
per-conversation cost ledger so a chat can never silently overspend.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		if skipsWiring(cmd) || wired() {
			return nil
		}
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "config directory (default ~/.vaultchat)")
}

// Execute runs the CLI. It is the single entry point for main.
func Execute() {
	defer teardown()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		teardown()
		os.Exit(1)
	}
}

// wired reports whether the service stack is already populated, either
// by a previous run or by test injection.
func wired() bool {
	return chatService != nil
}

// skipsWiring reports whether cmd works without the service stack.
func skipsWiring(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion", "config":
		return true
	}
	// config subcommands
	if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
		return true
	}
	return false
}

// initServices loads settings and wires the full service stack.
func initServices() error {
	var err error
	settings, err = file.Load(configDirFlag)
	if err != nil {
		return err
	}

	dataDir := ""
	if configDirFlag != "" {
		dataDir = filepath.Join(configDirFlag, "data")
	}
	store, err = sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	usageLog, err = csvlog.New(usageLogPath())
	if err != nil {
		return fmt.Errorf("opening usage log: %w", err)
	}

	tokenizer := tiktoken.New()
	embedder = buildEmbedder()
	llmService = buildLLM()

	vectorStore := store.VectorStore()
	convStore := store.ConversationStore()

	retrievalService = services.NewRetrievalService(vectorStore, embedder)
	ingestService = services.NewIngestService(vectorStore, embedder, tokenizer, settings.Retrieval.ChunkMaxTokens)
	contextService = services.NewContextService(retrievalService, tokenizer, settings.Vault.Name, settings.Retrieval.TopK)
	costService = services.NewCostService(convStore, usageLog)
	chatService = services.NewChatService(convStore, llmService, contextService, costService)

	return nil
}

// buildEmbedder constructs the embedding backend from settings. A
// missing API key yields nil rather than an error so commands that do
// not embed keep working.
func buildEmbedder() driven.EmbeddingService {
	switch settings.Embedding.Provider {
	case "ollama":
		return embeddingollama.NewEmbeddingService(embeddingollama.Config{
			BaseURL: settings.Embedding.BaseURL,
			Model:   settings.Embedding.Model,
		})
	default:
		key := settings.ResolveAPIKey()
		if key == "" {
			logger.Debug("No API key configured; embedding disabled")
			return nil
		}
		svc, err := embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey:  key,
			BaseURL: settings.Embedding.BaseURL,
			Model:   settings.Embedding.Model,
		})
		if err != nil {
			logger.Warn("Embedding service unavailable: %v", err)
			return nil
		}
		return svc
	}
}

// buildLLM constructs the chat backend from settings. Nil when not
// configured; chat commands surface the gap.
func buildLLM() driven.LLMService {
	cfg := llmopenai.Config{
		BaseURL: settings.LLM.BaseURL,
		Model:   settings.Chat.Model,
	}
	if settings.LLM.Provider == "ollama" && cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434/v1"
	}
	cfg.APIKey = settings.ResolveAPIKey()

	svc, err := llmopenai.NewLLMService(cfg)
	if err != nil {
		logger.Warn("LLM service unavailable: %v", err)
		return nil
	}
	return svc
}

// usageLogPath resolves the CSV usage log location.
func usageLogPath() string {
	if settings.Usage.LogPath != "" {
		return settings.Usage.LogPath
	}
	if configDirFlag != "" {
		return filepath.Join(configDirFlag, "usage.csv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "usage.csv"
	}
	return filepath.Join(home, ".vaultchat", "usage.csv")
}

// teardown releases wired resources. Safe to call more than once.
func teardown() {
	if usageLog != nil {
		usageLog.Close() //nolint:errcheck
		usageLog = nil
	}
	if store != nil {
		store.Close() //nolint:errcheck
		store = nil
	}
}
