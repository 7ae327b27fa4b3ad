package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vaultchat-labs/vaultchat-cli/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change configuration",
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configKeyCmd = &cobra.Command{
	Use:   "key",
	Short: "Set the API key",
	Long: `Prompts for the API key without echoing it and stores it in the
config file with owner-only permissions. The OPENAI_API_KEY environment
variable, when set, takes precedence over the stored key.`,
	RunE: runConfigKey,
}

var configVaultCmd = &cobra.Command{
	Use:   "vault [path] [name]",
	Short: "Set the Obsidian vault path and name",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigVault,
}

var configModelCmd = &cobra.Command{
	Use:   "model [model-id]",
	Short: "Set the default chat model",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigModel,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configKeyCmd)
	configCmd.AddCommand(configVaultCmd)
	configCmd.AddCommand(configModelCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	s, err := file.Load(configDirFlag)
	if err != nil {
		return err
	}

	cmd.Println("[chat]")
	cmd.Printf("  model = %s\n", s.Chat.Model)
	cmd.Printf("  temperature = %.1f\n", s.Chat.Temperature)
	if s.Chat.DefaultBudgetUSD > 0 {
		cmd.Printf("  default_budget_usd = %.4f\n", s.Chat.DefaultBudgetUSD)
	}
	cmd.Println()

	cmd.Println("[llm]")
	cmd.Printf("  provider = %s\n", s.LLM.Provider)
	if s.LLM.BaseURL != "" {
		cmd.Printf("  base_url = %s\n", s.LLM.BaseURL)
	}
	if s.ResolveAPIKey() != "" {
		cmd.Println("  api_key = (set)")
	} else {
		cmd.Println("  api_key = (not set)")
	}
	cmd.Println()

	cmd.Println("[embedding]")
	cmd.Printf("  provider = %s\n", s.Embedding.Provider)
	cmd.Printf("  model = %s\n", s.Embedding.Model)
	cmd.Println()

	cmd.Println("[vault]")
	cmd.Printf("  path = %s\n", s.Vault.Path)
	cmd.Printf("  name = %s\n", s.Vault.Name)
	cmd.Println()

	cmd.Println("[retrieval]")
	cmd.Printf("  top_k = %d\n", s.Retrieval.TopK)
	cmd.Printf("  chunk_max_tokens = %d\n", s.Retrieval.ChunkMaxTokens)
	return nil
}

func runConfigKey(cmd *cobra.Command, _ []string) error {
	cmd.Print("API key: ")
	key, err := term.ReadPassword(int(os.Stdin.Fd()))
	cmd.Println()
	if err != nil {
		return fmt.Errorf("reading key: %w", err)
	}

	trimmed := strings.TrimSpace(string(key))
	if trimmed == "" {
		return fmt.Errorf("empty key")
	}

	s, err := file.Load(configDirFlag)
	if err != nil {
		return err
	}
	s.LLM.APIKey = trimmed
	if err := file.Save(configDirFlag, s); err != nil {
		return err
	}

	cmd.Println("API key saved.")
	return nil
}

func runConfigVault(cmd *cobra.Command, args []string) error {
	info, err := os.Stat(args[0])
	if err != nil {
		return fmt.Errorf("opening vault path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", args[0])
	}

	s, err := file.Load(configDirFlag)
	if err != nil {
		return err
	}
	s.Vault.Path = args[0]
	s.Vault.Name = args[1]
	if err := file.Save(configDirFlag, s); err != nil {
		return err
	}

	cmd.Printf("Vault set to %s (%s)\n", args[0], args[1])
	return nil
}

func runConfigModel(cmd *cobra.Command, args []string) error {
	s, err := file.Load(configDirFlag)
	if err != nil {
		return err
	}
	s.Chat.Model = args[0]
	if err := file.Save(configDirFlag, s); err != nil {
		return err
	}

	cmd.Printf("Default model set to %s\n", args[0])
	return nil
}
