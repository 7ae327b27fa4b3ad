package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
)

var (
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the knowledge base",
	Long: `Embeds the query and returns the most similar indexed chunks,
with Obsidian deep links when a vault name is configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "maximum number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	topK := searchTopK
	if topK <= 0 {
		topK = settings.Retrieval.TopK
	}

	results, err := retrievalService.SearchText(cmd.Context(), args[0], topK, settings.Vault.Name)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return errors.New("no embedding backend configured (run 'vaultchat config key' or switch to ollama)")
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchText(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.QueryResult) error {
	citations := make([]domain.Citation, len(results))
	for i, r := range results {
		citations[i] = domain.NewCitation(r)
	}
	data, err := json.MarshalIndent(citations, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, results []domain.QueryResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("  [%d] %s#%d (%.4f)\n", i+1, r.Source, r.Ord, r.Score)
		cmd.Printf("      %s\n", snippet(r.Text))
		if r.Link != "" {
			cmd.Printf("      %s\n", r.Link)
		}
		cmd.Println()
	}
	return nil
}

// snippet truncates chunk text for terminal display.
func snippet(text string) string {
	const max = 160
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
