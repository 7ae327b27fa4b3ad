package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
)

var ingestName string

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Index a markdown file or directory",
	Long: `Chunks, embeds, and indexes markdown content for retrieval.

Given a file, it is ingested as a single source. Given a directory, every
markdown file beneath it is ingested under a vault-prefixed source name.
Re-ingesting an existing source replaces its chunks.

With no argument, the configured vault path is ingested.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "source name (default: file name)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := settings.Vault.Path
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return errors.New("no path given and no vault configured (run 'vaultchat config vault')")
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}

	ctx := cmd.Context()

	if info.IsDir() {
		reports, err := ingestService.IngestVault(ctx, path)
		if err != nil {
			return fmt.Errorf("ingesting vault: %w", err)
		}
		total := 0
		for _, r := range reports {
			total += r.Chunks
		}
		cmd.Printf("Ingested %d files (%d chunks) from %s\n", len(reports), total, path)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	name := ingestName
	if name == "" {
		name = filepath.Base(path)
	}

	report, err := ingestService.IngestText(ctx, name, string(data))
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return errors.New("no embedding backend configured (run 'vaultchat config key' or switch to ollama)")
		}
		return fmt.Errorf("ingesting %s: %w", name, err)
	}

	verb := "Ingested"
	if report.Replaced {
		verb = "Re-ingested"
	}
	cmd.Printf("%s %s: %d chunks\n", verb, report.SourceName, report.Chunks)
	return nil
}
