package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vaultchat-labs/vaultchat-cli/internal/adapters/driven/vaultfs"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
	"github.com/vaultchat-labs/vaultchat-cli/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the vault and re-index changed notes",
	Long: `Watches the configured vault directory and re-ingests markdown files
as they change, so the knowledge base tracks your notes while you edit.
Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if settings.Vault.Path == "" {
		return errors.New("no vault configured (run 'vaultchat config vault')")
	}

	watcher, err := vaultfs.New(settings.Vault.Path, 0)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	changes, err := watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	cmd.Printf("Watching %s (ctrl-c to stop)\n", settings.Vault.Path)

	for change := range changes {
		sourceName := domain.VaultPrefix + change.Path

		switch change.Kind {
		case vaultfs.ChangeRemoved:
			deleted, err := ingestService.DeleteSource(ctx, sourceName)
			if err != nil {
				logger.Error("Removing %s: %v", change.Path, err)
				continue
			}
			if deleted {
				cmd.Printf("Removed %s\n", change.Path)
			}

		case vaultfs.ChangeModified:
			data, err := os.ReadFile(filepath.Join(settings.Vault.Path, filepath.FromSlash(change.Path)))
			if err != nil {
				logger.Error("Reading %s: %v", change.Path, err)
				continue
			}
			report, err := ingestService.IngestText(ctx, sourceName, string(data))
			if err != nil {
				logger.Error("Re-indexing %s: %v", change.Path, err)
				continue
			}
			cmd.Printf("Re-indexed %s (%d chunks)\n", change.Path, report.Chunks)
		}
	}

	return nil
}
