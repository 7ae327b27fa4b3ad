package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List indexed sources",
	RunE:  runSourcesList,
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove a source and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesRemove,
}

func init() {
	sourcesCmd.AddCommand(sourcesRemoveCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	sources, err := ingestService.ListSources(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing sources: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No sources indexed yet. Run 'vaultchat ingest' to add some.")
		return nil
	}

	cmd.Printf("%-50s %8s  %s\n", "SOURCE", "CHUNKS", "ADDED")
	for _, s := range sources {
		added := ""
		if !s.AddedAt.IsZero() {
			added = s.AddedAt.Local().Format("2006-01-02 15:04")
		}
		cmd.Printf("%-50s %8d  %s\n", s.Name, s.ChunkCount, added)
	}
	return nil
}

func runSourcesRemove(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	deleted, err := ingestService.DeleteSource(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("removing source: %w", err)
	}
	if !deleted {
		cmd.Printf("No source named %q.\n", args[0])
		return nil
	}
	cmd.Printf("Removed %s.\n", args[0])
	return nil
}
