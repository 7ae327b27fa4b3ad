package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vaultchat-labs/vaultchat-cli/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive chat UI",
	Long: `Launch the interactive terminal user interface for VaultChat.

The TUI provides a conversational view over your knowledge base:
type a prompt, get an answer grounded in your vault, and see which
notes it was drawn from.

Controls:
  Enter    - Send prompt
  PgUp/PgDn - Scroll the transcript
  Esc, ctrl+c - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Panic recovery so a crash leaves a usable stack trace instead of
	// a garbled terminal.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports := &tui.Ports{
		Chat:      chatService,
		Retrieval: retrievalService,
		Costs:     costService,
	}

	app, err := tui.NewApp(ports, tui.Options{
		SystemPrompt: settings.Chat.SystemPrompt,
		Temperature:  settings.Chat.Temperature,
		Model:        settings.Chat.Model,
		RAGEnabled:   llmService != nil && embedder != nil,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
