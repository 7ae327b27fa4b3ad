package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driving"
)

var (
	chatModel  string
	chatBudget float64
	chatNoRAG  bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Manage conversations and ask questions",
}

var chatNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Start a new conversation",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChatNew,
}

var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	RunE:  runChatList,
}

var chatShowCmd = &cobra.Command{
	Use:   "show [conversation-id]",
	Short: "Show a conversation's history",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatShow,
}

var chatAskCmd = &cobra.Command{
	Use:   "ask [conversation-id] [prompt]",
	Short: "Ask a question in a conversation",
	Long: `Runs one retrieval-augmented turn: relevant vault chunks are folded
into the prompt, the model is called, and the cost is charged against
the conversation's budget. Use --no-rag to skip retrieval.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runChatAsk,
}

func init() {
	chatNewCmd.Flags().StringVarP(&chatModel, "model", "m", "", "model for the conversation (default from config)")
	chatNewCmd.Flags().Float64Var(&chatBudget, "budget", 0, "spending cap in USD (0 = config default)")
	chatAskCmd.Flags().BoolVar(&chatNoRAG, "no-rag", false, "skip knowledge-base retrieval")

	chatCmd.AddCommand(chatNewCmd)
	chatCmd.AddCommand(chatListCmd)
	chatCmd.AddCommand(chatShowCmd)
	chatCmd.AddCommand(chatAskCmd)
	rootCmd.AddCommand(chatCmd)
}

func runChatNew(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	title := "untitled"
	if len(args) == 1 {
		title = args[0]
	}

	model := chatModel
	if model == "" {
		model = settings.Chat.Model
	}

	conv, err := chatService.NewConversation(cmd.Context(), title, model)
	if err != nil {
		return fmt.Errorf("creating conversation: %w", err)
	}

	budget := chatBudget
	if budget == 0 {
		budget = settings.Chat.DefaultBudgetUSD
	}
	if budget > 0 {
		if err := costService.SetBudget(cmd.Context(), conv.ID, &budget); err != nil {
			return fmt.Errorf("setting budget: %w", err)
		}
	}

	cmd.Printf("Created conversation %s (model %s)\n", conv.ID, conv.Model)
	if budget > 0 {
		cmd.Printf("Budget: $%.4f\n", budget)
	}
	return nil
}

func runChatList(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	convs, err := chatService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing conversations: %w", err)
	}

	if len(convs) == 0 {
		cmd.Println("No conversations yet. Run 'vaultchat chat new' to start one.")
		return nil
	}

	cmd.Printf("%-38s %-20s %-16s %10s\n", "ID", "TITLE", "MODEL", "SPENT")
	for _, c := range convs {
		cmd.Printf("%-38s %-20s %-16s %10s\n",
			c.ID, truncate(c.Title, 20), c.Model, fmt.Sprintf("$%.4f", c.Meta.SpentUSD))
	}
	return nil
}

func runChatShow(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	conv, err := chatService.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no conversation %s", args[0])
		}
		return err
	}

	cmd.Printf("%s (%s)\n", conv.Title, conv.Model)
	if conv.Meta.BudgetUSD != nil {
		cmd.Printf("Spent $%.4f of $%.4f\n", conv.Meta.SpentUSD, *conv.Meta.BudgetUSD)
	} else {
		cmd.Printf("Spent $%.4f (no budget)\n", conv.Meta.SpentUSD)
	}
	cmd.Println()

	for _, m := range conv.Messages {
		cmd.Printf("[%s] %s\n\n", m.Role, m.Content)
	}
	return nil
}

func runChatAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	convID := args[0]
	prompt := strings.Join(args[1:], " ")

	opts := driving.AskOptions{
		RAGEnabled:  !chatNoRAG,
		Temperature: settings.Chat.Temperature,
	}
	if settings.Chat.SystemPrompt != "" {
		opts.SystemPrompts = []string{settings.Chat.SystemPrompt}
	}

	result, err := chatService.Ask(cmd.Context(), convID, prompt, opts)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOverBudget):
			return fmt.Errorf("conversation budget exhausted: %w", err)
		case errors.Is(err, domain.ErrLLMUnavailable):
			return errors.New("no chat backend configured (run 'vaultchat config key' or switch to ollama)")
		case errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("no conversation %s", convID)
		}
		return err
	}

	cmd.Println(result.Reply)

	if len(result.Citations) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, c := range result.Citations {
			cmd.Printf("  - %s (%.4f)\n", c.Source, c.Score)
			if c.Link != "" {
				cmd.Printf("    %s\n", c.Link)
			}
		}
	}

	cmd.Println()
	if result.Budget.BudgetUSD != nil {
		cmd.Printf("Cost: $%.6f | Spent: $%.4f of $%.4f\n",
			result.CostUSD, result.Budget.SpentUSD, *result.Budget.BudgetUSD)
	} else {
		cmd.Printf("Cost: $%.6f | Spent: $%.4f\n", result.CostUSD, result.Budget.SpentUSD)
	}
	return nil
}

// truncate shortens s for table display.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
