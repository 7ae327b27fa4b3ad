package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
)

var budgetCmd = &cobra.Command{
	Use:   "budget [conversation-id] [amount-usd|off]",
	Short: "Set or clear a conversation's spending cap",
	Long: `Sets the conversation's budget in USD. Once spend reaches the budget,
further turns are refused before any model call is made. Use 'off' to
remove the cap.`,
	Args: cobra.ExactArgs(2),
	RunE: runBudget,
}

func init() {
	rootCmd.AddCommand(budgetCmd)
}

func runBudget(cmd *cobra.Command, args []string) error {
	if costService == nil {
		return errors.New("cost service not configured")
	}

	convID := args[0]

	if args[1] == "off" {
		if err := costService.SetBudget(cmd.Context(), convID, nil); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("no conversation %s", convID)
			}
			return err
		}
		cmd.Println("Budget removed.")
		return nil
	}

	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[1], err)
	}

	if err := costService.SetBudget(cmd.Context(), convID, &amount); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("no conversation %s", convID)
		case errors.Is(err, domain.ErrInvalidInput):
			return errors.New("budget must be non-negative")
		}
		return err
	}

	cmd.Printf("Budget set to $%.4f\n", amount)
	return nil
}
