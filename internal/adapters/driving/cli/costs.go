package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
	"github.com/vaultchat-labs/vaultchat-cli/internal/pricing"
)

var costsCmd = &cobra.Command{
	Use:   "costs [conversation-id]",
	Short: "Show conversation spend and budget",
	Long: `With a conversation id, shows that conversation's spend, budget, and
remaining headroom. With no argument, shows spend across all
conversations.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCosts,
}

var costsModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known models and their prices",
	RunE:  runCostsModels,
}

func init() {
	costsCmd.AddCommand(costsModelsCmd)
	rootCmd.AddCommand(costsCmd)
}

func runCosts(cmd *cobra.Command, args []string) error {
	if costService == nil || chatService == nil {
		return errors.New("cost service not configured")
	}

	if len(args) == 1 {
		costs, err := costService.ConversationCosts(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("no conversation %s", args[0])
			}
			return err
		}

		cmd.Printf("Spent:     $%.6f\n", costs.SpentUSD)
		if costs.BudgetUSD != nil {
			cmd.Printf("Budget:    $%.4f\n", *costs.BudgetUSD)
			cmd.Printf("Remaining: $%.6f\n", *costs.RemainingUSD)
		} else {
			cmd.Println("Budget:    none")
		}
		return nil
	}

	convs, err := chatService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing conversations: %w", err)
	}

	var total float64
	for _, c := range convs {
		total += c.Meta.SpentUSD
	}
	cmd.Printf("Total spent across %d conversations: $%.6f\n", len(convs), total)
	return nil
}

func runCostsModels(cmd *cobra.Command, _ []string) error {
	cmd.Printf("%-22s %-26s %12s %12s\n", "MODEL", "LABEL", "IN $/M", "OUT $/M")
	for _, e := range pricing.Catalog() {
		cmd.Printf("%-22s %-26s %12.2f %12.2f\n", e.ID, e.Label, e.InputUSDPerM, e.OutputUSDPerM)
	}
	return nil
}
