package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete ALL data: jumps, invoices, rates, everything",
	Long: `Delete all data in the database. The schema and your encryption key are
kept. Take a backup first with 'jumplog backup export'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt("This will delete ALL data (jumps, invoices, rates, everything). Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.Reset(context.Background()); err != nil {
			return fmt.Errorf("failed to reset: %w", err)
		}

		fmt.Println("All data has been deleted.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
}
