package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/andy/jumplog/internal/render"
	"github.com/spf13/cobra"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Manage service rates",
	Long: `Manage the price of each billable service. Jumps record the rate in force
when they are saved, so changing a rate never reprices logged jumps.`,
}

var ratesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List service rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		rates, err := appInstance.SettingsService.ListRates(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list rates: %w", err)
		}

		if len(rates) == 0 {
			fmt.Println("No rates configured")
			return nil
		}

		fmt.Printf("%-20s %10s\n", "Service", "Rate")
		fmt.Println("-------------------------------")
		for _, r := range rates {
			fmt.Printf("%-20s %10s\n", render.Truncate(r.Service, 20), render.Money(r.Rate))
		}
		return nil
	},
}

var ratesSetCmd = &cobra.Command{
	Use:   "set [service] [rate]",
	Short: "Set the rate for a service",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rate, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid rate: %w", err)
		}

		if err := appInstance.SettingsService.SetRate(context.Background(), args[0], rate); err != nil {
			return err
		}
		fmt.Printf("✓ %s: %s\n", args[0], render.Money(rate))
		return nil
	},
}

var ratesDeleteCmd = &cobra.Command{
	Use:   "delete [service]",
	Short: "Remove a service rate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.SettingsService.DeleteRate(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Rate for %s removed\n", args[0])
		return nil
	},
}

func init() {
	ratesCmd.AddCommand(ratesListCmd)
	ratesCmd.AddCommand(ratesSetCmd)
	ratesCmd.AddCommand(ratesDeleteCmd)
}
