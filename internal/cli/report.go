package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/jumplog/internal/render"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show logbook and billing totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		s, err := appInstance.ReportService.Summary(ctx)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}

		fmt.Printf("Jumps:        %d (%d work, %d cutaways)\n", s.TotalJumps, s.WorkJumps, s.Cutaways)
		fmt.Printf("Freefall:     %s\n", render.Freefall(s.FreefallSeconds))
		if s.LastJump != nil {
			fmt.Printf("Last jump:    %s\n", s.LastJump.Format("2006-01-02"))
		}
		fmt.Println()
		fmt.Printf("Unbilled:     %s (%d jumps)\n", render.Money(s.Unbilled), s.UnbilledJumps)
		fmt.Printf("Draft:        %s\n", render.Money(s.Draft))
		fmt.Printf("Outstanding:  %s\n", render.Money(s.Outstanding))
		fmt.Printf("Paid:         %s\n", render.Money(s.Paid))

		if len(s.ByDropZone) > 0 {
			fmt.Println()
			fmt.Printf("%-22s %6s %6s %12s %12s %12s\n", "Dropzone", "Jumps", "Work", "Unbilled", "Outstanding", "Paid")
			fmt.Println("---------------------------------------------------------------------------")
			for _, d := range s.ByDropZone {
				fmt.Printf("%-22s %6d %6d %12s %12s %12s\n",
					render.Truncate(d.DropZone, 22),
					d.Jumps,
					d.WorkJumps,
					render.Money(d.Unbilled),
					render.Money(d.Outstanding),
					render.Money(d.Paid),
				)
			}
		}

		if cmd.Flags().Changed("year") {
			year, _ := cmd.Flags().GetInt("year")
			revenue, err := appInstance.ReportService.RevenueByMonth(ctx, year)
			if err != nil {
				return err
			}

			fmt.Printf("\nRevenue %d\n", year)
			var total float64
			for m := time.January; m <= time.December; m++ {
				fmt.Printf("  %-10s %12s\n", m, render.Money(revenue[m]))
				total += revenue[m]
			}
			fmt.Printf("  %-10s %12s\n", "Total", render.Money(total))
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().Int("year", 0, "Also show paid revenue by month for this year")
}
