package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/andy/jumplog/internal/csvimport"
	"github.com/andy/jumplog/internal/domain"
	"github.com/andy/jumplog/internal/render"
	"github.com/andy/jumplog/internal/repository"
	"github.com/spf13/cobra"
)

var jumpsCmd = &cobra.Command{
	Use:   "jumps",
	Short: "Manage the logbook",
	Long:  `List, add, edit, delete and import jumps.`,
}

var jumpsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jumps",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		filter := repository.JumpFilter{}
		filter.DropZone, _ = cmd.Flags().GetString("dz")
		filter.WorkOnly, _ = cmd.Flags().GetBool("work")
		if cmd.Flags().Changed("status") {
			s, _ := cmd.Flags().GetString("status")
			filter.Status = domain.JumpBillingStatus(s)
		}
		if cmd.Flags().Changed("from") {
			s, _ := cmd.Flags().GetString("from")
			t, err := parseDate(s)
			if err != nil {
				return fmt.Errorf("invalid from date: %w", err)
			}
			filter.From = &t
		}
		if cmd.Flags().Changed("to") {
			s, _ := cmd.Flags().GetString("to")
			t, err := parseDate(s)
			if err != nil {
				return fmt.Errorf("invalid to date: %w", err)
			}
			filter.To = &t
		}

		jumps, err := appInstance.JumpService.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list jumps: %w", err)
		}

		if len(jumps) == 0 {
			fmt.Println("No jumps found")
			return nil
		}

		fmt.Printf("%-6s %-12s %-20s %-12s %-10s %-24s %-9s\n", "#", "Date", "Dropzone", "Aircraft", "Freefall", "Services", "Billing")
		fmt.Println("------------------------------------------------------------------------------------------------")

		var freefall int
		for _, j := range jumps {
			services := "-"
			if j.WorkJump {
				services = strings.Join(j.InvoiceItems, ",")
			}
			fmt.Printf("%-6d %-12s %-20s %-12s %-10s %-24s %-9s\n",
				j.JumpNumber,
				j.Date.Format("2006-01-02"),
				render.Truncate(j.DropZone, 20),
				render.Truncate(j.Aircraft, 12),
				render.Freefall(j.FreefallSeconds),
				render.Truncate(services, 24),
				j.InvoiceStatus,
			)
			freefall += j.FreefallSeconds
		}

		fmt.Println("------------------------------------------------------------------------------------------------")
		fmt.Printf("Total: %d jumps, %s freefall\n", len(jumps), render.Freefall(freefall))
		return nil
	},
}

var jumpsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a jump",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		j := &domain.Jump{}
		if !cmd.Flags().Changed("date") {
			j.Date, _ = parseDate("today")
		}
		if err := applyJumpFlags(cmd, j); err != nil {
			return err
		}

		saved, err := appInstance.JumpService.Save(ctx, j, "")
		if err != nil {
			return err
		}

		fmt.Printf("✓ Jump #%d logged at %s\n", saved.JumpNumber, saved.DropZone)
		if saved.WorkJump {
			fmt.Printf("  Services: %s\n", strings.Join(saved.InvoiceItems, ", "))
		}
		return nil
	},
}

var jumpsEditCmd = &cobra.Command{
	Use:   "edit [id_or_number]",
	Short: "Edit a jump",
	Long: `Edit the descriptive fields of a jump. Services that are already on an
invoice stay billed even if --services leaves them out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		existing, err := appInstance.JumpService.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if err := applyJumpFlags(cmd, existing); err != nil {
			return err
		}

		saved, err := appInstance.JumpService.Save(ctx, existing, existing.ID)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Jump #%d updated\n", saved.JumpNumber)
		return nil
	},
}

var jumpsDeleteCmd = &cobra.Command{
	Use:   "delete [id_or_number]",
	Short: "Delete a jump",
	Long: `Delete a jump from the logbook. Invoices that billed it keep their line
items.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		j, err := appInstance.JumpService.Get(ctx, args[0])
		if err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt(fmt.Sprintf("Delete jump #%d at %s?", j.JumpNumber, j.DropZone)) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.JumpService.Delete(ctx, j.ID); err != nil {
			return err
		}
		fmt.Printf("✓ Jump #%d deleted\n", j.JumpNumber)
		return nil
	},
}

var jumpsNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show or set the jump number sequence",
	Long: `Show the number the next jump will get. With --set, move the sequence so
the next jump is numbered after the given value.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if cmd.Flags().Changed("set") {
			n, _ := cmd.Flags().GetInt("set")
			if err := appInstance.JumpService.SetCurrentJumpNumber(ctx, n); err != nil {
				return err
			}
		}

		next, err := appInstance.JumpService.NextJumpNumber(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Next jump number: %d\n", next)
		return nil
	},
}

var jumpsImportCmd = &cobra.Command{
	Use:   "import [file.csv]",
	Short: "Import jump history from a CSV file",
	Long: `Import jumps from a CSV file with a header row. Date and dropzone columns
are required. Imported jumps count as billed outside jumplog and are never
offered to a new invoice.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		jumps, err := csvimport.Read(f)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if dryRun {
			fmt.Printf("%d jumps would be imported\n", len(jumps))
			return nil
		}

		n, err := appInstance.JumpService.Import(ctx, jumps)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Imported %d jumps\n", n)
		return nil
	},
}

// addJumpFlags registers the descriptive jump fields on cmd
func addJumpFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("number", 0, "Jump number (next in sequence when omitted)")
	f.String("date", "", "Jump date (YYYY-MM-DD, 'today', or 'yesterday')")
	f.String("dz", "", "Dropzone")
	f.String("aircraft", "", "Aircraft")
	f.String("type", "", "Jump type")
	f.Int("exit", 0, "Exit altitude in feet")
	f.Int("deploy", 0, "Deployment altitude in feet")
	f.Int("freefall", 0, "Freefall time in seconds")
	f.String("gear", "", "Gear used, comma separated")
	f.String("notes", "", "Notes")
	f.Bool("cutaway", false, "Reserve ride")
	f.Bool("work", false, "Work jump billed to the dropzone")
	f.String("customer", "", "Customer name for work jumps")
	f.String("services", "", "Billable services, comma separated (implies --work)")
}

// applyJumpFlags copies every flag the user set onto j
func applyJumpFlags(cmd *cobra.Command, j *domain.Jump) error {
	f := cmd.Flags()

	if f.Changed("date") {
		s, _ := f.GetString("date")
		t, err := parseDate(s)
		if err != nil {
			return fmt.Errorf("invalid date: %w", err)
		}
		j.Date = t
	}

	strs := map[string]*string{
		"dz":       &j.DropZone,
		"aircraft": &j.Aircraft,
		"type":     &j.JumpType,
		"notes":    &j.Notes,
		"customer": &j.CustomerName,
	}
	for name, dst := range strs {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}

	ints := map[string]*int{
		"number":   &j.JumpNumber,
		"exit":     &j.ExitAltitude,
		"deploy":   &j.DeploymentAltitude,
		"freefall": &j.FreefallSeconds,
	}
	for name, dst := range ints {
		if f.Changed(name) {
			*dst, _ = f.GetInt(name)
		}
	}

	if f.Changed("cutaway") {
		j.Cutaway, _ = f.GetBool("cutaway")
	}
	if f.Changed("work") {
		j.WorkJump, _ = f.GetBool("work")
	}
	if f.Changed("gear") {
		s, _ := f.GetString("gear")
		j.Gear = splitList(s)
	}
	if f.Changed("services") {
		s, _ := f.GetString("services")
		j.InvoiceItems = splitList(s)
		if len(j.InvoiceItems) > 0 {
			j.WorkJump = true
		}
	}
	return nil
}

func init() {
	jumpsCmd.AddCommand(jumpsListCmd)
	jumpsCmd.AddCommand(jumpsAddCmd)
	jumpsCmd.AddCommand(jumpsEditCmd)
	jumpsCmd.AddCommand(jumpsDeleteCmd)
	jumpsCmd.AddCommand(jumpsNextCmd)
	jumpsCmd.AddCommand(jumpsImportCmd)

	// List flags
	jumpsListCmd.Flags().String("dz", "", "Filter by dropzone")
	jumpsListCmd.Flags().String("status", "", "Filter by billing status (unbilled, draft, locked, sent, paid)")
	jumpsListCmd.Flags().Bool("work", false, "Only work jumps")
	jumpsListCmd.Flags().String("from", "", "From date (YYYY-MM-DD)")
	jumpsListCmd.Flags().String("to", "", "To date (YYYY-MM-DD)")

	addJumpFlags(jumpsAddCmd)
	jumpsAddCmd.MarkFlagRequired("dz")
	addJumpFlags(jumpsEditCmd)

	jumpsDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
	jumpsNextCmd.Flags().Int("set", 0, "Set the current jump number")
	jumpsImportCmd.Flags().Bool("dry-run", false, "Parse the file without saving")
}
