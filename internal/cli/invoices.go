package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/andy/jumplog/internal/domain"
	"github.com/andy/jumplog/internal/render"
	"github.com/andy/jumplog/internal/repository"
	"github.com/spf13/cobra"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Manage invoices",
	Long: `Create, review and advance invoices for work jumps.

An invoice moves draft -> locked -> sent -> paid. Each dropzone has at most
one draft at a time. Locked and sent invoices can be reopened as a draft.`,
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		filter := repository.InvoiceFilter{}
		filter.DropZone, _ = cmd.Flags().GetString("dz")
		if cmd.Flags().Changed("status") {
			s, _ := cmd.Flags().GetString("status")
			status := domain.InvoiceStatus(s)
			if !status.Valid() {
				return fmt.Errorf("unknown status %q", s)
			}
			filter.Status = status
		}

		invoices, err := appInstance.InvoiceService.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}

		if len(invoices) == 0 {
			fmt.Println("No invoices found")
			return nil
		}

		fmt.Printf("%-7s %-22s %-12s %-6s %-12s %-8s\n", "Number", "Dropzone", "Created", "Items", "Total", "Status")
		fmt.Println("-------------------------------------------------------------------------")

		for _, inv := range invoices {
			fmt.Printf("%-7d %-22s %-12s %-6d %-12s %-8s\n",
				inv.InvoiceNumber,
				render.Truncate(inv.DropZone, 22),
				inv.DateCreated.Format("2006-01-02"),
				len(inv.Items),
				render.Money(inv.Total),
				inv.Status,
			)
		}

		fmt.Printf("\nTotal: %d invoice(s)\n", len(invoices))
		return nil
	},
}

var invoicesCreateCmd = &cobra.Command{
	Use:   "create [dropzone] [jump ids or numbers...]",
	Short: "Create a draft invoice for a dropzone",
	Long: `Create a draft invoice billing every available service of the given
jumps. Without jumps, every work jump at the dropzone with unbilled services
is included. If the dropzone already has a draft, that draft is shown instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		dropZone := args[0]

		jumpIDs := make([]string, 0, len(args)-1)
		if len(args) > 1 {
			for _, ref := range args[1:] {
				j, err := appInstance.JumpService.Get(ctx, ref)
				if err != nil {
					return err
				}
				jumpIDs = append(jumpIDs, j.ID)
			}
		} else {
			available, err := appInstance.JumpService.Available(ctx, dropZone)
			if err != nil {
				return err
			}
			for _, j := range available {
				jumpIDs = append(jumpIDs, j.ID)
			}
		}

		res, err := appInstance.InvoiceService.CreateOrReview(ctx, dropZone, jumpIDs)
		if err != nil {
			return err
		}

		if !res.Created {
			fmt.Printf("Open invoice exists for %s, review it before creating another:\n\n", res.Invoice.DropZone)
			printInvoice(res.Invoice)
			return nil
		}

		fmt.Printf("✓ Draft invoice #%d created\n\n", res.Invoice.InvoiceNumber)
		printInvoice(res.Invoice)
		return nil
	},
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show [id_or_number]",
	Short: "Show invoice details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		inv, err := appInstance.InvoiceService.Get(ctx, args[0])
		if err != nil {
			return err
		}

		if text, _ := cmd.Flags().GetBool("text"); text {
			return render.WriteInvoiceText(os.Stdout, inv, appInstance.Config.Instructor)
		}
		printInvoice(inv)
		return nil
	},
}

var invoicesLockCmd = &cobra.Command{
	Use:   "lock [id_or_number]",
	Short: "Lock a draft invoice (services become invoiced)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(args[0], "locked", appInstance.InvoiceService.Lock)
	},
}

var invoicesSendCmd = &cobra.Command{
	Use:   "send [id_or_number]",
	Short: "Mark an invoice as sent and write the document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		inv, err := appInstance.InvoiceService.Get(ctx, args[0])
		if err != nil {
			return err
		}
		inv, err = appInstance.InvoiceService.Send(ctx, inv.ID)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Invoice #%d marked as sent\n", inv.InvoiceNumber)

		dir := appInstance.Config.Invoice.OutputDir
		if cmd.Flags().Changed("out") {
			dir, _ = cmd.Flags().GetString("out")
		}
		path, err := render.WriteInvoiceFile(dir, inv, appInstance.Config.Instructor)
		if err != nil {
			return fmt.Errorf("invoice sent but the document could not be written: %w", err)
		}
		fmt.Printf("  Document: %s\n", path)
		return nil
	},
}

var invoicesPayCmd = &cobra.Command{
	Use:   "pay [id_or_number]",
	Short: "Mark an invoice as paid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(args[0], "marked as paid", appInstance.InvoiceService.MarkPaid)
	},
}

var invoicesReopenCmd = &cobra.Command{
	Use:   "reopen [id_or_number]",
	Short: "Return a locked or sent invoice to draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(args[0], "reopened as a draft", appInstance.InvoiceService.Reopen)
	},
}

var invoicesDeleteCmd = &cobra.Command{
	Use:   "delete [id_or_number]",
	Short: "Delete a draft invoice and release its services",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		inv, err := appInstance.InvoiceService.Get(ctx, args[0])
		if err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt(fmt.Sprintf("Delete draft invoice #%d for %s?", inv.InvoiceNumber, inv.DropZone)) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.InvoiceService.DeleteOpen(ctx, inv.ID); err != nil {
			return err
		}
		fmt.Printf("✓ Invoice #%d deleted\n", inv.InvoiceNumber)
		return nil
	},
}

var invoicesHistoryCmd = &cobra.Command{
	Use:   "history [id_or_number]",
	Short: "Show the status history of an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		inv, err := appInstance.InvoiceService.Get(ctx, args[0])
		if err != nil {
			return err
		}
		events, err := appInstance.InvoiceService.History(ctx, inv.ID)
		if err != nil {
			return err
		}

		fmt.Printf("History for invoice #%d\n\n", inv.InvoiceNumber)
		for _, e := range events {
			from := string(e.FromStatus)
			if from == "" {
				from = "-"
			}
			to := string(e.ToStatus)
			if to == "" {
				to = "-"
			}
			fmt.Printf("  %s  %-7s %s -> %s\n", e.OccurredAt.Format("2006-01-02 15:04"), e.Action, from, to)
		}
		return nil
	},
}

// runTransition resolves ref and applies one status change to it
func runTransition(ref, done string, op func(context.Context, string) (*domain.Invoice, error)) error {
	ctx := context.Background()

	inv, err := appInstance.InvoiceService.Get(ctx, ref)
	if err != nil {
		return err
	}
	inv, err = op(ctx, inv.ID)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Invoice #%d %s\n", inv.InvoiceNumber, done)
	fmt.Printf("  Total: %s\n", render.Money(inv.Total))
	return nil
}

func printInvoice(inv *domain.Invoice) {
	fmt.Printf("Invoice #%d  %s  [%s]\n", inv.InvoiceNumber, inv.DropZone, inv.Status)
	fmt.Printf("Created: %s\n", inv.DateCreated.Format("2006-01-02"))
	if inv.DateLocked != nil {
		fmt.Printf("Locked:  %s\n", inv.DateLocked.Format("2006-01-02"))
	}
	if inv.DateSent != nil {
		fmt.Printf("Sent:    %s\n", inv.DateSent.Format("2006-01-02"))
	}
	if inv.DatePaid != nil {
		fmt.Printf("Paid:    %s\n", inv.DatePaid.Format("2006-01-02"))
	}

	fmt.Println()
	fmt.Printf("  %-6s %-12s %-18s %-12s %4s %10s\n", "Jump", "Date", "Customer", "Service", "Qty", "Amount")
	for _, item := range inv.Items {
		fmt.Printf("  %-6s %-12s %-18s %-12s %4d %10s\n",
			fmt.Sprintf("#%d", item.JumpNumber),
			item.Date.Format("2006-01-02"),
			render.Truncate(item.CustomerName, 18),
			render.Truncate(item.Service, 12),
			item.Quantity,
			render.Money(item.Total),
		)
	}
	fmt.Printf("\n  %56s %10s\n", "Total", render.Money(inv.Total))
}

func init() {
	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesCreateCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesLockCmd)
	invoicesCmd.AddCommand(invoicesSendCmd)
	invoicesCmd.AddCommand(invoicesPayCmd)
	invoicesCmd.AddCommand(invoicesReopenCmd)
	invoicesCmd.AddCommand(invoicesDeleteCmd)
	invoicesCmd.AddCommand(invoicesHistoryCmd)

	invoicesListCmd.Flags().String("dz", "", "Filter by dropzone")
	invoicesListCmd.Flags().String("status", "", "Filter by status (draft, locked, sent, paid)")

	invoicesShowCmd.Flags().Bool("text", false, "Print the invoice document")
	invoicesSendCmd.Flags().String("out", "", "Directory for the invoice document (defaults to invoice.output_dir)")
	invoicesDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
}
