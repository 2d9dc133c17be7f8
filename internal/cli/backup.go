package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/andy/jumplog/internal/service"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or restore all data as JSON",
}

var backupExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write a JSON backup (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var w io.Writer = os.Stdout
		if len(args) == 1 {
			f, err := os.OpenFile(args[0], os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		snap, err := appInstance.BackupService.Export(context.Background(), w)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			fmt.Printf("✓ Backed up %d jumps and %d invoices to %s\n", len(snap.Jumps), len(snap.Invoices), args[0])
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [file]",
	Short: "Replace all data with a JSON backup",
	Long: `Replace all data with a JSON backup. The backup is checked for billing
consistency first; --force restores it anyway.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt("This will replace ALL data with the backup. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		force, _ := cmd.Flags().GetBool("force")
		snap, err := appInstance.BackupService.Restore(context.Background(), f, service.RestoreOptions{Force: force})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Restored %d jumps and %d invoices\n", len(snap.Jumps), len(snap.Invoices))
		return nil
	},
}

func init() {
	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupRestoreCmd)

	backupRestoreCmd.Flags().Bool("force", false, "Restore even if the backup fails the consistency check")
	backupRestoreCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
}
