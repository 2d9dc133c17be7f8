package cli

import (
	"github.com/andy/jumplog/internal/app"
	"github.com/spf13/cobra"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "jumplog",
	Short: "A skydiving logbook with work-jump invoicing",
	Long: `Jumplog keeps your skydiving logbook and bills dropzones for work jumps.

By default, running jumplog without arguments launches the interactive TUI.
Use subcommands for CLI operations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch TUI
		return launchTUI(cmd, args)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

func init() {
	rootCmd.AddCommand(jumpsCmd)
	rootCmd.AddCommand(invoicesCmd)
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(registryCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(tuiCmd)
}
