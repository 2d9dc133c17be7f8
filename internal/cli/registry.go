package cli

import (
	"context"
	"fmt"

	"github.com/andy/jumplog/internal/domain"
	"github.com/spf13/cobra"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Manage dropzone, aircraft and jump type names",
	Long: `Manage the name lists offered when logging jumps. Kinds are dropzone,
aircraft and jumptype. Names are added automatically as jumps are logged.`,
}

var registryListCmd = &cobra.Command{
	Use:   "list [kind]",
	Short: "List names of a kind",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := domain.ParseRegistryKind(args[0])
		if err != nil {
			return err
		}

		names, err := appInstance.SettingsService.ListNames(context.Background(), kind)
		if err != nil {
			return err
		}

		if len(names) == 0 {
			fmt.Printf("No %s names\n", kind)
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var registryAddCmd = &cobra.Command{
	Use:   "add [kind] [name]",
	Short: "Add a name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := domain.ParseRegistryKind(args[0])
		if err != nil {
			return err
		}

		if err := appInstance.SettingsService.AddName(context.Background(), kind, args[1]); err != nil {
			return err
		}
		fmt.Printf("✓ Added %s %q\n", kind, args[1])
		return nil
	},
}

var registryRenameCmd = &cobra.Command{
	Use:   "rename [kind] [from] [to]",
	Short: "Rename a name everywhere it is used",
	Long: `Rename a name in the list and on every jump that uses it. If the new name
already exists the two merge. Invoices keep the dropzone name they were
issued under.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := domain.ParseRegistryKind(args[0])
		if err != nil {
			return err
		}

		n, err := appInstance.SettingsService.RenameName(context.Background(), kind, args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Renamed %s %q to %q (%d jumps updated)\n", kind, args[1], args[2], n)
		return nil
	},
}

func init() {
	registryCmd.AddCommand(registryListCmd)
	registryCmd.AddCommand(registryAddCmd)
	registryCmd.AddCommand(registryRenameCmd)
}
