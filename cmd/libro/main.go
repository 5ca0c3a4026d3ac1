package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"libro/internal/platform/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "libro",
		Short: "libro - personal book library tools",
		Long: `libro manages a personal book library from the command line.

Examples:
  libro import --user 42 goodreads_library_export.csv
  libro export --user 42 --format xlsx -o library.xlsx
  libro token --user 42 --ttl 1h`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			if err := logger.Initialize(level, false); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(newImportCmd(), newExportCmd(), newTokenCmd())
	return root
}

func main() {
	defer logger.Sync()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
