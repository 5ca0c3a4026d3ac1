package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"libro/internal/auth"
	"libro/internal/collection"
)

type libraryLister interface {
	ListAll(ctx context.Context, sess auth.Session) ([]collection.Item, error)
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's library as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")
			format, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("output")

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			path, n, err := runExport(cmd.Context(), a.collection, auth.Session{UserID: userID, Role: auth.RoleUser},
				collection.ExportFormat(format), out, time.Now())
			if err != nil {
				return err
			}
			pterm.Success.Printf("Exported %s to %s\n", plural(n, "book"), path)
			return nil
		},
	}
	cmd.Flags().String("user", "", "ID of the user whose library is exported")
	cmd.Flags().String("format", string(collection.FormatCSV), "Output format: csv or xlsx")
	cmd.Flags().StringP("output", "o", "", "Output file (default: libro_library_export_<timestamp>.<format>)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// runExport writes the library to path, naming the file after now when path is empty.
func runExport(ctx context.Context, svc libraryLister, sess auth.Session, format collection.ExportFormat, path string, now time.Time) (string, int, error) {
	write := collection.WriteCSV
	switch format {
	case collection.FormatCSV:
	case collection.FormatXLSX:
		write = collection.WriteXLSX
	default:
		return "", 0, fmt.Errorf("unknown format %q, use csv or xlsx", format)
	}
	if path == "" {
		path = collection.ExportFilename(format, now)
	}

	items, err := svc.ListAll(ctx, sess)
	if err != nil {
		return "", 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}
	if err := write(f, items); err != nil {
		_ = f.Close()
		return "", 0, err
	}
	return path, len(items), f.Close()
}
