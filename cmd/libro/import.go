package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"libro/internal/auth"
	"libro/internal/importer"
)

type csvImporter interface {
	Import(ctx context.Context, sess auth.Session, r io.Reader, onProgress importer.ProgressFunc) (*importer.Result, error)
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a Goodreads or libro CSV export into a user's library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			return runImport(cmd.Context(), a.importer, auth.Session{UserID: userID, Role: auth.RoleUser}, f)
		},
	}
	cmd.Flags().String("user", "", "ID of the user whose library receives the books")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runImport(ctx context.Context, svc csvImporter, sess auth.Session, r io.Reader) error {
	var bar *pterm.ProgressbarPrinter
	onProgress := func(p importer.Progress) {
		if bar == nil {
			bar, _ = pterm.DefaultProgressbar.WithTotal(p.Total).WithTitle("Importing").Start()
		}
		if bar != nil {
			bar.Increment()
		}
	}

	result, err := svc.Import(ctx, sess, r, onProgress)
	if bar != nil {
		_, _ = bar.Stop()
	}
	if err != nil {
		pterm.Error.Printf("Import failed: %v\n", err)
		return err
	}

	pterm.Success.Printf("Imported %s\n", plural(result.Success, "book"))
	if len(result.Failed) > 0 {
		pterm.Warning.Printf("%s failed\n", plural(len(result.Failed), "row"))
		_ = pterm.DefaultTable.WithHasHeader().WithData(failureTable(result.Failed)).Render()
	}
	return nil
}

func failureTable(failed []importer.FailedRow) pterm.TableData {
	data := pterm.TableData{{"Row", "Error"}}
	for _, f := range failed {
		data = append(data, []string{strconv.Itoa(f.Row), f.Error})
	}
	return data
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
