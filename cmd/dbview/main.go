// Command dbview prints every table of the site database: its columns with
// their declared types, the row count, and every row.
//
// Usage:
//
//	dbview                      # reads instance/site.db
//	dbview --db /srv/site.db
//
// The database is opened read-only; dbview never creates or changes a file.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/burakyalinat/portfolio/internal/repository/sqlite"
)

const defaultDBPath = "instance/site.db"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:          "dbview",
		Short:        "Print the contents of the portfolio database",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, dbPath)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", defaultDBPath, "path to the SQLite database file")
	return cmd
}

func run(cmd *cobra.Command, dbPath string) error {
	if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("database file not found: %s", dbPath)
		}
		return err
	}

	db, err := sqlite.OpenReadOnly(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	tables, err := db.Inspect(cmd.Context())
	if err != nil {
		return err
	}

	printTables(cmd.OutOrStdout(), tables)
	return nil
}

func printTables(w io.Writer, tables []sqlite.TableDump) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "DATABASE CONTENTS")
	fmt.Fprintln(w, rule)

	if len(tables) == 0 {
		fmt.Fprintln(w, "No tables found.")
		return
	}

	for _, t := range tables {
		fmt.Fprintf(w, "\nTable: %s\n", t.Name)
		fmt.Fprintln(w, strings.Repeat("-", 60))

		fmt.Fprintln(w, "Columns:")
		names := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			names[i] = c.Name
			fmt.Fprintf(w, "  - %s (%s)\n", c.Name, c.Type)
		}

		fmt.Fprintf(w, "\nRows (%d):\n", len(t.Rows))
		if len(t.Rows) == 0 {
			fmt.Fprintln(w, "  (no rows)")
			continue
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(names, " | "))
		fmt.Fprintf(w, "  %s\n", strings.Repeat("-", 50))
		for _, row := range t.Rows {
			fmt.Fprintf(w, "  %s\n", strings.Join(row, " | "))
		}
	}

	fmt.Fprintln(w, "\n"+rule)
}
