package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rmgil/go-poker-metrics/internal/report"
	"github.com/rmgil/go-poker-metrics/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored parse runs",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns()
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "No runs stored yet. Run 'pokermetrics parse <dir>' to add one.")
		return nil
	}

	report.PrintRunsTable(os.Stdout, runs)
	return nil
}
