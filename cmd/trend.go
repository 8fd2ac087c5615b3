package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rmgil/go-poker-metrics/internal/report"
	"github.com/rmgil/go-poker-metrics/internal/storage"
)

var trendRun string

var trendCmd = &cobra.Command{
	Use:   "trend <group> <stat>",
	Short: "Month-by-month trend of one stat in one strategic group",
	Args:  cobra.ExactArgs(2),
	RunE:  runTrend,
}

func init() {
	trendCmd.Flags().StringVar(&trendRun, "run", "", "run id (default: most recent run)")
}

func runTrend(cmd *cobra.Command, args []string) error {
	group, stat := args[0], args[1]

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	runID := trendRun
	if runID == "" {
		runs, err := db.ListRuns()
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stdout, "No runs stored yet.")
			return nil
		}
		runID = runs[0].RunID
	}

	cells, err := db.StatTrend(runID, group, stat)
	if err != nil {
		return fmt.Errorf("query trend: %w", err)
	}
	if len(cells) == 0 {
		fmt.Fprintf(os.Stdout, "No counters stored for %s/%s. Run 'pokermetrics stats' first.\n", group, stat)
		return nil
	}

	report.PrintStatCells(os.Stdout, cells)
	return nil
}
