package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rmgil/go-poker-metrics/internal/report"
	"github.com/rmgil/go-poker-metrics/internal/storage"
)

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about the stored hands: run count, hand
counts rolled up by month and room, and recoverable parse errors of the
latest run.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
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

	var totalHands, totalErrors int
	for _, r := range runs {
		totalHands += r.Hands
		totalErrors += r.Errors
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Runs stored   : %d\n", len(runs))
	fmt.Fprintf(os.Stdout, "  Latest run    : %s (%s)\n", runs[0].RunID, runs[0].CreatedAt)
	fmt.Fprintf(os.Stdout, "  Hands parsed  : %d\n", totalHands)
	fmt.Fprintf(os.Stdout, "  Parse errors  : %d\n", totalErrors)

	rollup, err := db.SummaryByMonthSite()
	if err != nil {
		return fmt.Errorf("summary rollup: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Hands by Month and Room ---\n\n")
	report.PrintMonthSiteSummary(os.Stdout, rollup)

	errs, err := db.ParseErrorsForRun(runs[0].RunID)
	if err != nil {
		return fmt.Errorf("parse errors: %w", err)
	}
	if len(errs) > 0 {
		fmt.Fprintf(os.Stdout, "\n--- Latest Run Parse Errors ---\n\n")
		report.PrintParseErrors(os.Stdout, errs)
	}
	return nil
}
