package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rmgil/go-poker-metrics/internal/report"
	"github.com/rmgil/go-poker-metrics/internal/storage"
)

var (
	handsSite  string
	handsMonth string
	handsLimit int
)

var handsCmd = &cobra.Command{
	Use:   "hands",
	Short: "List stored hands",
	Args:  cobra.NoArgs,
	RunE:  runHands,
}

func init() {
	handsCmd.Flags().StringVar(&handsSite, "site", "", "filter by room (pokerstars, gg, wpn, winamax, 888, other)")
	handsCmd.Flags().StringVar(&handsMonth, "month", "", `filter by month bucket ("YYYY-MM" or "unknown")`)
	handsCmd.Flags().IntVar(&handsLimit, "limit", 50, "max rows (0 = all)")
}

func runHands(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	rows, err := db.ListHands(handsSite, handsMonth, handsLimit)
	if err != nil {
		return fmt.Errorf("list hands: %w", err)
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "No hands matched.")
		return nil
	}

	report.PrintHandsTable(os.Stdout, rows)
	return nil
}
