package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rmgil/go-poker-metrics/internal/report"
	"github.com/rmgil/go-poker-metrics/internal/storage"
)

var showCmd = &cobra.Command{
	Use:   "show <run-id | hand-id-prefix>",
	Short: "Show a stored run's stat counts, or a hand by id prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	arg := args[0]

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	// A run id wins over a hand prefix; run ids are UUIDs, hand ids 16 hex
	// chars, so the two cannot collide.
	cells, err := db.GetStatCells(arg)
	if err != nil {
		return fmt.Errorf("query stat cells: %w", err)
	}
	if len(cells) > 0 {
		report.PrintStatCells(os.Stdout, cells)
		return nil
	}

	h, err := db.GetHandByPrefix(arg)
	if err != nil {
		return fmt.Errorf("query hand: %w", err)
	}
	if h == nil {
		fmt.Fprintf(os.Stderr, "No run or hand found matching %q\n", arg)
		return nil
	}

	report.PrintHandDetail(os.Stdout, h)
	return nil
}
