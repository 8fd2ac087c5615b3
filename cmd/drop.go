package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rmgil/go-poker-metrics/internal/storage"
)

var dropForce bool

// dropCmd deletes one run, or the whole database when no run id is given.
var dropCmd = &cobra.Command{
	Use:   "drop [run-id]",
	Short: "Delete a stored run, or the whole database",
	Long: `With a run id, delete that run and its hands, parse errors and stat
counters. Without one, permanently delete the SQLite database file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		db, err := storage.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer db.Close()

		if err := db.DropRun(args[0]); err != nil {
			return fmt.Errorf("drop run: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Dropped run %s\n", args[0])
		return nil
	}

	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}
