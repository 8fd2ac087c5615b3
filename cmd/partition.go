package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rmgil/go-poker-metrics/internal/model"
	"github.com/rmgil/go-poker-metrics/internal/partition"
	"github.com/rmgil/go-poker-metrics/internal/report"
)

var partitionOut string

var partitionCmd = &cobra.Command{
	Use:   "partition",
	Short: "Rebuild the partition manifests from a hand stream",
	Long: `Re-bucket hands.jsonl by month and strategic group and rewrite
partition_counts.json, nonko_combined.json and the per-cell id index files.
The parse command already does this; partition regenerates the artifacts
without reparsing the source files.`,
	Args: cobra.NoArgs,
	RunE: runPartition,
}

func init() {
	partitionCmd.Flags().StringVar(&partitionOut, "out", "output", "directory holding hands.jsonl; artifacts land there too")
}

func runPartition(cmd *cobra.Command, args []string) error {
	handsPath := filepath.Join(partitionOut, "hands.jsonl")
	engine := partition.NewEngine(partitionOut, handsPath)

	if err := streamHands(handsPath, func(h *model.Hand) error {
		engine.Add(h)
		return nil
	}); err != nil {
		return err
	}

	res, err := engine.Flush()
	if err != nil {
		return fmt.Errorf("write partition artifacts: %w", err)
	}

	report.PrintPartitionTable(os.Stdout, res)
	fmt.Fprintf(os.Stdout, "\nWrote %s\n", filepath.Join(partitionOut, "partition_counts.json"))
	return nil
}
