package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rmgil/go-poker-metrics/internal/validate"
)

var validateOut string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Recount hands.jsonl against partition_counts.json",
	Long: `Independently recount the partitioned hand stream and compare it against
the partition manifest, in both directions. The id index files and the stat
manifest are cross-checked as well. Any discrepancy fails the run.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateOut, "out", "output", "directory holding hands.jsonl and partition_counts.json")
}

func runValidate(cmd *cobra.Command, args []string) error {
	handsPath := filepath.Join(validateOut, "hands.jsonl")
	countsPath := filepath.Join(validateOut, "partition_counts.json")

	r, err := validate.Run(handsPath, countsPath)
	if err != nil {
		return err
	}

	reportPath := filepath.Join(validateOut, "validation_report.json")
	if err := validate.WriteReport(reportPath, r); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Validation: %s  |  Months: %d  |  Hands: %d  |  Discrepancies: %d\n",
		r.Summary.ValidationStatus, r.Summary.TotalMonths, r.Summary.TotalHandsInCount, r.Summary.DiscrepancyCount)
	for _, d := range r.Differences {
		cell := d.Month + " / " + d.Group
		if d.Stat != "" {
			cell += " / " + d.Stat
		}
		if d.Detail != "" {
			fmt.Fprintf(os.Stdout, "  %s: %s (%d vs %d)\n", cell, d.Detail, d.Expected, d.Actual)
			continue
		}
		fmt.Fprintf(os.Stdout, "  %s: manifest says %d, recount says %d\n", cell, d.Expected, d.Actual)
	}
	fmt.Fprintf(os.Stdout, "Wrote %s\n", reportPath)

	if !r.OK {
		return fmt.Errorf("validation failed with %d discrepancies", r.Summary.DiscrepancyCount)
	}
	return nil
}
