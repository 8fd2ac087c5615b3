package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rmgil/go-poker-metrics/internal/storage"
)

var (
	exportRun    string
	exportMonths string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Re-emit stored hands as a JSONL stream",
	Long: `Export stored hand payloads as JSON Lines without reparsing the source
files, optionally filtered to specific month buckets.

Example:
  pokermetrics export --run <run-id> --months 2025-07,2025-08 --out hands.jsonl`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportRun, "run", "", "restrict to one run id")
	exportCmd.Flags().StringVar(&exportMonths, "months", "", `comma-separated month buckets ("YYYY-MM"); empty exports everything`)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout)")
}

func runExport(_ *cobra.Command, _ []string) error {
	var months []string
	for _, raw := range strings.Split(exportMonths, ",") {
		if m := strings.TrimSpace(raw); m != "" {
			months = append(months, m)
		}
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	out := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)

	var n int
	err = db.HandPayloads(exportRun, months, func(payload string) error {
		n++
		if _, err := w.WriteString(payload); err != nil {
			return err
		}
		return w.WriteByte('\n')
	})
	if err != nil {
		return fmt.Errorf("export hands: %w", err)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if exportOut != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d hands to %s\n", n, exportOut)
	}
	return nil
}
