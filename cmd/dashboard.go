package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rmgil/go-poker-metrics/internal/aggregate"
	"github.com/rmgil/go-poker-metrics/internal/report"
	"github.com/rmgil/go-poker-metrics/internal/stats"
)

var dashboardOut string

var dashboardCmd = &cobra.Command{
	Use:     "aggregate",
	Aliases: []string{"dashboard"},
	Short:   "Blend recent months into the graded dashboard payload",
	Long: `Fold stat_counts.json into dashboard.json: the most recent months are
blended with decaying weights and every stat gets a letter grade.`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardOut, "out", "output", "directory holding stat_counts.json; dashboard.json lands there too")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	manPath := filepath.Join(dashboardOut, "stat_counts.json")
	buf, err := os.ReadFile(manPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", manPath, err)
	}
	var man stats.Manifest
	if err := json.Unmarshal(buf, &man); err != nil {
		return fmt.Errorf("decode %s: %w", manPath, err)
	}

	payload := aggregate.Build(&man)

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dashboard: %w", err)
	}
	out = append(out, '\n')
	dashPath := filepath.Join(dashboardOut, "dashboard.json")
	if err := os.WriteFile(dashPath, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dashPath, err)
	}

	report.PrintDashboard(os.Stdout, payload)
	fmt.Fprintf(os.Stdout, "Wrote %s\n", dashPath)
	return nil
}
