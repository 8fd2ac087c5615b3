package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rmgil/go-poker-metrics/internal/dsl"
	"github.com/rmgil/go-poker-metrics/internal/model"
	"github.com/rmgil/go-poker-metrics/internal/report"
	"github.com/rmgil/go-poker-metrics/internal/stats"
	"github.com/rmgil/go-poker-metrics/internal/storage"
)

var (
	statsOut     string
	statsCatalog string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Evaluate the stat catalog over a parsed hand stream",
	Long: `Read hands.jsonl from the output directory, evaluate every catalog stat
per month and strategic group, and write stat_counts.json plus the per-cell
id index files. Counters are also persisted under the most recent run.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsOut, "out", "output", "directory holding hands.jsonl; artifacts land there too")
	statsCmd.Flags().StringVar(&statsCatalog, "catalog", "", "stat catalog YAML (default: embedded catalog)")
}

func runStats(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	handsPath := filepath.Join(statsOut, "hands.jsonl")
	engine := stats.NewEngine(statsOut, handsPath, catalog)

	if err := streamHands(handsPath, func(h *model.Hand) error {
		engine.Add(h)
		return nil
	}); err != nil {
		return err
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns()
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) > 0 {
		engine.CountErrors(runs[0].Errors)
	}

	man, err := engine.Flush()
	if err != nil {
		return fmt.Errorf("write stat artifacts: %w", err)
	}

	if len(runs) > 0 {
		if err := db.InsertStatCells(runs[0].RunID, man); err != nil {
			return fmt.Errorf("insert stat cells: %w", err)
		}
		cells, err := db.GetStatCells(runs[0].RunID)
		if err != nil {
			return fmt.Errorf("get stat cells: %w", err)
		}
		report.PrintStatCells(os.Stdout, cells)
	}

	fmt.Fprintf(os.Stdout, "\nProcessed %d hands, wrote %s\n",
		man.HandsProcessed, filepath.Join(statsOut, "stat_counts.json"))
	return nil
}

func loadCatalog() (*dsl.Catalog, error) {
	if statsCatalog == "" {
		return dsl.Default()
	}
	catalog, err := dsl.Load(statsCatalog)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return catalog, nil
}

// streamHands decodes hands.jsonl line by line.
func streamHands(path string, fn func(h *model.Hand) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<24)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var h model.Hand
		if err := json.Unmarshal(line, &h); err != nil {
			return fmt.Errorf("decode hand: %w", err)
		}
		if err := fn(&h); err != nil {
			return err
		}
	}
	return sc.Err()
}
