package cmd

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rmgil/go-poker-metrics/internal/hero"
	"github.com/rmgil/go-poker-metrics/internal/model"
	"github.com/rmgil/go-poker-metrics/internal/parser"
	"github.com/rmgil/go-poker-metrics/internal/partition"
	"github.com/rmgil/go-poker-metrics/internal/report"
	"github.com/rmgil/go-poker-metrics/internal/storage"
)

var (
	parseOut     string
	parseAliases string
	parseSite    string
	parseWorkers int
)

var parseCmd = &cobra.Command{
	Use:   "parse <file-or-dir>",
	Short: "Parse hand histories, partition them and store the run",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseOut, "out", "output", "directory for hands.jsonl and partition artifacts")
	parseCmd.Flags().StringVar(&parseAliases, "aliases", "", "hero alias YAML file")
	parseCmd.Flags().StringVar(&parseSite, "site", "", "force a room format instead of autodetecting")
	parseCmd.Flags().IntVar(&parseWorkers, "workers", 4, "max files parsed concurrently")
}

func runParse(cmd *cobra.Command, args []string) error {
	input := args[0]

	files, err := collectInputFiles(input)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stdout, "No hand-history files found.")
		return nil
	}

	var aliases *hero.Config
	if parseAliases != "" {
		aliases, err = hero.Load(parseAliases)
		if err != nil {
			return fmt.Errorf("load aliases: %w", err)
		}
	}

	if err := os.MkdirAll(parseOut, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}

	type fileOutput struct {
		res   *parser.FileResult
		hands []*model.Hand
	}
	outputs := make([]*fileOutput, len(files))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(parseWorkers)
	for i, path := range files {
		g.Go(func() error {
			out := &fileOutput{}
			res, err := parser.ParseFile(ctx, path, model.Site(parseSite), func(h *model.Hand, _ string) error {
				hero.Resolve(h, aliases)
				out.hands = append(out.hands, h)
				return nil
			})
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// An unreadable file skips only itself; the failure is
				// carried in the run as a file-level parse error.
				slog.Error("skipping file", "file", path, "error", err)
				out.hands = nil
				out.res = &parser.FileResult{
					FileID: path,
					Errors: []model.ParseErr{{FileID: path, Offset: -1, Reason: err.Error()}},
				}
				outputs[i] = out
				return nil
			}
			out.res = res
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Emit hands.jsonl and the partition artifacts in stable file order.
	handsPath := filepath.Join(parseOut, "hands.jsonl")
	f, err := os.Create(handsPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", handsPath, err)
	}
	defer f.Close()

	engine := partition.NewEngine(parseOut, input)
	enc := json.NewEncoder(f)

	var allHands []*model.Hand
	var allErrors []model.ParseErr
	for _, out := range outputs {
		allErrors = append(allErrors, out.res.Errors...)
		for _, h := range out.hands {
			if err := enc.Encode(h); err != nil {
				return fmt.Errorf("write hand: %w", err)
			}
			engine.Add(h)
			allHands = append(allHands, h)
		}
	}
	res, err := engine.Flush()
	if err != nil {
		return fmt.Errorf("write partition artifacts: %w", err)
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	run := model.RunSummary{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Input:     input,
		Files:     len(files),
		Hands:     len(allHands),
		Errors:    len(allErrors),
	}
	if err := db.InsertRun(run); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	if err := db.InsertHands(run.RunID, allHands); err != nil {
		return fmt.Errorf("insert hands: %w", err)
	}
	if err := db.InsertParseErrors(run.RunID, allErrors); err != nil {
		return fmt.Errorf("insert parse errors: %w", err)
	}

	report.PrintRunSummary(os.Stdout, run)
	report.PrintPartitionTable(os.Stdout, res)
	if len(allErrors) > 0 {
		fmt.Fprintf(os.Stdout, "\nSkipped hands:\n")
		report.PrintParseErrors(os.Stdout, allErrors)
	}
	fmt.Fprintf(os.Stdout, "\nWrote %s\n", handsPath)
	return nil
}

// collectInputFiles returns the hand-history files under the input path in
// sorted order. A file argument is returned as-is.
func collectInputFiles(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	var files []string
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".log":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", input, err)
	}
	sort.Strings(files)
	return files, nil
}
