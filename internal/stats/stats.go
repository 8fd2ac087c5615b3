// Package stats evaluates the stat catalog over parsed hands and writes the
// aggregation manifest with its per-cell id index files.
package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rmgil/go-poker-metrics/internal/derive"
	"github.com/rmgil/go-poker-metrics/internal/dsl"
	"github.com/rmgil/go-poker-metrics/internal/model"
	"github.com/rmgil/go-poker-metrics/internal/partition"
)

// IndexFiles points at the id lists backing one cell, relative to the output
// directory.
type IndexFiles struct {
	Opps     string `json:"opps"`
	Attempts string `json:"attempts"`
}

// Cell is one month/group/stat counter.
type Cell struct {
	Opportunities int        `json:"opportunities"`
	Attempts      int        `json:"attempts"`
	Percentage    float64    `json:"percentage"`
	IndexFiles    IndexFiles `json:"index_files"`
}

// Manifest is the stat_counts.json payload.
type Manifest struct {
	GeneratedAt    string                                 `json:"generated_at"`
	Input          string                                 `json:"input"`
	HandsProcessed int                                    `json:"hands_processed"`
	Errors         int                                    `json:"errors"`
	Counts         map[string]map[string]map[string]*Cell `json:"counts"`
}

// Engine runs every applicable stat over every hand it is fed. Attempts are
// evaluated only on hands that count as opportunities, so an attempt outside
// its opportunity can never be recorded. Not safe for concurrent use.
type Engine struct {
	outDir  string
	catalog *dsl.Catalog
	man     *Manifest
	ids     map[string][]string
}

// NewEngine returns a stat engine writing its artifacts under outDir.
func NewEngine(outDir, input string, catalog *dsl.Catalog) *Engine {
	return &Engine{
		outDir:  outDir,
		catalog: catalog,
		man: &Manifest{
			Input:  input,
			Counts: make(map[string]map[string]map[string]*Cell),
		},
		ids: make(map[string][]string),
	}
}

// Add evaluates every stat applicable to the hand's strategic groups.
func (e *Engine) Add(h *model.Hand) {
	e.man.HandsProcessed++

	ctx := derive.Context(h)
	month := h.MonthBucket()
	for _, group := range partition.GroupsFor(h) {
		for i := range e.catalog.Stats {
			s := &e.catalog.Stats[i]
			if !s.AppliesTo(group) || !s.Filters.Pass(ctx) {
				continue
			}
			if !s.Opportunity.Eval(ctx) {
				continue
			}
			cell := e.cell(month, group, s.ID)
			cell.Opportunities++
			e.record(month, group, s.ID, "opps", h.ID())
			if s.Attempt.Eval(ctx) {
				cell.Attempts++
				e.record(month, group, s.ID, "attempts", h.ID())
			}
		}
	}
}

// CountErrors folds the parse-error tally into the manifest.
func (e *Engine) CountErrors(n int) { e.man.Errors += n }

// Flush computes percentages, writes the id index files and stat_counts.json
// and returns the manifest.
func (e *Engine) Flush() (*Manifest, error) {
	e.man.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	for _, groups := range e.man.Counts {
		for _, cells := range groups {
			for _, cell := range cells {
				cell.Percentage = Percentage(cell.Attempts, cell.Opportunities)
			}
		}
	}

	idxDir := filepath.Join(e.outDir, "index")
	if err := os.MkdirAll(idxDir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	// Cells with no attempts still reference an attempts file; materialize
	// every referenced index as at least an empty file.
	for _, groups := range e.man.Counts {
		for _, cells := range groups {
			for _, cell := range cells {
				for _, key := range []string{cell.IndexFiles.Opps, cell.IndexFiles.Attempts} {
					if _, ok := e.ids[key]; !ok {
						e.ids[key] = nil
					}
				}
			}
		}
	}
	for key, ids := range e.ids {
		if err := partition.WriteIDFile(filepath.Join(e.outDir, key), ids); err != nil {
			return nil, err
		}
	}

	buf, err := json.MarshalIndent(e.man, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode stat manifest: %w", err)
	}
	buf = append(buf, '\n')
	path := filepath.Join(e.outDir, "stat_counts.json")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return e.man, nil
}

// Manifest returns the counters accumulated so far without writing anything.
func (e *Engine) Manifest() *Manifest { return e.man }

// Percentage is attempts over opportunities as a percentage rounded to two
// decimals, zero when there were no opportunities.
func Percentage(attempts, opportunities int) float64 {
	if opportunities == 0 {
		return 0
	}
	return math.Round(float64(attempts)/float64(opportunities)*10000) / 100
}

func (e *Engine) cell(month, group, stat string) *Cell {
	groups := e.man.Counts[month]
	if groups == nil {
		groups = make(map[string]map[string]*Cell)
		e.man.Counts[month] = groups
	}
	cells := groups[group]
	if cells == nil {
		cells = make(map[string]*Cell)
		groups[group] = cells
	}
	cell := cells[stat]
	if cell == nil {
		cell = &Cell{IndexFiles: IndexFiles{
			Opps:     indexPath(month, group, stat, "opps"),
			Attempts: indexPath(month, group, stat, "attempts"),
		}}
		cells[stat] = cell
	}
	return cell
}

func (e *Engine) record(month, group, stat, kind, id string) {
	key := indexPath(month, group, stat, kind)
	e.ids[key] = append(e.ids[key], id)
}

func indexPath(month, group, stat, kind string) string {
	return filepath.Join("index", month+"__"+group+"__"+stat+"__"+kind+".ids")
}
