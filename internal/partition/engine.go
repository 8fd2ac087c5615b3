package partition

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rmgil/go-poker-metrics/internal/model"
)

// Bucket is one month/group cell of the counts manifest.
type Bucket struct {
	Hands int `json:"hands"`
}

// Result is the partition_counts.json manifest.
type Result struct {
	Input  string                       `json:"input"`
	Totals map[string]int               `json:"totals"`
	Counts map[string]map[string]Bucket `json:"counts"`
}

// NonKOCombined is one month's row of the non-KO rollup, summing the two
// preflop table-size groups.
type NonKOCombined struct {
	Hands9Max int `json:"hands_nonko_9max_pref"`
	Hands6Max int `json:"hands_nonko_6max_pref"`
	Total     int `json:"hands_nonko_pref_total"`
}

// Engine accumulates hands into month/group buckets and writes the
// partition artifacts. It is not safe for concurrent use; callers feed it
// from a single goroutine.
type Engine struct {
	outDir string
	result *Result
	ids    map[string][]string
}

// NewEngine returns a partitioner writing its artifacts under outDir.
func NewEngine(outDir, input string) *Engine {
	return &Engine{
		outDir: outDir,
		result: &Result{
			Input:  input,
			Totals: make(map[string]int),
			Counts: make(map[string]map[string]Bucket),
		},
		ids: make(map[string][]string),
	}
}

// Add buckets one hand. Hands that belong to no group are counted nowhere;
// hands with no parseable month land in the "unknown" month bucket.
func (e *Engine) Add(h *model.Hand) {
	month := h.MonthBucket()
	for _, group := range GroupsFor(h) {
		e.result.Totals[group]++
		cell := e.result.Counts[month]
		if cell == nil {
			cell = make(map[string]Bucket)
			e.result.Counts[month] = cell
		}
		cell[group] = Bucket{Hands: cell[group].Hands + 1}

		key := month + "__" + group
		e.ids[key] = append(e.ids[key], h.ID())
	}
}

// Flush writes partition_counts.json, the per-bucket id index files and
// nonko_combined.json, and returns the manifest.
func (e *Engine) Flush() (*Result, error) {
	idxDir := filepath.Join(e.outDir, "index")
	if err := os.MkdirAll(idxDir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	for key, ids := range e.ids {
		if err := WriteIDFile(filepath.Join(idxDir, key+".ids"), ids); err != nil {
			return nil, err
		}
	}

	if err := writeJSON(filepath.Join(e.outDir, "partition_counts.json"), e.result); err != nil {
		return nil, err
	}
	if err := writeJSON(filepath.Join(e.outDir, "nonko_combined.json"), e.combined()); err != nil {
		return nil, err
	}
	return e.result, nil
}

// Result returns the manifest accumulated so far without writing anything.
func (e *Engine) Result() *Result { return e.result }

func (e *Engine) combined() map[string]NonKOCombined {
	out := make(map[string]NonKOCombined, len(e.result.Counts))
	for month, cell := range e.result.Counts {
		row := NonKOCombined{
			Hands9Max: cell[GroupNonKO9Max].Hands,
			Hands6Max: cell[GroupNonKO6Max].Hands,
		}
		row.Total = row.Hands9Max + row.Hands6Max
		out[month] = row
	}
	return out
}

// WriteIDFile writes one hand id per line.
func WriteIDFile(path string, ids []string) error {
	var buf []byte
	for _, id := range ids {
		buf = append(buf, id...)
		buf = append(buf, '\n')
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write id index %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	buf = append(buf, '\n')
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
