// Package validate recounts the partitioned hand stream and checks it
// against the counts manifest, producing the integrity report consumed by
// downstream jobs.
package validate

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rmgil/go-poker-metrics/internal/model"
	"github.com/rmgil/go-poker-metrics/internal/partition"
	"github.com/rmgil/go-poker-metrics/internal/stats"
)

// Status values for the report summary.
const (
	StatusPassed = "PASSED"
	StatusFailed = "FAILED"
)

// Detail markers for differences beyond the plain recount.
const (
	DetailIDIndex  = "id index"
	DetailAttempts = "attempts exceed opportunities"
)

// Difference is one cell where the artifacts disagree. Stat and Detail are
// set only for the stat-manifest and id-index checks.
type Difference struct {
	Month    string `json:"month"`
	Group    string `json:"group"`
	Stat     string `json:"stat,omitempty"`
	Expected int    `json:"expected"`
	Actual   int    `json:"actual"`
	Detail   string `json:"detail,omitempty"`
}

// Summary is the report's headline block.
type Summary struct {
	TotalMonths       int      `json:"total_months"`
	TotalHandsInCount int      `json:"total_hands_in_counts"`
	GroupsWithData    []string `json:"groups_with_data"`
	ValidationStatus  string   `json:"validation_status"`
	DiscrepancyCount  int      `json:"discrepancy_count"`
}

// Report is the validation_report.json payload.
type Report struct {
	OK          bool         `json:"ok"`
	Differences []Difference `json:"differences"`
	Summary     Summary      `json:"summary"`
}

// Run recounts the hand stream at handsPath and compares every month/group
// cell against the manifest at countsPath, in both directions: cells the
// manifest overstates and cells it misses entirely both surface as
// differences. It also checks each manifest cell against its id index file
// and, when a stat manifest sits next to the counts manifest, that no stat
// cell records more attempts than opportunities.
func Run(handsPath, countsPath string) (*Report, error) {
	expected, err := loadCounts(countsPath)
	if err != nil {
		return nil, err
	}
	actual, err := recount(handsPath)
	if err != nil {
		return nil, err
	}

	r := &Report{}
	r.Differences = append(r.Differences, compare(expected, actual)...)

	dir := filepath.Dir(countsPath)
	r.Differences = append(r.Differences, checkIndexes(dir, expected)...)
	statDiffs, err := checkStatCounts(filepath.Join(dir, "stat_counts.json"))
	if err != nil {
		return nil, err
	}
	r.Differences = append(r.Differences, statDiffs...)

	finalize(r, expected)
	return r, nil
}

// WriteReport writes the report as indented JSON.
func WriteReport(path string, r *Report) error {
	buf, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	buf = append(buf, '\n')
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func loadCounts(path string) (*partition.Result, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read counts manifest: %w", err)
	}
	var res partition.Result
	if err := json.Unmarshal(buf, &res); err != nil {
		return nil, fmt.Errorf("decode counts manifest %s: %w", path, err)
	}
	return &res, nil
}

func recount(path string) (map[string]map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hand stream: %w", err)
	}
	defer f.Close()

	counts := make(map[string]map[string]int)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<20), 1<<24)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var h model.Hand
		if err := json.Unmarshal(line, &h); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		month := h.MonthBucket()
		for _, group := range partition.GroupsFor(&h) {
			cell := counts[month]
			if cell == nil {
				cell = make(map[string]int)
				counts[month] = cell
			}
			cell[group]++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return counts, nil
}

func compare(expected *partition.Result, actual map[string]map[string]int) []Difference {
	var diffs []Difference
	for month, cells := range expected.Counts {
		for group, bucket := range cells {
			if got := actual[month][group]; got != bucket.Hands {
				diffs = append(diffs, Difference{
					Month: month, Group: group, Expected: bucket.Hands, Actual: got,
				})
			}
		}
	}
	// Cells the manifest never mentions.
	for month, cells := range actual {
		for group, n := range cells {
			if _, ok := expected.Counts[month][group]; !ok && n > 0 {
				diffs = append(diffs, Difference{
					Month: month, Group: group, Expected: 0, Actual: n,
				})
			}
		}
	}
	return diffs
}

// checkIndexes verifies each manifest cell against its id index file. A
// missing index counts as zero ids.
func checkIndexes(dir string, expected *partition.Result) []Difference {
	var diffs []Difference
	for month, cells := range expected.Counts {
		for group, bucket := range cells {
			n := countIDs(filepath.Join(dir, "index", month+"__"+group+".ids"))
			if n != bucket.Hands {
				diffs = append(diffs, Difference{
					Month: month, Group: group,
					Expected: bucket.Hands, Actual: n, Detail: DetailIDIndex,
				})
			}
		}
	}
	return diffs
}

func countIDs(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if len(sc.Bytes()) > 0 {
			n++
		}
	}
	return n
}

// checkStatCounts flags stat cells recording more attempts than
// opportunities. A missing stat manifest means the stats stage has not run
// and is not an error.
func checkStatCounts(path string) ([]Difference, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read stat manifest: %w", err)
	}
	var man stats.Manifest
	if err := json.Unmarshal(buf, &man); err != nil {
		return nil, fmt.Errorf("decode stat manifest %s: %w", path, err)
	}

	var diffs []Difference
	for month, groups := range man.Counts {
		for group, cells := range groups {
			for stat, cell := range cells {
				if cell == nil {
					continue
				}
				if cell.Attempts > cell.Opportunities {
					diffs = append(diffs, Difference{
						Month: month, Group: group, Stat: stat,
						Expected: cell.Opportunities, Actual: cell.Attempts,
						Detail: DetailAttempts,
					})
				}
			}
		}
	}
	return diffs, nil
}

func finalize(r *Report, expected *partition.Result) {
	sort.Slice(r.Differences, func(i, j int) bool {
		a, b := r.Differences[i], r.Differences[j]
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		if a.Stat != b.Stat {
			return a.Stat < b.Stat
		}
		return a.Detail < b.Detail
	})

	groupsWithData := make(map[string]bool)
	total := 0
	for _, cells := range expected.Counts {
		for group, bucket := range cells {
			total += bucket.Hands
			if bucket.Hands > 0 {
				groupsWithData[group] = true
			}
		}
	}

	r.OK = len(r.Differences) == 0
	r.Summary = Summary{
		TotalMonths:       len(expected.Counts),
		TotalHandsInCount: total,
		GroupsWithData:    sortedKeys(groupsWithData),
		ValidationStatus:  StatusPassed,
		DiscrepancyCount:  len(r.Differences),
	}
	if !r.OK {
		r.Summary.ValidationStatus = StatusFailed
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
