// Package aggregate folds a stat manifest into the dashboard payload: the
// most recent months are blended with decaying weights and each stat gets a
// letter grade. The fold is pure; writing the payload is the caller's job.
package aggregate

import (
	"math"
	"sort"

	"github.com/rmgil/go-poker-metrics/internal/partition"
	"github.com/rmgil/go-poker-metrics/internal/stats"
)

// MaxMonths is how many recent months feed the dashboard.
const MaxMonths = 3

// decayWeights by number of months included, most recent first.
var decayWeights = map[int][]float64{
	1: {1.00},
	2: {0.50, 0.50},
	3: {0.50, 0.30, 0.20},
}

// StatScore is one stat's blended result. Opportunities and attempts are the
// raw sums over the included months; the percentage is the decay-weighted
// blend.
type StatScore struct {
	Opportunities int     `json:"opportunities"`
	Attempts      int     `json:"attempts"`
	Percentage    float64 `json:"percentage"`
	Grade         string  `json:"grade"`
}

// GroupReport carries one strategic group's scores.
type GroupReport struct {
	HasData bool                  `json:"has_data"`
	Stats   map[string]*StatScore `json:"stats"`
}

// Overall is the blended headline score: the opportunity-weighted mean of
// every stat percentage.
type Overall struct {
	Score float64 `json:"score"`
	Grade string  `json:"grade"`
}

// Payload is the dashboard.json shape. WeightedScores holds one blended
// score per group with data, the combined non-KO preflop score and the
// overall score; Weights echoes the decay weights applied to the months,
// most recent first.
type Payload struct {
	GeneratedAt    string                  `json:"generated_at"`
	Months         []string                `json:"months"`
	Weights        []float64               `json:"weights"`
	HasData        bool                    `json:"has_data"`
	Overall        Overall                 `json:"overall"`
	Groups         map[string]*GroupReport `json:"groups"`
	WeightedScores map[string]float64      `json:"weighted_scores"`
}

// Build folds the manifest into a dashboard payload. The newest MaxMonths
// parseable months are blended with decay weights; the "unknown" month
// bucket never participates. A manifest with no usable months yields an
// empty payload with has_data false.
func Build(man *stats.Manifest) *Payload {
	p := &Payload{
		GeneratedAt:    man.GeneratedAt,
		Groups:         make(map[string]*GroupReport),
		WeightedScores: make(map[string]float64),
	}

	months := recentMonths(man)
	p.Months = months
	if len(months) == 0 {
		p.Overall.Grade = Grade(p.Overall.Score)
		return p
	}
	p.HasData = true
	weights := decayWeights[len(months)]
	p.Weights = weights

	groupNum := make(map[string]float64)
	groupDen := make(map[string]float64)
	var overallNum, overallDen float64
	for _, group := range groupsIn(man, months) {
		report := &GroupReport{Stats: make(map[string]*StatScore)}
		for _, stat := range statsIn(man, months, group) {
			score := blend(man, months, weights, group, stat)
			if score.Opportunities == 0 {
				continue
			}
			report.Stats[stat] = score
			report.HasData = true
			groupNum[group] += score.Percentage * float64(score.Opportunities)
			groupDen[group] += float64(score.Opportunities)
			overallNum += score.Percentage * float64(score.Opportunities)
			overallDen += float64(score.Opportunities)
		}
		if report.HasData {
			p.Groups[group] = report
			p.WeightedScores[group] = round2(groupNum[group] / groupDen[group])
		}
	}

	if den := groupDen[partition.GroupNonKO9Max] + groupDen[partition.GroupNonKO6Max]; den > 0 {
		num := groupNum[partition.GroupNonKO9Max] + groupNum[partition.GroupNonKO6Max]
		p.WeightedScores["nonko_combined"] = round2(num / den)
	}
	if overallDen > 0 {
		p.Overall.Score = round2(overallNum / overallDen)
	}
	p.Overall.Grade = Grade(p.Overall.Score)
	p.WeightedScores["overall"] = p.Overall.Score
	return p
}

// Grade maps a percentage score to a letter.
func Grade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	}
	return "E"
}

func blend(man *stats.Manifest, months []string, weights []float64, group, stat string) *StatScore {
	score := &StatScore{}
	var wOpps, wAtts float64
	for i, month := range months {
		cell := man.Counts[month][group][stat]
		if cell == nil {
			continue
		}
		score.Opportunities += cell.Opportunities
		score.Attempts += cell.Attempts
		wOpps += float64(cell.Opportunities) * weights[i]
		wAtts += float64(cell.Attempts) * weights[i]
	}
	if wOpps > 0 {
		score.Percentage = round2(wAtts / wOpps * 100)
	}
	score.Grade = Grade(score.Percentage)
	return score
}

// recentMonths returns the newest parseable months, descending, capped at
// MaxMonths.
func recentMonths(man *stats.Manifest) []string {
	var months []string
	for month := range man.Counts {
		if month == "unknown" {
			continue
		}
		months = append(months, month)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	if len(months) > MaxMonths {
		months = months[:MaxMonths]
	}
	return months
}

func groupsIn(man *stats.Manifest, months []string) []string {
	seen := make(map[string]bool)
	var groups []string
	for _, month := range months {
		for group := range man.Counts[month] {
			if !seen[group] {
				seen[group] = true
				groups = append(groups, group)
			}
		}
	}
	sort.Strings(groups)
	return groups
}

func statsIn(man *stats.Manifest, months []string, group string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, month := range months {
		for stat := range man.Counts[month][group] {
			if !seen[stat] {
				seen[stat] = true
				ids = append(ids, stat)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
