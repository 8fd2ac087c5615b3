package aggregate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rmgil/go-poker-metrics/internal/dsl"
	"github.com/rmgil/go-poker-metrics/internal/model"
	"github.com/rmgil/go-poker-metrics/internal/partition"
	"github.com/rmgil/go-poker-metrics/internal/stats"
)

func manifest(cells map[string]map[string]map[string]*stats.Cell) *stats.Manifest {
	return &stats.Manifest{
		GeneratedAt: "2025-08-30T12:00:00Z",
		Input:       "hands.jsonl",
		Counts:      cells,
	}
}

func cell(opps, atts int) *stats.Cell {
	return &stats.Cell{
		Opportunities: opps,
		Attempts:      atts,
		Percentage:    stats.Percentage(atts, opps),
	}
}

func TestBuildSingleMonthMatchesRaw(t *testing.T) {
	man := manifest(map[string]map[string]map[string]*stats.Cell{
		"2025-08": {
			"NONKO_9MAX_PREF": {
				"rfi_early": cell(40, 10),
				"vpip":      cell(100, 22),
			},
		},
	})

	p := Build(man)
	if !p.HasData {
		t.Fatal("has_data false")
	}
	if diff := cmp.Diff([]string{"2025-08"}, p.Months); diff != "" {
		t.Fatalf("months (-want +got):\n%s", diff)
	}

	// A single month blends with weight 1.0, so the payload percentage is
	// exactly the raw monthly percentage.
	want := map[string]*StatScore{
		"rfi_early": {Opportunities: 40, Attempts: 10, Percentage: 25, Grade: "E"},
		"vpip":      {Opportunities: 100, Attempts: 22, Percentage: 22, Grade: "E"},
	}
	if diff := cmp.Diff(want, p.Groups["NONKO_9MAX_PREF"].Stats); diff != "" {
		t.Errorf("stats (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1.0}, p.Weights); diff != "" {
		t.Errorf("weights (-want +got):\n%s", diff)
	}
}

func TestBuildDecayWeighting(t *testing.T) {
	man := manifest(map[string]map[string]map[string]*stats.Cell{
		"2025-08": {"PKO_PREF": {"vpip": cell(100, 90)}},
		"2025-07": {"PKO_PREF": {"vpip": cell(100, 50)}},
		"2025-06": {"PKO_PREF": {"vpip": cell(100, 10)}},
	})

	p := Build(man)
	if diff := cmp.Diff([]string{"2025-08", "2025-07", "2025-06"}, p.Months); diff != "" {
		t.Fatalf("months (-want +got):\n%s", diff)
	}

	score := p.Groups["PKO_PREF"].Stats["vpip"]
	// (90*.5 + 50*.3 + 10*.2) / (100*.5 + 100*.3 + 100*.2) = 62%
	if score.Percentage != 62 {
		t.Errorf("percentage = %v, want 62", score.Percentage)
	}
	if score.Opportunities != 300 || score.Attempts != 150 {
		t.Errorf("raw sums = %d/%d", score.Attempts, score.Opportunities)
	}
	if score.Grade != "D" {
		t.Errorf("grade = %q", score.Grade)
	}
	if diff := cmp.Diff([]float64{0.50, 0.30, 0.20}, p.Weights); diff != "" {
		t.Errorf("weights (-want +got):\n%s", diff)
	}
}

func TestBuildCapsAtThreeMonths(t *testing.T) {
	man := manifest(map[string]map[string]map[string]*stats.Cell{
		"2025-08": {"PKO_PREF": {"vpip": cell(10, 5)}},
		"2025-07": {"PKO_PREF": {"vpip": cell(10, 5)}},
		"2025-06": {"PKO_PREF": {"vpip": cell(10, 5)}},
		"2025-05": {"PKO_PREF": {"vpip": cell(1000, 0)}},
	})

	p := Build(man)
	if len(p.Months) != 3 || p.Months[2] != "2025-06" {
		t.Fatalf("months = %v", p.Months)
	}
	if got := p.Groups["PKO_PREF"].Stats["vpip"].Opportunities; got != 30 {
		t.Errorf("opportunities = %d, the fourth month must not leak in", got)
	}
}

func TestBuildIgnoresUnknownMonth(t *testing.T) {
	man := manifest(map[string]map[string]map[string]*stats.Cell{
		"unknown": {"PKO_PREF": {"vpip": cell(10, 5)}},
	})
	p := Build(man)
	if p.HasData || len(p.Months) != 0 {
		t.Errorf("payload = %+v", p)
	}
	if p.Overall.Grade != "E" {
		t.Errorf("empty overall grade = %q", p.Overall.Grade)
	}
	if len(p.WeightedScores) != 0 || len(p.Weights) != 0 {
		t.Errorf("empty payload carries scores: %+v / %v", p.WeightedScores, p.Weights)
	}
}

func TestBuildWeightedScores(t *testing.T) {
	man := manifest(map[string]map[string]map[string]*stats.Cell{
		"2025-08": {
			partition.GroupNonKO9Max: {"vpip": cell(100, 30)},
			partition.GroupNonKO6Max: {"vpip": cell(50, 25)},
			partition.GroupPKO:       {"vpip": cell(10, 9)},
		},
	})

	p := Build(man)
	want := map[string]float64{
		partition.GroupNonKO9Max: 30,
		partition.GroupNonKO6Max: 50,
		partition.GroupPKO:       90,
		// (30*100 + 50*50) / 150 and (30*100 + 50*50 + 90*10) / 160.
		"nonko_combined": 36.67,
		"overall":        40,
	}
	if diff := cmp.Diff(want, p.WeightedScores); diff != "" {
		t.Errorf("weighted scores (-want +got):\n%s", diff)
	}
	if p.Overall.Score != 40 {
		t.Errorf("overall = %v", p.Overall.Score)
	}
}

func TestBuildNoNonKOCombinedWithoutNonKOData(t *testing.T) {
	man := manifest(map[string]map[string]map[string]*stats.Cell{
		"2025-08": {partition.GroupPKO: {"vpip": cell(10, 9)}},
	})
	p := Build(man)
	if _, ok := p.WeightedScores["nonko_combined"]; ok {
		t.Error("combined non-KO score emitted with no non-KO cells")
	}
	if p.WeightedScores[partition.GroupPKO] != 90 {
		t.Errorf("pko score = %v", p.WeightedScores[partition.GroupPKO])
	}
}

func TestBuildTwoMonthWeights(t *testing.T) {
	man := manifest(map[string]map[string]map[string]*stats.Cell{
		"2025-08": {"PKO_PREF": {"vpip": cell(100, 80)}},
		"2025-07": {"PKO_PREF": {"vpip": cell(100, 40)}},
	})
	score := Build(man).Groups["PKO_PREF"].Stats["vpip"]
	// Equal weights: (80*.5 + 40*.5) / 100 = 60%
	if score.Percentage != 60 {
		t.Errorf("percentage = %v, want 60", score.Percentage)
	}
}

func TestGrade(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{95, "A"}, {90, "A"}, {89.99, "B"}, {80, "B"},
		{75, "C"}, {65, "D"}, {59.99, "E"}, {0, "E"},
	}
	for _, c := range cases {
		if got := Grade(c.score); got != c.want {
			t.Errorf("Grade(%v) = %q, want %q", c.score, got, c.want)
		}
	}
}

// monthHand is a 9-max non-KO hand where the hero either open-raises from
// early position or folds, deep enough to clear the stack filters.
func monthHand(ts string, opens bool) *model.Hand {
	h := &model.Hand{
		Site:         model.SitePokerStars,
		TournamentID: "t9",
		FileID:       "sessions/nonko.txt",
		TimestampUTC: ts,
		TableMax:     9,
		ButtonSeat:   1,
		Hero:         "hero",
		Blinds:       model.Blinds{SB: 50, BB: 100},
	}
	names := []string{"p1", "p2", "p3", "hero", "p5", "p6", "p7", "p8", "p9"}
	for i, n := range names {
		h.Players = append(h.Players, model.Player{Seat: i + 1, Name: n, StackChips: 10000})
		h.PlayersDealtIn = append(h.PlayersDealtIn, n)
	}

	pre := &model.Street{}
	add := func(t model.ActionType, actor string, amount float64) {
		pre.Actions = append(pre.Actions, model.Action{Type: t, Actor: actor, Amount: amount})
	}
	add(model.ActionPostSB, "p2", 50)
	add(model.ActionPostBB, "p3", 100)
	if opens {
		add(model.ActionRaise, "hero", 250)
	} else {
		add(model.ActionFold, "hero", 0)
	}
	for _, n := range []string{"p5", "p6", "p7", "p8", "p9", "p1", "p2"} {
		add(model.ActionFold, n, 0)
	}
	h.Streets = map[string]*model.Street{model.StreetPreflop: pre}
	return h
}

func TestBuildMonthSubsetSymmetry(t *testing.T) {
	catalog, err := dsl.Default()
	if err != nil {
		t.Fatal(err)
	}

	hands := []*model.Hand{
		monthHand("2025-08-04 10:00:00", true),
		monthHand("2025-08-05 11:00:00", false),
		monthHand("2025-08-06 12:00:00", true),
		monthHand("2025-07-01 09:00:00", true),
		monthHand("2025-07-02 09:30:00", false),
	}

	mixed := stats.NewEngine(t.TempDir(), "hands.jsonl", catalog)
	for _, h := range hands {
		mixed.Add(h)
	}
	subset := stats.NewEngine(t.TempDir(), "hands.jsonl", catalog)
	for _, h := range hands {
		if h.MonthBucket() == "2025-08" {
			subset.Add(h)
		}
	}

	// The mixed run's August cells equal a run over the August hands alone.
	if diff := cmp.Diff(subset.Manifest().Counts["2025-08"], mixed.Manifest().Counts["2025-08"]); diff != "" {
		t.Fatalf("august cells (-subset +mixed):\n%s", diff)
	}

	// Slicing one month out of the mixed manifest and aggregating it gives
	// the same dashboard as aggregating the subset run.
	sliced := &stats.Manifest{
		Input:  mixed.Manifest().Input,
		Counts: map[string]map[string]map[string]*stats.Cell{"2025-08": mixed.Manifest().Counts["2025-08"]},
	}
	if diff := cmp.Diff(Build(subset.Manifest()), Build(sliced)); diff != "" {
		t.Errorf("payload (-subset +sliced):\n%s", diff)
	}

	score := Build(sliced).Groups[partition.GroupNonKO9Max].Stats["rfi_early"]
	if score == nil || score.Opportunities != 3 || score.Attempts != 2 {
		t.Fatalf("rfi_early = %+v", score)
	}
	if score.Percentage != stats.Percentage(2, 3) {
		t.Errorf("percentage = %v, want %v", score.Percentage, stats.Percentage(2, 3))
	}
}

func TestBuildOverall(t *testing.T) {
	man := manifest(map[string]map[string]map[string]*stats.Cell{
		"2025-08": {
			"PKO_PREF": {
				"vpip": cell(100, 90),
				"rfi":  cell(100, 90),
			},
		},
	})
	p := Build(man)
	if p.Overall.Score != 90 || p.Overall.Grade != "A" {
		t.Errorf("overall = %+v", p.Overall)
	}
}
