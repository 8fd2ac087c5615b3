package storage

import (
	"testing"

	"github.com/rmgil/go-poker-metrics/internal/model"
	"github.com/rmgil/go-poker-metrics/internal/partition"
	"github.com/rmgil/go-poker-metrics/internal/stats"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRun(id string) model.RunSummary {
	return model.RunSummary{
		RunID:     id,
		CreatedAt: "2025-08-10T12:00:00Z",
		Input:     "sessions/",
		Files:     2,
		Hands:     3,
		Errors:    1,
	}
}

func sampleHand(ts, tournament string, tableMax int) *model.Hand {
	h := &model.Hand{
		Site:           model.SitePokerStars,
		TournamentID:   tournament,
		TournamentName: "Sunday Special",
		FileID:         "sessions/plain.txt",
		TimestampUTC:   ts,
		ButtonSeat:     1,
		TableMax:       tableMax,
		Blinds:         model.Blinds{SB: 50, BB: 100, Ante: 12},
		Hero:           "hero",
		Players: []model.Player{
			{Seat: 1, Name: "villain", StackChips: 5000},
			{Seat: 2, Name: "hero", StackChips: 4200, IsHero: true},
		},
		PlayersDealtIn: []string{"villain", "hero"},
		Streets: map[string]*model.Street{
			model.StreetPreflop: {Actions: []model.Action{
				{Type: model.ActionPostSB, Actor: "villain", Amount: 50},
				{Type: model.ActionPostBB, Actor: "hero", Amount: 100},
				{Type: model.ActionRaise, Actor: "villain", Amount: 250},
				{Type: model.ActionFold, Actor: "hero"},
			}},
		},
		RawOffsets: model.NewRawOffsets(),
	}
	h.RawOffsets.HandStart = 0
	h.RawOffsets.HandEnd = 512
	return h
}

func TestInsertAndListRuns(t *testing.T) {
	db := openMemDB(t)

	if err := db.InsertRun(sampleRun("run-b")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	older := sampleRun("run-a")
	older.CreatedAt = "2025-07-01T08:00:00Z"
	if err := db.InsertRun(older); err != nil {
		t.Fatalf("insert: %v", err)
	}

	runs, err := db.ListRuns()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].RunID != "run-b" || runs[1].RunID != "run-a" {
		t.Errorf("order = %s, %s", runs[0].RunID, runs[1].RunID)
	}
	if runs[0].Hands != 3 || runs[0].Errors != 1 {
		t.Errorf("run = %+v", runs[0])
	}
}

func TestInsertRunIdempotent(t *testing.T) {
	db := openMemDB(t)

	run := sampleRun("run-1")
	if err := db.InsertRun(run); err != nil {
		t.Fatal(err)
	}
	run.Hands = 99
	if err := db.InsertRun(run); err != nil {
		t.Fatal(err)
	}

	runs, err := db.ListRuns()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Hands != 99 {
		t.Errorf("runs = %+v", runs)
	}
}

func TestInsertHandsRoundTrip(t *testing.T) {
	db := openMemDB(t)
	if err := db.InsertRun(sampleRun("run-1")); err != nil {
		t.Fatal(err)
	}

	h := sampleHand("2025-08-04 10:00:00", "t100", 9)
	if err := db.InsertHands("run-1", []*model.Hand{h}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	exists, err := db.HandExists(h.ID())
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Fatal("inserted hand not found")
	}

	got, err := db.GetHandByPrefix(h.ID()[:8])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("prefix lookup returned nil")
	}
	if got.ID() != h.ID() {
		t.Errorf("id = %s, want %s", got.ID(), h.ID())
	}
	if got.TournamentName != "Sunday Special" || got.Blinds.BB != 100 {
		t.Errorf("payload did not round trip: %+v", got)
	}
	if len(got.PreflopActions()) != 4 {
		t.Errorf("preflop actions = %d", len(got.PreflopActions()))
	}
}

func TestGetHandByPrefixMissing(t *testing.T) {
	db := openMemDB(t)
	got, err := db.GetHandByPrefix("deadbeef")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestInsertHandsIdempotent(t *testing.T) {
	db := openMemDB(t)
	if err := db.InsertRun(sampleRun("run-1")); err != nil {
		t.Fatal(err)
	}

	h := sampleHand("2025-08-04 10:00:00", "t100", 9)
	for i := 0; i < 2; i++ {
		if err := db.InsertHands("run-1", []*model.Hand{h}); err != nil {
			t.Fatalf("insert #%d: %v", i+1, err)
		}
	}

	rows, err := db.ListHands("", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want 1", len(rows))
	}
}

func TestListHandsFilters(t *testing.T) {
	db := openMemDB(t)
	if err := db.InsertRun(sampleRun("run-1")); err != nil {
		t.Fatal(err)
	}
	hands := []*model.Hand{
		sampleHand("2025-08-04 10:00:00", "t100", 9),
		sampleHand("2025-08-05 11:00:00", "t101", 6),
		sampleHand("2025-07-01 09:00:00", "t102", 9),
	}
	if err := db.InsertHands("run-1", hands); err != nil {
		t.Fatal(err)
	}

	rows, err := db.ListHands("", "2025-08", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("month filter: got %d rows", len(rows))
	}
	// Newest first.
	if rows[0].TournamentID != "t101" || rows[1].TournamentID != "t100" {
		t.Errorf("order = %s, %s", rows[0].TournamentID, rows[1].TournamentID)
	}

	rows, err = db.ListHands(string(model.SiteGG), "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("site filter: got %d rows", len(rows))
	}

	rows, err = db.ListHands("", "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("limit: got %d rows", len(rows))
	}
}

func TestSummaryByMonthSite(t *testing.T) {
	db := openMemDB(t)
	if err := db.InsertRun(sampleRun("run-1")); err != nil {
		t.Fatal(err)
	}
	hands := []*model.Hand{
		sampleHand("2025-08-04 10:00:00", "t100", 9),
		sampleHand("2025-08-05 11:00:00", "t101", 6),
		sampleHand("2025-07-01 09:00:00", "t102", 9),
	}
	if err := db.InsertHands("run-1", hands); err != nil {
		t.Fatal(err)
	}

	rows, err := db.SummaryByMonthSite()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Month != "2025-08" || rows[0].Hands != 2 {
		t.Errorf("row = %+v", rows[0])
	}
	if rows[1].Month != "2025-07" || rows[1].Hands != 1 {
		t.Errorf("row = %+v", rows[1])
	}
}

func TestStatCellsRoundTrip(t *testing.T) {
	db := openMemDB(t)
	if err := db.InsertRun(sampleRun("run-1")); err != nil {
		t.Fatal(err)
	}

	man := &stats.Manifest{
		Counts: map[string]map[string]map[string]*stats.Cell{
			"2025-08": {
				partition.GroupNonKO9Max: {
					"vpip":      {Opportunities: 100, Attempts: 24, Percentage: 24},
					"rfi_early": {Opportunities: 30, Attempts: 5, Percentage: 16.67},
				},
			},
		},
	}
	if err := db.InsertStatCells("run-1", man); err != nil {
		t.Fatalf("insert: %v", err)
	}

	cells, err := db.GetStatCells("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(cells))
	}
	// Ordered by stat within the group.
	if cells[0].Stat != "rfi_early" || cells[1].Stat != "vpip" {
		t.Errorf("order = %s, %s", cells[0].Stat, cells[1].Stat)
	}
	if cells[1].Opportunities != 100 || cells[1].Percentage != 24 {
		t.Errorf("cell = %+v", cells[1])
	}

	trend, err := db.StatTrend("run-1", partition.GroupNonKO9Max, "vpip")
	if err != nil {
		t.Fatal(err)
	}
	if len(trend) != 1 || trend[0].Attempts != 24 {
		t.Errorf("trend = %+v", trend)
	}
}

func TestParseErrorsRoundTrip(t *testing.T) {
	db := openMemDB(t)
	if err := db.InsertRun(sampleRun("run-1")); err != nil {
		t.Fatal(err)
	}

	errs := []model.ParseErr{
		{FileID: "sessions/a.txt", Offset: 77, Reason: "no seat lines matched"},
		{FileID: "sessions/b.txt", Offset: 1204, Reason: "button seat not found"},
	}
	if err := db.InsertParseErrors("run-1", errs); err != nil {
		t.Fatal(err)
	}

	got, err := db.ParseErrorsForRun("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d errors, want 2", len(got))
	}
	if got[0].Reason != "no seat lines matched" || got[1].Offset != 1204 {
		t.Errorf("errors = %+v", got)
	}
}

func TestHandPayloadsFiltered(t *testing.T) {
	db := openMemDB(t)
	if err := db.InsertRun(sampleRun("run-1")); err != nil {
		t.Fatal(err)
	}
	hands := []*model.Hand{
		sampleHand("2025-08-04 10:00:00", "t100", 9),
		sampleHand("2025-07-01 09:00:00", "t102", 9),
	}
	if err := db.InsertHands("run-1", hands); err != nil {
		t.Fatal(err)
	}

	var got []string
	err := db.HandPayloads("", []string{"2025-08"}, func(payload string) error {
		got = append(got, payload)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d payloads, want 1", len(got))
	}

	got = nil
	err = db.HandPayloads("run-1", nil, func(payload string) error {
		got = append(got, payload)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("run filter: got %d payloads, want 2", len(got))
	}

	months, err := db.MonthsWithHands()
	if err != nil {
		t.Fatal(err)
	}
	if len(months) != 2 || months[0] != "2025-08" {
		t.Errorf("months = %v", months)
	}
}

func TestDropRunCascades(t *testing.T) {
	db := openMemDB(t)
	if err := db.InsertRun(sampleRun("run-1")); err != nil {
		t.Fatal(err)
	}
	h := sampleHand("2025-08-04 10:00:00", "t100", 9)
	if err := db.InsertHands("run-1", []*model.Hand{h}); err != nil {
		t.Fatal(err)
	}

	if err := db.DropRun("run-1"); err != nil {
		t.Fatalf("drop: %v", err)
	}

	exists, err := db.HandExists(h.ID())
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("hand survived cascade delete")
	}

	if err := db.DropRun("run-1"); err == nil {
		t.Error("dropping a missing run must error")
	}
}
