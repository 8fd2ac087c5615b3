// Package report renders pipeline results as console tables.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rmgil/go-poker-metrics/internal/aggregate"
	"github.com/rmgil/go-poker-metrics/internal/model"
	"github.com/rmgil/go-poker-metrics/internal/partition"
	"github.com/rmgil/go-poker-metrics/internal/storage"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintRunSummary prints a one-line summary header for a parse run.
func PrintRunSummary(w io.Writer, s model.RunSummary) {
	fmt.Fprintf(w, "\nRun: %s  |  Created: %s  |  Files: %d  |  Hands: %d  |  Errors: %d\n\n",
		s.RunID, s.CreatedAt, s.Files, s.Hands, s.Errors)
}

// PrintRunsTable prints the stored runs, newest first.
func PrintRunsTable(w io.Writer, runs []model.RunSummary) {
	table := newTable(w)
	table.Header("RUN", "CREATED", "INPUT", "FILES", "HANDS", "ERRORS")

	for _, r := range runs {
		table.Append(
			r.RunID,
			r.CreatedAt,
			r.Input,
			strconv.Itoa(r.Files),
			strconv.Itoa(r.Hands),
			strconv.Itoa(r.Errors),
		)
	}
	table.Render()
}

// PrintHandsTable prints stored hand rows.
func PrintHandsTable(w io.Writer, rows []storage.HandRow) {
	table := newTable(w)
	table.Header("ID", "SITE", "TOURNEY", "MONTH", "MAX", "HERO", "CLASS", "FILE")

	for _, r := range rows {
		hero := r.Hero
		if hero == "" {
			hero = "—"
		}
		class := r.Class
		if class == "" {
			class = "—"
		}
		table.Append(
			r.ID,
			r.Site,
			r.TournamentID,
			r.Month,
			strconv.Itoa(r.TableMax),
			hero,
			class,
			r.FileID,
		)
	}
	table.Render()
}

// PrintHandDetail prints one hand's header fields and its action script,
// street by street.
func PrintHandDetail(w io.Writer, h *model.Hand) {
	fmt.Fprintf(w, "\nHand: %s  |  Site: %s  |  Tourney: %s  |  Month: %s  |  Class: %s\n",
		h.ID(), h.Site, h.TournamentID, h.MonthBucket(), orDash(string(h.Class)))
	fmt.Fprintf(w, "Table max: %d  |  Button: seat %d  |  Blinds: %.0f/%.0f (ante %.0f)  |  Hero: %s\n\n",
		h.TableMaxResolved(), h.ButtonSeat, h.Blinds.SB, h.Blinds.BB, h.Blinds.Ante, orDash(h.Hero))

	table := newTable(w)
	table.Header("SEAT", "PLAYER", "STACK", "HERO")
	for _, p := range h.Players {
		mark := " "
		if p.IsHero {
			mark = ">"
		}
		table.Append(strconv.Itoa(p.Seat), p.Name, fmt.Sprintf("%.0f", p.StackChips), mark)
	}
	table.Render()

	for _, name := range model.StreetNames {
		s := h.Street(name)
		if s == nil || (len(s.Actions) == 0 && len(s.Board) == 0) {
			continue
		}
		fmt.Fprintf(w, "\n%s", name)
		if len(s.Board) > 0 {
			fmt.Fprintf(w, "  [%s]", strings.Join(s.Board, " "))
		}
		fmt.Fprintln(w)
		for _, a := range s.Actions {
			if a.Amount > 0 {
				fmt.Fprintf(w, "  %-12s %s %.0f\n", a.Actor, a.Type, a.Amount)
			} else {
				fmt.Fprintf(w, "  %-12s %s\n", a.Actor, a.Type)
			}
		}
	}
	fmt.Fprintln(w)
}

// PrintMonthSiteSummary prints the month/site rollup of the stored hands.
func PrintMonthSiteSummary(w io.Writer, rows []storage.MonthSiteCount) {
	table := newTable(w)
	table.Header("MONTH", "SITE", "HANDS")
	for _, r := range rows {
		table.Append(r.Month, r.Site, strconv.Itoa(r.Hands))
	}
	table.Render()
}

// PrintPartitionTable prints the month/group partition counts, newest month
// first, with the per-group totals row at the bottom.
func PrintPartitionTable(w io.Writer, res *partition.Result) {
	months := make([]string, 0, len(res.Counts))
	for month := range res.Counts {
		months = append(months, month)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	table := newTable(w)
	header := make([]any, 0, len(partition.Groups)+1)
	header = append(header, "MONTH")
	for _, g := range partition.Groups {
		header = append(header, g)
	}
	table.Header(header...)

	for _, month := range months {
		row := []any{month}
		for _, g := range partition.Groups {
			b, ok := res.Counts[month][g]
			if !ok {
				row = append(row, "—")
				continue
			}
			row = append(row, strconv.Itoa(b.Hands))
		}
		table.Append(row...)
	}

	totals := []any{"TOTAL"}
	for _, g := range partition.Groups {
		totals = append(totals, strconv.Itoa(res.Totals[g]))
	}
	table.Append(totals...)
	table.Render()
}

// PrintStatCells prints persisted stat counters.
func PrintStatCells(w io.Writer, cells []storage.StatCell) {
	table := newTable(w)
	table.Header("MONTH", "GROUP", "STAT", "OPP", "ATT", "PCT")

	for _, c := range cells {
		pct := "—"
		if c.Opportunities > 0 {
			pct = fmt.Sprintf("%.2f%%", c.Percentage)
		}
		table.Append(
			c.Month,
			c.Group,
			c.Stat,
			strconv.Itoa(c.Opportunities),
			strconv.Itoa(c.Attempts),
			pct,
		)
	}
	table.Render()
}

// PrintDashboard prints the blended dashboard: one table per strategic group
// plus the headline score.
func PrintDashboard(w io.Writer, p *aggregate.Payload) {
	if !p.HasData {
		fmt.Fprintln(w, "No dashboard data: no hands with a parseable month.")
		return
	}

	fmt.Fprintf(w, "\nMonths: %v  |  Overall: %.2f (%s)\n", p.Months, p.Overall.Score, p.Overall.Grade)

	groups := make([]string, 0, len(p.Groups))
	for g := range p.Groups {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	for _, g := range groups {
		gr := p.Groups[g]
		if !gr.HasData {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", g)

		ids := make([]string, 0, len(gr.Stats))
		for id := range gr.Stats {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		table := newTable(w)
		table.Header("STAT", "OPP", "ATT", "PCT", "GRADE")
		for _, id := range ids {
			s := gr.Stats[id]
			table.Append(
				id,
				strconv.Itoa(s.Opportunities),
				strconv.Itoa(s.Attempts),
				fmt.Sprintf("%.2f%%", s.Percentage),
				s.Grade,
			)
		}
		table.Render()
	}
	fmt.Fprintln(w)
}

// PrintParseErrors prints a run's recoverable parse failures.
func PrintParseErrors(w io.Writer, errs []model.ParseErr) {
	if len(errs) == 0 {
		return
	}
	table := newTable(w)
	table.Header("FILE", "OFFSET", "REASON")
	for _, e := range errs {
		table.Append(e.FileID, strconv.Itoa(e.Offset), e.Reason)
	}
	table.Render()
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
