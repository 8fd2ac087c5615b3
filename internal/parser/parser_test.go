package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmgil/go-poker-metrics/internal/model"
)

const psHand = `PokerStars Hand #251000001: Tournament #3540001, $10+$1 USD Hold'em No Limit - Level I (10/20) - 2025/08/04 09:26:37 UTC
Table '3540001 1' 9-max Seat #5 is the button
Seat 1: alpha (1500 in chips)
Seat 2: bravo (2300 in chips)
Seat 5: hero_one (5000 in chips)
alpha: posts small blind 10
bravo: posts big blind 20
*** HOLE CARDS ***
Dealt to hero_one [Ah Kd]
hero_one: raises 40 to 60
alpha: folds
bravo: calls 40
*** FLOP *** [2h 7d Jc]
bravo: checks
hero_one: bets 80
bravo: folds
Uncalled bet (80) returned to hero_one
*** SUMMARY ***
Total pot 250
`

const ggHand = `Poker Hand #TM123456: Tournament #987654, Bounty Hunters $5.25 Hold'em No Limit - Level3(150/300) - 2025/07/12 18:00:11
Table '12' 6-max Seat #3 is the button
Seat 1: e1f2 (9,500)
Seat 2: ggHero (12,000)
Seat 3: a9b8 (7,300)
e1f2: Small Blind 150
ggHero: Big Blind 300
*** HOLE CARDS ***
Dealt to ggHero [Qs Qd]
a9b8: Folds
e1f2: Raises 9,350 to 9,500 and is all-in
ggHero: Calls 9,200
*** FLOP *** [4c 9h Kd]
*** SUMMARY ***
`

const wpnHand = `Game Hand #4830021 - Tournament #12170461 - Holdem(No Limit) - Level 5 (250.00/500.00) - 2025/06/02 21:14:55 UTC
Table '5' 9 Max Seat #2 is the dealer
Seat 2: villain2 (15000.00)
Seat 4: wpnHero (22500.00)
Seat 7: villain7 (8000.00)
villain7: Posts small blind 250.00
villain2: Posts big blind 500.00
*** POCKET CARDS ***
Dealt to wpnHero [Jh Js]
wpnHero: Raises to 1500.00
villain7: Folds
villain2: Calls 1000.00
*** FLOP *** [2d 2s 8c]
villain2: Checks
wpnHero: Bets 1800.00
villain2: Folds
*** SUMMARY ***
`

const wmxHand = `Winamax Poker - Tournament "Kill The Fish" buyIn: 4.50 + 0.50 level: 2 - HandId: #1234567-89-1722772800 - Holdem no limit (15/30) - 2025/08/04 11:20:00 UTC
Table: 'Kill The Fish(1234567)#001' 6-max (real money) Seat #4 is the button
Seat 1: LeBron (5000)
Seat 3: BigFish (4880)
Seat 4: wmxHero (6100)
LeBron: posts small blind 15
BigFish: posts big blind 30
*** PRE-FLOP ***
Dealt to wmxHero [8h 8c]
wmxHero: relance à 90
LeBron: se couche
BigFish: suit 60
*** FLOP *** [5s 8d Qh]
BigFish: checke
wmxHero: mise 120
BigFish: fait tapis 4790
wmxHero: suit 4670
*** TURN *** [5s 8d Qh][2c]
*** RIVER *** [5s 8d Qh 2c][9s]
*** SHOW DOWN ***
`

const hand888 = `#Game No : 818741290
***** 888poker Hand History for Game 818741290 *****
Tournament #211500432 $2.50 + $0.25 - Mystery Bounty
5,000/10,000 Blinds No Limit Holdem - *** 04 08 2025 09:26:37
Table Voltera 9 Max (Real Money)
Seat 3 is the button
Total number of players : 3
Seat 1: pp8aa (1.500,00)
Seat 3: villain3 (22.000,00)
Seat 6: hero888 (9.750,00)
pp8aa posts small blind [5,000]
hero888 posts big blind [10,000]
** Dealing down cards **
Dealt to hero888 [Td Ts]
villain3 folds
pp8aa raises [20,000]
hero888 All-in
pp8aa calls [9,750]
** Summary **
`

const genHand = `Room Hand #55: Tournament #77, Daily Deep - 2025/05/01 12:00:00
Table 'x' 6-max Seat #2 is the button
Seat 1: aaa (400)
Seat 2: bbb (600)
aaa: posts small blind 10
bbb: posts big blind 20
*** HOLE CARDS ***
Dealt to bbb [2c 3c]
aaa: calls 10
bbb: checks
*** SUMMARY ***
`

func mustParse(t *testing.T, text string) *model.Hand {
	t.Helper()
	h, err := Parse(text, "f.txt", 0, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return h
}

func TestDetectSite(t *testing.T) {
	cases := []struct {
		text string
		want model.Site
	}{
		{psHand, model.SitePokerStars},
		{ggHand, model.SiteGG},
		{wpnHand, model.SiteWPN},
		{wmxHand, model.SiteWinamax},
		{hand888, model.Site888},
		{genHand, model.SiteOther},
		{"", model.SiteOther},
	}
	for _, c := range cases {
		if got := DetectSite(c.text); got != c.want {
			t.Errorf("DetectSite(%.25q) = %q, want %q", c.text, got, c.want)
		}
	}
}

func TestParsePokerStars(t *testing.T) {
	h := mustParse(t, psHand)

	if h.Site != model.SitePokerStars {
		t.Fatalf("site = %q", h.Site)
	}
	if h.TournamentID != "251000001" {
		t.Errorf("tournament id = %q", h.TournamentID)
	}
	if h.TimestampUTC != "2025-08-04 09:26:37" {
		t.Errorf("timestamp = %q", h.TimestampUTC)
	}
	if h.MonthBucket() != "2025-08" {
		t.Errorf("month = %q", h.MonthBucket())
	}
	if h.TableMax != 9 || h.ButtonSeat != 5 {
		t.Errorf("table/button = %d/%d", h.TableMax, h.ButtonSeat)
	}
	if len(h.Players) != 3 {
		t.Fatalf("players = %d", len(h.Players))
	}
	if h.Hero != "hero_one" {
		t.Errorf("hero = %q", h.Hero)
	}
	if p := h.PlayerByName("hero_one"); p == nil || !p.IsHero {
		t.Error("hero not flagged on roster")
	}
	if h.Blinds.SB != 10 || h.Blinds.BB != 20 {
		t.Errorf("blinds = %+v", h.Blinds)
	}

	pf := h.PreflopActions()
	if len(pf) != 5 {
		t.Fatalf("preflop actions = %d, want 5 (posts + 3 voluntary)", len(pf))
	}
	if pf[2].Type != model.ActionRaise || pf[2].Amount != 60 {
		t.Errorf("raise parsed as %+v, want to-amount 60", pf[2])
	}

	flop := h.Street(model.StreetFlop)
	if got := strings.Join(flop.Board, " "); got != "2h 7d Jc" {
		t.Errorf("flop board = %q", got)
	}
	if len(flop.Actions) != 3 {
		t.Errorf("flop actions = %d", len(flop.Actions))
	}
	if !h.HeadsUpFlop || h.PlayersToFlop != 2 {
		t.Errorf("players to flop = %d, heads up = %v", h.PlayersToFlop, h.HeadsUpFlop)
	}
	if h.AnyAllinPreflop {
		t.Error("no preflop all-in in fixture")
	}
}

func TestParseGG(t *testing.T) {
	h := mustParse(t, ggHand)

	if h.TournamentID != "TM123456" {
		t.Errorf("tournament id = %q", h.TournamentID)
	}
	if h.TableMax != 6 || h.ButtonSeat != 3 {
		t.Errorf("table/button = %d/%d", h.TableMax, h.ButtonSeat)
	}
	if h.Class != model.ClassPKO {
		t.Errorf("class = %q, want pko from Bounty Hunters title", h.Class)
	}
	if !h.AnyAllinPreflop {
		t.Error("all-in raise not detected preflop")
	}

	pf := h.PreflopActions()
	last := pf[len(pf)-1]
	if last.Actor != "ggHero" || last.Type != model.ActionCall {
		t.Errorf("last preflop action = %+v", last)
	}
	for _, a := range pf {
		if a.Actor == "e1f2" && a.Type == model.ActionAllIn {
			if a.Amount != 9500 {
				t.Errorf("all-in amount = %v", a.Amount)
			}
			return
		}
	}
	t.Error("e1f2's raise was not upgraded to all-in")
}

func TestParseWPN(t *testing.T) {
	h := mustParse(t, wpnHand)

	if h.TournamentID != "4830021" {
		t.Errorf("tournament id = %q", h.TournamentID)
	}
	if h.TournamentName != "Holdem(No Limit)" {
		t.Errorf("tournament name = %q", h.TournamentName)
	}
	if h.TableMax != 9 || h.ButtonSeat != 2 {
		t.Errorf("table/button = %d/%d, dealer keyword not handled", h.TableMax, h.ButtonSeat)
	}
	if h.Hero != "wpnHero" {
		t.Errorf("hero = %q", h.Hero)
	}

	pf := h.PreflopActions()
	var raise *model.Action
	for i := range pf {
		if pf[i].Type == model.ActionRaise {
			raise = &pf[i]
		}
	}
	if raise == nil || raise.Amount != 1500 {
		t.Fatalf("raises-to amount not captured: %+v", raise)
	}
	if h.RawOffsets.HoleCards < 0 {
		t.Error("POCKET CARDS marker not recognized as hole cards section")
	}
}

func TestParseWinamax(t *testing.T) {
	h := mustParse(t, wmxHand)

	if h.TournamentName != "Kill The Fish" {
		t.Errorf("tournament name = %q", h.TournamentName)
	}
	if h.TableMax != 6 || h.ButtonSeat != 4 {
		t.Errorf("table/button = %d/%d", h.TableMax, h.ButtonSeat)
	}

	pf := h.PreflopActions()
	kinds := make([]model.ActionType, 0, len(pf))
	for _, a := range pf {
		kinds = append(kinds, a.Type)
	}
	want := []model.ActionType{
		model.ActionPostSB, model.ActionPostBB,
		model.ActionRaise, model.ActionFold, model.ActionCall,
	}
	if len(kinds) != len(want) {
		t.Fatalf("preflop kinds = %v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("preflop kinds = %v, want %v", kinds, want)
		}
	}

	flop := h.Street(model.StreetFlop)
	var tapis *model.Action
	for i := range flop.Actions {
		if flop.Actions[i].Type == model.ActionAllIn {
			tapis = &flop.Actions[i]
		}
	}
	if tapis == nil || tapis.Actor != "BigFish" {
		t.Fatalf("fait tapis not parsed as all-in: %+v", flop.Actions)
	}
	if h.AnyAllinPreflop {
		t.Error("flop all-in must not set the preflop flag")
	}
	if got := strings.Join(h.Street(model.StreetTurn).Board, " "); got != "2c" {
		t.Errorf("turn board = %q, want only the new card", got)
	}
	if got := strings.Join(h.Street(model.StreetRiver).Board, " "); got != "9s" {
		t.Errorf("river board = %q, want only the new card", got)
	}
}

func TestParse888(t *testing.T) {
	h := mustParse(t, hand888)

	if h.TournamentID != "211500432" {
		t.Errorf("tournament id = %q", h.TournamentID)
	}
	if h.TimestampUTC != "2025-08-04 09:26:37" {
		t.Errorf("day-first timestamp = %q", h.TimestampUTC)
	}
	if h.Class != model.ClassMystery {
		t.Errorf("class = %q, want mystery from title", h.Class)
	}
	if h.TableMax != 9 || h.ButtonSeat != 3 {
		t.Errorf("table/button = %d/%d", h.TableMax, h.ButtonSeat)
	}

	p := h.PlayerByName("pp8aa")
	if p == nil || p.StackChips != 1500 {
		t.Fatalf("European stack not normalized: %+v", p)
	}
	if h.Hero != "hero888" {
		t.Errorf("hero = %q", h.Hero)
	}
	if !h.AnyAllinPreflop {
		t.Error("bare All-in line not detected")
	}

	for _, a := range h.PreflopActions() {
		if a.Actor == "pp8aa" && a.Type == model.ActionRaise && a.Amount != 20000 {
			t.Errorf("bracketed raise amount = %v", a.Amount)
		}
	}
}

func TestParseGenericFallback(t *testing.T) {
	h := mustParse(t, genHand)

	if h.Site != model.SiteOther {
		t.Fatalf("site = %q", h.Site)
	}
	if h.TournamentID != "55" {
		t.Errorf("tournament id = %q", h.TournamentID)
	}
	if h.ButtonSeat != 2 || h.TableMax != 6 {
		t.Errorf("table/button = %d/%d", h.TableMax, h.ButtonSeat)
	}
	if len(h.PreflopActions()) != 4 {
		t.Errorf("preflop actions = %d", len(h.PreflopActions()))
	}
}

func TestParseOffsets(t *testing.T) {
	const base = 1234
	h, err := Parse(psHand, "f.txt", base, model.SitePokerStars)
	if err != nil {
		t.Fatal(err)
	}
	offs := h.RawOffsets
	if offs.HandStart != base {
		t.Errorf("hand_start = %d", offs.HandStart)
	}
	if offs.HandEnd != base+len(psHand) {
		t.Errorf("hand_end = %d", offs.HandEnd)
	}
	wantHole := base + strings.Index(psHand, "*** HOLE CARDS ***")
	if offs.HoleCards != wantHole {
		t.Errorf("hole_cards offset = %d, want %d", offs.HoleCards, wantHole)
	}
	if offs.Flop <= offs.HoleCards || offs.Summary <= offs.Flop {
		t.Errorf("sections out of order: %+v", offs)
	}
	if offs.Turn != -1 || offs.River != -1 || offs.Showdown != -1 {
		t.Errorf("absent sections must stay -1: %+v", offs)
	}
}

func TestParseRecoverableErrors(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		reason string
	}{
		{
			"no seats",
			"PokerStars Hand #1: Tournament #2, X - 2025/01/01 00:00:00\nTable 'a' 9-max Seat #1 is the button\n*** HOLE CARDS ***\na: folds\n",
			"no seat lines matched",
		},
		{
			"no button",
			"PokerStars Hand #1: Tournament #2, X - 2025/01/01 00:00:00\nSeat 1: a (100 in chips)\nSeat 2: b (100 in chips)\n*** HOLE CARDS ***\na: folds\n",
			"button seat not found",
		},
		{
			"no preflop actions",
			"PokerStars Hand #1: Tournament #2, X - 2025/01/01 00:00:00\nTable 'a' 9-max Seat #1 is the button\nSeat 1: a (100 in chips)\nSeat 2: b (100 in chips)\n",
			"no preflop actions",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse(c.text, "f.txt", 77, model.SitePokerStars)
			pe, ok := err.(*model.ParseErr)
			if !ok {
				t.Fatalf("err = %v, want *model.ParseErr", err)
			}
			if pe.Reason != c.reason {
				t.Errorf("reason = %q, want %q", pe.Reason, c.reason)
			}
			if pe.Offset != 77 {
				t.Errorf("offset = %d", pe.Offset)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.txt")
	if err := os.WriteFile(path, []byte(psHand+"\n\n"+psHand), 0o644); err != nil {
		t.Fatal(err)
	}

	var hands []*model.Hand
	res, err := ParseFile(context.Background(), path, "", func(h *model.Hand, raw string) error {
		if raw == "" {
			t.Error("empty raw span")
		}
		hands = append(hands, h)
		return nil
	})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if res.Hands != 2 || len(hands) != 2 {
		t.Fatalf("hands = %d (emitted %d)", res.Hands, len(hands))
	}
	if res.Site != model.SitePokerStars {
		t.Errorf("site = %q", res.Site)
	}
	if len(res.Errors) != 0 {
		t.Errorf("errors = %v", res.Errors)
	}
	if hands[0].RawOffsets.HandStart == hands[1].RawOffsets.HandStart {
		t.Error("both hands share a start offset")
	}
	if hands[0].FileID != path {
		t.Errorf("file id = %q", hands[0].FileID)
	}
}

func TestParseFileEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, []byte("nothing to see\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := ParseFile(context.Background(), path, "", func(*model.Hand, string) error { return nil })
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if res.Hands != 0 || len(res.Errors) != 0 {
		t.Errorf("empty file produced hands=%d errors=%d", res.Hands, len(res.Errors))
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile(context.Background(), "/no/such/file", "", nil); err == nil {
		t.Fatal("expected error for missing file")
	}
}
