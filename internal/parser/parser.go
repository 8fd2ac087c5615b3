// Package parser turns one detected hand span into a structured Hand record.
// It is polymorphic over the six supported room formats behind a single
// contract; the variant is picked by an explicit hint or by sniffing the
// span's header.
package parser

import (
	"regexp"
	"strings"

	"github.com/rmgil/go-poker-metrics/internal/model"
	"github.com/rmgil/go-poker-metrics/internal/textutil"
)

// SiteParser is the shared parsing contract. ParseHand consumes one hand's
// text span and returns a Hand with section offsets relative to the source
// file, or a recoverable *model.ParseErr.
type SiteParser interface {
	Site() model.Site
	Detect(text string) bool
	ParseHand(text, fileID string, baseOffset int) (*model.Hand, error)
}

// parsers in detection-priority order; the generic parser accepts anything
// and must stay last.
var parsers = []SiteParser{
	&pokerStarsParser{},
	&ggParser{},
	&wpnParser{},
	&winamaxParser{},
	&parser888{},
	&genericParser{},
}

// DetectSite sniffs the room format from the first part of a hand span.
func DetectSite(text string) model.Site {
	for _, p := range parsers {
		if p.Detect(text) {
			return p.Site()
		}
	}
	return model.SiteOther
}

// ForSite returns the parser variant for the given room. Unknown rooms fall
// back to the generic parser.
func ForSite(site model.Site) SiteParser {
	for _, p := range parsers {
		if p.Site() == site {
			return p
		}
	}
	return &genericParser{}
}

// Parse picks a variant for the span (using hint when not SiteOther) and
// parses it.
func Parse(text, fileID string, baseOffset int, hint model.Site) (*model.Hand, error) {
	var p SiteParser
	if hint != "" && hint != model.SiteOther {
		p = ForSite(hint)
	} else {
		p = ForSite(DetectSite(text))
	}
	return p.ParseHand(text, fileID, baseOffset)
}

// ---- Section offsets ----

// sectionMarkers maps each section to its marker variants across rooms.
var sectionMarkers = map[string][]*regexp.Regexp{
	"hole_cards": {
		regexp.MustCompile(`(?i)\*\*\*\s*HOLE\s*CARDS\s*\*\*\*`),
		regexp.MustCompile(`(?i)\*\*\*\s*POCKET\s*CARDS\s*\*\*\*`),
		regexp.MustCompile(`(?i)\*\*\*\s*PRE-?FLOP\s*\*\*\*`),
		regexp.MustCompile(`(?i)\*\*\s*Dealing\s+down\s+cards\s*\*\*`),
	},
	"flop": {
		regexp.MustCompile(`(?i)\*\*\*\s*FLOP\s*\*\*\*`),
		regexp.MustCompile(`(?i)\*\*\s*Dealing\s+flop\s*\*\*`),
	},
	"turn": {
		regexp.MustCompile(`(?i)\*\*\*\s*TURN\s*\*\*\*`),
		regexp.MustCompile(`(?i)\*\*\s*Dealing\s+turn\s*\*\*`),
	},
	"river": {
		regexp.MustCompile(`(?i)\*\*\*\s*RIVER\s*\*\*\*`),
		regexp.MustCompile(`(?i)\*\*\s*Dealing\s+river\s*\*\*`),
	},
	"showdown": {
		regexp.MustCompile(`(?i)\*\*\*\s*SHOW\s*DOWN\s*\*\*\*`),
		regexp.MustCompile(`(?i)\*\*\s*Showdown\s*\*\*`),
	},
	"summary": {
		regexp.MustCompile(`(?i)\*\*\*\s*SUMMARY\s*\*\*\*`),
		regexp.MustCompile(`(?i)\*\*\s*Summary\s*\*\*`),
	},
}

// extractOffsets locates the recognized sections of a hand span and returns
// their byte offsets relative to the source file.
func extractOffsets(text string, base int) model.RawOffsets {
	offs := model.NewRawOffsets()
	offs.HandStart = base
	offs.HandEnd = base + len(text)

	find := func(key string) int {
		for _, re := range sectionMarkers[key] {
			if loc := re.FindStringIndex(text); loc != nil {
				return base + loc[0]
			}
		}
		return -1
	}
	offs.HoleCards = find("hole_cards")
	offs.Flop = find("flop")
	offs.Turn = find("turn")
	offs.River = find("river")
	offs.Showdown = find("showdown")
	offs.Summary = find("summary")
	return offs
}

// ---- Shared street/action walk ----

// actionParser turns one raw line into an Action, or (nil, false) for lines
// that are not actions. Each variant supplies its own.
type actionParser func(line string) (*model.Action, bool)

var (
	bracketContentRe = regexp.MustCompile(`\[(.*?)\]`)
	allinMarkerRe    = regexp.MustCompile(`(?i)\ball[- ]?in\b`)
)

// classifyStreetLine reports which street a marker line opens, or "" for
// ordinary lines.
func classifyStreetLine(line string) string {
	for _, name := range []string{"flop", "turn", "river"} {
		for _, re := range sectionMarkers[name] {
			if re.MatchString(line) {
				return name
			}
		}
	}
	for _, re := range sectionMarkers["hole_cards"] {
		if re.MatchString(line) {
			return model.StreetPreflop
		}
	}
	for _, re := range sectionMarkers["showdown"] {
		if re.MatchString(line) {
			return "stop"
		}
	}
	for _, re := range sectionMarkers["summary"] {
		if re.MatchString(line) {
			return "stop"
		}
	}
	return ""
}

// emptyStreets returns the four streets, ready to be filled.
func emptyStreets() map[string]*model.Street {
	return map[string]*model.Street{
		model.StreetPreflop: {},
		model.StreetFlop:    {},
		model.StreetTurn:    {},
		model.StreetRiver:   {},
	}
}

// walkStreets runs the shared action walk. Before the hole-cards marker only
// forced posts are accepted (they precede the marker in every room's export);
// afterwards actions accumulate into the current street until a
// showdown/summary marker. Board cards are lifted from the street marker
// lines.
func walkStreets(h *model.Hand, lines []string, parseAction actionParser) {
	inHand := false
	current := model.StreetPreflop

	for _, line := range lines {
		switch street := classifyStreetLine(line); street {
		case model.StreetPreflop:
			inHand = true
			current = model.StreetPreflop
			continue
		case "flop", "turn", "river":
			inHand = true
			current = street
			if cards := parseBoardCards(line, street); len(cards) > 0 {
				h.Streets[street].Board = cards
			}
			continue
		case "stop":
			return
		}
		a, ok := parseAction(line)
		if !ok {
			continue
		}
		if !inHand {
			if a.Type.IsPost() {
				h.Streets[model.StreetPreflop].Actions = append(h.Streets[model.StreetPreflop].Actions, *a)
			}
			continue
		}
		h.Streets[current].Actions = append(h.Streets[current].Actions, *a)
	}
}

// parseBoardCards extracts the cards a street marker reveals. Rooms print
// the full board on turn/river lines, so only the new card is kept there.
func parseBoardCards(line, street string) []string {
	all := bracketContentRe.FindAllStringSubmatch(line, -1)
	var joined []string
	for _, g := range all {
		joined = append(joined, textutil.ParseCards(g[1])...)
	}
	switch street {
	case model.StreetTurn:
		if len(joined) >= 4 {
			return joined[3:4]
		}
	case model.StreetRiver:
		if len(joined) >= 5 {
			return joined[4:5]
		}
	}
	return joined
}

// finalize computes the derived flags every variant shares: dealt-in roster,
// preflop all-in flag, players to flop and the heads-up marker.
func finalize(h *model.Hand) {
	seen := make(map[string]bool, len(h.PlayersDealtIn))
	for _, n := range h.PlayersDealtIn {
		seen[n] = true
	}
	for _, a := range h.PreflopActions() {
		if !seen[a.Actor] {
			seen[a.Actor] = true
			h.PlayersDealtIn = append(h.PlayersDealtIn, a.Actor)
		}
		if a.Type == model.ActionAllIn {
			h.AnyAllinPreflop = true
		}
	}

	if flop := h.Street(model.StreetFlop); flop != nil && len(flop.Actions) > 0 {
		actors := make(map[string]bool)
		for _, a := range flop.Actions {
			if a.Type != model.ActionFold {
				actors[a.Actor] = true
			}
		}
		h.PlayersToFlop = len(actors)
	} else {
		folded := make(map[string]bool)
		for _, a := range h.PreflopActions() {
			if a.Type == model.ActionFold {
				folded[a.Actor] = true
			}
		}
		n := 0
		for _, name := range h.PlayersDealtIn {
			if !folded[name] {
				n++
			}
		}
		h.PlayersToFlop = n
	}
	h.HeadsUpFlop = h.PlayersToFlop == 2

	// Title markers outrank the bounty-notation hint a seat line may have set.
	if c := classFromTitle(h.TournamentName); c != "" {
		h.Class = c
	}
}

// classFromTitle tags the tournament class from bounty markers in the title.
// Mystery Bounty events are their own class and never count as plain PKO.
func classFromTitle(title string) model.TourneyClass {
	t := strings.ToLower(title)
	if t == "" {
		return ""
	}
	if strings.Contains(t, "mystery") {
		return model.ClassMystery
	}
	for _, k := range []string{"bounty", "knockout", "progressive ko", " ko ", "pko"} {
		if strings.Contains(t, k) {
			return model.ClassPKO
		}
	}
	return ""
}
