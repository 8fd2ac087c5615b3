package parser

import (
	"regexp"
	"strings"

	"github.com/rmgil/go-poker-metrics/internal/model"
	"github.com/rmgil/go-poker-metrics/internal/textutil"
)

// ggParser handles the GG format. It is PokerStars-like but capitalizes
// action verbs, allows alphanumeric hand ids ("#TM123...") and prints blind
// posts without the "posts" verb.
type ggParser struct{}

var (
	ggDetectRe = regexp.MustCompile(`(?i)Poker\s+Hand\s+#\w+:|GGPoker`)
	ggHandRe   = regexp.MustCompile(`Hand\s*#(\w+)`)
	ggTournRe  = regexp.MustCompile(`Tournament\s*#(\w+)`)
	ggTitleRe  = regexp.MustCompile(`Tournament\s*#\w+,\s*([^-]+)`)
	ggTableRe  = regexp.MustCompile(`(\d+)-(?:max|handed)`)
	ggButtonRe = regexp.MustCompile(`(?:Seat|Button)\s*#(\d+)`)
	ggSeatRe   = regexp.MustCompile(`^Seat\s+(\d+):\s*([^(]+?)\s*\(([0-9,. ]+)(?:\s+in\s+chips)?\)`)
	ggDealtRe  = regexp.MustCompile(`Dealt\s+to\s+([^\[]+)`)

	ggSBRe   = regexp.MustCompile(`(?i)^([^:]+):\s*(?:posts?\s+)?Small\s+Blind\s+([0-9,. ]+)`)
	ggBBRe   = regexp.MustCompile(`(?i)^([^:]+):\s*(?:posts?\s+)?Big\s+Blind\s+([0-9,. ]+)`)
	ggAnteRe = regexp.MustCompile(`(?i)^([^:]+):\s*Ante\s+([0-9,. ]+)`)

	ggFoldRe  = regexp.MustCompile(`(?i)^([^:]+):\s*Folds?`)
	ggCheckRe = regexp.MustCompile(`(?i)^([^:]+):\s*Checks?`)
	ggCallRe  = regexp.MustCompile(`(?i)^([^:]+):\s*Calls?\s+([0-9,. ]+)`)
	ggBetRe   = regexp.MustCompile(`(?i)^([^:]+):\s*Bets?\s+([0-9,. ]+)`)
	ggRaiseRe = regexp.MustCompile(`(?i)^([^:]+):\s*Raises?\s+([0-9,. ]+)\s+to\s+([0-9,. ]+)`)
	ggAllinRe = regexp.MustCompile(`(?i)^([^:]+):\s*All-?in\s+([0-9,. ]+)`)
)

func (p *ggParser) Site() model.Site { return model.SiteGG }

func (p *ggParser) Detect(text string) bool {
	return ggDetectRe.MatchString(head(text))
}

func (p *ggParser) ParseHand(text, fileID string, baseOffset int) (*model.Hand, error) {
	lines := strings.Split(text, "\n")
	h := &model.Hand{
		Site:       model.SiteGG,
		FileID:     fileID,
		Streets:    emptyStreets(),
		RawOffsets: extractOffsets(text, baseOffset),
	}

	if len(lines) > 0 {
		header := lines[0]
		if m := ggHandRe.FindStringSubmatch(header); m != nil {
			h.TournamentID = m[1]
		}
		if m := ggTitleRe.FindStringSubmatch(header); m != nil {
			h.TournamentName = strings.TrimSpace(m[1])
		}
		h.TimestampUTC = textutil.ExtractTimestamp(header)
	}

	for _, line := range headLines(lines, 5) {
		if !strings.Contains(line, "Table") {
			continue
		}
		if m := ggTableRe.FindStringSubmatch(line); m != nil {
			h.TableMax = atoi(m[1])
		}
		if m := ggButtonRe.FindStringSubmatch(line); m != nil {
			h.ButtonSeat = atoi(m[1])
		}
		break
	}

	parseSeats(h, lines, ggSeatRe)
	if len(h.Players) == 0 {
		return nil, &model.ParseErr{FileID: fileID, Offset: baseOffset, Reason: "no seat lines matched"}
	}
	if h.ButtonSeat == 0 {
		return nil, &model.ParseErr{FileID: fileID, Offset: baseOffset, Reason: "button seat not found"}
	}

	parsePosts(h, lines, ggSBRe, ggBBRe, ggAnteRe)
	markDealtHero(h, lines, ggDealtRe)

	walkStreets(h, lines, ggActionLine)
	if len(h.PreflopActions()) == 0 {
		return nil, &model.ParseErr{FileID: fileID, Offset: baseOffset, Reason: "no preflop actions"}
	}
	finalize(h)
	return h, nil
}

func ggActionLine(line string) (*model.Action, bool) {
	if line == "" || strings.HasPrefix(line, "***") ||
		strings.HasPrefix(line, "Dealt to") || strings.HasPrefix(line, "Uncalled bet") {
		return nil, false
	}

	if m := ggSBRe.FindStringSubmatch(line); m != nil {
		return post(model.ActionPostSB, m[1], m[2]), true
	}
	if m := ggBBRe.FindStringSubmatch(line); m != nil {
		return post(model.ActionPostBB, m[1], m[2]), true
	}
	if m := ggAnteRe.FindStringSubmatch(line); m != nil {
		return post(model.ActionPostAnte, m[1], m[2]), true
	}

	// Explicit all-in line comes before the generic kinds.
	if m := ggAllinRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionAllIn, m[1], m[2], true), true
	}
	allin := allinMarkerRe.MatchString(line)
	if m := ggRaiseRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionRaise, m[1], m[3], allin), true
	}
	if m := ggCallRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionCall, m[1], m[2], allin), true
	}
	if m := ggBetRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionBet, m[1], m[2], allin), true
	}
	if m := ggCheckRe.FindStringSubmatch(line); m != nil {
		return &model.Action{Type: model.ActionCheck, Actor: textutil.NormalizePlayerName(m[1])}, true
	}
	if m := ggFoldRe.FindStringSubmatch(line); m != nil {
		return &model.Action{Type: model.ActionFold, Actor: textutil.NormalizePlayerName(m[1])}, true
	}
	return nil, false
}
