package parser

import (
	"regexp"
	"strings"

	"github.com/rmgil/go-poker-metrics/internal/model"
	"github.com/rmgil/go-poker-metrics/internal/textutil"
)

// pokerStarsParser handles the PokerStars format:
//
//	PokerStars Hand #251000001: Tournament #3540001, $10+$1 USD Hold'em No Limit - Level I (10/20) - 2025/08/04 09:26:37 UTC
//	Table '3540001 1' 9-max Seat #5 is the button
//	Seat 1: alpha (1500 in chips)
type pokerStarsParser struct{}

var (
	psDetectRe  = regexp.MustCompile(`(?i)PokerStars\s+(Hand|Zoom Hand|Game)`)
	psHandRe    = regexp.MustCompile(`Hand\s*#(\d+)`)
	psTournRe   = regexp.MustCompile(`Tournament\s*#\d+,\s*([^-]+)`)
	psTournIDRe = regexp.MustCompile(`Tournament\s*#(\d+)`)
	psTableRe   = regexp.MustCompile(`(\d+)-max`)
	psButtonRe  = regexp.MustCompile(`Seat\s*#(\d+)\s+is\s+the\s+button`)
	psSeatRe    = regexp.MustCompile(`^Seat\s+(\d+):\s*([^(]+?)\s*\(([0-9,. ]+)\s+in\s+chips`)
	psDealtRe   = regexp.MustCompile(`Dealt\s+to\s+([^\[]+)`)

	psSBRe   = regexp.MustCompile(`^([^:]+):\s*posts?\s+small\s+blind\s+([0-9,. ]+)`)
	psBBRe   = regexp.MustCompile(`^([^:]+):\s*posts?\s+big\s+blind\s+([0-9,. ]+)`)
	psAnteRe = regexp.MustCompile(`^([^:]+):\s*posts?\s+(?:the\s+)?ante\s+([0-9,. ]+)`)

	psFoldRe  = regexp.MustCompile(`^([^:]+):\s*folds?`)
	psCheckRe = regexp.MustCompile(`^([^:]+):\s*checks?`)
	psCallRe  = regexp.MustCompile(`^([^:]+):\s*calls?\s+([0-9,. ]+)`)
	psBetRe   = regexp.MustCompile(`^([^:]+):\s*bets?\s+([0-9,. ]+)`)
	psRaiseRe = regexp.MustCompile(`^([^:]+):\s*raises?\s+([0-9,. ]+)\s+to\s+([0-9,. ]+)`)
)

func (p *pokerStarsParser) Site() model.Site { return model.SitePokerStars }

func (p *pokerStarsParser) Detect(text string) bool {
	return psDetectRe.MatchString(head(text))
}

func (p *pokerStarsParser) ParseHand(text, fileID string, baseOffset int) (*model.Hand, error) {
	lines := strings.Split(text, "\n")
	h := &model.Hand{
		Site:       model.SitePokerStars,
		FileID:     fileID,
		Streets:    emptyStreets(),
		RawOffsets: extractOffsets(text, baseOffset),
	}

	if len(lines) > 0 {
		header := lines[0]
		if m := psHandRe.FindStringSubmatch(header); m != nil {
			h.TournamentID = m[1]
		}
		if m := psTournRe.FindStringSubmatch(header); m != nil {
			h.TournamentName = strings.TrimSpace(m[1])
		} else if m := psTournIDRe.FindStringSubmatch(header); m != nil && h.TournamentID == "" {
			h.TournamentID = m[1]
		}
		h.TimestampUTC = textutil.ExtractTimestamp(header)
	}

	for _, line := range headLines(lines, 5) {
		if !strings.Contains(line, "Table") {
			continue
		}
		if m := psTableRe.FindStringSubmatch(line); m != nil {
			h.TableMax = atoi(m[1])
		}
		if m := psButtonRe.FindStringSubmatch(line); m != nil {
			h.ButtonSeat = atoi(m[1])
		}
		break
	}

	parseSeats(h, lines, psSeatRe)
	if len(h.Players) == 0 {
		return nil, &model.ParseErr{FileID: fileID, Offset: baseOffset, Reason: "no seat lines matched"}
	}
	if h.ButtonSeat == 0 {
		return nil, &model.ParseErr{FileID: fileID, Offset: baseOffset, Reason: "button seat not found"}
	}

	parsePosts(h, lines, psSBRe, psBBRe, psAnteRe)
	markDealtHero(h, lines, psDealtRe)

	walkStreets(h, lines, psActionLine)
	if len(h.PreflopActions()) == 0 {
		return nil, &model.ParseErr{FileID: fileID, Offset: baseOffset, Reason: "no preflop actions"}
	}
	finalize(h)
	return h, nil
}

// psActionLine normalizes one PokerStars action line. All-in is detected
// from the line text before the generic kind is assigned.
func psActionLine(line string) (*model.Action, bool) {
	if line == "" || strings.HasPrefix(line, "***") ||
		strings.HasPrefix(line, "Dealt to") || strings.HasPrefix(line, "Uncalled bet") {
		return nil, false
	}

	if m := psSBRe.FindStringSubmatch(line); m != nil {
		return post(model.ActionPostSB, m[1], m[2]), true
	}
	if m := psBBRe.FindStringSubmatch(line); m != nil {
		return post(model.ActionPostBB, m[1], m[2]), true
	}
	if m := psAnteRe.FindStringSubmatch(line); m != nil {
		return post(model.ActionPostAnte, m[1], m[2]), true
	}

	allin := allinMarkerRe.MatchString(line)
	if m := psRaiseRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionRaise, m[1], m[3], allin), true
	}
	if m := psCallRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionCall, m[1], m[2], allin), true
	}
	if m := psBetRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionBet, m[1], m[2], allin), true
	}
	if m := psCheckRe.FindStringSubmatch(line); m != nil {
		return &model.Action{Type: model.ActionCheck, Actor: textutil.NormalizePlayerName(m[1])}, true
	}
	if m := psFoldRe.FindStringSubmatch(line); m != nil {
		return &model.Action{Type: model.ActionFold, Actor: textutil.NormalizePlayerName(m[1])}, true
	}
	return nil, false
}
