package parser

import (
	"regexp"
	"strings"

	"github.com/rmgil/go-poker-metrics/internal/model"
	"github.com/rmgil/go-poker-metrics/internal/textutil"
)

// wpnParser handles the Winning Poker Network format (ACR, PokerKing):
// "Game Hand #" headers, "*** POCKET CARDS ***" for the preflop marker and
// raises printed only as "raises to".
type wpnParser struct{}

var (
	wpnDetectRe = regexp.MustCompile(`(?i)Game\s+Hand\s+#\d+|Winning\s+Poker\s+Network`)
	wpnHandRe   = regexp.MustCompile(`Hand\s*#(\d+)`)
	wpnTournRe  = regexp.MustCompile(`Tournament\s*#(\d+)`)
	wpnTitleRe  = regexp.MustCompile(`Tournament\s*#\d+\s*-?\s*([^-]+)`)
	wpnTableRe  = regexp.MustCompile(`(?i)(\d+)\s+Max`)
	wpnButtonRe = regexp.MustCompile(`(?i)Seat\s*#?(\d+)\s+is\s+(?:the\s+)?(?:dealer|button)`)
	wpnSeatRe   = regexp.MustCompile(`^Seat\s+(\d+):\s*([^(]+?)\s*\(([0-9,. ]+)\)`)
	wpnDealtRe  = regexp.MustCompile(`Dealt\s+to\s+([^\[]+)`)

	wpnSBRe   = regexp.MustCompile(`(?i)^([^:]+):\s*(?:Posts?\s+)?small\s+blind\s+([0-9,. ]+)`)
	wpnBBRe   = regexp.MustCompile(`(?i)^([^:]+):\s*(?:Posts?\s+)?big\s+blind\s+([0-9,. ]+)`)
	wpnAnteRe = regexp.MustCompile(`(?i)^([^:]+):\s*(?:Posts?\s+)?ante\s+([0-9,. ]+)`)

	wpnFoldRe  = regexp.MustCompile(`(?i)^([^:]+):\s*Folds?`)
	wpnCheckRe = regexp.MustCompile(`(?i)^([^:]+):\s*Checks?`)
	wpnCallRe  = regexp.MustCompile(`(?i)^([^:]+):\s*Calls?\s+([0-9,. ]+)`)
	wpnBetRe   = regexp.MustCompile(`(?i)^([^:]+):\s*Bets?\s+([0-9,. ]+)`)
	wpnRaiseRe = regexp.MustCompile(`(?i)^([^:]+):\s*Raises?\s+to\s+([0-9,. ]+)`)
	wpnAllinRe = regexp.MustCompile(`(?i)^([^:]+):\s*All-?in\s+([0-9,. ]+)`)
)

func (p *wpnParser) Site() model.Site { return model.SiteWPN }

func (p *wpnParser) Detect(text string) bool {
	return wpnDetectRe.MatchString(head(text))
}

func (p *wpnParser) ParseHand(text, fileID string, baseOffset int) (*model.Hand, error) {
	lines := strings.Split(text, "\n")
	h := &model.Hand{
		Site:       model.SiteWPN,
		FileID:     fileID,
		Streets:    emptyStreets(),
		RawOffsets: extractOffsets(text, baseOffset),
	}

	if len(lines) > 0 {
		header := lines[0]
		if m := wpnHandRe.FindStringSubmatch(header); m != nil {
			h.TournamentID = m[1]
		}
		if m := wpnTitleRe.FindStringSubmatch(header); m != nil {
			h.TournamentName = strings.TrimSpace(m[1])
		} else if m := wpnTournRe.FindStringSubmatch(header); m != nil && h.TournamentID == "" {
			h.TournamentID = m[1]
		}
		h.TimestampUTC = textutil.ExtractTimestamp(header)
	}

	for _, line := range headLines(lines, 5) {
		if m := wpnTableRe.FindStringSubmatch(line); m != nil {
			h.TableMax = atoi(m[1])
		}
		if m := wpnButtonRe.FindStringSubmatch(line); m != nil {
			h.ButtonSeat = atoi(m[1])
		}
	}

	parseSeats(h, lines, wpnSeatRe)
	if len(h.Players) == 0 {
		return nil, &model.ParseErr{FileID: fileID, Offset: baseOffset, Reason: "no seat lines matched"}
	}
	if h.ButtonSeat == 0 {
		return nil, &model.ParseErr{FileID: fileID, Offset: baseOffset, Reason: "button seat not found"}
	}

	parsePosts(h, lines, wpnSBRe, wpnBBRe, wpnAnteRe)
	markDealtHero(h, lines, wpnDealtRe)

	walkStreets(h, lines, wpnActionLine)
	if len(h.PreflopActions()) == 0 {
		return nil, &model.ParseErr{FileID: fileID, Offset: baseOffset, Reason: "no preflop actions"}
	}
	finalize(h)
	return h, nil
}

func wpnActionLine(line string) (*model.Action, bool) {
	if line == "" || strings.HasPrefix(line, "***") ||
		strings.HasPrefix(line, "Dealt to") || strings.HasPrefix(line, "Uncalled bet") {
		return nil, false
	}

	if m := wpnSBRe.FindStringSubmatch(line); m != nil {
		return post(model.ActionPostSB, m[1], m[2]), true
	}
	if m := wpnBBRe.FindStringSubmatch(line); m != nil {
		return post(model.ActionPostBB, m[1], m[2]), true
	}
	if m := wpnAnteRe.FindStringSubmatch(line); m != nil {
		return post(model.ActionPostAnte, m[1], m[2]), true
	}

	if m := wpnAllinRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionAllIn, m[1], m[2], true), true
	}
	allin := allinMarkerRe.MatchString(line)
	if m := wpnRaiseRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionRaise, m[1], m[2], allin), true
	}
	if m := wpnCallRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionCall, m[1], m[2], allin), true
	}
	if m := wpnBetRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionBet, m[1], m[2], allin), true
	}
	if m := wpnCheckRe.FindStringSubmatch(line); m != nil {
		return &model.Action{Type: model.ActionCheck, Actor: textutil.NormalizePlayerName(m[1])}, true
	}
	if m := wpnFoldRe.FindStringSubmatch(line); m != nil {
		return &model.Action{Type: model.ActionFold, Actor: textutil.NormalizePlayerName(m[1])}, true
	}
	return nil, false
}
