package parser

import (
	"regexp"
	"strings"

	"github.com/rmgil/go-poker-metrics/internal/model"
	"github.com/rmgil/go-poker-metrics/internal/textutil"
)

// winamaxParser handles the Winamax format. Exports appear with English or
// French action terms (se couche / suit / mise / relance à / fait tapis) and
// European decimal formatting; both are accepted line by line.
type winamaxParser struct{}

var (
	wmxDetectRe = regexp.MustCompile(`(?i)Winamax\s+Poker`)
	wmxHandRe   = regexp.MustCompile(`HandId:\s*#(\d+)`)
	wmxTournRe  = regexp.MustCompile(`Tournament\s+"([^"]+)"`)
	wmxTableRe  = regexp.MustCompile(`(\d+)-max`)
	wmxButtonRe = regexp.MustCompile(`Seat\s*#(\d+)\s+is\s+the\s+button`)
	wmxSeatRe   = regexp.MustCompile(`^Seat\s+(\d+):\s*([^(]+?)\s*\(([0-9,. ]+)\)`)
	wmxDealtRe  = regexp.MustCompile(`Dealt\s+to\s+([^\[]+)`)

	wmxSBRe   = regexp.MustCompile(`(?i)^([^:]+):\s*posts?\s+(?:small|petite)\s+blind\s+([0-9,. ]+)`)
	wmxBBRe   = regexp.MustCompile(`(?i)^([^:]+):\s*posts?\s+(?:big|grosse)\s+blind\s+([0-9,. ]+)`)
	wmxAnteRe = regexp.MustCompile(`(?i)^([^:]+):\s*posts?\s+ante\s+([0-9,. ]+)`)

	wmxFoldRe  = regexp.MustCompile(`(?i)^([^:]+):\s*(?:folds?|se\s+couche)`)
	wmxCheckRe = regexp.MustCompile(`(?i)^([^:]+):\s*(?:checks?|checke)`)
	wmxCallRe  = regexp.MustCompile(`(?i)^([^:]+):\s*(?:calls?|suit)\s+([0-9,. ]+)`)
	wmxBetRe   = regexp.MustCompile(`(?i)^([^:]+):\s*(?:bets?|mise)\s+([0-9,. ]+)`)
	wmxRaiseRe = regexp.MustCompile(`(?i)^([^:]+):\s*(?:raises?\s+to|relance\s+à)\s+([0-9,. ]+)`)
	wmxAllinRe = regexp.MustCompile(`(?i)^([^:]+):\s*(?:all-?in|fait\s+tapis)\s+([0-9,. ]+)`)
)

func (p *winamaxParser) Site() model.Site { return model.SiteWinamax }

func (p *winamaxParser) Detect(text string) bool {
	return wmxDetectRe.MatchString(head(text))
}

func (p *winamaxParser) ParseHand(text, fileID string, baseOffset int) (*model.Hand, error) {
	lines := strings.Split(text, "\n")
	h := &model.Hand{
		Site:       model.SiteWinamax,
		FileID:     fileID,
		Streets:    emptyStreets(),
		RawOffsets: extractOffsets(text, baseOffset),
	}

	if len(lines) > 0 {
		header := lines[0]
		if m := wmxHandRe.FindStringSubmatch(header); m != nil {
			h.TournamentID = m[1]
		}
		if m := wmxTournRe.FindStringSubmatch(header); m != nil {
			h.TournamentName = strings.TrimSpace(m[1])
			if h.TournamentID == "" {
				h.TournamentID = h.TournamentName
			}
		}
		h.TimestampUTC = textutil.ExtractTimestamp(header)
	}

	for _, line := range headLines(lines, 5) {
		if !strings.Contains(line, "Table") {
			continue
		}
		if m := wmxTableRe.FindStringSubmatch(line); m != nil {
			h.TableMax = atoi(m[1])
		}
		if m := wmxButtonRe.FindStringSubmatch(line); m != nil {
			h.ButtonSeat = atoi(m[1])
		}
	}

	parseSeats(h, lines, wmxSeatRe)
	if len(h.Players) == 0 {
		return nil, &model.ParseErr{FileID: fileID, Offset: baseOffset, Reason: "no seat lines matched"}
	}
	if h.ButtonSeat == 0 {
		return nil, &model.ParseErr{FileID: fileID, Offset: baseOffset, Reason: "button seat not found"}
	}

	parsePosts(h, lines, wmxSBRe, wmxBBRe, wmxAnteRe)
	markDealtHero(h, lines, wmxDealtRe)

	walkStreets(h, lines, wmxActionLine)
	if len(h.PreflopActions()) == 0 {
		return nil, &model.ParseErr{FileID: fileID, Offset: baseOffset, Reason: "no preflop actions"}
	}
	finalize(h)
	return h, nil
}

func wmxActionLine(line string) (*model.Action, bool) {
	if line == "" || strings.HasPrefix(line, "***") || strings.Contains(line, "Dealt to") {
		return nil, false
	}

	if m := wmxSBRe.FindStringSubmatch(line); m != nil {
		return post(model.ActionPostSB, m[1], m[2]), true
	}
	if m := wmxBBRe.FindStringSubmatch(line); m != nil {
		return post(model.ActionPostBB, m[1], m[2]), true
	}
	if m := wmxAnteRe.FindStringSubmatch(line); m != nil {
		return post(model.ActionPostAnte, m[1], m[2]), true
	}

	if m := wmxAllinRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionAllIn, m[1], m[2], true), true
	}
	if m := wmxRaiseRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionRaise, m[1], m[2], allinMarkerRe.MatchString(line)), true
	}
	if m := wmxCallRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionCall, m[1], m[2], allinMarkerRe.MatchString(line)), true
	}
	if m := wmxBetRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionBet, m[1], m[2], allinMarkerRe.MatchString(line)), true
	}
	if m := wmxCheckRe.FindStringSubmatch(line); m != nil {
		return &model.Action{Type: model.ActionCheck, Actor: textutil.NormalizePlayerName(m[1])}, true
	}
	if m := wmxFoldRe.FindStringSubmatch(line); m != nil {
		return &model.Action{Type: model.ActionFold, Actor: textutil.NormalizePlayerName(m[1])}, true
	}
	return nil, false
}
