package parser

import (
	"regexp"
	"strings"

	"github.com/rmgil/go-poker-metrics/internal/model"
	"github.com/rmgil/go-poker-metrics/internal/textutil"
)

// parser888 handles the 888 format: "#Game No :" headers, bracketed amounts
// ("calls [30]"), "** Dealing down cards **" street markers, day-first
// session timestamps and European decimal stacks.
type parser888 struct{}

var (
	p888DetectRe = regexp.MustCompile(`(?i)888(?:poker|\.pt)|#Game\s+No`)
	p888GameRe   = regexp.MustCompile(`#Game\s+No\s*:\s*(\d+)`)
	p888TournRe  = regexp.MustCompile(`Tournament\s+#(\d+)`)
	p888TitleRe  = regexp.MustCompile(`Tournament\s+#\d+\s+(.+?)\s*$`)
	p888TableRe  = regexp.MustCompile(`(?i)(\d+)\s+Max`)
	p888ButtonRe = regexp.MustCompile(`Seat\s*(\d+)\s+is\s+the\s+button`)
	p888SeatRe   = regexp.MustCompile(`^Seat\s+(\d+):\s*([^\(]+?)\s*\(\s*([0-9,. ]+)\s*\)`)
	p888DealtRe  = regexp.MustCompile(`Dealt\s+to\s+([^\[]+)`)

	p888SBRe   = regexp.MustCompile(`(?i)^(.+?)\s+posts\s+small\s+blind\s+\[([0-9,. ]+)\]`)
	p888BBRe   = regexp.MustCompile(`(?i)^(.+?)\s+posts\s+big\s+blind\s+\[([0-9,. ]+)\]`)
	p888AnteRe = regexp.MustCompile(`(?i)^(.+?)\s+posts\s+ante\s+\[([0-9,. ]+)\]`)

	p888FoldRe  = regexp.MustCompile(`^(.+?)\s+folds`)
	p888CheckRe = regexp.MustCompile(`^(.+?)\s+checks`)
	p888CallRe  = regexp.MustCompile(`^(.+?)\s+calls\s+\[([0-9,. ]+)\]`)
	p888BetRe   = regexp.MustCompile(`^(.+?)\s+bets\s+\[([0-9,. ]+)\]`)
	p888RaiseRe = regexp.MustCompile(`^(.+?)\s+raises\s+\[([0-9,. ]+)\]`)
	p888AllinRe = regexp.MustCompile(`(?i)^(.+?)\s+All-?in(?:\s+\[([0-9,. ]+)\])?`)
)

func (p *parser888) Site() model.Site { return model.Site888 }

func (p *parser888) Detect(text string) bool {
	return p888DetectRe.MatchString(head(text))
}

func (p *parser888) ParseHand(text, fileID string, baseOffset int) (*model.Hand, error) {
	lines := strings.Split(text, "\n")
	h := &model.Hand{
		Site:       model.Site888,
		FileID:     fileID,
		Streets:    emptyStreets(),
		RawOffsets: extractOffsets(text, baseOffset),
	}

	// The 888 header spreads over several lines: game number, session
	// timestamp, tournament line and table line each stand alone.
	for _, line := range headLines(lines, 8) {
		if m := p888GameRe.FindStringSubmatch(line); m != nil && h.TournamentID == "" {
			h.TournamentID = m[1]
		}
		if m := p888TournRe.FindStringSubmatch(line); m != nil {
			h.TournamentID = m[1]
			if t := p888TitleRe.FindStringSubmatch(line); t != nil {
				h.TournamentName = strings.TrimSpace(t[1])
			}
		}
		if ts := textutil.ExtractTimestamp888(line); ts != "" {
			h.TimestampUTC = ts
		}
		if m := p888TableRe.FindStringSubmatch(line); m != nil {
			h.TableMax = atoi(m[1])
		}
		if m := p888ButtonRe.FindStringSubmatch(line); m != nil {
			h.ButtonSeat = atoi(m[1])
		}
	}

	parseSeats(h, lines, p888SeatRe)
	if len(h.Players) == 0 {
		return nil, &model.ParseErr{FileID: fileID, Offset: baseOffset, Reason: "no seat lines matched"}
	}
	if h.ButtonSeat == 0 {
		return nil, &model.ParseErr{FileID: fileID, Offset: baseOffset, Reason: "button seat not found"}
	}

	parsePosts(h, lines, p888SBRe, p888BBRe, p888AnteRe)
	markDealtHero(h, lines, p888DealtRe)

	walkStreets(h, lines, p888ActionLine)
	if len(h.PreflopActions()) == 0 {
		return nil, &model.ParseErr{FileID: fileID, Offset: baseOffset, Reason: "no preflop actions"}
	}
	finalize(h)
	return h, nil
}

func p888ActionLine(line string) (*model.Action, bool) {
	if line == "" || strings.HasPrefix(line, "**") || strings.HasPrefix(line, "Dealt to") {
		return nil, false
	}

	if m := p888SBRe.FindStringSubmatch(line); m != nil {
		return post(model.ActionPostSB, m[1], m[2]), true
	}
	if m := p888BBRe.FindStringSubmatch(line); m != nil {
		return post(model.ActionPostBB, m[1], m[2]), true
	}
	if m := p888AnteRe.FindStringSubmatch(line); m != nil {
		return post(model.ActionPostAnte, m[1], m[2]), true
	}

	if m := p888AllinRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionAllIn, m[1], m[2], true), true
	}
	allin := allinMarkerRe.MatchString(line)
	if m := p888RaiseRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionRaise, m[1], m[2], allin), true
	}
	if m := p888CallRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionCall, m[1], m[2], allin), true
	}
	if m := p888BetRe.FindStringSubmatch(line); m != nil {
		return voluntary(model.ActionBet, m[1], m[2], allin), true
	}
	if m := p888CheckRe.FindStringSubmatch(line); m != nil {
		return &model.Action{Type: model.ActionCheck, Actor: textutil.NormalizePlayerName(m[1])}, true
	}
	if m := p888FoldRe.FindStringSubmatch(line); m != nil {
		return &model.Action{Type: model.ActionFold, Actor: textutil.NormalizePlayerName(m[1])}, true
	}
	return nil, false
}
