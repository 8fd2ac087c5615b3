package parser

import (
	"regexp"
	"strings"

	"github.com/rmgil/go-poker-metrics/internal/model"
	"github.com/rmgil/go-poker-metrics/internal/textutil"
)

// genericParser is the fallback for unrecognized exports. It accepts any
// span and applies the PokerStars-like patterns loosely; hands it cannot
// make sense of surface as recoverable parse errors.
type genericParser struct{}

var (
	genHandRe   = regexp.MustCompile(`Hand\s*#(\w+)`)
	genTournRe  = regexp.MustCompile(`Tournament\s*#?(\w+)[,\s]*([^-]*)`)
	genTableRe  = regexp.MustCompile(`(?i)(\d+)[-\s](?:max|handed)`)
	genButtonRe = regexp.MustCompile(`(?i)Seat\s*#?(\d+)\s+is\s+the\s+(?:button|dealer)`)
	genSeatRe   = regexp.MustCompile(`^Seat\s+(\d+):\s*([^(]+?)\s*\(\s*([0-9,. ]+)(?:\s+in\s+chips)?\s*\)`)
	genDealtRe  = regexp.MustCompile(`Dealt\s+to\s+([^\[]+)`)
)

func (p *genericParser) Site() model.Site { return model.SiteOther }

func (p *genericParser) Detect(string) bool { return true }

func (p *genericParser) ParseHand(text, fileID string, baseOffset int) (*model.Hand, error) {
	lines := strings.Split(text, "\n")
	h := &model.Hand{
		Site:       model.SiteOther,
		FileID:     fileID,
		Streets:    emptyStreets(),
		RawOffsets: extractOffsets(text, baseOffset),
	}

	for _, line := range headLines(lines, 8) {
		if h.TournamentID == "" {
			if m := genHandRe.FindStringSubmatch(line); m != nil {
				h.TournamentID = m[1]
			}
		}
		if h.TournamentName == "" {
			if m := genTournRe.FindStringSubmatch(line); m != nil {
				h.TournamentName = strings.TrimSpace(m[2])
			}
		}
		if h.TimestampUTC == "" {
			h.TimestampUTC = textutil.ExtractTimestamp(line)
		}
		if m := genTableRe.FindStringSubmatch(line); m != nil {
			h.TableMax = atoi(m[1])
		}
		if m := genButtonRe.FindStringSubmatch(line); m != nil {
			h.ButtonSeat = atoi(m[1])
		}
	}

	parseSeats(h, lines, genSeatRe)
	if len(h.Players) == 0 {
		return nil, &model.ParseErr{FileID: fileID, Offset: baseOffset, Reason: "no seat lines matched"}
	}
	if h.ButtonSeat == 0 {
		return nil, &model.ParseErr{FileID: fileID, Offset: baseOffset, Reason: "button seat not found"}
	}

	parsePosts(h, lines, psSBRe, psBBRe, psAnteRe)
	markDealtHero(h, lines, genDealtRe)

	walkStreets(h, lines, psActionLine)
	if len(h.PreflopActions()) == 0 {
		return nil, &model.ParseErr{FileID: fileID, Offset: baseOffset, Reason: "no preflop actions"}
	}
	finalize(h)
	return h, nil
}
