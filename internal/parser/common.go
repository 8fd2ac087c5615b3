package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rmgil/go-poker-metrics/internal/model"
	"github.com/rmgil/go-poker-metrics/internal/textutil"
)

// head returns the sniffing window for format detection.
func head(text string) string {
	if len(text) > 1000 {
		return text[:1000]
	}
	return text
}

func headLines(lines []string, n int) []string {
	if len(lines) < n {
		return lines
	}
	return lines[:n]
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// parseSeats fills h.Players from every line matching the variant's seat
// pattern: group 1 seat, group 2 name, group 3 stack. Bounty notation on the
// seat line is a distinct pattern and never feeds the stack value; its
// presence tags the hand as PKO unless the title already decided otherwise.
func parseSeats(h *model.Hand, lines []string, seatRe *regexp.Regexp) {
	for _, line := range lines {
		m := seatRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		stack, ok := textutil.CleanAmount(m[3])
		if !ok {
			continue
		}
		h.Players = append(h.Players, model.Player{
			Seat:       atoi(m[1]),
			Name:       textutil.NormalizePlayerName(m[2]),
			StackChips: stack,
		})
		if _, hasBounty := textutil.ExtractBounty(line); hasBounty && h.Class == "" {
			h.Class = model.ClassPKO
		}
	}
}

// parsePosts records the blind/ante sizes and seeds players_dealt_in with
// the posters (a player who posted was necessarily dealt in).
func parsePosts(h *model.Hand, lines []string, sbRe, bbRe, anteRe *regexp.Regexp) {
	for _, line := range lines {
		if m := sbRe.FindStringSubmatch(line); m != nil {
			if v, ok := textutil.CleanAmount(m[2]); ok {
				h.Blinds.SB = v
			}
			addDealtIn(h, textutil.NormalizePlayerName(m[1]))
		}
		if m := bbRe.FindStringSubmatch(line); m != nil {
			if v, ok := textutil.CleanAmount(m[2]); ok {
				h.Blinds.BB = v
			}
			addDealtIn(h, textutil.NormalizePlayerName(m[1]))
		}
		if m := anteRe.FindStringSubmatch(line); m != nil {
			if v, ok := textutil.CleanAmount(m[2]); ok {
				h.Blinds.Ante = v
			}
		}
	}
}

// markDealtHero applies the rooms' "Dealt to X" convention: the dealt-to
// player is always the hero in exports that carry the line.
func markDealtHero(h *model.Hand, lines []string, dealtRe *regexp.Regexp) {
	for _, line := range lines {
		if !strings.HasPrefix(line, "Dealt to") {
			continue
		}
		m := dealtRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := textutil.NormalizePlayerName(m[1])
		h.Hero = name
		addDealtIn(h, name)
		if p := h.PlayerByName(name); p != nil {
			p.IsHero = true
		}
		return
	}
}

func addDealtIn(h *model.Hand, name string) {
	if name == "" || h.DealtIn(name) {
		return
	}
	h.PlayersDealtIn = append(h.PlayersDealtIn, name)
}

func post(t model.ActionType, actor, amount string) *model.Action {
	v, _ := textutil.CleanAmount(amount)
	return &model.Action{Type: t, Actor: textutil.NormalizePlayerName(actor), Amount: v}
}

// voluntary builds a call/bet/raise action, upgrading to ALLIN when the line
// syntax said so.
func voluntary(t model.ActionType, actor, amount string, allin bool) *model.Action {
	v, _ := textutil.CleanAmount(amount)
	if allin {
		t = model.ActionAllIn
	}
	return &model.Action{Type: t, Actor: textutil.NormalizePlayerName(actor), Amount: v}
}
