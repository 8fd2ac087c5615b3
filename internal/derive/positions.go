// Package derive computes the per-hand analysis fields the stat expressions
// evaluate against: table positions, preflop line classification, effective
// stacks and the flat evaluation context.
package derive

import (
	"sort"

	"github.com/rmgil/go-poker-metrics/internal/model"
)

// Position labels, clockwise from the button.
const (
	PosBTN = "BTN"
	PosSB  = "SB"
	PosBB  = "BB"
	PosEP  = "EP"
	PosEP2 = "EP2"
	PosMP  = "MP"
	PosMP1 = "MP1"
	PosMP2 = "MP2"
	PosMP3 = "MP3"
	PosCO  = "CO"
)

// Position group buckets used by the stat expressions.
const (
	GroupEP     = "EP"
	GroupMP     = "MP"
	GroupLP     = "LP"
	GroupBlinds = "BLINDS"
)

var (
	order6Max = []string{PosBTN, PosSB, PosBB, PosEP, PosMP, PosCO}
	order9Max = []string{PosBTN, PosSB, PosBB, PosEP, PosEP2, PosMP1, PosMP2, PosMP3, PosCO}

	// Labels removed first when the table is short-handed. CO, BTN and the
	// blinds always survive.
	shrink6Max = []string{PosEP, PosMP}
	shrink9Max = []string{PosMP3, PosMP2, PosMP1, PosEP2, PosEP}
)

// Positions assigns a position label to every seated player, clockwise from
// the button. Tables with six or fewer players use the 6-max ordering
// regardless of the nominal table size; short-handed tables drop middle
// positions before early ones and never drop CO, BTN or the blinds.
// Heads-up the button holds the small blind, so the labels collapse to
// BTN and BB.
func Positions(h *model.Hand) map[string]string {
	n := len(h.Players)
	if n == 0 {
		return nil
	}

	players := make([]model.Player, n)
	copy(players, h.Players)
	btn := h.ButtonSeat
	sort.Slice(players, func(i, j int) bool {
		return (players[i].Seat-btn+100)%100 < (players[j].Seat-btn+100)%100
	})

	labels := labelsFor(n, h.TableMaxResolved())
	out := make(map[string]string, n)
	for i, p := range players {
		if i >= len(labels) {
			break
		}
		out[p.Name] = labels[i]
	}
	return out
}

// HeroPosition returns the hero's position label, or "" when the hand has no
// hero or the hero is not seated.
func HeroPosition(h *model.Hand) string {
	if h.Hero == "" {
		return ""
	}
	return Positions(h)[h.Hero]
}

// PositionGroup buckets a position label: EP*, MP*, LP (CO and BTN) or
// BLINDS.
func PositionGroup(pos string) string {
	switch pos {
	case PosEP, PosEP2:
		return GroupEP
	case PosMP, PosMP1, PosMP2, PosMP3:
		return GroupMP
	case PosCO, PosBTN:
		return GroupLP
	case PosSB, PosBB:
		return GroupBlinds
	}
	return ""
}

func labelsFor(players, tableMax int) []string {
	if players == 2 {
		return []string{PosBTN, PosBB}
	}

	base := order9Max
	shrink := shrink9Max
	if players <= 6 || tableMax <= 6 {
		base = order6Max
		shrink = shrink6Max
	}

	labels := make([]string, len(base))
	copy(labels, base)
	for _, victim := range shrink {
		if len(labels) <= players {
			break
		}
		labels = remove(labels, victim)
	}
	// Oversized tables get extra early positions after the blinds.
	for len(labels) < players {
		extra := append([]string{}, labels[:3]...)
		extra = append(extra, PosEP)
		labels = append(extra, labels[3:]...)
	}
	return labels
}

func remove(labels []string, victim string) []string {
	for i, l := range labels {
		if l == victim {
			return append(labels[:i:i], labels[i+1:]...)
		}
	}
	return labels
}
