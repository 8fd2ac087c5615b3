package derive

import (
	"math"

	"github.com/rmgil/go-poker-metrics/internal/model"
)

// MinStackBB is the effective-stack floor below which the deep-stack stat
// filters stop applying.
const MinStackBB = 16.0

// HeroStackBB returns the hero's starting stack in big blinds, rounded to
// two decimals. Zero when the hand has no hero or no big blind.
func HeroStackBB(h *model.Hand) float64 {
	if h.Hero == "" || h.Blinds.BB <= 0 {
		return 0
	}
	p := h.PlayerByName(h.Hero)
	if p == nil {
		return 0
	}
	return round2(p.StackChips / h.Blinds.BB)
}

// EffStackBB returns the hand's preflop effective stack in big blinds: the
// hero against the deepest opponent dealt in. Undefined without a hero, a
// big blind or an opponent.
func EffStackBB(h *model.Hand) (float64, bool) {
	if h.Hero == "" || h.Blinds.BB <= 0 {
		return 0, false
	}
	hero := h.PlayerByName(h.Hero)
	if hero == nil {
		return 0, false
	}

	deepest, found := 0.0, false
	for _, name := range h.PlayersDealtIn {
		if name == h.Hero {
			continue
		}
		p := h.PlayerByName(name)
		if p == nil {
			continue
		}
		if p.StackChips > deepest {
			deepest = p.StackChips
		}
		found = true
	}
	if !found {
		return 0, false
	}
	return round2(math.Min(hero.StackChips, deepest) / h.Blinds.BB), true
}

// EffStackSRP returns the effective stack in big blinds for a single-raised
// pot: defined only when exactly two players, the hero among them, did not
// fold preflop. The second return reports whether the value is defined.
func EffStackSRP(h *model.Hand) (float64, bool) {
	if h.Hero == "" || h.Blinds.BB <= 0 {
		return 0, false
	}

	folded := make(map[string]bool)
	for _, a := range h.PreflopActions() {
		if a.Type == model.ActionFold {
			folded[a.Actor] = true
		}
	}

	var stacks []float64
	heroIn := false
	for _, name := range h.PlayersDealtIn {
		if folded[name] {
			continue
		}
		p := h.PlayerByName(name)
		if p == nil {
			continue
		}
		stacks = append(stacks, p.StackChips)
		if name == h.Hero {
			heroIn = true
		}
	}
	if len(stacks) != 2 || !heroIn {
		return 0, false
	}
	return round2(math.Min(stacks[0], stacks[1]) / h.Blinds.BB), true
}

// EffStackVs3Bettor returns the effective stack in big blinds between the
// hero and the 3-bettor.
func EffStackVs3Bettor(h *model.Hand, line PreflopLine) (float64, bool) {
	if h.Hero == "" || h.Blinds.BB <= 0 || len(line.RaisersSeq) < 2 {
		return 0, false
	}
	hero := h.PlayerByName(h.Hero)
	threeBettor := h.PlayerByName(line.RaisersSeq[1])
	if hero == nil || threeBettor == nil || hero == threeBettor {
		return 0, false
	}
	return round2(math.Min(hero.StackChips, threeBettor.StackChips) / h.Blinds.BB), true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
