package derive

import (
	"github.com/rmgil/go-poker-metrics/internal/model"
)

// Pot type labels by number of preflop raises.
const (
	PotLimped = "limped"
	PotSRP    = "srp"
	Pot3Bet   = "3bet"
	Pot4Bet   = "4bet"
)

// PreflopLine is the classified preflop action line from the hero's
// perspective.
type PreflopLine struct {
	HeroVPIP      bool
	UnopenedPot   bool
	FirstRaiser   string
	RaisersSeq    []string
	HeroRFI       bool
	HeroFacedOpen bool
	SqueezeSpot   bool
	Hero3Bet      bool
	Hero4Bet      bool
	HeroFaced3Bet bool
	HeroFoldedTo3 bool
	IsSqueeze     bool
	IsRestealBTN  bool
	IsFreeplayBB  bool
	PotType       string
}

// AnalyzePreflop classifies the preflop action sequence. Positions must come
// from Positions(h); passing nil disables the position-dependent reads
// (resteal, freeplay).
func AnalyzePreflop(h *model.Hand, positions map[string]string) PreflopLine {
	line := PreflopLine{UnopenedPot: true}
	actions := h.PreflopActions()
	hero := h.Hero

	heroActed := false
	callersSinceOpen := 0
	for _, a := range actions {
		if a.Type.IsPost() {
			continue
		}
		if a.Actor == hero && hero != "" {
			if !heroActed {
				heroActed = true
				// The pot is unopened for the hero only when nothing but
				// folds happened before their first turn.
				if a.Type.IsRaise() && line.UnopenedPot {
					line.HeroRFI = true
				}
				line.HeroFacedOpen = len(line.RaisersSeq) == 1 && line.RaisersSeq[0] != hero
				line.SqueezeSpot = line.HeroFacedOpen && callersSinceOpen > 0
			}
			if a.Type.IsVoluntary() {
				line.HeroVPIP = true
			}
		}
		if !heroActed && a.Type != model.ActionFold {
			line.UnopenedPot = false
		}
		if a.Type.IsRaise() {
			line.RaisersSeq = append(line.RaisersSeq, a.Actor)
			callersSinceOpen = 0
		} else if a.Type == model.ActionCall {
			callersSinceOpen++
		}
	}

	if len(line.RaisersSeq) > 0 {
		line.FirstRaiser = line.RaisersSeq[0]
	}
	if hero != "" {
		if len(line.RaisersSeq) >= 2 {
			line.Hero3Bet = line.RaisersSeq[1] == hero
			line.HeroFaced3Bet = line.RaisersSeq[0] == hero && line.RaisersSeq[1] != hero
		}
		if len(line.RaisersSeq) >= 3 {
			line.Hero4Bet = line.RaisersSeq[2] == hero
		}
		if line.HeroFaced3Bet {
			line.HeroFoldedTo3 = heroFoldedAfter3Bet(actions, hero)
		}
		line.IsSqueeze = detectSqueeze(actions, hero)
		if positions != nil {
			line.IsRestealBTN = detectRestealVsBTN(line, positions, hero)
			line.IsFreeplayBB = detectFreeplayBB(line, actions, positions, hero)
		}
	}

	line.PotType = classifyPotType(len(line.RaisersSeq))
	return line
}

func classifyPotType(raises int) string {
	switch {
	case raises == 0:
		return PotLimped
	case raises == 1:
		return PotSRP
	case raises == 2:
		return Pot3Bet
	default:
		return Pot4Bet
	}
}

// heroFoldedAfter3Bet finds the second raise and reports whether the hero's
// next action after it was a fold.
func heroFoldedAfter3Bet(actions []model.Action, hero string) bool {
	raises := 0
	for _, a := range actions {
		if a.Type.IsRaise() {
			raises++
			continue
		}
		if raises >= 2 && a.Actor == hero {
			return a.Type == model.ActionFold
		}
	}
	return false
}

// detectSqueeze reports a hero reraise over an open that had already been
// called by at least one other player.
func detectSqueeze(actions []model.Action, hero string) bool {
	opened := false
	callers := 0
	for _, a := range actions {
		if a.Type.IsPost() {
			continue
		}
		switch {
		case a.Type.IsRaise():
			if opened {
				return a.Actor == hero && callers > 0
			}
			opened = true
		case a.Type == model.ActionCall && opened:
			callers++
		}
	}
	return false
}

// detectRestealVsBTN reports a hero 3-bet from the blinds against a button
// open.
func detectRestealVsBTN(line PreflopLine, positions map[string]string, hero string) bool {
	if !line.Hero3Bet || positions[line.FirstRaiser] != PosBTN {
		return false
	}
	hp := positions[hero]
	return hp == PosSB || hp == PosBB
}

// detectFreeplayBB reports the big blind seeing the flop for free: no raise
// preflop and the hero checked their option.
func detectFreeplayBB(line PreflopLine, actions []model.Action, positions map[string]string, hero string) bool {
	if positions[hero] != PosBB || len(line.RaisersSeq) > 0 {
		return false
	}
	for _, a := range actions {
		if a.Actor == hero && a.Type == model.ActionCheck {
			return true
		}
	}
	return false
}
