package derive

import (
	"github.com/rmgil/go-poker-metrics/internal/model"
)

// Context builds the flat evaluation map the stat expressions read. Numeric
// fields that are undefined for the hand (an effective stack with three
// players to the flop, say) are omitted rather than zeroed; comparisons
// against a missing field evaluate false.
func Context(h *model.Hand) map[string]any {
	positions := Positions(h)
	line := AnalyzePreflop(h, positions)

	ctx := map[string]any{
		"site":      string(h.Site),
		"table_max": h.TableMaxResolved(),
		"month":     h.MonthBucket(),

		"hero_position":  positions[h.Hero],
		"hero_pos_group": PositionGroup(positions[h.Hero]),

		"unopened_pot":         line.UnopenedPot,
		"faced_open":           line.HeroFacedOpen,
		"squeeze_spot":         line.SqueezeSpot,
		"pot_type":             line.PotType,
		"hero_vpip":            line.HeroVPIP,
		"hero_raised_first_in": line.HeroRFI,
		"hero_3bet":            line.Hero3Bet,
		"hero_4bet":            line.Hero4Bet,
		"faced_3bet":           line.HeroFaced3Bet,
		"folded_to_3bet":       line.HeroFoldedTo3,
		"is_squeeze":           line.IsSqueeze,
		"is_resteal_vs_btn":    line.IsRestealBTN,
		"is_freeplay_bb":       line.IsFreeplayBB,

		"saw_flop":          h.SawFlop(),
		"heads_up_flop":     h.HeadsUpFlop,
		"players_to_flop":   h.PlayersToFlop,
		"any_allin_preflop": h.AnyAllinPreflop,
	}

	if line.FirstRaiser != "" {
		ctx["first_raiser_pos"] = positions[line.FirstRaiser]
	}
	if bb := HeroStackBB(h); bb > 0 {
		ctx["hero_stack_bb"] = bb
	}
	if eff, ok := EffStackBB(h); ok {
		ctx["eff_stack_bb"] = eff
	}
	if eff, ok := EffStackSRP(h); ok {
		ctx["eff_stack_srp"] = eff
	}
	if eff, ok := EffStackVs3Bettor(h, line); ok {
		ctx["eff_stack_vs_3bettor"] = eff
	}

	applyFlopLine(ctx, h, line)
	return ctx
}

// applyFlopLine adds the hero's flop aggression facts, used by the
// continuation-bet stats.
func applyFlopLine(ctx map[string]any, h *model.Hand, line PreflopLine) {
	hero := h.Hero
	aggressor := hero != "" && len(line.RaisersSeq) > 0 &&
		line.RaisersSeq[len(line.RaisersSeq)-1] == hero
	ctx["hero_pf_aggressor"] = aggressor

	betFlop, checkedFlop := false, false
	if flop := h.Street(model.StreetFlop); flop != nil {
		for _, a := range flop.Actions {
			if a.Actor != hero {
				continue
			}
			switch a.Type {
			case model.ActionBet, model.ActionAllIn:
				betFlop = true
			case model.ActionCheck:
				checkedFlop = true
			}
		}
	}
	ctx["hero_bet_flop"] = betFlop
	ctx["hero_checked_flop"] = checkedFlop
}
