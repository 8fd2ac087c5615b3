// Package partition buckets parsed hands by month and strategic group and
// writes the partition artifacts: the counts manifest, per-bucket id index
// files and the combined non-KO rollup.
package partition

import (
	"strings"

	"github.com/rmgil/go-poker-metrics/internal/model"
)

// Strategic groups. The preflop groups are mutually exclusive; POSTFLOP_ALL
// is orthogonal and collects every hand with postflop action.
const (
	GroupNonKO9Max = "NONKO_9MAX_PREF"
	GroupNonKO6Max = "NONKO_6MAX_PREF"
	GroupPKO       = "PKO_PREF"
	GroupMystery   = "MYSTERY_PREF"
	GroupPostflop  = "POSTFLOP_ALL"
)

// Groups lists every strategic group in stable display order.
var Groups = []string{
	GroupNonKO9Max,
	GroupNonKO6Max,
	GroupPKO,
	GroupMystery,
	GroupPostflop,
}

// InferClass resolves the hand's tournament class: the parser's explicit
// tag wins, then markers in the source path, then plain non-KO. Mystery
// markers are checked before bounty ones so Mystery Bounty files never
// count as plain PKO.
func InferClass(h *model.Hand) model.TourneyClass {
	if h.Class != "" {
		return h.Class
	}
	id := strings.ToLower(h.FileID)
	if strings.Contains(id, "myst") {
		return model.ClassMystery
	}
	if strings.Contains(id, "non-ko") || strings.Contains(id, "nonko") {
		return model.ClassNonKO
	}
	for _, k := range []string{"pko", "bounty", "knockout", " ko "} {
		if strings.Contains(id, k) {
			return model.ClassPKO
		}
	}
	return model.ClassNonKO
}

// GroupsFor returns every strategic group the hand belongs to. A hand lands
// in exactly one preflop group; table sizes outside 3..10 keep it out of the
// non-KO groups entirely.
func GroupsFor(h *model.Hand) []string {
	var groups []string

	switch InferClass(h) {
	case model.ClassPKO:
		groups = append(groups, GroupPKO)
	case model.ClassMystery:
		groups = append(groups, GroupMystery)
	default:
		tm := h.TableMaxResolved()
		switch {
		case tm >= 7 && tm <= 10:
			groups = append(groups, GroupNonKO9Max)
		case tm >= 3 && tm <= 6:
			groups = append(groups, GroupNonKO6Max)
		}
	}

	if hasPostflopAction(h) {
		groups = append(groups, GroupPostflop)
	}
	return groups
}

func hasPostflopAction(h *model.Hand) bool {
	for _, street := range model.PostflopStreets {
		if s := h.Street(street); s != nil && len(s.Actions) > 0 {
			return true
		}
	}
	return false
}
