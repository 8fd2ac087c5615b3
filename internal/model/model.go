package model

import (
	"crypto/sha1"
	"fmt"
	"sort"
	"strings"
)

// Site identifies the poker room a hand history came from.
type Site string

const (
	SitePokerStars Site = "pokerstars"
	SiteGG         Site = "gg"
	SiteWPN        Site = "wpn"
	SiteWinamax    Site = "winamax"
	Site888        Site = "888"
	SiteOther      Site = "other"
)

// Sites lists every supported room, detection-priority order.
var Sites = []Site{SitePokerStars, SiteGG, SiteWPN, SiteWinamax, Site888, SiteOther}

// ActionType is a normalized action kind. All-in is detected from the
// action-line syntax before the generic kind is assigned.
type ActionType string

const (
	ActionPostSB   ActionType = "POST_SB"
	ActionPostBB   ActionType = "POST_BB"
	ActionPostAnte ActionType = "POST_ANTE"
	ActionFold     ActionType = "FOLD"
	ActionCheck    ActionType = "CHECK"
	ActionCall     ActionType = "CALL"
	ActionBet      ActionType = "BET"
	ActionRaise    ActionType = "RAISE"
	ActionReraise  ActionType = "RERAISE"
	ActionAllIn    ActionType = "ALLIN"
)

// IsRaise reports whether the action opens or re-opens the betting.
func (t ActionType) IsRaise() bool {
	return t == ActionRaise || t == ActionReraise || t == ActionAllIn
}

// IsPost reports whether the action is a forced blind or ante post.
func (t ActionType) IsPost() bool {
	return t == ActionPostSB || t == ActionPostBB || t == ActionPostAnte
}

// IsVoluntary reports whether the action voluntarily puts chips in the pot
// (blind/ante posts are forced and do not count).
func (t ActionType) IsVoluntary() bool {
	switch t {
	case ActionCall, ActionBet, ActionRaise, ActionReraise, ActionAllIn:
		return true
	}
	return false
}

// Street names, in dealing order.
const (
	StreetPreflop = "preflop"
	StreetFlop    = "flop"
	StreetTurn    = "turn"
	StreetRiver   = "river"
)

// StreetNames is the fixed dealing order.
var StreetNames = []string{StreetPreflop, StreetFlop, StreetTurn, StreetRiver}

// PostflopStreets are the streets that reveal board cards.
var PostflopStreets = []string{StreetFlop, StreetTurn, StreetRiver}

// Action is one normalized action line.
type Action struct {
	Type   ActionType `json:"type"`
	Actor  string     `json:"actor"`
	Amount float64    `json:"amount,omitempty"`
}

// Street holds the ordered actions of one street and, postflop, the board
// cards revealed at its start.
type Street struct {
	Actions []Action `json:"actions"`
	Board   []string `json:"board,omitempty"`
}

// Player is one seated player as listed in the hand header.
type Player struct {
	Seat       int     `json:"seat"`
	Name       string  `json:"name"`
	StackChips float64 `json:"stack_chips"`
	IsHero     bool    `json:"is_hero,omitempty"`
}

// Blinds are the forced-bet sizes for the hand.
type Blinds struct {
	SB   float64 `json:"sb"`
	BB   float64 `json:"bb"`
	Ante float64 `json:"ante"`
}

// RawOffsets are byte offsets of recognized sections relative to the source
// file, kept for click-through auditing. -1 marks an absent section.
type RawOffsets struct {
	HandStart int `json:"hand_start"`
	HoleCards int `json:"hole_cards"`
	Flop      int `json:"flop"`
	Turn      int `json:"turn"`
	River     int `json:"river"`
	Showdown  int `json:"showdown"`
	Summary   int `json:"summary"`
	HandEnd   int `json:"hand_end"`
}

// NewRawOffsets returns offsets with every section marked absent.
func NewRawOffsets() RawOffsets {
	return RawOffsets{HandStart: -1, HoleCards: -1, Flop: -1, Turn: -1, River: -1, Showdown: -1, Summary: -1, HandEnd: -1}
}

// TourneyClass tags the tournament payout format.
type TourneyClass string

const (
	ClassPKO     TourneyClass = "pko"
	ClassMystery TourneyClass = "mystery"
	ClassNonKO   TourneyClass = "non-ko"
)

// Hand is one fully parsed hand. Immutable after parsing; downstream stages
// only read it and write to their own count/index structures.
type Hand struct {
	Site           Site               `json:"site"`
	TournamentID   string             `json:"tournament_id"`
	TournamentName string             `json:"tournament_name,omitempty"`
	FileID         string             `json:"file_id"`
	TimestampUTC   string             `json:"timestamp_utc,omitempty"`
	ButtonSeat     int                `json:"button_seat"`
	TableMax       int                `json:"table_max,omitempty"`
	Blinds         Blinds             `json:"blinds"`
	Hero           string             `json:"hero,omitempty"`
	Players        []Player           `json:"players"`
	PlayersDealtIn []string           `json:"players_dealt_in"`
	Streets        map[string]*Street `json:"streets"`

	AnyAllinPreflop bool `json:"any_allin_preflop"`
	PlayersToFlop   int  `json:"players_to_flop"`
	HeadsUpFlop     bool `json:"heads_up_flop"`

	RawOffsets RawOffsets   `json:"raw_offsets"`
	Class      TourneyClass `json:"tourney_class,omitempty"`
}

// ID derives the stable hand identifier: sha1 over identity fields plus the
// sorted player-name list, truncated to 16 hex chars. Re-parsing unchanged
// input yields the same id.
func (h *Hand) ID() string {
	names := make([]string, 0, len(h.Players))
	for _, p := range h.Players {
		names = append(names, p.Name)
	}
	sort.Strings(names)

	parts := []string{
		string(h.Site),
		h.TournamentID,
		h.FileID,
		fmt.Sprintf("%d", h.ButtonSeat),
		fmt.Sprintf("%d", h.RawOffsets.HandStart),
		h.TimestampUTC,
		strings.Join(names, ","),
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%x", sum)[:16]
}

// MonthBucket returns the "YYYY-MM" bucket of the hand timestamp, or
// "unknown" when no parseable timestamp exists. Timestamps are normalized to
// "2006-01-02 15:04:05" at parse time, so the bucket is a plain prefix.
func (h *Hand) MonthBucket() string {
	ts := h.TimestampUTC
	if len(ts) < 7 || ts[4] != '-' {
		return "unknown"
	}
	return ts[:7]
}

// Street returns the named street, or nil when it has no record.
func (h *Hand) Street(name string) *Street {
	if h.Streets == nil {
		return nil
	}
	return h.Streets[name]
}

// PreflopActions returns the preflop action list (nil-safe).
func (h *Hand) PreflopActions() []Action {
	if s := h.Street(StreetPreflop); s != nil {
		return s.Actions
	}
	return nil
}

// SawFlop reports whether any postflop street has actions.
func (h *Hand) SawFlop() bool {
	for _, name := range PostflopStreets {
		if s := h.Street(name); s != nil && len(s.Actions) > 0 {
			return true
		}
	}
	return false
}

// DealtIn reports whether the named player was dealt into the hand.
func (h *Hand) DealtIn(name string) bool {
	for _, n := range h.PlayersDealtIn {
		if n == name {
			return true
		}
	}
	return false
}

// PlayerByName returns the seated player with the given name, or nil.
func (h *Hand) PlayerByName(name string) *Player {
	for i := range h.Players {
		if h.Players[i].Name == name {
			return &h.Players[i]
		}
	}
	return nil
}

// TableMaxResolved returns the declared table size, falling back to the
// number of listed players when the header did not carry one.
func (h *Hand) TableMaxResolved() int {
	if h.TableMax > 0 {
		return h.TableMax
	}
	return len(h.Players)
}

// Fingerprint is a normalized sha1 over the raw hand text, used as a
// dedup/audit fallback when identity fields alone cannot distinguish hands.
func Fingerprint(handText string) string {
	normalized := strings.ToLower(
		strings.ReplaceAll(
			strings.ReplaceAll(strings.TrimSpace(handText), "\r\n", "\n"),
			"\n\n", "\n"))
	sum := sha1.Sum([]byte(normalized))
	return fmt.Sprintf("%x", sum)
}

// ParseErr is a recoverable per-hand parse failure, tagged with enough
// provenance to locate the offending span in the source file.
type ParseErr struct {
	FileID string `json:"file_id"`
	Offset int    `json:"offset"`
	Reason string `json:"reason"`
}

func (e *ParseErr) Error() string {
	return fmt.Sprintf("%s@%d: %s", e.FileID, e.Offset, e.Reason)
}

// RunSummary is a lightweight record for list/show commands.
type RunSummary struct {
	RunID     string
	CreatedAt string
	Files     int
	Hands     int
	Errors    int
	Input     string
}
