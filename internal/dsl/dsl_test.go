package dsl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func parseClause(t *testing.T, src string) *Clause {
	t.Helper()
	var c Clause
	if err := yaml.Unmarshal([]byte(src), &c); err != nil {
		t.Fatalf("unmarshal %q: %v", src, err)
	}
	return &c
}

func TestClauseEval(t *testing.T) {
	ctx := map[string]any{
		"hero_vpip":     true,
		"folded":        false,
		"hero_position": "BTN",
		"pot_type":      "srp",
		"eff_stack_srp": 42.5,
		"players":       3,
	}

	cases := []struct {
		name string
		src  string
		want bool
	}{
		{"bare field true", `hero_vpip`, true},
		{"bare field false", `folded`, false},
		{"bare field missing", `no_such_field`, false},
		{"bare string truthy", `hero_position`, true},
		{"is_true", `is_true: hero_vpip`, true},
		{"is_false on false", `is_false: folded`, true},
		{"is_false on missing", `is_false: no_such_field`, true},
		{"is_false on true", `is_false: hero_vpip`, false},
		{"eq string", `eq: {field: pot_type, value: srp}`, true},
		{"eq string miss", `eq: {field: pot_type, value: 3bet}`, false},
		{"eq missing field", `eq: {field: nope, value: srp}`, false},
		{"eq int vs float", `eq: {field: players, value: 3}`, true},
		{"in hit", `in: {field: hero_position, values: [SB, BB, BTN]}`, true},
		{"in miss", `in: {field: hero_position, values: [SB, BB]}`, false},
		{"gte hit", `gte: {field: eff_stack_srp, value: 16}`, true},
		{"gte boundary", `gte: {field: eff_stack_srp, value: 42.5}`, true},
		{"gt boundary", `gt: {field: eff_stack_srp, value: 42.5}`, false},
		{"lt", `lt: {field: eff_stack_srp, value: 16}`, false},
		{"lte", `lte: {field: players, value: 3}`, true},
		{"numeric on missing", `gte: {field: nope, value: 1}`, false},
		{"numeric on string", `gte: {field: pot_type, value: 1}`, false},
		{"not", `not: {is_true: folded}`, true},
		{"all", "all:\n  - hero_vpip\n  - eq: {field: pot_type, value: srp}", true},
		{"all short-circuit", "all:\n  - folded\n  - hero_vpip", false},
		{"any", "any:\n  - folded\n  - hero_vpip", true},
		{"any none", "any:\n  - folded\n  - no_such_field", false},
		{"nested", "all:\n  - any:\n      - folded\n      - hero_vpip\n  - not: {is_true: folded}", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := parseClause(t, c.src).Eval(ctx); got != c.want {
				t.Errorf("Eval(%q) = %v, want %v", c.src, got, c.want)
			}
		})
	}
}

func TestClauseUnmarshalErrors(t *testing.T) {
	cases := []string{
		`frobnicate: {field: a, value: b}`,
		"eq: {field: a, value: b}\nin: {field: a, values: [b]}",
	}
	for _, src := range cases {
		var c Clause
		if err := yaml.Unmarshal([]byte(src), &c); err == nil {
			t.Errorf("unmarshal %q: expected error", src)
		}
	}
}

func TestFilters(t *testing.T) {
	base := map[string]any{
		"heads_up_flop":     true,
		"pot_type":          "srp",
		"eff_stack_srp":     40.0,
		"eff_stack_bb":      55.0,
		"any_allin_preflop": false,
	}
	f := Filters{
		HeadsUpOnly:         true,
		PotType:             []string{"srp"},
		EffStackMinBB:       16,
		EffStackField:       "eff_stack_srp",
		ExcludeAllinPreflop: true,
	}
	if !f.Pass(base) {
		t.Fatal("clean context must pass")
	}

	mutate := func(key string, v any) map[string]any {
		ctx := make(map[string]any, len(base))
		for k, val := range base {
			ctx[k] = val
		}
		ctx[key] = v
		return ctx
	}
	if f.Pass(mutate("heads_up_flop", false)) {
		t.Error("multiway flop must fail heads_up_only")
	}
	if f.Pass(mutate("pot_type", "3bet")) {
		t.Error("3-bet pot must fail the pot_type filter")
	}
	if f.Pass(mutate("eff_stack_srp", 12.0)) {
		t.Error("short stack must fail the floor")
	}
	if f.Pass(mutate("any_allin_preflop", true)) {
		t.Error("preflop all-in must be excluded")
	}

	// Undefined effective stack fails the floor rather than passing it.
	ctx := mutate("eff_stack_srp", nil)
	delete(ctx, "eff_stack_srp")
	if f.Pass(ctx) {
		t.Error("missing eff_stack_srp must fail the floor")
	}

	if !(Filters{}).Pass(map[string]any{}) {
		t.Error("zero filters must pass everything")
	}
}

func TestFiltersStackFloorDefaultsToEffStackBB(t *testing.T) {
	f := Filters{EffStackMinBB: 16}

	if !f.Pass(map[string]any{"eff_stack_bb": 20.0}) {
		t.Error("20bb effective must pass the floor")
	}
	if !f.Pass(map[string]any{"eff_stack_bb": 16.0}) {
		t.Error("floor is inclusive")
	}
	if f.Pass(map[string]any{"eff_stack_bb": 12.0}) {
		t.Error("12bb effective must fail the floor")
	}
	if f.Pass(map[string]any{"eff_stack_srp": 40.0}) {
		t.Error("the default floor must not read the single-raised-pot stack")
	}
	if f.Pass(map[string]any{}) {
		t.Error("undefined eff_stack_bb must fail the floor")
	}
}

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(c.Stats) == 0 {
		t.Fatal("default catalog is empty")
	}

	byID := make(map[string]*Stat)
	for i := range c.Stats {
		byID[c.Stats[i].ID] = &c.Stats[i]
	}
	for _, id := range []string{"vpip", "rfi_early", "threebet_vs_open", "fold_to_3bet", "cbet_flop_srp"} {
		if byID[id] == nil {
			t.Errorf("default catalog missing %q", id)
		}
	}

	cbet := byID["cbet_flop_srp"]
	if !cbet.AppliesTo("POSTFLOP_ALL") || cbet.AppliesTo("PKO_PREF") {
		t.Errorf("cbet groups = %v", cbet.Groups)
	}
	if cbet.Filters.EffStackMinBB != 16 || !cbet.Filters.ExcludeAllinPreflop {
		t.Errorf("cbet filters = %+v", cbet.Filters)
	}
	if cbet.Filters.EffStackField != "eff_stack_srp" {
		t.Errorf("cbet stack field = %q", cbet.Filters.EffStackField)
	}

	// Every preflop stat carries the 16bb effective-stack floor.
	for _, s := range c.Stats {
		if s.AppliesTo("POSTFLOP_ALL") {
			continue
		}
		if s.Filters.EffStackMinBB != 16 {
			t.Errorf("stat %q floor = %v, want 16", s.ID, s.Filters.EffStackMinBB)
		}
		if s.Filters.EffStackField != "" {
			t.Errorf("stat %q reads %q instead of the default stack field", s.ID, s.Filters.EffStackField)
		}
	}

	// RFI_EARLY fires only for an unopened pot from early position.
	rfi := byID["rfi_early"]
	open := map[string]any{
		"unopened_pot":         true,
		"hero_pos_group":       "EP",
		"hero_raised_first_in": true,
	}
	if !rfi.Opportunity.Eval(open) || !rfi.Attempt.Eval(open) {
		t.Error("rfi_early must fire for an EP open")
	}
	open["hero_pos_group"] = "LP"
	if rfi.Opportunity.Eval(open) {
		t.Error("rfi_early must not fire from late position")
	}
}

func TestLoadCatalogValidation(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			"duplicate id",
			"stats:\n" +
				"  - {id: a, groups: [PKO_PREF], opportunity: x, attempt: y}\n" +
				"  - {id: a, groups: [PKO_PREF], opportunity: x, attempt: y}\n",
			"duplicate stat id",
		},
		{
			"missing attempt",
			"stats:\n  - {id: a, groups: [PKO_PREF], opportunity: x}\n",
			"no attempt clause",
		},
		{
			"unknown group",
			"stats:\n  - {id: a, groups: [WAT], opportunity: x, attempt: y}\n",
			"unknown group",
		},
		{
			"empty",
			"stats: []\n",
			"no stats",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "catalog.yaml")
			if err := os.WriteFile(path, []byte(c.src), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), c.want) {
				t.Errorf("Load = %v, want %q", err, c.want)
			}
		})
	}
}
