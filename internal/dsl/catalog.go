package dsl

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rmgil/go-poker-metrics/internal/partition"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Filters narrow a stat's sample before the opportunity clause runs.
type Filters struct {
	HeadsUpOnly         bool     `yaml:"heads_up_only"`
	PotType             []string `yaml:"pot_type"`
	EffStackMinBB       float64  `yaml:"eff_stack_min_bb"`
	EffStackField       string   `yaml:"eff_stack_field"`
	ExcludeAllinPreflop bool     `yaml:"exclude_allin_preflop"`
}

// Pass reports whether the hand's context survives the filters. The
// effective-stack floor reads eff_stack_bb unless the entry names another
// stack field, and fails when that field is undefined.
func (f Filters) Pass(ctx map[string]any) bool {
	if f.HeadsUpOnly && !truthy(ctx["heads_up_flop"]) {
		return false
	}
	if len(f.PotType) > 0 {
		pt, _ := ctx["pot_type"].(string)
		found := false
		for _, want := range f.PotType {
			if pt == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.EffStackMinBB > 0 {
		field := f.EffStackField
		if field == "" {
			field = "eff_stack_bb"
		}
		eff, ok := toFloat(ctx[field])
		if !ok || eff < f.EffStackMinBB {
			return false
		}
	}
	if f.ExcludeAllinPreflop && truthy(ctx["any_allin_preflop"]) {
		return false
	}
	return true
}

// Stat is one catalog entry: an opportunity clause deciding whether the hand
// counts at all and an attempt clause deciding whether the hero took the
// line. Attempts are only evaluated on opportunities.
type Stat struct {
	ID          string   `yaml:"id"`
	Label       string   `yaml:"label"`
	Groups      []string `yaml:"groups"`
	Opportunity *Clause  `yaml:"opportunity"`
	Attempt     *Clause  `yaml:"attempt"`
	Filters     Filters  `yaml:"filters"`
}

// AppliesTo reports whether the stat is evaluated for the given strategic
// group.
func (s *Stat) AppliesTo(group string) bool {
	for _, g := range s.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Catalog is the full stat definition set.
type Catalog struct {
	Version int    `yaml:"version"`
	Stats   []Stat `yaml:"stats"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return parse(defaultCatalog)
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := parse(buf)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func parse(buf []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(buf, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects catalogs with duplicate or missing ids, stats without
// both clauses and references to unknown strategic groups.
func (c *Catalog) Validate() error {
	if len(c.Stats) == 0 {
		return fmt.Errorf("catalog defines no stats")
	}
	known := make(map[string]bool, len(partition.Groups))
	for _, g := range partition.Groups {
		known[g] = true
	}

	seen := make(map[string]bool, len(c.Stats))
	for i, s := range c.Stats {
		if s.ID == "" {
			return fmt.Errorf("stat %d has no id", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate stat id %q", s.ID)
		}
		seen[s.ID] = true
		if s.Opportunity == nil {
			return fmt.Errorf("stat %q has no opportunity clause", s.ID)
		}
		if s.Attempt == nil {
			return fmt.Errorf("stat %q has no attempt clause", s.ID)
		}
		if len(s.Groups) == 0 {
			return fmt.Errorf("stat %q applies to no group", s.ID)
		}
		for _, g := range s.Groups {
			if !known[g] {
				return fmt.Errorf("stat %q references unknown group %q", s.ID, g)
			}
		}
	}
	return nil
}
