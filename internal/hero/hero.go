// Package hero resolves which seated player is the hero. Rooms that print a
// "Dealt to" line identify the hero themselves; an optional alias config
// covers exports without one, or sessions played under several screen names.
package hero

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rmgil/go-poker-metrics/internal/model"
)

// Config maps rooms to the screen names the hero plays under. Room-specific
// lists take precedence over the global list. Matching is case-sensitive;
// screen names routinely differ only by case.
type Config struct {
	Global []string                `yaml:"global"`
	Rooms  map[model.Site][]string `yaml:"rooms"`
}

// Load reads an alias config from a YAML file.
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("parse alias config %s: %w", path, err)
	}
	return &cfg, nil
}

// Resolve sets h.Hero from the alias config when a seated player matches.
// The room's own list is consulted before the global one. A hand whose
// parser already found the hero keeps it unless an alias also matches; no
// alias matching at all is not an error, the hand simply stays hero-less.
func Resolve(h *model.Hand, cfg *Config) {
	if cfg == nil {
		return
	}
	for _, name := range cfg.Rooms[h.Site] {
		if apply(h, name) {
			return
		}
	}
	for _, name := range cfg.Global {
		if apply(h, name) {
			return
		}
	}
}

func apply(h *model.Hand, name string) bool {
	p := h.PlayerByName(name)
	if p == nil {
		return false
	}
	if h.Hero != "" && h.Hero != name {
		if prev := h.PlayerByName(h.Hero); prev != nil {
			prev.IsHero = false
		}
	}
	h.Hero = name
	p.IsHero = true
	return true
}
