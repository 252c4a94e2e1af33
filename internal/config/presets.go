package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/softsim/internal/cloth"
)

func preset(mode string, apply func(c *Config)) *Config {
	c := DefaultConfig()
	c.Mode = mode
	apply(c)
	return c
}

var Presets = map[string]map[string]*Config{
	"cloth": {
		"default": preset("cloth", func(c *Config) {}),
		"top_heavy": preset("cloth", func(c *Config) {
			c.Cloth.MassSplit = cloth.TopHeavy.String()
		}),
		"bottom_heavy": preset("cloth", func(c *Config) {
			c.Cloth.MassSplit = cloth.BottomHeavy.String()
		}),
		"tattered": preset("cloth", func(c *Config) {
			c.Cloth.Columns, c.Cloth.Rows = 20, 12
			c.Cloth.Healing = true
			c.Wind = 60
			c.Duration = 20
		}),
	},
	"plant": {
		"pair": preset("plant", func(c *Config) {}),
		"breezy": preset("plant", func(c *Config) {
			c.Wind = 40
			c.FrameJitter = 0.3
			c.Duration = 20
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(mode, name string) *Config {
	modePresets, ok := Presets[mode]
	if !ok {
		return nil
	}
	cfg, ok := modePresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// FindPreset looks a preset up by name. An empty mode searches every mode
// and fails if the name is missing or belongs to more than one.
func FindPreset(mode, name string) (*Config, error) {
	if mode != "" {
		if cfg := GetPreset(mode, name); cfg != nil {
			return cfg, nil
		}
		return nil, fmt.Errorf("unknown %s preset %q (available: %v)", mode, name, ListPresets(mode))
	}

	var found []string
	for _, m := range Modes() {
		if _, ok := Presets[m][name]; ok {
			found = append(found, m)
		}
	}
	switch len(found) {
	case 0:
		var all []string
		for _, m := range Modes() {
			for _, n := range ListPresets(m) {
				all = append(all, m+"/"+n)
			}
		}
		return nil, fmt.Errorf("unknown preset %q (available: %v)", name, all)
	case 1:
		return GetPreset(found[0], name), nil
	}
	return nil, fmt.Errorf("preset %q exists in modes %v, pick one with --mode", name, found)
}

func ListPresets(mode string) []string {
	modePresets, ok := Presets[mode]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modePresets))
	for name := range modePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Modes lists the modes that have presets.
func Modes() []string {
	modes := make([]string, 0, len(Presets))
	for m := range Presets {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}
