package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/softsim/internal/cloth"
	"github.com/san-kum/softsim/internal/sim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != "cloth" {
		t.Errorf("expected mode cloth, got %s", cfg.Mode)
	}
	if cfg.Step <= 0 {
		t.Error("step should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestClothConfigMatchesClothDefaults(t *testing.T) {
	cc, err := DefaultConfig().ClothConfig()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cloth.DefaultConfig(), cc); diff != "" {
		t.Errorf("cloth defaults drifted (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"bad mode", func(c *Config) { c.Mode = "rope" }, "unknown mode"},
		{"zero step", func(c *Config) { c.Step = 0 }, "step must be positive"},
		{"negative cap", func(c *Config) { c.MaxSteps = -1 }, "max_steps"},
		{"zero frame", func(c *Config) { c.FrameDt = 0 }, "frame_dt"},
		{"zero duration", func(c *Config) { c.Duration = 0 }, "duration"},
		{"jitter", func(c *Config) { c.FrameJitter = 1.5 }, "frame_jitter"},
		{"mass split", func(c *Config) { c.Cloth.MassSplit = "sideways" }, "sideways"},
		{"tiny grid", func(c *Config) { c.Cloth.Rows = 1 }, "2x2"},
		{"no roots", func(c *Config) { c.Plant.Roots = nil }, "root"},
		{"negative radius", func(c *Config) { c.Collision.Circle.Radius = -1 }, "radius"},
		{"nan cloth gravity", func(c *Config) { c.Cloth.Gravity = math.NaN() }, "gravity must be finite"},
		{"infinite world", func(c *Config) { c.World.X = math.Inf(1) }, "world size"},
		{"nan plant gravity", func(c *Config) { c.Plant.Gravity = math.NaN() }, "plant gravity"},
		{"infinite wind", func(c *Config) { c.Wind = math.Inf(-1) }, "wind"},
		{"nan root", func(c *Config) { c.Plant.Roots[0].Y = math.NaN() }, "plant root 0"},
		{"nan circle", func(c *Config) { c.Collision.Circle.Center.X = math.NaN() }, "collision positions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "softsim.yaml")

	cfg := DefaultConfig()
	cfg.Mode = "plant"
	cfg.Wind = 15
	cfg.Cloth.MassSplit = "top_heavy"
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip changed config (-want +got):\n%s", diff)
	}
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "mode: plant\ncloth:\n  columns: 12\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != "plant" || cfg.Cloth.Columns != 12 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Cloth.Rows != cloth.DefaultRows || cfg.Step != DefaultStep {
		t.Errorf("defaults lost: rows %d step %f", cfg.Cloth.Rows, cfg.Step)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("mode: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}

	for _, doc := range []string{"cloth:\n  gravity: .nan\n", "cloth:\n  gravity: -.inf\n", "wind: .nan\n"} {
		path := filepath.Join(t.TempDir(), "nonfinite.yaml")
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("expected error for %q", doc)
		}
	}
}

func TestSceneConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = "plant"
	cfg.Wind = 5

	sc, err := cfg.SceneConfig()
	if err != nil {
		t.Fatal(err)
	}
	if sc.Mode != sim.ModePlant || sc.Wind != 5 || len(sc.PlantRoots) != 2 {
		t.Errorf("unexpected scene config %+v", sc)
	}
	if sc.Box.Max.X != 25 || sc.Box.Max.Y != 100 {
		t.Errorf("unexpected box %v", sc.Box)
	}

	scene, err := sim.NewScene(sc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if scene.HorizontalForce() != 5 {
		t.Errorf("expected starting wind 5, got %f", scene.HorizontalForce())
	}
}

func TestSceneConfig_Layout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stick.yaml")
	data := "points:\n  - {x: 0, y: 0, pinned: true}\n  - {x: 0, y: 5}\nlinks:\n  - {a: 0, b: 1}\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Plant.Layout = path
	sc, err := cfg.SceneConfig()
	if err != nil {
		t.Fatal(err)
	}
	if sc.PlantLayout == nil || len(sc.PlantLayout.Points) != 2 {
		t.Errorf("layout not loaded: %+v", sc.PlantLayout)
	}

	cfg.Plant.Layout = filepath.Join(dir, "missing.yaml")
	if _, err := cfg.SceneConfig(); err == nil {
		t.Error("expected error for missing layout")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("cloth", "top_heavy")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Cloth.MassSplit != "top_heavy" {
		t.Errorf("expected top_heavy split, got %s", cfg.Cloth.MassSplit)
	}

	cfg.Plant.Roots[0].X = -1
	if GetPreset("cloth", "top_heavy").Plant.Roots[0].X == -1 {
		t.Error("preset shared its roots with the caller")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("cloth", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "default") != nil {
		t.Error("expected nil for nonexistent mode")
	}
}

func TestFindPreset(t *testing.T) {
	tests := []struct {
		name, mode, preset string
		wantMode           string
		wantErr            string
	}{
		{"plant preset without mode", "", "pair", "plant", ""},
		{"cloth preset without mode", "", "tattered", "cloth", ""},
		{"explicit mode", "plant", "breezy", "plant", ""},
		{"wrong mode", "cloth", "pair", "", "unknown cloth preset"},
		{"missing everywhere", "", "nope", "", "plant/pair"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FindPreset(tt.mode, tt.preset)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Mode != tt.wantMode {
				t.Errorf("mode = %s, want %s", cfg.Mode, tt.wantMode)
			}
		})
	}
}

func TestFindPreset_Ambiguous(t *testing.T) {
	Presets["plant"]["default"] = preset("plant", func(c *Config) {})
	defer delete(Presets["plant"], "default")

	if _, err := FindPreset("", "default"); err == nil || !strings.Contains(err.Error(), "--mode") {
		t.Errorf("expected ambiguity error, got %v", err)
	}
}

func TestLoadOnto_KeepsBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "over.yaml")
	if err := os.WriteFile(path, []byte("duration: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := GetPreset("cloth", "tattered")
	cfg, err := LoadOnto(path, base)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Duration != 3 {
		t.Errorf("file value lost: duration %g", cfg.Duration)
	}
	if !cfg.Cloth.Healing || cfg.Wind != 60 || cfg.Cloth.Columns != 20 {
		t.Errorf("preset values lost: %+v", cfg)
	}
	if base.Duration != 20 {
		t.Error("LoadOnto modified its base")
	}
}

func TestPresetsValid(t *testing.T) {
	for _, mode := range Modes() {
		for _, name := range ListPresets(mode) {
			cfg := GetPreset(mode, name)
			if cfg.Mode != mode {
				t.Errorf("%s/%s has mode %s", mode, name, cfg.Mode)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s invalid: %v", mode, name, err)
			}
		}
	}
}

func TestListPresets(t *testing.T) {
	if diff := cmp.Diff([]string{"breezy", "pair"}, ListPresets("plant")); diff != "" {
		t.Errorf("plant presets (-want +got):\n%s", diff)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent mode")
	}
}
