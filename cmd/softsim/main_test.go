package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/softsim/internal/geom"
	"github.com/san-kum/softsim/internal/particle"
	"github.com/san-kum/softsim/internal/sim"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

func testFrames() []sim.Frame {
	return []sim.Frame{
		{Time: 0, Points: []r2.Vec{geom.Vec(0, 10), geom.Vec(1, 10)}},
		{Time: 1, Points: []r2.Vec{geom.Vec(0, 9), geom.Vec(1, 7)}},
		{Time: 2, Points: []r2.Vec{geom.Vec(0, 8), geom.Vec(1, 9)}},
	}
}

func TestPlotSeriesSag(t *testing.T) {
	data, caption, err := plotSeries(testFrames(), particle.NoParticle)
	if err != nil {
		t.Fatal(err)
	}
	if caption != "max sag" {
		t.Errorf("caption = %q", caption)
	}
	want := []float64{0, 3, 2}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("sag[%d] = %f, want %f", i, data[i], want[i])
		}
	}
}

func TestPlotSeriesParticle(t *testing.T) {
	data, _, err := plotSeries(testFrames(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if data[1] != 7 {
		t.Errorf("expected height 7, got %f", data[1])
	}
	if _, _, err := plotSeries(testFrames(), 5); err == nil {
		t.Error("expected out of range error")
	}
}

func TestPad(t *testing.T) {
	b := pad(r2.Box{Max: geom.Vec(100, 0)}, 0.1)
	if b.Min.X != -10 || b.Max.X != 110 {
		t.Errorf("unexpected x range %v", b)
	}
	if b.Min.Y != -1 || b.Max.Y != 1 {
		t.Errorf("flat box should get a unit margin, got %v", b)
	}
}

func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "")
	addSceneFlags(cmd)
	preset, configFile = "", ""
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestLoadConfigFlags(t *testing.T) {
	cfg, err := loadConfig(newTestCmd(t, "--mode", "plant", "--time", "2", "--seed", "9"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != "plant" || cfg.Duration != 2 || cfg.Seed != 9 {
		t.Errorf("flags not applied: %+v", cfg)
	}
}

func TestLoadConfigPreset(t *testing.T) {
	cfg, err := loadConfig(newTestCmd(t, "--preset", "tattered", "--step", "0.005"))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Cloth.Healing || cfg.Step != 0.005 {
		t.Errorf("preset or flag lost: %+v", cfg)
	}

	if _, err := loadConfig(newTestCmd(t, "--preset", "nope")); err == nil {
		t.Error("expected unknown preset error")
	}
	if _, err := loadConfig(newTestCmd(t, "--step", "-1")); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoadConfigPresetFindsMode(t *testing.T) {
	cfg, err := loadConfig(newTestCmd(t, "--preset", "pair"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != "plant" {
		t.Errorf("expected plant mode from the pair preset, got %s", cfg.Mode)
	}

	_, err = loadConfig(newTestCmd(t, "--preset", "pair", "--mode", "cloth"))
	if err == nil {
		t.Error("expected pair to be missing from cloth presets")
	}
}

func TestLoadConfigFileOverPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("duration: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(newTestCmd(t, "--preset", "breezy", "--config", path))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Duration != 4 {
		t.Errorf("config file not applied, duration %g", cfg.Duration)
	}
	if cfg.Mode != "plant" || cfg.Wind != 40 {
		t.Errorf("preset lost under config file: %+v", cfg)
	}
}
