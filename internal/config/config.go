package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/softsim/internal/cloth"
	"github.com/san-kum/softsim/internal/geom"
	"github.com/san-kum/softsim/internal/layout"
	"github.com/san-kum/softsim/internal/logging"
	"github.com/san-kum/softsim/internal/plant"
	"github.com/san-kum/softsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultStep     = sim.DefaultStep
	DefaultFrameDt  = 1.0 / 60
	DefaultDuration = 10.0
	DefaultMaxSteps = 25
)

type Config struct {
	Mode        string          `yaml:"mode"`
	Step        float64         `yaml:"step"`
	MaxSteps    int             `yaml:"max_steps"`
	FrameDt     float64         `yaml:"frame_dt"`
	Duration    float64         `yaml:"duration"`
	Seed        int64           `yaml:"seed"`
	FrameJitter float64         `yaml:"frame_jitter"`
	Wind        float64         `yaml:"wind"`
	LogLevel    string          `yaml:"log_level"`
	World       Vec             `yaml:"world"`
	Cloth       ClothConfig     `yaml:"cloth"`
	Plant       PlantConfig     `yaml:"plant"`
	Collision   CollisionConfig `yaml:"collision"`
}

type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v Vec) R2() r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }

type ClothConfig struct {
	Columns       int     `yaml:"columns"`
	Rows          int     `yaml:"rows"`
	Link          Vec     `yaml:"link"`
	MassSplit     string  `yaml:"mass_split"`
	TotalMass     float64 `yaml:"total_mass"`
	Gravity       float64 `yaml:"gravity"`
	PinInterval   int     `yaml:"pin_interval"`
	PinLastColumn bool    `yaml:"pin_last_column"`
	Healing       bool    `yaml:"healing"`
}

type PlantConfig struct {
	Roots   []Vec   `yaml:"roots"`
	Gravity float64 `yaml:"gravity"`
	// Layout is an optional .yaml or .xml particle layout replacing the
	// generated plants.
	Layout string `yaml:"layout,omitempty"`
}

type CollisionConfig struct {
	Circle CircleConfig `yaml:"circle"`
	Box    BoxConfig    `yaml:"box"`
}

type CircleConfig struct {
	Center Vec     `yaml:"center"`
	Radius float64 `yaml:"radius"`
}

type BoxConfig struct {
	Min    Vec     `yaml:"min"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

func DefaultConfig() *Config {
	cc := cloth.DefaultConfig()
	return &Config{
		Mode:     sim.ModeCloth.String(),
		Step:     DefaultStep,
		MaxSteps: DefaultMaxSteps,
		FrameDt:  DefaultFrameDt,
		Duration: DefaultDuration,
		LogLevel: logging.DefaultLevel,
		World:    Vec{X: cc.WorldSize.X, Y: cc.WorldSize.Y},
		Cloth: ClothConfig{
			Columns:       cc.Columns,
			Rows:          cc.Rows,
			Link:          Vec{X: cc.Link.X, Y: cc.Link.Y},
			MassSplit:     cc.MassSplit.String(),
			TotalMass:     cc.TotalMass,
			Gravity:       cc.Gravity,
			PinInterval:   cc.PinInterval,
			PinLastColumn: cc.PinLastColumn,
		},
		Plant: PlantConfig{
			Roots:   []Vec{{X: 100, Y: 20}, {X: 50, Y: 30}},
			Gravity: plant.DefaultGravity,
		},
		Collision: CollisionConfig{
			Circle: CircleConfig{Center: Vec{X: 90, Y: 10}, Radius: sim.CollisionCircleRadius},
			Box:    BoxConfig{Min: Vec{X: 10, Y: 90}, Width: sim.CollisionBoxWidth, Height: sim.CollisionBoxHeight},
		},
	}
}

// Load reads a config file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto reads a config file over a copy of base, so keys missing from the
// file keep the base values.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Plant.Roots = append([]Vec(nil), c.Plant.Roots...)
	return &cp
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	if _, err := sim.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if !(c.Step > 0) {
		errs = append(errs, fmt.Errorf("step must be positive, got %g", c.Step))
	}
	if c.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("max_steps must not be negative, got %d", c.MaxSteps))
	}
	if !(c.FrameDt > 0) {
		errs = append(errs, fmt.Errorf("frame_dt must be positive, got %g", c.FrameDt))
	}
	if !(c.Duration > 0) {
		errs = append(errs, fmt.Errorf("duration must be positive, got %g", c.Duration))
	}
	if c.FrameJitter < 0 || c.FrameJitter >= 1 {
		errs = append(errs, fmt.Errorf("frame_jitter must be in [0, 1), got %g", c.FrameJitter))
	}
	if _, err := c.ClothConfig(); err != nil {
		errs = append(errs, err)
	}
	if !finite(c.Wind) {
		errs = append(errs, fmt.Errorf("wind must be finite, got %g", c.Wind))
	}
	if !finite(c.Plant.Gravity) {
		errs = append(errs, fmt.Errorf("plant gravity must be finite, got %g", c.Plant.Gravity))
	}
	for i, r := range c.Plant.Roots {
		if !geom.IsFinite(r.R2()) {
			errs = append(errs, fmt.Errorf("plant root %d must be finite, got %v", i, r))
		}
	}
	if !geom.IsFinite(c.Collision.Circle.Center.R2()) || !geom.IsFinite(c.Collision.Box.Min.R2()) {
		errs = append(errs, fmt.Errorf("collision positions must be finite"))
	}
	if c.Plant.Layout == "" && len(c.Plant.Roots) == 0 {
		errs = append(errs, fmt.Errorf("plant needs at least one root or a layout"))
	}
	if !(c.Collision.Circle.Radius >= 0) {
		errs = append(errs, fmt.Errorf("collision circle radius must not be negative, got %g", c.Collision.Circle.Radius))
	}
	if c.Collision.Box.Width < 0 || c.Collision.Box.Height < 0 {
		errs = append(errs, fmt.Errorf("collision box size must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) ClothConfig() (cloth.Config, error) {
	split, err := cloth.ParseMassSplit(c.Cloth.MassSplit)
	if err != nil {
		return cloth.Config{}, err
	}
	cc := cloth.Config{
		Columns:       c.Cloth.Columns,
		Rows:          c.Cloth.Rows,
		Link:          c.Cloth.Link.R2(),
		MassSplit:     split,
		TotalMass:     c.Cloth.TotalMass,
		Gravity:       c.Cloth.Gravity,
		WorldSize:     c.World.R2(),
		PinInterval:   c.Cloth.PinInterval,
		PinLastColumn: c.Cloth.PinLastColumn,
		Healing:       c.Cloth.Healing,
	}
	return cc, cc.Validate()
}

// SceneConfig resolves the file-level settings into a scene description,
// loading the plant layout if one is named.
func (c *Config) SceneConfig() (sim.SceneConfig, error) {
	if err := c.Validate(); err != nil {
		return sim.SceneConfig{}, err
	}
	mode, _ := sim.ParseMode(c.Mode)
	cc, _ := c.ClothConfig()

	sc := sim.SceneConfig{
		Mode:         mode,
		Step:         c.Step,
		MaxSteps:     c.MaxSteps,
		Seed:         c.Seed,
		Wind:         c.Wind,
		Cloth:        cc,
		PlantGravity: c.Plant.Gravity,
		Circle:       geom.Disc{Center: c.Collision.Circle.Center.R2(), Radius: c.Collision.Circle.Radius},
		Box:          geom.NewBox(c.Collision.Box.Min.R2(), c.Collision.Box.Width, c.Collision.Box.Height),
	}
	for _, r := range c.Plant.Roots {
		sc.PlantRoots = append(sc.PlantRoots, r.R2())
	}
	if c.Plant.Layout != "" {
		l, err := layout.Load(c.Plant.Layout)
		if err != nil {
			return sim.SceneConfig{}, err
		}
		sc.PlantLayout = l
	}
	return sc, nil
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		FrameDt:       c.FrameDt,
		Duration:      c.Duration,
		Seed:          c.Seed,
		FrameJitter:   c.FrameJitter,
		ValidateState: true,
	}
}
