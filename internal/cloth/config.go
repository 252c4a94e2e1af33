package cloth

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/softsim/internal/geom"
	"github.com/san-kum/softsim/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

// MassSplit decides how the cloth's total mass divides between its top and
// bottom halves.
type MassSplit int

const (
	Uniform MassSplit = iota
	TopHeavy
	BottomHeavy
)

func (m MassSplit) String() string {
	switch m {
	case TopHeavy:
		return "top_heavy"
	case BottomHeavy:
		return "bottom_heavy"
	case Uniform:
		return "uniform"
	default:
		return fmt.Sprintf("MassSplit(%d)", int(m))
	}
}

// TopFraction is the share of total mass carried by the top half.
func (m MassSplit) TopFraction() (float64, bool) {
	switch m {
	case TopHeavy:
		return 0.75, true
	case BottomHeavy:
		return 0.25, true
	case Uniform:
		return 0.5, true
	}
	return 0, false
}

func ParseMassSplit(s string) (MassSplit, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "-", "_")) {
	case "", "uniform":
		return Uniform, nil
	case "top_heavy":
		return TopHeavy, nil
	case "bottom_heavy":
		return BottomHeavy, nil
	}
	return Uniform, fmt.Errorf("unknown mass split: %q", s)
}

const (
	DefaultColumns     = 30
	DefaultRows        = 15
	DefaultLink        = 3.0
	DefaultTotalMass   = 2000.0
	DefaultGravity     = -400.0
	DefaultPinInterval = 10
)

var DefaultWorldSize = r2.Vec{X: 200, Y: 100}

type Config struct {
	Columns       int
	Rows          int
	Link          r2.Vec
	MassSplit     MassSplit
	TotalMass     float64
	Gravity       float64
	WorldSize     r2.Vec
	PinInterval   int
	PinLastColumn bool
	Healing       bool
}

func DefaultConfig() Config {
	return Config{
		Columns:       DefaultColumns,
		Rows:          DefaultRows,
		Link:          r2.Vec{X: DefaultLink, Y: DefaultLink},
		MassSplit:     Uniform,
		TotalMass:     DefaultTotalMass,
		Gravity:       DefaultGravity,
		WorldSize:     DefaultWorldSize,
		PinInterval:   DefaultPinInterval,
		PinLastColumn: true,
	}
}

// Validate checks the grid and mass settings before any particle is built.
func (c Config) Validate() error {
	if c.Columns < 2 || c.Rows < 2 {
		return c.fail(particle.ErrInvalidGrid, "need at least 2x2 particles, got %dx%d", c.Columns, c.Rows)
	}
	if !(c.Link.X > 0) || !(c.Link.Y > 0) || math.IsInf(c.Link.X, 0) || math.IsInf(c.Link.Y, 0) {
		return c.fail(particle.ErrInvalidGrid, "link lengths must be positive, got %v", c.Link)
	}
	if !geom.IsFinite(c.WorldSize) {
		return c.fail(particle.ErrInvalidGrid, "world size must be finite, got %v", c.WorldSize)
	}
	if math.IsNaN(c.Gravity) || math.IsInf(c.Gravity, 0) {
		return c.fail(particle.ErrInvalidForce, "gravity must be finite, got %g", c.Gravity)
	}
	if c.PinInterval < 0 {
		return c.fail(particle.ErrInvalidGrid, "pin interval must not be negative, got %d", c.PinInterval)
	}
	if _, ok := c.MassSplit.TopFraction(); !ok {
		return c.fail(particle.ErrInvalidMass, "unknown mass split %v", c.MassSplit)
	}
	top, bottom := c.particleMasses()
	for _, m := range []float64{top, bottom} {
		if !(m > 0) || math.IsInf(m, 0) {
			return c.fail(particle.ErrInvalidMass, "total mass %g gives per-particle mass %g", c.TotalMass, m)
		}
	}
	return nil
}

// particleMasses returns the mass of each particle in the top rows and in
// the remaining rows.
func (c Config) particleMasses() (top, bottom float64) {
	frac, _ := c.MassSplit.TopFraction()
	topCount := (c.Rows / 2) * c.Columns
	bottomCount := c.Columns*c.Rows - topCount
	topMass := c.TotalMass * frac
	return topMass / float64(topCount), (c.TotalMass - topMass) / float64(bottomCount)
}

func (c Config) fail(err error, format string, args ...any) error {
	return &particle.ConstructionError{Structure: "cloth", Detail: fmt.Sprintf(format, args...), Wrapped: err}
}
