// Package cloth simulates a rectangular particle mesh held together by
// horizontal and vertical distance links.
package cloth

import (
	"math"

	"github.com/san-kum/softsim/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// ErrorRoom shortens every link's rest length so the mesh starts taut.
	ErrorRoom = 0.3

	// Iterations is the number of relaxation passes per step.
	Iterations = 2

	minRestLength = 1e-3
)

type Cloth struct {
	particle.Solver

	cfg        Config
	horizontal []particle.DistanceConstraint
	vertical   []particle.DistanceConstraint

	broken        map[int]struct{}
	brokenOrder   []int
	bad           []particle.DistanceConstraint
	healingTimer  float64
	healingActive bool
}

var _ particle.System = (*Cloth)(nil)
var _ particle.LinkBreaker = (*Cloth)(nil)

// New lays out and links a cloth. An invalid configuration aborts with a
// *particle.ConstructionError.
func New(cfg Config) (*Cloth, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Cloth{
		cfg:           cfg,
		broken:        make(map[int]struct{}),
		healingActive: cfg.Healing,
	}
	c.Solver = particle.NewSolver(make([]particle.Particle, 0, cfg.Columns*cfg.Rows), cfg.Gravity)
	c.initParticles()
	c.initConstraints()
	c.pinTopRow()
	return c, nil
}

func (c *Cloth) initParticles() {
	topMass, bottomMass := c.cfg.particleMasses()
	world, link := c.cfg.WorldSize, c.cfg.Link

	start := r2.Vec{
		X: (world.X - float64(c.cfg.Columns-1)*link.X) / 2,
		Y: world.Y - (world.Y-float64(c.cfg.Rows-1)*link.Y)/2,
	}

	for y := 0; y < c.cfg.Rows; y++ {
		mass := bottomMass
		if y < c.cfg.Rows/2 {
			mass = topMass
		}
		for x := 0; x < c.cfg.Columns; x++ {
			p := particle.At(r2.Add(start, r2.Vec{X: float64(x) * link.X, Y: -float64(y) * link.Y}))
			p.Mass = mass
			c.Add(p)
		}
	}
}

func (c *Cloth) initConstraints() {
	restX := math.Max(c.cfg.Link.X-ErrorRoom, minRestLength)
	restY := math.Max(c.cfg.Link.Y-ErrorRoom, minRestLength)

	for y := 0; y < c.cfg.Rows; y++ {
		for x := 0; x < c.cfg.Columns; x++ {
			i := c.Index(x, y)
			if x < c.cfg.Columns-1 {
				c.horizontal = append(c.horizontal, particle.DistanceConstraint{
					A: i, B: c.Index(x+1, y), RestLength: restX, OriginalRestLength: restX,
				})
			}
			if y < c.cfg.Rows-1 {
				c.vertical = append(c.vertical, particle.DistanceConstraint{
					A: i, B: c.Index(x, y+1), RestLength: restY, OriginalRestLength: restY,
				})
			}
		}
	}
}

func (c *Cloth) pinTopRow() {
	ps := c.Particles()
	for x := 0; x < c.cfg.Columns; x++ {
		if c.cfg.PinInterval > 0 && x%c.cfg.PinInterval == 0 {
			ps[x].Pinned = true
		}
		if c.cfg.PinLastColumn && x == c.cfg.Columns-1 {
			ps[x].Pinned = true
		}
	}
}

// Index maps grid coordinates to a particle index, row-major from the top
// left. It returns particle.NoParticle outside the grid.
func (c *Cloth) Index(x, y int) int {
	if x < 0 || y < 0 || x >= c.cfg.Columns || y >= c.cfg.Rows {
		return particle.NoParticle
	}
	return x + y*c.cfg.Columns
}

// Coords is the inverse of Index.
func (c *Cloth) Coords(i int) (x, y int) {
	return i % c.cfg.Columns, i / c.cfg.Columns
}

func (c *Cloth) Dimensions() (cols, rows int) { return c.cfg.Columns, c.cfg.Rows }
func (c *Cloth) Config() Config               { return c.cfg }

// Update advances the cloth by one fixed step.
func (c *Cloth) Update(dt float64) {
	if c.healingActive {
		c.IdentifyBadConstraints(dt)
	}
	c.Integrate(dt)
	c.SatisfyConstraints()
}

func (c *Cloth) SatisfyConstraints() {
	for j := 0; j < Iterations; j++ {
		for i := range c.horizontal {
			c.SatisfyDistance(&c.horizontal[i])
		}
		for i := range c.vertical {
			c.SatisfyDistance(&c.vertical[i])
		}
	}
}

func (c *Cloth) MovePoint(target r2.Vec, grabbed int) int {
	return c.GrabAndMove(target, grabbed)
}

// DistanceConstraints returns the horizontal links followed by the vertical
// ones.
func (c *Cloth) DistanceConstraints() []particle.DistanceConstraint {
	out := make([]particle.DistanceConstraint, 0, len(c.horizontal)+len(c.vertical))
	out = append(out, c.horizontal...)
	return append(out, c.vertical...)
}

func (c *Cloth) HorizontalConstraints() []particle.DistanceConstraint { return c.horizontal }
func (c *Cloth) VerticalConstraints() []particle.DistanceConstraint   { return c.vertical }

func (c *Cloth) SetHealing(on bool) {
	c.healingActive = on
	c.healingTimer = 0
	if !on {
		c.bad = c.bad[:0]
	}
}

func (c *Cloth) Healing() bool { return c.healingActive }
