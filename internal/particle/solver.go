package particle

import (
	"fmt"

	"github.com/san-kum/softsim/internal/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// Drag damps the implicit velocity every step.
	Drag = 0.01

	// GrabRadius is how close a drag target must be to pick up a particle.
	GrabRadius = 2.0

	// MinDistance guards distance relaxation against coincident particles.
	MinDistance = 1e-6
)

// Solver is the integration and relaxation core embedded by structures.
type Solver struct {
	particles       []Particle
	horizontalForce float64
	Gravity         float64
}

func NewSolver(particles []Particle, gravity float64) Solver {
	return Solver{particles: particles, Gravity: gravity}
}

func (s *Solver) Particles() []Particle { return s.particles }
func (s *Solver) Len() int              { return len(s.particles) }
func (s *Solver) Valid(i int) bool      { return i >= 0 && i < len(s.particles) }

// Particle returns the particle at i, or nil for an invalid index.
func (s *Solver) Particle(i int) *Particle {
	if !s.Valid(i) {
		return nil
	}
	return &s.particles[i]
}

// Add appends p and returns its index.
func (s *Solver) Add(p Particle) int {
	s.particles = append(s.particles, p)
	return len(s.particles) - 1
}

func (s *Solver) HorizontalForce() float64 { return s.horizontalForce }

func (s *Solver) ChangeHorizontalForceBy(delta float64) {
	s.horizontalForce += delta
}

// Integrate advances every unpinned particle by one Verlet step.
func (s *Solver) Integrate(dt float64) {
	acc := r2.Scale(dt*dt, r2.Vec{X: s.horizontalForce, Y: s.Gravity})
	for i := range s.particles {
		p := &s.particles[i]
		if p.Pinned {
			continue
		}
		cur := p.Pos
		p.Pos = r2.Add(cur, r2.Add(r2.Scale(1-Drag, r2.Sub(cur, p.Prev)), acc))
		p.Prev = cur
	}
}

// SatisfyDistance applies one mass-weighted correction to c.
func (s *Solver) SatisfyDistance(c *DistanceConstraint) {
	if !s.Valid(c.A) || !s.Valid(c.B) {
		return
	}
	a, b := &s.particles[c.A], &s.particles[c.B]
	wA, wB := a.InvMass(), b.InvMass()

	ab := r2.Sub(b.Pos, a.Pos)
	d := r2.Norm(ab)
	if d < MinDistance || wA+wB <= 0 {
		return
	}
	excess := (d - c.RestLength) / (d * (wA + wB))

	if !a.Pinned {
		a.Pos = r2.Add(a.Pos, r2.Scale(wA*excess, ab))
	}
	if !b.Pinned {
		b.Pos = r2.Sub(b.Pos, r2.Scale(wB*excess, ab))
	}
}

// SatisfyAngular swings A and B about Common so the included angle returns
// to its desired value. Pins and masses are ignored.
func (s *Solver) SatisfyAngular(c AngularConstraint) {
	if !s.Valid(c.A) || !s.Valid(c.B) || !s.Valid(c.Common) {
		return
	}
	a, b, common := &s.particles[c.A], &s.particles[c.B], s.particles[c.Common].Pos

	v1 := r2.Sub(a.Pos, common)
	v2 := r2.Sub(b.Pos, common)
	u1, ok1 := geom.SafeUnit(v1)
	u2, ok2 := geom.SafeUnit(v2)
	if !ok1 || !ok2 {
		return
	}
	bisector, ok := geom.SafeUnit(r2.Add(u1, u2))
	if !ok {
		return
	}

	sign := -1.0
	if r2.Cross(bisector, v1) > 0 {
		sign = 1.0
	}
	half := c.DesiredAngleDegrees / 2

	a.Pos = r2.Add(common, r2.Scale(r2.Norm(v1), geom.RotateDegrees(bisector, half*sign)))
	b.Pos = r2.Add(common, r2.Scale(r2.Norm(v2), geom.RotateDegrees(bisector, -half*sign)))
}

// GrabAndMove drags a particle to target. With nothing grabbed, the first
// particle within GrabRadius is picked up; the returned index is the handle
// to pass on the next call. Clearing the handle is the caller's job.
func (s *Solver) GrabAndMove(target r2.Vec, grabbed int) int {
	if grabbed == NoParticle {
		for i := range s.particles {
			if geom.IsPointInsideDisc(s.particles[i].Pos, target, GrabRadius) {
				s.particles[i].Pos = target
				return i
			}
		}
		return NoParticle
	}
	if !s.Valid(grabbed) {
		return NoParticle
	}
	s.particles[grabbed].Pos = target
	return grabbed
}

// TogglePin flips the pinned flag at i and returns the new state.
func (s *Solver) TogglePin(i int) bool {
	if !s.Valid(i) {
		return false
	}
	p := &s.particles[i]
	p.Pinned = !p.Pinned
	if p.Pinned {
		p.Prev = p.Pos
	}
	return p.Pinned
}

// CheckFinite reports the first particle holding a NaN or Inf position.
// CheckFinite reports the first particle whose position is NaN or Inf,
// wrapping ErrUnstable.
func (s *Solver) CheckFinite() error {
	for i := range s.particles {
		if !geom.IsFinite(s.particles[i].Pos) {
			return fmt.Errorf("particle %d at %v: %w", i, s.particles[i].Pos, ErrUnstable)
		}
	}
	return nil
}

// Points copies the current particle positions.
func (s *Solver) Points() []r2.Vec {
	pts := make([]r2.Vec, len(s.particles))
	for i := range s.particles {
		pts[i] = s.particles[i].Pos
	}
	return pts
}
