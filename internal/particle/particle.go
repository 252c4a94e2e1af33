package particle

import "gonum.org/v1/gonum/spatial/r2"

// NoParticle is the empty grab handle.
const NoParticle = -1

type Particle struct {
	Pos    r2.Vec
	Prev   r2.Vec
	Mass   float64
	Pinned bool
}

// At returns an unpinned particle of unit mass resting at p.
func At(p r2.Vec) Particle {
	return Particle{Pos: p, Prev: p, Mass: 1}
}

func (p *Particle) InvMass() float64 { return 1 / p.Mass }

// Velocity is the implicit per-step displacement.
func (p *Particle) Velocity() r2.Vec { return r2.Sub(p.Pos, p.Prev) }

type DistanceConstraint struct {
	A, B               int
	RestLength         float64
	OriginalRestLength float64
}

// AngularConstraint holds the included angle at Common between A and B.
type AngularConstraint struct {
	A, B, Common        int
	DesiredAngleDegrees float64
}
