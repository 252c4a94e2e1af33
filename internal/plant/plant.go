// Package plant simulates a small tree: a pinned leaf-stem fan with two side
// branches held at their natural angles by angular constraints.
package plant

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/softsim/internal/geom"
	"github.com/san-kum/softsim/internal/layout"
	"github.com/san-kum/softsim/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	DefaultGravity = -50.0

	// Iterations is the number of relaxation passes per step.
	Iterations = 1
)

type Plant struct {
	particle.Solver

	constraints []particle.DistanceConstraint
	angular     []particle.AngularConstraint
	skeleton    []int

	// StructureOnly limits rendered lines to the skeleton.
	StructureOnly bool
}

var _ particle.System = (*Plant)(nil)

func newPlant(gravity float64) *Plant {
	return &Plant{
		Solver:        particle.NewSolver(make([]particle.Particle, 0, 32), gravity),
		StructureOnly: true,
	}
}

// New grows a plant from root. Branch sizes are drawn from rng.
func New(root r2.Vec, rng *rand.Rand) *Plant {
	p := newPlant(DefaultGravity)
	p.buildStem(90, root, true)

	last := p.Len() - 1
	p.buildBranch(root, branchOne, scale(rng))
	p.addDistance(last+1, 8, true)
	p.addAngular(9, last+1, 8)
	p.addDistance(last+2, 8, false)

	last = p.Len() - 1
	p.buildBranch(root, branchTwo, scale(rng))
	p.addDistance(last+1, 5, true)
	p.addAngular(6, last+1, 5)
	p.addDistance(last+3, 5, false)

	return p
}

// FromLayout builds a plant from a loaded layout. Every link is part of the
// rendered skeleton.
func FromLayout(l *layout.Layout, gravity float64) (*Plant, error) {
	if err := l.Validate(); err != nil {
		return nil, &particle.ConstructionError{Structure: "plant", Wrapped: err}
	}
	if math.IsNaN(gravity) || math.IsInf(gravity, 0) {
		return nil, &particle.ConstructionError{
			Structure: "plant",
			Detail:    fmt.Sprintf("gravity %g", gravity),
			Wrapped:   particle.ErrInvalidForce,
		}
	}
	p := newPlant(gravity)
	for _, pt := range l.Points {
		q := particle.At(geom.Vec(pt.X, pt.Y))
		q.Mass = pt.Mass
		q.Pinned = pt.Pinned
		p.Add(q)
	}
	for _, lk := range l.Links {
		p.addDistance(lk.A, lk.B, true)
	}
	return p, nil
}

func scale(rng *rand.Rand) float64 {
	return 0.7 + rng.Float64()*0.5
}

func (p *Plant) addDistance(a, b int, render bool) {
	ps := p.Particles()
	rest := geom.Distance(ps[a].Pos, ps[b].Pos)
	p.constraints = append(p.constraints, particle.DistanceConstraint{
		A: a, B: b, RestLength: rest, OriginalRestLength: rest,
	})
	if render {
		p.skeleton = append(p.skeleton, len(p.constraints)-1)
	}
}

func (p *Plant) addAngular(a, b, common int) {
	ps := p.Particles()
	c := ps[common].Pos
	p.angular = append(p.angular, particle.AngularConstraint{
		A: a, B: b, Common: common,
		DesiredAngleDegrees: geom.AngleBetweenDegrees(r2.Sub(ps[a].Pos, c), r2.Sub(ps[b].Pos, c)),
	})
}

func (p *Plant) Update(dt float64) {
	p.Integrate(dt)
	p.SatisfyConstraints()
}

// SatisfyConstraints applies every distance constraint and then every
// angular constraint, in insertion order.
func (p *Plant) SatisfyConstraints() {
	for j := 0; j < Iterations; j++ {
		for i := range p.constraints {
			p.SatisfyDistance(&p.constraints[i])
		}
		for _, ac := range p.angular {
			p.SatisfyAngular(ac)
		}
	}
}

func (p *Plant) MovePoint(target r2.Vec, grabbed int) int {
	return p.GrabAndMove(target, grabbed)
}

func (p *Plant) DistanceConstraints() []particle.DistanceConstraint { return p.constraints }
func (p *Plant) AngularConstraints() []particle.AngularConstraint   { return p.angular }

// Skeleton returns the render-only subset of distance constraints.
func (p *Plant) Skeleton() []particle.DistanceConstraint {
	out := make([]particle.DistanceConstraint, len(p.skeleton))
	for i, ci := range p.skeleton {
		out[i] = p.constraints[ci]
	}
	return out
}

func (p *Plant) RenderData() particle.RenderData {
	ps := p.Particles()
	data := particle.RenderData{Points: p.Points()}
	if !p.StructureOnly {
		for _, dc := range p.constraints {
			data.Lines = append(data.Lines, particle.Segment{A: ps[dc.A].Pos, B: ps[dc.B].Pos})
		}
	}
	for _, ci := range p.skeleton {
		dc := p.constraints[ci]
		data.Lines = append(data.Lines, particle.Segment{A: ps[dc.A].Pos, B: ps[dc.B].Pos, Kind: particle.SegmentSkeleton})
	}
	return data
}
