package metrics

import (
	"math"

	"github.com/san-kum/softsim/internal/geom"
	"github.com/san-kum/softsim/internal/particle"
)

// MaxStrain is the largest relative stretch or squash of any distance
// constraint seen so far.
type MaxStrain struct {
	name      string
	maxStrain float64
}

func NewMaxStrain() *MaxStrain {
	return &MaxStrain{name: "max_strain"}
}

func (m *MaxStrain) Name() string { return m.name }

func (m *MaxStrain) Observe(sys particle.System, t float64) {
	m.maxStrain = math.Max(m.maxStrain, Strain(sys))
}

func (m *MaxStrain) Value() float64 { return m.maxStrain }
func (m *MaxStrain) Reset()         { m.maxStrain = 0 }

// Strain returns max |d-rest|/rest over the constraints of sys.
func Strain(sys particle.System) float64 {
	ps := sys.Particles()
	var worst float64
	for _, c := range sys.DistanceConstraints() {
		if c.RestLength <= 0 {
			continue
		}
		d := geom.Distance(ps[c.A].Pos, ps[c.B].Pos)
		worst = math.Max(worst, math.Abs(d-c.RestLength)/c.RestLength)
	}
	return worst
}

// BrokenLinks reports how many particles have had their links torn. Systems
// that cannot tear read as zero.
type BrokenLinks struct {
	name   string
	broken int
}

func NewBrokenLinks() *BrokenLinks {
	return &BrokenLinks{name: "broken_links"}
}

func (b *BrokenLinks) Name() string { return b.name }

func (b *BrokenLinks) Observe(sys particle.System, t float64) {
	if lb, ok := sys.(particle.LinkBreaker); ok {
		b.broken = len(lb.BrokenLinks())
	}
}

func (b *BrokenLinks) Value() float64 { return float64(b.broken) }
func (b *BrokenLinks) Reset()         { b.broken = 0 }
