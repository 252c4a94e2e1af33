package plant

import (
	"github.com/san-kum/softsim/internal/geom"
	"github.com/san-kum/softsim/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	leafHalfWidth    = 5.0
	leafLength       = 30.0
	leafSubdivisions = 10
)

// Offsets from the root, before scaling, of a branch's base, tip and twig.
var (
	branchOne = [3]r2.Vec{{X: 5, Y: 30}, {X: 7, Y: 35}, {X: 3, Y: 35}}
	branchTwo = [3]r2.Vec{{X: -10, Y: 25}, {X: -7, Y: 30}, {X: -12, Y: 30}}
)

// buildStem appends two root particles either side of origin and a spine
// running along angle. Every spine particle is braced to both roots.
func (p *Plant) buildStem(angle float64, origin r2.Vec, pinned bool) {
	dir := geom.RotateDegrees(geom.Vec(1, 0), angle)
	side := geom.RotateDegrees(dir, 90)
	step := leafLength / leafSubdivisions

	base := p.Len()
	left := particle.At(r2.Add(origin, r2.Scale(-leafHalfWidth, side)))
	left.Pinned = pinned
	right := particle.At(r2.Add(origin, r2.Scale(leafHalfWidth, side)))
	right.Pinned = pinned
	p.Add(left)
	p.Add(right)

	for i := 0; i < leafSubdivisions; i++ {
		q := particle.At(r2.Add(origin, r2.Scale(float64(i)*step, dir)))
		q.Pinned = pinned && i == 0
		p.Add(q)
	}

	spine := base + 2
	for root := base; root <= base+1; root++ {
		for i := 0; i < leafSubdivisions; i++ {
			p.addDistance(root, spine+i, false)
		}
	}
	for i := 0; i < leafSubdivisions-1; i++ {
		p.addDistance(spine+i, spine+i+1, true)
	}
}

func (p *Plant) buildBranch(root r2.Vec, offsets [3]r2.Vec, s float64) {
	start := p.Len()
	for _, off := range offsets {
		p.Add(particle.At(r2.Add(root, r2.Scale(s, off))))
	}
	p.addDistance(start, start+1, true)
	p.addDistance(start+2, start, true)
	p.addAngular(start+1, start+2, start)
}
