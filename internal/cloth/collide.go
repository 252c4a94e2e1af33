package cloth

import (
	"github.com/san-kum/softsim/internal/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// CollideWithCircle pushes every particle out of d.
func (c *Cloth) CollideWithCircle(d geom.Disc) int {
	moved := 0
	ps := c.Particles()
	for i := range ps {
		if geom.PushPointOutOfDisc(&ps[i].Pos, 0, d) {
			moved++
		}
	}
	return moved
}

// CollideWithBox pushes every particle out of b.
func (c *Cloth) CollideWithBox(b r2.Box) int {
	moved := 0
	ps := c.Particles()
	for i := range ps {
		if geom.PushPointOutOfBox(&ps[i].Pos, 0, b) {
			moved++
		}
	}
	return moved
}
