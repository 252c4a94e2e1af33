package viz

import (
	"math"

	"github.com/san-kum/softsim/internal/geom"
	"github.com/san-kum/softsim/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

const circleSegments = 32

type DrawOptions struct {
	Points    bool
	Triangles bool
}

// Draw renders lines, optional triangle edges and points of data.
func Draw(c *Canvas, proj Projector, data particle.RenderData, opts DrawOptions) {
	for _, l := range data.Lines {
		line(c, proj, l.A, l.B)
	}
	if opts.Triangles {
		for _, tri := range data.Triangles {
			for i := 0; i < 3; i++ {
				line(c, proj, tri.V[i], tri.V[(i+1)%3])
			}
		}
	}
	if opts.Points {
		for _, p := range data.Points {
			c.Set(proj.ToSub(p))
		}
	}
}

// DrawColliders outlines the collision disc and box.
func DrawColliders(c *Canvas, proj Projector, disc geom.Disc, box r2.Box) {
	prev := r2.Add(disc.Center, r2.Vec{X: disc.Radius})
	for i := 1; i <= circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		next := r2.Add(disc.Center, r2.Vec{X: disc.Radius * math.Cos(a), Y: disc.Radius * math.Sin(a)})
		line(c, proj, prev, next)
		prev = next
	}

	corners := [4]r2.Vec{box.Min, {X: box.Max.X, Y: box.Min.Y}, box.Max, {X: box.Min.X, Y: box.Max.Y}}
	for i := range corners {
		line(c, proj, corners[i], corners[(i+1)%4])
	}
}

func line(c *Canvas, proj Projector, a, b r2.Vec) {
	if !geom.IsFinite(a) || !geom.IsFinite(b) {
		return
	}
	x0, y0 := proj.ToSub(a)
	x1, y1 := proj.ToSub(b)
	c.DrawLine(x0, y0, x1, y1)
}
