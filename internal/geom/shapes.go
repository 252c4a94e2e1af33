package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

type Disc struct {
	Center r2.Vec
	Radius float64
}

// NewBox builds a box from its minimum corner and size.
func NewBox(mins r2.Vec, w, h float64) r2.Box {
	return r2.Box{Min: mins, Max: r2.Add(mins, r2.Vec{X: w, Y: h})}
}

func TranslateBox(b r2.Box, d r2.Vec) r2.Box {
	return r2.Box{Min: r2.Add(b.Min, d), Max: r2.Add(b.Max, d)}
}

func IsPointInsideDisc(p r2.Vec, center r2.Vec, radius float64) bool {
	return r2.Norm2(r2.Sub(p, center)) < radius*radius
}

// PushPointOutOfDisc moves a disc of the given radius centred at p out of d
// along the shortest path. It reports whether p moved.
func PushPointOutOfDisc(p *r2.Vec, radius float64, d Disc) bool {
	reach := radius + d.Radius
	delta := r2.Sub(*p, d.Center)
	dist := r2.Norm(delta)
	if dist >= reach {
		return false
	}
	dir, ok := SafeUnit(delta)
	if !ok {
		dir = r2.Vec{Y: 1}
	}
	*p = r2.Add(d.Center, r2.Scale(reach, dir))
	return true
}

// PushPointOutOfBox moves a disc of the given radius centred at p out of b.
// A centre inside the box leaves through the nearest face.
func PushPointOutOfBox(p *r2.Vec, radius float64, b r2.Box) bool {
	nearest := r2.Vec{
		X: math.Max(b.Min.X, math.Min(p.X, b.Max.X)),
		Y: math.Max(b.Min.Y, math.Min(p.Y, b.Max.Y)),
	}
	if nearest == *p {
		left := p.X - b.Min.X
		right := b.Max.X - p.X
		down := p.Y - b.Min.Y
		up := b.Max.Y - p.Y
		switch math.Min(math.Min(left, right), math.Min(down, up)) {
		case left:
			p.X = b.Min.X - radius
		case right:
			p.X = b.Max.X + radius
		case down:
			p.Y = b.Min.Y - radius
		default:
			p.Y = b.Max.Y + radius
		}
		return true
	}
	if radius <= 0 {
		return false
	}
	return PushPointOutOfDisc(p, radius, Disc{Center: nearest})
}
