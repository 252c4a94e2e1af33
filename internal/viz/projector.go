package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Projector maps world coordinates (Y up) onto canvas sub-pixels (Y down).
type Projector struct {
	World r2.Box
	SubW  int
	SubH  int
}

func NewProjector(world r2.Box, c *Canvas) Projector {
	return Projector{World: world, SubW: c.SubWidth(), SubH: c.SubHeight()}
}

func (p Projector) span() (w, h float64) {
	w = p.World.Max.X - p.World.Min.X
	h = p.World.Max.Y - p.World.Min.Y
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return w, h
}

// ToSub returns the sub-pixel nearest to v. Non-finite input lands far off
// canvas.
func (p Projector) ToSub(v r2.Vec) (int, int) {
	w, h := p.span()
	fx := (v.X - p.World.Min.X) / w * float64(p.SubW-1)
	fy := (p.World.Max.Y - v.Y) / h * float64(p.SubH-1)
	return clampInt(fx), clampInt(fy)
}

// ToWorld maps the centre of terminal cell (col, row) back to world space.
func (p Projector) ToWorld(col, row int) r2.Vec {
	w, h := p.span()
	sx := float64(col*2) + 0.5
	sy := float64(row*4) + 1.5
	return r2.Vec{
		X: p.World.Min.X + sx/float64(max(p.SubW-1, 1))*w,
		Y: p.World.Max.Y - sy/float64(max(p.SubH-1, 1))*h,
	}
}

func clampInt(f float64) int {
	if math.IsNaN(f) {
		return -1 << 14
	}
	f = math.Max(-1<<14, math.Min(1<<14, math.Round(f)))
	return int(f)
}
