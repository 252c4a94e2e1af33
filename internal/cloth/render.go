package cloth

import (
	"github.com/san-kum/softsim/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

// RenderData exports the mesh: particle points, link lines, highlighted bad
// links and two textured triangles per intact grid cell.
func (c *Cloth) RenderData() particle.RenderData {
	ps := c.Particles()
	data := particle.RenderData{
		Points: c.Points(),
		Lines:  make([]particle.Segment, 0, len(c.horizontal)+len(c.vertical)+len(c.bad)),
	}

	for _, set := range [][]particle.DistanceConstraint{c.horizontal, c.vertical} {
		for _, dc := range set {
			data.Lines = append(data.Lines, particle.Segment{A: ps[dc.A].Pos, B: ps[dc.B].Pos})
		}
	}
	for _, dc := range c.bad {
		data.Lines = append(data.Lines, particle.Segment{A: ps[dc.A].Pos, B: ps[dc.B].Pos, Kind: particle.SegmentHighlight})
	}

	cols, rows := c.cfg.Columns, c.cfg.Rows
	du := 1 / float64(cols-1)
	dv := 1 / float64(rows-1)
	data.Triangles = make([]particle.Triangle, 0, 2*(cols-1)*(rows-1))
	for y := 0; y < rows-1; y++ {
		for x := 0; x < cols-1; x++ {
			tl := c.Index(x, y)
			if c.HasBrokenVerticalLink(tl) {
				continue
			}
			tr, bl, br := c.Index(x+1, y), c.Index(x, y+1), c.Index(x+1, y+1)

			// The grid starts at the top left but UVs start bottom left.
			uvTL := r2.Vec{X: du * float64(x), Y: 1 - dv*float64(y)}
			uvBR := r2.Vec{X: du * float64(x+1), Y: 1 - dv*float64(y+1)}
			uvTR := r2.Vec{X: uvBR.X, Y: uvTL.Y}
			uvBL := r2.Vec{X: uvTL.X, Y: uvBR.Y}

			data.Triangles = append(data.Triangles,
				particle.Triangle{
					V:  [3]r2.Vec{ps[tl].Pos, ps[bl].Pos, ps[br].Pos},
					UV: [3]r2.Vec{uvTL, uvBL, uvBR},
				},
				particle.Triangle{
					V:  [3]r2.Vec{ps[tl].Pos, ps[br].Pos, ps[tr].Pos},
					UV: [3]r2.Vec{uvTL, uvBR, uvTR},
				},
			)
		}
	}
	return data
}
