package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/softsim/internal/geom"
	"github.com/san-kum/softsim/internal/particle"
	"github.com/san-kum/softsim/internal/sim"
	"github.com/san-kum/softsim/internal/viz"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	background = "#0a0a0a"
	fabric     = "#3a3550"
	pointColor = "#ffffff"
)

var segmentColors = map[particle.SegmentKind]string{
	particle.SegmentStructure: "#f0e6d2",
	particle.SegmentSkeleton:  "#6fcf57",
	particle.SegmentHighlight: "#ff4444",
}

// frame maps world space onto an SVG viewport, flipping Y.
type frame struct {
	world         r2.Box
	width, height float64
}

func (f frame) at(v r2.Vec) (float64, float64) {
	w := f.world.Max.X - f.world.Min.X
	h := f.world.Max.Y - f.world.Min.Y
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return (v.X - f.world.Min.X) / w * f.width, f.height - (v.Y-f.world.Min.Y)/h*f.height
}

func header(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))
}

// RenderToSVG draws one frame of render data: filled triangles first, then
// lines coloured by kind, then points. Non-finite geometry is skipped.
func RenderToSVG(data particle.RenderData, world r2.Box, width, height int) string {
	var sb strings.Builder
	header(&sb, width, height)
	writeRenderData(&sb, frame{world: world, width: float64(width), height: float64(height)}, data)
	sb.WriteString("</svg>")
	return sb.String()
}

// SceneToSVG draws the active structures of a scene and, in cloth mode, its
// colliders.
func SceneToSVG(s *sim.Scene, width, height int) string {
	f := frame{world: r2.Box{Max: s.WorldSize()}, width: float64(width), height: float64(height)}

	var sb strings.Builder
	header(&sb, width, height)
	if s.Mode() == sim.ModeCloth {
		disc, box := s.Colliders()
		writeColliders(&sb, f, disc, box)
	}
	writeRenderData(&sb, f, s.RenderData())
	sb.WriteString("</svg>")
	return sb.String()
}

func writeRenderData(sb *strings.Builder, f frame, data particle.RenderData) {
	if len(data.Triangles) > 0 {
		sb.WriteString(fmt.Sprintf("<g fill=\"%s\" stroke=\"none\">\n", fabric))
		for _, tri := range data.Triangles {
			if !finite(tri.V[:]...) {
				continue
			}
			sb.WriteString(`<polygon points="`)
			for i, v := range tri.V {
				x, y := f.at(v)
				if i > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(fmt.Sprintf("%.2f,%.2f", x, y))
			}
			sb.WriteString("\"/>\n")
		}
		sb.WriteString("</g>\n")
	}

	if len(data.Lines) > 0 {
		sb.WriteString("<g stroke-width=\"1\">\n")
		for _, l := range data.Lines {
			if !finite(l.A, l.B) {
				continue
			}
			x1, y1 := f.at(l.A)
			x2, y2 := f.at(l.B)
			sb.WriteString(fmt.Sprintf(`<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"/>
`, x1, y1, x2, y2, segmentColors[l.Kind]))
		}
		sb.WriteString("</g>\n")
	}

	if len(data.Points) > 0 {
		sb.WriteString(fmt.Sprintf("<g fill=\"%s\">\n", pointColor))
		for _, p := range data.Points {
			if !finite(p) {
				continue
			}
			x, y := f.at(p)
			sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="1.5"/>
`, x, y))
		}
		sb.WriteString("</g>\n")
	}
}

func writeColliders(sb *strings.Builder, f frame, disc geom.Disc, box r2.Box) {
	cx, cy := f.at(disc.Center)
	rx := disc.Radius / math.Max(f.world.Max.X-f.world.Min.X, 1) * f.width
	ry := disc.Radius / math.Max(f.world.Max.Y-f.world.Min.Y, 1) * f.height
	x0, y1 := f.at(box.Min)
	x1, y0 := f.at(box.Max)
	sb.WriteString(fmt.Sprintf(`<g fill="none" stroke="#00ccff" stroke-width="1.5">
<ellipse cx="%.2f" cy="%.2f" rx="%.2f" ry="%.2f"/>
<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>
</g>
`, cx, cy, rx, ry, x0, y0, x1-x0, y1-y0))
}

func finite(vs ...r2.Vec) bool {
	for _, v := range vs {
		if !geom.IsFinite(v) {
			return false
		}
	}
	return true
}

// CanvasToSVG converts a braille canvas to SVG, one dot per lit sub-pixel.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := int(float64(canvas.SubWidth()) * scale)
	height := int(float64(canvas.SubHeight()) * scale)

	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString("<g fill=\"#00ff00\">\n")

	dotRadius := scale * 0.4
	for y := 0; y < canvas.SubHeight(); y++ {
		for x := 0; x < canvas.SubWidth(); x++ {
			if canvas.IsSet(x, y) {
				sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius))
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG draws points as a polyline scaled to fit with a 10%
// margin.
func TrajectoryToSVG(points []r2.Vec, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	f := frame{
		world: r2.Box{
			Min: r2.Vec{X: minX - rangeX*0.1, Y: minY - rangeY*0.1},
			Max: r2.Vec{X: maxX + rangeX*0.1, Y: maxY + rangeY*0.1},
		},
		width:  float64(width),
		height: float64(height),
	}

	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))

	for i, p := range points {
		x, y := f.at(p)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
