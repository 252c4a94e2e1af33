package particle

import "gonum.org/v1/gonum/spatial/r2"

// System is a structure the frame driver can step and draw without knowing
// whether it is a mesh or a tree.
type System interface {
	Update(dt float64)
	SatisfyConstraints()
	RenderData() RenderData

	MovePoint(target r2.Vec, grabbed int) int
	TogglePin(i int) bool
	ChangeHorizontalForceBy(delta float64)
	HorizontalForce() float64

	Particles() []Particle
	DistanceConstraints() []DistanceConstraint
	CheckFinite() error
}

// LinkBreaker is implemented by structures whose links can be torn.
type LinkBreaker interface {
	BreakConstraintsWithNeighbours(i int)
	BrokenLinks() []int
}

type SegmentKind int

const (
	SegmentStructure SegmentKind = iota
	SegmentSkeleton
	SegmentHighlight
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentSkeleton:
		return "skeleton"
	case SegmentHighlight:
		return "highlight"
	default:
		return "structure"
	}
}

type Segment struct {
	A, B r2.Vec
	Kind SegmentKind
}

// Triangle is a textured mesh triangle; UV runs bottom-left to top-right.
type Triangle struct {
	V  [3]r2.Vec
	UV [3]r2.Vec
}

// RenderData is the raw geometry handed to a renderer each frame.
type RenderData struct {
	Points    []r2.Vec
	Lines     []Segment
	Triangles []Triangle
}

// Bounds returns the box enclosing every point, line and triangle.
func (d RenderData) Bounds() (r2.Box, bool) {
	var b r2.Box
	first := true
	grow := func(p r2.Vec) {
		if first {
			b = r2.Box{Min: p, Max: p}
			first = false
			return
		}
		b.Min.X, b.Min.Y = min(b.Min.X, p.X), min(b.Min.Y, p.Y)
		b.Max.X, b.Max.Y = max(b.Max.X, p.X), max(b.Max.Y, p.Y)
	}
	for _, p := range d.Points {
		grow(p)
	}
	for _, l := range d.Lines {
		grow(l.A)
		grow(l.B)
	}
	for _, t := range d.Triangles {
		for _, v := range t.V {
			grow(v)
		}
	}
	return b, !first
}
