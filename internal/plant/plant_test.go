package plant

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/san-kum/softsim/internal/geom"
	"github.com/san-kum/softsim/internal/layout"
	"github.com/san-kum/softsim/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

func newTestPlant(seed int64) *Plant {
	return New(geom.Vec(100, 20), rand.New(rand.NewSource(seed)))
}

func TestNew_Topology(t *testing.T) {
	p := newTestPlant(1)

	if got := p.Len(); got != 2+leafSubdivisions+6 {
		t.Errorf("particles = %d, want 18", got)
	}
	if got := len(p.DistanceConstraints()); got != 37 {
		t.Errorf("distance constraints = %d, want 37", got)
	}
	if got := len(p.AngularConstraints()); got != 4 {
		t.Errorf("angular constraints = %d, want 4", got)
	}
	if got := len(p.Skeleton()); got != 15 {
		t.Errorf("skeleton = %d, want 15", got)
	}
	if p.Gravity != DefaultGravity {
		t.Errorf("gravity = %f", p.Gravity)
	}

	var pinned []int
	for i, q := range p.Particles() {
		if q.Pinned {
			pinned = append(pinned, i)
		}
	}
	if diff := cmp.Diff([]int{0, 1, 2}, pinned); diff != "" {
		t.Errorf("pinned (-want +got):\n%s", diff)
	}
}

func TestNew_StemGeometry(t *testing.T) {
	p := newTestPlant(1)
	ps := p.Particles()
	approx := cmpopts.EquateApprox(0, 1e-9)

	if diff := cmp.Diff(geom.Vec(105, 20), ps[0].Pos, approx); diff != "" {
		t.Errorf("first root (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(geom.Vec(95, 20), ps[1].Pos, approx); diff != "" {
		t.Errorf("second root (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(geom.Vec(100, 47), ps[11].Pos, approx); diff != "" {
		t.Errorf("spine tip (-want +got):\n%s", diff)
	}
}

func TestNew_BranchScale(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		p := newTestPlant(seed)
		base := r2.Sub(p.Particles()[12].Pos, geom.Vec(100, 20))
		s := base.X / branchOne[0].X
		if s < 0.7 || s >= 1.2 {
			t.Fatalf("seed %d: branch scale %f out of range", seed, s)
		}
		if math.Abs(base.Y/branchOne[0].Y-s) > 1e-9 {
			t.Fatalf("seed %d: branch scaled unevenly", seed)
		}
	}
}

func TestNew_Deterministic(t *testing.T) {
	a, b := newTestPlant(42), newTestPlant(42)
	if diff := cmp.Diff(a.Points(), b.Points()); diff != "" {
		t.Errorf("same seed, different plants:\n%s", diff)
	}
}

func TestNew_DesiredAnglesFromGeometry(t *testing.T) {
	p := newTestPlant(3)
	ps := p.Particles()
	for i, ac := range p.AngularConstraints() {
		c := ps[ac.Common].Pos
		got := geom.AngleBetweenDegrees(r2.Sub(ps[ac.A].Pos, c), r2.Sub(ps[ac.B].Pos, c))
		if math.Abs(got-ac.DesiredAngleDegrees) > 1e-9 {
			t.Errorf("constraint %d: desired %f, geometry %f", i, ac.DesiredAngleDegrees, got)
		}
		if ac.DesiredAngleDegrees <= 0 || ac.DesiredAngleDegrees >= 180 {
			t.Errorf("constraint %d: implausible angle %f", i, ac.DesiredAngleDegrees)
		}
	}
}

func TestUpdate_PinnedStemHolds(t *testing.T) {
	p := newTestPlant(7)
	before := p.Points()
	p.ChangeHorizontalForceBy(30)

	for i := 0; i < 500; i++ {
		p.Update(0.01)
	}

	after := p.Points()
	for _, i := range []int{0, 1, 2} {
		if after[i] != before[i] {
			t.Errorf("pinned particle %d moved from %v to %v", i, before[i], after[i])
		}
	}
	if err := p.CheckFinite(); err != nil {
		t.Fatal(err)
	}
}

func TestRenderData(t *testing.T) {
	p := newTestPlant(1)

	data := p.RenderData()
	if len(data.Points) != 18 || len(data.Lines) != 15 {
		t.Errorf("structure-only: %d points, %d lines", len(data.Points), len(data.Lines))
	}
	for _, l := range data.Lines {
		if l.Kind != particle.SegmentSkeleton {
			t.Fatalf("unexpected segment kind %v", l.Kind)
		}
	}

	p.StructureOnly = false
	if got := len(p.RenderData().Lines); got != 37+15 {
		t.Errorf("full render lines = %d, want 52", got)
	}
}

func TestMovePoint(t *testing.T) {
	p := newTestPlant(1)
	tip := p.Particles()[11].Pos

	grabbed := p.MovePoint(r2.Add(tip, geom.Vec(1, 0)), particle.NoParticle)
	if grabbed != 11 {
		t.Fatalf("grabbed %d, want 11", grabbed)
	}
	if got := p.MovePoint(geom.Vec(0, 0), grabbed); got != 11 || p.Particles()[11].Pos != geom.Vec(0, 0) {
		t.Error("held particle did not follow")
	}
}

func TestFromLayout(t *testing.T) {
	l := &layout.Layout{
		Points: []layout.Point{{X: 0, Y: 0, Pinned: true}, {X: 0, Y: 4}, {X: 3, Y: 4}},
		Links:  []layout.Link{{A: 0, B: 1}, {A: 1, B: 2}},
	}

	p, err := FromLayout(l, -10)
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 3 || len(p.DistanceConstraints()) != 2 || len(p.Skeleton()) != 2 {
		t.Errorf("unexpected topology: %d particles, %d links", p.Len(), len(p.DistanceConstraints()))
	}
	if got := p.DistanceConstraints()[1].RestLength; got != 3 {
		t.Errorf("rest length = %f, want 3", got)
	}
	if !p.Particles()[0].Pinned || p.Particles()[1].Mass != 1 {
		t.Error("pin or default mass lost")
	}
}

func TestFromLayout_Invalid(t *testing.T) {
	l := &layout.Layout{Points: []layout.Point{{X: 0, Y: 0}}}
	_, err := FromLayout(l, -10)

	if !errors.Is(err, particle.ErrInvalidLayout) {
		t.Errorf("got %v, want ErrInvalidLayout", err)
	}
	var ce *particle.ConstructionError
	if !errors.As(err, &ce) || ce.Structure != "plant" {
		t.Errorf("expected plant ConstructionError, got %T", err)
	}
}

func TestFromLayout_NonFinite(t *testing.T) {
	valid := func() *layout.Layout {
		return &layout.Layout{
			Points: []layout.Point{{X: 0, Y: 0, Pinned: true}, {X: 0, Y: -2}},
			Links:  []layout.Link{{A: 0, B: 1}},
		}
	}
	tests := []struct {
		name    string
		mutate  func(*layout.Layout)
		gravity float64
		want    error
	}{
		{"nan mass", func(l *layout.Layout) { l.Points[1].Mass = math.NaN() }, -10, particle.ErrInvalidLayout},
		{"infinite mass", func(l *layout.Layout) { l.Points[1].Mass = math.Inf(1) }, -10, particle.ErrInvalidLayout},
		{"nan x", func(l *layout.Layout) { l.Points[1].X = math.NaN() }, -10, particle.ErrInvalidLayout},
		{"nan gravity", func(*layout.Layout) {}, math.NaN(), particle.ErrInvalidForce},
		{"infinite gravity", func(*layout.Layout) {}, math.Inf(-1), particle.ErrInvalidForce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := valid()
			tt.mutate(l)
			p, err := FromLayout(l, tt.gravity)
			if p != nil {
				t.Error("expected no plant")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}
