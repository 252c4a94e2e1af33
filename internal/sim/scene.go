package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/san-kum/softsim/internal/cloth"
	"github.com/san-kum/softsim/internal/geom"
	"github.com/san-kum/softsim/internal/layout"
	"github.com/san-kum/softsim/internal/logging"
	"github.com/san-kum/softsim/internal/particle"
	"github.com/san-kum/softsim/internal/plant"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	CollisionCircleRadius = 7.0
	CollisionBoxWidth     = 15.0
	CollisionBoxHeight    = 10.0
)

type SceneConfig struct {
	Mode     Mode
	Step     float64
	MaxSteps int
	Seed     int64
	// Wind is the horizontal force every freshly built structure starts with.
	Wind     float64

	Cloth cloth.Config

	PlantRoots   []r2.Vec
	PlantGravity float64
	// PlantLayout, when set, replaces the generated plants with one built
	// from the layout.
	PlantLayout  *layout.Layout

	Circle geom.Disc
	Box    r2.Box
}

func DefaultSceneConfig() SceneConfig {
	return SceneConfig{
		Mode:         ModeCloth,
		Step:         DefaultStep,
		Cloth:        cloth.DefaultConfig(),
		PlantRoots:   []r2.Vec{{X: 100, Y: 20}, {X: 50, Y: 30}},
		PlantGravity: plant.DefaultGravity,
		Circle:       geom.Disc{Center: geom.Vec(90, 10), Radius: CollisionCircleRadius},
		Box:          geom.NewBox(geom.Vec(10, 90), CollisionBoxWidth, CollisionBoxHeight),
	}
}

// Scene owns the structures of both modes, the colliders and the drag state,
// and steps the active mode at a fixed rate.
type Scene struct {
	cfg  SceneConfig
	mode Mode
	rng  *rand.Rand
	log  *log.Logger

	cloth  *cloth.Cloth
	plants []*plant.Plant

	circle geom.Disc
	box    r2.Box

	dragging   bool
	target     r2.Vec
	clothGrab  int
	plantGrab  int
	structOnly bool

	acc   Accumulator
	time  float64
	steps int
}

func NewScene(cfg SceneConfig, logger *log.Logger) (*Scene, error) {
	if !(cfg.Step > 0) {
		return nil, fmt.Errorf("step must be positive, got %f", cfg.Step)
	}
	if cfg.MaxSteps < 0 {
		return nil, fmt.Errorf("max steps must not be negative, got %d", cfg.MaxSteps)
	}
	for _, f := range []struct {
		name  string
		value float64
	}{{"wind", cfg.Wind}, {"plant gravity", cfg.PlantGravity}} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return nil, fmt.Errorf("%s %g: %w", f.name, f.value, particle.ErrInvalidForce)
		}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Scene{
		cfg:        cfg,
		mode:       cfg.Mode,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		log:        logger,
		circle:     cfg.Circle,
		box:        cfg.Box,
		clothGrab:  particle.NoParticle,
		plantGrab:  particle.NoParticle,
		structOnly: true,
		acc:        Accumulator{Step: cfg.Step, MaxSteps: cfg.MaxSteps},
	}
	if err := s.buildCloth(cfg.Cloth); err != nil {
		return nil, err
	}
	if err := s.buildPlants(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scene) buildCloth(cc cloth.Config) error {
	c, err := cloth.New(cc)
	if err != nil {
		return err
	}
	if s.cloth != nil {
		c.SetHealing(s.cloth.Healing())
	} else {
		c.SetHealing(cc.Healing)
	}
	c.ChangeHorizontalForceBy(s.cfg.Wind)
	s.cloth = c
	s.cfg.Cloth = cc
	s.clothGrab = particle.NoParticle
	return nil
}

func (s *Scene) buildPlants() error {
	var plants []*plant.Plant
	if s.cfg.PlantLayout != nil {
		p, err := plant.FromLayout(s.cfg.PlantLayout, s.cfg.PlantGravity)
		if err != nil {
			return err
		}
		plants = append(plants, p)
	} else {
		for _, root := range s.cfg.PlantRoots {
			p := plant.New(root, s.rng)
			if s.cfg.PlantGravity != 0 {
				p.Gravity = s.cfg.PlantGravity
			}
			plants = append(plants, p)
		}
	}
	if len(plants) == 0 {
		return fmt.Errorf("plant mode needs at least one root")
	}
	for _, p := range plants {
		p.StructureOnly = s.structOnly
		p.ChangeHorizontalForceBy(s.cfg.Wind)
	}
	s.plants = plants
	s.plantGrab = particle.NoParticle
	return nil
}

// Update feeds frameDt to the accumulator and returns the number of fixed
// steps run.
func (s *Scene) Update(frameDt float64) int {
	return s.acc.Advance(frameDt, s.step)
}

func (s *Scene) step(dt float64) {
	switch s.mode {
	case ModeCloth:
		if s.dragging {
			s.clothGrab = s.cloth.MovePoint(s.target, s.clothGrab)
		}
		s.cloth.Update(dt)
		s.cloth.CollideWithCircle(s.circle)
		s.cloth.CollideWithBox(s.box)
	case ModePlant:
		if s.dragging {
			s.plantGrab = s.plants[0].MovePoint(s.target, s.plantGrab)
		}
		for _, p := range s.plants {
			p.Update(dt)
		}
	}
	s.time += dt
	s.steps++
}

// Drag holds the pointer at target. The nearest particle of the active
// structure is picked up on the next step and follows until Release.
func (s *Scene) Drag(target r2.Vec) {
	s.dragging = true
	s.target = target
}

func (s *Scene) Release() {
	s.dragging = false
	s.clothGrab = particle.NoParticle
	s.plantGrab = particle.NoParticle
}

func (s *Scene) Dragging() bool { return s.dragging }

// Grabbed returns the particle held in the active structure, or
// particle.NoParticle.
func (s *Scene) Grabbed() int {
	if s.mode == ModePlant {
		return s.plantGrab
	}
	return s.clothGrab
}

func (s *Scene) TogglePinGrabbed() bool {
	g := s.Grabbed()
	if g == particle.NoParticle {
		return false
	}
	pinned := s.Primary().TogglePin(g)
	s.log.Debug("toggled pin", "particle", g, "pinned", pinned)
	return pinned
}

// BreakGrabbed tears every link of the held cloth particle.
func (s *Scene) BreakGrabbed() {
	if s.mode != ModeCloth || s.clothGrab == particle.NoParticle {
		return
	}
	s.cloth.BreakConstraintsWithNeighbours(s.clothGrab)
	s.log.Debug("broke links", "particle", s.clothGrab, "broken", len(s.cloth.BrokenLinks()))
}

func (s *Scene) ChangeForce(delta float64) {
	for _, sys := range s.Systems() {
		sys.ChangeHorizontalForceBy(delta)
	}
}

func (s *Scene) MoveCircle(delta r2.Vec) {
	s.circle.Center = r2.Add(s.circle.Center, delta)
}

func (s *Scene) MoveBox(delta r2.Vec) {
	s.box = geom.TranslateBox(s.box, delta)
}

// SwitchMode flips between cloth and plant and rebuilds the structures of
// the mode being entered.
func (s *Scene) SwitchMode() error {
	next := ModePlant
	if s.mode == ModePlant {
		next = ModeCloth
	}
	var err error
	if next == ModeCloth {
		err = s.buildCloth(s.cfg.Cloth)
	} else {
		err = s.buildPlants()
	}
	if err != nil {
		return fmt.Errorf("switch to %s: %w", next, err)
	}
	s.mode = next
	s.Release()
	s.log.Info("mode switched", "mode", next)
	return nil
}

// RegenerateCloth rebuilds the cloth at a new size. On failure the current
// cloth is kept.
func (s *Scene) RegenerateCloth(cols, rows int, link r2.Vec) error {
	cc := s.cfg.Cloth
	cc.Columns, cc.Rows, cc.Link = cols, rows, link
	if err := s.buildCloth(cc); err != nil {
		s.log.Warn("cloth regeneration rejected", "err", err)
		return err
	}
	s.log.Info("cloth regenerated", "columns", cols, "rows", rows, "link", link)
	return nil
}

func (s *Scene) ToggleStructureOnly() bool {
	s.structOnly = !s.structOnly
	for _, p := range s.plants {
		p.StructureOnly = s.structOnly
	}
	return s.structOnly
}

func (s *Scene) ToggleHealing() bool {
	on := !s.cloth.Healing()
	s.cloth.SetHealing(on)
	s.log.Debug("healing", "on", on)
	return on
}

func (s *Scene) Mode() Mode                     { return s.mode }
func (s *Scene) Cloth() *cloth.Cloth            { return s.cloth }
func (s *Scene) Plants() []*plant.Plant         { return s.plants }
func (s *Scene) Colliders() (geom.Disc, r2.Box) { return s.circle, s.box }
func (s *Scene) Time() float64                  { return s.time }
func (s *Scene) Steps() int                     { return s.steps }
func (s *Scene) Accumulator() *Accumulator      { return &s.acc }
func (s *Scene) WorldSize() r2.Vec              { return s.cfg.Cloth.WorldSize }

// Systems returns the structures stepped in the current mode.
func (s *Scene) Systems() []particle.System {
	if s.mode == ModePlant {
		out := make([]particle.System, len(s.plants))
		for i, p := range s.plants {
			out[i] = p
		}
		return out
	}
	return []particle.System{s.cloth}
}

// Primary is the structure the pointer interacts with.
func (s *Scene) Primary() particle.System { return s.Systems()[0] }

func (s *Scene) HorizontalForce() float64 { return s.Primary().HorizontalForce() }

// RenderData merges the render data of every active structure.
func (s *Scene) RenderData() particle.RenderData {
	var out particle.RenderData
	for _, sys := range s.Systems() {
		d := sys.RenderData()
		out.Points = append(out.Points, d.Points...)
		out.Lines = append(out.Lines, d.Lines...)
		out.Triangles = append(out.Triangles, d.Triangles...)
	}
	return out
}

// CheckFinite reports the first structure holding a non-finite position.
func (s *Scene) CheckFinite() error {
	for i, sys := range s.Systems() {
		if err := sys.CheckFinite(); err != nil {
			return fmt.Errorf("%s system %d: %w", s.mode, i, err)
		}
	}
	return nil
}
