package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/san-kum/softsim/internal/logging"
	"github.com/san-kum/softsim/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

const durationEpsilon = 1e-9

type Simulator struct {
	scene     *Scene
	metrics   []Metric
	observers []Observer
	log       *log.Logger
}

func New(scene *Scene, logger *log.Logger) *Simulator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Simulator{
		scene:     scene,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       logger,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) Scene() *Scene          { return s.scene }

// Run feeds frames to the scene until cfg.Duration has elapsed, recording the
// primary structure after every frame. A cancelled context stops the run and
// returns the partial result with ctx.Err().
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	frames := int(math.Ceil(cfg.Duration/cfg.FrameDt - durationEpsilon))
	result := &Result{
		Frames:  make([]Frame, 0, frames+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	result.Frames = append(result.Frames, s.snapshot(0))
	s.log.Debug("run started", "mode", s.scene.Mode(), "duration", cfg.Duration, "frame_dt", cfg.FrameDt)

	elapsed := 0.0
	for elapsed < cfg.Duration-durationEpsilon {
		select {
		case <-ctx.Done():
			s.log.Warn("run cancelled", "t", s.scene.Time())
			return result, ctx.Err()
		default:
		}

		dt := cfg.FrameDt
		if cfg.FrameJitter > 0 {
			dt *= 1 + cfg.FrameJitter*(2*rng.Float64()-1)
		}
		dt = math.Min(dt, cfg.Duration-elapsed)

		steps := s.scene.Update(dt)
		elapsed += dt
		result.StepsTaken += steps

		if cfg.ValidateState {
			if err := s.scene.CheckFinite(); err != nil {
				simErr := SimError{Time: s.scene.Time(), Step: s.scene.Steps(), Message: err.Error()}
				result.Errors = append(result.Errors, simErr)
				s.log.Error("unstable state", "err", simErr)
				break
			}
		}

		primary := s.scene.Primary()
		for _, m := range s.metrics {
			m.Observe(primary, s.scene.Time())
		}

		frame := s.snapshot(steps)
		for _, obs := range s.observers {
			obs.OnFrame(frame)
		}
		result.Frames = append(result.Frames, frame)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Dropped = s.scene.Accumulator().Dropped()
	s.log.Debug("run finished", "steps", result.StepsTaken, "frames", len(result.Frames))

	return result, nil
}

func (s *Simulator) snapshot(steps int) Frame {
	return Frame{Time: s.scene.Time(), Steps: steps, Points: positions(s.scene.Primary())}
}

func positions(sys particle.System) []r2.Vec {
	ps := sys.Particles()
	out := make([]r2.Vec, len(ps))
	for i := range ps {
		out[i] = ps[i].Pos
	}
	return out
}

func (s *Simulator) validateConfig(cfg Config) error {
	if s.scene == nil {
		return fmt.Errorf("simulator has no scene")
	}
	if !(cfg.FrameDt > 0) {
		return fmt.Errorf("frame dt must be positive, got %f", cfg.FrameDt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.FrameJitter < 0 || cfg.FrameJitter >= 1 {
		return fmt.Errorf("frame jitter must be in [0, 1), got %f", cfg.FrameJitter)
	}
	return nil
}
