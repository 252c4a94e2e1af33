package metrics

import (
	"math"

	"github.com/san-kum/softsim/internal/particle"
)

// Stability is the fraction of observations in which every particle was
// finite and within threshold of the origin on both axes.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(sys particle.System, t float64) {
	s.samples++
	for _, p := range sys.Particles() {
		x, y := math.Abs(p.Pos.X), math.Abs(p.Pos.Y)
		if !(x <= s.threshold) || !(y <= s.threshold) {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
