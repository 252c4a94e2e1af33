package metrics

import "github.com/san-kum/softsim/internal/particle"

// MaxSag is the largest drop of any particle below where it was first seen.
type MaxSag struct {
	name    string
	initial []float64
	maxSag  float64
}

func NewMaxSag() *MaxSag {
	return &MaxSag{name: "max_sag"}
}

func (m *MaxSag) Name() string { return m.name }

func (m *MaxSag) Observe(sys particle.System, t float64) {
	ps := sys.Particles()
	if m.initial == nil || len(m.initial) != len(ps) {
		m.initial = make([]float64, len(ps))
		for i := range ps {
			m.initial[i] = ps[i].Pos.Y
		}
	}
	for i := range ps {
		if drop := m.initial[i] - ps[i].Pos.Y; drop > m.maxSag {
			m.maxSag = drop
		}
	}
}

func (m *MaxSag) Value() float64 { return m.maxSag }

func (m *MaxSag) Reset() {
	m.initial = nil
	m.maxSag = 0
}
