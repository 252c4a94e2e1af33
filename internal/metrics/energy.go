package metrics

import (
	"github.com/san-kum/softsim/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

// KineticEnergy averages Σ½m|v|² over observations, with each particle's
// velocity recovered from its last Verlet step of length dt.
type KineticEnergy struct {
	name        string
	dt          float64
	samples     int
	totalEnergy float64
}

func NewKineticEnergy(dt float64) *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy", dt: dt}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(sys particle.System, t float64) {
	if e.dt <= 0 {
		return
	}
	e.totalEnergy += Kinetic(sys.Particles(), e.dt)
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// Kinetic is the instantaneous kinetic energy of ps.
func Kinetic(ps []particle.Particle, dt float64) float64 {
	var ke float64
	for i := range ps {
		v := r2.Scale(1/dt, ps[i].Velocity())
		ke += 0.5 * ps[i].Mass * r2.Norm2(v)
	}
	return ke
}
