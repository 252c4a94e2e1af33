package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/softsim/internal/sim"
)

// DefaultStabilityBound is the coordinate magnitude past which a structure
// is considered to have blown up.
const DefaultStabilityBound = 1e4

// Names lists the metrics that New accepts.
func Names() []string {
	names := []string{"max_sag", "kinetic_energy", "max_strain", "broken_links", "stability"}
	sort.Strings(names)
	return names
}

// New builds the named metric. dt is the fixed step used to recover
// velocities.
func New(name string, dt float64) (sim.Metric, error) {
	switch name {
	case "max_sag":
		return NewMaxSag(), nil
	case "kinetic_energy":
		return NewKineticEnergy(dt), nil
	case "max_strain":
		return NewMaxStrain(), nil
	case "broken_links":
		return NewBrokenLinks(), nil
	case "stability":
		return NewStability(DefaultStabilityBound), nil
	}
	return nil, fmt.Errorf("unknown metric %q", name)
}

// Standard returns one of every metric.
func Standard(dt float64) []sim.Metric {
	out := make([]sim.Metric, 0, len(Names()))
	for _, n := range Names() {
		m, _ := New(n, dt)
		out = append(out, m)
	}
	return out
}
