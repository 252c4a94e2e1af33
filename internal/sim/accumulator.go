package sim

import "math"

const (
	DefaultStep = 0.01

	accumulatorEpsilon = 1e-9
)

// Accumulator converts irregular frame times into whole fixed steps. Time
// that does not fill a step is carried to the next call.
//
// With MaxSteps > 0 at most MaxSteps steps run per call; whole steps beyond
// that are dropped rather than carried, so a long stall cannot snowball.
type Accumulator struct {
	Step     float64
	MaxSteps int

	owed    float64
	dropped float64
}

// Advance adds frameDt to the backlog and calls step once per whole step
// drained. Negative and non-finite frame times add nothing.
func (a *Accumulator) Advance(frameDt float64, step func(dt float64)) int {
	if !(a.Step > 0) {
		return 0
	}
	if frameDt > 0 && !math.IsInf(frameDt, 1) {
		a.owed += frameDt
	}

	n := int(math.Floor((a.owed + accumulatorEpsilon) / a.Step))
	if a.MaxSteps > 0 && n > a.MaxSteps {
		excess := float64(n-a.MaxSteps) * a.Step
		a.dropped += excess
		a.owed -= excess
		n = a.MaxSteps
	}
	for i := 0; i < n; i++ {
		step(a.Step)
	}
	a.owed = math.Max(0, a.owed-float64(n)*a.Step)
	return n
}

// Owed is the time carried into the next call, always below one step.
func (a *Accumulator) Owed() float64 { return a.owed }

// Dropped is the total time discarded by the catch-up cap.
func (a *Accumulator) Dropped() float64 { return a.dropped }

func (a *Accumulator) Reset() {
	a.owed = 0
	a.dropped = 0
}
