package sim

import (
	"fmt"
	"strings"

	"github.com/san-kum/softsim/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

type Mode int

const (
	ModeCloth Mode = iota
	ModePlant
)

func (m Mode) String() string {
	if m == ModePlant {
		return "plant"
	}
	return "cloth"
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "cloth":
		return ModeCloth, nil
	case "plant":
		return ModePlant, nil
	}
	return ModeCloth, fmt.Errorf("unknown mode %q", s)
}

type Metric interface {
	Name() string
	Observe(sys particle.System, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

// Config drives a headless run. Frames of FrameDt are fed to the scene until
// Duration has elapsed; FrameJitter scales each frame by a random factor in
// [1-j, 1+j] drawn from Seed.
type Config struct {
	FrameDt       float64
	Duration      float64
	Seed          int64
	FrameJitter   float64
	ValidateState bool
}

// Frame is a snapshot of the primary system after one rendered frame.
type Frame struct {
	Time   float64
	Steps  int
	Points []r2.Vec
}

type Result struct {
	Frames     []Frame
	Metrics    map[string]float64
	StepsTaken int
	Dropped    float64
	Errors     []error
}

func (r *Result) Failed() bool { return len(r.Errors) > 0 }

// Final returns the last recorded frame.
func (r *Result) Final() (Frame, bool) {
	if len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
