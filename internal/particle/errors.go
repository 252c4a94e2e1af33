package particle

import (
	"errors"
	"fmt"
)

// Domain errors for structure construction and stepping.
var (
	// ErrInvalidGrid indicates grid dimensions or link lengths that cannot form a mesh.
	ErrInvalidGrid = errors.New("particle: invalid grid dimensions")

	// ErrInvalidMass indicates a mass distribution producing a non-positive particle mass.
	ErrInvalidMass = errors.New("particle: particle mass must be positive")

	// ErrInvalidForce indicates a gravity or wind value that is NaN or Inf.
	ErrInvalidForce = errors.New("particle: force must be finite")

	// ErrInvalidLayout indicates malformed or missing precomputed layout data.
	ErrInvalidLayout = errors.New("particle: invalid layout data")

	// ErrUnstable indicates a particle position became NaN or Inf.
	ErrUnstable = errors.New("particle: non-finite particle position")
)

// ConstructionError aborts building a structure.
type ConstructionError struct {
	Structure string
	Detail    string
	Wrapped   error
}

func (e *ConstructionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Structure, e.Wrapped)
	}
	return fmt.Sprintf("%s: %v: %s", e.Structure, e.Wrapped, e.Detail)
}

func (e *ConstructionError) Unwrap() error {
	return e.Wrapped
}
