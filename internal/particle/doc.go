// Package particle provides the position-based solver shared by every
// simulated structure.
//
// A structure owns a flat arena of [Particle] values and refers to them from
// its constraints by index:
//
//   - [DistanceConstraint]: two particles pulled toward a rest length
//   - [AngularConstraint]: three particles holding an included angle
//   - [Solver]: Verlet integration, mass-weighted relaxation, grab-and-drag
//   - [System]: the capability the frame driver calls without knowing the
//     concrete structure
//
// # Example
//
//	s := particle.NewSolver(particles, -400)
//	s.Integrate(0.01)
//	for i := range links {
//		s.SatisfyDistance(&links[i])
//	}
//
// # Thread Safety
//
// A Solver and everything it owns is mutated only from the goroutine that
// steps it. Independent structures may be stepped on separate goroutines.
package particle
