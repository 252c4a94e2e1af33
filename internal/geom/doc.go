// Package geom holds the small amount of 2D geometry the solver needs on top
// of gonum's r2 vectors: degree-based rotation and orientation, included
// angles, and minimum-translation push-out against discs and boxes.
package geom
