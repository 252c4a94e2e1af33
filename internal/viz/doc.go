// Package viz draws particle structures in the terminal.
//
// The package renders onto braille cells and hosts the interactive view:
//
//   - [Canvas]: braille sub-pixel grid with Bresenham lines
//   - [Projector]: world space (Y up) to canvas sub-pixels and back
//   - [Draw]: lines, triangle edges and points of a render frame
//   - [Live]: Bubble Tea model driving a scene in real time
//
// # Key Bindings
//
//	Mouse  - Drag the nearest particle
//	Space  - Pause/Resume
//	Tab    - Switch between cloth and plants
//	B / C  - Pin or tear the held particle
//	[ / ]  - Decrease/increase wind
//	Arrows - Move the collision disc
//	WASD   - Move the collision box
//	R      - Regenerate the cloth (+/- resize)
//	1      - Plant skeleton only
//	H      - Toggle cloth healing
//	T      - Cycle color themes
//	?      - Show help
package viz
