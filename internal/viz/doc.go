// Package viz is the terminal front end for a [sim.Driver].
//
// [Model] renders the bodies on a braille [Canvas] through an orthographic
// [Camera], with per-body trails, an energy drift plot and an event log.
// [Picker] lists the presets and lets the run settings be tuned before
// handing over to a Model.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial conditions
//	, .   - Halve/double the time scale
//	Arrows/HJKL - Rotate the camera
//	+ -   - Zoom
//	F     - Fit the camera to the bodies
//	L     - Toggle trails
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
