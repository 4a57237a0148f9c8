// Package dynamo provides the core numeric primitives shared by the
// orbitsim packages.
//
// The package defines the state layout and the interfaces that connect a
// physical model to a numerical integrator:
//
//   - [State]: flat buffer holding every body's position block followed by
//     its velocity block
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical integrator interface
//   - [BodyIndex]: identity of a body inside a body set
//
// # Layout
//
// For N bodies a State has length 6N. Entries [0, 3N) are positions ordered
// body-major then axis-minor (x, y, z); entries [3N, 6N) are the matching
// velocities:
//
//	x := dynamo.Pack(positions, velocities)
//	p := x.Position(1)
//	v := x.Velocity(1)
package dynamo
