// Package physics provides the gravitational N-body model.
//
// [NBody] implements [dynamo.System] over the flat position/velocity
// layout described in package dynamo, and [dynamo.Hamiltonian] for the
// energy diagnostic. Units are astronomical units, solar masses and days,
// so the gravitational constant is the Gaussian value [G].
//
// Forces are evaluated by direct summation over every pair. A softening
// length is added in quadrature to every separation so coincident bodies
// produce a large but finite acceleration.
//
// # Energy Conservation
//
// The total energy is the regression oracle for the integrator. For a
// closed system it should stay near its initial value:
//
//	nb := physics.NewNBody(masses, physics.DefaultSoftening)
//	e0 := nb.Energy(x)
package physics
