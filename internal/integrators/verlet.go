package integrators

import (
	"github.com/san-kum/orbitsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Verlet is the kick-drift-kick leapfrog. It expects the state layout
// positions then velocities, with the velocity block's derivative holding
// accelerations that depend on positions only.
type Verlet struct {
	dx dynamo.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	result := x.Clone()
	v.StepInPlace(sys, result, t, dt)
	return result
}

func (v *Verlet) StepInPlace(sys dynamo.System, x dynamo.State, t, dt float64) {
	if len(v.dx) != len(x) {
		v.dx = make(dynamo.State, len(x))
	}
	pos, vel := x.PositionBlock(), x.VelocityBlock()
	half := len(x) / 2

	derive(sys, v.dx, x, t)
	floats.AddScaled(vel, 0.5*dt, v.dx[half:])
	floats.AddScaled(pos, dt, vel)
	derive(sys, v.dx, x, t+dt)
	floats.AddScaled(vel, 0.5*dt, v.dx[half:])
}
