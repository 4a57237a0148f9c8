package integrators

import (
	"github.com/san-kum/orbitsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Euler is the explicit first-order scheme. It is only kept as a baseline
// for integrator comparisons.
type Euler struct {
	dx dynamo.State
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	result := x.Clone()
	e.StepInPlace(sys, result, t, dt)
	return result
}

func (e *Euler) StepInPlace(sys dynamo.System, x dynamo.State, t, dt float64) {
	if len(e.dx) != len(x) {
		e.dx = make(dynamo.State, len(x))
	}
	derive(sys, e.dx, x, t)
	floats.AddScaled(x, dt, e.dx)
}
