package integrators

import (
	"github.com/san-kum/orbitsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// RK4 is the classical fourth-order Runge-Kutta scheme with a fixed step.
// Stage buffers are kept between calls, so an RK4 value must not be
// shared between goroutines.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	result := x.Clone()
	r.StepInPlace(sys, result, t, dt)
	return result
}

// StepInPlace advances x by dt:
//
//	k1 = f(x)
//	k2 = f(x + dt/2 k1)
//	k3 = f(x + dt/2 k2)
//	k4 = f(x + dt k3)
//	x += dt/6 (k1 + 2 k2 + 2 k3 + k4)
func (r *RK4) StepInPlace(sys dynamo.System, x dynamo.State, t, dt float64) {
	r.ensureScratch(len(x))

	derive(sys, r.k1, x, t)

	floats.AddScaledTo(r.scratch, x, 0.5*dt, r.k1)
	derive(sys, r.k2, r.scratch, t+0.5*dt)

	floats.AddScaledTo(r.scratch, x, 0.5*dt, r.k2)
	derive(sys, r.k3, r.scratch, t+0.5*dt)

	floats.AddScaledTo(r.scratch, x, dt, r.k3)
	derive(sys, r.k4, r.scratch, t+dt)

	dt6 := dt / 6.0
	for i := range x {
		x[i] += dt6 * (r.k1[i] + 2*r.k2[i] + 2*r.k3[i] + r.k4[i])
	}
}

func derive(sys dynamo.System, dst, x dynamo.State, t float64) {
	if ip, ok := sys.(dynamo.InPlaceSystem); ok {
		ip.DeriveInto(dst, x, t)
		return
	}
	copy(dst, sys.Derive(x, t))
}
