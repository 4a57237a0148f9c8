package physics

import (
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// G is the gravitational constant in AU^3 / (M☉ day^2).
	G = 2.959122082855911e-4

	// DefaultSoftening is the softening length in AU.
	DefaultSoftening = 1e-6
)

// NBody is a set of gravitating point masses. The mass array and the
// softening length are fixed once constructed.
type NBody struct {
	masses    []float64
	softening float64
	eps2      float64
}

// NewNBody copies masses so later changes by the caller do not leak in.
func NewNBody(masses []float64, softening float64) *NBody {
	m := make([]float64, len(masses))
	copy(m, masses)
	return &NBody{
		masses:    m,
		softening: softening,
		eps2:      softening * softening,
	}
}

func (nb *NBody) NumBodies() int     { return len(nb.masses) }
func (nb *NBody) Softening() float64 { return nb.softening }
func (nb *NBody) StateDim() int      { return 6 * len(nb.masses) }

func (nb *NBody) Mass(i dynamo.BodyIndex) float64 { return nb.masses[i] }

func (nb *NBody) Masses() []float64 {
	m := make([]float64, len(nb.masses))
	copy(m, nb.masses)
	return m
}

func (nb *NBody) Derive(x dynamo.State, t float64) dynamo.State {
	dx := make(dynamo.State, len(x))
	nb.DeriveInto(dx, x, t)
	return dx
}

// DeriveInto writes dX/dt into dst. The position rates are a copy of the
// velocity block; each unordered pair is visited once and contributes
// equal and opposite momentum changes.
func (nb *NBody) DeriveInto(dst, x dynamo.State, _ float64) {
	n := len(nb.masses)
	half := 3 * n

	copy(dst[:half], x[half:2*half])
	acc := dst[half : 2*half]
	clear(acc)

	for i := 0; i < n; i++ {
		xi, yi, zi := x[3*i], x[3*i+1], x[3*i+2]

		for j := i + 1; j < n; j++ {
			dx := xi - x[3*j]
			dy := yi - x[3*j+1]
			dz := zi - x[3*j+2]

			r2 := dx*dx + dy*dy + dz*dz + nb.eps2
			invR3 := 1.0 / (r2 * math.Sqrt(r2))

			fi := -G * nb.masses[j] * invR3
			acc[3*i] += fi * dx
			acc[3*i+1] += fi * dy
			acc[3*i+2] += fi * dz

			fj := G * nb.masses[i] * invR3
			acc[3*j] += fj * dx
			acc[3*j+1] += fj * dy
			acc[3*j+2] += fj * dz
		}
	}
}

// Energy returns kinetic plus softened potential energy.
func (nb *NBody) Energy(x dynamo.State) float64 {
	n := len(nb.masses)
	ke := 0.0
	pe := 0.0

	for i := 0; i < n; i++ {
		v := x.Velocity(dynamo.BodyIndex(i))
		ke += 0.5 * nb.masses[i] * r3.Norm2(v)

		pi := x.Position(dynamo.BodyIndex(i))
		for j := i + 1; j < n; j++ {
			d := r3.Sub(pi, x.Position(dynamo.BodyIndex(j)))
			r := math.Sqrt(r3.Norm2(d) + nb.eps2)
			pe -= G * nb.masses[i] * nb.masses[j] / r
		}
	}

	return ke + pe
}

func (nb *NBody) Momentum(x dynamo.State) dynamo.Vec3 {
	var p dynamo.Vec3
	for i, m := range nb.masses {
		p = r3.Add(p, r3.Scale(m, x.Velocity(dynamo.BodyIndex(i))))
	}
	return p
}

func (nb *NBody) AngularMomentum(x dynamo.State) dynamo.Vec3 {
	var l dynamo.Vec3
	for i, m := range nb.masses {
		idx := dynamo.BodyIndex(i)
		l = r3.Add(l, r3.Scale(m, r3.Cross(x.Position(idx), x.Velocity(idx))))
	}
	return l
}

// CenterOfMass returns the barycentre position and velocity.
func (nb *NBody) CenterOfMass(x dynamo.State) (pos, vel dynamo.Vec3) {
	total := 0.0
	for i, m := range nb.masses {
		idx := dynamo.BodyIndex(i)
		pos = r3.Add(pos, r3.Scale(m, x.Position(idx)))
		vel = r3.Add(vel, r3.Scale(m, x.Velocity(idx)))
		total += m
	}
	if total == 0 {
		return dynamo.Vec3{}, dynamo.Vec3{}
	}
	return r3.Scale(1/total, pos), r3.Scale(1/total, vel)
}
