package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a position or velocity in AU or AU/day.
type Vec3 = r3.Vec

// BodyIndex identifies a body by its position in the body set.
type BodyIndex int

func (b BodyIndex) String() string { return fmt.Sprintf("body %d", int(b)) }

// Valid reports whether b addresses one of n bodies.
func (b BodyIndex) Valid(n int) bool { return b >= 0 && int(b) < n }

type State []float64

// NewState allocates a zeroed buffer for n bodies.
func NewState(n int) State {
	return make(State, 6*n)
}

// Pack lays positions and velocities out as a single buffer.
// Both slices must have the same length.
func Pack(positions, velocities []Vec3) State {
	s := NewState(len(positions))
	for i := range positions {
		s.SetPosition(BodyIndex(i), positions[i])
		s.SetVelocity(BodyIndex(i), velocities[i])
	}
	return s
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// Bodies returns the number of bodies the buffer holds.
func (s State) Bodies() int { return len(s) / 6 }

func (s State) Position(i BodyIndex) Vec3 {
	o := 3 * int(i)
	return Vec3{X: s[o], Y: s[o+1], Z: s[o+2]}
}

func (s State) Velocity(i BodyIndex) Vec3 {
	o := len(s)/2 + 3*int(i)
	return Vec3{X: s[o], Y: s[o+1], Z: s[o+2]}
}

func (s State) SetPosition(i BodyIndex, p Vec3) {
	o := 3 * int(i)
	s[o], s[o+1], s[o+2] = p.X, p.Y, p.Z
}

func (s State) SetVelocity(i BodyIndex, v Vec3) {
	o := len(s)/2 + 3*int(i)
	s[o], s[o+1], s[o+2] = v.X, v.Y, v.Z
}

// PositionBlock and VelocityBlock alias the two halves of the buffer.
func (s State) PositionBlock() []float64 { return s[:len(s)/2] }
func (s State) VelocityBlock() []float64 { return s[len(s)/2:] }

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Norm(s, 2)
}

func (s State) Add(other State) State {
	result := s.Clone()
	n := min(len(s), len(other))
	floats.Add(result[:n], other[:n])
	return result
}

func (s State) Sub(other State) State {
	result := s.Clone()
	n := min(len(s), len(other))
	floats.Sub(result[:n], other[:n])
	return result
}

func (s State) Scale(factor float64) State {
	result := s.Clone()
	floats.Scale(factor, result)
	return result
}

// System is an ODE right-hand side over a State.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// InPlaceSystem writes its derivative into a caller-owned buffer.
type InPlaceSystem interface {
	System
	DeriveInto(dst, x State, t float64)
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

// InPlaceIntegrator advances x without allocating a result buffer.
type InPlaceIntegrator interface {
	Integrator
	StepInPlace(sys System, x State, t, dt float64)
}
