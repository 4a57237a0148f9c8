// Package engine owns the simulation state of one body set.
//
// An [Engine] is the single writer of its state buffer: it is mutated only
// by [Engine.Step]. Every other consumer (detectors, the energy diagnostic,
// renderers) receives copies, either as plain slices or as a [View].
package engine

import (
	"fmt"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/physics"
)

type Engine struct {
	sys        *physics.NBody
	integrator dynamo.InPlaceIntegrator
	state      dynamo.State
	masses     []float64
}

type Option func(*Engine)

// WithIntegrator replaces the default RK4 integrator.
func WithIntegrator(integ dynamo.InPlaceIntegrator) Option {
	return func(e *Engine) { e.integrator = integ }
}

// New builds an engine from per-body masses (M☉), positions (AU) and
// velocities (AU/day). The three slices must have the same non-zero length.
func New(masses []float64, positions, velocities []dynamo.Vec3, softening float64, opts ...Option) (*Engine, error) {
	if len(masses) != len(positions) || len(masses) != len(velocities) {
		return nil, fmt.Errorf("engine: %d masses, %d positions, %d velocities: %w",
			len(masses), len(positions), len(velocities), dynamo.ErrDimensionMismatch)
	}
	if len(masses) == 0 {
		return nil, fmt.Errorf("engine: %w", dynamo.ErrNoBodies)
	}

	e := &Engine{
		sys:        physics.NewNBody(masses, softening),
		integrator: integrators.NewRK4(),
		state:      dynamo.Pack(positions, velocities),
		masses:     append([]float64(nil), masses...),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Step advances the state by dt days. The system is autonomous, so no
// simulated clock is kept here.
func (e *Engine) Step(dt float64) {
	e.integrator.StepInPlace(e.sys, e.state, 0, dt)
}

func (e *Engine) Len() int            { return len(e.masses) }
func (e *Engine) Softening() float64  { return e.sys.Softening() }
func (e *Engine) Energy() float64     { return e.sys.Energy(e.state) }
func (e *Engine) State() dynamo.State { return e.state.Clone() }

// Valid reports whether every state component is finite.
func (e *Engine) Valid() bool { return e.state.IsValid() }

func (e *Engine) Masses() []float64 {
	return append([]float64(nil), e.masses...)
}

func (e *Engine) Positions() []dynamo.Vec3 {
	out := make([]dynamo.Vec3, len(e.masses))
	for i := range out {
		out[i] = e.state.Position(dynamo.BodyIndex(i))
	}
	return out
}

func (e *Engine) Velocities() []dynamo.Vec3 {
	out := make([]dynamo.Vec3, len(e.masses))
	for i := range out {
		out[i] = e.state.Velocity(dynamo.BodyIndex(i))
	}
	return out
}

// Momentum and CenterOfMass are extra diagnostics for the viewer.
func (e *Engine) Momentum() dynamo.Vec3 { return e.sys.Momentum(e.state) }

func (e *Engine) CenterOfMass() (pos, vel dynamo.Vec3) { return e.sys.CenterOfMass(e.state) }

func (e *Engine) View() View {
	return NewView(e.state, e.masses, e.sys.Softening())
}
