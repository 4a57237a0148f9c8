package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/engine"
	"github.com/san-kum/orbitsim/internal/physics"
)

// Options controls a divergence run.
type Options struct {
	// Perturbation is the x offset (AU) applied to Body in the shadow copy.
	Perturbation float64
	Body         dynamo.BodyIndex
	Dt           float64 // days per step
	Days         float64
	// Renorm is the phase-space separation at which the shadow copy is
	// pulled back to Perturbation.
	Renorm float64
	// Points caps the length of Divergence.Series.
	Points int
}

func DefaultOptions() Options {
	return Options{
		Perturbation: 1e-8,
		Dt:           0.05,
		Days:         3650,
		Renorm:       1e-4,
		Points:       120,
	}
}

func (o Options) validate(n int) error {
	var errs []error
	if o.Perturbation <= 0 {
		errs = append(errs, errors.New("perturbation must be positive"))
	}
	if o.Renorm <= o.Perturbation {
		errs = append(errs, errors.New("renorm must exceed the perturbation"))
	}
	if o.Dt <= 0 || o.Days < o.Dt {
		errs = append(errs, errors.New("need 0 < dt <= days"))
	}
	if !o.Body.Valid(n) {
		errs = append(errs, fmt.Errorf("%s out of range for %d bodies", o.Body, n))
	}
	return errors.Join(errs...)
}

// Divergence is the outcome of a LyapunovExponent run.
type Divergence struct {
	Exponent         float64 // 1/day
	Days             float64
	Steps            int
	Renormalizations int
	// Series holds the running exponent estimate at evenly spaced steps.
	Series []float64
}

// LyapunovTime is 1/Exponent in days, +Inf when the exponent is not
// positive.
func (d Divergence) LyapunovTime() float64 {
	if d.Exponent <= 0 {
		return math.Inf(1)
	}
	return 1 / d.Exponent
}

// LyapunovExponent estimates the largest Lyapunov exponent of ic using the
// trajectory separation method:
//
//  1. Run the reference and a copy displaced by Perturbation
//  2. Each time their separation d exceeds Renorm, add ln(d/d0) and pull
//     the copy back to distance d0 along the same direction
//  3. λ ≈ (Σ ln(d/d0)) / t
//
// integ is used for both trajectories, one step at a time.
func LyapunovExponent(ic engine.InitialConditions, integ dynamo.InPlaceIntegrator, opts Options) (Divergence, error) {
	eng, err := ic.Build()
	if err != nil {
		return Divergence{}, err
	}
	if err := opts.validate(eng.Len()); err != nil {
		return Divergence{}, err
	}

	sys := physics.NewNBody(eng.Masses(), eng.Softening())
	x := eng.State()
	xp := x.Clone()
	xp[3*int(opts.Body)] += opts.Perturbation
	d0 := xp.Sub(x).Norm()

	steps := int(math.Ceil(opts.Days / opts.Dt))
	every := max(steps/max(opts.Points, 1), 1)
	div := Divergence{Steps: steps}

	sumLog := 0.0
	t := 0.0
	for step := 1; step <= steps; step++ {
		integ.StepInPlace(sys, x, t, opts.Dt)
		integ.StepInPlace(sys, xp, t, opts.Dt)
		t += opts.Dt

		if !x.IsValid() || !xp.IsValid() {
			return div, &dynamo.SimulationError{Frame: step, Time: t, Wrapped: dynamo.ErrInvalidState}
		}

		sep := xp.Sub(x).Norm()
		if sep > opts.Renorm {
			sumLog += math.Log(sep / d0)
			div.Renormalizations++
			copy(xp, x.Add(xp.Sub(x).Scale(d0/sep)))
			sep = d0
		}

		if step%every == 0 || step == steps {
			div.Series = append(div.Series, (sumLog+math.Log(sep/d0))/t)
		}
		if step == steps {
			div.Exponent = (sumLog + math.Log(sep/d0)) / t
		}
	}
	div.Days = t
	return div, nil
}
