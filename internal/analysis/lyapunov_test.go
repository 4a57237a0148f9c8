package analysis

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/engine"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/physics"
)

func sunJupiter() engine.InitialConditions {
	v := math.Sqrt(physics.G * 1.001)
	return engine.InitialConditions{
		Masses:     []float64{1, 1e-3},
		Positions:  []dynamo.Vec3{{}, {X: 1}},
		Velocities: []dynamo.Vec3{{Y: -1e-3 * v}, {Y: v}},
		Softening:  physics.DefaultSoftening,
	}
}

func TestLyapunovMatchesTwoTrajectories(t *testing.T) {
	ic := sunJupiter()
	opts := Options{Perturbation: 1e-8, Body: 1, Dt: 0.5, Days: 100, Renorm: 1e6, Points: 10}

	div, err := LyapunovExponent(ic, integrators.NewRK4(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ref, _ := ic.Build()
	shifted := ic.Clone()
	shifted.Positions[1].X += opts.Perturbation
	shadow, _ := shifted.Build()
	for i := 0; i < 200; i++ {
		ref.Step(opts.Dt)
		shadow.Step(opts.Dt)
	}
	d0 := shifted.Positions[1].X - ic.Positions[1].X
	want := math.Log(floats.Distance(shadow.State(), ref.State(), 2)/d0) / 100

	if div.Steps != 200 || div.Renormalizations != 0 {
		t.Errorf("steps %d renorms %d, want 200 and 0", div.Steps, div.Renormalizations)
	}
	if math.Abs(div.Exponent-want) > 1e-9*math.Abs(want) {
		t.Errorf("exponent %g, want %g", div.Exponent, want)
	}
	if math.Abs(div.Days-100) > 1e-9 {
		t.Errorf("days = %g", div.Days)
	}
	if len(div.Series) != 10 || div.Series[9] != div.Exponent {
		t.Errorf("series %v does not end at the exponent", div.Series)
	}
}

func TestLyapunovRenormalizes(t *testing.T) {
	opts := Options{Perturbation: 1e-8, Body: 1, Dt: 0.5, Days: 2000, Renorm: 1e-7, Points: 50}

	div, err := LyapunovExponent(sunJupiter(), integrators.NewRK4(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if div.Renormalizations == 0 {
		t.Fatal("separation never reached the renorm threshold")
	}
	if div.Exponent <= 0 || math.IsInf(div.Exponent, 0) || math.IsNaN(div.Exponent) {
		t.Errorf("exponent %g, want finite and positive", div.Exponent)
	}
	if lt := div.LyapunovTime(); lt != 1/div.Exponent {
		t.Errorf("lyapunov time %g", lt)
	}
}

func TestLyapunovOptionErrors(t *testing.T) {
	cases := []struct {
		name string
		edit func(*Options)
	}{
		{"zero perturbation", func(o *Options) { o.Perturbation = 0 }},
		{"renorm below perturbation", func(o *Options) { o.Renorm = o.Perturbation / 2 }},
		{"negative dt", func(o *Options) { o.Dt = -1 }},
		{"days below dt", func(o *Options) { o.Days = o.Dt / 2 }},
		{"body out of range", func(o *Options) { o.Body = 2 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			tc.edit(&opts)
			if _, err := LyapunovExponent(sunJupiter(), integrators.NewRK4(), opts); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLyapunovRejectsBadBodySet(t *testing.T) {
	ic := sunJupiter()
	ic.Masses = ic.Masses[:1]
	_, err := LyapunovExponent(ic, integrators.NewRK4(), DefaultOptions())
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestLyapunovTimeNonPositive(t *testing.T) {
	if lt := (Divergence{Exponent: 0}).LyapunovTime(); !math.IsInf(lt, 1) {
		t.Errorf("lyapunov time %g, want +Inf", lt)
	}
}
