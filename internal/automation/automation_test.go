package automation

import (
	"context"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/sim"
)

var quiet = log.New(io.Discard)

const smokeScenario = `
name: smoke
description: two short runs
steps:
  - source: figure8
    frames: 60
  - source: binary-planet
    integrator: euler
    time_scale: 5
    frames: 30
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, smokeScenario))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sc.Name != "smoke" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}

	results, err := RunScenario(context.Background(), sc, quiet)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	first, second := results[0], results[1]
	if first.Result.Frames != 60 || first.Result.Halt != sim.HaltFrames {
		t.Errorf("step 1 ran %d frames, halt %s", first.Result.Frames, first.Result.Halt)
	}
	if second.Config.Integrator != "euler" || second.Config.TimeScale != 5 {
		t.Errorf("step 2 overrides not applied: %s at %g", second.Config.Integrator, second.Config.TimeScale)
	}
	if second.Result.Frames != 30 || second.Step != 2 {
		t.Errorf("step 2 ran %d frames as step %d", second.Result.Frames, second.Step)
	}
}

func TestRunScenarioStopsOnBadStep(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{
		{Source: "figure8", Frames: 10},
		{Source: "figure8", Integrator: "leapfrog"},
		{Source: "figure8", Frames: 10},
	}}
	results, err := RunScenario(context.Background(), sc, quiet)
	if err == nil {
		t.Fatal("expected an error for the unknown integrator")
	}
	if len(results) != 1 {
		t.Errorf("expected the first result to survive, got %d", len(results))
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("expected an error for a scenario without steps")
	}
	if _, err := LoadScenario(writeScenario(t, "steps: [")); err == nil {
		t.Error("expected a parse error")
	}
}

func TestStepConfigDefaults(t *testing.T) {
	cfg, err := ScenarioStep{Source: "triple"}.Config()
	if err != nil {
		t.Fatal(err)
	}
	want := config.GetPreset("triple")
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("zero step changed the preset (-want +got):\n%s", diff)
	}
}

func TestPerturb(t *testing.T) {
	base := config.GetPreset("binary-planet")
	rng := rand.New(rand.NewSource(7))

	same := perturb(base, rng, 0)
	if diff := cmp.Diff(base.Bodies, same.Bodies); diff != "" {
		t.Errorf("zero perturbation changed bodies:\n%s", diff)
	}

	kicked := perturb(base, rng, 0.1)
	for i, b := range kicked.Bodies {
		for k, v := range b.Velocity {
			orig := base.Bodies[i].Velocity[k]
			if math.Abs(v-orig) > 0.1*math.Abs(orig)+1e-18 {
				t.Errorf("body %d component %d moved from %g to %g", i, k, orig, v)
			}
		}
	}
	if diff := cmp.Diff(config.GetPreset("binary-planet").Bodies, base.Bodies); diff != "" {
		t.Errorf("perturb modified its input:\n%s", diff)
	}
}

func TestRunMonteCarloDeterministic(t *testing.T) {
	mc := MonteCarloConfig{Trials: 3, Perturbation: 0.05, Frames: 40, Seed: 42}
	a, err := RunMonteCarlo(context.Background(), config.GetPreset("triple"), mc, quiet)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RunMonteCarlo(context.Background(), config.GetPreset("triple"), mc, quiet)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed gave different results:\n%s", diff)
	}
	for i, r := range a {
		if r.Trial != i {
			t.Errorf("result %d has trial %d", i, r.Trial)
		}
	}
}

func TestRunMonteCarloStats(t *testing.T) {
	mc := MonteCarloConfig{Trials: 3, Frames: 600, Seed: 1}
	results, err := RunMonteCarlo(context.Background(), config.GetPreset("figure8-raw"), mc, quiet)
	if err != nil {
		t.Fatal(err)
	}

	stats := MonteCarloStats(results)
	if stats[sim.HaltEscape] != 3 {
		t.Errorf("expected every unperturbed trial to escape, got %v", stats)
	}
	for _, r := range results {
		if r.Stable() {
			t.Errorf("trial %d reported stable", r.Trial)
		}
	}
}

func TestMonteCarloConfigValidation(t *testing.T) {
	for _, mc := range []MonteCarloConfig{
		{Trials: 0, Frames: 10},
		{Trials: 1, Frames: 0},
		{Trials: 1, Frames: 10, Perturbation: -1},
	} {
		if _, err := RunMonteCarlo(context.Background(), config.GetPreset("figure8"), mc, quiet); err == nil {
			t.Errorf("expected an error for %+v", mc)
		}
	}
}
