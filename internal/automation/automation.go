package automation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/experiment"
	"github.com/san-kum/orbitsim/internal/sim"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario. Zero values keep the
// source's own settings.
type ScenarioStep struct {
	// Source is a preset name or a config file path.
	Source     string  `yaml:"source"`
	Integrator string  `yaml:"integrator"`
	TimeScale  float64 `yaml:"time_scale"`
	Frames     int     `yaml:"frames"`
	Save       bool    `yaml:"save"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// Config resolves the step's source and applies its overrides.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg, err := experiment.Resolve(s.Source)
	if err != nil {
		return nil, err
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.TimeScale > 0 {
		cfg.TimeScale = s.TimeScale
	}
	return cfg, cfg.Validate()
}

// StepResult pairs a finished run with the config it ran.
type StepResult struct {
	Step   int
	Config *config.Config
	Result sim.RunResult
}

// RunScenario executes all steps in order. A step that fails stops the
// scenario; the results so far are returned with the error.
func RunScenario(ctx context.Context, scenario *Scenario, logger *log.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "source", step.Source)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.New(cfg, sim.WithLogger(logger))
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		frames := step.Frames
		if frames <= 0 {
			frames = sim.DefaultRunOptions().Frames
		}
		result, err := exp.Run(ctx, frames)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Step: i + 1, Config: cfg, Result: result})
	}

	return results, nil
}

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Trials int
	// Perturbation is the largest relative change applied to each velocity
	// component.
	Perturbation float64
	Frames       int
	Seed         int64
}

func (c MonteCarloConfig) validate() error {
	var errs []error
	if c.Trials < 1 {
		errs = append(errs, errors.New("need at least one trial"))
	}
	if c.Perturbation < 0 {
		errs = append(errs, errors.New("perturbation must not be negative"))
	}
	if c.Frames < 1 {
		errs = append(errs, errors.New("need at least one frame"))
	}
	return errors.Join(errs...)
}

// MonteCarloResult is the outcome of one perturbed trial.
type MonteCarloResult struct {
	Trial   int
	Halt    sim.HaltReason
	Frames  int
	SimDays float64
	Drift   float64
}

// Stable reports whether the trial used its whole frame budget.
func (r MonteCarloResult) Stable() bool { return r.Halt == sim.HaltFrames }

// perturb returns a copy of base with every velocity component scaled by
// a random factor in [1-p, 1+p].
func perturb(base *config.Config, rng *rand.Rand, p float64) *config.Config {
	cfg := *base
	cfg.Bodies = append([]config.BodyConfig(nil), base.Bodies...)
	for i := range cfg.Bodies {
		for k := range cfg.Bodies[i].Velocity {
			cfg.Bodies[i].Velocity[k] *= 1 + (rng.Float64()-0.5)*2*p
		}
	}
	return &cfg
}

// RunMonteCarlo runs perturbed copies of base side by side. The
// perturbations depend only on the seed; seed 0 picks one from the clock.
func RunMonteCarlo(ctx context.Context, base *config.Config, mc MonteCarloConfig, logger *log.Logger) ([]MonteCarloResult, error) {
	if err := mc.validate(); err != nil {
		return nil, err
	}

	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	exps := make([]*experiment.Experiment, 0, mc.Trials)
	for trial := 0; trial < mc.Trials; trial++ {
		cfg := perturb(base, rng, mc.Perturbation)
		cfg.Name = fmt.Sprintf("%s#%d", base.Name, trial)
		exp, err := experiment.New(cfg, sim.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}
		exps = append(exps, exp)
	}

	logger.Info("monte carlo", "name", base.Name, "trials", mc.Trials, "seed", seed)
	runs, err := experiment.RunAll(ctx, exps, mc.Frames)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for i, r := range runs {
		results[i] = MonteCarloResult{
			Trial:   i,
			Halt:    r.Halt,
			Frames:  r.Frames,
			SimDays: r.SimDays,
			Drift:   r.Drift,
		}
	}
	return results, nil
}

// MonteCarloStats counts trials per halt reason.
func MonteCarloStats(results []MonteCarloResult) map[sim.HaltReason]int {
	stats := make(map[sim.HaltReason]int)
	for _, r := range results {
		stats[r.Halt]++
	}
	return stats
}
