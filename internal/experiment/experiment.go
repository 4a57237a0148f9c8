package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/sim"
)

// Experiment is one configured body set and the driver that runs it.
type Experiment struct {
	cfg    *config.Config
	driver *sim.Driver
}

func New(cfg *config.Config, opts ...sim.Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("experiment %s: %w", cfg.Name, err)
	}
	d, err := sim.NewDriver(cfg.InitialConditions(), cfg.Settings(), opts...)
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", cfg.Name, err)
	}
	return &Experiment{cfg: cfg, driver: d}, nil
}

// Run drives the experiment headlessly for up to frames frames at the
// configured frame rate.
func (e *Experiment) Run(ctx context.Context, frames int) (sim.RunResult, error) {
	return sim.Run(ctx, e.driver, e.cfg.RunOptions(frames))
}

func (e *Experiment) Config() *config.Config { return e.cfg }
func (e *Experiment) Driver() *sim.Driver    { return e.driver }

// RunAll runs independent experiments concurrently, each at its own frame
// rate; results follow the order of exps.
func RunAll(ctx context.Context, exps []*Experiment, frames int) ([]sim.RunResult, error) {
	if len(exps) == 0 {
		return nil, nil
	}
	drivers := make([]*sim.Driver, len(exps))
	opts := make([]sim.RunOptions, len(exps))
	for i, e := range exps {
		drivers[i] = e.driver
		opts[i] = e.cfg.RunOptions(frames)
	}
	return sim.RunEnsemble(ctx, drivers, opts)
}
