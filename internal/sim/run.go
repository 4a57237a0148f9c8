package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/orbitsim/internal/metrics"
)

type HaltReason string

const (
	HaltFrames       HaltReason = "frames"
	HaltCollision    HaltReason = "collision"
	HaltEscape       HaltReason = "escape"
	HaltInvalidState HaltReason = "invalid_state"
	HaltPaused       HaltReason = "paused"
	HaltCanceled     HaltReason = "canceled"
)

type RunOptions struct {
	Frames     int
	FrameDelta time.Duration
}

func DefaultRunOptions() RunOptions {
	return RunOptions{Frames: 3600, FrameDelta: time.Second / 60}
}

type RunResult struct {
	Frames   int                    `json:"frames"`
	SimDays  float64                `json:"sim_days"`
	Drift    float64                `json:"energy_drift"`
	MaxDrift float64                `json:"max_energy_drift"`
	Halt     HaltReason             `json:"halt"`
	Events   []Event                `json:"events"`
	Energy   []metrics.EnergySample `json:"-"`
	Elapsed  time.Duration          `json:"elapsed"`
}

// Run drives d headlessly until the frame budget is spent, the driver
// pauses, or ctx is done. The partial result is returned alongside
// ctx.Err() on cancellation.
func Run(ctx context.Context, d *Driver, opts RunOptions) (RunResult, error) {
	if opts.Frames <= 0 {
		return RunResult{}, fmt.Errorf("frames must be positive, got %d", opts.Frames)
	}
	if opts.FrameDelta <= 0 {
		return RunResult{}, fmt.Errorf("frame delta must be positive, got %s", opts.FrameDelta)
	}

	start := time.Now()
	res := RunResult{Halt: HaltFrames}
	startFrame := d.Frames()

	var runErr error
loop:
	for i := 0; i < opts.Frames; i++ {
		select {
		case <-ctx.Done():
			res.Halt = HaltCanceled
			runErr = ctx.Err()
			break loop
		default:
		}

		if d.Paused() {
			res.Halt = HaltPaused
			break
		}

		report := d.Frame(opts.FrameDelta)
		if report.Event != nil {
			res.Halt = haltFor(report.Event.Kind)
			break
		}
	}

	res.Frames = d.Frames() - startFrame
	res.SimDays = d.SimTime()
	res.Drift, res.MaxDrift = d.Drift()
	res.Events = d.Events()
	res.Energy = d.EnergyHistory()
	res.Elapsed = time.Since(start)

	d.logger.Info("run finished", "frames", res.Frames, "days", res.SimDays, "drift", res.Drift, "halt", res.Halt)
	return res, runErr
}

func haltFor(k EventKind) HaltReason {
	switch k {
	case EventCollision:
		return HaltCollision
	case EventEscape:
		return HaltEscape
	default:
		return HaltInvalidState
	}
}
