package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/orbitsim/internal/detect"
)

const (
	DefaultSubSteps       = 4
	DefaultTimeScale      = 10.0
	DefaultEnergyInterval = 250 * time.Millisecond
	DefaultTrailLength    = 256
	DefaultHistoryLength  = 600
)

type CollisionSettings struct {
	Enabled bool
	detect.CollisionConfig
}

type EscapeSettings struct {
	Enabled bool
	detect.EscapeConfig
	// Threshold is the debounce counter value that confirms an escape.
	Threshold int
}

// Settings are the per-frame controls of a Driver.
type Settings struct {
	Integrator string
	// TimeScale is simulated days per real second.
	TimeScale      float64
	SubSteps       int
	EnergyInterval time.Duration
	TrailLength    int
	HistoryLength  int
	Collision      CollisionSettings
	Escape         EscapeSettings
}

func DefaultSettings() Settings {
	return Settings{
		Integrator:     "rk4",
		TimeScale:      DefaultTimeScale,
		SubSteps:       DefaultSubSteps,
		EnergyInterval: DefaultEnergyInterval,
		TrailLength:    DefaultTrailLength,
		HistoryLength:  DefaultHistoryLength,
		Collision: CollisionSettings{
			Enabled:         true,
			CollisionConfig: detect.DefaultCollisionConfig(),
		},
		Escape: EscapeSettings{
			Enabled:      true,
			EscapeConfig: detect.DefaultEscapeConfig(),
			Threshold:    detect.DefaultEscapeThreshold,
		},
	}
}

func (s Settings) Validate() error {
	var errs []error
	if s.TimeScale < 0 {
		errs = append(errs, fmt.Errorf("time scale must be non-negative, got %g", s.TimeScale))
	}
	if s.SubSteps < 1 {
		errs = append(errs, fmt.Errorf("sub-steps must be at least 1, got %d", s.SubSteps))
	}
	if s.EnergyInterval < 0 {
		errs = append(errs, fmt.Errorf("energy interval must be non-negative, got %s", s.EnergyInterval))
	}
	if s.Collision.Enabled {
		if _, err := detect.ParseCollisionMode(string(s.Collision.Mode)); err != nil {
			errs = append(errs, err)
		}
		if s.Collision.Fudge <= 0 {
			errs = append(errs, fmt.Errorf("collision fudge must be positive, got %g", s.Collision.Fudge))
		}
	}
	if s.Escape.Enabled {
		if s.Escape.Fudge <= 0 {
			errs = append(errs, fmt.Errorf("escape fudge must be positive, got %g", s.Escape.Fudge))
		}
		if s.Escape.Threshold < 1 {
			errs = append(errs, fmt.Errorf("escape threshold must be at least 1, got %d", s.Escape.Threshold))
		}
	}
	return errors.Join(errs...)
}
