package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbitsim/internal/detect"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/engine"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/sim"
)

const (
	DefaultTimeScale      = 10.0
	DefaultSubSteps       = 4
	DefaultFrameRate      = 60
	DefaultEnergyInterval = 0.25
	DefaultTrailLength    = 256
)

type Config struct {
	Name       string  `yaml:"name" toml:"name"`
	Integrator string  `yaml:"integrator" toml:"integrator"`
	Softening  float64 `yaml:"softening" toml:"softening"`
	// TimeScale is simulated days per real second.
	TimeScale float64 `yaml:"time_scale" toml:"time_scale"`
	SubSteps  int     `yaml:"sub_steps" toml:"sub_steps"`
	FrameRate int     `yaml:"frame_rate" toml:"frame_rate"`
	// EnergyInterval is in real seconds.
	EnergyInterval float64         `yaml:"energy_interval" toml:"energy_interval"`
	TrailLength    int             `yaml:"trail_length" toml:"trail_length"`
	Recenter       bool            `yaml:"recenter" toml:"recenter"`
	Bodies         []BodyConfig    `yaml:"bodies" toml:"bodies"`
	Collision      CollisionConfig `yaml:"collision" toml:"collision"`
	Escape         EscapeConfig    `yaml:"escape" toml:"escape"`
}

// BodyConfig is one body in M☉, AU and AU/day.
type BodyConfig struct {
	Name     string     `yaml:"name" toml:"name"`
	Mass     float64    `yaml:"mass" toml:"mass"`
	Position [3]float64 `yaml:"position,flow" toml:"position"`
	Velocity [3]float64 `yaml:"velocity,flow" toml:"velocity"`
}

type CollisionConfig struct {
	Enabled bool    `yaml:"enabled" toml:"enabled"`
	Mode    string  `yaml:"mode" toml:"mode"`
	Fudge   float64 `yaml:"fudge" toml:"fudge"`
}

type EscapeConfig struct {
	Enabled              bool    `yaml:"enabled" toml:"enabled"`
	MaxSepAU             float64 `yaml:"max_sep_au" toml:"max_sep_au"`
	Fudge                float64 `yaml:"fudge" toml:"fudge"`
	ConsecutiveThreshold int     `yaml:"consecutive_threshold" toml:"consecutive_threshold"`
}

// DefaultConfig has every setting but no bodies.
func DefaultConfig() *Config {
	col := detect.DefaultCollisionConfig()
	esc := detect.DefaultEscapeConfig()
	return &Config{
		Name:           "custom",
		Integrator:     "rk4",
		Softening:      physics.DefaultSoftening,
		TimeScale:      DefaultTimeScale,
		SubSteps:       DefaultSubSteps,
		FrameRate:      DefaultFrameRate,
		EnergyInterval: DefaultEnergyInterval,
		TrailLength:    DefaultTrailLength,
		Recenter:       true,
		Collision: CollisionConfig{
			Enabled: true,
			Mode:    string(col.Mode),
			Fudge:   col.Fudge,
		},
		Escape: EscapeConfig{
			Enabled:              true,
			MaxSepAU:             esc.MaxSepAU,
			Fudge:                esc.Fudge,
			ConsecutiveThreshold: detect.DefaultEscapeThreshold,
		},
	}
}

// Load reads a YAML or TOML file, chosen by extension, over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported file type %q", ext)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	case ".yaml", ".yml":
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return err
		}
	default:
		return fmt.Errorf("config: unsupported file type %q", ext)
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.Bodies) == 0 {
		errs = append(errs, dynamo.ErrNoBodies)
	}
	for i, b := range c.Bodies {
		if !(b.Mass > 0) || math.IsInf(b.Mass, 0) {
			errs = append(errs, fmt.Errorf("body %d (%s): mass must be finite and positive, got %g", i, b.Name, b.Mass))
		}
	}
	if c.Softening < 0 {
		errs = append(errs, fmt.Errorf("softening must be non-negative, got %g", c.Softening))
	}
	if c.FrameRate < 1 {
		errs = append(errs, fmt.Errorf("frame rate must be at least 1, got %d", c.FrameRate))
	}
	if c.Escape.Enabled && c.Escape.MaxSepAU < 0 {
		errs = append(errs, fmt.Errorf("escape max_sep_au must be non-negative, got %g", c.Escape.MaxSepAU))
	}
	if _, err := integrators.ByName(c.Integrator); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, c.Settings().Validate())
	return errors.Join(errs...)
}

// Settings converts the per-frame controls for a sim.Driver.
func (c *Config) Settings() sim.Settings {
	s := sim.DefaultSettings()
	s.Integrator = c.Integrator
	s.TimeScale = c.TimeScale
	s.SubSteps = c.SubSteps
	s.EnergyInterval = time.Duration(c.EnergyInterval * float64(time.Second))
	s.TrailLength = c.TrailLength
	s.Collision = sim.CollisionSettings{
		Enabled: c.Collision.Enabled,
		CollisionConfig: detect.CollisionConfig{
			Mode:  detect.CollisionMode(c.Collision.Mode),
			Fudge: c.Collision.Fudge,
		},
	}
	s.Escape = sim.EscapeSettings{
		Enabled: c.Escape.Enabled,
		EscapeConfig: detect.EscapeConfig{
			MaxSepAU: c.Escape.MaxSepAU,
			Fudge:    c.Escape.Fudge,
		},
		Threshold: c.Escape.ConsecutiveThreshold,
	}
	return s
}

// InitialConditions returns the body set, shifted to the barycentric frame
// when Recenter is set.
func (c *Config) InitialConditions() engine.InitialConditions {
	ic := engine.InitialConditions{
		Names:      make([]string, len(c.Bodies)),
		Masses:     make([]float64, len(c.Bodies)),
		Positions:  make([]dynamo.Vec3, len(c.Bodies)),
		Velocities: make([]dynamo.Vec3, len(c.Bodies)),
		Softening:  c.Softening,
	}
	for i, b := range c.Bodies {
		ic.Names[i] = b.Name
		ic.Masses[i] = b.Mass
		ic.Positions[i] = dynamo.Vec3{X: b.Position[0], Y: b.Position[1], Z: b.Position[2]}
		ic.Velocities[i] = dynamo.Vec3{X: b.Velocity[0], Y: b.Velocity[1], Z: b.Velocity[2]}
	}
	if c.Recenter {
		return ic.Recentered()
	}
	return ic
}

// RunOptions runs the given number of frames at the configured frame rate.
func (c *Config) RunOptions(frames int) sim.RunOptions {
	rate := max(c.FrameRate, 1)
	return sim.RunOptions{Frames: frames, FrameDelta: time.Second / time.Duration(rate)}
}
