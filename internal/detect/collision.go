package detect

import (
	"fmt"
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/engine"
	"github.com/san-kum/orbitsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// CollisionMode selects how a body's effective radius is computed.
type CollisionMode string

const (
	// ModeCore uses the mass-derived physical radius.
	ModeCore CollisionMode = "core"
	// ModeVDT uses the distance a body covers in one integration step.
	ModeVDT CollisionMode = "vdt"
)

func ParseCollisionMode(s string) (CollisionMode, error) {
	switch m := CollisionMode(s); m {
	case ModeCore, ModeVDT:
		return m, nil
	default:
		return "", fmt.Errorf("unknown collision mode %q (want %q or %q)", s, ModeCore, ModeVDT)
	}
}

type CollisionConfig struct {
	Mode  CollisionMode
	Fudge float64
}

func DefaultCollisionConfig() CollisionConfig {
	return CollisionConfig{Mode: ModeCore, Fudge: 1.2}
}

type CollisionEvent struct {
	I          dynamo.BodyIndex `json:"i"`
	J          dynamo.BodyIndex `json:"j"`
	Separation float64          `json:"separation_au"`
	Threshold  float64          `json:"threshold_au"`
	Mode       CollisionMode    `json:"mode"`
}

func (c CollisionEvent) String() string {
	return fmt.Sprintf("collision: %s and %s at %.6g AU (threshold %.6g AU, %s)",
		c.I, c.J, c.Separation, c.Threshold, c.Mode)
}

// EffectiveRadius returns the collision radius of body i in AU. dt is the
// integration step in days and only matters in ModeVDT.
func EffectiveRadius(v engine.View, i dynamo.BodyIndex, cfg CollisionConfig, dt float64) float64 {
	if cfg.Mode == ModeVDT {
		return r3.Norm(v.Velocity(i)) * dt * cfg.Fudge
	}
	return physics.PhysicalRadiusAU(v.Mass(i)) * cfg.Fudge
}

// Collision returns the first pair, lowest i then lowest j, whose centres
// are closer than the sum of their effective radii. It returns nil when no
// pair touches.
func Collision(v engine.View, cfg CollisionConfig, dt float64) *CollisionEvent {
	n := v.Len()
	radii := make([]float64, n)
	for i := range radii {
		radii[i] = EffectiveRadius(v, dynamo.BodyIndex(i), cfg, dt)
	}

	for i := 0; i < n; i++ {
		pi := v.Position(dynamo.BodyIndex(i))
		for j := i + 1; j < n; j++ {
			sep := math.Sqrt(r3.Norm2(r3.Sub(pi, v.Position(dynamo.BodyIndex(j)))))
			threshold := radii[i] + radii[j]
			if sep < threshold {
				return &CollisionEvent{
					I:          dynamo.BodyIndex(i),
					J:          dynamo.BodyIndex(j),
					Separation: sep,
					Threshold:  threshold,
					Mode:       cfg.Mode,
				}
			}
		}
	}
	return nil
}
