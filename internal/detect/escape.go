package detect

import (
	"fmt"
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/engine"
	"github.com/san-kum/orbitsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

type EscapeConfig struct {
	// MaxSepAU is the distance from the others' centre of mass below which
	// a body is never considered escaping.
	MaxSepAU float64
	Fudge    float64
}

func DefaultEscapeConfig() EscapeConfig {
	return EscapeConfig{MaxSepAU: 3.0, Fudge: 1.0}
}

type EscapeEvent struct {
	Index       dynamo.BodyIndex `json:"index"`
	Speed       float64          `json:"speed"`
	EscapeSpeed float64          `json:"escape_speed"`
	RCM         float64          `json:"r_cm_au"`
	MassOther   float64          `json:"mass_other"`
}

func (e EscapeEvent) String() string {
	return fmt.Sprintf("escape: %s at %.6g AU/day (escape speed %.6g AU/day, %.4g AU from %.4g M☉)",
		e.Index, e.Speed, e.EscapeSpeed, e.RCM, e.MassOther)
}

// Escape reports the lowest-index body that is instantaneously unbound
// from the combined mass of all other bodies: its speed meets or exceeds
// sqrt(2 G M / r) * cfg.Fudge, where M is the mass of the others and r the
// distance to their centre of mass. Speeds are taken in the frame of the
// state, which is expected to be barycentric.
func Escape(v engine.View, cfg EscapeConfig) *EscapeEvent {
	n := v.Len()

	for k := 0; k < n; k++ {
		idx := dynamo.BodyIndex(k)

		var com dynamo.Vec3
		massOther := 0.0
		for j := 0; j < n; j++ {
			if j == k {
				continue
			}
			m := v.Mass(dynamo.BodyIndex(j))
			massOther += m
			com = r3.Add(com, r3.Scale(m, v.Position(dynamo.BodyIndex(j))))
		}
		if massOther <= 0 {
			continue
		}
		com = r3.Scale(1/massOther, com)

		rCM := r3.Norm(r3.Sub(v.Position(idx), com))
		if rCM <= 0 || rCM < cfg.MaxSepAU {
			continue
		}

		escapeSpeed := math.Sqrt(2*physics.G*massOther/rCM) * cfg.Fudge
		speed := r3.Norm(v.Velocity(idx))
		if speed >= escapeSpeed {
			return &EscapeEvent{
				Index:       idx,
				Speed:       speed,
				EscapeSpeed: escapeSpeed,
				RCM:         rCM,
				MassOther:   massOther,
			}
		}
	}
	return nil
}
