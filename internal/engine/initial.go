package engine

import (
	"github.com/san-kum/orbitsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// InitialConditions is the plain data an engine is built from.
type InitialConditions struct {
	Names      []string      `json:"names,omitempty"`
	Masses     []float64     `json:"masses"`
	Positions  []dynamo.Vec3 `json:"positions"`
	Velocities []dynamo.Vec3 `json:"velocities"`
	Softening  float64       `json:"softening"`
}

func (ic InitialConditions) Build(opts ...Option) (*Engine, error) {
	return New(ic.Masses, ic.Positions, ic.Velocities, ic.Softening, opts...)
}

// Clone deep-copies every slice.
func (ic InitialConditions) Clone() InitialConditions {
	return InitialConditions{
		Names:      append([]string(nil), ic.Names...),
		Masses:     append([]float64(nil), ic.Masses...),
		Positions:  append([]dynamo.Vec3(nil), ic.Positions...),
		Velocities: append([]dynamo.Vec3(nil), ic.Velocities...),
		Softening:  ic.Softening,
	}
}

// Recentered returns a copy shifted into the barycentric frame. Mismatched
// or massless sets are returned unchanged.
func (ic InitialConditions) Recentered() InitialConditions {
	out := ic.Clone()
	if len(ic.Masses) != len(ic.Positions) || len(ic.Masses) != len(ic.Velocities) {
		return out
	}

	var com, comVel dynamo.Vec3
	total := 0.0
	for i, m := range ic.Masses {
		com = r3.Add(com, r3.Scale(m, ic.Positions[i]))
		comVel = r3.Add(comVel, r3.Scale(m, ic.Velocities[i]))
		total += m
	}
	if total <= 0 {
		return out
	}
	com = r3.Scale(1/total, com)
	comVel = r3.Scale(1/total, comVel)

	for i := range out.Masses {
		out.Positions[i] = r3.Sub(out.Positions[i], com)
		out.Velocities[i] = r3.Sub(out.Velocities[i], comVel)
	}
	return out
}

// Name returns the display name of body i, falling back to its index.
func (ic InitialConditions) Name(i dynamo.BodyIndex) string {
	if int(i) < len(ic.Names) && ic.Names[i] != "" {
		return ic.Names[i]
	}
	return i.String()
}
