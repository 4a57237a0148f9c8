package engine

import "github.com/san-kum/orbitsim/internal/dynamo"

// View is an immutable snapshot of a body set. It never aliases the
// buffer of the engine it came from.
type View struct {
	state     dynamo.State
	masses    []float64
	softening float64
}

// NewView copies state and masses into a snapshot.
func NewView(state dynamo.State, masses []float64, softening float64) View {
	return View{
		state:     state.Clone(),
		masses:    append([]float64(nil), masses...),
		softening: softening,
	}
}

func (v View) Len() int           { return len(v.masses) }
func (v View) Softening() float64 { return v.softening }

func (v View) Mass(i dynamo.BodyIndex) float64         { return v.masses[i] }
func (v View) Position(i dynamo.BodyIndex) dynamo.Vec3 { return v.state.Position(i) }
func (v View) Velocity(i dynamo.BodyIndex) dynamo.Vec3 { return v.state.Velocity(i) }

func (v View) Masses() []float64   { return append([]float64(nil), v.masses...) }
func (v View) State() dynamo.State { return v.state.Clone() }
