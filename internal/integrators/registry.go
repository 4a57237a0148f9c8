package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

var registry = map[string]func() dynamo.InPlaceIntegrator{
	"rk4":    func() dynamo.InPlaceIntegrator { return NewRK4() },
	"euler":  func() dynamo.InPlaceIntegrator { return NewEuler() },
	"verlet": func() dynamo.InPlaceIntegrator { return NewVerlet() },
}

// ByName returns a fresh integrator registered under name.
func ByName(name string) (dynamo.InPlaceIntegrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", dynamo.ErrUnknownIntegrator, name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
