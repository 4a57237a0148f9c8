package config

import (
	"math"
	"sort"

	"github.com/san-kum/orbitsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

type Preset struct {
	Description string
	Build       func() *Config
}

var presets = map[string]Preset{
	"figure8": {
		Description: "Chenciner-Montgomery figure-eight, velocities scaled to Gaussian G",
		Build:       figure8,
	},
	"figure8-raw": {
		Description: "figure-eight with unscaled G=1 velocities; the bodies fly apart",
		Build:       figure8Raw,
	},
	"pythagorean": {
		Description: "Burrau's 3-4-5 problem released from rest",
		Build:       pythagorean,
	},
	"binary-planet": {
		Description: "circumbinary Earth-mass planet around a close pair of stars",
		Build:       binaryPlanet,
	},
	"triple": {
		Description: "hierarchical triple: close binary with a distant companion",
		Build:       triple,
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := presets[name]
	if !ok {
		return nil
	}
	return p.Build()
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func DescribePreset(name string) string { return presets[name].Description }

func body(name string, mass float64, pos, vel r3.Vec) BodyConfig {
	return BodyConfig{
		Name:     name,
		Mass:     mass,
		Position: [3]float64{pos.X, pos.Y, pos.Z},
		Velocity: [3]float64{vel.X, vel.Y, vel.Z},
	}
}

// circularPair places two masses a AU apart on a circular orbit about
// their common centre of mass at the origin, moving counter-clockwise in
// the xy-plane.
func circularPair(m1, m2, a float64) (p1, v1, p2, v2 r3.Vec) {
	total := m1 + m2
	v := math.Sqrt(physics.G * total / a)
	p1 = r3.Vec{X: -a * m2 / total}
	v1 = r3.Vec{Y: -v * m2 / total}
	p2 = r3.Vec{X: a * m1 / total}
	v2 = r3.Vec{Y: v * m1 / total}
	return p1, v1, p2, v2
}

func withBodies(name string, timeScale float64, bodies ...BodyConfig) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.TimeScale = timeScale
	cfg.Bodies = bodies
	return cfg
}

var (
	figure8Pos = r3.Vec{X: 0.97000436, Y: -0.24308753}
	figure8Vel = r3.Vec{X: -0.93240737, Y: -0.86473146}
)

func figure8Bodies(velScale float64) []BodyConfig {
	v3 := r3.Scale(velScale, figure8Vel)
	v12 := r3.Scale(-0.5, v3)
	return []BodyConfig{
		body("A", 1, figure8Pos, v12),
		body("B", 1, r3.Scale(-1, figure8Pos), v12),
		body("C", 1, r3.Vec{}, v3),
	}
}

func figure8() *Config {
	return withBodies("figure8", 30, figure8Bodies(math.Sqrt(physics.G))...)
}

func figure8Raw() *Config {
	return withBodies("figure8-raw", 1, figure8Bodies(1)...)
}

func pythagorean() *Config {
	return withBodies("pythagorean", 200,
		body("3", 3, r3.Vec{X: 1, Y: 3}, r3.Vec{}),
		body("4", 4, r3.Vec{X: -2, Y: -1}, r3.Vec{}),
		body("5", 5, r3.Vec{X: 1, Y: -1}, r3.Vec{}),
	)
}

func binaryPlanet() *Config {
	const (
		mA, mB  = 1.0, 0.8
		aBinary = 0.5
		aPlanet = 2.5
		mPlanet = physics.EarthMass
	)
	pA, vA, pB, vB := circularPair(mA, mB, aBinary)
	vPlanet := math.Sqrt(physics.G * (mA + mB) / aPlanet)
	return withBodies("binary-planet", 40,
		body("Kepler-A", mA, pA, vA),
		body("Kepler-B", mB, pB, vB),
		body("Planet", mPlanet, r3.Vec{X: aPlanet}, r3.Vec{Y: vPlanet}),
	)
}

func triple() *Config {
	const (
		mA, mB, mC = 1.0, 0.9, 0.6
		aInner     = 1.0
		aOuter     = 12.0
	)
	pA, vA, pB, vB := circularPair(mA, mB, aInner)
	pIn, vIn, pC, vC := circularPair(mA+mB, mC, aOuter)

	return withBodies("triple", 150,
		body("A", mA, r3.Add(pA, pIn), r3.Add(vA, vIn)),
		body("B", mB, r3.Add(pB, pIn), r3.Add(vB, vIn)),
		body("C", mC, pC, vC),
	)
}
