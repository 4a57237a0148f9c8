package physics

import (
	"math"
)

// Reference bodies in AU and solar masses.
const (
	SolarRadiusAU   = 4.650467e-3
	JupiterRadiusAU = 4.778945e-4
	EarthRadiusAU   = 4.263523e-5
	JupiterMass     = 9.547919e-4
	EarthMass       = 3.003489e-6

	// FloorRadiusAU is used for tiny bodies and for masses that are not
	// finite and positive.
	FloorRadiusAU = 1e-6
)

// Regime boundaries in solar masses.
const (
	stellarMinMass = 0.08
	giantMinMass   = 1e-4
	rockyMinMass   = 1e-7
)

type RadiusRegime int

const (
	RegimeFloor RadiusRegime = iota
	RegimeRocky
	RegimeGiant
	RegimeStellar
)

func (r RadiusRegime) String() string {
	switch r {
	case RegimeRocky:
		return "rocky"
	case RegimeGiant:
		return "giant"
	case RegimeStellar:
		return "stellar"
	default:
		return "floor"
	}
}

// Regime classifies a mass into one of the radius regimes.
func Regime(mass float64) RadiusRegime {
	switch {
	case !validMass(mass) || mass < rockyMinMass:
		return RegimeFloor
	case mass < giantMinMass:
		return RegimeRocky
	case mass < stellarMinMass:
		return RegimeGiant
	default:
		return RegimeStellar
	}
}

// PhysicalRadiusAU maps a mass to an approximate body radius:
// main-sequence stars, gas giants and rocky planets each follow their own
// power law, and anything smaller gets the floor radius.
func PhysicalRadiusAU(mass float64) float64 {
	switch Regime(mass) {
	case RegimeStellar:
		return SolarRadiusAU * math.Pow(mass, 0.8)
	case RegimeGiant:
		return JupiterRadiusAU * math.Pow(mass/JupiterMass, 0.1)
	case RegimeRocky:
		return EarthRadiusAU * math.Pow(mass/EarthMass, 0.27)
	default:
		return FloorRadiusAU
	}
}

func validMass(m float64) bool {
	return m > 0 && !math.IsInf(m, 0) && !math.IsNaN(m)
}
