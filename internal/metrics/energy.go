package metrics

import (
	"math"
)

// EnergyDrift tracks how far the total energy has wandered from its first
// observed value. Drift is a diagnostic only; nothing acts on it.
type EnergyDrift struct {
	name     string
	initial  float64
	current  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

// Observe records one energy sample. Non-finite values are ignored.
func (e *EnergyDrift) Observe(energy float64) {
	if math.IsNaN(energy) || math.IsInf(energy, 0) {
		return
	}
	if e.samples == 0 {
		e.initial = energy
	}
	e.current = energy
	e.samples++
	e.maxDrift = math.Max(e.maxDrift, e.Relative())
}

// Relative returns |E - E0| / |E0|, or 0 when E0 is zero.
func (e *EnergyDrift) Relative() float64 {
	if e.initial == 0 {
		return 0
	}
	return math.Abs(e.current-e.initial) / math.Abs(e.initial)
}

func (e *EnergyDrift) Initial() float64 { return e.initial }
func (e *EnergyDrift) Current() float64 { return e.current }
func (e *EnergyDrift) Max() float64     { return e.maxDrift }
func (e *EnergyDrift) Samples() int     { return e.samples }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.current = 0
	e.maxDrift = 0
	e.samples = 0
}

type EnergySample struct {
	SimTime float64 `json:"sim_time"`
	Energy  float64 `json:"energy"`
}

// History keeps the most recent energy samples up to a fixed capacity.
type History struct {
	capacity int
	samples  []EnergySample
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{capacity: capacity, samples: make([]EnergySample, 0, capacity)}
}

func (h *History) Add(s EnergySample) {
	if len(h.samples) == h.capacity {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:len(h.samples)-1]
	}
	h.samples = append(h.samples, s)
}

func (h *History) Len() int { return len(h.samples) }

func (h *History) Samples() []EnergySample {
	return append([]EnergySample(nil), h.samples...)
}

// Values returns the energies alone, oldest first, for plotting.
func (h *History) Values() []float64 {
	out := make([]float64, len(h.samples))
	for i, s := range h.samples {
		out[i] = s.Energy
	}
	return out
}

func (h *History) Reset() { h.samples = h.samples[:0] }
