package detect

import "github.com/san-kum/orbitsim/internal/dynamo"

const (
	DefaultEscapeThreshold = 8

	// NoBody is passed to Debouncer.Observe on frames without a candidate.
	NoBody dynamo.BodyIndex = -1
)

// Phase is the debounce state of one body.
type Phase int

const (
	Quiet Phase = iota
	Suspect
	Confirmed
)

func (p Phase) String() string {
	switch p {
	case Suspect:
		return "suspect"
	case Confirmed:
		return "confirmed"
	default:
		return "quiet"
	}
}

// Debouncer filters per-frame escape verdicts. Each body has a counter in
// [0, threshold]: the frame's candidate gains 2, every other body loses 1.
// A body whose counter reaches the threshold is confirmed and stays
// confirmed until Reset.
type Debouncer struct {
	threshold int
	counters  []int
	confirmed []bool
}

func NewDebouncer(n, threshold int) *Debouncer {
	if threshold < 1 {
		threshold = 1
	}
	return &Debouncer{
		threshold: threshold,
		counters:  make([]int, n),
		confirmed: make([]bool, n),
	}
}

// Observe applies one frame's verdict and returns the body confirmed by
// this frame, if any.
func (d *Debouncer) Observe(hit dynamo.BodyIndex) (dynamo.BodyIndex, bool) {
	newly := NoBody
	for i := range d.counters {
		if d.confirmed[i] {
			continue
		}
		if dynamo.BodyIndex(i) == hit {
			d.counters[i] = min(d.counters[i]+2, d.threshold)
			if d.counters[i] == d.threshold {
				d.confirmed[i] = true
				newly = hit
			}
			continue
		}
		d.counters[i] = max(d.counters[i]-1, 0)
	}
	return newly, newly != NoBody
}

func (d *Debouncer) Phase(i dynamo.BodyIndex) Phase {
	switch {
	case d.confirmed[i]:
		return Confirmed
	case d.counters[i] > 0:
		return Suspect
	default:
		return Quiet
	}
}

func (d *Debouncer) Count(i dynamo.BodyIndex) int { return d.counters[i] }
func (d *Debouncer) Threshold() int               { return d.threshold }
func (d *Debouncer) Len() int                     { return len(d.counters) }

// Reset returns every body to Quiet and resizes for n bodies.
func (d *Debouncer) Reset(n int) {
	d.counters = make([]int, n)
	d.confirmed = make([]bool, n)
}
