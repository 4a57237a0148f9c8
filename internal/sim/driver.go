package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/orbitsim/internal/detect"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/engine"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/metrics"
)

// Driver advances an engine one display frame at a time and runs the
// anomaly detectors on each end-of-frame state. It is not safe for
// concurrent use.
type Driver struct {
	settings  Settings
	ic        engine.InitialConditions
	eng       *engine.Engine
	debounce  *detect.Debouncer
	trail     *TrailBuffer
	history   *metrics.History
	drift     *metrics.EnergyDrift
	observers []Observer
	logger    *log.Logger
	events    []Event

	paused      bool
	frame       int
	simTime     float64
	sinceSample time.Duration
}

type Option func(*Driver)

func WithLogger(l *log.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

func WithObserver(o Observer) Option {
	return func(d *Driver) { d.observers = append(d.observers, o) }
}

// FrameReport summarises one call to Frame.
type FrameReport struct {
	Frame   int
	SimTime float64
	Stepped bool
	Sampled bool
	Energy  float64
	// Candidate is this frame's undebounced escape verdict.
	Candidate dynamo.BodyIndex
	Event     *Event
}

func NewDriver(ic engine.InitialConditions, settings Settings, opts ...Option) (*Driver, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("sim: invalid settings: %w", err)
	}

	d := &Driver{
		settings: settings,
		drift:    metrics.NewEnergyDrift(),
		history:  metrics.NewHistory(settings.HistoryLength),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.Apply(ic); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) build(ic engine.InitialConditions) (*engine.Engine, error) {
	var opts []engine.Option
	if d.settings.Integrator != "" {
		integ, err := integrators.ByName(d.settings.Integrator)
		if err != nil {
			return nil, fmt.Errorf("sim: %w", err)
		}
		opts = append(opts, engine.WithIntegrator(integ))
	}
	return ic.Build(opts...)
}

// Apply replaces the body set. On error the driver keeps its current one.
func (d *Driver) Apply(ic engine.InitialConditions) error {
	eng, err := d.build(ic)
	if err != nil {
		return err
	}
	d.ic = ic.Clone()
	d.install(eng)
	return nil
}

// Reset rebuilds the engine from the stored initial conditions and clears
// the pause flag, escape counters, trails and energy history.
func (d *Driver) Reset() error { return d.Apply(d.ic) }

func (d *Driver) install(eng *engine.Engine) {
	d.eng = eng
	d.debounce = detect.NewDebouncer(eng.Len(), d.settings.Escape.Threshold)
	d.trail = NewTrailBuffer(eng.Len(), d.settings.TrailLength)
	d.history.Reset()
	d.drift.Reset()
	d.events = nil
	d.paused = false
	d.frame = 0
	d.simTime = 0
	d.sinceSample = 0

	d.trail.Push(eng.Positions())
	d.sample()
	d.logger.Debug("engine built", "bodies", eng.Len(), "energy", eng.Energy())
}

func (d *Driver) sample() float64 {
	e := d.eng.Energy()
	d.drift.Observe(e)
	if !math.IsNaN(e) && !math.IsInf(e, 0) {
		d.history.Add(metrics.EnergySample{SimTime: d.simTime, Energy: e})
	}
	return e
}

// Frame integrates one display frame of length frameDelta and runs the
// detectors once on the result. A paused driver does nothing.
func (d *Driver) Frame(frameDelta time.Duration) FrameReport {
	if d.paused {
		return FrameReport{Frame: d.frame, SimTime: d.simTime, Candidate: detect.NoBody}
	}

	frameDays := frameDelta.Seconds() * d.settings.TimeScale
	dt := frameDays / float64(d.settings.SubSteps)
	for i := 0; i < d.settings.SubSteps; i++ {
		d.eng.Step(dt)
	}
	d.frame++
	d.simTime += frameDays

	report := FrameReport{Frame: d.frame, SimTime: d.simTime, Stepped: true, Candidate: detect.NoBody}

	if !d.eng.Valid() {
		err := &dynamo.SimulationError{Frame: d.frame, Time: d.simTime, Wrapped: dynamo.ErrInvalidState}
		report.Event = d.halt(Event{Kind: EventInvalidState, Message: err.Error(), Err: err})
		return report
	}
	d.trail.Push(d.eng.Positions())

	d.sinceSample += frameDelta
	if d.sinceSample >= d.settings.EnergyInterval {
		d.sinceSample = 0
		report.Energy = d.sample()
		report.Sampled = true
	}

	view := d.eng.View()
	if d.settings.Collision.Enabled {
		if c := detect.Collision(view, d.settings.Collision.CollisionConfig, dt); c != nil {
			report.Event = d.halt(Event{
				Kind:      EventCollision,
				Collision: c,
				Message: fmt.Sprintf("collision between %s and %s: separation %.4g AU < %.4g AU",
					d.ic.Name(c.I), d.ic.Name(c.J), c.Separation, c.Threshold),
			})
			return report
		}
	}

	if d.settings.Escape.Enabled {
		esc := detect.Escape(view, d.settings.Escape.EscapeConfig)
		if esc != nil {
			report.Candidate = esc.Index
		}
		if _, ok := d.debounce.Observe(report.Candidate); ok {
			report.Event = d.halt(Event{
				Kind:   EventEscape,
				Escape: esc,
				Message: fmt.Sprintf("%s escaped: %.4g AU/day >= %.4g AU/day at %.4g AU",
					d.ic.Name(esc.Index), esc.Speed, esc.EscapeSpeed, esc.RCM),
			})
		}
	}
	return report
}

func (d *Driver) halt(ev Event) *Event {
	ev.Frame = d.frame
	ev.SimTime = d.simTime
	d.paused = true
	d.events = append(d.events, ev)

	if ev.Kind == EventInvalidState {
		d.logger.Error(ev.Message, "frame", ev.Frame, "t", ev.SimTime)
	} else {
		d.logger.Warn(ev.Message, "kind", ev.Kind, "frame", ev.Frame, "t", ev.SimTime)
	}
	for _, o := range d.observers {
		o.OnEvent(ev)
	}
	return &ev
}

func (d *Driver) Pause()       { d.paused = true }
func (d *Driver) Resume()      { d.paused = false }
func (d *Driver) Paused() bool { return d.paused }

func (d *Driver) Frames() int        { return d.frame }
func (d *Driver) SimTime() float64   { return d.simTime }
func (d *Driver) Len() int           { return d.eng.Len() }
func (d *Driver) Settings() Settings { return d.settings }
func (d *Driver) View() engine.View  { return d.eng.View() }
func (d *Driver) Energy() float64    { return d.eng.Energy() }

func (d *Driver) Positions() []dynamo.Vec3 { return d.eng.Positions() }

// SetTimeScale changes the simulated days per real second from the next
// frame on. Negative values are ignored.
func (d *Driver) SetTimeScale(scale float64) {
	if scale >= 0 {
		d.settings.TimeScale = scale
	}
}

func (d *Driver) InitialConditions() engine.InitialConditions { return d.ic.Clone() }

func (d *Driver) Name(i dynamo.BodyIndex) string { return d.ic.Name(i) }

func (d *Driver) Trail(i dynamo.BodyIndex) []dynamo.Vec3 { return d.trail.Trail(i) }

func (d *Driver) EscapePhase(i dynamo.BodyIndex) detect.Phase { return d.debounce.Phase(i) }

func (d *Driver) EscapeCount(i dynamo.BodyIndex) int { return d.debounce.Count(i) }

func (d *Driver) EnergyHistory() []metrics.EnergySample { return d.history.Samples() }

func (d *Driver) EnergyValues() []float64 { return d.history.Values() }

// Drift returns the current and worst relative energy drift.
func (d *Driver) Drift() (current, worst float64) { return d.drift.Relative(), d.drift.Max() }

func (d *Driver) Events() []Event { return append([]Event(nil), d.events...) }
