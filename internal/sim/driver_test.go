package sim_test

import (
	"errors"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbitsim/internal/detect"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/engine"
	"github.com/san-kum/orbitsim/internal/sim"
)

const frame = 16 * time.Millisecond

var _ = Describe("Driver", func() {
	var (
		settings sim.Settings
		events   []sim.Event
		record   sim.Observer
	)

	BeforeEach(func() {
		settings = sim.DefaultSettings()
		settings.TimeScale = 1
		events = nil
		record = sim.ObserverFunc(func(e sim.Event) { events = append(events, e) })
	})

	newDriver := func(ic engine.InitialConditions) *sim.Driver {
		d, err := sim.NewDriver(ic, settings, sim.WithLogger(quiet), sim.WithObserver(record))
		Expect(err).NotTo(HaveOccurred())
		return d
	}

	It("splits each frame into equal sub-steps", func() {
		settings.TimeScale = 10
		delta := 100 * time.Millisecond
		d := newDriver(figure8())

		ref, err := figure8().Build()
		Expect(err).NotTo(HaveOccurred())
		dt := delta.Seconds() * settings.TimeScale / float64(settings.SubSteps)
		for i := 0; i < 3; i++ {
			d.Frame(delta)
			for i := 0; i < settings.SubSteps; i++ {
				ref.Step(dt)
			}
		}

		Expect(d.View().State()).To(Equal(ref.State()))
		Expect(d.Frames()).To(Equal(3))
		Expect(d.SimTime()).To(BeNumerically("~", 3.0, 1e-12))
	})

	It("does not integrate while paused", func() {
		d := newDriver(figure8())
		before := d.Positions()

		d.Pause()
		report := d.Frame(frame)

		Expect(report.Stepped).To(BeFalse())
		Expect(d.Positions()).To(Equal(before))
		Expect(d.Frames()).To(BeZero())

		d.Resume()
		Expect(d.Frame(frame).Stepped).To(BeTrue())
		Expect(d.Positions()).NotTo(Equal(before))
	})

	It("samples energy on the configured interval", func() {
		settings.EnergyInterval = 250 * time.Millisecond
		d := newDriver(figure8())

		var sampled []int
		for i := 0; i < 6; i++ {
			if r := d.Frame(100 * time.Millisecond); r.Sampled {
				sampled = append(sampled, r.Frame)
			}
		}

		Expect(sampled).To(Equal([]int{3, 6}))
		Expect(d.EnergyHistory()).To(HaveLen(3))
		Expect(d.EnergyHistory()[0].SimTime).To(BeZero())
		current, worst := d.Drift()
		Expect(current).To(BeNumerically("<", 1e-6))
		Expect(worst).To(BeNumerically(">=", current))
	})

	It("records a trail for every body", func() {
		settings.TrailLength = 4
		d := newDriver(figure8())
		for i := 0; i < 10; i++ {
			d.Frame(frame)
		}
		Expect(d.Trail(0)).To(HaveLen(4))
		Expect(d.Trail(2)[3]).To(Equal(d.Positions()[2]))
	})

	Context("on collision", func() {
		BeforeEach(func() { settings.TimeScale = 0.001 })

		It("pauses and notifies observers", func() {
			d := newDriver(touchingSuns())
			report := d.Frame(frame)

			Expect(report.Event).NotTo(BeNil())
			Expect(report.Event.Kind).To(Equal(sim.EventCollision))
			Expect(report.Event.Collision.I).To(Equal(dynamo.BodyIndex(0)))
			Expect(report.Event.Collision.J).To(Equal(dynamo.BodyIndex(1)))
			Expect(report.Event.Message).To(ContainSubstring("Sun and Twin"))
			Expect(d.Paused()).To(BeTrue())
			Expect(events).To(HaveLen(1))
		})

		It("sizes vdt radii by one sub-step, not the whole frame", func() {
			settings.TimeScale = 1
			settings.SubSteps = 4
			settings.Collision.Mode = detect.ModeVDT
			settings.Collision.Fudge = 1
			settings.Escape.Enabled = false

			// Radii are |v|*dt = 0.25 AU per body at a 1 s frame, against a
			// 1 AU separation; the frame span alone would give 1 AU each.
			d := newDriver(drifters())
			Expect(d.Frame(time.Second).Event).To(BeNil())

			d = newDriver(drifters())
			report := d.Frame(3 * time.Second)
			Expect(report.Event).NotTo(BeNil())
			Expect(report.Event.Collision.Mode).To(Equal(detect.ModeVDT))
			Expect(report.Event.Collision.Threshold).To(BeNumerically("~", 1.5, 1e-6))
		})

		It("stays quiet when collisions are disabled", func() {
			settings.Collision.Enabled = false
			d := newDriver(touchingSuns())
			Expect(d.Frame(frame).Event).To(BeNil())
			Expect(d.Paused()).To(BeFalse())
		})
	})

	Context("on escape", func() {
		It("confirms only after the debounce threshold", func() {
			d := newDriver(runaway())

			for i := 1; i <= 3; i++ {
				r := d.Frame(frame)
				Expect(r.Candidate).To(Equal(dynamo.BodyIndex(1)))
				Expect(r.Event).To(BeNil())
				Expect(d.EscapePhase(1)).To(Equal(detect.Suspect))
				Expect(d.EscapeCount(1)).To(Equal(2 * i))
			}

			r := d.Frame(frame)
			Expect(r.Event).NotTo(BeNil())
			Expect(r.Event.Kind).To(Equal(sim.EventEscape))
			Expect(r.Event.Escape.Index).To(Equal(dynamo.BodyIndex(1)))
			Expect(r.Event.Message).To(HavePrefix("Rogue escaped"))
			Expect(r.Event.Frame).To(Equal(4))
			Expect(d.EscapePhase(1)).To(Equal(detect.Confirmed))
			Expect(d.Paused()).To(BeTrue())
		})

		It("honours a custom threshold", func() {
			settings.Escape.Threshold = 2
			d := newDriver(runaway())
			Expect(d.Frame(frame).Event).NotTo(BeNil())
		})
	})

	It("reports a non-finite state as an invalid-state event", func() {
		ic := figure8()
		ic.Positions[0].X = math.NaN()
		d := newDriver(ic)

		r := d.Frame(frame)
		Expect(r.Event).NotTo(BeNil())
		Expect(r.Event.Kind).To(Equal(sim.EventInvalidState))
		Expect(errors.Is(r.Event.Err, dynamo.ErrInvalidState)).To(BeTrue())

		var simErr *dynamo.SimulationError
		Expect(errors.As(r.Event.Err, &simErr)).To(BeTrue())
		Expect(simErr.Frame).To(Equal(1))
		Expect(d.Paused()).To(BeTrue())
	})

	It("resets to the initial conditions", func() {
		d := newDriver(runaway())
		for i := 0; i < 4; i++ {
			d.Frame(frame)
		}
		Expect(d.Paused()).To(BeTrue())

		Expect(d.Reset()).To(Succeed())
		Expect(d.Paused()).To(BeFalse())
		Expect(d.Frames()).To(BeZero())
		Expect(d.SimTime()).To(BeZero())
		Expect(d.EscapeCount(1)).To(BeZero())
		Expect(d.Events()).To(BeEmpty())
		Expect(d.Positions()).To(Equal(runaway().Positions))
		Expect(d.Trail(0)).To(HaveLen(1))
	})

	It("keeps the current body set when Apply fails", func() {
		d := newDriver(figure8())
		bad := figure8()
		bad.Masses = bad.Masses[:2]

		err := d.Apply(bad)
		Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())
		Expect(d.Len()).To(Equal(3))
	})

	It("replaces the body set and clears escape counters on Apply", func() {
		d := newDriver(runaway())
		d.Frame(frame)
		Expect(d.EscapeCount(1)).To(Equal(2))

		Expect(d.Apply(figure8())).To(Succeed())
		Expect(d.Len()).To(Equal(3))
		Expect(d.Name(0)).To(Equal("A"))
		Expect(d.EscapeCount(1)).To(BeZero())
	})

	It("rejects invalid settings", func() {
		settings.SubSteps = 0
		settings.Collision.Mode = "sphere"
		_, err := sim.NewDriver(figure8(), settings, sim.WithLogger(quiet))
		Expect(err).To(MatchError(ContainSubstring("sub-steps")))
		Expect(err).To(MatchError(ContainSubstring("sphere")))
	})

	It("rejects an unknown integrator", func() {
		settings.Integrator = "leapfrog"
		_, err := sim.NewDriver(figure8(), settings, sim.WithLogger(quiet))
		Expect(errors.Is(err, dynamo.ErrUnknownIntegrator)).To(BeTrue())
	})
})

var _ = Describe("EventKind", func() {
	It("round-trips through text", func() {
		for _, k := range []sim.EventKind{sim.EventCollision, sim.EventEscape, sim.EventInvalidState} {
			b, err := k.MarshalText()
			Expect(err).NotTo(HaveOccurred())
			var got sim.EventKind
			Expect(got.UnmarshalText(b)).To(Succeed())
			Expect(got).To(Equal(k))
		}
		var k sim.EventKind
		Expect(k.UnmarshalText([]byte("supernova"))).NotTo(Succeed())
	})
})
