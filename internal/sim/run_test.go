package sim_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbitsim/internal/engine"
	"github.com/san-kum/orbitsim/internal/sim"
)

var _ = Describe("Run", func() {
	var settings sim.Settings

	BeforeEach(func() {
		settings = sim.DefaultSettings()
	})

	mk := func(ic engine.InitialConditions, timeScale float64) *sim.Driver {
		s := settings
		s.TimeScale = timeScale
		d, err := sim.NewDriver(ic, s, sim.WithLogger(quiet))
		Expect(err).NotTo(HaveOccurred())
		return d
	}
	fig8 := func() *sim.Driver { return mk(figure8(), 1) }
	suns := func() *sim.Driver { return mk(touchingSuns(), 0.001) }

	opts := sim.RunOptions{Frames: 10, FrameDelta: 16 * time.Millisecond}

	It("stops at the frame budget", func() {
		res, err := sim.Run(context.Background(), fig8(), opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Halt).To(Equal(sim.HaltFrames))
		Expect(res.Frames).To(Equal(10))
		Expect(res.SimDays).To(BeNumerically("~", 0.16, 1e-12))
		Expect(res.Events).To(BeEmpty())
		Expect(res.Energy).NotTo(BeEmpty())
	})

	It("stops on the first halting event", func() {
		res, err := sim.Run(context.Background(), suns(), opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Halt).To(Equal(sim.HaltCollision))
		Expect(res.Frames).To(Equal(1))
		Expect(res.Events).To(HaveLen(1))
	})

	It("does nothing for a paused driver", func() {
		d := fig8()
		d.Pause()
		res, err := sim.Run(context.Background(), d, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Halt).To(Equal(sim.HaltPaused))
		Expect(res.Frames).To(BeZero())
	})

	It("returns the context error on cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := sim.Run(ctx, fig8(), opts)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.Halt).To(Equal(sim.HaltCanceled))
		Expect(res.Frames).To(BeZero())
	})

	It("validates its options", func() {
		_, err := sim.Run(context.Background(), fig8(), sim.RunOptions{FrameDelta: time.Millisecond})
		Expect(err).To(HaveOccurred())
		_, err = sim.Run(context.Background(), fig8(), sim.RunOptions{Frames: 1})
		Expect(err).To(HaveOccurred())
	})

	It("runs an ensemble in driver order", func() {
		drivers := []*sim.Driver{fig8(), suns()}
		results, err := sim.RunEnsemble(context.Background(), drivers, []sim.RunOptions{opts, opts})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].Halt).To(Equal(sim.HaltFrames))
		Expect(results[1].Halt).To(Equal(sim.HaltCollision))
	})

	It("runs each ensemble member with its own options", func() {
		slow := sim.RunOptions{Frames: 10, FrameDelta: 32 * time.Millisecond}
		results, err := sim.RunEnsemble(context.Background(), []*sim.Driver{fig8(), fig8()}, []sim.RunOptions{opts, slow})
		Expect(err).NotTo(HaveOccurred())
		Expect(results[0].SimDays).To(BeNumerically("~", 0.16, 1e-12))
		Expect(results[1].SimDays).To(BeNumerically("~", 0.32, 1e-12))
	})

	It("rejects mismatched ensemble options", func() {
		_, err := sim.RunEnsemble(context.Background(), []*sim.Driver{fig8()}, nil)
		Expect(err).To(HaveOccurred())
	})
})
