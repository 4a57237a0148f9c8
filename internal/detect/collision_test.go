package detect_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbitsim/internal/detect"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/engine"
	"github.com/san-kum/orbitsim/internal/physics"
)

func view(masses []float64, pos, vel []dynamo.Vec3) engine.View {
	if vel == nil {
		vel = make([]dynamo.Vec3, len(pos))
	}
	return engine.NewView(dynamo.Pack(pos, vel), masses, physics.DefaultSoftening)
}

var _ = Describe("Collision", func() {
	Context("in core mode", func() {
		var (
			masses = []float64{1.0, 0.5}
			cfg    = detect.CollisionConfig{Mode: detect.ModeCore, Fudge: 1.5}
			sumR   float64
		)

		BeforeEach(func() {
			v := view(masses, make([]dynamo.Vec3, 2), nil)
			sumR = detect.EffectiveRadius(v, 0, cfg, 0) + detect.EffectiveRadius(v, 1, cfg, 0)
		})

		It("scales the physical radius by the fudge factor", func() {
			v := view(masses, make([]dynamo.Vec3, 2), nil)
			Expect(detect.EffectiveRadius(v, 0, cfg, 0)).To(BeNumerically("~", 1.5*physics.SolarRadiusAU, 1e-15))
		})

		It("reports bodies closer than the summed radii", func() {
			v := view(masses, []dynamo.Vec3{{}, {X: 0.999 * sumR}}, nil)
			ev := detect.Collision(v, cfg, 0)
			Expect(ev).NotTo(BeNil())
			Expect(ev.I).To(Equal(dynamo.BodyIndex(0)))
			Expect(ev.J).To(Equal(dynamo.BodyIndex(1)))
			Expect(ev.Threshold).To(Equal(sumR))
			Expect(ev.Separation).To(BeNumerically("<", ev.Threshold))
			Expect(ev.Mode).To(Equal(detect.ModeCore))
		})

		It("does not report bodies exactly at the summed radii", func() {
			v := view(masses, []dynamo.Vec3{{}, {X: sumR}}, nil)
			Expect(detect.Collision(v, cfg, 0)).To(BeNil())
		})

		It("ignores the frame time", func() {
			v := view(masses, []dynamo.Vec3{{}, {X: 2 * sumR}}, []dynamo.Vec3{{X: 100}, {X: -100}})
			Expect(detect.Collision(v, cfg, 1.0)).To(BeNil())
		})
	})

	Context("in vdt mode", func() {
		cfg := detect.CollisionConfig{Mode: detect.ModeVDT, Fudge: 1.0}
		masses := []float64{1e-9, 1e-9}
		pos := []dynamo.Vec3{{}, {X: 0.015}}
		vel := []dynamo.Vec3{{Y: 1}, {Y: -1}}

		It("uses the distance travelled in one frame", func() {
			ev := detect.Collision(view(masses, pos, vel), cfg, 0.01)
			Expect(ev).NotTo(BeNil())
			Expect(ev.Threshold).To(BeNumerically("~", 0.02, 1e-15))
			Expect(ev.Mode).To(Equal(detect.ModeVDT))
		})

		It("never reports when no time passes", func() {
			Expect(detect.Collision(view(masses, pos, vel), cfg, 0)).To(BeNil())
		})
	})

	It("returns the first touching pair in index order", func() {
		masses := []float64{1, 1, 1, 1}
		pos := []dynamo.Vec3{{X: 0}, {X: 10}, {X: 10.001}, {X: 0.001}}
		ev := detect.Collision(view(masses, pos, nil), detect.DefaultCollisionConfig(), 0)
		Expect(ev).NotTo(BeNil())
		Expect([]dynamo.BodyIndex{ev.I, ev.J}).To(Equal([]dynamo.BodyIndex{0, 3}))
	})

	It("stays quiet for well separated bodies", func() {
		pos := []dynamo.Vec3{{X: -1}, {X: 1}, {Y: 5}}
		Expect(detect.Collision(view([]float64{1, 1, 1}, pos, nil), detect.DefaultCollisionConfig(), 0)).To(BeNil())
	})

	DescribeTable("ParseCollisionMode",
		func(in string, want detect.CollisionMode, ok bool) {
			got, err := detect.ParseCollisionMode(in)
			if !ok {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("core", "core", detect.ModeCore, true),
		Entry("vdt", "vdt", detect.ModeVDT, true),
		Entry("unknown", "sphere", detect.CollisionMode(""), false),
	)
})
