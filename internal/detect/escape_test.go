package detect_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbitsim/internal/detect"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/physics"
)

var _ = Describe("Escape", func() {
	masses := []float64{1.0, 3e-6}
	cfg := detect.EscapeConfig{MaxSepAU: 3, Fudge: 1}
	vEsc := math.Sqrt(2 * physics.G * 1.0 / 10)

	starAndPlanet := func(speed float64) []dynamo.Vec3 {
		return []dynamo.Vec3{{}, {Y: speed}}
	}
	pos := []dynamo.Vec3{{}, {X: 10}}

	It("reports a body above the local escape speed", func() {
		ev := detect.Escape(view(masses, pos, starAndPlanet(1.3*vEsc)), cfg)
		Expect(ev).NotTo(BeNil())
		Expect(ev.Index).To(Equal(dynamo.BodyIndex(1)))
		Expect(ev.RCM).To(BeNumerically("~", 10, 1e-12))
		Expect(ev.MassOther).To(Equal(1.0))
		Expect(ev.EscapeSpeed).To(BeNumerically("~", vEsc, 1e-15))
		Expect(ev.Speed).To(BeNumerically(">=", ev.EscapeSpeed))
	})

	It("stays quiet for a bound body", func() {
		Expect(detect.Escape(view(masses, pos, starAndPlanet(0.9*vEsc)), cfg)).To(BeNil())
	})

	It("skips bodies closer than maxSepAU", func() {
		near := detect.EscapeConfig{MaxSepAU: 20, Fudge: 1}
		Expect(detect.Escape(view(masses, pos, starAndPlanet(5*vEsc)), near)).To(BeNil())
	})

	It("applies the fudge factor to the escape speed", func() {
		strict := detect.EscapeConfig{MaxSepAU: 3, Fudge: 1.5}
		Expect(detect.Escape(view(masses, pos, starAndPlanet(1.3*vEsc)), strict)).To(BeNil())
	})

	It("measures distance from the centre of mass of the other bodies", func() {
		m := []float64{1, 1, 1e-6}
		p := []dynamo.Vec3{{X: -0.5}, {X: 0.5}, {X: 20}}
		v := []dynamo.Vec3{{}, {}, {X: 1}}
		ev := detect.Escape(view(m, p, v), cfg)
		Expect(ev).NotTo(BeNil())
		Expect(ev.Index).To(Equal(dynamo.BodyIndex(2)))
		Expect(ev.RCM).To(BeNumerically("~", 20, 1e-12))
		Expect(ev.MassOther).To(Equal(2.0))
	})

	It("ignores a lone body", func() {
		Expect(detect.Escape(view([]float64{1}, []dynamo.Vec3{{X: 50}}, []dynamo.Vec3{{X: 1}}), cfg)).To(BeNil())
	})
})
