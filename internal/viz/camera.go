package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is an orthographic view of AU coordinates. Yaw turns about the
// z axis, pitch tilts the orbital plane towards the viewer.
type Camera struct {
	Yaw, Pitch float64
	Zoom       float64
	// Span is the distance in AU from the centre to the nearer screen edge
	// at zoom 1.
	Span   float64
	Center r3.Vec
}

func NewCamera(span float64) *Camera {
	if span <= 0 {
		span = 1
	}
	return &Camera{Zoom: 1, Span: span}
}

func (c *Camera) Rotate(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 2*math.Pi)
	c.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, c.Pitch+dPitch))
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(1000, c.Zoom*1.25) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.001, c.Zoom/1.25) }

// Fit centres on the origin and sizes the span to contain every point.
func (c *Camera) Fit(points []r3.Vec) {
	far := 0.0
	for _, p := range points {
		far = math.Max(far, r3.Norm(p))
	}
	c.Center = r3.Vec{}
	c.Zoom = 1
	c.Span = math.Max(far*1.2, 1e-3)
}

// Transform maps a world point into camera space: x right, y up, z towards
// the viewer.
func (c *Camera) Transform(p r3.Vec) r3.Vec {
	p = r3.Sub(p, c.Center)
	p = r3.NewRotation(c.Yaw, r3.Vec{Z: 1}).Rotate(p)
	return r3.NewRotation(-c.Pitch, r3.Vec{X: 1}).Rotate(p)
}

// Project returns the dot coordinates of p on a w×h dot canvas, its depth
// and whether it lands on the canvas.
func (c *Camera) Project(p r3.Vec, w, h int) (x, y int, depth float64, ok bool) {
	v := c.Transform(p)
	scale := c.Zoom * float64(min(w, h)) / 2 / c.Span
	x = w/2 + int(math.Round(v.X*scale))
	y = h/2 - int(math.Round(v.Y*scale))
	return x, y, v.Z, x >= 0 && x < w && y >= 0 && y < h
}
