package sim

import "github.com/san-kum/orbitsim/internal/dynamo"

// TrailBuffer keeps the most recent positions of every body in a fixed-size
// ring. A zero capacity disables recording.
type TrailBuffer struct {
	capacity int
	rings    [][]dynamo.Vec3
	head     int
	size     int
}

func NewTrailBuffer(n, capacity int) *TrailBuffer {
	t := &TrailBuffer{capacity: max(capacity, 0)}
	t.Reset(n)
	return t
}

// Push records one position per body. A snapshot with a different body
// count clears the buffer first.
func (t *TrailBuffer) Push(positions []dynamo.Vec3) {
	if t.capacity == 0 {
		return
	}
	if len(positions) != len(t.rings) {
		t.Reset(len(positions))
	}
	for i, p := range positions {
		t.rings[i][t.head] = p
	}
	t.head = (t.head + 1) % t.capacity
	t.size = min(t.size+1, t.capacity)
}

// Trail returns body i's recorded positions, oldest first.
func (t *TrailBuffer) Trail(i dynamo.BodyIndex) []dynamo.Vec3 {
	if !i.Valid(len(t.rings)) || t.size == 0 {
		return nil
	}
	out := make([]dynamo.Vec3, t.size)
	start := (t.head - t.size + t.capacity) % t.capacity
	for k := range out {
		out[k] = t.rings[i][(start+k)%t.capacity]
	}
	return out
}

func (t *TrailBuffer) Len() int      { return t.size }
func (t *TrailBuffer) Capacity() int { return t.capacity }
func (t *TrailBuffer) Bodies() int   { return len(t.rings) }

func (t *TrailBuffer) Reset(n int) {
	t.rings = make([][]dynamo.Vec3, n)
	for i := range t.rings {
		t.rings[i] = make([]dynamo.Vec3, t.capacity)
	}
	t.head = 0
	t.size = 0
}
