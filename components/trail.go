package components

import "gonum.org/v1/gonum/spatial/r2"

// Trail is a fixed-capacity ring of positions ordered newest first.
// Pushing onto a full trail discards the oldest point. Points never move once written.
type Trail struct {
	points []r2.Vec
	front  int // index of the newest point
	n      int
}

// NewTrail creates an empty trail holding at most capacity points.
func NewTrail(capacity int) Trail {
	if capacity < 1 {
		capacity = 1
	}
	return Trail{points: make([]r2.Vec, capacity)}
}

// Len returns the number of stored points.
func (t *Trail) Len() int { return t.n }

// Cap returns the maximum number of points.
func (t *Trail) Cap() int { return len(t.points) }

// Clear drops all points without releasing storage.
func (t *Trail) Clear() {
	t.front = 0
	t.n = 0
}

// PushFront inserts p as the newest point.
func (t *Trail) PushFront(p r2.Vec) {
	t.front--
	if t.front < 0 {
		t.front = len(t.points) - 1
	}
	t.points[t.front] = p
	if t.n < len(t.points) {
		t.n++
	}
}

// Front returns the newest point. ok is false when the trail is empty.
func (t *Trail) Front() (p r2.Vec, ok bool) {
	if t.n == 0 {
		return r2.Vec{}, false
	}
	return t.points[t.front], true
}

// At returns the i-th point, 0 being the newest. Panics when out of range.
func (t *Trail) At(i int) r2.Vec {
	if i < 0 || i >= t.n {
		panic("components: trail index out of range")
	}
	return t.points[(t.front+i)%len(t.points)]
}

// AppendTo appends all points, newest first, to dst.
func (t *Trail) AppendTo(dst []r2.Vec) []r2.Vec {
	for i := 0; i < t.n; i++ {
		dst = append(dst, t.points[(t.front+i)%len(t.points)])
	}
	return dst
}
