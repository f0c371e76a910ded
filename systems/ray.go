package systems

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/lensing/components"
)

// Minimum post-integration speed below which renormalization is skipped.
const degenerateSpeed = 0.001

// Number of newest trail points inspected by IsOrbiting.
const orbitSamples = 10

// Orbit detection thresholds.
const (
	orbitMaxVariance = 0.01
	orbitMaxRadius   = 0.5
)

// RayParams holds the per-ray integration, visibility and reset parameters.
type RayParams struct {
	VisibilityRadius  float64 // distance from origin beyond which a ray may reset
	VisibleHalfExtent float64 // half size of the square visible window
	VisibilitySamples int     // newest trail points checked against the window
	MinSegmentSpacing float64 // minimum head travel before a trail point is written
	SeedPoints        int     // backward tail length written on reset
	SeedSpacing       float64
	PositionJitter    float64 // reset position noise, per axis
	AngleJitter       float64 // reset angle noise, radians
	RespawnDelay      float64 // seconds absorbed before respawn
	AbsorbDamping     float64 // velocity scale applied on absorption
}

// DefaultRayParams returns the default ray parameters.
func DefaultRayParams() RayParams {
	return RayParams{
		VisibilityRadius:  2.5,
		VisibleHalfExtent: 2.0,
		VisibilitySamples: 20,
		MinSegmentSpacing: 0.01,
		SeedPoints:        20,
		SeedSpacing:       0.02,
		PositionJitter:    0.02,
		AngleJitter:       0.01,
		RespawnDelay:      0.1,
		AbsorbDamping:     0.1,
	}
}

// Environment is the tick-stable snapshot every ray reads during one update pass.
type Environment struct {
	Hole    components.BlackHole
	Gravity Gravity
	// SelfReset lets rays reset themselves when they leave the view or
	// their respawn delay elapses. When false the owner prunes them instead.
	SelfReset bool
}

// RayEvent reports a state transition that happened during Update.
type RayEvent uint8

const (
	EventNone RayEvent = iota
	EventAbsorbed
	EventReset
)

// Segment is a line between two consecutive trail points.
type Segment struct {
	Start, End r2.Vec
}

// Emitter describes where a ray starts and where it points.
type Emitter struct {
	Position r2.Vec
	Angle    float64
	Speed    float64
}

// Ray is a single light ray: a head integrated under gravity and the trail of
// points it has passed through. Trail points never move once written.
type Ray struct {
	emitter   Emitter
	baseSpeed float64

	head r2.Vec
	vel  r2.Vec

	trail components.Trail

	absorbed            bool
	timeSinceAbsorption float64

	angularMomentum float64
	properTime      float64
	lastCenter      r2.Vec

	segment    Segment
	hasSegment bool

	params RayParams
	rng    *rand.Rand
}

// NewRay creates a ray at emitter and resets it, applying reset jitter and
// seeding its trail. seed feeds the ray's private random source.
func NewRay(e Emitter, capacity int, params RayParams, seed uint64) *Ray {
	r := &Ray{
		emitter:   e,
		baseSpeed: e.Speed,
		trail:     components.NewTrail(capacity),
		params:    params,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	r.Reset()
	return r
}

// Reset returns the ray to its emitter with fresh jitter and a seeded tail.
func (r *Ray) Reset() {
	p := r.params
	r.trail.Clear()
	r.absorbed = false
	r.timeSinceAbsorption = 0
	r.properTime = 0
	r.hasSegment = false

	r.head = r2.Vec{
		X: r.emitter.Position.X + r.jitter(p.PositionJitter),
		Y: r.emitter.Position.Y + r.jitter(p.PositionJitter),
	}
	angle := r.emitter.Angle + r.jitter(p.AngleJitter)
	r.vel = fromAngle(angle, r.baseSpeed)

	// Farthest point first so the head ends up at the front.
	back := fromAngle(angle, -p.SeedSpacing)
	for i := p.SeedPoints - 1; i >= 1; i-- {
		r.trail.PushFront(r2.Add(r.head, r2.Scale(float64(i), back)))
	}
	r.trail.PushFront(r.head)
}

func (r *Ray) jitter(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	return (r.rng.Float64()*2 - 1) * amount
}

// Update advances the ray by dt seconds against env.
func (r *Ray) Update(dt float64, env Environment) RayEvent {
	r.hasSegment = false
	r.lastCenter = env.Hole.Position

	if r.absorbed {
		if env.SelfReset && r.ShouldRespawn() {
			r.Reset()
			return EventReset
		}
		r.timeSinceAbsorption += dt
		return EventNone
	}

	event := r.integrate(dt, env)
	r.recordTrail()

	if env.SelfReset && r.NeedsReset() {
		r.Reset()
		return EventReset
	}
	return event
}

func (r *Ray) integrate(dt float64, env Environment) RayEvent {
	hole := env.Hole
	g := env.Gravity

	dtEff := dt * g.StepScale(r.head, hole.Position, hole.Mass)
	acc := g.Acceleration(r.head, r.vel, hole.Position, hole.Mass)

	v := r2.Add(r.vel, r2.Scale(dtEff, acc))
	if speed := r2.Norm(v); speed >= degenerateSpeed {
		r.vel = r2.Scale(r.baseSpeed/speed, v)
	}
	r.head = r2.Add(r.head, r2.Scale(dtEff, r.vel))
	r.properTime += dtEff
	r.angularMomentum = r2.Cross(r2.Sub(r.head, hole.Position), r.vel)

	if !hole.Contains(r.head) {
		return EventNone
	}

	r.absorbed = true
	r.timeSinceAbsorption = 0
	toHead := r2.Sub(r.head, hole.Position)
	if d := r2.Norm(toHead); d > 0 {
		r.head = r2.Add(hole.Position, r2.Scale(hole.EventHorizon/d, toHead))
	} else {
		// Dead center: push back along the incoming direction.
		r.head = r2.Sub(hole.Position, r2.Scale(hole.EventHorizon, r2.Unit(r.vel)))
	}
	r.vel = r2.Scale(r.params.AbsorbDamping, r.vel)
	return EventAbsorbed
}

func (r *Ray) recordTrail() {
	front, ok := r.trail.Front()
	if ok && distance(r.head, front) < r.params.MinSegmentSpacing {
		return
	}
	r.trail.PushFront(r.head)
	if ok {
		r.segment = Segment{Start: front, End: r.head}
		r.hasSegment = true
	}
}

// NeedsReset reports whether the ray has left the view for good: beyond the
// visibility radius, heading outward, with none of its newest trail points
// inside the visible window. Always false while absorbed.
func (r *Ray) NeedsReset() bool {
	if r.absorbed {
		return false
	}
	p := r.params
	if r2.Norm(r.head) <= p.VisibilityRadius {
		return false
	}
	if r2.Dot(r.head, r.vel) <= 0 {
		return false
	}
	n := min(p.VisibilitySamples, r.trail.Len())
	for i := range n {
		if withinBox(r.trail.At(i), p.VisibleHalfExtent) {
			return false
		}
	}
	return true
}

// ShouldRespawn reports whether the ray has been absorbed for at least the respawn delay.
func (r *Ray) ShouldRespawn() bool {
	return r.absorbed && r.timeSinceAbsorption >= r.params.RespawnDelay
}

// Expired reports whether a pruning owner should remove the ray.
func (r *Ray) Expired() bool {
	return r.NeedsReset() || r.ShouldRespawn()
}

// IsOrbiting reports whether the newest trail points sit on a tight, nearly
// circular path around the last black hole center.
func (r *Ray) IsOrbiting() bool {
	if r.trail.Len() < orbitSamples {
		return false
	}
	var radii [orbitSamples]float64
	for i := range radii {
		radii[i] = distance(r.trail.At(i), r.lastCenter)
	}
	mean, variance := stat.PopMeanVariance(radii[:], nil)
	return variance < orbitMaxVariance && mean < orbitMaxRadius
}

// Trail returns a copy of the trail, newest first.
func (r *Ray) Trail() []r2.Vec { return r.trail.AppendTo(nil) }

// AppendTrail appends the trail, newest first, to dst.
func (r *Ray) AppendTrail(dst []r2.Vec) []r2.Vec { return r.trail.AppendTo(dst) }

// TrailLen returns the number of trail points.
func (r *Ray) TrailLen() int { return r.trail.Len() }

// MaxSegments returns the trail capacity.
func (r *Ray) MaxSegments() int { return r.trail.Cap() }

func (r *Ray) Head() r2.Vec     { return r.head }
func (r *Ray) Velocity() r2.Vec { return r.vel }
func (r *Ray) Speed() float64   { return r.baseSpeed }
func (r *Ray) IsAbsorbed() bool { return r.absorbed }

// SetSpeed changes the base speed, rescaling the current velocity when active.
func (r *Ray) SetSpeed(s float64) {
	if s <= 0 {
		return
	}
	if !r.absorbed {
		if n := r2.Norm(r.vel); n > 0 {
			r.vel = r2.Scale(s/n, r.vel)
		}
	}
	r.baseSpeed = s
	r.emitter.Speed = s
}

func (r *Ray) TimeSinceAbsorption() float64 { return r.timeSinceAbsorption }

// AngularMomentum returns (head - center) × velocity from the last active step.
func (r *Ray) AngularMomentum() float64 { return r.angularMomentum }

// ProperTime returns the dilated time integrated since the last reset.
func (r *Ray) ProperTime() float64 { return r.properTime }

// NewSegment returns the trail segment written by the last Update, if any.
func (r *Ray) NewSegment() (Segment, bool) { return r.segment, r.hasSegment }

// Emitter returns where the ray resets to.
func (r *Ray) Emitter() Emitter { return r.emitter }
