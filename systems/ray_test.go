package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/lensing/components"
)

const testDT = 1.0 / 60.0

// quietParams disables reset jitter so trajectories are deterministic.
func quietParams() RayParams {
	p := DefaultRayParams()
	p.PositionJitter = 0
	p.AngleJitter = 0
	return p
}

func testEnv() Environment {
	return Environment{
		Hole:      components.BlackHole{Mass: 1, EventHorizon: 0.2},
		Gravity:   DefaultGravity(),
		SelfReset: true,
	}
}

func newTestRay(pos r2.Vec, angle, speed float64) *Ray {
	return NewRay(Emitter{Position: pos, Angle: angle, Speed: speed}, 500, quietParams(), 1)
}

func TestRaySpeedInvariant(t *testing.T) {
	for _, model := range []GravityModel{ModelNewtonian, ModelDeflection, ModelGeodesic} {
		t.Run(model.String(), func(t *testing.T) {
			env := testEnv()
			env.Gravity.Model = model
			env.Hole.Mass = 0.2
			r := newTestRay(r2.Vec{X: -2, Y: 0.6}, 0, 0.3)

			for i := 0; i < 1200; i++ {
				ev := r.Update(testDT, env)
				if ev == EventAbsorbed || r.IsAbsorbed() {
					continue
				}
				if got := r2.Norm(r.Velocity()); math.Abs(got-0.3) > 1e-9 {
					t.Fatalf("tick %d: expected |v| = 0.3, got %.12f", i, got)
				}
			}
		})
	}
}

func TestRayTrailBounded(t *testing.T) {
	env := testEnv()
	r := NewRay(Emitter{Position: r2.Vec{X: -2, Y: 0.8}, Speed: 0.3}, 30, quietParams(), 7)

	for i := 0; i < 2000; i++ {
		r.Update(testDT, env)
		if r.TrailLen() > r.MaxSegments() {
			t.Fatalf("tick %d: trail length %d exceeds %d", i, r.TrailLen(), r.MaxSegments())
		}
	}
}

func TestRayAbsorptionScenario(t *testing.T) {
	env := testEnv()
	env.SelfReset = false
	r := newTestRay(r2.Vec{X: -2}, 0, 0.3)

	prev := r2.Norm(r.Head())
	absorbedAt := -1
	for i := 0; i < 600; i++ {
		r.Update(testDT, env)
		if r.IsAbsorbed() {
			absorbedAt = i
			break
		}
		d := r2.Norm(r.Head())
		if d >= prev {
			t.Fatalf("tick %d: distance did not decrease (%f -> %f)", i, prev, d)
		}
		prev = d
	}
	if absorbedAt < 0 {
		t.Fatal("expected ray to be absorbed within 10 simulated seconds")
	}

	head := r.Head()
	if math.Abs(r2.Norm(head)-env.Hole.EventHorizon) > 1e-9 {
		t.Errorf("expected head clamped onto the horizon, got distance %f", r2.Norm(head))
	}

	lastTimer := r.TimeSinceAbsorption()
	for i := 0; i < 120; i++ {
		r.Update(testDT, env)
		if !r.IsAbsorbed() {
			t.Fatalf("tick %d after absorption: ray left absorbed state", i)
		}
		if r.Head() != head {
			t.Fatalf("tick %d after absorption: head moved %v -> %v", i, head, r.Head())
		}
		if r.TimeSinceAbsorption() < lastTimer {
			t.Fatalf("absorption timer decreased: %f -> %f", lastTimer, r.TimeSinceAbsorption())
		}
		lastTimer = r.TimeSinceAbsorption()
	}
}

func TestRayRespawnThreshold(t *testing.T) {
	env := testEnv()
	r := newTestRay(r2.Vec{X: -2}, 0, 0.3)
	delay := r.params.RespawnDelay

	r.absorbed = true
	r.timeSinceAbsorption = delay - 1e-9
	if ev := r.Update(1e-12, env); ev != EventNone {
		t.Errorf("just below threshold: expected no event, got %d", ev)
	}
	if !r.IsAbsorbed() {
		t.Fatal("just below threshold: expected ray to stay absorbed")
	}

	r.timeSinceAbsorption = delay
	if ev := r.Update(testDT, env); ev != EventReset {
		t.Errorf("at threshold: expected reset event, got %d", ev)
	}
	if r.IsAbsorbed() {
		t.Error("at threshold: expected ray to be active after reset")
	}
	if r.TimeSinceAbsorption() != 0 {
		t.Errorf("expected timer cleared, got %f", r.TimeSinceAbsorption())
	}
	if r.TrailLen() != r.params.SeedPoints {
		t.Errorf("expected reseeded trail of %d points, got %d", r.params.SeedPoints, r.TrailLen())
	}
}

func TestRayStraightWithoutGravity(t *testing.T) {
	for _, model := range []GravityModel{ModelNewtonian, ModelDeflection, ModelGeodesic} {
		t.Run(model.String(), func(t *testing.T) {
			env := testEnv()
			env.Hole.Position = r2.Vec{X: 0.5}
			env.Gravity.Model = model
			env.Gravity.Multiplier = 0 // below the setter range on purpose

			r := newTestRay(r2.Vec{X: -2, Y: 0.7}, 0.3, 0.3)
			v0 := r.Velocity()
			for i := 0; i < 300; i++ {
				r.Update(testDT, env)
				if r.IsAbsorbed() {
					t.Fatalf("tick %d: unexpected absorption", i)
				}
				if d := r2.Norm(r2.Sub(r.Velocity(), v0)); d > 1e-12 {
					t.Fatalf("tick %d: velocity changed by %g", i, d)
				}
			}

			// Trail points are collinear with the initial direction
			trail := r.Trail()
			dir := r2.Unit(v0)
			for _, p := range trail {
				off := r2.Cross(r2.Sub(p, trail[0]), dir)
				if math.Abs(off) > 1e-9 {
					t.Fatalf("trail point %v off the line by %g", p, off)
				}
			}
		})
	}
}

func TestRayNeedsResetRequiresOutwardMotion(t *testing.T) {
	inward := newTestRay(r2.Vec{X: 2.6}, math.Pi, 0.3)
	if inward.NeedsReset() {
		t.Error("inward-bound ray outside the view should not reset")
	}

	outward := newTestRay(r2.Vec{X: 2.6}, 0, 0.3)
	if !outward.NeedsReset() {
		t.Error("outward-bound ray with no visible trail should reset")
	}

	inside := newTestRay(r2.Vec{X: 1.5}, 0, 0.3)
	if inside.NeedsReset() {
		t.Error("ray within the visibility radius should not reset")
	}

	outward.absorbed = true
	if outward.NeedsReset() {
		t.Error("absorbed ray should never need a position reset")
	}
}

func TestRayResetsAfterLeavingView(t *testing.T) {
	env := testEnv()
	env.Hole.Mass = 0.01
	r := newTestRay(r2.Vec{X: 1.9, Y: 1.9}, math.Pi/4, 0.3)

	reset := false
	for i := 0; i < 600 && !reset; i++ {
		reset = r.Update(testDT, env) == EventReset
	}
	if !reset {
		t.Fatal("expected ray heading out of the view to reset")
	}
	if d := distance(r.Head(), r2.Vec{X: 1.9, Y: 1.9}); d > 1e-9 {
		t.Errorf("expected head back at the emitter, got %v", r.Head())
	}
}

func TestRayIsOrbiting(t *testing.T) {
	r := newTestRay(r2.Vec{X: -2}, 0, 0.3)
	r.trail.Clear()
	for i := 0; i < 12; i++ {
		r.trail.PushFront(fromAngle(float64(i)*0.3, 0.3))
	}
	if !r.IsOrbiting() {
		t.Error("expected points on a small circle to count as orbiting")
	}

	r.trail.Clear()
	for i := 0; i < 12; i++ {
		r.trail.PushFront(r2.Vec{X: -2 + float64(i)*0.1, Y: 1})
	}
	if r.IsOrbiting() {
		t.Error("expected a straight distant path not to count as orbiting")
	}
}

func TestRaySetSpeed(t *testing.T) {
	r := newTestRay(r2.Vec{X: -2}, 0.2, 0.3)
	r.SetSpeed(0.5)
	if math.Abs(r2.Norm(r.Velocity())-0.5) > 1e-12 {
		t.Errorf("expected |v| = 0.5, got %f", r2.Norm(r.Velocity()))
	}
	if r.Speed() != 0.5 {
		t.Errorf("expected base speed 0.5, got %f", r.Speed())
	}
	r.SetSpeed(0)
	if r.Speed() != 0.5 {
		t.Errorf("non-positive speed should be ignored, got %f", r.Speed())
	}
}

func TestRayNewSegment(t *testing.T) {
	env := testEnv()
	env.Hole.Position = r2.Vec{X: 0, Y: 1.5}
	r := newTestRay(r2.Vec{X: -2}, 0, 0.3)
	before, _ := r.trail.Front()

	r.Update(0.1, env)
	seg, ok := r.NewSegment()
	if !ok {
		t.Fatal("expected a segment after moving 0.03 units")
	}
	if seg.Start != before || seg.End != r.Head() {
		t.Errorf("expected segment %v -> %v, got %v", before, r.Head(), seg)
	}

	// Tiny step: below the minimum spacing, nothing written
	r.Update(0.001, env)
	if _, ok := r.NewSegment(); ok {
		t.Error("expected no segment for a sub-spacing move")
	}
}

func TestRayJitterIsBounded(t *testing.T) {
	p := DefaultRayParams()
	start := r2.Vec{X: -2, Y: 0.4}
	for seed := uint64(0); seed < 50; seed++ {
		r := NewRay(Emitter{Position: start, Speed: 0.3}, 100, p, seed)
		off := r2.Sub(r.Head(), start)
		if math.Abs(off.X) > p.PositionJitter+1e-12 || math.Abs(off.Y) > p.PositionJitter+1e-12 {
			t.Fatalf("seed %d: position jitter %v exceeds %f", seed, off, p.PositionJitter)
		}
		angle := math.Atan2(r.Velocity().Y, r.Velocity().X)
		if math.Abs(angle) > p.AngleJitter+1e-12 {
			t.Fatalf("seed %d: angle jitter %f exceeds %f", seed, angle, p.AngleJitter)
		}
	}
}

func TestRayKeepsVelocityWhenStepCancelsIt(t *testing.T) {
	env := testEnv()
	env.Hole.Position = r2.Vec{X: -1.9}
	env.Gravity.Multiplier = 5
	env.Gravity.MaxForce = 18

	// Capped pull 18 over 1/60 s removes exactly the 0.3 forward speed.
	r := newTestRay(r2.Vec{X: -1.5}, 0, 0.3)
	start := r.Head()
	if ev := r.Update(testDT, env); ev != EventNone {
		t.Fatalf("event = %v, want none", ev)
	}

	if v := r.Velocity(); v != (r2.Vec{X: 0.3}) {
		t.Errorf("velocity = %v, want {0.3 0} kept through the degenerate step", v)
	}
	if dx := r.Head().X - start.X; math.Abs(dx-0.3*testDT) > 1e-12 {
		t.Errorf("head moved %g, want %g along the kept velocity", dx, 0.3*testDT)
	}
}
