package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/lensing/components"
	"github.com/pthm-cable/lensing/config"
)

func init() {
	// Initialize config for tests
	config.MustInit("")
}

func newTestField(params FieldParams, pattern SpawnPattern) *RayField {
	return NewRayField(params, NewSpawner(pattern, DefaultSpawnParams(), DefaultRayParams(), 42))
}

func fieldEnv() Environment {
	return Environment{
		Hole:    components.BlackHole{Position: r2.Vec{X: 0.5}, Mass: 1, EventHorizon: 0.15},
		Gravity: DefaultGravity(),
	}
}

func TestFieldParamsFromConfig(t *testing.T) {
	p := FieldParamsFromConfig(config.Cfg())
	if p.BatchSize != 80 || p.MaxRays != 800 {
		t.Errorf("expected batch 80 / max 800, got %d / %d", p.BatchSize, p.MaxRays)
	}
	if p.TrailCapacity != 500 {
		t.Errorf("expected trail capacity 500, got %d", p.TrailCapacity)
	}
	if p.Lifecycle != LifecycleReset {
		t.Errorf("expected reset lifecycle, got %s", p.Lifecycle)
	}
	if p.SpawnInterval != 1.5 {
		t.Errorf("expected interval 1.5, got %f", p.SpawnInterval)
	}
}

func TestFieldSpawnsOnInterval(t *testing.T) {
	f := newTestField(DefaultFieldParams(), PatternLeftEdge)
	env := fieldEnv()

	f.Update(0.5, env)
	f.Update(0.5, env)
	if f.Count() != 0 {
		t.Fatalf("expected no rays before the interval elapsed, got %d", f.Count())
	}
	f.Update(0.5, env)
	if f.Count() != 80 {
		t.Errorf("expected one batch of 80, got %d", f.Count())
	}
	if f.Stats().Spawned != 80 {
		t.Errorf("expected 80 spawned this tick, got %d", f.Stats().Spawned)
	}
}

func TestFieldRespectsMaxRays(t *testing.T) {
	params := DefaultFieldParams()
	params.MaxRays = 100
	params.SpawnInterval = 0.1
	f := newTestField(params, PatternLeftEdge)
	env := fieldEnv()

	for i := 0; i < 20; i++ {
		f.Update(0.1, env)
		if f.Count() > params.MaxRays {
			t.Fatalf("tick %d: %d rays exceeds cap %d", i, f.Count(), params.MaxRays)
		}
		if f.Stats().Live != f.Count() {
			t.Fatalf("tick %d: stats live %d != count %d", i, f.Stats().Live, f.Count())
		}
	}
	if f.Count() != params.MaxRays {
		t.Errorf("expected field to fill to %d, got %d", params.MaxRays, f.Count())
	}
}

func TestFieldSetPatternClearsAndRespawns(t *testing.T) {
	f := newTestField(DefaultFieldParams(), PatternLeftEdge)
	env := fieldEnv()
	f.Reset()
	for i := 0; i < 200; i++ {
		f.Update(1.0/60.0, env)
	}
	if f.Count() <= 80 {
		t.Fatalf("expected more than one batch before switching, got %d", f.Count())
	}

	f.SetPattern(PatternRadial)
	if f.Count() != 80 {
		t.Errorf("expected exactly one fresh batch, got %d", f.Count())
	}
	if f.Pattern() != PatternRadial {
		t.Errorf("expected radial, got %s", f.Pattern())
	}
	f.ForEach(func(r *Ray) {
		d := r2.Norm(r.Emitter().Position)
		if d < 2.5*0.95-1e-9 || d > 2.5*1.05+1e-9 {
			t.Errorf("expected radial emitter, got %v", r.Emitter().Position)
		}
	})
}

func TestFieldStatsTrackFreeRayDynamics(t *testing.T) {
	f := newTestField(DefaultFieldParams(), PatternLeftEdge)
	env := fieldEnv()
	f.Reset()
	const ticks = 10
	for i := 0; i < ticks; i++ {
		f.Update(1.0/60.0, env)
	}

	var free int
	var sum, oldest float64
	f.ForEach(func(r *Ray) {
		if r.IsAbsorbed() {
			return
		}
		free++
		sum += math.Abs(r.AngularMomentum())
		oldest = max(oldest, r.ProperTime())
	})
	if free == 0 {
		t.Fatal("expected free rays")
	}

	st := f.Stats()
	if math.Abs(st.MeanAngularMomentum-sum/float64(free)) > 1e-12 || st.MeanAngularMomentum <= 0 {
		t.Errorf("mean |L| = %g, want %g", st.MeanAngularMomentum, sum/float64(free))
	}
	// Newtonian steps are undilated, so the first batch has aged exactly ticks/60.
	if math.Abs(st.MaxProperTime-oldest) > 1e-12 || math.Abs(st.MaxProperTime-ticks/60.0) > 1e-9 {
		t.Errorf("max proper time = %g, want %g", st.MaxProperTime, ticks/60.0)
	}
}

func TestFieldResetLifecycleNeverPrunes(t *testing.T) {
	params := DefaultFieldParams()
	params.SpawnInterval = 1e9
	f := newTestField(params, PatternLeftEdge)
	env := fieldEnv()
	f.Reset()

	resets := 0
	for i := 0; i < 1200; i++ {
		f.Update(1.0/60.0, env)
		resets += f.Stats().Resets
		if f.Stats().Pruned != 0 {
			t.Fatalf("tick %d: reset lifecycle pruned %d rays", i, f.Stats().Pruned)
		}
	}
	if f.Count() != 80 {
		t.Errorf("expected count to stay at 80, got %d", f.Count())
	}
	if resets == 0 {
		t.Error("expected some rays to reset in place over 20 seconds")
	}
}

func TestFieldPruneLifecycle(t *testing.T) {
	params := DefaultFieldParams()
	params.SpawnInterval = 1e9
	params.Lifecycle = LifecyclePrune
	f := newTestField(params, PatternLeftEdge)
	env := fieldEnv()
	f.Reset()

	pruned := 0
	for i := 0; i < 1200; i++ {
		f.Update(1.0/60.0, env)
		pruned += f.Stats().Pruned
		if f.Stats().Resets != 0 {
			t.Fatalf("tick %d: rays reset themselves under the prune lifecycle", i)
		}
		f.ForEach(func(r *Ray) {
			if r.Expired() {
				t.Fatalf("tick %d: expired ray left in the field", i)
			}
		})
	}
	if pruned == 0 || f.Count() >= 80 {
		t.Errorf("expected rays to be pruned, pruned=%d count=%d", pruned, f.Count())
	}
	if f.Count() != 80-pruned {
		t.Errorf("expected count %d after pruning %d, got %d", 80-pruned, pruned, f.Count())
	}
}

func TestFieldParallelMatchesSerial(t *testing.T) {
	params := DefaultFieldParams()
	params.BatchSize = 400
	params.MaxRays = 400

	serialParams := params
	serialParams.Workers = 1
	parallelParams := params
	parallelParams.Workers = 4

	serial := newTestField(serialParams, PatternFourEdge)
	parallel := newTestField(parallelParams, PatternFourEdge)
	serial.Reset()
	parallel.Reset()

	env := fieldEnv()
	for i := 0; i < 300; i++ {
		serial.Update(1.0/60.0, env)
		parallel.Update(1.0/60.0, env)
	}

	var a, b []r2.Vec
	serial.ForEach(func(r *Ray) { a = append(a, r.Head()) })
	parallel.ForEach(func(r *Ray) { b = append(b, r.Head()) })
	if len(a) != len(b) {
		t.Fatalf("expected equal counts, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("ray %d diverged: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestFieldSetSpeed(t *testing.T) {
	f := newTestField(DefaultFieldParams(), PatternLeftEdge)
	f.Reset()
	f.SetSpeed(0.6)
	if f.Speed() != 0.6 {
		t.Errorf("expected field speed 0.6, got %f", f.Speed())
	}
	f.ForEach(func(r *Ray) {
		if r.Speed() != 0.6 {
			t.Errorf("expected ray speed 0.6, got %f", r.Speed())
		}
	})
}

func TestFieldEachNewSegment(t *testing.T) {
	f := newTestField(DefaultFieldParams(), PatternLeftEdge)
	f.Reset()
	f.Update(0.1, fieldEnv())

	n := 0
	f.EachNewSegment(func(s Segment) {
		n++
		if s.Start == s.End {
			t.Errorf("expected non-degenerate segment, got %v", s)
		}
	})
	if n == 0 {
		t.Error("expected segments after a 0.1s step")
	}
}

func TestFieldClear(t *testing.T) {
	f := newTestField(DefaultFieldParams(), PatternLeftEdge)
	f.Reset()
	f.Clear()
	if f.Count() != 0 {
		t.Errorf("expected empty field, got %d", f.Count())
	}
	visited := 0
	f.ForEach(func(*Ray) { visited++ })
	if visited != 0 {
		t.Errorf("expected no rays to visit, got %d", visited)
	}
}
