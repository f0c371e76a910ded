package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/lensing/systems"
)

func TestCollector_FlushAggregatesWindow(t *testing.T) {
	c := NewCollector(1.0)

	c.RecordTick(systems.FieldStats{Live: 100, Absorbed: 10, Orbiting: 1, Spawned: 80, Absorptions: 3})
	c.RecordTick(systems.FieldStats{Live: 100, Absorbed: 30, Orbiting: 4, Absorptions: 2, Resets: 5})

	if c.ShouldFlush(0.5) {
		t.Error("window should not flush before its duration")
	}
	if !c.ShouldFlush(1.0) {
		t.Fatal("window should flush at its duration")
	}

	sample := FieldSample{
		Stats:   systems.FieldStats{Live: 100, Absorbed: 30, Orbiting: 4},
		MaxRays: 800,
		Radii:   []float64{1, 2, 3},
		Model:   "newtonian",
		Pattern: "left_edge",
	}
	stats := c.Flush(60, 1.0, sample)

	if stats.Spawned != 80 || stats.Absorptions != 5 || stats.Resets != 5 {
		t.Errorf("event totals = %d/%d/%d, want 80/5/5", stats.Spawned, stats.Absorptions, stats.Resets)
	}
	if math.Abs(stats.AbsorbedFrac-0.2) > 1e-9 {
		t.Errorf("AbsorbedFrac = %v, want 0.2", stats.AbsorbedFrac)
	}
	if math.Abs(stats.AbsorptionRate-5) > 1e-9 {
		t.Errorf("AbsorptionRate = %v, want 5", stats.AbsorptionRate)
	}
	if stats.OrbitPeak != 4 {
		t.Errorf("OrbitPeak = %d, want 4", stats.OrbitPeak)
	}
	if stats.RadiusP50 != 2 || stats.RadiusMean != 2 {
		t.Errorf("radius stats = mean %v p50 %v, want 2/2", stats.RadiusMean, stats.RadiusP50)
	}
	if stats.Rays != 100 || stats.MaxRays != 800 || stats.Model != "newtonian" {
		t.Errorf("sample not copied: %+v", stats)
	}
}

func TestCollector_FlushResetsWindow(t *testing.T) {
	c := NewCollector(1.0)
	c.RecordTick(systems.FieldStats{Live: 10, Absorbed: 5, Absorptions: 5})
	c.Flush(60, 1.0, FieldSample{})

	if c.ShouldFlush(1.5) {
		t.Error("next window should start at the previous flush time")
	}

	stats := c.Flush(120, 2.0, FieldSample{})
	if stats.WindowStartTick != 60 {
		t.Errorf("WindowStartTick = %d, want 60", stats.WindowStartTick)
	}
	if stats.Absorptions != 0 || stats.AbsorbedFrac != 0 || stats.OrbitPeak != 0 {
		t.Errorf("counters carried over: %+v", stats)
	}
}

func TestCollector_DefaultWindow(t *testing.T) {
	if got := NewCollector(0).WindowDuration(); got != 10 {
		t.Errorf("WindowDuration = %v, want 10", got)
	}
}
