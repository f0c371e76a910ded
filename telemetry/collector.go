// Package telemetry provides ray field statistics, bookmarks and CSV output.
package telemetry

import "github.com/pthm-cable/lensing/systems"

// Collector accumulates per-tick field events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec float64

	// Current window tracking
	windowStartTick int32
	windowStartTime float64
	ticks           int

	// Event counters for current window
	spawned     int
	absorptions int
	resets      int
	pruned      int

	absorbedFracSum float64
	orbitPeak       int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
func NewCollector(windowDurationSec float64) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 10
	}
	return &Collector{windowDurationSec: windowDurationSec}
}

// RecordTick folds one field update into the current window.
func (c *Collector) RecordTick(s systems.FieldStats) {
	c.ticks++
	c.spawned += s.Spawned
	c.absorptions += s.Absorptions
	c.resets += s.Resets
	c.pruned += s.Pruned
	if s.Live > 0 {
		c.absorbedFracSum += float64(s.Absorbed) / float64(s.Live)
	}
	if s.Orbiting > c.orbitPeak {
		c.orbitPeak = s.Orbiting
	}
}

// ShouldFlush returns true if the window has covered enough simulated time.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime-c.windowStartTime >= c.windowDurationSec
}

// FieldSample is the field state sampled by the caller at flush time.
type FieldSample struct {
	Stats      systems.FieldStats
	MaxRays    int
	Radii      []float64 // head distance to the black hole, one per live ray
	LightTotal float64
	Model      string
	Pattern    string
	Multiplier float64
	Mass       float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, simTime float64, sample FieldSample) WindowStats {
	var absorbedFrac float64
	if c.ticks > 0 {
		absorbedFrac = c.absorbedFracSum / float64(c.ticks)
	}
	var rate float64
	if elapsed := simTime - c.windowStartTime; elapsed > 0 {
		rate = float64(c.absorptions) / elapsed
	}
	mean, std, p10, p50, p90 := ComputeRadiusStats(sample.Radii)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      simTime,

		Rays:     sample.Stats.Live,
		MaxRays:  sample.MaxRays,
		Absorbed: sample.Stats.Absorbed,
		Orbiting: sample.Stats.Orbiting,

		Spawned:     c.spawned,
		Absorptions: c.absorptions,
		Resets:      c.resets,
		Pruned:      c.pruned,

		AbsorbedFrac:   absorbedFrac,
		AbsorptionRate: rate,
		OrbitPeak:      c.orbitPeak,

		RadiusMean: mean,
		RadiusStd:  std,
		RadiusP10:  p10,
		RadiusP50:  p50,
		RadiusP90:  p90,

		LightTotal: sample.LightTotal,
		Model:      sample.Model,
		Pattern:    sample.Pattern,
		Multiplier: sample.Multiplier,
		Mass:       sample.Mass,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.windowStartTime = simTime
	c.ticks = 0
	c.spawned = 0
	c.absorptions = 0
	c.resets = 0
	c.pruned = 0
	c.absorbedFracSum = 0
	c.orbitPeak = 0

	return stats
}

// WindowDuration returns the simulated seconds per window.
func (c *Collector) WindowDuration() float64 {
	return c.windowDurationSec
}
