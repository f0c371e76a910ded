package telemetry

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Field state at window end
	Rays     int `csv:"rays"`
	MaxRays  int `csv:"max_rays"`
	Absorbed int `csv:"absorbed"`
	Orbiting int `csv:"orbiting"`

	// Events during window
	Spawned     int `csv:"spawned"`
	Absorptions int `csv:"absorptions"`
	Resets      int `csv:"resets"`
	Pruned      int `csv:"pruned"`

	// Rates
	AbsorbedFrac   float64 `csv:"absorbed_frac"`   // mean per-tick absorbed/live
	AbsorptionRate float64 `csv:"absorption_rate"` // absorptions per simulated second
	OrbitPeak      int     `csv:"orbit_peak"`      // most rays orbiting on any tick

	// Head distance from the black hole (sampled at window end)
	RadiusMean float64 `csv:"radius_mean"`
	RadiusStd  float64 `csv:"radius_std"`
	RadiusP10  float64 `csv:"radius_p10"`
	RadiusP50  float64 `csv:"radius_p50"`
	RadiusP90  float64 `csv:"radius_p90"`

	LightTotal float64 `csv:"light_total"` // sum of light field cells

	// Tunables in effect at window end
	Model      string  `csv:"gravity_model"`
	Pattern    string  `csv:"pattern"`
	Multiplier float64 `csv:"multiplier"`
	Mass       float64 `csv:"mass"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeRadiusStats calculates mean, population std and percentiles of head radii.
func ComputeRadiusStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, variance := stat.PopMeanVariance(values, nil)
	std = math.Sqrt(math.Max(0, variance))

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(s.attrs()...)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.LogAttrs(context.Background(), slog.LevelInfo, "stats", s.attrs()...)
}

func (s WindowStats) attrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("rays", s.Rays),
		slog.Int("absorbed", s.Absorbed),
		slog.Int("orbiting", s.Orbiting),
		slog.Int("spawned", s.Spawned),
		slog.Int("absorptions", s.Absorptions),
		slog.Int("resets", s.Resets),
		slog.Int("pruned", s.Pruned),
		slog.Float64("absorbed_frac", s.AbsorbedFrac),
		slog.Float64("absorption_rate", s.AbsorptionRate),
		slog.Int("orbit_peak", s.OrbitPeak),
		slog.Float64("radius_mean", s.RadiusMean),
		slog.Float64("radius_p50", s.RadiusP50),
		slog.Float64("light_total", s.LightTotal),
		slog.String("gravity_model", s.Model),
		slog.String("pattern", s.Pattern),
		slog.Float64("multiplier", s.Multiplier),
	}
}
