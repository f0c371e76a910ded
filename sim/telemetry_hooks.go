package sim

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/lensing/systems"
	"github.com/pthm-cable/lensing/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.simTime) {
		return
	}

	stats := s.collector.Flush(s.tick, s.simTime, s.sampleField())
	perfStats := s.perfCollector.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.output != nil {
		if err := s.output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.output.WritePerf(perfStats, stats.WindowEndTick, stats.Rays); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range s.bookmarks.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if s.output != nil {
			if err := s.output.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}

// sampleField collects the head radii of free rays and the current tunables.
func (s *Simulation) sampleField() telemetry.FieldSample {
	s.radii = s.radii[:0]
	center := s.hole.Position
	s.field.ForEach(func(r *systems.Ray) {
		if r.IsAbsorbed() {
			return
		}
		s.radii = append(s.radii, r2.Norm(r2.Sub(r.Head(), center)))
	})

	return telemetry.FieldSample{
		Stats:      s.field.Stats(),
		MaxRays:    s.field.Params().MaxRays,
		Radii:      s.radii,
		LightTotal: s.grid.Total(),
		Model:      s.gravity.Model.String(),
		Pattern:    s.field.Pattern().String(),
		Multiplier: s.gravity.Multiplier,
		Mass:       s.hole.Mass,
	}
}
