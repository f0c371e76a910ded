// Package sim runs the ray field, light field and telemetry without any graphics.
// Both the raylib and terminal hosts drive a Simulation one Step at a time.
package sim

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/lensing/components"
	"github.com/pthm-cable/lensing/config"
	"github.com/pthm-cable/lensing/systems"
	"github.com/pthm-cable/lensing/telemetry"
)

// Options configures a Simulation beyond the loaded config.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	OutputDir      string  // empty = no CSV output

	// StatsCallback is invoked with every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Simulation owns the ray field, the light field grid, the black hole and
// the gravity tunables. Hosts mutate tunables only between Steps.
type Simulation struct {
	cfg *config.Config

	field   *systems.RayField
	grid    *systems.LightFieldGrid
	hole    components.BlackHole
	gravity systems.Gravity
	home    r2.Vec // black hole position restored by Reset

	lightEnabled     bool
	segmentIntensity float64
	deposit          func(systems.Segment)

	tick    int32
	simTime float64

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	bookmarks     *telemetry.BookmarkDetector
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
	radii         []float64
}

// New builds a simulation from cfg and spawns the first batch of rays.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	pattern, err := systems.ParsePattern(cfg.Derived.Pattern)
	if err != nil {
		return nil, err
	}

	spawner := systems.NewSpawner(
		pattern,
		systems.SpawnParamsFromConfig(cfg),
		systems.RayParamsFromConfig(cfg),
		uint64(opts.Seed),
	)

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	hole := systems.BlackHoleFromConfig(cfg)
	s := &Simulation{
		cfg:              cfg,
		field:            systems.NewRayField(systems.FieldParamsFromConfig(cfg), spawner),
		grid:             systems.NewLightFieldGrid(systems.LightFieldParamsFromConfig(cfg)),
		hole:             hole,
		gravity:          systems.GravityFromConfig(cfg),
		home:             hole.Position,
		lightEnabled:     cfg.LightField.Enabled,
		segmentIntensity: cfg.LightField.SegmentIntensity,
		collector:        telemetry.NewCollector(statsWindow),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarks:        telemetry.NewBookmarkDetector(10),
		output:           output,
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
	}
	s.deposit = func(seg systems.Segment) {
		s.grid.AccumulateSegment(seg.Start, seg.End, s.segmentIntensity)
	}

	s.field.Reset()

	slog.Info("simulation_created",
		"seed", opts.Seed,
		"pattern", pattern.String(),
		"gravity_model", s.gravity.Model.String(),
		"lifecycle", s.field.Params().Lifecycle.String(),
		"max_rays", s.field.Params().MaxRays,
		"workers", s.field.Params().Workers,
		"output_dir", output.Dir(),
	)
	return s, nil
}

// Step advances the simulation by dt seconds.
func (s *Simulation) Step(dt float64) {
	s.perfCollector.StartTick()

	// 1. Rays: spawn, integrate, lifecycle
	s.perfCollector.StartPhase(telemetry.PhaseRayField)
	s.field.Update(dt, systems.Environment{Hole: s.hole, Gravity: s.gravity})

	// 2. Fresh trail segments into the light field
	s.perfCollector.StartPhase(telemetry.PhaseSegments)
	if s.lightEnabled {
		s.field.EachNewSegment(s.deposit)
	}

	// 3. Decay
	s.perfCollector.StartPhase(telemetry.PhaseLightField)
	s.grid.Update(dt)

	s.tick++
	s.simTime += dt

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.collector.RecordTick(s.field.Stats())
	s.flushTelemetry()

	s.perfCollector.EndTick()
}

// RecordFrame records render frame timing for the perf collector.
func (s *Simulation) RecordFrame() { s.perfCollector.RecordFrame() }

// Close flushes and closes telemetry output.
func (s *Simulation) Close() error {
	return s.output.Close()
}

// Field returns the ray field. Hosts may read it between Steps.
func (s *Simulation) Field() *systems.RayField { return s.field }

// Grid returns the light field grid.
func (s *Simulation) Grid() *systems.LightFieldGrid { return s.grid }

// Hole returns the current black hole.
func (s *Simulation) Hole() components.BlackHole { return s.hole }

// Gravity returns the current gravity tunables.
func (s *Simulation) Gravity() systems.Gravity { return s.gravity }

// Config returns the configuration the simulation was built from.
func (s *Simulation) Config() *config.Config { return s.cfg }

// LightFieldEnabled reports whether segments are fed to the grid.
func (s *Simulation) LightFieldEnabled() bool { return s.lightEnabled }

// Tick returns the number of completed steps.
func (s *Simulation) Tick() int32 { return s.tick }

// Time returns the simulated time in seconds.
func (s *Simulation) Time() float64 { return s.simTime }

// PerfStats returns the rolling performance statistics.
func (s *Simulation) PerfStats() telemetry.PerfStats { return s.perfCollector.Stats() }
