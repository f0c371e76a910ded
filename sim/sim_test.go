package sim

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/lensing/config"
	"github.com/pthm-cable/lensing/systems"
	"github.com/pthm-cable/lensing/telemetry"
)

const testDT = 1.0 / 60.0

func init() {
	config.MustInit("")
}

func newTestSim(t *testing.T, opts Options) *Simulation {
	t.Helper()
	cfg := config.Cfg().Clone()
	cfg.Spawn.Workers = 1
	if opts.Seed == 0 {
		opts.Seed = 7
	}
	s, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSpawnsFirstBatch(t *testing.T) {
	s := newTestSim(t, Options{})
	if got, want := s.Field().Count(), s.Config().Spawn.BatchSize; got != want {
		t.Errorf("initial rays = %d, want %d", got, want)
	}
}

func TestHeadlessRunRespectsCapAndFeedsGrid(t *testing.T) {
	s := newTestSim(t, Options{})
	maxRays := s.Field().Params().MaxRays

	for i := 0; i < 1200; i++ {
		s.Step(testDT)
		if n := s.Field().Count(); n > maxRays {
			t.Fatalf("tick %d: %d rays exceeds cap %d", i, n, maxRays)
		}
	}

	if s.Tick() != 1200 {
		t.Errorf("Tick = %d, want 1200", s.Tick())
	}
	if math.Abs(s.Time()-20) > 1e-6 {
		t.Errorf("Time = %v, want 20", s.Time())
	}
	if s.Grid().Total() <= 0 {
		t.Error("light field received no segments")
	}
}

func TestLightFieldToggle(t *testing.T) {
	s := newTestSim(t, Options{})
	for i := 0; i < 60; i++ {
		s.Step(testDT)
	}
	if s.Grid().Total() <= 0 {
		t.Fatal("expected light after a second of rays")
	}

	s.ToggleLightField()
	if s.LightFieldEnabled() {
		t.Fatal("light field should be disabled")
	}
	if s.Grid().Total() != 0 {
		t.Error("disabling the light field should clear it")
	}
	for i := 0; i < 60; i++ {
		s.Step(testDT)
	}
	if s.Grid().Total() != 0 {
		t.Error("disabled light field should not accumulate")
	}
}

func TestSetValueClamps(t *testing.T) {
	s := newTestSim(t, Options{})
	for _, p := range Params {
		lo, hi := p.Range()
		s.SetValue(p, hi*10)
		if got := s.Value(p); got != hi {
			t.Errorf("%s above range = %v, want %v", p, got, hi)
		}
		s.SetValue(p, lo-100)
		if got := s.Value(p); got != lo {
			t.Errorf("%s below range = %v, want %v", p, got, lo)
		}
	}
}

func TestNudgeScalesWithTime(t *testing.T) {
	s := newTestSim(t, Options{})
	s.SetValue(ParamMass, 1.0)

	// one second of held input at 60 fps
	for i := 0; i < 60; i++ {
		s.Nudge(ParamMass, +1, testDT)
	}
	if got := s.Value(ParamMass); math.Abs(got-1.6) > 1e-9 {
		t.Errorf("mass after 1s = %v, want 1.6", got)
	}
	if s.Hole().Mass != s.Value(ParamMass) {
		t.Error("mass tunable not applied to the black hole")
	}
}

func TestSpeedAppliesToLiveRays(t *testing.T) {
	s := newTestSim(t, Options{})
	s.SetValue(ParamSpeed, 0.5)
	s.Field().ForEach(func(r *systems.Ray) {
		if r.Speed() != 0.5 {
			t.Fatalf("ray speed = %v, want 0.5", r.Speed())
		}
	})
}

func TestResetKeepsTunables(t *testing.T) {
	s := newTestSim(t, Options{})
	home := s.Hole().Position

	s.MoveHole(1, 0, 1.0)
	if s.Hole().Position == home {
		t.Fatal("MoveHole did not move the black hole")
	}
	s.SetValue(ParamMass, 2.5)
	s.SetValue(ParamHorizon, 0.2)
	s.SetPattern(systems.PatternRadial)
	for i := 0; i < 30; i++ {
		s.Step(testDT)
	}

	s.Reset()

	if s.Hole().Position != home {
		t.Errorf("position after reset = %v, want %v", s.Hole().Position, home)
	}
	if s.Hole().Mass != 2.5 || s.Hole().EventHorizon != 0.2 {
		t.Errorf("reset changed mass/horizon: %+v", s.Hole())
	}
	if s.Field().Pattern() != systems.PatternRadial {
		t.Error("reset changed the spawn pattern")
	}
	if s.Grid().Total() != 0 {
		t.Error("reset should clear the light field")
	}
	if got, want := s.Field().Count(), s.Config().Spawn.BatchSize; got != want {
		t.Errorf("rays after reset = %d, want %d", got, want)
	}
}

func TestSetPatternSameRestartsField(t *testing.T) {
	s := newTestSim(t, Options{})
	batch := s.Config().Spawn.BatchSize
	for i := 0; i < 200; i++ {
		s.Step(testDT)
	}
	if s.Field().Count() <= batch {
		t.Fatalf("expected more than one batch before reselecting, got %d", s.Field().Count())
	}

	current := s.Field().Pattern()
	s.SetPattern(current)

	if got := s.Field().Count(); got != batch {
		t.Errorf("rays after reselecting %s = %d, want one fresh batch of %d", current, got, batch)
	}
	if s.Field().Pattern() != current {
		t.Errorf("pattern = %s, want %s", s.Field().Pattern(), current)
	}
}

func TestCycleModel(t *testing.T) {
	s := newTestSim(t, Options{})
	start := s.Gravity().Model
	seen := map[systems.GravityModel]bool{start: true}
	for i := 0; i < 2; i++ {
		s.CycleModel()
		seen[s.Gravity().Model] = true
	}
	if len(seen) != 3 {
		t.Errorf("cycling visited %d models, want 3", len(seen))
	}
	s.CycleModel()
	if s.Gravity().Model != start {
		t.Error("cycling three times should return to the start model")
	}
}

func TestStatsCallbackAndOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	var windows []telemetry.WindowStats
	s := newTestSim(t, Options{
		StatsWindowSec: 1.0,
		OutputDir:      dir,
		StatsCallback: func(w telemetry.WindowStats) {
			windows = append(windows, w)
		},
	})

	for i := 0; i < 185; i++ {
		s.Step(testDT)
	}

	if len(windows) != 3 {
		t.Fatalf("got %d stats windows, want 3", len(windows))
	}
	w := windows[0]
	if w.Rays == 0 || w.MaxRays != s.Field().Params().MaxRays {
		t.Errorf("unexpected first window: %+v", w)
	}
	if w.Model != s.Gravity().Model.String() || w.Pattern != "left_edge" {
		t.Errorf("window tunables = %q/%q", w.Model, w.Pattern)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv", "bookmarks.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestSetHolePosition(t *testing.T) {
	s := newTestSim(t, Options{})
	p := r2.Vec{X: -0.25, Y: 0.4}
	s.SetHolePosition(p)
	if s.Hole().Position != p {
		t.Errorf("position = %v, want %v", s.Hole().Position, p)
	}
}
