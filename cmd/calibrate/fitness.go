package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/lensing/config"
	"github.com/pthm-cable/lensing/sim"
	"github.com/pthm-cable/lensing/telemetry"
)

// warmupWindows are skipped before scoring; the first batches are still crossing the view.
const warmupWindows = 2

// Evaluator runs headless simulations and scores how far the captured
// fraction lands from the target.
type Evaluator struct {
	params      *ParamVector
	baseConfig  *config.Config
	seeds       []int64
	target      float64
	seconds     float64
	statsWindow float64

	mu       sync.Mutex
	lastFrac float64 // mean captured fraction from the most recent Evaluate
	lastStd  float64 // spread of per-window fractions across all seeds
}

// NewEvaluator creates an evaluator that runs each seed for seconds of simulated time.
func NewEvaluator(params *ParamVector, baseCfg *config.Config, seeds []int64, target, seconds float64) *Evaluator {
	return &Evaluator{
		params:      params,
		baseConfig:  baseCfg,
		seeds:       seeds,
		target:      target,
		seconds:     seconds,
		statsWindow: 2.0,
	}
}

// LastFraction returns the mean captured fraction and its spread from the most recent evaluation.
func (e *Evaluator) LastFraction() (mean, std float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastFrac, e.lastStd
}

// Evaluate returns the squared error between the captured fraction and
// the target for raw parameter values x (lower = better).
func (e *Evaluator) Evaluate(x []float64) float64 {
	cfg := e.baseConfig.Clone()
	e.params.ApplyToConfig(cfg, x)

	results := make([][]float64, len(e.seeds))
	var wg sync.WaitGroup
	for i, seed := range e.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = e.run(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var fracs []float64
	for _, r := range results {
		fracs = append(fracs, r...)
	}

	if len(fracs) == 0 {
		// Too short to score; push the search away rather than failing it.
		return 1
	}
	mean, std := stat.MeanStdDev(fracs, nil)

	e.mu.Lock()
	e.lastFrac = mean
	e.lastStd = std
	e.mu.Unlock()

	return capturedError(mean, e.target)
}

// run simulates one seed and returns the captured fraction of each scored window.
func (e *Evaluator) run(cfg *config.Config, seed int64) []float64 {
	var windows []telemetry.WindowStats
	s, err := sim.New(cfg, sim.Options{
		Seed:           seed,
		StatsWindowSec: e.statsWindow,
		StatsCallback: func(w telemetry.WindowStats) {
			windows = append(windows, w)
		},
	})
	if err != nil {
		slog.Error("failed to create simulation", "seed", seed, "error", err)
		return nil
	}
	defer s.Close()

	fps := cfg.Screen.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	dt := 1.0 / float64(fps)
	ticks := int(math.Ceil(e.seconds / dt))
	for i := 0; i < ticks; i++ {
		s.Step(dt)
	}

	return scoredFractions(windows)
}

// scoredFractions drops warmup windows and returns AbsorbedFrac of the rest.
func scoredFractions(windows []telemetry.WindowStats) []float64 {
	if len(windows) <= warmupWindows {
		return nil
	}
	fracs := make([]float64, 0, len(windows)-warmupWindows)
	for _, w := range windows[warmupWindows:] {
		fracs = append(fracs, w.AbsorbedFrac)
	}
	return fracs
}

// capturedError is the squared distance from target.
func capturedError(frac, target float64) float64 {
	d := frac - target
	return d * d
}
