// Command calibrate searches gravity parameters so that a target fraction of
// live rays ends up captured by the black hole.
//
// Each evaluation runs several seeded headless simulations, reads the
// absorbed fraction from their stats windows and scores the squared error
// against -target. The best configuration is written as YAML.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/lensing/config"
)

// evalRow is one line of calibrate_log.csv.
type evalRow struct {
	Eval     int     `csv:"eval"`
	Fitness  float64 `csv:"fitness"`
	Captured float64 `csv:"captured_frac"`
	Spread   float64 `csv:"captured_std"`
	Params   string  `csv:"params"`
}

// formatDuration formats a duration as HhMMmSSs or MmSSs for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// formatParams renders name=value pairs for logs.
func formatParams(pv *ParamVector, values []float64) string {
	out := ""
	for i, spec := range pv.Specs {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%.4f", spec.Name, values[i])
	}
	return out
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	paramNames := flag.String("params", "multiplier", "Comma-separated parameters to search: multiplier, mass, max_force, exponent")
	target := flag.Float64("target", 0.2, "Target captured fraction of live rays")
	seconds := flag.Float64("seconds", 30, "Simulated seconds per run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 40, "Maximum number of evaluations")
	method := flag.String("method", "nelder-mead", "Search method: nelder-mead, cmaes")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if *outputDir == "" {
		fail("--output is required")
	}
	if *target <= 0 || *target >= 1 {
		fail("--target must be in (0, 1)")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fail("failed to create output directory", "error", err)
	}

	if err := config.Init(*configPath); err != nil {
		fail("failed to load config", "error", err)
	}
	baseCfg := config.Cfg()

	params, err := NewParamVector(*paramNames)
	if err != nil {
		fail("invalid --params", "error", err)
	}

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewEvaluator(params, baseCfg, evalSeeds, *target, *seconds)

	searcher, err := newMethod(*method, params.Dim())
	if err != nil {
		fail("invalid --method", "error", err)
	}

	logFile, err := os.Create(filepath.Join(*outputDir, "calibrate_log.csv"))
	if err != nil {
		fail("failed to create log file", "error", err)
	}
	defer logFile.Close()
	headerWritten := false

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			frac, spread := evaluator.LastFraction()
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			rows := []evalRow{{
				Eval:     evalCount,
				Fitness:  fitness,
				Captured: frac,
				Spread:   spread,
				Params:   formatParams(params, clamped),
			}}
			if headerWritten {
				err = gocsv.MarshalWithoutHeaders(rows, logFile)
			} else {
				err = gocsv.Marshal(rows, logFile)
				headerWritten = err == nil
			}
			if err != nil {
				slog.Error("failed to write log row", "error", err)
			}

			elapsed := time.Since(startTime)
			remaining := time.Duration(*maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			fmt.Printf("Eval %d/%d: %s captured=%.3f±%.3f (target %.3f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, formatParams(params, clamped), frac, spread, *target,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0,
	}

	fmt.Printf("Calibrating %s toward captured fraction %.3f (%s, max_evals=%d)\n",
		*paramNames, *target, *method, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, seconds per run: %.0f\n", *seeds, *seconds)

	initX := params.Normalize(params.ExtractFromConfig(baseCfg))
	result, err := optimize.Minimize(problem, initX, settings, searcher)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		fail("no evaluations completed")
	}

	fmt.Printf("\nCalibration complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best squared error: %.6f\n", bestFitness)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, bestParams)
	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		fail("failed to write best config", "error", err)
	}
	fmt.Printf("\nBest config saved to: %s\n", configOutPath)
}

// newMethod builds the requested gonum search method.
func newMethod(name string, dim int) (optimize.Method, error) {
	switch name {
	case "nelder-mead":
		// SimplexSize is in normalized units.
		return &optimize.NelderMead{SimplexSize: 0.25}, nil
	case "cmaes":
		return &optimize.CmaEsChol{
			InitStepSize: 0.3,
			Population:   4 + 3*dim,
		}, nil
	}
	return nil, fmt.Errorf("unknown method %q", name)
}

func fail(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}
