// Command lensterm runs the lensing simulation in a terminal.
//
// Rays are drawn as line characters, the black hole as a filled disc with its
// photon ring, and the light field as a shaded background. Optional audio
// plays a short blip whenever rays cross the event horizon.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/lensing/config"
	"github.com/pthm-cable/lensing/sim"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	pattern := flag.String("pattern", "", "Spawn pattern override: left_edge, four_edge, radial, spiral")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logFile := flag.String("log-file", "", "Write JSON logs to this file (empty = discard)")
	sound := flag.Bool("sound", false, "Play a blip on absorption (overrides config)")
	flag.Parse()

	if err := run(*configPath, *seed, *pattern, *outputDir, *logFile, *sound); err != nil {
		fmt.Fprintf(os.Stderr, "lensterm: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, seed int64, pattern, outputDir, logFile string, sound bool) error {
	// The screen owns stdout, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			return fmt.Errorf("creating log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Cfg()
	if pattern != "" {
		cfg.Spawn.Pattern = pattern
		if err := cfg.Recompute(); err != nil {
			return err
		}
	}
	if sound {
		cfg.Terminal.Sound = true
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s, err := sim.New(cfg, sim.Options{Seed: seed, OutputDir: outputDir})
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()

	var sm *SoundManager
	if cfg.Terminal.Sound {
		sm = NewSoundManager(cfg.Terminal.BlipHz, time.Duration(cfg.Terminal.BlipMs)*time.Millisecond)
		if err := sm.Initialize(); err != nil {
			slog.Warn("audio unavailable", "error", err)
			sm = nil
		} else {
			defer sm.Cleanup()
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	cols, rows := screen.Size()
	h := &host{sim: s, view: newView(cols, rows, cfg.World.HalfExtent)}

	loop(screen, h, cfg, sm)
	s.LogParams()
	return nil
}

// stepsPerFrame returns how many fixed simulation steps cover one terminal frame.
func stepsPerFrame(frameMs, targetFPS int) int {
	if frameMs <= 0 || targetFPS <= 0 {
		return 1
	}
	return max(1, int(math.Round(float64(frameMs)/1000*float64(targetFPS))))
}

// pollEvents forwards screen events to events until the screen is finalized
// or done is closed.
func pollEvents(screen tcell.Screen, events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func loop(screen tcell.Screen, h *host, cfg *config.Config, sm *SoundManager) {
	frame := time.Duration(max(cfg.Terminal.FrameMs, 1)) * time.Millisecond
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	fps := cfg.Screen.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	dt := 1.0 / float64(fps)
	steps := stepsPerFrame(cfg.Terminal.FrameMs, fps)

	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go pollEvents(screen, events, done)

	var scratch []r2.Vec
	for !h.quit {
		select {
		case ev := <-events:
			if h.handleEvent(ev) && h.paused {
				scratch = draw(screen, h.view, h.sim, h.paused, scratch)
				screen.Show()
			}

		case <-ticker.C:
			if !h.paused {
				absorbed := 0
				for i := 0; i < steps; i++ {
					h.sim.Step(dt)
					absorbed += h.sim.Field().Stats().Absorptions
				}
				if sm != nil {
					sm.PlayAbsorptions(absorbed)
				}
			}
			scratch = draw(screen, h.view, h.sim, h.paused, scratch)
			screen.Show()
			h.sim.RecordFrame()
		}
	}
}
