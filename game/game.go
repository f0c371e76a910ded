// Package game hosts the simulation in a raylib window.
package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/lensing/camera"
	"github.com/pthm-cable/lensing/config"
	"github.com/pthm-cable/lensing/renderer"
	"github.com/pthm-cable/lensing/sim"
	"github.com/pthm-cable/lensing/ui"
)

// Options configures the windowed host.
type Options struct {
	Sim           sim.Options
	StepsPerFrame int // simulation ticks per frame (1-10)
}

// Game holds the windowed host state around a Simulation.
type Game struct {
	sim *sim.Simulation
	dt  float64 // fixed simulation step

	// Rendering
	camera     *camera.Camera
	rays       *renderer.RayRenderer
	lightField *renderer.LightFieldRenderer

	// UI
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	tuning    *ui.TuningPanel

	// State
	paused        bool
	showPerf      bool
	stepsPerFrame int

	screenWidth, screenHeight float32
}

// NewGame creates the host. The raylib window must already be open.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	s, err := sim.New(cfg, opts.Sim)
	if err != nil {
		return nil, err
	}

	fps := cfg.Screen.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	steps := min(max(opts.StepsPerFrame, 1), 10)

	w, h := cfg.Derived.ScreenW32, cfg.Derived.ScreenH32
	g := &Game{
		sim:           s,
		dt:            1.0 / float64(fps),
		camera:        camera.New(w, h, cfg.World.HalfExtent),
		rays:          renderer.NewRayRenderer(),
		lightField:    renderer.NewLightFieldRenderer(),
		hud:           ui.NewHUD(),
		perfPanel:     ui.NewPerfPanel(int32(w)-260, 10),
		tuning:        ui.NewTuningPanel(w-270, 120, 260),
		stepsPerFrame: steps,
		screenWidth:   w,
		screenHeight:  h,
	}
	return g, nil
}

// Update handles input and runs stepsPerFrame simulation ticks.
func (g *Game) Update() {
	g.handleInput()

	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerFrame; i++ {
		g.sim.Step(g.dt)
	}
}

// Unload releases all resources and closes telemetry output.
func (g *Game) Unload() error {
	g.lightField.Unload()
	return g.sim.Close()
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.sim.Tick()
}

// frameTime returns the real seconds since the last frame, for held-key tuning.
func frameTime() float64 {
	return float64(rl.GetFrameTime())
}
