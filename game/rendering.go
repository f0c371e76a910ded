package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/lensing/renderer"
	"github.com/pthm-cable/lensing/ui"
)

// Draw renders the frame.
func (g *Game) Draw() {
	g.sim.RecordFrame()

	rl.BeginDrawing()
	renderer.DrawBackground()

	if g.sim.LightFieldEnabled() {
		g.lightField.Update(g.sim.Grid())
		g.lightField.Draw(g.camera)
	}

	// Rays behind the black hole
	g.rays.Draw(g.sim.Field(), g.camera)
	renderer.DrawBlackHole(g.sim.Hole(), g.camera)

	g.drawUI()

	rl.EndDrawing()
}

// drawUI renders the HUD, perf and tuning panels.
func (g *Game) drawUI() {
	g.hud.Draw(g.hudData())
	g.hud.DrawControls(int32(g.screenHeight), ControlsLegend)

	if g.showPerf {
		g.perfPanel.Draw(g.sim.PerfStats())
	}
	if g.tuning.Draw(g.sim) {
		g.sim.Reset()
	}
}

// hudData snapshots the simulation for the HUD.
func (g *Game) hudData() ui.HUDData {
	s := g.sim
	field := s.Field()
	stats := field.Stats()
	hole := s.Hole()
	grav := s.Gravity()

	return ui.HUDData{
		Title:         "Gravitational Lensing",
		Tick:          s.Tick(),
		SimTime:       s.Time(),
		FPS:           rl.GetFPS(),
		StepsPerFrame: g.stepsPerFrame,
		Paused:        g.paused,

		Rays:     field.Count(),
		MaxRays:  field.Params().MaxRays,
		Absorbed: stats.Absorbed,
		Orbiting: stats.Orbiting,

		MeanAngularMomentum: stats.MeanAngularMomentum,
		MaxProperTime:       stats.MaxProperTime,

		Model:      grav.Model.String(),
		Pattern:    field.Pattern().String(),
		Lifecycle:  field.Params().Lifecycle.String(),
		LightField: s.LightFieldEnabled(),

		Mass:       hole.Mass,
		Horizon:    hole.EventHorizon,
		Speed:      field.Speed(),
		Multiplier: grav.Multiplier,
		MaxForce:   grav.MaxForce,
		Exponent:   grav.Exponent,
	}
}
