package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/lensing/sim"
	"github.com/pthm-cable/lensing/systems"
)

// nudgeKeys maps decrease/increase key pairs to tunables. Held keys adjust continuously.
var nudgeKeys = []struct {
	dec, inc int32
	param    sim.Param
}{
	{rl.KeyQ, rl.KeyE, sim.ParamMass},
	{rl.KeyZ, rl.KeyX, sim.ParamHorizon},
	{rl.KeyA, rl.KeyS, sim.ParamSpeed},
	{rl.KeyD, rl.KeyF, sim.ParamMultiplier},
	{rl.KeyC, rl.KeyV, sim.ParamMaxForce},
	{rl.KeyG, rl.KeyH, sim.ParamExponent},
}

var patternKeys = []struct {
	key     int32
	pattern systems.SpawnPattern
}{
	{rl.KeyOne, systems.PatternLeftEdge},
	{rl.KeyTwo, systems.PatternFourEdge},
	{rl.KeyThree, systems.PatternRadial},
	{rl.KeyFour, systems.PatternSpiral},
}

// ControlsLegend is the one-line key summary drawn at the bottom of the window.
const ControlsLegend = "Arrows: move | Q/E mass | Z/X horizon | A/S speed | D/F gravity | C/V max force | G/H exponent | 1-4 pattern | M model | L light | R reset | Space pause | P params | Tab tuning | F3 perf"

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()
	dt := frameTime()

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.sim.Reset()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.sim.LogParams()
	}
	if rl.IsKeyPressed(rl.KeyM) {
		g.sim.CycleModel()
	}
	if rl.IsKeyPressed(rl.KeyL) {
		g.sim.ToggleLightField()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.tuning.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF3) {
		g.showPerf = !g.showPerf
	}

	// Steps-per-frame control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerFrame > 1 {
		g.stepsPerFrame--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerFrame < 10 {
		g.stepsPerFrame++
	}

	for _, pk := range patternKeys {
		if rl.IsKeyPressed(pk.key) {
			g.sim.SetPattern(pk.pattern)
		}
	}

	for _, nk := range nudgeKeys {
		if rl.IsKeyDown(nk.dec) {
			g.sim.Nudge(nk.param, -1, dt)
		}
		if rl.IsKeyDown(nk.inc) {
			g.sim.Nudge(nk.param, +1, dt)
		}
	}

	g.handleHoleInput(dt)
	g.handleCameraInput()
}

// handleHoleInput moves the black hole with the arrow keys or places it with a left click.
func (g *Game) handleHoleInput(dt float64) {
	var dx, dy float64
	if rl.IsKeyDown(rl.KeyLeft) {
		dx--
	}
	if rl.IsKeyDown(rl.KeyRight) {
		dx++
	}
	if rl.IsKeyDown(rl.KeyUp) {
		dy++
	}
	if rl.IsKeyDown(rl.KeyDown) {
		dy--
	}
	if dx != 0 || dy != 0 {
		g.sim.MoveHole(dx, dy, dt)
	}

	mouse := rl.GetMousePosition()
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && !g.tuning.Contains(mouse) {
		g.sim.SetHolePosition(g.camera.ScreenToWorld(mouse.X, mouse.Y))
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.perfPanel.SetPosition(int32(w)-260, 10)
	g.tuning.SetPosition(w-270, 120)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Right-drag pans
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		g.camera.Pan(-d.X, -d.Y)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 + wheel*0.1)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
