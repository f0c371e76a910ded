package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/lensing/sim"
	"github.com/pthm-cable/lensing/systems"
)

// keyNudgeSec is how much held-input time one key event counts for.
// Terminals deliver auto-repeat rather than key-down state.
const keyNudgeSec = 0.1

var runeNudges = map[rune]struct {
	param sim.Param
	dir   float64
}{
	'q': {sim.ParamMass, -1}, 'e': {sim.ParamMass, +1},
	'z': {sim.ParamHorizon, -1}, 'x': {sim.ParamHorizon, +1},
	'a': {sim.ParamSpeed, -1}, 's': {sim.ParamSpeed, +1},
	'd': {sim.ParamMultiplier, -1}, 'f': {sim.ParamMultiplier, +1},
	'c': {sim.ParamMaxForce, -1}, 'v': {sim.ParamMaxForce, +1},
	'g': {sim.ParamExponent, -1}, 'h': {sim.ParamExponent, +1},
}

var runePatterns = map[rune]systems.SpawnPattern{
	'1': systems.PatternLeftEdge,
	'2': systems.PatternFourEdge,
	'3': systems.PatternRadial,
	'4': systems.PatternSpiral,
}

// host holds terminal-side state that is not part of the simulation.
type host struct {
	sim    *sim.Simulation
	view   view
	paused bool
	quit   bool
}

// handleEvent applies one terminal event. It reports whether a redraw is needed.
func (h *host) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		cols, rows := ev.Size()
		h.view = newView(cols, rows, h.view.fit)
		return true

	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			h.quit = true
		case tcell.KeyUp:
			h.sim.MoveHole(0, 1, keyNudgeSec)
		case tcell.KeyDown:
			h.sim.MoveHole(0, -1, keyNudgeSec)
		case tcell.KeyLeft:
			h.sim.MoveHole(-1, 0, keyNudgeSec)
		case tcell.KeyRight:
			h.sim.MoveHole(1, 0, keyNudgeSec)
		case tcell.KeyRune:
			h.handleRune(ev.Rune())
		default:
			return false
		}
		return true

	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return false
		}
		col, row := ev.Position()
		if row >= h.view.rows-1 {
			return false
		}
		field := view{cols: h.view.cols, rows: h.view.rows - 1, fit: h.view.fit}
		h.sim.SetHolePosition(field.world(col, row))
		return true
	}
	return false
}

func (h *host) handleRune(r rune) {
	if n, ok := runeNudges[r]; ok {
		h.sim.Nudge(n.param, n.dir, keyNudgeSec)
		return
	}
	if p, ok := runePatterns[r]; ok {
		h.sim.SetPattern(p)
		return
	}

	switch r {
	case ' ':
		h.paused = !h.paused
	case 'r':
		h.sim.Reset()
	case 'p':
		h.sim.LogParams()
	case 'm':
		h.sim.CycleModel()
	case 'l':
		h.sim.ToggleLightField()
	}
}
