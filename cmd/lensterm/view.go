package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/lensing/sim"
	"github.com/pthm-cable/lensing/systems"
)

// cellAspect is the height of a terminal cell divided by its width.
const cellAspect = 2.0

// shade ramps light field intensity from dim to bright.
var shade = []rune(" .:-=+*#%@")

var (
	rayStyle      = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	headStyle     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	absorbedStyle = tcell.StyleDefault.Foreground(tcell.ColorMaroon)
	horizonStyle  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	ringStyle     = tcell.StyleDefault.Foreground(tcell.ColorGold)
	statusStyle   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
)

// view maps world coordinates onto a grid of terminal cells.
// The world is centered with y up; row 0 is the top of the screen.
type view struct {
	cols, rows int
	fit        float64 // world half-extent along the shorter visible axis
}

func newView(cols, rows int, fit float64) view {
	if fit <= 0 {
		fit = 1
	}
	return view{cols: cols, rows: rows, fit: fit}
}

// scale returns columns per world unit. Rows per unit is scale/cellAspect.
func (v view) scale() float64 {
	w := float64(v.cols)
	h := float64(v.rows) * cellAspect
	return min(w, h) / 2 / v.fit
}

// cell returns the terminal cell containing p and whether it is on screen.
func (v view) cell(p r2.Vec) (col, row int, ok bool) {
	s := v.scale()
	fc := float64(v.cols)/2 + p.X*s
	fr := float64(v.rows)/2 - p.Y*s/cellAspect
	col = int(math.Floor(fc))
	row = int(math.Floor(fr))
	ok = col >= 0 && row >= 0 && col < v.cols && row < v.rows
	return col, row, ok
}

// world returns the world position at the center of a terminal cell.
func (v view) world(col, row int) r2.Vec {
	s := v.scale()
	return r2.Vec{
		X: (float64(col) + 0.5 - float64(v.cols)/2) / s,
		Y: (float64(v.rows)/2 - float64(row) - 0.5) * cellAspect / s,
	}
}

// shadeRune picks a ramp character for intensity relative to maxBrightness.
func shadeRune(intensity, maxBrightness float64) rune {
	if maxBrightness <= 0 || intensity <= 0 {
		return shade[0]
	}
	n := math.Min(1, intensity/maxBrightness)
	i := int(n * float64(len(shade)-1))
	return shade[i]
}

// trailRune picks a line character from the direction of travel.
func trailRune(d r2.Vec) rune {
	ax, ay := math.Abs(d.X), math.Abs(d.Y)
	switch {
	case ax > 2*ay:
		return '-'
	case ay > 2*ax:
		return '|'
	case d.X*d.Y > 0:
		return '/'
	default:
		return '\\'
	}
}

// draw renders one frame of s into screen. The status line takes the last row.
func draw(screen tcell.Screen, v view, s *sim.Simulation, paused bool, scratch []r2.Vec) []r2.Vec {
	screen.Clear()

	field := view{cols: v.cols, rows: v.rows - 1, fit: v.fit}
	if field.rows < 1 {
		return scratch
	}

	if s.LightFieldEnabled() {
		drawLightField(screen, field, s.Grid())
	}

	s.Field().ForEach(func(r *systems.Ray) {
		scratch = r.AppendTrail(scratch[:0])
		style := rayStyle
		if r.IsAbsorbed() {
			style = absorbedStyle
		}
		for i := 1; i < len(scratch); i++ {
			col, row, ok := field.cell(scratch[i])
			if !ok {
				continue
			}
			screen.SetContent(col, row, trailRune(r2.Sub(scratch[i], scratch[i-1])), nil, style)
		}
		if !r.IsAbsorbed() {
			if col, row, ok := field.cell(r.Head()); ok {
				screen.SetContent(col, row, '*', nil, headStyle)
			}
		}
	})

	drawHole(screen, field, s)
	drawStatus(screen, v.cols, v.rows-1, s, paused)
	return scratch
}

func drawLightField(screen tcell.Screen, v view, g *systems.LightFieldGrid) {
	maxB := g.Params().MaxBrightness
	for row := 0; row < v.rows; row++ {
		for col := 0; col < v.cols; col++ {
			x, y := g.WorldToCell(v.world(col, row))
			intensity := g.Cell(x, y)
			if intensity <= 0 {
				continue
			}
			c := g.CellColor(x, y).RGBA()
			style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
			screen.SetContent(col, row, shadeRune(intensity, maxB), nil, style)
		}
	}
}

// drawHole fills the event horizon and outlines the photon ring.
func drawHole(screen tcell.Screen, v view, s *sim.Simulation) {
	hole := s.Hole()
	horizon := hole.EventHorizon
	ring := hole.PhotonRing()
	reach := ring + 1/v.scale()

	c0, r0, _ := v.cell(r2.Vec{X: hole.Position.X - reach, Y: hole.Position.Y + reach})
	c1, r1, _ := v.cell(r2.Vec{X: hole.Position.X + reach, Y: hole.Position.Y - reach})
	halfCell := 0.5 / v.scale()

	for row := max(r0, 0); row <= min(r1, v.rows-1); row++ {
		for col := max(c0, 0); col <= min(c1, v.cols-1); col++ {
			d := r2.Norm(r2.Sub(v.world(col, row), hole.Position))
			switch {
			case d <= horizon:
				screen.SetContent(col, row, '@', nil, horizonStyle)
			case math.Abs(d-ring) <= halfCell:
				screen.SetContent(col, row, 'o', nil, ringStyle)
			}
		}
	}

	// A hole smaller than one cell still shows up.
	if col, row, ok := v.cell(hole.Position); ok {
		screen.SetContent(col, row, '@', nil, horizonStyle)
	}
}

func drawStatus(screen tcell.Screen, cols, row int, s *sim.Simulation, paused bool) {
	st := s.Field().Stats()
	text := statusLine(s, st, paused)
	for col := 0; col < cols; col++ {
		ch := ' '
		if col < len(text) {
			ch = rune(text[col])
		}
		screen.SetContent(col, row, ch, nil, statusStyle)
	}
}

func statusLine(s *sim.Simulation, st systems.FieldStats, paused bool) string {
	state := ""
	if paused {
		state = " [paused]"
	}
	return fmt.Sprintf(" %s | %s | rays %d absorbed %d orbiting %d | M %.2f H %.2f c %.2f | t %.1fs%s",
		s.Gravity().Model.String(),
		s.Field().Pattern().String(),
		st.Live, st.Absorbed, st.Orbiting,
		s.Value(sim.ParamMass), s.Value(sim.ParamHorizon), s.Value(sim.ParamSpeed),
		s.Time(), state,
	)
}
