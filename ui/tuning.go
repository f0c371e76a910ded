package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/lensing/sim"
)

// Tunable is the subset of the simulation the tuning panel edits.
type Tunable interface {
	Value(p sim.Param) float64
	SetValue(p sim.Param, v float64)
	LightFieldEnabled() bool
	ToggleLightField()
}

// TuningPanel shows a raygui slider per tunable.
type TuningPanel struct {
	renderer *Renderer
	x, y     float32
	width    float32
	visible  bool
}

// NewTuningPanel creates a hidden tuning panel.
func NewTuningPanel(x, y, width float32) *TuningPanel {
	return &TuningPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (t *TuningPanel) SetPosition(x, y float32) {
	t.x = x
	t.y = y
}

// Toggle switches panel visibility.
func (t *TuningPanel) Toggle() bool {
	t.visible = !t.visible
	return t.visible
}

// IsVisible returns whether the panel is shown.
func (t *TuningPanel) IsVisible() bool { return t.visible }

// Contains reports whether the screen point lies over the visible panel.
func (t *TuningPanel) Contains(p rl.Vector2) bool {
	if !t.visible {
		return false
	}
	return rl.CheckCollisionPointRec(p, rl.Rectangle{X: t.x, Y: t.y, Width: t.width, Height: t.height()})
}

func (t *TuningPanel) height() float32 {
	return float32(len(sim.Params))*40 + 70
}

// Draw renders the sliders and applies any change to s.
// It reports whether the reset button was pressed.
func (t *TuningPanel) Draw(s Tunable) (reset bool) {
	if !t.visible {
		return false
	}

	r := t.renderer
	pad := float32(r.Theme.Padding)
	r.DrawPanel(int32(t.x), int32(t.y), int32(t.width), int32(t.height()))

	x, y := t.x+pad, t.y+pad
	r.DrawSectionHeader(int32(x), int32(y), "Tuning")
	y += 22

	sliderW := t.width - 2*pad - 60
	for _, p := range sim.Params {
		lo, hi := p.Range()
		cur := s.Value(p)

		rl.DrawText(p.Label(), int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		y += 14
		v := gui.SliderBar(
			rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 16},
			"", "",
			float32(cur), float32(lo), float32(hi),
		)
		rl.DrawText(fmt.Sprintf("%.3f", cur), int32(x+sliderW+8), int32(y+2), r.Theme.FontSize, r.Theme.ValueColor)
		if v != float32(cur) {
			s.SetValue(p, float64(v))
		}
		y += 26
	}

	if on := gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 16, Height: 16}, "Light field", s.LightFieldEnabled()); on != s.LightFieldEnabled() {
		s.ToggleLightField()
	}
	return gui.Button(rl.Rectangle{X: x + t.width/2, Y: y - 4, Width: t.width/2 - 2*pad, Height: 24}, "Reset")
}
