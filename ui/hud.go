package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/lensing/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title         string
	Tick          int32
	SimTime       float64
	FPS           int32
	StepsPerFrame int
	Paused        bool

	Rays     int
	MaxRays  int
	Absorbed int
	Orbiting int

	MeanAngularMomentum float64
	MaxProperTime       float64

	Model      string
	Pattern    string
	Lifecycle  string
	LightField bool

	Mass       float64
	Horizon    float64
	Speed      float64
	Multiplier float64
	MaxForce   float64
	Exponent   float64
}

func hud(d any) *HUDData { return d.(*HUDData) }

// HUDSections describes the HUD rows.
var HUDSections = []SectionDescriptor{
	{
		ID: "field",
		Fields: []FieldDescriptor{
			{ID: "rays", Label: "Rays", Widget: WidgetText, TextGetter: func(d any) string {
				return fmt.Sprintf("%d / %d", hud(d).Rays, hud(d).MaxRays)
			}},
			{ID: "absorbed", Label: "Absorbed", Widget: WidgetBar, Range: DefaultRange(), Getter: func(d any) float32 {
				h := hud(d)
				if h.Rays == 0 {
					return 0
				}
				return float32(h.Absorbed) / float32(h.Rays)
			}},
			{ID: "orbiting", Label: "Orbiting", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
				return float32(hud(d).Orbiting)
			}},
			{ID: "momentum", Label: "Mean |L|", Widget: WidgetText, Format: "%.3f", Getter: func(d any) float32 {
				return float32(hud(d).MeanAngularMomentum)
			}},
			{ID: "proper_time", Label: "Max tau", Widget: WidgetText, Format: "%.1fs", Getter: func(d any) float32 {
				return float32(hud(d).MaxProperTime)
			}},
		},
	},
	{
		ID:    "model",
		Title: "Gravity",
		Fields: []FieldDescriptor{
			{ID: "model", Label: "Model", Widget: WidgetText, TextGetter: func(d any) string { return hud(d).Model }},
			{ID: "pattern", Label: "Pattern", Widget: WidgetText, TextGetter: func(d any) string { return hud(d).Pattern }},
			{ID: "lifecycle", Label: "Lifecycle", Widget: WidgetText, TextGetter: func(d any) string { return hud(d).Lifecycle }},
			{ID: "light", Label: "Light field", Widget: WidgetText, TextGetter: func(d any) string {
				if hud(d).LightField {
					return "on"
				}
				return "off"
			}},
		},
	},
	{
		ID:    "tunables",
		Title: "Tunables",
		Fields: []FieldDescriptor{
			{ID: "mass", Label: "Mass", Widget: WidgetText, Format: "%.2f", Getter: func(d any) float32 { return float32(hud(d).Mass) }},
			{ID: "horizon", Label: "Horizon", Widget: WidgetText, Format: "%.3f", Getter: func(d any) float32 { return float32(hud(d).Horizon) }},
			{ID: "speed", Label: "Light speed", Widget: WidgetText, Format: "%.3f", Getter: func(d any) float32 { return float32(hud(d).Speed) }},
			{ID: "multiplier", Label: "Gravity x", Widget: WidgetText, Format: "%.2f", Getter: func(d any) float32 { return float32(hud(d).Multiplier) }},
			{ID: "max_force", Label: "Max force", Widget: WidgetText, Format: "%.1f", Getter: func(d any) float32 { return float32(hud(d).MaxForce) }},
			{ID: "exponent", Label: "Exponent", Widget: WidgetText, Format: "%.2f", Getter: func(d any) float32 { return float32(hud(d).Exponent) }},
		},
	},
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer(), width: 230}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	pad := r.Theme.Padding

	rl.DrawText(data.Title, pad, pad, 20, rl.White)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | t=%.1fs | %dx | FPS: %d", data.Tick, data.SimTime, data.StepsPerFrame, data.FPS),
		pad, pad+24, 14, rl.LightGray,
	)
	if data.Paused {
		rl.DrawText("PAUSED", pad, pad+42, 14, rl.Yellow)
	}

	height := pad * 2
	for _, sd := range HUDSections {
		height += r.SectionHeight(sd, &data)
	}

	x, y := pad, pad+62
	r.DrawPanel(x, y, h.width, height)
	y += pad
	for _, sd := range HUDSections {
		y = r.DrawSection(x+pad, y, sd, &data, h.width-2*pad)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the step phase breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x, y := p.x, p.y

	rl.DrawText("Step Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg tick: %s", stats.AvgTickDuration.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]
		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-12s %8s %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
