package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/lensing/camera"
	"github.com/pthm-cable/lensing/systems"
)

// Ray colors: translucent grey while free, dim red once absorbed.
var (
	RayColor      = rl.NewColor(204, 204, 204, 128)
	AbsorbedColor = rl.NewColor(128, 26, 26, 153)
)

// RayRenderer draws every on-screen ray trail as a line strip.
type RayRenderer struct {
	trail  []r2.Vec
	points []rl.Vector2
}

// NewRayRenderer creates a ray renderer with reusable scratch buffers.
func NewRayRenderer() *RayRenderer {
	return &RayRenderer{}
}

// Draw renders the trails of all rays in field.
func (r *RayRenderer) Draw(field *systems.RayField, cam *camera.Camera) {
	field.ForEach(func(ray *systems.Ray) {
		r.trail = ray.AppendTrail(r.trail[:0])
		if len(r.trail) < 2 || !cam.PathVisible(r.trail) {
			return
		}

		r.points = r.points[:0]
		for _, p := range r.trail {
			sx, sy := cam.WorldToScreen(p)
			r.points = append(r.points, rl.Vector2{X: sx, Y: sy})
		}

		col := RayColor
		if ray.IsAbsorbed() {
			col = AbsorbedColor
		}
		rl.DrawLineStrip(r.points, col)
	})
}
