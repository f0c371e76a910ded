package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/lensing/camera"
	"github.com/pthm-cable/lensing/components"
)

var (
	horizonRingColor = rl.NewColor(204, 51, 51, 230)
	photonRingColor  = rl.NewColor(255, 204, 77, 204)
)

// DrawBlackHole renders the horizon disc, its edge ring and the photon ring.
func DrawBlackHole(hole components.BlackHole, cam *camera.Camera) {
	sx, sy := cam.WorldToScreen(hole.Position)
	center := rl.Vector2{X: sx, Y: sy}
	horizon := cam.WorldLength(hole.EventHorizon)
	photon := cam.WorldLength(hole.PhotonRing())

	rl.DrawCircleV(center, horizon, rl.Black)
	rl.DrawRing(center, horizon-2, horizon, 0, 360, 64, horizonRingColor)
	rl.DrawRing(center, photon-0.75, photon+0.75, 0, 360, 64, photonRingColor)
}
