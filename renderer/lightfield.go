package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/lensing/camera"
	"github.com/pthm-cable/lensing/systems"
)

// LightFieldRenderer draws the light field grid as an additive texture overlay.
type LightFieldRenderer struct {
	tex         rl.Texture2D
	size        int
	worldSize   float64
	pixels      []color.RGBA
	initialized bool
}

// NewLightFieldRenderer creates a renderer. Textures are created lazily
// because raylib needs an open window first.
func NewLightFieldRenderer() *LightFieldRenderer {
	return &LightFieldRenderer{}
}

// Init allocates the texture (must be called after raylib window is created).
func (r *LightFieldRenderer) Init(size int, worldSize float64) {
	if r.initialized {
		return
	}
	r.size = size
	r.worldSize = worldSize

	img := rl.GenImageColor(size, size, rl.Black)
	r.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.tex, rl.FilterBilinear)
	rl.UnloadImage(img)

	r.pixels = make([]color.RGBA, size*size)
	r.initialized = true
}

// Update uploads the grid colors to the GPU texture.
func (r *LightFieldRenderer) Update(grid *systems.LightFieldGrid) {
	if !r.initialized {
		r.Init(grid.Size(), grid.Params().WorldSize)
	}
	if grid.Size() != r.size {
		return
	}

	// Grid rows run bottom-up, texture rows top-down
	n := r.size
	for y := 0; y < n; y++ {
		row := (n - 1 - y) * n
		for x := 0; x < n; x++ {
			r.pixels[row+x] = grid.CellColor(x, y).RGBA()
		}
	}
	rl.UpdateTexture(r.tex, r.pixels)
}

// Draw renders the overlay over the world square it covers.
func (r *LightFieldRenderer) Draw(cam *camera.Camera) {
	if !r.initialized {
		return
	}

	half := r.worldSize / 2
	x, y := cam.WorldToScreen(r2.Vec{X: -half, Y: half})
	side := cam.WorldLength(r.worldSize)

	srcRect := rl.Rectangle{X: 0, Y: 0, Width: float32(r.size), Height: float32(r.size)}
	dstRect := rl.Rectangle{X: x, Y: y, Width: side, Height: side}

	rl.BeginBlendMode(rl.BlendAdditive)
	rl.DrawTexturePro(r.tex, srcRect, dstRect, rl.Vector2{}, 0, rl.White)
	rl.EndBlendMode()
}

// Unload frees GPU resources.
func (r *LightFieldRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.tex)
	r.initialized = false
}
