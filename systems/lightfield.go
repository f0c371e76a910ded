package systems

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// LightFieldParams configures a LightFieldGrid.
type LightFieldParams struct {
	Size          int     // cells per side
	WorldSize     float64 // world extent covered, centered on the origin
	Decay         float64 // per reference tick, < 1
	MaxBrightness float64
	Floor         float64 // values below this are zeroed after decay
	ReferenceTick float64 // dt at which Decay is applied exactly once
}

// DefaultLightFieldParams returns the default grid settings.
func DefaultLightFieldParams() LightFieldParams {
	return LightFieldParams{
		Size:          100,
		WorldSize:     4.0,
		Decay:         0.985,
		MaxBrightness: 5.0,
		Floor:         0.001,
		ReferenceTick: 1.0 / 60.0,
	}
}

// LightFieldGrid accumulates ray segments into a decaying density grid.
// It is independent of the rays themselves; hosts feed it segments.
type LightFieldGrid struct {
	cells  []float32 // row-major, y up
	size   int
	params LightFieldParams
}

// NewLightFieldGrid creates a zeroed grid.
func NewLightFieldGrid(params LightFieldParams) *LightFieldGrid {
	if params.Size < 1 {
		params.Size = 1
	}
	return &LightFieldGrid{
		cells:  make([]float32, params.Size*params.Size),
		size:   params.Size,
		params: params,
	}
}

// Size returns the number of cells per side.
func (g *LightFieldGrid) Size() int { return g.size }

// Params returns the grid settings.
func (g *LightFieldGrid) Params() LightFieldParams { return g.params }

// WorldToCell maps a world position to a cell, clamped to the grid.
func (g *LightFieldGrid) WorldToCell(p r2.Vec) (x, y int) {
	half := g.params.WorldSize / 2
	nx := (p.X + half) / g.params.WorldSize
	ny := (p.Y + half) / g.params.WorldSize
	x = clampCell(int(math.Floor(nx*float64(g.size))), g.size)
	y = clampCell(int(math.Floor(ny*float64(g.size))), g.size)
	return x, y
}

func clampCell(v, size int) int {
	if v < 0 {
		return 0
	}
	if v >= size {
		return size - 1
	}
	return v
}

// AccumulateSegment rasterizes the segment and adds intensity to every
// touched cell, clamping each at MaxBrightness.
func (g *LightFieldGrid) AccumulateSegment(start, end r2.Vec, intensity float64) {
	x0, y0 := g.WorldToCell(start)
	x1, y1 := g.WorldToCell(end)
	g.accumulateLine(x0, y0, x1, y1, float32(intensity))
}

// accumulateLine walks the cells between two grid points with Bresenham's algorithm.
func (g *LightFieldGrid) accumulateLine(x0, y0, x1, y1 int, intensity float32) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 >= x1 {
		sx = -1
	}
	if y0 >= y1 {
		sy = -1
	}
	err := dx - dy
	maxB := float32(g.params.MaxBrightness)

	for {
		i := y0*g.size + x0
		g.cells[i] = min(g.cells[i]+intensity, maxB)

		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Update decays every cell by Decay^(dt/ReferenceTick) and zeroes values
// below Floor. A non-positive dt does nothing.
func (g *LightFieldGrid) Update(dt float64) {
	if dt <= 0 {
		return
	}
	factor := float32(g.params.Decay)
	if g.params.ReferenceTick > 0 {
		factor = float32(math.Pow(g.params.Decay, dt/g.params.ReferenceTick))
	}
	floor := float32(g.params.Floor)
	for i, v := range g.cells {
		v *= factor
		if v < floor {
			v = 0
		}
		g.cells[i] = v
	}
}

// Clear zeroes every cell.
func (g *LightFieldGrid) Clear() {
	clear(g.cells)
}

// Cell returns the intensity at (x, y). Out-of-range coordinates return 0.
func (g *LightFieldGrid) Cell(x, y int) float64 {
	if x < 0 || y < 0 || x >= g.size || y >= g.size {
		return 0
	}
	return float64(g.cells[y*g.size+x])
}

// CellColor returns the display color of cell (x, y).
func (g *LightFieldGrid) CellColor(x, y int) Color {
	return IntensityToColor(g.Cell(x, y), g.params.MaxBrightness)
}

// Total returns the sum of all cells.
func (g *LightFieldGrid) Total() float64 {
	var sum float64
	for _, v := range g.cells {
		sum += float64(v)
	}
	return sum
}

// Color is a linear RGB triple with components in [0, 1].
type Color struct {
	R, G, B float32
}

// RGBA converts to an opaque 8-bit color.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(float64(c.R))*255 + 0.5),
		G: uint8(clamp01(float64(c.G))*255 + 0.5),
		B: uint8(clamp01(float64(c.B))*255 + 0.5),
		A: 255,
	}
}

// IntensityToColor maps intensity/maxBrightness through a four-band gradient:
// black to dark blue, dark blue to blue, blue to cyan, cyan to white.
func IntensityToColor(intensity, maxBrightness float64) Color {
	n := 0.0
	if maxBrightness > 0 {
		n = math.Min(1, math.Max(0, intensity/maxBrightness))
	}

	switch {
	case n < 0.25:
		t := float32(n * 4)
		return Color{0, 0, t * 0.3}
	case n < 0.5:
		t := float32((n - 0.25) * 4)
		return Color{0, t * 0.2, 0.3 + t*0.4}
	case n < 0.75:
		t := float32((n - 0.5) * 4)
		return Color{t * 0.3, 0.2 + t*0.5, 0.7 + t*0.3}
	default:
		t := float32((n - 0.75) * 4)
		return Color{0.3 + t*0.7, 0.7 + t*0.3, 1}
	}
}
