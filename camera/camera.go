// Package camera maps world units to screen pixels for viewport control.
package camera

import "gonum.org/v1/gonum/spatial/r2"

// Camera controls the viewport into the simulation world.
// World space is centered on the origin with y pointing up;
// screen space has its origin top-left with y pointing down.
type Camera struct {
	// Center is the camera center in world units
	Center r2.Vec

	// Zoom level (1.0 = Fit world units fill half the shorter viewport side)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Fit is the world half-extent visible along the shorter viewport axis at zoom 1
	Fit float64

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the origin with 1:1 zoom.
func New(viewportW, viewportH float32, fit float64) *Camera {
	if fit <= 0 {
		fit = 1
	}
	return &Camera{
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		Fit:       fit,
		MinZoom:   0.25,
		MaxZoom:   8.0,
	}
}

// Scale returns screen pixels per world unit at the current zoom.
func (c *Camera) Scale() float32 {
	side := min(c.ViewportW, c.ViewportH)
	return side / 2 / float32(c.Fit) * c.Zoom
}

// WorldToScreen converts a world position to screen coordinates.
func (c *Camera) WorldToScreen(p r2.Vec) (sx, sy float32) {
	s := c.Scale()
	sx = c.ViewportW/2 + float32(p.X-c.Center.X)*s
	sy = c.ViewportH/2 - float32(p.Y-c.Center.Y)*s
	return sx, sy
}

// ScreenToWorld converts screen coordinates to a world position.
func (c *Camera) ScreenToWorld(sx, sy float32) r2.Vec {
	s := c.Scale()
	return r2.Vec{
		X: c.Center.X + float64((sx-c.ViewportW/2)/s),
		Y: c.Center.Y - float64((sy-c.ViewportH/2)/s),
	}
}

// WorldLength converts a world distance to pixels.
func (c *Camera) WorldLength(d float64) float32 {
	return float32(d) * c.Scale()
}

// IsVisible returns true if a circle at p with the given world radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(p r2.Vec, radius float64) bool {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	return p.X+radius >= minX && p.X-radius <= maxX &&
		p.Y+radius >= minY && p.Y-radius <= maxY
}

// PathVisible reports whether any part of the polyline through points could
// be on screen, testing the circle around its bounding box.
func (c *Camera) PathVisible(points []r2.Vec) bool {
	if len(points) == 0 {
		return false
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = r2.Vec{X: min(lo.X, p.X), Y: min(lo.Y, p.Y)}
		hi = r2.Vec{X: max(hi.X, p.X), Y: max(hi.Y, p.Y)}
	}
	mid := r2.Scale(0.5, r2.Add(lo, hi))
	return c.IsVisible(mid, r2.Norm(r2.Sub(hi, mid)))
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	s := c.Scale()
	c.Center.X += float64(dx / s)
	c.Center.Y -= float64(dy / s)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the origin and default zoom.
func (c *Camera) Reset() {
	c.Center = r2.Vec{}
	c.Zoom = 1.0
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float64) {
	s := float64(c.Scale())
	halfW := float64(c.ViewportW) / (2 * s)
	halfH := float64(c.ViewportH) / (2 * s)
	return c.Center.X - halfW, c.Center.Y - halfH, c.Center.X + halfW, c.Center.Y + halfH
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
