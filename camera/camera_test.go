package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 0.01 }

func TestNew(t *testing.T) {
	cam := New(1024, 768, 2.0)

	if cam.Center != (r2.Vec{}) {
		t.Errorf("expected camera at origin, got %v", cam.Center)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
	// shorter side 768 spans 2*fit world units
	if !near(cam.Scale(), 192) {
		t.Errorf("expected scale 192 px/unit, got %f", cam.Scale())
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1024, 768, 2.0)

	sx, sy := cam.WorldToScreen(r2.Vec{})
	if !near(sx, 512) || !near(sy, 384) {
		t.Errorf("expected screen center (512, 384), got (%f, %f)", sx, sy)
	}
}

func TestWorldYPointsUp(t *testing.T) {
	cam := New(1024, 768, 2.0)

	_, top := cam.WorldToScreen(r2.Vec{Y: 2})
	if !near(top, 0) {
		t.Errorf("world y=+fit should map to the top edge, got %f", top)
	}
	right, _ := cam.WorldToScreen(r2.Vec{X: 1})
	if !near(right, 512+192) {
		t.Errorf("world x=1 should map right of center, got %f", right)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1024, 768, 2.0)
	cam.Center = r2.Vec{X: 0.3, Y: -0.2}
	cam.Zoom = 1.7

	testCases := []struct{ sx, sy float32 }{
		{512, 384},  // center
		{100, 100},  // top-left
		{1000, 700}, // near bottom-right
	}

	for _, tc := range testCases {
		p := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(p)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> %v -> (%f,%f)", tc.sx, tc.sy, p, sx, sy)
		}
	}
}

func TestPanMovesOppositeToScreenY(t *testing.T) {
	cam := New(1024, 768, 2.0)

	cam.Pan(192, 192) // one world unit right and down
	if math.Abs(cam.Center.X-1) > 1e-6 || math.Abs(cam.Center.Y+1) > 1e-6 {
		t.Errorf("expected center (1, -1), got %v", cam.Center)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1024, 768, 2.0)

	cam.SetZoom(0.01)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MinZoom, cam.Zoom)
	}

	cam.SetZoom(100)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MaxZoom, cam.Zoom)
	}

	cam.SetZoom(1)
	cam.ZoomBy(2)
	if cam.Zoom != 2 || !near(cam.WorldLength(0.5), 192) {
		t.Errorf("zoom 2: zoom=%f, 0.5 units=%f px", cam.Zoom, cam.WorldLength(0.5))
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1024, 768, 2.0)

	// Visible range is x in [-2.67, 2.67], y in [-2, 2]
	if !cam.IsVisible(r2.Vec{}, 0.1) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(r2.Vec{X: 5, Y: 5}, 0.1) {
		t.Error("far point should not be visible")
	}
	if !cam.IsVisible(r2.Vec{X: 0, Y: 2.3}, 0.5) {
		t.Error("edge point with large radius should be visible")
	}
}

func TestPathVisible(t *testing.T) {
	cam := New(1024, 768, 2.0)

	tests := []struct {
		name   string
		points []r2.Vec
		want   bool
	}{
		{"empty", nil, false},
		{"inside", []r2.Vec{{X: -1}, {X: 1, Y: 0.5}}, true},
		{"far away", []r2.Vec{{X: 5, Y: 5}, {X: 6, Y: 5.5}}, false},
		{"crosses view with ends outside", []r2.Vec{{X: -4}, {X: 4}}, true},
		{"single point off screen", []r2.Vec{{X: 3, Y: 0}}, false},
	}
	for _, tt := range tests {
		if got := cam.PathVisible(tt.points); got != tt.want {
			t.Errorf("%s: PathVisible = %v, want %v", tt.name, got, tt.want)
		}
	}

	// Panning brings the far path into view.
	cam.Center = r2.Vec{X: 5.5, Y: 5}
	if !cam.PathVisible([]r2.Vec{{X: 5, Y: 5}, {X: 6, Y: 5.5}}) {
		t.Error("path under the camera should be visible")
	}
}

func TestResizeKeepsFit(t *testing.T) {
	cam := New(1024, 768, 2.0)
	cam.Resize(800, 1200)

	// shorter side is now the width
	if !near(cam.Scale(), 200) {
		t.Errorf("expected scale 200 after resize, got %f", cam.Scale())
	}
}

func TestReset(t *testing.T) {
	cam := New(1024, 768, 2.0)
	cam.Center = r2.Vec{X: 1, Y: 1}
	cam.Zoom = 2.5

	cam.Reset()

	if cam.Center != (r2.Vec{}) {
		t.Errorf("expected origin, got %v", cam.Center)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}
