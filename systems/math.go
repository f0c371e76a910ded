package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// clampFloat clamps v between minVal and maxVal.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps v to the [0, 1] range.
func clamp01(v float64) float64 {
	return clampFloat(v, 0, 1)
}

// normalizeHeading wraps a heading to [0, 2*Pi).
func normalizeHeading(h float64) float64 {
	const twoPi = 2 * math.Pi
	h = math.Mod(h, twoPi)
	if h < 0 {
		h += twoPi
	}
	return h
}

// fromAngle returns a vector of the given length pointing at angle radians.
func fromAngle(angle, length float64) r2.Vec {
	s, c := math.Sincos(angle)
	return r2.Vec{X: c * length, Y: s * length}
}

// distance returns the Euclidean distance between two points.
func distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// withinBox reports whether p lies inside the square |x|,|y| <= half.
func withinBox(p r2.Vec, half float64) bool {
	return math.Abs(p.X) <= half && math.Abs(p.Y) <= half
}
