// Package systems implements the lensing engine: gravity models, rays, spawn
// patterns, the ray field and the light field grid.
package systems

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// GravityModel selects how a ray's acceleration is derived from the black hole.
type GravityModel uint8

const (
	// ModelNewtonian pulls along the line to the center; speed is restored by renormalization.
	ModelNewtonian GravityModel = iota
	// ModelDeflection keeps only the force component perpendicular to the velocity.
	ModelDeflection
	// ModelGeodesic uses the photon-orbit radial term plus a tangential boost near the photon sphere,
	// and scales dt by gravitational time dilation.
	ModelGeodesic
)

var modelNames = [...]string{"newtonian", "deflection", "geodesic"}

func (m GravityModel) String() string {
	if int(m) < len(modelNames) {
		return modelNames[m]
	}
	return fmt.Sprintf("GravityModel(%d)", m)
}

// ParseGravityModel maps a config name to a model.
func ParseGravityModel(name string) (GravityModel, error) {
	for i, n := range modelNames {
		if n == name {
			return GravityModel(i), nil
		}
	}
	return ModelNewtonian, fmt.Errorf("unknown gravity model %q", name)
}

// Next cycles to the following model.
func (m GravityModel) Next() GravityModel {
	return GravityModel((int(m) + 1) % len(modelNames))
}

// Tunable ranges enforced by the Gravity setters.
const (
	MinMultiplier  = 0.1
	MaxMultiplier  = 3.0
	MinMaxForce    = 1.0
	MaxMaxForce    = 50.0
	MinExponent    = 0.5
	MaxExponent    = 4.0
	MinMinDistance = 0.0001
	MaxMinDistance = 0.1
)

// Geodesic heuristic constants. Visuals are tuned against these exact values.
const (
	photonSphereFactor = 1.5  // photon sphere radius in units of rs
	boostBand          = 0.2  // half-width of the boost zone relative to the photon sphere radius
	boostStrength      = 0.3  // tangential boost as a fraction of the radial term
	maxTimeDilation    = 10.0 // upper clamp for dt scaling
)

// Gravity holds the gravity tunables. Hosts mutate it between ticks only;
// the integrator receives it by value.
type Gravity struct {
	Model       GravityModel
	Multiplier  float64 // overall strength
	MaxForce    float64 // cap on acceleration magnitude
	Exponent    float64 // distance falloff, 2 = inverse square
	MinDistance float64 // distance floor preventing the singularity
}

// DefaultGravity returns the default tunables.
func DefaultGravity() Gravity {
	return Gravity{
		Model:       ModelNewtonian,
		Multiplier:  1.0,
		MaxForce:    15.0,
		Exponent:    2.0,
		MinDistance: 0.001,
	}
}

// SetMultiplier sets the strength multiplier, clamped to [MinMultiplier, MaxMultiplier].
func (g *Gravity) SetMultiplier(v float64) { g.Multiplier = clampFloat(v, MinMultiplier, MaxMultiplier) }

// SetMaxForce sets the force cap, clamped to [MinMaxForce, MaxMaxForce].
func (g *Gravity) SetMaxForce(v float64) { g.MaxForce = clampFloat(v, MinMaxForce, MaxMaxForce) }

// SetExponent sets the falloff exponent, clamped to [MinExponent, MaxExponent].
func (g *Gravity) SetExponent(v float64) { g.Exponent = clampFloat(v, MinExponent, MaxExponent) }

// SetMinDistance sets the distance floor, clamped to [MinMinDistance, MaxMinDistance].
func (g *Gravity) SetMinDistance(v float64) {
	g.MinDistance = clampFloat(v, MinMinDistance, MaxMinDistance)
}

// GetMultiplier returns the strength multiplier.
func (g Gravity) GetMultiplier() float64 { return g.Multiplier }

// GetMaxForce returns the force cap.
func (g Gravity) GetMaxForce() float64 { return g.MaxForce }

// GetExponent returns the falloff exponent.
func (g Gravity) GetExponent() float64 { return g.Exponent }

// GetMinDistance returns the distance floor.
func (g Gravity) GetMinDistance() float64 { return g.MinDistance }

// centerFallbackDir is the pull direction used when pos sits exactly on the
// center and the true direction is undefined.
var centerFallbackDir = r2.Vec{X: 1}

// toward returns the unit vector from pos to center and the distance between them.
// At zero distance the direction is centerFallbackDir.
func toward(pos, center r2.Vec) (r2.Vec, float64) {
	to := r2.Sub(center, pos)
	d := r2.Norm(to)
	if d == 0 {
		return centerFallbackDir, 0
	}
	return r2.Scale(1/d, to), d
}

// Force returns the attractive acceleration at pos:
// mass*Multiplier / max(d, MinDistance)^Exponent, capped at MaxForce, pointing at center.
// At the center itself the magnitude is the floored one along centerFallbackDir.
func (g Gravity) Force(pos, center r2.Vec, mass float64) r2.Vec {
	dir, d := toward(pos, center)
	d = math.Max(d, g.MinDistance)

	mag := mass * g.Multiplier / math.Pow(d, g.Exponent)
	mag = math.Min(mag, g.MaxForce)
	return r2.Scale(mag, dir)
}

// Deflection returns Force with its velocity-parallel component removed,
// so only the direction of travel bends.
func (g Gravity) Deflection(pos, vel, center r2.Vec, mass float64) r2.Vec {
	f := g.Force(pos, center, mass)
	speed := r2.Norm(vel)
	if speed == 0 {
		return f
	}
	u := r2.Scale(1/speed, vel)
	return r2.Sub(f, r2.Scale(r2.Dot(f, u), u))
}

// SchwarzschildRadius is the heuristic rs = 2*mass.
func SchwarzschildRadius(mass float64) float64 {
	return 2 * mass
}

// Geodesic returns the radial plus tangential acceleration used by ModelGeodesic.
//
// The radial term is Multiplier * 1.5 * rs * h² / r⁴ toward the center, with
// h = |rel × vel| the specific angular momentum. Inside the band around the
// photon sphere (1.5 rs) a tangential boost of boostStrength times the radial
// term is added along the direction of motion. The sum is capped at MaxForce.
func (g Gravity) Geodesic(pos, vel, center r2.Vec, mass float64) r2.Vec {
	rel := r2.Sub(pos, center)
	radialDir, r := toward(pos, center)
	r = math.Max(r, g.MinDistance)

	rs := SchwarzschildRadius(mass)
	h := r2.Cross(rel, vel)
	radialMag := g.Multiplier * 1.5 * rs * h * h / (r * r * r * r)
	acc := r2.Scale(radialMag, radialDir)

	photonSphere := photonSphereFactor * rs
	if math.Abs(r-photonSphere) < boostBand*photonSphere {
		// Tangent perpendicular to the radial direction, oriented with the motion
		tangent := r2.Vec{X: -radialDir.Y, Y: radialDir.X}
		if r2.Dot(tangent, vel) < 0 {
			tangent = r2.Scale(-1, tangent)
		}
		acc = r2.Add(acc, r2.Scale(boostStrength*radialMag, tangent))
	}

	if n := r2.Norm(acc); n > g.MaxForce {
		acc = r2.Scale(g.MaxForce/n, acc)
	}
	return acc
}

// TimeDilation returns the dt scale 1/sqrt(1 - rs/r), clamped to maxTimeDilation.
// Inside rs the clamp value is returned.
func (g Gravity) TimeDilation(pos, center r2.Vec, mass float64) float64 {
	r := math.Max(r2.Norm(r2.Sub(pos, center)), g.MinDistance)
	k := 1 - SchwarzschildRadius(mass)/r
	if k <= 0 {
		return maxTimeDilation
	}
	return math.Min(1/math.Sqrt(k), maxTimeDilation)
}

// Acceleration dispatches on Model.
func (g Gravity) Acceleration(pos, vel, center r2.Vec, mass float64) r2.Vec {
	switch g.Model {
	case ModelDeflection:
		return g.Deflection(pos, vel, center, mass)
	case ModelGeodesic:
		return g.Geodesic(pos, vel, center, mass)
	default:
		return g.Force(pos, center, mass)
	}
}

// StepScale returns the dt multiplier for the model at pos (1 unless geodesic).
func (g Gravity) StepScale(pos, center r2.Vec, mass float64) float64 {
	if g.Model != ModelGeodesic {
		return 1
	}
	return g.TimeDilation(pos, center, mass)
}
