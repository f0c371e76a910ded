// Package components defines plain data shared between the ray engine and its hosts.
package components

import "gonum.org/v1/gonum/spatial/r2"

// BlackHole holds the point mass that bends the rays.
// Hosts mutate it between ticks; the engine only reads it.
type BlackHole struct {
	Position     r2.Vec
	Mass         float64
	EventHorizon float64 // absorption radius in world units
}

// PhotonRing returns the radius of the decorative photon ring drawn around the horizon.
func (b BlackHole) PhotonRing() float64 {
	return b.EventHorizon * 1.5
}

// Contains reports whether p lies strictly inside the event horizon.
func (b BlackHole) Contains(p r2.Vec) bool {
	return r2.Norm(r2.Sub(p, b.Position)) < b.EventHorizon
}
