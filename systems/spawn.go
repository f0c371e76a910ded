package systems

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
)

// SpawnPattern selects how a batch of rays is laid out.
type SpawnPattern uint8

const (
	PatternLeftEdge SpawnPattern = iota
	PatternFourEdge
	PatternRadial
	PatternSpiral
)

var patternNames = [...]string{"left_edge", "four_edge", "radial", "spiral"}

func (p SpawnPattern) String() string {
	if int(p) < len(patternNames) {
		return patternNames[p]
	}
	return fmt.Sprintf("SpawnPattern(%d)", p)
}

// ParsePattern maps a config name to a pattern.
func ParsePattern(name string) (SpawnPattern, error) {
	for i, n := range patternNames {
		if n == name {
			return SpawnPattern(i), nil
		}
	}
	return PatternLeftEdge, fmt.Errorf("unknown spawn pattern %q", name)
}

// Spawn jitter ranges shared by every pattern.
const (
	spawnPosJitter   = 0.02
	spawnAngleJitter = 0.01
	spawnAimJitter   = 0.02 // radial and spiral aim noise
	scaleJitterLow   = 0.95 // speed and radial radius scale
	scaleJitterHigh  = 1.05
)

// SpawnParams holds the pattern geometry.
type SpawnParams struct {
	HalfExtent        float64 // edge patterns spawn on x or y = +/- HalfExtent
	RadialRadius      float64
	SpiralStartRadius float64
	SpiralEndRadius   float64
	SpiralAngleStep   float64 // radians advanced per spiral ray
}

// DefaultSpawnParams returns the default pattern geometry.
func DefaultSpawnParams() SpawnParams {
	return SpawnParams{
		HalfExtent:        2.0,
		RadialRadius:      2.5,
		SpiralStartRadius: 2.5,
		SpiralEndRadius:   2.0,
		SpiralAngleStep:   0.1,
	}
}

// Spawner generates batches of rays for the active pattern. Only the spiral
// pattern carries state between batches (its current angle).
type Spawner struct {
	pattern SpawnPattern
	geom    SpawnParams
	rays    RayParams

	spiralAngle float64

	rng *rand.Rand
}

// NewSpawner creates a spawner. seed drives both the batch jitter and the
// seeds handed to each ray's private source.
func NewSpawner(pattern SpawnPattern, geom SpawnParams, rays RayParams, seed uint64) *Spawner {
	return &Spawner{
		pattern: pattern,
		geom:    geom,
		rays:    rays,
		rng:     rand.New(rand.NewPCG(seed, seed+1)),
	}
}

// Pattern returns the active pattern.
func (s *Spawner) Pattern() SpawnPattern { return s.pattern }

// SetPattern switches the pattern. Rays already spawned are unaffected.
func (s *Spawner) SetPattern(p SpawnPattern) { s.pattern = p }

// SpiralAngle returns the angle the next spiral ray starts at.
func (s *Spawner) SpiralAngle() float64 { return s.spiralAngle }

// CreateBatch returns exactly count rays (none when count <= 0).
func (s *Spawner) CreateBatch(count int, speed float64, capacity int) []*Ray {
	if count <= 0 {
		return nil
	}
	emitters := make([]Emitter, 0, count)
	switch s.pattern {
	case PatternFourEdge:
		emitters = s.fourEdge(emitters, count)
	case PatternRadial:
		emitters = s.radial(emitters, count)
	case PatternSpiral:
		emitters = s.spiral(emitters, count)
	default:
		emitters = s.leftEdge(emitters, count)
	}

	rays := make([]*Ray, len(emitters))
	for i, e := range emitters {
		e.Speed = speed * s.uniform(scaleJitterLow, scaleJitterHigh)
		rays[i] = NewRay(e, capacity, s.rays, s.rng.Uint64())
	}
	return rays
}

func (s *Spawner) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *Spawner) noise(amount float64) float64 {
	return s.uniform(-amount, amount)
}

func (s *Spawner) leftEdge(dst []Emitter, count int) []Emitter {
	e := s.geom.HalfExtent
	spacing := 2 * e / float64(count)
	for i := range count {
		y := -e + spacing*float64(i) + spacing/2 + s.noise(spawnPosJitter)
		dst = append(dst, Emitter{
			Position: r2.Vec{X: -e, Y: y},
			Angle:    s.noise(spawnAngleJitter),
		})
	}
	return dst
}

// edge describes one side of the four-edge pattern.
type edge struct {
	fixed    r2.Vec // position with the varying axis at zero
	vertical bool   // rays are spread along y
	angle    float64
}

func (s *Spawner) fourEdge(dst []Emitter, count int) []Emitter {
	e := s.geom.HalfExtent
	edges := [4]edge{
		{fixed: r2.Vec{X: -e}, vertical: true, angle: 0},            // left, moving right
		{fixed: r2.Vec{X: e}, vertical: true, angle: math.Pi},       // right, moving left
		{fixed: r2.Vec{Y: e}, vertical: false, angle: -math.Pi / 2}, // top, moving down
		{fixed: r2.Vec{Y: -e}, vertical: false, angle: math.Pi / 2}, // bottom, moving up
	}

	per, remainder := count/4, count%4
	for k, ed := range edges {
		n := per
		if k < remainder {
			n++
		}
		if n == 0 {
			continue
		}
		spacing := 2 * e / float64(n+1)
		for i := range n {
			offset := -e + spacing*float64(i+1) + s.noise(spawnPosJitter)
			pos := ed.fixed
			if ed.vertical {
				pos.Y = offset
			} else {
				pos.X = offset
			}
			dst = append(dst, Emitter{Position: pos, Angle: ed.angle + s.noise(spawnAngleJitter)})
		}
	}
	return dst
}

func (s *Spawner) radial(dst []Emitter, count int) []Emitter {
	for i := range count {
		angle := 2 * math.Pi * float64(i) / float64(count)
		r := s.geom.RadialRadius * s.uniform(scaleJitterLow, scaleJitterHigh)
		dst = append(dst, Emitter{
			Position: fromAngle(angle, r),
			Angle:    angle + math.Pi + s.noise(spawnAimJitter),
		})
	}
	return dst
}

func (s *Spawner) spiral(dst []Emitter, count int) []Emitter {
	g := s.geom
	for i := range count {
		t := float64(i) / float64(count)
		r := g.SpiralStartRadius + (g.SpiralEndRadius-g.SpiralStartRadius)*t
		dst = append(dst, Emitter{
			Position: fromAngle(s.spiralAngle, r),
			Angle:    s.spiralAngle + math.Pi + s.noise(spawnAimJitter),
		})
		s.spiralAngle = normalizeHeading(s.spiralAngle + g.SpiralAngleStep)
	}
	return dst
}
