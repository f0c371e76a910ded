package sim

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/lensing/systems"
)

// Param identifies a continuously adjustable tunable.
type Param uint8

const (
	ParamMass Param = iota
	ParamHorizon
	ParamSpeed
	ParamMultiplier
	ParamMaxForce
	ParamExponent
)

// Params lists every tunable in display order.
var Params = []Param{ParamMass, ParamHorizon, ParamSpeed, ParamMultiplier, ParamMaxForce, ParamExponent}

type paramSpec struct {
	name   string
	label  string
	rate   float64 // change per second of held input
	lo, hi float64
}

var paramSpecs = [...]paramSpec{
	ParamMass:       {"mass", "Mass", 0.6, 0.1, 5.0},
	ParamHorizon:    {"event_horizon", "Horizon", 0.12, 0.05, 0.3},
	ParamSpeed:      {"light_speed", "Light speed", 0.3, 0.05, 1.0},
	ParamMultiplier: {"multiplier", "Gravity x", 1.2, systems.MinMultiplier, systems.MaxMultiplier},
	ParamMaxForce:   {"max_force", "Max force", 30, systems.MinMaxForce, systems.MaxMaxForce},
	ParamExponent:   {"exponent", "Exponent", 3, systems.MinExponent, systems.MaxExponent},
}

// String returns the snake_case name used in logs.
func (p Param) String() string { return paramSpecs[p].name }

// Label returns a short human-readable name.
func (p Param) Label() string { return paramSpecs[p].label }

// Range returns the inclusive bounds of the tunable.
func (p Param) Range() (lo, hi float64) { return paramSpecs[p].lo, paramSpecs[p].hi }

// Value returns the current value of p.
func (s *Simulation) Value(p Param) float64 {
	switch p {
	case ParamMass:
		return s.hole.Mass
	case ParamHorizon:
		return s.hole.EventHorizon
	case ParamSpeed:
		return s.field.Speed()
	case ParamMultiplier:
		return s.gravity.GetMultiplier()
	case ParamMaxForce:
		return s.gravity.GetMaxForce()
	case ParamExponent:
		return s.gravity.GetExponent()
	}
	return 0
}

// SetValue sets p, clamped to its range.
func (s *Simulation) SetValue(p Param, v float64) {
	lo, hi := p.Range()
	v = min(max(v, lo), hi)

	switch p {
	case ParamMass:
		s.hole.Mass = v
	case ParamHorizon:
		s.hole.EventHorizon = v
	case ParamSpeed:
		s.field.SetSpeed(v)
	case ParamMultiplier:
		s.gravity.SetMultiplier(v)
	case ParamMaxForce:
		s.gravity.SetMaxForce(v)
	case ParamExponent:
		s.gravity.SetExponent(v)
	default:
		return
	}
	slog.Debug("param_changed", "param", p.String(), "value", s.Value(p))
}

// Nudge moves p in direction dir (+1 or -1) for dt seconds of held input.
func (s *Simulation) Nudge(p Param, dir, dt float64) {
	s.SetValue(p, s.Value(p)+dir*paramSpecs[p].rate*dt)
}

// MoveHole moves the black hole along (dx, dy) at the configured speed for dt seconds.
func (s *Simulation) MoveHole(dx, dy, dt float64) {
	step := s.cfg.BlackHole.MoveSpeed * dt
	s.hole.Position = r2.Add(s.hole.Position, r2.Vec{X: dx * step, Y: dy * step})
}

// SetHolePosition places the black hole at p.
func (s *Simulation) SetHolePosition(p r2.Vec) { s.hole.Position = p }

// SetPattern switches the spawn pattern and restarts the field with one fresh
// batch. Selecting the current pattern restarts it too.
func (s *Simulation) SetPattern(p systems.SpawnPattern) {
	s.field.SetPattern(p)
	slog.Info("spawn_pattern_changed", "pattern", p.String())
}

// CycleModel switches to the next gravity model.
func (s *Simulation) CycleModel() {
	s.gravity.Model = s.gravity.Model.Next()
	slog.Info("gravity_model_changed", "model", s.gravity.Model.String())
}

// ToggleLightField turns segment accumulation on or off. Turning it off clears the grid.
func (s *Simulation) ToggleLightField() {
	s.lightEnabled = !s.lightEnabled
	if !s.lightEnabled {
		s.grid.Clear()
	}
	slog.Info("light_field_toggled", "enabled", s.lightEnabled)
}

// Reset returns the black hole to its starting position and respawns the rays.
// Mass, horizon, light speed and gravity tunables are kept.
func (s *Simulation) Reset() {
	s.hole.Position = s.home
	s.field.Reset()
	s.grid.Clear()
	slog.Info("simulation_reset",
		"mass", s.hole.Mass,
		"event_horizon", s.hole.EventHorizon,
		"light_speed", s.field.Speed(),
	)
}

// LogParams logs every tunable in effect.
func (s *Simulation) LogParams() {
	attrs := make([]any, 0, 2*len(Params)+10)
	for _, p := range Params {
		attrs = append(attrs, p.String(), s.Value(p))
	}
	attrs = append(attrs,
		"photon_ring", s.hole.PhotonRing(),
		"gravity_model", s.gravity.Model.String(),
		"pattern", s.field.Pattern().String(),
		"rays", s.field.Count(),
		"light_field", s.lightEnabled,
	)
	slog.Info("parameters", attrs...)
}
