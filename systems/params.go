package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/lensing/components"
	"github.com/pthm-cable/lensing/config"
)

// RayParamsFromConfig builds ray parameters from the loaded config.
func RayParamsFromConfig(cfg *config.Config) RayParams {
	return RayParams{
		VisibilityRadius:  cfg.World.VisibilityRadius,
		VisibleHalfExtent: cfg.World.VisibleHalfExtent,
		VisibilitySamples: cfg.World.VisibilitySamples,
		MinSegmentSpacing: cfg.Ray.MinSegmentSpacing,
		SeedPoints:        cfg.Ray.SeedPoints,
		SeedSpacing:       cfg.Ray.SeedSpacing,
		PositionJitter:    cfg.Ray.PositionJitter,
		AngleJitter:       cfg.Ray.AngleJitter,
		RespawnDelay:      cfg.Ray.RespawnDelay,
		AbsorbDamping:     cfg.Ray.AbsorbDamping,
	}
}

// SpawnParamsFromConfig builds pattern geometry from the loaded config.
func SpawnParamsFromConfig(cfg *config.Config) SpawnParams {
	return SpawnParams{
		HalfExtent:        cfg.World.HalfExtent,
		RadialRadius:      cfg.Spawn.RadialRadius,
		SpiralStartRadius: cfg.Spawn.SpiralStartRadius,
		SpiralEndRadius:   cfg.Spawn.SpiralEndRadius,
		SpiralAngleStep:   cfg.Spawn.SpiralAngleStep,
	}
}

// FieldParamsFromConfig builds field settings from the loaded config.
// The lifecycle name has already been validated by config.Load.
func FieldParamsFromConfig(cfg *config.Config) FieldParams {
	lc, _ := ParseLifecycle(cfg.Derived.Lifecycle)
	return FieldParams{
		BatchSize:     cfg.Spawn.BatchSize,
		SpawnInterval: cfg.Spawn.Interval,
		MaxRays:       cfg.Spawn.MaxRays,
		Speed:         cfg.Ray.Speed,
		TrailCapacity: cfg.Derived.TrailCapacity,
		Lifecycle:     lc,
		Workers:       cfg.Spawn.Workers,
	}
}

// LightFieldParamsFromConfig builds grid settings from the loaded config.
func LightFieldParamsFromConfig(cfg *config.Config) LightFieldParams {
	lf := cfg.LightField
	return LightFieldParams{
		Size:          lf.Size,
		WorldSize:     lf.WorldSize,
		Decay:         lf.Decay,
		MaxBrightness: lf.MaxBrightness,
		Floor:         lf.Floor,
		ReferenceTick: lf.ReferenceTick,
	}
}

// GravityFromConfig builds gravity tunables from the loaded config, clamped to their ranges.
func GravityFromConfig(cfg *config.Config) Gravity {
	model, _ := ParseGravityModel(cfg.Derived.GravityModel)
	g := Gravity{Model: model}
	g.SetMultiplier(cfg.Gravity.Multiplier)
	g.SetMaxForce(cfg.Gravity.MaxForce)
	g.SetExponent(cfg.Gravity.Exponent)
	g.SetMinDistance(cfg.Gravity.MinDistance)
	return g
}

// BlackHoleFromConfig returns the initial black hole.
func BlackHoleFromConfig(cfg *config.Config) components.BlackHole {
	return components.BlackHole{
		Position:     r2.Vec{X: cfg.BlackHole.X, Y: cfg.BlackHole.Y},
		Mass:         cfg.BlackHole.Mass,
		EventHorizon: cfg.BlackHole.EventHorizon,
	}
}
