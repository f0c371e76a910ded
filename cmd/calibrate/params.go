package main

import (
	"fmt"
	"strings"

	"github.com/pthm-cable/lensing/config"
	"github.com/pthm-cable/lensing/systems"
)

// ParamSpec defines a single calibratable parameter.
type ParamSpec struct {
	Name string  // flag and log name
	Path string  // config path for logging
	Min  float64 // lower bound
	Max  float64 // upper bound

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

var knownParams = []ParamSpec{
	{
		Name: "multiplier", Path: "gravity.multiplier",
		Min: systems.MinMultiplier, Max: systems.MaxMultiplier,
		get: func(c *config.Config) float64 { return c.Gravity.Multiplier },
		set: func(c *config.Config, v float64) { c.Gravity.Multiplier = v },
	},
	{
		Name: "mass", Path: "blackhole.mass",
		Min: 0.1, Max: 5.0,
		get: func(c *config.Config) float64 { return c.BlackHole.Mass },
		set: func(c *config.Config, v float64) { c.BlackHole.Mass = v },
	},
	{
		Name: "max_force", Path: "gravity.max_force",
		Min: systems.MinMaxForce, Max: systems.MaxMaxForce,
		get: func(c *config.Config) float64 { return c.Gravity.MaxForce },
		set: func(c *config.Config, v float64) { c.Gravity.MaxForce = v },
	},
	{
		Name: "exponent", Path: "gravity.exponent",
		Min: systems.MinExponent, Max: systems.MaxExponent,
		get: func(c *config.Config) float64 { return c.Gravity.Exponent },
		set: func(c *config.Config, v float64) { c.Gravity.Exponent = v },
	},
}

// ParamVector holds the parameters being searched, in order.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector selects parameters by comma-separated name.
func NewParamVector(names string) (*ParamVector, error) {
	pv := &ParamVector{}
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		spec, ok := lookupParam(name)
		if !ok {
			return nil, fmt.Errorf("unknown parameter %q", name)
		}
		pv.Specs = append(pv.Specs, spec)
	}
	if len(pv.Specs) == 0 {
		return nil, fmt.Errorf("no parameters selected")
	}
	return pv, nil
}

func lookupParam(name string) (ParamSpec, bool) {
	for _, spec := range knownParams {
		if spec.Name == name {
			return spec, true
		}
	}
	return ParamSpec{}, false
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}
