// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	BlackHole  BlackHoleConfig  `yaml:"blackhole"`
	Gravity    GravityConfig    `yaml:"gravity"`
	Ray        RayConfig        `yaml:"ray"`
	Spawn      SpawnConfig      `yaml:"spawn"`
	LightField LightFieldConfig `yaml:"lightfield"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Terminal   TerminalConfig   `yaml:"terminal"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the world extents used for spawning and visibility.
type WorldConfig struct {
	HalfExtent        float64 `yaml:"half_extent"`
	VisibilityRadius  float64 `yaml:"visibility_radius"`
	VisibleHalfExtent float64 `yaml:"visible_half_extent"`
	VisibilitySamples int     `yaml:"visibility_samples"`
}

// BlackHoleConfig holds the initial black hole parameters.
type BlackHoleConfig struct {
	X            float64 `yaml:"x"`
	Y            float64 `yaml:"y"`
	Mass         float64 `yaml:"mass"`
	EventHorizon float64 `yaml:"event_horizon"`
	MoveSpeed    float64 `yaml:"move_speed"` // world units per second
}

// GravityConfig holds the initial gravity tunables.
type GravityConfig struct {
	Model       string  `yaml:"model"` // newtonian, deflection, geodesic
	Multiplier  float64 `yaml:"multiplier"`
	MaxForce    float64 `yaml:"max_force"`
	Exponent    float64 `yaml:"exponent"`
	MinDistance float64 `yaml:"min_distance"`
}

// RayConfig holds per-ray integration and reset parameters.
type RayConfig struct {
	Speed             float64 `yaml:"speed"`
	SegmentCount      int     `yaml:"segment_count"`
	TrailScale        int     `yaml:"trail_scale"` // capacity = SegmentCount * TrailScale
	MinSegmentSpacing float64 `yaml:"min_segment_spacing"`
	SeedPoints        int     `yaml:"seed_points"`
	SeedSpacing       float64 `yaml:"seed_spacing"`
	PositionJitter    float64 `yaml:"position_jitter"`
	AngleJitter       float64 `yaml:"angle_jitter"`
	RespawnDelay      float64 `yaml:"respawn_delay"`  // seconds absorbed before reset
	AbsorbDamping     float64 `yaml:"absorb_damping"` // velocity scale applied on absorption
}

// SpawnConfig holds batch spawning and capacity parameters.
type SpawnConfig struct {
	Pattern           string  `yaml:"pattern"`   // left_edge, four_edge, radial, spiral
	Lifecycle         string  `yaml:"lifecycle"` // reset, prune
	BatchSize         int     `yaml:"batch_size"`
	Interval          float64 `yaml:"interval"` // seconds between batches
	MaxRays           int     `yaml:"max_rays"`
	RadialRadius      float64 `yaml:"radial_radius"`
	SpiralStartRadius float64 `yaml:"spiral_start_radius"`
	SpiralEndRadius   float64 `yaml:"spiral_end_radius"`
	SpiralAngleStep   float64 `yaml:"spiral_angle_step"`
	Workers           int     `yaml:"workers"` // 0 = GOMAXPROCS
}

// LightFieldConfig holds the density overlay parameters.
type LightFieldConfig struct {
	Enabled          bool    `yaml:"enabled"`
	Size             int     `yaml:"size"`
	WorldSize        float64 `yaml:"world_size"`
	Decay            float64 `yaml:"decay"`
	MaxBrightness    float64 `yaml:"max_brightness"`
	Floor            float64 `yaml:"floor"`
	SegmentIntensity float64 `yaml:"segment_intensity"`
	ReferenceTick    float64 `yaml:"reference_tick"` // dt at which one Update applies Decay exactly once
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// TerminalConfig holds settings for the terminal host.
type TerminalConfig struct {
	FrameMs int     `yaml:"frame_ms"`
	Sound   bool    `yaml:"sound"`
	BlipHz  float64 `yaml:"blip_hz"`
	BlipMs  int     `yaml:"blip_ms"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32     float32 // Screen.Width as float32
	ScreenH32     float32 // Screen.Height as float32
	TrailCapacity int     // Ray.SegmentCount * Ray.TrailScale
	Pattern       string  // normalized Spawn.Pattern
	Lifecycle     string  // normalized Spawn.Lifecycle
	GravityModel  string  // normalized Gravity.Model
}

var (
	validPatterns   = []string{"left_edge", "four_edge", "radial", "spiral"}
	validLifecycles = []string{"reset", "prune"}
	validModels     = []string{"newtonian", "deflection", "geodesic"}
)

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clone returns a deep copy suitable for independent mutation (e.g. per-evaluation overrides).
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Recompute refreshes derived values after fields were changed in code.
func (c *Config) Recompute() error {
	return c.computeDerived()
}

// computeDerived validates enumerations and calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	scale := c.Ray.TrailScale
	if scale < 1 {
		scale = 1
	}
	c.Derived.TrailCapacity = c.Ray.SegmentCount * scale
	if c.Derived.TrailCapacity < 2 {
		c.Derived.TrailCapacity = 2
	}

	var err error
	if c.Derived.Pattern, err = oneOf("spawn.pattern", c.Spawn.Pattern, validPatterns); err != nil {
		return err
	}
	if c.Derived.Lifecycle, err = oneOf("spawn.lifecycle", c.Spawn.Lifecycle, validLifecycles); err != nil {
		return err
	}
	if c.Derived.GravityModel, err = oneOf("gravity.model", c.Gravity.Model, validModels); err != nil {
		return err
	}
	return nil
}

// oneOf normalizes value and checks it against the allowed names.
func oneOf(field, value string, allowed []string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid %s %q (want one of %s)", field, value, strings.Join(allowed, ", "))
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
