// Package config provides configuration loading and access for the particle engine.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrReserveCapacity is returned when the transient reserve cannot hold the
// worst-case number of concurrently live bursts.
var ErrReserveCapacity = errors.New("transient reserve smaller than concurrent burst demand")

// ErrReserveLayout is returned when the transient reserve reaches below the
// ambient background tail into shape regions.
var ErrReserveLayout = errors.New("transient reserve overlaps shape regions")

// Config holds all engine configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Particles ParticlesConfig `yaml:"particles"`
	Flower    FlowerConfig    `yaml:"flower"`
	Spiral    SpiralConfig    `yaml:"spiral"`
	Emblem    EmblemConfig    `yaml:"emblem"`
	Blend     BlendConfig     `yaml:"blend"`
	Bloom     BloomConfig     `yaml:"bloom"`
	Gesture   GestureConfig   `yaml:"gesture"`
	Burst     BurstConfig     `yaml:"burst"`
	Camera    CameraConfig    `yaml:"camera"`
	Parallel  ParallelConfig  `yaml:"parallel"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the viewer.
type ScreenConfig struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	TargetFPS  int `yaml:"target_fps"`
	DrawStride int `yaml:"draw_stride"` // Draw every Nth particle (1 = all)
}

// ParticlesConfig holds the index layout of the shared buffer.
type ParticlesConfig struct {
	Count              int     `yaml:"count"`               // Steady particles covered by every shape
	BackgroundFraction float64 `yaml:"background_fraction"` // Tail share of each shape given to ambient dust
	ReserveSize        int     `yaml:"reserve_size"`        // Transient reserve length
	ReserveStart       int     `yaml:"reserve_start"`       // -1 = last reserve_size indices of the steady range
}

// FlowerConfig holds Flower generator parameters.
type FlowerConfig struct {
	PodFraction    float64 `yaml:"pod_fraction"`
	PodRadius      float64 `yaml:"pod_radius"`
	Layers         int     `yaml:"layers"`
	PetalsPerLayer int     `yaml:"petals_per_layer"` // Innermost layer; each outer layer adds PetalStep
	PetalStep      int     `yaml:"petal_step"`
	InnerRadius    float64 `yaml:"inner_radius"`
	LayerGrowth    float64 `yaml:"layer_growth"` // Radius multiplier per layer
	Curvature      float64 `yaml:"curvature"`    // Upward cup of petals
	PetalWidth     float64 `yaml:"petal_width"`  // Angular half-width in petal slots
}

// SpiralConfig holds Spiral-Field generator parameters.
type SpiralConfig struct {
	CoreFraction float64 `yaml:"core_fraction"`
	ArmFraction  float64 `yaml:"arm_fraction"`
	Arms         int     `yaml:"arms"`
	CoreRadius   float64 `yaml:"core_radius"`
	Radius       float64 `yaml:"radius"`
	Pitch        float64 `yaml:"pitch"`      // Log-spiral growth per radian
	Turbulence   float64 `yaml:"turbulence"` // Noise displacement amplitude
	Thickness    float64 `yaml:"thickness"`
	SpinRate     float64 `yaml:"spin_rate"` // Radians per frame
}

// EmblemConfig holds Emblem generator parameters.
type EmblemConfig struct {
	CoreFraction      float64 `yaml:"core_fraction"`
	InnerRingFraction float64 `yaml:"inner_ring_fraction"`
	GlyphFraction     float64 `yaml:"glyph_fraction"`
	CoreRadius        float64 `yaml:"core_radius"`
	InnerRingRadius   float64 `yaml:"inner_ring_radius"`
	OuterRingRadius   float64 `yaml:"outer_ring_radius"`
	RingWidth         float64 `yaml:"ring_width"`
	GlyphPoints       int     `yaml:"glyph_points"` // Star polygon vertex count
	GlyphStep         int     `yaml:"glyph_step"`   // Star polygon vertex skip
	InnerBand         float64 `yaml:"inner_band"`   // Radius below which the inner spin applies
	OuterBand         float64 `yaml:"outer_band"`   // Radius above which the outer spin applies
	InnerSpin         float64 `yaml:"inner_spin"`   // Radians per frame
	MiddleSpin        float64 `yaml:"middle_spin"`
	OuterSpin         float64 `yaml:"outer_spin"`
}

// BlendConfig holds integrator parameters.
type BlendConfig struct {
	WeightSmoothing float64 `yaml:"weight_smoothing"` // Exponential smoothing factor per frame
	MinActive       float64 `yaml:"min_active"`       // Weight above which a shape's post-transform runs
	Dominance       float64 `yaml:"dominance"`        // Weight above which a shape dominates
	BaseDamping     float64 `yaml:"base_damping"`
	MaxDamping      float64 `yaml:"max_damping"`
	IdleEpsilon     float64 `yaml:"idle_epsilon"` // Bloom below this enables idle motion
	IdleAmplitude   float64 `yaml:"idle_amplitude"`
	IdleFrequency   float64 `yaml:"idle_frequency"` // Radians per frame
	PulseFrequency  float64 `yaml:"pulse_frequency"`
	PulseAmount     float64 `yaml:"pulse_amount"`
	ShimmerAmount   float64 `yaml:"shimmer_amount"`
	HoverRadius     float64 `yaml:"hover_radius"`
	HoverBoost      float64 `yaml:"hover_boost"`
	HoverJitter     float64 `yaml:"hover_jitter"`
}

// BloomConfig maps pinch distance to bloom.
type BloomConfig struct {
	PinchClosed float64 `yaml:"pinch_closed"` // Normalized pinch at which bloom is 0
	PinchOpen   float64 `yaml:"pinch_open"`   // Normalized pinch at which bloom is Max
	Max         float64 `yaml:"max"`
	Smoothing   float64 `yaml:"smoothing"`
	Spread      float64 `yaml:"spread"` // Radial scale gain at bloom 1
	Jitter      float64 `yaml:"jitter"`
}

// GestureConfig holds gesture predicate thresholds and debounce bounds.
type GestureConfig struct {
	CurlRatio     float64 `yaml:"curl_ratio"`     // tip-wrist < ratio * knuckle-wrist means curled
	SwordTipGap   float64 `yaml:"sword_tip_gap"`  // Max index/middle tip gap in hand sizes
	MergeDistance float64 `yaml:"merge_distance"` // Max palm-center gap in hand sizes
	PalmAlignment float64 `yaml:"palm_alignment"` // Min |cos| between palm normals
	MinScore      float64 `yaml:"min_score"`      // Hands below this confidence are ignored
	DebounceCap   int     `yaml:"debounce_cap"`
	DebounceEnter int     `yaml:"debounce_enter"` // Enter when counter exceeds this
	DebounceExit  int     `yaml:"debounce_exit"`  // Exit when counter drops below this
	PinchTrigger  float64 `yaml:"pinch_trigger"`  // Normalized pinch below this fires a burst
	PinchCooldown int     `yaml:"pinch_cooldown"` // Samples between pinch bursts per hand
}

// BurstConfig holds firework sizing and motion.
type BurstConfig struct {
	SparkCount    int     `yaml:"spark_count"`
	TrailLength   int     `yaml:"trail_length"`
	Lifetime      int     `yaml:"lifetime"` // Frames
	MinSpeed      float64 `yaml:"min_speed"`
	MaxSpeed      float64 `yaml:"max_speed"`
	Gravity       float64 `yaml:"gravity"`
	Drag          float64 `yaml:"drag"`
	MaxConcurrent int     `yaml:"max_concurrent"`
}

// CameraConfig holds the view used for raycasting and the viewer.
type CameraConfig struct {
	Eye    [3]float64 `yaml:"eye"`
	Target [3]float64 `yaml:"target"`
	FovY   float64    `yaml:"fov_y"` // Degrees
	Near   float64    `yaml:"near"`
	Far    float64    `yaml:"far"`
	PlaneZ float64    `yaml:"plane_z"` // Depth of the interaction plane

	// Viewer orbit spring
	OrbitFrequency float64 `yaml:"orbit_frequency"`
	OrbitDamping   float64 `yaml:"orbit_damping"`
	MaxYaw         float64 `yaml:"max_yaw"`   // Degrees
	MaxPitch       float64 `yaml:"max_pitch"` // Degrees
}

// ParallelConfig holds worker pool settings for the steady pass.
type ParallelConfig struct {
	Workers   int `yaml:"workers"`   // 0 = GOMAXPROCS
	Threshold int `yaml:"threshold"` // Below this particle count the pass runs inline
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // Frames per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ReserveStart  int // Resolved reserve start index
	ReserveEnd    int // One past the last reserve index
	BufferLen     int // max(Particles.Count, ReserveEnd)
	SlotsPerBurst int // SparkCount * (1 + TrailLength)
	Aspect        float32
}

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

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
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

	cfg.ComputeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ComputeDerived calculates values derived from loaded config.
// Call it again after mutating a Config in code.
func (c *Config) ComputeDerived() {
	start := c.Particles.ReserveStart
	if start < 0 {
		start = c.Particles.Count - c.Particles.ReserveSize
		if start < 0 {
			start = 0
		}
	}
	c.Derived.ReserveStart = start
	c.Derived.ReserveEnd = start + c.Particles.ReserveSize
	c.Derived.BufferLen = max(c.Particles.Count, c.Derived.ReserveEnd)
	c.Derived.SlotsPerBurst = c.Burst.SparkCount * (1 + c.Burst.TrailLength)

	c.Derived.Aspect = 1
	if c.Screen.Height > 0 {
		c.Derived.Aspect = float32(c.Screen.Width) / float32(c.Screen.Height)
	}
}

// Validate checks startup invariants. A reserve too small for the configured
// burst demand wraps ErrReserveCapacity; a reserve reaching into shape regions
// wraps ErrReserveLayout.
func (c *Config) Validate() error {
	p := c.Particles
	if p.Count < 1 {
		return fmt.Errorf("particles.count must be positive, got %d", p.Count)
	}
	if p.BackgroundFraction < 0 || p.BackgroundFraction >= 1 {
		return fmt.Errorf("particles.background_fraction must be in [0,1), got %g", p.BackgroundFraction)
	}
	if p.ReserveSize < 0 {
		return fmt.Errorf("particles.reserve_size must not be negative, got %d", p.ReserveSize)
	}

	b := c.Burst
	if b.SparkCount < 1 || b.TrailLength < 0 || b.Lifetime < 1 {
		return fmt.Errorf("burst sizing invalid: spark_count=%d trail_length=%d lifetime=%d",
			b.SparkCount, b.TrailLength, b.Lifetime)
	}
	if b.MaxConcurrent < 1 {
		return fmt.Errorf("burst.max_concurrent must be positive, got %d", b.MaxConcurrent)
	}
	demand := b.MaxConcurrent * c.Derived.SlotsPerBurst
	if p.ReserveSize < demand {
		return fmt.Errorf("%w: reserve_size=%d < max_concurrent(%d) x slots_per_burst(%d)",
			ErrReserveCapacity, p.ReserveSize, b.MaxConcurrent, c.Derived.SlotsPerBurst)
	}

	// Inside the steady range the reserve may only borrow background particles.
	if start := c.Derived.ReserveStart; start < p.Count {
		if bgStart := p.Count - BackgroundCount(p.Count, p.BackgroundFraction); start < bgStart {
			return fmt.Errorf("%w: reserve starts at %d, background starts at %d",
				ErrReserveLayout, start, bgStart)
		}
	}

	for name, v := range map[string]float64{
		"blend.weight_smoothing": c.Blend.WeightSmoothing,
		"blend.base_damping":     c.Blend.BaseDamping,
		"blend.max_damping":      c.Blend.MaxDamping,
		"bloom.smoothing":        c.Bloom.Smoothing,
	} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%s must be in (0,1], got %g", name, v)
		}
	}
	if c.Bloom.PinchOpen <= c.Bloom.PinchClosed {
		return fmt.Errorf("bloom.pinch_open (%g) must exceed bloom.pinch_closed (%g)",
			c.Bloom.PinchOpen, c.Bloom.PinchClosed)
	}

	g := c.Gesture
	if !(0 <= g.DebounceExit && g.DebounceExit < g.DebounceEnter && g.DebounceEnter <= g.DebounceCap) {
		return fmt.Errorf("gesture debounce bounds invalid: exit=%d enter=%d cap=%d",
			g.DebounceExit, g.DebounceEnter, g.DebounceCap)
	}
	return nil
}

// BackgroundCount is the number of ambient background particles at the tail
// of a steady range of n particles.
func BackgroundCount(n int, fraction float64) int {
	return int(float64(n) * fraction)
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
