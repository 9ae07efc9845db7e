// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Field      FieldConfig      `yaml:"field"`
	Agent      AgentConfig      `yaml:"agent"`
	Simulation SimulationConfig `yaml:"simulation"`
	Output     OutputConfig     `yaml:"output"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
	Screen     ScreenConfig     `yaml:"screen"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// FieldConfig holds the scalar grid dimensions.
type FieldConfig struct {
	Radius     int     `yaml:"radius"`     // Grid half-width in cells (side = 2*radius+1)
	Resolution float64 `yaml:"resolution"` // World units spanned by one cell
}

// AgentConfig holds ant parameters.
type AgentConfig struct {
	Speed float64 `yaml:"speed"` // World units per unit time
}

// SimulationConfig holds tick parameters.
type SimulationConfig struct {
	Timestep      float64 `yaml:"timestep"`        // Simulated time per tick
	ScanHalfWidth float64 `yaml:"scan_half_width"` // Half-width of the per-tick update box, world units
}

// OutputConfig holds frame output parameters.
type OutputConfig struct {
	Dir       string `yaml:"dir"`        // Directory for frame files
	Prefix    string `yaml:"prefix"`     // File name prefix
	Digits    int    `yaml:"digits"`     // Minimum zero-padded width of the tick index
	Workers   int    `yaml:"workers"`    // Frame writer goroutines (0 = GOMAXPROCS)
	QueueSize int    `yaml:"queue_size"` // Buffered frames awaiting a writer
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsEvery int `yaml:"stats_every"` // Ticks between field stats records (0 disables)
	PerfWindow int `yaml:"perf_window"` // Ticks averaged per perf record
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Format string `yaml:"format"` // "text" or "json"
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
}

// ScreenConfig holds live viewer settings.
type ScreenConfig struct {
	Width         int `yaml:"width"`
	Height        int `yaml:"height"`
	TargetFPS     int `yaml:"target_fps"`
	StepsPerFrame int `yaml:"steps_per_frame"` // Ticks between viewer redraws
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Side     int        // 2*Field.Radius + 1
	Extent   float64    // Half-width of the grid in world units
	LogLevel slog.Level // Parsed Logging.Level
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
	cfg, err := Parse(nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse overlays data on the embedded defaults, validates the result and
// computes derived values. A nil or empty data yields the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Unmarshal into same struct - only overwrites fields present in data
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Field.Radius < 0 {
		return fmt.Errorf("%w: field.radius must be >= 0, got %d", ErrInvalid, c.Field.Radius)
	}
	if !(c.Field.Resolution > 0) || math.IsInf(c.Field.Resolution, 0) {
		return fmt.Errorf("%w: field.resolution must be positive, got %v", ErrInvalid, c.Field.Resolution)
	}
	if c.Agent.Speed < 0 {
		return fmt.Errorf("%w: agent.speed must be >= 0, got %v", ErrInvalid, c.Agent.Speed)
	}
	if c.Simulation.Timestep < 0 {
		return fmt.Errorf("%w: simulation.timestep must be >= 0, got %v", ErrInvalid, c.Simulation.Timestep)
	}
	// The linear falloff reaches 1 world unit; a narrower box would truncate it.
	if c.Simulation.ScanHalfWidth <= 1 {
		return fmt.Errorf("%w: simulation.scan_half_width must exceed the falloff reach of 1, got %v",
			ErrInvalid, c.Simulation.ScanHalfWidth)
	}
	if c.Output.Digits < 1 {
		return fmt.Errorf("%w: output.digits must be >= 1, got %d", ErrInvalid, c.Output.Digits)
	}
	if c.Output.Workers < 0 || c.Output.QueueSize < 0 {
		return fmt.Errorf("%w: output.workers and output.queue_size must be >= 0", ErrInvalid)
	}
	if c.Telemetry.StatsEvery < 0 {
		return fmt.Errorf("%w: telemetry.stats_every must be >= 0, got %d", ErrInvalid, c.Telemetry.StatsEvery)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: logging.format must be text or json, got %q", ErrInvalid, c.Logging.Format)
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalid, err)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Side = 2*c.Field.Radius + 1
	c.Derived.Extent = (float64(c.Field.Radius) + 0.5) * c.Field.Resolution

	// Already checked by Validate
	_ = c.Derived.LogLevel.UnmarshalText([]byte(c.Logging.Level))

	if c.Telemetry.PerfWindow < 1 {
		c.Telemetry.PerfWindow = 100
	}
	if c.Screen.StepsPerFrame < 1 {
		c.Screen.StepsPerFrame = 1
	}
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
