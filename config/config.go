// Package config provides configuration loading and access for the engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Stability StabilityConfig `yaml:"stability"`
	Terrain   TerrainConfig   `yaml:"terrain"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds world geometry and environment settings.
type WorldConfig struct {
	CellSize    float64 `yaml:"cell_size"` // world units per cell edge
	OriginX     float64 `yaml:"origin_x"`  // world-space position of cell (0,0,0) corner
	OriginY     float64 `yaml:"origin_y"`
	OriginZ     float64 `yaml:"origin_z"`
	AmbientTemp float64 `yaml:"ambient_temp"` // kelvin
}

// PhysicsConfig holds simulation rates and limits. Rates are fractions per substep.
type PhysicsConfig struct {
	SubstepDT float64 `yaml:"substep_dt"` // seconds per pipeline pass

	ConductionRate  float64 `yaml:"conduction_rate"`   // base fraction of blended capacity per substep
	ConductionBoost float64 `yaml:"conduction_boost"`  // multiplier for pairs with |dT| above the boost threshold
	BoostThreshold  float64 `yaml:"boost_threshold"`   // kelvin
	MaxTransferFrac float64 `yaml:"max_transfer_frac"` // cap on donor energy moved per substep
	RefConductivity float64 `yaml:"ref_conductivity"`  // W/(m·K) scale for the conductivity blend

	RadiationRate float64 `yaml:"radiation_rate"` // fractional loss toward ambient per substep
	RadiationCap  float64 `yaml:"radiation_cap"`  // cap on cell energy radiated per substep

	FallFraction       float64 `yaml:"fall_fraction"`        // liquid moles moved down per substep
	SpreadFraction     float64 `yaml:"spread_fraction"`      // lateral equalization fraction per substep
	LiquidCellCapacity float64 `yaml:"liquid_cell_capacity"` // moles of liquid a cell accepts from above
	MinFlowMoles       float64 `yaml:"min_flow_moles"`       // transfers below this are skipped

	GasDiffusionRate float64 `yaml:"gas_diffusion_rate"` // fraction of the density difference per substep
	GasRiseRate      float64 `yaml:"gas_rise_rate"`      // upward bias per kelvin above ambient
	GasRiseCap       float64 `yaml:"gas_rise_cap"`       // cap on the upward bias fraction

	BoilMargin float64 `yaml:"boil_margin"` // kelvin past the boiling point before conversion starts
	PhaseRate  float64 `yaml:"phase_rate"`  // fraction of eligible moles converted per substep
}

// StabilityConfig holds equilibrium detection thresholds.
type StabilityConfig struct {
	StableTicks  int `yaml:"stable_ticks"`  // quiescent ticks before a chunk is marked stable
	DormantTicks int `yaml:"dormant_ticks"` // stable ticks before removal from the active list
}

// TerrainConfig holds height map generation and terrain fill parameters.
type TerrainConfig struct {
	Scale        float64 `yaml:"scale"` // noise frequency
	Octaves      int     `yaml:"octaves"`
	Lacunarity   float64 `yaml:"lacunarity"`
	Gain         float64 `yaml:"gain"`
	BaseHeight   int     `yaml:"base_height"`   // minimum column height in cells
	Amplitude    int     `yaml:"amplitude"`     // height variation in cells
	TopsoilDepth int     `yaml:"topsoil_depth"` // dirt layer thickness in cells
	RockMoles    float64 `yaml:"rock_moles"`    // moles of rock per filled cell
	DirtMoles    float64 `yaml:"dirt_moles"`    // moles of dirt per topsoil cell
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	WindowTicks int `yaml:"window_ticks"` // ticks per stats window
	PerfWindow  int `yaml:"perf_window"`  // samples retained per subsystem
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	InvCellSize float64 // 1 / World.CellSize
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

	cfg.computeDerived()

	return cfg, nil
}

// WriteYAML saves the configuration to a file.
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

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.World.CellSize > 0 {
		c.Derived.InvCellSize = 1 / c.World.CellSize
	}
}
