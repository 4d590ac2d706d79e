// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Physics    PhysicsConfig    `yaml:"physics"`
	World      WorldConfig      `yaml:"world"`
	Terrain    TerrainConfig    `yaml:"terrain"`
	Drone      DroneConfig      `yaml:"drone"`
	Zones      ZonesConfig      `yaml:"zones"`
	Pursuit    PursuitConfig    `yaml:"pursuit"`
	Flocking   FlockingConfig   `yaml:"flocking"`
	Weapons    WeaponsConfig    `yaml:"weapons"`
	Player     PlayerConfig     `yaml:"player"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the debug view.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds simulation stepping parameters.
type PhysicsConfig struct {
	DT           float64 `yaml:"dt"`             // Seconds per tick
	GridCellSize float64 `yaml:"grid_cell_size"` // Spatial grid cell size in meters
	AccelRate    float64 `yaml:"accel_rate"`     // Velocity approach rate toward desired (1/s)
}

// WorldConfig holds chunk streaming parameters.
type WorldConfig struct {
	ChunkSize          float64 `yaml:"chunk_size"`           // Chunk edge length in meters
	LoadRadiusChunks   int     `yaml:"load_radius_chunks"`   // Square window half-width for loading
	UnloadRadiusChunks int     `yaml:"unload_radius_chunks"` // Must exceed load radius (hysteresis)
	TreesPerChunkMin   int     `yaml:"trees_per_chunk_min"`
	TreesPerChunkMax   int     `yaml:"trees_per_chunk_max"`
	RocksPerChunkMin   int     `yaml:"rocks_per_chunk_min"`
	RocksPerChunkMax   int     `yaml:"rocks_per_chunk_max"`
	VillageChance      float64 `yaml:"village_chance"`       // Probability per chunk [0,1]
	PatrolChance       float64 `yaml:"patrol_chance"`        // Probability per chunk [0,1]
	PatrolSizeMin      int     `yaml:"patrol_size_min"`
	PatrolSizeMax      int     `yaml:"patrol_size_max"`
	KamikazeChance     float64 `yaml:"kamikaze_chance"`      // Per patrol member
	TurretsPerVillage  int     `yaml:"turrets_per_village"`   // Emplacements guarding each village
	HazardsPerChunkMax int     `yaml:"hazards_per_chunk_max"`
	HazardAltitudeMin  float64 `yaml:"hazard_altitude_min"`
	HazardAltitudeMax  float64 `yaml:"hazard_altitude_max"`
	HazardRadiusMin    float64 `yaml:"hazard_radius_min"`
	HazardRadiusMax    float64 `yaml:"hazard_radius_max"`
	PatrolAltitude     float64 `yaml:"patrol_altitude"`      // Spawn height above chunk center
}

// TerrainConfig holds ground height generation parameters.
type TerrainConfig struct {
	Amplitudes  []float64 `yaml:"amplitudes"`  // Per-octave amplitude
	Wavelengths []float64 `yaml:"wavelengths"` // Per-octave wavelength in meters
	MinHeight   float64   `yaml:"min_height"`
	MaxHeight   float64   `yaml:"max_height"`
}

// DroneConfig holds per-agent parameters.
type DroneConfig struct {
	Health        float64 `yaml:"health"`
	CruiseSpeed   float64 `yaml:"cruise_speed"`    // m/s before zone multiplier
	LeashDistance float64 `yaml:"leash_distance"`  // Despawn beyond this distance from player
	KamikazeRange float64 `yaml:"kamikaze_range"`  // Proximity detonation distance
	HitDamage     float64 `yaml:"hit_damage"`      // Damage per incoming gun hit
	InitialWave   int     `yaml:"initial_wave"`    // Opening swarm size
}

// ZonesConfig holds engagement zone distance thresholds and speed multipliers.
// Zone order from far to near: warp, sprint, combat, attack, danger.
type ZonesConfig struct {
	WarpDistance   float64 `yaml:"warp_distance"`   // Beyond this: warp pursuit
	SprintDistance float64 `yaml:"sprint_distance"` // Beyond this: sprint
	CombatDistance float64 `yaml:"combat_distance"` // Beyond this: combat maneuvering
	AttackDistance float64 `yaml:"attack_distance"` // Beyond this: attack/aim; below: danger

	// The danger multiplier intentionally exceeds the attack multiplier:
	// point-blank drones accelerate away rather than stalling on the player.
	WarpMultiplier   float64 `yaml:"warp_multiplier"`
	SprintMultiplier float64 `yaml:"sprint_multiplier"`
	CombatMultiplier float64 `yaml:"combat_multiplier"`
	AttackMultiplier float64 `yaml:"attack_multiplier"`
	DangerMultiplier float64 `yaml:"danger_multiplier"`
}

// PursuitConfig holds intercept targeting parameters.
type PursuitConfig struct {
	LookaheadSec float64 `yaml:"lookahead_sec"` // Player position extrapolation time
}

// FlockingConfig holds swarm cohesion and avoidance parameters.
type FlockingConfig struct {
	NeighborRadius   float64 `yaml:"neighbor_radius"`
	SeparationRadius float64 `yaml:"separation_radius"`
	SeparationWeight float64 `yaml:"separation_weight"`
	AlignmentWeight  float64 `yaml:"alignment_weight"`
	CohesionWeight   float64 `yaml:"cohesion_weight"`
	LeaderWeight     float64 `yaml:"leader_weight"`    // Extra cohesion toward the patrol leader
	AvoidRadius      float64 `yaml:"avoid_radius"`     // Hazard repulsion radius
	AvoidWeight      float64 `yaml:"avoid_weight"`     // Repulsion gain at zero distance
	WeaveAmplitude   float64 `yaml:"weave_amplitude"`  // 0 disables the weave term
	WeaveFrequency   float64 `yaml:"weave_frequency"`  // Radians per second
}

// WeaponConfig holds gating parameters for a single weapon type.
type WeaponConfig struct {
	CooldownSec float64 `yaml:"cooldown_sec"`
	MinRange    float64 `yaml:"min_range"`
	MaxRange    float64 `yaml:"max_range"`
	MaxBearing  float64 `yaml:"max_bearing_deg"` // Degrees off-nose
	GlobalCap   int     `yaml:"global_cap"`      // Max concurrent in flight, 0 = unlimited
	Speed       float64 `yaml:"speed"`           // Projectile speed m/s
	LifetimeSec float64 `yaml:"lifetime_sec"`    // Projectile TTL
}

// WeaponsConfig holds per-weapon gating parameters.
type WeaponsConfig struct {
	Missile WeaponConfig `yaml:"missile"`
	Gun     WeaponConfig `yaml:"gun"`
	Turret  WeaponConfig `yaml:"turret"`
}

// PlayerConfig holds the scripted player trajectory used in headless runs.
type PlayerConfig struct {
	StartX float64 `yaml:"start_x"`
	StartY float64 `yaml:"start_y"`
	StartZ float64 `yaml:"start_z"`
	SpeedX float64 `yaml:"speed_x"`
	SpeedY float64 `yaml:"speed_y"`
	SpeedZ float64 `yaml:"speed_z"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Window length in simulation seconds
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32           float32 // Physics.DT as float32
	MissileBearing float32 // Weapons.Missile.MaxBearing in radians
	GunBearing     float32 // Weapons.Gun.MaxBearing in radians
	TurretBearing  float32 // Weapons.Turret.MaxBearing in radians
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
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
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

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects configurations that break core invariants.
func (c *Config) validate() error {
	if c.World.ChunkSize <= 0 {
		return fmt.Errorf("config: chunk_size must be positive, got %v", c.World.ChunkSize)
	}
	if c.World.LoadRadiusChunks <= 0 {
		return fmt.Errorf("config: load_radius_chunks must be positive, got %d", c.World.LoadRadiusChunks)
	}
	// The hysteresis gap is load-bearing: a single radius oscillates chunk
	// spawn/despawn when the player hovers at the boundary.
	if c.World.UnloadRadiusChunks <= c.World.LoadRadiusChunks {
		return fmt.Errorf("config: unload_radius_chunks (%d) must exceed load_radius_chunks (%d)",
			c.World.UnloadRadiusChunks, c.World.LoadRadiusChunks)
	}
	if c.Physics.DT <= 0 {
		return fmt.Errorf("config: dt must be positive, got %v", c.Physics.DT)
	}
	if !(c.Zones.AttackDistance < c.Zones.CombatDistance &&
		c.Zones.CombatDistance < c.Zones.SprintDistance &&
		c.Zones.SprintDistance < c.Zones.WarpDistance) {
		return fmt.Errorf("config: zone distances must be strictly ordered attack < combat < sprint < warp")
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	const degToRad = 3.14159265358979 / 180.0
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.MissileBearing = float32(c.Weapons.Missile.MaxBearing * degToRad)
	c.Derived.GunBearing = float32(c.Weapons.Gun.MaxBearing * degToRad)
	c.Derived.TurretBearing = float32(c.Weapons.Turret.MaxBearing * degToRad)
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
