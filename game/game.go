// Package game runs the fixed-tick simulation loop: chunk streaming, agent
// AI, weapon gating and lifetime management.
package game

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skyswarm/components"
	"github.com/pthm-cable/skyswarm/config"
	"github.com/pthm-cable/skyswarm/systems"
	"github.com/pthm-cable/skyswarm/telemetry"
	"github.com/pthm-cable/skyswarm/world"
)

// Options configures a new Game.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	Headless       bool
	StepsPerUpdate int

	// Render receives visual requests; nil means discard (headless).
	Render RenderPort
	// Projectiles receives projectile spawn requests; nil means discard.
	Projectiles ProjectilePort
	// ScriptedPlayer drives the player along the configured trajectory each
	// tick. Graphical mode leaves this false and calls SetPlayer instead.
	ScriptedPlayer bool
}

// Player is the read-only external signal the agents react to.
type Player struct {
	Pos     systems.Vec3
	Vel     systems.Vec3
	Present bool
}

// Game holds the complete simulation state.
type Game struct {
	world *ecs.World
	rng   *rand.Rand
	seed  int64

	droneMapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Drone,
		components.Weapons,
	]
	droneFilter *ecs.Filter4[
		components.Position,
		components.Velocity,
		components.Drone,
		components.Weapons,
	]

	// Individual component mappers for lookups
	posMap   *ecs.Map1[components.Position]
	velMap   *ecs.Map1[components.Velocity]
	droneMap *ecs.Map1[components.Drone]

	// Spatial index and world streaming
	grid    *systems.SpatialGrid
	terrain *world.Terrain
	chunks  *world.ChunkIndex

	// Per-chunk ownership: entities and visual handles torn down on unload
	chunkDrones  map[components.ChunkCoord][]ecs.Entity
	chunkVisuals map[components.ChunkCoord][]uint32
	chunkHazards map[components.ChunkCoord][]systems.HazardSphere
	chunkTurrets map[components.ChunkCoord][]turret

	// Hazards from all resident chunks, rebuilt when residency changes
	hazards []systems.HazardSphere

	// Leader lookup for swarm cohesion
	entityByID map[uint32]ecs.Entity

	director    *systems.CombatDirector
	projectiles []projectile

	player Player

	// Ports
	render     RenderPort
	projectile ProjectilePort

	// Telemetry
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	perf      *PerfStats

	// State
	tick       int32
	nextID     uint32
	aliveCount int
	opts       Options

	// Scratch buffers reused across ticks
	intents     []intent
	neighborBuf []systems.Neighbor
	toRemove    []pendingRemoval
}

// config returns the global configuration.
func (g *Game) config() *config.Config {
	return config.Cfg()
}

// NewGameWithOptions creates a game instance.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()

	if opts.StepsPerUpdate < 1 {
		opts.StepsPerUpdate = 1
	}

	w := ecs.NewWorld()
	g := &Game{
		world:  w,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		seed:   opts.Seed,
		nextID: 1,
		opts:   opts,
		droneMapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Drone,
			components.Weapons,
		](w),
		droneFilter: ecs.NewFilter4[
			components.Position,
			components.Velocity,
			components.Drone,
			components.Weapons,
		](w),
		posMap:       ecs.NewMap1[components.Position](w),
		velMap:       ecs.NewMap1[components.Velocity](w),
		droneMap:     ecs.NewMap1[components.Drone](w),
		chunkDrones:  make(map[components.ChunkCoord][]ecs.Entity),
		chunkVisuals: make(map[components.ChunkCoord][]uint32),
		chunkHazards: make(map[components.ChunkCoord][]systems.HazardSphere),
		chunkTurrets: make(map[components.ChunkCoord][]turret),
		entityByID:   make(map[uint32]ecs.Entity),
		perf:         NewPerfStats(),
	}

	g.grid = systems.NewSpatialGrid(float32(cfg.Physics.GridCellSize))
	g.terrain = world.NewTerrain(opts.Seed, &cfg.Terrain)
	g.chunks = world.NewChunkIndex(opts.Seed, &cfg.World, g.terrain)
	g.director = systems.NewCombatDirector(cfg.Weapons.Missile.GlobalCap, cfg.Weapons.Gun.GlobalCap, cfg.Weapons.Turret.GlobalCap)

	g.render = opts.Render
	if g.render == nil {
		g.render = nopRender{}
	}
	g.projectile = opts.Projectiles
	if g.projectile == nil {
		g.projectile = nopProjectiles{}
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(statsWindow, cfg.Derived.DT32)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("telemetry output disabled", "error", err)
		} else {
			g.output = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config snapshot", "error", err)
			}
		}
	}

	if opts.ScriptedPlayer {
		g.player = Player{
			Pos: systems.Vec3{
				X: float32(cfg.Player.StartX),
				Y: float32(cfg.Player.StartY),
				Z: float32(cfg.Player.StartZ),
			},
			Vel: systems.Vec3{
				X: float32(cfg.Player.SpeedX),
				Y: float32(cfg.Player.SpeedY),
				Z: float32(cfg.Player.SpeedZ),
			},
			Present: true,
		}
	}

	g.spawnInitialWave()

	return g
}

// SetPlayer updates the player signal from the hosting game loop.
func (g *Game) SetPlayer(pos, vel systems.Vec3) {
	g.player = Player{Pos: pos, Vel: vel, Present: true}
}

// ClearPlayer marks the player absent (e.g. during a respawn transition).
// Agent AI no-ops until the signal returns.
func (g *Game) ClearPlayer() {
	g.player.Present = false
}

// PlayerState returns the current player signal.
func (g *Game) PlayerState() Player {
	return g.player
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// AliveCount returns the number of live agents.
func (g *Game) AliveCount() int {
	return g.aliveCount
}

// MissilesInFlight returns the combat director's missile count.
func (g *Game) MissilesInFlight() int {
	return g.director.InFlight(systems.WeaponMissile)
}

// ResidentChunks returns the number of loaded chunks.
func (g *Game) ResidentChunks() int {
	return g.chunks.ResidentCount()
}

// Hazards returns the hazards of all resident chunks. The slice is owned by
// the game; callers must not mutate it.
func (g *Game) Hazards() []systems.HazardSphere {
	return g.hazards
}

// UpdateHeadless advances the simulation without any rendering concerns.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.opts.StepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// Update advances the simulation one frame's worth of steps.
func (g *Game) Update() {
	for i := 0; i < g.opts.StepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// Unload flushes telemetry output.
func (g *Game) Unload() {
	if g.output != nil {
		if err := g.output.Close(); err != nil {
			slog.Error("failed to close telemetry output", "error", err)
		}
	}
}
