// Package components defines ECS components for the simulation.
package components

// Role selects the behavior variant of a drone.
type Role uint8

const (
	// RoleSwarm drones blend intercept pursuit with flocking and hazard avoidance.
	RoleSwarm Role = iota
	// RoleKamikaze drones fly raw pursuit and detonate on proximity.
	RoleKamikaze
)

// String returns the role name for logging and telemetry.
func (r Role) String() string {
	if r == RoleKamikaze {
		return "kamikaze"
	}
	return "swarm"
}

// Position is an entity's world position in meters.
type Position struct {
	X, Y, Z float32
}

// Velocity is an entity's world velocity in m/s.
type Velocity struct {
	X, Y, Z float32
}

// ChunkCoord identifies the chunk that spawned an entity. A weak reference:
// the chunk may already be unloaded when it is read.
type ChunkCoord struct {
	X, Z int
}

// Drone holds per-agent combat state.
type Drone struct {
	ID          uint32
	Role        Role
	Health      float32
	CruiseSpeed float32

	// LeaderID is the patrol leader's entity ID for swarm members.
	// 0 means no leader; a stale ID is treated as leader absent.
	LeaderID uint32

	// SpawnChunk records the chunk whose residency created this drone.
	SpawnChunk ChunkCoord

	// WeavePhase desynchronizes the sinusoidal weave across the swarm.
	WeavePhase float32

	Alive bool
}

// Weapons holds per-agent weapon cooldown clocks in simulation-time seconds.
// Freshly spawned drones get NeverFired so both weapons start ready.
type Weapons struct {
	MissileLastFire float32
	GunLastFire     float32
}

// NeverFired is far enough in the past to clear any cooldown.
const NeverFired float32 = -1e9
