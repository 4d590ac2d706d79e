// Package telemetry provides windowed combat statistics and CSV output.
package telemetry

import (
	"github.com/pthm-cable/skyswarm/components"
	"github.com/pthm-cable/skyswarm/systems"
)

// DespawnCause classifies why an agent left the simulation.
type DespawnCause uint8

const (
	DespawnDestroyed DespawnCause = iota // Health reached zero
	DespawnKamikaze                      // Proximity detonation
	DespawnLeash                         // Beyond leash distance
	DespawnChunk                         // Owning chunk unloaded
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32
	dt                  float32

	windowStartTick int32

	// Event counters for the current window
	spawnsSwarm    int
	spawnsKamikaze int
	despawns       [4]int
	unstableResets int
	chunksLoaded   int
	chunksUnloaded int

	missilesFired   int
	gunRoundsFired  int
	turretShots     int
	blockedCooldown int
	blockedRange    int
	blockedBearing  int
	blockedDirector int
}

// NewCollector creates a stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
// dt: seconds per tick.
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordSpawn records an agent spawn.
func (c *Collector) RecordSpawn(role components.Role) {
	if role == components.RoleKamikaze {
		c.spawnsKamikaze++
	} else {
		c.spawnsSwarm++
	}
}

// RecordDespawn records an agent despawn with its cause.
func (c *Collector) RecordDespawn(cause DespawnCause) {
	c.despawns[cause]++
}

// RecordUnstableReset records an agent reset by the sanity sweep after its
// state went non-finite.
func (c *Collector) RecordUnstableReset() {
	c.unstableResets++
}

// RecordChunks records chunk residency churn.
func (c *Collector) RecordChunks(loaded, unloaded int) {
	c.chunksLoaded += loaded
	c.chunksUnloaded += unloaded
}

// RecordFire records a successful weapon release.
func (c *Collector) RecordFire(kind systems.WeaponKind) {
	switch kind {
	case systems.WeaponGun:
		c.gunRoundsFired++
	case systems.WeaponTurret:
		c.turretShots++
	default:
		c.missilesFired++
	}
}

// RecordBlock records a weapon release refused by the gate.
func (c *Collector) RecordBlock(block systems.FireBlock) {
	switch block {
	case systems.BlockCooldown:
		c.blockedCooldown++
	case systems.BlockRange:
		c.blockedRange++
	case systems.BlockBearing:
		c.blockedBearing++
	case systems.BlockDirector:
		c.blockedDirector++
	}
}

// WindowDue reports whether the current window ends at this tick.
func (c *Collector) WindowDue(tick int32) bool {
	return tick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces the window's stats and starts a new window. The caller
// supplies the end-of-window population snapshot: per-zone occupancy and the
// distance of every live agent to the player.
func (c *Collector) Flush(tick int32, zoneCounts [systems.NumZones]int, distances []float64, missilesInFlight int) WindowStats {
	ws := WindowStats{
		WindowEndTick: tick,
		SimTimeSec:    float64(tick) * float64(c.dt),

		SpawnsSwarm:    c.spawnsSwarm,
		SpawnsKamikaze: c.spawnsKamikaze,

		Destroyed:      c.despawns[DespawnDestroyed],
		KamikazeHits:   c.despawns[DespawnKamikaze],
		LeashDespawns:  c.despawns[DespawnLeash],
		ChunkDespawns:  c.despawns[DespawnChunk],
		UnstableResets: c.unstableResets,

		ChunksLoaded:   c.chunksLoaded,
		ChunksUnloaded: c.chunksUnloaded,

		MissilesFired:    c.missilesFired,
		GunRoundsFired:   c.gunRoundsFired,
		TurretShots:      c.turretShots,
		BlockedCooldown:  c.blockedCooldown,
		BlockedRange:     c.blockedRange,
		BlockedBearing:   c.blockedBearing,
		BlockedDirector:  c.blockedDirector,
		MissilesInFlight: missilesInFlight,

		ZoneWarp:   zoneCounts[systems.ZoneWarp],
		ZoneSprint: zoneCounts[systems.ZoneSprint],
		ZoneCombat: zoneCounts[systems.ZoneCombat],
		ZoneAttack: zoneCounts[systems.ZoneAttack],
		ZoneDanger: zoneCounts[systems.ZoneDanger],

		AgentCount: len(distances),
	}

	ws.DistanceMean, ws.DistanceStd, ws.DistanceP10, ws.DistanceP50, ws.DistanceP90 = DistanceStats(distances)

	// Reset for the next window
	*c = Collector{
		windowDurationTicks: c.windowDurationTicks,
		dt:                  c.dt,
		windowStartTick:     tick,
	}

	return ws
}
