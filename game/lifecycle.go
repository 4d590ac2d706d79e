package game

import (
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skyswarm/components"
	"github.com/pthm-cable/skyswarm/systems"
	"github.com/pthm-cable/skyswarm/telemetry"
	"github.com/pthm-cable/skyswarm/world"
)

// spawnInitialWave creates the opening swarm ahead of the player.
func (g *Game) spawnInitialWave() {
	cfg := g.config()
	origin := world.CoordAt(0, 0, float32(cfg.World.ChunkSize))

	var leaderID uint32
	for i := 0; i < cfg.Drone.InitialWave; i++ {
		x := -2000 + g.rng.Float32()*4000
		y := 400 + g.rng.Float32()*400
		z := -5000 + g.rng.Float32()*3000

		role := components.RoleSwarm
		if g.rng.Float64() < cfg.World.KamikazeChance {
			role = components.RoleKamikaze
		}

		id := g.spawnDrone(x, y, z, role, leaderID, origin)
		if i == 0 {
			leaderID = id
		}
	}

	slog.Info("initial wave spawned", "count", cfg.Drone.InitialWave)
}

// spawnDrone creates one agent and returns its ID. leaderID 0 means no
// leader (or this drone is the leader itself).
func (g *Game) spawnDrone(x, y, z float32, role components.Role, leaderID uint32, spawnChunk components.ChunkCoord) uint32 {
	cfg := g.config()

	id := g.nextID
	g.nextID++

	pos := components.Position{X: x, Y: y, Z: z}
	vel := components.Velocity{}
	drone := components.Drone{
		ID:          id,
		Role:        role,
		Health:      float32(cfg.Drone.Health),
		CruiseSpeed: float32(cfg.Drone.CruiseSpeed),
		LeaderID:    leaderID,
		SpawnChunk:  spawnChunk,
		WeavePhase:  float32(id%64) * (2 * math.Pi / 64),
		Alive:       true,
	}
	weapons := components.Weapons{
		MissileLastFire: components.NeverFired,
		GunLastFire:     components.NeverFired,
	}

	entity := g.droneMapper.NewEntity(&pos, &vel, &drone, &weapons)
	g.entityByID[id] = entity
	g.aliveCount++

	g.render.SpawnVisual(VisualDrone, id, x, y, z, 1.8)
	g.collector.RecordSpawn(role)

	return id
}

// DamageDrone applies external combat damage to an agent by ID. Death is
// detected by the next tick's death pass, which also emits the explosion.
func (g *Game) DamageDrone(id uint32, amount float32) {
	entity, ok := g.entityByID[id]
	if !ok || !g.world.Alive(entity) {
		return
	}
	d := g.droneMap.Get(entity)
	if d == nil || !d.Alive {
		return
	}
	d.Health -= amount
}

// applyChunkLoads spawns the content of newly resident chunks and registers
// their hazards. Agents created here are processed by the same tick's AI
// pass, since residency runs before AI.
func (g *Game) applyChunkLoads(loaded []*world.Chunk) {
	for _, ch := range loaded {
		content := ch.Content

		for _, tree := range content.Trees {
			g.spawnChunkVisual(ch.Coord, VisualTree, tree.X, tree.Y, tree.Z, tree.Scale)
		}
		for _, rock := range content.Rocks {
			g.spawnChunkVisual(ch.Coord, VisualRock, rock.X, rock.Y, rock.Z, rock.Scale)
		}
		if content.Village {
			size := float32(g.config().World.ChunkSize)
			cx := float32(ch.Coord.X)*size + size/2
			cz := float32(ch.Coord.Z)*size + size/2
			g.spawnChunkVisual(ch.Coord, VisualVillage, cx, g.terrain.HeightAt(cx, cz), cz, 1)
		}
		if len(content.Turrets) > 0 {
			g.addChunkTurrets(ch.Coord, content.Turrets)
		}
		for _, hz := range content.Hazards {
			g.spawnChunkVisual(ch.Coord, VisualHazard, hz.X, hz.Y, hz.Z, hz.Radius)
			g.chunkHazards[ch.Coord] = append(g.chunkHazards[ch.Coord], systems.HazardSphere{
				Center: systems.Vec3{X: hz.X, Y: hz.Y, Z: hz.Z},
				Radius: hz.Radius,
			})
		}

		if len(content.Patrol) > 0 {
			g.spawnPatrol(ch.Coord, content.Patrol)
		}
	}
}

// spawnPatrol creates a chunk's drone group. The first member is the patrol
// leader the others bias cohesion toward.
func (g *Game) spawnPatrol(coord components.ChunkCoord, members []world.PatrolMember) {
	var leaderID uint32
	for i, m := range members {
		role := components.RoleSwarm
		if m.Kamikaze {
			role = components.RoleKamikaze
		}

		id := g.spawnDrone(m.X, m.Y, m.Z, role, leaderID, coord)
		entity := g.entityByID[id]
		g.chunkDrones[coord] = append(g.chunkDrones[coord], entity)
		if i == 0 {
			leaderID = id
		}
	}

	slog.Debug("patrol spawned", "chunk_x", coord.X, "chunk_z", coord.Z, "size", len(members))
}

func (g *Game) spawnChunkVisual(coord components.ChunkCoord, kind VisualKind, x, y, z, scale float32) {
	id := g.nextID
	g.nextID++
	g.render.SpawnVisual(kind, id, x, y, z, scale)
	g.chunkVisuals[coord] = append(g.chunkVisuals[coord], id)
}

// applyChunkUnloads tears down everything owned by chunks that left the
// unload radius. Owned drones despawn silently: this is streaming cleanup,
// not a combat death.
func (g *Game) applyChunkUnloads(unloaded []components.ChunkCoord) {
	for _, coord := range unloaded {
		for _, id := range g.chunkVisuals[coord] {
			g.render.DespawnVisual(id)
		}
		delete(g.chunkVisuals, coord)
		delete(g.chunkHazards, coord)

		for _, tr := range g.chunkTurrets[coord] {
			g.render.DespawnVisual(tr.id)
		}
		delete(g.chunkTurrets, coord)

		for _, entity := range g.chunkDrones[coord] {
			if !g.world.Alive(entity) {
				continue
			}
			d := g.droneMap.Get(entity)
			if d == nil || !d.Alive {
				continue
			}
			g.markDead(entity, d, telemetry.DespawnChunk, false)
		}
		delete(g.chunkDrones, coord)
	}
}

// rebuildHazards flattens the hazards of all resident chunks into one slice
// for the flocking pass. Only called when residency changed.
func (g *Game) rebuildHazards() {
	g.hazards = g.hazards[:0]
	for _, spheres := range g.chunkHazards {
		g.hazards = append(g.hazards, spheres...)
	}
}

// pendingRemoval is an agent marked dead this tick, removed after all
// iteration completes.
type pendingRemoval struct {
	entity  ecs.Entity
	id      uint32
	cause   telemetry.DespawnCause
	boom    bool
	x, y, z float32
}

// markDead flags an agent for removal at the end of the tick. Safe to call
// during query iteration; the entity is only detached in cleanupDead.
func (g *Game) markDead(entity ecs.Entity, d *components.Drone, cause telemetry.DespawnCause, boom bool) {
	if !d.Alive {
		return
	}
	d.Alive = false

	var x, y, z float32
	if pos := g.posMap.Get(entity); pos != nil {
		x, y, z = pos.X, pos.Y, pos.Z
	}
	g.toRemove = append(g.toRemove, pendingRemoval{
		entity: entity,
		id:     d.ID,
		cause:  cause,
		boom:   boom,
		x: x, y: y, z: z,
	})
}

// cleanupDead removes all agents marked during this tick.
func (g *Game) cleanupDead() {
	for _, r := range g.toRemove {
		if r.boom {
			g.render.SpawnEffect(EffectExplosion, r.x, r.y, r.z)
		}
		g.render.DespawnVisual(r.id)
		g.collector.RecordDespawn(r.cause)

		g.droneMapper.Remove(r.entity)
		delete(g.entityByID, r.id)
		g.aliveCount--
	}
	g.toRemove = g.toRemove[:0]
}

// Restart despawns every agent, resets the combat director and respawns the
// opening wave. The chunk index and its deterministic content survive; only
// dynamic agent state resets.
func (g *Game) Restart() {
	query := g.droneFilter.Query()
	var all []ecs.Entity
	var ids []uint32
	for query.Next() {
		_, _, d, _ := query.Get()
		all = append(all, query.Entity())
		ids = append(ids, d.ID)
	}
	for i, e := range all {
		g.droneMapper.Remove(e)
		g.render.DespawnVisual(ids[i])
		delete(g.entityByID, ids[i])
	}
	g.aliveCount = 0
	g.toRemove = g.toRemove[:0]

	for coord := range g.chunkDrones {
		delete(g.chunkDrones, coord)
	}

	g.director.Reset()
	g.projectiles = g.projectiles[:0]

	g.spawnInitialWave()
	slog.Info("session restarted", "tick", g.tick)
}
