package game

import (
	"log/slog"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skyswarm/components"
	"github.com/pthm-cable/skyswarm/systems"
	"github.com/pthm-cable/skyswarm/telemetry"
)

// intent is one agent's desired velocity for this tick, computed in the AI
// pass and applied in the apply pass. Splitting the passes guarantees every
// agent's flocking decision reads only start-of-tick state, so iteration
// order cannot leak into the result.
type intent struct {
	entity  ecs.Entity
	desired systems.Vec3
}

// simulationStep runs a single tick.
//
// Tick order: sanity sweep, player advance, chunk residency, spatial grid,
// AI pass (reads committed state, fires weapons), apply pass (kinematics),
// projectiles, deaths and leash pruning, removal, telemetry. Chunk residency
// runs before AI, so agents spawned this tick fly on the same tick.
func (g *Game) simulationStep() {
	cfg := g.config()
	dt := cfg.Derived.DT32
	now := float32(g.tick) * dt

	start := time.Now()
	g.sanitySweep()

	if g.opts.ScriptedPlayer && g.player.Present {
		g.player.Pos = g.player.Pos.Add(g.player.Vel.Scale(dt))
	}

	if g.player.Present {
		loaded, unloaded := g.chunks.Update(g.player.Pos.X, g.player.Pos.Z)
		if len(loaded) > 0 || len(unloaded) > 0 {
			g.applyChunkLoads(loaded)
			g.applyChunkUnloads(unloaded)
			g.rebuildHazards()
			g.collector.RecordChunks(len(loaded), len(unloaded))
		}
	}
	g.perf.Record("world", time.Since(start))

	start = time.Now()
	g.updateSpatialGrid()
	g.perf.Record("spatial", time.Since(start))

	// Without a player signal (respawn transition), agent AI no-ops for the
	// tick: no steering, no weapons, no leash judgment. Existing velocities
	// still integrate so motion stays continuous.
	start = time.Now()
	if g.player.Present {
		g.aiPass(now)
		g.turretPass(now)
	} else {
		g.intents = g.intents[:0]
	}
	g.perf.Record("ai", time.Since(start))

	start = time.Now()
	g.applyPass(dt)
	g.updateProjectiles(dt)
	g.deathPass()
	g.cleanupDead()
	g.perf.Record("apply", time.Since(start))

	g.tick++
	g.flushTelemetry()
}

// sanitySweep resets any agent whose position or velocity went non-finite,
// before the AI reads it. Upstream physics blowups are contained to the one
// agent instead of propagating through neighbor queries.
func (g *Game) sanitySweep() {
	query := g.droneFilter.Query()
	for query.Next() {
		pos, vel, d, _ := query.Get()
		if !d.Alive {
			continue
		}
		p := systems.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z}
		v := systems.Vec3{X: vel.X, Y: vel.Y, Z: vel.Z}
		if systems.FiniteState(p, v) {
			continue
		}

		pos.X, pos.Y, pos.Z = 0, 500, -200
		vel.X, vel.Y, vel.Z = 0, 0, 0
		g.collector.RecordUnstableReset()
	}
}

// updateSpatialGrid rebuilds the spatial index from live agents.
func (g *Game) updateSpatialGrid() {
	g.grid.Clear()

	query := g.droneFilter.Query()
	for query.Next() {
		pos, _, d, _ := query.Get()
		if d.Alive {
			g.grid.Insert(query.Entity(), pos.X, pos.Z)
		}
	}
}

// aiPass computes every agent's desired velocity and weapon releases.
// All reads (own state, neighbors, player) see start-of-tick values.
func (g *Game) aiPass(now float32) {
	cfg := g.config()
	g.intents = g.intents[:0]

	neighborRadius := float32(cfg.Flocking.NeighborRadius)
	lookahead := float32(cfg.Pursuit.LookaheadSec)

	query := g.droneFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, vel, d, weapons := query.Get()

		if !d.Alive {
			continue
		}

		self := systems.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z}
		selfVel := systems.Vec3{X: vel.X, Y: vel.Y, Z: vel.Z}

		threat := systems.AssessThreat(self, selfVel, g.player.Pos, &cfg.Zones)
		pursuit := systems.InterceptHeading(self, g.player.Pos, g.player.Vel, lookahead)

		var heading systems.Vec3
		switch d.Role {
		case components.RoleKamikaze:
			// Raw pursuit: no flock to keep, nothing worth dodging.
			heading = pursuit
		default:
			heading = g.swarmHeading(entity, d, self, pursuit, neighborRadius, now)
		}

		speed := d.CruiseSpeed * systems.SpeedMultiplier(threat.Zone, &cfg.Zones)
		g.intents = append(g.intents, intent{entity: entity, desired: heading.Scale(speed)})

		if d.Role == components.RoleSwarm {
			g.weaponPass(d, weapons, self, threat, now)
		}
	}
}

// swarmHeading gathers flock context for one agent and blends the steering.
func (g *Game) swarmHeading(entity ecs.Entity, d *components.Drone, self, pursuit systems.Vec3, neighborRadius float32, now float32) systems.Vec3 {
	cfg := g.config()

	g.neighborBuf = g.neighborBuf[:0]
	g.neighborBuf = g.grid.QueryRadiusInto(g.neighborBuf, self.X, self.Y, self.Z, neighborRadius, entity, g.posMap)

	flockNeighbors := make([]systems.FlockNeighbor, 0, len(g.neighborBuf))
	for _, n := range g.neighborBuf {
		nd := g.droneMap.Get(n.E)
		if nd == nil || !nd.Alive {
			continue
		}
		nv := g.velMap.Get(n.E)
		if nv == nil {
			continue
		}
		flockNeighbors = append(flockNeighbors, systems.FlockNeighbor{
			Delta:  systems.Vec3{X: n.DX, Y: n.DY, Z: n.DZ},
			DistSq: n.DistSq,
			Vel:    systems.Vec3{X: nv.X, Y: nv.Y, Z: nv.Z},
		})
	}

	fc := systems.FlockContext{
		Self:       self,
		Neighbors:  flockNeighbors,
		Hazards:    g.hazards,
		Time:       now,
		WeavePhase: d.WeavePhase,
	}

	// A dead or despawned leader is simply absent; the drone keeps flying on
	// pursuit plus neighbor cohesion.
	if d.LeaderID != 0 {
		if le, ok := g.entityByID[d.LeaderID]; ok && g.world.Alive(le) {
			if lp := g.posMap.Get(le); lp != nil {
				delta := systems.Vec3{X: lp.X - self.X, Y: lp.Y - self.Y, Z: lp.Z - self.Z}
				fc.LeaderDelta = &delta
			}
		}
	}

	return systems.SwarmHeading(pursuit, fc, &cfg.Flocking)
}

// weaponPass evaluates both weapon gates for one agent.
func (g *Game) weaponPass(d *components.Drone, weapons *components.Weapons, self systems.Vec3, threat systems.Threat, now float32) {
	cfg := g.config()

	if block := systems.GateFire(threat, weapons.MissileLastFire, now, cfg.Derived.MissileBearing,
		&cfg.Weapons.Missile, g.director, systems.WeaponMissile); block == systems.FireOK {
		weapons.MissileLastFire = now
		g.launchProjectile(systems.WeaponMissile, self, threat.ToPlayer, d.ID)
	} else {
		g.collector.RecordBlock(block)
	}

	if block := systems.GateFire(threat, weapons.GunLastFire, now, cfg.Derived.GunBearing,
		&cfg.Weapons.Gun, g.director, systems.WeaponGun); block == systems.FireOK {
		weapons.GunLastFire = now
		g.launchProjectile(systems.WeaponGun, self, threat.ToPlayer, d.ID)
	} else {
		g.collector.RecordBlock(block)
	}
}

// applyPass integrates the intents collected by the AI pass. The core
// expresses velocity intent; this arcade integrator stands in for the
// out-of-scope rigid-body engine.
func (g *Game) applyPass(dt float32) {
	cfg := g.config()
	accel := float32(cfg.Physics.AccelRate) * dt
	if accel > 1 {
		accel = 1
	}

	for _, in := range g.intents {
		if !g.world.Alive(in.entity) {
			continue
		}
		vel := g.velMap.Get(in.entity)
		if vel == nil {
			continue
		}
		vel.X += (in.desired.X - vel.X) * accel
		vel.Y += (in.desired.Y - vel.Y) * accel
		vel.Z += (in.desired.Z - vel.Z) * accel
	}

	// Integrate all agents, including those without an intent this tick.
	query := g.droneFilter.Query()
	for query.Next() {
		pos, vel, d, _ := query.Get()
		if !d.Alive {
			continue
		}
		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
		pos.Z += vel.Z * dt

		// Terrain floor: drones skim, never tunnel.
		if floor := g.terrain.HeightAt(pos.X, pos.Z) + 20; pos.Y < floor {
			pos.Y = floor
			if vel.Y < 0 {
				vel.Y = 0
			}
		}
	}
}

// deathPass applies the three unconditional destruction triggers: health,
// kamikaze proximity, and the leash.
func (g *Game) deathPass() {
	cfg := g.config()
	leashSq := float32(cfg.Drone.LeashDistance * cfg.Drone.LeashDistance)
	kamikazeSq := float32(cfg.Drone.KamikazeRange * cfg.Drone.KamikazeRange)

	query := g.droneFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, _, d, _ := query.Get()

		if !d.Alive {
			continue
		}

		if d.Health <= 0 {
			g.markDead(entity, d, telemetry.DespawnDestroyed, true)
			continue
		}

		if !g.player.Present {
			continue
		}

		dx := pos.X - g.player.Pos.X
		dy := pos.Y - g.player.Pos.Y
		dz := pos.Z - g.player.Pos.Z
		distSq := dx*dx + dy*dy + dz*dz

		if d.Role == components.RoleKamikaze && distSq < kamikazeSq {
			g.markDead(entity, d, telemetry.DespawnKamikaze, true)
			continue
		}

		// Leash pruning is streaming cleanup: no explosion. Runs independent
		// of chunk unload since a kamikaze overshoot can outrun its chunk.
		if distSq > leashSq {
			g.markDead(entity, d, telemetry.DespawnLeash, false)
		}
	}
}

// flushTelemetry emits a stats window when due.
func (g *Game) flushTelemetry() {
	if !g.collector.WindowDue(g.tick) {
		return
	}

	var zoneCounts [systems.NumZones]int
	var distances []float64

	if g.player.Present {
		cfg := g.config()
		query := g.droneFilter.Query()
		for query.Next() {
			pos, _, d, _ := query.Get()
			if !d.Alive {
				continue
			}
			dx := pos.X - g.player.Pos.X
			dy := pos.Y - g.player.Pos.Y
			dz := pos.Z - g.player.Pos.Z
			dist := systems.Vec3{X: dx, Y: dy, Z: dz}.Length()
			zoneCounts[systems.ZoneFor(dist, &cfg.Zones)]++
			distances = append(distances, float64(dist))
		}
	}

	stats := g.collector.Flush(g.tick, zoneCounts, distances, g.director.InFlight(systems.WeaponMissile))
	if g.output != nil {
		if err := g.output.WriteTelemetry(stats); err != nil {
			// Output failure must not stop the simulation.
			slog.Error("failed to write telemetry, disabling output", "error", err)
			g.output = nil
		}
	}
	if g.opts.LogStats {
		g.logWindowStats(stats)
	}
}
