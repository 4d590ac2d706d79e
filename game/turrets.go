package game

import (
	"github.com/pthm-cable/skyswarm/components"
	"github.com/pthm-cable/skyswarm/systems"
	"github.com/pthm-cable/skyswarm/world"
)

// turret is a static emplacement guarding a village. Turrets are chunk
// content like hazards, not agents: they never move, flock or die, and they
// leave with their chunk.
type turret struct {
	id       uint32
	pos      systems.Vec3
	lastFire float32
}

// addChunkTurrets registers a chunk's emplacements and their visuals.
func (g *Game) addChunkTurrets(coord components.ChunkCoord, placements []world.Placement) {
	for _, p := range placements {
		id := g.nextID
		g.nextID++
		g.render.SpawnVisual(VisualTurret, id, p.X, p.Y, p.Z, p.Scale)
		g.chunkTurrets[coord] = append(g.chunkTurrets[coord], turret{
			id:       id,
			pos:      systems.Vec3{X: p.X, Y: p.Y, Z: p.Z},
			lastFire: components.NeverFired,
		})
	}
}

// turretPass evaluates every resident emplacement against the player.
// Turrets share the weapon gate with the drones; a stationary shooter has a
// zero bearing, so in practice only cooldown, range and the director apply.
func (g *Game) turretPass(now float32) {
	cfg := g.config()

	for _, ts := range g.chunkTurrets {
		for i := range ts {
			tr := &ts[i]
			threat := systems.AssessThreat(tr.pos, systems.Vec3{}, g.player.Pos, &cfg.Zones)

			block := systems.GateFire(threat, tr.lastFire, now, cfg.Derived.TurretBearing,
				&cfg.Weapons.Turret, g.director, systems.WeaponTurret)
			if block != systems.FireOK {
				g.collector.RecordBlock(block)
				continue
			}

			tr.lastFire = now
			muzzle := tr.pos.Add(systems.Vec3{Y: 6})
			g.launchProjectile(systems.WeaponTurret, muzzle, threat.ToPlayer, tr.id)
		}
	}
}
