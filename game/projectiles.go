package game

import "github.com/pthm-cable/skyswarm/systems"

// projectile is one in-flight weapon effect. The core tracks flight only to
// know when to release the combat director's slot; impact resolution against
// the player belongs to the surrounding game.
type projectile struct {
	kind  systems.WeaponKind
	pos   systems.Vec3
	vel   systems.Vec3
	ttl   float32
	owner uint32
}

// launchProjectile records a successful weapon release. The director slot
// was already acquired by the gate; it is released when the projectile dies.
func (g *Game) launchProjectile(kind systems.WeaponKind, origin, dir systems.Vec3, owner uint32) {
	cfg := g.config()

	wcfg := &cfg.Weapons.Missile
	switch kind {
	case systems.WeaponGun:
		wcfg = &cfg.Weapons.Gun
	case systems.WeaponTurret:
		wcfg = &cfg.Weapons.Turret
	}

	g.projectiles = append(g.projectiles, projectile{
		kind:  kind,
		pos:   origin,
		vel:   dir.Scale(float32(wcfg.Speed)),
		ttl:   float32(wcfg.LifetimeSec),
		owner: owner,
	})

	g.projectile.RequestProjectile(origin, dir, kind, owner)
	g.collector.RecordFire(kind)
}

// updateProjectiles advances in-flight projectiles and releases director
// slots for ones that expired or detonated near the player.
func (g *Game) updateProjectiles(dt float32) {
	const proximityFuse = 15.0 // meters

	n := 0
	for _, p := range g.projectiles {
		p.pos = p.pos.Add(p.vel.Scale(dt))
		p.ttl -= dt

		expired := p.ttl <= 0 || !p.pos.IsFinite()

		// Gun rounds are hitscan-fast and just expire; anything missile-like
		// detonates on proximity.
		if !expired && g.player.Present && p.kind != systems.WeaponGun {
			if p.pos.Sub(g.player.Pos).LengthSq() < proximityFuse*proximityFuse {
				g.render.SpawnEffect(EffectExplosion, p.pos.X, p.pos.Y, p.pos.Z)
				expired = true
			}
		}
		if !expired && p.pos.Y < g.terrain.HeightAt(p.pos.X, p.pos.Z) {
			expired = true
		}

		if expired {
			g.director.Release(p.kind)
			continue
		}
		g.projectiles[n] = p
		n++
	}
	g.projectiles = g.projectiles[:n]
}

// ProjectileExpired accepts the external signal that a projectile was
// destroyed outside the core (e.g. intercepted). The oldest tracked record of
// that kind is consumed along with the director slot, so whichever of the
// external signal and the internal TTL arrives first wins and the slot is
// released exactly once. A signal with no matching record is ignored.
func (g *Game) ProjectileExpired(kind systems.WeaponKind) {
	for i, p := range g.projectiles {
		if p.kind == kind {
			g.projectiles = append(g.projectiles[:i], g.projectiles[i+1:]...)
			g.director.Release(kind)
			return
		}
	}
}
