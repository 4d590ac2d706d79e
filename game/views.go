package game

import (
	"github.com/pthm-cable/skyswarm/components"
	"github.com/pthm-cable/skyswarm/systems"
)

// AgentView is a per-agent snapshot for rendering and debug tooling. Moving
// entities are pulled from here every frame; the RenderPort only carries
// static chunk props and one-shot effects.
type AgentView struct {
	ID         uint32
	Role       components.Role
	X, Y, Z    float32
	VX, VY, VZ float32
	Health     float32
	Zone       systems.Zone
}

// ProjectileView is a per-projectile snapshot for rendering.
type ProjectileView struct {
	Kind    systems.WeaponKind
	X, Y, Z float32
}

// Agents calls fn for every live agent. The zone is relative to the current
// player signal; agents report ZoneWarp when the player is absent.
func (g *Game) Agents(fn func(AgentView)) {
	cfg := g.config()

	query := g.droneFilter.Query()
	for query.Next() {
		pos, vel, d, _ := query.Get()
		if !d.Alive {
			continue
		}

		zone := systems.ZoneWarp
		if g.player.Present {
			dx := pos.X - g.player.Pos.X
			dy := pos.Y - g.player.Pos.Y
			dz := pos.Z - g.player.Pos.Z
			dist := systems.Vec3{X: dx, Y: dy, Z: dz}.Length()
			zone = systems.ZoneFor(dist, &cfg.Zones)
		}

		fn(AgentView{
			ID:     d.ID,
			Role:   d.Role,
			X:      pos.X,
			Y:      pos.Y,
			Z:      pos.Z,
			VX:     vel.X,
			VY:     vel.Y,
			VZ:     vel.Z,
			Health: d.Health,
			Zone:   zone,
		})
	}
}

// LiveProjectiles calls fn for every projectile in flight.
func (g *Game) LiveProjectiles(fn func(ProjectileView)) {
	for i := range g.projectiles {
		p := &g.projectiles[i]
		fn(ProjectileView{
			Kind: p.kind,
			X:    p.pos.X,
			Y:    p.pos.Y,
			Z:    p.pos.Z,
		})
	}
}

// ResidentChunkCoords appends currently loaded chunk coordinates to dst.
func (g *Game) ResidentChunkCoords(dst []components.ChunkCoord) []components.ChunkCoord {
	return g.chunks.ResidentCoords(dst)
}

// TerrainHeightAt samples the terrain height field.
func (g *Game) TerrainHeightAt(x, z float32) float32 {
	return g.terrain.HeightAt(x, z)
}

// Perf exposes per-phase tick timings for the debug HUD.
func (g *Game) Perf() *PerfStats {
	return g.perf
}
