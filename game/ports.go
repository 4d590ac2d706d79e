package game

import "github.com/pthm-cable/skyswarm/systems"

// VisualKind identifies what a visual handle represents.
type VisualKind uint8

const (
	VisualDrone VisualKind = iota
	VisualTree
	VisualRock
	VisualVillage
	VisualHazard
	VisualTurret
	VisualMissile
)

// EffectKind identifies a transient effect.
type EffectKind uint8

const (
	EffectExplosion EffectKind = iota
	EffectBigExplosion
)

// RenderPort receives fire-and-forget visual requests from the core. The
// core never reads anything back from it.
type RenderPort interface {
	SpawnVisual(kind VisualKind, id uint32, x, y, z, scale float32)
	DespawnVisual(id uint32)
	SpawnEffect(kind EffectKind, x, y, z float32)
}

// ProjectilePort receives projectile spawn requests. The core tracks every
// projectile internally and owns the combat director's in-flight accounting;
// implementations only need to produce visuals/audio. A host that destroys a
// projectile early reports it via Game.ProjectileExpired, which consumes the
// internal record instead of double-counting the release.
type ProjectilePort interface {
	RequestProjectile(origin, dir systems.Vec3, kind systems.WeaponKind, owner uint32)
}

// nopRender discards all visual requests. Used in headless runs.
type nopRender struct{}

func (nopRender) SpawnVisual(VisualKind, uint32, float32, float32, float32, float32) {}
func (nopRender) DespawnVisual(uint32)                                              {}
func (nopRender) SpawnEffect(EffectKind, float32, float32, float32)                 {}

// nopProjectiles discards projectile requests.
type nopProjectiles struct{}

func (nopProjectiles) RequestProjectile(systems.Vec3, systems.Vec3, systems.WeaponKind, uint32) {}
