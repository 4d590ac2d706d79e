package systems

import "github.com/pthm-cable/skyswarm/config"

// WeaponKind identifies a weapon type.
type WeaponKind uint8

const (
	WeaponMissile WeaponKind = iota
	WeaponGun
	WeaponTurret
	numWeaponKinds
)

// String returns the weapon name for logging and telemetry.
func (k WeaponKind) String() string {
	switch k {
	case WeaponGun:
		return "gun"
	case WeaponTurret:
		return "turret"
	default:
		return "missile"
	}
}

// CombatDirector is the shared arbiter limiting concurrent weapon effects
// across all agents, independent of per-agent cooldowns.
//
// Not safe for concurrent use: the simulation mutates it only from the
// single-threaded tick loop, which makes read-check-increment atomic by
// construction. A parallel tick loop would need an atomic counter here.
type CombatDirector struct {
	inFlight [numWeaponKinds]int
	caps     [numWeaponKinds]int // 0 = unlimited
}

// NewCombatDirector creates a director with per-kind in-flight caps.
func NewCombatDirector(missileCap, gunCap, turretCap int) *CombatDirector {
	d := &CombatDirector{}
	d.caps[WeaponMissile] = missileCap
	d.caps[WeaponGun] = gunCap
	d.caps[WeaponTurret] = turretCap
	return d
}

// InFlight returns the current in-flight count for a weapon kind.
func (d *CombatDirector) InFlight(k WeaponKind) int {
	return d.inFlight[k]
}

// tryAcquire reserves an in-flight slot, returning false when the cap is hit.
func (d *CombatDirector) tryAcquire(k WeaponKind) bool {
	if d.caps[k] > 0 && d.inFlight[k] >= d.caps[k] {
		return false
	}
	d.inFlight[k]++
	return true
}

// Release returns an in-flight slot when a projectile is destroyed or
// expires. The signal comes from the projectile tracker, outside the gate.
func (d *CombatDirector) Release(k WeaponKind) {
	if d.inFlight[k] > 0 {
		d.inFlight[k]--
	}
}

// Reset clears all in-flight counts. Only called on a full session restart.
func (d *CombatDirector) Reset() {
	for i := range d.inFlight {
		d.inFlight[i] = 0
	}
}

// FireBlock explains why a weapon did not release this tick.
type FireBlock uint8

const (
	FireOK FireBlock = iota
	BlockCooldown
	BlockRange
	BlockBearing
	BlockDirector
)

// GateFire decides whether one agent releases one weapon this tick.
//
// Check order matters for the director: the global slot is acquired last, so
// an agent blocked on range or bearing never consumes budget. On FireOK the
// slot is already reserved and the caller must Release it when the
// projectile dies.
func GateFire(threat Threat, lastFire, now, maxBearing float32, wcfg *config.WeaponConfig, dir *CombatDirector, kind WeaponKind) FireBlock {
	if now-lastFire < float32(wcfg.CooldownSec) {
		return BlockCooldown
	}
	if threat.Distance < float32(wcfg.MinRange) || threat.Distance > float32(wcfg.MaxRange) {
		return BlockRange
	}
	if threat.Bearing > maxBearing {
		return BlockBearing
	}
	if !dir.tryAcquire(kind) {
		return BlockDirector
	}
	return FireOK
}
