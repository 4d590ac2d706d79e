package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/skyswarm/components"
	"github.com/pthm-cable/skyswarm/config"
)

// missileThreat builds a threat square in the missile envelope.
func missileThreat(distance, bearing float32) Threat {
	return Threat{Distance: distance, Bearing: bearing, ToPlayer: Vec3{Z: -1}, Zone: ZoneCombat}
}

func TestGateFireAccepts(t *testing.T) {
	cfg := config.Cfg()
	dir := NewCombatDirector(2, 0, 4)

	block := GateFire(missileThreat(1200, 0.1), components.NeverFired, 100,
		cfg.Derived.MissileBearing, &cfg.Weapons.Missile, dir, WeaponMissile)
	if block != FireOK {
		t.Fatalf("gate = %d, want FireOK", block)
	}
	if dir.InFlight(WeaponMissile) != 1 {
		t.Errorf("in-flight = %d, want 1 after accepted fire", dir.InFlight(WeaponMissile))
	}
}

func TestGateFireCooldown(t *testing.T) {
	cfg := config.Cfg()
	dir := NewCombatDirector(2, 0, 4)

	// Fired 2s ago with a 6s cooldown.
	block := GateFire(missileThreat(1200, 0.1), 98, 100,
		cfg.Derived.MissileBearing, &cfg.Weapons.Missile, dir, WeaponMissile)
	if block != BlockCooldown {
		t.Errorf("gate = %d, want BlockCooldown", block)
	}
	if dir.InFlight(WeaponMissile) != 0 {
		t.Errorf("blocked fire consumed a director slot")
	}
}

func TestGateFireRangeFloor(t *testing.T) {
	cfg := config.Cfg()
	dir := NewCombatDirector(2, 0, 4)

	// 600m with a perfect bearing: inside the missile minimum range, so the
	// gate refuses even though everything else is green.
	block := GateFire(missileThreat(600, 0.05), components.NeverFired, 100,
		cfg.Derived.MissileBearing, &cfg.Weapons.Missile, dir, WeaponMissile)
	if block != BlockRange {
		t.Errorf("gate = %d, want BlockRange at 600m", block)
	}

	block = GateFire(missileThreat(2500, 0.05), components.NeverFired, 100,
		cfg.Derived.MissileBearing, &cfg.Weapons.Missile, dir, WeaponMissile)
	if block != BlockRange {
		t.Errorf("gate = %d, want BlockRange at 2500m", block)
	}
}

func TestGateFireBearing(t *testing.T) {
	cfg := config.Cfg()
	dir := NewCombatDirector(2, 0, 4)

	// 60 degrees off the nose against a 45 degree cone.
	wide := float32(60 * math.Pi / 180)
	block := GateFire(missileThreat(1200, wide), components.NeverFired, 100,
		cfg.Derived.MissileBearing, &cfg.Weapons.Missile, dir, WeaponMissile)
	if block != BlockBearing {
		t.Errorf("gate = %d, want BlockBearing", block)
	}
	if dir.InFlight(WeaponMissile) != 0 {
		t.Errorf("bearing-blocked fire consumed a director slot")
	}
}

func TestGateFireDirectorCap(t *testing.T) {
	cfg := config.Cfg()
	dir := NewCombatDirector(2, 0, 4)

	th := missileThreat(1200, 0.1)
	for i := 0; i < 2; i++ {
		if block := GateFire(th, components.NeverFired, 100,
			cfg.Derived.MissileBearing, &cfg.Weapons.Missile, dir, WeaponMissile); block != FireOK {
			t.Fatalf("fire %d blocked: %d", i, block)
		}
	}

	// Third agent, cooldown ready and on-axis: the cap blocks it.
	block := GateFire(th, components.NeverFired, 100,
		cfg.Derived.MissileBearing, &cfg.Weapons.Missile, dir, WeaponMissile)
	if block != BlockDirector {
		t.Errorf("gate = %d, want BlockDirector at cap", block)
	}

	// One release frees one slot.
	dir.Release(WeaponMissile)
	block = GateFire(th, components.NeverFired, 100,
		cfg.Derived.MissileBearing, &cfg.Weapons.Missile, dir, WeaponMissile)
	if block != FireOK {
		t.Errorf("gate = %d, want FireOK after release", block)
	}
}

func TestDirectorUncapped(t *testing.T) {
	cfg := config.Cfg()
	dir := NewCombatDirector(2, 0, 4) // gun cap 0 = unlimited

	th := Threat{Distance: 500, Bearing: 0.05, ToPlayer: Vec3{Z: -1}, Zone: ZoneAttack}
	for i := 0; i < 50; i++ {
		if block := GateFire(th, components.NeverFired, 100,
			cfg.Derived.GunBearing, &cfg.Weapons.Gun, dir, WeaponGun); block != FireOK {
			t.Fatalf("uncapped gun blocked at %d: %d", i, block)
		}
	}
	if dir.InFlight(WeaponGun) != 50 {
		t.Errorf("in-flight = %d, want 50", dir.InFlight(WeaponGun))
	}
}

func TestDirectorReleaseFloor(t *testing.T) {
	dir := NewCombatDirector(2, 0, 4)
	dir.Release(WeaponMissile)
	if dir.InFlight(WeaponMissile) != 0 {
		t.Errorf("release below zero: %d", dir.InFlight(WeaponMissile))
	}
}

func TestDirectorReset(t *testing.T) {
	dir := NewCombatDirector(2, 0, 4)
	dir.tryAcquire(WeaponMissile)
	dir.tryAcquire(WeaponGun)
	dir.Reset()
	if dir.InFlight(WeaponMissile) != 0 || dir.InFlight(WeaponGun) != 0 {
		t.Errorf("reset left slots in flight")
	}
}
