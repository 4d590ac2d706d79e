package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.World.ChunkSize != 1000 {
		t.Errorf("chunk_size = %v, want 1000", cfg.World.ChunkSize)
	}
	if cfg.World.LoadRadiusChunks != 8 || cfg.World.UnloadRadiusChunks != 12 {
		t.Errorf("residency radii = %d/%d, want 8/12",
			cfg.World.LoadRadiusChunks, cfg.World.UnloadRadiusChunks)
	}
	if cfg.Zones.WarpDistance != 5000 || cfg.Zones.AttackDistance != 300 {
		t.Errorf("zone thresholds wrong: %+v", cfg.Zones)
	}
	if cfg.Weapons.Missile.GlobalCap != 2 {
		t.Errorf("missile global_cap = %d, want 2", cfg.Weapons.Missile.GlobalCap)
	}
	if cfg.Weapons.Turret.CooldownSec != 2.0 || cfg.Weapons.Turret.Speed != 300 {
		t.Errorf("turret tuning wrong: %+v", cfg.Weapons.Turret)
	}
	if cfg.World.TurretsPerVillage != 2 {
		t.Errorf("turrets_per_village = %d, want 2", cfg.World.TurretsPerVillage)
	}
	if cfg.Drone.InitialWave != 20 {
		t.Errorf("initial_wave = %d, want 20", cfg.Drone.InitialWave)
	}
}

func TestDerivedValues(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Derived.DT32 <= 0 {
		t.Errorf("DT32 = %f, want positive", cfg.Derived.DT32)
	}

	wantMissile := 45 * math.Pi / 180
	if math.Abs(float64(cfg.Derived.MissileBearing)-wantMissile) > 1e-4 {
		t.Errorf("missile bearing = %f rad, want %f", cfg.Derived.MissileBearing, wantMissile)
	}
	wantGun := 10 * math.Pi / 180
	if math.Abs(float64(cfg.Derived.GunBearing)-wantGun) > 1e-4 {
		t.Errorf("gun bearing = %f rad, want %f", cfg.Derived.GunBearing, wantGun)
	}
}

func TestUserOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	override := "drone:\n  cruise_speed: 200.0\n"
	if err := os.WriteFile(path, []byte(override), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load override: %v", err)
	}

	if cfg.Drone.CruiseSpeed != 200 {
		t.Errorf("cruise_speed = %v, want 200 from override", cfg.Drone.CruiseSpeed)
	}
	// Untouched sections keep defaults.
	if cfg.World.ChunkSize != 1000 {
		t.Errorf("override clobbered chunk_size: %v", cfg.World.ChunkSize)
	}
}

func TestValidateRejectsCollapsedHysteresis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	bad := "world:\n  load_radius_chunks: 8\n  unload_radius_chunks: 8\n"
	if err := os.WriteFile(path, []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Errorf("equal load/unload radii accepted; the hysteresis gap must be enforced")
	}
}

func TestValidateRejectsUnorderedZones(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	bad := "zones:\n  sprint_distance: 6000.0\n" // above warp_distance 5000
	if err := os.WriteFile(path, []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Errorf("unordered zone thresholds accepted")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("reload snapshot: %v", err)
	}
	if back.World.ChunkSize != cfg.World.ChunkSize ||
		back.Zones.DangerMultiplier != cfg.Zones.DangerMultiplier {
		t.Errorf("snapshot round trip changed values")
	}
}
