package world

import (
	"testing"

	"github.com/pthm-cable/skyswarm/config"
)

func TestTerrainDeterministic(t *testing.T) {
	cfg := config.Cfg()
	a := NewTerrain(42, &cfg.Terrain)
	b := NewTerrain(42, &cfg.Terrain)

	for _, p := range [][2]float32{{0, 0}, {123.5, -987.25}, {50000, 50000}} {
		ha := a.HeightAt(p[0], p[1])
		hb := b.HeightAt(p[0], p[1])
		if ha != hb {
			t.Errorf("HeightAt(%v): %f vs %f with same seed", p, ha, hb)
		}
	}
}

func TestTerrainClamped(t *testing.T) {
	cfg := config.Cfg()
	terrain := NewTerrain(7, &cfg.Terrain)

	minH := float32(cfg.Terrain.MinHeight)
	maxH := float32(cfg.Terrain.MaxHeight)

	for x := float32(-10000); x <= 10000; x += 517 {
		for z := float32(-10000); z <= 10000; z += 613 {
			h := terrain.HeightAt(x, z)
			if h < minH || h > maxH {
				t.Fatalf("HeightAt(%.0f, %.0f) = %f outside [%f, %f]", x, z, h, minH, maxH)
			}
		}
	}
}

func TestTerrainVaries(t *testing.T) {
	cfg := config.Cfg()
	terrain := NewTerrain(7, &cfg.Terrain)

	first := terrain.HeightAt(0, 0)
	varies := false
	for x := float32(100); x < 5000; x += 250 {
		if terrain.HeightAt(x, x) != first {
			varies = true
			break
		}
	}
	if !varies {
		t.Errorf("terrain is flat over 5km")
	}
}
