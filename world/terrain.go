package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/skyswarm/config"
)

// Terrain answers ground-height queries. Heights are a small fractal sum of
// simplex octaves clamped to a playable band; agents and chunk content only
// need a height, not a mesh.
type Terrain struct {
	octaves     []opensimplex.Noise
	amplitudes  []float64
	wavelengths []float64
	minH, maxH  float32
}

// NewTerrain creates a terrain generator from the configured octave table.
func NewTerrain(seed int64, cfg *config.TerrainConfig) *Terrain {
	n := len(cfg.Amplitudes)
	if len(cfg.Wavelengths) < n {
		n = len(cfg.Wavelengths)
	}

	t := &Terrain{
		amplitudes:  cfg.Amplitudes[:n],
		wavelengths: cfg.Wavelengths[:n],
		minH:        float32(cfg.MinHeight),
		maxH:        float32(cfg.MaxHeight),
	}
	for i := 0; i < n; i++ {
		// One noise instance per octave so octaves decorrelate.
		t.octaves = append(t.octaves, opensimplex.New(seed+int64(i)*7919))
	}
	return t
}

// HeightAt returns the ground height at a world position.
func (t *Terrain) HeightAt(x, z float32) float32 {
	var h float64
	for i, n := range t.octaves {
		w := t.wavelengths[i]
		h += t.amplitudes[i] * n.Eval2(float64(x)/w, float64(z)/w)
	}

	hf := float32(h)
	if hf < t.minH {
		hf = t.minH
	} else if hf > t.maxH {
		hf = t.maxH
	}
	return hf
}
