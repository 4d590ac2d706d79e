// Package world provides deterministic chunk streaming: which chunks are
// resident around the player, and what each chunk contains.
package world

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/skyswarm/components"
	"github.com/pthm-cable/skyswarm/config"
)

// Hazard is a large static obstacle drones must steer around.
type Hazard struct {
	X, Y, Z float32
	Radius  float32
}

// Placement is a decorative entity position inside a chunk (trees, rocks).
// The streaming layer only forwards these to the render port.
type Placement struct {
	X, Y, Z float32
	Scale   float32
}

// PatrolMember describes one drone of a chunk's patrol group.
type PatrolMember struct {
	X, Y, Z  float32
	Kamikaze bool
}

// Content is everything a chunk spawns. It is a pure function of
// (coordinate, world seed): re-entering a chunk reproduces it exactly.
type Content struct {
	Trees   []Placement
	Rocks   []Placement
	Hazards []Hazard
	Village bool
	Turrets []Placement
	Patrol  []PatrolMember
}

// Chunk is an ephemeral record of a resident chunk.
type Chunk struct {
	Coord   components.ChunkCoord
	Content *Content
}

// CoordAt maps a world position to its chunk coordinate.
func CoordAt(x, z, chunkSize float32) components.ChunkCoord {
	return components.ChunkCoord{
		X: int(math.Floor(float64(x) / float64(chunkSize))),
		Z: int(math.Floor(float64(z) / float64(chunkSize))),
	}
}

// ChunkIndex tracks which chunks are resident around the player.
//
// Residency uses a square window: a chunk loads when both coordinate deltas
// are within the load radius and unloads only when the Chebyshev distance
// exceeds the unload radius. The gap between the radii is deliberate
// hysteresis; without it a player oscillating across one boundary would
// churn the same chunk's spawn/despawn every crossing.
type ChunkIndex struct {
	seed    int64
	cfg     *config.WorldConfig
	terrain *Terrain

	resident        map[components.ChunkCoord]*Chunk
	lastPlayerChunk components.ChunkCoord
	primed          bool
}

// NewChunkIndex creates an empty chunk index.
func NewChunkIndex(seed int64, cfg *config.WorldConfig, terrain *Terrain) *ChunkIndex {
	return &ChunkIndex{
		seed:     seed,
		cfg:      cfg,
		terrain:  terrain,
		resident: make(map[components.ChunkCoord]*Chunk),
	}
}

// Resident reports whether a chunk is currently loaded.
func (ci *ChunkIndex) Resident(c components.ChunkCoord) bool {
	_, ok := ci.resident[c]
	return ok
}

// ResidentCount returns the number of loaded chunks.
func (ci *ChunkIndex) ResidentCount() int {
	return len(ci.resident)
}

// ResidentCoords appends the coordinates of all loaded chunks to dst and
// returns the extended slice. Order is unspecified.
func (ci *ChunkIndex) ResidentCoords(dst []components.ChunkCoord) []components.ChunkCoord {
	for c := range ci.resident {
		dst = append(dst, c)
	}
	return dst
}

// Update recomputes residency for the given player position and returns the
// chunks loaded and the coordinates unloaded this call. Idempotent: an
// unmoved player produces no churn.
func (ci *ChunkIndex) Update(playerX, playerZ float32) (loaded []*Chunk, unloaded []components.ChunkCoord) {
	playerChunk := CoordAt(playerX, playerZ, float32(ci.cfg.ChunkSize))

	// Early out when the player has not changed chunk.
	if ci.primed && playerChunk == ci.lastPlayerChunk {
		return nil, nil
	}
	ci.lastPlayerChunk = playerChunk
	ci.primed = true

	// Tear down chunks beyond the unload radius.
	for coord := range ci.resident {
		dx := abs(coord.X - playerChunk.X)
		dz := abs(coord.Z - playerChunk.Z)
		if dx > ci.cfg.UnloadRadiusChunks || dz > ci.cfg.UnloadRadiusChunks {
			unloaded = append(unloaded, coord)
		}
	}
	for _, coord := range unloaded {
		delete(ci.resident, coord)
	}

	// Load chunks inside the load radius.
	r := ci.cfg.LoadRadiusChunks
	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			coord := components.ChunkCoord{X: playerChunk.X + dx, Z: playerChunk.Z + dz}
			if _, ok := ci.resident[coord]; ok {
				continue
			}
			ch := &Chunk{Coord: coord, Content: ci.generate(coord)}
			ci.resident[coord] = ch
			loaded = append(loaded, ch)
		}
	}

	return loaded, unloaded
}

// generate rolls a chunk's content from its coordinate hash. The local RNG is
// seeded from Hash2 so every decision below is reproducible.
func (ci *ChunkIndex) generate(coord components.ChunkCoord) *Content {
	h := Hash2(ci.seed, coord.X, coord.Z)
	rng := rand.New(rand.NewSource(int64(h)))

	size := float32(ci.cfg.ChunkSize)
	originX := float32(coord.X) * size
	originZ := float32(coord.Z) * size

	c := &Content{}

	// Trees
	nTrees := ci.cfg.TreesPerChunkMin
	if span := ci.cfg.TreesPerChunkMax - ci.cfg.TreesPerChunkMin; span > 0 {
		nTrees += rng.Intn(span + 1)
	}
	for i := 0; i < nTrees; i++ {
		x := originX + rng.Float32()*size
		z := originZ + rng.Float32()*size
		c.Trees = append(c.Trees, Placement{
			X: x, Y: ci.terrain.HeightAt(x, z), Z: z,
			Scale: 3 + rng.Float32()*3,
		})
	}

	// Rocks
	nRocks := ci.cfg.RocksPerChunkMin
	if span := ci.cfg.RocksPerChunkMax - ci.cfg.RocksPerChunkMin; span > 0 {
		nRocks += rng.Intn(span + 1)
	}
	for i := 0; i < nRocks; i++ {
		x := originX + rng.Float32()*size
		z := originZ + rng.Float32()*size
		c.Rocks = append(c.Rocks, Placement{
			X: x, Y: ci.terrain.HeightAt(x, z), Z: z,
			Scale: 1 + rng.Float32()*2,
		})
	}

	// Floating hazards: the obstacles flocking avoidance steers around.
	if ci.cfg.HazardsPerChunkMax > 0 {
		nHazards := rng.Intn(ci.cfg.HazardsPerChunkMax + 1)
		altSpan := float32(ci.cfg.HazardAltitudeMax - ci.cfg.HazardAltitudeMin)
		radSpan := float32(ci.cfg.HazardRadiusMax - ci.cfg.HazardRadiusMin)
		for i := 0; i < nHazards; i++ {
			c.Hazards = append(c.Hazards, Hazard{
				X:      originX + rng.Float32()*size,
				Y:      float32(ci.cfg.HazardAltitudeMin) + rng.Float32()*altSpan,
				Z:      originZ + rng.Float32()*size,
				Radius: float32(ci.cfg.HazardRadiusMin) + rng.Float32()*radSpan,
			})
		}
	}

	c.Village = rng.Float64() < ci.cfg.VillageChance

	// Turret emplacements ring the village they guard.
	if c.Village {
		centerX := originX + size/2
		centerZ := originZ + size/2
		for i := 0; i < ci.cfg.TurretsPerVillage; i++ {
			x := centerX + (rng.Float32()-0.5)*300
			z := centerZ + (rng.Float32()-0.5)*300
			c.Turrets = append(c.Turrets, Placement{
				X: x, Y: ci.terrain.HeightAt(x, z), Z: z,
				Scale: 1,
			})
		}
	}

	// Drone patrol: at most one group per chunk.
	if rng.Float64() < ci.cfg.PatrolChance {
		n := ci.cfg.PatrolSizeMin
		if span := ci.cfg.PatrolSizeMax - ci.cfg.PatrolSizeMin; span > 0 {
			n += rng.Intn(span + 1)
		}
		centerX := originX + size/2
		centerZ := originZ + size/2
		alt := float32(ci.cfg.PatrolAltitude)
		for i := 0; i < n; i++ {
			c.Patrol = append(c.Patrol, PatrolMember{
				X:        centerX + (rng.Float32()-0.5)*200,
				Y:        alt + (rng.Float32()-0.5)*100,
				Z:        centerZ + (rng.Float32()-0.5)*200,
				Kamikaze: rng.Float64() < ci.cfg.KamikazeChance,
			})
		}
	}

	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
