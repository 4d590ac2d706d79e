package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skyswarm/components"
)

// Neighbor holds a nearby entity with precomputed spatial data.
// This avoids recomputing deltas and distances in the flocking hot path.
type Neighbor struct {
	E          ecs.Entity
	DX, DY, DZ float32 // Delta from query origin
	DistSq     float32 // Squared distance (avoid sqrt in hot path)
}

// cellKey addresses a grid cell on the XZ plane. The world is unbounded, so
// cells live in a sparse map rather than a fixed array.
type cellKey struct {
	col, row int
}

// SpatialGrid provides neighbor lookups on the XZ plane. Altitude spread is
// small relative to the cell size, so a 2D index is enough; distances still
// use all three axes.
type SpatialGrid struct {
	cellSize float32
	cells    map[cellKey][]ecs.Entity
}

// NewSpatialGrid creates a sparse spatial grid with the given cell size.
func NewSpatialGrid(cellSize float32) *SpatialGrid {
	return &SpatialGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]ecs.Entity),
	}
}

// Clear removes all entities, keeping capacity for cells that were occupied
// last rebuild. Cells that stayed empty through a full rebuild are deleted,
// so the map does not accumulate keys as the swarm travels across the world.
func (g *SpatialGrid) Clear() {
	for k, cell := range g.cells {
		if len(cell) == 0 {
			delete(g.cells, k)
			continue
		}
		g.cells[k] = cell[:0]
	}
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, x, z float32) {
	k := g.key(x, z)
	g.cells[k] = append(g.cells[k], e)
}

// MaxQueryResults caps the number of neighbors returned by spatial queries.
// This prevents density spikes from causing unbounded work.
const MaxQueryResults = 128

// QueryRadiusInto finds entities within radius and appends to dst (up to
// MaxQueryResults). Returns the updated slice. Reuse dst across calls to
// avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, z, radius float32, exclude ecs.Entity, posMap *ecs.Map1[components.Position]) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1
	center := g.key(x, z)
	radiusSq := radius * radius

	for dc := -cellRadius; dc <= cellRadius; dc++ {
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			cell, ok := g.cells[cellKey{center.col + dc, center.row + dr}]
			if !ok {
				continue
			}

			for _, e := range cell {
				if e == exclude {
					continue
				}
				pos := posMap.Get(e)
				if pos == nil {
					continue
				}

				dx := pos.X - x
				dy := pos.Y - y
				dz := pos.Z - z
				distSq := dx*dx + dy*dy + dz*dz

				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: e, DX: dx, DY: dy, DZ: dz, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}

	return dst
}

func (g *SpatialGrid) key(x, z float32) cellKey {
	col := int(x / g.cellSize)
	if x < 0 {
		col--
	}
	row := int(z / g.cellSize)
	if z < 0 {
		row--
	}
	return cellKey{col, row}
}
