package flock

import "math"

// minCellSize avoids tiny grids (and division by zero) for small radii.
const minCellSize = 1e-3

type cellKey struct {
	x, y, z int
}

// Grid is a spatial hash aggregator. Agents are bucketed into cubic cells
// whose side is the perception radius, so every perceived neighbour lies in
// the 3x3x3 block of cells around the agent. Membership is identical to
// LinearScan; only the summation order differs.
//
// Prepare must be called once per tick before any Aggregate call. The grid
// is read-only afterwards and may be queried concurrently.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]int
}

// NewGrid creates an empty spatial hash.
func NewGrid() *Grid {
	return &Grid{cells: make(map[cellKey][]int)}
}

// Prepare rebuilds the buckets from the snapshot.
// Entries with a non-finite state have no cell and are left out.
func (g *Grid) Prepare(snapshot []Snapshot, s *Settings) {
	// Reset slices to length 0 but keep their capacity, so steady state
	// ticks reuse the underlying arrays instead of allocating.
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
	g.cellSize = math.Max(s.PerceptionRadius, minCellSize)
	for i, a := range snapshot {
		if !a.finite() {
			continue
		}
		key := g.keyOf(a)
		g.cells[key] = append(g.cells[key], i)
	}
}

// Aggregate visits the 3x3x3 cells around snapshot[self].
func (g *Grid) Aggregate(self int, snapshot []Snapshot, s *Settings) Neighborhood {
	var acc accumulator
	me := snapshot[self]
	if !me.finite() {
		return acc.result()
	}
	c := g.keyOf(me)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				bucket, ok := g.cells[cellKey{c.x + dx, c.y + dy, c.z + dz}]
				if !ok {
					continue
				}
				for _, j := range bucket {
					if j == self {
						continue
					}
					acc.visit(me, snapshot[j], s)
				}
			}
		}
	}
	return acc.result()
}

func (g *Grid) keyOf(a Snapshot) cellKey {
	return cellKey{
		x: int(math.Floor(a.Position.X / g.cellSize)),
		y: int(math.Floor(a.Position.Y / g.cellSize)),
		z: int(math.Floor(a.Position.Z / g.cellSize)),
	}
}
