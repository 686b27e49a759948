package engine

import (
	"math"
	"sort"

	"github.com/0x5844/physics2d/body"
	"github.com/0x5844/physics2d/bounds"
	"github.com/0x5844/physics2d/vector"
)

// defaultCellSize is the default broad-phase bucket size.
const defaultCellSize = 25.0

type gridCell struct{ x, y int }

// spatialGrid is a map-bucketed broad phase: every body, sleeping or not, is
// inserted into every cell its AABB overlaps, and potentialPairs walks each
// bucket emitting canonically-ordered, deduplicated pairs, dropping pairs
// whose AABBs do not overlap and pairs where neither side needs to be
// tested. Generalized from a
// circle/box-specific grid to arbitrary convex-polygon AABBs; single-
// threaded, so no locking is needed here.
type spatialGrid struct {
	cellSize float64
	buckets  map[gridCell][]*body.Body
}

func newSpatialGrid(cellSize float64) *spatialGrid {
	if cellSize <= 0 {
		cellSize = defaultCellSize
	}
	return &spatialGrid{
		cellSize: cellSize,
		buckets:  make(map[gridCell][]*body.Body),
	}
}

func (g *spatialGrid) clear() {
	for k := range g.buckets {
		g.buckets[k] = g.buckets[k][:0]
	}
}

// insert adds b to every bucket its AABB overlaps. Sleeping bodies are
// inserted the same as any other: they don't move, but another body can
// still land on or push into one, and potentialPairs is what decides which
// pairs that produces are worth a narrow-phase test.
func (g *spatialGrid) insert(b *body.Body) {
	bnds := b.Bounds()
	minCell := g.cellOf(bnds.Min)
	maxCell := g.cellOf(bnds.Max)
	for x := minCell.x; x <= maxCell.x; x++ {
		for y := minCell.y; y <= maxCell.y; y++ {
			c := gridCell{x, y}
			g.buckets[c] = append(g.buckets[c], b)
		}
	}
}

func (g *spatialGrid) cellOf(p vector.Vector) gridCell {
	return gridCell{x: floorDiv(p.X, g.cellSize), y: floorDiv(p.Y, g.cellSize)}
}

type pair struct{ a, b *body.Body }

// potentialPairs returns every candidate pair found sharing a bucket,
// skipping pairs where both bodies are static, pairs where neither is
// awake (a sleeping body resting against another sleeping body needs no
// narrow-phase work) and pairs whose AABBs do not overlap, deduplicated by
// canonically-ordered body ID and sorted by body ID so the result does not
// depend on map iteration order.
func (g *spatialGrid) potentialPairs() []pair {
	var pairs []pair
	seen := make(map[[2]uint64]bool)

	for _, bodies := range g.buckets {
		for i := 0; i < len(bodies); i++ {
			for j := i + 1; j < len(bodies); j++ {
				a, b := bodies[i], bodies[j]
				if a.IsStatic() && b.IsStatic() {
					continue
				}
				if !a.ShouldUpdate() && !b.ShouldUpdate() {
					continue
				}
				if !bounds.Overlap(a.Bounds(), b.Bounds()) {
					continue
				}

				var key [2]uint64
				if a.ID() < b.ID() {
					key = [2]uint64{a.ID(), b.ID()}
				} else {
					key = [2]uint64{b.ID(), a.ID()}
				}
				if seen[key] {
					continue
				}
				seen[key] = true
				pairs = append(pairs, pair{a, b})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a.ID() != pairs[j].a.ID() {
			return pairs[i].a.ID() < pairs[j].a.ID()
		}
		return pairs[i].b.ID() < pairs[j].b.ID()
	})
	return pairs
}

func floorDiv(v, size float64) int {
	return int(math.Floor(v / size))
}
