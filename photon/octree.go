package photon

import (
	"errors"
	"math/rand"

	"github.com/achilleasa/helios/types"
)

const (
	// A leaf cell splits into eight children once it holds more photons
	// than this.
	MaxPhotonsInCell = 4096

	// Default world cube half-size; photons outside [-S, S]^3 are dropped.
	DefaultHalfSize float32 = 1024

	// Cells stop splitting below this depth. At depth 24 a default-sized
	// cell measures ~1e-4 units, so any overflow past that point comes
	// from (near-)coincident photons that no split can separate.
	maxTreeDepth = 24
)

// A deposited photon: which light it came from, where it landed and how much
// energy it carried.
type Photon struct {
	Light     int
	Position  types.Vec3
	Intensity float32
}

type cell struct {
	// Empirical distribution over light ids for all photons stored in
	// this cell's subtree. Kept in sync on every insert along the path
	// from the root down to the leaf.
	cdf *EmpiricalPDF

	// Child octants; nil marks a leaf.
	children *[8]*cell

	// Photons stored at this leaf.
	photons []Photon
}

// A spatial index over photon deposits used to guide light sampling. Each
// cell of the octree holds an empirical CDF over light sources; sampling a
// shading point blends the CDFs of the eight cells around it so that the
// returned distribution varies smoothly across cell boundaries.
type Octree struct {
	root      *cell
	half      float32
	numLights int
}

// Summary counters for inspection.
type OctreeStats struct {
	Cells    int
	Leafs    int
	Photons  int
	MaxDepth int
}

// Create an octree over the cube [-halfSize, halfSize]^3 guiding samples
// across numLights light sources.
func NewOctree(numLights int, halfSize float32) (*Octree, error) {
	if numLights < 1 {
		return nil, errors.New("photon: octree needs at least one light")
	}
	if halfSize <= 0 {
		return nil, errors.New("photon: octree half-size must be positive")
	}
	cdf, err := NewEmpiricalPDF(numLights)
	if err != nil {
		return nil, err
	}
	return &Octree{
		root:      &cell{cdf: cdf},
		half:      halfSize,
		numLights: numLights,
	}, nil
}

func (o *Octree) bounds() types.AABB {
	return types.NewAABB(
		types.XYZ(-o.half, -o.half, -o.half),
		types.XYZ(o.half, o.half, o.half),
	)
}

// Get the octant index for a position inside bounds: 4*xHigh + 2*yHigh + zHigh.
func octant(bounds types.AABB, p types.Vec3) int {
	center := bounds.Center()
	idx := 0
	if p[0] >= center[0] {
		idx |= 4
	}
	if p[1] >= center[1] {
		idx |= 2
	}
	if p[2] >= center[2] {
		idx |= 1
	}
	return idx
}

// Get the bounds of an octant.
func octantBounds(bounds types.AABB, idx int) types.AABB {
	center := bounds.Center()
	child := bounds
	if idx&4 != 0 {
		child.Min[0] = center[0]
	} else {
		child.Max[0] = center[0]
	}
	if idx&2 != 0 {
		child.Min[1] = center[1]
	} else {
		child.Max[1] = center[1]
	}
	if idx&1 != 0 {
		child.Min[2] = center[2]
	} else {
		child.Max[2] = center[2]
	}
	return child
}

// Insert a photon deposit. Every cell on the path from the root to the
// holding leaf has its CDF weight for the light increased by the photon
// intensity. Returns false when the position falls outside the world cube
// and the photon was discarded.
func (o *Octree) Insert(light int, pos types.Vec3, intensity float32) bool {
	if light < 0 || light >= o.numLights {
		return false
	}
	bounds := o.bounds()
	if !bounds.Contains(pos) {
		return false
	}

	node := o.root
	depth := 0
	for {
		node.cdf.Add(light, intensity)

		if node.children != nil {
			idx := octant(bounds, pos)
			bounds = octantBounds(bounds, idx)
			node = node.children[idx]
			depth++
			continue
		}

		node.photons = append(node.photons, Photon{Light: light, Position: pos, Intensity: intensity})
		if len(node.photons) > MaxPhotonsInCell && depth < maxTreeDepth {
			o.split(node, bounds)
		}
		return true
	}
}

// Convert a leaf into an interior cell, redistributing its photons into
// eight child leaves.
func (o *Octree) split(node *cell, bounds types.AABB) {
	var children [8]*cell
	for i := range children {
		cdf, _ := NewEmpiricalPDF(o.numLights)
		children[i] = &cell{cdf: cdf}
	}
	for _, ph := range node.photons {
		child := children[octant(bounds, ph.Position)]
		child.cdf.Add(ph.Light, ph.Intensity)
		child.photons = append(child.photons, ph)
	}
	node.children = &children
	node.photons = nil
}

// Per-axis trilinear weight of the cell owning v and the offset toward the
// adjacent cell. A point at the cell center owns the full weight; a point on
// a face splits it evenly with the neighbor across that face.
func trilinear(v types.Vec3, bounds types.AABB) (w [3]float32, off [3]float32) {
	center := bounds.Center()
	for axis := 0; axis < 3; axis++ {
		size := bounds.Max[axis] - bounds.Min[axis]
		if v[axis] >= center[axis] {
			w[axis] = (bounds.Max[axis] - (v[axis] - size/2)) / size
			off[axis] = size
		} else {
			w[axis] = ((v[axis] + size/2) - bounds.Min[axis]) / size
			off[axis] = -size
		}
	}
	return w, off
}

// Get the CDF of the cell containing pos at the given depth, or of the
// deepest existing ancestor when the tree is shallower there. Positions
// outside the cube are clamped back inside.
func (o *Octree) cellCDF(pos types.Vec3, depth int) *EmpiricalPDF {
	for axis := 0; axis < 3; axis++ {
		if pos[axis] < -o.half {
			pos[axis] = -o.half
		}
		if pos[axis] > o.half {
			pos[axis] = o.half
		}
	}

	bounds := o.bounds()
	node := o.root
	for d := 0; d < depth && node.children != nil; d++ {
		idx := octant(bounds, pos)
		bounds = octantBounds(bounds, idx)
		node = node.children[idx]
	}
	return node.cdf
}

// Draw a light id for a shading location together with the probability of
// that id being returned. The location samples from the eight cells around
// it at the depth of its own leaf, weighted trilinearly, so the effective
// distribution interpolates smoothly between neighboring cells. Locations
// outside the world cube fall back to a uniform pick over all lights.
func (o *Octree) Sample(v types.Vec3, rng *rand.Rand) (int, float32) {
	bounds := o.bounds()
	if !bounds.Contains(v) {
		return rng.Intn(o.numLights), 1 / float32(o.numLights)
	}

	// Locate the leaf holding v, recording its depth and bounds.
	node := o.root
	depth := 0
	for node.children != nil {
		idx := octant(bounds, v)
		bounds = octantBounds(bounds, idx)
		node = node.children[idx]
		depth++
	}

	w, off := trilinear(v, bounds)

	// Pick one of the eight octants by three independent coin flips.
	pos := v
	for axis := 0; axis < 3; axis++ {
		if rng.Float32() >= w[axis] {
			pos[axis] += off[axis]
		}
	}
	light := o.cellCDF(pos, depth).Sample(rng)

	// The effective pdf sums the weighted bin probability over all eight
	// octant combinations.
	var pdf float32
	for mask := 0; mask < 8; mask++ {
		prob := float32(1)
		q := v
		for axis := 0; axis < 3; axis++ {
			if mask&(1<<axis) != 0 {
				prob *= 1 - w[axis]
				q[axis] += off[axis]
			} else {
				prob *= w[axis]
			}
		}
		pdf += prob * o.cellCDF(q, depth).BinProb(light)
	}
	return light, pdf
}

// Get the light count the octree guides over.
func (o *Octree) NumLights() int {
	return o.numLights
}

// Collect structural counters.
func (o *Octree) Stats() OctreeStats {
	var stats OctreeStats
	o.walk(o.root, 0, &stats)
	return stats
}

func (o *Octree) walk(node *cell, depth int, stats *OctreeStats) {
	stats.Cells++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}
	if node.children == nil {
		stats.Leafs++
		stats.Photons += len(node.photons)
		return
	}
	for _, child := range node.children {
		o.walk(child, depth+1, stats)
	}
}
