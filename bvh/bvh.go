package bvh

import (
	"errors"
	"fmt"
	"time"

	"github.com/achilleasa/helios/log"
	"github.com/achilleasa/helios/scene"
	"github.com/achilleasa/helios/types"
)

// A 32-byte BVH node. Count == 0 marks an interior node whose two children
// are stored contiguously starting at LeftFirst; otherwise the node is a
// leaf referencing Count shapes starting at shape index LeftFirst.
type Node struct {
	Min       types.Vec3
	LeftFirst uint32
	Max       types.Vec3
	Count     uint32
}

// Check whether the node is a leaf.
func (n Node) IsLeaf() bool {
	return n.Count > 0
}

// Get the node bounds.
func (n Node) Bounds() types.AABB {
	return types.AABB{Min: n.Min, Max: n.Max}
}

// A BVH over a shape list. The shape list is partitioned so that the first
// NumInfinite entries are infinite shapes (planes) which live outside the
// hierarchy and are tested directly; the remainder is permuted to match the
// leaf layout. Nodes[0] is the root.
type Tree struct {
	Nodes       []Node
	Shapes      []scene.Shape
	NumInfinite int
}

type buildStats struct {
	nodes    int
	leafs    int
	maxDepth int
}

type builder struct {
	logger log.Logger

	shapes    []scene.Shape
	boxes     []types.AABB
	centroids []types.Vec3

	scratchShapes    []scene.Shape
	scratchBoxes     []types.AABB
	scratchCentroids []types.Vec3

	nodes   []Node
	numBins int
	stats   buildStats
}

// Build a BVH using top-down binned SAH subdivision. The shape slice is
// reordered in place and retained by the returned tree. The build is fully
// deterministic: identical input produces a bitwise identical node array.
func Build(shapes []scene.Shape, numBins int) (*Tree, error) {
	if len(shapes) == 0 {
		return nil, errors.New("bvh: cannot build over an empty shape list")
	}
	if numBins < 2 {
		return nil, fmt.Errorf("bvh: need at least 2 bins, got %d", numBins)
	}

	start := time.Now()

	// Stable-partition infinite shapes into the prefix.
	numInfinite := 0
	ordered := make([]scene.Shape, 0, len(shapes))
	for i := range shapes {
		if _, ok := shapes[i].AABB(); !ok {
			ordered = append(ordered, shapes[i])
			numInfinite++
		}
	}
	for i := range shapes {
		if _, ok := shapes[i].AABB(); ok {
			ordered = append(ordered, shapes[i])
		}
	}
	copy(shapes, ordered)

	tree := &Tree{Shapes: shapes, NumInfinite: numInfinite}
	numFinite := len(shapes) - numInfinite
	if numFinite == 0 {
		return tree, nil
	}

	b := &builder{
		logger:           log.New("bvh"),
		shapes:           shapes,
		boxes:            make([]types.AABB, len(shapes)),
		centroids:        make([]types.Vec3, len(shapes)),
		scratchShapes:    make([]scene.Shape, len(shapes)),
		scratchBoxes:     make([]types.AABB, len(shapes)),
		scratchCentroids: make([]types.Vec3, len(shapes)),
		nodes:            make([]Node, 1, 2*numFinite),
		numBins:          numBins,
	}
	for i := numInfinite; i < len(shapes); i++ {
		b.boxes[i], _ = shapes[i].AABB()
		b.centroids[i], _ = shapes[i].Location()
	}

	b.stats.nodes = 1
	b.subdivide(0, numInfinite, numFinite, 0)

	tree.Nodes = b.nodes
	b.logger.Debugf(
		"BVH build time: %d ms, shapes: %d (%d infinite), nodes: %d, leafs: %d, maxDepth: %d",
		time.Since(start).Nanoseconds()/1e6,
		len(shapes), numInfinite, b.stats.nodes, b.stats.leafs, b.stats.maxDepth,
	)
	return tree, nil
}

// Subdivide the shape range [first, first+count) into the preallocated node
// slot at nodeIdx.
func (b *builder) subdivide(nodeIdx int, first, count, depth int) {
	if depth > b.stats.maxDepth {
		b.stats.maxDepth = depth
	}

	bounds := types.NewEmptyAABB()
	for i := first; i < first+count; i++ {
		bounds = bounds.Join(b.boxes[i])
	}
	b.nodes[nodeIdx].Min = bounds.Min
	b.nodes[nodeIdx].Max = bounds.Max

	if count <= 1 {
		b.makeLeaf(nodeIdx, first, count)
		return
	}

	// Bin shape centroids along the longest axis of the node bounds.
	axis := bounds.LongestAxis()
	cMin := b.centroids[first][axis]
	cMax := cMin
	for i := first + 1; i < first+count; i++ {
		c := b.centroids[i][axis]
		if c < cMin {
			cMin = c
		}
		if c > cMax {
			cMax = c
		}
	}
	if cMin == cMax {
		// All centroids coincide along the split axis; binning is vacuous.
		b.makeLeaf(nodeIdx, first, count)
		return
	}

	binBounds := make([]types.AABB, b.numBins)
	binShapes := make([][]int, b.numBins)
	for i := range binBounds {
		binBounds[i] = types.NewEmptyAABB()
	}
	invWidth := float32(b.numBins) / (cMax - cMin)
	for i := first; i < first+count; i++ {
		bin := int((b.centroids[i][axis] - cMin) * invWidth)
		if bin >= b.numBins {
			bin = b.numBins - 1
		}
		binBounds[bin] = binBounds[bin].Join(b.boxes[i])
		binShapes[bin] = append(binShapes[bin], i)
	}

	// Sweep the split interface from both ends at once: leftBounds[s] holds
	// the bounds/population of bins [0, s], rightBounds[s] of bins [s, k).
	leftBounds := make([]types.AABB, b.numBins)
	rightBounds := make([]types.AABB, b.numBins)
	leftCount := make([]int, b.numBins)
	rightCount := make([]int, b.numBins)
	accLeft, accRight := types.NewEmptyAABB(), types.NewEmptyAABB()
	nLeft, nRight := 0, 0
	for i := 0; i < b.numBins; i++ {
		accLeft = accLeft.Join(binBounds[i])
		nLeft += len(binShapes[i])
		leftBounds[i] = accLeft
		leftCount[i] = nLeft

		j := b.numBins - 1 - i
		accRight = accRight.Join(binBounds[j])
		nRight += len(binShapes[j])
		rightBounds[j] = accRight
		rightCount[j] = nRight
	}

	// Pick the split minimizing SA(L)*|L| + SA(R)*|R|; fall back to a leaf
	// when no split beats the cost of the undivided node.
	bestCost := bounds.SurfaceArea() * float32(count)
	bestSplit := -1
	for s := 1; s < b.numBins; s++ {
		if leftCount[s-1] == 0 || rightCount[s] == 0 {
			continue
		}
		cost := leftBounds[s-1].SurfaceArea()*float32(leftCount[s-1]) +
			rightBounds[s].SurfaceArea()*float32(rightCount[s])
		if cost < bestCost {
			bestCost = cost
			bestSplit = s
		}
	}
	if bestSplit < 0 {
		b.makeLeaf(nodeIdx, first, count)
		return
	}

	// Re-layout the range so left-bin shapes precede right-bin shapes by
	// re-emitting the bin contents in order through the scratch buffers.
	out := first
	for bin := 0; bin < b.numBins; bin++ {
		for _, idx := range binShapes[bin] {
			b.scratchShapes[out] = b.shapes[idx]
			b.scratchBoxes[out] = b.boxes[idx]
			b.scratchCentroids[out] = b.centroids[idx]
			out++
		}
	}
	copy(b.shapes[first:first+count], b.scratchShapes[first:first+count])
	copy(b.boxes[first:first+count], b.scratchBoxes[first:first+count])
	copy(b.centroids[first:first+count], b.scratchCentroids[first:first+count])
	mid := first + leftCount[bestSplit-1]

	// Allocate two contiguous child slots and recurse.
	left := len(b.nodes)
	b.nodes = append(b.nodes, Node{}, Node{})
	b.stats.nodes += 2
	b.nodes[nodeIdx].LeftFirst = uint32(left)
	b.nodes[nodeIdx].Count = 0
	b.subdivide(left, first, mid-first, depth+1)
	b.subdivide(left+1, mid, first+count-mid, depth+1)
}

func (b *builder) makeLeaf(nodeIdx, first, count int) {
	b.nodes[nodeIdx].LeftFirst = uint32(first)
	b.nodes[nodeIdx].Count = uint32(count)
	b.stats.leafs++
}

// Max supported tree depth for the fixed traversal stacks.
const maxStackDepth = 64

// Intersect a ray with the scene, returning the nearest hit. Infinite shapes
// are tested directly; the rest through the hierarchy, visiting near children
// first and culling nodes beyond the current best distance.
func (t *Tree) Trace(ray types.Ray) (scene.Hit, bool) {
	var best scene.Hit
	found := false

	for i := 0; i < t.NumInfinite; i++ {
		if hit, ok := t.Shapes[i].Trace(ray); ok && (!found || hit.T < best.T) {
			best = hit
			found = true
		}
	}

	if len(t.Nodes) == 0 {
		return best, found
	}

	var stack [maxStackDepth]uint32
	sp := 0
	if entry, ok := t.Nodes[0].Bounds().Hit(ray); ok && (!found || entry < best.T) {
		stack[sp] = 0
		sp++
	}

	for sp > 0 {
		sp--
		node := &t.Nodes[stack[sp]]

		if node.IsLeaf() {
			for i := node.LeftFirst; i < node.LeftFirst+node.Count; i++ {
				if hit, ok := t.Shapes[i].Trace(ray); ok && (!found || hit.T < best.T) {
					best = hit
					found = true
				}
			}
			continue
		}

		near, far := node.LeftFirst, node.LeftFirst+1
		nearT, nearOk := t.Nodes[near].Bounds().Hit(ray)
		farT, farOk := t.Nodes[far].Bounds().Hit(ray)
		if farOk && (!nearOk || farT < nearT) {
			near, far = far, near
			nearT, farT = farT, nearT
			nearOk, farOk = farOk, nearOk
		}
		// Push the farther child first so the nearer one is popped next.
		if farOk && (!found || farT < best.T) {
			stack[sp] = far
			sp++
		}
		if nearOk && (!found || nearT < best.T) {
			stack[sp] = near
			sp++
		}
	}
	return best, found
}

// Check whether anything blocks the ray within maxDist. Returns on the first
// intersection found; no nearest-hit ordering is maintained.
func (t *Tree) Occluded(ray types.Ray, maxDist float32) bool {
	for i := 0; i < t.NumInfinite; i++ {
		if d, ok := t.Shapes[i].TraceSimple(ray); ok && d < maxDist {
			return true
		}
	}

	if len(t.Nodes) == 0 {
		return false
	}

	var stack [maxStackDepth]uint32
	sp := 0
	if entry, ok := t.Nodes[0].Bounds().Hit(ray); ok && entry < maxDist {
		stack[sp] = 0
		sp++
	}

	for sp > 0 {
		sp--
		node := &t.Nodes[stack[sp]]

		if node.IsLeaf() {
			for i := node.LeftFirst; i < node.LeftFirst+node.Count; i++ {
				if d, ok := t.Shapes[i].TraceSimple(ray); ok && d < maxDist {
					return true
				}
			}
			continue
		}

		for child := node.LeftFirst; child <= node.LeftFirst+1; child++ {
			if entry, ok := t.Nodes[child].Bounds().Hit(ray); ok && entry < maxDist {
				stack[sp] = child
				sp++
			}
		}
	}
	return false
}

// Check the structural invariants of the tree: every finite shape referenced
// by exactly one leaf, leaf shape bounds contained in the leaf bounds and
// interior bounds containing the join of their children.
func (t *Tree) Verify() error {
	if len(t.Nodes) == 0 {
		if len(t.Shapes) != t.NumInfinite {
			return errors.New("bvh: finite shapes present but tree is empty")
		}
		return nil
	}

	refs := make([]int, len(t.Shapes))
	if err := t.verifyNode(0, refs); err != nil {
		return err
	}
	for i := t.NumInfinite; i < len(t.Shapes); i++ {
		if refs[i] != 1 {
			return fmt.Errorf("bvh: shape %d referenced by %d leafs", i, refs[i])
		}
	}
	return nil
}

const verifyEpsilon float32 = 1e-4

func (t *Tree) verifyNode(nodeIdx uint32, refs []int) error {
	node := t.Nodes[nodeIdx]

	if node.IsLeaf() {
		if node.LeftFirst < uint32(t.NumInfinite) || node.LeftFirst+node.Count > uint32(len(t.Shapes)) {
			return fmt.Errorf("bvh: leaf %d references shapes out of range", nodeIdx)
		}
		for i := node.LeftFirst; i < node.LeftFirst+node.Count; i++ {
			refs[i]++
			box, ok := t.Shapes[i].AABB()
			if !ok {
				return fmt.Errorf("bvh: leaf %d references infinite shape %d", nodeIdx, i)
			}
			if !containsBox(node.Bounds(), box) {
				return fmt.Errorf("bvh: leaf %d does not contain shape %d", nodeIdx, i)
			}
		}
		return nil
	}

	if node.LeftFirst+1 >= uint32(len(t.Nodes)) {
		return fmt.Errorf("bvh: interior %d references children out of range", nodeIdx)
	}
	join := t.Nodes[node.LeftFirst].Bounds().Join(t.Nodes[node.LeftFirst+1].Bounds())
	if !containsBox(node.Bounds(), join) {
		return fmt.Errorf("bvh: interior %d does not contain its children", nodeIdx)
	}
	if err := t.verifyNode(node.LeftFirst, refs); err != nil {
		return err
	}
	return t.verifyNode(node.LeftFirst+1, refs)
}

func containsBox(outer, inner types.AABB) bool {
	for axis := 0; axis < 3; axis++ {
		if inner.Min[axis] < outer.Min[axis]-verifyEpsilon ||
			inner.Max[axis] > outer.Max[axis]+verifyEpsilon {
			return false
		}
	}
	return true
}
