package bvh

import (
	"github.com/achilleasa/helios/scene"
	"github.com/achilleasa/helios/types"
)

// A 4-wide BVH node sharing the 32-byte layout of Node. The two low bits of
// Count discriminate the node kind: interior nodes store childCount-1 there
// (values 1-3, so a node always has at least two children) with the children
// stored contiguously at LeftFirst; leaves store their shape count shifted
// left by two, leaving the low bits zero.
type Node4 struct {
	Min       types.Vec3
	LeftFirst uint32
	Max       types.Vec3
	Count     uint32
}

// Check whether the node is a leaf.
func (n Node4) IsLeaf() bool {
	return n.Count&3 == 0
}

// Get the child count of an interior node.
func (n Node4) NumChildren() int {
	return int(n.Count&3) + 1
}

// Get the shape count of a leaf node.
func (n Node4) NumShapes() int {
	return int(n.Count >> 2)
}

// Get the node bounds.
func (n Node4) Bounds() types.AABB {
	return types.AABB{Min: n.Min, Max: n.Max}
}

// A 4-ary BVH produced by collapsing a 2-wide tree. It shares the shape list
// (and the infinite prefix convention) with its source tree.
type Tree4 struct {
	Nodes       []Node4
	Shapes      []scene.Shape
	NumInfinite int
}

// Collapse a 2-wide tree into a 4-wide one. Each 2-child interior absorbs
// interior children one at a time, growing to three and then four children,
// so that one batched box test replaces up to two levels of the source tree.
func Collapse(t *Tree) *Tree4 {
	t4 := &Tree4{Shapes: t.Shapes, NumInfinite: t.NumInfinite}
	if len(t.Nodes) == 0 {
		return t4
	}
	t4.Nodes = make([]Node4, 1, len(t.Nodes))
	t4.emit(t, 0, 0)
	return t4
}

func (t4 *Tree4) emit(src *Tree, dst int, srcIdx uint32) {
	srcNode := src.Nodes[srcIdx]
	t4.Nodes[dst].Min = srcNode.Min
	t4.Nodes[dst].Max = srcNode.Max

	if srcNode.IsLeaf() {
		t4.Nodes[dst].LeftFirst = srcNode.LeftFirst
		t4.Nodes[dst].Count = srcNode.Count << 2
		return
	}

	// Merge interior children into this node until it holds four children
	// or only leaves remain.
	children := []uint32{srcNode.LeftFirst, srcNode.LeftFirst + 1}
	for len(children) < 4 {
		merged := false
		for i, child := range children {
			if src.Nodes[child].IsLeaf() {
				continue
			}
			grand := src.Nodes[child].LeftFirst
			children = append(children[:i], append([]uint32{grand, grand + 1}, children[i+1:]...)...)
			merged = true
			break
		}
		if !merged {
			break
		}
	}

	base := len(t4.Nodes)
	for range children {
		t4.Nodes = append(t4.Nodes, Node4{})
	}
	t4.Nodes[dst].LeftFirst = uint32(base)
	t4.Nodes[dst].Count = uint32(len(children) - 1)
	for i, child := range children {
		t4.emit(src, base+i, child)
	}
}

// Intersect a ray with the scene, returning the nearest hit. Children of an
// interior node are tested four boxes at a time and visited in entry order.
func (t *Tree4) Trace(ray types.Ray) (scene.Hit, bool) {
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
			for i := node.LeftFirst; i < node.LeftFirst+uint32(node.NumShapes()); i++ {
				if hit, ok := t.Shapes[i].Trace(ray); ok && (!found || hit.T < best.T) {
					best = hit
					found = true
				}
			}
			continue
		}

		numChildren := node.NumChildren()
		var boxes [4]types.AABB
		for i := 0; i < 4; i++ {
			if i < numChildren {
				boxes[i] = t.Nodes[node.LeftFirst+uint32(i)].Bounds()
			} else {
				boxes[i] = types.NewEmptyAABB()
			}
		}
		entries := types.Hit4(&boxes, ray)

		// Sort child slots by descending entry so the nearest child ends
		// up on top of the stack. Missed boxes carry -Inf entries.
		order := [4]int{0, 1, 2, 3}
		for i := 1; i < numChildren; i++ {
			for j := i; j > 0 && entries[order[j]] > entries[order[j-1]]; j-- {
				order[j], order[j-1] = order[j-1], order[j]
			}
		}
		for _, slot := range order[:numChildren] {
			if entries[slot] >= 0 && (!found || entries[slot] < best.T) {
				stack[sp] = node.LeftFirst + uint32(slot)
				sp++
			}
		}
	}
	return best, found
}

// Check whether anything blocks the ray within maxDist.
func (t *Tree4) Occluded(ray types.Ray, maxDist float32) bool {
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
			for i := node.LeftFirst; i < node.LeftFirst+uint32(node.NumShapes()); i++ {
				if d, ok := t.Shapes[i].TraceSimple(ray); ok && d < maxDist {
					return true
				}
			}
			continue
		}

		numChildren := node.NumChildren()
		var boxes [4]types.AABB
		for i := 0; i < 4; i++ {
			if i < numChildren {
				boxes[i] = t.Nodes[node.LeftFirst+uint32(i)].Bounds()
			} else {
				boxes[i] = types.NewEmptyAABB()
			}
		}
		entries := types.Hit4(&boxes, ray)
		for i := 0; i < numChildren; i++ {
			if entries[i] >= 0 && entries[i] < maxDist {
				stack[sp] = node.LeftFirst + uint32(i)
				sp++
			}
		}
	}
	return false
}
