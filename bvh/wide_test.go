package bvh

import (
	"math/rand"
	"testing"

	"github.com/achilleasa/helios/scene"
	"github.com/achilleasa/helios/types"
)

func TestCollapseInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	tree, err := Build(randomShapes(t, rng, 300), 16)
	if err != nil {
		t.Fatal(err)
	}
	tree4 := Collapse(tree)

	if tree4.NumInfinite != tree.NumInfinite {
		t.Fatalf("expected %d infinite shapes; got %d", tree.NumInfinite, tree4.NumInfinite)
	}

	leafShapes := 0
	for i, node := range tree4.Nodes {
		if node.IsLeaf() {
			leafShapes += node.NumShapes()
			continue
		}
		n := node.NumChildren()
		if n < 2 || n > 4 {
			t.Fatalf("node %d: expected 2-4 children; got %d", i, n)
		}
		if int(node.LeftFirst)+n > len(tree4.Nodes) {
			t.Fatalf("node %d: children out of range", i)
		}
		// Every child must fit inside its parent bounds.
		for c := 0; c < n; c++ {
			child := tree4.Nodes[node.LeftFirst+uint32(c)]
			if !containsBox(node.Bounds(), child.Bounds()) {
				t.Fatalf("node %d: child %d escapes the parent bounds", i, c)
			}
		}
	}
	if want := len(tree.Shapes) - tree.NumInfinite; leafShapes != want {
		t.Fatalf("expected %d shapes across leaves; got %d", want, leafShapes)
	}
}

func TestCollapseSingleLeaf(t *testing.T) {
	mat := testMaterial(t)
	tree, err := Build([]scene.Shape{scene.NewSphere(types.XYZ(0, 0, 5), 1, mat)}, 16)
	if err != nil {
		t.Fatal(err)
	}
	tree4 := Collapse(tree)
	if len(tree4.Nodes) != 1 || !tree4.Nodes[0].IsLeaf() || tree4.Nodes[0].NumShapes() != 1 {
		t.Fatalf("expected a single leaf root over 1 shape; got %+v", tree4.Nodes)
	}
}

func TestTree4TraceMatchesTree(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	shapes := randomShapes(t, rng, 200)
	mat := testMaterial(t)
	shapes = append(shapes, scene.NewPlane(types.XYZ(0, -12, 0), types.XYZ(0, 1, 0), mat))

	tree, err := Build(shapes, 16)
	if err != nil {
		t.Fatal(err)
	}
	tree4 := Collapse(tree)

	for i := 0; i < 500; i++ {
		origin := types.XYZ(
			rng.Float32()*30-15,
			rng.Float32()*30-15,
			rng.Float32()*30-15,
		)
		dir := types.XYZ(
			rng.Float32()*2-1,
			rng.Float32()*2-1,
			rng.Float32()*2-1,
		)
		if dir.Len2() < 1e-6 {
			continue
		}
		ray := types.NewRay(origin, dir.Normalize())

		want, wantOk := tree.Trace(ray)
		got, gotOk := tree4.Trace(ray)
		if wantOk != gotOk {
			t.Fatalf("ray %d: expected hit=%v; got hit=%v", i, wantOk, gotOk)
		}
		if wantOk && got.T != want.T {
			t.Fatalf("ray %d: expected t=%f; got t=%f", i, want.T, got.T)
		}
	}
}

func TestTree4OccludedMatchesTree(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	tree, err := Build(randomShapes(t, rng, 120), 16)
	if err != nil {
		t.Fatal(err)
	}
	tree4 := Collapse(tree)

	for i := 0; i < 300; i++ {
		origin := types.XYZ(
			rng.Float32()*30-15,
			rng.Float32()*30-15,
			rng.Float32()*30-15,
		)
		dir := types.XYZ(
			rng.Float32()*2-1,
			rng.Float32()*2-1,
			rng.Float32()*2-1,
		)
		if dir.Len2() < 1e-6 {
			continue
		}
		ray := types.NewRay(origin, dir.Normalize())
		maxDist := rng.Float32() * 40

		if want, got := tree.Occluded(ray, maxDist), tree4.Occluded(ray, maxDist); want != got {
			t.Fatalf("ray %d: expected occluded=%v; got %v", i, want, got)
		}
	}
}
