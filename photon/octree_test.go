package photon

import (
	"math/rand"
	"testing"

	"github.com/achilleasa/helios/types"
	"github.com/chewxy/math32"
)

func TestOctreeValidation(t *testing.T) {
	if _, err := NewOctree(0, 1024); err == nil {
		t.Fatal("expected an error for zero lights")
	}
	if _, err := NewOctree(2, 0); err == nil {
		t.Fatal("expected an error for a non-positive half-size")
	}
}

func TestOctreeInsertDiscards(t *testing.T) {
	tree, err := NewOctree(2, 100)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Insert(0, types.XYZ(200, 0, 0), 1) {
		t.Fatal("expected a photon outside the world cube to be discarded")
	}
	if tree.Insert(-1, types.XYZ(0, 0, 0), 1) {
		t.Fatal("expected a photon with a negative light id to be discarded")
	}
	if tree.Insert(2, types.XYZ(0, 0, 0), 1) {
		t.Fatal("expected a photon with a light id out of range to be discarded")
	}
	if !tree.Insert(1, types.XYZ(50, -50, 99), 1) {
		t.Fatal("expected a photon inside the world cube to be accepted")
	}
	if got := tree.Stats().Photons; got != 1 {
		t.Fatalf("expected 1 stored photon; got %d", got)
	}
}

func TestTrilinearWeights(t *testing.T) {
	bounds := types.NewAABB(types.XYZ(0, 0, 0), types.XYZ(1, 1, 1))

	// The cell center owns the full weight on every axis.
	w, _ := trilinear(types.XYZ(0.5, 0.5, 0.5), bounds)
	for axis := 0; axis < 3; axis++ {
		if math32.Abs(w[axis]-1) > 1e-6 {
			t.Fatalf("axis %d: expected weight 1 at the cell center; got %f", axis, w[axis])
		}
	}

	// A face point splits the weight evenly with the neighbor behind it.
	w, off := trilinear(types.XYZ(1, 0.5, 0.5), bounds)
	if math32.Abs(w[0]-0.5) > 1e-6 || off[0] != 1 {
		t.Fatalf("expected weight 0.5 with offset +1 on the max face; got w=%f off=%f", w[0], off[0])
	}
	w, off = trilinear(types.XYZ(0.25, 0.5, 0.5), bounds)
	if math32.Abs(w[0]-0.75) > 1e-6 || off[0] != -1 {
		t.Fatalf("expected weight 0.75 with offset -1 in the lower half; got w=%f off=%f", w[0], off[0])
	}
}

func TestOctreeSampleCentralCell(t *testing.T) {
	tree, err := NewOctree(5, 1024)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(8))
	for i := 0; i < 100; i++ {
		pos := types.XYZ(
			rng.Float32()*100-50,
			rng.Float32()*100-50,
			rng.Float32()*100-50,
		)
		if !tree.Insert(3, pos, 1) {
			t.Fatalf("insert %d failed", i)
		}
	}

	// All energy belongs to light 3, so the root cell returns it with
	// certainty at its center where the trilinear weights are all 1.
	for i := 0; i < 50; i++ {
		light, pdf := tree.Sample(types.XYZ(0, 0, 0), rng)
		if light != 3 {
			t.Fatalf("expected light 3; got %d", light)
		}
		if math32.Abs(pdf-1) > 1e-5 {
			t.Fatalf("expected pdf 1; got %f", pdf)
		}
	}
}

func TestOctreeSampleOutsideCube(t *testing.T) {
	tree, err := NewOctree(4, 10)
	if err != nil {
		t.Fatal(err)
	}
	tree.Insert(0, types.XYZ(0, 0, 0), 1)

	rng := rand.New(rand.NewSource(19))
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		light, pdf := tree.Sample(types.XYZ(50, 0, 0), rng)
		if pdf != 0.25 {
			t.Fatalf("expected a uniform pdf of 0.25 outside the cube; got %f", pdf)
		}
		seen[light] = true
	}
	if len(seen) != 4 {
		t.Fatalf("expected all 4 lights sampled uniformly; got %d distinct", len(seen))
	}
}

func TestOctreeSplit(t *testing.T) {
	tree, err := NewOctree(2, 1024)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(21))
	for i := 0; i <= MaxPhotonsInCell; i++ {
		pos := types.XYZ(
			rng.Float32()*2000-1000,
			rng.Float32()*2000-1000,
			rng.Float32()*2000-1000,
		)
		tree.Insert(i%2, pos, 1)
	}

	stats := tree.Stats()
	if stats.Cells != 9 || stats.Leafs != 8 {
		t.Fatalf("expected the root to split into 8 leaves; got %d cells, %d leafs", stats.Cells, stats.Leafs)
	}
	if stats.Photons != MaxPhotonsInCell+1 {
		t.Fatalf("expected %d photons after redistribution; got %d", MaxPhotonsInCell+1, stats.Photons)
	}
	if stats.MaxDepth != 1 {
		t.Fatalf("expected max depth 1; got %d", stats.MaxDepth)
	}
}

func TestOctreeSampleInterpolates(t *testing.T) {
	tree, err := NewOctree(2, 1024)
	if err != nil {
		t.Fatal(err)
	}

	// Fill the x<0 half with photons from light 0 and the x>0 half with
	// photons from light 1, with enough deposits to split the root.
	rng := rand.New(rand.NewSource(33))
	for i := 0; i <= MaxPhotonsInCell; i++ {
		y := rng.Float32()*2000 - 1000
		z := rng.Float32()*2000 - 1000
		x := rng.Float32() * 1000
		if i%2 == 0 {
			tree.Insert(0, types.XYZ(-x-1, y, z), 1)
		} else {
			tree.Insert(1, types.XYZ(x+1, y, z), 1)
		}
	}
	if tree.Stats().Leafs != 8 {
		t.Fatal("expected the root to split")
	}

	// Deep inside the x<0 half only light 0 can come back.
	light, pdf := tree.Sample(types.XYZ(-512, -512, -512), rng)
	if light != 0 || math32.Abs(pdf-1) > 1e-5 {
		t.Fatalf("expected light 0 with pdf 1 at the left cell center; got light %d pdf %f", light, pdf)
	}

	// Just left of the x=0 boundary the weights blend the two halves, so
	// either light returns with a pdf close to one half.
	_, pdf = tree.Sample(types.XYZ(-0.001, -300, 200), rng)
	if math32.Abs(pdf-0.5) > 1e-3 {
		t.Fatalf("expected a blended pdf of ~0.5 at the cell boundary; got %f", pdf)
	}
}
