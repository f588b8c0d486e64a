package types

import (
	"math/rand"
	"testing"
)

func TestAABBJoinInclude(t *testing.T) {
	box := NewEmptyAABB()
	box = box.Include(XYZ(1, 2, 3))
	box = box.Include(XYZ(-1, 0, 5))

	expMin := XYZ(-1, 0, 3)
	expMax := XYZ(1, 2, 5)
	if box.Min != expMin || box.Max != expMax {
		t.Fatalf("expected bounds %v-%v; got %v-%v", expMin, expMax, box.Min, box.Max)
	}

	other := NewAABB(XYZ(0, -4, 0), XYZ(0.5, 0, 1))
	joined := box.Join(other)
	if joined.Min != XYZ(-1, -4, 0) || joined.Max != XYZ(1, 2, 5) {
		t.Fatalf("unexpected join result: %v-%v", joined.Min, joined.Max)
	}

	if !joined.Contains(XYZ(0, 0, 2)) {
		t.Fatal("expected joined box to contain inner point")
	}
	if joined.Contains(XYZ(0, 0, 9)) {
		t.Fatal("expected joined box not to contain outer point")
	}
}

func TestAABBSurfaceAreaCenter(t *testing.T) {
	box := NewAABB(XYZ(0, 0, 0), XYZ(2, 3, 4))

	var expArea float32 = 2 * (2*3 + 3*4 + 2*4)
	if got := box.SurfaceArea(); got != expArea {
		t.Fatalf("expected surface area %f; got %f", expArea, got)
	}
	if got := box.Center(); got != XYZ(1, 1.5, 2) {
		t.Fatalf("expected center (1, 1.5, 2); got %v", got)
	}
	if got := box.LongestAxis(); got != 2 {
		t.Fatalf("expected longest axis 2; got %d", got)
	}
}

func TestAABBHit(t *testing.T) {
	box := NewAABB(XYZ(-1, -1, 4), XYZ(1, 1, 6))

	// Frontal hit.
	entry, ok := box.Hit(NewRay(XYZ(0, 0, 0), XYZ(0, 0, 1)))
	if !ok || entry != 4 {
		t.Fatalf("expected hit at t=4; got t=%f ok=%t", entry, ok)
	}

	// Miss.
	if _, ok = box.Hit(NewRay(XYZ(0, 5, 0), XYZ(0, 0, 1))); ok {
		t.Fatal("expected ray above the box to miss")
	}

	// Box behind the origin.
	if _, ok = box.Hit(NewRay(XYZ(0, 0, 10), XYZ(0, 0, 1))); ok {
		t.Fatal("expected box behind the origin to miss")
	}

	// Origin inside reports a zero entry distance.
	entry, ok = box.Hit(NewRay(XYZ(0, 0, 5), XYZ(0, 0, 1)))
	if !ok || entry != 0 {
		t.Fatalf("expected inside origin to hit at t=0; got t=%f ok=%t", entry, ok)
	}

	// Exit distance.
	exit, ok := box.HitFurthest(NewRay(XYZ(0, 0, 0), XYZ(0, 0, 1)))
	if !ok || exit != 6 {
		t.Fatalf("expected exit at t=6; got t=%f ok=%t", exit, ok)
	}
}

func TestHit4MatchesScalar(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randVec := func(scale float32) Vec3 {
		return XYZ(
			(rng.Float32()*2-1)*scale,
			(rng.Float32()*2-1)*scale,
			(rng.Float32()*2-1)*scale,
		)
	}

	for iter := 0; iter < 200; iter++ {
		var boxes [4]AABB
		for i := range boxes {
			corner := randVec(10)
			boxes[i] = NewAABB(corner, corner.Add(XYZ(rng.Float32()*4+0.1, rng.Float32()*4+0.1, rng.Float32()*4+0.1)))
		}
		ray := NewRay(randVec(12), randVec(1).Add(XYZ(0.01, 0.02, 0.03)))

		entries := Hit4(&boxes, ray)
		for i := range boxes {
			scalar, ok := boxes[i].Hit(ray)
			if ok {
				if entries[i] != scalar {
					t.Fatalf("iter %d box %d: expected entry %f; got %f", iter, i, scalar, entries[i])
				}
			} else if entries[i] >= 0 {
				t.Fatalf("iter %d box %d: expected miss; got entry %f", iter, i, entries[i])
			}
		}
	}
}
