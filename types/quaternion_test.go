package types

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestQuatRotate(t *testing.T) {
	// A quarter turn about +Y maps +Z to +X.
	q := QuatFromAxisAngle(XYZ(0, 1, 0), math32.Pi/2)
	got := q.Rotate(XYZ(0, 0, 1))
	if got.Sub(XYZ(1, 0, 0)).Len() > 1e-6 {
		t.Fatalf("expected (1, 0, 0); got %v", got)
	}
}

func TestQuatIdentity(t *testing.T) {
	v := XYZ(1, 2, 3)
	if got := QuatIdent().Rotate(v); got != v {
		t.Fatalf("expected the identity rotation to keep %v; got %v", v, got)
	}
}

func TestQuatMulComposes(t *testing.T) {
	// Two quarter turns about +Y compose to a half turn.
	quarter := QuatFromAxisAngle(XYZ(0, 1, 0), math32.Pi/2)
	half := quarter.Mul(quarter)
	got := half.Rotate(XYZ(0, 0, 1))
	if got.Sub(XYZ(0, 0, -1)).Len() > 1e-6 {
		t.Fatalf("expected (0, 0, -1); got %v", got)
	}
}

func TestQuatInverse(t *testing.T) {
	q := QuatFromAxisAngle(XYZ(1, 1, 0).Normalize(), 0.7)
	v := XYZ(0.3, -0.2, 0.9)
	got := q.Inverse().Rotate(q.Rotate(v))
	if got.Sub(v).Len() > 1e-5 {
		t.Fatalf("expected the inverse rotation to restore %v; got %v", v, got)
	}
}
