package types

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestReflect(t *testing.T) {
	in := XYZ(1, -1, 0).Normalize()
	out := in.Reflect(XYZ(0, 1, 0))
	exp := XYZ(1, 1, 0).Normalize()
	if out.Sub(exp).Len() > 1e-6 {
		t.Fatalf("expected reflection %v; got %v", exp, out)
	}
}

func TestRefract(t *testing.T) {
	// Normal incidence passes straight through.
	out, ok := XYZ(0, 0, 1).Refract(XYZ(0, 0, -1), 1/1.5)
	if !ok {
		t.Fatal("expected refraction at normal incidence")
	}
	if out.Sub(XYZ(0, 0, 1)).Len() > 1e-6 {
		t.Fatalf("expected unchanged direction; got %v", out)
	}

	// Oblique entry bends toward the normal and obeys Snell's law.
	in := XYZ(1, -1, 0).Normalize()
	n := XYZ(0, 1, 0)
	out, ok = in.Refract(n, 1/1.5)
	if !ok {
		t.Fatal("expected refraction on entering denser medium")
	}
	sinI := math32.Sqrt(1 - in.Dot(n.Neg())*in.Dot(n.Neg()))
	sinT := math32.Sqrt(1 - out.Dot(n.Neg())*out.Dot(n.Neg()))
	if math32.Abs(sinI-1.5*sinT) > 1e-5 {
		t.Fatalf("Snell violated: sinI=%f, 1.5*sinT=%f", sinI, 1.5*sinT)
	}

	// Glancing exit from the dense side reflects internally.
	if _, ok = XYZ(1, -0.1, 0).Normalize().Refract(n, 1.5); ok {
		t.Fatal("expected total internal reflection")
	}
}

func TestNormalizeDegenerate(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Fatalf("expected zero vector to normalize to zero; got %v", got)
	}
}
