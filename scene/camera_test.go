package scene

import (
	"testing"

	"github.com/achilleasa/helios/types"
	"github.com/chewxy/math32"
)

func TestCameraCenterRay(t *testing.T) {
	camera := NewCamera(60)
	ray := camera.PrimaryRay(320, 240, 640, 480)

	want := types.XYZ(0, 0, 1)
	if ray.Dir.Sub(want).Len() > 1e-5 {
		t.Fatalf("expected center ray direction %v; got %v", want, ray.Dir)
	}
	if ray.Origin != camera.Position {
		t.Fatalf("expected ray origin %v; got %v", camera.Position, ray.Origin)
	}
}

func TestCameraFOV(t *testing.T) {
	camera := NewCamera(90)

	// The top-center ray makes an angle of FOV/2 with the view axis.
	ray := camera.PrimaryRay(320, 0, 640, 480)
	cos := ray.Dir.Normalize().Dot(types.XYZ(0, 0, 1))
	angle := math32.Acos(cos) * 180 / math32.Pi
	if math32.Abs(angle-45) > 1e-3 {
		t.Fatalf("expected 45 degree half-angle; got %f", angle)
	}
}

func TestCameraYaw(t *testing.T) {
	camera := NewCamera(60)
	camera.RotY = math32.Pi / 2

	// A quarter yaw turn rotates the canonical +Z forward axis to +X.
	ray := camera.PrimaryRay(320, 240, 640, 480)
	want := types.XYZ(1, 0, 0)
	if ray.Dir.Normalize().Sub(want).Len() > 1e-5 {
		t.Fatalf("expected yawed center ray %v; got %v", want, ray.Dir)
	}
}

func TestCameraPitchHasNoRoll(t *testing.T) {
	camera := NewCamera(60)
	camera.RotX = 0.3
	camera.RotY = 1.1

	// Rays through horizontally adjacent pixels on the center row must have
	// the same elevation change symmetry; the right vector stays horizontal.
	left := camera.PrimaryRay(0, 240, 640, 480).Dir.Normalize()
	right := camera.PrimaryRay(640, 240, 640, 480).Dir.Normalize()
	horiz := right.Sub(left)
	if math32.Abs(horiz[1]) > 1e-5 {
		t.Fatalf("expected a horizontal right vector; got y component %f", horiz[1])
	}
}
