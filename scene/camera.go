package scene

import (
	"github.com/achilleasa/helios/types"
	"github.com/chewxy/math32"
)

// The camera generates primary rays for viewport pixels. The canonical
// orientation looks down +Z with +Y up; RotX (pitch) and RotY (yaw) rotate
// the view via a quaternion so roll can never be introduced.
type Camera struct {
	Position types.Vec3

	// Pitch and yaw in radians.
	RotX float32
	RotY float32

	// Vertical field of view in degrees.
	FOV float32
}

// Create a camera at the origin with the given vertical FOV (degrees).
func NewCamera(fov float32) *Camera {
	return &Camera{FOV: fov}
}

// Generate the primary ray through viewport location (px, py) on a frameW x
// frameH viewport. Sub-pixel jitter is expressed by passing fractional
// coordinates; the pixel center is (x+0.5, y+0.5).
func (c *Camera) PrimaryRay(px, py float32, frameW, frameH int) types.Ray {
	tanHalf := math32.Tan(c.FOV * math32.Pi / 360.0)
	aspect := float32(frameW) / float32(frameH)

	dir := types.XYZ(
		(2.0*px/float32(frameW)-1.0)*tanHalf*aspect,
		(1.0-2.0*py/float32(frameH))*tanHalf,
		1.0,
	)

	pitch := types.QuatFromAxisAngle(types.XYZ(1, 0, 0), c.RotX)
	yaw := types.QuatFromAxisAngle(types.XYZ(0, 1, 0), c.RotY)
	orient := yaw.Mul(pitch).Normalize()

	return types.NewRay(c.Position, orient.Rotate(dir))
}
