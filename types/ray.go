package types

// A ray with a unit-length direction. Code constructing a Ray directly is
// responsible for normalizing Dir; NewRay does it for the caller.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// Create a ray from an origin and a direction. The direction is normalized.
// Passing a zero-length direction is a programming error.
func NewRay(origin, dir Vec3) Ray {
	if dir.Len2() < floatCmpEpsilon {
		panic("types: ray direction must not be zero-length")
	}
	return Ray{Origin: origin, Dir: dir.Normalize()}
}

// Get the point at distance t along the ray.
func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}
