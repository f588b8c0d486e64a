package scene

import (
	"github.com/achilleasa/helios/types"
	"github.com/chewxy/math32"
)

type ShapeKind uint32

const (
	SphereShape ShapeKind = iota
	PlaneShape
	TriangleShape
	BoxShape
)

const (
	// Minimum hit distance; intersections closer than this are treated as
	// self-intersections and rejected.
	hitEpsilon float32 = 1e-4

	// Rays closer to parallel than this miss planes and triangles.
	parallelEpsilon float32 = 1e-7

	// Bias applied to the triangle edge half-space tests so that rays
	// grazing a shared edge of two meshed triangles hit at least one of
	// them instead of slipping through the crack.
	edgeEpsilon float32 = 1e-5
)

// The result of intersecting a ray with a shape. The normal always faces the
// incoming ray; Entering reports whether the ray crossed the surface from
// the outside, which refractive shading uses to drive the medium stack.
type Hit struct {
	T        float32
	Normal   types.Vec3
	Mat      PointMaterial
	Entering bool
}

// Defines a traceable scene shape. Shape is a tagged union stored by value so
// that shapes referenced by the same BVH leaf stay adjacent in memory; the
// set of fields that applies depends on Kind.
type Shape struct {
	Kind ShapeKind

	// Sphere center, plane point or box min corner.
	Origin types.Vec3

	// Box max corner.
	Corner types.Vec3

	// Sphere radius.
	Radius float32

	// Plane normal or precomputed triangle face normal (unit length).
	Normal types.Vec3

	// Triangle vertices and per-vertex UV coords.
	V  [3]types.Vec3
	UV [3]types.Vec2

	Mat Material
}

// Create a sphere shape.
func NewSphere(center types.Vec3, radius float32, mat Material) Shape {
	return Shape{Kind: SphereShape, Origin: center, Radius: radius, Mat: mat}
}

// Create an infinite plane shape through a point with the given normal.
func NewPlane(point, normal types.Vec3, mat Material) Shape {
	return Shape{Kind: PlaneShape, Origin: point, Normal: normal.Normalize(), Mat: mat}
}

// Create a triangle shape. The face normal follows the right-hand rule over
// the vertex winding.
func NewTriangle(v [3]types.Vec3, uv [3]types.Vec2, mat Material) Shape {
	return Shape{
		Kind:   TriangleShape,
		V:      v,
		UV:     uv,
		Normal: v[1].Sub(v[0]).Cross(v[2].Sub(v[0])).Normalize(),
		Mat:    mat,
	}
}

// Create an axis-aligned box shape from its two corners.
func NewBox(min, max types.Vec3, mat Material) Shape {
	return Shape{
		Kind:   BoxShape,
		Origin: types.MinVec3(min, max),
		Corner: types.MaxVec3(min, max),
		Mat:    mat,
	}
}

// Intersect a ray with the shape, evaluating the surface normal and point
// material at the nearest intersection.
func (s *Shape) Trace(ray types.Ray) (Hit, bool) {
	switch s.Kind {
	case SphereShape:
		return s.traceSphere(ray)
	case PlaneShape:
		return s.tracePlane(ray)
	case TriangleShape:
		return s.traceTriangle(ray)
	default:
		return s.traceBox(ray)
	}
}

// Intersect a ray with the shape returning only the hit distance. Used for
// shadow rays where the normal and material are not needed. For every ray,
// TraceSimple reports a hit iff Trace does.
func (s *Shape) TraceSimple(ray types.Ray) (float32, bool) {
	switch s.Kind {
	case SphereShape:
		t, _, ok := s.sphereRoots(ray)
		return t, ok
	case PlaneShape:
		t, _, ok := s.planeDist(ray)
		return t, ok
	case TriangleShape:
		t, _, ok := s.triangleDist(ray)
		return t, ok
	default:
		t, _, _, ok := s.boxSlabs(ray)
		return t, ok
	}
}

// Get the shape centroid used for BVH binning. Returns false for infinite
// shapes (planes), which are kept outside the BVH.
func (s *Shape) Location() (types.Vec3, bool) {
	switch s.Kind {
	case SphereShape:
		return s.Origin, true
	case PlaneShape:
		return types.Vec3{}, false
	case TriangleShape:
		return s.V[0].Add(s.V[1]).Add(s.V[2]).Mul(1.0 / 3.0), true
	default:
		return s.Origin.Add(s.Corner).Mul(0.5), true
	}
}

// Get the shape bounds. Returns false for infinite shapes (planes).
func (s *Shape) AABB() (types.AABB, bool) {
	switch s.Kind {
	case SphereShape:
		r := types.XYZ(s.Radius, s.Radius, s.Radius)
		return types.NewAABB(s.Origin.Sub(r), s.Origin.Add(r)), true
	case PlaneShape:
		return types.AABB{}, false
	case TriangleShape:
		box := types.NewEmptyAABB()
		for _, v := range s.V {
			box = box.Include(v)
		}
		return box, true
	default:
		return types.NewAABB(s.Origin, s.Corner), true
	}
}

func (s *Shape) sphereRoots(ray types.Ray) (t float32, entering, ok bool) {
	oc := ray.Origin.Sub(s.Origin)
	b := oc.Dot(ray.Dir)
	c := oc.Len2() - s.Radius*s.Radius
	disc := b*b - c
	if disc < 0 {
		return 0, false, false
	}
	sq := math32.Sqrt(disc)
	if t = -b - sq; t > hitEpsilon {
		return t, true, true
	}
	// The near root is behind the origin; a positive far root means the
	// ray starts inside the sphere.
	if t = -b + sq; t > hitEpsilon {
		return t, false, true
	}
	return 0, false, false
}

func (s *Shape) traceSphere(ray types.Ray) (Hit, bool) {
	t, entering, ok := s.sphereRoots(ray)
	if !ok {
		return Hit{}, false
	}

	n := ray.At(t).Sub(s.Origin).Mul(1 / s.Radius)
	uv := types.XY(
		math32.Atan2(n[2], n[0])/(2*math32.Pi)+0.5,
		0.5-math32.Asin(n[1])/math32.Pi,
	)
	if !entering {
		n = n.Neg()
	}
	return Hit{T: t, Normal: n, Mat: s.Mat.At(uv), Entering: entering}, true
}

func (s *Shape) planeDist(ray types.Ray) (t, denom float32, ok bool) {
	denom = s.Normal.Dot(ray.Dir)
	if math32.Abs(denom) < parallelEpsilon {
		return 0, denom, false
	}
	t = s.Origin.Sub(ray.Origin).Dot(s.Normal) / denom
	return t, denom, t > hitEpsilon
}

func (s *Shape) tracePlane(ray types.Ray) (Hit, bool) {
	t, denom, ok := s.planeDist(ray)
	if !ok {
		return Hit{}, false
	}

	n := s.Normal
	entering := true
	if denom > 0 {
		n = n.Neg()
		entering = false
	}

	tangent, bitangent := planeBasis(s.Normal)
	p := ray.At(t)
	uv := types.XY(p.Dot(tangent), p.Dot(bitangent))
	return Hit{T: t, Normal: n, Mat: s.Mat.At(uv), Entering: entering}, true
}

// Build an orthonormal tangent basis for planar UV mapping.
func planeBasis(n types.Vec3) (tangent, bitangent types.Vec3) {
	up := types.XYZ(0, 1, 0)
	if math32.Abs(n[1]) > 0.9 {
		up = types.XYZ(1, 0, 0)
	}
	tangent = up.Cross(n).Normalize()
	bitangent = n.Cross(tangent)
	return tangent, bitangent
}

func (s *Shape) triangleDist(ray types.Ray) (t, denom float32, ok bool) {
	denom = s.Normal.Dot(ray.Dir)
	if math32.Abs(denom) < parallelEpsilon {
		return 0, denom, false
	}
	t = s.V[0].Sub(ray.Origin).Dot(s.Normal) / denom
	if t <= hitEpsilon {
		return t, denom, false
	}

	// Three biased half-space tests against the edge planes.
	p := ray.At(t)
	for i := 0; i < 3; i++ {
		edge := s.V[(i+1)%3].Sub(s.V[i])
		if s.Normal.Dot(edge.Cross(p.Sub(s.V[i]))) < -edgeEpsilon {
			return t, denom, false
		}
	}
	return t, denom, true
}

func (s *Shape) traceTriangle(ray types.Ray) (Hit, bool) {
	t, denom, ok := s.triangleDist(ray)
	if !ok {
		return Hit{}, false
	}

	n := s.Normal
	entering := true
	if denom > 0 {
		n = n.Neg()
		entering = false
	}
	return Hit{T: t, Normal: n, Mat: s.Mat.At(s.baryUV(ray.At(t))), Entering: entering}, true
}

// Interpolate the vertex UV coords at a point on the triangle plane.
func (s *Shape) baryUV(p types.Vec3) types.Vec2 {
	v0 := s.V[1].Sub(s.V[0])
	v1 := s.V[2].Sub(s.V[0])
	v2 := p.Sub(s.V[0])
	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)
	den := d00*d11 - d01*d01
	if den == 0 {
		return s.UV[0]
	}
	b1 := (d11*d20 - d01*d21) / den
	b2 := (d00*d21 - d01*d20) / den
	b0 := 1 - b1 - b2
	return types.XY(
		s.UV[0][0]*b0+s.UV[1][0]*b1+s.UV[2][0]*b2,
		s.UV[0][1]*b0+s.UV[1][1]*b1+s.UV[2][1]*b2,
	)
}

func (s *Shape) boxSlabs(ray types.Ray) (t float32, axis int, entering, ok bool) {
	tMin := float32(-math32.MaxFloat32)
	tMax := float32(math32.MaxFloat32)
	axisMin, axisMax := 0, 0
	for a := 0; a < 3; a++ {
		invD := 1.0 / ray.Dir[a]
		t0 := (s.Origin[a] - ray.Origin[a]) * invD
		t1 := (s.Corner[a] - ray.Origin[a]) * invD
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
			axisMin = a
		}
		if t1 < tMax {
			tMax = t1
			axisMax = a
		}
	}
	if tMin > tMax || tMax <= hitEpsilon {
		return 0, 0, false, false
	}
	if tMin > hitEpsilon {
		return tMin, axisMin, true, true
	}
	// Origin inside the box; report the exit face.
	return tMax, axisMax, false, true
}

func (s *Shape) traceBox(ray types.Ray) (Hit, bool) {
	t, axis, entering, ok := s.boxSlabs(ray)
	if !ok {
		return Hit{}, false
	}

	// The face normal opposes the ray direction along the slab axis that
	// produced the hit, for both entry and (flipped) exit faces.
	var n types.Vec3
	if ray.Dir[axis] > 0 {
		n[axis] = -1
	} else {
		n[axis] = 1
	}

	// Planar UV over the hit face using the two remaining axes.
	p := ray.At(t)
	u := (axis + 1) % 3
	v := (axis + 2) % 3
	ext := s.Corner.Sub(s.Origin)
	uv := types.XY(
		(p[u]-s.Origin[u])/ext[u],
		(p[v]-s.Origin[v])/ext[v],
	)
	return Hit{T: t, Normal: n, Mat: s.Mat.At(uv), Entering: entering}, true
}
