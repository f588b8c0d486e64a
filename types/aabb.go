package types

import "github.com/chewxy/math32"

// An axis-aligned bounding box.
type AABB struct {
	Min Vec3
	Max Vec3
}

// Create an empty AABB. The empty box is a sentinel that yields the other
// operand when joined; it must not be used for hit tests before being joined
// with at least one real box or point.
func NewEmptyAABB() AABB {
	return AABB{
		Min: Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32},
		Max: Vec3{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32},
	}
}

// Create an AABB from its two corners.
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Join two AABBs returning a box that contains both.
func (b AABB) Join(other AABB) AABB {
	return AABB{
		Min: MinVec3(b.Min, other.Min),
		Max: MaxVec3(b.Max, other.Max),
	}
}

// Expand the AABB to include a point.
func (b AABB) Include(p Vec3) AABB {
	return AABB{
		Min: MinVec3(b.Min, p),
		Max: MaxVec3(b.Max, p),
	}
}

// Check whether a point lies inside the box (inclusive).
func (b AABB) Contains(p Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Get the box surface area.
func (b AABB) SurfaceArea() float32 {
	side := b.Max.Sub(b.Min)
	return 2 * (side[0]*side[1] + side[1]*side[2] + side[0]*side[2])
}

// Get the box center.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Get the box dimensions.
func (b AABB) Extent() Vec3 {
	return b.Max.Sub(b.Min)
}

// Get the axis (0, 1 or 2) along which the box is longest.
func (b AABB) LongestAxis() int {
	side := b.Max.Sub(b.Min)
	axis := 0
	if side[1] > side[axis] {
		axis = 1
	}
	if side[2] > side[axis] {
		axis = 2
	}
	return axis
}

// Intersect a ray with the box using the slab method and return the entry
// distance. A ray whose origin lies inside the box hits at distance 0.
func (b AABB) Hit(ray Ray) (float32, bool) {
	tMin, tMax := b.slabs(ray)
	switch {
	case tMin > tMax:
		return 0, false
	case tMin >= 0:
		return tMin, true
	case tMax >= 0:
		return 0, true
	}
	return 0, false
}

// Intersect a ray with the box and return the exit distance.
func (b AABB) HitFurthest(ray Ray) (float32, bool) {
	tMin, tMax := b.slabs(ray)
	if tMin > tMax || tMax < 0 {
		return 0, false
	}
	return tMax, true
}

func (b AABB) slabs(ray Ray) (tMin, tMax float32) {
	tMin = -math32.MaxFloat32
	tMax = math32.MaxFloat32
	for axis := 0; axis < 3; axis++ {
		// Division by a zero direction component yields +/-Inf which the
		// min/max below handle correctly.
		invD := 1.0 / ray.Dir[axis]
		t0 := (b.Min[axis] - ray.Origin[axis]) * invD
		t1 := (b.Max[axis] - ray.Origin[axis]) * invD
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
	}
	return tMin, tMax
}

// Intersect one ray against four boxes and return the per-box entry
// distances. Missed boxes report negative infinity so callers can order and
// cull children without branching on a separate hit flag.
func Hit4(boxes *[4]AABB, ray Ray) [4]float32 {
	var invD Vec3
	for axis := 0; axis < 3; axis++ {
		invD[axis] = 1.0 / ray.Dir[axis]
	}

	var entries [4]float32
	for i := 0; i < 4; i++ {
		tMin := float32(-math32.MaxFloat32)
		tMax := float32(math32.MaxFloat32)
		for axis := 0; axis < 3; axis++ {
			t0 := (boxes[i].Min[axis] - ray.Origin[axis]) * invD[axis]
			t1 := (boxes[i].Max[axis] - ray.Origin[axis]) * invD[axis]
			if t0 > t1 {
				t0, t1 = t1, t0
			}
			if t0 > tMin {
				tMin = t0
			}
			if t1 < tMax {
				tMax = t1
			}
		}
		switch {
		case tMin > tMax || tMax < 0:
			entries[i] = math32.Inf(-1)
		case tMin >= 0:
			entries[i] = tMin
		default:
			entries[i] = 0
		}
	}
	return entries
}
