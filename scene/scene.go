package scene

import (
	"errors"
	"fmt"

	"github.com/achilleasa/helios/types"
	"github.com/chewxy/math32"
)

// A fully specified scene: a background color, the light sources and the
// traceable shapes. Scenes are immutable once handed to a renderer; the BVH
// builder is the only component allowed to reorder the shape list.
type Scene struct {
	Background types.Vec3
	Lights     []Light
	Shapes     []Shape
}

// Check the scene for degenerate input. These indicate programming errors in
// the scene construction code, not runtime conditions.
func (s *Scene) Validate() error {
	if len(s.Shapes) == 0 {
		return errors.New("scene: shape list is empty")
	}
	for i, shape := range s.Shapes {
		switch shape.Kind {
		case SphereShape:
			if shape.Radius <= 0 {
				return fmt.Errorf("scene: shape %d: sphere radius must be positive", i)
			}
		case PlaneShape, TriangleShape:
			if l := shape.Normal.Len(); l < 0.999 || l > 1.001 {
				return fmt.Errorf("scene: shape %d: degenerate normal", i)
			}
		case BoxShape:
			ext := shape.Corner.Sub(shape.Origin)
			if ext[0] <= 0 || ext[1] <= 0 || ext[2] <= 0 {
				return fmt.Errorf("scene: shape %d: box has non-positive extent", i)
			}
		default:
			return fmt.Errorf("scene: shape %d: unknown kind %d", i, shape.Kind)
		}

		mat := shape.Mat
		switch mat.Kind {
		case ReflectMaterial:
			if mat.Reflection < 0 || mat.Reflection > 1 {
				return fmt.Errorf("scene: shape %d: reflection out of [0, 1]", i)
			}
		case RefractMaterial:
			if mat.Index < 1 {
				return fmt.Errorf("scene: shape %d: refractive index below 1", i)
			}
			if mat.Absorption[0] < 0 || mat.Absorption[1] < 0 || mat.Absorption[2] < 0 {
				return fmt.Errorf("scene: shape %d: negative absorption", i)
			}
		default:
			return fmt.Errorf("scene: shape %d: unknown material kind %d", i, mat.Kind)
		}
	}
	for i, light := range s.Lights {
		if light.Kind == SpotLight && (light.Angle <= 0 || light.Angle > math32.Pi) {
			return fmt.Errorf("scene: light %d: spot angle out of (0, pi]", i)
		}
	}
	return nil
}

// Get the bounds of all finite shapes in the scene. Used by the photon
// prepass to place emission disks for directional lights.
func (s *Scene) Bounds() types.AABB {
	box := types.NewEmptyAABB()
	for i := range s.Shapes {
		if shapeBox, ok := s.Shapes[i].AABB(); ok {
			box = box.Join(shapeBox)
		}
	}
	return box
}
