package scene

import (
	"errors"

	"github.com/achilleasa/helios/types"
)

type MaterialKind uint8

const (
	// A diffuse surface with an optional mirror component.
	ReflectMaterial MaterialKind = iota

	// A transparent dielectric surface.
	RefractMaterial
)

// Defines a surface material. Material is a tagged union; the set of fields
// that applies depends on Kind.
type Material struct {
	Kind MaterialKind

	// Diffuse color (reflect materials). Ignored when a texture is set.
	Color types.Vec3

	// Mirror reflection amount in [0, 1]; 0 is purely diffuse.
	Reflection float32

	// Optional texture evaluated at the hit UV coords.
	Texture *Texture

	// Per-channel absorption coefficients (refract materials).
	Absorption types.Vec3

	// Index of refraction (refract materials); always >= 1.
	Index float32
}

// A material resolved at a specific surface location, after texture lookup.
type PointMaterial struct {
	Kind       MaterialKind
	Color      types.Vec3
	Reflection float32
	Absorption types.Vec3
	Index      float32
}

// Create a diffuse/mirror material.
func NewReflectMaterial(color types.Vec3, reflection float32) (Material, error) {
	if reflection < 0 || reflection > 1 {
		return Material{}, errors.New("scene: material reflection must be in [0, 1]")
	}
	return Material{
		Kind:       ReflectMaterial,
		Color:      color,
		Reflection: reflection,
	}, nil
}

// Create a textured diffuse/mirror material.
func NewTexturedMaterial(texture *Texture, reflection float32) (Material, error) {
	if texture == nil {
		return Material{}, errors.New("scene: textured material requires a texture")
	}
	if reflection < 0 || reflection > 1 {
		return Material{}, errors.New("scene: material reflection must be in [0, 1]")
	}
	return Material{
		Kind:       ReflectMaterial,
		Color:      types.XYZ(1, 1, 1),
		Reflection: reflection,
		Texture:    texture,
	}, nil
}

// Create a transparent dielectric material.
func NewRefractMaterial(absorption types.Vec3, index float32) (Material, error) {
	if absorption[0] < 0 || absorption[1] < 0 || absorption[2] < 0 {
		return Material{}, errors.New("scene: material absorption must be non-negative")
	}
	if index < 1 {
		return Material{}, errors.New("scene: refractive index must be >= 1")
	}
	return Material{
		Kind:       RefractMaterial,
		Absorption: absorption,
		Index:      index,
	}, nil
}

// Resolve the material at a surface location.
func (m Material) At(uv types.Vec2) PointMaterial {
	pm := PointMaterial{
		Kind:       m.Kind,
		Color:      m.Color,
		Reflection: m.Reflection,
		Absorption: m.Absorption,
		Index:      m.Index,
	}
	if m.Kind == ReflectMaterial && m.Texture != nil {
		pm.Color = m.Texture.Sample(uv[0], uv[1])
	}
	return pm
}
