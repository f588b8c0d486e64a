package scene

import (
	"github.com/achilleasa/helios/types"
	"github.com/chewxy/math32"
)

type LightKind uint8

const (
	PointLight LightKind = iota
	DirectionalLight
	SpotLight
)

// Defines a light source. Light is a tagged union; the set of fields that
// applies depends on Kind.
type Light struct {
	Kind LightKind

	// Emitter location (point and spot lights).
	Position types.Vec3

	// Unit emission direction (directional and spot lights).
	Dir types.Vec3

	// Emitted color/intensity.
	Color types.Vec3

	// Spot cone half-angle in radians.
	Angle float32
}

// Create a point light.
func NewPointLight(position, color types.Vec3) Light {
	return Light{Kind: PointLight, Position: position, Color: color}
}

// Create a directional light.
func NewDirectionalLight(dir, color types.Vec3) Light {
	return Light{Kind: DirectionalLight, Dir: dir.Normalize(), Color: color}
}

// Create a spot light with the given cone half-angle (radians).
func NewSpotLight(position, dir, color types.Vec3, angle float32) Light {
	return Light{Kind: SpotLight, Position: position, Dir: dir.Normalize(), Color: color, Angle: angle}
}

// Evaluate the light as seen from a surface point. Returns the unit direction
// from the point toward the light, the distance to the emitter (MaxFloat32
// for directional lights) and the incident color with distance falloff and
// spot cone cutoff applied. A surface outside a spot cone receives black.
func (l Light) Incident(p types.Vec3) (dir types.Vec3, dist float32, color types.Vec3) {
	switch l.Kind {
	case DirectionalLight:
		return l.Dir.Neg(), math32.MaxFloat32, l.Color
	case SpotLight:
		toLight := l.Position.Sub(p)
		dist = toLight.Len()
		dir = toLight.Mul(1 / dist)
		if math32.Acos(dir.Neg().Dot(l.Dir)) >= l.Angle {
			return dir, dist, types.Vec3{}
		}
		return dir, dist, l.Color.Mul(1 / (dist * dist))
	default: // PointLight
		toLight := l.Position.Sub(p)
		dist = toLight.Len()
		dir = toLight.Mul(1 / dist)
		return dir, dist, l.Color.Mul(1 / (dist * dist))
	}
}
