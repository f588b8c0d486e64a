package scene

import (
	"fmt"
	"os"

	"github.com/achilleasa/helios/types"
	"github.com/chewxy/math32"
)

// Describes a builtin scene for listings.
type BuiltinInfo struct {
	ID          int
	Name        string
	Description string
}

// List the builtin scenes.
func BuiltinScenes() []BuiltinInfo {
	return []BuiltinInfo{
		{0, "spheres", "mixed diffuse/mirror/glass spheres over a checkered floor"},
		{1, "shadow", "single sphere casting a shadow on a white floor"},
		{2, "glass", "concentric glass/air spheres for nested refraction"},
		{3, "checker", "high-contrast checkerboard for adaptive sampling"},
		{4, "boxes", "axis-aligned boxes under a spot light"},
		{5, "mesh", "wavefront OBJ mesh (requires --obj; falls back to spheres)"},
	}
}

// Construct a builtin scene by id. The meshPath param is only used by the
// mesh scene; when it is empty or unreadable the sphere scene is returned
// instead.
func Builtin(id int, meshPath string) (*Scene, *Camera, error) {
	switch id {
	case 0:
		return sphereScene(), NewCamera(60), nil
	case 1:
		return shadowScene(), NewCamera(60), nil
	case 2:
		return glassScene(), NewCamera(60), nil
	case 3:
		return checkerScene(), NewCamera(60), nil
	case 4:
		return boxScene(), NewCamera(60), nil
	case 5:
		sc, err := meshScene(meshPath)
		if err != nil {
			return sphereScene(), NewCamera(60), nil
		}
		return sc, NewCamera(60), nil
	}
	return nil, nil, fmt.Errorf("scene: unknown builtin scene id %d", id)
}

func diffuse(r, g, b float32) Material {
	return Material{Kind: ReflectMaterial, Color: types.XYZ(r, g, b)}
}

func mirror(r, g, b, reflection float32) Material {
	return Material{Kind: ReflectMaterial, Color: types.XYZ(r, g, b), Reflection: reflection}
}

func glass(absorption types.Vec3, index float32) Material {
	return Material{Kind: RefractMaterial, Absorption: absorption, Index: index}
}

func sphereScene() *Scene {
	floor := Material{
		Kind:    ReflectMaterial,
		Color:   types.XYZ(1, 1, 1),
		Texture: NewCheckerTexture(0.5, types.XYZ(0.9, 0.9, 0.9), types.XYZ(0.2, 0.2, 0.2)),
	}
	return &Scene{
		Background: types.XYZ(0.05, 0.05, 0.1),
		Lights: []Light{
			NewPointLight(types.XYZ(0, 6, 2), types.XYZ(40, 40, 40)),
			NewDirectionalLight(types.XYZ(-0.3, -1, 0.4), types.XYZ(0.4, 0.4, 0.35)),
		},
		Shapes: []Shape{
			NewPlane(types.XYZ(0, -1, 0), types.XYZ(0, 1, 0), floor),
			NewSphere(types.XYZ(-2.5, 0, 6), 1, diffuse(0.9, 0.15, 0.1)),
			NewSphere(types.XYZ(0, 0, 7), 1, mirror(0.9, 0.9, 0.9, 0.85)),
			NewSphere(types.XYZ(2.5, 0, 6), 1, glass(types.XYZ(0.05, 0.12, 0.15), 1.5)),
		},
	}
}

func shadowScene() *Scene {
	return &Scene{
		Background: types.Vec3{},
		Lights: []Light{
			NewPointLight(types.XYZ(0, 6, 5), types.XYZ(30, 30, 30)),
		},
		Shapes: []Shape{
			NewPlane(types.XYZ(0, 0, 0), types.XYZ(0, 1, 0), diffuse(1, 1, 1)),
			NewSphere(types.XYZ(0, 2, 5), 1, diffuse(0.5, 0.5, 0.5)),
		},
	}
}

func glassScene() *Scene {
	return &Scene{
		Background: types.XYZ(0.1, 0.1, 0.12),
		Lights: []Light{
			NewPointLight(types.XYZ(3, 5, 2), types.XYZ(35, 35, 35)),
		},
		Shapes: []Shape{
			NewPlane(types.XYZ(0, -1.5, 0), types.XYZ(0, 1, 0), diffuse(0.8, 0.8, 0.8)),
			NewPlane(types.XYZ(0, 0, 12), types.XYZ(0, 0, -1), diffuse(0.7, 0.2, 0.2)),
			// Outer glass shell with an air bubble inside.
			NewSphere(types.XYZ(0, 0, 5), 1, glass(types.XYZ(0.15, 0.05, 0.02), 1.5)),
			NewSphere(types.XYZ(0, 0, 5), 0.5, glass(types.Vec3{}, 1)),
		},
	}
}

func checkerScene() *Scene {
	checker := Material{
		Kind:    ReflectMaterial,
		Color:   types.XYZ(1, 1, 1),
		Texture: NewCheckerTexture(2, types.XYZ(1, 1, 1), types.XYZ(0.02, 0.02, 0.02)),
	}
	return &Scene{
		Background: types.Vec3{},
		Lights: []Light{
			NewPointLight(types.XYZ(0, 8, 3), types.XYZ(60, 60, 60)),
		},
		Shapes: []Shape{
			NewPlane(types.XYZ(0, -1, 0), types.XYZ(0, 1, 0), checker),
			NewSphere(types.XYZ(0, 0.2, 6), 1.2, mirror(0.95, 0.95, 0.95, 0.9)),
		},
	}
}

func boxScene() *Scene {
	return &Scene{
		Background: types.XYZ(0.02, 0.02, 0.03),
		Lights: []Light{
			NewSpotLight(types.XYZ(0, 7, 4), types.XYZ(0, -1, 0.1), types.XYZ(80, 80, 70), math32.Pi/5),
			NewPointLight(types.XYZ(-4, 3, 0), types.XYZ(10, 10, 14)),
		},
		Shapes: []Shape{
			NewPlane(types.XYZ(0, -1, 0), types.XYZ(0, 1, 0), diffuse(0.75, 0.75, 0.75)),
			NewBox(types.XYZ(-2.2, -1, 4), types.XYZ(-0.8, 0.6, 5.4), diffuse(0.2, 0.5, 0.85)),
			NewBox(types.XYZ(0.2, -1, 5), types.XYZ(1.6, 1.2, 6.4), diffuse(0.85, 0.6, 0.2)),
			NewBox(types.XYZ(-0.6, -1, 7), types.XYZ(1, 0.2, 8.6), mirror(0.9, 0.9, 0.9, 0.6)),
		},
	}
}

func meshScene(path string) (*Scene, error) {
	if path == "" {
		return nil, fmt.Errorf("scene: no mesh path given")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("scene: mesh not found: %v", err)
	}

	triangles, err := LoadMesh(path, diffuse(0.8, 0.7, 0.5), 1, types.XYZ(0, 0, 5))
	if err != nil {
		return nil, err
	}

	sc := &Scene{
		Background: types.XYZ(0.08, 0.08, 0.1),
		Lights: []Light{
			NewPointLight(types.XYZ(2, 6, 1), types.XYZ(45, 45, 45)),
			NewDirectionalLight(types.XYZ(-0.5, -1, 0.2), types.XYZ(0.3, 0.3, 0.3)),
		},
		Shapes: []Shape{
			NewPlane(types.XYZ(0, -1, 0), types.XYZ(0, 1, 0), diffuse(0.7, 0.7, 0.7)),
		},
	}
	sc.Shapes = append(sc.Shapes, triangles...)
	return sc, nil
}
