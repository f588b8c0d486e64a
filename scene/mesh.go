package scene

import (
	"fmt"

	"github.com/achilleasa/helios/log"
	"github.com/achilleasa/helios/types"
	"github.com/udhos/gwob"
)

// Load a triangle mesh from a wavefront OBJ file. Every face is converted to
// a triangle Shape carrying mat; vertices are scaled and then translated so
// meshes can be placed without editing the source file.
func LoadMesh(path string, mat Material, scale float32, translate types.Vec3) ([]Shape, error) {
	logger := log.New("mesh")
	options := &gwob.ObjParserOptions{
		LogStats: false,
		Logger:   func(msg string) { logger.Debug(msg) },
	}

	obj, err := gwob.NewObjFromFile(path, options)
	if err != nil {
		return nil, fmt.Errorf("scene: could not parse mesh %q: %v", path, err)
	}
	if len(obj.Indices)%3 != 0 {
		return nil, fmt.Errorf("scene: mesh %q is not triangulated", path)
	}

	stride := obj.StrideSize / 4
	posOffset := obj.StrideOffsetPosition / 4
	uvOffset := obj.StrideOffsetTexture / 4

	vertexAt := func(index int) types.Vec3 {
		base := index*stride + posOffset
		return types.XYZ(
			obj.Coord[base]*scale+translate[0],
			obj.Coord[base+1]*scale+translate[1],
			obj.Coord[base+2]*scale+translate[2],
		)
	}
	uvAt := func(index int) types.Vec2 {
		if !obj.TextCoordFound {
			return types.Vec2{}
		}
		base := index*stride + uvOffset
		return types.XY(obj.Coord[base], obj.Coord[base+1])
	}

	shapes := make([]Shape, 0, len(obj.Indices)/3)
	for i := 0; i+2 < len(obj.Indices); i += 3 {
		i0, i1, i2 := obj.Indices[i], obj.Indices[i+1], obj.Indices[i+2]
		tri := NewTriangle(
			[3]types.Vec3{vertexAt(i0), vertexAt(i1), vertexAt(i2)},
			[3]types.Vec2{uvAt(i0), uvAt(i1), uvAt(i2)},
			mat,
		)
		// Skip degenerate faces; their normal does not normalize.
		if tri.Normal.Len2() < 0.5 {
			continue
		}
		shapes = append(shapes, tri)
	}

	logger.Debugf("loaded mesh %q: %d triangles", path, len(shapes))
	return shapes, nil
}
