package scene

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/achilleasa/helios/types"
	"github.com/chewxy/math32"
)

// A texture sampled by UV coordinates. Textures are either backed by a
// decoded image or evaluated procedurally (checkerboard).
type Texture struct {
	width  int
	height int
	texels []types.Vec3

	checker bool
	scale   float32
	even    types.Vec3
	odd     types.Vec3
}

// Create a procedural checkerboard texture. The scale param controls the
// number of checker cells per unit of UV space.
func NewCheckerTexture(scale float32, even, odd types.Vec3) *Texture {
	return &Texture{
		checker: true,
		scale:   scale,
		even:    even,
		odd:     odd,
	}
}

// Create a texture from a decoded image. Texel colors are converted to
// linear [0, 1] floats up front so sampling stays allocation-free.
func NewImageTexture(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := &Texture{
		width:  bounds.Dx(),
		height: bounds.Dy(),
		texels: make([]types.Vec3, bounds.Dx()*bounds.Dy()),
	}

	var offset int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			tex.texels[offset] = types.XYZ(
				float32(r)/65535.0,
				float32(g)/65535.0,
				float32(b)/65535.0,
			)
			offset++
		}
	}
	return tex
}

// Load a png or jpeg texture from disk.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scene: could not open texture: %v", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("scene: could not decode texture %q: %v", path, err)
	}
	return NewImageTexture(img), nil
}

// Sample the texture color at the given UV coordinates. Image textures wrap
// out-of-range coordinates; the checkerboard is defined everywhere.
func (t *Texture) Sample(u, v float32) types.Vec3 {
	if t.checker {
		iu := int(math32.Floor(u * t.scale))
		iv := int(math32.Floor(v * t.scale))
		if (iu+iv)&1 == 0 {
			return t.even
		}
		return t.odd
	}

	u = u - math32.Floor(u)
	v = v - math32.Floor(v)
	x := int(u * float32(t.width))
	y := int(v * float32(t.height))
	if x >= t.width {
		x = t.width - 1
	}
	if y >= t.height {
		y = t.height - 1
	}
	return t.texels[y*t.width+x]
}
