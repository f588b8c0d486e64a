package renderer

import (
	"errors"
	"image"

	"github.com/achilleasa/helios/types"
	"github.com/chewxy/math32"
)

// An accumulating framebuffer. Three parallel per-pixel buffers are kept in
// sync: the radiance accumulator, the sample count and the gamma-clamped
// RGBA8 result refreshed on every write so hosts can read pixels at any
// time. A fourth RGBA8 buffer visualizes the adaptive sampling error ramp.
type RenderTarget struct {
	width  int
	height int

	exposure float32
	gamma    float32

	accum    []types.Vec3
	count    []uint32
	result   []uint8
	sampling []uint8
}

// Create a render target.
func NewRenderTarget(width, height int, exposure, gamma float32) (*RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidViewport
	}
	if exposure <= 0 || gamma <= 0 {
		return nil, errors.New("renderer: exposure and gamma must be positive")
	}
	rt := &RenderTarget{
		width:    width,
		height:   height,
		exposure: exposure,
		gamma:    gamma,
		accum:    make([]types.Vec3, width*height),
		count:    make([]uint32, width*height),
		result:   make([]uint8, width*height*4),
		sampling: make([]uint8, width*height*4),
	}
	rt.clearBytes()
	return rt, nil
}

func (rt *RenderTarget) clearBytes() {
	for i := 3; i < len(rt.result); i += 4 {
		rt.result[i] = 255
		rt.sampling[i] = 255
	}
}

// Get the target width.
func (rt *RenderTarget) Width() int {
	return rt.width
}

// Get the target height.
func (rt *RenderTarget) Height() int {
	return rt.height
}

// Accumulate one sample into a pixel and refresh its displayable value.
func (rt *RenderTarget) Write(x, y int, v types.Vec3) {
	i := y*rt.width + x
	rt.accum[i] = rt.accum[i].Add(v)
	rt.count[i]++

	c := rt.accum[i].Mul(rt.exposure / float32(rt.count[i]))
	invGamma := 1.0 / rt.gamma
	base := i * 4
	for ch := 0; ch < 3; ch++ {
		g := math32.Pow(c[ch], invGamma)
		if g > 1 {
			g = 1
		}
		rt.result[base+ch] = uint8(g * 255)
	}
	rt.result[base+3] = 255
}

// Read the current radiance estimate of a pixel.
func (rt *RenderTarget) Read(x, y int) types.Vec3 {
	i := y*rt.width + x
	if rt.count[i] == 0 {
		return types.Vec3{}
	}
	return rt.accum[i].Mul(1 / float32(rt.count[i]))
}

// Get the sample count of a pixel.
func (rt *RenderTarget) SampleCount(x, y int) uint32 {
	return rt.count[y*rt.width+x]
}

var (
	gauss3 = [3]float32{1, 2, 1}
	gauss5 = [5]float32{1, 4, 6, 4, 1}
)

// Read a 3x3 Gaussian-blurred pixel estimate. Taps outside the bounds
// rectangle are omitted and the remaining weights renormalized. Callers that
// share the target with concurrent writers must pass the rectangle they own
// so the blur never reads pixels written by another goroutine.
func (rt *RenderTarget) Gaussian3(x, y int, bounds Rect) types.Vec3 {
	return rt.convolve(x, y, bounds, gauss3[:], 1)
}

// Read a 5x5 Gaussian-blurred pixel estimate with the same edge handling as
// Gaussian3.
func (rt *RenderTarget) Gaussian5(x, y int, bounds Rect) types.Vec3 {
	return rt.convolve(x, y, bounds, gauss5[:], 2)
}

func (rt *RenderTarget) convolve(x, y int, bounds Rect, kernel []float32, radius int) types.Vec3 {
	minX, maxX := bounds.X, bounds.X+bounds.W
	minY, maxY := bounds.Y, bounds.Y+bounds.H

	var sum types.Vec3
	var total float32
	for dy := -radius; dy <= radius; dy++ {
		py := y + dy
		if py < minY || py >= maxY || py < 0 || py >= rt.height {
			continue
		}
		for dx := -radius; dx <= radius; dx++ {
			px := x + dx
			if px < minX || px >= maxX || px < 0 || px >= rt.width {
				continue
			}
			w := kernel[dy+radius] * kernel[dx+radius]
			sum = sum.Add(rt.Read(px, py).Mul(w))
			total += w
		}
	}
	if total == 0 {
		return types.Vec3{}
	}
	return sum.Mul(1 / total)
}

// Record the scaled adaptive-sampling error of a pixel as a green-blue-red
// ramp for operator inspection.
func (rt *RenderTarget) WriteSampleViz(x, y int, e float32) {
	if e < 0 {
		e = 0
	} else if e > 1 {
		e = 1
	}

	var c types.Vec3
	if e < 0.5 {
		c = types.XYZ(0, 1, 0).Lerp(types.XYZ(0, 0, 1), e*2)
	} else {
		c = types.XYZ(0, 0, 1).Lerp(types.XYZ(1, 0, 0), (e-0.5)*2)
	}

	base := (y*rt.width + x) * 4
	rt.sampling[base] = uint8(c[0] * 255)
	rt.sampling[base+1] = uint8(c[1] * 255)
	rt.sampling[base+2] = uint8(c[2] * 255)
	rt.sampling[base+3] = 255
}

// Get the raw RGBA8 bytes in row-major order with the origin at the top
// left. With showSampling set the adaptive-sampling visualization buffer is
// returned instead of the rendered frame.
func (rt *RenderTarget) Pixels(showSampling bool) []uint8 {
	if showSampling {
		return rt.sampling
	}
	return rt.result
}

// Get the target contents as an image.
func (rt *RenderTarget) Image(showSampling bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, rt.width, rt.height))
	copy(img.Pix, rt.Pixels(showSampling))
	return img
}

// Clear all buffers.
func (rt *RenderTarget) Reset() {
	for i := range rt.accum {
		rt.accum[i] = types.Vec3{}
		rt.count[i] = 0
	}
	for i := range rt.result {
		rt.result[i] = 0
		rt.sampling[i] = 0
	}
	rt.clearBytes()
}
