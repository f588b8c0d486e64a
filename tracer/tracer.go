package tracer

import (
	"errors"
	"math/rand"

	"github.com/achilleasa/helios/photon"
	"github.com/achilleasa/helios/scene"
	"github.com/achilleasa/helios/types"
	"github.com/chewxy/math32"
)

// Selects how direct illumination is estimated at each bounce.
type RenderMode int

const (
	// Brute-force recursion only; no shadow rays.
	NoNEE RenderMode = iota

	// Next-event estimation: one shadow ray per light.
	NormalNEE

	// Photon-guided NEE: a single light drawn from the photon octree.
	PNEE
)

func (m RenderMode) String() string {
	switch m {
	case NoNEE:
		return "no-nee"
	case NormalNEE:
		return "nee"
	case PNEE:
		return "p-nee"
	}
	return "unknown"
}

// The intersection index the tracer shoots rays against.
type Intersector interface {
	Trace(types.Ray) (scene.Hit, bool)
	Occluded(types.Ray, float32) bool
}

// Offset applied along the surface normal when spawning secondary rays.
const surfaceBias float32 = 1e-3

// A recursive Whitted-style radiance integrator with nested-media refraction.
// Tracers are stateless apart from immutable configuration and can be shared
// by concurrent render instances as long as each call site supplies its own
// medium stack and PRNG.
type Tracer struct {
	scene    *scene.Scene
	index    Intersector
	photons  *photon.Octree
	mode     RenderMode
	maxDepth int
}

// Create a tracer. The photons index may be nil unless mode is PNEE.
func New(sc *scene.Scene, index Intersector, photons *photon.Octree, mode RenderMode, maxDepth int) (*Tracer, error) {
	if sc == nil {
		return nil, errors.New("tracer: no scene defined")
	}
	if index == nil {
		return nil, errors.New("tracer: no intersection index defined")
	}
	if maxDepth < 1 {
		return nil, errors.New("tracer: max depth must be at least 1")
	}
	if mode == PNEE && photons == nil {
		return nil, errors.New("tracer: P-NEE mode requires a photon octree")
	}
	return &Tracer{
		scene:    sc,
		index:    index,
		photons:  photons,
		mode:     mode,
		maxDepth: maxDepth,
	}, nil
}

// Get the recursion cap.
func (t *Tracer) MaxDepth() int {
	return t.maxDepth
}

// Trace a ray and return the distance to the first hit (0 on miss) together
// with the incoming radiance. The medium stack must mirror the media the ray
// origin is inside; every recursive push is bracketed by its matching pop so
// the stack is restored before TraceColor returns.
func (t *Tracer) TraceColor(ray types.Ray, depth int, media *MediumStack, rng *rand.Rand) (float32, types.Vec3) {
	hit, ok := t.index.Trace(ray)
	if !ok {
		return 0, t.scene.Background
	}

	p := ray.At(hit.T)
	if hit.Mat.Kind == scene.RefractMaterial {
		return hit.T, t.shadeRefract(ray, hit, p, depth, media, rng)
	}
	return hit.T, t.shadeReflect(ray, hit, p, depth, media, rng)
}

func (t *Tracer) shadeReflect(ray types.Ray, hit scene.Hit, p types.Vec3, depth int, media *MediumStack, rng *rand.Rand) types.Vec3 {
	light := t.directLight(p, hit.Normal, rng)

	color := hit.Mat.Color
	if depth > 0 && hit.Mat.Reflection > 0 {
		reflRay := types.Ray{
			Origin: p.Add(hit.Normal.Mul(surfaceBias)),
			Dir:    ray.Dir.Reflect(hit.Normal),
		}
		_, reflected := t.TraceColor(reflRay, depth-1, media, rng)
		r := hit.Mat.Reflection
		color = color.Mul(1 - r).Add(reflected.Mul(r))
	}
	return light.Mulv(color)
}

// Estimate the direct illumination arriving at a surface point.
func (t *Tracer) directLight(p, n types.Vec3, rng *rand.Rand) types.Vec3 {
	if len(t.scene.Lights) == 0 {
		return types.Vec3{}
	}

	switch t.mode {
	case NoNEE:
		var sum types.Vec3
		for i := range t.scene.Lights {
			sum = sum.Add(t.lightContribution(p, n, t.scene.Lights[i], false))
		}
		return sum
	case PNEE:
		// Draw one light from the spatially learned distribution; the
		// 1/pdf weight keeps the estimator unbiased. Delta lights are
		// unreachable by BSDF sampling, so the NEE strategy carries
		// the full MIS weight.
		lightIdx, pdf := t.photons.Sample(p, rng)
		if pdf <= 0 {
			return types.Vec3{}
		}
		return t.lightContribution(p, n, t.scene.Lights[lightIdx], true).Mul(1 / pdf)
	default: // NormalNEE
		var sum types.Vec3
		for i := range t.scene.Lights {
			sum = sum.Add(t.lightContribution(p, n, t.scene.Lights[i], true))
		}
		return sum
	}
}

func (t *Tracer) lightContribution(p, n types.Vec3, light scene.Light, shadow bool) types.Vec3 {
	dir, dist, color := light.Incident(p)
	cos := n.Dot(dir)
	if cos <= 0 || (color[0] == 0 && color[1] == 0 && color[2] == 0) {
		return types.Vec3{}
	}
	if shadow {
		shadowRay := types.Ray{Origin: p.Add(n.Mul(surfaceBias)), Dir: dir}
		if t.index.Occluded(shadowRay, dist-2*surfaceBias) {
			return types.Vec3{}
		}
	}
	return color.Mul(cos)
}

func (t *Tracer) shadeRefract(ray types.Ray, hit scene.Hit, p types.Vec3, depth int, media *MediumStack, rng *rand.Rand) types.Vec3 {
	if depth <= 0 {
		return exhaustionColor(hit.Mat.Absorption)
	}

	inside := Medium{Absorption: hit.Mat.Absorption, Index: hit.Mat.Index}

	// On entry the outside medium sits on top of the stack. On exit the
	// top is the object being left, so it is popped to expose the medium
	// the refracted ray continues into; the pop is reverted below before
	// the reflected bounce, which stays on the incident side.
	var etaI, etaT float32
	var popped Medium
	didPop := false
	if hit.Entering {
		etaI = media.Top().Index
		etaT = inside.Index
	} else {
		popped, didPop = media.Pop()
		etaI = inside.Index
		etaT = media.Top().Index
	}

	kr := fresnel(ray.Dir, hit.Normal, etaI, etaT)

	var refracted types.Vec3
	if kr < 1 {
		dir, ok := ray.Dir.Refract(hit.Normal, etaI/etaT)
		if ok {
			refrRay := types.Ray{Origin: p.Sub(hit.Normal.Mul(surfaceBias)), Dir: dir}
			if hit.Entering {
				pushed := media.Push(inside)
				dist, c := t.TraceColor(refrRay, depth-1, media, rng)
				if pushed {
					media.Pop()
				}
				refracted = beerLambert(c, inside.Absorption, dist)
			} else {
				outside := media.Top()
				dist, c := t.TraceColor(refrRay, depth-1, media, rng)
				refracted = beerLambert(c, outside.Absorption, dist)
			}
		} else {
			kr = 1
		}
	}

	if didPop {
		media.Push(popped)
	}

	var reflected types.Vec3
	if kr > 0 {
		reflRay := types.Ray{
			Origin: p.Add(hit.Normal.Mul(surfaceBias)),
			Dir:    ray.Dir.Reflect(hit.Normal),
		}
		current := media.Top()
		dist, c := t.TraceColor(reflRay, depth-1, media, rng)
		reflected = beerLambert(c, current.Absorption, dist)
	}

	return reflected.Mul(kr).Add(refracted.Mul(1 - kr))
}

// Dielectric reflectance for unpolarized light. The normal is expected to
// face the incident ray. Returns 1 on total internal reflection.
func fresnel(dir, n types.Vec3, etaI, etaT float32) float32 {
	cosI := -dir.Dot(n)
	if cosI < 0 {
		cosI = 0
	} else if cosI > 1 {
		cosI = 1
	}
	ratio := etaI / etaT
	sinT2 := ratio * ratio * (1 - cosI*cosI)
	if sinT2 >= 1 {
		return 1
	}
	cosT := math32.Sqrt(1 - sinT2)
	rs := (etaI*cosI - etaT*cosT) / (etaI*cosI + etaT*cosT)
	rp := (etaI*cosT - etaT*cosI) / (etaI*cosT + etaT*cosI)
	return (rs*rs + rp*rp) / 2
}

// Attenuate a color by Beer-Lambert absorption over a traveled distance. A
// zero distance (the recursive call missed everything) leaves the color
// untouched.
func beerLambert(c, absorption types.Vec3, dist float32) types.Vec3 {
	if dist <= 0 {
		return c
	}
	return types.XYZ(
		c[0]*math32.Exp(-absorption[0]*dist),
		c[1]*math32.Exp(-absorption[1]*dist),
		c[2]*math32.Exp(-absorption[2]*dist),
	)
}

// The color reported for a transparent surface when recursion depth runs
// out: a visually reasonable tint derived from the absorption instead of
// hard black.
func exhaustionColor(absorption types.Vec3) types.Vec3 {
	max := absorption.MaxComponent()
	if max <= 0 {
		return types.XYZ(1, 1, 1)
	}
	return types.XYZ(
		1-absorption[0]/max,
		1-absorption[1]/max,
		1-absorption[2]/max,
	)
}
