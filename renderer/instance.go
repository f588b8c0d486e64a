package renderer

import (
	"math/rand"
	"time"

	"github.com/achilleasa/helios/scene"
	"github.com/achilleasa/helios/tracer"
)

// A render instance owns a disjoint viewport rectangle together with its own
// sampler, PRNG and scratch medium stack, so instances can run concurrently
// while sharing the immutable scene, index and photon octree.
type Instance struct {
	id      int
	rect    Rect
	tracer  *tracer.Tracer
	camera  *scene.Camera
	target  *RenderTarget
	sampler Sampler
	media   *tracer.MediumStack
	rng     *rand.Rand

	// Recursion depth per primary ray; 0 restricts the instance to
	// direct lighting (light debug).
	depth int

	// Panel settings carried for stats reporting.
	mode     tracer.RenderMode
	adaptive bool

	samples uint64
	elapsed time.Duration
}

func newInstance(id int, rect Rect, tr *tracer.Tracer, cam *scene.Camera, target *RenderTarget, sampler Sampler, depth int, seed int64) *Instance {
	return &Instance{
		id:      id,
		rect:    rect,
		tracer:  tr,
		camera:  cam,
		target:  target,
		sampler: sampler,
		media:   tracer.NewMediumStack(depth + 1),
		rng:     rand.New(rand.NewSource(seed)),
		depth:   depth,
	}
}

// Execute n samples synchronously. Each sample picks a pixel from the
// sampler, traces one jittered primary ray and accumulates the result;
// either the whole sample lands in the framebuffer or nothing does.
func (in *Instance) Compute(n int) {
	start := time.Now()
	w, h := in.target.Width(), in.target.Height()

	for i := 0; i < n; i++ {
		x, y := in.sampler.Next(in.target)
		px := float32(x) + in.rng.Float32()
		py := float32(y) + in.rng.Float32()
		ray := in.camera.PrimaryRay(px, py, w, h)

		in.media.PopUntil1()
		_, color := in.tracer.TraceColor(ray, in.depth, in.media, in.rng)
		in.target.Write(x, y, color)
	}

	in.samples += uint64(n)
	in.elapsed += time.Since(start)
}
