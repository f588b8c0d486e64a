package renderer

import (
	"image"
	"math/rand"
	"sync"
	"time"

	"github.com/achilleasa/helios/bvh"
	"github.com/achilleasa/helios/log"
	"github.com/achilleasa/helios/photon"
	"github.com/achilleasa/helios/scene"
	"github.com/achilleasa/helios/tracer"
	"github.com/achilleasa/helios/types"
)

// The renderer owns every piece of render state: the scene and camera, the
// acceleration structures, the optional photon octree, the framebuffer and
// the render instances working on it. Hosts hold a single handle and drive
// it through Compute; there is no hidden global state.
type Renderer struct {
	logger log.Logger
	opts   Options

	scene  *scene.Scene
	camera *scene.Camera

	tree    *bvh.Tree
	tree4   *bvh.Tree4
	index   tracer.Intersector
	photons *photon.Octree

	target    *RenderTarget
	instances []*Instance

	bvhTime     time.Duration
	photonStats photon.ShootStats
	renderTime  time.Duration

	initialized bool
}

// Create a renderer over a prepared scene. Builds the BVH (and its 4-wide
// collapse when requested), runs the photon prepass when a panel uses P-NEE
// and allocates the framebuffer and render instances.
func New(sc *scene.Scene, cam *scene.Camera, opts Options) (*Renderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if cam == nil {
		return nil, ErrCameraNotDefined
	}
	opts = opts.withDefaults()
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, ErrInvalidViewport
	}

	r := &Renderer{
		logger: log.New("renderer"),
		opts:   opts,
		scene:  sc,
		camera: cam,
	}
	if err := r.rebuild(); err != nil {
		return nil, err
	}
	return r, nil
}

// Rebuild all derived state from the current scene and options.
func (r *Renderer) rebuild() error {
	if err := r.scene.Validate(); err != nil {
		return err
	}

	start := time.Now()
	tree, err := bvh.Build(r.scene.Shapes, r.opts.NumBins)
	if err != nil {
		return err
	}
	r.tree = tree
	r.bvhTime = time.Since(start)
	r.index = tree
	r.tree4 = nil
	if r.opts.UseBVH4 {
		r.tree4 = bvh.Collapse(tree)
		r.index = r.tree4
	}
	r.logger.Infof("BVH ready: %d nodes over %d shapes in %s", len(tree.Nodes), len(tree.Shapes), r.bvhTime)

	r.photons = nil
	r.photonStats = photon.ShootStats{}
	if err := r.ensurePhotons(); err != nil {
		return err
	}

	target, err := NewRenderTarget(int(r.opts.FrameW), int(r.opts.FrameH), r.opts.Exposure, r.opts.Gamma)
	if err != nil {
		return err
	}
	r.target = target

	return r.buildInstances()
}

// Run the photon prepass if any panel needs P-NEE guidance and the octree
// has not been built yet.
func (r *Renderer) ensurePhotons() error {
	needed := r.opts.LeftMode == tracer.PNEE || r.opts.RightMode == tracer.PNEE
	if !needed || r.photons != nil {
		return nil
	}

	octree, stats, err := photon.Shoot(r.scene, r.index, photon.ShootOptions{
		PhotonsPerLight: r.opts.PhotonsPerLight,
		MaxBounces:      r.opts.PhotonBounces,
		HalfSize:        r.opts.WorldHalfSize,
		Workers:         r.opts.Workers,
		Seed:            r.opts.Seed,
	})
	if err != nil {
		return err
	}
	r.photons = octree
	r.photonStats = stats
	r.logger.Infof(
		"photon octree ready: %d/%d photons deposited in %s",
		stats.Deposited, stats.Emitted, stats.BuildTime,
	)
	return nil
}

// Split the viewport into panels and the panels into per-instance bands.
func (r *Renderer) buildInstances() error {
	w, h := r.target.Width(), r.target.Height()

	type panel struct {
		rect     Rect
		mode     tracer.RenderMode
		adaptive bool
	}
	var panels []panel
	if r.opts.singlePanel() {
		panels = []panel{{Rect{0, 0, w, h}, r.opts.LeftMode, r.opts.LeftAdaptive}}
	} else {
		half := w / 2
		panels = []panel{
			{Rect{0, 0, half, h}, r.opts.LeftMode, r.opts.LeftAdaptive},
			{Rect{half, 0, w - half, h}, r.opts.RightMode, r.opts.RightAdaptive},
		}
	}

	depth := r.opts.MaxDepth
	if r.opts.LightDebug {
		depth = 0
	}

	r.instances = nil
	id := 0
	for _, p := range panels {
		tr, err := tracer.New(r.scene, r.index, r.photons, p.mode, r.opts.MaxDepth)
		if err != nil {
			return err
		}

		bands := r.opts.Workers
		if bands > p.rect.H {
			bands = p.rect.H
		}
		for b := 0; b < bands; b++ {
			y0 := p.rect.Y + b*p.rect.H/bands
			y1 := p.rect.Y + (b+1)*p.rect.H/bands
			rect := Rect{p.rect.X, y0, p.rect.W, y1 - y0}

			seed := r.opts.Seed + int64(id+1)*7919
			var sampler Sampler
			samplerRng := rand.New(rand.NewSource(seed + 1))
			if p.adaptive {
				sampler = NewAdaptiveSampler(rect, samplerRng)
			} else {
				sampler = NewUniformSampler(rect, samplerRng)
			}

			inst := newInstance(id, rect, tr, r.camera, r.target, sampler, depth, seed)
			inst.mode = p.mode
			inst.adaptive = p.adaptive
			r.instances = append(r.instances, inst)
			id++
		}
	}

	r.initialized = true
	return nil
}

// Execute numSamples samples split across the render instances, which run
// concurrently over disjoint viewport rectangles. The call is synchronous;
// hosts that need responsiveness cap the per-call sample count.
func (r *Renderer) Compute(numSamples int) error {
	if !r.initialized {
		return ErrNotInitialized
	}
	if numSamples <= 0 {
		return nil
	}

	totalArea := 0
	for _, in := range r.instances {
		totalArea += in.rect.W * in.rect.H
	}

	start := time.Now()
	var wg sync.WaitGroup
	assigned := 0
	for i, in := range r.instances {
		share := numSamples * in.rect.W * in.rect.H / totalArea
		if i == len(r.instances)-1 {
			share = numSamples - assigned
		}
		assigned += share
		if share == 0 {
			continue
		}
		wg.Add(1)
		go func(in *Instance, n int) {
			defer wg.Done()
			in.Compute(n)
		}(in, share)
	}
	wg.Wait()
	r.renderTime += time.Since(start)
	return nil
}

// Get the raw RGBA8 framebuffer bytes.
func (r *Renderer) Results(showSampling bool) ([]uint8, error) {
	if !r.initialized {
		return nil, ErrNotInitialized
	}
	return r.target.Pixels(showSampling), nil
}

// Get the framebuffer as an image.
func (r *Renderer) Image(showSampling bool) (*image.RGBA, error) {
	if !r.initialized {
		return nil, ErrNotInitialized
	}
	return r.target.Image(showSampling), nil
}

// Clear the framebuffer and restart all samplers.
func (r *Renderer) Reset() error {
	if !r.initialized {
		return ErrNotInitialized
	}
	r.target.Reset()
	r.renderTime = 0
	return r.buildInstances()
}

// Swap in a builtin scene and rebuild all derived state.
func (r *Renderer) SetScene(id int) error {
	if !r.initialized {
		return ErrNotInitialized
	}
	sc, cam, err := scene.Builtin(id, r.opts.MeshPath)
	if err != nil {
		return err
	}
	r.scene = sc
	r.camera = cam
	return r.rebuild()
}

// Change the per-panel render settings. The framebuffer restarts from
// scratch; the BVH is kept and the photon octree is built on demand.
func (r *Renderer) UpdateSettings(left, right tracer.RenderMode, leftAdaptive, rightAdaptive, lightDebug bool) error {
	if !r.initialized {
		return ErrNotInitialized
	}
	r.opts.LeftMode = left
	r.opts.RightMode = right
	r.opts.LeftAdaptive = leftAdaptive
	r.opts.RightAdaptive = rightAdaptive
	r.opts.LightDebug = lightDebug
	if err := r.ensurePhotons(); err != nil {
		return err
	}
	r.target.Reset()
	return r.buildInstances()
}

// Resize the viewport, reallocating the framebuffer.
func (r *Renderer) UpdateViewport(width, height uint32) error {
	if !r.initialized {
		return ErrNotInitialized
	}
	target, err := NewRenderTarget(int(width), int(height), r.opts.Exposure, r.opts.Gamma)
	if err != nil {
		return err
	}
	r.opts.FrameW = width
	r.opts.FrameH = height
	r.target = target
	return r.buildInstances()
}

// Move the camera and restart accumulation.
func (r *Renderer) UpdateCamera(position types.Vec3, rotX, rotY float32) error {
	if !r.initialized {
		return ErrNotInitialized
	}
	r.camera.Position = position
	r.camera.RotX = rotX
	r.camera.RotY = rotY
	r.target.Reset()
	return r.buildInstances()
}

// Get the BVH used for intersection tests.
func (r *Renderer) Tree() *bvh.Tree {
	return r.tree
}

// Get the photon octree, or nil when no panel uses P-NEE.
func (r *Renderer) Photons() *photon.Octree {
	return r.photons
}

// Collect frame statistics.
func (r *Renderer) Stats() FrameStats {
	stats := FrameStats{
		BVHBuildTime:     r.bvhTime,
		PhotonBuildTime:  r.photonStats.BuildTime,
		PhotonsEmitted:   r.photonStats.Emitted,
		PhotonsDeposited: r.photonStats.Deposited,
		PhotonsDiscarded: r.photonStats.Discarded,
		RenderTime:       r.renderTime,
	}
	for _, in := range r.instances {
		stats.Instances = append(stats.Instances, InstanceStat{
			Id:         in.id,
			Rect:       in.rect,
			Mode:       in.mode.String(),
			Adaptive:   in.adaptive,
			Samples:    in.samples,
			RenderTime: in.elapsed,
		})
	}
	return stats
}
