package renderer

import (
	"github.com/achilleasa/helios/photon"
	"github.com/achilleasa/helios/tracer"
)

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Max recursion depth per primary ray.
	MaxDepth int

	// Direct illumination mode and adaptive sampling flag per panel. When
	// both panels use identical settings the frame is rendered as one.
	LeftMode      tracer.RenderMode
	RightMode     tracer.RenderMode
	LeftAdaptive  bool
	RightAdaptive bool

	// Restrict tracing to direct lighting for light placement debugging.
	LightDebug bool

	// SAH bin count for the BVH build.
	NumBins int

	// Traverse the collapsed 4-wide BVH instead of the 2-wide one.
	UseBVH4 bool

	// Photon prepass tuning (P-NEE panels only).
	PhotonsPerLight int
	PhotonBounces   int
	WorldHalfSize   float32

	// Tonemapping.
	Exposure float32
	Gamma    float32

	// Render instances per panel.
	Workers int

	// Base PRNG seed; instances and photon workers derive their streams
	// from it.
	Seed int64

	// Path of the OBJ file used by the builtin mesh scene.
	MeshPath string
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = 5
	}
	if o.NumBins <= 1 {
		o.NumBins = 16
	}
	if o.PhotonsPerLight <= 0 {
		o.PhotonsPerLight = 100000
	}
	if o.PhotonBounces <= 0 {
		o.PhotonBounces = 8
	}
	if o.WorldHalfSize <= 0 {
		o.WorldHalfSize = photon.DefaultHalfSize
	}
	if o.Exposure <= 0 {
		o.Exposure = 1
	}
	if o.Gamma <= 0 {
		o.Gamma = 2.2
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	return o
}

// Check whether the two panels share their settings and can be rendered as
// a single full-width panel.
func (o Options) singlePanel() bool {
	return o.LeftMode == o.RightMode && o.LeftAdaptive == o.RightAdaptive
}
