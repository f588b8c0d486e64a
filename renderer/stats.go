package renderer

import "time"

type InstanceStat struct {
	// The instance id.
	Id int

	// Assigned viewport rectangle.
	Rect Rect

	// Direct lighting mode and sampler kind.
	Mode     string
	Adaptive bool

	// Samples traced and time spent so far.
	Samples    uint64
	RenderTime time.Duration
}

type FrameStats struct {
	// Individual instance stats.
	Instances []InstanceStat

	// One-shot build times.
	BVHBuildTime    time.Duration
	PhotonBuildTime time.Duration

	// Photon prepass counters (zero unless a panel uses P-NEE).
	PhotonsEmitted   int
	PhotonsDeposited int
	PhotonsDiscarded int

	// Total time spent in Compute calls.
	RenderTime time.Duration
}
