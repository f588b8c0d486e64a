package renderer

import (
	"math/rand"

	"github.com/chewxy/math32"
)

// A viewport sub-rectangle owned by one render instance.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// Picks the pixels a render instance spends its samples on.
type Sampler interface {
	// Get the next pixel to sample (absolute viewport coords).
	Next(rt *RenderTarget) (x, y int)
}

type pixel struct {
	x int32
	y int32
}

// A sampler that sweeps its rectangle uniformly, one shuffled full pass at a
// time.
type UniformSampler struct {
	rect    Rect
	rng     *rand.Rand
	pending []pixel
}

// Create a uniform sampler over a viewport rectangle.
func NewUniformSampler(rect Rect, rng *rand.Rand) *UniformSampler {
	return &UniformSampler{rect: rect, rng: rng}
}

func (s *UniformSampler) Next(rt *RenderTarget) (int, int) {
	if len(s.pending) == 0 {
		s.pending = make([]pixel, 0, s.rect.W*s.rect.H)
		for y := s.rect.Y; y < s.rect.Y+s.rect.H; y++ {
			for x := s.rect.X; x < s.rect.X+s.rect.W; x++ {
				s.pending = append(s.pending, pixel{int32(x), int32(y)})
			}
		}
		s.rng.Shuffle(len(s.pending), func(i, j int) {
			s.pending[i], s.pending[j] = s.pending[j], s.pending[i]
		})
	}

	p := s.pending[len(s.pending)-1]
	s.pending = s.pending[:len(s.pending)-1]
	return int(p.x), int(p.y)
}

const (
	// Samples preloaded per pixel to seed the error estimate.
	warmupSamples = 4

	// Max extra samples scheduled per pixel and adapt step.
	adaptScale = 32
)

// A sampler that concentrates samples on high-variance pixels. After a
// uniform warm-up it repeatedly estimates a per-pixel error from the
// distance between each pixel and its Gaussian-blurred neighborhood and
// schedules sample counts proportional to the rescaled error.
type AdaptiveSampler struct {
	rect    Rect
	rng     *rand.Rand
	pending []pixel
	warmed  bool
}

// Create an adaptive sampler over a viewport rectangle.
func NewAdaptiveSampler(rect Rect, rng *rand.Rand) *AdaptiveSampler {
	return &AdaptiveSampler{rect: rect, rng: rng}
}

func (s *AdaptiveSampler) Next(rt *RenderTarget) (int, int) {
	if len(s.pending) == 0 {
		if !s.warmed {
			s.warmup()
			s.warmed = true
		} else {
			s.adapt(rt)
		}
	}

	p := s.pending[len(s.pending)-1]
	s.pending = s.pending[:len(s.pending)-1]
	return int(p.x), int(p.y)
}

func (s *AdaptiveSampler) warmup() {
	s.pending = make([]pixel, 0, s.rect.W*s.rect.H*warmupSamples)
	for y := s.rect.Y; y < s.rect.Y+s.rect.H; y++ {
		for x := s.rect.X; x < s.rect.X+s.rect.W; x++ {
			for i := 0; i < warmupSamples; i++ {
				s.pending = append(s.pending, pixel{int32(x), int32(y)})
			}
		}
	}
	s.shuffle()
}

// Estimate per-pixel errors, rescale them to [0, 1] around the regional mean
// and schedule ceil(1 + 32*e) samples per pixel. Fireflies differ from both
// blur widths and get oversampled; converged regions are revisited sparsely.
func (s *AdaptiveSampler) adapt(rt *RenderTarget) {
	errs := make([]float32, s.rect.W*s.rect.H)
	min := float32(math32.MaxFloat32)
	max := float32(-math32.MaxFloat32)
	var mean float32

	i := 0
	for y := s.rect.Y; y < s.rect.Y+s.rect.H; y++ {
		for x := s.rect.X; x < s.rect.X+s.rect.W; x++ {
			v := rt.Read(x, y)
			e3 := v.Dist2(rt.Gaussian3(x, y, s.rect))
			e5 := v.Dist2(rt.Gaussian5(x, y, s.rect))
			e := e3
			if e5 > e {
				e = e5
			}
			errs[i] = e
			if e < min {
				min = e
			}
			if e > max {
				max = e
			}
			mean += e
			i++
		}
	}
	mean /= float32(len(errs))

	s.pending = s.pending[:0]
	i = 0
	for y := s.rect.Y; y < s.rect.Y+s.rect.H; y++ {
		for x := s.rect.X; x < s.rect.X+s.rect.W; x++ {
			e := rescale(errs[i], min, mean, max)
			rt.WriteSampleViz(x, y, e)
			n := int(math32.Ceil(1 + adaptScale*e))
			for k := 0; k < n; k++ {
				s.pending = append(s.pending, pixel{int32(x), int32(y)})
			}
			i++
		}
	}
	s.shuffle()
}

// Map an error to [0, 1] with a piecewise-linear curve hinged at the
// regional mean: below-mean errors land in [0, 0.5], above-mean in [0.5, 1].
func rescale(e, min, mean, max float32) float32 {
	if e < mean {
		if mean-min <= 0 {
			return 0
		}
		return 0.5 * (e - min) / (mean - min)
	}
	if max-mean <= 0 {
		return 0.5
	}
	return 0.5 + 0.5*(e-mean)/(max-mean)
}

func (s *AdaptiveSampler) shuffle() {
	s.rng.Shuffle(len(s.pending), func(i, j int) {
		s.pending[i], s.pending[j] = s.pending[j], s.pending[i]
	})
}
