package photon

import (
	"errors"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/achilleasa/helios/log"
	"github.com/achilleasa/helios/scene"
	"github.com/achilleasa/helios/types"
	"github.com/chewxy/math32"
)

// The subset of the intersection index needed by the photon prepass.
type Intersector interface {
	Trace(types.Ray) (scene.Hit, bool)
}

// Options for the photon shooting prepass.
type ShootOptions struct {
	// Photons emitted per light source.
	PhotonsPerLight int

	// Max surface interactions per photon before it is abandoned.
	MaxBounces int

	// World cube half-size for the octree.
	HalfSize float32

	// Worker goroutine count; defaults to the CPU count.
	Workers int

	// PRNG seed; workers derive their own streams from it.
	Seed int64
}

// Counters reported by the prepass.
type ShootStats struct {
	Emitted   int
	Deposited int
	Discarded int
	Lost      int
	BuildTime time.Duration
}

const shootBias float32 = 1e-3

// Shoot photons from every light in the scene and build the guiding octree.
// Workers trace photons concurrently, each with its own PRNG; deposits are
// funneled through a channel into a single inserter so the octree needs no
// locking. The returned octree is immutable and safe for concurrent reads.
func Shoot(sc *scene.Scene, index Intersector, opts ShootOptions) (*Octree, ShootStats, error) {
	if len(sc.Lights) == 0 {
		return nil, ShootStats{}, errors.New("photon: scene has no lights to shoot from")
	}
	if opts.PhotonsPerLight <= 0 {
		opts.PhotonsPerLight = 100000
	}
	if opts.MaxBounces <= 0 {
		opts.MaxBounces = 8
	}
	if opts.HalfSize <= 0 {
		opts.HalfSize = DefaultHalfSize
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	tree, err := NewOctree(len(sc.Lights), opts.HalfSize)
	if err != nil {
		return nil, ShootStats{}, err
	}

	logger := log.New("photon")
	start := time.Now()
	sceneBounds := sc.Bounds()

	deposits := make(chan Photon, 4096)
	var wg sync.WaitGroup
	var nextSeed int64

	for lightIdx := range sc.Lights {
		assigned := 0
		for w := 0; w < opts.Workers; w++ {
			count := opts.PhotonsPerLight / opts.Workers
			if w == opts.Workers-1 {
				count = opts.PhotonsPerLight - assigned
			}
			assigned += count
			if count == 0 {
				continue
			}

			nextSeed++
			wg.Add(1)
			go func(lightIdx, count int, seed int64) {
				defer wg.Done()
				sh := shooter{
					scene:  sc,
					index:  index,
					bounds: sceneBounds,
					rng:    rand.New(rand.NewSource(seed)),
					max:    opts.MaxBounces,
					out:    deposits,
				}
				for i := 0; i < count; i++ {
					sh.shootOne(lightIdx)
				}
			}(lightIdx, count, opts.Seed+nextSeed)
		}
	}

	go func() {
		wg.Wait()
		close(deposits)
	}()

	stats := ShootStats{Emitted: opts.PhotonsPerLight * len(sc.Lights)}
	for ph := range deposits {
		if tree.Insert(ph.Light, ph.Position, ph.Intensity) {
			stats.Deposited++
		} else {
			stats.Discarded++
		}
	}
	stats.Lost = stats.Emitted - stats.Deposited - stats.Discarded
	stats.BuildTime = time.Since(start)

	logger.Debugf(
		"photon prepass: %d emitted, %d deposited, %d discarded, %d lost in %s",
		stats.Emitted, stats.Deposited, stats.Discarded, stats.Lost, stats.BuildTime,
	)
	return tree, stats, nil
}

type shooter struct {
	scene  *scene.Scene
	index  Intersector
	bounds types.AABB
	rng    *rand.Rand
	max    int
	out    chan<- Photon
}

// Emit one photon from a light and walk it through the scene until it lands
// on a reflective surface. Transparent surfaces bend the photon via Snell's
// law (or mirror it on total internal reflection) and attenuate its energy
// by Beer-Lambert over the traversed interior distance.
func (sh *shooter) shootOne(lightIdx int) {
	light := sh.scene.Lights[lightIdx]
	ray, intensity := sh.emit(light)

	for bounce := 0; bounce <= sh.max; bounce++ {
		hit, ok := sh.index.Trace(ray)
		if !ok {
			return
		}
		p := ray.At(hit.T)

		if hit.Mat.Kind == scene.ReflectMaterial {
			sh.out <- Photon{Light: lightIdx, Position: p, Intensity: intensity}
			return
		}

		// Exiting an absorbing medium attenuates the photon by the
		// distance traveled inside it.
		if !hit.Entering {
			a := hit.Mat.Absorption
			mean := (a[0] + a[1] + a[2]) / 3
			intensity *= math32.Exp(-mean * hit.T)
		}

		eta := 1 / hit.Mat.Index
		if !hit.Entering {
			eta = hit.Mat.Index
		}
		if refracted, ok := ray.Dir.Refract(hit.Normal, eta); ok {
			ray = types.Ray{Origin: p.Sub(hit.Normal.Mul(shootBias)), Dir: refracted}
		} else {
			ray = types.Ray{Origin: p.Add(hit.Normal.Mul(shootBias)), Dir: ray.Dir.Reflect(hit.Normal)}
		}
	}
}

// Generate the initial photon ray and energy for a light.
func (sh *shooter) emit(light scene.Light) (types.Ray, float32) {
	intensity := light.Color.Luminance()

	switch light.Kind {
	case scene.DirectionalLight:
		// Launch from a disk behind the scene bounds along the light
		// direction so parallel photons cover all geometry.
		center := sh.bounds.Center()
		radius := sh.bounds.Extent().Len() * 0.5
		if radius <= 0 {
			radius = 1
		}
		tangent, bitangent := basis(light.Dir)
		r := radius * math32.Sqrt(sh.rng.Float32())
		phi := 2 * math32.Pi * sh.rng.Float32()
		origin := center.
			Sub(light.Dir.Mul(2 * radius)).
			Add(tangent.Mul(r * math32.Cos(phi))).
			Add(bitangent.Mul(r * math32.Sin(phi)))
		return types.Ray{Origin: origin, Dir: light.Dir}, intensity

	case scene.SpotLight:
		return types.Ray{Origin: light.Position, Dir: sh.coneDir(light.Dir, light.Angle)}, intensity

	default: // PointLight
		return types.Ray{Origin: light.Position, Dir: sh.sphereDir()}, intensity
	}
}

// Draw a uniform direction on the unit sphere.
func (sh *shooter) sphereDir() types.Vec3 {
	z := 1 - 2*sh.rng.Float32()
	r := math32.Sqrt(1 - z*z)
	phi := 2 * math32.Pi * sh.rng.Float32()
	return types.XYZ(r*math32.Cos(phi), r*math32.Sin(phi), z)
}

// Draw a uniform direction inside a cone around axis.
func (sh *shooter) coneDir(axis types.Vec3, angle float32) types.Vec3 {
	cosTheta := 1 - sh.rng.Float32()*(1-math32.Cos(angle))
	sinTheta := math32.Sqrt(1 - cosTheta*cosTheta)
	phi := 2 * math32.Pi * sh.rng.Float32()
	tangent, bitangent := basis(axis)
	return axis.Mul(cosTheta).
		Add(tangent.Mul(sinTheta * math32.Cos(phi))).
		Add(bitangent.Mul(sinTheta * math32.Sin(phi))).
		Normalize()
}

// Build an orthonormal basis perpendicular to a unit vector.
func basis(n types.Vec3) (tangent, bitangent types.Vec3) {
	up := types.XYZ(0, 1, 0)
	if math32.Abs(n[1]) > 0.9 {
		up = types.XYZ(1, 0, 0)
	}
	tangent = up.Cross(n).Normalize()
	bitangent = n.Cross(tangent)
	return tangent, bitangent
}
