package photon

import (
	"errors"
	"math/rand"
	"sort"
)

// An empirical discrete probability distribution over a fixed number of
// bins. Weight updates mark the distribution dirty; the cumulative table is
// rebuilt lazily on the next Sample or BinProb call, which keeps the common
// bulk-fill-then-bulk-sample pattern cheap.
type EmpiricalPDF struct {
	weights []float32

	// cum[0] = 0, cum[i] = cum[i-1] + weights[i-1]/total, cum[n] = 1.
	cum   []float32
	dirty bool
}

// Create an empirical PDF over n bins. With no weights recorded yet the
// distribution is uniform.
func NewEmpiricalPDF(n int) (*EmpiricalPDF, error) {
	if n < 1 {
		return nil, errors.New("photon: empirical pdf needs at least one bin")
	}
	return &EmpiricalPDF{
		weights: make([]float32, n),
		cum:     make([]float32, n+1),
		dirty:   true,
	}, nil
}

// Get the bin count.
func (p *EmpiricalPDF) NumBins() int {
	return len(p.weights)
}

// Set the weight of a bin.
func (p *EmpiricalPDF) Set(bin int, w float32) {
	p.weights[bin] = w
	p.dirty = true
}

// Add to the weight of a bin.
func (p *EmpiricalPDF) Add(bin int, dw float32) {
	p.weights[bin] += dw
	p.dirty = true
}

func (p *EmpiricalPDF) rebuild() {
	var total float32
	for _, w := range p.weights {
		total += w
	}

	n := len(p.weights)
	if total == 0 {
		// No observations; fall back to uniform.
		for i := 0; i <= n; i++ {
			p.cum[i] = float32(i) / float32(n)
		}
	} else {
		inv := 1.0 / total
		var acc float32
		p.cum[0] = 0
		for i, w := range p.weights {
			acc += w * inv
			p.cum[i+1] = acc
		}
	}
	p.cum[n] = 1
	p.dirty = false
}

// Draw a bin index distributed according to the recorded weights.
func (p *EmpiricalPDF) Sample(rng *rand.Rand) int {
	if p.dirty {
		p.rebuild()
	}

	r := rng.Float32()
	// Largest bin i with cum[i] <= r.
	bin := sort.Search(len(p.weights), func(i int) bool { return p.cum[i+1] > r })
	if bin >= len(p.weights) {
		bin = len(p.weights) - 1
	}
	return bin
}

// Get the probability mass of a bin.
func (p *EmpiricalPDF) BinProb(bin int) float32 {
	if p.dirty {
		p.rebuild()
	}
	return p.cum[bin+1] - p.cum[bin]
}
