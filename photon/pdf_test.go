package photon

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
)

func TestEmpiricalPDFValidation(t *testing.T) {
	if _, err := NewEmpiricalPDF(0); err == nil {
		t.Fatal("expected an error for zero bins")
	}
}

func TestEmpiricalPDFBinProb(t *testing.T) {
	pdf, err := NewEmpiricalPDF(4)
	if err != nil {
		t.Fatal(err)
	}
	pdf.Set(0, 1)
	pdf.Set(1, 3)
	pdf.Set(2, 0)
	pdf.Set(3, 4)

	want := []float32{0.125, 0.375, 0, 0.5}
	var sum float32
	for bin, w := range want {
		got := pdf.BinProb(bin)
		if math32.Abs(got-w) > 1e-6 {
			t.Fatalf("bin %d: expected probability %f; got %f", bin, w, got)
		}
		sum += got
	}
	if math32.Abs(sum-1) > 1e-6 {
		t.Fatalf("expected probabilities to sum to 1; got %f", sum)
	}
}

func TestEmpiricalPDFUniformFallback(t *testing.T) {
	pdf, err := NewEmpiricalPDF(5)
	if err != nil {
		t.Fatal(err)
	}
	for bin := 0; bin < 5; bin++ {
		if got := pdf.BinProb(bin); math32.Abs(got-0.2) > 1e-6 {
			t.Fatalf("bin %d: expected uniform probability 0.2; got %f", bin, got)
		}
	}
}

func TestEmpiricalPDFZeroBinNeverSampled(t *testing.T) {
	pdf, err := NewEmpiricalPDF(3)
	if err != nil {
		t.Fatal(err)
	}
	pdf.Set(0, 1)
	pdf.Set(2, 1)

	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		if bin := pdf.Sample(rng); bin == 1 {
			t.Fatal("sampled a zero-weight bin")
		}
	}
}

func TestEmpiricalPDFSampleFrequencies(t *testing.T) {
	pdf, err := NewEmpiricalPDF(4)
	if err != nil {
		t.Fatal(err)
	}
	pdf.Set(0, 10)
	pdf.Set(1, 20)
	pdf.Set(2, 30)
	pdf.Set(3, 40)

	rng := rand.New(rand.NewSource(42))
	const numSamples = 100000
	counts := make([]int, 4)
	for i := 0; i < numSamples; i++ {
		counts[pdf.Sample(rng)]++
	}

	// Kolmogorov-Smirnov statistic between the empirical and the expected
	// CDF; the critical value at alpha=0.01 is 1.63/sqrt(n), conservative
	// for discrete distributions.
	var empirical, expected, ks float32
	for bin := 0; bin < 4; bin++ {
		empirical += float32(counts[bin]) / numSamples
		expected += pdf.BinProb(bin)
		if d := math32.Abs(empirical - expected); d > ks {
			ks = d
		}
	}
	if crit := 1.63 / math32.Sqrt(numSamples); ks > crit {
		t.Fatalf("KS statistic %f exceeds the critical value %f", ks, crit)
	}
}

func TestEmpiricalPDFLazyRebuild(t *testing.T) {
	pdf, err := NewEmpiricalPDF(2)
	if err != nil {
		t.Fatal(err)
	}
	pdf.Set(0, 1)
	if got := pdf.BinProb(0); math32.Abs(got-1) > 1e-6 {
		t.Fatalf("expected probability 1 for the only weighted bin; got %f", got)
	}

	// Adding weight after a rebuild must be reflected in later queries.
	pdf.Add(1, 3)
	if got := pdf.BinProb(1); math32.Abs(got-0.75) > 1e-6 {
		t.Fatalf("expected probability 0.75 after weight update; got %f", got)
	}
	if got := pdf.BinProb(0); math32.Abs(got-0.25) > 1e-6 {
		t.Fatalf("expected probability 0.25 after weight update; got %f", got)
	}
}
