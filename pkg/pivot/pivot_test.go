package pivot

import (
	"math"
	"math/rand"
	"testing"
)

// line builds a DistanceFunc over a 1-D set of points so selection
// behavior is easy to reason about by hand.
func line(points []float64) DistanceFunc {
	return func(i, j int) (float64, error) {
		return math.Abs(points[i] - points[j]), nil
	}
}

func TestFFTReturnsRequestedCount(t *testing.T) {
	points := []float64{0, 1, 2, 10, 20, 30, 100}
	dist := line(points)

	pivots, err := FFT{}.Select(dist, len(points), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pivots) != 3 {
		t.Fatalf("expected 3 pivots, got %d", len(pivots))
	}
	if pivots[0] != 0 {
		t.Fatalf("expected first pivot to be position 0, got %d", pivots[0])
	}
	seen := map[int]bool{}
	for _, p := range pivots {
		if seen[p] {
			t.Fatalf("duplicate pivot %d", p)
		}
		seen[p] = true
	}
}

func TestFFTReturnsAllWhenMoreRequestedThanPoints(t *testing.T) {
	points := []float64{0, 1, 2}
	dist := line(points)

	pivots, err := FFT{}.Select(dist, len(points), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pivots) != len(points) {
		t.Fatalf("expected %d pivots, got %d", len(points), len(pivots))
	}
}

func TestDensitySelectReturnsRequestedCount(t *testing.T) {
	points := make([]float64, 40)
	for i := range points {
		points[i] = float64(i)
	}
	dist := line(points)

	pivots, err := Density{}.Select(dist, len(points), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pivots) != 4 {
		t.Fatalf("expected 4 pivots, got %d", len(pivots))
	}
	for _, p := range pivots {
		if p < 0 || p >= len(points) {
			t.Fatalf("pivot %d out of range", p)
		}
	}
}

func TestDensityDisParReturnsNonEmpty(t *testing.T) {
	points := make([]float64, 50)
	for i := range points {
		points[i] = float64(i * i)
	}
	dist := line(points)

	pivots, err := DensityDisPar{}.Select(dist, len(points), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pivots) == 0 || len(pivots) > 5 {
		t.Fatalf("expected between 1 and 5 pivots, got %d", len(pivots))
	}
}

func TestDFDisParReturnsDistinctPivots(t *testing.T) {
	points := make([]float64, 50)
	for i := range points {
		points[i] = float64(i * i)
	}
	dist := line(points)

	pivots, err := DFDisPar{}.Select(dist, len(points), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := map[int]bool{}
	for _, p := range pivots {
		if seen[p] {
			t.Fatalf("duplicate pivot %d", p)
		}
		seen[p] = true
	}
}

func TestDensityPeakReturnsSinglePivot(t *testing.T) {
	points := []float64{0, 0.1, 0.2, 5, 10, 10.1, 10.2, 50}
	dist := line(points)

	pivots, err := DensityPeak{}.Select(dist, len(points), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pivots) != 1 {
		t.Fatalf("expected exactly 1 pivot, got %d", len(pivots))
	}
}

func TestDensityPeakFarthestIsDeterministicWithFixedSeed(t *testing.T) {
	points := make([]float64, 200)
	for i := range points {
		points[i] = float64(i)
	}
	dist := line(points)
	sel := DensityPeakFarthest{SampleSize: 50, Rand: rand.New(rand.NewSource(42))}

	p1, err := sel.Select(dist, len(points), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sel2 := DensityPeakFarthest{SampleSize: 50, Rand: rand.New(rand.NewSource(42))}
	p2, err := sel2.Select(dist, len(points), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1[0] != p2[0] {
		t.Fatalf("expected deterministic result with fixed seed, got %d and %d", p1[0], p2[0])
	}
}

func TestRandSelectNoDuplicates(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	sample := randSelect(r, 100, 30)
	if len(sample) != 30 {
		t.Fatalf("expected sample size 30, got %d", len(sample))
	}
	seen := map[int]bool{}
	for _, v := range sample {
		if seen[v] {
			t.Fatalf("duplicate sampled position %d", v)
		}
		seen[v] = true
	}
}
