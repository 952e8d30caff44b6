// Package triangleindex builds the pivot-distance table and projection
// order the block-sweep detector prunes candidate pairs with, using the
// triangle inequality: |d(a,p) - d(b,p)| is always a lower bound on
// d(a,b) for any pivot p, so a large enough gap rules out a or b being
// among each other's k nearest neighbors without computing the real
// distance.
package triangleindex

import "sort"

// DistanceFunc computes the distance between the objects at positions i
// and j in the dataset the index is built over.
type DistanceFunc func(i, j int) (float64, error)

// Entry is one position's distance to the projection pivot, used to build
// the spiral search order.
type Entry struct {
	Position int
	Distance float64
}

// Table holds, for every position in the dataset, its distance to each of
// a single ordered pivot list. Pivot 0 doubles as the projection pivot
// (its column drives ProjectionOrder/ProjectionDistance) and participates
// in LowerBound along with every other pivot, so a single-pivot table
// (len(pivots)==1) degrades to a plain single-pivot prefilter and a
// multi-pivot table gets true triangle-inequality pruning over all of
// them — one table shape covering both the weak and strong pruning
// regimes instead of two. Grounded in DPiORCA's pivotSpace[size][numPivots]
// array and its index[] ranking by distance to denPivot[0].
type Table struct {
	size      int
	numPivots int
	pivotDist []float64 // size*numPivots, row-major; column 0 is the projection pivot
	projOrder []Entry   // size, sorted descending by column-0 distance
	pivots    []int
}

// Build computes a Table over [0, size) given an ordered pivot list; the
// first pivot doubles as the projection pivot. dist is called
// size*len(pivots) times.
func Build(dist DistanceFunc, size int, pivots []int) (*Table, error) {
	t := &Table{
		size:      size,
		numPivots: len(pivots),
		pivotDist: make([]float64, size*len(pivots)),
		pivots:    append([]int(nil), pivots...),
	}
	for i := 0; i < size; i++ {
		for p, piv := range pivots {
			d, err := dist(i, piv)
			if err != nil {
				return nil, err
			}
			t.pivotDist[i*t.numPivots+p] = d
		}
	}

	t.projOrder = make([]Entry, size)
	for i := 0; i < size; i++ {
		t.projOrder[i] = Entry{Position: i, Distance: t.ProjectionDistance(i)}
	}
	sort.Slice(t.projOrder, func(a, b int) bool { return t.projOrder[a].Distance > t.projOrder[b].Distance })

	return t, nil
}

// Size returns the number of positions the table covers.
func (t *Table) Size() int { return t.size }

// NumPivots returns how many pivots the table was built with.
func (t *Table) NumPivots() int { return t.numPivots }

// ProjectionOrder returns the positions ranked descending by distance to
// the projection pivot, the order the block-sweep detector walks its
// spiral search in.
func (t *Table) ProjectionOrder() []Entry { return t.projOrder }

// ProjectionDistance returns position i's distance to the projection
// pivot (column 0), or 0 if the table has no pivots.
func (t *Table) ProjectionDistance(i int) float64 {
	if t.numPivots == 0 {
		return 0
	}
	return t.pivotDist[i*t.numPivots]
}

// LowerBound returns max_p |pivotDist[a][p] - pivotDist[b][p]| over every
// pivot in the table (including the projection pivot), a lower bound on
// the true distance between a and b usable to prune candidates whose
// lower bound already exceeds a's current k-distance bound.
func (t *Table) LowerBound(a, b int) float64 {
	if t.numPivots == 0 {
		return 0
	}
	max := 0.0
	rowA := a * t.numPivots
	rowB := b * t.numPivots
	for p := 0; p < t.numPivots; p++ {
		d := t.pivotDist[rowA+p] - t.pivotDist[rowB+p]
		if d < 0 {
			d = -d
		}
		if d > max {
			max = d
		}
	}
	return max
}

// ExceedsBound reports whether the lower bound between a and b already
// exceeds bound, letting the sweep skip the real distance computation.
// Equivalent to DPiORCA's per-pivot early-break loop but without
// allocating: it returns as soon as any single pivot's gap clears bound.
func (t *Table) ExceedsBound(a, b int, bound float64) bool {
	rowA := a * t.numPivots
	rowB := b * t.numPivots
	for p := 0; p < t.numPivots; p++ {
		d := t.pivotDist[rowA+p] - t.pivotDist[rowB+p]
		if d < 0 {
			d = -d
		}
		if d > bound {
			return true
		}
	}
	return false
}
