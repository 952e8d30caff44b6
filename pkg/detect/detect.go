// Package detect implements the block-sweep outlier detector: a single,
// configurable algorithm whose pivot count controls how much pruning
// strength it gets (one pivot degrades to a weak prefilter, several give
// true multi-pivot triangle-inequality pruning) and whose hidden-candidate
// flag turns on HOD-style deflation of mutually-supporting outliers.
package detect

import (
	"fmt"
	"math"
	"sort"

	"github.com/umad/orca/pkg/bqueue"
	"github.com/umad/orca/pkg/outlierdef"
	"github.com/umad/orca/pkg/pivot"
	"github.com/umad/orca/pkg/triangleindex"
)

// DistanceFunc computes the distance between the objects at positions i
// and j of the dataset being detected against.
type DistanceFunc func(i, j int) (float64, error)

// OutlierKind selects the per-object weight definition the sweep scores
// candidates with.
type OutlierKind int

const (
	// KthOutlierKind weighs an object by its distance to its k-th
	// nearest neighbor.
	KthOutlierKind OutlierKind = iota
	// KnnOutlierKind weighs an object by the sum of its k nearest
	// neighbor distances.
	KnnOutlierKind
)

// Config parameterizes a single sweep. NumPivots controls pruning
// strength directly: 1 pivot reduces the index to a single-pivot
// prefilter, more than 1 gets true multi-pivot pruning. HiddenCandidates
// turns on HOD-style deflation of mutually-supporting outliers.
type Config struct {
	N                int
	K                int
	BlockSize        int
	NumPivots        int
	Kind             OutlierKind
	Pivot            pivot.Selector
	HiddenCandidates bool
}

func (c Config) validate(size int) error {
	if c.N < 1 {
		return &ConfigError{Field: "N", Reason: "must be at least 1"}
	}
	if c.K < 1 {
		return &ConfigError{Field: "K", Reason: "must be at least 1"}
	}
	if c.BlockSize < 1 {
		return &ConfigError{Field: "BlockSize", Reason: "must be at least 1"}
	}
	if c.NumPivots < 1 {
		return &ConfigError{Field: "NumPivots", Reason: "must be at least 1"}
	}
	if c.Pivot == nil {
		return &ConfigError{Field: "Pivot", Reason: "selector must not be nil"}
	}
	capacity := c.K
	if c.HiddenCandidates {
		capacity = c.K + c.N - 1
	}
	if capacity > size-1 {
		return &ConfigError{Field: "K", Reason: fmt.Sprintf(
			"dataset has %d objects, too few for k=%d (capacity %d needs at least %d objects)",
			size, c.K, capacity, capacity+1)}
	}
	if c.N > size {
		return &ConfigError{Field: "N", Reason: fmt.Sprintf("n=%d exceeds dataset size %d", c.N, size)}
	}
	return nil
}

// Result is one object's membership in the Top-N outlier set.
type Result struct {
	ObjectID int
	Weight   float64
}

// Report is the outcome of a sweep.
type Report struct {
	TopN                 []Result
	Truncated            bool // true when fewer than N objects ever qualified
	BlocksProcessed      int
	DistanceComputations int
}

// objectState pairs each object's outlier definition with its
// HiddenAware view, non-nil only when hidden-candidate deflation is on.
type objectState struct {
	def    outlierdef.Definition
	hidden outlierdef.HiddenAware // non-nil iff cfg.HiddenCandidates
}

// Detect runs one sweep over [0, size) using dist as the pairwise metric,
// implementing the unified setup/sweep/(HOD post-processing)/finalize
// algorithm: pivot selection and table construction, a spiral-ordered
// block sweep with early termination and triangle-inequality pruning
// maintaining each object's bounded kNN queue and a running Top-N queue,
// then, when configured, HOD's hidden-candidate deflation before
// finalizing the result.
func Detect(size int, rawDist DistanceFunc, cfg Config) (*Report, error) {
	if err := cfg.validate(size); err != nil {
		return nil, err
	}

	distanceComputations := 0
	dist := func(i, j int) (float64, error) {
		d, err := rawDist(i, j)
		if err != nil {
			return 0, &MetricError{A: i, B: j, Err: err}
		}
		if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
			return 0, &MetricError{A: i, B: j, Err: fmt.Errorf("invalid distance %v", d)}
		}
		distanceComputations++
		return d, nil
	}

	// Setup: select a pivot list over the first min(blockSize, size)
	// objects, build the pivot table and projection order over the whole
	// dataset, and create one outlier state per object.
	pivotSearchSize := cfg.BlockSize
	if size < pivotSearchSize {
		pivotSearchSize = size
	}
	pivots, err := cfg.Pivot.Select(pivot.DistanceFunc(dist), pivotSearchSize, cfg.NumPivots)
	if err != nil {
		return nil, err
	}
	if len(pivots) == 0 {
		return nil, &DataError{Reason: "pivot selector returned no pivots"}
	}

	table, err := triangleindex.Build(triangleindex.DistanceFunc(dist), size, pivots)
	if err != nil {
		return nil, err
	}
	order := table.ProjectionOrder()

	states := make([]objectState, size)
	for i := range states {
		if cfg.HiddenCandidates {
			kind := outlierdef.KthKind
			if cfg.Kind == KnnOutlierKind {
				kind = outlierdef.KnnKind
			}
			def := outlierdef.NewHODDefinition(kind, cfg.K, cfg.N)
			states[i].def = def
			states[i].hidden = def.(outlierdef.HiddenAware)
		} else if cfg.Kind == KnnOutlierKind {
			states[i].def = outlierdef.NewKnnOutlier(cfg.K)
		} else {
			states[i].def = outlierdef.NewKthOutlier(cfg.K)
		}
	}

	topN := bqueue.NewNHighestQueue(cfg.N)
	var candidates outlierdef.CandidateSet

	pivotKDis := order[size-cfg.K].Distance
	cutoff := 0.0
	valid := 0
	blocksProcessed := 0

	for blockStart := 0; blockStart < size; blockStart += cfg.BlockSize {
		blockEnd := blockStart + cfg.BlockSize
		if blockEnd > size {
			blockEnd = size
		}
		block := order[blockStart:blockEnd]

		// Early termination: order is descending by distance to the
		// pivot, so block[0] is the block's farthest member; once even it
		// can't possibly beat the cutoff once its k-th
		// nearest neighbor is accounted for, nothing later in
		// projection order can either.
		if block[0].Distance+pivotKDis < cutoff {
			break
		}

		avg := 0.0
		for _, e := range block {
			avg += e.Distance
		}
		avg /= float64(len(block))
		startID := startIndex(order, avg)

		for d := 0; d < size; d++ {
			qPos := spiral(d, startID, size)
			q := order[qPos].Position

			for _, be := range block {
				b := be.Position
				if b == q {
					continue
				}
				st := &states[b]
				if !st.def.Active() {
					continue
				}
				if table.ExceedsBound(b, q, st.def.Knn().Bound()) {
					continue
				}
				realDist, err := dist(b, q)
				if err != nil {
					return nil, err
				}
				if st.def.Knn().Insert(bqueue.Entry{ObjectID: q, Value: realDist}) {
					st.def.SetWeight()
					if st.hidden != nil {
						st.hidden.SetNKWeight()
					}
					if st.def.Weight() < cutoff {
						st.def.SetActive(false)
					}
				}
			}
		}

		for _, be := range block {
			b := be.Position
			st := &states[b]
			if !st.def.Active() {
				continue
			}
			if topN.Insert(bqueue.Entry{ObjectID: b, Value: st.def.Weight()}) {
				valid++
			}
			cutoff = topN.Cutoff()

			if cfg.HiddenCandidates && st.hidden.NKWeight() > cutoff {
				candidates.Insert(outlierdef.NewHiddenCandidate(b, cfg.K, cfg.N, st.hidden.NKWeight(), st.def.Knn()))
			}
		}
		if cfg.HiddenCandidates {
			candidates.PruneBelow(cutoff)
		}
		blocksProcessed++
	}

	entries := topN.Entries()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Value > entries[j].Value })
	if valid > cfg.N {
		valid = cfg.N
	}
	results := make([]Result, 0, valid)
	for i := 0; i < valid; i++ {
		results = append(results, Result{ObjectID: entries[i].ObjectID, Weight: entries[i].Value})
	}

	if cfg.HiddenCandidates && len(results) > 0 {
		deflate(&candidates, results)
	}

	return &Report{
		TopN:                 results,
		Truncated:            valid < cfg.N,
		BlocksProcessed:      blocksProcessed,
		DistanceComputations: distanceComputations,
	}, nil
}

// deflate replaces results[1:] with HOD's hidden-candidate picks: for
// each already-selected outlier, flag it out of every candidate's
// neighbor list, recompute candidate weights, and take the
// highest-scoring survivor as the next Top-N entry.
func deflate(candidates *outlierdef.CandidateSet, results []Result) {
	for _, c := range candidates.Items() {
		if c.ID() == results[0].ObjectID {
			c.SetTopNFlag(false)
			break
		}
	}

	for i := 1; i < len(results); i++ {
		for _, c := range candidates.Items() {
			c.FlagNeighbor(results[i-1].ObjectID)
			c.SetWeight()
		}
		best := -1
		bestWeight := -math.MaxFloat64
		for idx, c := range candidates.Items() {
			if !c.TopNFlag() {
				continue
			}
			if c.Weight() > bestWeight {
				bestWeight = c.Weight()
				best = idx
			}
		}
		if best < 0 {
			continue
		}
		chosen := candidates.Items()[best]
		chosen.SetTopNFlag(false)
		results[i] = Result{ObjectID: chosen.ID(), Weight: chosen.Weight()}
	}
}

// startIndex binary-searches order (sorted descending by projection
// distance) for the smallest index whose distance is <= avg, the spiral
// search's starting point.
func startIndex(order []triangleindex.Entry, avg float64) int {
	lo, hi := 0, len(order)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if order[mid].Distance <= avg {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// spiral maps a sweep step d to a projection-order index, alternating
// outward from startID toward the near and far ends until one side runs
// out, at which point it continues linearly through the other.
func spiral(d, startID, size int) int {
	switch {
	case startID < size/2 && d > 2*startID:
		return d
	case startID >= size/2 && d >= 2*(size-startID):
		return size - d - 1
	case d%2 == 1:
		return startID - (d+1)/2
	default:
		return startID + d/2
	}
}
