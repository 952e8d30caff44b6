// Package outlierdef implements the per-object outlier weight definitions
// the block-sweep detector scores candidates with (CKthOutlier/CKnnOutlier
// in the original engine), plus HOD's hidden-candidate bookkeeping.
package outlierdef

import (
	"math"
	"sort"

	"github.com/umad/orca/pkg/bqueue"
)

// Definition tracks one object's running k-nearest-neighbor distances
// across a sweep and exposes the scalar weight its outlier score is
// derived from.
type Definition interface {
	// Knn returns the bounded queue new neighbor candidates are inserted
	// into; a successful insert should be followed by SetWeight.
	Knn() *bqueue.KFarthestQueue
	// SetWeight recomputes Weight from the current state of Knn.
	SetWeight()
	// Weight returns the most recently computed weight.
	Weight() float64
	// Active reports whether this object can still possibly enter the
	// Top-N set; once false the sweep skips it entirely.
	Active() bool
	SetActive(bool)
	Reset()
}

// KthOutlier weighs an object by its distance to its k-th nearest
// neighbor. Grounded in KthOutlier.cpp: weight = knn[0].dis, the bound
// slot of a descending k-capacity queue.
type KthOutlier struct {
	knn    *bqueue.KFarthestQueue
	weight float64
	active bool
}

// NewKthOutlier builds a fresh KthOutlier Definition for a given k.
func NewKthOutlier(k int) Definition {
	return &KthOutlier{knn: bqueue.NewKFarthestQueue(k), weight: math.MaxFloat64, active: true}
}

func (o *KthOutlier) Knn() *bqueue.KFarthestQueue { return o.knn }
func (o *KthOutlier) SetWeight()                  { o.weight = o.knn.Bound() }
func (o *KthOutlier) Weight() float64             { return o.weight }
func (o *KthOutlier) Active() bool                { return o.active }
func (o *KthOutlier) SetActive(v bool)            { o.active = v }
func (o *KthOutlier) Reset() {
	o.knn.Reset()
	o.weight = math.MaxFloat64
	o.active = true
}

// KnnOutlier weighs an object by the sum of all k of its nearest-neighbor
// distances. Grounded in KnnOutlier.cpp: weight is MaxFloat64 until k
// neighbors have been found, then the sum of the queue's k entries.
type KnnOutlier struct {
	knn    *bqueue.KFarthestQueue
	weight float64
	active bool
}

// NewKnnOutlier builds a fresh KnnOutlier Definition for a given k.
func NewKnnOutlier(k int) Definition {
	return &KnnOutlier{knn: bqueue.NewKFarthestQueue(k), weight: math.MaxFloat64, active: true}
}

func (o *KnnOutlier) Knn() *bqueue.KFarthestQueue { return o.knn }

func (o *KnnOutlier) SetWeight() {
	if o.knn.Bound() == math.MaxFloat64 {
		o.weight = math.MaxFloat64
		return
	}
	sum := 0.0
	for i := 0; i < o.knn.Len(); i++ {
		sum += o.knn.At(i).Value
	}
	o.weight = sum
}

func (o *KnnOutlier) Weight() float64  { return o.weight }
func (o *KnnOutlier) Active() bool     { return o.active }
func (o *KnnOutlier) SetActive(v bool) { o.active = v }
func (o *KnnOutlier) Reset() {
	o.knn.Reset()
	o.weight = math.MaxFloat64
	o.active = true
}

// Kind selects whether an HODDefinition's base weight is computed the
// Kth-style (distance to the k-th nearest neighbor) or Knn-style (sum of
// the k nearest neighbor distances) way.
type Kind int

const (
	// KthKind computes HODDefinition.Weight like KthOutlier.
	KthKind Kind = iota
	// KnnKind computes HODDefinition.Weight like KnnOutlier.
	KnnKind
)

// HiddenAware is a Definition that also tracks an nk_weight, the value
// HOD's hidden-candidate deflation ranks candidates by.
type HiddenAware interface {
	Definition
	SetNKWeight()
	NKWeight() float64
}

// HODDefinition is the live per-object outlier state for HOD/iHOD
// variants. Unlike KthOutlier/KnnOutlier its neighbor queue has capacity
// k+n-1, not k, grounded in HOD.cpp's `insertQueue(tempKNN, knn, k+n-1,
// true)` call. Because the queue is descending, the k-th nearest neighbor
// (used for the plain Kth/Knn-style weight) sits at slot n-1, not slot 0;
// slot 0 is the farthest of the k+n-1 captured neighbors, i.e. the
// (k+n-1)-th nearest. NKWeight sums the farthest k slots (0..k-1), the
// window corresponding to neighbors ranked n through n+k-1 by closeness —
// see the HiddenCandidate doc comment for why that window matters.
type HODDefinition struct {
	knn      *bqueue.KFarthestQueue
	k, n     int
	kind     Kind
	weight   float64
	nkWeight float64
	active   bool
}

// NewHODDefinition builds a HODDefinition for the given base-weight kind.
func NewHODDefinition(kind Kind, k, n int) Definition {
	return &HODDefinition{
		knn:    bqueue.NewKFarthestQueue(k + n - 1),
		k:      k,
		n:      n,
		kind:   kind,
		weight: math.MaxFloat64,
		active: true,
	}
}

func (o *HODDefinition) Knn() *bqueue.KFarthestQueue { return o.knn }

func (o *HODDefinition) kthSlot() int {
	if o.n-1 < 0 {
		return 0
	}
	return o.n - 1
}

// SetWeight recomputes the base weight: the distance to the k-th nearest
// neighbor for Kth-style, or the sum of the k nearest neighbor distances
// for Knn-style, both read from the n-1..cap-1 tail of the queue.
func (o *HODDefinition) SetWeight() {
	slot := o.kthSlot()
	if o.kind == KnnKind {
		if o.knn.At(slot).Value == math.MaxFloat64 {
			o.weight = math.MaxFloat64
			return
		}
		sum := 0.0
		for i := slot; i < o.knn.Len(); i++ {
			sum += o.knn.At(i).Value
		}
		o.weight = sum
		return
	}
	o.weight = o.knn.At(slot).Value
}

func (o *HODDefinition) Weight() float64 { return o.weight }

// SetNKWeight recomputes the sum of the farthest k queue entries (slots
// 0..k-1): the distances to the neighbors ranked n through n+k-1 by
// closeness, the value hidden-candidate deflation ranks by.
func (o *HODDefinition) SetNKWeight() {
	sum := 0.0
	for i := 0; i < o.k; i++ {
		sum += o.knn.At(i).Value
	}
	o.nkWeight = sum
}

func (o *HODDefinition) NKWeight() float64 { return o.nkWeight }
func (o *HODDefinition) Active() bool      { return o.active }
func (o *HODDefinition) SetActive(v bool)  { o.active = v }
func (o *HODDefinition) Reset() {
	o.knn.Reset()
	o.weight = math.MaxFloat64
	o.nkWeight = 0
	o.active = true
}

// HiddenCandidate is HOD's per-object hidden-outlier bookkeeping record
// (CHODC in the original engine, never retrieved as a standalone header;
// its shape here is inferred from its call sites in HOD.cpp/iHOD.cpp). Its
// neighbor queue is sized k+n-1 rather than k, wide enough to determine
// whether an object would be among the Top-N outliers once the n-1 better
// candidates ahead of it are removed from contention.
type HiddenCandidate struct {
	id              int
	knn             *bqueue.KFarthestQueue
	window          int // k: how many non-flagged neighbors Weight sums over
	nkWeight        float64
	weight          float64
	topNFlag        bool
	neighborFlagged []bool
}

// NewHiddenCandidate builds a candidate from an object's id, the detector's
// k and n, its NKWeight at insertion time, and the knn queue it was scored
// with (capacity k+n-1). The queue is cloned, not aliased: deflation reads
// it after the sweep has moved on, so the candidate must hold a snapshot
// rather than a view into state the sweep may keep mutating.
func NewHiddenCandidate(id, k, n int, nkWeight float64, knn *bqueue.KFarthestQueue) *HiddenCandidate {
	snapshot := knn.Clone()
	return &HiddenCandidate{
		id:              id,
		knn:             snapshot,
		window:          k,
		nkWeight:        nkWeight,
		weight:          nkWeight,
		topNFlag:        true,
		neighborFlagged: make([]bool, snapshot.Len()),
	}
}

// ID returns the candidate's object id.
func (c *HiddenCandidate) ID() int { return c.id }

// NKWeight returns the sum of distances from the n-th to the (n+k-1)-th
// nearest neighbor, the value the candidate was ranked into the set by.
func (c *HiddenCandidate) NKWeight() float64 { return c.nkWeight }

// TopNFlag reports whether this candidate is still eligible to be
// selected as a Top-N outlier during deflation.
func (c *HiddenCandidate) TopNFlag() bool { return c.topNFlag }

// SetTopNFlag updates eligibility, cleared once a candidate has been
// selected into the Top-N set.
func (c *HiddenCandidate) SetTopNFlag(v bool) { c.topNFlag = v }

// FlagNeighbor marks every slot in the candidate's neighbor list whose
// object id matches reportedID. Called once per already-selected Top-N
// outlier so a later Weight recompute can exclude it: a candidate whose
// closest neighbors are themselves confirmed outliers shouldn't get credit
// for being far from them.
func (c *HiddenCandidate) FlagNeighbor(reportedID int) {
	for s := 0; s < c.knn.Len(); s++ {
		if c.knn.At(s).ObjectID == reportedID {
			c.neighborFlagged[s] = true
		}
	}
}

// SetWeight recomputes Weight by walking the neighbor queue from its
// farthest slot (the (n+k-1)-th nearest neighbor) toward nearer slots, summing
// the first `window` entries not flagged as already-reported outliers.
func (c *HiddenCandidate) SetWeight() {
	sum := 0.0
	count := 0
	for i := 0; i < c.knn.Len() && count < c.window; i++ {
		if c.neighborFlagged[i] {
			continue
		}
		sum += c.knn.At(i).Value
		count++
	}
	c.weight = sum
}

// Weight returns the most recently computed deflated weight.
func (c *HiddenCandidate) Weight() float64 { return c.weight }

// CandidateSet holds hidden-outlier candidates sorted descending by
// NKWeight, matching HOD.cpp's comment "Insert into Outlier candidateSet,
// which is from large to small". Unlike the bounded queues in pkg/bqueue
// it grows without a fixed capacity; entries are trimmed explicitly as the
// cutoff rises.
type CandidateSet struct {
	items []*HiddenCandidate
}

// Len returns the number of candidates currently held.
func (s *CandidateSet) Len() int { return len(s.items) }

// Items returns the candidate set in descending-NKWeight order. Callers
// must treat it as read-only.
func (s *CandidateSet) Items() []*HiddenCandidate { return s.items }

// Insert adds c in its sorted position (descending by NKWeight).
func (s *CandidateSet) Insert(c *HiddenCandidate) {
	idx := sort.Search(len(s.items), func(i int) bool { return s.items[i].nkWeight < c.nkWeight })
	s.items = append(s.items, nil)
	copy(s.items[idx+1:], s.items[idx:])
	s.items[idx] = c
}

// PruneBelow removes candidates from the tail (smallest NKWeight) while
// their NKWeight is below cutoff, mirroring HOD's erase-from-tail loop
// that runs each time the Top-N cutoff rises. It always leaves at least
// one candidate, matching the original's `it != begin()` guard.
func (s *CandidateSet) PruneBelow(cutoff float64) {
	for len(s.items) > 1 && s.items[len(s.items)-1].nkWeight < cutoff {
		s.items = s.items[:len(s.items)-1]
	}
}
