// Package metricobj defines the generic metric object store the detection
// core runs against. Dataset parsers (internal/dataset) produce Objects;
// distance functions (internal/distancefn) consume them through the Metric
// interface. Neither the core nor this package inspects an Object's payload.
package metricobj

// Object is a single data point the detector can compute distances between.
// Payload carries the dataset-specific representation (a []float64 row, a
// DNA sequence string, a windowed stock series, ...); only the distance
// function assigned to a run knows how to interpret it.
type Object struct {
	ID       int
	Payload  interface{}
	IsNormal bool
}

// Metric computes the distance between two objects. Implementations must
// return a non-negative, finite value and must be symmetric:
// Distance(a, b) == Distance(b, a).
type Metric interface {
	Distance(a, b *Object) (float64, error)
}

// Store holds the fixed dataset a detection run operates on. It never
// mutates once loaded; detectors index into it by position.
type Store struct {
	objects []*Object
}

// NewStore wraps a slice of objects as a Store. The slice is not copied;
// callers must not mutate it afterward.
func NewStore(objects []*Object) *Store {
	return &Store{objects: objects}
}

// Len returns the number of objects in the store.
func (s *Store) Len() int {
	return len(s.objects)
}

// At returns the object at position i.
func (s *Store) At(i int) *Object {
	return s.objects[i]
}

// Objects returns the underlying slice. Callers must treat it as read-only.
func (s *Store) Objects() []*Object {
	return s.objects
}

// OutlierCount returns the number of objects whose ground truth marks them
// as not normal, used by pkg/evalreport to compute ROC/AUC.
func (s *Store) OutlierCount() int {
	count := 0
	for _, o := range s.objects {
		if !o.IsNormal {
			count++
		}
	}
	return count
}

// Window returns a Store over the [start, end) sub-slice of objects,
// replacing date-range arguments with a row-index window (used by the
// stock dataset driver).
func (s *Store) Window(start, end int) *Store {
	return &Store{objects: s.objects[start:end]}
}
