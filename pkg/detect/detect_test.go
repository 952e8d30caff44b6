package detect

import (
	"math"
	"testing"

	"github.com/umad/orca/pkg/bqueue"
	"github.com/umad/orca/pkg/outlierdef"
	"github.com/umad/orca/pkg/pivot"
)

func lineDist(points []float64) DistanceFunc {
	return func(i, j int) (float64, error) {
		return math.Abs(points[i] - points[j]), nil
	}
}

func baseConfig() Config {
	return Config{
		N:         2,
		K:         1,
		BlockSize: 4,
		NumPivots: 1,
		Kind:      KthOutlierKind,
		Pivot:     pivot.FFT{},
	}
}

func TestDetectRanksFarthestPointsHighest(t *testing.T) {
	points := []float64{0, 0.1, 0.2, 0.3, 50, 100}
	cfg := baseConfig()
	report, err := Detect(len(points), lineDist(points), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.TopN) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.TopN))
	}
	ids := map[int]bool{report.TopN[0].ObjectID: true, report.TopN[1].ObjectID: true}
	if !ids[4] || !ids[5] {
		t.Fatalf("expected objects 4 and 5 (the far outliers) in top-2, got %+v", report.TopN)
	}
	if report.TopN[0].Weight < report.TopN[1].Weight {
		t.Fatalf("expected descending weight order, got %+v", report.TopN)
	}
}

func TestDetectMultiPivotAgreesWithSinglePivot(t *testing.T) {
	points := []float64{0, 0.1, 0.2, 0.3, 50, 100, 7, 8}
	single := baseConfig()
	single.BlockSize = 3

	multi := baseConfig()
	multi.NumPivots = 3
	multi.BlockSize = 3

	rSingle, err := Detect(len(points), lineDist(points), single)
	if err != nil {
		t.Fatalf("unexpected error (single pivot): %v", err)
	}
	rMulti, err := Detect(len(points), lineDist(points), multi)
	if err != nil {
		t.Fatalf("unexpected error (multi pivot): %v", err)
	}
	singleIDs := map[int]bool{rSingle.TopN[0].ObjectID: true, rSingle.TopN[1].ObjectID: true}
	multiIDs := map[int]bool{rMulti.TopN[0].ObjectID: true, rMulti.TopN[1].ObjectID: true}
	for id := range singleIDs {
		if !multiIDs[id] {
			t.Fatalf("expected multi-pivot result to agree with single-pivot result; got %+v vs %+v", rSingle.TopN, rMulti.TopN)
		}
	}
}

func TestDetectTruncatesWhenFewerThanNQualify(t *testing.T) {
	// Four coincident points contribute zero-weight neighbors that never
	// clear the initial zero cutoff, so only the lone far point ever
	// enters the Top-N set even though N asks for 3.
	points := []float64{0, 0, 0, 0, 5}
	cfg := baseConfig()
	cfg.N = 3
	cfg.BlockSize = len(points)
	report, err := Detect(len(points), lineDist(points), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Truncated {
		t.Fatalf("expected truncated result, got %+v", report)
	}
	if len(report.TopN) != 1 || report.TopN[0].ObjectID != 4 {
		t.Fatalf("expected single result (object 4), got %+v", report.TopN)
	}
}

func TestDetectKnnOutlierSumsAllNeighbors(t *testing.T) {
	points := []float64{0, 1, 2, 3, 100}
	cfg := baseConfig()
	cfg.K = 2
	cfg.N = 1
	cfg.Kind = KnnOutlierKind
	cfg.BlockSize = len(points)
	report, err := Detect(len(points), lineDist(points), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.TopN) != 1 || report.TopN[0].ObjectID != 4 {
		t.Fatalf("expected object 4 as the sole outlier, got %+v", report.TopN)
	}
}

func TestConfigValidateRejectsTooSmallDataset(t *testing.T) {
	cfg := baseConfig()
	cfg.K = 5
	_, err := Detect(3, lineDist([]float64{0, 1, 2}), cfg)
	if err == nil {
		t.Fatalf("expected error for dataset too small for k")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("expected *ConfigError, got %T: %v", err, err)
	}
}

func TestConfigValidateRejectsMissingSelector(t *testing.T) {
	cfg := baseConfig()
	cfg.Pivot = nil
	_, err := Detect(5, lineDist([]float64{0, 1, 2, 3, 4}), cfg)
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("expected *ConfigError, got %T: %v", err, err)
	}
}

func TestMetricErrorWrapsUnderlyingFailure(t *testing.T) {
	boom := math.NaN()
	cfg := baseConfig()
	cfg.BlockSize = 5
	_, err := Detect(5, func(i, j int) (float64, error) { return boom, nil }, cfg)
	var metricErr *MetricError
	if err == nil {
		t.Fatalf("expected error from NaN distance")
	}
	if me, ok := err.(*MetricError); ok {
		metricErr = me
	} else {
		t.Fatalf("expected *MetricError, got %T: %v", err, err)
	}
	if metricErr.A < 0 {
		t.Fatalf("expected metric error to report object positions")
	}
}

// TestDeflateReplacesPickStillFlaggedByMutualNeighbor verifies the
// hidden-candidate deflation mechanism in isolation: a candidate whose
// window is dominated by an already-selected Top-N neighbor loses that
// neighbor's contribution and falls back to the next-nearest eligible
// neighbor, letting a previously out-ranked candidate take its place.
func TestDeflateReplacesPickStillFlaggedByMutualNeighbor(t *testing.T) {
	// A's window (k=2, n=2, capacity 3) holds, farthest to nearest:
	// a cluster point (20), D (5, rank 2), B (1, rank 1 -- already
	// outside the initial n..n+k-1 window since n=2 skips the closest
	// neighbor). Flagging D should force the recomputed weight to
	// extend into B's slot to keep a 2-wide window.
	aKNN := bqueue.NewKFarthestQueue(3)
	aKNN.Insert(bqueue.Entry{ObjectID: 100, Value: 20}) // cluster point
	aKNN.Insert(bqueue.Entry{ObjectID: 9, Value: 5})     // D
	aKNN.Insert(bqueue.Entry{ObjectID: 8, Value: 1})     // B

	a := outlierdef.NewHiddenCandidate(7, 2, 2, 20+5, aKNN)
	a.SetWeight()
	if a.Weight() != 20+5 {
		t.Fatalf("expected initial window sum 25, got %v", a.Weight())
	}

	a.FlagNeighbor(9) // D selected into Top-N ahead of A
	a.SetWeight()
	if a.Weight() != 20+1 {
		t.Fatalf("expected deflated window to extend to B's slot (sum 21), got %v", a.Weight())
	}
}

func TestDeflatePicksHighestSurvivingCandidate(t *testing.T) {
	lowKNN := bqueue.NewKFarthestQueue(1)
	lowKNN.Insert(bqueue.Entry{ObjectID: 1, Value: 3})
	low := outlierdef.NewHiddenCandidate(1, 1, 1, 3, lowKNN)
	low.SetWeight()

	highKNN := bqueue.NewKFarthestQueue(1)
	highKNN.Insert(bqueue.Entry{ObjectID: 2, Value: 9})
	high := outlierdef.NewHiddenCandidate(2, 1, 1, 9, highKNN)
	high.SetWeight()

	var set outlierdef.CandidateSet
	set.Insert(high)
	set.Insert(low)

	results := []Result{{ObjectID: 99, Weight: 42}, {}}
	deflate(&set, results)
	if results[1].ObjectID != 2 {
		t.Fatalf("expected highest-weight surviving candidate (2) to be picked, got %+v", results[1])
	}
}

// TestDetectHiddenCandidatesExcludesTopOutlierFromItsOwnRunnerUp runs the full
// block sweep over a dataset with one extreme outlier (A) and one ordinary
// outlier (B), both far enough from the bulk of points to also qualify as
// HiddenCandidates. A dominates on raw weight and is always results[0]; the
// mutual-support scenario this guards is that A's own HiddenCandidate record
// survives deflation untouched (nothing else lists A as one of its nearest
// neighbors to flag out) and must be excluded from results[1] explicitly, or
// it gets reported twice instead of B taking the second slot.
func TestDetectHiddenCandidatesExcludesTopOutlierFromItsOwnRunnerUp(t *testing.T) {
	points := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 100, 1000}
	const b, a = 10, 11

	cfg := baseConfig()
	cfg.K = 2
	cfg.N = 2
	cfg.BlockSize = len(points)
	cfg.HiddenCandidates = true

	report, err := Detect(len(points), lineDist(points), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.TopN) != 2 {
		t.Fatalf("expected 2 results, got %+v", report.TopN)
	}
	if report.TopN[0].ObjectID != a {
		t.Fatalf("expected object %d (the extreme outlier) first, got %+v", a, report.TopN)
	}
	if report.TopN[1].ObjectID == a {
		t.Fatalf("object %d was reported twice instead of the runner-up %d: %+v", a, b, report.TopN)
	}
	if report.TopN[1].ObjectID != b {
		t.Fatalf("expected object %d as the surviving runner-up, got %+v", b, report.TopN)
	}
}
