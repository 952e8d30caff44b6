package evalreport

import (
	"testing"

	"github.com/umad/orca/pkg/detect"
)

func TestEvaluateAllHits(t *testing.T) {
	topN := []detect.Result{
		{ObjectID: 1, Weight: 9.0},
		{ObjectID: 2, Weight: 8.0},
		{ObjectID: 3, Weight: 7.0},
	}
	outliers := map[int]bool{1: true, 2: true, 3: true}
	truth := func(id int) bool { return outliers[id] }

	report := Evaluate(topN, truth, 3, 100)

	for i, hit := range report.Hits {
		if !hit {
			t.Errorf("Hits[%d] = false, want true", i)
		}
		if report.CumulativeAccuracy[i] != 1.0 {
			t.Errorf("CumulativeAccuracy[%d] = %v, want 1.0", i, report.CumulativeAccuracy[i])
		}
	}
	if report.MeanAccuracy != 1.0 {
		t.Errorf("MeanAccuracy = %v, want 1.0", report.MeanAccuracy)
	}
}

func TestEvaluateMixedHits(t *testing.T) {
	topN := []detect.Result{
		{ObjectID: 1, Weight: 9.0}, // outlier
		{ObjectID: 2, Weight: 8.0}, // normal
		{ObjectID: 3, Weight: 7.0}, // outlier
	}
	outliers := map[int]bool{1: true, 3: true}
	truth := func(id int) bool { return outliers[id] }

	report := Evaluate(topN, truth, 2, 10)

	wantHits := []bool{true, false, true}
	for i, want := range wantHits {
		if report.Hits[i] != want {
			t.Errorf("Hits[%d] = %v, want %v", i, report.Hits[i], want)
		}
	}

	wantAcc := []float64{1.0, 0.5, 2.0 / 3.0}
	for i, want := range wantAcc {
		if report.CumulativeAccuracy[i] != want {
			t.Errorf("CumulativeAccuracy[%d] = %v, want %v", i, report.CumulativeAccuracy[i], want)
		}
	}

	if report.AUC < 0 || report.AUC > 1 {
		t.Errorf("AUC = %v, want value in [0,1]", report.AUC)
	}
}

func TestEvaluateEmpty(t *testing.T) {
	report := Evaluate(nil, func(int) bool { return false }, 0, 0)
	if report.MeanAccuracy != 0 {
		t.Errorf("MeanAccuracy = %v, want 0 for empty input", report.MeanAccuracy)
	}
	if len(report.ROC) != 0 {
		t.Errorf("ROC should be empty")
	}
}

func TestEvaluatePerfectROCHasFullAUC(t *testing.T) {
	topN := []detect.Result{
		{ObjectID: 1, Weight: 9.0},
		{ObjectID: 2, Weight: 8.0},
		{ObjectID: 3, Weight: 7.0},
		{ObjectID: 4, Weight: 1.0},
		{ObjectID: 5, Weight: 0.5},
	}
	// First three ranked are true outliers, last two are normal: a
	// perfect ranking.
	outliers := map[int]bool{1: true, 2: true, 3: true}
	truth := func(id int) bool { return outliers[id] }

	report := Evaluate(topN, truth, 3, 5)

	if report.AUC < 0.99 {
		t.Errorf("AUC = %v, want close to 1.0 for a perfect ranking", report.AUC)
	}
}
