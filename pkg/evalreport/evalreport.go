// Package evalreport scores a detection run's Top-N list against known
// ground truth: per-rank hit/miss, a cumulative-accuracy curve, an ROC
// curve, and the area under it.
package evalreport

import "github.com/umad/orca/pkg/detect"

// ROCPoint is one point on the ROC curve: the true- and false-positive
// rates after considering the first i+1 ranked candidates.
type ROCPoint struct {
	TPR float64
	FPR float64
}

// Report is the scored outcome of one Top-N list against ground truth.
type Report struct {
	// Hits marks, per rank, whether that candidate is a true outlier.
	Hits []bool
	// CumulativeAccuracy[i] is the fraction of true outliers among the
	// first i+1 ranked candidates.
	CumulativeAccuracy []float64
	// MeanAccuracy is the average of CumulativeAccuracy across all ranks.
	MeanAccuracy float64
	ROC          []ROCPoint
	AUC          float64
}

// Evaluate scores topN against groundTruth, a predicate reporting
// whether an object ID is a true outlier. totalOutliers and size are the
// dataset's total outlier count and total object count, needed to
// normalize the ROC curve's axes. Grounded in InsertQueue.cpp's
// getAccuracy/getROC/getAUC.
func Evaluate(topN []detect.Result, groundTruth func(id int) bool, totalOutliers, size int) Report {
	n := len(topN)
	report := Report{
		Hits:               make([]bool, n),
		CumulativeAccuracy: make([]float64, n),
		ROC:                make([]ROCPoint, n),
	}
	if n == 0 {
		return report
	}

	totalNormal := float64(size - totalOutliers)

	sumAccuracy := 0.0
	outlierCount := 0
	normalCount := 0
	for i, res := range topN {
		isOutlier := groundTruth(res.ObjectID)
		report.Hits[i] = isOutlier

		if isOutlier {
			outlierCount++
		} else {
			normalCount++
		}
		accuracy := float64(outlierCount) / float64(i+1)
		sumAccuracy += accuracy
		report.CumulativeAccuracy[i] = accuracy

		point := ROCPoint{}
		if totalOutliers > 0 {
			point.TPR = float64(outlierCount) / float64(totalOutliers)
		}
		if totalNormal > 0 {
			point.FPR = float64(normalCount) / totalNormal
		}
		report.ROC[i] = point
	}
	report.MeanAccuracy = sumAccuracy / float64(n)
	report.AUC = trapezoidAUC(report.ROC)

	return report
}

// trapezoidAUC integrates the ROC curve via the trapezoid rule, closing
// it with the (0,0) origin and the (1,1) corner the way getAUC does.
func trapezoidAUC(roc []ROCPoint) float64 {
	if len(roc) == 0 {
		return 0
	}

	area := 0.5 * roc[0].TPR * roc[0].FPR
	for i := 1; i < len(roc); i++ {
		area += 0.5 * (roc[i].TPR + roc[i-1].TPR) * (roc[i].FPR - roc[i-1].FPR)
	}
	last := roc[len(roc)-1]
	area += 0.5 * (1.0 + last.TPR) * (1.0 - last.FPR)

	return area
}
