// Package normalize rescales tabular feature columns before detection,
// so that columns with naturally larger magnitudes don't dominate a
// Euclidean distance computed over the others.
package normalize

// MinMax rescales each column of rows to [0, 1] in place: for column j,
// every value is replaced by (v - min) / (max - min). A column whose
// min equals its max (constant across all rows) is left untouched,
// since dividing by zero would produce no useful signal anyway.
// Grounded in OutlierDetection.cpp's per-column min/max rescale pass.
func MinMax(rows [][]float64) {
	if len(rows) == 0 {
		return
	}
	dim := len(rows[0])

	mins := make([]float64, dim)
	maxs := make([]float64, dim)
	copy(mins, rows[0])
	copy(maxs, rows[0])

	for _, row := range rows[1:] {
		for j := 0; j < dim && j < len(row); j++ {
			if row[j] > maxs[j] {
				maxs[j] = row[j]
			}
			if row[j] < mins[j] {
				mins[j] = row[j]
			}
		}
	}

	for _, row := range rows {
		for j := 0; j < dim && j < len(row); j++ {
			if mins[j] < maxs[j] {
				row[j] = (row[j] - mins[j]) / (maxs[j] - mins[j])
			}
		}
	}
}
