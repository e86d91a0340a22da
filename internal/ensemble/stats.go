package ensemble

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Band is the mean and central confidence interval of one column.
type Band struct {
	Mean, Lower, Upper float64
}

// QuantileLevels returns the lower and upper quantile levels for ci, so
// that a level below one half still yields an ordered interval.
func QuantileLevels(ci float64) (lo, hi float64) {
	lo, hi = 1-ci, ci
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// Bands computes, for every column of samples, the mean across rows and the
// (1-ci, ci) quantiles, interpolated the way numpy.percentile does by
// default. The interval is widened to contain the mean when a
// skewed column puts the mean outside it.
func Bands(samples *mat.Dense, ci float64) []Band {
	rows, cols := samples.Dims()
	lo, hi := QuantileLevels(ci)

	bands := make([]Band, cols)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, samples)
		mean := stat.Mean(col, nil)
		slices.Sort(col)
		bands[j] = Band{
			Mean:  mean,
			Lower: math.Min(quantile(lo, col), mean),
			Upper: math.Max(quantile(hi, col), mean),
		}
	}
	return bands
}

// quantile is the sample quantile with linear interpolation between the
// order statistics at position (n-1)p (Hyndman-Fan type 7). sorted must be
// in increasing order.
//
// gonum's LinInterp interpolates at position np (type 4), so p is moved to
// the level whose type-4 position equals the type-7 one.
func quantile(p float64, sorted []float64) float64 {
	n := float64(len(sorted))
	q := ((n-1)*p + 1) / n
	return stat.Quantile(math.Min(math.Max(q, 0), 1), stat.LinInterp, sorted, nil)
}
