package ensemble

import (
	"gonum.org/v1/gonum/mat"
)

// SecondDoseDelay is the number of days between first and second doses.
const SecondDoseDelay = 30

// WeekLength is the spacing of the grid the daily metric is resampled onto.
const WeekLength = 7

// SecondDoseWeekly converts daily first-dose counts into the quantity the
// reference data reports: every first dose is echoed by a second dose
// SecondDoseDelay days later, the two series are summed over the union of
// their dates (a missing date contributes zero), and the combined series is
// averaged over each WeekLength-day window starting at every weekly grid
// date. Windows never extend past the last simulated day, so a trailing
// partial week averages only the days it covers. Rows are realizations,
// columns are days since the start date. The result has one column per
// weekly grid date.
func SecondDoseWeekly(daily *mat.Dense) *mat.Dense {
	rows, days := daily.Dims()
	weeks := (days + WeekLength - 1) / WeekLength

	out := mat.NewDense(rows, weeks, nil)
	combined := make([]float64, days)
	for r := 0; r < rows; r++ {
		first := daily.RawRowView(r)
		clear(combined)
		for d, v := range first {
			combined[d] += v
			if e := d + SecondDoseDelay; e < days {
				combined[e] += v
			}
		}
		for w := 0; w < weeks; w++ {
			start := w * WeekLength
			end := min(start+WeekLength, days)
			var sum float64
			for _, v := range combined[start:end] {
				sum += v
			}
			out.Set(r, w, sum/float64(end-start))
		}
	}
	return out
}
