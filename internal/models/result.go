package models

import (
	"slices"
	"time"
)

// Series is the ensemble statistic of one metric over its date index.
type Series struct {
	Dates []time.Time `json:"dates"`
	Mean  []float64   `json:"mean"`
	Lower []float64   `json:"lower"`
	Upper []float64   `json:"upper"`
}

// Len is the number of dates in the series.
func (s Series) Len() int {
	return len(s.Dates)
}

// Clone returns a deep copy.
func (s Series) Clone() Series {
	return Series{
		Dates: slices.Clone(s.Dates),
		Mean:  slices.Clone(s.Mean),
		Lower: slices.Clone(s.Lower),
		Upper: slices.Clone(s.Upper),
	}
}

// EnsembleResult is the aggregated forecast of a set of realizations.
// The caller owns it after return.
type EnsembleResult struct {
	// Series maps every metric to its per-date statistics.
	Series map[Metric]Series `json:"series"`

	// NumberFinishedSamples is how many realizations completed before the
	// time budget ran out. Never more than Requested.
	NumberFinishedSamples int `json:"number_finished_samples"`

	// Requested is the number of parameter sets handed to the aggregator.
	Requested int `json:"requested"`
}

// Truncated reports whether the time budget cut the ensemble short.
func (r *EnsembleResult) Truncated() bool {
	return r.NumberFinishedSamples < r.Requested
}

// Clone returns a deep copy so cached results are never shared.
func (r *EnsembleResult) Clone() *EnsembleResult {
	if r == nil {
		return nil
	}
	out := &EnsembleResult{
		Series:                make(map[Metric]Series, len(r.Series)),
		NumberFinishedSamples: r.NumberFinishedSamples,
		Requested:             r.Requested,
	}
	for k, v := range r.Series {
		out.Series[k] = v.Clone()
	}
	return out
}

// Every keeps the points at indices 0, step, 2*step, ...
func (s Series) Every(step int) Series {
	if step <= 1 {
		return s.Clone()
	}
	n := (s.Len() + step - 1) / step
	out := Series{
		Dates: make([]time.Time, 0, n),
		Mean:  make([]float64, 0, n),
		Lower: make([]float64, 0, n),
		Upper: make([]float64, 0, n),
	}
	for i := 0; i < s.Len(); i += step {
		out.Dates = append(out.Dates, s.Dates[i])
		out.Mean = append(out.Mean, s.Mean[i])
		out.Lower = append(out.Lower, s.Lower[i])
		out.Upper = append(out.Upper, s.Upper[i])
	}
	return out
}
