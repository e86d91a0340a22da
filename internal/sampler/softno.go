package sampler

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// SoftNoSummary describes the agnostic ("soft no") share across a sampled
// ensemble, in percent.
type SoftNoSummary struct {
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// SoftNo summarizes the agnostic shares as mean ± one population standard
// deviation. The lower end is clamped at zero.
func (r *Result) SoftNo() SoftNoSummary {
	if r == nil || len(r.Agnostic) == 0 {
		return SoftNoSummary{}
	}
	pct := make([]float64, len(r.Agnostic))
	for i, v := range r.Agnostic {
		pct[i] = 100 * v
	}
	mean, std := stat.PopMeanStdDev(pct, nil)
	return SoftNoSummary{
		Mean:  mean,
		Std:   std,
		Lower: math.Max(mean-std, 0),
		Upper: mean + std,
	}
}

// String renders the interval, collapsing it to a single value when it is
// narrower than one percentage point.
func (s SoftNoSummary) String() string {
	if math.Abs(s.Upper-s.Lower) < 1 {
		return fmt.Sprintf("%.0f%%", s.Lower)
	}
	return fmt.Sprintf("%.0f - %.0f%%", s.Lower, s.Upper)
}
