// Package sampler draws model parameter combinations from user-chosen bounds.
//
// Every parameter is drawn uniformly and independently. Draws whose pro- and
// anti-vaccine shares cannot coexist in one population are rejected; too many
// rejections mean the bounds themselves are infeasible.
package sampler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/models"
	"gonum.org/v1/gonum/stat/distuv"
)

// MaxRejectionFactor bounds the number of rejected draws to nRep times this
// factor before sampling gives up.
const MaxRejectionFactor = 10

// ErrInfeasibleBounds is returned when the p_pro and p_anti bounds are
// mutually incompatible. It is a user-correctable configuration problem.
var ErrInfeasibleBounds = errors.New("p_pro and p_anti bounds cannot sum to at most 100%")

// Result holds the accepted parameter sets and, for each of them, the derived
// agnostic share 1 - p_pro - p_anti.
type Result struct {
	Sets       []models.ParameterSet
	Agnostic   []float64
	Rejections int
}

// Len is the number of accepted parameter sets.
func (r *Result) Len() int {
	return len(r.Sets)
}

// Option configures Sample.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Sample draws exactly nRep feasible parameter sets from bounds using src.
// The output is fully determined by the state of src.
func Sample(bounds models.ParameterBounds, nRep int, src rand.Source, opts ...Option) (*Result, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	if nRep <= 0 {
		return nil, fmt.Errorf("replicate count must be positive, got %d", nRep)
	}
	if err := bounds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameter bounds: %w", err)
	}
	if src == nil {
		return nil, fmt.Errorf("random source is required")
	}

	uniform := func(b models.Bound) distuv.Uniform {
		return distuv.Uniform{Min: b.Lower, Max: b.Upper, Src: src}
	}
	pPro := uniform(bounds.PPro)
	pAnti := uniform(bounds.PAnti)
	pressure := uniform(bounds.Pressure)
	tau := uniform(bounds.Tau)
	nv0 := uniform(bounds.NV0)
	nvMax := uniform(bounds.NVMax)

	res := &Result{
		Sets:     make([]models.ParameterSet, 0, nRep),
		Agnostic: make([]float64, 0, nRep),
	}
	maxRejections := nRep * MaxRejectionFactor

	for len(res.Sets) < nRep {
		set := models.ParameterSet{
			PPro:  pPro.Rand(),
			PAnti: pAnti.Rand(),
		}
		if !set.Feasible() {
			res.Rejections++
			if res.Rejections > maxRejections {
				o.logger.Debug("sampling aborted",
					"accepted", len(res.Sets),
					"rejections", res.Rejections,
					"limit", maxRejections)
				return nil, ErrInfeasibleBounds
			}
			continue
		}

		set.Pressure = pressure.Rand()
		set.Tau = tau.Rand()
		set.NV0 = nv0.Rand()
		set.NVMax = nvMax.Rand()

		res.Sets = append(res.Sets, set)
		res.Agnostic = append(res.Agnostic, set.PAgnostic())
	}

	o.logger.Debug("sampled parameter sets", "count", len(res.Sets), "rejections", res.Rejections)
	return res, nil
}
