// Package forecast runs a complete vaccination forecast: sample parameter
// sets from user bounds, simulate the ensemble through the result cache, and
// summarize the outcome for presentation.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/cache"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/config"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/constants"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/ensemble"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/logging"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/models"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/sampler"
)

// samplerStream is the PCG stream of the parameter sampler. Realizations use
// streams 0..n-1, so the sampler sits at the far end of the stream space.
const samplerStream = ^uint64(0)

// Request is one forecast in model units.
type Request struct {
	// Bounds are the parameter ranges as fractions (tau in weeks).
	Bounds models.ParameterBounds `json:"bounds"`

	// Replicates is the number of parameter sets to draw and simulate.
	Replicates int `json:"replicates"`

	// Config carries N, CI and the simulated dates.
	Config models.SimulationConfig `json:"config"`

	// Seed drives both the sampler and every realization.
	Seed uint64 `json:"seed"`

	// Budget limits the wall-clock time of the aggregation.
	Budget ensemble.Budget `json:"-"`
}

// Validate checks the request before any sampling.
func (r Request) Validate() error {
	if r.Replicates < constants.MinReplicates || r.Replicates > constants.MaxReplicates {
		return fmt.Errorf("replicates must be between %d and %d, got %d",
			constants.MinReplicates, constants.MaxReplicates, r.Replicates)
	}
	if err := r.Bounds.Validate(); err != nil {
		return fmt.Errorf("invalid bounds: %w", err)
	}
	if err := r.Config.Validate(); err != nil {
		return err
	}
	return nil
}

// RequestFromConfig builds a request from user configuration, converting
// percentages to fractions and resolving an empty end date against now.
func RequestFromConfig(cfg *config.VacsimConfig, now time.Time) (Request, error) {
	if err := cfg.Validate(); err != nil {
		return Request{}, fmt.Errorf("invalid configuration: %w", err)
	}
	dates, err := cfg.DateRange(now)
	if err != nil {
		return Request{}, err
	}

	budget := ensemble.Unlimited()
	if cfg.Sampling.MaxRunningTime > 0 {
		budget = ensemble.Limit(cfg.Sampling.MaxRunningTime)
	}

	return Request{
		Bounds:     cfg.ModelBounds(),
		Replicates: cfg.Sampling.Replicates,
		Config: models.SimulationConfig{
			N:     cfg.Sampling.Population,
			CI:    cfg.Sampling.CI / 100,
			Dates: dates,
		},
		Seed:   cfg.Sampling.Seed,
		Budget: budget,
	}, nil
}

// Report is the outcome of one forecast run.
type Report struct {
	Result    *models.EnsembleResult `json:"result"`
	Sets      []models.ParameterSet  `json:"sets,omitempty"`
	SoftNo    sampler.SoftNoSummary  `json:"soft_no"`
	Requested int                    `json:"requested"`
	Finished  int                    `json:"finished"`
	Cached    bool                   `json:"cached"`
	Warning   string                 `json:"warning,omitempty"`
}

// Forecaster ties the sampler, aggregator and result cache together. One
// Forecaster should serve every run of a process so that the cache is shared.
// It is safe for concurrent use.
type Forecaster struct {
	cache  *cache.ResultCache
	logger *slog.Logger
	trace  *logging.TraceLogger
}

// Option configures a Forecaster.
type Option func(*options)

type options struct {
	workers    int
	cacheSize  int
	logger     *slog.Logger
	trace      *logging.TraceLogger
	aggregator cache.Aggregator
}

// WithWorkers sets the realization concurrency. Zero uses every CPU.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithCacheSize sets how many results are memoized.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTrace attaches a run trace. A nil trace disables tracing.
func WithTrace(t *logging.TraceLogger) Option {
	return func(o *options) { o.trace = t }
}

// WithAggregator replaces the ensemble aggregator behind the cache.
func WithAggregator(a cache.Aggregator) Option {
	return func(o *options) { o.aggregator = a }
}

// New creates a Forecaster.
func New(opts ...Option) (*Forecaster, error) {
	o := options{
		cacheSize: cache.DefaultCapacity,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	agg := o.aggregator
	if agg == nil {
		agg = ensemble.New(ensemble.WithWorkers(o.workers), ensemble.WithLogger(o.logger))
	}
	c, err := cache.New(agg, o.cacheSize, cache.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("creating result cache: %w", err)
	}

	return &Forecaster{cache: c, logger: o.logger, trace: o.trace}, nil
}

// NewFromConfig creates a Forecaster sized by cfg.
func NewFromConfig(cfg *config.VacsimConfig, opts ...Option) (*Forecaster, error) {
	base := []Option{
		WithWorkers(cfg.Sampling.Workers),
		WithCacheSize(cfg.Cache.Size),
	}
	return New(append(base, opts...)...)
}

// Sample draws the parameter sets of req. The sampler is reseeded on every
// call, so equal requests always draw equal sets.
func (f *Forecaster) Sample(req Request) (*sampler.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	res, err := sampler.Sample(req.Bounds, req.Replicates, rand.NewPCG(req.Seed, samplerStream),
		sampler.WithLogger(f.logger))
	if err != nil {
		if errors.Is(err, sampler.ErrInfeasibleBounds) {
			f.trace.Event("sampling_rejected", map[string]any{
				"replicates": req.Replicates,
				"p_pro":      req.Bounds.PPro,
				"p_anti":     req.Bounds.PAnti,
			})
		}
		return nil, err
	}
	return res, nil
}

// Run performs one forecast. Running out of time budget is reported through
// Report.Warning, not as an error. The context is checked between phases;
// a started aggregation always runs until its budget or completion.
func (f *Forecaster) Run(ctx context.Context, req Request) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.trace.Event("run_started", map[string]any{
		"replicates": req.Replicates,
		"n":          req.Config.N,
		"ci":         req.Config.CI,
		"seed":       req.Seed,
		"horizon":    req.Config.Horizon(),
		"budget":     req.Budget.String(),
	})

	samples, err := f.Sample(req)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	aggReq := ensemble.Request{
		Sets:   samples.Sets,
		Config: req.Config,
		Seed:   req.Seed,
		Budget: req.Budget,
	}
	cached := f.cache.Contains(aggReq)
	start := time.Now()
	result, err := f.cache.Aggregate(aggReq)
	if err != nil {
		return nil, fmt.Errorf("aggregating ensemble: %w", err)
	}

	report := &Report{
		Result:    result,
		Sets:      samples.Sets,
		SoftNo:    samples.SoftNo(),
		Requested: result.Requested,
		Finished:  result.NumberFinishedSamples,
		Cached:    cached,
	}
	if result.Truncated() {
		report.Warning = TruncationWarning(req.Budget, result.NumberFinishedSamples, result.Requested)
	}

	if cached {
		f.trace.Event("cache_hit", map[string]any{"replicates": req.Replicates})
	}
	f.trace.Event("aggregate_finished", map[string]any{
		"finished":    report.Finished,
		"requested":   report.Requested,
		"cached":      cached,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	f.logger.Debug("forecast finished",
		"finished", report.Finished,
		"requested", report.Requested,
		"cached", cached,
		"soft_no", report.SoftNo.String())

	return report, nil
}

// CacheStats exposes the result cache counters.
func (f *Forecaster) CacheStats() cache.Stats {
	return f.cache.Stats()
}

// TruncationWarning describes a run cut short by its time budget.
func TruncationWarning(budget ensemble.Budget, finished, requested int) string {
	return fmt.Sprintf("Maximum computation time of %s exceeded. Only %d of the desired %d Monte Carlo runs were performed.",
		budget, finished, requested)
}

// UserMessage turns an error from Run into a message fit for an end user.
// Infeasible bounds get the dedicated explanation.
func UserMessage(err error) string {
	if errors.Is(err, sampler.ErrInfeasibleBounds) {
		return constants.InfeasibleBoundsMessage
	}
	return err.Error()
}
