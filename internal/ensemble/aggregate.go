package ensemble

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"slices"
	"sync/atomic"
	"time"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/logging"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/models"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/realization"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// ErrNoParameterSets is returned when a request carries nothing to simulate.
var ErrNoParameterSets = errors.New("no parameter sets to simulate")

// Request is the full input of one aggregation.
type Request struct {
	// Sets are simulated in order; realization i uses Sets[i].
	Sets []models.ParameterSet

	// Config carries N, CI and the date range.
	Config models.SimulationConfig

	// Seed derives the independent random stream of every realization.
	Seed uint64

	// Budget optionally limits wall-clock time.
	Budget Budget
}

// Validate checks the request before any simulation starts.
func (r Request) Validate() error {
	if len(r.Sets) == 0 {
		return ErrNoParameterSets
	}
	if err := r.Config.Validate(); err != nil {
		return err
	}
	for i, ps := range r.Sets {
		if err := ps.Validate(); err != nil {
			return fmt.Errorf("parameter set %d: %w", i, err)
		}
	}
	return nil
}

// Stream returns the random source of realization i.
func Stream(seed uint64, i int) rand.Source {
	return rand.NewPCG(seed, uint64(i))
}

// Aggregator runs ensembles of realizations. It keeps no state between calls
// and is safe for concurrent use.
type Aggregator struct {
	workers int
	logger  *slog.Logger
	engine  *realization.Engine
	now     func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithWorkers sets how many realizations may run at once. One gives the
// plain sequential loop. Values below one select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(a *Aggregator) {
		a.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithEngine replaces the realization engine, e.g. to attach an observer.
func WithEngine(e *realization.Engine) Option {
	return func(a *Aggregator) {
		if e != nil {
			a.engine = e
		}
	}
}

// New creates an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		engine: realization.New(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.workers < 1 {
		a.workers = runtime.GOMAXPROCS(0)
	}
	return a
}

// Workers reports the configured concurrency.
func (a *Aggregator) Workers() int {
	return a.workers
}

// Aggregate simulates every parameter set of req until the budget runs out
// and returns per-date statistics for every metric. Running out of budget is
// not an error: the result reports how many realizations finished.
func (a *Aggregator) Aggregate(req Request) (*models.EnsembleResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := a.now()
	horizon := req.Config.Horizon()
	metrics := models.Metrics()

	samples := make(map[models.Metric]*mat.Dense, len(metrics))
	for _, m := range metrics {
		samples[m] = mat.NewDense(len(req.Sets), horizon, nil)
	}

	// accumulate is only ever called from one goroutine at a time.
	accumulate := func(i int, traj models.Trajectory) {
		for _, m := range metrics {
			samples[m].SetRow(i, traj.Series(m))
		}
	}

	var finished int
	if a.workers == 1 || len(req.Sets) == 1 {
		finished = a.runSequential(req, horizon, start, accumulate)
	} else {
		finished = a.runParallel(req, horizon, start, accumulate)
	}

	res := &models.EnsembleResult{
		Series:                make(map[models.Metric]models.Series, len(metrics)),
		NumberFinishedSamples: finished,
		Requested:             len(req.Sets),
	}
	daily := req.Config.Dates.Dates()
	for _, m := range metrics {
		view := samples[m].Slice(0, finished, 0, horizon).(*mat.Dense)
		dates := daily
		if m == models.MetricDaily {
			view = SecondDoseWeekly(view)
			dates = req.Config.Dates.Weekly()
		}
		res.Series[m] = toSeries(dates, Bands(view, req.Config.CI))
	}

	elapsed := a.now().Sub(start)
	if res.Truncated() {
		a.logger.Info("time budget exhausted",
			"finished", finished,
			"requested", len(req.Sets),
			"budget", req.Budget.String(),
			"elapsed", elapsed)
	}
	a.logger.Debug("aggregate finished",
		"finished", finished,
		"requested", len(req.Sets),
		"horizon", horizon,
		"workers", a.workers,
		"elapsed", elapsed)

	return res, nil
}

func (a *Aggregator) runSequential(req Request, horizon int, start time.Time, accumulate func(int, models.Trajectory)) int {
	finished := 0
	for i, ps := range req.Sets {
		traj := a.engine.Run(ps, horizon, req.Config.N, Stream(req.Seed, i))
		accumulate(i, traj)
		a.traceRealization(i, traj, start)
		finished++
		if req.Budget.Exhausted(a.now().Sub(start)) {
			break
		}
	}
	return finished
}

// traceRealization logs one completed realization at trace level.
func (a *Aggregator) traceRealization(i int, traj models.Trajectory, start time.Time) {
	ctx := context.Background()
	if !a.logger.Enabled(ctx, logging.LevelTrace) {
		return
	}
	var final float64
	if n := traj.Len(); n > 0 {
		final = traj.VaccinatedPct[n-1]
	}
	a.logger.Log(ctx, logging.LevelTrace, "realization finished",
		"index", i,
		"final_vaccinated_pct", final,
		"elapsed", a.now().Sub(start))
}

type completed struct {
	index int
	traj  models.Trajectory
}

func (a *Aggregator) runParallel(req Request, horizon int, start time.Time, accumulate func(int, models.Trajectory)) int {
	var (
		g         errgroup.Group
		exhausted atomic.Bool
		results   = make(chan completed)
		collected = make(chan struct{})
	)
	g.SetLimit(a.workers)

	go func() {
		defer close(collected)
		for c := range results {
			accumulate(c.index, c.traj)
			a.traceRealization(c.index, c.traj, start)
			if req.Budget.Exhausted(a.now().Sub(start)) {
				exhausted.Store(true)
			}
		}
	}()

	dispatched := 0
	for i, ps := range req.Sets {
		if exhausted.Load() {
			break
		}
		g.Go(func() error {
			traj := a.engine.Run(ps, horizon, req.Config.N, Stream(req.Seed, i))
			results <- completed{index: i, traj: traj}
			return nil
		})
		dispatched++
	}

	_ = g.Wait()
	close(results)
	<-collected

	// Dispatch is in index order and every dispatched realization runs to
	// completion, so rows [0, dispatched) are all filled.
	return dispatched
}

func toSeries(dates []time.Time, bands []Band) models.Series {
	s := models.Series{
		Dates: slices.Clone(dates),
		Mean:  make([]float64, len(bands)),
		Lower: make([]float64, len(bands)),
		Upper: make([]float64, len(bands)),
	}
	for i, b := range bands {
		s.Mean[i] = b.Mean
		s.Lower[i] = b.Lower
		s.Upper[i] = b.Upper
	}
	return s
}
