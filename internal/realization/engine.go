// Package realization simulates a single trajectory of a vaccination
// campaign for one parameter combination.
//
// Each day has four phases: weekly vaccine arrivals, vaccination of people
// waiting for a dose, conversion of agnostics under social pressure, and
// recording. All randomness comes from the caller-supplied source.
package realization

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/models"
	"gonum.org/v1/gonum/stat/distuv"
)

// ApplicationDaysPerWeek is the average number of days per week on which a
// person waiting for a dose can actually receive one.
const ApplicationDaysPerWeek = 2.0

// DeliveryPeriod is the number of days between vaccine deliveries.
const DeliveryPeriod = 7

// State is the engine state at the end of one simulated day.
type State struct {
	Day        int
	Waiting    int
	Agnostic   int
	Vaccinated int
	Stock      int
	Received   int

	// Arrived is the delivery received this day.
	Arrived int
	// Applied is the number of doses given this day.
	Applied int
	// Converted is the number of agnostics who started waiting this day.
	Converted int

	// StockBefore and WaitingBefore are the pools the day's doses were drawn from.
	StockBefore   int
	WaitingBefore int
}

// Observer receives the state after every simulated day.
type Observer func(State)

// Engine runs realizations. The zero value is ready to use.
type Engine struct {
	observer Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver installs a per-day state hook.
func WithObserver(fn Observer) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run simulates horizon days for a population of n people.
func Run(ps models.ParameterSet, horizon, n int, src rand.Source) models.Trajectory {
	return New().Run(ps, horizon, n, src)
}

// Run simulates horizon days for a population of n people using the
// parameters ps. It panics if an internal invariant is violated, which
// indicates a modeling defect rather than bad input.
func (e *Engine) Run(ps models.ParameterSet, horizon, n int, src rand.Source) models.Trajectory {
	if n <= 0 {
		panic(fmt.Sprintf("realization: population size must be positive, got %d", n))
	}
	if !ps.Feasible() {
		panic(fmt.Sprintf("realization: infeasible parameter set %+v", ps))
	}

	pop := float64(n)
	st := State{
		Waiting:  int(ps.PPro * pop),
		Agnostic: int(ps.PAgnostic() * pop),
	}
	traj := models.NewTrajectory(horizon)

	for day := 0; day < horizon; day++ {
		st.Day = day

		// Arrivals.
		st.Arrived = 0
		if day%DeliveryPeriod == 0 {
			st.Arrived = arrival(ps, day, pop)
		}
		assert(st.Arrived >= 0, "negative arrival %d on day %d", st.Arrived, day)
		st.Stock += st.Arrived
		st.Received += st.Arrived

		// Vaccination.
		st.StockBefore, st.WaitingBefore = st.Stock, st.Waiting
		pAvailable := (ApplicationDaysPerWeek / 7) * float64(st.Stock) / pop
		applied := poisson(float64(st.Waiting)*pAvailable, src)
		applied = min(applied, st.Stock, st.Waiting)
		prevVaccinated := st.Vaccinated
		st.Applied = applied
		st.Vaccinated += applied
		st.Waiting -= applied
		st.Stock -= applied

		// Social pressure.
		prevAgnostic := st.Agnostic
		pConvert := ps.Pressure * float64(st.Vaccinated) / pop
		converted := min(poisson(float64(st.Agnostic)*pConvert, src), st.Agnostic)
		st.Converted = converted
		st.Agnostic -= converted
		st.Waiting += converted

		assert(st.Stock >= 0, "negative stock %d on day %d", st.Stock, day)
		assert(st.Waiting >= 0, "negative waiting pool %d on day %d", st.Waiting, day)
		assert(st.Vaccinated >= prevVaccinated, "vaccinated decreased on day %d", day)
		assert(st.Agnostic <= prevAgnostic && st.Agnostic >= 0, "agnostic pool grew or went negative on day %d", day)
		assert(st.Vaccinated <= n, "vaccinated %d exceeds population %d", st.Vaccinated, n)

		traj.VaccinatedPct = append(traj.VaccinatedPct, 100*float64(st.Vaccinated)/pop)
		traj.DailyPerMillion = append(traj.DailyPerMillion, 1e6*float64(applied)/pop)
		traj.ReceivedPerHundred = append(traj.ReceivedPerHundred, 100*float64(st.Received)/pop)
		traj.StockPerHundred = append(traj.StockPerHundred, 100*float64(st.Stock)/pop)

		if e.observer != nil {
			e.observer(st)
		}
	}

	return traj
}

// arrival is the delivery on a delivery day: exponential growth with
// duplication time tau weeks, capped at nvmax, scaled by the population.
func arrival(ps models.ParameterSet, day int, pop float64) int {
	weekly := ps.NVMax
	if ps.Tau > 0 {
		weekly = math.Min(ps.NV0*math.Exp2(float64(day)/(DeliveryPeriod*ps.Tau)), ps.NVMax)
	}
	a := weekly * pop
	if a <= 0 || math.IsNaN(a) {
		return 0
	}
	return int(a)
}

// poisson draws from a Poisson distribution with the given mean. A zero mean
// yields zero without consuming randomness.
func poisson(mean float64, src rand.Source) int {
	if mean <= 0 || math.IsNaN(mean) {
		return 0
	}
	return int(distuv.Poisson{Lambda: mean, Src: src}.Rand())
}

func assert(ok bool, format string, args ...any) {
	if !ok {
		panic("realization: invariant violated: " + fmt.Sprintf(format, args...))
	}
}
