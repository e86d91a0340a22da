package simulation

import (
	"testing"
	"time"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/ensemble"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/models"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/realization"
)

// scenarioStart anchors the calendar of ensemble runs; only the horizon
// matters to the engine.
var scenarioStart = time.Date(2020, 12, 30, 0, 0, 0, 0, time.UTC)

// Runner orchestrates scenario experiments against the real engine.
type Runner struct {
	t *testing.T
}

// NewRunner creates a simulation runner.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	return &Runner{t: t}
}

// Run executes every realization of the scenario and returns the recorded
// day-by-day states.
func (r *Runner) Run(scenario Scenario) SimulationResult {
	r.t.Helper()
	r.validate(scenario)

	results := make([]RealizationResult, scenario.realizations())
	for i := range results {
		var states []realization.State
		eng := realization.New(realization.WithObserver(func(s realization.State) {
			states = append(states, s)
		}))
		traj := eng.Run(scenario.Params, scenario.Days, scenario.N, ensemble.Stream(scenario.Seed, i))
		results[i] = RealizationResult{Index: i, States: states, Trajectory: traj}
	}

	return SimulationResult{Scenario: scenario, Realizations: results}
}

// Aggregate runs the scenario through the ensemble aggregator, with every
// realization sharing the scenario's parameter set.
func (r *Runner) Aggregate(scenario Scenario, ci float64, opts ...ensemble.Option) *models.EnsembleResult {
	r.t.Helper()
	r.validate(scenario)

	req := ensemble.Request{
		Sets: Uniform(scenario.Params, scenario.realizations()),
		Config: models.SimulationConfig{
			N:     scenario.N,
			CI:    ci,
			Dates: models.NewDateRange(scenarioStart, scenarioStart.AddDate(0, 0, scenario.Days-1)),
		},
		Seed: scenario.Seed,
	}
	res, err := ensemble.New(opts...).Aggregate(req)
	if err != nil {
		r.t.Fatalf("Aggregate %s: %v", scenario.Name, err)
	}
	return res
}

func (r *Runner) validate(scenario Scenario) {
	r.t.Helper()
	if scenario.N <= 0 {
		r.t.Fatalf("scenario %s: population must be positive", scenario.Name)
	}
	if scenario.Days < 0 {
		r.t.Fatalf("scenario %s: negative horizon", scenario.Name)
	}
	if err := scenario.Params.Validate(); err != nil {
		r.t.Fatalf("scenario %s: %v", scenario.Name, err)
	}
}
