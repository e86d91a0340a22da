// Package simulation provides a scenario harness for validating the
// dynamics of the vaccination model.
//
// The harness exercises the real realization engine and ensemble
// aggregator with no mocks. Scenarios fix a parameter set, a population and
// a horizon; the runner records the engine state after every simulated day
// through the observer hook so that assertions can check conservation and
// monotonicity properties day by day.
//
// Usage:
//
//	func TestSupplyLimited(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:         "supply-limited",
//	        Params:       simulation.DefaultParams(),
//	        N:            1000,
//	        Days:         120,
//	        Realizations: 5,
//	    })
//	    simulation.AssertDosesWithinSupply(t, result)
//	}
package simulation
