package simulation

import (
	"github.com/kastellane/COVID19-Vaccination-Model/internal/models"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/realization"
)

// Scenario defines a complete simulation experiment.
type Scenario struct {
	Name   string
	Params models.ParameterSet
	N      int
	Days   int

	// Realizations is the number of independent runs; 0 means 1.
	Realizations int

	// Seed selects the random streams. Realization i uses stream i.
	Seed uint64
}

func (s Scenario) realizations() int {
	if s.Realizations <= 0 {
		return 1
	}
	return s.Realizations
}

// RealizationResult captures one run of the engine.
type RealizationResult struct {
	Index      int
	States     []realization.State
	Trajectory models.Trajectory
}

// Final is the state after the last simulated day.
func (r RealizationResult) Final() realization.State {
	if len(r.States) == 0 {
		return realization.State{}
	}
	return r.States[len(r.States)-1]
}

// SimulationResult captures every realization of a scenario.
type SimulationResult struct {
	Scenario     Scenario
	Realizations []RealizationResult
}

// InitialPools returns the waiting and agnostic counts a realization starts
// with.
func (s Scenario) InitialPools() (waiting, agnostic int) {
	pop := float64(s.N)
	return int(s.Params.PPro * pop), int(s.Params.PAgnostic() * pop)
}
