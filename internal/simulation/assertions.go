package simulation

import (
	"testing"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/models"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/realization"
)

// AssertVaccinatedNonDecreasing asserts that no realization ever loses a
// vaccinated person.
func AssertVaccinatedNonDecreasing(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, rr := range result.Realizations {
		for d := 1; d < len(rr.Trajectory.VaccinatedPct); d++ {
			if rr.Trajectory.VaccinatedPct[d] < rr.Trajectory.VaccinatedPct[d-1] {
				t.Errorf("AssertVaccinatedNonDecreasing: realization %d: day %d: %.4f < %.4f",
					rr.Index, d, rr.Trajectory.VaccinatedPct[d], rr.Trajectory.VaccinatedPct[d-1])
			}
		}
	}
}

// AssertStockNonNegative asserts the stock never goes below zero.
func AssertStockNonNegative(t *testing.T, result SimulationResult) {
	t.Helper()
	eachState(result, func(idx int, s realization.State) {
		if s.Stock < 0 {
			t.Errorf("AssertStockNonNegative: realization %d: day %d: stock %d", idx, s.Day, s.Stock)
		}
	})
}

// AssertDosesWithinSupply asserts that the doses given each day never exceed
// the stock or the number of people waiting at that moment.
func AssertDosesWithinSupply(t *testing.T, result SimulationResult) {
	t.Helper()
	eachState(result, func(idx int, s realization.State) {
		if s.Applied > s.StockBefore || s.Applied > s.WaitingBefore {
			t.Errorf("AssertDosesWithinSupply: realization %d: day %d: applied %d > min(stock %d, waiting %d)",
				idx, s.Day, s.Applied, s.StockBefore, s.WaitingBefore)
		}
	})
}

// AssertVaccinatedAtMost asserts that the vaccinated share never exceeds
// maxPct percent.
func AssertVaccinatedAtMost(t *testing.T, result SimulationResult, maxPct float64) {
	t.Helper()
	for _, rr := range result.Realizations {
		for d, v := range rr.Trajectory.VaccinatedPct {
			if v > maxPct {
				t.Errorf("AssertVaccinatedAtMost: realization %d: day %d: %.4f%% > %.4f%%", rr.Index, d, v, maxPct)
			}
		}
	}
}

// AssertPeopleConserved asserts that waiting, vaccinated and agnostic people
// always add up to the initial willing population.
func AssertPeopleConserved(t *testing.T, result SimulationResult) {
	t.Helper()
	waiting, agnostic := result.Scenario.InitialPools()
	total := waiting + agnostic
	eachState(result, func(idx int, s realization.State) {
		if got := s.Waiting + s.Vaccinated + s.Agnostic; got != total {
			t.Errorf("AssertPeopleConserved: realization %d: day %d: %d people, want %d", idx, s.Day, got, total)
		}
	})
}

// AssertDeliveriesWeekly asserts that vaccines only arrive on delivery days.
func AssertDeliveriesWeekly(t *testing.T, result SimulationResult) {
	t.Helper()
	eachState(result, func(idx int, s realization.State) {
		if s.Day%realization.DeliveryPeriod != 0 && s.Arrived != 0 {
			t.Errorf("AssertDeliveriesWeekly: realization %d: day %d: %d doses arrived", idx, s.Day, s.Arrived)
		}
	})
}

// AssertBandsOrdered asserts lower <= mean <= upper for every metric and date.
func AssertBandsOrdered(t *testing.T, res *models.EnsembleResult) {
	t.Helper()
	for m, s := range res.Series {
		for i := range s.Mean {
			if s.Lower[i] > s.Mean[i] || s.Mean[i] > s.Upper[i] {
				t.Errorf("AssertBandsOrdered: %s[%d]: %.4f <= %.4f <= %.4f violated", m, i, s.Lower[i], s.Mean[i], s.Upper[i])
			}
		}
	}
}

func eachState(result SimulationResult, fn func(idx int, s realization.State)) {
	for _, rr := range result.Realizations {
		for _, s := range rr.States {
			fn(rr.Index, s)
		}
	}
}
